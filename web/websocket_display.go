package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

// displayWriteTimeout bounds every frame write, renders run with the VM locked
const displayWriteTimeout = 250 * time.Millisecond

// Boot implements runner.Display.
func (server *Server) Boot() error {
	return nil
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket != nil {
		server.socket.Close()
	}
	server.socket = conn
}

func (server *Server) unsetWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == conn {
		server.socket = nil
	}
}

// Render implements runner.Display. Frames are sent packed, one bit per pixel.
func (server *Server) Render(screen chip8.ScreenView) error {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == nil {
		return nil
	}

	// A broken or stalled browser connection must not stop the VM
	server.socket.SetWriteDeadline(time.Now().Add(displayWriteTimeout))
	if err := server.socket.WriteMessage(websocket.BinaryMessage, screen.Pack()); err != nil {
		slog.Warn("Dropping display connection", slog.Any("error", err))
		server.socket.Close()
		server.socket = nil
	}

	return nil
}

func (server *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := server.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to display")
	server.setWs(conn)
	defer server.unsetWs(conn)

	var frame []byte
	server.runner.Inspect(func(vm *chip8.VM) {
		frame = vm.Display().Pack()
	})
	server.wsMutex.Lock()
	conn.SetWriteDeadline(time.Now().Add(displayWriteTimeout))
	err = conn.WriteMessage(websocket.BinaryMessage, frame)
	server.wsMutex.Unlock()
	if err != nil {
		slog.Error("Error sending the first frame", slog.Any("error", err))
		return
	}

	// Nothing is expected from the browser, reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			slog.Info("Disconnecting from display")
			return
		}
	}
}
