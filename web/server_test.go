package web_test

import (
	"bytes"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
	"github.com/guslan/chip8/web"
	"golang.org/x/image/bmp"
)

func newTestServer(t *testing.T) (*web.Server, *httptest.Server) {
	t.Helper()

	server := web.NewServer()
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return server, ts
}

func post(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/octet-stream", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	return resp
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestLoadStepAndScreenshot(t *testing.T) {
	server, ts := newTestServer(t)

	program := []byte{
		0x60, 0x00,
		0xA0, 0x00,
		0xD0, 0x05,
	}
	if resp := post(t, ts.URL+"/load", program); resp.StatusCode != http.StatusOK {
		t.Fatalf(`POST /load = %d`, resp.StatusCode)
	}
	for range 3 {
		if resp := post(t, ts.URL+"/step", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf(`/step = %d`, resp.StatusCode)
		}
	}

	server.Runner().Inspect(func(vm *chip8.VM) {
		if vm.PC() != 0x206 {
			t.Fatalf(`PC = %03X after three steps, expected 206`, vm.PC())
		}
	})

	resp, err := http.Get(ts.URL + "/screenshot.bmp")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	img, err := bmp.Decode(resp.Body)
	if err != nil {
		t.Fatalf(`screenshot is not a bmp: %v`, err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf(`screenshot is %dx%d`, b.Dx(), b.Dy())
	}
	if !sameColor(img.At(0, 0), color.White) {
		t.Fatalf(`pixel (0, 0) should be lit`)
	}
	if !sameColor(img.At(5, 0), color.Black) {
		t.Fatalf(`pixel (5, 0) should be off`)
	}
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()

	return ar == br && ag == bg && ab == bb
}

func TestLoadTooLarge(t *testing.T) {
	_, ts := newTestServer(t)

	program := make([]byte, chip8.MemorySize-chip8.ProgramStart+1)
	if resp := post(t, ts.URL+"/load", program); resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf(`POST /load of an oversized program = %d`, resp.StatusCode)
	}
}

func TestStepFault(t *testing.T) {
	_, ts := newTestServer(t)

	post(t, ts.URL+"/load", []byte{0x00, 0xEE})
	if resp := post(t, ts.URL+"/step", nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf(`/step on RET with an empty stack = %d, expected 409`, resp.StatusCode)
	}
}

func TestDisplaySendsTheCurrentFrame(t *testing.T) {
	_, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/display"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage || len(frame) != 64*32/8 {
		t.Fatalf(`first frame was %d bytes of type %d`, len(frame), kind)
	}
}

func TestKeysReachTheVM(t *testing.T) {
	server, ts := newTestServer(t)

	// LD V0, K
	if err := server.LoadProgram([]byte{0xF0, 0x0A}); err != nil {
		t.Fatal(err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/keys"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(web.KeyEvent{Key: 0x5, Down: true}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := server.Runner().StepOnce(); err != nil {
			t.Fatal(err)
		}

		var got byte
		var waiting bool
		server.Runner().Inspect(func(vm *chip8.VM) {
			_, waiting = vm.WaitingForKey()
			got = vm.V(0)
		})
		if !waiting && got == 0x5 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf(`key 5 never reached the VM`)
}

func TestMemoryDump(t *testing.T) {
	_, ts := newTestServer(t)

	post(t, ts.URL+"/load", []byte{0x6A, 0x0F, 0xA2, 0x00})

	resp, err := http.Get(ts.URL + "/memory")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	dump := string(body)

	if !strings.HasPrefix(dump, "000: F0 90 90 90 F0 20 60 20") {
		t.Fatalf(`dump does not start with the font: %q`, dump[:40])
	}
	if !strings.Contains(dump, "\n200: 6A 0F A2 00 00") {
		t.Fatalf(`dump does not show the program at 200`)
	}
}

func TestLoadFailureForgetsThePreviousProgram(t *testing.T) {
	server, ts := newTestServer(t)

	post(t, ts.URL+"/load", []byte{0x6A, 0x0F})
	if resp := post(t, ts.URL+"/load", make([]byte, chip8.MemorySize-chip8.ProgramStart+1)); resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf(`POST /load of an oversized program = %d`, resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/reset", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf(`/reset = %d`, resp.StatusCode)
	}

	server.Runner().Inspect(func(vm *chip8.VM) {
		if vm.Peek(0x200) != 0 {
			t.Fatalf(`reset brought back the program rejected before the failed load`)
		}
	})
}
