package console

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/lanes/internal/parser"
	"git.lost.host/meutraa/lanes/internal/serial"
	"github.com/gdamore/tcell/v2"
)

type pipePort struct {
	*io.PipeReader
	device *io.PipeWriter
	sent   strings.Builder
}

func (p *pipePort) Write(b []byte) (int, error) {
	return p.sent.Write(b)
}

func newConsole(t *testing.T, opts Options) (*Console, *pipePort) {
	t.Helper()
	r, w := io.Pipe()
	port := &pipePort{PipeReader: r, device: w}
	conn := serial.NewConn(func(string, int) (serial.Port, error) { return port, nil }, parser.NewDefaultParser())

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); nil != err {
		t.Fatal(err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	c := New(screen, conn, opts)
	t.Cleanup(func() { conn.Disconnect() })
	return c, port
}

func at(s string) time.Time {
	tm, _ := time.Parse(timeFormat, s)
	return tm
}

func TestLines(t *testing.T) {
	c, _ := newConsole(t, Options{})
	c.Append(serial.Chunk{Time: at("12:00:01"), Data: "boot ok\r\n"})
	c.Append(serial.Chunk{Time: at("12:00:02"), Data: "a\nb\n"})
	c.Append(serial.Chunk{Time: at("12:00:03"), Data: "led on", Sent: true})

	expected := []string{
		"[12:00:01] boot ok",
		"[12:00:02] a",
		"[12:00:02] b",
		"[12:00:03] → led on",
	}
	got := c.Lines(10)
	if strings.Join(got, "|") != strings.Join(expected, "|") {
		t.Errorf("lines %q, expected %q", got, expected)
	}
	if got := c.Lines(2); got[0] != expected[2] || len(got) != 2 {
		t.Errorf("last two lines %q", got)
	}

	c.scroll = 1
	if got := c.Lines(2); got[1] != expected[2] {
		t.Errorf("scrolled lines %q", got)
	}
	c.scroll = 100
	if got := c.Lines(2); len(got) != 0 {
		t.Errorf("scrolled past the top %q", got)
	}
}

func TestScrollback(t *testing.T) {
	c, _ := newConsole(t, Options{Scrollback: 3})
	for i := 0; i < 5; i++ {
		c.Append(serial.Chunk{Time: at("12:00:00"), Data: string(rune('a' + i))})
	}
	if len(c.entries) != 3 || c.entries[0].Text != "c" {
		t.Errorf("entries %+v", c.entries)
	}
}

func TestTypeAndSend(t *testing.T) {
	c, port := newConsole(t, Options{Port: "/dev/ttyTEST0"})
	ctx := context.Background()
	c.connect(ctx)
	if !c.conn.Connected() {
		t.Fatalf("not connected: %v", c.status)
	}

	for _, r := range "led onx" {
		c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	if port.sent.String() != "led on\n" {
		t.Errorf("device received %q", port.sent.String())
	}
	if len(c.input) != 0 {
		t.Errorf("input not cleared: %q", string(c.input))
	}
	c.drain()
	if len(c.entries) != 1 || !c.entries[0].Sent || c.entries[0].Text != "led on" {
		t.Errorf("entries %+v", c.entries)
	}
}

func TestSendDisconnected(t *testing.T) {
	c, _ := newConsole(t, Options{})
	ctx := context.Background()
	c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if c.status != serial.ErrNotConnected.Error() || string(c.input) != "x" {
		t.Errorf("status %q input %q", c.status, string(c.input))
	}
}

func TestReceiveObject(t *testing.T) {
	c, port := newConsole(t, Options{Port: "/dev/ttyTEST0", Objects: true})
	ctx := context.Background()
	c.connect(ctx)

	port.device.Write([]byte("[INFO] {\"temp\":21.5,\"label\":\"käfer\"}\n"))
	deadline := time.Now().Add(2 * time.Second)
	for len(c.entries) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
		c.drain()
	}
	if len(c.entries) == 0 {
		t.Fatal("chunk never arrived")
	}

	expected := []string{"label: käfer", "temp: 21.5"}
	lines := c.ObjectLines()
	if len(lines) != 3 || lines[1] != expected[0] || lines[2] != expected[1] {
		t.Errorf("object lines %q", lines)
	}
	c.Draw()

	c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyCtrlL, 0, tcell.ModCtrl))
	if len(c.entries) != 0 || c.ObjectLines()[0] != "no object yet" {
		t.Error("clear kept entries or the object")
	}
}

func TestBaudRate(t *testing.T) {
	c, _ := newConsole(t, Options{Baud: 57600})
	ctx := context.Background()
	c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl))
	if c.opts.Baud != 115200 {
		t.Errorf("baud %v", c.opts.Baud)
	}
	c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl))
	if c.opts.Baud != 9600 {
		t.Errorf("baud %v after wrapping", c.opts.Baud)
	}
}

func TestQuit(t *testing.T) {
	c, _ := newConsole(t, Options{})
	ctx := context.Background()
	if c.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape did not quit")
	}
	c.post(quit{})
	if c.drain() {
		t.Error("quit event did not stop the loop")
	}
}

func TestStatusLine(t *testing.T) {
	c, _ := newConsole(t, Options{Stats: func() (uint64, uint64) { return 3, 1 }})
	if got := c.StatusLine(); got != "○ disconnected  115200 baud  objects 3  discarded 1" {
		t.Errorf("status %q", got)
	}
}
