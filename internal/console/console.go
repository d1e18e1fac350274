package console

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"git.lost.host/meutraa/lanes/internal/parser"
	"git.lost.host/meutraa/lanes/internal/serial"
	"github.com/gdamore/tcell/v2"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("console")

const timeFormat = "15:04:05"

type Options struct {
	Port       string
	Baud       int
	Objects    bool // Show the latest object panel
	Scrollback int

	// Objects emitted and discarded by the parser, optional
	Stats func() (emitted, failures uint64)
}

// Entry is one chunk in the log
type Entry struct {
	Time time.Time
	Text string
	Sent bool
}

type closed struct {
	name string
	err  error
}

type quit struct{}

// Console is a line oriented serial terminal. Chunks arrive on the reader
// goroutine and are queued, the event loop owns everything else.
type Console struct {
	screen tcell.Screen
	conn   *serial.Conn
	opts   Options

	mu      sync.Mutex
	pending []any

	entries []Entry
	object  *parser.Object // Copy of the latest object, refreshed when its slot signals
	input   []rune
	scroll  int
	status  string
}

func New(screen tcell.Screen, conn *serial.Conn, opts Options) *Console {
	if opts.Scrollback <= 0 {
		opts.Scrollback = 1000
	}
	if opts.Baud == 0 {
		opts.Baud = serial.DefaultBaudRate
	}
	c := &Console{screen: screen, conn: conn, opts: opts}
	conn.OnChunk = func(chunk serial.Chunk) { c.post(chunk) }
	conn.OnClose = func(name string, err error) { c.post(closed{name: name, err: err}) }
	return c
}

func (c *Console) post(v any) {
	c.mu.Lock()
	c.pending = append(c.pending, v)
	c.mu.Unlock()
	if err := c.screen.PostEvent(tcell.NewEventInterrupt(nil)); nil != err {
		// Queued already, the next wake up drains it
		log.Debugw("event queue full", "err", err)
	}
}

// Run connects to the configured port, if any, and handles events until
// the user quits or ctx is done
func (c *Console) Run(ctx context.Context) error {
	defer c.conn.Disconnect()

	if c.opts.Port != "" {
		c.connect(ctx)
	} else {
		c.status = "no port, restart with --port or list them with --list"
	}

	go func() {
		<-ctx.Done()
		c.post(quit{})
	}()

	c.Draw()
	for {
		ev := c.screen.PollEvent()
		if nil == ev {
			return nil
		}
		if !c.HandleEvent(ctx, ev) {
			return nil
		}
		c.Draw()
	}
}

func (c *Console) connect(ctx context.Context) {
	if err := c.conn.Connect(ctx, c.opts.Port, c.opts.Baud); nil != err {
		log.Errorw("unable to connect", "port", c.opts.Port, "err", err)
		c.status = err.Error()
		return
	}
	c.status = ""
}

// HandleEvent returns false once the console should exit
func (c *Console) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		return c.drain()
	case *tcell.EventResize:
		c.screen.Sync()
	case *tcell.EventKey:
		return c.key(ctx, ev)
	}
	return true
}

func (c *Console) drain() bool {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, v := range pending {
		switch v := v.(type) {
		case serial.Chunk:
			c.Append(v)
		case closed:
			c.status = fmt.Sprintf("%v went away", v.name)
			if nil != v.err {
				c.status = fmt.Sprintf("%v went away: %v", v.name, v.err)
			}
		case quit:
			return false
		}
	}

	select {
	case <-c.conn.Objects().Updated():
		c.loadObject()
	default:
	}
	return true
}

func (c *Console) loadObject() {
	obj, ok := c.conn.Objects().Get()
	if !ok {
		c.object = nil
		return
	}
	c.object = &obj
}

func (c *Console) key(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		c.send()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(c.input) > 0 {
			c.input = c.input[:len(c.input)-1]
		}
	case tcell.KeyCtrlO:
		if c.conn.Connected() {
			if err := c.conn.Disconnect(); nil != err {
				c.status = err.Error()
			}
		} else if c.opts.Port != "" {
			c.connect(ctx)
		}
	case tcell.KeyCtrlB:
		if c.conn.Connected() {
			c.status = "disconnect before changing the baud rate"
			break
		}
		c.opts.Baud = nextBaudRate(c.opts.Baud)
	case tcell.KeyCtrlL:
		c.Clear()
	case tcell.KeyPgUp:
		c.scroll += 10
	case tcell.KeyPgDn:
		c.scroll -= 10
		if c.scroll < 0 {
			c.scroll = 0
		}
	case tcell.KeyRune:
		c.input = append(c.input, ev.Rune())
	}
	return true
}

func (c *Console) send() {
	text := string(c.input)
	if text == "" {
		return
	}
	if err := c.conn.Send(text); nil != err {
		c.status = err.Error()
		return
	}
	c.input = c.input[:0]
	c.status = ""
}

// Append adds a chunk to the log, dropping the oldest past the scrollback
func (c *Console) Append(chunk serial.Chunk) {
	c.entries = append(c.entries, Entry{Time: chunk.Time, Text: chunk.Data, Sent: chunk.Sent})
	if over := len(c.entries) - c.opts.Scrollback; over > 0 {
		c.entries = slices.Delete(c.entries, 0, over)
	}
}

// Clear empties the log along with the latest chunk and object
func (c *Console) Clear() {
	c.entries = c.entries[:0]
	c.scroll = 0
	c.conn.Clear()
	c.loadObject()
}

func nextBaudRate(baud int) int {
	i := slices.Index(serial.BaudRates, baud)
	return serial.BaudRates[(i+1)%len(serial.BaudRates)]
}

// Lines renders the log to at most n display lines, newest last
func (c *Console) Lines(n int) []string {
	var lines []string
	for _, e := range c.entries {
		stamp := "[" + e.Time.Format(timeFormat) + "] "
		if e.Sent {
			lines = append(lines, stamp+"→ "+e.Text)
			continue
		}
		for _, l := range strings.Split(strings.TrimRight(e.Text, "\r\n"), "\n") {
			lines = append(lines, stamp+strings.TrimRight(l, "\r"))
		}
	}
	end := len(lines) - c.scroll
	if end < 0 {
		end = 0
	}
	start := end - n
	if start < 0 {
		start = 0
	}
	return lines[start:end]
}

// ObjectLines renders the latest object, keys sorted
func (c *Console) ObjectLines() []string {
	obj := c.object
	if nil == obj {
		return []string{"no object yet"}
	}
	lines := []string{"latest object " + obj.Timestamp.Format(timeFormat)}
	for _, k := range slices.Sorted(maps.Keys(obj.Data)) {
		lines = append(lines, fmt.Sprintf("%v: %v", k, value(obj.Data[k])))
	}
	return lines
}

func value(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if nil != err {
		return fmt.Sprint(v)
	}
	return string(b)
}

func (c *Console) StatusLine() string {
	state := "○ disconnected"
	if c.conn.Connected() {
		state = "● " + c.conn.Name()
	}
	line := fmt.Sprintf("%v  %v baud", state, c.opts.Baud)
	if nil != c.opts.Stats {
		emitted, failures := c.opts.Stats()
		line += fmt.Sprintf("  objects %v  discarded %v", emitted, failures)
	}
	if c.status != "" {
		line += "  " + c.status
	}
	return line
}

var (
	styleDefault = tcell.StyleDefault
	styleSent    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(251, 191, 36))
	styleStatus  = tcell.StyleDefault.Reverse(true)
	styleObject  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(168, 85, 247))
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

func (c *Console) Draw() {
	c.screen.Clear()
	w, h := c.screen.Size()
	if h < 4 {
		c.screen.Show()
		return
	}

	logWidth := w
	if c.opts.Objects {
		logWidth = w * 2 / 3
		for y, l := range c.ObjectLines() {
			if y >= h-2 {
				break
			}
			put(c.screen, logWidth+1, y, w-logWidth-1, l, styleObject)
		}
	}

	for y, l := range c.Lines(h - 2) {
		style := styleDefault
		if strings.Contains(l, "] → ") {
			style = styleSent
		}
		put(c.screen, 0, y, logWidth, l, style)
	}

	put(c.screen, 0, h-2, w, padRight(c.StatusLine(), w), styleStatus)
	prompt := "> " + string(c.input)
	put(c.screen, 0, h-1, w, prompt, styleDefault)
	if len(c.input) == 0 {
		put(c.screen, 2, h-1, w-2, "Enter sends, ^O connects, ^B baud, ^L clears, Esc quits", styleHint)
	}
	c.screen.ShowCursor(len([]rune(prompt)), h-1)
	c.screen.Show()
}

func put(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	for _, r := range text {
		if width <= 0 {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
		width--
	}
}

func padRight(s string, w int) string {
	if n := len([]rune(s)); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
