package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"git.lost.host/meutraa/lanes/internal/parser"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("serial")

var (
	ErrNotConnected = errors.New("not connected")
	ErrConnected    = errors.New("already connected")
	ErrBaudRate     = errors.New("unsupported baud rate")
)

const readBufferSize = 4096

// Chunk is one read from, or one line written to, the port
type Chunk struct {
	Time time.Time
	Data string
	Sent bool
}

// Conn owns one port at a time. A single reader goroutine feeds every chunk
// to the parser and keeps the latest one.
type Conn struct {
	open   Opener
	parser parser.Parser

	mu     sync.Mutex
	port   Port
	name   string
	cancel context.CancelFunc
	done   chan struct{}

	received *parser.Slot[Chunk]

	// Hooks, set before Connect. Called from the reader goroutine.
	OnChunk func(Chunk)
	OnClose func(name string, err error)
}

func NewConn(open Opener, p parser.Parser) *Conn {
	if nil == open {
		open = OpenDevice
	}
	return &Conn{
		open:     open,
		parser:   p,
		received: parser.NewSlot[Chunk](),
	}
}

func (c *Conn) Connect(ctx context.Context, name string, baud int) error {
	if !validBaudRate(baud) {
		return fmt.Errorf("%w: %d", ErrBaudRate, baud)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if nil != c.port {
		return ErrConnected
	}
	port, err := c.open(name, baud)
	if nil != err {
		return err
	}

	c.parser.Reset()
	rctx, cancel := context.WithCancel(ctx)
	c.port = port
	c.name = name
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.read(rctx, port, name, c.done)

	log.Infow("connected", "port", name, "baud", baud)
	return nil
}

// Disconnect cancels the pending read, closes the port and waits for the
// reader to exit
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	port, cancel, done, name := c.port, c.cancel, c.done, c.name
	c.port = nil
	c.cancel = nil
	c.mu.Unlock()

	if nil == port {
		return nil
	}

	cancel()
	err := port.Close()
	<-done

	log.Infow("disconnected", "port", name)
	if nil != err {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return nil != c.port
}

// Name of the connected port
func (c *Conn) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Send writes a line to the port
func (c *Conn) Send(text string) error {
	c.mu.Lock()
	port := c.port
	c.mu.Unlock()

	if nil == port {
		return ErrNotConnected
	}
	if _, err := io.WriteString(port, text+"\n"); nil != err {
		return fmt.Errorf("write: %w", err)
	}
	if nil != c.OnChunk {
		c.OnChunk(Chunk{Time: time.Now(), Data: text, Sent: true})
	}
	return nil
}

// Received holds the latest chunk read from the port
func (c *Conn) Received() *parser.Slot[Chunk] {
	return c.received
}

// Objects holds the latest object parsed from the port
func (c *Conn) Objects() *parser.Slot[parser.Object] {
	return c.parser.Latest()
}

// Clear empties the latest chunk and the latest object
func (c *Conn) Clear() {
	c.received.Clear()
	c.parser.Latest().Clear()
}

func (c *Conn) read(ctx context.Context, port Port, name string, done chan struct{}) {
	defer close(done)

	buf := make([]byte, readBufferSize)
	var pending []byte
	for {
		n, err := port.Read(buf)
		if n > 0 {
			data := append(pending, buf[:n]...)
			cut := completeRunes(data)
			pending = append([]byte(nil), data[cut:]...)
			if cut > 0 {
				c.deliver(Chunk{Time: time.Now(), Data: string(data[:cut])})
			}
		}
		if nil != ctx.Err() {
			return
		}
		if nil != err {
			if err == io.EOF {
				err = nil
			} else {
				log.Errorw("read failed", "port", name, "err", err)
			}
			c.drop(port, name, err)
			return
		}
	}
}

func (c *Conn) deliver(chunk Chunk) {
	c.received.Set(chunk)
	c.parser.WriteString(chunk.Data)
	if nil != c.OnChunk {
		c.OnChunk(chunk)
	}
}

// drop releases a port whose reader stopped without a Disconnect
func (c *Conn) drop(port Port, name string, err error) {
	c.mu.Lock()
	owned := c.port == port
	if owned {
		c.port = nil
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	if !owned {
		return
	}
	if cerr := port.Close(); nil != cerr {
		log.Debugw("close after read failure", "port", name, "err", cerr)
	}
	if nil != c.OnClose {
		c.OnClose(name, err)
	}
}

// completeRunes returns the length of the prefix of b that ends on a rune
// boundary, so a rune split across reads is decoded whole
func completeRunes(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
