package parser

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("parser")

const (
	// MaxBuffer bounds a single object, anything longer is discarded
	MaxBuffer = 64 * 1024

	maxTag = 256
)

// DefaultParser extracts top level {...} objects from a text stream by
// counting braces. State carries across chunks so objects may be split
// anywhere. Text between objects is dropped.
//
// Device log tags such as "[INFO] " or "[12:00:01] " that open a line
// outside of any object are dropped with the blanks after them. Inside an
// object a '[' is always an array.
//
// Until the first '{' of a connection arrives the parser is unsynchronised:
// the stream may have been joined in the middle of an object, so text is kept
// and a closing '}' turns it into an object with a synthesised '{'.
type DefaultParser struct {
	mu        sync.Mutex
	buffer    strings.Builder
	depth     int
	synced    bool
	lineStart bool
	tagging   bool
	afterTag  bool
	tag       []rune // Held while a tag may be open
	latest    *Slot[Object]
	now       func() time.Time
	emitted   uint64
	failures  uint64
}

func NewDefaultParser() *DefaultParser {
	return &DefaultParser{
		latest:    NewSlot[Object](),
		now:       time.Now,
		lineStart: true,
	}
}

func (p *DefaultParser) Write(b []byte) (int, error) {
	p.WriteString(string(b))
	return len(b), nil
}

func (p *DefaultParser) WriteString(chunk string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range chunk {
		p.scan(c)
	}
	return len(chunk), nil
}

// scan drops tags, state carries across chunks so a tag may be split anywhere
func (p *DefaultParser) scan(c rune) {
	if p.tagging {
		switch c {
		case ']':
			p.tagging = false
			p.afterTag = true
			p.tag = p.tag[:0]
		case '\r', '\n':
			p.release()
			p.scan(c)
		default:
			p.tag = append(p.tag, c)
			if len(p.tag) > maxTag {
				p.release()
			}
		}
		return
	}
	if p.afterTag {
		if c == ' ' || c == '\t' {
			return
		}
		p.afterTag = false
	}
	if c == '[' && p.lineStart && p.depth == 0 {
		p.tagging = true
		p.tag = append(p.tag[:0], c)
		return
	}

	switch c {
	case '\n':
		p.lineStart = true
	case ' ', '\t', '\r':
	default:
		p.lineStart = false
	}
	p.consume(c)
}

// release gives up on a tag, the held text is stream text after all
func (p *DefaultParser) release() {
	held := p.tag
	p.tag = nil
	p.tagging = false
	p.lineStart = false
	for _, c := range held {
		p.consume(c)
	}
}

func (p *DefaultParser) consume(c rune) {
	switch {
	case c == '{':
		if !p.synced {
			p.synced = true
			p.buffer.Reset()
		}
		p.depth++
		p.buffer.WriteRune(c)
	case c == '}':
		if p.depth == 0 && p.synced {
			// Stray close, depth never goes negative
			return
		}
		p.buffer.WriteRune(c)
		if p.depth > 0 {
			p.depth--
		}
		if p.depth == 0 {
			p.synced = true
			p.emit()
		}
	case p.depth > 0 || !p.synced:
		p.buffer.WriteRune(c)
	}

	if p.buffer.Len() > MaxBuffer {
		log.Warnw("discarding oversized object", "size", p.buffer.Len(), "depth", p.depth)
		p.buffer.Reset()
		p.depth = 0
		p.failures++
	}
}

func (p *DefaultParser) emit() {
	defer p.buffer.Reset()

	fixed := strings.TrimSpace(p.buffer.String())
	if fixed == "" || fixed == "}" {
		return
	}
	if !strings.HasPrefix(fixed, "{") {
		fixed = "{" + fixed
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(fixed), &data); nil != err {
		log.Warnw("unable to parse object", "err", err, "buffer", fixed)
		p.failures++
		return
	}
	p.emitted++
	p.latest.Set(Object{Timestamp: p.now(), Data: data})
}

func (p *DefaultParser) Latest() *Slot[Object] {
	return p.latest
}

func (p *DefaultParser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer.Reset()
	p.depth = 0
	p.synced = false
	p.lineStart = true
	p.tagging = false
	p.afterTag = false
	p.tag = nil
}

func (p *DefaultParser) Depth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.depth
}

// Stats returns the number of objects emitted and discarded so far
func (p *DefaultParser) Stats() (emitted, failures uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.emitted, p.failures
}
