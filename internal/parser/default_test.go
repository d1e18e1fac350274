package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/lanes/internal/testdata"
)

func latest(t *testing.T, p *DefaultParser) map[string]any {
	t.Helper()
	obj, ok := p.Latest().Get()
	if !ok {
		t.Fatal("no object emitted")
	}
	return obj.Data
}

func TestSplitObject(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`{"a":1`)
	if p.Depth() != 1 {
		t.Fatalf("depth %v after the first chunk", p.Depth())
	}
	if _, ok := p.Latest().Get(); ok {
		t.Fatal("emitted before the object closed")
	}
	p.WriteString(`,"b":2}`)

	data := latest(t, p)
	if len(data) != 2 || data["a"] != 1.0 || data["b"] != 2.0 {
		t.Errorf("unexpected object %v", data)
	}
	if p.Depth() != 0 {
		t.Errorf("depth %v after the object closed", p.Depth())
	}
	if emitted, _ := p.Stats(); emitted != 1 {
		t.Errorf("emitted %v objects", emitted)
	}
}

func TestTagStripped(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`[meta] {"x":5}`)
	data := latest(t, p)
	if len(data) != 1 || data["x"] != 5.0 {
		t.Errorf("unexpected object %v", data)
	}
}

func TestTagsPerLine(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString("[INFO] {\"a\":[1,2]}\r\n[WARN] {\"b\":[3]}\n")
	data := latest(t, p)
	list, ok := data["b"].([]any)
	if !ok || len(list) != 1 || list[0] != 3.0 {
		t.Errorf("array inside the object was mangled: %v", data)
	}
}

func TestContinuedChunkKeepsArrays(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`{"a":`)
	p.WriteString(`[1,2],"b":3}`)
	data := latest(t, p)
	if list, ok := data["a"].([]any); !ok || len(list) != 2 {
		t.Errorf("unexpected object %v", data)
	}
}

func TestHeadlessObject(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`"y":9}`)
	data := latest(t, p)
	if len(data) != 1 || data["y"] != 9.0 {
		t.Errorf("unexpected object %v", data)
	}

	// Once synchronised the same input is just a stray close
	p.Latest().Clear()
	p.WriteString(`"y":9}`)
	if _, ok := p.Latest().Get(); ok {
		t.Error("headless object accepted after synchronising")
	}
	if p.Depth() != 0 {
		t.Errorf("depth %v after a stray close", p.Depth())
	}

	// A new connection starts unsynchronised again
	p.Reset()
	p.WriteString(`"z":1}`)
	if data := latest(t, p); data["z"] != 1.0 {
		t.Errorf("unexpected object %v after reset", data)
	}
}

func TestHeadlessNoiseDiscarded(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString("booting...\r\n{\"ok\":true}")
	data := latest(t, p)
	if len(data) != 1 || data["ok"] != true {
		t.Errorf("unexpected object %v", data)
	}
	if _, failures := p.Stats(); failures != 0 {
		t.Errorf("%v failures", failures)
	}
}

func TestNestedObject(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`{"pos":{"x":1,"y":{"z":2}},"n":3}`)
	data := latest(t, p)
	pos, ok := data["pos"].(map[string]any)
	if !ok || pos["x"] != 1.0 || data["n"] != 3.0 {
		t.Errorf("unexpected object %v", data)
	}
	if emitted, _ := p.Stats(); emitted != 1 {
		t.Errorf("nested objects emitted %v times", emitted)
	}
}

func TestMalformedObject(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`{"a":1,,}`)
	if _, ok := p.Latest().Get(); ok {
		t.Fatal("malformed object emitted")
	}
	p.WriteString(`{"a":2}`)
	if data := latest(t, p); data["a"] != 2.0 {
		t.Errorf("unexpected object %v", data)
	}
	emitted, failures := p.Stats()
	if emitted != 1 || failures != 1 {
		t.Errorf("emitted %v failures %v", emitted, failures)
	}
}

func TestLatestOverwrites(t *testing.T) {
	p := NewDefaultParser()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	p.WriteString(`{"n":1} junk {"n":2}`)
	obj, ok := p.Latest().Get()
	if !ok || obj.Data["n"] != 2.0 || !obj.Timestamp.Equal(at) {
		t.Errorf("latest %+v", obj)
	}
}

func TestStrayClosesNeverNegative(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`{}}}}`)
	if p.Depth() != 0 {
		t.Fatalf("depth %v", p.Depth())
	}
	p.WriteString(`{"a":1}`)
	if data := latest(t, p); data["a"] != 1.0 {
		t.Errorf("unexpected object %v", data)
	}
}

func TestOversizedObject(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString(`{"big":"` + strings.Repeat("a", MaxBuffer+1) + `"}`)
	if _, ok := p.Latest().Get(); ok {
		t.Fatal("oversized object emitted")
	}
	if p.Depth() != 0 {
		t.Fatalf("depth %v after overflow", p.Depth())
	}
	p.WriteString(`{"small":1}`)
	if data := latest(t, p); data["small"] != 1.0 {
		t.Errorf("unexpected object %v", data)
	}
}

func TestWriter(t *testing.T) {
	p := NewDefaultParser()
	n, err := fmt.Fprintf(p, `{"v":%d}`, 7)
	if nil != err || n != 7 {
		t.Fatalf("wrote %v, %v", n, err)
	}
	if data := latest(t, p); data["v"] != 7.0 {
		t.Errorf("unexpected object %v", data)
	}
}

func TestStreamAnyChunking(t *testing.T) {
	for size := 1; size <= len(testdata.Stream); size++ {
		p := NewDefaultParser()
		for _, chunk := range testdata.Chunks(testdata.Stream, size) {
			p.WriteString(chunk)
		}
		emitted, failures := p.Stats()
		if emitted != testdata.StreamObjects || failures != 1 {
			t.Fatalf("chunk size %v: emitted %v failures %v", size, emitted, failures)
		}
		if data := latest(t, p); data["temp"] != testdata.StreamLast {
			t.Fatalf("chunk size %v: latest %v", size, data)
		}
		if p.Depth() != 0 {
			t.Fatalf("chunk size %v: depth %v", size, p.Depth())
		}
	}
}

func TestArrayOpensLineInsideObject(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString("{\"a\":1}\n")
	p.WriteString("{\"list\":\n[1,2],\"b\":3}\n")

	data := latest(t, p)
	if list, ok := data["list"].([]any); !ok || len(list) != 2 || data["b"] != 3.0 {
		t.Errorf("unexpected object %v", data)
	}
	emitted, failures := p.Stats()
	if emitted != 2 || failures != 0 {
		t.Errorf("emitted %v failures %v", emitted, failures)
	}
}

func TestPrettyPrintedObject(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString("[DATA] {\n  \"samples\": [\n    [1, 2],\n    [3, 4]\n  ]\n}\n")
	data := latest(t, p)
	samples, ok := data["samples"].([]any)
	if !ok || len(samples) != 2 {
		t.Errorf("unexpected object %v", data)
	}
}

func TestTagSplitAcrossChunks(t *testing.T) {
	p := NewDefaultParser()
	for _, chunk := range []string{"[IN", "FO]", "  {\"x\"", ":5}\n"} {
		p.WriteString(chunk)
	}
	if data := latest(t, p); data["x"] != 5.0 {
		t.Errorf("unexpected object %v", data)
	}
	if _, failures := p.Stats(); failures != 0 {
		t.Errorf("%v failures", failures)
	}
}

func TestUnclosedTagIsText(t *testing.T) {
	p := NewDefaultParser()
	p.WriteString("[no close\r\n{\"x\":1}\n[also {\"y\":2}\n")
	if data := latest(t, p); data["y"] != 2.0 {
		t.Errorf("unexpected object %v", data)
	}
	if emitted, failures := p.Stats(); emitted != 2 || failures != 0 {
		t.Errorf("emitted %v failures %v", emitted, failures)
	}
}
