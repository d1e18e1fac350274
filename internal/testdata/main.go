package testdata

// Stream is a capture of a sensor board talking over UART: log lines with
// bracketed tags, objects split over writes and a corrupt object
const Stream = "[BOOT] sensor v1.3\r\n" +
	"[INFO] {\"temp\":21.5,\"hum\":40}\r\n" +
	"noise between objects\r\n" +
	"[12:00:01] {\"temp\":21.6,\"hum\":41,\"pos\":{\"x\":1,\"y\":2}}\r\n" +
	"{\"temp\":21.7,\"hum\"::41}\r\n" +
	"{\"temp\":21.8,\"hum\":42,\"label\":\"käfer\"}\r\n"

// StreamObjects is the number of objects in Stream that parse
const StreamObjects = 3

// StreamLast is the temp of the last object in Stream
const StreamLast = 21.8

// Chunks splits s every size bytes, without regard for runes or tags
func Chunks(s string, size int) []string {
	chunks := []string{}
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}
