package parser

import "io"

// Parser consumes a text stream in arbitrary chunks and publishes every
// complete object it finds
type Parser interface {
	io.Writer
	WriteString(chunk string) (int, error)

	// Latest holds the most recent complete object
	Latest() *Slot[Object]

	// Reset forgets any partial object, for a new connection
	Reset()
}
