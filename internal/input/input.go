package input

// Reader turns raw key presses into game commands until it is closed
type Reader interface {
	Open() (<-chan Command, error)
	Close() error
}
