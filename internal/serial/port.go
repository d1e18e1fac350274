package serial

import (
	"fmt"
	"io"
	"slices"

	bugst "go.bug.st/serial"
)

const DefaultBaudRate = 115200

// BaudRates the terminal offers
var BaudRates = []int{9600, 19200, 38400, 57600, 115200}

type Port interface {
	io.ReadWriteCloser
}

// Opener opens a port by name at a baud rate
type Opener func(name string, baud int) (Port, error)

// OpenDevice opens a local serial device, 8N1
func OpenDevice(name string, baud int) (Port, error) {
	port, err := bugst.Open(name, &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if nil != err {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return port, nil
}

// Ports lists the serial devices present
func Ports() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if nil != err {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	return ports, nil
}

func validBaudRate(baud int) bool {
	return slices.Contains(BaudRates, baud)
}
