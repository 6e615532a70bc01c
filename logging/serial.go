package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// OpenSerial opens the serial device at the given baud rate, for use as a
// log output alongside or instead of the console.
func OpenSerial(device string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", device, err)
	}
	return port, nil
}
