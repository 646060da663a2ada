package engine

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Line command characters of the DLP-IO8-G: digits raise a line, the
// matching letter lowers it.
const (
	dlpSetLines   = "12345678"
	dlpUnsetLines = "QWERTYUI"
)

// DLPIO8G drives the eight digital lines of a DLP-IO8-G over its virtual
// serial port. The lines carry the 8-bit DAC code of each Level.
type DLPIO8G struct {
	port io.ReadWriteCloser
	last int
}

func NewDLPIO8G(device string, baudrate int) (*DLPIO8G, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, err
	}

	d, err := newDLP(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

func newDLP(port io.ReadWriteCloser) (*DLPIO8G, error) {
	d := &DLPIO8G{port: port, last: -1}
	if !d.Ping() {
		return nil, fmt.Errorf("device did not respond to ping correctly")
	}

	// Binary mode
	if _, err := port.Write([]byte{0x5C}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DLPIO8G) Close() error {
	if d.port != nil {
		return d.port.Close()
	}
	return nil
}

func (d *DLPIO8G) Ping() bool {
	if _, err := d.port.Write([]byte{0x27}); err != nil {
		return false
	}

	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	return err == nil && n == 1 && buf[0] == 'Q'
}

// Write puts the DAC code of l on lines 1..8, bit 0 on line 1. Repeating
// the current level sends nothing.
func (d *DLPIO8G) Write(l Level) error {
	bits := int(l.DACBits())
	if bits == d.last {
		return nil
	}
	cmd := dlpCommand(uint8(bits))
	if _, err := d.port.Write(cmd); err != nil {
		return fmt.Errorf("dlp write: %w", err)
	}
	d.last = bits
	return nil
}

func dlpCommand(bits uint8) []byte {
	cmd := make([]byte, 8)
	for i := 0; i < 8; i++ {
		if bits&(1<<i) != 0 {
			cmd[i] = dlpSetLines[i]
		} else {
			cmd[i] = dlpUnsetLines[i]
		}
	}
	return cmd
}
