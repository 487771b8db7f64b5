package scale

import (
	"io"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"weighbridge-server/internal/domain"
)

// SerialOpener opens weight indicators attached to serial ports (8N1).
type SerialOpener struct {
	BaudRate int
}

func (o SerialOpener) Open(path string) (io.ReadCloser, error) {
	mode := &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(path, mode)
}

func (o SerialOpener) List() ([]domain.DevicePort, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	ports := make([]domain.DevicePort, 0, len(details))
	for _, d := range details {
		p := domain.DevicePort{
			Path:         d.Name,
			SerialNumber: d.SerialNumber,
			Description:  d.Name,
		}
		if d.IsUSB {
			p.Manufacturer = "USB " + d.VID + ":" + d.PID
			if d.Product != "" {
				p.Description = d.Product
			}
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func (o SerialOpener) Simulated() bool { return false }
