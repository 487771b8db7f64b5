package scale

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"weighbridge-server/internal/domain"
)

// SimulatedPath is the only device a SimulatedOpener can open.
const SimulatedPath = "SIMULATED"

// SimulatedOpener produces indicator-style frames ("  18500kg\r\n") without hardware.
// The reading drifts between empty and loaded truck weights.
type SimulatedOpener struct {
	Interval time.Duration
}

func (o SimulatedOpener) Open(path string) (io.ReadCloser, error) {
	if path != SimulatedPath {
		return nil, fmt.Errorf("simulated device %q not found", path)
	}
	interval := o.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return newSimulatedPort(interval), nil
}

func (o SimulatedOpener) List() ([]domain.DevicePort, error) {
	return []domain.DevicePort{{
		Path:         SimulatedPath,
		Manufacturer: "simulator",
		Description:  "Simulated weight indicator",
	}}, nil
}

func (o SimulatedOpener) Simulated() bool { return true }

type simulatedPort struct {
	ticker  *time.Ticker
	closed  chan struct{}
	once    sync.Once
	current float64
}

func newSimulatedPort(interval time.Duration) *simulatedPort {
	return &simulatedPort{
		ticker:  time.NewTicker(interval),
		closed:  make(chan struct{}),
		current: 7000,
	}
}

func (p *simulatedPort) Read(b []byte) (int, error) {
	select {
	case <-p.closed:
		return 0, errors.New("port closed")
	case <-p.ticker.C:
	}

	p.current += float64(rand.Intn(401) - 200)
	if p.current < 0 {
		p.current = 0
	}
	if p.current > 40000 {
		p.current = 40000
	}
	return copy(b, fmt.Sprintf("  %.0fkg\r\n", p.current)), nil
}

func (p *simulatedPort) Close() error {
	p.once.Do(func() {
		p.ticker.Stop()
		close(p.closed)
	})
	return nil
}
