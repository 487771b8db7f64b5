package scale

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/metrics"
)

// Opener connects to weight indicator devices.
type Opener interface {
	Open(path string) (io.ReadCloser, error)
	List() ([]domain.DevicePort, error)
	Simulated() bool
}

var ErrNoDevicePath = errors.New("device path is required")

const (
	// How long Switch and Close wait for the previous reader to exit.
	readerDrainTimeout = 2 * time.Second
	maxFrameSize       = 1024
)

// Adapter owns the live weight. It reads frames from one device at a time and
// notifies subscribers with every new reading; I/O failures force the weight to zero.
type Adapter struct {
	opener  Opener
	metrics *metrics.Metrics

	mu        sync.Mutex // serializes Open/Switch/Close
	path      string
	port      io.ReadCloser
	readerOut chan struct{}
	gen       atomic.Uint64
	connected atomic.Bool

	wmu    sync.RWMutex
	weight float64
	subs   []func(float64)
}

func NewAdapter(opener Opener, m *metrics.Metrics) *Adapter {
	return &Adapter{opener: opener, metrics: m}
}

// Subscribe registers fn to be called with each new weight. fn must not block.
func (a *Adapter) Subscribe(fn func(weight float64)) {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	a.subs = append(a.subs, fn)
}

// Weight returns the current reading.
func (a *Adapter) Weight() float64 {
	a.wmu.RLock()
	defer a.wmu.RUnlock()
	return a.weight
}

// Current returns the device the adapter targets.
func (a *Adapter) Current() domain.DeviceState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.DeviceState{Path: a.path, Connected: a.connected.Load(), Simulation: a.opener.Simulated()}
}

// List enumerates devices available on the host.
func (a *Adapter) List() ([]domain.DevicePort, error) {
	return a.opener.List()
}

// Open connects to path. On failure the adapter stays closed with weight zero and
// the error is returned; the host process keeps running.
func (a *Adapter) Open(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openLocked(path)
}

// Switch re-targets the adapter. The previous handle is closed and its reader has
// exited before the new device is opened, so no stale reader can deliver samples.
func (a *Adapter) Switch(ctx context.Context, path string) error {
	if path == "" {
		return ErrNoDevicePath
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openLocked(path)
}

// Close disconnects the current device.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeLocked()
}

func (a *Adapter) openLocked(path string) error {
	a.closeLocked()
	a.path = path

	logger.ExternalServiceCall("scale", "open", "device", path)
	port, err := a.opener.Open(path)
	logger.ExternalServiceResult("scale", "open", err, "device", path)
	if err != nil {
		logger.DeviceEvent(path, "open_failed", err)
		a.forceZero()
		return fmt.Errorf("could not open %s: %w", path, err)
	}

	a.port = port
	a.readerOut = make(chan struct{})
	a.setConnected(true)
	gen := a.gen.Add(1)
	go a.read(port, path, gen, a.readerOut)

	logger.DeviceEvent(path, "connected", nil)
	return nil
}

func (a *Adapter) closeLocked() {
	if a.port == nil {
		return
	}
	// Bump the generation first so the exiting reader does not report a disconnect.
	a.gen.Add(1)
	if err := a.port.Close(); err != nil {
		logger.DeviceEvent(a.path, "close_failed", err)
	}
	select {
	case <-a.readerOut:
	case <-time.After(readerDrainTimeout):
		logger.Warn("Weight device reader did not exit in time", "device", a.path)
	}
	a.port = nil
	a.readerOut = nil
	a.setConnected(false)
	logger.DeviceEvent(a.path, "closed", nil)
}

func (a *Adapter) read(port io.Reader, path string, gen uint64, out chan struct{}) {
	defer close(out)

	// Serial reads return bytes as they arrive, so samples are only parsed
	// once a whole CR/LF-terminated frame has been buffered.
	scanner := bufio.NewScanner(port)
	scanner.Buffer(make([]byte, 0, 256), 2*maxFrameSize)
	scanner.Split(scanFrames)
	for scanner.Scan() {
		if a.gen.Load() != gen {
			return
		}
		if w, ok := ParseSample(scanner.Text()); ok {
			a.metrics.WeightSample()
			a.setWeight(w)
		}
	}
	if a.gen.Load() != gen {
		return
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	logger.DeviceEvent(path, "connection_lost", err)
	a.setConnected(false)
	a.forceZero()
}

// scanFrames splits the indicator stream on CR or LF. A partial frame left at
// EOF, or a run of noise longer than maxFrameSize without a terminator, is dropped.
func scanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF || len(data) >= maxFrameSize {
		return len(data), nil, nil
	}
	return 0, nil, nil
}

func (a *Adapter) setConnected(connected bool) {
	a.connected.Store(connected)
	a.metrics.SetDeviceConnected(connected)
}

// setWeight stores w and notifies subscribers when the reading changed.
func (a *Adapter) setWeight(w float64) {
	a.wmu.Lock()
	if a.weight == w {
		a.wmu.Unlock()
		return
	}
	a.weight = w
	subs := append([]func(float64){}, a.subs...)
	a.wmu.Unlock()

	for _, fn := range subs {
		fn(w)
	}
}

// forceZero always notifies, so sessions see the no-reading state even if the last value was zero.
func (a *Adapter) forceZero() {
	a.wmu.Lock()
	a.weight = 0
	subs := append([]func(float64){}, a.subs...)
	a.wmu.Unlock()

	for _, fn := range subs {
		fn(0)
	}
}
