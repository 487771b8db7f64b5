package service

import (
	"context"
	"errors"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/scale"
)

// WeightSource is the part of scale.Adapter the device service drives.
type WeightSource interface {
	List() ([]domain.DevicePort, error)
	Current() domain.DeviceState
	Switch(ctx context.Context, path string) error
}

type deviceService struct {
	source   WeightSource
	notifier Notifier
}

func NewDeviceService(source WeightSource, notifier Notifier) DeviceService {
	return &deviceService{source: source, notifier: notifier}
}

func (s *deviceService) ListDevices() ([]domain.DevicePort, domain.DeviceState, error) {
	ports, err := s.source.List()
	if err != nil {
		return nil, s.source.Current(), err
	}
	return ports, s.source.Current(), nil
}

// SwitchDevice re-targets the weight source and broadcasts the outcome to every session.
func (s *deviceService) SwitchDevice(ctx context.Context, path string) PortChange {
	var result PortChange
	err := s.source.Switch(ctx, path)
	switch {
	case errors.Is(err, scale.ErrNoDevicePath):
		// Nothing was touched, so there is nothing to broadcast.
		return PortChange{Success: false, Error: "Port is required"}
	case err != nil:
		logger.Warn("Weight device switch failed", "device", path, "error", err)
		result = PortChange{Success: false, Port: path, Error: err.Error()}
	default:
		logger.Info("Weight device switched", "device", path)
		result = PortChange{Success: true, Port: path}
	}

	s.notifier.PortChanged(result)
	return result
}
