package service

import (
	"context"

	"weighbridge-server/internal/domain"
)

// GateEntry is the operator input for a vehicle arriving at the gate.
type GateEntry struct {
	VehicleNumber string
	PartyName     string
	Item          string
	Kind          string
}

// FirstCapture is the first weighment of an in-flight transaction.
type FirstCapture struct {
	ID        int64
	GrossWt   float64
	TareWt    float64
	ImageData string // data URI, optional
}

// SecondCapture finalizes an in-flight transaction.
type SecondCapture struct {
	ID              int64
	GrossWt         float64
	TareWt          float64
	ImageData       string // data URI, optional
	TransporterName *string
	LRNumber        *string
}

// AdminResult is returned to the requesting session only.
type AdminResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PortChange is the outcome of a device switch, broadcast to every session.
type PortChange struct {
	Success bool   `json:"success"`
	Port    string `json:"port,omitempty"`
	Error   string `json:"error,omitempty"`
}

type WeighmentService interface {
	RegisterGateEntry(ctx context.Context, entry GateEntry) (*domain.Transaction, error)
	AuthorizeEntry(ctx context.Context, id int64) error
	AuthorizeExit(ctx context.Context, id int64) error
	ConfirmOnScale(ctx context.Context, id int64) error
	CaptureFirstWeight(ctx context.Context, capture FirstCapture) error
	CaptureSecondWeight(ctx context.Context, capture SecondCapture) (*domain.CompletedRecord, error)
	UpdatePrintDetails(ctx context.Context, id int64, transporterName, lrNumber *string) error
	SearchBySerial(ctx context.Context, token string) (domain.SearchResult, error)

	ListPending(ctx context.Context) ([]domain.Transaction, error)
	ListCompleted(ctx context.Context, date string) ([]domain.CompletedRecord, error)
	PublishCompleted(ctx context.Context, date string) error
	DeleteCompletedForDate(ctx context.Context, date string) (int64, error)
	Today() string
}

type AdminService interface {
	CheckLogin(password string) error
	ExecuteAction(ctx context.Context, password, action string) AdminResult
	ResetSerials(ctx context.Context) error
}

type DeviceService interface {
	ListDevices() ([]domain.DevicePort, domain.DeviceState, error)
	SwitchDevice(ctx context.Context, path string) PortChange
}

// Notifier receives every state change that must reach connected sessions.
// Implementations must not block.
type Notifier interface {
	PendingListChanged(pending []domain.Transaction)
	CompletedListChanged(date string, records []domain.CompletedRecord)
	GateAlert(message string)
	PermitAlert(id int64, exit bool)
	PortChanged(result PortChange)
}
