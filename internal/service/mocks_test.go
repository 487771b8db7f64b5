package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/security"
	"weighbridge-server/internal/service"
)

// MockPendingRepo
type MockPendingRepo struct {
	mock.Mock
}

func (m *MockPendingRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockPendingRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockPendingRepo) List(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockPendingRepo) Search(ctx context.Context, token string) (*domain.Transaction, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockPendingRepo) Transition(ctx context.Context, id int64, to domain.Status, from []domain.Status, authorizedAt *time.Time) (bool, error) {
	args := m.Called(ctx, id, to, from, authorizedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockPendingRepo) AuthorizeExit(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockPendingRepo) RecordFirstWeight(ctx context.Context, id int64, grossWt, tareWt float64, image *string) (bool, error) {
	args := m.Called(ctx, id, grossWt, tareWt, image)
	return args.Bool(0), args.Error(1)
}

// MockCompletedRepo
type MockCompletedRepo struct {
	mock.Mock
}

func (m *MockCompletedRepo) Finalize(ctx context.Context, f *domain.Finalization) (*domain.CompletedRecord, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletedRecord), args.Error(1)
}
func (m *MockCompletedRepo) GetByID(ctx context.Context, id int64) (*domain.CompletedRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletedRecord), args.Error(1)
}
func (m *MockCompletedRepo) ListByDate(ctx context.Context, date string) ([]domain.CompletedRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletedRecord), args.Error(1)
}
func (m *MockCompletedRepo) Search(ctx context.Context, token string) (*domain.CompletedRecord, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletedRecord), args.Error(1)
}
func (m *MockCompletedRepo) UpdatePrintDetails(ctx context.Context, id int64, transporterName, lrNumber *string) (*domain.CompletedRecord, error) {
	args := m.Called(ctx, id, transporterName, lrNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletedRecord), args.Error(1)
}
func (m *MockCompletedRepo) DeleteByDate(ctx context.Context, date string) (int64, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(int64), args.Error(1)
}

// MockAdminRepo
type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) ResetSerials(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockAdminRepo) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockWeightSource
type MockWeightSource struct {
	mock.Mock
}

func (m *MockWeightSource) List() ([]domain.DevicePort, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DevicePort), args.Error(1)
}
func (m *MockWeightSource) Current() domain.DeviceState {
	args := m.Called()
	return args.Get(0).(domain.DeviceState)
}
func (m *MockWeightSource) Switch(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// staticChecker accepts exactly one secret without hashing.
type staticChecker string

func (c staticChecker) Check(candidate string) error {
	if candidate != string(c) {
		return security.ErrInvalidSecret
	}
	return nil
}

type permit struct {
	ID   int64
	Exit bool
}

type completedUpdate struct {
	Date    string
	Records []domain.CompletedRecord
}

// recordingNotifier captures every broadcast in order.
type recordingNotifier struct {
	mu        sync.Mutex
	pending   [][]domain.Transaction
	completed []completedUpdate
	alerts    []string
	permits   []permit
	ports     []service.PortChange
}

func (n *recordingNotifier) PendingListChanged(pending []domain.Transaction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, pending)
}
func (n *recordingNotifier) CompletedListChanged(date string, records []domain.CompletedRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, completedUpdate{Date: date, Records: records})
}
func (n *recordingNotifier) GateAlert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, message)
}
func (n *recordingNotifier) PermitAlert(id int64, exit bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.permits = append(n.permits, permit{ID: id, Exit: exit})
}
func (n *recordingNotifier) PortChanged(result service.PortChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ports = append(n.ports, result)
}
