package ws_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/service"
)

// MockWeighmentService
type MockWeighmentService struct {
	mock.Mock
}

func (m *MockWeighmentService) RegisterGateEntry(ctx context.Context, entry service.GateEntry) (*domain.Transaction, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockWeighmentService) AuthorizeEntry(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockWeighmentService) AuthorizeExit(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockWeighmentService) ConfirmOnScale(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockWeighmentService) CaptureFirstWeight(ctx context.Context, capture service.FirstCapture) error {
	return m.Called(ctx, capture).Error(0)
}
func (m *MockWeighmentService) CaptureSecondWeight(ctx context.Context, capture service.SecondCapture) (*domain.CompletedRecord, error) {
	args := m.Called(ctx, capture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletedRecord), args.Error(1)
}
func (m *MockWeighmentService) UpdatePrintDetails(ctx context.Context, id int64, transporterName, lrNumber *string) error {
	return m.Called(ctx, id, transporterName, lrNumber).Error(0)
}
func (m *MockWeighmentService) SearchBySerial(ctx context.Context, token string) (domain.SearchResult, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.SearchResult), args.Error(1)
}
func (m *MockWeighmentService) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockWeighmentService) ListCompleted(ctx context.Context, date string) ([]domain.CompletedRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletedRecord), args.Error(1)
}
func (m *MockWeighmentService) PublishCompleted(ctx context.Context, date string) error {
	return m.Called(ctx, date).Error(0)
}
func (m *MockWeighmentService) DeleteCompletedForDate(ctx context.Context, date string) (int64, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockWeighmentService) Today() string {
	return m.Called().String(0)
}

// MockAdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) CheckLogin(password string) error {
	return m.Called(password).Error(0)
}
func (m *MockAdminService) ExecuteAction(ctx context.Context, password, action string) service.AdminResult {
	return m.Called(ctx, password, action).Get(0).(service.AdminResult)
}
func (m *MockAdminService) ResetSerials(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixedWeight float64

func (w fixedWeight) Weight() float64 { return float64(w) }
