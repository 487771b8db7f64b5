package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/metrics"
	"weighbridge-server/internal/repository"
	"weighbridge-server/internal/storage"
)

type Option func(*weighmentService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *weighmentService) { s.now = now }
}

// WithLocation sets the timezone that defines the finalized-date partition.
func WithLocation(loc *time.Location) Option {
	return func(s *weighmentService) { s.loc = loc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *weighmentService) { s.metrics = m }
}

// WithSnapshots shares list publication with other services writing the same stores.
func WithSnapshots(snapshots *Snapshots) Option {
	return func(s *weighmentService) { s.snapshots = snapshots }
}

type weighmentService struct {
	pendingRepo   repository.PendingRepository
	completedRepo repository.CompletedRepository
	images        storage.ImageStore
	notifier      Notifier
	snapshots     *Snapshots
	metrics       *metrics.Metrics
	now           func() time.Time
	loc           *time.Location
}

func NewWeighmentService(
	pendingRepo repository.PendingRepository,
	completedRepo repository.CompletedRepository,
	images storage.ImageStore,
	notifier Notifier,
	opts ...Option,
) WeighmentService {
	s := &weighmentService{
		pendingRepo:   pendingRepo,
		completedRepo: completedRepo,
		images:        images,
		notifier:      notifier,
		now:           time.Now,
		loc:           time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.snapshots == nil {
		s.snapshots = NewSnapshots(pendingRepo, completedRepo, notifier)
	}
	return s
}

func (s *weighmentService) Today() string {
	return domain.DayKey(s.now(), s.loc)
}

func (s *weighmentService) RegisterGateEntry(ctx context.Context, entry GateEntry) (*domain.Transaction, error) {
	vehicle := strings.TrimSpace(entry.VehicleNumber)
	party := strings.TrimSpace(entry.PartyName)
	if vehicle == "" || party == "" {
		return nil, fmt.Errorf("%w: vehicle number and party name are required", domain.ErrInvalidInput)
	}

	tx := &domain.Transaction{
		VehicleNumber: vehicle,
		PartyName:     party,
		Item:          strings.TrimSpace(entry.Item),
		Kind:          domain.NormalizeKind(entry.Kind),
		Status:        domain.StatusAtGate,
		CreatedAt:     s.now(),
	}
	if err := s.pendingRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to register gate entry: %w", err)
	}

	logger.WithTransaction(tx.ID).Info("Vehicle registered at gate", "vehicle", tx.VehicleNumber, "kind", tx.Kind)
	s.publishPending(ctx)
	s.notifier.GateAlert(fmt.Sprintf("New Vehicle at Gate: %s", tx.VehicleNumber))
	return tx, nil
}

// AuthorizeEntry only moves a transaction forward from AT_GATE.
func (s *weighmentService) AuthorizeEntry(ctx context.Context, id int64) error {
	at := s.now()
	applied, err := s.pendingRepo.Transition(ctx, id, domain.StatusAuthorized, domain.StatusesBefore(domain.StatusAuthorized), &at)
	if err != nil {
		return fmt.Errorf("failed to authorize entry: %w", err)
	}
	if !applied {
		return s.skipped(ctx, id, domain.StatusAuthorized)
	}

	logger.WithTransaction(id).Info("Entry authorized")
	s.publishPending(ctx)
	s.notifier.PermitAlert(id, false)
	return nil
}

// AuthorizeExit sets the exit marker from any status, including vehicles turned away at the gate.
func (s *weighmentService) AuthorizeExit(ctx context.Context, id int64) error {
	applied, err := s.pendingRepo.AuthorizeExit(ctx, id, s.now())
	if err != nil {
		return fmt.Errorf("failed to authorize exit: %w", err)
	}
	if !applied {
		return domain.ErrNotFound
	}

	logger.WithTransaction(id).Info("Exit authorized")
	s.publishPending(ctx)
	s.notifier.PermitAlert(id, true)
	return nil
}

func (s *weighmentService) ConfirmOnScale(ctx context.Context, id int64) error {
	applied, err := s.pendingRepo.Transition(ctx, id, domain.StatusOnScale, domain.StatusesBefore(domain.StatusOnScale), nil)
	if err != nil {
		return fmt.Errorf("failed to confirm vehicle on scale: %w", err)
	}
	if !applied {
		return s.skipped(ctx, id, domain.StatusOnScale)
	}

	logger.WithTransaction(id).Info("Vehicle on scale")
	s.publishPending(ctx)
	return nil
}

// CaptureFirstWeight may be repeated; the latest capture wins.
func (s *weighmentService) CaptureFirstWeight(ctx context.Context, c FirstCapture) error {
	image, err := s.storeImage(ctx, fmt.Sprintf("1st_%d", c.ID), c.ImageData)
	if err != nil {
		return err
	}

	applied, err := s.pendingRepo.RecordFirstWeight(ctx, c.ID, c.GrossWt, c.TareWt, image)
	if err != nil || !applied {
		s.discardImage(ctx, image)
	}
	if err != nil {
		return fmt.Errorf("failed to record first weight: %w", err)
	}
	if !applied {
		return domain.ErrNotFound
	}

	logger.WithTransaction(c.ID).Info("First weight captured", "gross_wt", c.GrossWt, "tare_wt", c.TareWt)
	s.publishPending(ctx)
	return nil
}

// CaptureSecondWeight finalizes the transaction from any status. Net weight is always
// recomputed here. When two captures race, the ledger lets exactly one through and the
// loser gets domain.ErrNotFound.
func (s *weighmentService) CaptureSecondWeight(ctx context.Context, c SecondCapture) (*domain.CompletedRecord, error) {
	if _, err := s.pendingRepo.GetByID(ctx, c.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.Finalization("not_found")
		}
		return nil, err
	}

	image, err := s.storeImage(ctx, fmt.Sprintf("2nd_%d", c.ID), c.ImageData)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec, err := s.completedRepo.Finalize(ctx, &domain.Finalization{
		ID:              c.ID,
		GrossWt:         c.GrossWt,
		TareWt:          c.TareWt,
		NetWt:           domain.NetWeight(c.GrossWt, c.TareWt),
		Image2:          image,
		Date:            domain.DayKey(now, s.loc),
		CompletedAt:     now,
		TransporterName: blankToNil(c.TransporterName),
		LRNumber:        blankToNil(c.LRNumber),
	})
	if err != nil {
		s.discardImage(ctx, image)
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.Finalization("not_found")
			return nil, err
		}
		s.metrics.Finalization("error")
		logger.WithTransaction(c.ID).Error("Finalization rolled back", "error", err)
		return nil, fmt.Errorf("failed to finalize transaction %d: %w", c.ID, err)
	}

	s.metrics.Finalization("finalized")
	logger.WithTransaction(rec.ID).Info("Transaction finalized", "net_wt", rec.NetWt, "date", rec.Date)
	s.publishPending(ctx)
	s.publishCompleted(ctx, rec.Date)
	return rec, nil
}

// UpdatePrintDetails skips the write and the broadcast when nothing changed.
func (s *weighmentService) UpdatePrintDetails(ctx context.Context, id int64, transporterName, lrNumber *string) error {
	transporterName, lrNumber = blankToNil(transporterName), blankToNil(lrNumber)

	current, err := s.completedRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to load finalized record: %w", err)
	}
	if sameText(current.TransporterName, transporterName) && sameText(current.LRNumber, lrNumber) {
		logger.WithTransaction(id).Debug("Print details unchanged")
		return nil
	}

	rec, err := s.completedRepo.UpdatePrintDetails(ctx, id, transporterName, lrNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update print details: %w", err)
	}

	logger.WithTransaction(id).Info("Print details updated")
	s.publishCompleted(ctx, rec.Date)
	return nil
}

// SearchBySerial checks the in-flight store first, then the finalized store.
func (s *weighmentService) SearchBySerial(ctx context.Context, token string) (domain.SearchResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.SearchResult{}, nil
	}

	pending, err := s.pendingRepo.Search(ctx, token)
	if err == nil {
		return domain.SearchResult{Pending: pending}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SearchResult{}, fmt.Errorf("failed to search in-flight transactions: %w", err)
	}

	completed, err := s.completedRepo.Search(ctx, token)
	if err == nil {
		return domain.SearchResult{Completed: completed}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SearchResult{}, fmt.Errorf("failed to search finalized records: %w", err)
	}
	return domain.SearchResult{}, nil
}

func (s *weighmentService) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	return s.pendingRepo.List(ctx)
}

func (s *weighmentService) ListCompleted(ctx context.Context, date string) ([]domain.CompletedRecord, error) {
	day, err := domain.ParseDayKey(date)
	if err != nil {
		return nil, err
	}
	return s.completedRepo.ListByDate(ctx, day)
}

// PublishCompleted broadcasts the finalized list of date to every session.
func (s *weighmentService) PublishCompleted(ctx context.Context, date string) error {
	day, err := domain.ParseDayKey(date)
	if err != nil {
		return err
	}
	return s.snapshots.PublishCompleted(ctx, day)
}

func (s *weighmentService) DeleteCompletedForDate(ctx context.Context, date string) (int64, error) {
	day, err := domain.ParseDayKey(date)
	if err != nil {
		return 0, err
	}
	deleted, err := s.completedRepo.DeleteByDate(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to delete finalized records: %w", err)
	}

	logger.Warn("Finalized records deleted", "date", day, "count", deleted)
	s.publishCompleted(ctx, day)
	return deleted, nil
}

// skipped distinguishes an unknown id from a transition that would move backwards.
func (s *weighmentService) skipped(ctx context.Context, id int64, to domain.Status) error {
	tx, err := s.pendingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	logger.WithTransaction(id).Debug("Transition skipped", "from", tx.Status, "to", to)
	return nil
}

func (s *weighmentService) storeImage(ctx context.Context, prefix, dataURI string) (*string, error) {
	if dataURI == "" {
		return nil, nil
	}
	contentType, data, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	name, err := s.images.Save(ctx, prefix, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return &name, nil
}

func (s *weighmentService) discardImage(ctx context.Context, image *string) {
	if image == nil {
		return
	}
	if err := s.images.Delete(ctx, *image); err != nil {
		logger.Warn("Failed to remove orphaned image", "image", *image, "error", err)
	}
}

func (s *weighmentService) publishPending(ctx context.Context) {
	if err := s.snapshots.PublishPending(ctx); err != nil {
		logger.Error("Failed to load in-flight list for broadcast", "error", err)
	}
}

func (s *weighmentService) publishCompleted(ctx context.Context, date string) {
	if err := s.snapshots.PublishCompleted(ctx, date); err != nil {
		logger.Error("Failed to load finalized list for broadcast", "date", date, "error", err)
	}
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
