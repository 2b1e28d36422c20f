package person

import (
	"context"
	"time"

	"github.com/nerrad567/datacollector/internal/infrastructure/logging"
)

// Operation names passed to MetricsRecorder.
const (
	OpInitialize = "initialize"
	OpCreate     = "create"
	OpList       = "list"
	OpGet        = "get"
	OpUpdate     = "update"
	OpDelete     = "delete"
)

// Notifier receives committed change events. Implementations must not block;
// they run on the caller's goroutine after the write returns.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// MetricsRecorder observes every store call made through the Service.
type MetricsRecorder interface {
	RecordOperation(op string, d time.Duration, err error)
}

// Service is the write entry point for people. Every Create and Update is
// validated before the Repository sees it, and change events are fanned out
// to notifiers once the store confirms the write.
//
// Thread Safety: notifiers and recorders must be registered before the
// Service is shared between goroutines.
type Service struct {
	repo      Repository
	logger    *logging.Logger
	notifiers []Notifier
	recorders []MetricsRecorder
	now       func() time.Time
}

// NewService wraps repo.
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: logging.Discard(),
		now:    time.Now,
	}
}

// SetLogger sets the logger used for write outcomes.
func (s *Service) SetLogger(logger *logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// AddNotifier registers n for change events.
func (s *Service) AddNotifier(n Notifier) {
	if n != nil {
		s.notifiers = append(s.notifiers, n)
	}
}

// AddRecorder registers r for operation timings.
func (s *Service) AddRecorder(r MetricsRecorder) {
	if r != nil {
		s.recorders = append(s.recorders, r)
	}
}

// Initialize creates the people table if absent.
func (s *Service) Initialize(ctx context.Context) error {
	start := s.now()
	err := s.repo.Initialize(ctx)
	s.record(OpInitialize, start, err)
	return err
}

// Create validates f and stores it. On validation failure the returned error
// is a *ValidationError and the store is not called.
func (s *Service) Create(ctx context.Context, f Fields) (Person, error) {
	f = f.Normalize()
	if err := Validate(f).Err(); err != nil {
		return Person{}, err
	}

	start := s.now()
	id, err := s.repo.Create(ctx, f)
	s.record(OpCreate, start, err)
	if err != nil {
		return Person{}, err
	}

	p := Person{ID: id, Fields: f}
	s.logger.Info("person created", "id", id)
	s.emit(Event{Type: EventCreated, ID: id, Person: &p})
	return p, nil
}

// List returns every stored person ordered by id.
func (s *Service) List(ctx context.Context) ([]Person, error) {
	start := s.now()
	people, err := s.repo.List(ctx)
	s.record(OpList, start, err)
	return people, err
}

// Count returns the number of stored people. It backs the periodic gauge
// sample, so it is not reported to the recorders.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Get returns the person with the given id; ok is false when absent.
func (s *Service) Get(ctx context.Context, id int64) (Person, bool, error) {
	start := s.now()
	p, ok, err := s.repo.Get(ctx, id)
	s.record(OpGet, start, err)
	return p, ok, err
}

// Update validates f and replaces the stored fields of id. The returned
// count is 0 when no such person exists.
func (s *Service) Update(ctx context.Context, id int64, f Fields) (Person, int64, error) {
	f = f.Normalize()
	if err := Validate(f).Err(); err != nil {
		return Person{}, 0, err
	}

	start := s.now()
	n, err := s.repo.Update(ctx, id, f)
	s.record(OpUpdate, start, err)
	if err != nil {
		return Person{}, 0, err
	}

	p := Person{ID: id, Fields: f}
	if n > 0 {
		s.logger.Info("person updated", "id", id)
		s.emit(Event{Type: EventUpdated, ID: id, Person: &p})
	}
	return p, n, nil
}

// Delete removes the person with the given id. Deleting an unknown id
// returns 0 and no error.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	start := s.now()
	n, err := s.repo.Delete(ctx, id)
	s.record(OpDelete, start, err)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.Info("person deleted", "id", id)
		s.emit(Event{Type: EventDeleted, ID: id})
	}
	return n, nil
}

func (s *Service) record(op string, start time.Time, err error) {
	d := s.now().Sub(start)
	for _, r := range s.recorders {
		r.RecordOperation(op, d, err)
	}
	if err != nil {
		s.logger.Error("store operation failed", "op", op, "error", err)
	}
}

func (s *Service) emit(e Event) {
	e.Timestamp = s.now().UTC()
	for _, n := range s.notifiers {
		n.Notify(e)
	}
}
