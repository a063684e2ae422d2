package reading

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/astroml/internal/domain/chart"
	"github.com/yanqian/astroml/internal/domain/prompt"
	apperrors "github.com/yanqian/astroml/pkg/errors"
)

// Service exposes reading sessions to transports.
type Service interface {
	Start(ctx context.Context) (Snapshot, error)
	Get(ctx context.Context, id string) (Snapshot, error)
	Submit(ctx context.Context, id string, in BirthInput) (Snapshot, error)
	RequestDailyHoroscope(ctx context.Context, id string) (Snapshot, error)
	Reset(ctx context.Context, id string) (Snapshot, error)
	Export(ctx context.Context, id string) (Export, error)
	End(ctx context.Context, id string) error
	ComputeChart(ctx context.Context, req ChartRequest) (ChartResponse, error)
}

// SessionStore keeps live workflows keyed by session id.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Workflow, bool, error)
	Save(ctx context.Context, wf *Workflow) error
	Delete(ctx context.Context, id string) error
}

type service struct {
	cfg    Config
	gen    Generator
	store  SessionStore
	base   *slog.Logger
	logger *slog.Logger
	newID  func() string
}

// NewService wires up the reading domain.
func NewService(cfg Config, gen Generator, store SessionStore, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		gen:    gen,
		store:  store,
		base:   logger,
		logger: logger.With("component", "reading.service"),
		newID:  func() string { return uuid.NewString() },
	}
}

func (s *service) Start(ctx context.Context) (Snapshot, error) {
	wf := NewWorkflow(s.newID(), s.cfg, s.gen, s.base)
	if err := s.store.Save(ctx, wf); err != nil {
		return Snapshot{}, apperrors.Wrap("session_error", "failed to start reading session", err)
	}
	s.logger.Info("reading session started", "session", wf.ID())
	return wf.Snapshot(), nil
}

func (s *service) Get(ctx context.Context, id string) (Snapshot, error) {
	wf, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return wf.Snapshot(), nil
}

func (s *service) Submit(ctx context.Context, id string, in BirthInput) (Snapshot, error) {
	wf, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := wf.Submit(ctx, in); err != nil {
		return Snapshot{}, err
	}
	return s.touch(ctx, wf), nil
}

func (s *service) RequestDailyHoroscope(ctx context.Context, id string) (Snapshot, error) {
	wf, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := wf.RequestDailyHoroscope(ctx); err != nil {
		return Snapshot{}, err
	}
	return s.touch(ctx, wf), nil
}

func (s *service) Reset(ctx context.Context, id string) (Snapshot, error) {
	wf, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := wf.Reset(); err != nil {
		return Snapshot{}, err
	}
	s.logger.Info("reading session reset", "session", id)
	return s.touch(ctx, wf), nil
}

func (s *service) Export(ctx context.Context, id string) (Export, error) {
	wf, err := s.load(ctx, id)
	if err != nil {
		return Export{}, err
	}
	return wf.Export()
}

// End discards the session entirely. Sessions with work in flight are kept.
func (s *service) End(ctx context.Context, id string) error {
	wf, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := wf.Reset(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, wf.ID()); err != nil {
		return apperrors.Wrap("session_error", "failed to end reading session", err)
	}
	s.logger.Info("reading session ended", "session", wf.ID())
	return nil
}

// ComputeChart only needs a date and time; location is optional here.
func (s *service) ComputeChart(_ context.Context, req ChartRequest) (ChartResponse, error) {
	if strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" {
		return ChartResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date and time are required", nil)
	}
	at, err := chart.ParseMoment(req.Date, req.Time)
	if err != nil {
		return ChartResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be YYYY-MM-DD and time HH:MM", err)
	}
	c := chart.Compute(at)
	return ChartResponse{DayOfYear: chart.DayOfYear(at), Chart: c, Summary: prompt.Summarize(c)}, nil
}

func (s *service) load(ctx context.Context, id string) (*Workflow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "reading session not found", nil)
	}
	wf, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("session_error", "failed to load reading session", err)
	}
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "reading session not found", nil)
	}
	return wf, nil
}

// touch refreshes the session expiry and returns the current snapshot.
func (s *service) touch(ctx context.Context, wf *Workflow) Snapshot {
	if err := s.store.Save(ctx, wf); err != nil {
		s.logger.Warn("failed to refresh reading session", "session", wf.ID(), "error", err)
	}
	return wf.Snapshot()
}
