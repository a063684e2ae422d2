package reading

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yanqian/astroml/internal/domain/chart"
	"github.com/yanqian/astroml/internal/domain/generation"
	"github.com/yanqian/astroml/internal/domain/prompt"
	apperrors "github.com/yanqian/astroml/pkg/errors"
	"github.com/yanqian/astroml/pkg/util"
)

const defaultTransitClock = "12:00"

// state is the closed set of workflow variants.
type state interface {
	phase() Phase
}

type inputState struct{}

type processingState struct {
	input BirthInput
	natal chart.Chart
}

type resultState struct {
	reading   Reading
	daily     *DailyHoroscope
	dailyBusy bool
}

func (inputState) phase() Phase      { return PhaseInput }
func (processingState) phase() Phase { return PhaseProcessing }
func (resultState) phase() Phase     { return PhaseResult }

// Workflow sequences input capture, chart computation, generation and result
// for one session. The mutex is never held across a generation call.
type Workflow struct {
	id     string
	cfg    Config
	gen    Generator
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state state
}

// NewWorkflow starts a workflow in the input phase.
func NewWorkflow(id string, cfg Config, gen Generator, logger *slog.Logger) *Workflow {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if strings.TrimSpace(cfg.TransitClock) == "" {
		cfg.TransitClock = defaultTransitClock
	}
	return &Workflow{
		id:     id,
		cfg:    cfg,
		gen:    gen,
		logger: logger.With("component", "reading.workflow", "session", id),
		now:    util.NowUTC,
		state:  inputState{},
	}
}

// ID returns the session identifier.
func (w *Workflow) ID() string {
	return w.id
}

// Phase reports the active phase.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.phase()
}

// Submit validates in, computes the natal chart and settles the natal reading.
// It always leaves the workflow in the result phase once input is accepted.
func (w *Workflow) Submit(ctx context.Context, in BirthInput) error {
	w.mu.Lock()
	if _, ok := w.state.(inputState); !ok {
		current := w.state.phase()
		w.mu.Unlock()
		return apperrors.Wrap(apperrors.CodeInvalidState, "reading already submitted (phase "+string(current)+")", nil)
	}
	at, err := validateBirthInput(in)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	natal := chart.Compute(at)
	w.state = processingState{input: in, natal: natal}
	w.mu.Unlock()

	w.logger.Info("reading processing", "date", in.Date, "time", in.Time)
	start := time.Now()
	res := w.gen.Generate(ctx, prompt.BuildNatal(natal), generation.NatalFallback)
	if err := util.WaitAtLeast(ctx, start, w.cfg.ProcessingDwell); err != nil {
		w.logger.Debug("processing dwell cut short", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
	}

	w.mu.Lock()
	w.state = resultState{reading: Reading{BirthInput: in, NatalChart: natal, Prediction: res.Text}}
	w.mu.Unlock()

	w.logger.Info("reading settled", "fallback", res.Fallback, "latency_ms", time.Since(start).Milliseconds())
	return nil
}

// RequestDailyHoroscope attaches a transit reading for today. It is refused
// unless a natal reading exists and no daily reading is attached or pending.
func (w *Workflow) RequestDailyHoroscope(ctx context.Context) error {
	w.mu.Lock()
	rs, ok := w.state.(resultState)
	switch {
	case !ok:
		w.mu.Unlock()
		return apperrors.Wrap(apperrors.CodeInvalidState, "daily horoscope requires a completed natal reading", nil)
	case rs.dailyBusy:
		w.mu.Unlock()
		return apperrors.Wrap(apperrors.CodeBusy, "daily horoscope already in progress", nil)
	case rs.daily != nil:
		w.mu.Unlock()
		return apperrors.Wrap(apperrors.CodeInvalidState, "daily horoscope already generated", nil)
	}
	rs.dailyBusy = true
	w.state = rs
	natal := rs.reading.NatalChart
	w.mu.Unlock()

	now := w.now()
	at := w.transitMoment(now)
	transit := chart.Compute(at)
	res := w.gen.Generate(ctx, prompt.BuildTransit(natal, transit, at), generation.DailyFallback)

	w.mu.Lock()
	// Reset is refused while busy, so the result state is still ours.
	if current, ok := w.state.(resultState); ok {
		current.dailyBusy = false
		current.daily = &DailyHoroscope{TransitChart: transit, Text: res.Text, GeneratedAt: now}
		w.state = current
	}
	w.mu.Unlock()

	w.logger.Info("daily horoscope settled", "fallback", res.Fallback, "transit_date", at.Format("2006-01-02"))
	return nil
}

// Reset discards all reading data and returns to the input phase.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch s := w.state.(type) {
	case processingState:
		return apperrors.Wrap(apperrors.CodeInvalidState, "cannot reset while a reading is processing", nil)
	case resultState:
		if s.dailyBusy {
			return apperrors.Wrap(apperrors.CodeBusy, "cannot reset while a daily horoscope is in progress", nil)
		}
	}
	w.state = inputState{}
	return nil
}

// Snapshot returns the renderable view of the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{ID: w.id, Phase: w.state.phase()}
	switch s := w.state.(type) {
	case processingState:
		input, natal := s.input, s.natal
		snap.Input = &input
		snap.NatalChart = &natal
	case resultState:
		input, natal := s.reading.BirthInput, s.reading.NatalChart
		snap.Input = &input
		snap.NatalChart = &natal
		snap.Prediction = s.reading.Prediction
		snap.DailyPending = s.dailyBusy
		if s.daily != nil {
			daily := *s.daily
			snap.DailyHoroscope = &daily
		}
	}
	return snap
}

// Export builds the downloadable document. Only available with a reading.
func (w *Workflow) Export() (Export, error) {
	w.mu.Lock()
	rs, ok := w.state.(resultState)
	w.mu.Unlock()
	if !ok {
		return Export{}, apperrors.Wrap(apperrors.CodeInvalidState, "export requires a completed reading", nil)
	}
	out := Export{
		Metadata: ExportMetadata{
			GeneratedDate: w.now(),
			BirthData:     rs.reading.BirthInput,
		},
		CelestialConfiguration: rs.reading.NatalChart,
		Prediction:             rs.reading.Prediction,
	}
	if rs.daily != nil {
		text, at := rs.daily.Text, rs.daily.GeneratedAt
		out.DailyHoroscope = &text
		out.DailyHoroscopeDate = &at
	}
	return out, nil
}

func (w *Workflow) transitMoment(now time.Time) time.Time {
	today := now.In(w.cfg.Location).Format("2006-01-02")
	at, err := chart.ParseMoment(today, w.cfg.TransitClock)
	if err != nil {
		at, _ = chart.ParseMoment(today, defaultTransitClock)
	}
	return at
}

func validateBirthInput(in BirthInput) (time.Time, error) {
	var missing []string
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "please fill in all fields: missing "+strings.Join(missing, ", "), nil)
	}
	at, err := chart.ParseMoment(in.Date, in.Time)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be YYYY-MM-DD and time HH:MM", err)
	}
	return at, nil
}
