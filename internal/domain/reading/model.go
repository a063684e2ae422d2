package reading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/astroml/internal/domain/chart"
	"github.com/yanqian/astroml/internal/domain/generation"
)

// Phase names the active workflow stage.
type Phase string

const (
	PhaseInput      Phase = "input"
	PhaseProcessing Phase = "processing"
	PhaseResult     Phase = "result"
)

// BirthInput is the raw form data. Location is carried for display and export
// only.
type BirthInput struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// Reading is the settled natal reading.
type Reading struct {
	BirthInput BirthInput  `json:"birthInput"`
	NatalChart chart.Chart `json:"natalChart"`
	Prediction string      `json:"prediction"`
}

// DailyHoroscope is the optional transit reading attached to a Reading.
type DailyHoroscope struct {
	TransitChart chart.Chart `json:"transitChart"`
	Text         string      `json:"text"`
	GeneratedAt  time.Time   `json:"generatedAt"`
}

// Snapshot is the renderable view of a workflow.
type Snapshot struct {
	ID             string          `json:"id"`
	Phase          Phase           `json:"phase"`
	Input          *BirthInput     `json:"input,omitempty"`
	NatalChart     *chart.Chart    `json:"natalChart,omitempty"`
	Prediction     string          `json:"prediction"`
	DailyHoroscope *DailyHoroscope `json:"dailyHoroscope,omitempty"`
	DailyPending   bool            `json:"dailyPending"`
}

// Export is the downloadable reading document.
type Export struct {
	Metadata               ExportMetadata `json:"metadata"`
	CelestialConfiguration chart.Chart    `json:"celestialConfiguration"`
	Prediction             string         `json:"prediction"`
	DailyHoroscope         *string        `json:"dailyHoroscope"`
	DailyHoroscopeDate     *time.Time     `json:"dailyHoroscopeDate"`
}

// ExportMetadata describes when and for whom an export was produced.
type ExportMetadata struct {
	GeneratedDate time.Time  `json:"generatedDate"`
	BirthData     BirthInput `json:"birthData"`
}

// Filename suggests a download name such as astro-ml-reading-2000-01-01-1200.json.
func (e Export) Filename() string {
	clock := strings.ReplaceAll(e.Metadata.BirthData.Time, ":", "")
	return fmt.Sprintf("astro-ml-reading-%s-%s.json", e.Metadata.BirthData.Date, clock)
}

// ChartRequest asks for a chart without running the workflow.
type ChartRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location,omitempty"`
}

// ChartResponse carries a computed chart and its day index.
type ChartResponse struct {
	DayOfYear int         `json:"dayOfYear"`
	Chart     chart.Chart `json:"chart"`
	Summary   string      `json:"summary"`
}

// Config wires runtime settings for the reading workflow.
type Config struct {
	ProcessingDwell time.Duration
	TransitClock    string
	Location        *time.Location
}

// Generator settles a prompt into text, substituting fallback on failure.
type Generator interface {
	Generate(ctx context.Context, prompt, fallback string) generation.Result
}
