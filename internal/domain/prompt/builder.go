// Package prompt turns charts into instruction payloads for the text generator.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/astroml/internal/domain/chart"
)

const natalTemplate = `You are an AI system trained on astrological interpretation patterns. Given this birth chart data: %s, generate a brief, evocative prediction that blends traditional astrological themes with computational pattern recognition language.

The prediction should:
- Reference 2-3 specific planetary positions and their symbolic meanings
- Use language that bridges mystical and analytical (e.g., "pattern convergence", "celestial algorithms", "cosmic data points")
- Be 3-4 sentences, poetic yet precise
- Avoid generic horoscope cliches and stock phrasing

Focus on life themes, personality patterns, or upcoming cycles. Make it feel like both an ancient oracle and a neural network speaking simultaneously.`

const transitTemplate = `You are an AI system trained on astrological interpretation patterns. Given:

NATAL CHART: %s
TODAY'S TRANSITS (%s): %s

Generate a personalized daily horoscope by analyzing how today's planetary positions interact with this person's birth chart.

The horoscope should:
- Name 2-3 key transits or aspects between natal planets and current positions
- Use language that bridges mystical and analytical (e.g., "transit convergence", "algorithmic alignment", "pattern resonance")
- Be 3-4 sentences focusing on today's themes, opportunities, or challenges
- Avoid generic horoscope cliches and stock phrasing

Make it feel like both an ancient oracle reading celestial omens and a neural network detecting pattern correlations.`

const dayLabelLayout = "January 2, 2006"

// Summarize renders every placement as "<Body> in <Sign> at <d.d>°".
func Summarize(c chart.Chart) string {
	placements := c.Placements()
	parts := make([]string, 0, len(placements))
	for _, p := range placements {
		parts = append(parts, fmt.Sprintf("%s in %s at %.1f°", p.Body, p.Sign, p.Degree))
	}
	return strings.Join(parts, ", ")
}

// BuildNatal produces the instruction for a single natal reading.
func BuildNatal(natal chart.Chart) string {
	return fmt.Sprintf(natalTemplate, Summarize(natal))
}

// BuildTransit produces the instruction relating the transit chart for day
// back to the natal chart.
func BuildTransit(natal, transit chart.Chart, day time.Time) string {
	return fmt.Sprintf(transitTemplate, Summarize(natal), day.Format(dayLabelLayout), Summarize(transit))
}
