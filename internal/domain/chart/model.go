package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Body is one of the modeled celestial bodies.
type Body string

const (
	Sun     Body = "Sun"
	Moon    Body = "Moon"
	Mercury Body = "Mercury"
	Venus   Body = "Venus"
	Mars    Body = "Mars"
	Jupiter Body = "Jupiter"
)

// Bodies lists every modeled body in rendering order.
var Bodies = [...]Body{Sun, Moon, Mercury, Venus, Mars, Jupiter}

// Signs lists the zodiac labels in canonical order.
var Signs = [...]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Position places a body within a sign.
type Position struct {
	Sign   string  `json:"sign"`
	Degree float64 `json:"degree"`
}

// Placement pairs a body with its position.
type Placement struct {
	Body Body
	Position
}

// Chart holds a position for every body in Bodies.
type Chart struct {
	positions [len(Bodies)]Position
}

// Position returns the position of b, and false for an unknown body.
func (c Chart) Position(b Body) (Position, bool) {
	for i, body := range Bodies {
		if body == b {
			return c.positions[i], true
		}
	}
	return Position{}, false
}

// Placements returns the chart in body order.
func (c Chart) Placements() []Placement {
	out := make([]Placement, 0, len(Bodies))
	for i, body := range Bodies {
		out = append(out, Placement{Body: body, Position: c.positions[i]})
	}
	return out
}

// MarshalJSON renders the chart as an object keyed by body name in body order.
func (c Chart) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, body := range Bodies {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(string(body))
		val, err := json.Marshal(c.positions[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the object form produced by MarshalJSON. Every body
// must be present.
func (c *Chart) UnmarshalJSON(data []byte) error {
	var raw map[string]Position
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Chart
	for i, body := range Bodies {
		pos, ok := raw[string(body)]
		if !ok {
			return fmt.Errorf("chart missing body %q", body)
		}
		out.positions[i] = pos
	}
	*c = out
	return nil
}
