package colorscale

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseHex разбирает цвет в формате #rrggbb или #rgb
func ParseHex(s string) (drawing.Color, error) {
	s = strings.TrimSpace(s)
	if !hexPattern.MatchString(s) {
		return drawing.Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#")), nil
}

// MustParseHex - как ParseHex, но паникует на невалидном цвете. Только для констант палитр.
func MustParseHex(s string) drawing.Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex возвращает цвет в формате #rrggbb
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Lerp интерполирует два цвета в пространстве RGB, t в [0, 1]
func Lerp(a, b drawing.Color, t float64) drawing.Color {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return drawing.Color{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: lerpChannel(a.A, b.A, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
