package style

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBarGradient_Width(t *testing.T) {
	theme := DefaultTheme()
	for _, ratio := range []float64{-1, 0, 0.5, 1, 2} {
		bar := theme.BarGradient(10, ratio)
		if w := lipgloss.Width(bar); w != 10 {
			t.Errorf("BarGradient(10, %v) width = %d, want 10", ratio, w)
		}
	}
	if theme.BarGradient(0, 0.5) != "" {
		t.Error("expected empty bar for zero width")
	}
}

func TestGradientColor_Endpoints(t *testing.T) {
	theme := DefaultTheme()
	if theme.GradientColor(0) != theme.GradientStart {
		t.Error("ratio 0 should be the start color")
	}
	if theme.GradientColor(1) != theme.GradientEnd {
		t.Error("ratio 1 should be the end color")
	}
	mid := string(theme.GradientColor(0.5))
	if !strings.HasPrefix(mid, "#") || len(mid) != 7 {
		t.Errorf("unexpected blended color %q", mid)
	}
}
