package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  []string
	}{
		{"short passthrough", "12 rue de la Paix", 40, []string{"12 rue de la Paix"}},
		{"empty string", "", 10, []string{""}},
		{"break at space", "une adresse vraiment trop longue", 20, []string{"une adresse vraiment", "trop longue"}},
		{"newlines respected", "ligne une\nligne deux", 40, []string{"ligne une", "ligne deux"}},
		{"hyphen keeps its line", "Saint-Jean-de-Luz-sur-Mer", 12, []string{"Saint-Jean-", "de-Luz-sur-", "Mer"}},
		{"hard break without space or hyphen", "https://exemple.fr/facturation", 10, []string{"https://ex", "emple.fr/f", "acturation"}},
		{"zero limit passthrough", "abc", 0, []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapText(tt.in, tt.limit))
		})
	}
}

func TestWrapTextNeverExceedsBudget(t *testing.T) {
	in := "mot " + strings.Repeat("trait-", 30) + strings.Repeat("x", 50) + " fin"
	for _, line := range WrapText(in, 15) {
		assert.LessOrEqual(t, len([]rune(line)), 15, "line %q", line)
	}
}

func TestWrapTextLongInputTerminates(t *testing.T) {
	in := strings.Repeat("a", 100000)
	lines := WrapText(in, 40)
	assert.Equal(t, 2500, len(lines))
}
