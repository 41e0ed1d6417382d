package formula_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/formula"
)

func TestEvalString(t *testing.T) {
	tests := []struct {
		text string
		vars formula.Vars
		want int
	}{
		{text: "5", want: 5},
		{text: "level", vars: formula.Vars{"level": 7}, want: 7},
		{text: "1 + level", vars: formula.Vars{"level": 3}, want: 4},
		{text: "2 + 3 * 4", want: 14},
		{text: "(2 + 3) * 4", want: 20},
		{text: "level / 2", vars: formula.Vars{"level": 5}, want: 2},
		{text: "-level + 10", vars: formula.Vars{"level": 3}, want: 7},
		{text: "5 * LEVEL", vars: formula.Vars{"level": 2}, want: 10},
		{text: "level / 0", vars: formula.Vars{"level": 5}, want: 0},
		{text: "cha_mod", vars: formula.Vars{}, want: 0},
		{text: "-(1 + 2)", want: -3},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := formula.EvalString(tt.text, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_RejectsAnythingOutsideTheGrammar(t *testing.T) {
	for _, text := range []string{
		"",
		"level +",
		"(1 + 2",
		"1 + 2)",
		"alert(1)",
		"level; drop",
		"2 ** 3",
		"Math.max(1, level)",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := formula.Parse(text)
			assert.Error(t, err)
		})
	}
}

func TestPropertyLinearFormulas(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(-50, 50).Draw(t, "a")
		b := rapid.IntRange(-50, 50).Draw(t, "b")
		level := rapid.IntRange(1, 20).Draw(t, "level")

		text := fmt.Sprintf("(%d) + (%d) * level", a, b)
		got, err := formula.EvalString(text, formula.Vars{"level": float64(level)})
		if err != nil {
			t.Fatalf("parse %q: %v", text, err)
		}
		if want := a + b*level; got != want {
			t.Fatalf("%q with level %d = %d, want %d", text, level, got, want)
		}
	})
}
