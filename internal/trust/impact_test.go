package trust

import "testing"

func TestImpactScore(t *testing.T) {
	tests := []struct {
		ctype, level string
		want         float64
	}{
		{TypeOpportunity, ValueCritical, 1.0},
		{TypeAdvice, ValueLow, 0.1},
		{TypeIntroduction, ValueMedium, 0.4},
		{TypeResource, ValueHigh, 0.5},
		{TypeSupport, ValueCritical, 0.55},
		{"bribe", ValueHigh, 0.0},
		{TypeAdvice, "astronomical", 0.0},
	}
	for _, tt := range tests {
		if got := ImpactScore(tt.ctype, tt.level); got != tt.want {
			t.Errorf("ImpactScore(%s, %s) = %f, want %f", tt.ctype, tt.level, got, tt.want)
		}
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "strong"},
		{0.8, "strong"},
		{0.7, "solid"},
		{0.65, "solid"},
		{0.5, "developing"},
		{0.45, "developing"},
		{0.44, "weak"},
		{0.0, "weak"},
	}
	for _, tt := range tests {
		if got := Level(tt.score); got != tt.want {
			t.Errorf("Level(%f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
