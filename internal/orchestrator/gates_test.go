package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMaxPhase(t *testing.T) {
	tests := []struct {
		selector string
		want     int
	}{
		{"all", MaxPhases},
		{"1", 1},
		{"2", 2},
		{"3", 3},
		{"4", 4},
		{"34", 34},  // pure digit strings parse as integers
		{"234", 234},
		{"1x3", 3},  // mixed input falls back to the max digit
		{"phase 2", 2},
		{"", 1},
		{"none", 1},
		{"abc", 1},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMaxPhase(tt.selector))
		})
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		maxPhase   int
		priorReady bool
		skipTOC    bool
		want       bool
	}{
		{"phase 2 runs when in range and prior ready", 2, 4, true, false, true},
		{"phase 2 blocked by selector", 2, 1, true, false, false},
		{"phase 2 blocked by prior not ready", 2, 4, false, false, false},
		{"phase 3 runs", 3, 3, true, false, true},
		{"phase 4 runs", 4, 4, true, false, true},
		{"phase 4 blocked by skip flag", 4, 4, true, true, false},
		{"skip flag does not gate phase 3", 3, 4, true, true, true},
		{"oversized selector still admits phase 4", 4, 34, true, false, true},
		{"phase 1 never gated here", 1, 4, true, false, false},
		{"out of range phase", 5, 5, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(tt.n, tt.maxPhase, tt.priorReady, tt.skipTOC))
		})
	}
}

func TestDeliberatelySkipped(t *testing.T) {
	assert.True(t, DeliberatelySkipped(4, true))
	assert.True(t, DeliberatelySkipped(34, true))
	assert.False(t, DeliberatelySkipped(4, false))
	assert.False(t, DeliberatelySkipped(3, true))
}
