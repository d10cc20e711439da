package orchestrator

import (
	"strconv"
)

// ParseMaxPhase maps a phase-selector token to the highest phase to run.
//
//	"all"            -> MaxPhases
//	"3"              -> 3 (pure digit strings parse as their integer value)
//	"234", "1x3"     -> maximum digit present
//	"", "none"       -> 1 (Phase 1 always runs)
func ParseMaxPhase(selector string) int {
	if selector == "all" {
		return MaxPhases
	}

	if isDigits(selector) {
		n, err := strconv.Atoi(selector)
		if err == nil {
			return n
		}
	}

	max := 0
	for _, r := range selector {
		if r >= '0' && r <= '9' {
			if d := int(r - '0'); d > max {
				max = d
			}
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Eligible reports whether phase n (n >= 2) may run: the selector must
// request it, the immediately preceding phase must be ready, and Phase 4
// must not be explicitly skipped. Phase 1 is never gated.
func Eligible(n, maxPhase int, priorReady, skipTOC bool) bool {
	if n < 2 || n > MaxPhases {
		return false
	}
	if maxPhase < n || !priorReady {
		return false
	}
	if n == MaxPhases && skipTOC {
		return false
	}
	return true
}

// DeliberatelySkipped reports whether Phase 4 was requested but switched
// off by configuration. This is a terminal state distinct from failure.
func DeliberatelySkipped(maxPhase int, skipTOC bool) bool {
	return maxPhase >= MaxPhases && skipTOC
}
