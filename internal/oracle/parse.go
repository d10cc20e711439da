package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
)

// extractJSON pulls a JSON object out of a model reply. Replies are
// sometimes wrapped in a fenced code block or surrounded by prose, so
// a fenced block wins, then the outermost brace pair.
func extractJSON(reply string) (string, error) {
	s := strings.TrimSpace(reply)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in reply")
	}
	return s[start : end+1], nil
}

func unmarshalReply(reply string, v any) error {
	raw, err := extractJSON(reply)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding reply: %w", err)
	}
	return nil
}

type decisionReply struct {
	Action   string `json:"action"`
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type strategyReply struct {
	Confidence float64         `json:"confidence"`
	Summary    string          `json:"summary"`
	Decisions  []decisionReply `json:"decisions"`
}

func (r *strategyReply) toStrategy() *orchestrator.ContentStrategy {
	strategy := &orchestrator.ContentStrategy{
		Confidence: r.Confidence,
		Summary:    r.Summary,
	}
	for _, d := range r.Decisions {
		strategy.Decisions = append(strategy.Decisions, orchestrator.Decision{
			Action:   orchestrator.Action(strings.ToUpper(strings.TrimSpace(d.Action))),
			Filename: d.Filename,
			Reason:   d.Reason,
		})
	}
	return strategy
}
