package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			reply: `{"confidence": 0.9}`,
			want:  `{"confidence": 0.9}`,
		},
		{
			name:  "fenced json block",
			reply: "Here you go:\n```json\n{\"confidence\": 0.9}\n```\nDone.",
			want:  `{"confidence": 0.9}`,
		},
		{
			name:  "fenced block without language tag",
			reply: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "prose around object",
			reply: "Sure! {\"a\": 1} is my answer.",
			want:  `{"a": 1}`,
		},
		{
			name:    "no object at all",
			reply:   "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "empty reply",
			reply:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategyReplyToStrategy(t *testing.T) {
	r := &strategyReply{
		Confidence: 0.8,
		Summary:    "two docs",
		Decisions: []decisionReply{
			{Action: "create", Filename: "guide.md", Reason: "missing"},
			{Action: " UPDATE ", Filename: "index.md"},
		},
	}

	s := r.toStrategy()
	require.Len(t, s.Decisions, 2)
	assert.Equal(t, orchestrator.ActionCreate, s.Decisions[0].Action)
	assert.Equal(t, orchestrator.ActionUpdate, s.Decisions[1].Action)
	assert.Equal(t, 0.8, s.Confidence)
	assert.Equal(t, 1, s.CreateCount())
	assert.Equal(t, 1, s.UpdateCount())
}
