package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
)

type fakeClient struct {
	reply      string
	err        error
	lastSystem string
	lastPrompt string
}

func (f *fakeClient) Complete(_ context.Context, system, prompt string) (string, error) {
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.reply, f.err
}

func newTestAdvisor(client Client) *Advisor {
	return NewAdvisor(client, logging.NewNop())
}

func TestAdvisorProposeDirectory(t *testing.T) {
	client := &fakeClient{reply: "```json\n{\"working_directory\": \"docs/api\", \"justification\": \"matches goal\", \"confidence\": 0.92}\n```"}
	a := newTestAdvisor(client)

	proposal, err := a.ProposeDirectory(context.Background(), "docs/\n  api/\n", nil, orchestrator.Brief{
		RepoName:    "sample",
		ContentGoal: "document the API",
	})
	require.NoError(t, err)
	assert.Equal(t, "docs/api", proposal.WorkingDirectory)
	assert.Equal(t, 0.92, proposal.Confidence)
	assert.Contains(t, client.lastPrompt, "document the API")
	assert.Contains(t, client.lastPrompt, "docs/\n  api/")
}

func TestAdvisorProposeDirectoryClientError(t *testing.T) {
	wantErr := errors.New("rate limited")
	a := newTestAdvisor(&fakeClient{err: wantErr})

	_, err := a.ProposeDirectory(context.Background(), "", nil, orchestrator.Brief{})
	require.ErrorIs(t, err, wantErr)
}

func TestAdvisorProposeStrategy(t *testing.T) {
	client := &fakeClient{reply: `{"confidence": 0.75, "summary": "one new guide", "decisions": [{"action": "CREATE", "filename": "guide.md", "reason": "missing"}]}`}
	a := newTestAdvisor(client)

	strategy, err := a.ProposeStrategy(context.Background(), []orchestrator.Chunk{
		{File: "index.md", Heading: "Overview", Content: "intro"},
	}, nil, orchestrator.Brief{WorkingDirectory: "docs"})
	require.NoError(t, err)
	require.Len(t, strategy.Decisions, 1)
	assert.Equal(t, orchestrator.ActionCreate, strategy.Decisions[0].Action)
	assert.Equal(t, 0.75, strategy.Confidence)
	assert.Contains(t, client.lastPrompt, "index.md # Overview")
}

func TestAdvisorProposeStrategyMalformedReply(t *testing.T) {
	a := newTestAdvisor(&fakeClient{reply: "no json here"})

	_, err := a.ProposeStrategy(context.Background(), nil, nil, orchestrator.Brief{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing strategy")
}

func TestAdvisorGenerateCreate(t *testing.T) {
	client := &fakeClient{reply: "# Guide\n\nBody.\n"}
	a := newTestAdvisor(client)

	decision := orchestrator.Decision{Action: orchestrator.ActionCreate, Filename: "guide.md"}
	entry, err := a.Generate(context.Background(), decision, nil, orchestrator.Brief{})
	require.NoError(t, err)
	assert.True(t, entry.Success)
	assert.Equal(t, "# Guide\n\nBody.", entry.Content)
	assert.Empty(t, entry.UpdatedContent)
	assert.Equal(t, decision, entry.Decision)
	assert.Equal(t, createSystem, client.lastSystem)
}

func TestAdvisorGenerateUpdate(t *testing.T) {
	client := &fakeClient{reply: "# Guide v2"}
	a := newTestAdvisor(client)

	decision := orchestrator.Decision{Action: orchestrator.ActionUpdate, Filename: "guide.md"}
	entry, err := a.Generate(context.Background(), decision, nil, orchestrator.Brief{})
	require.NoError(t, err)
	assert.True(t, entry.Success)
	assert.Equal(t, "# Guide v2", entry.UpdatedContent)
	assert.Empty(t, entry.Content)
	assert.Equal(t, updateSystem, client.lastSystem)
}

func TestAdvisorGenerateEmptyReply(t *testing.T) {
	a := newTestAdvisor(&fakeClient{reply: "   \n"})

	entry, err := a.Generate(context.Background(), orchestrator.Decision{Action: orchestrator.ActionCreate, Filename: "guide.md"}, nil, orchestrator.Brief{})
	require.NoError(t, err)
	assert.False(t, entry.Success)
	assert.NotEmpty(t, entry.Error)
}

func TestAdvisorProposeTOC(t *testing.T) {
	client := &fakeClient{reply: `{"success": true, "changes_made": true, "entries_added": ["guide.md"], "content": "- name: Guide\n  href: guide.md\n", "message": "added one entry"}`}
	a := newTestAdvisor(client)

	results, err := a.ProposeTOC(context.Background(), "- name: Index\n  href: index.md\n", []string{"guide.md"}, nil, []orchestrator.Decision{
		{Action: orchestrator.ActionCreate, Filename: "guide.md", Reason: "missing"},
	})
	require.NoError(t, err)
	assert.True(t, results.Success)
	assert.True(t, results.ChangesMade)
	assert.Equal(t, []string{"guide.md"}, results.EntriesAdded)
	assert.Contains(t, client.lastPrompt, "Created files: guide.md")
}

func TestAdvisorSummarize(t *testing.T) {
	client := &fakeClient{reply: "  A short summary.  "}
	a := newTestAdvisor(client)

	got, err := a.Summarize(context.Background(), "notes.txt", "lots of raw text")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", got)
	assert.Contains(t, client.lastPrompt, "notes.txt")
}
