package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"go.uber.org/zap"
)

// Advisor implements orchestrator.Oracle on top of a completion Client.
// It also satisfies the material Summarizer used in Phase 1.
type Advisor struct {
	client Client
	log    *logging.Logger
}

// NewAdvisor creates an Advisor.
func NewAdvisor(client Client, log *logging.Logger) *Advisor {
	return &Advisor{client: client, log: log}
}

const directorySystem = `You are an assistant selecting the working directory for a documentation task.
Respond with a single JSON object and nothing else:
{"working_directory": "<path relative to the repository root>", "justification": "<one sentence>", "confidence": <0.0-1.0>}`

// ProposeDirectory asks for the working directory best matching the
// content goal.
func (a *Advisor) ProposeDirectory(ctx context.Context, structure string, materials []orchestrator.MaterialSummary, brief orchestrator.Brief) (*orchestrator.DirectoryProposal, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", brief.RepoName)
	fmt.Fprintf(&b, "Content goal: %s\n", brief.ContentGoal)
	if brief.ServiceArea != "" {
		fmt.Fprintf(&b, "Service area: %s\n", brief.ServiceArea)
	}
	writeMaterials(&b, materials)
	fmt.Fprintf(&b, "\nRepository structure:\n%s", structure)

	reply, err := a.client.Complete(ctx, directorySystem, b.String())
	if err != nil {
		return nil, err
	}

	var proposal orchestrator.DirectoryProposal
	if err := unmarshalReply(reply, &proposal); err != nil {
		return nil, fmt.Errorf("parsing directory proposal: %w", err)
	}

	a.log.Debug(ctx, "oracle proposed directory",
		zap.String("working_directory", proposal.WorkingDirectory),
		zap.Float64("confidence", proposal.Confidence))

	return &proposal, nil
}

const strategySystem = `You are an assistant planning documentation work.
Given existing content chunks and support material, decide which files to CREATE and which to UPDATE.
Respond with a single JSON object and nothing else:
{"confidence": <0.0-1.0>, "summary": "<one sentence>", "decisions": [{"action": "CREATE"|"UPDATE", "filename": "<relative path>", "reason": "<one sentence>"}]}`

// ProposeStrategy asks for the CREATE/UPDATE decision set.
func (a *Advisor) ProposeStrategy(ctx context.Context, chunks []orchestrator.Chunk, materials []orchestrator.MaterialSummary, brief orchestrator.Brief) (*orchestrator.ContentStrategy, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", brief.RepoName)
	fmt.Fprintf(&b, "Working directory: %s\n", brief.WorkingDirectory)
	fmt.Fprintf(&b, "Content goal: %s\n", brief.ContentGoal)
	if brief.ServiceArea != "" {
		fmt.Fprintf(&b, "Service area: %s\n", brief.ServiceArea)
	}
	writeMaterials(&b, materials)

	b.WriteString("\nExisting content chunks:\n")
	if len(chunks) == 0 {
		b.WriteString("(none)\n")
	}
	for _, c := range chunks {
		fmt.Fprintf(&b, "--- %s", c.File)
		if c.Heading != "" {
			fmt.Fprintf(&b, " # %s", c.Heading)
		}
		fmt.Fprintf(&b, "\n%s\n", c.Content)
	}

	reply, err := a.client.Complete(ctx, strategySystem, b.String())
	if err != nil {
		return nil, err
	}

	var strategy strategyReply
	if err := unmarshalReply(reply, &strategy); err != nil {
		return nil, fmt.Errorf("parsing strategy: %w", err)
	}

	return strategy.toStrategy(), nil
}

const createSystem = `You are a technical writer producing a complete markdown document.
Respond with the full document content and nothing else. Do not wrap the document in code fences.`

const updateSystem = `You are a technical writer revising an existing markdown document.
Respond with the complete updated document and nothing else. Do not wrap the document in code fences.`

// Generate produces the content for one strategy decision. The reply is
// taken verbatim as the document; an empty reply is a failed entry, not
// an error.
func (a *Advisor) Generate(ctx context.Context, decision orchestrator.Decision, materials []orchestrator.MaterialSummary, brief orchestrator.Brief) (*orchestrator.GenerationEntry, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", brief.RepoName)
	fmt.Fprintf(&b, "Content goal: %s\n", brief.ContentGoal)
	fmt.Fprintf(&b, "Target file: %s\n", decision.Filename)
	if decision.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", decision.Reason)
	}
	writeMaterials(&b, materials)

	system := createSystem
	if decision.Action == orchestrator.ActionUpdate {
		system = updateSystem
	}

	reply, err := a.client.Complete(ctx, system, b.String())
	if err != nil {
		return nil, err
	}

	entry := &orchestrator.GenerationEntry{Decision: decision}
	content := strings.TrimSpace(reply)
	if content == "" {
		entry.Error = "oracle returned empty content"
		return entry, nil
	}

	entry.Success = true
	if decision.Action == orchestrator.ActionUpdate {
		entry.UpdatedContent = content
	} else {
		entry.Content = content
	}
	return entry, nil
}

const tocSystem = `You are an assistant maintaining a TOC.yml navigation manifest.
Given the existing manifest and the files that were created or updated, return the complete replacement manifest.
Respond with a single JSON object and nothing else:
{"success": true|false, "changes_made": true|false, "entries_added": ["<filename>"], "content": "<complete TOC.yml document>", "message": "<one sentence>"}`

// ProposeTOC asks for a full replacement navigation manifest.
func (a *Advisor) ProposeTOC(ctx context.Context, existingTOC string, created, updated []string, decisions []orchestrator.Decision) (*orchestrator.TOCResults, error) {
	var b strings.Builder
	b.WriteString("Existing manifest:\n")
	if existingTOC == "" {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(existingTOC + "\n")
	}
	fmt.Fprintf(&b, "\nCreated files: %s\n", strings.Join(created, ", "))
	fmt.Fprintf(&b, "Updated files: %s\n", strings.Join(updated, ", "))
	for _, d := range decisions {
		fmt.Fprintf(&b, "- %s %s: %s\n", d.Action, d.Filename, d.Reason)
	}

	reply, err := a.client.Complete(ctx, tocSystem, b.String())
	if err != nil {
		return nil, err
	}

	var results orchestrator.TOCResults
	if err := unmarshalReply(reply, &results); err != nil {
		return nil, fmt.Errorf("parsing TOC result: %w", err)
	}

	return &results, nil
}

const summarizeSystem = `Summarize the following support material in at most five sentences, keeping concrete facts, names, and requirements. Respond with the summary text only.`

// Summarize condenses support material for downstream prompts. It
// satisfies content.Summarizer.
func (a *Advisor) Summarize(ctx context.Context, source, excerpt string) (string, error) {
	prompt := fmt.Sprintf("Source: %s\n\n%s", source, excerpt)
	reply, err := a.client.Complete(ctx, summarizeSystem, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func writeMaterials(b *strings.Builder, materials []orchestrator.MaterialSummary) {
	if len(materials) == 0 {
		return
	}
	b.WriteString("\nSupport materials:\n")
	for _, m := range materials {
		fmt.Fprintf(b, "--- %s\n%s\n", m.Source, m.Summary)
	}
}

var _ orchestrator.Oracle = (*Advisor)(nil)
