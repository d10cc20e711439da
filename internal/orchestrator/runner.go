package orchestrator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fyrsmithlabs/contentd/internal/config"
	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collaborators are the external components a Runner drives. Oracle,
// Tree, Materials, Discovery, and TOC are required. Nil Observer and
// StrategyConfirmer get no-op defaults; a nil DirectoryConfirmer is
// allowed only in auto-confirm mode.
type Collaborators struct {
	Oracle             Oracle
	Tree               SourceTree
	Materials          MaterialProcessor
	Discovery          ChunkDiscoverer
	TOC                TOCSource
	DirectoryConfirmer DirectoryConfirmer
	StrategyConfirmer  StrategyConfirmer
	Observer           Observer
}

// Runner sequences the four pipeline phases, applies gating before each
// one, contains phase-local failures, and accumulates the Result.
type Runner struct {
	cfg   *config.Config
	log   *logging.Logger
	c     Collaborators
	setup *DirectorySetup
	apply *ApplyEngine
}

// NewRunner wires a Runner from configuration and collaborators.
func NewRunner(cfg *config.Config, log *logging.Logger, c Collaborators) (*Runner, error) {
	if c.Oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if c.Tree == nil {
		return nil, fmt.Errorf("source tree provider is required")
	}
	if c.Materials == nil {
		return nil, fmt.Errorf("material processor is required")
	}
	if c.Discovery == nil {
		return nil, fmt.Errorf("chunk discoverer is required")
	}
	if c.TOC == nil {
		return nil, fmt.Errorf("TOC source is required")
	}

	if c.Observer == nil {
		c.Observer = NopObserver{}
	}
	if c.StrategyConfirmer == nil {
		c.StrategyConfirmer = PassthroughStrategyConfirmer{}
	}
	if c.DirectoryConfirmer == nil {
		if !cfg.Run.AutoConfirm {
			return nil, fmt.Errorf("a directory confirmer is required unless auto-confirm is enabled")
		}
		c.DirectoryConfirmer = acceptDirectoryConfirmer{}
	}

	return &Runner{
		cfg:   cfg,
		log:   log,
		c:     c,
		setup: NewDirectorySetup(log),
		apply: NewApplyEngine(log, tocValidator(c.TOC)),
	}, nil
}

func tocValidator(src TOCSource) func(string) error {
	return func(content string) error {
		return src.Validate(content)
	}
}

// Execute runs the pipeline. The returned Result reflects exactly how
// far the run progressed; it is non-nil unless Phase 1 failed fatally.
func (r *Runner) Execute(ctx context.Context) (*Result, error) {
	ctx = logging.WithRunID(ctx, uuid.NewString())

	maxPhase := ParseMaxPhase(r.cfg.Run.Phases)
	display := r.cfg.Run.Phases
	if display == "all" {
		display = fmt.Sprintf("1-%d", maxPhase)
	}
	r.log.Info(ctx, "content pipeline starting",
		zap.String("phases", display),
		zap.Int("max_phase", maxPhase))

	result, err := r.executePhase1(ctx)
	if err != nil {
		return nil, err
	}

	if Eligible(2, maxPhase, result.DirectoryReady, false) {
		r.executePhase2(ctx, result)
	}

	if Eligible(3, maxPhase, result.StrategyReady, false) {
		r.executePhase3(ctx, result)
	}

	if Eligible(4, maxPhase, result.GenerationReady, r.cfg.Run.SkipTOC) {
		r.executePhase4(ctx, result)
	} else if DeliberatelySkipped(maxPhase, r.cfg.Run.SkipTOC) {
		result.TOCSkipped = true
		r.c.Observer.Status(StatusInfo, "TOC management skipped (skip-toc)")
		r.log.Info(ctx, "phase 4: TOC management skipped by configuration")
	}

	return result, nil
}

// brief assembles the pass-through run context for oracle calls.
func (r *Runner) brief(workingDirectory string) Brief {
	return Brief{
		RepoName:         r.c.Tree.DisplayName(r.cfg.Repo.URL),
		WorkingDirectory: workingDirectory,
		ContentGoal:      r.cfg.Run.ContentGoal,
		ServiceArea:      r.cfg.Run.ServiceArea,
	}
}

// containPhaseFailure logs a contained phase failure with enough context
// for postmortem. The error never escapes the runner.
func (r *Runner) containPhaseFailure(ctx context.Context, phase int, err error) {
	r.log.Error(ctx, fmt.Sprintf("phase %d failed", phase),
		zap.Error(err),
		zap.String("error_type", fmt.Sprintf("%T", err)),
		zap.Stack("stack"))
	r.c.Observer.Status(StatusError, fmt.Sprintf("Phase %d failed: %v", phase, err))
}

// --- Phase 1: repository analysis ---

// executePhase1 always runs. Its failure is the only one fatal to the
// workflow: it establishes the working directory every later phase
// depends on.
func (r *Runner) executePhase1(ctx context.Context) (*Result, error) {
	ctx = logging.WithPhase(ctx, 1, 0)
	pc := PhaseContext{Phase: 1}
	r.log.Info(ctx, "phase 1: repository analysis")
	r.c.Observer.PhaseStart(pc, "Repository Analysis", 4)

	r.c.Observer.Step(PhaseContext{Phase: 1, Step: 1}, "Cloning repository")
	repoPath, err := r.c.Tree.Resolve(ctx, r.cfg.Repo.URL, r.cfg.Repo.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source tree: %w", err)
	}

	r.c.Observer.Step(PhaseContext{Phase: 1, Step: 2}, "Processing materials")
	materials, err := r.c.Materials.Process(logging.WithPhase(ctx, 1, 2), r.cfg.Run.Materials, repoPath)
	if err != nil {
		return nil, fmt.Errorf("processing support materials: %w", err)
	}

	r.c.Observer.Step(PhaseContext{Phase: 1, Step: 3}, "Analyzing structure")
	structure, err := r.c.Tree.Structure(repoPath, r.cfg.Repo.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("scanning repository structure: %w", err)
	}

	r.c.Observer.Step(PhaseContext{Phase: 1, Step: 4}, "Selecting directory")
	proposal, oracleErr := r.c.Oracle.ProposeDirectory(logging.WithPhase(ctx, 1, 4), structure, materials, r.brief(""))
	if oracleErr != nil {
		r.log.Warn(ctx, "oracle failed to propose a directory", zap.Error(oracleErr))
	}

	confirmed, err := r.confirmDirectory(ctx, proposal, structure, oracleErr)
	if err != nil {
		return nil, err
	}

	setup := r.setup.Setup(ctx, repoPath, confirmed.WorkingDirectory)
	if !setup.Success {
		r.log.Error(ctx, "working directory setup failed", zap.String("setup_error", setup.Error))
	}

	r.c.Observer.PhaseSummary(pc, "Repository Analysis", []SummaryItem{
		{Label: "Selected Directory", Value: setup.Directory},
		{Label: "Confidence", Value: formatPercent(confirmed.Confidence)},
		{Label: "Materials Processed", Value: strconv.Itoa(len(materials))},
		{Label: "Markdown Files", Value: strconv.Itoa(setup.MarkdownCount)},
	})

	return &Result{
		WorkingDirectory:         setup.Directory,
		Justification:            confirmed.Justification,
		Confidence:               confirmed.Confidence,
		DirectoryReady:           setup.Success,
		WorkingDirectoryFullPath: setup.FullPath,
		SetupError:               setup.Error,
		RepoURL:                  r.cfg.Repo.URL,
		RepoPath:                 repoPath,
		MaterialSummaries:        materials,
		ContentGoal:              r.cfg.Run.ContentGoal,
		ServiceArea:              r.cfg.Run.ServiceArea,
	}, nil
}

// confirmDirectory validates headlessly when auto-confirm is on, then
// hands the proposal to the configured confirmation channel.
func (r *Runner) confirmDirectory(ctx context.Context, proposal *DirectoryProposal, structure string, oracleErr error) (*DirectoryProposal, error) {
	if r.cfg.Run.AutoConfirm {
		validator := NewAutoConfirmValidator(r.log)
		if _, err := validator.Confirm(ctx, proposal, structure, oracleErr); err != nil {
			return nil, err
		}
	}
	return r.c.DirectoryConfirmer.Confirm(ctx, proposal, structure, oracleErr)
}

// acceptDirectoryConfirmer passes a validated proposal through unchanged.
// It backs auto-confirm mode, where the validator has already decided.
type acceptDirectoryConfirmer struct{}

func (acceptDirectoryConfirmer) Confirm(ctx context.Context, proposal *DirectoryProposal, structure string, oracleErr error) (*DirectoryProposal, error) {
	if oracleErr != nil {
		return nil, &OracleFailureError{Reason: oracleErr.Error()}
	}
	if proposal == nil {
		return nil, &EmptySelectionError{}
	}
	return proposal, nil
}

// --- Phase 2: content strategy ---

func (r *Runner) executePhase2(ctx context.Context, result *Result) {
	ctx = logging.WithPhase(ctx, 2, 0)
	pc := PhaseContext{Phase: 2}
	r.log.Info(ctx, "phase 2: content strategy")
	r.c.Observer.PhaseStart(pc, "Content Strategy", 3)

	strategy, chunkCount, err := r.runStrategy(ctx, result)
	if err != nil {
		r.containPhaseFailure(ctx, 2, err)
		failure, _ := r.c.StrategyConfirmer.Confirm(ctx, nil, err)
		if failure == nil {
			failure = &ContentStrategy{Summary: "strategy generation failed", Error: err.Error()}
		}
		result.ContentStrategy = failure
		result.StrategyReady = false
		return
	}

	result.ContentStrategy = strategy
	result.StrategyReady = strategy.Confidence > 0

	r.c.Observer.Status(StatusSuccess, fmt.Sprintf("Generated %d content decisions", len(strategy.Decisions)))
	for i, d := range strategy.Decisions {
		if i == 5 {
			r.c.Observer.Status(StatusInfo, fmt.Sprintf("... and %d more", len(strategy.Decisions)-5))
			break
		}
		r.c.Observer.Decision(d)
	}

	r.c.Observer.PhaseSummary(pc, "Content Strategy", []SummaryItem{
		{Label: "Content Chunks Analyzed", Value: strconv.Itoa(chunkCount)},
		{Label: "Files to Create", Value: strconv.Itoa(strategy.CreateCount())},
		{Label: "Files to Update", Value: strconv.Itoa(strategy.UpdateCount())},
		{Label: "Strategy Confidence", Value: formatPercent(strategy.Confidence)},
	})

	r.log.Info(ctx, "phase 2 completed",
		zap.String("summary", strategy.Summary),
		zap.Int("decisions", len(strategy.Decisions)),
		zap.Bool("strategy_ready", result.StrategyReady))
}

// runStrategy is the fallible body of Phase 2; its error is converted to
// record fields at the phase boundary.
func (r *Runner) runStrategy(ctx context.Context, result *Result) (*ContentStrategy, int, error) {
	brief := r.brief(result.WorkingDirectory)

	r.c.Observer.Step(PhaseContext{Phase: 2, Step: 1}, "Discovering content")
	chunks, err := r.c.Discovery.Discover(logging.WithPhase(ctx, 2, 1), result.WorkingDirectoryFullPath, brief)
	if err != nil {
		return nil, 0, fmt.Errorf("discovering content: %w", err)
	}
	r.log.Info(ctx, "content discovery completed", zap.Int("chunks", len(chunks)))

	r.c.Observer.Step(PhaseContext{Phase: 2, Step: 2}, "Analyzing gaps")
	strategy, err := r.c.Oracle.ProposeStrategy(logging.WithPhase(ctx, 2, 2), chunks, result.MaterialSummaries, brief)
	if err != nil {
		return nil, len(chunks), fmt.Errorf("generating strategy: %w", err)
	}
	if strategy == nil {
		return nil, len(chunks), fmt.Errorf("oracle returned no strategy")
	}

	r.c.Observer.Step(PhaseContext{Phase: 2, Step: 3}, "Confirming strategy")
	confirmed, err := r.c.StrategyConfirmer.Confirm(ctx, strategy, nil)
	if err != nil {
		return nil, len(chunks), fmt.Errorf("confirming strategy: %w", err)
	}
	if confirmed == nil {
		return nil, len(chunks), fmt.Errorf("confirmation returned no strategy")
	}

	return confirmed, len(chunks), nil
}

// --- Phase 3: content generation ---

func (r *Runner) executePhase3(ctx context.Context, result *Result) {
	ctx = logging.WithPhase(ctx, 3, 0)
	pc := PhaseContext{Phase: 3}
	r.log.Info(ctx, "phase 3: content generation")
	r.c.Observer.PhaseStart(pc, "Content Generation", len(result.ContentStrategy.Decisions))

	generated, err := r.generateContent(ctx, result)
	if err != nil {
		r.containPhaseFailure(ctx, 3, err)
		result.GenerationResults = nil
		result.GenerationReady = false
		return
	}

	result.GenerationResults = generated
	result.GenerationReady = true

	if r.cfg.Run.Apply {
		if err := r.apply.ApplyGeneration(ctx, generated, result.WorkingDirectoryFullPath); err != nil {
			r.containPhaseFailure(ctx, 3, err)
			result.GenerationResults = nil
			result.GenerationReady = false
			return
		}
		generated.Applied = true
		r.c.Observer.Status(StatusSuccess, "Changes applied to working copy")
	} else {
		generated.Applied = false
		r.c.Observer.Status(StatusInfo, "Preview mode - changes not applied (enable apply to write)")
	}

	r.c.Observer.PhaseSummary(pc, "Content Generation", []SummaryItem{
		{Label: "Files Created", Value: strconv.Itoa(len(generated.CreatedFiles))},
		{Label: "Files Updated", Value: strconv.Itoa(len(generated.UpdatedFiles))},
		{Label: "Applied to Repository", Value: strconv.FormatBool(generated.Applied)},
	})

	r.log.Info(ctx, "phase 3 completed",
		zap.Int("created", len(generated.CreatedFiles)),
		zap.Int("updated", len(generated.UpdatedFiles)),
		zap.Bool("applied", generated.Applied))
}

// generateContent issues one generation call per decision, strictly in
// order. A per-decision failure is captured in its own entry and never
// blocks sibling decisions.
func (r *Runner) generateContent(ctx context.Context, result *Result) (*GenerationResults, error) {
	generated := &GenerationResults{
		CreateResults: []GenerationEntry{},
		UpdateResults: []GenerationEntry{},
		CreatedFiles:  []string{},
		UpdatedFiles:  []string{},
	}
	brief := r.brief(result.WorkingDirectory)

	for i, decision := range result.ContentStrategy.Decisions {
		step := i + 1
		stepCtx := logging.WithPhase(ctx, 3, step)
		r.c.Observer.Step(PhaseContext{Phase: 3, Step: step},
			fmt.Sprintf("Processing: %s %s", decision.Action, decision.Filename))

		entry, err := r.c.Oracle.Generate(stepCtx, decision, result.MaterialSummaries, brief)
		if err == nil && entry == nil {
			err = fmt.Errorf("oracle returned no generation result")
		}
		if err != nil {
			r.log.Warn(stepCtx, "generation failed for decision",
				zap.String("filename", decision.Filename),
				zap.String("action", string(decision.Action)),
				zap.Error(err))
			entry = &GenerationEntry{Error: err.Error()}
		}
		entry.Decision = decision

		switch decision.Action {
		case ActionCreate:
			generated.CreateResults = append(generated.CreateResults, *entry)
			if entry.Success {
				generated.CreatedFiles = append(generated.CreatedFiles, decision.Filename)
			}
		case ActionUpdate:
			generated.UpdateResults = append(generated.UpdateResults, *entry)
			if entry.Success {
				generated.UpdatedFiles = append(generated.UpdatedFiles, decision.Filename)
			}
		default:
			r.log.Warn(stepCtx, "skipping decision with unknown action",
				zap.String("action", string(decision.Action)),
				zap.String("filename", decision.Filename))
		}
	}

	return generated, nil
}

// --- Phase 4: TOC management ---

func (r *Runner) executePhase4(ctx context.Context, result *Result) {
	ctx = logging.WithPhase(ctx, 4, 0)
	pc := PhaseContext{Phase: 4}
	r.log.Info(ctx, "phase 4: TOC management")
	r.c.Observer.PhaseStart(pc, "TOC Management", 2)

	toc, err := r.runTOC(ctx, result)
	if err != nil {
		r.containPhaseFailure(ctx, 4, err)
		result.TOCResults = nil
		result.TOCReady = false
		return
	}

	r.c.Observer.Step(PhaseContext{Phase: 4, Step: 2}, "Updating TOC")
	if r.cfg.Run.Apply && toc.Success && toc.ChangesMade {
		if err := r.apply.ApplyTOC(ctx, toc, result.WorkingDirectoryFullPath); err != nil {
			r.containPhaseFailure(ctx, 4, err)
			result.TOCResults = nil
			result.TOCReady = false
			return
		}
		toc.Applied = true
		r.c.Observer.Status(StatusSuccess, TOCFileName+" updated")
	} else {
		toc.Applied = false
		switch {
		case toc.Success && !toc.ChangesMade:
			r.c.Observer.Status(StatusInfo, "No TOC changes needed")
		case toc.Success:
			r.c.Observer.Status(StatusInfo, "TOC preview generated (enable apply to write)")
		}
	}

	result.TOCResults = toc
	result.TOCReady = true

	message := toc.Message
	if message == "" {
		message = "Completed"
	}
	r.c.Observer.PhaseSummary(pc, "TOC Management", []SummaryItem{
		{Label: "Entries Added", Value: strconv.Itoa(len(toc.EntriesAdded))},
		{Label: "Applied to Repository", Value: strconv.FormatBool(toc.Applied)},
		{Label: "Status", Value: message},
	})

	r.log.Info(ctx, "phase 4 completed",
		zap.String("message", message),
		zap.Bool("changes_made", toc.ChangesMade),
		zap.Bool("applied", toc.Applied))
}

// runTOC is the fallible body of Phase 4.
func (r *Runner) runTOC(ctx context.Context, result *Result) (*TOCResults, error) {
	r.c.Observer.Step(PhaseContext{Phase: 4, Step: 1}, "Analyzing TOC structure")

	existing, err := r.c.TOC.Load(result.WorkingDirectoryFullPath)
	if err != nil {
		return nil, fmt.Errorf("loading existing TOC: %w", err)
	}

	var decisions []Decision
	if result.ContentStrategy != nil {
		decisions = result.ContentStrategy.Decisions
	}

	toc, err := r.c.Oracle.ProposeTOC(logging.WithPhase(ctx, 4, 1), existing,
		result.GenerationResults.CreatedFiles, result.GenerationResults.UpdatedFiles, decisions)
	if err != nil {
		return nil, fmt.Errorf("proposing TOC update: %w", err)
	}
	if toc == nil {
		return nil, fmt.Errorf("oracle returned no TOC result")
	}

	return toc, nil
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}
