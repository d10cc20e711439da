package orchestrator

import (
	"context"
)

// MaxPhases is the highest defined pipeline phase.
const MaxPhases = 4

// TOCFileName is the navigation manifest at the working-directory root,
// replaced wholesale on apply.
const TOCFileName = "TOC.yml"

// Action distinguishes the two kinds of strategy decisions.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
)

// Decision is a single CREATE-or-UPDATE instruction for one target
// filename within a content strategy.
type Decision struct {
	Action   Action `json:"action"`
	Filename string `json:"filename"`
	Reason   string `json:"reason,omitempty"`
}

// ContentStrategy is the oracle's Phase-2 decision set. A Confidence of
// zero marks a failure strategy substituted at the phase boundary; Error
// then carries the cause.
type ContentStrategy struct {
	Decisions  []Decision `json:"decisions"`
	Confidence float64    `json:"confidence"`
	Summary    string     `json:"summary,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// CreateCount returns the number of CREATE decisions.
func (s *ContentStrategy) CreateCount() int {
	return s.countAction(ActionCreate)
}

// UpdateCount returns the number of UPDATE decisions.
func (s *ContentStrategy) UpdateCount() int {
	return s.countAction(ActionUpdate)
}

func (s *ContentStrategy) countAction(action Action) int {
	n := 0
	for _, d := range s.Decisions {
		if d.Action == action {
			n++
		}
	}
	return n
}

// DirectoryProposal is the oracle's Phase-1 working-directory selection.
type DirectoryProposal struct {
	WorkingDirectory string  `json:"working_directory"`
	Justification    string  `json:"justification"`
	Confidence       float64 `json:"confidence"`
}

// MaterialSummary is a processed support-material document.
type MaterialSummary struct {
	Source  string `json:"source"`
	Summary string `json:"summary"`
}

// Chunk is a heading-delimited slice of an existing content file,
// produced by discovery and consumed by the strategy oracle.
type Chunk struct {
	File    string `json:"file"`
	Heading string `json:"heading,omitempty"`
	Content string `json:"content"`
}

// GenerationEntry is the per-decision outcome of Phase 3. A failed entry
// records its error but never fails the phase.
type GenerationEntry struct {
	Decision       Decision `json:"decision"`
	Success        bool     `json:"success"`
	Content        string   `json:"content,omitempty"`         // CREATE output
	UpdatedContent string   `json:"updated_content,omitempty"` // UPDATE output
	Error          string   `json:"error,omitempty"`
}

// GenerationResults accumulates Phase-3 outcomes.
type GenerationResults struct {
	CreateResults []GenerationEntry `json:"create_results"`
	UpdateResults []GenerationEntry `json:"update_results"`
	CreatedFiles  []string          `json:"created_files"`
	UpdatedFiles  []string          `json:"updated_files"`
	Applied       bool              `json:"applied"`
}

// TOCResults is the Phase-4 outcome. Applied distinguishes the three
// observable endings: no changes needed, preview-only, and applied.
type TOCResults struct {
	Success      bool     `json:"success"`
	ChangesMade  bool     `json:"changes_made"`
	EntriesAdded []string `json:"entries_added,omitempty"`
	Content      string   `json:"content,omitempty"`
	Message      string   `json:"message,omitempty"`
	Applied      bool     `json:"applied"`
}

// Result is the single record accumulated across phases. It is created
// at the end of Phase 1 and mutated in place by later phases; it is
// returned to the caller however far the pipeline progressed.
type Result struct {
	// Phase 1: repository analysis
	WorkingDirectory         string            `json:"working_directory"`
	Justification            string            `json:"justification,omitempty"`
	Confidence               float64           `json:"confidence"`
	DirectoryReady           bool              `json:"directory_ready"`
	WorkingDirectoryFullPath string            `json:"working_directory_full_path,omitempty"`
	SetupError               string            `json:"setup_error,omitempty"`
	RepoURL                  string            `json:"repo_url"`
	RepoPath                 string            `json:"repo_path"`
	MaterialSummaries        []MaterialSummary `json:"material_summaries,omitempty"`
	ContentGoal              string            `json:"content_goal,omitempty"`
	ServiceArea              string            `json:"service_area,omitempty"`

	// Phase 2: content strategy
	ContentStrategy *ContentStrategy `json:"content_strategy,omitempty"`
	StrategyReady   bool             `json:"strategy_ready"`

	// Phase 3: content generation
	GenerationResults *GenerationResults `json:"generation_results,omitempty"`
	GenerationReady   bool               `json:"generation_ready"`

	// Phase 4: TOC management
	TOCResults *TOCResults `json:"toc_results,omitempty"`
	TOCReady   bool        `json:"toc_ready"`
	TOCSkipped bool        `json:"toc_skipped"`
}

// PhaseContext locates a collaborator call within the pipeline. It is
// passed explicitly instead of a process-wide step tracker.
type PhaseContext struct {
	Phase int `json:"phase"`
	Step  int `json:"step"`
}

// Brief is the pass-through run context handed to the oracle with every
// proposal request.
type Brief struct {
	RepoName         string
	WorkingDirectory string
	ContentGoal      string
	ServiceArea      string
}

// Oracle is the external advisory component that proposes directories,
// strategies, content, and TOC updates. Implementations block until the
// proposal is available; timeout and retry policy live behind this
// interface, not in the runner.
type Oracle interface {
	ProposeDirectory(ctx context.Context, structure string, materials []MaterialSummary, brief Brief) (*DirectoryProposal, error)
	ProposeStrategy(ctx context.Context, chunks []Chunk, materials []MaterialSummary, brief Brief) (*ContentStrategy, error)
	Generate(ctx context.Context, decision Decision, materials []MaterialSummary, brief Brief) (*GenerationEntry, error)
	ProposeTOC(ctx context.Context, existingTOC string, created, updated []string, decisions []Decision) (*TOCResults, error)
}

// SourceTree provides the repository working copy.
type SourceTree interface {
	// Resolve clones the repository under workDir, or updates an
	// existing working copy, and returns its local path.
	Resolve(ctx context.Context, url, workDir string) (string, error)

	// Structure renders a depth-limited snapshot of the tree for the
	// oracle.
	Structure(path string, maxDepth int) (string, error)

	// DisplayName derives a human-readable repository name from its URL.
	DisplayName(url string) string
}

// MaterialProcessor turns support-material paths into summaries.
type MaterialProcessor interface {
	Process(ctx context.Context, paths []string, repoPath string) ([]MaterialSummary, error)
}

// ChunkDiscoverer finds existing content chunks under the working
// directory.
type ChunkDiscoverer interface {
	Discover(ctx context.Context, dir string, brief Brief) ([]Chunk, error)
}

// TOCSource loads the existing manifest and validates replacement
// documents before they overwrite it.
type TOCSource interface {
	// Load returns the manifest content, or "" if none exists yet.
	Load(dir string) (string, error)

	// Validate rejects replacement content that is not a parseable
	// manifest document.
	Validate(content string) error
}

// DirectoryConfirmer accepts or rejects the Phase-1 proposal. oracleErr
// is non-nil when the oracle itself failed; the confirmer decides
// whether that is recoverable. A returned error aborts the run.
type DirectoryConfirmer interface {
	Confirm(ctx context.Context, proposal *DirectoryProposal, structure string, oracleErr error) (*DirectoryProposal, error)
}

// StrategyConfirmer accepts, amends, or substitutes the Phase-2
// strategy. It must always return a usable strategy: on oracle failure
// it returns a zero-confidence failure strategy rather than an error.
type StrategyConfirmer interface {
	Confirm(ctx context.Context, strategy *ContentStrategy, oracleErr error) (*ContentStrategy, error)
}
