package orchestrator

// StatusLevel classifies observer status notifications.
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusSuccess StatusLevel = "success"
	StatusWarning StatusLevel = "warning"
	StatusError   StatusLevel = "error"
)

// SummaryItem is one human-readable label/value pair in an end-of-phase
// summary.
type SummaryItem struct {
	Label string
	Value string
}

// Observer receives progress notifications during a run. It is purely
// observational: no implementation may change any control-flow outcome.
type Observer interface {
	// PhaseStart announces a phase and its step count.
	PhaseStart(pc PhaseContext, name string, steps int)

	// Step reports the current step's description.
	Step(pc PhaseContext, description string)

	// Status reports an out-of-band notice.
	Status(level StatusLevel, message string)

	// Decision previews a single strategy decision.
	Decision(d Decision)

	// PhaseSummary reports end-of-phase results keyed by label.
	PhaseSummary(pc PhaseContext, name string, items []SummaryItem)
}

// NopObserver ignores every notification. It is the default when no
// progress channel is attached.
type NopObserver struct{}

func (NopObserver) PhaseStart(PhaseContext, string, int)            {}
func (NopObserver) Step(PhaseContext, string)                       {}
func (NopObserver) Status(StatusLevel, string)                      {}
func (NopObserver) Decision(Decision)                               {}
func (NopObserver) PhaseSummary(PhaseContext, string, []SummaryItem) {}

var _ Observer = NopObserver{}
