// Package wizard manages the browser-driven generation flow: one session per
// uploaded database, stepped through table selection, column configuration,
// and review before emission.
package wizard

// Step is a stage of the generation wizard.
type Step string

const (
	StepConnect          Step = "connect"
	StepSelectTables     Step = "select_tables"
	StepConfigureColumns Step = "configure_columns"
	StepReview           Step = "review"
	StepGenerated        Step = "generated"
)

// transitions lists the steps reachable from each step. Backward moves are
// always allowed so users can revise earlier choices.
var transitions = map[Step][]Step{
	StepConnect:          {StepSelectTables},
	StepSelectTables:     {StepConnect, StepConfigureColumns},
	StepConfigureColumns: {StepConnect, StepSelectTables, StepReview},
	StepReview:           {StepConnect, StepSelectTables, StepConfigureColumns, StepGenerated},
	StepGenerated:        {StepConnect, StepSelectTables, StepConfigureColumns, StepReview},
}

// Valid reports whether s is a known wizard step.
func (s Step) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanMoveTo reports whether the flow permits moving from s to next.
func (s Step) CanMoveTo(next Step) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
