package hydrate

// StepStatus is the outcome of one pipeline step.
type StepStatus int

const (
	// StepSkipped means the step did not run.
	StepSkipped StepStatus = iota
	// StepSuccess means the step completed.
	StepSuccess
	// StepFailure means the step did not complete.
	StepFailure
)

// String makes the receiver implement Stringer.
func (s StepStatus) String() string {
	switch s {
	case StepSuccess:
		return "success"
	case StepFailure:
		return "failure"
	}
	return "skipped"
}

// Result is the terminal state of one task.
type Result struct {
	// Name of the cluster (the group itself in group mode).
	Name string
	// Group of the cluster.
	Group string

	// Step outcomes in pipeline order.
	Template StepStatus
	Build    StepStatus
	Validate StepStatus
	Publish  StepStatus

	// Errs are the errors recorded by failing steps.
	Errs []error
}

// Failed returns true when the task did not complete.
func (r Result) Failed() bool {
	return len(r.Errs) > 0
}

// FailedSteps returns the names of the failed steps in pipeline order.
func (r Result) FailedSteps() []string {
	var ss []string
	for _, s := range []struct {
		name   string
		status StepStatus
	}{
		{"template", r.Template},
		{"build", r.Build},
		{"validate", r.Validate},
		{"publish", r.Publish},
	} {
		if s.status == StepFailure {
			ss = append(ss, s.name)
		}
	}
	return ss
}
