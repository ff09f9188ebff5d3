package tool

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/go-logr/logr"

	"github.com/example/hydrate/pkg/hydrate"
	"github.com/example/hydrate/pkg/sot"
	"github.com/example/hydrate/pkg/util/texttable"
)

// Summary aggregates the task results of one run.
type Summary struct {
	// Mode tells what a result stands for; a cluster or a group.
	Mode sot.Mode
	// Results in source of truth row order.
	Results []hydrate.Result
}

// NewSummary returns a Summary over results.
func NewSummary(mode sot.Mode, results []hydrate.Result) *Summary {
	return &Summary{Mode: mode, Results: results}
}

// Attempted returns the number of tasks that ran.
func (s *Summary) Attempted() int {
	return len(s.Results)
}

// Succeeded returns the number of tasks that completed all their steps.
func (s *Summary) Succeeded() int {
	return s.Attempted() - s.Failed()
}

// Failed returns the number of tasks that did not complete.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Failures returns the failed results in row order.
func (s *Summary) Failures() []hydrate.Result {
	var answer []hydrate.Result
	for _, r := range s.Results {
		if r.Failed() {
			answer = append(answer, r)
		}
	}
	return answer
}

// Report writes the outcome of the run.
// All tasks succeeded; a single line on out.
// One or more failures; totals and one line per failed task on errOut.
// On verbose logging a table with the step outcome per task precedes the
// totals.
func (s *Summary) report(log logr.Logger, out, errOut io.Writer) {
	if log.V(1).Enabled() {
		s.writeTable(errOut)
	}

	subject := s.Mode.Subject()

	if s.Failed() == 0 {
		fmt.Fprintf(out, "%d %ss total, all rendered successfully\n", s.Attempted(), subject)
		return
	}

	fmt.Fprintf(errOut, "\nTotal %d %ss - %d rendered successfully, %d unsuccessful\n\n",
		s.Attempted(), subject, s.Succeeded(), s.Failed())

	for _, r := range s.Failures() {
		steps := strings.Join(r.FailedSteps(), ", ")
		if steps == "" {
			// no step got far enough to be charged; the run was cut short.
			steps = "aborted"
		}
		fmt.Fprintf(errOut, "%s %s failed: %s\n", title(subject), r.Name, steps)
	}
}

// WriteTable writes one row per task with the outcome of each step.
func (s *Summary) writeTable(w io.Writer) {
	tab := texttable.New("NAME", "GROUP", "TEMPLATE", "BUILD", "VALIDATE", "PUBLISH")
	for _, r := range s.Results {
		tab.Add(r.Name, r.Group,
			r.Template.String(), r.Build.String(), r.Validate.String(), r.Publish.String())
	}
	texttable.Write(tab, "  ", true, w)
}

// Title returns s with its first letter upper cased.
func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
