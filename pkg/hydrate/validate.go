package hydrate

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
)

// DefaultConstraintRoots are the conventional directories searched for
// constraints.
var DefaultConstraintRoots = []string{
	filepath.Join("validation-gatekeeper", "constraints"),
	filepath.Join("validation-gatekeeper", "template-library"),
}

// ConstraintPaths returns the constraint paths that apply to group.
// Per root only the all/ and <group>/ subdirectories apply, other content is
// for other groups.
// Explicitly configured paths always apply.
func (x *Hydrator) constraintPaths(group string) []string {
	subs := []string{"all"}
	if group != "" && group != "all" {
		subs = append(subs, group)
	}

	var r []string
	for _, root := range x.ConstraintRoots {
		for _, s := range subs {
			p := filepath.Join(root, s)
			if dirExists(p) {
				r = append(r, p)
			}
		}
	}

	return append(r, x.PolicyPaths...)
}

// Validate runs the policy check tool on target, the placed output of a task.
// Without any constraint path for group the check is skipped; an empty
// constraint corpus proves nothing.
func (x *Hydrator) validate(ctx context.Context, group, target string) (StepStatus, error) {
	paths := x.constraintPaths(group)
	if len(paths) == 0 {
		x.Log.Info("no constraints found, skipping validation", "group", group, "roots", x.ConstraintRoots)
		return StepSkipped, nil
	}

	stdout, stderr, err := x.Check.Test(ctx, append(paths, target)...)
	if err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return StepFailure, &ToolInvocationError{Tool: ee.Name, Err: err}
		}
		return StepFailure, &ValidationFailure{Stdout: stdout, Stderr: stderr, Err: err}
	}

	return StepSuccess, nil
}
