package hydrate

import (
	"fmt"
	"strings"
)

// WorkspaceError means the task scratch directory could not be populated.
type WorkspaceError struct {
	// Dir is the scratch directory (or its intended parent).
	Dir string
	Err error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s: %v", e.Dir, e.Err)
}

func (e *WorkspaceError) Unwrap() error { return e.Err }

// TemplateError means a template could not be expanded.
type TemplateError struct {
	// Path of the template relative to the workspace.
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// BuildError means the build tool failed or could not run.
type BuildError struct {
	// Dir is the directory the build tool was pointed at.
	Dir string
	// Stderr is the build tool diagnostic output, empty when the tool did not run.
	Stderr string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Dir, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// AmbiguousResourceError means a manifest stream contains resources that split
// to the same file.
type AmbiguousResourceError struct {
	Duplicates []KindNamespaceName
}

func (e *AmbiguousResourceError) Error() string {
	ss := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		ss[i] = d.String()
	}
	return "resources overwrite each other when split: " + strings.Join(ss, "; ")
}

// ValidationFailure means the policy check tool reported violations.
type ValidationFailure struct {
	// Stdout and Stderr hold the policy check tool diagnostics verbatim.
	Stdout, Stderr string
	Err            error
}

func (e *ValidationFailure) Error() string {
	s := strings.TrimSpace(e.Stdout)
	if s == "" {
		s = strings.TrimSpace(e.Stderr)
	}
	if s == "" {
		return fmt.Sprintf("validate: %v", e.Err)
	}
	return fmt.Sprintf("validate: %s", s)
}

func (e *ValidationFailure) Unwrap() error { return e.Err }

// ToolInvocationError means an external tool could not be started.
type ToolInvocationError struct {
	// Tool is the binary that was attempted.
	Tool string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }
