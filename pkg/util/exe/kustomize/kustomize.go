package kustomize

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/example/hydrate/pkg/util/exe"
)

// Opt are the command options.
type Opt struct {
	// ExeOpt optionally set a working directory, environment.
	ExeOpt *exe.Opt
	// Kustomize optionally selects the executable to use.
	Kustomize string
}

// Build runs 'kustomize build dir -o out' and returns stdout and stderr.
// Dir is resolved relative to the working directory in options.
func Build(ctx context.Context, log logr.Logger, options *Opt, dir, out string) (stdout string, stderr string, err error) {
	c := "kustomize"
	var o *exe.Opt

	if options != nil {
		if options.ExeOpt != nil {
			o = options.ExeOpt
		}

		if options.Kustomize != "" {
			c = options.Kustomize
		}
	}

	a := []string{"build", dir, "-o", out}

	stdout, stderr, err = exe.Run(ctx, log, o, "", c, a...)

	return
}
