package gator

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/example/hydrate/pkg/util/exe"
)

// Opt are the command options.
type Opt struct {
	// ExeOpt optionally set a working directory, environment.
	ExeOpt *exe.Opt
	// Gator optionally selects the executable to use.
	Gator string
}

// Test runs 'gator test' with a -f flag per path and returns stdout and stderr.
// Paths may refer to constraint (template) files, directories or rendered
// manifests; gator treats them all as one corpus.
func Test(ctx context.Context, log logr.Logger, options *Opt, paths ...string) (stdout string, stderr string, err error) {
	c := "gator"
	var o *exe.Opt

	if options != nil {
		if options.ExeOpt != nil {
			o = options.ExeOpt
		}

		if options.Gator != "" {
			c = options.Gator
		}
	}

	a := []string{"test"}
	for _, p := range paths {
		a = append(a, "-f", p)
	}

	stdout, stderr, err = exe.Run(ctx, log, o, "", c, a...)

	return
}
