package hydrate

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/example/hydrate/pkg/util/exe"
	"github.com/example/hydrate/pkg/util/exe/gator"
)

// Gator can run the gator cli.
type Gator struct {
	// Environ are the environment variables on gator invocation.
	Environ []string
	// Gator binary name.
	Gator string

	Log logr.Logger
}

var _ Checker = Gator{}

// Test runs gator.
func (g Gator) Test(ctx context.Context, paths ...string) (string, string, error) {
	return gator.Test(ctx, g.Log, g.gatorOpt(), paths...)
}

func (g Gator) gatorOpt() *gator.Opt {
	return &gator.Opt{
		ExeOpt: &exe.Opt{
			Env: g.Environ,
		},
		Gator: g.Gator,
	}
}
