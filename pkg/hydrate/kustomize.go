package hydrate

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/example/hydrate/pkg/util/exe"
	"github.com/example/hydrate/pkg/util/exe/kustomize"
)

// Kustomize can run the kustomize cli.
type Kustomize struct {
	// Environ are the environment variables on kustomize invocation.
	Environ []string
	// Kustomize binary name.
	Kustomize string

	Log logr.Logger
}

var _ Builder = Kustomize{}

// Build runs kustomize.
func (k Kustomize) Build(ctx context.Context, dir, out string) (string, string, error) {
	return kustomize.Build(ctx, k.Log, k.kustomizeOpt(), dir, out)
}

func (k Kustomize) kustomizeOpt() *kustomize.Opt {
	return &kustomize.Opt{
		ExeOpt: &exe.Opt{
			Env: k.Environ,
		},
		Kustomize: k.Kustomize,
	}
}
