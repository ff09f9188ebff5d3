package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/example/hydrate/pkg/hydrate"
	"github.com/example/hydrate/pkg/sot"
	"github.com/example/hydrate/pkg/tool"
)

var (
	// Version as set during build.
	Version string

	mode = flag.String("m", "",
		`Mode selects what a source of truth row stands for, one of;
cluster - a single cluster belonging to a group
group - a whole cluster group`)
	sotFile = flag.String("sot", "",
		`CSV file that enumerates the fleet`)
	basePath = flag.String("b", "",
		`Directory with the shared resource packages`)
	overlaysPath = flag.String("o", "",
		`Directory with one overlay subdirectory per cluster group`)
	outPath = flag.String("out", "",
		`Directory that receives the hydrated manifests`)

	outputSubdir = flag.String("output-subdir", "",
		`Where under -out manifests are placed, one of none, group, cluster
(defaults to cluster in cluster mode, none in group mode)`)
	splitOutput = flag.Bool("split-output", false,
		`Write one file per resource named <kind>_<namespace>_<name>.yaml instead of one manifest stream`)
	workers = flag.Int("workers", 1,
		`Number of rows hydrated concurrently`)

	check = flag.Bool("validate", false,
		`Run the policy check tool on hydrated output`)
	constraints = flag.String("constraints", hydrate.DefaultConstraintRoots[0],
		`Root searched for all/ and <group>/ constraint directories, "" skips it`)
	templateLibrary = flag.String("template-library", hydrate.DefaultConstraintRoots[1],
		`Second root searched for all/ and <group>/ constraint directories, "" skips it`)

	defaultOverlay = flag.String("default-overlay", "",
		`Overlay used when a group has no directory under -o`)
	modules = flag.String("modules", "",
		`Directory that is copied into each workspace next to the base`)
	valuesFile = flag.String("values", "",
		`Yaml file with values available to all templates`)
	vaultPath = flag.String("vault-path", "",
		`Directory configuring the vault read by the 'vault' template function`)

	registry = flag.String("registry", "",
		`Repository prefix hydrated manifests are pushed to, for example registry.example.org/fleet`)

	tempRoot = flag.String("temp", "",
		`Directory scratch directories are created in`)
	preserveTemp = flag.Bool("preserve-temp", false,
		`Keep scratch directories for debugging`)

	verbosity = flag.String("v", "0",
		`Log verbosity, higher numbers produce more output`)
	quiet = flag.Bool("q", false,
		`Only report errors and the summary`)
	showVersion = flag.Bool("version", false,
		`Print version and exit`)

	// repeatable flags.
	policies     stringList
	names        stringList
	groups       stringList
	tags         stringList
	registryTags stringList

	// Usage text argument: %[1]=program name, %[2]=program version.
	usage = `%[1]s %[2]s
%[1]s renders the manifests of a fleet of clusters.
For each source of truth row that passes the -name/-group/-tag filters it:
    template: copy base and overlay into a workspace and expand the *.tmpl files.
    build: run 'kustomize build' on the overlay.
    validate: run 'gator test' with the constraints that apply to the row group (-validate).
    publish: push the result to an OCI registry (-registry).

Templating uses 'https://golang.org/pkg/text/template/' with 'http://masterminds.github.io/sprig/'
and additional templating functions; toToml, to/fromYaml, to/fromJson, vault.
Row columns are available as {{ .Values.<column> }}.

Usage: %[1]s [options...]
`
)

func init() {
	flag.Var(&policies, "policy",
		`Constraint file or directory that always applies (can be repeated)`)
	flag.Var(&names, "name",
		`Only hydrate rows with this name (can be repeated)`)
	flag.Var(&groups, "group",
		`Only hydrate rows in this group (can be repeated)`)
	flag.Var(&tags, "tag",
		`Only hydrate rows having one of these tags (can be repeated)`)
	flag.Var(&registryTags, "registry-tag",
		`Tag applied to every pushed image (can be repeated, defaults to latest)`)
}

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, usage, filepath.Base(os.Args[0]), Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", filepath.Base(os.Args[0]), Version)
		return
	}

	if msg := validate(); len(msg) > 0 {
		_, _ = fmt.Fprintln(os.Stderr, "E", strings.Join(msg, ", "))
		os.Exit(2)
	}

	v, _ := strconv.Atoi(*verbosity)
	stdr.SetVerbosity(v)
	log := stdr.New(stdlog.New(os.Stderr, "I ", stdlog.Ltime))
	if *quiet {
		log = logr.Discard()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, _ := sot.ModeFromString(*mode)

	tl := &tool.Tool{
		Environ:         os.Environ(),
		Mode:            m,
		SotFilepath:     *sotFile,
		Select:          sot.Selector{Names: names, Groups: groups, Tags: tags},
		BasePath:        *basePath,
		OverlaysPath:    *overlaysPath,
		DefaultOverlay:  *defaultOverlay,
		ModulesPath:     *modules,
		OutPath:         *outPath,
		OutputSubdir:    getSubdir(m),
		Split:           *splitOutput,
		Workers:         *workers,
		Validate:        *check,
		ConstraintRoots: constraintRoots(),
		PolicyPaths:     policies,
		Registry:        *registry,
		RegistryTags:    registryTags,
		ValueFilepath:   *valuesFile,
		VaultPath:       *vaultPath,
		TempRoot:        *tempRoot,
		PreserveTemp:    *preserveTemp,
		Log:             log,
	}

	s, err := tl.Run(ctx, os.Stdout, os.Stderr)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "E", err)
		os.Exit(1)
	}
	if s.Failed() > 0 {
		os.Exit(1)
	}
}

// Validate checks flags and returns a list of error strings.
func validate() []string {
	var r []string

	m, err := sot.ModeFromString(*mode)
	if err != nil {
		r = append(r, "-m should be one of 'cluster' or 'group'")
	}

	for _, f := range []struct{ name, value string }{
		{"-sot", *sotFile},
		{"-b", *basePath},
		{"-o", *overlaysPath},
		{"-out", *outPath},
	} {
		if f.value == "" {
			r = append(r, f.name+" should be defined")
		}
	}

	if *outputSubdir != "" {
		if _, err := hydrate.SubdirFromString(*outputSubdir); err != nil {
			r = append(r, err.Error())
		}
	}
	if err == nil && *splitOutput && getSubdir(m) == hydrate.SubdirNone {
		r = append(r, "-split-output requires -output-subdir 'group' or 'cluster'")
	}

	if *workers < 1 {
		r = append(r, "-workers should be 1 or more")
	}

	if len(registryTags) > 0 && *registry == "" {
		r = append(r, "-registry-tag requires -registry")
	}

	if i, _ := strconv.Atoi(*verbosity); i < 0 || i > 5 {
		r = append(r, "-v should be in the range 0..5")
	} else if *quiet && i > 0 {
		r = append(r, "-q can not be combined with -v")
	}

	return r
}

// GetSubdir returns the output layout for m; the flag default depends on the
// mode.
func getSubdir(m sot.Mode) hydrate.Subdir {
	s := *outputSubdir
	if s == "" {
		if m == sot.ModeGroup {
			s = "none"
		} else {
			s = "cluster"
		}
	}
	d, _ := hydrate.SubdirFromString(s)
	return d
}

// ConstraintRoots returns the scoped constraint roots; an empty flag value
// drops the root.
func constraintRoots() []string {
	var r []string
	for _, p := range []string{*constraints, *templateLibrary} {
		if p != "" {
			r = append(r, p)
		}
	}
	return r
}

// StringList collects the values of a repeatable flag.
type stringList []string

// String makes the receiver implement flag.Value.
func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

// Set makes the receiver implement flag.Value.
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
