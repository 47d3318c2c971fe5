package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gqlbundle/internal/build"
	"gqlbundle/internal/codegen"
	"gqlbundle/internal/config"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/ident"
	"gqlbundle/internal/logging"
	"gqlbundle/internal/packager"
	"gqlbundle/internal/persisted"
	"gqlbundle/internal/walkwalk"
	"gqlbundle/internal/xexec"
)

// errDrift signals a check that found differences; the diffs are already
// printed.
var errDrift = errors.New("library is out of date")

type app struct {
	stdout, stderr io.Writer
	getenv         func(string) string
	// pipeline builds the collaborators for a resolved configuration.
	pipeline func(cfg config.Config, log logrus.FieldLogger) build.Pipeline

	flags flagValues
}

type flagValues struct {
	configPath     string
	schema         string
	queries        string
	out            string
	workDir        string
	archive        string
	bundler        string
	codegenCmd     string
	tscCmd         string
	logFormat      string
	verbose        bool
	persisted      bool
	minify         bool
	flatten        bool
	gitignore      bool
	organizational []string
	exclude        []string
	concurrency    int
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, getenv: os.Getenv, pipeline: defaultPipeline}
}

func defaultPipeline(cfg config.Config, log logrus.FieldLogger) build.Pipeline {
	runner := xexec.OS{}
	var bundler packager.Bundler = packager.Esbuild{Minify: cfg.Minify}
	if cfg.Bundler == config.BundlerInline {
		bundler = packager.Inline{}
	}
	return build.Pipeline{
		Generator: codegen.Apollo{Runner: runner, Command: cfg.Tools.Codegen},
		Checker:   packager.Tsc{Runner: runner, Command: cfg.Tools.Tsc},
		Bundler:   bundler,
		Log:       log,
	}
}

// run executes args and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errDrift) {
		a.report(err)
	}
	return 1
}

func (a *app) report(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(a.stderr, "ERROR: ")
	fmt.Fprintln(a.stderr, err.Error())
	if diag := failure.DiagnosticsOf(err); diag != "" {
		fmt.Fprintln(a.stderr, diag)
	}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gqlbundle",
		Short:         "Compile GraphQL operations into a typed TypeScript library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	f := &a.flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	pf.StringVarP(&f.schema, "schema", "s", "", "GraphQL schema file")
	pf.StringVarP(&f.queries, "queries", "q", "", "folder of operation files")
	pf.StringVarP(&f.out, "out", "o", "lib", "output library directory")
	pf.StringVar(&f.workDir, "work-dir", "", "parent of the temporary working directory")
	pf.BoolVar(&f.flatten, "flatten", false, "derive identifiers from file names only")
	pf.StringSliceVar(&f.organizational, "organizational", ident.DefaultOrganizational, "directory names dropped from identifiers")
	pf.StringSliceVar(&f.exclude, "exclude", nil, "basename prefixes skipped during discovery")
	pf.BoolVar(&f.gitignore, "gitignore", false, "honor .gitignore in the queries folder")
	pf.IntVar(&f.concurrency, "concurrency", 0, "parallel document compilations (0 = GOMAXPROCS)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&f.logFormat, "log-format", logging.FormatText, "log format: text or json")

	cmd.AddCommand(a.buildCommand(), a.manifestCommand(), a.checkCommand(), a.versionCommand())
	return cmd
}

func (a *app) buildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and publish the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := a.resolve(cmd)
			if err != nil {
				return err
			}
			res, err := a.pipeline(cfg, log).Run(cmd.Context(), options(cfg))
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen)
			green.Fprintf(a.stdout, "Built %d operations into %s (bundle %s)\n",
				len(res.Manifest.Entries), res.Out, res.Manifest.BundleID)
			if res.Archive != "" {
				fmt.Fprintf(a.stdout, "Archive: %s\n", res.Archive)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&a.flags.archive, "archive", "", "also write a reproducible ZIP of the library")
	f.BoolVar(&a.flags.persisted, "persisted", false, "emit "+persisted.File)
	f.StringVar(&a.flags.bundler, "bundler", config.BundlerEsbuild, "bundler: esbuild or inline")
	f.BoolVar(&a.flags.minify, "minify", false, "minify the esbuild bundle")
	f.StringVar(&a.flags.codegenCmd, "codegen-cmd", codegen.DefaultApolloCommand, "type generator command line")
	f.StringVar(&a.flags.tscCmd, "tsc-cmd", packager.DefaultTscCommand, "TypeScript compiler command line")
	return cmd
}

func (a *app) manifestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Print the discovered operations as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.resolve(cmd)
			if err != nil {
				return err
			}
			m, err := build.Discover(cmd.Context(), options(cfg))
			if err != nil {
				return err
			}
			m.Root = ""
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(m)
		},
	}
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the published library matches the queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.resolve(cmd)
			if err != nil {
				return err
			}
			drift, err := build.Check(cmd.Context(), options(cfg))
			if err != nil {
				return err
			}
			if len(drift) == 0 {
				color.New(color.FgGreen).Fprintf(a.stdout, "%s is up to date\n", cfg.Out)
				return nil
			}
			for _, d := range drift {
				fmt.Fprint(a.stdout, d.Diff)
			}
			color.New(color.FgYellow).Fprintf(a.stderr, "%s is out of date (%d files differ)\n", cfg.Out, len(drift))
			return errDrift
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "gqlbundle %s\n", version)
		},
	}
}

// resolve layers defaults, the config file, the environment and the flags
// set on the command line, then builds the logger.
func (a *app) resolve(cmd *cobra.Command) (config.Config, logrus.FieldLogger, error) {
	f := a.flags
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, nil, err
	}
	boot, _ := logging.New(a.stderr, "warn", logging.FormatText)
	config.LoadEnv(boot)
	if err := config.ApplyEnv(&cfg, a.getenv); err != nil {
		return cfg, nil, err
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	setStr := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool, v bool) {
		if changed(name) {
			*dst = v
		}
	}
	setStr("schema", &cfg.Schema, f.schema)
	setStr("queries", &cfg.Queries, f.queries)
	setStr("out", &cfg.Out, f.out)
	setStr("work-dir", &cfg.WorkDir, f.workDir)
	setStr("archive", &cfg.Archive, f.archive)
	setStr("bundler", &cfg.Bundler, f.bundler)
	setStr("codegen-cmd", &cfg.Tools.Codegen, f.codegenCmd)
	setStr("tsc-cmd", &cfg.Tools.Tsc, f.tscCmd)
	setStr("log-format", &cfg.Log.Format, f.logFormat)
	setBool("persisted", &cfg.Persisted, f.persisted)
	setBool("minify", &cfg.Minify, f.minify)
	setBool("flatten", &cfg.Flatten, f.flatten)
	setBool("gitignore", &cfg.Gitignore, f.gitignore)
	if changed("organizational") {
		cfg.Organizational = f.organizational
	}
	if changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	log, err := logging.New(a.stderr, cfg.Log.Level, strings.ToLower(cfg.Log.Format))
	if err != nil {
		return cfg, nil, failure.Wrap(failure.Config, err, "configure logging")
	}
	return cfg, log, nil
}

func options(cfg config.Config) build.Options {
	return build.Options{
		Schema:  cfg.Schema,
		Queries: cfg.Queries,
		Out:     cfg.Out,
		WorkDir: cfg.WorkDir,
		Deriver: ident.New(ident.DefaultExt, cfg.Organizational, cfg.Flatten),
		Walk: walkwalk.Options{
			Exclude:      cfg.Exclude,
			UseGitignore: cfg.Gitignore,
		},
		Concurrency:   cfg.Concurrency,
		ScalarAliases: cfg.Scalars,
		Persisted:     cfg.Persisted,
		Archive:       cfg.Archive,
	}
}
