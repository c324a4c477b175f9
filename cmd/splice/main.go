package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toyz/splice/internal/cli"
	"github.com/toyz/splice/internal/utils"
)

var version = "dev"

// defaultConfigFile is read when --config is not given and the file exists
const defaultConfigFile = ".splice/config.yaml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, out, errOut io.Writer) int {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.Execute(); err != nil {
		cli.NewDiagnosticReporterTo(errOut, a.config.Verbose).ReportError(err)
		return 1
	}
	return 0
}

type app struct {
	v       *viper.Viper
	cfgFile string
	config  cli.Config
	out     io.Writer
	errOut  io.Writer
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "splice",
		Short: "Compile-time dependency injection resolver",
		Long: `Splice reads specification, dependency and injector descriptors (*.splice.yaml),
resolves every provider request at build time and writes a plan document
(*.plan.yaml) describing exactly which factory answers each request.

Path patterns follow Go conventions:
  ./...              Scan current directory and all subdirectories recursively
  ./internal/...     Scan internal directory and all its subdirectories
  ./pkg/app          Scan only the specific directory (no recursion)`,
		Version:           version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.loadConfig(args) },
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: "+defaultConfigFile+" when present)")
	flags.String("module", "", "module name stamped into the plan (defaults to go.mod module)")
	flags.StringP("output", "o", cli.DefaultOutput, "plan document to write")
	flags.BoolP("verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolP("quiet", "q", false, "only show errors and final results")
	flags.Bool("debug", false, "trace resolution with a development logger")
	flags.StringSlice("lazy-wrapper", nil, "generic wrapper names treated as deferred requests (repeatable)")

	bind := map[string]string{
		"module":        "module",
		"output":        "output",
		"verbose":       "verbose",
		"quiet":         "quiet",
		"debug":         "debug",
		"lazy_wrappers": "lazy-wrapper",
	}
	for key, name := range bind {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(a.resolveCmd(), a.checkCmd(), a.cleanCmd(), a.versionCmd())
	return root
}

// loadConfig merges flags, SPLICE_* environment variables and the config
// file, in that order of precedence. Positional paths replace configured ones.
func (a *app) loadConfig(args []string) error {
	a.v.SetEnvPrefix("SPLICE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault("paths", cli.DefaultPaths)

	switch {
	case a.cfgFile != "":
		a.v.SetConfigFile(a.cfgFile)
	case fileExists(defaultConfigFile):
		a.v.SetConfigFile(defaultConfigFile)
	}
	if a.v.ConfigFileUsed() != "" {
		if err := a.v.ReadInConfig(); err != nil {
			return utils.WrapLoadError("config file "+a.v.ConfigFileUsed(), err)
		}
	}

	var config cli.Config
	if err := a.v.Unmarshal(&config); err != nil {
		return utils.WrapParseError("configuration", err)
	}
	if len(args) > 0 {
		config.Paths = args
	}
	config.Normalize()
	a.config = config
	return config.Validate()
}

func (a *app) diagnostics() *utils.DiagnosticSystem {
	d := utils.NewDiagnosticSystem(a.config.DiagnosticLevel())
	d.SetOutput(a.out, a.errOut)
	return d
}

func (a *app) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [path-patterns...]",
		Short: "Resolve every injector and write the plan document",
		Example: `  splice resolve ./...
  splice resolve --module github.com/myorg/myapp -o build/app.plan.yaml ./internal/...
  SPLICE_LAZY_WRAPPERS=Lazy,Provider splice resolve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(true)
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [path-patterns...]",
		Short: "Resolve every injector without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(false)
		},
	}
}

func (a *app) generate(write bool) error {
	diagnostics := a.diagnostics()
	logger, err := a.config.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if write {
		diagnostics.Header("Resolving injectors")
	} else {
		diagnostics.Header("Checking injectors")
	}
	diagnostics.SourcePath(a.config.Paths...)

	if a.config.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Output: %s", a.config.Output)
		if a.config.ModuleName != "" {
			diagnostics.List("Custom module: %s", a.config.ModuleName)
		}
		if a.config.LazyWrappers != nil {
			diagnostics.List("Lazy wrappers: %s", strings.Join(a.config.LazyWrappers, ", "))
		}
		if used := a.v.ConfigFileUsed(); used != "" {
			diagnostics.List("Config file: %s", used)
		}
	}

	generator := cli.NewGenerator(diagnostics, logger)
	if write {
		err = generator.Resolve(a.config)
	} else {
		err = generator.Check(a.config)
	}
	if err != nil {
		return err
	}

	summary := generator.GetSummary()
	stats := map[string]interface{}{
		"Descriptor files": len(summary.DescriptorFiles),
		"Injectors":        summary.Injectors,
		"Providers":        summary.Providers,
		"Frames":           summary.Frames,
	}
	if write {
		stats["Plan file"] = summary.PlanFile
		stats["Build"] = summary.BuildID
	}
	diagnostics.Summary("Resolution Complete!", stats)

	if write {
		diagnostics.Complete("Plan written to " + summary.PlanFile)
	} else {
		diagnostics.Complete("Every injector resolves")
	}
	return nil
}

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [path-patterns...]",
		Short: "Delete generated plan documents (*.plan.yaml)",
		RunE: func(cmd *cobra.Command, args []string) error {
			diagnostics := a.diagnostics()
			diagnostics.Header("Cleaning plan documents")
			diagnostics.StartProgress("Removing generated files")

			removed, err := cli.NewCleaner(nil).CleanGeneratedFiles(a.config.Paths)
			if err != nil {
				diagnostics.EndProgress(false, "")
				return err
			}
			diagnostics.EndProgress(true, fmt.Sprintf("%d removed", len(removed)))
			for _, file := range removed {
				diagnostics.Verbose("%s", file)
			}
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the splice version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "splice %s\n", version)
			return err
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

