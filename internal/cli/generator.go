package cli

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/toyz/splice/internal/engine"
	"github.com/toyz/splice/internal/errors"
	"github.com/toyz/splice/internal/loader"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/utils"
)

// Summary describes one run
type Summary struct {
	DescriptorFiles []string
	Module          string
	Injectors       int
	Providers       int
	Frames          int
	Cached          int
	BuildID         string
	PlanFile        string
}

// Generator coordinates scanning, loading, planning and plan output
type Generator struct {
	reader         *utils.FileReader
	scanner        *DescriptorScanner
	moduleResolver *ModuleResolver
	writer         *PlanWriter
	diagnostics    *utils.DiagnosticSystem
	logger         *zap.Logger
	cache          *engine.PlanCache
	summary        Summary
}

// NewGenerator creates a generator. The plan cache is shared by every run of
// this generator, so repeated runs skip injectors whose descriptors did not
// change.
func NewGenerator(diagnostics *utils.DiagnosticSystem, logger *zap.Logger) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := utils.NewFileReader()
	return &Generator{
		reader:         reader,
		scanner:        NewDescriptorScanner(utils.NewFileProcessorWithReader(reader)),
		moduleResolver: NewModuleResolver(reader),
		writer:         NewPlanWriter(),
		diagnostics:    diagnostics,
		logger:         logger,
		cache:          engine.NewPlanCache(utils.DefaultCacheExpiration),
	}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() Summary {
	return g.summary
}

// Resolve plans every injector found under config.Paths and writes the plan
// document to config.Output
func (g *Generator) Resolve(config Config) error {
	return g.run(config, true)
}

// Check plans every injector found under config.Paths without writing
func (g *Generator) Check(config Config) error {
	return g.run(config, false)
}

func (g *Generator) run(config Config, write bool) error {
	config.Normalize()
	if err := config.Validate(); err != nil {
		return err
	}

	startTime := time.Now()
	g.summary = Summary{}
	g.diagnostics.Verbose("Starting resolution at %s", startTime.Format("15:04:05"))
	g.diagnostics.Debug("Scanning paths: %v", config.Paths)

	if write {
		g.diagnostics.StartProgress("Resolving module name")
		module, err := g.moduleResolver.ResolveModuleName(config.ModuleName)
		if err != nil {
			g.diagnostics.EndProgress(false, "")
			return err
		}
		g.summary.Module = module
		g.diagnostics.EndProgress(true, module)
	}

	g.diagnostics.StartProgress("Scanning for descriptor documents")
	files, err := g.scanner.ScanDescriptors(config.Paths)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	if len(files) == 0 {
		g.diagnostics.EndProgress(false, "")
		return errors.Incompletef(models.SourceLocation{}, "no descriptor documents (*%s) found in %v", utils.DescriptorSuffix, config.Paths).
			WithSuggestion("Try scanning parent directories or use the './...' pattern")
	}
	g.summary.DescriptorFiles = files
	g.diagnostics.EndProgress(true, pluralize(len(files), "file"))
	g.diagnostics.Indent()
	for _, file := range files {
		g.diagnostics.Verbose("%s", file)
	}
	g.diagnostics.Unindent()

	g.diagnostics.StartProgress("Loading descriptors")
	graph, err := loader.Load(files, loader.WithLogger(g.logger), loader.WithFileReader(g.reader))
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, pluralize(len(graph.Injectors), "injector"))

	g.diagnostics.StartProgress("Planning injectors")
	result, err := engine.New(engine.Options{
		Logger:       g.logger,
		LazyWrappers: config.LazyWrappers,
		Cache:        g.cache,
	}).Build(graph.Roots()...)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, "")

	g.summary.Injectors = len(result.Injectors)
	g.summary.Cached = result.Cached
	for _, plan := range result.Injectors {
		g.summary.Providers += len(plan.Providers)
		if plan.Frames != nil {
			g.summary.Frames += len(plan.Frames.Frames)
		}
		g.diagnostics.Debug("Injector %s: %d providers, %d builders, %d children",
			plan.Name(), len(plan.Providers), len(plan.Builders), len(plan.ChildFactories))
	}

	if write {
		doc := g.writer.Document(g.summary.Module, files, result)
		g.diagnostics.PhaseProgress("Writing " + config.Output)
		if err := g.writer.Write(config.Output, doc); err != nil {
			return err
		}
		g.summary.BuildID = doc.BuildID
		g.summary.PlanFile = config.Output
	}

	g.diagnostics.Verbose("Finished in %s", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
