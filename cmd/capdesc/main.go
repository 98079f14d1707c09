// Package main provides the capdesc command-line tool. It classifies
// commands from their documentation, emits audit reports, encodes binary
// capability descriptors, and maintains the descriptor registry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/capdesc/go-capdesc/internal/auditreport"
	"github.com/capdesc/go-capdesc/internal/batch"
	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/catalog"
	"github.com/capdesc/go-capdesc/internal/classifier"
	"github.com/capdesc/go-capdesc/internal/color"
	"github.com/capdesc/go-capdesc/internal/config"
	"github.com/capdesc/go-capdesc/internal/descriptor"
	"github.com/capdesc/go-capdesc/internal/logging"
	"github.com/capdesc/go-capdesc/internal/registry"
	"github.com/capdesc/go-capdesc/internal/terminal"
	"github.com/capdesc/go-capdesc/internal/watch"
)

// Error definitions
var (
	ErrCommandRequired    = errors.New("command name is required")
	ErrUnknownSubcommand  = errors.New("unknown subcommand")
	ErrWatchPathsRequired = errors.New("watch mode requires watch paths")
	ErrNoBatchInputs      = errors.New("batch mode requires documentation files")
	ErrNoFamilyInputs     = errors.New("family mode requires a root command and documentation files")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: capdesc [flags] <subcommand> [args]

Subcommands:
  classify <command> [docfile]   classify a command and print its audit report
  encode   <command> [docfile]   classify and write the binary descriptor
  batch    <docfile>...          classify many documentation files concurrently
  family   <root> <docfile>...   classify a subcommand set and write the family
                                 record followed by one delta per subcommand
  watch                          reclassify documentation files as they change
  list                           list commands in the descriptor registry

Flags:
`)
	flag.PrintDefaults()
}

var (
	configPath = flag.String("config", "", "path to TOML config file")
	envFile    = flag.String("env-file", "", "path to environment file")
	logLevel   = flag.String("log-level", "", "log level (debug, info, warn, error); overrides config")
	auditLog   = flag.String("audit-log", "", "path to JSON audit log file")
	asJSON     = flag.Bool("json", false, "print audit reports as JSON")
	hexOut     = flag.Bool("hex", false, "force hex descriptor output")
	rawOut     = flag.Bool("raw", false, "force raw descriptor output")
	noRegister = flag.Bool("no-register", false, "skip registry updates")
)

func main() {
	runID := logging.GenerateRunID()

	if err := run(runID); err != nil {
		fmt.Fprintf(os.Stderr, "capdesc: %v\n", err)
		os.Exit(1)
	}
}

func run(runID string) error {
	flag.Usage = usage
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return fmt.Errorf("failed to load environment file: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = captypes.LogLevel(*logLevel)
	}

	logger, err := logging.Setup(logging.Options{
		Level:        cfg.LogLevel,
		AuditLogPath: *auditLog,
		RunID:        runID,
	})
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	app, err := newApp(cfg, logger, runID)
	if err != nil {
		return err
	}
	defer app.close()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return ErrCommandRequired
	}

	switch args[0] {
	case "classify":
		return app.classify(ctx, args[1:])
	case "encode":
		return app.encode(ctx, args[1:])
	case "batch":
		return app.batch(ctx, args[1:])
	case "family":
		return app.family(ctx, args[1:])
	case "watch":
		return app.watch(ctx)
	case "list":
		return app.list()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSubcommand, args[0])
	}
}

func loadConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		path = os.Getenv("CAPDESC_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// app bundles the wired components for one invocation.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	runID      string
	classifier *classifier.Classifier
	variant    descriptor.Variant
	store      *registry.Store
	audit      *auditreport.Logger
	output     *terminal.Detector
}

func newApp(cfg *config.Config, logger *slog.Logger, runID string) (*app, error) {
	cat := catalog.Default()
	if cfg.OverlayPath != "" {
		overlaid, err := catalog.LoadOverlay(cat, cfg.OverlayPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog overlay: %w", err)
		}
		cat = overlaid
	}

	override, err := cfg.ClassifierOverride()
	if err != nil {
		return nil, err
	}
	variant, err := cfg.DescriptorVariant()
	if err != nil {
		return nil, err
	}

	registryPath := cfg.RegistryPath
	if env := os.Getenv("CAPDESC_REGISTRY"); env != "" {
		registryPath = env
	}
	var store *registry.Store
	if registryPath != "" {
		store, err = registry.Open(registryPath)
		if err != nil {
			return nil, err
		}
	}

	mode := terminal.ModeAuto
	switch {
	case *hexOut:
		mode = terminal.ModeHex
	case *rawOut:
		mode = terminal.ModeRaw
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		runID:      runID,
		classifier: classifier.New(cat, classifier.Options{Override: override, Logger: logger}),
		variant:    variant,
		store:      store,
		audit:      auditreport.NewLogger(logger),
		output:     terminal.NewDetector(mode),
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close registry", "error", err)
		}
	}
}

func (a *app) classifyOne(command, docPath string) (captypes.ClassificationResult, error) {
	var doc string
	if docPath != "" {
		data, err := os.ReadFile(docPath)
		if err != nil {
			return captypes.ClassificationResult{}, fmt.Errorf("failed to read documentation: %w", err)
		}
		doc = string(data)
	}
	return a.classifier.Classify(command, doc), nil
}

func (a *app) register(result captypes.ClassificationResult) error {
	if a.store == nil || *noRegister {
		return nil
	}
	encoded, err := descriptor.Encode(result, descriptor.PerfHints{}, a.variant)
	if err != nil {
		return err
	}
	if _, err := a.store.Register(result, encoded, a.runID); err != nil {
		return fmt.Errorf("failed to register descriptor: %w", err)
	}
	return nil
}

func (a *app) emitReport(ctx context.Context, result captypes.ClassificationResult) error {
	report := auditreport.New(result, a.runID, time.Now())
	a.audit.LogClassification(ctx, report)

	if *asJSON {
		data, err := report.MarshalIndent()
		if err != nil {
			return err
		}
		if err := auditreport.ValidateJSON(data); err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	return report.Render(os.Stdout)
}

func (a *app) classify(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrCommandRequired
	}
	docPath := ""
	if len(args) > 1 {
		docPath = args[1]
	}

	result, err := a.classifyOne(args[0], docPath)
	if err != nil {
		return err
	}
	if err := a.register(result); err != nil {
		return err
	}
	return a.emitReport(ctx, result)
}

func (a *app) encode(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrCommandRequired
	}
	docPath := ""
	if len(args) > 1 {
		docPath = args[1]
	}

	result, err := a.classifyOne(args[0], docPath)
	if err != nil {
		return err
	}

	encoded, err := descriptor.Encode(result, descriptor.PerfHints{}, a.variant)
	if err != nil {
		return err
	}
	if err := a.register(result); err != nil {
		return err
	}

	a.audit.LogDescriptorEncoded(ctx, result.Command, a.variant.String(), len(encoded))
	return a.output.WriteDescriptor(os.Stdout, encoded)
}

func (a *app) batch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrNoBatchInputs
	}

	jobs := make([]batch.Job, 0, len(args))
	for _, path := range args {
		jobs = append(jobs, batch.Job{
			Command: watch.CommandFromPath(path),
			DocPath: path,
		})
	}

	results, err := batch.Run(ctx, a.classifier, jobs, a.cfg.Workers)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			a.logger.Error("Batch job failed", "command", r.Job.Command, "error", r.Err)
			continue
		}
		if err := a.register(r.Output); err != nil {
			return err
		}
		if err := a.emitReport(ctx, r.Output); err != nil {
			return err
		}
	}

	a.logger.Info("Batch completed",
		"jobs", len(results),
		"failed", failed,
	)
	if failed > 0 {
		return fmt.Errorf("%d of %d batch jobs failed", failed, len(results))
	}
	return nil
}

// family classifies one documentation file per subcommand and writes the
// family record followed by one delta record per subcommand, in input order.
func (a *app) family(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return ErrNoFamilyInputs
	}
	root := args[0]

	jobs := make([]batch.Job, 0, len(args)-1)
	for _, path := range args[1:] {
		jobs = append(jobs, batch.Job{
			Command: root + " " + watch.CommandFromPath(path),
			DocPath: path,
		})
	}

	results, err := batch.Run(ctx, a.classifier, jobs, a.cfg.Workers)
	if err != nil {
		return err
	}

	// A family record is only meaningful over the complete subcommand set,
	// so any failed member aborts the whole encoding.
	members := make([]captypes.ClassificationResult, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("failed to classify %q: %w", r.Job.Command, r.Err)
		}
		members = append(members, r.Output)
	}

	fam, err := descriptor.NewFamily(root, members)
	if err != nil {
		return err
	}

	record := descriptor.EncodeFamily(fam)
	a.audit.LogDescriptorEncoded(ctx, root, "family", len(record))
	return a.writeFamily(os.Stdout, fam, record)
}

// writeFamily emits the encoded family record and then one delta record per
// subcommand in registration order.
func (a *app) writeFamily(w io.Writer, fam *descriptor.Family, record []byte) error {
	if err := a.output.WriteDescriptor(w, record); err != nil {
		return err
	}
	for _, name := range fam.Subcommands() {
		delta, err := descriptor.EncodeDelta(fam, name)
		if err != nil {
			return err
		}
		if err := a.output.WriteDescriptor(w, delta); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) watch(ctx context.Context) error {
	if len(a.cfg.WatchPaths) == 0 {
		return ErrWatchPathsRequired
	}

	settle := time.Duration(a.cfg.WatchSettleSeconds) * time.Second
	watcher, err := watch.New(a.classifier, a.cfg.WatchPaths, settle)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	a.logger.Info("Watching documentation paths", "paths", a.cfg.WatchPaths)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-watcher.Updates():
			if !ok {
				return nil
			}
			if err := a.register(update.Result); err != nil {
				a.logger.Error("Failed to register updated descriptor",
					"command", update.Command, "error", err)
				continue
			}
			report := auditreport.New(update.Result, a.runID, update.Timestamp)
			a.audit.LogClassification(ctx, report)
		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			a.logger.Warn("Watch error", "error", err)
		}
	}
}

func (a *app) list() error {
	if a.store == nil {
		return errors.New("registry is not configured")
	}
	commands, err := a.store.Commands()
	if err != nil {
		return err
	}
	colorize := terminal.StdoutIsTerminal()
	for _, command := range commands {
		entry, err := a.store.Current(command)
		if err != nil {
			return err
		}
		// Pad before coloring so escape sequences do not skew the columns.
		level := fmt.Sprintf("%-12s", entry.RiskLevel)
		if colorize {
			level = color.ForRiskLevel(entry.RiskLevel)(level)
		}
		fmt.Printf("%-20s %s %-9s score=%.3f flags=%s\n",
			entry.Command, level, entry.PrivilegeLevel, entry.RiskScore, entry.Flags)
	}
	return nil
}
