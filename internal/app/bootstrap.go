package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"me_msggen/internal/domain"
	"me_msggen/internal/engine"
	"me_msggen/internal/infra"
	"me_msggen/internal/infra/storage"
	"me_msggen/internal/loader"
	"me_msggen/internal/sink"
)

// Paths are the five positional files of a run
type Paths struct {
	StockFile    string
	EventFile    string
	ModelSeqFile string
	TestOutput   string
	SeededOutput string
}

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Archive  domain.RunArchive
	Registry *domain.Registry
	Metrics  *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{
		Registry: domain.DefaultRegistry(),
		Metrics:  infra.GlobalMetrics,
	}
}

// Initialize loads config, installs the logger and opens the archive if enabled.
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("🚀 Bootstrapping message generator...", slog.String("version", cfg.App.Version))

	// 3. Initialize Storage (DB)
	if cfg.Storage.Enabled {
		store, err := storage.NewStorage(cfg.Storage.Path)
		if err != nil {
			return err
		}
		b.Archive = store
		slog.Info("✅ Run archive ready", slog.String("path", cfg.Storage.Path))
	}

	return nil
}

// Close releases the archive
func (b *Bootstrap) Close() {
	if b.Archive != nil {
		if err := b.Archive.Close(); err != nil {
			slog.Warn("Failed to close archive", slog.Any("error", err))
		}
	}
}

// Generate runs the whole pipeline. All inputs are loaded and all
// messages generated before any output is opened, and output files are
// staged and renamed into place together, so a failed run leaves no
// partial output behind.
func (b *Bootstrap) Generate(ctx context.Context, p Paths) (engine.Summary, error) {
	cfg := b.Config

	// 1. Input tables
	catalog, err := loader.LoadCatalog(p.StockFile)
	if err != nil {
		return engine.Summary{}, err
	}
	plan, err := loader.LoadPlan(p.ModelSeqFile, b.Registry)
	if err != nil {
		return engine.Summary{}, err
	}
	events, err := loader.LoadEvents(p.EventFile)
	if err != nil {
		return engine.Summary{}, err
	}

	// 2. Generation (single pass, event order)
	gen, err := engine.NewGenerator(b.Registry, catalog, plan, engine.Options{
		Sender:          cfg.Generator.Sender,
		Quantity:        cfg.Generator.Quantity,
		ContraIncrement: cfg.Generator.ContraIncrement,
		DumpPath:        cfg.Debug.DumpState,
		Metrics:         b.Metrics,
	})
	if err != nil {
		return engine.Summary{}, err
	}
	if err := gen.Run(ctx, events); err != nil {
		return engine.Summary{}, fmt.Errorf("generation failed: %w", err)
	}
	test := gen.TestMessages()
	seeded := gen.Finalize()

	// 3. Outputs: both files appear only if every stream was written
	if err := b.writeOutputs(ctx, p, test, seeded); err != nil {
		return engine.Summary{}, err
	}

	summary := gen.Summary()
	summary.Log()

	if cfg.Debug.DumpState != "" {
		gen.DumpState(cfg.Debug.DumpState)
	}

	// 4. Archive
	if b.Archive != nil {
		run := &domain.RunRecord{
			StockFile:    p.StockFile,
			EventFile:    p.EventFile,
			ModelSeqFile: p.ModelSeqFile,
			OpenKeys:     len(summary.OpenKeys),
		}
		if err := b.Archive.SaveRun(run, test, seeded); err != nil {
			return summary, fmt.Errorf("archive run: %w", err)
		}
		slog.Info("✅ Run archived", slog.String("run_id", run.ID))
	}

	return summary, nil
}

// writeOutputs stages both files, writes the test stream (plus echo and
// gateway) and the seeded stream, then commits the files. On any failure
// the staging files are removed and existing outputs are left as they were.
func (b *Bootstrap) writeOutputs(ctx context.Context, p Paths, test, seeded []*domain.Message) (err error) {
	testFile, err := sink.NewFileSink(p.TestOutput, false)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			testFile.Discard()
		}
	}()

	seededFile, err := sink.NewFileSink(p.SeededOutput, b.Config.Output.ConcatSeeded)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			seededFile.Discard()
		}
	}()

	testOut := sink.MultiSink{testFile}
	if b.Config.Output.Echo {
		testOut = append(testOut, sink.NewConsoleSink())
	}
	if url := b.Config.Output.WSURL; url != "" {
		ws, dialErr := sink.DialWebSocketSink(ctx, url, b.Config.Output.WSRetries)
		if dialErr != nil {
			return dialErr
		}
		testOut = append(testOut, ws)
	}

	if err = writeStream(testOut, p.TestOutput, test); err != nil {
		return err
	}
	if err = writeStream(seededFile, p.SeededOutput, seeded); err != nil {
		return err
	}

	if err = testFile.Commit(); err != nil {
		return err
	}
	if err = seededFile.Commit(); err != nil {
		os.Remove(p.TestOutput)
		return err
	}
	return nil
}

// writeStream writes msgs and closes w
func writeStream(w domain.RecordWriter, path string, msgs []*domain.Message) error {
	if err := sink.WriteAll(w, msgs); err != nil {
		w.Close()
		return &domain.OutputError{Target: path, Err: err}
	}
	if err := w.Close(); err != nil {
		return &domain.OutputError{Target: path, Err: err}
	}
	slog.Info("Records written", slog.String("file", path), slog.Int("records", len(msgs)))
	return nil
}
