package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/runner"
)

// RunSession renders a view and reads commands ("click inc") from stdin until
// the input ends or the user quits. Every commit is printed and, with a
// container ID, persisted.
func RunSession(opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	quiet := opts.JSON || opts.Headless
	logger := createLogger(cfg.LogLevel, true)

	if !quiet {
		tui.PrintBanner(arbor.Version)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	rt, _, err := createRuntime(cfg, opts, logger, arbor.WithName(opts.ContainerID))
	if err != nil {
		return err
	}
	view, err := scheduleRoot(sigCtx, rt, cfg, opts)
	if err != nil {
		return err
	}

	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	if opts.ContainerID != "" {
		p, err := OpenPersistence(sigCtx, cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		if opts.Fresh {
			_ = p.Store.Delete(sigCtx, opts.ContainerID)
		}
		runnerOpts = append(runnerOpts,
			runner.WithStore(p.Store),
			runner.WithContainerID(opts.ContainerID),
		)
		logger.Info("Container persisted", "container_id", opts.ContainerID, "backend", cfg.Snapshot.Backend)
	}

	switch {
	case opts.JSON:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)))
	case opts.Headless:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout,
			runner.WithTextHandlerPrompt(""),
		)))
	default:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout,
			runner.WithTextHandlerRenderer(tui.NewRenderer()),
		)))
		printSystemMessage("Rendering '%s'. Commands: <event> <id> [payload], quit.", view)
	}

	runErr := runner.NewRunner(runnerOpts...).Run(sigCtx, rt)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	logCompletion(opts.ContainerID, runErr, quiet, sigCtx.Signal())
	if runErr != nil && !isInterrupted(runErr) {
		return fmt.Errorf("session failed: %w", runErr)
	}
	return nil
}
