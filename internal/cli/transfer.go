package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ismigrate/internal/audit"
	"ismigrate/internal/config"
	"ismigrate/internal/migrate"
	"ismigrate/internal/registry"
	"ismigrate/pkg/errx"
)

// TransferManager drains the work list into the destination registry.
type TransferManager struct {
	cfg      *config.Config
	executor *migrate.Executor
	worklist *migrate.Worklist
	logbook  *migrate.Logbook
	cleanup  func()
	logger   *zap.Logger
}

// NewTransferManager creates a TransferManager with explicit dependencies.
func NewTransferManager(cfg *config.Config, executor *migrate.Executor, worklist *migrate.Worklist, logbook *migrate.Logbook, logger *zap.Logger) *TransferManager {
	return &TransferManager{
		cfg:      cfg,
		executor: executor,
		worklist: worklist,
		logbook:  logbook,
		logger:   logger,
	}
}

// defaultTransferManager wires a TransferManager against the real registry
// clients described by cfg.
func defaultTransferManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*TransferManager, error) {
	if err := requireFields(logger, transferFieldChecks(cfg)); err != nil {
		return nil, err
	}
	if err := applySourceCredentialConvention(ctx, cfg, logger); err != nil {
		return nil, err
	}
	copier, err := newCopier(cfg, logger)
	if err != nil {
		return nil, err
	}
	repos := registry.NewRepoAPI(cfg.RepoAPI.URL, cfg.RepoAPI.Token, cfg.Destination.Group, cfg.Destination.Insecure, logger)
	worklist := migrate.NewWorklist(filepath.Join(cfg.OutputDir, migrate.WorklistFileName))
	logbook := migrate.NewLogbook(cfg.OutputDir)

	var recorder audit.Recorder
	var cleanup func()
	if cfg.EventsDSN != "" {
		ch, err := audit.NewClickHouseRecorder(ctx, cfg.EventsDSN, logger)
		if err != nil {
			Warn("Events sink unavailable, continuing without audit trail")
			logStructuredError(logger, err, "Events sink unavailable")
		} else {
			recorder = ch
			cleanup = func() {
				if err := ch.Close(); err != nil {
					logger.Warn("Failed to close events sink", zap.Error(err))
				}
			}
		}
	}

	executor := migrate.NewExecutor(copier, repos, logbook, recorder, logger)
	executor.Progress = printTransferProgress
	mgr := NewTransferManager(cfg, executor, worklist, logbook, logger)
	mgr.cleanup = cleanup
	return mgr, nil
}

// newCopier picks the transfer implementation for the configured mode.
// Registry mode streams manifests and blobs directly between registries;
// docker mode shells out to the local docker daemon and cleans up the local
// copies after each push.
func newCopier(cfg *config.Config, logger *zap.Logger) (migrate.Copier, error) {
	switch cfg.TransferMode {
	case config.TransferModeRegistry:
		return registry.NewClient([]registry.Host{
			{
				Name:     cfg.Source.Host,
				Username: cfg.Source.Username,
				Password: cfg.Source.Password,
				Insecure: cfg.Source.Insecure,
			},
			{
				Name:     cfg.Destination.Host,
				Username: cfg.Destination.Username,
				Password: cfg.Destination.Password,
				Insecure: cfg.Destination.Insecure,
			},
		}, logger), nil
	case config.TransferModeDocker:
		if err := dockerClient.Login(cfg.Source.Host, cfg.Source.Username, cfg.Source.Password); err != nil {
			Error("Failed to login to source registry")
			logStructuredError(logger, err, "Failed to login to source registry")
			return nil, err
		}
		if err := dockerClient.Login(cfg.Destination.Host, cfg.Destination.Username, cfg.Destination.Password); err != nil {
			Error("Failed to login to destination registry")
			logStructuredError(logger, err, "Failed to login to destination registry")
			return nil, err
		}
		return NewDockerTransfer(dockerClient, logger), nil
	default:
		wrappedErr := wrapWithSentinelAndContext(ErrUnknownTransferMode, nil,
			fmt.Sprintf("unknown transfer mode %q, want %q or %q", cfg.TransferMode, config.TransferModeRegistry, config.TransferModeDocker),
			map[string]any{"mode": cfg.TransferMode, "component": "transfer"})
		Error("Unknown transfer mode")
		logStructuredError(logger, wrappedErr, "Unknown transfer mode")
		return nil, wrappedErr
	}
}

func printTransferProgress(pair migrate.Pair, status migrate.Status, err error) {
	switch status {
	case migrate.StatusSkipped:
		Info(fmt.Sprintf("Skipped %s (already migrated)", pair.Src))
	case migrate.StatusSucceeded:
		Success(fmt.Sprintf("Transferred %s", pair.Src))
	case migrate.StatusFailed:
		Error(fmt.Sprintf("Failed %s: %s", pair.Src, errx.UserString(err)))
	}
}

// Transfer runs every pair in the work list. Failures are recorded and the
// run moves on; only broken infrastructure (an unreadable work list, an
// unwritable log) stops it.
func (m *TransferManager) Transfer(ctx context.Context) (migrate.Outcome, error) {
	pairs, err := m.worklist.Load()
	if err != nil {
		Error("Failed to load work list")
		logStructuredError(m.logger, err, "Failed to load work list")
		return migrate.Outcome{}, err
	}
	if len(pairs) == 0 {
		Warn("Work list is empty, nothing to transfer")
		return migrate.Outcome{}, nil
	}

	Header("Image Transfer")
	Info(fmt.Sprintf("Transferring %d images to %s", len(pairs), m.cfg.Destination.Host))
	outcome, err := m.executor.Run(ctx, pairs)
	if err != nil {
		Error("Transfer run aborted")
		logStructuredError(m.logger, err, "Transfer run aborted")
		return outcome, err
	}
	m.printOutcome(outcome)
	return outcome, nil
}

func (m *TransferManager) printOutcome(outcome migrate.Outcome) {
	counts, err := m.logbook.Counts()
	if err != nil {
		Warn("Failed to read outcome logs")
		logStructuredError(m.logger, err, "Failed to read outcome logs")
	}
	Section("Results")
	TableBoxed([][]string{
		{"Metric", "Count"},
		{"Planned", strconv.Itoa(outcome.Planned)},
		{"Skipped (already migrated)", strconv.Itoa(outcome.Skipped)},
		{"Transferred", strconv.Itoa(outcome.Succeeded)},
		{"Failed", strconv.Itoa(outcome.Failed)},
		{"Succeeded total", strconv.Itoa(counts.Succeeded)},
		{"Failed entries", strconv.Itoa(counts.FailedEntries)},
		{"Failed distinct images", strconv.Itoa(counts.FailedDistinct)},
	})
	if outcome.Failed > 0 {
		Warn(fmt.Sprintf("%d transfers failed, see %s", outcome.Failed, filepath.Join(m.cfg.OutputDir, migrate.FailedLogFileName)))
		return
	}
	Success("All planned images transferred")
}

// Close releases the manager's external connections.
func (m *TransferManager) Close() {
	if m.cleanup != nil {
		m.cleanup()
	}
}

// NewTransferCmd returns the transfer command.
func NewTransferCmd(logger *zap.Logger) *cobra.Command {
	opts := &configOptions{}
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer the planned images to the destination registry",
		Long: `Transfer reads the work list written by plan and copies each image to the
destination registry, creating missing destination repositories on the way.
Images already present in the succeeded log are skipped, so an interrupted
transfer can simply be run again. Failures are appended to the failed log
and the run continues with the next image.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(logger, completeForTransfer)
			if err != nil {
				return err
			}
			mgr, err := defaultTransferManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer mgr.Close()
			_, err = mgr.Transfer(cmd.Context())
			return err
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}
