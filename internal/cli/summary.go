package cli

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ismigrate/internal/migrate"
)

// SummaryManager reports migration progress from the work list and outcome
// logs alone. It never contacts the cluster or a registry, so it needs no
// credentials.
type SummaryManager struct {
	worklist *migrate.Worklist
	logbook  *migrate.Logbook
	logger   *zap.Logger
}

// NewSummaryManager creates a SummaryManager over the given output files.
func NewSummaryManager(worklist *migrate.Worklist, logbook *migrate.Logbook, logger *zap.Logger) *SummaryManager {
	return &SummaryManager{worklist: worklist, logbook: logbook, logger: logger}
}

// Summary prints planned, completed, and failed counts. A missing work list
// means nothing was planned yet and is not an error.
func (m *SummaryManager) Summary() error {
	pairs, err := m.worklist.Load()
	if err != nil && !errors.Is(err, migrate.ErrWorklistNotFound) {
		Error("Failed to load work list")
		logStructuredError(m.logger, err, "Failed to load work list")
		return err
	}
	done, err := m.logbook.SucceededSet()
	if err != nil {
		Error("Failed to read succeeded log")
		logStructuredError(m.logger, err, "Failed to read succeeded log")
		return err
	}
	counts, err := m.logbook.Counts()
	if err != nil {
		Error("Failed to read outcome logs")
		logStructuredError(m.logger, err, "Failed to read outcome logs")
		return err
	}

	transferred, pending := 0, 0
	for _, pair := range pairs {
		if _, ok := done[pair.Src]; ok {
			transferred++
		} else {
			pending++
		}
	}

	Header("Migration Summary")
	TableBoxed([][]string{
		{"Metric", "Count"},
		{"Planned", strconv.Itoa(len(pairs))},
		{"Transferred", strconv.Itoa(transferred)},
		{"Pending", strconv.Itoa(pending)},
		{"Succeeded total", strconv.Itoa(counts.Succeeded)},
		{"Failed entries", strconv.Itoa(counts.FailedEntries)},
		{"Failed distinct images", strconv.Itoa(counts.FailedDistinct)},
	})
	if len(pairs) == 0 {
		Info("No work list found, run plan first")
	}
	return nil
}

// NewSummaryCmd returns the summary command.
func NewSummaryCmd(logger *zap.Logger) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show migration progress from the work list and outcome logs",
		Long: `Summary reads the work list and the outcome logs from the output directory
and prints how much of the plan has been transferred. It works entirely
offline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := NewSummaryManager(
				migrate.NewWorklist(filepath.Join(outputDir, migrate.WorklistFileName)),
				migrate.NewLogbook(outputDir),
				logger)
			return mgr.Summary()
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory holding the work list and outcome logs")
	return cmd
}
