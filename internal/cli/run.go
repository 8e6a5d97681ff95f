package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ismigrate/internal/config"
)

// NewRunCmd returns the run command, the plan and transfer phases chained in
// one invocation. The cluster login happens once; the transfer phase reuses
// the cached token.
func NewRunCmd(logger *zap.Logger) *cobra.Command {
	opts := &configOptions{}
	var exportPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Plan and transfer in one pass",
		Long: `Run executes a full migration: it builds the work list from the source
cluster and immediately transfers every planned image to the destination
registry. Equivalent to plan followed by transfer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.load(logger, (*config.Config).Complete)
			if err != nil {
				return err
			}
			planMgr, err := defaultPlanManager(ctx, cfg, logger)
			if err != nil {
				return err
			}
			summaries, err := planMgr.Plan(ctx)
			if err != nil {
				return err
			}
			if exportPath != "" {
				if err := exportSummaries(summaries, exportPath); err != nil {
					return err
				}
			}
			transferMgr, err := defaultTransferManager(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer transferMgr.Close()
			_, err = transferMgr.Transfer(ctx)
			return err
		},
	}
	opts.bind(cmd.Flags())
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the per-namespace plan to a YAML file")
	return cmd
}
