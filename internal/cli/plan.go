package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"ismigrate/internal/cluster"
	"ismigrate/internal/config"
	"ismigrate/internal/migrate"
	"ismigrate/internal/registry"
)

// InventoryLister reads the images of one source namespace.
type InventoryLister interface {
	Images(ctx context.Context, namespace string) ([]migrate.Image, error)
}

// SizeEstimator reports an image's transfer size in bytes, zero when unknown.
type SizeEstimator interface {
	EstimateSize(ctx context.Context, image string) int64
}

// PlanManager builds the migration work list from the source inventory.
type PlanManager struct {
	cfg       *config.Config
	inventory InventoryLister
	sizer     SizeEstimator // nil disables size estimation
	worklist  *migrate.Worklist
	logbook   *migrate.Logbook
	logger    *zap.Logger
}

// NewPlanManager creates a PlanManager with explicit dependencies.
func NewPlanManager(cfg *config.Config, inventory InventoryLister, sizer SizeEstimator, worklist *migrate.Worklist, logbook *migrate.Logbook, logger *zap.Logger) *PlanManager {
	return &PlanManager{
		cfg:       cfg,
		inventory: inventory,
		sizer:     sizer,
		worklist:  worklist,
		logbook:   logbook,
		logger:    logger,
	}
}

// defaultPlanManager wires a PlanManager against the real cluster and
// registry clients described by cfg.
func defaultPlanManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*PlanManager, error) {
	if err := requireFields(logger, planFieldChecks(cfg)); err != nil {
		return nil, err
	}
	token, err := clusterToken(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	inventory, err := cluster.NewInventoryForCluster(cfg.Cluster.API, token, cfg.Cluster.Insecure, logger)
	if err != nil {
		Error("Failed to connect to cluster API")
		logStructuredError(logger, err, "Failed to connect to cluster API")
		return nil, err
	}
	var sizer SizeEstimator
	if cfg.EstimateSizes {
		if err := applySourceCredentialConvention(ctx, cfg, logger); err != nil {
			return nil, err
		}
		sizer = registry.NewClient([]registry.Host{{
			Name:     cfg.Source.Host,
			Username: cfg.Source.Username,
			Password: cfg.Source.Password,
			Insecure: cfg.Source.Insecure,
		}}, logger)
	}
	worklist := migrate.NewWorklist(filepath.Join(cfg.OutputDir, migrate.WorklistFileName))
	logbook := migrate.NewLogbook(cfg.OutputDir)
	return NewPlanManager(cfg, inventory, sizer, worklist, logbook, logger), nil
}

// Plan reads every configured namespace, selects tags, and rewrites the work
// list. The work list is truncated exactly once, before the first namespace,
// so a failed run never leaves a stale plan behind. Outcome logs are never
// truncated.
func (m *PlanManager) Plan(ctx context.Context) ([]migrate.NamespaceSummary, error) {
	mode, err := migrate.ParseTagMode(m.cfg.TagMode)
	if err != nil {
		Error("Invalid tag selection")
		logStructuredError(m.logger, err, "Invalid tag selection")
		return nil, err
	}
	layout := migrate.RefLayout{
		SrcRegistry: m.cfg.Source.Host,
		DstRegistry: m.cfg.Destination.Host,
		DstGroup:    m.cfg.Destination.Group,
	}
	if err := m.worklist.Reset(); err != nil {
		Error("Failed to reset work list")
		logStructuredError(m.logger, err, "Failed to reset work list")
		return nil, err
	}

	var summaries []migrate.NamespaceSummary
	totalPairs := 0
	for _, ns := range m.cfg.Namespaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		images, err := m.inventory.Images(ctx, ns)
		if err != nil {
			Warn(fmt.Sprintf("Skipping namespace %s: inventory read failed", ns))
			logStructuredError(m.logger, err, "Failed to read namespace inventory")
			continue
		}
		summary, pairs, err := m.planNamespace(ctx, layout, ns, images, mode)
		if err != nil {
			return nil, err
		}
		if err := m.worklist.Append(pairs); err != nil {
			Error("Failed to write work list")
			logStructuredError(m.logger, err, "Failed to write work list")
			return nil, err
		}
		totalPairs += len(pairs)
		summaries = append(summaries, summary)
		m.logger.Info("Planned namespace",
			zap.String("namespace", ns),
			zap.Int("images", summary.Images),
			zap.Int("tags", summary.Tags))
	}

	m.printPlan(summaries, totalPairs)
	return summaries, nil
}

// planNamespace selects tags per image and builds that namespace's pairs.
// Images with no selectable tags go to the failed log and count nowhere.
func (m *PlanManager) planNamespace(ctx context.Context, layout migrate.RefLayout, ns string, images []migrate.Image, mode migrate.TagMode) (migrate.NamespaceSummary, []migrate.Pair, error) {
	summary := migrate.NamespaceSummary{Namespace: ns}
	var pairs []migrate.Pair
	for _, image := range images {
		tags := migrate.SelectTags(image.Tags, mode)
		if len(tags) == 0 {
			if err := m.logbook.AppendFailed(layout.SourceRepo(ns, image.Name), migrate.ReasonNoTags); err != nil {
				Error("Failed to write failed log")
				logStructuredError(m.logger, err, "Failed to write failed log")
				return summary, nil, err
			}
			m.logger.Warn("Image has no migratable tags",
				zap.String("namespace", ns),
				zap.String("image", image.Name))
			continue
		}
		summary.Images++
		summary.Tags += len(tags)
		for _, tag := range tags {
			pair := layout.Pair(ns, image.Name, tag.Name)
			pairs = append(pairs, pair)
			if m.sizer != nil {
				summary.Bytes += m.sizer.EstimateSize(ctx, pair.Src)
			}
		}
	}
	return summary, pairs, nil
}

func (m *PlanManager) printPlan(summaries []migrate.NamespaceSummary, totalPairs int) {
	Header("Migration Plan")
	withSizes := m.sizer != nil
	header := []string{"Namespace", "Images", "Tags"}
	if withSizes {
		header = append(header, "Estimated Size")
	}
	rows := [][]string{header}
	totalImages, totalTags := 0, 0
	var totalBytes int64
	for _, s := range summaries {
		row := []string{s.Namespace, strconv.Itoa(s.Images), strconv.Itoa(s.Tags)}
		if withSizes {
			row = append(row, units.HumanSize(float64(s.Bytes)))
		}
		rows = append(rows, row)
		totalImages += s.Images
		totalTags += s.Tags
		totalBytes += s.Bytes
	}
	total := []string{"Total", strconv.Itoa(totalImages), strconv.Itoa(totalTags)}
	if withSizes {
		total = append(total, units.HumanSize(float64(totalBytes)))
	}
	rows = append(rows, total)
	TableBoxed(rows)
	Info(fmt.Sprintf("%d image transfers planned, work list written to %s", totalPairs, m.worklist.Path()))
}

// exportSummaries writes the per-namespace plan as YAML.
func exportSummaries(summaries []migrate.NamespaceSummary, path string) error {
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to encode plan export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write plan export: %w", err)
	}
	Success(fmt.Sprintf("Plan exported to %s", path))
	return nil
}

// NewPlanCmd returns the plan command.
func NewPlanCmd(logger *zap.Logger) *cobra.Command {
	opts := &configOptions{}
	var exportPath string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build the migration work list from the source cluster",
		Long: `Plan reads the image streams of the configured namespaces, selects tags,
and writes the source/destination pairs to the work list. Images without
selectable tags are recorded in the failed log. The work list is rewritten
on every plan; the outcome logs are only ever appended to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(logger, (*config.Config).CompleteCluster)
			if err != nil {
				return err
			}
			mgr, err := defaultPlanManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			summaries, err := mgr.Plan(cmd.Context())
			if err != nil {
				return err
			}
			if exportPath != "" {
				return exportSummaries(summaries, exportPath)
			}
			return nil
		},
	}
	opts.bind(cmd.Flags())
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the per-namespace plan to a YAML file")
	return cmd
}
