package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"ismigrate/internal/migrate"
)

func TestNewRunCmd(t *testing.T) {
	cmd := NewRunCmd(zap.NewNop())
	if cmd.Use != "run" {
		t.Errorf("Use = %q, want %q", cmd.Use, "run")
	}
	for _, flag := range []string{"config", "namespace", "tags", "transfer-mode", "repo-api", "export", "insecure"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("flag %q not registered", flag)
		}
	}
	if cmd.RunE == nil {
		t.Error("RunE not set")
	}
}

// TestPlanThenTransfer drives both phases over one output directory: plan with
// the newest tag of ns1/app, transfer it, and check the logs afterwards.
func TestPlanThenTransfer(t *testing.T) {
	cfg := planTestConfig(t, "ns1")
	cfg.TagMode = "1"
	inventory := &fakeInventory{images: map[string][]migrate.Image{
		"ns1": {
			taggedImage("ns1", "app", tagAt(t, "v1", "2024-01-01T00:00:00Z"), tagAt(t, "v2", "2024-02-01T00:00:00Z")),
		},
	}}
	planner := newTestPlanManager(t, cfg, inventory, nil)

	if _, err := planner.Plan(context.Background()); err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	pairs, err := planner.worklist.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	wantPairs := []migrate.Pair{
		{Src: "src.example.com/ns1/app:v2", Dst: "dst.example.com/migrated/ns1/app:v2"},
	}
	if diff := cmp.Diff(wantPairs, pairs); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}

	copier := &stubCopier{}
	executor := migrate.NewExecutor(copier, nil, planner.logbook, nil, zap.NewNop())
	transferrer := NewTransferManager(cfg, executor, planner.worklist, planner.logbook, zap.NewNop())

	outcome, err := transferrer.Transfer(context.Background())
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if outcome.Planned != 1 || outcome.Succeeded != 1 || outcome.Failed != 0 || outcome.Skipped != 0 {
		t.Errorf("outcome = %+v, want 1 planned 1 succeeded", outcome)
	}

	succeeded, err := os.ReadFile(filepath.Join(cfg.OutputDir, migrate.SucceededLogFileName))
	if err != nil {
		t.Fatalf("read succeeded log: %v", err)
	}
	if want := wantPairs[0].Src + "\n"; string(succeeded) != want {
		t.Errorf("succeeded log = %q, want %q", succeeded, want)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, migrate.FailedLogFileName)); !os.IsNotExist(err) {
		t.Errorf("failed log exists, want none")
	}

	// A second transfer over the same logs must skip without appending.
	outcome, err = transferrer.Transfer(context.Background())
	if err != nil {
		t.Fatalf("second Transfer() error = %v", err)
	}
	if outcome.Skipped != 1 || outcome.Succeeded != 0 {
		t.Errorf("second outcome = %+v, want everything skipped", outcome)
	}
	succeeded, err = os.ReadFile(filepath.Join(cfg.OutputDir, migrate.SucceededLogFileName))
	if err != nil {
		t.Fatalf("reread succeeded log: %v", err)
	}
	if want := wantPairs[0].Src + "\n"; string(succeeded) != want {
		t.Errorf("succeeded log after rerun = %q, want unchanged %q", succeeded, want)
	}
}
