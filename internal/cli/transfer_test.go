package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ismigrate/internal/config"
	"ismigrate/internal/migrate"
)

type stubCopier struct {
	copied []migrate.Pair
	fail   map[string]error
}

func (s *stubCopier) Copy(_ context.Context, src, dst string) error {
	if err := s.fail[src]; err != nil {
		return err
	}
	s.copied = append(s.copied, migrate.Pair{Src: src, Dst: dst})
	return nil
}

func newTestTransferManager(t *testing.T, copier migrate.Copier) *TransferManager {
	t.Helper()
	dir := t.TempDir()
	worklist := migrate.NewWorklist(filepath.Join(dir, migrate.WorklistFileName))
	logbook := migrate.NewLogbook(dir)
	executor := migrate.NewExecutor(copier, nil, logbook, nil, zap.NewNop())
	cfg := &config.Config{
		Destination: config.RegistryConfig{Host: "dst.example.com", Group: "migrated"},
		OutputDir:   dir,
	}
	return NewTransferManager(cfg, executor, worklist, logbook, zap.NewNop())
}

func seedWorklist(t *testing.T, mgr *TransferManager, pairs ...migrate.Pair) {
	t.Helper()
	if err := mgr.worklist.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := mgr.worklist.Append(pairs); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func TestTransferManager_Transfer(t *testing.T) {
	pairA := migrate.Pair{Src: "src.example.com/team-a/api:v1", Dst: "dst.example.com/migrated/team-a/api:v1"}
	pairB := migrate.Pair{Src: "src.example.com/team-a/api:v2", Dst: "dst.example.com/migrated/team-a/api:v2"}

	t.Run("drains the work list", func(t *testing.T) {
		copier := &stubCopier{}
		mgr := newTestTransferManager(t, copier)
		seedWorklist(t, mgr, pairA, pairB)

		outcome, err := mgr.Transfer(context.Background())
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if outcome.Planned != 2 || outcome.Succeeded != 2 || outcome.Failed != 0 {
			t.Errorf("outcome = %+v, want 2 planned 2 succeeded", outcome)
		}
		done, err := mgr.logbook.SucceededSet()
		if err != nil {
			t.Fatalf("SucceededSet() error = %v", err)
		}
		for _, pair := range []migrate.Pair{pairA, pairB} {
			if _, ok := done[pair.Src]; !ok {
				t.Errorf("succeeded log missing %s", pair.Src)
			}
		}
	})

	t.Run("empty work list is not an error", func(t *testing.T) {
		mgr := newTestTransferManager(t, &stubCopier{})
		if err := mgr.worklist.Reset(); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}
		outcome, err := mgr.Transfer(context.Background())
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if outcome.Planned != 0 {
			t.Errorf("outcome = %+v, want zero counts", outcome)
		}
	})

	t.Run("missing work list fails", func(t *testing.T) {
		mgr := newTestTransferManager(t, &stubCopier{})
		_, err := mgr.Transfer(context.Background())
		if !errors.Is(err, migrate.ErrWorklistNotFound) {
			t.Fatalf("Transfer() error = %v, want ErrWorklistNotFound", err)
		}
	})

	t.Run("failed pair is recorded and the run continues", func(t *testing.T) {
		copier := &stubCopier{fail: map[string]error{pairA.Src: errors.New("blob upload rejected")}}
		mgr := newTestTransferManager(t, copier)
		seedWorklist(t, mgr, pairA, pairB)

		outcome, err := mgr.Transfer(context.Background())
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if outcome.Failed != 1 || outcome.Succeeded != 1 {
			t.Errorf("outcome = %+v, want 1 failed 1 succeeded", outcome)
		}
		data, err := os.ReadFile(filepath.Join(mgr.cfg.OutputDir, migrate.FailedLogFileName))
		if err != nil {
			t.Fatalf("read failed log: %v", err)
		}
		if !strings.Contains(string(data), pairA.Src) {
			t.Errorf("failed log = %q, want entry for %s", data, pairA.Src)
		}
	})

	t.Run("rerun skips what already succeeded", func(t *testing.T) {
		copier := &stubCopier{}
		mgr := newTestTransferManager(t, copier)
		seedWorklist(t, mgr, pairA, pairB)

		if _, err := mgr.Transfer(context.Background()); err != nil {
			t.Fatalf("first Transfer() error = %v", err)
		}
		outcome, err := mgr.Transfer(context.Background())
		if err != nil {
			t.Fatalf("second Transfer() error = %v", err)
		}
		if outcome.Skipped != 2 || outcome.Succeeded != 0 {
			t.Errorf("outcome = %+v, want everything skipped", outcome)
		}
		if len(copier.copied) != 2 {
			t.Errorf("copier ran %d times across both runs, want 2", len(copier.copied))
		}
	})
}

func transferTestConfig() *config.Config {
	return &config.Config{
		Source:       config.RegistryConfig{Host: "src.example.com", Username: "serviceaccount", Password: "sha256~token"},
		Destination:  config.RegistryConfig{Host: "dst.example.com", Group: "migrated", Username: "robot", Password: "push-pass"},
		RepoAPI:      config.RepoAPIConfig{URL: "https://repos.example.com/api"},
		TransferMode: config.TransferModeRegistry,
	}
}

func TestNewCopier(t *testing.T) {
	t.Run("registry mode", func(t *testing.T) {
		copier, err := newCopier(transferTestConfig(), zap.NewNop())
		if err != nil {
			t.Fatalf("newCopier() error = %v", err)
		}
		if copier == nil {
			t.Fatal("newCopier() returned nil copier")
		}
	})

	t.Run("docker mode logs into both registries", func(t *testing.T) {
		mock := &MockExecutor{}
		orig := dockerClient
		dockerClient = NewDockerClient(mock)
		defer func() { dockerClient = orig }()

		cfg := transferTestConfig()
		cfg.TransferMode = config.TransferModeDocker
		copier, err := newCopier(cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("newCopier() error = %v", err)
		}
		if _, ok := copier.(*DockerTransfer); !ok {
			t.Fatalf("copier = %T, want *DockerTransfer", copier)
		}
		if len(mock.Commands) != 2 {
			t.Fatalf("ran %d commands, want 2 logins", len(mock.Commands))
		}
		if !contains(mock.Commands[0].Args, "src.example.com") {
			t.Errorf("first login args = %v, want source registry", mock.Commands[0].Args)
		}
		if !contains(mock.Commands[1].Args, "dst.example.com") {
			t.Errorf("second login args = %v, want destination registry", mock.Commands[1].Args)
		}
	})

	t.Run("docker mode fails when login fails", func(t *testing.T) {
		mock := &MockExecutor{DefaultErr: errors.New("unauthorized")}
		orig := dockerClient
		dockerClient = NewDockerClient(mock)
		defer func() { dockerClient = orig }()

		cfg := transferTestConfig()
		cfg.TransferMode = config.TransferModeDocker
		if _, err := newCopier(cfg, zap.NewNop()); !errors.Is(err, ErrDockerLoginFailed) {
			t.Fatalf("newCopier() error = %v, want ErrDockerLoginFailed", err)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		cfg := transferTestConfig()
		cfg.TransferMode = "rsync"
		if _, err := newCopier(cfg, zap.NewNop()); !errors.Is(err, ErrUnknownTransferMode) {
			t.Fatalf("newCopier() error = %v, want ErrUnknownTransferMode", err)
		}
	})
}

func TestTransferFieldChecks(t *testing.T) {
	cfg := transferTestConfig()
	cfg.RepoAPI.URL = ""
	err := requireFields(zap.NewNop(), transferFieldChecks(cfg))
	if !errors.Is(err, ErrRepositoryAPIRequired) {
		t.Errorf("requireFields() error = %v, want ErrRepositoryAPIRequired", err)
	}

	if err := requireFields(zap.NewNop(), transferFieldChecks(transferTestConfig())); err != nil {
		t.Errorf("requireFields() error = %v, want nil", err)
	}
}

func TestNewTransferCmd(t *testing.T) {
	cmd := NewTransferCmd(zap.NewNop())
	if cmd.Use != "transfer" {
		t.Errorf("Use = %q, want %q", cmd.Use, "transfer")
	}
	for _, flag := range []string{"config", "transfer-mode", "repo-api", "output-dir", "events-dsn", "auth-file"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("flag %q not registered", flag)
		}
	}
	if cmd.RunE == nil {
		t.Error("RunE not set")
	}
}
