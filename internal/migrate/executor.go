package migrate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ismigrate/internal/audit"
	"ismigrate/pkg/errx"
)

// Copier transfers one image reference to another registry.
type Copier interface {
	Copy(ctx context.Context, src, dst string) error
}

// Provisioner makes sure a destination repository exists before a push.
type Provisioner interface {
	Ensure(ctx context.Context, repoPath string) error
}

// Outcome tallies one executor run.
type Outcome struct {
	Planned   int
	Skipped   int
	Succeeded int
	Failed    int
}

// Executor drains a list of migration pairs sequentially. Pairs whose source
// reference already appears in the succeeded log are skipped; everything
// else is provisioned and copied. A failed pair is logged and the run moves
// on, so one bad image never stops the batch.
type Executor struct {
	copier   Copier
	repos    Provisioner
	logbook  *Logbook
	recorder audit.Recorder
	logger   *zap.Logger

	// Progress, when set, is called once per pair with its final status.
	Progress func(pair Pair, status Status, err error)
}

// NewExecutor wires an executor. A nil recorder disables event recording.
func NewExecutor(copier Copier, repos Provisioner, logbook *Logbook, recorder audit.Recorder, logger *zap.Logger) *Executor {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Executor{
		copier:   copier,
		repos:    repos,
		logbook:  logbook,
		recorder: recorder,
		logger:   logger,
	}
}

// Run processes pairs in order and returns the outcome tally. It stops early
// only when the context is cancelled or the logbook itself cannot be
// written; transfer and provisioning failures are recorded and skipped over.
func (e *Executor) Run(ctx context.Context, pairs []Pair) (Outcome, error) {
	outcome := Outcome{Planned: len(pairs)}

	done, err := e.logbook.SucceededSet()
	if err != nil {
		return outcome, err
	}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		if _, ok := done[pair.Src]; ok {
			outcome.Skipped++
			e.report(ctx, pair, StatusSkipped, nil, 0)
			continue
		}

		start := time.Now()
		err := e.transfer(ctx, pair)
		elapsed := time.Since(start)

		if err != nil {
			outcome.Failed++
			if logErr := e.logbook.AppendFailed(pair.Src, errx.UserString(err)); logErr != nil {
				return outcome, logErr
			}
			e.logger.Warn("Transfer failed",
				zap.String("source", pair.Src),
				zap.String("target", pair.Dst),
				zap.Error(err))
			e.report(ctx, pair, StatusFailed, err, elapsed)
			continue
		}

		if logErr := e.logbook.AppendSucceeded(pair.Src); logErr != nil {
			return outcome, logErr
		}
		done[pair.Src] = struct{}{}
		outcome.Succeeded++
		e.report(ctx, pair, StatusSucceeded, nil, elapsed)
	}

	return outcome, nil
}

func (e *Executor) transfer(ctx context.Context, pair Pair) error {
	if e.repos != nil {
		if err := e.repos.Ensure(ctx, DestinationRepoPath(pair.Dst)); err != nil {
			return err
		}
	}
	return e.copier.Copy(ctx, pair.Src, pair.Dst)
}

func (e *Executor) report(ctx context.Context, pair Pair, status Status, cause error, elapsed time.Duration) {
	if e.Progress != nil {
		e.Progress(pair, status, cause)
	}
	event := audit.Event{
		At:      time.Now(),
		Src:     pair.Src,
		Dst:     pair.Dst,
		Status:  string(status),
		Elapsed: elapsed,
	}
	if cause != nil {
		event.Reason = errx.UserString(cause)
	}
	if err := e.recorder.Record(ctx, event); err != nil {
		e.logger.Warn("Failed to record migration event",
			zap.String("source", pair.Src),
			zap.Error(err))
	}
}
