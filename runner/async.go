package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hydrostore/s3check/errors"
)

// AsyncRunner executes the workload on a dedicated goroutine. Stop blocks
// until that goroutine terminates — unconditionally, with no timeout — and
// then reports the workload's fault or runs verification.
type AsyncRunner struct {
	verifier IntegrityVerifier
	log      zerolog.Logger

	mu    sync.Mutex
	done  chan struct{} // nil while idle
	fault error         // written by the worker before done closes
}

// NewAsyncRunner creates a runner that verifies with verifier after a
// stopped workload joined cleanly.
func NewAsyncRunner(verifier IntegrityVerifier, log zerolog.Logger) *AsyncRunner {
	return &AsyncRunner{
		verifier: verifier,
		log:      log,
	}
}

// Start launches the workload on a new goroutine and returns immediately.
// Only one workload may be active at a time.
func (r *AsyncRunner) Start(ctx context.Context, workload Workload, accounts []Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return ErrWorkloadRunning
	}

	done := make(chan struct{})
	r.done = done
	r.fault = nil

	r.log.Debug().Int("accounts", len(accounts)).Msg("starting background workload")
	go func() {
		// The fault write happens before close(done); Stop reads it
		// only after receiving from done.
		r.fault = workload(ctx, accounts)
		close(done)
	}()

	return nil
}

// Stop joins the workload goroutine and surfaces its outcome. If the
// workload failed, that fault is returned and verification is skipped.
// Otherwise, when verify is true, the integrity verifier runs and its
// failure is returned wrapped in ErrIntegrityCheck.
func (r *AsyncRunner) Stop(ctx context.Context, verify bool) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done == nil {
		return ErrNoWorkload
	}

	<-done

	r.mu.Lock()
	fault := r.fault
	r.done = nil
	r.fault = nil
	r.mu.Unlock()

	if fault != nil {
		return fmt.Errorf("runner: workload failed: %w", fault)
	}

	r.log.Debug().Bool("verify", verify).Msg("background workload joined")
	if verify {
		return runVerification(ctx, r.verifier)
	}

	return nil
}

// runVerification invokes the integrity verifier and tags its failure so
// callers can recognize it with errors.Is.
func runVerification(ctx context.Context, verifier IntegrityVerifier) error {
	if verifier == nil {
		return nil
	}
	if err := verifier.VerifyDataIntegrity(ctx); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrIntegrityCheck, err)
	}
	return nil
}

var _ WorkloadRunner = (*AsyncRunner)(nil)
