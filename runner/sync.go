package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SyncRunner executes the workload inline on the caller's goroutine.
// Useful when deterministic ordering with the caller is required; Start
// only returns once the workload has finished.
type SyncRunner struct {
	verifier IntegrityVerifier
	log      zerolog.Logger

	active bool
	fault  error
}

// NewSyncRunner creates a runner that executes workloads inline.
func NewSyncRunner(verifier IntegrityVerifier, log zerolog.Logger) *SyncRunner {
	return &SyncRunner{
		verifier: verifier,
		log:      log,
	}
}

// Start runs the workload to completion on the calling goroutine and
// records its fault for Stop to report. Only one workload may be active
// at a time.
func (r *SyncRunner) Start(ctx context.Context, workload Workload, accounts []Account) error {
	if r.active {
		return ErrWorkloadRunning
	}

	r.log.Debug().Int("accounts", len(accounts)).Msg("running workload inline")
	r.active = true
	r.fault = workload(ctx, accounts)

	return nil
}

// Stop reports the recorded workload fault, or runs integrity verification
// when verify is true and the workload succeeded.
func (r *SyncRunner) Stop(ctx context.Context, verify bool) error {
	if !r.active {
		return ErrNoWorkload
	}

	fault := r.fault
	r.active = false
	r.fault = nil

	if fault != nil {
		return fmt.Errorf("runner: workload failed: %w", fault)
	}

	if verify {
		return runVerification(ctx, r.verifier)
	}

	return nil
}

var _ WorkloadRunner = (*SyncRunner)(nil)
