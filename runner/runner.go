// Package runner executes long-running upload workloads alongside the
// caller and verifies data integrity once they finish.
//
// Two strategies implement one interface: AsyncRunner executes the
// workload on its own goroutine and joins it on Stop, while SyncRunner
// executes the workload inline on the caller's goroutine. Either way a
// workload failure is captured in an explicit fault slot and surfaced by
// Stop, never lost.
package runner

import (
	"context"
	"errors"
)

// Sentinel errors for run-manager misuse.
var (
	// ErrWorkloadRunning indicates Start was called while a workload
	// already occupies the runner's single slot.
	ErrWorkloadRunning = errors.New("runner: workload already running")

	// ErrNoWorkload indicates Stop was called with no workload started.
	ErrNoWorkload = errors.New("runner: no active workload")
)

// Account identifies one set of user credentials a workload drives I/O with.
type Account struct {
	// Name is the account's display name
	Name string

	// AccessKey is the account's access key ID
	AccessKey string

	// SecretKey is the account's secret access key
	SecretKey string
}

// Workload is any I/O-performing callable. The runner treats it as opaque.
type Workload func(ctx context.Context, accounts []Account) error

// IntegrityVerifier checks that data written by a workload reads back
// intact. Verification failures are hard errors.
type IntegrityVerifier interface {
	VerifyDataIntegrity(ctx context.Context) error
}

// VerifierFunc adapts a function to the IntegrityVerifier interface.
type VerifierFunc func(ctx context.Context) error

// VerifyDataIntegrity calls f.
func (f VerifierFunc) VerifyDataIntegrity(ctx context.Context) error {
	return f(ctx)
}

// WorkloadRunner runs one workload at a time and reports its outcome.
//
// Start occupies the runner's single slot; starting a second workload
// before stopping the first fails with ErrWorkloadRunning. Stop waits for
// the workload to terminate, returns its fault if it failed, and otherwise
// runs integrity verification when verify is true.
type WorkloadRunner interface {
	Start(ctx context.Context, workload Workload, accounts []Account) error
	Stop(ctx context.Context, verify bool) error
}
