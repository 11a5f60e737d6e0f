package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/hydrostore/s3check/errors"
)

func TestAsyncRunner_StartStop(t *testing.T) {
	var verified atomic.Bool
	verifier := VerifierFunc(func(ctx context.Context) error {
		verified.Store(true)
		return nil
	})
	r := NewAsyncRunner(verifier, zerolog.Nop())

	var finished atomic.Bool
	release := make(chan struct{})
	workload := func(ctx context.Context, accounts []Account) error {
		<-release
		finished.Store(true)
		return nil
	}

	require.NoError(t, r.Start(context.Background(), workload, []Account{{Name: "user1"}}))

	// Stop must block until the workload goroutine terminates.
	stopped := make(chan error, 1)
	go func() { stopped <- r.Stop(context.Background(), true) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the workload terminated")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-stopped)
	assert.True(t, finished.Load())
	assert.True(t, verified.Load())
}

func TestAsyncRunner_WorkloadFaultSurfacedAtStop(t *testing.T) {
	wantErr := errors.New("disk full")
	var verified atomic.Bool
	verifier := VerifierFunc(func(ctx context.Context) error {
		verified.Store(true)
		return nil
	})
	r := NewAsyncRunner(verifier, zerolog.Nop())

	workload := func(ctx context.Context, accounts []Account) error { return wantErr }
	require.NoError(t, r.Start(context.Background(), workload, nil))

	err := r.Stop(context.Background(), true)
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, verified.Load(), "verification must not run after a workload fault")
}

func TestAsyncRunner_VerificationFailureSurfaced(t *testing.T) {
	verifier := VerifierFunc(func(ctx context.Context) error {
		return errors.New("checksum mismatch on object 42")
	})
	r := NewAsyncRunner(verifier, zerolog.Nop())

	require.NoError(t, r.Start(context.Background(), func(ctx context.Context, accounts []Account) error {
		return nil
	}, nil))

	err := r.Stop(context.Background(), true)
	require.Error(t, err)
	assert.True(t, serrors.IsIntegrityCheck(err))
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestAsyncRunner_SkipVerification(t *testing.T) {
	verifier := VerifierFunc(func(ctx context.Context) error {
		return errors.New("should not be called")
	})
	r := NewAsyncRunner(verifier, zerolog.Nop())

	require.NoError(t, r.Start(context.Background(), func(ctx context.Context, accounts []Account) error {
		return nil
	}, nil))
	assert.NoError(t, r.Stop(context.Background(), false))
}

func TestAsyncRunner_SingleSlot(t *testing.T) {
	r := NewAsyncRunner(nil, zerolog.Nop())

	release := make(chan struct{})
	workload := func(ctx context.Context, accounts []Account) error {
		<-release
		return nil
	}

	require.NoError(t, r.Start(context.Background(), workload, nil))
	assert.ErrorIs(t, r.Start(context.Background(), workload, nil), ErrWorkloadRunning)

	close(release)
	require.NoError(t, r.Stop(context.Background(), false))

	// The slot frees up after Stop.
	done := make(chan struct{})
	close(done)
	require.NoError(t, r.Start(context.Background(), func(ctx context.Context, accounts []Account) error {
		return nil
	}, nil))
	require.NoError(t, r.Stop(context.Background(), false))
}

func TestAsyncRunner_StopWithoutStart(t *testing.T) {
	r := NewAsyncRunner(nil, zerolog.Nop())
	assert.ErrorIs(t, r.Stop(context.Background(), true), ErrNoWorkload)
}

func TestSyncRunner_RunsInline(t *testing.T) {
	var order []string
	verifier := VerifierFunc(func(ctx context.Context) error {
		order = append(order, "verify")
		return nil
	})
	r := NewSyncRunner(verifier, zerolog.Nop())

	require.NoError(t, r.Start(context.Background(), func(ctx context.Context, accounts []Account) error {
		order = append(order, "workload")
		return nil
	}, nil))
	order = append(order, "between")

	require.NoError(t, r.Stop(context.Background(), true))
	assert.Equal(t, []string{"workload", "between", "verify"}, order)
}

func TestSyncRunner_FaultSurfacedAtStop(t *testing.T) {
	wantErr := errors.New("bucket quota exceeded")
	r := NewSyncRunner(nil, zerolog.Nop())

	// Start itself does not fail; the fault is reported by Stop.
	require.NoError(t, r.Start(context.Background(), func(ctx context.Context, accounts []Account) error {
		return wantErr
	}, nil))
	assert.ErrorIs(t, r.Stop(context.Background(), true), wantErr)
}

func TestSyncRunner_SingleSlot(t *testing.T) {
	r := NewSyncRunner(nil, zerolog.Nop())
	noop := func(ctx context.Context, accounts []Account) error { return nil }

	require.NoError(t, r.Start(context.Background(), noop, nil))
	assert.ErrorIs(t, r.Start(context.Background(), noop, nil), ErrWorkloadRunning)
	require.NoError(t, r.Stop(context.Background(), false))
	assert.ErrorIs(t, r.Stop(context.Background(), false), ErrNoWorkload)
}
