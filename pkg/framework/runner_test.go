package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())
	errs.Add(nil)
	require.Empty(t, errs.Errors)
	errs.Add(errors.New("first"), errors.New("second"))
	require.Len(t, errs.Errors, 2)
	err := errs.Aggregate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "first")
	require.Contains(t, err.Error(), "second")
}

func TestRunnerWait(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner().Go(
		RunFunc(func(ctx context.Context) error { return nil }),
		NamedRun("failing", RunFunc(func(ctx context.Context) error { return boom })),
	)
	err := r.Wait()
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	var canceled bool
	cancel()
	err := RunWithContextCancel(ctx, func() {
		canceled = true
		close(unblock)
	}, func() error {
		<-unblock
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.True(t, canceled)
}

func TestRunWithContextCancelCompletes(t *testing.T) {
	done := errors.New("done")
	err := RunWithContextCancel(context.Background(), func() {
		t.Fatal("onCancel must not run")
	}, func() error {
		time.Sleep(10 * time.Millisecond)
		return done
	})
	require.Equal(t, done, err)
}
