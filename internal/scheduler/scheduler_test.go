package scheduler

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	calls atomic.Int32
	err   error
}

func (n *countingNotifier) SendReminder() error {
	n.calls.Add(1)
	return n.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartRejectsEmptySchedule(t *testing.T) {
	s := New(&countingNotifier{}, quietLogger())
	assert.ErrorIs(t, s.Start("  "), ErrNoSchedule)
}

func TestStartRejectsInvalidCron(t *testing.T) {
	s := New(&countingNotifier{}, quietLogger())
	err := s.Start("every morning")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reminder schedule")
}

func TestStartAndStop(t *testing.T) {
	s := New(&countingNotifier{}, quietLogger())
	require.NoError(t, s.Start("0 9 * * *"))
	s.Stop()
}

func TestRemind(t *testing.T) {
	n := &countingNotifier{}
	s := New(n, quietLogger())

	s.remind()
	assert.Equal(t, int32(1), n.calls.Load())

	// failures are logged and the next run still notifies
	n.err = errors.New("telegram unavailable")
	s.remind()
	s.remind()
	assert.Equal(t, int32(3), n.calls.Load())
}
