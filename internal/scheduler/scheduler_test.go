package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	err  error
	runs int
}

func (j *stubJob) Run() error {
	j.runs++
	return j.err
}

func (j *stubJob) Name() string { return j.name }

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := &stubJob{name: "evict"}

	require.NoError(t, s.AddJob("0 0 * * * *", job))
	assert.Error(t, s.AddJob("every now and then", &stubJob{name: "broken"}))

	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "evict", status[0].Name)
	assert.Equal(t, "0 0 * * * *", status[0].Schedule)
	assert.Zero(t, status[0].Runs)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())

	ok := &stubJob{name: "ok"}
	require.NoError(t, s.RunNow(ok))
	require.NoError(t, s.RunNow(ok))
	assert.Equal(t, 2, ok.runs)

	failing := &stubJob{name: "failing", err: errors.New("disk full")}
	assert.EqualError(t, s.RunNow(failing), "disk full")

	byName := map[string]JobStatus{}
	for _, st := range s.Status() {
		byName[st.Name] = st
	}
	assert.Equal(t, 2, byName["ok"].Runs)
	assert.Empty(t, byName["ok"].LastErr)
	assert.False(t, byName["ok"].LastRun.IsZero())
	assert.Equal(t, "disk full", byName["failing"].LastErr)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@hourly", &stubJob{name: "hourly"}))

	assert.NotPanics(t, func() {
		s.Start()
		s.Stop()
	})
}
