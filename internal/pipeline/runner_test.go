package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
	"github.com/pgEdge/pgedge-bookdw/internal/db"
)

type fakeStep struct {
	name  string
	rows  int64
	err   error
	calls int
}

func (s *fakeStep) Name() string        { return s.name }
func (s *fakeStep) Description() string { return "fake " + s.name }
func (s *fakeStep) Run(ctx context.Context, env *Env) (Result, error) {
	s.calls++
	return Result{Rows: s.rows}, s.err
}

type recordedStep struct {
	step   string
	rows   int64
	failed bool
}

type fakeRecorder struct {
	started  []string
	finished []recordedStep
	status   string
	runIDs   map[uuid.UUID]bool
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{runIDs: make(map[uuid.UUID]bool)}
}

func (f *fakeRecorder) StartStep(ctx context.Context, runID uuid.UUID, step string, startedAt time.Time) error {
	f.runIDs[runID] = true
	f.started = append(f.started, step)
	return nil
}

func (f *fakeRecorder) FinishStep(ctx context.Context, runID uuid.UUID, step string, rows int64, stepErr error) error {
	f.runIDs[runID] = true
	f.finished = append(f.finished, recordedStep{step: step, rows: rows, failed: stepErr != nil})
	return nil
}

func (f *fakeRecorder) FinishRun(ctx context.Context, runID uuid.UUID, status string) error {
	f.runIDs[runID] = true
	f.status = status
	return nil
}

func testEnv() *Env {
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Env{
		Config: config.DefaultConfig(),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
}

func TestRunnerRunsStepsInOrder(t *testing.T) {
	a := &fakeStep{name: "a", rows: 3}
	b := &fakeStep{name: "b", rows: 7}
	rec := newFakeRecorder()
	runner := &Runner{Recorder: rec}

	runID, outcomes, err := runner.Run(context.Background(), testEnv(), []Step{a, b})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, runID)
	assert.Len(t, rec.runIDs, 1, "all records should share one run id")
	assert.True(t, rec.runIDs[runID])

	require.Len(t, outcomes, 2)
	assert.Equal(t, "a", outcomes[0].Step)
	assert.Equal(t, int64(3), outcomes[0].Result.Rows)
	assert.Equal(t, time.Second, outcomes[0].Result.Duration)
	assert.Equal(t, "b", outcomes[1].Step)

	assert.Equal(t, []string{"a", "b"}, rec.started)
	assert.Equal(t, []recordedStep{{"a", 3, false}, {"b", 7, false}}, rec.finished)
	assert.Equal(t, db.StatusSucceeded, rec.status)
}

func TestRunnerStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	a := &fakeStep{name: "a"}
	b := &fakeStep{name: "b", err: boom}
	c := &fakeStep{name: "c"}
	rec := newFakeRecorder()
	runner := &Runner{Recorder: rec}

	_, outcomes, err := runner.Run(context.Background(), testEnv(), []Step{a, b, c})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step b failed")

	assert.Len(t, outcomes, 2)
	assert.Equal(t, 0, c.calls, "steps after a failure must not run")
	assert.Equal(t, []recordedStep{{"a", 0, false}, {"b", 0, true}}, rec.finished)
	assert.Equal(t, db.StatusFailed, rec.status)
}

func TestRunnerWithoutRecorder(t *testing.T) {
	a := &fakeStep{name: "a", rows: 1}
	runner := &Runner{}

	_, outcomes, err := runner.Run(context.Background(), testEnv(), []Step{a})
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, 1, a.calls)
}

func TestRegistry(t *testing.T) {
	Register(&fakeStep{name: "registry-test-one"})
	Register(&fakeStep{name: "registry-test-two"})

	step, err := Get("registry-test-one")
	require.NoError(t, err)
	assert.Equal(t, "registry-test-one", step.Name())

	_, err = Get("no-such-step")
	assert.Error(t, err)

	_, err = Get("")
	assert.Error(t, err)

	steps, err := Resolve([]string{"registry-test-two", "registry-test-one"})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "registry-test-two", steps[0].Name())

	_, err = Resolve([]string{"registry-test-one", "missing"})
	assert.Error(t, err)

	names := List()
	assert.Contains(t, names, "registry-test-one")
	assert.IsNonDecreasing(t, names)
}
