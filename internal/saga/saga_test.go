package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaga_AllStepsSucceed(t *testing.T) {
	s := New("test", zap.NewNop())

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		s.AddStep(Step{
			Name:    name,
			Execute: func(ctx context.Context) error { order = append(order, name); return nil },
		})
	}

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSaga_FailureCompensatesInReverse(t *testing.T) {
	s := New("test", zap.NewNop())

	var compensated []string
	s.AddStep(Step{
		Name:       "first",
		Execute:    func(ctx context.Context) error { return nil },
		Compensate: func(ctx context.Context) error { compensated = append(compensated, "first"); return nil },
	})
	s.AddStep(Step{
		Name:       "second",
		Execute:    func(ctx context.Context) error { return nil },
		Compensate: func(ctx context.Context) error { compensated = append(compensated, "second"); return nil },
	})
	s.AddStep(Step{
		Name:    "third",
		Execute: func(ctx context.Context) error { return errors.New("boom") },
	})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "third")
	assert.Equal(t, []string{"second", "first"}, compensated)
}

func TestSaga_FailedStepIsNotCompensated(t *testing.T) {
	s := New("test", zap.NewNop())

	var compensated bool
	s.AddStep(Step{
		Name:       "only",
		Execute:    func(ctx context.Context) error { return errors.New("boom") },
		Compensate: func(ctx context.Context) error { compensated = true; return nil },
	})

	require.Error(t, s.Execute(context.Background()))
	assert.False(t, compensated, "a step that never succeeded must not be compensated")
}

func TestSaga_CompensationErrorDoesNotMaskOriginal(t *testing.T) {
	s := New("test", zap.NewNop())

	s.AddStep(Step{
		Name:       "first",
		Execute:    func(ctx context.Context) error { return nil },
		Compensate: func(ctx context.Context) error { return errors.New("compensation broke") },
	})
	s.AddStep(Step{
		Name:    "second",
		Execute: func(ctx context.Context) error { return errors.New("original failure") },
	})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "original failure")
}
