package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasedu/quizforge/internal/cache"
)

func TestCheckpointStore_RoundTrip(t *testing.T) {
	store := NewCheckpointStore(cache.NewMemoryClient(8), time.Minute)
	ctx := context.Background()

	err := store.Save(ctx, Checkpoint{
		RunID:   "run-1",
		Stage:   StageGenerating,
		Percent: 40,
		Message: "Generating questions",
	})
	require.NoError(t, err)

	cp, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StageGenerating, cp.Stage)
	assert.Equal(t, 40, cp.Percent)
	assert.False(t, cp.UpdatedAt.IsZero())
}

func TestCheckpointStore_UnknownRun(t *testing.T) {
	store := NewCheckpointStore(cache.NewMemoryClient(8), time.Minute)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestCheckpointStore_OverwritesPriorStage(t *testing.T) {
	store := NewCheckpointStore(cache.NewMemoryClient(8), time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Checkpoint{RunID: "run-2", Stage: StageSummarizing, Percent: 25}))
	require.NoError(t, store.Save(ctx, Checkpoint{RunID: "run-2", Stage: StageCompleted, Percent: 100, QuizID: "q-9"}))

	cp, err := store.Load(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, cp.Stage)
	assert.Equal(t, "q-9", cp.QuizID)
}
