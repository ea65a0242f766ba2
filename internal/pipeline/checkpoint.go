package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atlasedu/quizforge/internal/cache"
)

// ErrRunNotFound indicates no checkpoint exists for a run id.
var ErrRunNotFound = errors.New("run not found")

// Checkpoint is the durable trail of a run, written after every stage
// transition. It supports progress polling across processes; it is not a
// resumption mechanism. A crashed run is simply re-invoked.
type Checkpoint struct {
	RunID       string    `json:"runId"`
	Stage       Stage     `json:"stage"`
	Percent     int       `json:"percent"`
	Message     string    `json:"message,omitempty"`
	QuizID      string    `json:"quizId,omitempty"`
	Error       string    `json:"error,omitempty"`
	FailedStage Stage     `json:"failedStage,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CheckpointStore persists run checkpoints in a cache backend.
type CheckpointStore struct {
	client cache.Client
	ttl    time.Duration
}

// NewCheckpointStore creates a checkpoint store with the given TTL.
func NewCheckpointStore(client cache.Client, ttl time.Duration) *CheckpointStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CheckpointStore{client: client, ttl: ttl}
}

// Save writes the checkpoint for its run id.
func (s *CheckpointStore) Save(ctx context.Context, cp Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := s.client.Set(ctx, checkpointKey(cp.RunID), data, s.ttl); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load reads the latest checkpoint for a run id.
func (s *CheckpointStore) Load(ctx context.Context, runID string) (*Checkpoint, error) {
	data, err := s.client.Get(ctx, checkpointKey(runID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &cp, nil
}

func checkpointKey(runID string) string {
	return "run:" + runID
}
