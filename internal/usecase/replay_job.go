package usecase

import (
	"context"
	"fmt"

	"StockHark/internal/domain/models"
	"StockHark/pkg/queue"
)

// ObservationReplayType is the queue message type for dropped observations.
const ObservationReplayType = "observation.replay"

// ObservationReplayJob re-processes observations the ingest pipeline had
// to drop. Payloads come back from Redis as JSON maps, so they are parsed
// through the generic payload helper.
type ObservationReplayJob struct {
	proc *ObservationProcessor
}

func NewObservationReplayJob(proc *ObservationProcessor) *ObservationReplayJob {
	return &ObservationReplayJob{proc: proc}
}

func (j *ObservationReplayJob) Name() string { return "observation-replay" }

func (j *ObservationReplayJob) Type() string { return ObservationReplayType }

func (j *ObservationReplayJob) Handle(ctx context.Context, payload interface{}) error {
	o, err := queue.ParsePayload[models.Observation](payload)
	if err != nil {
		return fmt.Errorf("replay payload: %w", err)
	}
	return j.proc.Process(ctx, o)
}
