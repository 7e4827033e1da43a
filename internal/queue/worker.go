package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/referly/referral-api/internal/service"
)

type Worker struct {
	ts service.TwitterService
}

func NewWorker(ts service.TwitterService) *Worker {
	return &Worker{ts: ts}
}

func (w *Worker) HandleProfileSyncTask(ctx context.Context, task *asynq.Task) error {
	var payload ProfileSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := w.ts.SyncProfile(ctx, payload.ConnectionID); err != nil {
		log.Printf("Error syncing twitter profile for connection %d: %v", payload.ConnectionID, err)
		return err
	}
	return nil
}
