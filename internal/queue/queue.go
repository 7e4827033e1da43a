package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

const TaskTypeProfileSync = "twitter:sync"

type ProfileSyncPayload struct {
	ConnectionID int64 `json:"connection_id"`
}

func EnqueueProfileSync(asynqClient *asynq.Client, payload ProfileSyncPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeProfileSync, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Profile sync scheduled: %+v", payload)
	return nil
}
