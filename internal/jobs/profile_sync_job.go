package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/referly/referral-api/internal/queue"
	"github.com/referly/referral-api/internal/repository"
)

// staleAfter is how old a connection's profile mirror may get before the
// periodic job refreshes it.
const staleAfter = 6 * time.Hour

type ProfileSyncJob struct {
	tc     repository.TwitterConnectionRepository
	client *asynq.Client
}

func NewProfileSyncJob(tc repository.TwitterConnectionRepository, client *asynq.Client) *ProfileSyncJob {
	return &ProfileSyncJob{
		tc:     tc,
		client: client,
	}
}

func (j *ProfileSyncJob) SyncProfiles() {
	ctx := context.Background()

	connections, err := j.tc.ListStale(ctx, time.Now().Add(-staleAfter))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, connection := range connections {
		err := queue.EnqueueProfileSync(j.client, queue.ProfileSyncPayload{
			ConnectionID: connection.ID,
		})
		if err != nil {
			slog.Info("Unable to enqueue profile sync for connection")
		}
	}
}
