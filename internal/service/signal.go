package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/opencivic/civicpulse/internal/domain"
)

// SignalService fans accepted-vote events out to realtime listeners via
// redis pub/sub.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.VoteEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.VoteEventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards vote events for the listened report ids to output
// until ctx is cancelled. input carries subscription updates: each
// received slice replaces the listened set; an empty set means
// everything.
func (s *SignalService) Realtime(ctx context.Context, input chan []string, output chan domain.VoteEvent) {
	pubsub := s.rdb.Subscribe(ctx, domain.VoteEventChannel)
	defer pubsub.Close()

	listened := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return
		case ids, ok := <-input:
			if !ok {
				return
			}
			listened = map[string]bool{}
			for _, id := range ids {
				listened[id] = true
			}
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			var event domain.VoteEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "Malformed vote event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}

			if len(listened) > 0 && !listened[event.ReportID] {
				continue
			}

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
