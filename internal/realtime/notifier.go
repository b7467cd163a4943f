package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ustaad-pk/ustaad_be/internal/metrics"
)

const (
	EventProposalReceived      = "proposal_received"
	EventProposalStatusChanged = "proposal_status_changed"
	EventReviewReceived        = "review_received"
)

type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

func NewEvent(typ string, data any) Event {
	return Event{Type: typ, Data: data, At: time.Now().UTC()}
}

// Notifier delivers an event to a profile. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, profileID uuid.UUID, ev Event)
}

func Channel(profileID uuid.UUID) string {
	return "notifications:" + profileID.String()
}

// Broadcaster publishes to redis and to local websocket clients.
// Either side may be nil.
type Broadcaster struct {
	Hub *Hub
	RDB *redis.Client
	Log *zap.Logger
}

func NewBroadcaster(hub *Hub, rdb *redis.Client, log *zap.Logger) *Broadcaster {
	return &Broadcaster{Hub: hub, RDB: rdb, Log: log.Named("notifier")}
}

func (b *Broadcaster) Notify(ctx context.Context, profileID uuid.UUID, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.Log.Error("marshal event", zap.String("type", ev.Type), zap.Error(err))
		metrics.NotificationsSent.WithLabelValues(ev.Type, "error").Inc()
		return
	}

	if b.Hub != nil {
		b.Hub.SendToProfile(profileID, payload)
	}

	if b.RDB != nil {
		if err := b.RDB.Publish(ctx, Channel(profileID), payload).Err(); err != nil {
			b.Log.Warn("redis publish", zap.Stringer("profile_id", profileID), zap.Error(err))
			metrics.NotificationsSent.WithLabelValues(ev.Type, "error").Inc()
			return
		}
	}
	metrics.NotificationsSent.WithLabelValues(ev.Type, "sent").Inc()
}
