package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/domain/license"
	"github.com/raghavbhatia332/licensedesk/internal/port/broadcast"
	"github.com/raghavbhatia332/licensedesk/internal/port/changefeed"
	"github.com/raghavbhatia332/licensedesk/internal/port/database"
)

// Forwarder bridges the durable change feed to connected consoles. It
// subscribes to all change subjects, rebroadcasts each event over the
// realtime channel, and follows every license change with a recomputed
// stats snapshot so consoles can redraw summary cards without refetching.
type Forwarder struct {
	store       database.Store
	feed        changefeed.Feed
	broadcaster broadcast.Broadcaster
	logger      *slog.Logger
}

func NewForwarder(store database.Store, feed changefeed.Feed, b broadcast.Broadcaster, logger *slog.Logger) *Forwarder {
	return &Forwarder{store: store, feed: feed, broadcaster: b, logger: logger}
}

// Run subscribes to the change feed and blocks until ctx is canceled.
func (f *Forwarder) Run(ctx context.Context) error {
	subjects := []string{"licenses.>", "admins.>", "settings.>"}
	stops := make([]func(), 0, len(subjects))
	for _, subj := range subjects {
		stop, err := f.feed.Subscribe(ctx, subj, f.handle)
		if err != nil {
			for _, s := range stops {
				s()
			}
			return fmt.Errorf("subscribe %s: %w", subj, err)
		}
		stops = append(stops, stop)
	}
	<-ctx.Done()
	for _, s := range stops {
		s()
	}
	return nil
}

func (f *Forwarder) handle(subject string, data []byte) error {
	var ev event.ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		f.logger.Error("decode change event", "subject", subject, "error", err)
		// A malformed event never becomes parseable; drop it instead of
		// looping on redelivery.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f.broadcaster.BroadcastEvent(ctx, consoleEventType(&ev), &ev)

	if ev.Entity == event.EntityLicense {
		f.broadcastStats(ctx)
	}
	return nil
}

func (f *Forwarder) broadcastStats(ctx context.Context) {
	recs, err := f.store.ListLicenses(ctx)
	if err != nil {
		f.logger.Error("recompute stats for snapshot", "error", err)
		return
	}
	stats := license.ComputeStats(recs, time.Now())
	f.broadcaster.BroadcastEvent(ctx, broadcast.EventStatsSnapshot, broadcast.StatsSnapshot{Stats: stats})
}

// consoleEventType maps a change event to the type string consoles key on,
// e.g. "license.created" or "admin.deleted".
func consoleEventType(ev *event.ChangeEvent) string {
	return string(ev.Entity) + "." + string(ev.Type)
}
