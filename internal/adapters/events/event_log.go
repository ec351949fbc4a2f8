package events

import (
	"context"

	"github.com/andrescamacho/empire-go/internal/application/common"
)

// RunEventLog writes every committed village event to logger until ctx is
// cancelled or the bus closes the subscription. It blocks; run it in its own
// goroutine.
func RunEventLog(ctx context.Context, bus *VillageEventBus, logger common.Logger) {
	ch := bus.SubscribeAll()
	defer bus.UnsubscribeAll(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			keyvals := []interface{}{"type", string(event.Type), "village_id", event.VillageID.String()}
			if event.EntityType != "" {
				keyvals = append(keyvals, "entity", event.EntityType, "level", event.Level)
			}
			if event.Deadline != nil {
				keyvals = append(keyvals, "deadline", *event.Deadline)
			}
			if len(event.Amounts) > 0 {
				keyvals = append(keyvals, "amounts", event.Amounts)
			}
			logger.Info("Village event", keyvals...)
		}
	}
}
