package application

import (
	"context"
	"log"

	"factoryline-cloud/internal/downtime/application/eventbus"
	"factoryline-cloud/internal/downtime/application/events"
)

// WireDowntimeEventBus subscribes the default consumers for downtime events.
func WireDowntimeEventBus(bus eventbus.Bus, logger *log.Logger) {
	if bus == nil {
		return
	}
	eventbus.On(bus, func(ctx context.Context, event events.DowntimeCalculated) error {
		if logger != nil {
			logger.Printf("downtime calculated: line=%s intervals=%d checkpoint=%d",
				event.LineID, len(event.Intervals), event.NewCheckpoint)
		}
		return nil
	})
}
