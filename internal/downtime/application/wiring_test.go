package application_test

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"factoryline-cloud/internal/downtime/application"
	"factoryline-cloud/internal/downtime/application/eventbus"
	"factoryline-cloud/internal/downtime/application/events"
)

func TestWireDowntimeEventBus_LogsCalculated(t *testing.T) {
	var buf bytes.Buffer
	bus := eventbus.NewInMemoryBus()
	application.WireDowntimeEventBus(bus, log.New(&buf, "", 0))

	err := bus.Publish(context.Background(), events.DowntimeCalculated{
		LineID:        "line-9",
		NewCheckpoint: 7,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	logged := buf.String()
	if !strings.Contains(logged, "line=line-9") || !strings.Contains(logged, "checkpoint=7") {
		t.Fatalf("log output %q missing line or checkpoint", logged)
	}
}
