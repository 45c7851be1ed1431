package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/bus"
	"github.com/ricesearch/bugeval/internal/format"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

const payloadWidth = 72

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List, replay or follow evaluation events",
		Long: `Read the JSON-lines event log configured under bus.event_log.

With --replay the selected events are published again onto the configured
bus, for example to feed a Kafka consumer that missed a run. With --follow
the command subscribes to the evaluation topics and prints the events it
receives once --limit is reached or the command is interrupted.

A memory bus only reaches subscribers in this process, so on a memory bus
--replay and --follow must be given together.`,
		RunE: runEvents,
	}

	cmd.Flags().Duration("since", 0, "only events newer than this (e.g. 2h), 0 for all")
	cmd.Flags().Int("limit", 0, "maximum number of events, 0 for all")
	cmd.Flags().String("run", "", "only events of this run id")
	cmd.Flags().String("topic", "", "only events on this topic")
	cmd.Flags().Bool("replay", false, "publish the events onto the configured bus")
	cmd.Flags().Bool("follow", false, "subscribe to evaluation topics and print received events")

	return cmd
}

func runEvents(cmd *cobra.Command, _ []string) error {
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")
	replay, _ := cmd.Flags().GetBool("replay")
	follow, _ := cmd.Flags().GetBool("follow")
	run, _ := cmd.Flags().GetString("run")
	topic, _ := cmd.Flags().GetString("topic")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	memoryBus := a.cfg.Bus.Type == "" || strings.EqualFold(a.cfg.Bus.Type, "memory")
	if memoryBus && replay != follow {
		return errors.ValidationError("a memory bus has no subscribers outside this process: use --replay together with --follow, or a kafka bus")
	}

	filter := bus.EventFilter{Topic: topic, CorrelationID: run, Limit: limit}
	if since > 0 {
		filter.Since = time.Now().Add(-since)
	}

	var el *bus.EventLogger
	if replay || !follow {
		path := a.cfg.Bus.EventLog
		if path == "" {
			return errors.ValidationError("bus.event_log is not configured")
		}
		el, err = bus.NewEventLogger(path, true)
		if err != nil {
			return err
		}
		defer el.Close()
	}

	if !replay && !follow {
		events, err := el.Events(filter)
		if err != nil {
			return err
		}
		return a.writeEvents(events)
	}

	// Replayed or followed events must not be appended to the log.
	busCfg := a.cfg.Bus
	busCfg.EventLog = ""
	b, err := bus.NewBus(busCfg, a.metrics, a.log)
	if err != nil {
		return err
	}
	defer b.Close()

	var tail *bus.Tail
	var received []bus.LoggedEvent
	if follow {
		tail = bus.NewTail(filter, func(e bus.LoggedEvent) {
			a.log.Info("Event received", "topic", e.Topic, "type", e.Event.Type, "event_id", e.Event.ID)
			received = append(received, e)
		})
		if err := tail.Follow(cmd.Context(), b, bus.EvaluationTopics...); err != nil {
			return err
		}
	}

	replayed := 0
	if replay {
		replayed, err = el.Replay(cmd.Context(), b, filter)
		if err != nil {
			return err
		}
		a.log.Info("Events replayed", "bus", busCfg.Type, "events", replayed)
	}

	if follow && !memoryBus {
		select {
		case <-cmd.Context().Done():
		case <-tail.Done():
		}
	}
	// Closing drains in-flight handlers, so received is complete afterwards.
	if err := b.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close bus")
	}

	if follow {
		if err := a.writeEvents(received); err != nil {
			return err
		}
	}
	if replay && !a.json() {
		fmt.Fprintf(a.out, "Replayed %d events\n", replayed)
	}
	return nil
}

func (a *app) writeEvents(events []bus.LoggedEvent) error {
	if events == nil {
		events = []bus.LoggedEvent{}
	}
	if a.json() {
		return a.writeJSON(events)
	}

	tb := a.table()
	tb.Header("Time", "Topic", "Type", "Payload")
	for _, e := range events {
		payload, err := json.Marshal(e.Event.Payload)
		if err != nil {
			return err
		}
		tb.Row(e.Timestamp.Format(time.RFC3339), e.Topic, e.Event.Type, format.Truncate(string(payload), payloadWidth))
	}
	a.writeTable(tb)
	fmt.Fprintf(a.out, "%d events\n", len(events))
	return nil
}
