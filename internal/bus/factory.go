package bus

import (
	"fmt"
	"strings"

	"github.com/ricesearch/bugeval/internal/config"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/pkg/logger"
)

// NewBus creates a Bus from configuration. The transport is wrapped with an
// InstrumentedBus when metrics is non-nil and with a LoggedBus when an event
// log path is configured.
func NewBus(cfg config.BusConfig, metrics MetricsRecorder, log *logger.Logger) (Bus, error) {
	if log == nil {
		log = logger.Default()
	}

	var b Bus
	switch strings.ToLower(cfg.Type) {
	case "memory", "":
		b = NewMemoryBus(log)

	case "kafka":
		brokers := ParseKafkaBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, errors.New(errors.CodeValidation, "kafka brokers not configured")
		}

		consumerGroup := cfg.KafkaGroup
		if consumerGroup == "" {
			consumerGroup = "bugeval"
		}

		kb, err := NewKafkaBus(KafkaConfig{
			Brokers:       brokers,
			ConsumerGroup: consumerGroup,
			ClientID:      "bugeval",
			TopicPrefix:   cfg.TopicPrefix,
			Logger:        log,
		})
		if err != nil {
			return nil, err
		}
		b = kb

	default:
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown bus type: %s", cfg.Type))
	}

	if metrics != nil {
		b = NewInstrumentedBus(b, metrics)
	}

	if cfg.EventLog != "" {
		eventLogger, err := NewEventLogger(cfg.EventLog, true)
		if err != nil {
			b.Close()
			return nil, errors.Wrap(errors.CodeInternal, "failed to open event log", err)
		}
		b = NewLoggedBus(b, eventLogger, log)
	}

	return b, nil
}
