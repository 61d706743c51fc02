package consumer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

type EventsRepository interface {
	ExistsMessage(ctx context.Context, messageID uuid.UUID) (bool, error)
	InsertEvent(ctx context.Context, ev dto.KafkaEvent) error
	InsertDLQ(ctx context.Context, dlq dto.KafkaDLQ) error
}

type ProfileRepository interface {
	Upsert(ctx context.Context, p dto.UserProfile) error
}

type ExperienceRepository interface {
	Upsert(ctx context.Context, rec dto.ExperienceRecord) error
	Delete(ctx context.Context, id string) error
}

type Runner struct {
	brokers    []string
	groupID    string
	topic      string
	handler    *handler
	log        zerolog.Logger
	createCfg  func() *sarama.Config
	newGroup   func(addrs []string, groupID string, cfg *sarama.Config) (sarama.ConsumerGroup, error)
	retryDelay time.Duration
}

const defaultRetryDelay = 500 * time.Millisecond

func newRunner(bootstrap, groupID, topic string, h *handler, log zerolog.Logger) *Runner {
	h.retryDelay = defaultRetryDelay

	createCfg := func() *sarama.Config {
		cfg := sarama.NewConfig()
		cfg.Version = sarama.V3_3_2_0
		cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
		cfg.Consumer.Return.Errors = true
		// offsets are committed only through session.MarkMessage
		return cfg
	}
	return &Runner{
		brokers:    []string{bootstrap},
		groupID:    groupID,
		topic:      topic,
		handler:    h,
		log:        log.With().Str("topic", topic).Str("group", groupID).Logger(),
		createCfg:  createCfg,
		newGroup:   sarama.NewConsumerGroup,
		retryDelay: defaultRetryDelay,
	}
}

func (r *Runner) Start(ctx context.Context) error {
	cfg := r.createCfg()

	consumerGroup, err := r.newGroup(r.brokers, r.groupID, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = consumerGroup.Close() }()

	go func() {
		for err := range consumerGroup.Errors() {
			if err == nil || errors.Is(err, context.Canceled) || (strings.Contains(err.Error(), "context canceled")) {
				continue
			}

			r.log.Error().Err(err).Msg("consumer group error")
		}
	}()

	r.log.Info().Msg("consumer started")
	defer r.log.Info().Msg("consumer stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		err := consumerGroup.Consume(ctx, []string{r.topic}, r.handler)

		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}

		if err != nil {
			r.log.Error().Err(err).Msg("consume error")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.retryDelay):
			}
		}
	}
}
