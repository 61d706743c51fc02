package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

type kind string

const (
	kindProfile    kind = "profile"
	kindExperience kind = "experience"
)

type handler struct {
	kind        kind
	events      EventsRepository
	profiles    ProfileRepository
	experiences ExperienceRepository
	log         zerolog.Logger
	commitOnDLQ bool
	retryDelay  time.Duration
}

var errRedeliver = errors.New("redelivery required")

func (h *handler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *handler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if ok := h.handle(sess.Context(), msg); ok {
			sess.MarkMessage(msg, "")
			continue
		}

		// Marking a later offset would commit past this message, so end the
		// session instead; the next one resumes from the last committed offset.
		select {
		case <-sess.Context().Done():
		case <-time.After(h.retryDelay):
		}

		return fmt.Errorf("%s/%d offset %d not applied: %w", msg.Topic, msg.Partition, msg.Offset, errRedeliver)
	}
	return nil
}

// handle processes one message and reports whether its offset may be committed.
func (h *handler) handle(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	switch h.kind {
	case kindProfile:
		var env Envelope[ProfilePayload]
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			return h.toDLQ(ctx, msg, fmt.Sprintf("invalid_json: %v", err))
		}
		return process(ctx, h, msg, env, h.applyProfile)
	case kindExperience:
		var env Envelope[ExperiencePayload]
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			return h.toDLQ(ctx, msg, fmt.Sprintf("invalid_json: %v", err))
		}
		return process(ctx, h, msg, env, h.applyExperience)
	default:
		h.log.Error().Str("kind", string(h.kind)).Msg("unknown consumer kind")
		return true
	}
}

// process is the pipeline shared by every kind: envelope checks, idempotency by
// message_id, apply, then record the event. apply returns a DLQ reason or an
// error. A reason is final and goes to the DLQ; an error is transient and the
// offset stays uncommitted so the message is redelivered. The event is only
// recorded once apply succeeded so a failed message is not mistaken for a
// duplicate on redelivery.
func process[T payload](
	ctx context.Context,
	h *handler,
	msg *sarama.ConsumerMessage,
	env Envelope[T],
	apply func(context.Context, T) (string, error),
) bool {
	msgID, err := uuid.Parse(env.MessageID)
	if err != nil || env.UserID == "" {
		return h.toDLQ(ctx, msg, "missing_required_field")
	}

	if env.Payload.owner() != env.UserID {
		return h.toDLQ(ctx, msg, "user_mismatch")
	}

	exists, err := h.events.ExistsMessage(ctx, msgID)
	if err != nil {
		h.log.Error().Err(err).Str("message_id", env.MessageID).Msg("events.ExistsMessage failed, will retry")
		return false
	}
	if exists {
		h.log.Info().Str("message_id", env.MessageID).Str("user_id", env.UserID).Msg("duplicate message, skip (idempotency)")
		return true
	}

	reason, err := apply(ctx, env.Payload)
	if err != nil {
		h.log.Error().Err(err).Str("message_id", env.MessageID).Msg("apply failed, will retry")
		return false
	}
	if reason != "" {
		return h.toDLQ(ctx, msg, reason)
	}

	if err := h.events.InsertEvent(ctx, dto.KafkaEvent{
		MessageID: msgID,
		Topic:     msg.Topic,
		Key:       keyString(msg.Key),
		Partition: int(msg.Partition),
		Offset:    msg.Offset,
		Payload:   append([]byte(nil), msg.Value...),
	}); err != nil {
		// the change is applied and idempotent, so only log
		h.log.Error().Err(err).Str("message_id", env.MessageID).Msg("events.InsertEvent failed")
	}

	return true
}

// toDLQ parks the message and reports whether its offset may be committed.
// A message that could not be parked is never committed.
func (h *handler) toDLQ(ctx context.Context, msg *sarama.ConsumerMessage, reason string) bool {
	h.log.Warn().
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("reason", reason).
		Msg("message sent to DLQ")

	if err := h.events.InsertDLQ(ctx, dto.KafkaDLQ{
		Topic:   msg.Topic,
		Key:     keyString(msg.Key),
		Payload: append([]byte(nil), msg.Value...),
		Error:   reason,
	}); err != nil {
		h.log.Error().Err(err).Str("topic", msg.Topic).Msg("events.InsertDLQ failed, will retry")
		return false
	}

	return h.commitOnDLQ
}

// keyString makes a Kafka key storable in a text column.
func keyString(key []byte) string {
	return strings.ReplaceAll(strings.ToValidUTF8(string(key), "\uFFFD"), "\x00", "")
}
