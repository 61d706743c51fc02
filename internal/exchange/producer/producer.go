package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

type Producer struct {
	sp               sarama.SyncProducer
	topicProfiles    string
	topicExperiences string
	source           string
	log              zerolog.Logger
	now              func() time.Time
}

type Config struct {
	TopicProfiles    string
	TopicExperiences string
	Source           string
}

func NewProducer(sp sarama.SyncProducer, cfg Config, log zerolog.Logger) *Producer {
	return &Producer{
		sp:               sp,
		topicProfiles:    cfg.TopicProfiles,
		topicExperiences: cfg.TopicExperiences,
		source:           cfg.Source,
		log:              log.With().Str("component", "Producer").Logger(),
		now:              time.Now,
	}
}

func (p *Producer) Close() error {
	if p == nil || p.sp == nil {
		return nil
	}
	return p.sp.Close()
}

func (p *Producer) ProduceProfile(ctx context.Context, messageID uuid.UUID, profile dto.UserProfile) error {
	env := Envelope[ProfilePayload]{
		Kind:      KindProfile,
		MessageID: messageID.String(),
		UserID:    profile.UserID,
		Payload: ProfilePayload{
			UserID:      profile.UserID,
			Username:    profile.Username,
			DisplayName: profile.DisplayName,
			AvatarURL:   profile.AvatarURL,
		},
		Timestamp: p.now().UTC(),
		Source:    p.source,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal profile payload: %w", err)
	}

	return p.send(ctx, p.topicProfiles, profile.UserID, body, map[string]string{
		"event-kind":   KindProfile,
		"source":       p.source,
		"content-type": "application/json",
	})
}

// ProduceExperience publishes the record; deleted marks a removal.
func (p *Producer) ProduceExperience(ctx context.Context, messageID uuid.UUID, rec dto.ExperienceRecord, deleted bool) error {
	env := Envelope[ExperiencePayload]{
		Kind:      KindExperience,
		MessageID: messageID.String(),
		UserID:    rec.UserID,
		Payload: ExperiencePayload{
			ID:          rec.ID,
			UserID:      rec.UserID,
			CompanyID:   rec.CompanyID,
			CompanyName: rec.CompanyName,
			CompanyLogo: rec.CompanyLogo,
			Role:        rec.Role,
			Description: rec.Description,
			StartYear:   rec.StartYear,
			EndYear:     rec.EndYear,
			Deleted:     deleted,
		},
		Timestamp: p.now().UTC(),
		Source:    p.source,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	// keyed by user so one user's history stays ordered within a partition
	return p.send(ctx, p.topicExperiences, rec.UserID, body, map[string]string{
		"event-kind":   KindExperience,
		"source":       p.source,
		"content-type": "application/json",
	})
}

func (p *Producer) send(ctx context.Context, topic, key string, value []byte, headers map[string]string) error {
	if p == nil || p.sp == nil {
		return errors.New("sync producer is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: hs,
	}

	part, off, err := p.sp.SendMessage(msg)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Int("headers_count", len(headers)).
			Int("bytes", len(value)).
			Msg("failed to send kafka message")
		return fmt.Errorf("send kafka message: %w", err)
	}

	p.log.Info().
		Str("topic", topic).
		Str("key", key).
		Int32("partition", part).
		Int64("offset", off).
		Int("bytes", len(value)).
		Msg("kafka message sent")
	return nil
}
