package consumer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
	"github.com/KhmerCoders/khmercoders-web/internal/validator"
)

func NewExperienceRunner(
	bootstrap string,
	topic string,
	groupID string,
	events EventsRepository,
	experiences ExperienceRepository,
	log zerolog.Logger,
) *Runner {
	h := &handler{
		kind:        kindExperience,
		events:      events,
		experiences: experiences,
		log:         log.With().Str("consumer", "experience").Logger(),
		commitOnDLQ: true,
	}

	return newRunner(bootstrap, groupID, topic, h, log)
}

func (h *handler) applyExperience(ctx context.Context, payload ExperiencePayload) (string, error) {
	if _, err := uuid.Parse(payload.ID); err != nil {
		return fmt.Sprintf("invalid value in field 'id'=%s", payload.ID), nil
	}

	if payload.Deleted {
		err := h.experiences.Delete(ctx, payload.ID)
		if err != nil && !errors.Is(err, dto.ErrNotFound) {
			return "", fmt.Errorf("experiences.Delete: %w", err)
		}
		return "", nil
	}

	rec := payload.record()
	if msg := validator.Experience(rec); msg != "" {
		return msg, nil
	}

	if err := h.experiences.Upsert(ctx, rec); err != nil {
		return "", fmt.Errorf("experiences.Upsert: %w", err)
	}

	return "", nil
}
