package consumer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
	"github.com/KhmerCoders/khmercoders-web/internal/validator"
)

func NewProfileRunner(
	bootstrap string,
	topic string,
	groupID string,
	events EventsRepository,
	profiles ProfileRepository,
	log zerolog.Logger,
) *Runner {
	h := &handler{
		kind:        kindProfile,
		events:      events,
		profiles:    profiles,
		log:         log.With().Str("consumer", "profile").Logger(),
		commitOnDLQ: true,
	}

	return newRunner(bootstrap, groupID, topic, h, log)
}

func (h *handler) applyProfile(ctx context.Context, payload ProfilePayload) (string, error) {
	p := payload.profile()
	if msg := validator.Profile(p); msg != "" {
		return msg, nil
	}

	if err := h.profiles.Upsert(ctx, p); err != nil {
		if errors.Is(err, dto.ErrAlreadyExists) {
			return "username_taken", nil
		}
		return "", fmt.Errorf("profiles.Upsert: %w", err)
	}

	return "", nil
}
