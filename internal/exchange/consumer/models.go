package consumer

import (
	"time"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

type Envelope[T any] struct {
	Kind      string    `json:"kind"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

type ProfilePayload struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type ExperiencePayload struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	CompanyID   *string     `json:"company_id"`
	CompanyName string      `json:"company_name"`
	CompanyLogo string      `json:"company_logo"`
	Role        string      `json:"role"`
	Description string      `json:"description"`
	StartYear   int         `json:"start_year"`
	EndYear     dto.EndYear `json:"end_year"`
	Deleted     bool        `json:"deleted"`
}

func (p ExperiencePayload) record() dto.ExperienceRecord {
	return dto.ExperienceRecord{
		ID:          p.ID,
		UserID:      p.UserID,
		CompanyID:   p.CompanyID,
		CompanyName: p.CompanyName,
		CompanyLogo: p.CompanyLogo,
		Role:        p.Role,
		Description: p.Description,
		StartYear:   p.StartYear,
		EndYear:     p.EndYear,
	}
}

func (p ProfilePayload) profile() dto.UserProfile {
	return dto.UserProfile{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}

// payload is implemented by every envelope payload; owner is the user the
// change applies to and must match the envelope's user_id.
type payload interface {
	owner() string
}

func (p ExperiencePayload) owner() string { return p.UserID }

func (p ProfilePayload) owner() string { return p.UserID }
