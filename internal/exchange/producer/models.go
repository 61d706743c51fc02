package producer

import (
	"time"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

const (
	KindProfile    = "profile"
	KindExperience = "experience"
)

// ProfilePayload is published on the profiles topic.
type ProfilePayload struct {
	UserID      string  `json:"user_id" example:"u-1024"`
	Username    string  `json:"username" example:"sokha"`
	DisplayName *string `json:"display_name,omitempty" example:"Sokha Chan"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// ExperiencePayload upserts a record, or removes it when Deleted is set.
type ExperiencePayload struct {
	ID          string      `json:"id" example:"0f2eb2b1-6a25-4d2a-8a7e-2c642e00e5ed"`
	UserID      string      `json:"user_id" example:"u-1024"`
	CompanyID   *string     `json:"company_id,omitempty"`
	CompanyName string      `json:"company_name" example:"ABA Bank"`
	CompanyLogo string      `json:"company_logo"`
	Role        string      `json:"role" example:"Backend Engineer"`
	Description string      `json:"description"`
	StartYear   int         `json:"start_year" example:"2021"`
	EndYear     dto.EndYear `json:"end_year" swaggertype:"integer"`
	Deleted     bool        `json:"deleted,omitempty"`
}

type Envelope[T any] struct {
	Kind      string    `json:"kind"` // profile | experience
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}
