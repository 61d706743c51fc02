package dto

import (
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"

	"github.com/google/uuid"
)

// UserProfile is the public profile the experience list hangs off.
type UserProfile struct {
	UserID      string  `json:"user_id" example:"u-1024"`
	Username    string  `json:"username" example:"sokha"`
	DisplayName *string `json:"display_name,omitempty" example:"Sokha Chan"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

// ExperienceRecord is a single work-history entry of a user.
type ExperienceRecord struct {
	ID          string  `json:"id" example:"0f2eb2b1-6a25-4d2a-8a7e-2c642e00e5ed"`
	UserID      string  `json:"user_id" example:"u-1024"`
	CompanyID   *string `json:"company_id,omitempty"`
	CompanyName string  `json:"company_name" example:"ABA Bank"`
	CompanyLogo string  `json:"company_logo"`
	Role        string  `json:"role" example:"Backend Engineer"`
	Description string  `json:"description"`
	StartYear   int     `json:"start_year" example:"2021"`
	EndYear     EndYear `json:"end_year" swaggertype:"integer" example:"2023"` // null: present
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ExperienceRecordGroup is a continuous employment span at one company.
type ExperienceRecordGroup struct {
	CompanyName string             `json:"company_name"`
	CompanyLogo string             `json:"company_logo"`
	StartYear   int                `json:"start_year"`
	EndYear     EndYear            `json:"end_year" swaggertype:"integer"`
	Items       []ExperienceRecord `json:"items"`
}

// KafkaEvent is a consumed message recorded for idempotency.
type KafkaEvent struct {
	ID         int64           `json:"id"`
	MessageID  uuid.UUID       `json:"message_id"`
	Topic      string          `json:"topic"`
	Key        string          `json:"key"`
	Partition  int             `json:"partition"`
	Offset     int64           `json:"offset"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt string          `json:"received_at"`
}

// KafkaDLQ is a message the consumer could not apply. Payload holds the raw
// message bytes, which need not be valid UTF-8.
type KafkaDLQ struct {
	ID         int64  `json:"id"`
	Topic      string `json:"topic"`
	Key        string `json:"key"`
	Payload    []byte `json:"-"`
	Error      string `json:"error"`
	ReceivedAt string `json:"received_at"`
}

const (
	PayloadText   = "text"
	PayloadBase64 = "base64"
)

// MarshalJSON renders the payload as text when it is valid UTF-8 and as
// base64 otherwise; payload_encoding tells which.
func (d KafkaDLQ) MarshalJSON() ([]byte, error) {
	type plain KafkaDLQ

	encoding, text := PayloadText, string(d.Payload)
	if !utf8.Valid(d.Payload) {
		encoding, text = PayloadBase64, base64.StdEncoding.EncodeToString(d.Payload)
	}

	return json.Marshal(struct {
		plain
		Payload         string `json:"payload"`
		PayloadEncoding string `json:"payload_encoding"`
	}{plain: plain(d), Payload: text, PayloadEncoding: encoding})
}
