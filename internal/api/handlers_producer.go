package api

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

type profileProduceRequest struct {
	MessageID   string  `json:"message_id"` // generated when empty
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type experienceProduceRequest struct {
	MessageID   string      `json:"message_id"` // generated when empty
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	CompanyID   *string     `json:"company_id"`
	CompanyName string      `json:"company_name"`
	CompanyLogo string      `json:"company_logo"`
	Role        string      `json:"role"`
	Description string      `json:"description"`
	StartYear   int         `json:"start_year"`
	EndYear     dto.EndYear `json:"end_year" swaggertype:"integer"`
	Deleted     bool        `json:"deleted"`
}

// messageID parses the caller supplied message id, or generates one.
// Reusing an id is how a duplicate delivery is simulated.
func messageID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.New(), nil
	}

	return uuid.Parse(raw)
}

// @Summary Publish a profile event
// @Tags    Producer
// @Accept  json
// @Produce json
// @Param   request body profileProduceRequest true "Event"
// @description The payload is not validated here; invalid events end up in the DLQ.
// @Success 200 {object} producedResponse
// @Failure 400 {object} errorResponse "invalid_json | missing_required_field | invalid_message_id"
// @Failure 501 {object} errorResponse "producer_not_configured"
// @Failure 500 {object} errorResponse
// @Router  /producer/profile [post]
func (s *Service) producerProfile(ctx *fasthttp.RequestCtx) {
	if s.producer == nil {
		notImplemented(ctx, "producer_not_configured", "Kafka producer is not configured")
		return
	}

	var req profileProduceRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		badRequest(ctx, "invalid_json", "Malformed JSON")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		badRequest(ctx, "missing_required_field", "Missing user_id")
		return
	}

	msgID, err := messageID(req.MessageID)
	if err != nil {
		badRequest(ctx, "invalid_message_id", ErrMessageIDInvalid.Error())
		return
	}

	prof := dto.UserProfile{
		UserID:      req.UserID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	}

	if err := s.producer.ProduceProfile(ctx, msgID, prof); err != nil {
		serverError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, producedResponse{Status: "ok", Msg: "Profile event sent", MessageID: msgID.String()})
}

// @Summary Publish an experience event (upsert, or delete when deleted=true)
// @Tags    Producer
// @Accept  json
// @Produce json
// @Param   request body experienceProduceRequest true "Event"
// @description The payload is not validated here; invalid events end up in the DLQ.
// @Success 200 {object} producedResponse
// @Failure 400 {object} errorResponse "invalid_json | missing_required_field | invalid_message_id"
// @Failure 501 {object} errorResponse "producer_not_configured"
// @Failure 500 {object} errorResponse
// @Router  /producer/experience [post]
func (s *Service) producerExperience(ctx *fasthttp.RequestCtx) {
	if s.producer == nil {
		notImplemented(ctx, "producer_not_configured", "Kafka producer is not configured")
		return
	}

	var req experienceProduceRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		badRequest(ctx, "invalid_json", "Malformed JSON")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		badRequest(ctx, "missing_required_field", "Missing user_id")
		return
	}
	if req.Deleted && strings.TrimSpace(req.ID) == "" {
		badRequest(ctx, "missing_required_field", "Missing id of the record to delete")
		return
	}

	msgID, err := messageID(req.MessageID)
	if err != nil {
		badRequest(ctx, "invalid_message_id", ErrMessageIDInvalid.Error())
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	rec := dto.ExperienceRecord{
		ID:          req.ID,
		UserID:      req.UserID,
		CompanyID:   req.CompanyID,
		CompanyName: req.CompanyName,
		CompanyLogo: req.CompanyLogo,
		Role:        req.Role,
		Description: req.Description,
		StartYear:   req.StartYear,
		EndYear:     req.EndYear,
	}

	if err := s.producer.ProduceExperience(ctx, msgID, rec, req.Deleted); err != nil {
		serverError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, producedResponse{Status: "ok", Msg: "Experience event sent", MessageID: msgID.String()})
}

// @Summary Consumed events, newest first
// @Tags    Events
// @Produce json
// @Param   limit  query int false "1..500, default 50"
// @Param   offset query int false "default 0"
// @Success 200 {object} listResponse
// @Failure 500 {object} errorResponse
// @Router  /events [get]
func (s *Service) listEvents(ctx *fasthttp.RequestCtx) {
	limit, offset := parseLO(ctx)
	rows, err := s.events.ListEvents(ctx, limit, offset)
	if err != nil {
		serverError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, listResponse{Items: rows, Limit: limit, Offset: offset})
}

// @Summary Dead letter queue, newest first
// @Tags    Events
// @Produce json
// @Param   limit  query int false "1..500, default 50"
// @Param   offset query int false "default 0"
// @Success 200 {object} listResponse
// @Failure 500 {object} errorResponse
// @Router  /dlq [get]
func (s *Service) listDLQ(ctx *fasthttp.RequestCtx) {
	limit, offset := parseLO(ctx)
	rows, err := s.events.ListDLQ(ctx, limit, offset)
	if err != nil {
		serverError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, listResponse{Items: rows, Limit: limit, Offset: offset})
}

func parseLO(ctx *fasthttp.RequestCtx) (int, int) {
	q := ctx.URI().QueryArgs()
	limit := 50
	offset := 0

	if v := q.GetUintOrZero("limit"); v > 0 && v <= 500 {
		limit = v
	}
	if s := string(q.Peek("offset")); s != "" {
		if x, err := strconv.Atoi(s); err == nil && x >= 0 {
			offset = x
		}
	}

	return limit, offset
}
