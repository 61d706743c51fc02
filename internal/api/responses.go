package api

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

var (
	ErrMessageIDInvalid = errors.New("field 'message_id' is not a uuid")

	ErrExperienceIDInvalid     = errors.New("field 'id' is not a uuid")
	ErrExperienceNotFound      = errors.New("experience not found")
	ErrExperienceAlreadyExists = errors.New("experience already exists")

	ErrUserIDRequired       = errors.New("required field 'user_id'")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
)

type okResponse struct {
	Status string `json:"status" example:"ok"`
	Msg    string `json:"msg" example:"Done"`
}

type producedResponse struct {
	Status    string `json:"status" example:"ok"`
	Msg       string `json:"msg"`
	MessageID string `json:"message_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listResponse struct {
	Items  any `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, body any) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatusCode(statusCode)

	_ = json.NewEncoder(ctx).Encode(body)
}

func ok(ctx *fasthttp.RequestCtx, msg string) {
	writeJSON(ctx, fasthttp.StatusOK, okResponse{Status: "ok", Msg: msg})
}

func writeError(ctx *fasthttp.RequestCtx, httpStatus int, err error) {
	if httpStatus >= fasthttp.StatusInternalServerError {
		log.Error().Err(err).Str("url", ctx.URI().String()).Msg("request failed")
	}

	writeJSON(ctx, httpStatus, errorResponse{Code: fasthttp.StatusMessage(httpStatus), Message: err.Error()})
}

func badRequest(ctx *fasthttp.RequestCtx, code, msg string) {
	writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Code: code, Message: msg})
}

func notImplemented(ctx *fasthttp.RequestCtx, code, msg string) {
	writeJSON(ctx, fasthttp.StatusNotImplemented, errorResponse{Code: code, Message: msg})
}

func serverError(ctx *fasthttp.RequestCtx, err error) {
	writeError(ctx, fasthttp.StatusInternalServerError, err)
}
