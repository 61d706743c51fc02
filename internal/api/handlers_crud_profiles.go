package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
	"github.com/KhmerCoders/khmercoders-web/internal/validator"
)

// @Summary List profiles
// @Tags    CRUD-Profiles
// @Produce json
// @Success 200 {array} dto.UserProfile
// @Failure 500 {object} errorResponse
// @Router  /profiles [get]
func (s *Service) listProfiles(ctx *fasthttp.RequestCtx) {
	rows, err := s.profiles.ListProfiles(ctx)

	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("profileRepository.ListProfiles: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, rows)
}

// @Summary Get a profile by username
// @Tags CRUD-Profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.UserProfile
// @Failure 404 {object} errorResponse "profile not found"
// @Failure 500 {object} errorResponse
// @Router /profiles/{username} [get]
func (s *Service) getProfile(ctx *fasthttp.RequestCtx) {
	row, found := s.profileByUsername(ctx)
	if !found {
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, row)
}

// profileByUsername resolves the {username} path parameter and writes the
// error response itself when the profile cannot be loaded.
func (s *Service) profileByUsername(ctx *fasthttp.RequestCtx) (*dto.UserProfile, bool) {
	username, _ := ctx.UserValue("username").(string)

	row, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrProfileNotFound)
			return nil, false
		}

		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("profileRepository.GetByUsername: %w", err))
		return nil, false
	}

	return row, true
}

// @Summary Create a profile
// @Tags    CRUD-Profiles
// @Accept  json
// @Produce json
// @Param   request body dto.UserProfile true "Profile"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse "VALIDATION ERROR"
// @description 400 variants:
// @description - required: user_id, username
// @description - invalid value: username (3-32 chars of a-z, A-Z, 0-9, '_' or '-')
// @description - required (when present): display_name
// @Failure 409 {object} errorResponse "profile already exists"
// @Failure 500 {object} errorResponse
// @Router  /profiles [post]
func (s *Service) createProfile(ctx *fasthttp.RequestCtx) {
	var req dto.UserProfile

	err := json.Unmarshal(ctx.PostBody(), &req)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("json.Unmarshal: %w", err))
		return
	}

	if msg := validator.Profile(req); msg != "" {
		writeError(ctx, fasthttp.StatusBadRequest, errors.New(msg))
		return
	}

	if err := s.profiles.Create(ctx, req); err != nil {
		if errors.Is(err, dto.ErrAlreadyExists) {
			writeError(ctx, fasthttp.StatusConflict, ErrProfileAlreadyExists)
			return
		}

		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("profileRepository.Create: %w", err))
		return
	}

	ok(ctx, "Profile created")
}

// @Summary Delete a profile together with its work history
// @Tags    CRUD-Profiles
// @Param   user_id path string true "User id"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse "required field 'user_id'"
// @Failure 404 {object} errorResponse "profile not found"
// @Failure 500 {object} errorResponse
// @Router  /profiles/{user_id} [delete]
func (s *Service) deleteProfile(ctx *fasthttp.RequestCtx) {
	userID, _ := ctx.UserValue("user_id").(string)

	if strings.TrimSpace(userID) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, ErrUserIDRequired)
		return
	}

	// experiences first: a failure must leave the profile in place
	if err := s.experiences.DeleteByUser(ctx, userID); err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("experienceRepository.DeleteByUser: %w", err))
		return
	}

	if err := s.profiles.Delete(ctx, userID); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrProfileNotFound)

			return
		}

		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("profileRepository.Delete: %w", err))
		return
	}

	ok(ctx, "Profile deleted")
}
