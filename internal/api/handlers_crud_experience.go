package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
	"github.com/KhmerCoders/khmercoders-web/internal/validator"
)

type experienceCreateReq struct {
	ID          string      `json:"id,omitempty"` // generated when empty
	UserID      string      `json:"user_id" example:"u-1024"`
	CompanyID   *string     `json:"company_id,omitempty"`
	CompanyName string      `json:"company_name" example:"ABA Bank"`
	CompanyLogo string      `json:"company_logo"`
	Role        string      `json:"role" example:"Backend Engineer"`
	Description string      `json:"description"`
	StartYear   int         `json:"start_year" example:"2021"`
	EndYear     dto.EndYear `json:"end_year" swaggertype:"integer" example:"2023"` // null or absent: present
}

// experienceUpdateReq carries only the fields to change. end_year is kept raw
// so that an explicit null (present) can be told apart from an absent field.
type experienceUpdateReq struct {
	CompanyID   *string         `json:"company_id"`
	CompanyName *string         `json:"company_name"`
	CompanyLogo *string         `json:"company_logo"`
	Role        *string         `json:"role"`
	Description *string         `json:"description"`
	StartYear   *int            `json:"start_year"`
	EndYear     json.RawMessage `json:"end_year" swaggertype:"integer"`
}

func (r experienceUpdateReq) apply(rec *dto.ExperienceRecord) error {
	if r.CompanyID != nil {
		rec.CompanyID = r.CompanyID
	}
	if r.CompanyName != nil {
		rec.CompanyName = *r.CompanyName
	}
	if r.CompanyLogo != nil {
		rec.CompanyLogo = *r.CompanyLogo
	}
	if r.Role != nil {
		rec.Role = *r.Role
	}
	if r.Description != nil {
		rec.Description = *r.Description
	}
	if r.StartYear != nil {
		rec.StartYear = *r.StartYear
	}
	if len(r.EndYear) > 0 {
		var end dto.EndYear
		if err := json.Unmarshal(r.EndYear, &end); err != nil {
			return err
		}
		rec.EndYear = end
	}

	return nil
}

// @Summary Create a work experience record
// @Tags    CRUD-Experiences
// @Accept  json
// @Produce json
// @Param   request body experienceCreateReq true "Experience"
// @Success 201 {object} dto.ExperienceRecord
// @Failure 400 {object} errorResponse "VALIDATION ERROR"
// @description 400 variants:
// @description - required: user_id, company_name
// @description - invalid value: id (not a uuid), start_year, end_year (1900..2100), period (end before start)
// @description - role longer than 200 characters
// @Failure 409 {object} errorResponse "experience already exists"
// @Failure 500 {object} errorResponse
// @Router  /experiences [post]
func (s *Service) createExperience(ctx *fasthttp.RequestCtx) {
	var req experienceCreateReq

	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("json.Unmarshal: %w", err))
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	} else if _, err := uuid.Parse(req.ID); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, ErrExperienceIDInvalid)
		return
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

	if msg := validator.Experience(rec); msg != "" {
		writeError(ctx, fasthttp.StatusBadRequest, errors.New(msg))
		return
	}

	if err := s.experiences.Insert(ctx, rec); err != nil {
		if errors.Is(err, dto.ErrAlreadyExists) {
			writeError(ctx, fasthttp.StatusConflict, ErrExperienceAlreadyExists)
			return
		}

		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("experienceRepository.Insert: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusCreated, rec)
}

// @Summary Get a work experience record
// @Tags    CRUD-Experiences
// @Produce json
// @Param   id path string true "Record id (uuid)"
// @Success 200 {object} dto.ExperienceRecord
// @Failure 400 {object} errorResponse "field 'id' is not a uuid"
// @Failure 404 {object} errorResponse "experience not found"
// @Failure 500 {object} errorResponse
// @Router  /experiences/{id} [get]
func (s *Service) getExperience(ctx *fasthttp.RequestCtx) {
	rec, found := s.experienceByID(ctx)
	if !found {
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, rec)
}

func (s *Service) experienceByID(ctx *fasthttp.RequestCtx) (*dto.ExperienceRecord, bool) {
	id, _ := ctx.UserValue("id").(string)
	if _, err := uuid.Parse(id); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, ErrExperienceIDInvalid)
		return nil, false
	}

	rec, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrExperienceNotFound)
			return nil, false
		}

		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("experienceRepository.GetByID: %w", err))
		return nil, false
	}

	return rec, true
}

// @Summary Update a work experience record
// @Tags    CRUD-Experiences
// @Accept  json
// @Produce json
// @Param   id path string true "Record id (uuid)"
// @Param   request body experienceUpdateReq true "Fields to change; end_year null means present"
// @Success 200 {object} dto.ExperienceRecord
// @Failure 400 {object} errorResponse "VALIDATION ERROR"
// @Failure 404 {object} errorResponse "experience not found"
// @Failure 500 {object} errorResponse
// @Router  /experiences/{id} [put]
func (s *Service) updateExperience(ctx *fasthttp.RequestCtx) {
	var req experienceUpdateReq
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("json.Unmarshal: %w", err))
		return
	}

	rec, found := s.experienceByID(ctx)
	if !found {
		return
	}

	if err := req.apply(rec); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("end_year: %w", err))
		return
	}

	if msg := validator.Experience(*rec); msg != "" {
		writeError(ctx, fasthttp.StatusBadRequest, errors.New(msg))
		return
	}

	if err := s.experiences.Update(ctx, *rec); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrExperienceNotFound)
			return
		}

		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("experienceRepository.Update: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, rec)
}

// @Summary Delete a work experience record
// @Tags    CRUD-Experiences
// @Param   id path string true "Record id (uuid)"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse "field 'id' is not a uuid"
// @Failure 404 {object} errorResponse "experience not found"
// @Failure 500 {object} errorResponse
// @Router  /experiences/{id} [delete]
func (s *Service) deleteExperience(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if _, err := uuid.Parse(id); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, ErrExperienceIDInvalid)
		return
	}

	if err := s.experiences.Delete(ctx, id); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, ErrExperienceNotFound)
			return
		}

		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("experienceRepository.Delete: %w", err))
		return
	}

	ok(ctx, "Experience deleted")
}
