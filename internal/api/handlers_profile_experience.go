package api

import (
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
	"github.com/KhmerCoders/khmercoders-web/internal/experience"
)

type profileExperienceResponse struct {
	Profile dto.UserProfile        `json:"profile"`
	Items   []dto.ExperienceRecord `json:"items"`
}

type profileGroupedResponse struct {
	Profile dto.UserProfile             `json:"profile"`
	Groups  []dto.ExperienceRecordGroup `json:"groups"`
}

// @Summary Work history of a profile, ongoing roles first then newest start year
// @Tags    Profile-Experience
// @Produce json
// @Param   username path string true "Username"
// @Success 200 {object} profileExperienceResponse
// @Failure 404 {object} errorResponse "profile not found"
// @Failure 500 {object} errorResponse
// @Router  /profiles/{username}/experiences [get]
func (s *Service) listProfileExperiences(ctx *fasthttp.RequestCtx) {
	profile, records, found := s.profileRecords(ctx)
	if !found {
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, profileExperienceResponse{
		Profile: *profile,
		Items:   experience.Sort(records),
	})
}

// @Summary Work history of a profile merged into continuous spans per company
// @Tags    Profile-Experience
// @Produce json
// @Param   username path string true "Username"
// @Success 200 {object} profileGroupedResponse
// @Failure 404 {object} errorResponse "profile not found"
// @Failure 500 {object} errorResponse
// @Router  /profiles/{username}/experiences/grouped [get]
func (s *Service) groupProfileExperiences(ctx *fasthttp.RequestCtx) {
	profile, records, found := s.profileRecords(ctx)
	if !found {
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, profileGroupedResponse{
		Profile: *profile,
		Groups:  experience.Group(records),
	})
}

func (s *Service) profileRecords(ctx *fasthttp.RequestCtx) (*dto.UserProfile, []dto.ExperienceRecord, bool) {
	profile, found := s.profileByUsername(ctx)
	if !found {
		return nil, nil, false
	}

	records, err := s.experiences.ListByUser(ctx, profile.UserID)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("experienceRepository.ListByUser: %w", err))
		return nil, nil, false
	}

	return profile, records, true
}
