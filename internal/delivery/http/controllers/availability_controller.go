package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"meetingscheduler/internal/delivery/http/helpers"
	"meetingscheduler/internal/delivery/http/middleware"
	"meetingscheduler/internal/domain"
	"meetingscheduler/internal/scheduling"
)

// DayWindowRequest is one day of a SetAvailabilityRequest.
type DayWindowRequest struct {
	Start string `json:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" validate:"required,datetime=15:04"`
}

// SetAvailabilityRequest is the request body for PUT /speakers/{speakerID}/availability.
// Days is keyed by weekday name ("Monday"); omitted days are unavailable.
type SetAvailabilityRequest struct {
	Timezone    string                       `json:"timezone" validate:"omitempty,timezone"`
	SlotMinutes int                          `json:"slot_minutes" validate:"omitempty,min=5,max=30"`
	Days        map[string]*DayWindowRequest `json:"days" validate:"dive,required"`
}

// Validate implements Validator.
func (s SetAvailabilityRequest) Validate() []string {
	errs := helpers.ValidateStruct(s)
	for day := range s.Days {
		if _, err := scheduling.ParseWeekday(day); err != nil {
			errs = append(errs, "days: unknown weekday "+day)
		}
	}
	return errs
}

func (s SetAvailabilityRequest) toPattern(speakerID string) *domain.AvailabilityPattern {
	p := domain.NewAvailabilityPattern(speakerID, s.Timezone, s.SlotMinutes, time.Time{}, time.Time{})
	for day, w := range s.Days {
		weekday, err := scheduling.ParseWeekday(day)
		if err != nil || w == nil {
			continue
		}
		p.Days[weekday] = &domain.DayWindow{Start: w.Start, End: w.End}
	}
	return p
}

// AvailabilityResponse is a weekly availability pattern with days keyed by weekday name.
type AvailabilityResponse struct {
	SpeakerID   string                       `json:"speaker_id"`
	Timezone    string                       `json:"timezone"`
	SlotMinutes int                          `json:"slot_minutes"`
	Days        map[string]*domain.DayWindow `json:"days"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

func newAvailabilityResponse(p *domain.AvailabilityPattern) AvailabilityResponse {
	days := make(map[string]*domain.DayWindow, len(p.Days))
	for d, w := range p.Days {
		if w != nil {
			days[d.String()] = w
		}
	}
	return AvailabilityResponse{
		SpeakerID:   p.SpeakerID,
		Timezone:    p.Timezone,
		SlotMinutes: p.SlotMinutes,
		Days:        days,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// AvailabilitySuccessResponse is the success response envelope for availability endpoints (200).
type AvailabilitySuccessResponse struct {
	Data  AvailabilityResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// DayBookableTimesSuccessResponse is the success response envelope for GET /speakers/{speakerID}/availability/{day} (200).
type DayBookableTimesSuccessResponse struct {
	Data  *domain.DayBookableTimes `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

type AvailabilityController struct {
	Logger  *slog.Logger
	Service domain.AvailabilityService
}

func NewAvailabilityController(logger *slog.Logger, svc domain.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Logger: logger, Service: svc}
}

// GetAvailability godoc
// @Summary Get a speaker's weekly availability
// @Description A speaker who never declared availability gets an empty pattern with defaults.
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker user ID"
// @Success 200 {object} controllers.AvailabilitySuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/availability [get]
func (c *AvailabilityController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	p, err := c.Service.GetAvailability(r.Context(), r.PathValue("speakerID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newAvailabilityResponse(p))
}

// SetAvailability godoc
// @Summary Replace a speaker's weekly availability
// @Description Only the speaker or an admin may change it. Windows are HH:MM in the pattern's timezone.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker user ID"
// @Param body body SetAvailabilityRequest true "Weekly pattern"
// @Success 200 {object} controllers.AvailabilitySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/availability [put]
func (c *AvailabilityController) SetAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req SetAvailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.SetAvailability(r.Context(), actor, req.toPattern(r.PathValue("speakerID")))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newAvailabilityResponse(p))
}

// ListBookableTimes godoc
// @Summary List bookable start times for one weekday
// @Description Day is a weekday name or a YYYY-MM-DD date. Times are HH:MM in the speaker's timezone.
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker user ID"
// @Param day path string true "Weekday name or date"
// @Success 200 {object} controllers.DayBookableTimesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/availability/{day} [get]
func (c *AvailabilityController) ListBookableTimes(w http.ResponseWriter, r *http.Request) {
	times, err := c.Service.ListBookableTimes(r.Context(), r.PathValue("speakerID"), r.PathValue("day"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, times)
}
