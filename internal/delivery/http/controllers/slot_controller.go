package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"meetingscheduler/internal/delivery/http/helpers"
	"meetingscheduler/internal/delivery/http/middleware"
	"meetingscheduler/internal/domain"
)

// DefaultSlotListWindow is the range listed when GET /speakers/{speakerID}/slots omits "to".
const DefaultSlotListWindow = 7 * 24 * time.Hour

// GenerateSlotsRequest is the request body for POST /speakers/{speakerID}/slots/generate.
type GenerateSlotsRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

func (s GenerateSlotsRequest) Validate() []string {
	return helpers.ValidateStruct(s)
}

// BlockSlotRequest is the request body for POST /speakers/{speakerID}/slots/block.
type BlockSlotRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
}

func (s BlockSlotRequest) Validate() []string {
	return helpers.ValidateStruct(s)
}

// GenerateSlotsResponse reports how many new slots were stored.
type GenerateSlotsResponse struct {
	Created int `json:"created"`
}

// GenerateSlotsSuccessResponse is the success response envelope for slot generation (201).
type GenerateSlotsSuccessResponse struct {
	Data  GenerateSlotsResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// SlotListSuccessResponse is the success response envelope for GET /speakers/{speakerID}/slots (200).
type SlotListSuccessResponse struct {
	Data  []*domain.Slot    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SlotSuccessResponse is the success response envelope for POST /speakers/{speakerID}/slots/block (200).
type SlotSuccessResponse struct {
	Data  *domain.Slot      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type SlotController struct {
	Logger  *slog.Logger
	Service domain.SlotService
	now     func() time.Time
}

func NewSlotController(logger *slog.Logger, svc domain.SlotService) *SlotController {
	return &SlotController{Logger: logger, Service: svc, now: time.Now}
}

// GenerateWeeklySlots godoc
// @Summary Generate a week of slots from the speaker's availability
// @Description Expands the weekly pattern over the 7 days starting at start_date. Existing slots are left untouched.
// @Tags slots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker user ID"
// @Param body body GenerateSlotsRequest true "First day of the week (YYYY-MM-DD)"
// @Success 201 {object} controllers.GenerateSlotsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/slots/generate [post]
func (c *SlotController) GenerateWeeklySlots(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req GenerateSlotsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	created, err := c.Service.GenerateWeeklySlots(r.Context(), actor, r.PathValue("speakerID"), startDate)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, GenerateSlotsResponse{Created: created})
}

// ListAvailableSlots godoc
// @Summary List a speaker's available slots
// @Description Returns available slots fully inside [from, to]. Defaults to the next 7 days.
// @Tags slots
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker user ID"
// @Param from query string false "Range start (RFC3339)"
// @Param to query string false "Range end (RFC3339)"
// @Success 200 {object} controllers.SlotListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/slots [get]
func (c *SlotController) ListAvailableSlots(w http.ResponseWriter, r *http.Request) {
	from := c.now()
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "from must be RFC3339")
			return
		}
		from = t
	}
	to := from.Add(DefaultSlotListWindow)
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "to must be RFC3339")
			return
		}
		to = t
	}
	slots, err := c.Service.ListAvailableSlots(r.Context(), r.PathValue("speakerID"), from, to)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// BlockSlot godoc
// @Summary Mark an available slot unavailable
// @Tags slots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker user ID"
// @Param body body BlockSlotRequest true "Slot start"
// @Success 200 {object} controllers.SlotSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/slots/block [post]
func (c *SlotController) BlockSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req BlockSlotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot, err := c.Service.BlockSlot(r.Context(), actor, r.PathValue("speakerID"), req.StartAt)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slot)
}
