package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetingscheduler/internal/delivery/http/helpers"
	"meetingscheduler/internal/delivery/http/middleware"
	"meetingscheduler/internal/domain"
)

// MeetingCandidateRequest is the request body for POST /meetings and POST /meetings/check.
// RequesterID defaults to the caller; only admins may book on behalf of someone else.
type MeetingCandidateRequest struct {
	SpeakerID   string    `json:"speaker_id" validate:"required"`
	RequesterID string    `json:"requester_id"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required"`
	MeetingType string    `json:"meeting_type" validate:"omitempty,oneof=in_person virtual"`
	BoostAmount int       `json:"boost_amount" validate:"min=0"`
	Message     string    `json:"message" validate:"max=1000"`
}

func (m MeetingCandidateRequest) Validate() []string {
	return helpers.ValidateStruct(m)
}

func (m MeetingCandidateRequest) toCandidate(actor domain.Actor) domain.MeetingCandidate {
	requesterID := m.RequesterID
	if requesterID == "" {
		requesterID = actor.UserID
	}
	return domain.MeetingCandidate{
		SpeakerID:   m.SpeakerID,
		RequesterID: requesterID,
		StartAt:     m.StartAt,
		EndAt:       m.EndAt,
		MeetingType: domain.MeetingType(m.MeetingType),
		BoostAmount: m.BoostAmount,
		Message:     m.Message,
	}
}

// TransitionMeetingRequest is the request body for PATCH /meetings/{meetingID}/status.
type TransitionMeetingRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected cancelled"`
}

func (t TransitionMeetingRequest) Validate() []string {
	return helpers.ValidateStruct(t)
}

// CheckMeetingResponse carries the conflict reason; "ok" means the request would pass the conflict check.
type CheckMeetingResponse struct {
	Reason domain.ConflictReason `json:"reason"`
}

// CheckMeetingSuccessResponse is the success response envelope for POST /meetings/check (200).
type CheckMeetingSuccessResponse struct {
	Data  CheckMeetingResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// MeetingSuccessResponse is the success response envelope for single meeting request endpoints.
type MeetingSuccessResponse struct {
	Data  *domain.MeetingRequest `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// MeetingListSuccessResponse is the success response envelope for GET /me/meetings (200).
type MeetingListSuccessResponse struct {
	Data  helpers.Page[*domain.MeetingRequest] `json:"data"`
	Error *helpers.APIError                    `json:"error"`
}

// QuotaSuccessResponse is the success response envelope for GET /me/quota (200).
type QuotaSuccessResponse struct {
	Data  *domain.QuotaState `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type MeetingController struct {
	Logger  *slog.Logger
	Service domain.MeetingService
}

func NewMeetingController(logger *slog.Logger, svc domain.MeetingService) *MeetingController {
	return &MeetingController{Logger: logger, Service: svc}
}

// meetingID reads and validates the {meetingID} path value. On failure it writes a 400.
func meetingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("meetingID")
	if _, err := uuid.Parse(id); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meeting id")
		return "", false
	}
	return id, true
}

// CheckMeetingRequest godoc
// @Summary Check a meeting request without creating it
// @Description Returns the first conflict reason, or "ok" when the request would pass the conflict check. Quota is not checked. Only admins may check on behalf of another requester.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MeetingCandidateRequest true "Candidate meeting"
// @Success 200 {object} controllers.CheckMeetingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_duration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/check [post]
func (c *MeetingController) CheckMeetingRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req MeetingCandidateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reason, err := c.Service.CheckMeetingRequest(r.Context(), actor, req.toCandidate(actor))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CheckMeetingResponse{Reason: reason})
}

// CreateMeetingRequest godoc
// @Summary Request a meeting with a speaker
// @Description Atomically checks conflicts and quota, then stores the request with status "requested".
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MeetingCandidateRequest true "Candidate meeting"
// @Success 201 {object} controllers.MeetingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_duration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden, ticket_not_verified or quota_exceeded"
// @Failure 409 {object} helpers.APIResponse "error.code: slot_already_booked or requester_conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings [post]
func (c *MeetingController) CreateMeetingRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req MeetingCandidateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	m, err := c.Service.CreateMeetingRequest(r.Context(), actor, req.toCandidate(actor))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, m)
}

// GetMeetingRequest godoc
// @Summary Get a meeting request
// @Description Visible to its speaker, its requester and admins.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting request ID (UUID)"
// @Success 200 {object} controllers.MeetingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID} [get]
func (c *MeetingController) GetMeetingRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	m, err := c.Service.GetMeetingRequest(r.Context(), actor, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, m)
}

// TransitionMeetingRequest godoc
// @Summary Accept, reject or cancel a meeting request
// @Description The speaker accepts or rejects; the requester or an admin cancels. Only requests in status "requested" can change.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting request ID (UUID)"
// @Param body body TransitionMeetingRequest true "Target status"
// @Success 200 {object} controllers.MeetingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID}/status [patch]
func (c *MeetingController) TransitionMeetingRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id, ok := meetingID(w, r)
	if !ok {
		return
	}
	var req TransitionMeetingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	m, err := c.Service.TransitionMeetingRequest(r.Context(), actor, id, domain.MeetingStatus(req.Status))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, m)
}

// ListMyMeetingRequests godoc
// @Summary List the caller's meeting requests
// @Description role=requester (default) lists requests the caller made; role=speaker lists requests addressed to the caller.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param role query string false "requester or speaker"
// @Param status query string false "Comma-separated statuses, e.g. requested,accepted"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.MeetingListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/meetings [get]
func (c *MeetingController) ListMyMeetingRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	var statuses []domain.MeetingStatus
	if s := q.Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				statuses = append(statuses, domain.MeetingStatus(part))
			}
		}
	}
	page := helpers.ParsePagination(r)
	items, total, err := c.Service.ListMyMeetingRequests(r.Context(), actor, domain.ParticipantRole(q.Get("role")), statuses, page)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Page[*domain.MeetingRequest]{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(page, total),
	})
}

// GetMyQuota godoc
// @Summary Get the caller's request and boost quota
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.QuotaSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/quota [get]
func (c *MeetingController) GetMyQuota(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	q, err := c.Service.ComputeQuota(r.Context(), actor.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, q)
}
