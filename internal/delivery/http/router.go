package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"meetingscheduler/internal/delivery/http/controllers"
	"meetingscheduler/internal/delivery/http/middleware"
	"meetingscheduler/internal/domain"
)

// RouterDeps holds everything NewRouter wires into the mux. Limiter may be nil, which
// disables rate limiting of meeting request creation.
type RouterDeps struct {
	Logger       *slog.Logger
	Verifier     domain.TokenVerifier
	Limiter      domain.RateLimiter
	CORSOrigins  []string
	Health       *controllers.HealthController
	Availability *controllers.AvailabilityController
	Slots        *controllers.SlotController
	Meetings     *controllers.MeetingController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)
	createMeeting := auth(d.Meetings.CreateMeetingRequest)
	if d.Limiter != nil {
		createMeeting = auth(middleware.RateLimit(d.Limiter, d.Logger)(d.Meetings.CreateMeetingRequest))
	}

	// Public
	mux.HandleFunc("GET /healthz", d.Health.Health)

	// Availability
	mux.HandleFunc("GET /speakers/{speakerID}/availability", auth(d.Availability.GetAvailability))
	mux.HandleFunc("PUT /speakers/{speakerID}/availability", auth(d.Availability.SetAvailability))
	mux.HandleFunc("GET /speakers/{speakerID}/availability/{day}", auth(d.Availability.ListBookableTimes))

	// Slots
	mux.HandleFunc("POST /speakers/{speakerID}/slots/generate", auth(d.Slots.GenerateWeeklySlots))
	mux.HandleFunc("GET /speakers/{speakerID}/slots", auth(d.Slots.ListAvailableSlots))
	mux.HandleFunc("POST /speakers/{speakerID}/slots/block", auth(d.Slots.BlockSlot))

	// Meetings
	mux.HandleFunc("POST /meetings/check", auth(d.Meetings.CheckMeetingRequest))
	mux.HandleFunc("POST /meetings", createMeeting)
	mux.HandleFunc("GET /meetings/{meetingID}", auth(d.Meetings.GetMeetingRequest))
	mux.HandleFunc("PATCH /meetings/{meetingID}/status", auth(d.Meetings.TransitionMeetingRequest))
	mux.HandleFunc("GET /me/meetings", auth(d.Meetings.ListMyMeetingRequests))
	mux.HandleFunc("GET /me/quota", auth(d.Meetings.GetMyQuota))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with CORS and request logging.
func NewHandler(d RouterDeps) http.Handler {
	return middleware.LoggingMiddleware(d.Logger, middleware.CORS(d.CORSOrigins, NewRouter(d)))
}
