package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/nutriguard/internal/application/analysis"
	apphistory "github.com/bryanwahyu/nutriguard/internal/application/history"
	appocr "github.com/bryanwahyu/nutriguard/internal/application/ocr"
	appprofiles "github.com/bryanwahyu/nutriguard/internal/application/profiles"
	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
	"github.com/bryanwahyu/nutriguard/internal/domain/ocr"
	"github.com/bryanwahyu/nutriguard/internal/domain/profiles"
	"github.com/bryanwahyu/nutriguard/internal/middleware"
)

const maxJSONBody = 1 << 20

// Deps is everything the HTTP layer needs. Checkers feed /health and /health/ready.
type Deps struct {
	Analysis *appanalysis.Service
	History  *apphistory.Service
	OCR      *appocr.Service
	Profiles *appprofiles.Service

	Checkers       map[string]middleware.HealthChecker
	Limiter        *middleware.RateLimiter
	CORSOrigins    []string
	MaxUploadBytes int64
	Log            *zap.Logger
	Now            func() time.Time
}

type Router struct {
	analysis  *appanalysis.Service
	history   *apphistory.Service
	ocr       *appocr.Service
	profiles  *appprofiles.Service
	maxUpload int64
	log       *zap.Logger
	now       func() time.Time
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 5 << 20
	}
	if d.Limiter == nil {
		d.Limiter = middleware.NewRateLimiter(0, 0)
	}
	if len(d.CORSOrigins) == 0 {
		d.CORSOrigins = []string{"*"}
	}

	r := &Router{
		analysis:  d.Analysis,
		history:   d.History,
		ocr:       d.OCR,
		profiles:  d.Profiles,
		maxUpload: d.MaxUploadBytes,
		log:       d.Log,
		now:       d.Now,
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID, chimw.RealIP, middleware.Logging(d.Log), middleware.Metrics, chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{headerSource, headerFallbackReason, "Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(d.Checkers))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler(d.Checkers))
	mux.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	mux.Route("/api", func(rt chi.Router) {
		rt.With(d.Limiter.Handler).Post("/ocr", r.wrap(r.handleOCR))
		rt.With(d.Limiter.Handler).Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/report", r.wrap(r.handleReport))

		rt.Post("/history/save", r.wrap(r.handleSaveHistory))
		rt.Get("/history/{childId}", r.wrap(r.handleListHistory))

		rt.Route("/users/{userId}", func(u chi.Router) {
			u.Get("/profile", r.wrap(r.handleGetProfile))
			u.Put("/profile", r.wrap(r.handleSaveProfile))
			u.Post("/profile/children", r.wrap(r.handleAddChild))
			u.Put("/profile/children/{childId}", r.wrap(r.handleUpdateChild))
			u.Delete("/profile/children/{childId}", r.wrap(r.handleRemoveChild))

			u.Get("/meal-plans", r.wrap(r.handleListMealPlans))
			u.Post("/meal-plans", r.wrap(r.handleCreateMealPlan))
			u.Get("/meal-plans/{planId}", r.wrap(r.handleGetMealPlan))
			u.Delete("/meal-plans/{planId}", r.wrap(r.handleDeleteMealPlan))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps handler errors to status codes in one place
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var (
			herr *httpError
			verr *analysis.ValidationError
			mbe  *http.MaxBytesError
		)
		switch {
		case errors.As(err, &herr):
			writeError(w, herr.status, herr.msg)
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "Invalid analysis request",
				"fields": verr.Fields,
			})
		case errors.Is(err, ErrImageTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
		case errors.As(err, &mbe):
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
		case errors.Is(err, appocr.ErrNoImages):
			writeError(w, http.StatusBadRequest, "No image file provided")
		case errors.Is(err, ocr.ErrExtractionFailed):
			r.log.Error("ocr failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to process image")
		case errors.Is(err, profiles.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, profiles.ErrInvalid):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			r.log.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}
