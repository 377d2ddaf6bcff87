package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rld/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool
	Describe(id string) (types.SpaceResponse, error)
	Pack(id string, req types.PackRequest) (types.PackResponse, error)
	Unpack(id string, req types.UnpackRequest) (types.UnpackResponse, error)
	Forward(ctx context.Context, id string, req types.ForwardRequest) (types.ForwardResponse, error)
	Baseline(id, kind string) (types.BaselineResponse, error)
}

// NewMux builds the HTTP router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "X-Log-Level"}),
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}

	// ListModels godoc
	// @Summary      List models
	// @Tags         models
	// @Produce      json
	// @Success      200  {object}  types.ModelsResponse
	// @Router       /models [get]
	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
	})

	// Status godoc
	// @Summary      Service status
	// @Tags         status
	// @Produce      json
	// @Success      200  {object}  types.StatusResponse
	// @Router       /status [get]
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Route("/models/{id}", func(r chi.Router) {
		r.Get("/space", h.space)
		r.Get("/baseline", h.baseline)
		r.Post("/pack", h.pack)
		r.Post("/unpack", h.unpack)
		r.Post("/forward", h.forward)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no models"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

type handlers struct{ svc Service }

// space godoc
// @Summary      Describe a model's spaces
// @Tags         models
// @Produce      json
// @Param        id   path      string  true  "Model id"
// @Success      200  {object}  types.SpaceResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /models/{id}/space [get]
func (h *handlers) space(w http.ResponseWriter, r *http.Request) {
	id, start := chi.URLParam(r, "id"), time.Now()
	resp, err := h.svc.Describe(id)
	if err != nil {
		h.fail(w, r, "space", id, start, err)
		return
	}
	writeJSON(w, resp)
}

// baseline godoc
// @Summary      Attribution baseline
// @Description  Baseline observation in flat and structured form. kind is zeros (default) or midpoint.
// @Tags         engine
// @Produce      json
// @Param        id    path      string  true   "Model id"
// @Param        kind  query     string  false  "zeros or midpoint"
// @Success      200   {object}  types.BaselineResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Router       /models/{id}/baseline [get]
func (h *handlers) baseline(w http.ResponseWriter, r *http.Request) {
	id, start := chi.URLParam(r, "id"), time.Now()
	resp, err := h.svc.Baseline(id, r.URL.Query().Get("kind"))
	if err != nil {
		h.fail(w, r, "baseline", id, start, err)
		return
	}
	writeJSON(w, resp)
}

// pack godoc
// @Summary      Pack a structured observation
// @Tags         engine
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Model id"
// @Param        body  body      types.PackRequest  true  "Observation"
// @Success      200   {object}  types.PackResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Failure      422   {object}  types.ErrorResponse
// @Router       /models/{id}/pack [post]
func (h *handlers) pack(w http.ResponseWriter, r *http.Request) {
	id, start := chi.URLParam(r, "id"), time.Now()
	var req types.PackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Pack(id, req)
	if err != nil {
		h.fail(w, r, "pack", id, start, err)
		return
	}
	logEnd(r, "pack", id, http.StatusOK, start, nil)
	writeJSON(w, resp)
}

// unpack godoc
// @Summary      Unpack a flat observation
// @Tags         engine
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Model id"
// @Param        body  body      types.UnpackRequest  true  "Flat observation"
// @Success      200   {object}  types.UnpackResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Router       /models/{id}/unpack [post]
func (h *handlers) unpack(w http.ResponseWriter, r *http.Request) {
	id, start := chi.URLParam(r, "id"), time.Now()
	var req types.UnpackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Unpack(id, req)
	if err != nil {
		h.fail(w, r, "unpack", id, start, err)
		return
	}
	logEnd(r, "unpack", id, http.StatusOK, start, nil)
	writeJSON(w, resp)
}

// forward godoc
// @Summary      Run a model forward pass
// @Tags         engine
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Model id"
// @Param        body  body      types.ForwardRequest  true  "Observation (obs, batch or flat)"
// @Success      200   {object}  types.ForwardResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Failure      504   {object}  types.ErrorResponse
// @Router       /models/{id}/forward [post]
func (h *handlers) forward(w http.ResponseWriter, r *http.Request) {
	id, start := chi.URLParam(r, "id"), time.Now()
	var req types.ForwardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if forwardTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, forwardTimeout)
		defer tcancel()
	}
	resp, err := h.svc.Forward(ctx, id, req)
	if err != nil {
		// Client went away or the server is shutting down: nobody to answer.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		h.fail(w, r, "forward", id, start, err)
		return
	}
	if zlog != nil && requestLogLevel(r) >= LevelDebug {
		zlog.Debug().Str("model", id).Str("call_id", resp.CallID).Ints("shape", resp.Shape).Msg("forward output")
	}
	logEnd(r, "forward", id, http.StatusOK, start, nil)
	writeJSON(w, resp)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, op, id string, start time.Time, err error) {
	status := statusFor(err)
	logEnd(r, op, id, status, start, err)
	writeJSONError(w, status, err.Error())
}

// decodeJSON enforces the content type and body limit, then decodes into v.
// On failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		incRejected("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			incRejected("body_too_large")
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		incRejected("invalid_json")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
