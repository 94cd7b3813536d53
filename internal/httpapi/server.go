package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/service"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

// maxImageBody caps face image uploads.
const maxImageBody = 8 << 20 // 8 MiB

type Dependencies struct {
	Logger        *log.Logger
	Addr          string
	Dashboard     *service.DashboardService
	Events        *service.EventService
	Alerts        *service.AlertService
	AccessControl *service.AccessControlService
	Faces         *service.FaceService
	Dispatcher    *notify.Dispatcher

	// ImageDir, when set, is served read-only under /images/ so the
	// URLs handed out by the image store resolve.
	ImageDir string
}

type Server struct {
	httpServer    *http.Server
	logger        *log.Logger
	mux           *http.ServeMux
	dashboard     *service.DashboardService
	events        *service.EventService
	alerts        *service.AlertService
	accessControl *service.AccessControlService
	faces         *service.FaceService
	dispatcher    *notify.Dispatcher
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:        d.Logger,
		mux:           mux,
		dashboard:     d.Dashboard,
		events:        d.Events,
		alerts:        d.Alerts,
		accessControl: d.AccessControl,
		faces:         d.Faces,
		dispatcher:    d.Dispatcher,
	}

	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /v1/events", s.handleListEvents)
	mux.HandleFunc("POST /v1/events", s.handleRecordEvent)
	mux.HandleFunc("GET /v1/alerts", s.handleListAlerts)
	mux.HandleFunc("POST /v1/alerts", s.handleReportAlert)
	mux.HandleFunc("GET /v1/access-control", s.handleGetAccessControl)
	mux.HandleFunc("PUT /v1/access-control/{feature}", s.handleUpdateToggle)
	mux.HandleFunc("GET /v1/faces", s.handleListFaces)
	mux.HandleFunc("GET /v1/faces/{id}", s.handleGetFace)
	mux.HandleFunc("POST /v1/faces/compare", s.handleCompareFace)
	mux.HandleFunc("PUT /v1/faces/reference", s.handleUpdateReference)
	mux.HandleFunc("GET /v1/subscribe", s.handleSubscribe)

	if d.ImageDir != "" {
		mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(d.ImageDir))))
	}

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// ── Events ───────────────────────────────────────────────────────────────────

type recordEventRequest struct {
	Method     string     `json:"method"`
	Status     string     `json:"status"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context(), queryLimit(r))
	if err != nil {
		s.internalError(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	var req recordEventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	ev, err := s.events.Record(r.Context(), req.Method, req.Status, occurredAt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMethod):
			writeError(w, http.StatusBadRequest, "invalid_method", err.Error())
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
		default:
			s.internalError(w, "record event", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// ── Alerts ───────────────────────────────────────────────────────────────────

type reportAlertRequest struct {
	Category types.AlertCategory `json:"category"`
	Message  string              `json:"message"`
	Severity types.Severity      `json:"severity,omitempty"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.alerts.List(r.Context(), queryLimit(r))
	if err != nil {
		s.internalError(w, "list alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleReportAlert(w http.ResponseWriter, r *http.Request) {
	var req reportAlertRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	alert, err := s.alerts.Report(r.Context(), req.Category, req.Message, req.Severity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAlertCategory),
			errors.Is(err, service.ErrInvalidAlertMessage),
			errors.Is(err, service.ErrInvalidSeverity):
			writeError(w, http.StatusBadRequest, "invalid_alert", err.Error())
		default:
			s.internalError(w, "report alert", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

// ── Access control ───────────────────────────────────────────────────────────

type toggleRequest struct {
	Enabled       bool `json:"enabled"`
	ExpectedOther bool `json:"expected_other"`
}

func (s *Server) handleGetAccessControl(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.accessControl.Get(r.Context())
	if err != nil {
		s.internalError(w, "get access control", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateToggle(w http.ResponseWriter, r *http.Request) {
	feature := types.Feature(r.PathValue("feature"))

	var req toggleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	cfg, err := s.accessControl.UpdateToggle(r.Context(), feature, req.Enabled, req.ExpectedOther)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFeature):
			writeError(w, http.StatusBadRequest, "invalid_feature", err.Error())
		case errors.Is(err, store.ErrConflict):
			// Expected contention: the caller re-reads and retries.
			writeError(w, http.StatusConflict, "conflict", "configuration changed since last read")
		default:
			s.internalError(w, "update toggle", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ── Faces ────────────────────────────────────────────────────────────────────

func (s *Server) handleListFaces(w http.ResponseWriter, r *http.Request) {
	faces, err := s.faces.Faces(r.Context())
	if err != nil {
		s.internalError(w, "list faces", err)
		return
	}
	writeJSON(w, http.StatusOK, faces)
}

func (s *Server) handleGetFace(w http.ResponseWriter, r *http.Request) {
	face, err := s.faces.Face(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no such face record")
			return
		}
		s.internalError(w, "get face", err)
		return
	}
	writeJSON(w, http.StatusOK, face)
}

func (s *Server) handleCompareFace(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		writeError(w, http.StatusBadRequest, "empty_image", "image payload is required")
		return
	}

	rec, err := s.faces.SubmitComparison(r.Context(), http.MaxBytesReader(w, r.Body, maxImageBody))
	if err != nil {
		if errors.Is(err, service.ErrInvalidImage) {
			writeError(w, http.StatusBadRequest, "empty_image", err.Error())
			return
		}
		s.internalError(w, "compare face", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateReference(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		writeError(w, http.StatusBadRequest, "empty_image", "image payload is required")
		return
	}

	url, err := s.faces.UpdateReference(r.Context(), http.MaxBytesReader(w, r.Body, maxImageBody))
	if err != nil {
		if errors.Is(err, service.ErrInvalidImage) {
			writeError(w, http.StatusBadRequest, "empty_image", err.Error())
			return
		}
		s.internalError(w, "update reference", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reference_image_url": url})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("%s error: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}

// queryLimit parses ?limit=; absent or malformed means no limit.
func queryLimit(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
