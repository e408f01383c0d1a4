package rest

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/ports"
	"github.com/ewilliams-labs/groovi/internal/core/services"
)

// Deps are the services the UI surface drives.
type Deps struct {
	Session      *services.Session
	Orchestrator *services.Orchestrator
	Capture      *services.CaptureController
	Intake       *services.Intake
	Device       *services.DeviceAdapter
	Views        ports.ViewSubscriber
	Logger       *zap.Logger
}

// Handler manages the HTTP interface for the local UI.
type Handler struct {
	session      *services.Session
	orchestrator *services.Orchestrator
	capture      *services.CaptureController
	intake       *services.Intake
	device       *services.DeviceAdapter
	views        ports.ViewSubscriber
	log          *zap.Logger
	router       *mux.Router

	// submit admits one recommendation or upload at a time.
	submit sync.Mutex
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		session:      deps.Session,
		orchestrator: deps.Orchestrator,
		capture:      deps.Capture,
		intake:       deps.Intake,
		device:       deps.Device,
		views:        deps.Views,
		log:          log,
		router:       mux.NewRouter(),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	h.router.HandleFunc("/state", h.GetState).Methods(http.MethodGet)
	h.router.HandleFunc("/input", h.SetInput).Methods(http.MethodPut)
	h.router.HandleFunc("/recommend", h.Recommend).Methods(http.MethodPost)
	h.router.HandleFunc("/recording/start", h.StartRecording).Methods(http.MethodPost)
	h.router.HandleFunc("/recording/stop", h.StopRecording).Methods(http.MethodPost)
	h.router.HandleFunc("/audio", h.UploadAudio).Methods(http.MethodPost)
	h.router.HandleFunc("/play", h.Play).Methods(http.MethodPost)
	h.router.HandleFunc("/events", h.Events).Methods(http.MethodGet)

	h.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	h.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Groovi is live"})
}

// GetState handles GET /state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.View())
}

// admit reserves the submission slot. Callers must invoke release when ok.
func (h *Handler) admit() (release func(), ok bool) {
	if !h.submit.TryLock() {
		return nil, false
	}
	if h.session.View().Busy() {
		h.submit.Unlock()
		return nil, false
	}
	return h.submit.Unlock, true
}
