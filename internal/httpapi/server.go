// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tamzrod/actuator-supervisor/internal/logging"
	"github.com/tamzrod/actuator-supervisor/internal/serial"
	"github.com/tamzrod/actuator-supervisor/internal/status"
	"github.com/tamzrod/actuator-supervisor/internal/units"
)

// Link reports the serial session state.
type Link interface {
	IsOpen() bool
	Status() serial.Status
}

// Device is the read side of the controller plus the echo switch.
type Device interface {
	GetSpeed(ctx context.Context) (int, error)
	GetPosition(ctx context.Context) (int, error)
	GetVolts(ctx context.Context) (int, error)
	GetMotorAmps(ctx context.Context) (int, error)
	GetBatteryAmps(ctx context.Context) (int, error)
	GetDestinationReached(ctx context.Context) (int, error)
	SetEcho(ctx context.Context, enabled bool) error
}

// Engine is the motion surface. ApplyGuarded is the only way to run a transition.
type Engine interface {
	ApplyGuarded(ctx context.Context, name string) bool
	NudgeUp(ctx context.Context) bool
	NudgeDown(ctx context.Context) bool
	SafeTransitions(ctx context.Context) []string
	Names() []string
}

// Server wires the control endpoints to the core.
// Control actions always answer 200: callers poll status and position
// to learn what actually happened.
type Server struct {
	Link    Link
	Device  Device
	Engine  Engine
	Latch   *status.Latch
	Metrics http.Handler // optional /metrics handler
	Log     *slog.Logger
}

// NewHandler builds the router.
func NewHandler(s *Server) http.Handler {
	s.Log = logging.OrNop(s.Log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/roboteq", func(r chi.Router) {
		r.Get("/open", s.open)
		r.Get("/transition", s.transition)
		r.Get("/nudge/up", s.nudgeUp)
		r.Get("/nudge/down", s.nudgeDown)
		r.Get("/set/echo", s.setEcho)

		r.Get("/get/speed", s.reading("speed", s.Device.GetSpeed))
		r.Get("/get/position", s.position)
		r.Get("/get/volts", s.reading("volts", s.Device.GetVolts))
		r.Get("/get/motor/amps", s.reading("amps", s.Device.GetMotorAmps))
		r.Get("/get/battery/amps", s.reading("amps", s.Device.GetBatteryAmps))
		r.Get("/get/destinationReached", s.reading("destinationReached", s.Device.GetDestinationReached))
	})

	r.Get("/transitions/safe", s.safeTransitions)
	r.Get("/transitions/all", s.allTransitions)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) {
	snap := status.Snapshot{
		Active: s.Latch.Active(),
		Link:   s.Link.Status().String(),
		Open:   s.Link.IsOpen(),
	}
	s.writeJSON(w, map[string]any{
		"status": status.Describe(snap),
		"open":   snap.Open,
	})
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	s.Log.Info("transition requested", "transition", name)

	s.Engine.ApplyGuarded(r.Context(), name)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) nudgeUp(w http.ResponseWriter, r *http.Request) {
	s.Log.Info("nudge requested", "direction", "up")
	s.Engine.NudgeUp(r.Context())
	w.WriteHeader(http.StatusOK)
}

func (s *Server) nudgeDown(w http.ResponseWriter, r *http.Request) {
	s.Log.Info("nudge requested", "direction", "down")
	s.Engine.NudgeDown(r.Context())
	w.WriteHeader(http.StatusOK)
}

func (s *Server) setEcho(w http.ResponseWriter, r *http.Request) {
	enabled := r.URL.Query().Get("echo") == "true"
	if err := s.Device.SetEcho(r.Context(), enabled); err != nil {
		s.Log.Warn("set echo failed", "echo", enabled, "err", err)
	}
	w.WriteHeader(http.StatusOK)
}

// reading answers {key: value}, or {key: null} when the device could not be read.
func (s *Server) reading(key string, get func(context.Context) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, map[string]any{key: s.read(r.Context(), key, get)})
	}
}

func (s *Server) position(w http.ResponseWriter, r *http.Request) {
	counts := s.read(r.Context(), "position", s.Device.GetPosition)

	var meters *float64
	if counts != nil {
		m := units.EncoderUnitsToMeters(*counts)
		meters = &m
	}
	s.writeJSON(w, map[string]any{"position": counts, "meters": meters})
}

func (s *Server) safeTransitions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Engine.SafeTransitions(r.Context()))
}

func (s *Server) allTransitions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Engine.Names())
}

// -- Helpers --

func (s *Server) read(ctx context.Context, key string, get func(context.Context) (int, error)) *int {
	v, err := get(ctx)
	if err != nil {
		s.Log.Info("device read failed", "reading", key, "err", err)
		return nil
	}
	return &v
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Warn("response encode failed", "err", err)
	}
}
