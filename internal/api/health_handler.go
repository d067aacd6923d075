package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// DBPingTimeout bounds the database health probe.
const DBPingTimeout = 5 * time.Second

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// DBHealthResponse is returned by GET /health/db.
type DBHealthResponse struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	LatencyMS         float64 `json:"latency_ms"`
	Error             *string `json:"error"`
}

// HealthHandler reports liveness and database connectivity. Its routes are
// not authenticated.
type HealthHandler struct {
	db      Pinger
	version string
	debug   bool
	logger  *slog.Logger
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. Error text from a failed ping is only
// returned when debug is set, and then redacted.
func NewHealthHandler(db Pinger, version string, debug bool, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:      db,
		version: version,
		debug:   debug,
		logger:  logger.With(slog.String("component", "health_handler")),
		now:     time.Now,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Version:   h.version,
	})
}

// DatabaseHealth handles GET /health/db. It answers 200 either way; the body
// carries the state.
func (h *HealthHandler) DatabaseHealth(w http.ResponseWriter, r *http.Request) {
	resp := DBHealthResponse{Status: "healthy", DatabaseConnected: true}

	ctx, cancel := context.WithTimeout(r.Context(), DBPingTimeout)
	defer cancel()

	start := h.now()
	var err error
	if h.db == nil {
		err = errNoDatabase
	} else {
		err = h.db.PingContext(ctx)
	}
	resp.LatencyMS = float64(h.now().Sub(start).Microseconds()) / 1000

	if err != nil {
		h.logger.Warn("database health check failed", slog.String("error", redact.Error(err)))
		resp.Status = "unhealthy"
		resp.DatabaseConnected = false
		msg := "database unavailable"
		if h.debug {
			msg = redact.Error(err)
		}
		resp.Error = &msg
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

var errNoDatabase = errors.New("no database configured")
