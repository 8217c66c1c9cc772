package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HealthStatus struct {
	Healthy           bool
	DatabaseConnected bool
	NATSConnected     bool
	NATSEnabled       bool
	Errors            []string
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnState reports the broker connection state.
type ConnState interface {
	Connected() bool
}

type HealthChecker struct {
	db   Pinger
	nats ConnState
}

// NewHealthChecker accepts nil for either dependency when the server runs
// without it (in-memory store, notifications disabled).
func NewHealthChecker(db Pinger, nats ConnState) *HealthChecker {
	return &HealthChecker{db: db, nats: nats}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy:           true,
		DatabaseConnected: true,
		Errors:            []string{},
	}

	// Check database connection
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			status.DatabaseConnected = false
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
		}
	}

	// Check NATS connection
	if h.nats != nil {
		status.NATSEnabled = true
		status.NATSConnected = h.nats.Connected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	return status
}

// HTTP handler helper
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	response := map[string]interface{}{
		"healthy":            status.Healthy,
		"database_connected": status.DatabaseConnected,
		"nats_enabled":       status.NATSEnabled,
		"nats_connected":     status.NATSConnected,
		"errors":             status.Errors,
	}

	w.Header().Set("Content-Type", "application/json")

	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(response)
}
