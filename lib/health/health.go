package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Upstream is a dependency guarded by a circuit breaker.
type Upstream interface {
	Name() string
	State() string
}

type Component struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health represents the health check response structure.
type Health struct {
	Status      string               `json:"status"`
	Timestamp   time.Time            `json:"timestamp"`
	Upstreams   map[string]Component `json:"upstreams"`
	Credentials map[string]Component `json:"credentials"`
}

// Check returns a handler reporting each upstream's breaker state and whether
// each required credential is configured. Any open breaker or missing
// credential makes the service degraded and the response a 503.
func Check(upstreams []Upstream, credentials map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := Health{
			Status:      StatusOK,
			Timestamp:   time.Now(),
			Upstreams:   make(map[string]Component, len(upstreams)),
			Credentials: make(map[string]Component, len(credentials)),
		}

		for _, u := range upstreams {
			state := u.State()
			c := Component{Status: StatusOK}
			switch state {
			case "open":
				health.Status = StatusDegraded
				c = Component{Status: "error", Message: "circuit breaker is open"}
			case "half-open":
				c.Message = "recovering"
			}
			health.Upstreams[u.Name()] = c
		}

		for name, present := range credentials {
			if present {
				health.Credentials[name] = Component{Status: StatusOK}
				continue
			}
			health.Status = StatusDegraded
			health.Credentials[name] = Component{Status: "error", Message: "not configured"}
		}

		status := http.StatusOK
		if health.Status != StatusOK {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, health, status)
	}
}

func writeHealth(w http.ResponseWriter, health Health, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", slog.Any("error", err))
	}
}
