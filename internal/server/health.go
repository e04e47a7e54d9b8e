package server

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// Health represents the complete health check response
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

// HandleHealth reports whether uploads can currently be stored.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth()

	statusCode := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, health)
}

func (s *Server) checkHealth() Health {
	health := Health{
		Timestamp:  time.Now().UTC(),
		Version:    s.cfg.Build.Version,
		Components: make(map[string]ComponentHealth),
	}

	health.Components["upload_dir"] = checkWritableDir(s.cfg.UploadDir, true)

	tempDir := s.cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	health.Components["temp_dir"] = checkWritableDir(tempDir, false)

	health.Status = determineOverallHealth(health.Components)
	return health
}

// checkWritableDir tests dir by creating and removing a file in it. The
// upload dir may be created on demand, so create=true makes a missing one
// count as healthy as long as it can be made.
func checkWritableDir(dir string, create bool) ComponentHealth {
	start := time.Now()

	if create {
		if err := ensureDir(dir); err != nil {
			return ComponentHealth{Status: ComponentStatusDown, Message: err.Error()}
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: err.Error()}
	}
	if !info.IsDir() {
		return ComponentHealth{Status: ComponentStatusDown, Message: fmt.Sprintf("%s is not a directory", dir)}
	}

	tmp, err := os.CreateTemp(dir, stagingPrefix+"health-*")
	if err != nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: "not writable: " + err.Error()}
	}
	_ = tmp.Close()
	_ = os.Remove(tmp.Name())

	return ComponentHealth{
		Status:    ComponentStatusUp,
		LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
	}
}

// determineOverallHealth calculates overall health from component statuses
func determineOverallHealth(components map[string]ComponentHealth) HealthStatus {
	for _, component := range components {
		if component.Status == ComponentStatusDown {
			return HealthStatusUnhealthy
		}
	}
	return HealthStatusHealthy
}
