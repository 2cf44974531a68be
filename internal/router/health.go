package router

import (
	"net/http"
	"time"
)

// HealthStatus is the body of the health route response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHealthService returns a service exposing a liveness route at
// GET /health. It exercises the same registration path as any other
// service.
func NewHealthService(version string) *Service {
	started := time.Now()

	return &Service{
		Name: "health",
		Routes: []RouteSpec{
			{
				Method: http.MethodGet,
				Path:   "",
				Name:   "health.check",
				Handler: func(c *Context) error {
					return c.JSON(http.StatusOK, HealthStatus{
						Status:    "healthy",
						Version:   version,
						Uptime:    time.Since(started).Round(time.Second).String(),
						Timestamp: time.Now().UTC(),
					})
				},
			},
		},
	}
}
