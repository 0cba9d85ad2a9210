package types

import "time"

type HealthStatus struct {
	Status      string    `json:"status"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
	Backend     string    `json:"backend"`
	StartTime   time.Time `json:"start_time"`
	Uptime      string    `json:"uptime"`
	GoVersion   string    `json:"go_version"`
	ActiveCarts int       `json:"active_carts"`
}
