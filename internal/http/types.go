package http

import "github.com/fyrsmithlabs/crxproject/internal/project"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Root           string `json:"root"`
	CachedProjects int    `json:"cached_projects"`
}

// ScanResponse is the response body for GET /api/v1/projects.
type ScanResponse struct {
	Root     string   `json:"root"`
	Projects []string `json:"projects"`
}

// InfoResponse is the response body for GET /api/v1/projects/info.
type InfoResponse = project.Info

// InvokeRequest is the request body for POST /api/v1/projects/invoke.
type InvokeRequest struct {
	Path        string `json:"path"`
	Command     string `json:"command"`
	NewName     string `json:"new_name,omitempty"`
	Destination string `json:"destination,omitempty"`
}
