package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/capnode/capnode/internal/logging"
)

// registerLogRoutes registers the log retrieval endpoint.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Get Logs",
		Description: "Get recent log entries from the in-memory buffer, oldest first",
		Tags:        []string{"logs"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*LogsResponse, error) {
		entries := logging.Buffer().ReadAll()
		return &LogsResponse{
			Body: LogsData{
				Entries: entries,
				Count:   len(entries),
			},
		}, nil
	})
}
