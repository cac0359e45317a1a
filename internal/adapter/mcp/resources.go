package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Strob0t/lukthan/internal/domain/settings"
)

const settingsOptionsURI = "lukthan://settings/options"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(
			settingsOptionsURI,
			"Settings Options",
			mcp.WithResourceDescription("Accepted domains, target AIs, expertise levels and languages"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleSettingsOptions,
	)
}

func (s *Server) handleSettingsOptions(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	data, err := json.Marshal(settings.AllOptions())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
