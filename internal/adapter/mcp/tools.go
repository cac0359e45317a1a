package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

var settingArgs = []string{"domain", "target_ai", "expertise_level", "language"}

func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.optimizePromptTool(),
		s.listHistoryTool(),
		s.getHistorySessionTool(),
	)
}

func (s *Server) optimizePromptTool() mcpserver.ServerTool {
	tool := mcp.NewTool("optimize_prompt",
		mcp.WithDescription("Rewrite a raw prompt into an optimized prompt for a target AI model"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The raw prompt to optimize"),
		),
		mcp.WithString("domain",
			mcp.Description("Domain of the task"),
			mcp.Enum(settings.Domains...),
		),
		mcp.WithString("target_ai", mcp.Description("Model the optimized prompt is written for")),
		mcp.WithString("expertise_level",
			mcp.Description("Expertise level of the reader"),
			mcp.Enum(settings.ExpertiseLevels...),
		),
		mcp.WithString("language", mcp.Description("Language of the optimized prompt")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleOptimizePrompt}
}

func (s *Server) listHistoryTool() mcpserver.ServerTool {
	tool := mcp.NewTool("list_history",
		mcp.WithDescription("List past prompt optimizations, newest first"),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return (default 20)")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListHistory}
}

func (s *Server) getHistorySessionTool() mcpserver.ServerTool {
	tool := mcp.NewTool("get_history_session",
		mcp.WithDescription("Get one past optimization with all of its versions"),
		mcp.WithNumber("session_id",
			mcp.Required(),
			mcp.Description("The session ID from list_history"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetHistorySession}
}

func (s *Server) handleOptimizePrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Optimizer == nil {
		return mcp.NewToolResultError("optimizer not configured"), nil
	}
	args := req.GetArguments()
	prompt, _ := args["prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	var patch settings.Patch
	for _, key := range settingArgs {
		v, ok := args[key].(string)
		if !ok || v == "" {
			continue
		}
		if err := patch.Set(key, v); err != nil {
			return mcp.NewToolResultErrorFromErr("invalid argument", err), nil
		}
	}
	st := s.deps.Settings().Merge(patch)
	if err := st.Validate(); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid settings", err), nil
	}

	res, err := s.deps.Optimizer.Optimize(ctx, promptapi.ChatRequest{UserInput: prompt, Settings: st})
	if err != nil {
		s.log.Warn("mcp optimize failed", "error", err)
		return mcp.NewToolResultErrorFromErr(promptapi.Detail(err, "failed to optimize prompt"), err), nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to marshal result", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleListHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.History == nil {
		return mcp.NewToolResultError("history not configured"), nil
	}
	limit := history.DefaultLimit
	if v, ok := req.GetArguments()["limit"].(float64); ok {
		n, err := wholeNumber(v)
		if err != nil || n < 1 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = int(n)
	}
	page, err := s.deps.History.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to list history", err), nil
	}
	data, err := json.Marshal(page)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to marshal history", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleGetHistorySession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.History == nil {
		return mcp.NewToolResultError("history not configured"), nil
	}
	v, ok := req.GetArguments()["session_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	id, err := wholeNumber(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid session_id", err), nil
	}
	sess, err := s.deps.History.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultErrorFromErr(fmt.Sprintf("failed to get session %d", id), err), nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to marshal session", err), nil
	}
	return toolResultJSON(string(data)), nil
}

// wholeNumber converts a JSON number to an integer.
func wholeNumber(v float64) (int64, error) {
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return int64(v), nil
}
