package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultTailLines = 20

// New creates an MCP server exposing the session controls of m
func New(m *internal.Manager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"savecaptions",
		version,
		server.WithToolCapabilities(true),
	)
	RegisterSessionTools(s, m)
	return s
}

// RegisterSessionTools adds the session control tools to the MCP server.
func RegisterSessionTools(s *server.MCPServer, m *internal.Manager) {
	s.AddTool(startTool(), startHandler(m))
	s.AddTool(idTool("pause_session", "Pause a recording session and merge its pending captions into the transcript."), pauseHandler(m))
	s.AddTool(idTool("resume_session", "Resume a paused session. New captions go to the same transcript."), resumeHandler(m))
	s.AddTool(idTool("stop_session", "Stop a session, merge what is left and delete its cache file."), stopHandler(m))
	s.AddTool(idTool("merge_now", "Merge a session's pending captions into its transcript without pausing."), mergeHandler(m))
	s.AddTool(listTool(), listHandler(m))
	s.AddTool(tailTool(), tailHandler(m))
}

// --- start_session ---

func startTool() mcp.Tool {
	return mcp.NewTool("start_session",
		mcp.WithDescription("Start recording live captions. Returns the new session ID."),
		mcp.WithString("dir",
			mcp.Description("Directory for the transcript. Omit to use the configured save_dir."),
		),
	)
}

func startHandler(m *internal.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, res := m.StartSession(ctx, req.GetString("dir", ""))
		return resultReply(struct {
			internal.Result
			SessionID string `json:"session_id,omitempty"`
		}{res, id}, res.OK)
	}
}

// --- pause / resume / stop / merge ---

func idTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("id",
			mcp.Description("Session ID returned by start_session"),
			mcp.Required(),
		),
	)
}

func sessionOp(op func(id string) internal.Result) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := strings.TrimSpace(req.GetString("id", ""))
		if id == "" {
			return toolError(fmt.Errorf("id is required"))
		}
		res := op(id)
		return resultReply(res, res.OK)
	}
}

func pauseHandler(m *internal.Manager) server.ToolHandlerFunc { return sessionOp(m.Pause) }
func resumeHandler(m *internal.Manager) server.ToolHandlerFunc { return sessionOp(m.Resume) }
func stopHandler(m *internal.Manager) server.ToolHandlerFunc { return sessionOp(m.Stop) }
func mergeHandler(m *internal.Manager) server.ToolHandlerFunc { return sessionOp(m.MergeNow) }

// --- list_sessions ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_sessions",
		mcp.WithDescription("List running sessions with their state, transcript path and counters."),
	)
}

func listHandler(m *internal.Manager) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonText(m.List())
	}
}

// --- tail_transcript ---

func tailTool() mcp.Tool {
	return mcp.NewTool("tail_transcript",
		mcp.WithDescription("Merge a session's pending captions and return the last lines of its transcript."),
		mcp.WithString("id",
			mcp.Description("Session ID returned by start_session"),
			mcp.Required(),
		),
		mcp.WithNumber("lines",
			mcp.Description("Number of lines to return (default 20)"),
		),
	)
}

func tailHandler(m *internal.Manager) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := strings.TrimSpace(req.GetString("id", ""))
		if id == "" {
			return toolError(fmt.Errorf("id is required"))
		}
		n := req.GetInt("lines", defaultTailLines)

		if res := m.MergeNow(id); !res.OK {
			return resultReply(res, false)
		}
		info, err := m.Info(id)
		if err != nil {
			return toolError(err)
		}
		lines, err := internal.ReadTranscript(info.TranscriptPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return toolError(err)
		}
		lines = internal.Tail(lines, n)
		if len(lines) == 0 {
			return mcp.NewToolResultText("No captions yet."), nil
		}
		var sb strings.Builder
		for _, l := range lines {
			sb.WriteString(l.String())
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func resultReply(v any, ok bool) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	if !ok {
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func jsonText(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
