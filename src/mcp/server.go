// Package mcp exposes the language detection build step as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"langdetect-agent/src/contracts"
	"langdetect-agent/src/logger"
	"langdetect-agent/src/pipeline"
	"langdetect-agent/src/provider"
	"langdetect-agent/src/sanitize"
	"langdetect-agent/src/store"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server is the MCP server for the language detection build step.
type Server struct {
	mcpServer *server.MCPServer
	pipeline  *pipeline.Pipeline
	logs      *RunLogs
}

// DetectLanguageOutput is the detect_language tool result.
type DetectLanguageOutput struct {
	Repository string `json:"repository"`
	Language   string `json:"language"`
	Bytes      int64  `json:"bytes"`
	Fallback   bool   `json:"fallback"`
	Error      string `json:"error,omitempty"`
}

// RunStepOutput is the run_step and get_run tool result.
type RunStepOutput struct {
	Run contracts.RunRecord `json:"run"`
	Log []string            `json:"log,omitempty"`
}

// NewServer creates a new MCP server backed by p.
func NewServer(p *pipeline.Pipeline) *Server {
	s := server.NewMCPServer(
		"langdetect",
		Version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		pipeline:  p,
		logs:      NewRunLogs(defaultRunLogCapacity),
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	detectTool := mcp.NewTool("detect_language",
		mcp.WithDescription("Detect the dominant programming language of a GitHub repository, measured in bytes of code. Returns \"unknown\" with an error when detection fails."),
		mcp.WithString("repo_url",
			mcp.Required(),
			mcp.Description("Repository URL or owner/name, e.g. https://github.com/owner/repo"),
		),
	)

	endpointTool := mcp.NewTool("test_endpoint",
		mcp.WithDescription("Check that a webhook endpoint is a valid URL and answers HTTP 200 to a GET request."),
		mcp.WithString("api_endpoint",
			mcp.Required(),
			mcp.Description("Webhook URL to test"),
		),
	)

	runTool := mcp.NewTool("run_step",
		mcp.WithDescription("Run the full build step: ensure a fresh agent, detect the repository language and notify the webhook. Returns the run record and its build log."),
		mcp.WithString("repo_url",
			mcp.Description("Repository URL (default: configured repository)"),
		),
		mcp.WithString("api_endpoint",
			mcp.Description("Webhook URL (default: configured endpoint)"),
		),
	)

	getRunTool := mcp.NewTool("get_run",
		mcp.WithDescription("Get a recorded run by ID, including its build log when the run was started from this server."),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID from run_step"),
		),
	)

	listRunsTool := mcp.NewTool("list_runs",
		mcp.WithDescription("List recent runs, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Max runs to return (default: 20)"),
		),
	)

	s.mcpServer.AddTool(detectTool, s.handleDetectLanguage)
	s.mcpServer.AddTool(endpointTool, s.handleTestEndpoint)
	s.mcpServer.AddTool(runTool, s.handleRunStep)
	s.mcpServer.AddTool(getRunTool, s.handleGetRun)
	s.mcpServer.AddTool(listRunsTool, s.handleListRuns)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleDetectLanguage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoURL := request.GetString("repo_url", "")
	if repoURL == "" {
		return mcp.NewToolResultError("repo_url parameter is required"), nil
	}

	ref, err := provider.ParseRepoURL(repoURL)
	if err != nil {
		return mcp.NewToolResultError(provider.WrapError(err).Error()), nil
	}

	result, err := s.pipeline.Detector.DetectLanguage(ctx, repoURL)
	out := DetectLanguageOutput{
		Repository: ref.FullName(),
		Language:   result.Language,
		Bytes:      result.Bytes,
		Fallback:   result.Fallback,
	}
	if err != nil {
		out.Error = s.clean(provider.WrapError(err).Error())
	}
	return jsonResult(out)
}

func (s *Server) handleTestEndpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := s.pipeline.Validator.Validate(ctx, request.GetString("api_endpoint", ""))
	if !v.OK {
		return mcp.NewToolResultError(v.Message), nil
	}
	return mcp.NewToolResultText(v.Message), nil
}

func (s *Server) handleRunStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stepCfg := contracts.StepConfig{
		RepoURL:     request.GetString("repo_url", ""),
		APIEndpoint: request.GetString("api_endpoint", ""),
	}

	buildLog := logger.NewRecordingLogger()
	out := s.pipeline.Run(ctx, stepCfg, buildLog)

	lines := sanitize.Lines(buildLog.Lines(), s.pipeline.Config().Step.Token)
	s.logs.Put(out.Run.ID, lines)

	return jsonResult(RunStepOutput{Run: out.Run, Log: lines})
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id parameter is required"), nil
	}

	run, err := s.pipeline.Store.GetRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("run not found: run_id=%s", runID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get run: %v", err)), nil
	}

	lines, _ := s.logs.Get(runID)
	return jsonResult(RunStepOutput{Run: *run, Log: lines})
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	runs, err := s.pipeline.Store.ListRuns(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	if runs == nil {
		runs = []contracts.RunRecord{}
	}
	return jsonResult(runs)
}

func (s *Server) clean(text string) string {
	return sanitize.RedactSecrets(sanitize.StripANSI(text), s.pipeline.Config().Step.Token)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
