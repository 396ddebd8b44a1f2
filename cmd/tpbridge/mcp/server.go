// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/metrics"
	"github.com/bureau-foundation/tpbridge/lib/netutil"
	"github.com/bureau-foundation/tpbridge/lib/version"
)

// serverName is reported in the initialize response.
const serverName = "tpbridge"

// Server is an MCP server that exposes tpbridge commands as tools over
// JSON-RPC 2.0 on newline-delimited stdio.
type Server struct {
	tools       []tool
	toolsByName map[string]*tool
	logger      *slog.Logger
	initialized bool
}

// tool is a discovered command exposed as an MCP tool.
type tool struct {
	name         string
	title        string
	description  string
	annotations  *toolAnnotations
	inputSchema  *cli.Schema
	outputSchema *cli.Schema
	command      *cli.Command
}

// captureMu serializes stdout capture. Swapping os.Stdout is process
// global, so two captures must never overlap.
var captureMu sync.Mutex

// NewServer creates an MCP server by walking the command tree to
// discover all commands with both Params and Run. Each becomes a tool
// whose input schema is derived from its parameter struct.
func NewServer(root *cli.Command, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger}

	discoverTools(root, nil, &s.tools, logger)

	s.toolsByName = make(map[string]*tool, len(s.tools))
	for i := range s.tools {
		s.toolsByName[s.tools[i].name] = &s.tools[i]
	}

	return s
}

// ToolNames returns the discovered tool names in discovery order.
func (s *Server) ToolNames() []string {
	names := make([]string, len(s.tools))
	for i := range s.tools {
		names[i] = s.tools[i].name
	}
	return names
}

// Serve runs the server on os.Stdin and os.Stdout.
func (s *Server) Serve(ctx context.Context) error {
	return s.Run(ctx, os.Stdin, os.Stdout)
}

// Run processes JSON-RPC 2.0 requests from input and writes responses
// to output until input reaches EOF or ctx is cancelled. Each request
// occupies a single line. Requests are handled one at a time.
func (s *Server) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	// Tool results with many records can be large.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	encoder := json.NewEncoder(output)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			if writeErr := writeError(encoder, json.RawMessage("null"), codeParseError, "parse error: "+err.Error()); writeErr != nil {
				return cli.Internal("writing parse error response: %w", writeErr)
			}
			continue
		}

		if req.JSONRPC != "2.0" {
			if !req.isNotification() {
				if writeErr := writeError(encoder, req.ID, codeInvalidRequest, "unsupported JSON-RPC version"); writeErr != nil {
					return cli.Internal("writing version error response: %w", writeErr)
				}
			}
			continue
		}

		// Notifications have no ID and receive no response.
		if req.isNotification() {
			continue
		}

		if err := s.dispatch(ctx, encoder, &req); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, encoder *json.Encoder, req *request) error {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(encoder, req)
	case "ping":
		return writeResult(encoder, req.ID, map[string]any{})
	case "tools/list":
		if !s.initialized {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsList(encoder, req)
	case "tools/call":
		if !s.initialized {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsCall(ctx, encoder, req)
	default:
		return writeError(encoder, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (s *Server) handleInitialize(encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for initialize")
	}

	var params initializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid initialize params: "+err.Error())
	}

	// Clients asking for another protocol version are not rejected;
	// they decide from our answer whether to continue.
	s.initialized = true
	s.logger.Debug("mcp client initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"protocol_version", params.ProtocolVersion,
	)

	return writeResult(encoder, req.ID, initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: serverCapabilities{
			Tools: &toolCapability{},
		},
		ServerInfo: serverInfo{
			Name:    serverName,
			Version: version.Short(),
		},
	})
}

func (s *Server) handleToolsList(encoder *json.Encoder, req *request) error {
	descriptions := make([]toolDescription, 0, len(s.tools))
	for _, t := range s.tools {
		descriptions = append(descriptions, toolDescription{
			Name:         t.name,
			Title:        t.title,
			Description:  t.description,
			InputSchema:  t.inputSchema,
			OutputSchema: t.outputSchema,
			Annotations:  t.annotations,
		})
	}
	return writeResult(encoder, req.ID, toolsListResult{Tools: descriptions})
}

func (s *Server) handleToolsCall(ctx context.Context, encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for tools/call")
	}

	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
	}

	t, ok := s.toolsByName[params.Name]
	if !ok {
		return writeError(encoder, req.ID, codeInvalidParams, "unknown tool: "+params.Name)
	}

	output, runErr := s.executeTool(ctx, t, params.Arguments)
	result := buildToolResult(output, runErr)

	// A tool with an output schema returns its JSON both as text and
	// as structuredContent.
	if t.outputSchema != nil && !result.IsError && output != "" {
		var structured any
		if parseErr := json.Unmarshal([]byte(output), &structured); parseErr != nil {
			result.IsError = true
			result.Content = append(result.Content, contentBlock{
				Type: "text",
				Text: fmt.Sprintf("output schema violation: command produced non-JSON output: %v", parseErr),
			})
			result.ErrorInfo = &errorInfo{Category: string(cli.CategoryInternal)}
		} else {
			result.StructuredContent = structuredObject(structured)
		}
	}

	outcome := "ok"
	if result.ErrorInfo != nil {
		outcome = result.ErrorInfo.Category
	}
	metrics.RecordToolCall(t.name, outcome)
	if runErr != nil {
		s.logger.Warn("tool call failed", "tool", t.name, "category", outcome, "error", runErr)
	}

	return writeResult(encoder, req.ID, result)
}

// structuredObject wraps non-object results. structuredContent must be
// a JSON object, and every record listing is an array.
func structuredObject(value any) any {
	if _, ok := value.(map[string]any); ok {
		return value
	}
	return map[string]any{"result": value}
}

// buildToolResult assembles a toolsCallResult from captured output and
// an optional run error.
func buildToolResult(output string, runErr error) toolsCallResult {
	result := toolsCallResult{}
	if output != "" {
		result.Content = append(result.Content, contentBlock{
			Type: "text",
			Text: output,
		})
	}
	if runErr != nil {
		result.IsError = true
		result.Content = append(result.Content, contentBlock{
			Type: "text",
			Text: runErr.Error(),
		})
		result.ErrorInfo = classifyError(runErr)
	}
	// MCP requires at least one content block in the result.
	if len(result.Content) == 0 {
		result.Content = []contentBlock{{Type: "text", Text: ""}}
	}
	return result
}

// classifyError extracts structured error metadata from an error.
// Commands return ToolErrors; the fallbacks cover errors that escape
// without one.
func classifyError(err error) *errorInfo {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return &errorInfo{
			Category:  string(toolErr.Category),
			Retryable: toolErr.Retryable(),
			Hint:      toolErr.Hint,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || netutil.IsTransient(err) {
		return &errorInfo{Category: string(cli.CategoryTransient), Retryable: true}
	}

	return &errorInfo{Category: string(cli.CategoryInternal), Retryable: false}
}

// executeTool runs a command as an MCP tool, capturing stdout.
// Parameters are zeroed, defaults applied from flag tags, JSON
// arguments overlaid, and JSON output mode forced before execution.
func (s *Server) executeTool(ctx context.Context, t *tool, arguments json.RawMessage) (string, error) {
	// The params pointer is captured by the command's closures; zero
	// it so a previous call cannot leak into this one.
	params := t.command.Params()
	reflect.ValueOf(params).Elem().SetZero()

	// Registering the flags writes each default into its field.
	t.command.FlagSet()

	if len(arguments) > 0 && string(arguments) != "null" {
		if err := json.Unmarshal(arguments, params); err != nil {
			return "", cli.Validation("invalid arguments: %w", err)
		}
	}

	enableJSONOutput(params)

	logger := s.logger.With("tool", t.name)
	return captureRun(func() error {
		return t.command.Run(ctx, nil, logger)
	})
}

// enableJSONOutput forces JSON output mode on params structs that
// embed [cli.JSONOutput].
func enableJSONOutput(params any) {
	if j, ok := params.(cli.JSONOutputter); ok {
		j.SetJSONOutput(true)
	}
}

// captureRun executes run while capturing its stdout. A goroutine
// drains the pipe so large outputs cannot deadlock on the pipe buffer.
func captureRun(run func() error) (string, error) {
	captureMu.Lock()
	defer captureMu.Unlock()

	reader, writer, err := os.Pipe()
	if err != nil {
		return "", cli.Internal("creating output pipe: %w", err)
	}

	saved := os.Stdout
	os.Stdout = writer

	type capturedOutput struct {
		data []byte
		err  error
	}
	done := make(chan capturedOutput, 1)
	go func() {
		data, readErr := io.ReadAll(reader)
		done <- capturedOutput{data, readErr}
	}()

	runErr := run()

	// Restore stdout before closing the pipe so later writes go to the
	// real destination.
	os.Stdout = saved
	writer.Close()

	captured := <-done
	reader.Close()

	if captured.err != nil {
		return "", cli.Internal("reading captured output: %w", captured.err)
	}

	return string(captured.data), runErr
}

// discoverTools walks the command tree collecting commands that have
// both Params and Run. A command's ToolName wins over the
// underscore-joined command path.
func discoverTools(command *cli.Command, path []string, tools *[]tool, logger *slog.Logger) {
	// Fresh slice per level: siblings must not alias each other's path.
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name

	if command.Params != nil && command.Run != nil {
		toolName := command.ToolName
		if toolName == "" {
			toolName = strings.Join(current, "_")
		}

		inputSchema, err := cli.ParamsSchema(command.Params())
		if err != nil {
			logger.Error("mcp: skipping tool: input schema error", "tool", toolName, "error", err)
		} else {
			var outputSchema *cli.Schema
			if command.Output != nil {
				outSchema, outErr := cli.OutputSchema(command.Output())
				if outErr != nil {
					logger.Error("mcp: output schema error", "tool", toolName, "error", outErr)
				} else {
					outputSchema = wrapOutputSchema(outSchema)
				}
			}

			*tools = append(*tools, tool{
				name:         toolName,
				title:        command.Summary,
				description:  toolDescriptionText(command),
				annotations:  resolveAnnotations(command),
				inputSchema:  inputSchema,
				outputSchema: outputSchema,
				command:      command,
			})
		}
	}

	for _, sub := range command.Subcommands {
		discoverTools(sub, current, tools, logger)
	}
}

// wrapOutputSchema mirrors structuredObject: a non-object output is
// declared as {"result": <schema>}.
func wrapOutputSchema(schema *cli.Schema) *cli.Schema {
	if schema.Type == "object" {
		return schema
	}
	return &cli.Schema{
		Type:       "object",
		Properties: map[string]*cli.Schema{"result": schema},
		Required:   []string{"result"},
	}
}

func toolDescriptionText(command *cli.Command) string {
	if command.Description != "" {
		return command.Description
	}
	return command.Summary
}

// resolveAnnotations translates a command's annotations into MCP hints.
// Returns nil when the command declares none, leaving the MCP defaults.
func resolveAnnotations(command *cli.Command) *toolAnnotations {
	if command.Annotations == nil {
		return nil
	}
	return &toolAnnotations{
		ReadOnlyHint:    command.Annotations.ReadOnly,
		DestructiveHint: command.Annotations.Destructive,
		IdempotentHint:  command.Annotations.Idempotent,
		OpenWorldHint:   command.Annotations.OpenWorld,
	}
}

// writeResult sends a JSON-RPC 2.0 success response.
func writeResult(encoder *json.Encoder, id json.RawMessage, result any) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// writeError sends a JSON-RPC 2.0 error response.
func writeError(encoder *json.Encoder, id json.RawMessage, code int, message string) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
