package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/iris/internal/instrumentation"
	"github.com/teemow/iris/internal/logging"
	"github.com/teemow/iris/internal/server"
)

// ToolHandler is the signature mcp-go expects for tool handlers.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a span, the tool
// invocation metric and a log line.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartSpan(ctx, "mcp."+toolName)
		defer span.End()

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)

		logger := logging.WithOperation(sc.Logger(), toolName)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			logger.Error("Tool call failed", logging.Status(status), logging.Err(err))
		} else {
			instrumentation.SetSpanSuccess(span)
			logger.Debug("Tool call completed", logging.Status(status), "duration", duration)
		}

		return result, err
	}
}

// StringArg returns the named string argument, or "" when absent or not a string.
func StringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

// BoolArg returns the named boolean argument, or def when absent or not a bool.
func BoolArg(args map[string]interface{}, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}
