package assistant_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/iris/internal/assistant"
	"github.com/teemow/iris/internal/server"
	"github.com/teemow/iris/internal/tools/common"
)

// Tool names.
const (
	ToolSendMessage = "assistant_send_message"
	ToolGetHistory  = "assistant_get_history"
)

// RegisterAssistantTools registers the assistant tools with the MCP server
func RegisterAssistantTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendMessageTool := mcp.NewTool(ToolSendMessage,
		mcp.WithDescription("Send a message to the calendar assistant. It may create, update, delete or list Google Calendar events, or just chat."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("What the user said, e.g. 'book lunch with Sam tomorrow at noon'"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Allow a deletion requested by this message to proceed (default: false)"),
		),
	)
	s.AddTool(sendMessageTool, common.InstrumentedToolHandler(ToolSendMessage, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendMessage(ctx, request, sc)
		}))

	getHistoryTool := mcp.NewTool(ToolGetHistory,
		mcp.WithDescription("Get the conversation transcript and the last created or updated event"),
	)
	s.AddTool(getHistoryTool, common.InstrumentedToolHandler(ToolGetHistory, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetHistory(ctx, request, sc)
		}))

	return nil
}

func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	message := strings.TrimSpace(common.StringArg(args, "message"))
	if message == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	confirm := common.BoolArg(args, "confirm", false)

	res, err := sc.Assistant().TurnWithConfirmer(ctx, message, assistant.StaticConfirmer(confirm))
	text := formatTurn(res)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s\nError: %v", text, err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// formatTurn renders the reply followed by any notices and the event touched.
func formatTurn(res assistant.TurnResult) string {
	var b strings.Builder
	b.WriteString(res.Reply)
	for _, n := range res.Notices {
		b.WriteString("\n")
		b.WriteString(n)
	}
	if ev := res.Outcome.Event; ev != nil {
		fmt.Fprintf(&b, "\n\nAction: %s\nEvent: %s\nID: %s", res.Record.Action, ev.Summary, ev.ID)
		if ev.HTMLLink != "" {
			fmt.Fprintf(&b, "\nLink: %s", ev.HTMLLink)
		}
	}
	return b.String()
}

func handleGetHistory(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	state := sc.Assistant().Store().Snapshot()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode history: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
