package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/iris/internal/server"
)

// Resource URIs.
const (
	URITranscript = "conversation://transcript"
	URILastEvent  = "conversation://last-event"
)

// RegisterConversationResources registers the conversation resources.
func RegisterConversationResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	transcriptResource := mcp.NewResource(
		URITranscript,
		"Conversation Transcript",
		mcp.WithResourceDescription("Every user and assistant turn of the current session, oldest first"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(transcriptResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTranscript(ctx, request, sc)
	})

	lastEventResource := mcp.NewResource(
		URILastEvent,
		"Last Event",
		mcp.WithResourceDescription("The event the assistant last created or updated, or null"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(lastEventResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleLastEvent(ctx, request, sc)
	})

	return nil
}

func handleTranscript(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	state := sc.Assistant().Store().Snapshot()

	data := map[string]interface{}{
		"turns":        len(state.Turns),
		"conversation": state.Turns,
	}
	return jsonContents(request.Params.URI, data)
}

func handleLastEvent(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	return jsonContents(request.Params.URI, sc.Assistant().Store().LastAction())
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
