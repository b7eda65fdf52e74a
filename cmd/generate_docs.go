package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/iris/internal/assistant"
	"github.com/teemow/iris/internal/calendar"
	"github.com/teemow/iris/internal/conversation"
	"github.com/teemow/iris/internal/llm"
	"github.com/teemow/iris/internal/server"
	"github.com/teemow/iris/internal/tools/assistant_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for the MCP tools served by 'iris serve'.
The tools are registered against an offline assistant and introspected, so
the output always matches the implementation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := generateDocs()
			if err != nil {
				return err
			}
			if outputFile == "" {
				fmt.Fprint(cmd.OutOrStdout(), markdown)
				return nil
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// offlineCalendar and offlineModel let the tools register without credentials.
type offlineCalendar struct{}

func (offlineCalendar) ListUpcoming(context.Context, int) ([]calendar.EventSummary, error) {
	return nil, nil
}

func (offlineCalendar) Search(context.Context, string) ([]calendar.EventSummary, error) {
	return nil, nil
}

func (offlineCalendar) Create(context.Context, string, string, string) (*calendar.EventSummary, error) {
	return nil, fmt.Errorf("offline")
}

func (offlineCalendar) Update(context.Context, string, string, string, string) (*calendar.EventSummary, error) {
	return nil, fmt.Errorf("offline")
}

func (offlineCalendar) Delete(context.Context, string) error {
	return fmt.Errorf("offline")
}

type offlineModel struct{}

func (offlineModel) Name() string { return "offline" }

func (offlineModel) Complete(context.Context, *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, fmt.Errorf("offline")
}

func generateDocs() (string, error) {
	ctx := context.Background()
	a, err := assistant.New(offlineModel{}, offlineCalendar{}, conversation.NewStore(nil), nil, assistant.Options{})
	if err != nil {
		return "", err
	}
	serverContext, err := server.NewServerContext(ctx, a)
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	mcpSrv := newMCPServer()
	if err := assistant_tools.RegisterAssistantTools(mcpSrv, serverContext); err != nil {
		return "", fmt.Errorf("failed to register assistant tools: %w", err)
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	return generateToolsMarkdown(tools), nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools available when running `iris serve`.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}
	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s\n\n", tool.Name))
	if tool.Description != "" {
		sb.WriteString(tool.Description + "\n\n")
	}

	if len(tool.InputSchema.Properties) == 0 {
		sb.WriteString("_No arguments._\n")
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	propNames := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, name := range propNames {
		propMap, ok := tool.InputSchema.Properties[name].(map[string]interface{})
		if !ok {
			continue
		}

		requiredStr := "optional"
		if contains(tool.InputSchema.Required, name) {
			requiredStr = "required"
		}

		sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr))
		if desc, ok := propMap["description"].(string); ok {
			sb.WriteString(desc)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
