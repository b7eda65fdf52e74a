package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/iris/internal/assistant"
	"github.com/teemow/iris/internal/logging"
	"github.com/teemow/iris/internal/resources"
	"github.com/teemow/iris/internal/server"
	"github.com/teemow/iris/internal/tools/assistant_tools"
)

func newServeCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio so that an AI
assistant can drive the calendar conversation.

Tools:
  assistant_send_message  Run one conversation turn. Deletions only go ahead
                          when the call sets confirm=true.
  assistant_get_history   Return the transcript and the last action.

Resources:
  conversation://transcript  The current session's turns.
  conversation://last-event  The event last created or updated.

A Google token must already exist; run 'iris auth' first.

Metrics:
  --metrics-addr 127.0.0.1:9090 (or IRIS_METRICS_ADDR) serves /metrics and
  health probes. Requires telemetry.enabled (INSTRUMENTATION_ENABLED) to be left on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				v.Set("metrics_addr", metricsAddr)
			}
			return runServe()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the metrics and health server (disabled when empty)")
	return cmd
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol, logs go to stderr.
	logger := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Debug)

	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(shutdownCtx, cfg, logger, appOptions{confirmer: assistant.StaticConfirmer(false)})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	serverContext, err := server.NewServerContext(shutdownCtx, a.assistant,
		server.WithInstrumentation(a.provider),
		server.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	health := server.NewHealthChecker(serverContext)
	if cfg.MetricsAddr != "" && a.provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: a.provider,
			Health:                  health,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := metricsServer.Listen(); err != nil {
			return fmt.Errorf("metrics server failed to start: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("Metrics server stopped", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	mcpSrv := newMCPServer()
	if err := assistant_tools.RegisterAssistantTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register assistant tools: %w", err)
	}
	if err := resources.RegisterConversationResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register conversation resources: %w", err)
	}

	health.SetReady(true)
	logger.Info("Starting iris MCP server", "transport", "stdio", logging.KeySession, a.session)
	return runStdioServer(shutdownCtx, mcpSrv)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("iris", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
