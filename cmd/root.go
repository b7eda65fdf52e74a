package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/iris/internal/config"
)

var (
	// v holds flag, environment and file configuration.
	v          = config.New()
	configFile string
)

// rootCmd represents the base command for the iris application
var rootCmd = &cobra.Command{
	Use:   "iris",
	Short: "A conversational assistant for Google Calendar",
	Long: `iris turns plain sentences into Google Calendar changes.

Tell it to book, move, cancel or list events and it asks a language model
to work out what you mean, then carries it out. Deleting an event always
asks for confirmation first.

It can run as:
  - An interactive chat in the terminal (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "iris version %s\n" .Version}}`)

	// If no subcommand is provided, start a chat
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: ./iris.yaml or $HOME/.config/iris/iris.yaml)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("timezone", "", "IANA time zone for dates and times (default: America/Edmonton)")
	flags.String("provider", "", "Language model provider: ollama, openai or anthropic")
	flags.String("model", "", "Model name (default: gemma3:4b)")
	flags.String("store", "", "Transcript file, or SQLite database with --store-backend=sqlite")
	flags.String("store-backend", "", "Transcript backend: file or sqlite")
	flags.String("session", "", "SQLite session id to resume")

	// A bound flag only overrides the other sources when set on the command line.
	for key, name := range map[string]string{
		"log.debug":      "debug",
		"log.format":     "log-format",
		"timezone":       "timezone",
		"model.provider": "provider",
		"model.name":     "model",
		"store.path":     "store",
		"store.backend":  "store-backend",
		"store.session":  "session",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(v, configFile)
}
