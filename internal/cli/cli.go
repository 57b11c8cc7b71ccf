// Package cli parses flags and environment, builds the application graph and
// dispatches to the TUI or to one of the small maintenance subcommands.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"agenthub/internal/catalog"
	"agenthub/internal/hub"
	"agenthub/internal/store"
	"agenthub/internal/tui"
	"agenthub/internal/utils"
)

const envAPIURL = "AGENTHUB_API_URL"

// Run is the process entry point. Returns the exit code.
func Run(args []string) int {
	// A .env next to the binary is a convenience for development; absence is
	// not an error.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("agenthub", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "", "state directory (default ~/.agenthub)")
	apiURL := fs.String("api-url", "", "backend base URL (default "+envAPIURL+" or http://localhost:8000)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	yes := fs.Bool("yes", false, "skip the confirmation prompt for reset")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: agenthub [flags] [command]\n\nCommands:\n")
		fmt.Fprintf(fs.Output(), "  tui      start the interactive hub (default)\n")
		fmt.Fprintf(fs.Output(), "  agents   list the agent catalog\n")
		fmt.Fprintf(fs.Output(), "  reset    delete all local state\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := hub.DefaultConfig()
	if env := os.Getenv(envAPIURL); env != "" {
		cfg.API.BaseURL = env
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	switch fs.Arg(0) {
	case "", "tui":
		return runTUI(cfg)
	case "agents":
		return runAgents()
	case "reset":
		return runReset(cfg, *yes)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}
}

// runTUI builds the full service graph and hands the terminal to the UI. Logs
// go to a file because the UI owns the screen.
func runTUI(cfg hub.Config) int {
	local, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "agenthub.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logFile.Close()
	logger := utils.NewLoggerTo(logFile, cfg.Logging.Level)

	app := hub.NewApp(cfg, local, store.NewMemStore(), logger)
	if err := tui.Run(app); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runAgents() int {
	for _, agent := range catalog.All() {
		config := "no setup needed"
		if agent.RequiresConfig {
			config = fmt.Sprintf("%d config fields", len(agent.ConfigFields))
		}
		fmt.Printf("%-12s %s %-22s %s\n", agent.ID, agent.Icon, agent.Name, config)
		fmt.Printf("             %s\n", agent.Description)
	}
	return 0
}

func runReset(cfg hub.Config, confirmed bool) int {
	if !confirmed {
		fmt.Fprintf(os.Stderr, "this deletes everything under %s; re-run with -yes to confirm\n", cfg.DataDir)
		return 2
	}
	local, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, key := range local.Keys() {
		if err := local.Delete(key); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	fmt.Println("local state cleared")
	return 0
}
