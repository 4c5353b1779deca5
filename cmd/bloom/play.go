package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bloom/internal/core"
	"github.com/vovakirdan/bloom/internal/games/bloom"
	"github.com/vovakirdan/bloom/internal/platform/tui"
	"github.com/vovakirdan/bloom/internal/registry"
	"github.com/vovakirdan/bloom/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play <mode>",
	Short: "Play a mode",
	Long: `Start playing the specified mode.

Controls:
  Left/Right, A/D  - Move the held flower
  Space/Down       - Drop
  P                - Pause
  R                - Restart
  Enter            - Play again / next round
  Esc              - Pause, then leave
  Ctrl+S           - Save a screenshot to ~/.bloom/screenshots
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Longer speed countdown, longer combo window, slower spawns
  normal - The tuning from the config file
  hard   - Shorter countdown, shorter combo window, faster spawns

Examples:
  bloom play classic
  bloom play speed --difficulty easy
  bloom play classic --config ./my-bloom.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	menuCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	menuCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
}

func runPlay(_ *cobra.Command, args []string) {
	modeID := args[0]

	if !registry.Exists(modeID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", modeID)
		fmt.Fprintln(os.Stderr, "Run 'bloom list' to see available modes.")
		os.Exit(1)
	}

	logger, closeLog := newLogger("bloom")
	defer closeLog()

	applyGameFlags()
	store := openStore(logger)
	cfg := terminalConfig()

	game, err := registry.Create(modeID, tui.NewServices(store, logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	_, runErr := tui.Run(game, cfg)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// applyGameFlags hands --config and --difficulty to the game package
// before any game is created.
func applyGameFlags() {
	bloom.SetConfigPath(flagConfig)
	bloom.SetDifficultyPreset(flagDifficulty)
}

// openStore opens the scores database. Games still run without one.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("could not open scores database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// terminalConfig builds the runtime config from the flags and the
// current terminal size.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
