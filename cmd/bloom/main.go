// bloom is a merge puzzle for the terminal: drop flowers into a jar, pair
// equal ones to grow them and keep the stack below the line.
//
// Usage:
//
//	bloom list                  - List available modes
//	bloom play <mode>           - Play a mode
//	bloom menu                  - Start menu to pick modes interactively
//	bloom serve                 - Start SSH server for remote play
//	bloom scores <mode>         - Show high scores for a mode
//	bloom skin <tier> [asset]   - Show or equip the skin of a tier
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Set database path (default: ~/.bloom/scores.db)
//	--log-file <path>   - Write logs to a file (the game owns the terminal)
//	--log-level <lvl>   - debug, info, warn or error (default: warn)
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import the game to register its modes
	_ "github.com/vovakirdan/bloom/internal/games/bloom"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogFile  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bloom",
	Short: "Bloom - a merge puzzle in your terminal",
	Long: `Bloom is a terminal merge puzzle. Drop flowers into the jar; two of
the same kind that touch merge into the next, larger kind. Keep the stack
below the dashed line and grow the largest bloom.

Available commands:
  list     - Show all modes
  play     - Play a mode directly
  menu     - Interactive mode picker
  serve    - Start SSH server for remote play
  scores   - View high scores
  skin     - Show or equip tier skins

Examples:
  bloom list
  bloom play classic
  bloom play speed --difficulty hard
  bloom menu
  bloom serve --ssh :2222
  bloom scores speed`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.bloom/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(skinCmd)
}

// newLogger builds the logger for terminal commands. The TUI owns the
// screen, so without --log-file everything is discarded. The returned
// closer must be called on exit.
func newLogger(prefix string) (*log.Logger, func()) {
	var w io.Writer = io.Discard
	closer := func() {}

	if flagLogFile != "" {
		path := expandHome(flagLogFile)
		//nolint:errcheck // Open below reports the real problem
		os.MkdirAll(filepath.Dir(path), 0o755)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file: %v\n", err)
		} else {
			w = f
			closer = func() { f.Close() }
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger, closer
}

// expandHome resolves a leading ~ against the home directory.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
