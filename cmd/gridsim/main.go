package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/araddon/dateparse"

	"photo-grid/internal/database"
	"photo-grid/internal/indexer"
)

const (
	// Default timeout for database operations
	defaultTimeout = 5 * time.Minute
	// Default database directory path
	defaultDatabaseDir = "/database"

	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
	defaultSeedDays       = 30
	defaultSimulateSteps  = 20
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, "photos.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	if command != "watch" {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, defaultTimeout)
		defer cancelTimeout()
	}

	if err := run(ctx, db, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, db *database.Database, command string, args []string) error {
	switch command {
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("usage: gridsim import <dir>")
		}
		result, err := indexer.Import(ctx, db, args[0], indexer.DefaultParallelWalkerConfig())
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d photos in %v (%d skipped)\n", result.Imported, result.Duration.Round(time.Millisecond), result.Skipped)
	case "watch":
		if len(args) != 1 {
			return fmt.Errorf("usage: gridsim watch <dir>")
		}
		config := indexer.DefaultParallelWalkerConfig()
		if _, err := indexer.Import(ctx, db, args[0], config); err != nil {
			return err
		}
		fmt.Printf("Watching %s, press Ctrl+C to stop\n", args[0])
		return indexer.Watch(ctx, db, args[0], config, indexer.DefaultDebounce, func(r indexer.Result) {
			fmt.Printf("%s  imported %d photos (%d skipped)\n", time.Now().Format(time.TimeOnly), r.Imported, r.Skipped)
		})
	case "seed":
		if len(args) < 1 || len(args) > 3 {
			return fmt.Errorf("usage: gridsim seed <count> [days] [until]")
		}
		count, err := positiveArg(args[0], "count")
		if err != nil {
			return err
		}
		days := defaultSeedDays
		if len(args) >= 2 {
			if days, err = positiveArg(args[1], "days"); err != nil {
				return err
			}
		}
		until := time.Now()
		if len(args) == 3 {
			if until, err = parseUntil(args[2]); err != nil {
				return err
			}
		}
		if err := seedPhotos(ctx, db, count, days, until); err != nil {
			return err
		}
		fmt.Printf("Seeded %d photos over %d days up to %s\n", count, days, until.Format(time.DateOnly))
	case "sections":
		return listSections(ctx, db, os.Stdout)
	case "simulate":
		steps := defaultSimulateSteps
		if len(args) == 1 {
			var err error
			if steps, err = positiveArg(args[0], "steps"); err != nil {
				return err
			}
		}
		return simulate(ctx, db, viewportFromEnv(), steps, os.Stdout)
	case "minimap":
		return minimap(ctx, db, viewportFromEnv(), terminalWidth(), os.Stdout)
	default:
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // G705 - input is sanitized via allowlist in sanitizeCommand
		printUsage()
		os.Exit(1)
	}
	return nil
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func positiveArg(s, name string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return n, nil
}

// parseUntil accepts most common date notations, e.g. "2019-06-30" or
// "June 30, 2019".
func parseUntil(s string) (time.Time, error) {
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func printUsage() {
	fmt.Println("Photo Grid Simulator")
	fmt.Println("")
	fmt.Println("Usage: gridsim <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  import <dir>                - Import images from a directory")
	fmt.Println("  watch <dir>                 - Import a directory and re-import it on changes")
	fmt.Println("  seed <count> [days] [until] - Add synthetic photos")
	fmt.Println("  sections                    - List sections")
	fmt.Println("  simulate [steps]            - Scroll through the grid and report section loading")
	fmt.Println("  minimap                     - Draw section heights")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR    - Path to database directory (default: %s)\n", defaultDatabaseDir)
	fmt.Println("  INDEX_WORKERS   - Workers reading image headers during import (default: 2 per CPU, max 16)")
	fmt.Printf("  VIEWPORT_WIDTH  - Simulated viewport width (default: %d)\n", defaultViewportWidth)
	fmt.Printf("  VIEWPORT_HEIGHT - Simulated viewport height (default: %d)\n", defaultViewportHeight)
}
