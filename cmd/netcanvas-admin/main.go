package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/source"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	errStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

var commands = []command{
	{"populate-demo", "create demo sites, devices and cables", runPopulateDemo},
	{"populate-network", "create the enterprise network catalog", runPopulateNetwork},
	{"clear", "delete seeded records (--all or --demo-only)", runClear},
	{"inspect", "summarize the NetBox data", runInspect},
	{"cables", "analyze how cable terminations resolve", runCables},
	{"test-cable", "cable the first two devices together", runTestCable},
	{"snapshot", "export, import or upload snapshot files", runSnapshot},
	{"token", "mint an API bearer token", runToken},
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	name := os.Args[1]
	if name == "help" || name == "--help" || name == "-h" {
		printUsage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, c := range commands {
		if c.name != name {
			continue
		}
		err := c.run(ctx, os.Args[2:])
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render("error: ")+err.Error())
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Println(titleStyle.Render("netcanvas-admin") + " - NetBox seeding and inspection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  netcanvas-admin <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, c := range commands {
		fmt.Printf("  %-18s %s\n", c.name, c.summary)
	}
	fmt.Println()
	fmt.Println(`Use "netcanvas-admin <command> -h" for a command's options.`)
}

// sourceFlags selects the data a command works on
type sourceFlags struct {
	config   string
	database string
	snapshot string
}

func (f *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.config, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	fs.StringVar(&f.database, "database", "", "NetBox database URL (overrides config)")
	fs.StringVar(&f.snapshot, "snapshot", "", "read a snapshot file instead of the database")
}

func (f *sourceFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	if f.database != "" {
		cfg.Database.URL = f.database
	}
	if f.snapshot != "" {
		cfg.Database.URL = ""
		cfg.Snapshot.Path = f.snapshot
	}
	return cfg, nil
}

func (f *sourceFlags) open(ctx context.Context) (*source.Source, logging.Logger, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel())
	src, err := source.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return src, logger, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func heading(s string) {
	fmt.Println(headerStyle.Render(s))
}
