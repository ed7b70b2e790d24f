package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/seed"
)

type demoFlags struct {
	src            sourceFlags
	sites          int
	devicesPerSite int
}

func parseDemoFlags(args []string) (*demoFlags, error) {
	fs := newFlagSet("populate-demo")
	f := &demoFlags{}
	f.src.register(fs)
	fs.IntVar(&f.sites, "sites", 2, fmt.Sprintf("number of demo sites (1-%d)", seed.MaxDemoSites))
	fs.IntVar(&f.devicesPerSite, "devices-per-site", 10, fmt.Sprintf("devices per site (1-%d)", seed.MaxDemoDevicesPerSite))
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func runPopulateDemo(ctx context.Context, args []string) error {
	f, err := parseDemoFlags(args)
	if err != nil {
		return err
	}
	plan, err := seed.DemoPlan(f.sites, f.devicesPerSite)
	if err != nil {
		return err
	}
	return populate(ctx, &f.src, plan)
}

func runPopulateNetwork(ctx context.Context, args []string) error {
	fs := newFlagSet("populate-network")
	var src sourceFlags
	src.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return populate(ctx, &src, seed.NetworkPlan())
}

func populate(ctx context.Context, flags *sourceFlags, plan *seed.Plan) error {
	src, logger, err := flags.open(ctx)
	if err != nil {
		return err
	}
	defer src.Close()
	runner, err := src.TxRunner()
	if err != nil {
		return err
	}

	report, err := seed.Apply(ctx, runner, plan, logger)
	if err != nil {
		return err
	}

	heading(fmt.Sprintf("Applied %s plan", report.Plan))
	for i := len(netbox.DeletionOrder) - 1; i >= 0; i-- {
		kind := netbox.DeletionOrder[i]
		t, ok := report.Kinds[kind]
		if !ok {
			continue
		}
		fmt.Printf("  %-22s %s %s\n", kind,
			okStyle.Render(fmt.Sprintf("%5d created", t.Created)),
			dimStyle.Render(fmt.Sprintf("%5d existing", t.Existing)))
	}
	return nil
}

func runClear(ctx context.Context, args []string) error {
	fs := newFlagSet("clear")
	var src sourceFlags
	src.register(fs)
	all := fs.Bool("all", false, "delete every record netcanvas seeds")
	demoOnly := fs.Bool("demo-only", false, "delete only demo sites and their dependents")
	force := fs.Bool("force", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var scope seed.Scope
	switch {
	case *all == *demoOnly:
		return errors.New("clear needs exactly one of --all or --demo-only")
	case *all:
		scope = seed.ScopeAll
	default:
		scope = seed.ScopeDemo
	}

	if scope == seed.ScopeAll && !*force {
		ok, err := confirm(os.Stdin, "This deletes ALL devices, sites, cables and catalog records. Type 'yes' to continue: ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(warnStyle.Render("aborted"))
			return nil
		}
	}

	s, logger, err := src.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	runner, err := s.TxRunner()
	if err != nil {
		return err
	}

	deleted, err := seed.Clear(ctx, runner, scope, logger)
	if err != nil {
		return err
	}
	heading(fmt.Sprintf("Cleared (%s)", scope))
	var total int64
	for _, d := range deleted {
		total += d.Count
		style := dimStyle
		if d.Count > 0 {
			style = okStyle
		}
		fmt.Printf("  %-22s %s\n", d.Kind, style.Render(fmt.Sprintf("%6d", d.Count)))
	}
	fmt.Printf("  %-22s %6d\n", "total", total)
	return nil
}

func confirm(in io.Reader, prompt string) (bool, error) {
	fmt.Print(warnStyle.Render(prompt))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
}
