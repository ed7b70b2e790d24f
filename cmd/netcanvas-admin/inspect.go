package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/seed"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

func runInspect(ctx context.Context, args []string) error {
	fs := newFlagSet("inspect")
	var src sourceFlags
	src.register(fs)
	samples := fs.Int("samples", 10, "sample devices to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, _, err := src.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return inspect(ctx, s.Store, s.Desc, *samples)
}

func inspect(ctx context.Context, store netbox.Reader, desc string, samples int) error {
	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	statuses, err := store.StatusBreakdown(ctx, 10)
	if err != nil {
		return err
	}
	sites, err := store.TopSites(ctx, 10)
	if err != nil {
		return err
	}
	devices, err := store.ListDeviceSummaries(ctx, samples)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("NetBox inspection") + " " + dimStyle.Render(desc))
	fmt.Println(boxStyle.Render(strings.Join([]string{
		fmt.Sprintf("Schema shape     %s", store.Shape()),
		fmt.Sprintf("Devices          %d (%d with a site)", counts.Devices, counts.DevicesWithSites),
		fmt.Sprintf("Sites            %d", counts.Sites),
		fmt.Sprintf("Interfaces       %d", counts.Interfaces),
		fmt.Sprintf("Cables           %d", counts.Cables),
		fmt.Sprintf("VLANs            %d", counts.VLANs),
	}, "\n")))

	heading("Device status")
	keys := make([]string, 0, len(statuses))
	for k := range statuses {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return statuses[keys[i]] > statuses[keys[j]] })
	for _, k := range keys {
		fmt.Printf("  %-18s %d\n", k, statuses[k])
	}

	heading("Top sites")
	for _, site := range sites {
		fmt.Printf("  %-28s %d\n", site.Name, site.DeviceCount)
	}

	heading("Sample devices")
	for _, d := range devices {
		site := dimStyle.Render("(no site)")
		if d.Site != nil {
			site = d.Site.Name
		}
		fmt.Printf("  %-6d %-28s %-12s %s\n", d.ID, d.DisplayName(), d.Status, site)
	}
	return nil
}

func runCables(ctx context.Context, args []string) error {
	fs := newFlagSet("cables")
	var src sourceFlags
	src.register(fs)
	limit := fs.Int("limit", 20, "cables to analyze (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, _, err := src.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return analyzeCables(ctx, s.Store, *limit)
}

func analyzeCables(ctx context.Context, store netbox.Reader, limit int) error {
	cables, err := store.ListCables(ctx, limit)
	if err != nil {
		return err
	}
	resolver := topology.NewCableResolver(topology.ResolverFor(store.Shape()), nil, false)

	heading(fmt.Sprintf("Cable analysis (%d cables, shape %s)", len(cables), store.Shape()))
	outcomes := make(map[topology.CableOutcome]int)
	for _, c := range cables {
		_, outcome, ok := resolver.Resolve(c)
		outcomes[outcome]++
		style := okStyle
		if !ok {
			style = warnStyle
		}
		fmt.Printf("  cable %-6d %-10s %s\n", c.ID, c.Type, style.Render(string(outcome)))
		for _, t := range c.A {
			fmt.Printf("    A  %s\n", t.Describe())
		}
		for _, t := range c.B {
			fmt.Printf("    B  %s\n", t.Describe())
		}
	}

	heading("Outcomes")
	for _, o := range topology.Outcomes {
		if n := outcomes[o]; n > 0 {
			fmt.Printf("  %-14s %d\n", o, n)
		}
	}
	return nil
}

func runTestCable(ctx context.Context, args []string) error {
	fs := newFlagSet("test-cable")
	var src sourceFlags
	src.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, logger, err := src.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.PG == nil {
		_, err := s.TxRunner()
		return err
	}

	link, err := seed.LinkFirstDevices(ctx, s.PG, logger)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("created cable %d", link.CableID)) +
		fmt.Sprintf(": %s:%s <-> %s:%s", link.ADevice, link.AInterface, link.BDevice, link.BInterface))

	return analyzeCables(ctx, s.Store, 10)
}
