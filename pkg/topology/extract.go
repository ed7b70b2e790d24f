package topology

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// Recorder receives extraction metrics
type Recorder interface {
	RecordExtraction(preset, status string, duration time.Duration, devices, connections int)
	RecordCableOutcome(outcome string, n int)
}

// Result.Error values for a degraded extraction. The underlying cause is
// logged and never returned to callers.
const (
	MsgSummariesOnly = "Device details are unavailable, showing device summaries only"
	MsgUnavailable   = "Topology data is unavailable"
)

// Result is one extracted topology. Records and Interfaces carry the raw
// NetBox records for callers that render their own shapes.
type Result struct {
	*Topology
	Debug *Debug `json:"debug,omitempty"`
	Error string `json:"error,omitempty"`

	Records     []netbox.Device    `json:"-"`
	Interfaces  []netbox.Interface `json:"-"`
	GeneratedAt time.Time          `json:"-"`
}

// Extractor builds topologies from a NetBox store
type Extractor struct {
	store    netbox.Reader
	logger   logging.Logger
	recorder Recorder
	now      func() time.Time
}

type ExtractorOption func(*Extractor)

func WithRecorder(r Recorder) ExtractorOption {
	return func(e *Extractor) { e.recorder = r }
}

func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) { e.now = now }
}

func NewExtractor(store netbox.Reader, logger logging.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &Extractor{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract loads devices and cables and assembles them into a topology.
//
// With opts.Fallback set, a failed device query degrades to a device-only
// topology built from summaries, and then to an empty one, with Result.Error
// set; a failed cable query keeps the devices. Without it those failures
// are returned.
func (e *Extractor) Extract(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx, e.logger).With(
		logging.Component("topology"),
		logging.String("preset", opts.Name),
	)
	timer := logging.StartTimer(logger, "topology extracted")

	res, err := e.extract(ctx, opts, logger)
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case res.Error != "":
		status = "degraded"
	}
	if e.recorder != nil {
		var devices, conns int
		if res != nil {
			devices, conns = res.Stats.TotalDevices, res.Stats.TotalConnections
		}
		e.recorder.RecordExtraction(opts.Name, status, timer.Elapsed(), devices, conns)
	}
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(
		logging.String("status", status),
		logging.Int("devices", res.Stats.TotalDevices),
		logging.Int("sites", res.Stats.TotalSites),
		logging.Int("connections", res.Stats.TotalConnections),
	)
	return res, nil
}

func (e *Extractor) extract(ctx context.Context, opts Options, logger logging.Logger) (*Result, error) {
	shape := e.store.Shape()
	var debug *Debug
	if opts.Debug {
		debug = newDebug(shape)
	}

	set, err := e.store.ListDevices(ctx, netbox.DeviceFilter{
		ID:            opts.DeviceID,
		Status:        opts.Status,
		SiteID:        opts.SiteID,
		ModelContains: opts.ModelContains,
		Limit:         opts.DeviceCap,
	})
	if err != nil {
		if !opts.Fallback || ctx.Err() != nil {
			return nil, fmt.Errorf("load devices: %w", err)
		}
		logger.Warn("device query failed, using summaries", logging.Error(err))
		return e.fallback(ctx, opts, logger), nil
	}
	for _, skipped := range set.Skipped {
		logger.Warn("device record degraded", logging.DeviceID(skipped.ID), logging.String("reason", skipped.Err))
	}
	if debug != nil {
		debug.recordDevices(set)
	}

	nodes := make([]DeviceNode, 0, len(set.Devices))
	ids := make([]int64, 0, len(set.Devices))
	for i := range set.Devices {
		nodes = append(nodes, NewDeviceNode(&set.Devices[i]))
		ids = append(ids, set.Devices[i].ID)
	}

	res := &Result{Records: set.Devices, Debug: debug, GeneratedAt: e.now().UTC()}

	conns, err := e.connections(ctx, opts, shape, ids, debug, logger)
	if err != nil {
		if !opts.Fallback || ctx.Err() != nil {
			return nil, fmt.Errorf("load cables: %w", err)
		}
		logger.Warn("cable query failed, continuing without connections", logging.Error(err))
		if debug != nil {
			debug.ConnectionError = err.Error()
		}
	}

	res.Topology = Assemble(nodes, conns, opts.Grouping)
	if opts.Synthesize && len(conns) == 0 {
		logical := Synthesize(res.Sites)
		res.Connections = append(res.Connections, logical...)
		res.recount()
		if debug != nil {
			debug.SyntheticLinks = len(logical)
		}
	}
	if debug != nil {
		debug.DevicesProcessed = len(res.Devices)
		debug.SitesCreated = len(res.Sites)
		debug.RealConnectionsFound = len(conns)
		debug.ConnectionSample = append(debug.ConnectionSample, res.Connections[:min(sampleConnections, len(res.Connections))]...)
	}

	if opts.IncludeInterfaces {
		ifaces, err := e.store.ListInterfaces(ctx, ids)
		if err != nil {
			if !opts.Fallback {
				return nil, fmt.Errorf("load interfaces: %w", err)
			}
			logger.Warn("interface query failed", logging.Error(err))
		}
		res.Interfaces = ifaces
	}

	if opts.Layout != "" {
		if err := res.ApplyLayout(opts.Layout); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// connections loads and resolves cables. The returned slice is never nil.
func (e *Extractor) connections(ctx context.Context, opts Options, shape netbox.SchemaShape, ids []int64, debug *Debug, logger logging.Logger) ([]Connection, error) {
	cables, err := e.store.ListCables(ctx, opts.CableCap)
	if err != nil {
		return []Connection{}, err
	}

	chain := ResolverFor(shape)
	resolver := NewCableResolver(chain, ids, opts.Strict)
	conns := []Connection{}
	outcomes := make(map[CableOutcome]int)
	for _, c := range cables {
		conn, outcome, ok := resolver.Resolve(c)
		outcomes[outcome]++
		if debug != nil {
			debug.recordCable(c, outcome, chain, resolver.set)
		}
		if !ok {
			logger.Debug("cable skipped", logging.CableID(c.ID), logging.Outcome(string(outcome)))
			continue
		}
		conns = append(conns, conn)
	}

	if e.recorder != nil {
		for outcome, n := range outcomes {
			e.recorder.RecordCableOutcome(string(outcome), n)
		}
	}
	if debug != nil {
		debug.TotalCablesFound = len(cables)
		debug.DeviceConnections = len(conns)
		debug.CableOutcomes = outcomes
		debug.MethodUsed = "cable_terminations"
		if len(conns) == 0 {
			debug.MethodUsed = "circuits"
			debug.CircuitConnections = e.circuitLinks(ctx, logger)
		}
	}
	return conns, nil
}

// circuitLinks counts circuits terminated on two or more sides
func (e *Extractor) circuitLinks(ctx context.Context, logger logging.Logger) int {
	terms, err := e.store.ListCircuitTerminations(ctx)
	if err != nil {
		logger.Warn("circuit termination query failed", logging.Error(err))
		return 0
	}
	sides := make(map[int64]int)
	for _, t := range terms {
		sides[t.CircuitID]++
	}
	n := 0
	for _, count := range sides {
		if count >= 2 {
			n++
		}
	}
	return n
}

// fallback builds a device-only topology from summaries, or an empty one
// when even those cannot be read.
func (e *Extractor) fallback(ctx context.Context, opts Options, logger logging.Logger) *Result {
	res := &Result{Error: MsgSummariesOnly, GeneratedAt: e.now().UTC()}
	summaries, err := e.store.ListDeviceSummaries(ctx, opts.DeviceCap)
	if err != nil {
		logger.Error("device summary query failed", logging.Error(err))
		res.Error = MsgUnavailable
		res.Topology = Empty()
		return res
	}
	nodes := make([]DeviceNode, 0, len(summaries))
	for i := range summaries {
		nodes = append(nodes, NewDeviceNode(&summaries[i]))
	}
	res.Records = summaries
	res.Topology = Assemble(nodes, nil, opts.Grouping)
	return res
}
