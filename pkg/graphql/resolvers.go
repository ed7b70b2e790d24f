package graphql

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

type resolver struct {
	deps   Deps
	limits *LimitConfig
}

// options turns topology arguments into extraction options
func (r *resolver) options(args map[string]any) (topology.Options, error) {
	preset, _ := args["preset"].(string)
	limit, _ := args["limit"].(int)
	opts, err := topology.Preset(preset, limit)
	if err != nil {
		return opts, err
	}
	if r.deps.Defaults.Grouping != "" {
		opts.Grouping = r.deps.Defaults.Grouping
	}
	opts.Synthesize = r.deps.Defaults.Synthesize
	opts.Layout = r.deps.Defaults.Layout

	if raw, ok := args["siteId"].(string); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid siteId %q", raw)
		}
		opts.SiteID = &id
	}
	if model, ok := args["model"].(string); ok {
		opts.ModelContains = model
	}
	if limit > 0 && preset != "api" {
		opts.DeviceCap = min(limit, topology.MaxAPIDevices)
	}
	if synthesize, ok := args["synthesize"].(bool); ok {
		opts.Synthesize = synthesize
	}
	if name, ok := args["layout"].(string); ok {
		opts.Layout = name
	}
	return opts, nil
}

func (r *resolver) extract(p graphql.ResolveParams) (*view, error) {
	opts, err := r.options(p.Args)
	if err != nil {
		return nil, err
	}
	res, err := r.deps.Extractor.Extract(p.Context, opts)
	if err != nil {
		return nil, errors.New("failed to generate topology data")
	}
	return newView(res), nil
}

func (r *resolver) topology(p graphql.ResolveParams) (any, error) {
	return r.extract(p)
}

// device runs an API extraction filtered to the one id
func (r *resolver) device(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p, "id")
	if err != nil {
		return nil, err
	}
	opts := topology.APIOptions(1)
	opts.DeviceID = &id
	res, err := r.deps.Extractor.Extract(p.Context, opts)
	if err != nil {
		return nil, errors.New("failed to generate topology data")
	}
	if len(res.Devices) == 0 {
		return nil, nil
	}
	return res.Devices[0], nil
}

func (r *resolver) counts(p graphql.ResolveParams) (any, error) {
	counts, err := r.deps.Reader.Counts(p.Context)
	if err != nil {
		return nil, errors.New("count query failed")
	}
	return counts, nil
}

func (r *resolver) canvases(p graphql.ResolveParams) (any, error) {
	list, err := r.deps.Canvases.List(p.Context)
	if err != nil {
		return nil, err
	}
	limit, _ := p.Args["limit"].(int)
	list = truncate(list, applyLimit(limit, r.limits))
	out := make([]*canvas.Canvas, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out, nil
}

func (r *resolver) canvas(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p, "id")
	if err != nil {
		return nil, err
	}
	c, err := r.deps.Canvases.Get(p.Context, id)
	if errors.Is(err, canvas.ErrNotFound) {
		return nil, nil
	}
	return c, err
}
