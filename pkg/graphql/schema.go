// Package graphql exposes topology extraction and saved canvases as a
// GraphQL schema.
package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

// Extractor runs one topology extraction
type Extractor interface {
	Extract(ctx context.Context, opts topology.Options) (*topology.Result, error)
}

// Deps are the data sources the schema resolves against. Canvases may be
// nil, which removes the canvas fields and mutations.
type Deps struct {
	Extractor Extractor
	Reader    netbox.Reader
	Canvases  canvas.Store
	// Defaults is applied to every topology query before its arguments
	Defaults topology.Options
}

// view is a resolved topology with a device index for edge endpoints
type view struct {
	res  *topology.Result
	byID map[int64]topology.DeviceNode
}

func newView(res *topology.Result) *view {
	v := &view{res: res, byID: make(map[int64]topology.DeviceNode, len(res.Devices))}
	for _, d := range res.Devices {
		v.byID[d.ID] = d
	}
	return v
}

// edge is a connection resolved within its view
type edge struct {
	topology.Connection
	view *view
}

// field builds a field whose resolver reads from a source of type T.
// Sources of any other type resolve to null.
func field[T any](typ graphql.Output, get func(T) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			src, ok := p.Source.(T)
			if !ok {
				return nil, nil
			}
			return get(src), nil
		},
	}
}

func optionalInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return strconv.FormatInt(*p, 10)
}

// types holds the object types shared by queries and mutations
type types struct {
	siteRef    *graphql.Object
	device     *graphql.Object
	site       *graphql.Object
	connection *graphql.Object
	stats      *graphql.Object
	topology   *graphql.Object
	counts     *graphql.Object
	canvas     *graphql.Object
	deleted    *graphql.Object
}

func newTypes(limits *LimitConfig) *types {
	t := &types{}

	t.siteRef = graphql.NewObject(graphql.ObjectConfig{
		Name: "SiteRef",
		Fields: graphql.Fields{
			"id":   field(graphql.ID, func(s topology.SiteRef) any { return optionalInt64(s.ID) }),
			"name": field(graphql.String, func(s topology.SiteRef) any { return s.Name }),
			"slug": field(graphql.String, func(s topology.SiteRef) any { return s.Slug }),
		},
	})

	t.device = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Device",
		Description: "A classified NetBox device",
		Fields: graphql.Fields{
			"id":             field(graphql.NewNonNull(graphql.ID), func(d topology.DeviceNode) any { return strconv.FormatInt(d.ID, 10) }),
			"name":           field(graphql.String, func(d topology.DeviceNode) any { return d.Name }),
			"displayName":    field(graphql.String, func(d topology.DeviceNode) any { return d.DisplayName }),
			"category":       field(graphql.String, func(d topology.DeviceNode) any { return string(d.Type) }),
			"icon":           field(graphql.String, func(d topology.DeviceNode) any { return d.Icon }),
			"status":         field(graphql.String, func(d topology.DeviceNode) any { return d.Status }),
			"role":           field(graphql.String, func(d topology.DeviceNode) any { return d.Role }),
			"model":          field(graphql.String, func(d topology.DeviceNode) any { return d.DeviceType.Model }),
			"manufacturer":   field(graphql.String, func(d topology.DeviceNode) any { return d.DeviceType.Manufacturer }),
			"primaryIp":      field(graphql.String, func(d topology.DeviceNode) any { return d.PrimaryIP }),
			"interfaceCount": field(graphql.Int, func(d topology.DeviceNode) any { return d.InterfaceCount }),
			"site":           field(t.siteRef, func(d topology.DeviceNode) any { return d.Site }),
			"x": field(graphql.Float, func(d topology.DeviceNode) any {
				if d.Position == nil {
					return nil
				}
				return d.Position.X
			}),
			"y": field(graphql.Float, func(d topology.DeviceNode) any {
				if d.Position == nil {
					return nil
				}
				return d.Position.Y
			}),
		},
	})

	t.site = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Site",
		Description: "A site container and the devices drawn inside it",
		Fields: graphql.Fields{
			"id":          field(graphql.ID, func(s topology.SiteGroup) any { return optionalInt64(s.ID) }),
			"name":        field(graphql.String, func(s topology.SiteGroup) any { return s.Name }),
			"slug":        field(graphql.String, func(s topology.SiteGroup) any { return s.Slug }),
			"deviceCount": field(graphql.Int, func(s topology.SiteGroup) any { return s.DeviceCount }),
			"devices":     field(graphql.NewList(t.device), func(s topology.SiteGroup) any { return s.Devices }),
		},
	})

	endpoint := func(pick func(edge) int64) func(edge) any {
		return func(e edge) any {
			if d, ok := e.view.byID[pick(e)]; ok {
				return d
			}
			return nil
		}
	}
	t.connection = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Connection",
		Description: "A cable between two devices, or a logical link",
		Fields: graphql.Fields{
			"id":      field(graphql.NewNonNull(graphql.ID), func(e edge) any { return e.ID }),
			"cableId": field(graphql.ID, func(e edge) any {
				if e.CableID == 0 {
					return nil
				}
				return strconv.FormatInt(e.CableID, 10)
			}),
			"source":     field(graphql.ID, func(e edge) any { return strconv.FormatInt(e.Source, 10) }),
			"target":     field(graphql.ID, func(e edge) any { return strconv.FormatInt(e.Target, 10) }),
			"type":       field(graphql.String, func(e edge) any { return e.Type }),
			"status":     field(graphql.String, func(e edge) any { return e.Status }),
			"aInterface": field(graphql.String, func(e edge) any { return e.AInterface }),
			"bInterface": field(graphql.String, func(e edge) any { return e.BInterface }),
			"logical":    field(graphql.Boolean, func(e edge) any { return e.Logical }),
			"interSite":  field(graphql.Boolean, func(e edge) any { return e.InterSite }),
			"length": field(graphql.Float, func(e edge) any {
				if e.Length == nil {
					return nil
				}
				return *e.Length
			}),
			"sourceDevice": field(t.device, endpoint(func(e edge) int64 { return e.Source })),
			"targetDevice": field(t.device, endpoint(func(e edge) int64 { return e.Target })),
		},
	})

	t.stats = graphql.NewObject(graphql.ObjectConfig{
		Name: "TopologyStats",
		Fields: graphql.Fields{
			"totalDevices":     field(graphql.Int, func(s topology.Stats) any { return s.TotalDevices }),
			"totalSites":       field(graphql.Int, func(s topology.Stats) any { return s.TotalSites }),
			"totalConnections": field(graphql.Int, func(s topology.Stats) any { return s.TotalConnections }),
		},
	})

	t.topology = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Topology",
		Description: "One extraction: devices grouped into sites, plus the links between them",
		Fields: graphql.Fields{
			"devices": &graphql.Field{
				Type: graphql.NewList(t.device),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: -1},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, ok := p.Source.(*view)
					if !ok {
						return nil, nil
					}
					category, _ := p.Args["category"].(string)
					limit, _ := p.Args["limit"].(int)
					out := make([]topology.DeviceNode, 0, len(v.res.Devices))
					for _, d := range v.res.Devices {
						if category == "" || string(d.Type) == category {
							out = append(out, d)
						}
					}
					return truncate(out, applyLimit(limit, limits)), nil
				},
			},
			"sites": field(graphql.NewList(t.site), func(v *view) any { return v.res.Sites }),
			"connections": &graphql.Field{
				Type: graphql.NewList(t.connection),
				Args: graphql.FieldConfigArgument{
					"logical": &graphql.ArgumentConfig{Type: graphql.Boolean},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: -1},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, ok := p.Source.(*view)
					if !ok {
						return nil, nil
					}
					logical, filter := p.Args["logical"].(bool)
					limit, _ := p.Args["limit"].(int)
					out := make([]edge, 0, len(v.res.Connections))
					for _, c := range v.res.Connections {
						if !filter || c.Logical == logical {
							out = append(out, edge{Connection: c, view: v})
						}
					}
					return truncate(out, applyLimit(limit, limits)), nil
				},
			},
			"stats": field(t.stats, func(v *view) any { return v.res.Stats }),
			"error": field(graphql.String, func(v *view) any {
				if v.res.Error == "" {
					return nil
				}
				return v.res.Error
			}),
			"generatedAt": field(graphql.String, func(v *view) any { return v.res.GeneratedAt.Format(time.RFC3339) }),
		},
	})

	t.counts = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Counts",
		Description: "Table-level totals",
		Fields: graphql.Fields{
			"devices":          field(graphql.Int, func(c netbox.Counts) any { return c.Devices }),
			"devicesWithSites": field(graphql.Int, func(c netbox.Counts) any { return c.DevicesWithSites }),
			"sites":            field(graphql.Int, func(c netbox.Counts) any { return c.Sites }),
			"cables":           field(graphql.Int, func(c netbox.Counts) any { return c.Cables }),
			"interfaces":       field(graphql.Int, func(c netbox.Counts) any { return c.Interfaces }),
			"vlans":            field(graphql.Int, func(c netbox.Counts) any { return c.VLANs }),
		},
	})

	t.canvas = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Canvas",
		Description: "A saved topology with layout data",
		Fields: graphql.Fields{
			"id":           field(graphql.NewNonNull(graphql.ID), func(c *canvas.Canvas) any { return strconv.FormatInt(c.ID, 10) }),
			"name":         field(graphql.String, func(c *canvas.Canvas) any { return c.Name }),
			"description":  field(graphql.String, func(c *canvas.Canvas) any { return c.Description }),
			"topologyData": field(graphql.String, func(c *canvas.Canvas) any { return string(c.TopologyData) }),
			"created":      field(graphql.String, func(c *canvas.Canvas) any { return c.Created.Format(time.RFC3339) }),
			"lastUpdated":  field(graphql.String, func(c *canvas.Canvas) any { return c.LastUpdated.Format(time.RFC3339) }),
		},
	})

	t.deleted = graphql.NewObject(graphql.ObjectConfig{
		Name: "DeleteResult",
		Fields: graphql.Fields{
			"id":      field(graphql.ID, func(d deleteResult) any { return strconv.FormatInt(d.ID, 10) }),
			"deleted": field(graphql.Boolean, func(d deleteResult) any { return d.Deleted }),
		},
	})
	return t
}

func truncate[T any](s []T, limit int) []T {
	if limit >= 0 && limit < len(s) {
		return s[:limit]
	}
	return s
}

// GenerateSchema builds the query schema, plus canvas mutations when
// deps.Canvases is set. A nil limits uses DefaultLimitConfig.
func GenerateSchema(deps Deps, limits *LimitConfig) (graphql.Schema, error) {
	if deps.Extractor == nil || deps.Reader == nil {
		return graphql.Schema{}, errors.New("graphql: extractor and reader are required")
	}
	if limits == nil {
		limits = DefaultLimitConfig()
	}
	if err := ValidateLimitConfig(limits); err != nil {
		return graphql.Schema{}, err
	}

	t := newTypes(limits)
	r := &resolver{deps: deps, limits: limits}

	queryFields := graphql.Fields{
		"health": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return "ok", nil
			},
		},
		"topology": &graphql.Field{
			Type:        t.topology,
			Description: "Run one extraction",
			Args: graphql.FieldConfigArgument{
				"preset":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "dashboard"},
				"siteId":     &graphql.ArgumentConfig{Type: graphql.ID},
				"model":      &graphql.ArgumentConfig{Type: graphql.String},
				"limit":      &graphql.ArgumentConfig{Type: graphql.Int},
				"synthesize": &graphql.ArgumentConfig{Type: graphql.Boolean},
				"layout":     &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: r.topology,
		},
		"device": &graphql.Field{
			Type: t.device,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.device,
		},
		"counts": &graphql.Field{
			Type:    t.counts,
			Resolve: r.counts,
		},
	}
	if deps.Canvases != nil {
		queryFields["canvases"] = &graphql.Field{
			Type: graphql.NewList(t.canvas),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: -1},
			},
			Resolve: r.canvases,
		}
		queryFields["canvas"] = &graphql.Field{
			Type: t.canvas,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.canvas,
		}
	}

	config := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queryFields}),
	}
	if deps.Canvases != nil {
		config.Mutation = mutationType(t, r)
	}

	schema, err := graphql.NewSchema(config)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func parseID(p graphql.ResolveParams, name string) (int64, error) {
	raw, _ := p.Args[name].(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func marshalTopology(res *topology.Result) (json.RawMessage, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode topology: %w", err)
	}
	return data, nil
}
