package graphql

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netcanvas/pkg/auth"
	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
)

// ErrForbidden is returned by mutations called with a read-only role
var ErrForbidden = errors.New("editor role required")

type deleteResult struct {
	ID      int64
	Deleted bool
}

func mutationType(t *types, r *resolver) *graphql.Object {
	canvasArgs := func(withID bool) graphql.FieldConfigArgument {
		args := graphql.FieldConfigArgument{
			"name": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.String),
			},
			"description": &graphql.ArgumentConfig{
				Type:         graphql.String,
				DefaultValue: "",
			},
			"topologyData": &graphql.ArgumentConfig{
				Type:        graphql.String,
				Description: "JSON object; defaults to {}",
			},
		}
		if withID {
			args["id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
		}
		return args
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCanvas": &graphql.Field{
				Type:    t.canvas,
				Args:    canvasArgs(false),
				Resolve: r.createCanvas,
			},
			"updateCanvas": &graphql.Field{
				Type:    t.canvas,
				Args:    canvasArgs(true),
				Resolve: r.updateCanvas,
			},
			"deleteCanvas": &graphql.Field{
				Type: t.deleted,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.deleteCanvas,
			},
			"saveTopology": &graphql.Field{
				Type:        t.canvas,
				Description: "Extract a preset and store the result as a new canvas",
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"preset":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "dashboard"},
					"layout":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.saveTopology,
			},
		},
	})
}

// authorize rejects callers whose token carries a read-only role. Requests
// without claims run with auth disabled and are allowed.
func authorize(p graphql.ResolveParams) error {
	if claims, ok := auth.FromContext(p.Context); ok && !auth.CanWrite(claims.Role) {
		return ErrForbidden
	}
	return nil
}

func canvasInput(args map[string]any) canvas.Input {
	in := canvas.Input{}
	in.Name, _ = args["name"].(string)
	in.Description, _ = args["description"].(string)
	if data, ok := args["topologyData"].(string); ok {
		in.TopologyData = json.RawMessage(data)
	}
	return in
}

func (r *resolver) createCanvas(p graphql.ResolveParams) (any, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	return r.deps.Canvases.Create(p.Context, canvasInput(p.Args))
}

func (r *resolver) updateCanvas(p graphql.ResolveParams) (any, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	id, err := parseID(p, "id")
	if err != nil {
		return nil, err
	}
	return r.deps.Canvases.Update(p.Context, id, canvasInput(p.Args))
}

func (r *resolver) deleteCanvas(p graphql.ResolveParams) (any, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	id, err := parseID(p, "id")
	if err != nil {
		return nil, err
	}
	if err := r.deps.Canvases.Delete(p.Context, id); err != nil {
		if errors.Is(err, canvas.ErrNotFound) {
			return deleteResult{ID: id}, nil
		}
		return nil, err
	}
	return deleteResult{ID: id, Deleted: true}, nil
}

func (r *resolver) saveTopology(p graphql.ResolveParams) (any, error) {
	if err := authorize(p); err != nil {
		return nil, err
	}
	v, err := r.extract(p)
	if err != nil {
		return nil, err
	}
	data, err := marshalTopology(v.res)
	if err != nil {
		return nil, err
	}
	in := canvasInput(p.Args)
	in.TopologyData = data
	c, err := r.deps.Canvases.Create(p.Context, in)
	if err != nil {
		return nil, fmt.Errorf("save topology: %w", err)
	}
	return c, nil
}
