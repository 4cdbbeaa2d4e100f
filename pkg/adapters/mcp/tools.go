package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/validator"
	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/aretw0/waypoint/pkg/store"
	"github.com/mark3labs/mcp-go/mcp"
)

type journeyArgs struct {
	JourneyID string `json:"journey_id"`
}

type createArgs struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type activeArgs struct {
	journeyArgs
	Active bool `json:"active"`
}

type propertyArgs struct {
	journeyArgs
	PropertyID          string  `json:"property_id"`
	Key                 *string `json:"key"`
	Type                *string `json:"type"`
	ValidationCondition *string `json:"validation_condition"`
}

type nodeArgs struct {
	journeyArgs
	NodeID      string    `json:"node_id"`
	Name        *string   `json:"name"`
	Type        *string   `json:"type"`
	Description *string   `json:"description"`
	Properties  *[]string `json:"properties"`
	X           *float64  `json:"x"`
	Y           *float64  `json:"y"`
}

type functionArgs struct {
	journeyArgs
	FunctionID string         `json:"function_id"`
	Function   map[string]any `json:"function"`
}

type mappingArgs struct {
	journeyArgs
	MappingID  string `json:"mapping_id"`
	NodeID     string `json:"node_id"`
	FunctionID string `json:"function_id"`
	Name       string `json:"name"`
	Condition  string `json:"condition"`
}

type edgeArgs struct {
	journeyArgs
	EdgeID              string `json:"edge_id"`
	FromNodeID          string `json:"from_node_id"`
	ToNodeID            string `json:"to_node_id"`
	ValidationCondition string `json:"validation_condition"`
}

func journeyID() mcp.ToolOption {
	return mcp.WithString("journey_id", mcp.Required(), mcp.Description("Id of an open journey"))
}

// edit runs fn on the store of an open journey.
func (s *Server) edit(ctx context.Context, id string, fn func(st *store.Store) (any, error)) (any, error) {
	var out any
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		var err error
		out, err = fn(sess.Store)
		return err
	})
	return out, err
}

func (s *Server) snapshot(ctx context.Context, id string) (*domain.Journey, error) {
	var j *domain.Journey
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		j = sess.Store.Snapshot()
		return nil
	})
	return j, err
}

func (s *Server) registerTools() {
	s.registerSessionTools()
	s.registerPropertyTools()
	s.registerNodeTools()
	s.registerFunctionTools()
	s.registerEdgeTools()
}

func (s *Server) registerSessionTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_journeys",
		mcp.WithDescription("List stored journeys."),
	), handle(s.logger, "list_journeys", func(ctx context.Context, _ struct{}) (any, error) {
		return s.sessions.List(ctx)
	}))

	s.mcpServer.AddTool(mcp.NewTool("create_journey",
		mcp.WithDescription("Start editing a new, empty journey. Returns its snapshot."),
		mcp.WithString("name", mcp.Description("Journey name; required before saving")),
		mcp.WithString("description"),
	), handle(s.logger, "create_journey", func(ctx context.Context, args createArgs) (any, error) {
		sess, err := s.sessions.Create(ctx)
		if err != nil {
			return nil, err
		}
		return s.edit(ctx, sess.JourneyID, func(st *store.Store) (any, error) {
			st.UpdateDetails(store.DetailsPatch{Name: &args.Name, Description: &args.Description})
			return st.Snapshot(), nil
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("open_journey",
		mcp.WithDescription("Load a stored journey for editing. Fails if someone else is editing it."),
		journeyID(),
	), handle(s.logger, "open_journey", func(ctx context.Context, args journeyArgs) (any, error) {
		if _, err := s.sessions.Open(ctx, args.JourneyID); err != nil {
			return nil, err
		}
		return s.snapshot(ctx, args.JourneyID)
	}))

	s.mcpServer.AddTool(mcp.NewTool("get_journey",
		mcp.WithDescription("Return the current snapshot of an open journey."),
		journeyID(),
	), handle(s.logger, "get_journey", func(ctx context.Context, args journeyArgs) (any, error) {
		return s.snapshot(ctx, args.JourneyID)
	}))

	s.mcpServer.AddTool(mcp.NewTool("save_journey",
		mcp.WithDescription("Persist an open journey."),
		journeyID(),
	), handle(s.logger, "save_journey", func(ctx context.Context, args journeyArgs) (any, error) {
		if err := s.sessions.Save(ctx, args.JourneyID); err != nil {
			return nil, err
		}
		return "saved " + args.JourneyID, nil
	}))

	s.mcpServer.AddTool(mcp.NewTool("close_journey",
		mcp.WithDescription("Stop editing a journey. Unsaved changes are discarded."),
		journeyID(),
	), handle(s.logger, "close_journey", func(ctx context.Context, args journeyArgs) (any, error) {
		if err := s.sessions.Close(ctx, args.JourneyID); err != nil {
			return nil, err
		}
		return "closed " + args.JourneyID, nil
	}))

	s.mcpServer.AddTool(mcp.NewTool("set_active",
		mcp.WithDescription("Activate or deactivate a journey."),
		journeyID(),
		mcp.WithBoolean("active", mcp.Required()),
	), handle(s.logger, "set_active", func(ctx context.Context, args activeArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			st.SetActive(args.Active)
			return st.Snapshot().Summarize(), nil
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("validate_journey",
		mcp.WithDescription("Check referential integrity and lint an open journey."),
		journeyID(),
	), handle(s.logger, "validate_journey", func(ctx context.Context, args journeyArgs) (any, error) {
		j, err := s.snapshot(ctx, args.JourneyID)
		if err != nil {
			return nil, err
		}
		return validator.Validate(j), nil
	}))

	s.mcpServer.AddTool(mcp.NewTool("render_mermaid",
		mcp.WithDescription("Render an open journey as a Mermaid flowchart."),
		journeyID(),
	), handle(s.logger, "render_mermaid", func(ctx context.Context, args journeyArgs) (any, error) {
		j, err := s.snapshot(ctx, args.JourneyID)
		if err != nil {
			return nil, err
		}
		return graph.GenerateMermaid(j, nil), nil
	}))
}

func (s *Server) registerPropertyTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_property",
		mcp.WithDescription("Add a property to the journey vocabulary. Keys are unique."),
		journeyID(),
		mcp.WithString("key", mcp.Required()),
		mcp.WithString("type", mcp.Required(), mcp.Enum("STRING", "NUMBER", "BOOLEAN", "DATE", "TIMESTAMP", "RANGE", "LIST", "MAP")),
		mcp.WithString("validation_condition"),
	), handle(s.logger, "add_property", func(ctx context.Context, args propertyArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			var key, typ, cond string
			if args.Key != nil {
				key = *args.Key
			}
			if args.Type != nil {
				typ = *args.Type
			}
			if args.ValidationCondition != nil {
				cond = *args.ValidationCondition
			}
			return st.AddProperty(key, domain.PropertyType(typ), cond)
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("update_property",
		mcp.WithDescription("Edit a property. Renaming a key updates every function that uses it."),
		journeyID(),
		mcp.WithString("property_id", mcp.Required()),
		mcp.WithString("key"),
		mcp.WithString("type"),
		mcp.WithString("validation_condition"),
	), handle(s.logger, "update_property", func(ctx context.Context, args propertyArgs) (any, error) {
		patch := store.PropertyPatch{Key: args.Key, ValidationCondition: args.ValidationCondition}
		if args.Type != nil {
			t := domain.PropertyType(*args.Type)
			patch.Type = &t
		}
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			if err := st.UpdateProperty(args.PropertyID, patch); err != nil {
				return nil, err
			}
			p, _ := st.Snapshot().Property(args.PropertyID)
			return p, nil
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("delete_property",
		mcp.WithDescription("Delete a property and every reference to it."),
		journeyID(),
		mcp.WithString("property_id", mcp.Required()),
	), handle(s.logger, "delete_property", func(ctx context.Context, args propertyArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return "deleted " + args.PropertyID, st.DeleteProperty(args.PropertyID)
		})
	}))
}

func (s *Server) registerNodeTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a step to the journey graph."),
		journeyID(),
		mcp.WithString("name", mcp.Required()),
		mcp.WithString("type", mcp.Required(), mcp.Enum("input", "loader", "dead_end")),
		mcp.WithString("description"),
		mcp.WithArray("properties", mcp.Description("Property ids collected or used by the step"), mcp.WithStringItems()),
	), handle(s.logger, "add_node", func(ctx context.Context, args nodeArgs) (any, error) {
		n := domain.Node{X: args.X, Y: args.Y}
		if args.Name != nil {
			n.Name = *args.Name
		}
		if args.Type != nil {
			n.Type = domain.NodeType(*args.Type)
		}
		if args.Description != nil {
			n.Description = *args.Description
		}
		if args.Properties != nil {
			n.Properties = *args.Properties
		}
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return st.AddNode(n)
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("update_node",
		mcp.WithDescription("Edit a step. Giving x and y pins it on the canvas."),
		journeyID(),
		mcp.WithString("node_id", mcp.Required()),
		mcp.WithString("name"),
		mcp.WithString("type", mcp.Enum("input", "loader", "dead_end")),
		mcp.WithString("description"),
		mcp.WithArray("properties", mcp.WithStringItems()),
		mcp.WithNumber("x"),
		mcp.WithNumber("y"),
	), handle(s.logger, "update_node", func(ctx context.Context, args nodeArgs) (any, error) {
		patch := store.NodePatch{
			Name:        args.Name,
			Description: args.Description,
			Properties:  args.Properties,
			X:           args.X,
			Y:           args.Y,
		}
		if args.Type != nil {
			t := domain.NodeType(*args.Type)
			patch.Type = &t
		}
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			if err := st.UpdateNode(args.NodeID, patch); err != nil {
				return nil, err
			}
			n, _ := st.Snapshot().Node(args.NodeID)
			return n, nil
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a step with its edges and mappings."),
		journeyID(),
		mcp.WithString("node_id", mcp.Required()),
	), handle(s.logger, "delete_node", func(ctx context.Context, args nodeArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return "deleted " + args.NodeID, st.DeleteNode(args.NodeID)
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("describe_node",
		mcp.WithDescription("Show a step with its properties, bound functions and edges."),
		journeyID(),
		mcp.WithString("node_id", mcp.Required()),
	), handle(s.logger, "describe_node", func(ctx context.Context, args nodeArgs) (any, error) {
		j, err := s.snapshot(ctx, args.JourneyID)
		if err != nil {
			return nil, err
		}
		d, ok := canvas.Describe(j, args.NodeID)
		if !ok {
			return nil, fmt.Errorf("%w: node %q", domain.ErrNotFound, args.NodeID)
		}
		return d, nil
	}))
}

func (s *Server) registerFunctionTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_function",
		mcp.WithDescription("Add a function. The object uses the journey JSON shape (referenceId, name, type, config, inputProperties, outputProperties)."),
		journeyID(),
		mcp.WithObject("function", mcp.Required()),
	), handle(s.logger, "add_function", func(ctx context.Context, args functionArgs) (any, error) {
		raw, err := json.Marshal(args.Function)
		if err != nil {
			return nil, err
		}
		var fn domain.Function
		if err := json.Unmarshal(raw, &fn); err != nil {
			return nil, fmt.Errorf("%w: function: %v", domain.ErrInvalidValue, err)
		}
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return st.AddFunction(fn)
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("delete_function",
		mcp.WithDescription("Delete a function and the mappings that invoke it."),
		journeyID(),
		mcp.WithString("function_id", mcp.Required()),
	), handle(s.logger, "delete_function", func(ctx context.Context, args functionArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return "deleted " + args.FunctionID, st.DeleteFunction(args.FunctionID)
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("add_mapping",
		mcp.WithDescription("Bind a function to a node. Variable mappings are derived from the function contract."),
		journeyID(),
		mcp.WithString("node_id", mcp.Required()),
		mcp.WithString("function_id", mcp.Required()),
		mcp.WithString("name"),
		mcp.WithString("condition"),
	), handle(s.logger, "add_mapping", func(ctx context.Context, args mappingArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			fn, ok := st.Snapshot().Function(args.FunctionID)
			if !ok {
				return nil, fmt.Errorf("%w: function %q", domain.ErrDanglingReference, args.FunctionID)
			}
			draft := store.NewMappingDraft(args.NodeID)
			draft.SetDetails(args.Name, "", args.Condition)
			draft.SelectFunction(fn)
			return st.CommitDraft(draft)
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("delete_mapping",
		mcp.WithDescription("Remove a node-function binding."),
		journeyID(),
		mcp.WithString("mapping_id", mcp.Required()),
	), handle(s.logger, "delete_mapping", func(ctx context.Context, args mappingArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return "deleted " + args.MappingID, st.DeleteMapping(args.MappingID)
		})
	}))
}

func (s *Server) registerEdgeTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_edge",
		mcp.WithDescription("Connect two steps. Self-loops and duplicate pairs are rejected."),
		journeyID(),
		mcp.WithString("from_node_id", mcp.Required()),
		mcp.WithString("to_node_id", mcp.Required()),
		mcp.WithString("validation_condition"),
	), handle(s.logger, "add_edge", func(ctx context.Context, args edgeArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return st.AddEdge(domain.Edge{
				FromNodeID:          args.FromNodeID,
				ToNodeID:            args.ToNodeID,
				ValidationCondition: args.ValidationCondition,
			})
		})
	}))

	s.mcpServer.AddTool(mcp.NewTool("delete_edge",
		mcp.WithDescription("Remove an edge."),
		journeyID(),
		mcp.WithString("edge_id", mcp.Required()),
	), handle(s.logger, "delete_edge", func(ctx context.Context, args edgeArgs) (any, error) {
		return s.edit(ctx, args.JourneyID, func(st *store.Store) (any, error) {
			return "deleted " + args.EdgeID, st.DeleteEdge(args.EdgeID)
		})
	}))
}
