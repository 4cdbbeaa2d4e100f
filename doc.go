/*
Package waypoint is an authoring backend for customer journeys: graphs of steps
(nodes) that collect properties, invoke functions, and move along guarded edges.

It keeps an editable, always-consistent journey model and a canvas that lays the
graph out and answers pan, zoom and selection gestures.

# Concept

A journey is edited through a session. Each session owns a model store that
applies every mutation atomically: keys stay unique, edges never loop or repeat,
and deleting an entity removes every reference to it. The canvas controller follows
the store and turns the current snapshot into a Scene that any renderer (SVG, PNG,
Mermaid) can draw.

# Key Features

  - Referential integrity: cascading deletes and rename propagation across functions.
  - Auto-derived variable mappings that stop tracking once the user edits them.
  - Deterministic grid layout with manual pins and zoom-to-pointer.
  - Pluggable repositories: Loam, files, Redis, SQLite, PostgreSQL or memory.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/waypoint"
		"github.com/aretw0/waypoint/pkg/domain"
		"github.com/aretw0/waypoint/pkg/store"
	)

	func main() {
		// Journeys are stored as documents under ./journeys
		editor, err := waypoint.New("./journeys")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		id, err := editor.Create(ctx, "Onboarding")
		if err != nil {
			log.Fatal(err)
		}

		_, err = editor.Edit(ctx, id, func(st *store.Store) error {
			ask, err := st.AddNode(domain.Node{Name: "Ask", Type: domain.NodeTypeInput})
			if err != nil {
				return err
			}
			done, err := st.AddNode(domain.Node{Name: "Done", Type: domain.NodeTypeDeadEnd})
			if err != nil {
				return err
			}
			_, err = st.AddEdge(domain.Edge{FromNodeID: ask.ID, ToNodeID: done.ID})
			return err
		})
		if err != nil {
			log.Fatal(err)
		}

		if err := editor.Save(ctx, id); err != nil {
			log.Fatal(err)
		}
	}
*/
package waypoint
