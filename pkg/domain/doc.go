/*
Package domain contains the core domain models of a waypoint journey.

A journey is a directed graph of steps (Nodes) joined by guarded transitions (Edges).
Some nodes invoke external operations (Functions) through declarative bindings
(NodeFunctionMappings), and everything refers to a shared, typed vocabulary (Properties).
This package is kept pure: no I/O, no persistence, no clocks. Mutation rules live in
package store, which is the only supported way to change a Journey.

# Key Entities

  - Journey: the aggregate root holding every collection plus header fields.
  - Property: a named, typed value. Keys are unique within a journey.
  - Node: a step, optionally pinned to a manual canvas position.
  - Function: an API or KAFKA operation with an ordered input/output contract.
  - NodeFunctionMapping: the binding of one function to one node.
  - Edge: a directed transition between two nodes.
  - Entries: ordered key/value pairs used for every map-shaped field.

Check reports the integrity violations of a journey without changing it, and Diff
describes what changed between two snapshots.
*/
package domain
