/*
Package store implements the journey model store: the single owner of a Journey being
edited and the only place where it changes.

Every successful operation builds a new snapshot (the previous one is never touched),
stamps UpdatedAt and notifies observers with the old and new pointers, so consumers can
diff by reference. A rejected operation returns an error wrapping one of the domain
sentinels and leaves the snapshot as it was.

	s := store.New()
	a, _ := s.AddNode(domain.Node{Name: "A", Type: domain.NodeTypeInput})
	b, _ := s.AddNode(domain.Node{Name: "B", Type: domain.NodeTypeLoader})
	_, err := s.AddEdge(domain.Edge{FromNodeID: a.ID, ToNodeID: b.ID})

A Store is not safe for concurrent use. Hosts with several writers serialize access
through package session.
*/
package store
