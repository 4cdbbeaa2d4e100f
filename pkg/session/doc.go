/*
Package session keeps track of open journey edit sessions.

A journey has at most one editor at a time. The Manager enforces that inside a
process with a reference-counted mutex per journey and, when a
ports.DistributedLocker is configured, across replicas as well. Each Session owns
the journey's model store and its canvas controller; callers reach them through
Manager.WithSession so requests on the same journey run one after another.
*/
package session
