/*
Package observability provides the Prometheus instrumentation for waypoint.

Metrics are registered on a caller-supplied registry so that several editors (or tests)
can live in one process. The HTTP adapter exposes the registry at /metrics.
*/
package observability
