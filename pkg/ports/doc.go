/*
Package ports defines the driven ports (interfaces) around the journey core.

The store and canvas never perform I/O. Hosts plug these interfaces in to persist
journeys, list the remote function catalog and coordinate editors across replicas.

# Key Interfaces

  - JourneyStore: Persists and loads whole journey snapshots.
  - FunctionCatalog: Lists the functions and journeys known to the remote catalog.
  - DistributedLocker: Provides distributed locking so that a journey has one editor at a time.
*/
package ports
