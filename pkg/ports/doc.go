/*
Package ports defines the driven ports (interfaces) of the arbor runtime.

These interfaces decouple the reconciliation core from the host environment that
owns the visual nodes, from whatever grants idle time, and from persistence.

# Key Interfaces

  - Host: node creation, attribute and listener application, structural edits.
  - IdleScheduler / Deadline: the idle-time primitive the scheduler is driven by.
  - SnapshotStore: persists committed host trees per container.
  - ViewLoader: retrieves element trees by ID (files, repositories).
  - DistributedLocker: coordinates container access across replicas.
*/
package ports
