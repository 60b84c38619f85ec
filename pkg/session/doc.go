/*
Package session manages live containers: one rendered target per container ID.

The Manager serializes access to each container (a local mutex per ID, plus an
optional distributed lock for multi-replica deployments), flushes every pass a
callback schedules, and persists the committed snapshot to a ports.SnapshotStore
so the last frame of a container survives the process that rendered it.
*/
package session
