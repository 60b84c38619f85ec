package domain

import "errors"

// ErrHookMismatch is matched (errors.Is) by errors reporting a component whose
// hook cell count differs from its previous render.
var ErrHookMismatch = errors.New("hook count mismatch")

// ErrNoHost is returned when a runtime is created without a host environment.
var ErrNoHost = errors.New("host environment is required")

// ErrContainerNotFound is returned when a container ID is unknown to a session manager.
var ErrContainerNotFound = errors.New("container not found")

// ErrSnapshotNotFound is returned when a snapshot cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidTree is returned when a tree document cannot be turned into elements.
var ErrInvalidTree = errors.New("invalid tree document")
