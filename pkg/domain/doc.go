/*
Package domain contains the core data model of the arbor reconciliation runtime.

It defines the immutable description of desired UI content (Element), the tagged
Kind variant that tells host tags, text and components apart, the effect tags the
committer applies, and the hook contract components use to keep local state.
This package is kept pure and free of host or persistence concerns, following
Hexagonal Architecture principles.

# Key Entities

  - Element: immutable (kind, props, children) description built with Build/H/C/Text.
  - Kind: Host(tag) | Text | Component, compared with Kind.Equal.
  - EffectTag: what the committer must do for a fiber (Placement, Update, Deletion).
  - Hooks: per-component state cells, typed through UseState.
  - Snapshot: serializable picture of a committed host tree.
*/
package domain
