package arbor

import _ "embed"

// Version is the release of the arbor module, as recorded in the VERSION file.
//
//go:embed VERSION
var Version string
