package search

import "errors"

// ErrRootNotFound is the single fatal pre-run condition: the search root
// does not exist or is not a directory. Every other filesystem fault during
// a run is swallowed per entry and never surfaces to the caller.
var ErrRootNotFound = errors.New("search root not found")
