package manager

import "errors"

// ErrModelNotFound is returned by [Manager.Get] when the registry has no
// descriptor for the requested language pair.
var ErrModelNotFound = errors.New("manager: model not found")
