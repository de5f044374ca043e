package langid

import "errors"

// ErrPoolClosed is returned when Classify is called after Close.
var ErrPoolClosed = errors.New("langid: pool closed")
