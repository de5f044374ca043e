package orchestrator

import "errors"

// ErrSrcLangLengthMismatch is returned when an explicit src_lang list's
// length does not match the number of source items.
var ErrSrcLangLengthMismatch = errors.New("orchestrator: src_lang list length must match src list length")
