package eventstream

import "errors"

// ErrNilConversionEvent indicates a nil conversion event payload was provided to a publisher.
var ErrNilConversionEvent = errors.New("nil conversion event")
