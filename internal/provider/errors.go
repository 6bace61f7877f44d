package provider

import "errors"

// ErrUnavailable signals that the data source is temporarily inaccessible
// (for example, the platform health store is locked). The engine defers the
// session and retries when the availability monitor reports the source back.
var ErrUnavailable = errors.New("data source temporarily unavailable")
