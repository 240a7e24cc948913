package application

import "errors"

// ErrConnectivity means the initial store health check failed; the run
// aborts before any API call is made.
var ErrConnectivity = errors.New("store connectivity check failed")
