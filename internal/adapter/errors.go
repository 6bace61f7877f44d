package adapter

import "errors"

// Sentinel transport errors. mapHTTPError translates status codes into
// these so the sync engine never inspects raw status codes itself.
var (
	// ErrUnauthorized is returned on 401 responses. In token mode it
	// prompts a single-flight refresh and one retry; in API-key mode it is
	// terminal.
	ErrUnauthorized = errors.New("remote unauthorized")

	// ErrRejected is returned on non-401 4xx responses: the endpoint has
	// permanently refused the payload and re-sending the same bytes will
	// never succeed.
	ErrRejected = errors.New("remote rejected payload")

	// ErrRemoteUnavailable is returned on 5xx responses and on
	// network-level failures; the request may succeed if retried later.
	ErrRemoteUnavailable = errors.New("remote unavailable")
)
