// Package mail models outbound email as a best-effort capability. The auth
// workflow depends on the Sender interface only; delivery failures are the
// caller's to log and swallow, never to surface to the client.
package mail

import "context"

// Sender delivers a plain-text email. Implementations should respect ctx for
// cancellation but are not expected to retry.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
