package queue

import "context"

// Client publishes audit fan-out messages to a queue backend. A nil Client on
// the audit service disables fan-out.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
