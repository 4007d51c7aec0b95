// Package notify is the outbound notification capability used to deliver
// test results to patients. The transport is pluggable; the core only
// depends on the Sender contract.
package notify

import "context"

// Sender delivers one message to one recipient. A nil return means the
// message was handed to the transport successfully; any error means the
// caller must treat the delivery as failed and may retry. Implementations
// must honor ctx cancellation and deadlines.
type Sender interface {
	Send(ctx context.Context, recipient, message string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, recipient, message string) error

func (f SenderFunc) Send(ctx context.Context, recipient, message string) error {
	return f(ctx, recipient, message)
}
