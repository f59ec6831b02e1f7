package ports

import (
	"context"

	"yangstage/internal/types"
)

// DispatcherPort sends one request payload to the device and returns the
// raw reply.  Timeouts and retries are the dispatcher's concern.
type DispatcherPort interface {
	Dispatch(ctx context.Context, request []byte) ([]byte, error)
	Close() error
}

// DecoderPort turns a raw reply into a navigable tree.
type DecoderPort interface {
	Decode(payload []byte) (*types.Node, error)
}
