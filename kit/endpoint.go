// Package kit carries the transport-agnostic plumbing shared by the CLI, the
// gallery server and the MCP surface: the Endpoint abstraction, middleware
// chaining and per-request context values.
package kit

import "context"

// Endpoint is a single transport-agnostic operation. Transports decode their
// wire format into a typed request, invoke the endpoint and encode the
// response back out.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
