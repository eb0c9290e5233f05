// Package delivery defines the contract every transport entrypoint
// implements.
package delivery

import "context"

// Delivery is a servable transport such as the HTTP server.
type Delivery interface {
	Serve(ctx context.Context) error
}
