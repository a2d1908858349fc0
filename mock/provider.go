// Package mock provides test doubles for chatter interfaces using function
// fields.
package mock

import (
	"context"

	"github.com/tkaczmarek/chatter"
)

// Interface compliance checks.
var (
	_ chatter.Provider = (*Provider)(nil)
	_ chatter.Stream   = (*Stream)(nil)
)

// Provider is a test double for chatter.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req chatter.Request) (chatter.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req chatter.Request) (chatter.Stream, error) {
	return p.StreamFn(ctx, req)
}
