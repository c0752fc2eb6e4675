package auth

import (
	"context"
)

// Actor is an authenticated dashboard user.
type Actor struct {
	ActorID      string   `json:"actorId"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

// Authorizer validates API keys and checks capabilities in one call.
type Authorizer interface {
	// Authorize validates the API key and checks that the actor holds the
	// capability the operation requires. Returns the actor on success.
	Authorize(ctx context.Context, apiKey, capability string) (*Actor, error)
}

// Can reports whether the actor holds the capability. The "*" capability
// grants everything.
func (a *Actor) Can(capability string) bool {
	for _, c := range a.Capabilities {
		if c == "*" || c == capability {
			return true
		}
	}
	return false
}
