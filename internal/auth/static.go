package auth

import (
	"context"
)

// StaticAuthorizer resolves API keys against a fixed key-to-actor table
// loaded from configuration. Suited to single-box deployments where the
// dashboard fronts a small, known set of users.
type StaticAuthorizer struct {
	actors map[string]Actor
}

// NewStaticAuthorizer builds an authorizer over a map of API key to actor.
func NewStaticAuthorizer(actors map[string]Actor) *StaticAuthorizer {
	table := make(map[string]Actor, len(actors))
	for key, actor := range actors {
		table[key] = actor
	}
	return &StaticAuthorizer{actors: table}
}

func (a *StaticAuthorizer) Authorize(_ context.Context, apiKey, capability string) (*Actor, error) {
	actor, ok := a.actors[apiKey]
	if !ok {
		return nil, ErrInvalidAPIKey
	}
	if !actor.Can(capability) {
		return nil, ErrForbidden
	}
	return &actor, nil
}
