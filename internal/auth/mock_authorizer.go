package auth

import (
	"context"
)

const (
	// LocalDevAPIKey is the hardcoded API key for local development only.
	LocalDevAPIKey = "hb_local_dev_key"
)

// MockAuthorizer recognizes only LocalDevAPIKey and resolves it to a
// homeboard-dev actor with every capability. Local development only.
type MockAuthorizer struct{}

func NewMockAuthorizer() *MockAuthorizer { return &MockAuthorizer{} }

func (m *MockAuthorizer) Authorize(_ context.Context, apiKey, _ string) (*Actor, error) {
	if apiKey != LocalDevAPIKey {
		return nil, ErrInvalidAPIKey
	}
	return &Actor{
		ActorID:      "homeboard-dev",
		Name:         "Local Development",
		Capabilities: []string{"*"},
	}, nil
}
