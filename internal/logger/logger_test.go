package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	lg := New("homeboard-test")
	// Smoke test: stack marshaling must not panic on plain errors.
	lg.Error().Stack().Err(errors.New("boom")).Msg("test event")
	require.NotNil(t, lg)
}
