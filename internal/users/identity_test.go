package users

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
)

func TestLegacyExternalIDIsDeterministic(t *testing.T) {
	first := LegacyExternalID(42)
	second := LegacyExternalID(42)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, LegacyExternalID(43))
	assert.Equal(t, uuid.Version(5), first.Version())
}

func TestParseExternalID(t *testing.T) {
	id := uuid.New()
	parsed, err := ParseExternalID(" " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	for _, raw := range []string{"", "   ", "not-a-uuid", "12345"} {
		_, err := ParseExternalID(raw)
		require.Error(t, err)

		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeInvalidIDFormat, typed.Code())
	}
}
