package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	raw := uuid.NewString()
	id, err := ParseID(raw)
	require.NoError(t, err)
	assert.True(t, id.IsAssigned())
	assert.Equal(t, raw, id.String())

	upper, err := ParseID(strings.ToUpper(raw))
	require.NoError(t, err)
	assert.Equal(t, id, upper)
}

func TestParseIDRejectsMalformed(t *testing.T) {
	raw := uuid.NewString()
	for _, input := range []string{
		"",
		"not-a-uuid",
		"12345",
		"urn:uuid:" + raw,
		"{" + raw + "}",
		strings.ReplaceAll(raw, "-", ""),
		" " + raw,
		" " + raw[1:35] + " ",
	} {
		_, err := ParseID(input)
		assert.ErrorIs(t, err, ErrInvalidID, input)
	}
}

func TestZeroIDIsUnassigned(t *testing.T) {
	var id ID
	assert.False(t, id.IsAssigned())
	assert.Equal(t, "", id.String())
	assert.True(t, NewID().IsAssigned())
}
