package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstitutionPrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Greenwood", "GRE"},
		{"greenwood high", "GRE"},
		{"Oak Ridge Academy", "OAK"},
		{"Ng", "NG"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, InstitutionPrefix(tc.name), "name %q", tc.name)
	}
}

func TestNextTreeIDFirstTree(t *testing.T) {
	id, err := NextTreeID("Greenwood", nil)
	require.NoError(t, err)
	assert.Equal(t, "GRE001", id)
}

func TestNextTreeIDIncrementsPastGaps(t *testing.T) {
	existing := []TreeRef{
		{ID: "GRE001", Institution: "Greenwood"},
		{ID: "GRE005", Institution: "Greenwood"},
	}
	id, err := NextTreeID("Greenwood", existing)
	require.NoError(t, err)
	assert.Equal(t, "GRE006", id)
}

func TestNextTreeIDZeroPadsSequence(t *testing.T) {
	existing := []TreeRef{{ID: "GRE007", Institution: "Greenwood"}}
	id, err := NextTreeID("Greenwood", existing)
	require.NoError(t, err)
	assert.Equal(t, "GRE008", id)
}

func TestNextTreeIDScopedToInstitution(t *testing.T) {
	// Greenfield shares the GRE prefix but is a different institution, so
	// its trees must not advance Greenwood's sequence.
	existing := []TreeRef{
		{ID: "GRE004", Institution: "Greenfield"},
		{ID: "GRE009", Institution: "Greenfield"},
	}
	id, err := NextTreeID("Greenwood", existing)
	require.NoError(t, err)
	assert.Equal(t, "GRE001", id)
}

func TestNextTreeIDInstitutionMatchIsCaseInsensitive(t *testing.T) {
	existing := []TreeRef{{ID: "GRE002", Institution: "GREENWOOD"}}
	id, err := NextTreeID("greenwood", existing)
	require.NoError(t, err)
	assert.Equal(t, "GRE003", id)
}

func TestNextTreeIDIgnoresIdentifiersWithoutPrefix(t *testing.T) {
	// Records that never came from this prefix scheme are skipped, even when
	// they belong to the institution and have no numeric suffix.
	existing := []TreeRef{
		{ID: "legacy-tag", Institution: "Greenwood"},
		{ID: "gre010", Institution: "Greenwood"}, // prefix match is case-sensitive
		{ID: "GRE002", Institution: "Greenwood"},
	}
	id, err := NextTreeID("Greenwood", existing)
	require.NoError(t, err)
	assert.Equal(t, "GRE003", id)
}

func TestNextTreeIDMalformedSuffix(t *testing.T) {
	for _, bad := range []string{"GREoak", "GRE12x"} {
		existing := []TreeRef{
			{ID: "GRE001", Institution: "Greenwood"},
			{ID: bad, Institution: "Greenwood"},
		}
		_, err := NextTreeID("Greenwood", existing)
		require.Error(t, err, "id %q", bad)

		var malformed *MalformedIdentifierError
		require.True(t, errors.As(err, &malformed), "id %q", bad)
		assert.Equal(t, bad, malformed.ID)
	}
}

func TestNextTreeIDGrowsPastThreeDigits(t *testing.T) {
	existing := []TreeRef{{ID: "GRE999", Institution: "Greenwood"}}
	id, err := NextTreeID("Greenwood", existing)
	require.NoError(t, err)
	assert.Equal(t, "GRE1000", id)

	existing = []TreeRef{{ID: "GRE1042", Institution: "Greenwood"}}
	id, err = NextTreeID("Greenwood", existing)
	require.NoError(t, err)
	assert.Equal(t, "GRE1043", id)
}

func TestNextTreeIDShortInstitutionName(t *testing.T) {
	id, err := NextTreeID("Ng", []TreeRef{{ID: "NG003", Institution: "ng"}})
	require.NoError(t, err)
	assert.Equal(t, "NG004", id)
}
