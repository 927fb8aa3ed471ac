package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leasing-import-backend/internal/services/importer"
)

func TestSuggest_RanksNearMisses(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testDirectory())
	got := m.Suggest(importer.ClientIdentity{Company: "Acme SPRL"}, 3)

	require.NotEmpty(t, got)
	assert.Equal(t, acmeID, got[0].Client.ID)
	assert.GreaterOrEqual(t, got[0].Score, SuggestionThreshold)
}

func TestSuggest_NothingClose(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testDirectory())
	assert.Empty(t, m.Suggest(importer.ClientIdentity{Company: "Zyxw"}, 3))
	assert.Nil(t, m.Suggest(importer.ClientIdentity{}, 3))
	assert.Nil(t, m.Suggest(importer.ClientIdentity{Company: "Acme"}, 0))
}

func TestNameSimilarity(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 100.0, nameSimilarity("acme sa", "acme sa"), 0.001)
	assert.InDelta(t, 0.0, nameSimilarity("", "acme"), 0.001)
	assert.Less(t, nameSimilarity("acme", "beta leasing"), SuggestionThreshold)
}
