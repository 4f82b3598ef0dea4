package book

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkleaf/pageflow/pkg/identifiers"
)

func TestChooseCacheKey_PrefersISBN13OverASIN(t *testing.T) {
	ids := []Identifier{
		{Type: identifiers.TypeASIN, Value: "B00ZVA3XL6"},
		{Type: identifiers.TypeISBN13, Value: "9780306406157"},
	}
	assert.Equal(t, "9780306406157", chooseCacheKey(ids, "Some Title"))
}

func TestChooseCacheKey_FallsBackToTitleSlug(t *testing.T) {
	assert.Equal(t, "the-great-adventure", chooseCacheKey(nil, "The Great Adventure!"))
}

func TestChooseCacheKey_FallsBackToUUIDWhenNoTitleOrIdentifiers(t *testing.T) {
	key := chooseCacheKey(nil, "")
	assert.Len(t, key, 32)
}

func TestSanitizeCacheKey_ReplacesUnsafeCharacters(t *testing.T) {
	assert.Equal(t, "urn_uuid_abc123", sanitizeCacheKey("urn:uuid:abc123"))
}
