package book

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/inkleaf/pageflow/pkg/identifiers"
)

var cacheKeyUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// chooseCacheKey picks the extraction-cache directory suffix for a book,
// preferring the most stable identifier (ISBN-13 > ISBN-10 > ASIN > UUID,
// via identifiers.CacheKeyRank; an ISBN is reduced to its bare digits),
// falling back to a slugged title, and finally to a generated UUID when
// neither is usable.
func chooseCacheKey(ids []Identifier, title string) string {
	best := -1
	bestRank := 1 << 30
	for i, id := range ids {
		if rank := identifiers.CacheKeyRank(id.Type); rank < bestRank {
			bestRank = rank
			best = i
		}
	}
	if best >= 0 {
		value := ids[best].Value
		if t := ids[best].Type; t == identifiers.TypeISBN13 || t == identifiers.TypeISBN10 {
			value = identifiers.NormalizeISBN(value)
		}
		return sanitizeCacheKey(value)
	}

	if s := slug.Make(title); s != "" {
		return s
	}

	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func sanitizeCacheKey(value string) string {
	return cacheKeyUnsafe.ReplaceAllString(value, "_")
}
