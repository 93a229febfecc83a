package model

import (
	"strconv"
	"strings"
)

const nullCategoryKey = "__null_category__"

// FoldName is the case folding used for every name comparison.
func FoldName(name string) string {
	return strings.ToLower(name)
}

// SameName reports whether two names match case-insensitively.
func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// IdentityKey is the de-duplication key shared by pantry and grocery items:
// the lowercased name plus the exact category, with Uncategorized mapped
// to a sentinel.
func IdentityKey(name string, categoryID *int64) string {
	cat := nullCategoryKey
	if categoryID != nil {
		cat = strconv.FormatInt(*categoryID, 10)
	}
	return FoldName(name) + "::" + cat
}
