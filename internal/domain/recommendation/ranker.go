package recommendation

import (
	"cmp"
	"slices"
)

// Rank orders details by rating, highest first. Ties keep their input order.
func Rank(details []PlaceDetail) []PlaceDetail {
	out := make([]PlaceDetail, len(details))
	copy(out, details)
	slices.SortStableFunc(out, func(a, b PlaceDetail) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	return out
}
