package recommendation

// BuildQueries returns the search tiers, most specific first.
func BuildQueries(location, activity string) []string {
	return []string{
		activity + " " + location,
		activity + " near " + location,
		activity,
		location,
	}
}
