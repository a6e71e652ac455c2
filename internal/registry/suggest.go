package registry

import (
	lev "github.com/agnivade/levenshtein"
)

// Names further away than this are not worth suggesting
const maxSuggestDistance = 2

// Suggest returns the registered name closest to the provided one,
// if it is close enough to be a likely typo
func (r *Registry) Suggest(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = Normalize(name)
	best := ""
	bestDistance := maxSuggestDistance + 1
	for _, entry := range r.entries {
		if entry.Name == name {
			continue
		}
		if d := lev.ComputeDistance(name, entry.Name); d < bestDistance {
			best = entry.Name
			bestDistance = d
		}
	}
	return best, best != ""
}
