// Package population extracts the per realm player counts published by a
// server status endpoint.
package population

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

const (
	Albion   = "Albion"
	Midgard  = "Midgard"
	Hibernia = "Hibernia"
)

// Highest count accepted for a realm. Larger values are not a real population
const MaxCount = math.MaxInt32

// Realms in the order they are reported and drawn
var Realms = []string{Albion, Midgard, Hibernia}

// Snapshot is a point in time count of players per realm
type Snapshot struct {
	Albion   int
	Midgard  int
	Hibernia int
}

// Total cannot overflow for valid snapshots
func (s Snapshot) Total() int64 {
	return int64(s.Albion) + int64(s.Midgard) + int64(s.Hibernia)
}

func (s Snapshot) Valid() bool {
	for _, v := range s.Values() {
		if v < 0 || v > MaxCount {
			return false
		}
	}
	return true
}

// Empty means nobody is online, which we report the same way as offline
func (s Snapshot) Empty() bool {
	return s.Total() == 0
}

// Values in the order of Realms
func (s Snapshot) Values() []int {
	return []int{s.Albion, s.Midgard, s.Hibernia}
}

// ParseError means a realm count could not be found in the body
type ParseError struct {
	Realm string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("realm %s: %v", e.Realm, e.Err)
	}
	return fmt.Sprintf("realm %s not found in response", e.Realm)
}

func (e *ParseError) Unwrap() error { return e.Err }

var realmPatterns = map[string]*regexp.Regexp{
	Albion:   regexp.MustCompile(`"Albion"\s*:\s*(\d+)`),
	Midgard:  regexp.MustCompile(`"Midgard"\s*:\s*(\d+)`),
	Hibernia: regexp.MustCompile(`"Hibernia"\s*:\s*(\d+)`),
}

// Parse looks for the three realm counts anywhere in the body.
// The body is not decoded as JSON; the first match of each realm wins
func Parse(body string) (Snapshot, error) {
	counts := make(map[string]int, len(Realms))
	for _, realm := range Realms {
		match := realmPatterns[realm].FindStringSubmatch(body)
		if match == nil {
			return Snapshot{}, &ParseError{Realm: realm}
		}
		count, err := strconv.ParseInt(match[1], 10, 32)
		if err != nil {
			return Snapshot{}, &ParseError{Realm: realm, Err: err}
		}
		counts[realm] = int(count)
	}
	return Snapshot{Albion: counts[Albion], Midgard: counts[Midgard], Hibernia: counts[Hibernia]}, nil
}
