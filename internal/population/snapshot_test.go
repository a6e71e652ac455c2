package population

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Snapshot
	}{
		{
			name: "plain",
			body: `"Albion": 10, "Midgard": 0, "Hibernia": 5`,
			want: Snapshot{10, 0, 5},
		},
		{
			name: "json with surrounding fields",
			body: `{"Uptime":"3d","Realms":{"Hibernia":7,"Albion":120,"Midgard":44},"Total":171}`,
			want: Snapshot{120, 44, 7},
		},
		{
			name: "whitespace around colon",
			body: "\"Albion\"\n  :\t3 \"Midgard\" :4 \"Hibernia\"  :  5",
			want: Snapshot{3, 4, 5},
		},
		{
			name: "first match wins",
			body: `"Albion": 1, "Midgard": 2, "Hibernia": 3, "Albion": 99`,
			want: Snapshot{1, 2, 3},
		},
		{
			name: "not valid json",
			body: `<html>"Albion": 8 garbage "Midgard": 9 "Hibernia": 10</html>`,
			want: Snapshot{8, 9, 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.body)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMissingRealm(t *testing.T) {
	_, err := Parse(`"Albion": 10, "Midgard": 0`)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Realm != Hibernia {
		t.Fatalf("realm = %q, want Hibernia", perr.Realm)
	}
}

func TestParseIsCaseSensitive(t *testing.T) {
	if _, err := Parse(`"albion": 1, "Midgard": 2, "Hibernia": 3`); err == nil {
		t.Fatalf("lowercase realm name should not match")
	}
}

func TestParseNegativeIsNotMatched(t *testing.T) {
	if _, err := Parse(`"Albion": -1, "Midgard": 2, "Hibernia": 3`); err == nil {
		t.Fatalf("negative count should not match")
	}
}

func TestParseOverflow(t *testing.T) {
	_, err := Parse(`"Albion": 99999999999999999999999, "Midgard": 2, "Hibernia": 3`)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Realm != Albion {
		t.Fatalf("expected ParseError for Albion, got %v", err)
	}
	if !errors.Is(err, strconv.ErrRange) {
		t.Fatalf("expected the range error to be wrapped, got %v", err)
	}
}

func TestParseRejectsCountsAboveBound(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		realm string
	}{
		{
			name:  "sum would wrap around",
			body:  `"Albion": 9223372036854775807, "Midgard": 9223372036854775807, "Hibernia": 2`,
			realm: Albion,
		},
		{
			name:  "just above the bound",
			body:  `"Albion": 1, "Midgard": 2147483648, "Hibernia": 2`,
			realm: Midgard,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.body)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Realm != tt.realm {
				t.Fatalf("realm = %s, want %s", perr.Realm, tt.realm)
			}
		})
	}

	got, err := Parse(`"Albion": 2147483647, "Midgard": 2147483647, "Hibernia": 2147483647`)
	if err != nil {
		t.Fatalf("counts at the bound should parse: %v", err)
	}
	if got.Total() != 3*int64(MaxCount) || got.Empty() {
		t.Fatalf("Total() = %d, empty = %v", got.Total(), got.Empty())
	}
}

func TestSnapshotHelpers(t *testing.T) {
	s := Snapshot{10, 0, 5}
	if s.Total() != 15 || s.Empty() || !s.Valid() {
		t.Fatalf("unexpected helpers for %+v", s)
	}
	if !(Snapshot{}).Empty() {
		t.Fatalf("zero snapshot should be empty")
	}
	if (Snapshot{Albion: -1}).Valid() {
		t.Fatalf("negative count should be invalid")
	}
	if (Snapshot{Albion: math.MaxInt64, Midgard: 1}).Valid() {
		t.Fatalf("count above MaxCount should be invalid")
	}
}
