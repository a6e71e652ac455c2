// Package chart draws the realm split of a population snapshot as a pie chart.
package chart

import (
	"fmt"

	"opendaoc/internal/population"
)

// Pie layout, in degrees. Wedges go counter-clockwise starting at the top
const startAngle = 90.0

var colors = map[string]string{
	population.Albion:   "#FF0000",
	population.Midgard:  "#0000FF",
	population.Hibernia: "#008000",
}

// Wedge is one slice of the pie. Angles are in degrees, counter-clockwise,
// with 0 pointing right as on a unit circle
type Wedge struct {
	Realm    string
	Value    int
	Fraction float64
	Start    float64
	End      float64
	Color    string
}

// Label is the percentage printed inside the wedge
func (w Wedge) Label() string {
	return fmt.Sprintf("%.1f%%", w.Fraction*100)
}

// Middle is the angle where labels are placed
func (w Wedge) Middle() float64 {
	return (w.Start + w.End) / 2
}

// Wedges computes the pie layout for a snapshot.
// It returns nil when there is nothing to draw
func Wedges(snapshot population.Snapshot) []Wedge {
	if !snapshot.Valid() || snapshot.Empty() {
		return nil
	}

	total := float64(snapshot.Total())
	wedges := make([]Wedge, 0, len(population.Realms))
	angle := startAngle
	for i, value := range snapshot.Values() {
		realm := population.Realms[i]
		fraction := float64(value) / total
		sweep := fraction * 360
		wedges = append(wedges, Wedge{
			Realm:    realm,
			Value:    value,
			Fraction: fraction,
			Start:    angle,
			End:      angle + sweep,
			Color:    colors[realm],
		})
		angle += sweep
	}
	return wedges
}
