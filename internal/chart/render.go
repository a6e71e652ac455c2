package chart

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	"opendaoc/internal/population"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

const (
	Width  = 640
	Height = 480

	fontSize    = 12
	borderWidth = 1
	// Fraction of the radius where the percentages and names are drawn
	percentDistance = 0.6
	nameDistance    = 1.1
)

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

func loadFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := truetype.Parse(gobold.TTF)
		if err != nil {
			faceErr = fmt.Errorf("parse font: %w", err)
			return
		}
		face = truetype.NewFace(f, &truetype.Options{Size: fontSize, DPI: 100})
	})
	return face, faceErr
}

// Render draws the snapshot as a PNG. It returns nil and no error
// when the snapshot has nothing to show
func Render(snapshot population.Snapshot) ([]byte, error) {

	wedges := Wedges(snapshot)
	if wedges == nil {
		return nil, nil
	}

	face, err := loadFace()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(Width, Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(face)

	cx, cy := float64(Width)/2, float64(Height)/2
	radius := math.Min(float64(Width), float64(Height)) * 0.36

	// Slices
	for _, wedge := range wedges {
		if wedge.Value == 0 {
			continue
		}
		dc.NewSubPath()
		dc.MoveTo(cx, cy)
		// gg measures angles clockwise because y grows downwards
		dc.DrawArc(cx, cy, radius, gg.Radians(-wedge.Start), gg.Radians(-wedge.End))
		dc.ClosePath()
		dc.SetHexColor(wedge.Color)
		dc.FillPreserve()
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(borderWidth)
		dc.Stroke()
	}

	// Labels
	dc.SetRGB(0, 0, 0)
	for _, wedge := range wedges {
		x, y := polar(cx, cy, radius*percentDistance, wedge.Middle())
		dc.DrawStringAnchored(wedge.Label(), x, y, 0.5, 0.5)

		x, y = polar(cx, cy, radius*nameDistance, wedge.Middle())
		ax := 0.0
		if x < cx {
			ax = 1
		}
		dc.DrawStringAnchored(wedge.Realm, x, y, ax, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Point at the given distance and angle (degrees, counter-clockwise) from the centre
func polar(cx, cy, distance, degrees float64) (float64, float64) {
	rad := gg.Radians(degrees)
	return cx + distance*math.Cos(rad), cy - distance*math.Sin(rad)
}
