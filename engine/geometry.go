package engine

import (
	"fmt"
	"math"
)

// Point is a screen position in pixels, origin top-left.
type Point struct {
	X, Y float32
}

// Rect is an axis-aligned screen rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// CenteredRect returns a w by h rectangle centred on p.
func CenteredRect(p Point, w, h float32) Rect {
	return Rect{X: p.X - w/2, Y: p.Y - h/2, W: w, H: h}
}

// VisualSize returns the extent in cm that subtends angle degrees at a
// viewing distance of viewDist cm.
func VisualSize(viewDist, angle float64) float64 {
	return 2 * viewDist * math.Tan(angle*math.Pi/360)
}

// Projection maps degrees of visual angle (origin at fixation, y up) to
// screen pixels.
type Projection struct {
	Width, Height int
	PixPerDeg     float64
}

func NewProjection(p MonitorProfile) Projection {
	pixPerCM := float64(p.Resolution[0]) / p.WidthCM
	return Projection{
		Width:     p.Resolution[0],
		Height:    p.Resolution[1],
		PixPerDeg: VisualSize(p.ViewDistCM, 1) * pixPerCM,
	}
}

func (pr Projection) Center() Point {
	return Point{X: float32(pr.Width) / 2, Y: float32(pr.Height) / 2}
}

func (pr Projection) ToScreen(x, y float64) Point {
	c := pr.Center()
	return Point{
		X: c.X + float32(x*pr.PixPerDeg),
		Y: c.Y - float32(y*pr.PixPerDeg),
	}
}

func (pr Projection) Pixels(deg float64) float32 {
	return float32(deg * pr.PixPerDeg)
}

// Location is one stimulus position on the circle around fixation. It is
// fixed for a session once the refresh rate is known.
type Location struct {
	Index     int
	X, Y      float64
	Frequency float64
	Period    int
}

// CirclePositions places n points at radius degrees around fixation,
// starting straight up and going clockwise, rounded to 4 decimals.
func CirclePositions(n int, radius float64) [][2]float64 {
	pos := make([][2]float64, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = [2]float64{round4(radius * math.Sin(a)), round4(radius * math.Cos(a))}
	}
	return pos
}

func round4(v float64) float64 {
	return math.RoundToEven(v*1e4) / 1e4
}

// BuildLocations combines circle positions with the per-location flicker
// frequencies of a monitor profile.
func BuildLocations(n int, radius float64, freqs []float64, refresh float64) ([]Location, error) {
	if n <= 0 {
		return nil, fmt.Errorf("location count must be positive, got %d", n)
	}
	if len(freqs) < n {
		return nil, fmt.Errorf("need %d flicker frequencies, profile has %d", n, len(freqs))
	}
	pos := CirclePositions(n, radius)
	locs := make([]Location, n)
	for i := range locs {
		period, err := FlickerPeriod(refresh, freqs[i])
		if err != nil {
			return nil, fmt.Errorf("location %d: %w", i, err)
		}
		locs[i] = Location{
			Index:     i,
			X:         pos[i][0],
			Y:         pos[i][1],
			Frequency: freqs[i],
			Period:    period,
		}
	}
	return locs, nil
}
