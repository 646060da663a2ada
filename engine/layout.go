package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Letters of the attention-cue streams; "5" is the digit participants watch for.
var Letters = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "5"}

// Layout holds the pixel geometry of every element a session can draw.
type Layout struct {
	Proj      Projection
	Stim      []Rect
	Marker    []Rect
	StimPaths []string
	SilPaths  []string
	Fixation  Rect
	Side      [2]Rect // attention-cue boxes, left then right
	Letter    [2]Rect
	Arrow     Rect
	Full      Rect
}

func NewLayout(proj Projection, locs []Location, t Timing, mode Mode, imageRoot string) *Layout {
	l := &Layout{
		Proj:      proj,
		Stim:      make([]Rect, len(locs)),
		Marker:    make([]Rect, len(locs)),
		StimPaths: stimulusImages(mode.StimulusDir(imageRoot), len(locs)),
		SilPaths:  stimulusImages(filepath.Join(imageRoot, "sil_grey"), len(locs)),
		Full:      Rect{W: float32(proj.Width), H: float32(proj.Height)},
	}
	img := proj.Pixels(t.ImageSize)
	mark := proj.Pixels(t.ImageSize * t.TargetMarkerScale)
	for i, loc := range locs {
		c := proj.ToScreen(loc.X, loc.Y)
		l.Stim[i] = CenteredRect(c, img, img)
		l.Marker[i] = CenteredRect(c, mark, mark)
	}

	cross := proj.Pixels(t.FixationCrossSize)
	l.Fixation = CenteredRect(proj.Center(), cross, cross)
	box := proj.Pixels(t.BoxSize)
	letter := proj.Pixels(t.LetterSize)
	for side, x := range []float64{-t.FixationDistance, t.FixationDistance} {
		c := proj.ToScreen(x, 0)
		l.Side[side] = CenteredRect(c, box, box)
		l.Letter[side] = CenteredRect(c, letter, letter)
	}
	arrow := proj.Pixels(4)
	l.Arrow = CenteredRect(proj.Center(), arrow, arrow)
	return l
}

// stimulusImages lists up to n image files of dir in name order. Missing
// entries are empty and drawn as placeholders.
func stimulusImages(dir string, n int) []string {
	paths := make([]string, n)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return paths
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	copy(paths, files)
	return paths
}
