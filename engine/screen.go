package engine

import (
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
)

type ElementKind int

const (
	ElemImage    ElementKind = iota // texture from Source scaled into Bounds
	ElemOutline                     // unfilled rectangle
	ElemBox                         // filled rectangle
	ElemText                        // Source rendered with the session font, centred in Bounds
	ElemFixation                    // cross centred in Bounds
)

// Element is one drawable of a frame. Name identifies it for hit testing,
// logging and tests ("stim/3", "sil/0", "submit", "option/5").
type Element struct {
	Kind   ElementKind
	Name   string
	Source string
	Bounds Rect
	Color  sdl.Color
	Active bool
}

// Scene is everything drawn on one frame, back to front.
type Scene []Element

func (s Scene) Find(name string) (Element, bool) {
	for _, e := range s {
		if e.Name == name {
			return e, true
		}
	}
	return Element{}, false
}

// Input is the state polled once per frame.
type Input struct {
	Escape  bool
	Keys    []string
	Mouse   Point
	Buttons [3]bool
}

func (in Input) Pressed(key string) bool {
	for _, k := range in.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Screen is the rendering substrate. Render draws a scene and blocks until
// the next vertical refresh.
type Screen interface {
	RefreshRate() float64
	Size() (w, h int)
	Render(scene Scene) error
	Poll() Input
	Sleep(d time.Duration)
	SetCursorVisible(visible bool)
	Close() error
}
