package engine

import (
	"path/filepath"
	"strconv"

	"github.com/Zyko0/go-sdl3/sdl"
)

var white = sdl.Color{R: 255, G: 255, B: 255, A: 255}

// PromptPrefix names elements that wait for the space bar.
const PromptPrefix = "prompt/"

func (s *Session) stim(loc int) Element {
	return Element{
		Kind:   ElemImage,
		Name:   "stim/" + strconv.Itoa(loc),
		Source: s.Layout.StimPaths[loc],
		Bounds: s.Layout.Stim[loc],
		Color:  white,
	}
}

func (s *Session) sil(loc int) Element {
	return Element{
		Kind:   ElemImage,
		Name:   "sil/" + strconv.Itoa(loc),
		Source: s.Layout.SilPaths[loc],
		Bounds: s.Layout.Stim[loc],
		Color:  white,
	}
}

func (s *Session) targetMarker(loc int) Element {
	return Element{
		Kind:   ElemOutline,
		Name:   "target_marker/" + strconv.Itoa(loc),
		Bounds: s.Layout.Marker[loc],
		Color:  s.Cfg.TargetColor,
	}
}

func (s *Session) fixation() Element {
	return Element{Kind: ElemFixation, Name: "fixation", Bounds: s.Layout.Fixation, Color: s.Cfg.FixationColor}
}

func (s *Session) message(name, text string) Element {
	return Element{Kind: ElemText, Name: name, Source: text, Bounds: s.Layout.Full, Color: s.Cfg.TextColor}
}

func (s *Session) prompt(text string) Scene {
	return Scene{s.message(PromptPrefix+"space", text)}
}

func (s *Session) instructions() Scene {
	return Scene{
		{Kind: ElemImage, Name: PromptPrefix + "instructions", Source: s.Mode.InstructionImage(s.Cfg.StimuliDir), Bounds: s.Layout.Full, Color: white},
	}
}

// silhouettes draws every location's silhouette except the one at except
// (pass -1 for all).
func (s *Session) silhouettes(except int) Scene {
	scene := make(Scene, 0, len(s.Locations))
	for _, loc := range s.Locations {
		if loc.Index != except {
			scene = append(scene, s.sil(loc.Index))
		}
	}
	return scene
}

func (s *Session) allStims() Scene {
	scene := make(Scene, 0, len(s.Locations))
	for _, loc := range s.Locations {
		scene = append(scene, s.stim(loc.Index))
	}
	return scene
}

// flickerScene shows each location's stimulus on the on-phase of its own
// period at frame n.
func (s *Session) flickerScene(n int) Scene {
	scene := make(Scene, 0, len(s.Locations))
	for _, loc := range s.Locations {
		if Visible(n, loc.Period) {
			scene = append(scene, s.stim(loc.Index))
		}
	}
	return scene
}

func (s *Session) sideBox(side int) Element {
	return Element{Kind: ElemBox, Name: "box/" + strconv.Itoa(side), Bounds: s.Layout.Side[side], Color: white}
}

func (s *Session) letter(side int, symbol string) Element {
	return Element{
		Kind:   ElemImage,
		Name:   "letter/" + strconv.Itoa(side) + "/" + symbol,
		Source: filepath.Join(s.Cfg.StimuliDir, "stimuli", symbol+".png"),
		Bounds: s.Layout.Letter[side],
		Color:  white,
	}
}

func (s *Session) arrow(attention string) Element {
	return Element{
		Kind:   ElemImage,
		Name:   "arrow/" + attention,
		Source: filepath.Join(s.Cfg.StimuliDir, attention+".png"),
		Bounds: s.Layout.Arrow,
		Color:  white,
	}
}

// with returns a copy of scene extended by els.
func with(scene Scene, els ...Element) Scene {
	out := make(Scene, 0, len(scene)+len(els))
	return append(append(out, scene...), els...)
}
