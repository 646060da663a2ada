package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
)

// Status of a routine component.
type Status int

const (
	NotStarted Status = iota
	Started
	Finished
)

func (s Status) String() string {
	switch s {
	case Started:
		return "STARTED"
	case Finished:
		return "FINISHED"
	}
	return "NOT_STARTED"
}

// RatingForm is a single rating-scale question answered by clicking one of
// its options.
type RatingForm struct {
	Name         string
	Question     string
	Options      []string
	Panel        Rect
	QuestionBox  Rect
	OptionBounds []Rect
	Rating       int // index into Options, -1 while unanswered
	Status       Status
}

// Complete reports whether every required item is answered.
func (f *RatingForm) Complete() bool { return f.Rating >= 0 }

func (f *RatingForm) click(p Point) {
	for i, r := range f.OptionBounds {
		if r.Contains(p) {
			f.Rating = i
			return
		}
	}
}

// Button is a clickable image.
type Button struct {
	Name   string
	Image  string
	Bounds Rect
	Status Status
}

// Click is one press recorded during the routine. Clicked names the
// clickable element that was hit and is empty for an invalid click.
type Click struct {
	Pos     Point
	Buttons [3]bool
	Time    time.Duration
	Clicked string
}

// ResponseRoutine gates the next block on a rating answer. The submit button
// starts once the form is complete; a press inside it ends the routine.
type ResponseRoutine struct {
	Form        *RatingForm
	Submit      *Button
	MouseStatus Status
	Clicks      []Click
	FrameN      int

	prev [3]bool
	done bool
}

// FlashCountQuestion is asked after each block of the oddball modes.
const FlashCountQuestion = "How many times did the target location appear?"

// NewFlashCountRoutine lays the form out on a w by h screen: a panel one
// screen-height wide and 0.7 high at the centre, options 0..12 in a row,
// and the continue button anchored bottom-right.
func NewFlashCountRoutine(w, h int, buttonImage string) *ResponseRoutine {
	fw, fh := float32(w), float32(h)
	c := Point{X: fw / 2, Y: fh / 2}
	panel := CenteredRect(c, fh, 0.7*fh)

	opts := make([]string, 13)
	for i := range opts {
		opts[i] = strconv.Itoa(i)
	}
	pad := 0.05 * fh
	cell := (panel.W - 2*pad) / float32(len(opts))
	bounds := make([]Rect, len(opts))
	for i := range bounds {
		bounds[i] = Rect{
			X: panel.X + pad + float32(i)*cell,
			Y: c.Y,
			W: cell * 0.9,
			H: cell * 0.9,
		}
	}

	bw, bh := 0.15*fh, 0.2*fh
	right, bottom := c.X+0.75*fh, c.Y+0.35*fh

	r := &ResponseRoutine{
		Form: &RatingForm{
			Name:         "flash",
			Question:     FlashCountQuestion,
			Options:      opts,
			Panel:        panel,
			QuestionBox:  Rect{X: panel.X + pad, Y: panel.Y + pad, W: panel.W - 2*pad, H: 0.1 * fh},
			OptionBounds: bounds,
		},
		Submit: &Button{
			Name:   "continue",
			Image:  buttonImage,
			Bounds: Rect{X: right - bw, Y: bottom - bh, W: bw, H: bh},
		},
	}
	r.Reset()
	return r
}

// Reset returns every component to NotStarted and clears the answer.
func (r *ResponseRoutine) Reset() {
	r.Form.Status = NotStarted
	r.Form.Rating = -1
	r.Submit.Status = NotStarted
	r.MouseStatus = NotStarted
	r.Clicks = nil
	r.FrameN = 0
	r.prev = [3]bool{}
	r.done = false
}

func (r *ResponseRoutine) Done() bool { return r.done }

// Step advances the routine by one frame with the input polled for it and
// reports whether the routine has ended.
func (r *ResponseRoutine) Step(in Input, t time.Duration) bool {
	if r.done {
		return true
	}
	r.FrameN++

	if r.Form.Status == NotStarted {
		r.Form.Status = Started
	}

	switch r.MouseStatus {
	case NotStarted:
		// a button already held at onset is not a click
		r.MouseStatus = Started
		r.prev = in.Buttons
	case Started:
		if in.Buttons != r.prev {
			r.prev = in.Buttons
			if anyPressed(in.Buttons) {
				r.press(in, t)
			}
		}
	}

	if r.Submit.Status == NotStarted && r.Form.Complete() {
		r.Submit.Status = Started
	}

	if r.done {
		r.Form.Status = Finished
		r.Submit.Status = Finished
		r.MouseStatus = Finished
	}
	return r.done
}

func (r *ResponseRoutine) press(in Input, t time.Duration) {
	r.Form.click(in.Mouse)
	c := Click{Pos: in.Mouse, Buttons: in.Buttons, Time: t}
	if r.Submit.Status == Started && r.Submit.Bounds.Contains(in.Mouse) {
		c.Clicked = r.Submit.Name
		r.done = true
	}
	r.Clicks = append(r.Clicks, c)
}

func anyPressed(b [3]bool) bool {
	return b[0] || b[1] || b[2]
}

// Scene draws the started components. A finished routine draws nothing.
func (r *ResponseRoutine) Scene(text sdl.Color) Scene {
	if r.done {
		return nil
	}
	var scene Scene
	if r.Form.Status == Started {
		f := r.Form
		scene = append(scene,
			Element{Kind: ElemBox, Name: "form", Bounds: f.Panel, Color: sdl.Color{A: 255}},
			Element{Kind: ElemText, Name: "question", Source: f.Question, Bounds: f.QuestionBox, Color: text},
		)
		for i, b := range f.OptionBounds {
			label := text
			if f.Rating == i {
				label = sdl.Color{A: 255}
			}
			scene = append(scene,
				Element{Kind: ElemOutline, Name: "option/" + strconv.Itoa(i), Bounds: b, Color: text, Active: f.Rating == i},
				Element{Kind: ElemText, Name: "label/" + strconv.Itoa(i), Source: f.Options[i], Bounds: b, Color: label},
			)
		}
	}
	if r.Submit.Status == Started {
		scene = append(scene, Element{Kind: ElemImage, Name: "submit", Source: r.Submit.Image, Bounds: r.Submit.Bounds, Color: text})
	}
	return scene
}

// RunResponse shows r until it ends, one poll and one flip per frame, clears
// the screen, and logs the answer and every click.
func (s *Session) RunResponse(r *ResponseRoutine) error {
	r.Reset()
	s.Screen.SetCursorVisible(true)
	defer s.Screen.SetCursorVisible(false)

	start := s.Clock.Elapsed()
	s.logEvent(TypeRoutine, r.Form.Name+".started", "")
	for {
		in, err := s.Clock.Poll()
		if err != nil {
			return err
		}
		if r.Step(in, s.Clock.Elapsed()-start) {
			break
		}
		if err := s.Clock.Present(r.Scene(s.Cfg.TextColor)); err != nil {
			return err
		}
	}
	if err := s.Clock.Present(nil); err != nil {
		return err
	}

	answer := r.Form.Options[r.Form.Rating]
	s.logEvent(TypeResponse, r.Form.Question, answer)
	for _, c := range r.Clicks {
		s.logEvent(TypeClick, c.Clicked, fmt.Sprintf("x=%.0f y=%.0f buttons=%v t=%.3f",
			c.Pos.X, c.Pos.Y, c.Buttons, c.Time.Seconds()))
	}
	s.logEvent(TypeRoutine, r.Form.Name+".stopped", strconv.Itoa(r.FrameN))
	s.Log.Printf("block %d: flash count %s (%d clicks)", s.block, answer, len(r.Clicks))
	return nil
}
