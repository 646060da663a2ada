package engine

import (
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"
)

// HeadlessScreen runs the full schedule without a display. With Pace set it
// holds each frame for one refresh period; with Autopilot set it answers
// space prompts and the rating form the way a participant would.
type HeadlessScreen struct {
	W, H      int
	Rate      float64
	Pace      bool
	Autopilot bool
	EscapeAt  int // frame count at which escape is reported, 0 for never

	Frames int
	Last   Scene

	interrupted atomic.Bool
	queue       []Input
	mouse       Point
	next        time.Time
	sig         chan os.Signal
}

func NewHeadlessScreen(w, h int, rate float64) *HeadlessScreen {
	return &HeadlessScreen{W: w, H: h, Rate: rate, Pace: true, Autopilot: true}
}

// NotifyInterrupt makes SIGINT act as the escape key.
func (h *HeadlessScreen) NotifyInterrupt() {
	h.sig = make(chan os.Signal, 1)
	signal.Notify(h.sig, os.Interrupt)
	go func() {
		if _, ok := <-h.sig; ok {
			h.Interrupt()
		}
	}()
}

// Interrupt reports escape on the next poll. Safe from any goroutine.
func (h *HeadlessScreen) Interrupt() { h.interrupted.Store(true) }

func (h *HeadlessScreen) RefreshRate() float64 { return h.Rate }

func (h *HeadlessScreen) Size() (int, int) { return h.W, h.H }

func (h *HeadlessScreen) Render(scene Scene) error {
	h.Frames++
	h.Last = scene
	if h.Pace && h.Rate > 0 {
		period := time.Duration(float64(time.Second) / h.Rate)
		now := time.Now()
		if h.next.IsZero() || h.next.Before(now) {
			h.next = now
		}
		h.next = h.next.Add(period)
		time.Sleep(time.Until(h.next))
	}
	if h.Autopilot {
		h.plan(scene)
	}
	return nil
}

// plan queues the input answering scene: space for a prompt, a click on the
// submit button when it is up, otherwise a click on the middle rating option.
func (h *HeadlessScreen) plan(scene Scene) {
	if len(h.queue) > 0 {
		return
	}
	answered := false
	var option *Element
	for i, el := range scene {
		switch {
		case strings.HasPrefix(el.Name, PromptPrefix):
			h.queue = append(h.queue, Input{Keys: []string{"space"}, Mouse: h.mouse})
			return
		case el.Name == "submit":
			h.click(el.Bounds.Center())
			return
		case strings.HasPrefix(el.Name, "option/"):
			answered = answered || el.Active
			if option == nil || el.Name == "option/6" {
				option = &scene[i]
			}
		}
	}
	if option != nil && !answered {
		h.click(option.Bounds.Center())
	}
}

func (h *HeadlessScreen) click(p Point) {
	h.queue = append(h.queue,
		Input{Mouse: p, Buttons: [3]bool{true, false, false}},
		Input{Mouse: p},
	)
}

func (h *HeadlessScreen) Poll() Input {
	if h.interrupted.Load() || (h.EscapeAt > 0 && h.Frames >= h.EscapeAt) {
		return Input{Escape: true, Mouse: h.mouse}
	}
	if len(h.queue) == 0 {
		return Input{Mouse: h.mouse}
	}
	in := h.queue[0]
	h.queue = h.queue[1:]
	h.mouse = in.Mouse
	return in
}

func (h *HeadlessScreen) Sleep(d time.Duration) {
	if h.Pace {
		time.Sleep(d)
	}
}

func (h *HeadlessScreen) SetCursorVisible(bool) {}

func (h *HeadlessScreen) Close() error {
	if h.sig != nil {
		signal.Stop(h.sig)
		close(h.sig)
		h.sig = nil
	}
	return nil
}
