package engine

import (
	"errors"
	"time"
)

// ErrAborted is returned by every frame loop once the operator pressed
// escape. It ends the whole run.
var ErrAborted = errors.New("experiment aborted by operator")

// FrameClock counts display flips. All stimulus timing is derived from the
// flip count; wall time is only kept for the event log.
type FrameClock struct {
	screen  Screen
	rate    float64
	frames  int
	start   time.Time
	aborted bool
}

// NewFrameClock drives screen, assuming it flips at rate Hz.
func NewFrameClock(screen Screen, rate float64) *FrameClock {
	return &FrameClock{screen: screen, rate: rate, start: time.Now()}
}

func (c *FrameClock) Rate() float64 { return c.rate }

// Frames is the number of flips since the clock was created.
func (c *FrameClock) Frames() int { return c.frames }

func (c *FrameClock) Elapsed() time.Duration { return time.Since(c.start) }

func (c *FrameClock) Aborted() bool { return c.aborted }

// Poll reads input for the coming frame and reports ErrAborted on escape.
// Once aborted, it keeps failing without touching the screen.
func (c *FrameClock) Poll() (Input, error) {
	if c.aborted {
		return Input{}, ErrAborted
	}
	in := c.screen.Poll()
	if in.Escape {
		c.aborted = true
		return in, ErrAborted
	}
	return in, nil
}

// Present draws scene and waits for the flip.
func (c *FrameClock) Present(scene Scene) error {
	if err := c.screen.Render(scene); err != nil {
		return err
	}
	c.frames++
	return nil
}

// Wait is a fixed real-time pause. Input is not polled.
func (c *FrameClock) Wait(d time.Duration) {
	c.screen.Sleep(d)
}

// WaitForKey flips scene until key is pressed.
func (c *FrameClock) WaitForKey(key string, scene Scene) error {
	for {
		in, err := c.Poll()
		if err != nil {
			return err
		}
		if in.Pressed(key) {
			return nil
		}
		if err := c.Present(scene); err != nil {
			return err
		}
	}
}
