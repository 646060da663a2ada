package engine

import (
	"errors"
	"testing"
	"time"
)

func quietScreen() *HeadlessScreen {
	hs := NewHeadlessScreen(800, 600, 60)
	hs.Pace = false
	hs.Autopilot = false
	return hs
}

func TestWaitForKey(t *testing.T) {
	hs := quietScreen()
	hs.queue = []Input{{}, {Keys: []string{"a"}}, {}, {Keys: []string{"space"}}}
	c := NewFrameClock(hs, 60)
	if err := c.WaitForKey("space", nil); err != nil {
		t.Fatal(err)
	}
	if c.Frames() != 3 {
		t.Errorf("flipped %d frames before the key, want 3", c.Frames())
	}
}

func TestAbortIsSticky(t *testing.T) {
	hs := quietScreen()
	hs.EscapeAt = 5
	c := NewFrameClock(hs, 60)
	err := c.WaitForKey("space", nil)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("WaitForKey = %v, want ErrAborted", err)
	}
	if c.Frames() != 5 {
		t.Errorf("aborted after %d frames, want 5", c.Frames())
	}

	hs.EscapeAt = 0
	if _, err := c.Poll(); !errors.Is(err, ErrAborted) {
		t.Errorf("Poll after abort = %v", err)
	}
	if err := c.WaitForKey("space", nil); !errors.Is(err, ErrAborted) {
		t.Errorf("WaitForKey after abort = %v", err)
	}
	if hs.Frames != 5 || !c.Aborted() {
		t.Errorf("screen touched after abort: %d frames", hs.Frames)
	}
}

func TestWaitSleepsWithoutFlipping(t *testing.T) {
	c := NewFrameClock(quietScreen(), 60)
	c.Wait(time.Second)
	if c.Frames() != 0 {
		t.Errorf("Wait flipped %d frames", c.Frames())
	}
}

func TestHeadlessInterrupt(t *testing.T) {
	hs := quietScreen()
	c := NewFrameClock(hs, 60)
	hs.Interrupt()
	if _, err := c.Poll(); !errors.Is(err, ErrAborted) {
		t.Errorf("Poll after Interrupt = %v", err)
	}
}

func TestHeadlessAutopilotAnswersPrompt(t *testing.T) {
	hs := NewHeadlessScreen(800, 600, 60)
	hs.Pace = false
	c := NewFrameClock(hs, 60)
	if err := c.WaitForKey("space", Scene{{Name: PromptPrefix + "space"}}); err != nil {
		t.Fatal(err)
	}
	if c.Frames() != 1 {
		t.Errorf("prompt answered after %d frames, want 1", c.Frames())
	}
}
