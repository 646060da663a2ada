package engine

import (
	"math"
	"testing"
	"time"
)

func press(p Point) Input   { return Input{Mouse: p, Buttons: [3]bool{true, false, false}} }
func release(p Point) Input { return Input{Mouse: p} }

// clickAt steps one press and one release at p.
func clickAt(r *ResponseRoutine, p Point) bool {
	if r.Step(press(p), 0) {
		return true
	}
	return r.Step(release(p), 0)
}

func TestFlashCountLayout(t *testing.T) {
	r := NewFlashCountRoutine(1920, 1080, "continue.png")
	if len(r.Form.Options) != 13 || r.Form.Options[12] != "12" {
		t.Fatalf("options = %v", r.Form.Options)
	}
	for i := 1; i < len(r.Form.OptionBounds); i++ {
		a, b := r.Form.OptionBounds[i-1], r.Form.OptionBounds[i]
		if a.X+a.W > b.X {
			t.Errorf("option %d overlaps option %d", i-1, i)
		}
	}
	sub := r.Submit.Bounds
	if got := sub.X + sub.W; math.Abs(float64(got)-1770) > 0.01 {
		t.Errorf("submit right edge = %v", got)
	}
	if r.Form.Rating != -1 || r.Form.Status != NotStarted || r.Submit.Status != NotStarted {
		t.Errorf("fresh routine not reset: %+v %+v", r.Form, r.Submit)
	}
}

func TestResponseRoutineSubmitNeedsAnswer(t *testing.T) {
	r := NewFlashCountRoutine(1920, 1080, "continue.png")
	submit := r.Submit.Bounds.Center()

	r.Step(Input{}, 0)
	if _, ok := r.Scene(white).Find("submit"); ok {
		t.Fatal("submit shown before the form is complete")
	}
	if clickAt(r, submit) {
		t.Fatal("routine ended on a click before any rating")
	}
	if clickAt(r, Point{X: 5, Y: 5}) {
		t.Fatal("routine ended on a click outside every component")
	}
	if len(r.Clicks) != 2 || r.Clicks[0].Clicked != "" {
		t.Errorf("clicks = %+v, want two invalid clicks", r.Clicks)
	}

	if clickAt(r, r.Form.OptionBounds[3].Center()) {
		t.Fatal("routine ended on an option click")
	}
	if r.Form.Rating != 3 || r.Submit.Status != Started {
		t.Fatalf("rating %d, submit %v", r.Form.Rating, r.Submit.Status)
	}
	if el, ok := r.Scene(white).Find("option/3"); !ok || !el.Active {
		t.Error("selected option not drawn active")
	}

	if !r.Step(press(submit), time.Second) {
		t.Fatal("press on the started submit button did not end the routine")
	}
	if r.Form.Status != Finished || r.Submit.Status != Finished || r.MouseStatus != Finished {
		t.Errorf("statuses after submit: %v %v %v", r.Form.Status, r.Submit.Status, r.MouseStatus)
	}
	last := r.Clicks[len(r.Clicks)-1]
	if last.Clicked != "continue" || last.Time != time.Second {
		t.Errorf("last click = %+v", last)
	}
	if r.Scene(white) != nil {
		t.Error("finished routine still draws")
	}
}

func TestResponseRoutineIgnoresHeldButton(t *testing.T) {
	r := NewFlashCountRoutine(1920, 1080, "continue.png")
	opt := r.Form.OptionBounds[5].Center()

	r.Step(press(opt), 0)
	r.Step(press(opt), 0)
	if len(r.Clicks) != 0 || r.Form.Rating != -1 {
		t.Fatalf("held button counted as a click: %+v", r.Clicks)
	}
	r.Step(release(opt), 0)
	r.Step(press(opt), 0)
	if len(r.Clicks) != 1 || r.Form.Rating != 5 {
		t.Errorf("fresh press not recorded: rating %d, clicks %+v", r.Form.Rating, r.Clicks)
	}
}

func TestResponseRoutineChangeAnswer(t *testing.T) {
	r := NewFlashCountRoutine(1920, 1080, "continue.png")
	r.Step(Input{}, 0)
	clickAt(r, r.Form.OptionBounds[2].Center())
	clickAt(r, r.Form.OptionBounds[9].Center())
	if r.Form.Rating != 9 {
		t.Errorf("rating = %d, want the later choice 9", r.Form.Rating)
	}

	r.Reset()
	if r.Form.Rating != -1 || len(r.Clicks) != 0 || r.Done() {
		t.Error("Reset left state behind")
	}
}

func TestRunResponseLogsAnswer(t *testing.T) {
	rig := newTestRig(t, ModeOddball, nil)
	r := NewFlashCountRoutine(1920, 1080, "continue.png")
	if err := rig.s.RunResponse(r); err != nil {
		t.Fatal(err)
	}
	if last := rig.screen.scenes[len(rig.screen.scenes)-1]; len(last) != 0 {
		t.Errorf("form still on screen after submit: %v", last)
	}
	var answers, clicks []string
	for _, e := range rig.s.Events.Entries {
		switch e.Type {
		case TypeResponse:
			answers = append(answers, e.Value)
		case TypeClick:
			clicks = append(clicks, e.Label)
		}
	}
	if len(answers) != 1 || answers[0] != "6" {
		t.Errorf("answers = %v", answers)
	}
	if len(clicks) != 2 || clicks[0] != "" || clicks[1] != "continue" {
		t.Errorf("clicks = %q, want an option click then continue", clicks)
	}
	routines := rig.s.Events.Labels(TypeRoutine)
	if len(routines) != 2 || routines[0] != "flash.started" || routines[1] != "flash.stopped" {
		t.Errorf("routine events = %v", routines)
	}
}
