package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"
)

// blockMarkers groups the block-level markers of a run by block index.
func blockMarkers(t *testing.T, tags []string) map[int][]MarkerInfo {
	t.Helper()
	out := map[int][]MarkerInfo{}
	for _, tag := range tags {
		if strings.HasPrefix(tag, "loc_") {
			continue
		}
		info, err := ParseMarker(tag)
		if err != nil {
			t.Fatalf("bad marker %q: %v", tag, err)
		}
		out[info.Block] = append(out[info.Block], info)
	}
	return out
}

func countCategory(infos []MarkerInfo, cat string) int {
	n := 0
	for _, m := range infos {
		if m.Category == cat {
			n++
		}
	}
	return n
}

func runParadigm(t *testing.T, rig *testRig) {
	t.Helper()
	p, err := ParadigmFor(rig.s.Mode)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Run(rig.s); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestOddballMarkerCounts(t *testing.T) {
	rig := newTestRig(t, ModeOddball, nil)
	runParadigm(t, rig)

	blocks := blockMarkers(t, rig.outlet.tags)
	if len(blocks) != 6 {
		t.Fatalf("markers for %d blocks, want 6", len(blocks))
	}
	visits := make([]int, 6)
	for b, infos := range blocks {
		if n := countCategory(infos, EvBlockStart); n != 1 {
			t.Errorf("block %d: %d block_start markers", b, n)
		}
		if n := countCategory(infos, EvBlockEnd); n != 1 {
			t.Errorf("block %d: %d block_end markers", b, n)
		}
		if n := countCategory(infos, EvFlashCountStart); n != 1 {
			t.Errorf("block %d: %d flash_count_start markers", b, n)
		}
		trials := countCategory(infos, CatTarget) + countCategory(infos, CatNonTarget)
		if trials != 60 {
			t.Errorf("block %d: %d trial markers, want 60", b, trials)
		}

		if infos[0].Category != CatTargetMarker {
			t.Fatalf("block %d opens with %+v, want the target cue", b, infos[0])
		}
		target := infos[0].Loc
		visits[target]++
		for _, m := range infos {
			if m.Category == CatTarget && m.Loc != target {
				t.Errorf("block %d: target marker at loc_%d, cue was loc_%d", b, m.Loc, target)
			}
		}
		if n := countCategory(infos, CatTarget); n != 10 {
			t.Errorf("block %d: target shown %d times, want 10", b, n)
		}
	}
	for loc, n := range visits {
		if n != 1 {
			t.Errorf("location %d was the target of %d blocks", loc, n)
		}
	}

	responses := 0
	for _, e := range rig.s.Events.Entries {
		if e.Type == TypeResponse {
			responses++
			if e.Value != "6" {
				t.Errorf("response = %q, want the autopilot's 6", e.Value)
			}
		}
	}
	if responses != 6 {
		t.Errorf("%d flash-count responses, want 6", responses)
	}
}

func TestOddballTrialMarkerOnStimulusFrame(t *testing.T) {
	rig := newTestRig(t, ModeOddball, func(cfg *Config, _ *Deps) {
		cfg.Timing.Repeats = 2
	})
	runParadigm(t, rig)

	for i, tag := range rig.outlet.tags {
		info, err := ParseMarker(tag)
		if err != nil || (info.Category != CatTarget && info.Category != CatNonTarget) {
			continue
		}
		scene := rig.screen.scenes[rig.outlet.frames[i]]
		if _, ok := scene.Find("stim/" + strconv.Itoa(info.Loc)); !ok {
			t.Errorf("%s: flipped frame does not show the stimulus", tag)
		}
	}
}

func TestFlickerMarkers(t *testing.T) {
	rig := newTestRig(t, ModeFlicker, func(cfg *Config, _ *Deps) {
		cfg.Timing.FlickerTrial = time.Second
	})
	runParadigm(t, rig)

	tags := rig.outlet.tags
	for i := 0; i < 6; i++ {
		if !strings.HasPrefix(tags[i], "loc_"+strconv.Itoa(i)+"/freq_") {
			t.Errorf("marker %d = %q, want the frequency of loc_%d", i, tags[i], i)
		}
	}
	for b, infos := range blockMarkers(t, tags) {
		if len(infos) != 3 {
			t.Errorf("block %d: markers %+v, want cue, block_start and block_end only", b, infos)
		}
	}
}

func TestFlickerScheduleMatchesPeriods(t *testing.T) {
	rig := newTestRig(t, ModeFlicker, func(cfg *Config, _ *Deps) {
		cfg.Timing.FlickerTrial = time.Second
	})
	runParadigm(t, rig)

	// the first epoch starts on the frame after block_0/block_start
	var start int
	for i, tag := range rig.outlet.tags {
		if tag == EventMarker(ModeFlicker, 0, EvBlockStart) {
			start = rig.outlet.frames[i]
		}
	}
	for n := 1; n <= 60; n++ {
		scene := rig.screen.scenes[start+n-1]
		for _, loc := range rig.s.Locations {
			_, shown := scene.Find("stim/" + strconv.Itoa(loc.Index))
			if want := Visible(n, loc.Period); shown != want {
				t.Fatalf("frame %d loc %d: shown=%v, want %v", n, loc.Index, shown, want)
			}
		}
	}
}

func TestFlickerOddballMarkers(t *testing.T) {
	rig := newTestRig(t, ModeFlickerOddball, nil)
	runParadigm(t, rig)
	for b, infos := range blockMarkers(t, rig.outlet.tags) {
		trials := countCategory(infos, CatTarget) + countCategory(infos, CatNonTarget)
		if trials != 60 {
			t.Errorf("block %d: %d trial markers, want 60", b, trials)
		}
	}
	for i, tag := range rig.outlet.tags {
		info, err := ParseMarker(tag)
		if err != nil || (info.Category != CatTarget && info.Category != CatNonTarget) {
			continue
		}
		scene := rig.screen.scenes[rig.outlet.frames[i]]
		if _, ok := scene.Find("stim/" + strconv.Itoa(info.Loc)); !ok {
			t.Fatalf("%s: stimulus not visible on its first flicker frame", tag)
		}
		if _, ok := scene.Find("sil/" + strconv.Itoa(info.Loc)); ok {
			t.Fatalf("%s: silhouette drawn under the flickering stimulus", tag)
		}
	}
}

func TestDannyFlickerRepeats(t *testing.T) {
	rig := newTestRig(t, ModeDannyFlicker, func(cfg *Config, _ *Deps) {
		cfg.Timing.DannyFlickerTrial = 200 * time.Millisecond
	})
	runParadigm(t, rig)
	for b, infos := range blockMarkers(t, rig.outlet.tags) {
		for r := 1; r <= 10; r++ {
			if countCategory(infos, "repeat_"+strconv.Itoa(r)) != 1 {
				t.Errorf("block %d: missing repeat_%d", b, r)
			}
		}
		if countCategory(infos, EvBlockStart) != 1 || countCategory(infos, EvBlockEnd) != 1 {
			t.Errorf("block %d: block markers %+v", b, infos)
		}
	}
}

func TestDannyFlickerOddballMarkers(t *testing.T) {
	rig := newTestRig(t, ModeDannyFlickerOddball, nil)
	runParadigm(t, rig)
	blocks := blockMarkers(t, rig.outlet.tags)
	if len(blocks) != 6 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	for b, infos := range blocks {
		trials := countCategory(infos, CatTarget) + countCategory(infos, CatNonTarget)
		if trials != 60 {
			t.Errorf("block %d: %d trial markers, want 60", b, trials)
		}
		if countCategory(infos, EvFlashCountStart) != 1 {
			t.Errorf("block %d: flash count not started once", b)
		}
	}
}

func TestAttentionCueRun(t *testing.T) {
	rig := newTestRig(t, ModeAttentionCue, func(cfg *Config, _ *Deps) {
		cfg.Timing.CueBlocks = 2
		cfg.Timing.CueTrial = time.Second
	})
	runParadigm(t, rig)

	blocks := blockMarkers(t, rig.outlet.tags)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	for b, infos := range blocks {
		if countCategory(infos, EvBlockStart) != 1 || countCategory(infos, EvBlockEnd) != 1 {
			t.Errorf("block %d: block markers %+v", b, infos)
		}
		if n := countCategory(infos, CatTarget); n != 8 {
			t.Errorf("block %d: %d trials, want 8", b, n)
		}
		left := 0
		for _, m := range infos {
			if m.Category == CatTarget && m.Loc == 0 {
				left++
			}
		}
		if left != 4 {
			t.Errorf("block %d: %d left-attention trials, want 4", b, left)
		}
	}

	want := []Level{LevelBlockStart}
	first := rig.trigger.levels[:7]
	want = append(want, first[1], LevelFixationOn, LevelArrowOnset, LevelFixation2On, LevelFlickerOn, LevelOff)
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("trigger sequence %v, want %v", first, want)
		}
	}
	if first[1] < LevelLeftAtt10Left12Right {
		t.Errorf("second level %v is not a condition code", first[1])
	}
}

func assertAbortedAt(t *testing.T, rig *testRig, err error, at int) {
	t.Helper()
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("Run = %v, want ErrAborted", err)
	}
	if rig.screen.Frames != at {
		t.Errorf("%d frames flipped, want %d", rig.screen.Frames, at)
	}
	for i, f := range rig.outlet.frames {
		if f >= at {
			t.Errorf("marker %q pushed after escape (frame %d)", rig.outlet.tags[i], f)
		}
	}

	if err := rig.s.Shutdown(true); err != nil {
		t.Fatal(err)
	}
	rig.s.Shutdown(true)
	if rig.outlet.closed != 1 || rig.trigger.closed != 1 {
		t.Errorf("outlet closed %d times, trigger %d times", rig.outlet.closed, rig.trigger.closed)
	}
}

func TestEscapeInEveryMode(t *testing.T) {
	for _, mode := range AllModes {
		for _, at := range []int{1, 137, 900} {
			t.Run(fmt.Sprintf("%s/frame_%d", mode, at), func(t *testing.T) {
				rig := newTestRig(t, mode, nil)
				rig.screen.EscapeAt = at
				p, err := ParadigmFor(mode)
				if err != nil {
					t.Fatal(err)
				}
				assertAbortedAt(t, rig, p.Run(rig.s), at)
			})
		}
	}
}

func TestEscapeDuringFlashCount(t *testing.T) {
	short := func(cfg *Config, _ *Deps) { cfg.Timing.Repeats = 1 }
	for _, mode := range AllModes {
		if !mode.CountsFlashes() {
			continue
		}
		t.Run(string(mode), func(t *testing.T) {
			ref := newTestRig(t, mode, short)
			runParadigm(t, ref)
			formAt := -1
			for i, tag := range ref.outlet.tags {
				if tag == EventMarker(mode, 0, EvFlashCountStart) {
					formAt = ref.outlet.frames[i]
				}
			}
			if formAt < 0 {
				t.Fatal("reference run never opened the form")
			}

			rig := newTestRig(t, mode, short)
			rig.screen.EscapeAt = formAt + 1
			p, _ := ParadigmFor(mode)
			err := p.Run(rig.s)
			if got := rig.s.Events.Labels(TypeRoutine); len(got) != 1 || got[0] != "flash.started" {
				t.Errorf("routine events = %v, want only the start", got)
			}
			if got := rig.s.Events.Labels(TypeResponse); len(got) != 0 {
				t.Errorf("response logged after escape: %v", got)
			}
			assertAbortedAt(t, rig, err, formAt+1)
		})
	}
}
