package engine

import (
	"fmt"
	"path/filepath"
)

// locationParadigm runs the target-location modes: a cue, the mode's block
// runner, then either the flash-count form or the inter-block pause.
type locationParadigm struct {
	mode   Mode
	runner BlockRunner
}

func (p *locationParadigm) Run(s *Session) error {
	t := s.Timing()

	fmt.Printf("\nWaiting for spacebar to start %s\n", p.mode)
	if err := s.Clock.WaitForKey("space", s.instructions()); err != nil {
		return err
	}
	s.Screen.SetCursorVisible(false)
	fmt.Printf("Starting Condition: %s\n", p.mode)

	if p.mode.Flickers() {
		for _, loc := range s.Locations {
			if err := s.Push(FrequencyMarker(loc.Index, loc.Frequency)); err != nil {
				return err
			}
		}
	}

	order, err := TargetOrder(s.Rand, len(s.Locations), t.NumBlocks)
	if err != nil {
		return err
	}
	s.Log.Printf("target order: %v", order)

	var form *ResponseRoutine
	if p.mode.CountsFlashes() {
		w, h := s.Screen.Size()
		form = NewFlashCountRoutine(w, h, filepath.Join(s.Cfg.StimuliDir, "continue.png"))
	}

	for i, target := range order {
		b := &Block{Index: i, Target: target}
		s.SetBlock(i)
		fmt.Printf("Starting Block: %d (target loc_%d)\n", i, target)

		cue := with(s.silhouettes(-1), s.targetMarker(target))
		if err := s.Show(t.TargetID, cue, LocationMarker(p.mode, i, CatTargetMarker, target)); err != nil {
			return err
		}
		if err := s.Push(EventMarker(p.mode, i, EvBlockStart)); err != nil {
			return err
		}
		s.SetLevel(LevelBlockStart)

		if err := p.runner.RunBlock(s, b); err != nil {
			return err
		}

		if err := s.Push(EventMarker(p.mode, i, EvBlockEnd)); err != nil {
			return err
		}
		s.SetLevel(LevelOff)

		if form != nil {
			if err := s.Push(EventMarker(p.mode, i, EvFlashCountStart)); err != nil {
				return err
			}
			if err := s.RunResponse(form); err != nil {
				return err
			}
			continue
		}
		s.Clock.Wait(t.InterBlock)
	}
	return nil
}

// flickerRunner flickers every location at its own period for one long
// epoch. It emits no trial markers.
type flickerRunner struct{}

func (flickerRunner) RunBlock(s *Session, b *Block) error {
	s.SetLevel(LevelFlickerOn)
	n := s.Frames(s.Timing().FlickerTrial)
	if err := s.Run(n, s.flickerScene); err != nil {
		return err
	}
	for _, loc := range s.Locations {
		s.Log.Printf("block %d: loc_%d completed %d cycles in %d frames", b.Index, loc.Index, CompleteCycles(n, loc.Period), n)
	}
	return nil
}

// oddballRunner highlights one location per trial over the silhouettes,
// then blanks back to silhouettes only.
type oddballRunner struct{}

func (oddballRunner) RunBlock(s *Session, b *Block) error {
	t := s.Timing()
	seq := ShuffleNoAdjacent(s.Rand, locationIndices(s.Locations), t.Repeats)
	if k := AdjacentRepeats(seq); k > 0 {
		s.Log.Printf("block %d: %d adjacent repeats left after repair", b.Index, k)
	}
	sils := s.silhouettes(-1)
	for _, loc := range seq {
		if err := s.Frame(with(sils, s.stim(loc)), TrialMarker(s.Mode, b.Index, b.Target, loc)); err != nil {
			return err
		}
		s.Clock.Wait(t.Highlight)
		if err := s.Frame(sils); err != nil {
			return err
		}
		s.Clock.Wait(t.BetweenTrial)
	}
	return nil
}

// flickerOddballRunner flickers the highlighted stimulus in place of its
// silhouette for a short window, with every other silhouette flickering at
// its own period. A silhouettes-only flicker window follows each trial.
type flickerOddballRunner struct{}

func (flickerOddballRunner) RunBlock(s *Session, b *Block) error {
	t := s.Timing()
	seq := ShuffleNoAdjacent(s.Rand, locationIndices(s.Locations), t.Repeats)
	if k := AdjacentRepeats(seq); k > 0 {
		s.Log.Printf("block %d: %d adjacent repeats left after repair", b.Index, k)
	}
	s.SetLevel(LevelFlickerOn)

	on, between := s.Frames(t.FlickerOddballFlicker), s.Frames(t.BetweenTrial)
	for _, target := range seq {
		window := func(frame int) Scene {
			scene := make(Scene, 0, len(s.Locations))
			for _, loc := range s.Locations {
				if !Visible(frame, loc.Period) {
					continue
				}
				if loc.Index == target {
					scene = append(scene, s.stim(loc.Index))
				} else {
					scene = append(scene, s.sil(loc.Index))
				}
			}
			return scene
		}
		if err := s.Run(on, window, TrialMarker(s.Mode, b.Index, b.Target, target)); err != nil {
			return err
		}

		if err := s.Frame(nil); err != nil {
			return err
		}
		if err := s.Run(between, s.flickeringSilhouettes); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) flickeringSilhouettes(n int) Scene {
	scene := make(Scene, 0, len(s.Locations))
	for _, loc := range s.Locations {
		if Visible(n, loc.Period) {
			scene = append(scene, s.sil(loc.Index))
		}
	}
	return scene
}

// dannyFlickerRunner alternates a static preview of every stimulus with a
// flicker interval, DannyRepeats times. The frame counter runs on across
// repeats so phases stay continuous within the block.
type dannyFlickerRunner struct{}

func (dannyFlickerRunner) RunBlock(s *Session, b *Block) error {
	t := s.Timing()
	n := s.Frames(t.DannyFlickerTrial)
	frame := 0
	for r := 1; r <= t.DannyRepeats; r++ {
		if err := s.Frame(s.allStims()); err != nil {
			return err
		}
		s.Clock.Wait(t.DannyInterTrial)

		s.SetLevel(LevelFlickerOn)
		base := frame
		err := s.Run(n, func(i int) Scene { return s.flickerScene(base + i) }, RepeatMarker(s.Mode, b.Index, r))
		if err != nil {
			return err
		}
		frame += n
		s.SetLevel(LevelOff)
	}
	return nil
}

// stimPeriod pairs a location with the period it flickers at.
type stimPeriod struct {
	Loc    int
	Period int
}

// dannyFlickerOddballRunner flickers one stimulus per trial while the other
// locations hold their silhouettes. The counter runs on across trials.
type dannyFlickerOddballRunner struct{}

func (dannyFlickerOddballRunner) RunBlock(s *Session, b *Block) error {
	t := s.Timing()
	items := make([]stimPeriod, len(s.Locations))
	for i, loc := range s.Locations {
		items[i] = stimPeriod{Loc: loc.Index, Period: loc.Period}
	}
	seq := ShuffleNoAdjacent(s.Rand, items, t.Repeats)
	if k := AdjacentRepeats(seq); k > 0 {
		s.Log.Printf("block %d: %d adjacent repeats left after repair", b.Index, k)
	}

	n := s.Frames(t.DannyFlickerOddballFlicker)
	frame := 0
	for _, it := range seq {
		marker := TrialMarker(s.Mode, b.Index, b.Target, it.Loc)
		others := s.silhouettes(it.Loc)
		s.SetLevel(LevelFlickerOn)
		base := frame
		err := s.Run(n, func(i int) Scene {
			if Visible(base+i, it.Period) {
				return with(others, s.stim(it.Loc))
			}
			return others
		}, marker)
		if err != nil {
			return err
		}
		frame += n
		s.SetLevel(LevelOff)

		if err := s.Frame(s.silhouettes(-1)); err != nil {
			return err
		}
		s.Clock.Wait(t.BetweenTrial)
	}
	return nil
}

func locationIndices(locs []Location) []int {
	idx := make([]int, len(locs))
	for i, loc := range locs {
		idx[i] = loc.Index
	}
	return idx
}
