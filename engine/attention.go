package engine

import "fmt"

// attentionParadigm is the letter-stream SSVEP task: two boxes left and right
// of fixation flicker at the condition's frequencies while a stream of
// letters runs inside each, and an arrow cues the side to attend.
type attentionParadigm struct{}

func (p *attentionParadigm) Run(s *Session) error {
	t := s.Timing()
	blocks := CounterbalancedBlocks(s.Rand, s.Conditions, t.CueBlocks, t.CueConditionReps)

	fmt.Printf("\nWaiting for spacebar to start experiment\n")
	if err := s.Clock.WaitForKey("space", s.prompt("Press the spacebar to start the experiment")); err != nil {
		return err
	}
	s.Screen.SetCursorVisible(false)
	fmt.Printf("Starting Experiment\n")

	for i, block := range blocks {
		if err := s.Frame(nil); err != nil {
			return err
		}
		if i > 0 {
			if err := s.Clock.WaitForKey("space", s.prompt("You may take a break. \nPress the spacebar to start the next block")); err != nil {
				return err
			}
		}
		s.SetBlock(i)
		fmt.Printf("*-- Starting Block %d --*\n", i+1)
		s.SetLevel(LevelBlockStart)
		if err := s.Push(EventMarker(ModeAttentionCue, i, EvBlockStart)); err != nil {
			return err
		}

		for j, cond := range block {
			fmt.Printf("\nTrial %d: Attention %s; Left: %gHz, Right: %gHz\n", j+1, cond.Attention, cond.LeftHz, cond.RightHz)
			if j > 0 {
				s.Clock.Wait(t.InterTrial)
			}
			if err := p.runTrial(s, i, cond); err != nil {
				return err
			}
		}

		if err := s.Push(EventMarker(ModeAttentionCue, i, EvBlockEnd)); err != nil {
			return err
		}
	}
	fmt.Printf("\nExperiment complete. Exiting...\n")
	return nil
}

func (p *attentionParadigm) runTrial(s *Session, block int, cond Condition) error {
	t := s.Timing()
	periods := [2]int{}
	for side, hz := range []float64{cond.LeftHz, cond.RightHz} {
		period, err := FlickerPeriod(s.RefreshRate, hz)
		if err != nil {
			return err
		}
		periods[side] = period
	}

	fix := s.fixation()
	ready := Element{
		Kind:   ElemText,
		Name:   "ready",
		Source: "Ready",
		Bounds: CenteredRect(s.Layout.Proj.ToScreen(0, 3), s.Layout.Proj.Pixels(6), s.Layout.Proj.Pixels(1.5)),
		Color:  s.Cfg.TextColor,
	}

	if err := s.Frame(nil); err != nil {
		return err
	}
	s.SetLevel(cond.Level)
	if err := s.Show(t.Ready, Scene{fix, ready}); err != nil {
		return err
	}
	s.SetLevel(LevelFixationOn)
	if err := s.Show(t.Fixation, Scene{fix}); err != nil {
		return err
	}

	if err := s.Frame(nil); err != nil {
		return err
	}
	s.SetLevel(LevelArrowOnset)
	if err := s.Show(t.Arrow, Scene{s.arrow(cond.Attention)}); err != nil {
		return err
	}

	if err := s.Frame(Scene{fix}); err != nil {
		return err
	}
	s.SetLevel(LevelFixation2On)
	s.Clock.Wait(t.Fixation2)

	n := s.Frames(t.CueTrial)
	perLetter := s.Frames(t.LetterDuration)
	streams := [2][]string{
		LetterStream(s.Rand, Letters, n/perLetter+1),
		LetterStream(s.Rand, Letters, n/perLetter+1),
	}

	s.SetLevel(LevelFlickerOn)
	marker := LocationMarker(ModeAttentionCue, block, CatTarget, cond.AttendedLoc())
	err := s.Run(n, func(frame int) Scene {
		scene := Scene{fix}
		for side := range periods {
			if Visible(frame, periods[side]) {
				scene = append(scene, s.sideBox(side))
			}
		}
		letter := frame / perLetter
		for side := range streams {
			scene = append(scene, s.letter(side, streams[side][letter]))
		}
		return scene
	}, marker)
	if err != nil {
		return err
	}
	s.SetLevel(LevelOff)
	return nil
}
