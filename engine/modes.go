package engine

import (
	"fmt"
	"path/filepath"
)

// Mode selects the paradigm of a run. The modes are mutually exclusive.
type Mode string

const (
	ModeFlicker             Mode = "Flicker"
	ModeOddball             Mode = "Oddball"
	ModeFlickerOddball      Mode = "FlickerOddball"
	ModeDannyFlicker        Mode = "DannyFlicker"
	ModeDannyFlickerOddball Mode = "DannyFlickerOddball"
	ModeAttentionCue        Mode = "OPM_SSVEP"
)

var AllModes = []Mode{
	ModeFlicker,
	ModeOddball,
	ModeFlickerOddball,
	ModeDannyFlicker,
	ModeDannyFlickerOddball,
	ModeAttentionCue,
}

func ParseMode(s string) (Mode, error) {
	for _, m := range AllModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown condition %q", s)
}

// Flickers reports whether any location flickers during the mode.
func (m Mode) Flickers() bool {
	switch m {
	case ModeFlicker, ModeFlickerOddball, ModeDannyFlicker, ModeDannyFlickerOddball:
		return true
	}
	return false
}

// CountsFlashes reports whether blocks end with the flash-count form.
func (m Mode) CountsFlashes() bool {
	switch m {
	case ModeOddball, ModeFlickerOddball, ModeDannyFlickerOddball:
		return true
	}
	return false
}

// StimulusDir is the image set presented at the locations. Plain flicker
// uses the grey silhouettes, every other mode the white faces.
func (m Mode) StimulusDir(root string) string {
	if m == ModeFlicker {
		return filepath.Join(root, "sil_grey")
	}
	return filepath.Join(root, "white_faces")
}

func (m Mode) InstructionImage(root string) string {
	name := map[Mode]string{
		ModeOddball:             "oddball_instruct.png",
		ModeFlickerOddball:      "flicker_oddball_instruct.png",
		ModeFlicker:             "flicker_instruct.png",
		ModeDannyFlicker:        "danny_flicker_instruct.png",
		ModeDannyFlickerOddball: "danny_flicker_oddball_instruct.png",
	}[m]
	if name == "" {
		name = "instruct_0.png"
	}
	return filepath.Join(root, "instructions", name)
}

// Paradigm runs a whole session in one mode.
type Paradigm interface {
	Run(s *Session) error
}

// BlockRunner presents the trials of one block. Block start/end markers and
// the target cue are handled by the caller.
type BlockRunner interface {
	RunBlock(s *Session, b *Block) error
}

// Block is one target location and the trials presented around it.
type Block struct {
	Index  int
	Target int
}

// ParadigmFor returns the paradigm implementing m.
func ParadigmFor(m Mode) (Paradigm, error) {
	switch m {
	case ModeFlicker:
		return &locationParadigm{mode: m, runner: flickerRunner{}}, nil
	case ModeOddball:
		return &locationParadigm{mode: m, runner: oddballRunner{}}, nil
	case ModeFlickerOddball:
		return &locationParadigm{mode: m, runner: flickerOddballRunner{}}, nil
	case ModeDannyFlicker:
		return &locationParadigm{mode: m, runner: dannyFlickerRunner{}}, nil
	case ModeDannyFlickerOddball:
		return &locationParadigm{mode: m, runner: dannyFlickerOddballRunner{}}, nil
	case ModeAttentionCue:
		return &attentionParadigm{}, nil
	}
	return nil, fmt.Errorf("unknown condition %q", m)
}
