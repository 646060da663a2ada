package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"gopkg.in/ini.v1"
)

// Timing holds the presentation constants of every mode.
type Timing struct {
	NumLocations      int
	NumBlocks         int
	Repeats           int
	DistFromCenter    float64 // degrees
	ImageSize         float64 // degrees
	TargetMarkerScale float64

	TargetID              time.Duration
	FlickerTrial          time.Duration
	FlickerOddballFlicker time.Duration
	Highlight             time.Duration
	BetweenTrial          time.Duration
	InterBlock            time.Duration

	DannyFlickerTrial          time.Duration
	DannyInterTrial            time.Duration
	DannyRepeats               int
	DannyFlickerOddballFlicker time.Duration

	// Attention-cue paradigm
	CueBlocks         int
	CueConditionReps  int
	LetterDuration    time.Duration
	CueTrial          time.Duration
	Ready             time.Duration
	Fixation          time.Duration
	Arrow             time.Duration
	Fixation2         time.Duration
	InterTrial        time.Duration
	BoxSize           float64 // degrees
	LetterSize        float64 // degrees
	FixationDistance  float64 // degrees
	FixationCrossSize float64 // degrees
}

func DefaultTiming() Timing {
	return Timing{
		NumLocations:      6,
		NumBlocks:         6,
		Repeats:           10,
		DistFromCenter:    8,
		ImageSize:         5,
		TargetMarkerScale: 1.5,

		TargetID:              2 * time.Second,
		FlickerTrial:          30 * time.Second,
		FlickerOddballFlicker: 500 * time.Millisecond,
		Highlight:             500 * time.Millisecond,
		BetweenTrial:          250 * time.Millisecond,
		InterBlock:            2 * time.Second,

		DannyFlickerTrial:          5 * time.Second,
		DannyInterTrial:            time.Second,
		DannyRepeats:               10,
		DannyFlickerOddballFlicker: 500 * time.Millisecond,

		CueBlocks:         15,
		CueConditionReps:  2,
		LetterDuration:    200 * time.Millisecond,
		CueTrial:          10 * time.Second,
		Ready:             2 * time.Second,
		Fixation:          3 * time.Second,
		Arrow:             1500 * time.Millisecond,
		Fixation2:         500 * time.Millisecond,
		InterTrial:        2 * time.Second,
		BoxSize:           2,
		LetterSize:        2,
		FixationDistance:  5.7,
		FixationCrossSize: 1,
	}
}

type Config struct {
	Participant    string
	Session        string
	Condition      string
	Monitor        string
	DataDir        string
	StimuliDir     string
	ConditionsFile string
	MonitorsFile   string
	FontFile       string
	TriggerDevice  string
	MarkerAddr     string
	RecorderPath   string
	RecorderAddr   string
	RecorderGrace  time.Duration
	NoRecorder     bool
	DryRun         bool
	FontSize       int
	DisplayIndex   int // -1 uses the monitor profile's screen
	RefreshRate    float64
	Seed           int64
	Fullscreen     bool
	VSync          bool
	BGColor        sdl.Color
	TextColor      sdl.Color
	FixationColor  sdl.Color
	TargetColor    sdl.Color
	Timing         Timing
}

// ParseColor reads "r,g,b" or "r,g,b,a". Alpha defaults to opaque.
func ParseColor(s string) sdl.Color {
	var r, g, b, a uint8
	n, _ := fmt.Sscanf(s, "%d,%d,%d,%d", &r, &g, &b, &a)
	if n == 3 {
		a = 255
	}
	return sdl.Color{R: r, G: g, B: b, A: a}
}

func formatColor(c sdl.Color) string {
	return fmt.Sprintf("%d,%d,%d,%d", c.R, c.G, c.B, c.A)
}

// RandomParticipant returns an id of the form sub-NNN with NNN in 200..999.
func RandomParticipant(rng *rand.Rand) string {
	return fmt.Sprintf("sub-%03d", 200+rng.Intn(800))
}

const CacheFile = ".bciparadigm_cache"

// SaveCache stores the operator's last choices.
func (cfg *Config) SaveCache(path string) error {
	f := ini.Empty()
	sec := f.Section("setup")
	sec.Key("participant").SetValue(cfg.Participant)
	sec.Key("session").SetValue(cfg.Session)
	sec.Key("condition").SetValue(cfg.Condition)
	sec.Key("monitor").SetValue(cfg.Monitor)
	sec.Key("data_dir").SetValue(cfg.DataDir)
	sec.Key("stimuli_dir").SetValue(cfg.StimuliDir)
	sec.Key("trigger_device").SetValue(cfg.TriggerDevice)
	sec.Key("marker_addr").SetValue(cfg.MarkerAddr)
	sec.Key("fullscreen").SetValue(fmt.Sprint(cfg.Fullscreen))

	col := f.Section("colors")
	col.Key("bg_color").SetValue(formatColor(cfg.BGColor))
	col.Key("text_color").SetValue(formatColor(cfg.TextColor))
	col.Key("fixation_color").SetValue(formatColor(cfg.FixationColor))
	col.Key("target_color").SetValue(formatColor(cfg.TargetColor))
	return f.SaveTo(path)
}

// LoadCache restores settings saved by SaveCache. A missing or unreadable
// cache leaves cfg untouched.
func (cfg *Config) LoadCache(path string) {
	f, err := ini.Load(path)
	if err != nil {
		return
	}
	sec := f.Section("setup")
	cfg.Participant = sec.Key("participant").MustString(cfg.Participant)
	cfg.Session = sec.Key("session").MustString(cfg.Session)
	cfg.Condition = sec.Key("condition").MustString(cfg.Condition)
	cfg.Monitor = sec.Key("monitor").MustString(cfg.Monitor)
	cfg.DataDir = sec.Key("data_dir").MustString(cfg.DataDir)
	cfg.StimuliDir = sec.Key("stimuli_dir").MustString(cfg.StimuliDir)
	cfg.TriggerDevice = sec.Key("trigger_device").MustString(cfg.TriggerDevice)
	cfg.MarkerAddr = sec.Key("marker_addr").MustString(cfg.MarkerAddr)
	cfg.Fullscreen = sec.Key("fullscreen").MustBool(cfg.Fullscreen)

	col := f.Section("colors")
	for key, dst := range map[string]*sdl.Color{
		"bg_color":       &cfg.BGColor,
		"text_color":     &cfg.TextColor,
		"fixation_color": &cfg.FixationColor,
		"target_color":   &cfg.TargetColor,
	} {
		if col.HasKey(key) {
			*dst = ParseColor(col.Key(key).String())
		}
	}
}

// Validate checks the settings a run cannot start without.
func (cfg *Config) Validate() error {
	if _, err := ParseMode(cfg.Condition); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Participant) == "" {
		return fmt.Errorf("participant id is required")
	}
	if strings.TrimSpace(cfg.Session) == "" {
		return fmt.Errorf("session is required")
	}
	t := cfg.Timing
	if t.NumLocations <= 0 {
		return fmt.Errorf("location count must be positive")
	}
	if t.NumBlocks <= 0 || t.NumBlocks%t.NumLocations != 0 {
		return fmt.Errorf("block count %d must be a multiple of %d locations", t.NumBlocks, t.NumLocations)
	}
	if t.Repeats <= 0 || t.DannyRepeats <= 0 || t.CueBlocks <= 0 || t.CueConditionReps <= 0 {
		return fmt.Errorf("repeat and block counts must be positive")
	}
	for name, d := range map[string]time.Duration{
		"target id":             t.TargetID,
		"flicker trial":         t.FlickerTrial,
		"flicker oddball":       t.FlickerOddballFlicker,
		"highlight":             t.Highlight,
		"danny flicker trial":   t.DannyFlickerTrial,
		"danny flicker oddball": t.DannyFlickerOddballFlicker,
		"letter duration":       t.LetterDuration,
		"attention trial":       t.CueTrial,
	} {
		if d <= 0 {
			return fmt.Errorf("%s duration must be positive", name)
		}
	}
	if cfg.RefreshRate < 0 {
		return fmt.Errorf("refresh rate must not be negative")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Session:       "ses-001",
		Condition:     string(ModeFlicker),
		Monitor:       "testMonitor",
		DataDir:       "data",
		StimuliDir:    "images",
		FontSize:      24,
		DisplayIndex:  -1,
		RecorderAddr:  DefaultRecorderAddr,
		RecorderGrace: 15 * time.Second,
		VSync:         true,
		Fullscreen:    true,
		BGColor:       sdl.Color{R: 0, G: 0, B: 0, A: 255},
		TextColor:     sdl.Color{R: 255, G: 255, B: 255, A: 255},
		FixationColor: sdl.Color{R: 255, G: 0, B: 255, A: 255},
		TargetColor:   sdl.Color{R: 255, G: 0, B: 255, A: 255},
		Timing:        DefaultTiming(),
	}
}
