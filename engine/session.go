package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DataPaths locates the output files of one participant/session/task.
type DataPaths struct {
	Dir    string // .../beh
	EEGDir string
	Stem   string
}

func NewDataPaths(root, participant, session string, mode Mode) DataPaths {
	base := filepath.Join(root, participant, session)
	dir := filepath.Join(base, "beh")
	return DataPaths{
		Dir:    dir,
		EEGDir: filepath.Join(base, "eeg"),
		Stem:   filepath.Join(dir, fmt.Sprintf("%s_task-%s", participant, mode)),
	}
}

func (p DataPaths) Create() error {
	for _, d := range []string{p.Dir, p.EEGDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (p DataPaths) CSV() string { return p.Stem + ".csv" }
func (p DataPaths) DB() string  { return p.Stem + ".db" }
func (p DataPaths) Log() string { return p.Stem + ".log" }

// Deps are the collaborators a session drives. Recorder, Store and Paths may
// be nil.
type Deps struct {
	Screen   Screen
	Markers  MarkerOutlet
	Trigger  TriggerDevice
	Recorder *Recorder
	Store    *Store
	Paths    *DataPaths
	Log      *log.Logger
	Closers  []io.Closer
}

// Session is the context of one run. It is created at startup, passed to
// every component, and torn down exactly once by Shutdown.
type Session struct {
	ID          uuid.UUID
	Cfg         *Config
	Mode        Mode
	Profile     MonitorProfile
	RefreshRate float64
	Seed        int64

	Screen   Screen
	Clock    *FrameClock
	Markers  MarkerOutlet
	Trigger  TriggerDevice
	Recorder *Recorder
	Store    *Store
	Paths    *DataPaths
	Log      *log.Logger
	Events   *EventLog
	Rand     *rand.Rand

	Locations  []Location
	Layout     *Layout
	Conditions []Condition

	block   int
	started time.Time
	closers []io.Closer

	shutdownOnce sync.Once
	shutdownErr  error
}

func NewSession(cfg *Config, profile MonitorProfile, d Deps) (*Session, error) {
	mode, err := ParseMode(cfg.Condition)
	if err != nil {
		return nil, err
	}
	if d.Screen == nil || d.Markers == nil {
		return nil, fmt.Errorf("session needs a screen and a marker outlet")
	}
	if d.Trigger == nil {
		d.Trigger = NopTrigger{}
	}
	if d.Log == nil {
		d.Log = log.New(io.Discard, "", 0)
	}

	rate := cfg.RefreshRate
	if rate <= 0 {
		rate = profile.RefreshRate
	}
	if rate <= 0 {
		rate = d.Screen.RefreshRate()
	}
	if rate <= 0 {
		return nil, fmt.Errorf("could not determine refresh rate")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		ID:          uuid.New(),
		Cfg:         cfg,
		Mode:        mode,
		Profile:     profile,
		RefreshRate: rate,
		Seed:        seed,
		Screen:      d.Screen,
		Clock:       NewFrameClock(d.Screen, rate),
		Markers:     d.Markers,
		Trigger:     d.Trigger,
		Recorder:    d.Recorder,
		Store:       d.Store,
		Paths:       d.Paths,
		Log:         d.Log,
		Events:      &EventLog{},
		Rand:        rand.New(rand.NewSource(seed)),
		Conditions:  DefaultConditions,
		block:       -1,
		started:     time.Now(),
		closers:     d.Closers,
	}

	if mode == ModeAttentionCue {
		s.Locations = make([]Location, 2)
		for i := range s.Locations {
			s.Locations[i] = Location{Index: i, X: []float64{-1, 1}[i] * cfg.Timing.FixationDistance}
		}
		if cfg.ConditionsFile != "" {
			if s.Conditions, err = LoadConditions(cfg.ConditionsFile); err != nil {
				return nil, fmt.Errorf("conditions: %w", err)
			}
		}
	} else {
		s.Locations, err = BuildLocations(cfg.Timing.NumLocations, cfg.Timing.DistFromCenter, profile.FlickerFreqs, rate)
		if err != nil {
			return nil, err
		}
	}

	proj := NewProjection(profile)
	if w, h := d.Screen.Size(); w > 0 && h > 0 {
		proj.Width, proj.Height = w, h
	}
	s.Layout = NewLayout(proj, s.Locations, cfg.Timing, mode, cfg.StimuliDir)

	s.Events.Info = [][2]string{
		{"participant", cfg.Participant},
		{"session", cfg.Session},
		{"task", string(mode)},
		{"monitor", profile.Name},
		{"date", s.started.Format("2006-01-02_15h04.05")},
		{"expName", ExpName},
		{"run_id", s.ID.String()},
		{"refresh_rate", strconv.FormatFloat(rate, 'f', -1, 64)},
		{"seed", strconv.FormatInt(seed, 10)},
	}

	s.Log.Printf("session %s: participant=%s session=%s task=%s monitor=%s refresh=%gHz seed=%d",
		s.ID, cfg.Participant, cfg.Session, mode, profile.Name, rate, seed)
	for _, loc := range s.Locations {
		s.Log.Printf("location %d: pos=(%g, %g) freq=%gHz period=%d frames", loc.Index, loc.X, loc.Y, loc.Frequency, loc.Period)
	}
	return s, nil
}

// ExpName names the experiment in the data files.
const ExpName = "BCI_Paradigm_24-25"

func (s *Session) Timing() Timing { return s.Cfg.Timing }

// Frames converts d to a frame count of at least one.
func (s *Session) Frames(d time.Duration) int {
	return max(1, FrameBudget(s.RefreshRate, d))
}

func (s *Session) logEvent(typ, label, value string) {
	s.Events.Log(EventLogEntry{
		Time:  s.Clock.Elapsed(),
		Frame: s.Clock.Frames(),
		Block: s.block,
		Type:  typ,
		Label: label,
		Value: value,
	})
}

// Push checks for cancellation, then emits one marker. Failures of the
// transport are returned, not retried.
func (s *Session) Push(tag string) error {
	if _, err := s.Clock.Poll(); err != nil {
		return err
	}
	return s.push(tag)
}

func (s *Session) push(tag string) error {
	if err := s.Markers.Push(tag); err != nil {
		return fmt.Errorf("push marker %s: %w", tag, err)
	}
	s.logEvent(TypeMarker, tag, "")
	return nil
}

// SetLevel writes l to the trigger device. Device errors are logged only.
func (s *Session) SetLevel(l Level) {
	if err := s.Trigger.Write(l); err != nil {
		s.Log.Printf("trigger write %.1fV: %v", float64(l), err)
	}
	s.logEvent(TypeTrigger, strconv.FormatFloat(float64(l), 'f', 1, 64), strconv.Itoa(int(l.DACBits())))
}

// Frame polls for cancellation, pushes markers, then flips scene. Markers
// are therefore emitted in the same tick as the visibility change they
// describe.
func (s *Session) Frame(scene Scene, markers ...string) error {
	if _, err := s.Clock.Poll(); err != nil {
		return err
	}
	for _, m := range markers {
		if err := s.push(m); err != nil {
			return err
		}
	}
	return s.Clock.Present(scene)
}

// Run presents n frames, building frame i (1..n) with frame. Markers go out
// with the first frame. Every frame loop of a run goes through here.
func (s *Session) Run(n int, frame func(i int) Scene, markers ...string) error {
	for i := 1; i <= n; i++ {
		var err error
		if i == 1 {
			err = s.Frame(frame(i), markers...)
		} else {
			err = s.Frame(frame(i))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Show keeps scene up for d. Markers go out with the first frame.
func (s *Session) Show(d time.Duration, scene Scene, markers ...string) error {
	return s.Run(s.Frames(d), func(int) Scene { return scene }, markers...)
}

// SetBlock tags subsequent events with block i.
func (s *Session) SetBlock(i int) { s.block = i }

// Shutdown ends the run: farewell frame, recorder stop with its grace wait,
// data files, devices and display. Only the first call has any effect.
func (s *Session) Shutdown(aborted bool) error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.shutdown(aborted)
	})
	return s.shutdownErr
}

func (s *Session) shutdown(aborted bool) error {
	fmt.Println("\n *-- Ending experiment, please wait... --* ")
	s.Log.Printf("shutdown (aborted=%v) after %d frames", aborted, s.Clock.Frames())

	var errs []error
	if err := s.Clock.Present(Scene{s.message("exit", "Saving data and exiting please wait...")}); err != nil {
		s.Log.Printf("exit screen: %v", err)
	}

	if s.Recorder != nil {
		if err := s.Recorder.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.Trigger.Write(LevelOff); err != nil {
		s.Log.Printf("trigger write %.1fV: %v", float64(LevelOff), err)
	}
	if s.Paths != nil {
		if err := s.Events.Save(s.Paths.CSV()); err != nil {
			errs = append(errs, fmt.Errorf("save event log: %w", err))
		} else {
			fmt.Printf("\nResults saved to %s\n", s.Paths.CSV())
		}
	}
	if s.Store != nil {
		rec := SessionRecord{
			ID:          s.ID,
			Participant: s.Cfg.Participant,
			Session:     s.Cfg.Session,
			Task:        string(s.Mode),
			Monitor:     s.Profile.Name,
			RefreshRate: s.RefreshRate,
			Seed:        s.Seed,
			StartedAt:   s.started,
			FinishedAt:  time.Now(),
			Aborted:     aborted,
		}
		if err := s.Store.SaveSession(rec, s.Events.Entries); err != nil {
			errs = append(errs, fmt.Errorf("save session: %w", err))
		}
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, c := range []io.Closer{s.Markers, s.Trigger} {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.Screen.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
