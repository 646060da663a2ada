package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// openStore is replaced in tests.
var openStore = OpenStore

// undoStack releases startup resources in reverse order of acquisition.
type undoStack []func()

func (u *undoStack) push(f func()) { *u = append(*u, f) }

func (u undoStack) run() {
	for i := len(u) - 1; i >= 0; i-- {
		u[i]()
	}
}

// Run executes one session end to end. Completion and operator abort both
// end in Session.Shutdown; any other error after the session started is
// returned as is, without the recorder stop sequence. A failure before the
// session exists releases everything opened so far.
func Run(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	mode, _ := ParseMode(cfg.Condition)
	paradigm, err := ParadigmFor(mode)
	if err != nil {
		return err
	}

	monitors, err := LoadMonitors(cfg.MonitorsFile)
	if err != nil {
		return err
	}
	profile, ok := monitors[cfg.Monitor]
	if !ok {
		return fmt.Errorf("unknown monitor %q (have %v)", cfg.Monitor, MonitorNames(monitors))
	}

	paths := NewDataPaths(cfg.DataDir, cfg.Participant, cfg.Session, mode)
	if err := paths.Create(); err != nil {
		return fmt.Errorf("create data directories: %w", err)
	}

	var undo undoStack
	owned := false
	defer func() {
		if !owned {
			undo.run()
		}
	}()

	logFile, err := os.Create(paths.Log())
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	undo.push(func() { logFile.Close() })
	logger := log.New(io.MultiWriter(os.Stdout, logFile), "", log.Ltime|log.Lmicroseconds)

	var screen Screen
	if cfg.DryRun {
		rate := cfg.RefreshRate
		if rate <= 0 {
			rate = profile.RefreshRate
		}
		hs := NewHeadlessScreen(profile.Resolution[0], profile.Resolution[1], rate)
		hs.NotifyInterrupt()
		screen = hs
		fmt.Println("Dry run: no display, recorder or trigger hardware")
	} else {
		sdlScreen, err := NewSDLScreen(cfg, profile)
		if err != nil {
			return err
		}
		screen = sdlScreen
	}
	undo.push(func() { screen.Close() })

	var markers MarkerOutlet = LogOutlet{Log: logger}
	if cfg.MarkerAddr != "" {
		out, err := DialMarkerOutlet(cfg.MarkerAddr, 5*time.Second)
		if err != nil {
			return fmt.Errorf("marker outlet: %w", err)
		}
		markers = out
	}
	undo.push(func() { markers.Close() })

	var trigger TriggerDevice = NopTrigger{}
	if !cfg.DryRun {
		trigger = OpenTrigger(cfg.TriggerDevice, logger)
	}
	undo.push(func() { trigger.Close() })

	var recorder *Recorder
	if !cfg.NoRecorder && !cfg.DryRun {
		recorder, err = StartRecorder(cfg.RecorderPath, cfg.RecorderAddr, cfg.RecorderGrace, logger)
		if err != nil {
			fmt.Println("\n *-- Recorder is not available, cannot start the experiment --* ")
			return err
		}
		undo.push(func() { recorder.Close() })
		if err := recorder.SetFilename(string(mode), cfg.Participant, cfg.Session); err != nil {
			logger.Printf("%v", err)
		}
	}

	store, err := openStore(paths.DB())
	if err != nil {
		logger.Printf("session database unavailable: %v", err)
		store = nil
	} else {
		undo.push(func() { store.Close() })
	}

	s, err := NewSession(cfg, profile, Deps{
		Screen:   screen,
		Markers:  markers,
		Trigger:  trigger,
		Recorder: recorder,
		Store:    store,
		Paths:    &paths,
		Log:      logger,
		Closers:  []io.Closer{logFile},
	})
	if err != nil {
		logger.Printf("session setup failed: %v", err)
		return err
	}
	owned = true

	if sdlScreen, ok := screen.(*SDLScreen); ok {
		sdlScreen.Preload(append(s.Layout.StimPaths, s.Layout.SilPaths...)...)
	}

	err = paradigm.Run(s)
	switch {
	case err == nil:
		s.Log.Printf("run complete")
		return s.Shutdown(false)
	case errors.Is(err, ErrAborted):
		s.Log.Printf("run aborted by operator")
		return s.Shutdown(true)
	}
	s.Log.Printf("run failed: %v", err)
	return err
}
