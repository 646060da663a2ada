package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/MaxMascini/Portfolio/engine"
	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := engine.DefaultConfig()

	participant := flag.String("participant", "", "Participant ID (random sub-NNN when empty)")
	session := flag.String("session", cfg.Session, "Session")
	condition := flag.String("condition", cfg.Condition, "Condition: "+modeList())
	monitor := flag.String("monitor", cfg.Monitor, "Monitor profile")
	monitorsFile := flag.String("monitors", "", "INI file overriding monitor profiles")
	dataDir := flag.String("data-dir", cfg.DataDir, "Data output directory")
	stimuliDir := flag.String("stimuli-dir", cfg.StimuliDir, "Directory containing stimuli")
	conditionsFile := flag.String("conditions", "", "Attention-cue conditions CSV")
	fontFile := flag.String("font", "", "TTF font file")
	fontSize := flag.Int("font-size", cfg.FontSize, "Font size")
	dlpDevice := flag.String("dlp", "", "DLP-IO8-G trigger device")
	markerAddr := flag.String("markers", "", "Marker stream address (host:port); markers go to the log when empty")
	recorderPath := flag.String("recorder", "", "Recorder executable to launch")
	recorderAddr := flag.String("recorder-addr", cfg.RecorderAddr, "Recorder control socket")
	recorderGrace := flag.Duration("recorder-grace", cfg.RecorderGrace, "Wait after stopping the recorder")
	noRecorder := flag.Bool("no-recorder", false, "Run without the recorder")
	dryRun := flag.Bool("dry-run", false, "Run headless with an autopilot participant")
	refresh := flag.Float64("refresh", 0, "Refresh rate override in Hz")
	seed := flag.Int64("seed", 0, "Random seed (0: time based)")
	blocks := flag.Int("blocks", cfg.Timing.NumBlocks, "Number of blocks (multiple of the location count)")
	repeats := flag.Int("repeats", cfg.Timing.Repeats, "Presentations per location per block")
	displayIdx := flag.Int("display", cfg.DisplayIndex, "Display index (-1: the monitor profile's screen)")
	noVSync := flag.Bool("no-vsync", false, "Disable VSync")
	windowed := flag.Bool("windowed", false, "Disable fullscreen")
	bgColorStr := flag.String("bg-color", "0,0,0,255", "Background color (R,G,B,A)")
	textColorStr := flag.String("text-color", "255,255,255,255", "Text color (R,G,B,A)")
	fixColorStr := flag.String("fixation-color", "255,0,255,255", "Fixation color (R,G,B,A)")
	targetColorStr := flag.String("target-color", "255,0,255,255", "Target marker color (R,G,B,A)")

	flag.Parse()

	cfg.Participant = *participant
	if cfg.Participant == "" {
		cfg.Participant = engine.RandomParticipant(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	cfg.Session = *session
	cfg.Condition = *condition
	cfg.Monitor = *monitor
	cfg.MonitorsFile = *monitorsFile
	cfg.DataDir = *dataDir
	cfg.StimuliDir = *stimuliDir
	cfg.ConditionsFile = *conditionsFile
	cfg.FontFile = *fontFile
	cfg.FontSize = *fontSize
	cfg.TriggerDevice = *dlpDevice
	cfg.MarkerAddr = *markerAddr
	cfg.RecorderPath = *recorderPath
	cfg.RecorderAddr = *recorderAddr
	cfg.RecorderGrace = *recorderGrace
	cfg.NoRecorder = *noRecorder
	cfg.DryRun = *dryRun
	cfg.RefreshRate = *refresh
	cfg.Seed = *seed
	cfg.Timing.NumBlocks = *blocks
	cfg.Timing.Repeats = *repeats
	cfg.DisplayIndex = *displayIdx
	cfg.VSync = !*noVSync
	cfg.Fullscreen = !*windowed
	cfg.BGColor = engine.ParseColor(*bgColorStr)
	cfg.TextColor = engine.ParseColor(*textColorStr)
	cfg.FixationColor = engine.ParseColor(*fixColorStr)
	cfg.TargetColor = engine.ParseColor(*targetColorStr)

	if !cfg.DryRun {
		defer binsdl.Load().Unload()
		defer binimg.Load().Unload()
		defer binttf.Load().Unload()
	}

	start := time.Now()
	if err := engine.Run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Second))
}

func modeList() string {
	names := make([]string, len(engine.AllModes))
	for i, m := range engine.AllModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
