package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
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
	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	cfg := engine.DefaultConfig()
	cfg.LoadCache(engine.CacheFile)
	if cfg.Participant == "" {
		cfg.Participant = engine.RandomParticipant(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	monitors, err := engine.LoadMonitors(cfg.MonitorsFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !engine.RunGuiSetup(cfg, engine.MonitorNames(monitors)) {
		return
	}
	if err := engine.Run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
