package engine

import (
	"fmt"
	"sort"

	"gopkg.in/ini.v1"
)

// MonitorProfile describes one physical display of the lab.
type MonitorProfile struct {
	Name         string
	WidthCM      float64
	ViewDistCM   float64
	Resolution   [2]int
	ScreenIndex  int
	RefreshRate  float64 // 0 means measure at startup
	FlickerFreqs []float64
}

var DefaultMonitors = map[string]MonitorProfile{
	"Alienware": {
		Name: "Alienware", WidthCM: 58.8, ViewDistCM: 60, Resolution: [2]int{2560, 1440},
		ScreenIndex: 1, RefreshRate: 240,
		FlickerFreqs: []float64{12.63, 10, 12, 10.43, 11.43, 10.91},
	},
	"testMonitor": {
		Name: "testMonitor", WidthCM: 30, ViewDistCM: 60, Resolution: [2]int{1920, 1080},
		RefreshRate:  60,
		FlickerFreqs: []float64{6, 12, 6.67, 10, 7.5, 8.57},
	},
	"testMonitor144Hz": {
		Name: "testMonitor144Hz", WidthCM: 30, ViewDistCM: 60, Resolution: [2]int{1920, 1080},
		RefreshRate:  144,
		FlickerFreqs: []float64{7.2, 12, 8.47, 11.08, 9.6, 10.29},
	},
	"Epson": {
		Name: "Epson", WidthCM: 30, ViewDistCM: 13, Resolution: [2]int{1920, 1200},
		ScreenIndex: 1, RefreshRate: 60,
		FlickerFreqs: []float64{6, 12, 6.67, 10, 7.5, 8.57},
	},
}

// LoadMonitors returns the built-in profiles, overridden or extended by the
// sections of the INI file at path. Keys left out of a section keep the
// built-in value.
//
//	[Alienware]
//	refresh_rate = 240
//	flicker_freqs = 12.63, 10, 12, 10.43, 11.43, 10.91
func LoadMonitors(path string) (map[string]MonitorProfile, error) {
	out := make(map[string]MonitorProfile, len(DefaultMonitors))
	for k, v := range DefaultMonitors {
		v.FlickerFreqs = append([]float64(nil), v.FlickerFreqs...)
		out[k] = v
	}
	if path == "" {
		return out, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load monitors %s: %w", path, err)
	}
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		p, ok := out[sec.Name()]
		if !ok {
			p = MonitorProfile{Name: sec.Name(), WidthCM: 30, ViewDistCM: 60, Resolution: [2]int{1920, 1080}}
		}
		p.WidthCM = sec.Key("width_cm").MustFloat64(p.WidthCM)
		p.ViewDistCM = sec.Key("view_dist_cm").MustFloat64(p.ViewDistCM)
		p.Resolution[0] = sec.Key("width_px").MustInt(p.Resolution[0])
		p.Resolution[1] = sec.Key("height_px").MustInt(p.Resolution[1])
		p.ScreenIndex = sec.Key("screen").MustInt(p.ScreenIndex)
		p.RefreshRate = sec.Key("refresh_rate").MustFloat64(p.RefreshRate)
		if sec.HasKey("flicker_freqs") {
			p.FlickerFreqs = sec.Key("flicker_freqs").Float64s(",")
		}
		if p.WidthCM <= 0 || p.ViewDistCM <= 0 || p.Resolution[0] <= 0 || p.Resolution[1] <= 0 {
			return nil, fmt.Errorf("monitor %s: geometry must be positive", p.Name)
		}
		out[p.Name] = p
	}
	return out, nil
}

func MonitorNames(m map[string]MonitorProfile) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DisplayIndex picks the display a run opens on among n connected displays:
// the operator's choice when set (>= 0), otherwise the profile's screen. An
// index out of range falls back to the primary display and reports false.
func DisplayIndex(cfg *Config, profile MonitorProfile, n int) (int, bool) {
	idx := profile.ScreenIndex
	if cfg.DisplayIndex >= 0 {
		idx = cfg.DisplayIndex
	}
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}
