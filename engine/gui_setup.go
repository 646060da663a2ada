package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

// RunGuiSetup shows the operator dialog: participant, session, condition,
// monitor and display options. It returns false if the window was closed.
func RunGuiSetup(cfg *Config, monitors []string) bool {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		fmt.Printf("SDL_Init Error: %v\n", err)
		return false
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		fmt.Printf("TTF_Init Error: %v\n", err)
		return false
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer(ExpName+" Setup", 800, 750, 0)
	if err != nil {
		fmt.Printf("CreateWindowAndRenderer Error: %v\n", err)
		return false
	}
	defer window.Destroy()
	defer renderer.Destroy()

	fontPath := GetDefaultFontPath()
	if fontPath == "" {
		fmt.Println("Error: No default font found for GUI setup")
		return false
	}
	guiFont, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		fmt.Printf("Failed to load GUI font: %v\n", err)
		return false
	}
	defer guiFont.Close()

	black := sdl.Color{R: 0, G: 0, B: 0, A: 255}
	label := func(text string, x, y float32, color sdl.Color) {
		surf, err := guiFont.RenderTextBlended(text, color)
		if err != nil {
			return
		}
		tex, err := renderer.CreateTextureFromSurface(surf)
		if err == nil {
			r := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
			renderer.RenderTexture(tex, nil, &r)
			tex.Destroy()
		}
		surf.Destroy()
	}
	checkbox := func(on bool, text string, x, y float32) {
		renderer.SetDrawColor(255, 255, 255, 255)
		box := sdl.FRect{X: x, Y: y, W: 20, H: 20}
		renderer.RenderFillRect(&box)
		renderer.SetDrawColor(0, 0, 0, 255)
		renderer.RenderRect(&box)
		if on {
			mark := sdl.FRect{X: x + 4, Y: y + 4, W: 12, H: 12}
			renderer.SetDrawColor(0, 150, 0, 255)
			renderer.RenderFillRect(&mark)
		}
		label(text, x+30, y, black)
	}
	inside := func(mx, my, x, y, w, h float32) bool {
		return mx >= x && mx <= x+w && my >= y && my <= y+h
	}

	setupDone := false
	focusBox := -1 // 0: participant, 1: session
	fields := []*string{&cfg.Participant, &cfg.Session}
	fieldLabels := []string{"Participant ID", "Session"}

	for !setupDone {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return false
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				mx, my := me.X, me.Y

				focusBox = -1
				for i := range fields {
					if inside(mx, my, 50, float32(50+i*70), 650, 30) {
						focusBox = i
						window.StartTextInput()
					}
				}

				for i, m := range AllModes {
					if inside(mx, my, 50, float32(210+i*35), 300, 25) {
						cfg.Condition = string(m)
					}
				}
				for i, name := range monitors {
					if inside(mx, my, 420, float32(210+i*35), 330, 25) {
						cfg.Monitor = name
					}
				}

				if inside(mx, my, 50, 460, 300, 25) {
					cfg.Fullscreen = !cfg.Fullscreen
				}
				if inside(mx, my, 50, 500, 300, 25) {
					cfg.DryRun = !cfg.DryRun
				}

				if inside(mx, my, 350, 650, 100, 40) {
					if err := cfg.Validate(); err != nil {
						fmt.Printf("Invalid setup: %v\n", err)
					} else {
						if err := cfg.SaveCache(CacheFile); err != nil {
							fmt.Printf("Failed to save settings: %v\n", err)
						}
						setupDone = true
					}
				}
			case sdl.EVENT_TEXT_INPUT:
				ti := e.TextInputEvent()
				if focusBox != -1 {
					*fields[focusBox] += ti.Text
				}
			case sdl.EVENT_KEY_DOWN:
				ke := e.KeyboardEvent()
				if focusBox != -1 && ke.Key == sdl.K_BACKSPACE {
					if target := fields[focusBox]; len(*target) > 0 {
						*target = (*target)[:len(*target)-1]
					}
				}
			}
		}

		renderer.SetDrawColor(240, 240, 240, 255)
		renderer.Clear()

		for i, f := range fields {
			label(fieldLabels[i], 50, float32(25+i*70), black)
			renderer.SetDrawColor(255, 255, 255, 255)
			box := sdl.FRect{X: 50, Y: float32(50 + i*70), W: 650, H: 30}
			renderer.RenderFillRect(&box)
			if focusBox == i {
				renderer.SetDrawColor(0, 120, 255, 255)
			} else {
				renderer.SetDrawColor(180, 180, 180, 255)
			}
			renderer.RenderRect(&box)
			if *f != "" {
				label(*f, 55, float32(55+i*70), black)
			}
		}

		label("Condition", 50, 180, black)
		for i, m := range AllModes {
			checkbox(cfg.Condition == string(m), string(m), 50, float32(210+i*35))
		}
		label("Monitor", 420, 180, black)
		for i, name := range monitors {
			checkbox(cfg.Monitor == name, name, 420, float32(210+i*35))
		}

		checkbox(cfg.Fullscreen, "Fullscreen mode", 50, 460)
		checkbox(cfg.DryRun, "Dry run (no display, recorder or trigger)", 50, 500)

		renderer.SetDrawColor(0, 150, 0, 255)
		startBtn := sdl.FRect{X: 350, Y: 650, W: 100, H: 40}
		renderer.RenderFillRect(&startBtn)
		label("START", 375, 660, sdl.Color{R: 255, G: 255, B: 255, A: 255})

		renderer.Present()
		sdl.Delay(10)
	}
	window.StopTextInput()
	return true
}
