package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

// SDLScreen renders scenes with SDL3. With vsync on, Render returns after
// the flip, so one Render is one refresh.
type SDLScreen struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	font     *ttf.Font
	cache    *TextureCache

	w, h    int
	rate    float64
	bg      sdl.Color
	mouse   Point
	buttons [3]bool
}

// NewSDLScreen opens the stimulus window at the profile's resolution on the
// selected display and reads that display's refresh rate.
func NewSDLScreen(cfg *Config, profile MonitorProfile) (*SDLScreen, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init: %w", err)
	}
	if err := ttf.Init(); err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("TTF_Init: %w", err)
	}

	displays, err := sdl.GetDisplays()
	if err != nil || len(displays) == 0 {
		ttf.Quit()
		sdl.Quit()
		return nil, fmt.Errorf("no display available: %v", err)
	}
	idx, ok := DisplayIndex(cfg, profile, len(displays))
	if !ok {
		fmt.Printf("Requested display not found (%d connected), using the primary display\n", len(displays))
	}
	display := displays[idx]

	w, h := profile.Resolution[0], profile.Resolution[1]
	window, renderer, err := sdl.CreateWindowAndRenderer(ExpName, w, h, sdl.WINDOW_RESIZABLE)
	if err != nil {
		ttf.Quit()
		sdl.Quit()
		return nil, fmt.Errorf("CreateWindowAndRenderer: %w", err)
	}
	if bounds, err := display.Bounds(); err == nil {
		window.SetPosition(bounds.X, bounds.Y)
	}
	if cfg.Fullscreen {
		if err := window.SetFullscreen(true); err != nil {
			fmt.Printf("Failed to go fullscreen: %v\n", err)
		}
	}

	if cfg.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}

	s := &SDLScreen{window: window, renderer: renderer, w: w, h: h, bg: cfg.BGColor}
	if mode, err := display.CurrentDisplayMode(); err == nil && mode.RefreshRate > 0 {
		s.rate = float64(mode.RefreshRate)
	}

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = GetDefaultFontPath()
	}
	if fontPath != "" {
		s.font, err = ttf.OpenFont(fontPath, float32(cfg.FontSize))
		if err != nil {
			fmt.Printf("Failed to load font: %s (%v)\n", fontPath, err)
			s.font = nil
		}
	}
	s.cache = NewTextureCache(renderer, s.font)
	return s, nil
}

// Preload warms the texture cache so the first flicker frames do not stall
// on disk.
func (s *SDLScreen) Preload(paths ...string) { s.cache.Preload(paths...) }

func (s *SDLScreen) RefreshRate() float64 { return s.rate }

func (s *SDLScreen) Size() (int, int) { return s.w, s.h }

func (s *SDLScreen) Render(scene Scene) error {
	r := s.renderer
	if err := r.SetDrawColor(s.bg.R, s.bg.G, s.bg.B, s.bg.A); err != nil {
		return err
	}
	if err := r.Clear(); err != nil {
		return err
	}
	for i := range scene {
		if err := s.draw(&scene[i]); err != nil {
			return fmt.Errorf("draw %s: %w", scene[i].Name, err)
		}
	}
	return r.Present()
}

func (s *SDLScreen) draw(el *Element) error {
	r := s.renderer
	rect := toFRect(el.Bounds)
	switch el.Kind {
	case ElemImage:
		entry := s.cache.Image(el.Source)
		if entry.Texture == nil {
			// placeholder for a missing image
			r.SetDrawColor(el.Color.R, el.Color.G, el.Color.B, el.Color.A)
			return r.RenderRect(&rect)
		}
		return r.RenderTexture(entry.Texture, nil, &rect)
	case ElemOutline:
		r.SetDrawColor(el.Color.R, el.Color.G, el.Color.B, el.Color.A)
		if el.Active {
			return r.RenderFillRect(&rect)
		}
		for i := float32(0); i < 3; i++ {
			inner := sdl.FRect{X: rect.X + i, Y: rect.Y + i, W: rect.W - 2*i, H: rect.H - 2*i}
			if err := r.RenderRect(&inner); err != nil {
				return err
			}
		}
		return nil
	case ElemBox:
		r.SetDrawColor(el.Color.R, el.Color.G, el.Color.B, el.Color.A)
		return r.RenderFillRect(&rect)
	case ElemText:
		return s.drawText(el)
	case ElemFixation:
		r.SetDrawColor(el.Color.R, el.Color.G, el.Color.B, el.Color.A)
		c := el.Bounds.Center()
		hw, hh := el.Bounds.W/2, el.Bounds.H/2
		if err := r.RenderLine(c.X-hw, c.Y, c.X+hw, c.Y); err != nil {
			return err
		}
		return r.RenderLine(c.X, c.Y-hh, c.X, c.Y+hh)
	}
	return nil
}

// drawText centres each line of el.Source in el.Bounds.
func (s *SDLScreen) drawText(el *Element) error {
	lines := strings.Split(el.Source, "\n")
	entries := make([]*CacheEntry, len(lines))
	var total float32
	for i, line := range lines {
		entries[i] = s.cache.Text(strings.TrimSpace(line), el.Color)
		total += entries[i].H
	}
	c := el.Bounds.Center()
	y := c.Y - total/2
	for _, e := range entries {
		if e.Texture != nil {
			dst := sdl.FRect{X: c.X - e.W/2, Y: y, W: e.W, H: e.H}
			if err := s.renderer.RenderTexture(e.Texture, nil, &dst); err != nil {
				return err
			}
		}
		y += e.H
	}
	return nil
}

func toFRect(r Rect) sdl.FRect {
	return sdl.FRect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// Poll drains the event queue. Closing the window counts as escape.
func (s *SDLScreen) Poll() Input {
	var in Input
	var ev sdl.Event
	for sdl.PollEvent(&ev) {
		switch ev.Type {
		case sdl.EVENT_QUIT:
			in.Escape = true
		case sdl.EVENT_KEY_DOWN:
			ke := ev.KeyboardEvent()
			if ke.Key == sdl.K_ESCAPE {
				in.Escape = true
			} else {
				in.Keys = append(in.Keys, strings.ToLower(ke.Key.KeyName()))
			}
		case sdl.EVENT_MOUSE_MOTION:
			me := ev.MouseMotionEvent()
			s.mouse = Point{X: me.X, Y: me.Y}
		case sdl.EVENT_MOUSE_BUTTON_DOWN, sdl.EVENT_MOUSE_BUTTON_UP:
			me := ev.MouseButtonEvent()
			s.mouse = Point{X: me.X, Y: me.Y}
			if b := int(me.Button) - 1; b >= 0 && b < len(s.buttons) {
				s.buttons[b] = ev.Type == sdl.EVENT_MOUSE_BUTTON_DOWN
			}
		}
	}
	in.Mouse = s.mouse
	in.Buttons = s.buttons
	return in
}

func (s *SDLScreen) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (s *SDLScreen) SetCursorVisible(visible bool) {
	if visible {
		sdl.ShowCursor()
	} else {
		sdl.HideCursor()
	}
}

func (s *SDLScreen) Close() error {
	s.cache.Destroy()
	if s.font != nil {
		s.font.Close()
	}
	s.renderer.Destroy()
	s.window.Destroy()
	ttf.Quit()
	sdl.Quit()
	return nil
}
