package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

func GetDefaultFontPath() string {
	// Check local fonts directory
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	// System paths
	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

type CacheEntry struct {
	Texture *sdl.Texture
	W, H    float32
}

// TextureCache loads each image and text line once. Frame loops only ever
// look textures up; a failed load is cached as an empty entry and reported
// once.
type TextureCache struct {
	renderer *sdl.Renderer
	font     *ttf.Font
	entries  map[string]*CacheEntry
}

func NewTextureCache(renderer *sdl.Renderer, font *ttf.Font) *TextureCache {
	return &TextureCache{
		renderer: renderer,
		font:     font,
		entries:  make(map[string]*CacheEntry),
	}
}

func (c *TextureCache) Image(path string) *CacheEntry {
	key := "img:" + path
	if entry, ok := c.entries[key]; ok {
		return entry
	}
	entry := &CacheEntry{}
	if path != "" {
		tex, err := img.LoadTexture(c.renderer, path)
		if err != nil {
			fmt.Printf("Failed to load image: %s (%v)\n", path, err)
		} else {
			entry.Texture = tex
			w, h, _ := tex.Size()
			entry.W, entry.H = w, h
		}
	}
	c.entries[key] = entry
	return entry
}

func (c *TextureCache) Text(text string, color sdl.Color) *CacheEntry {
	key := fmt.Sprintf("txt:%s:%d,%d,%d,%d", text, color.R, color.G, color.B, color.A)
	if entry, ok := c.entries[key]; ok {
		return entry
	}
	entry := &CacheEntry{}
	if c.font != nil && text != "" {
		surf, err := c.font.RenderTextBlended(text, color)
		if err == nil && surf != nil {
			tex, err := c.renderer.CreateTextureFromSurface(surf)
			if err == nil {
				entry.Texture = tex
				entry.W = float32(surf.W)
				entry.H = float32(surf.H)
			}
			surf.Destroy()
		}
	}
	c.entries[key] = entry
	return entry
}

// Preload loads every image of paths ahead of the first frame.
func (c *TextureCache) Preload(paths ...string) {
	for _, p := range paths {
		c.Image(p)
	}
}

func (c *TextureCache) Destroy() {
	for _, entry := range c.entries {
		if entry.Texture != nil {
			entry.Texture.Destroy()
		}
	}
	c.entries = make(map[string]*CacheEntry)
}
