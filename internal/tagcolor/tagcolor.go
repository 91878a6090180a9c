// Package tagcolor assigns display colors to tag strings. A user override
// always wins; otherwise a color is derived deterministically by hashing the
// tag and jittering hue, saturation and lightness around the active accent
// color. Derived colors are cached per (accent, tag) pair, so changing the
// accent invalidates them wholesale via ClearCache while overrides survive.
package tagcolor

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultAccent is used when the configured accent cannot be parsed.
const DefaultAccent = "#16a34a"

var rgbRe = regexp.MustCompile(`(?i)^rgba?\(([^)]+)\)$`)

// NormalizeKey lowercases and trims a tag for use as a lookup key.
// Blank tags normalize to the empty string.
func NormalizeKey(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Accent is a parsed accent color: its normalized identity plus the HSL
// base that derived tag colors jitter around.
type Accent struct {
	Key     string
	H, S, L float64
}

// ParseColor parses "#rgb", "#rrggbb" and "rgb(r, g, b)" color strings.
func ParseColor(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return colorful.Color{}, false
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, false
		}
		return c, true
	}
	if m := rgbRe.FindStringSubmatch(s); m != nil {
		parts := strings.Split(m[1], ",")
		if len(parts) < 3 {
			return colorful.Color{}, false
		}
		var ch [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
			if err != nil {
				return colorful.Color{}, false
			}
			ch[i] = math.Max(0, math.Min(255, v))
		}
		return colorful.Color{R: ch[0] / 255, G: ch[1] / 255, B: ch[2] / 255}, true
	}
	return colorful.Color{}, false
}

// Hex normalizes any supported color string to "#rrggbb" form, for display
// layers that only accept hex. Unparseable input is returned unchanged.
func Hex(s string) string {
	c, ok := ParseColor(s)
	if !ok {
		return s
	}
	return c.Hex()
}

// ResolveAccent parses an accent color string. Unparseable values fall back
// to DefaultAccent so the engine always has a working base.
func ResolveAccent(color string) Accent {
	c, ok := ParseColor(color)
	if !ok {
		c, _ = colorful.Hex(DefaultAccent)
		color = DefaultAccent
	}
	h, s, l := c.Hsl()
	return Accent{Key: c.Hex(), H: h, S: s, L: l}
}

// SessionFallbackKey derives a stable per-session color key from the
// session's start time, used for sessions without a tag.
func SessionFallbackKey(startMS int64) string {
	if startMS <= 0 {
		return "session-unknown"
	}
	return fmt.Sprintf("session-%d", startMS)
}

// Engine caches derived tag colors. It is not safe for concurrent use; the
// app drives it from a single event loop.
type Engine struct {
	cache map[string]string
	rand  func() float64
}

func NewEngine() *Engine {
	return &Engine{cache: make(map[string]string), rand: rand.Float64}
}

// ColorForTag resolves the display color for a tag. Resolution order:
// exact override for the normalized tag, the fallback key's override when
// the tag is blank, then the cached or freshly derived jitter color.
func (e *Engine) ColorForTag(tag, fallbackKey string, accent Accent, overrides map[string]string) string {
	keyTag := NormalizeKey(tag)
	keyFallback := NormalizeKey(fallbackKey)
	if keyTag != "" {
		if c, ok := overrides[keyTag]; ok && c != "" {
			return c
		}
	} else if keyFallback != "" {
		if c, ok := overrides[keyFallback]; ok && c != "" {
			return c
		}
	}
	jitterKey := keyTag
	if jitterKey == "" {
		jitterKey = keyFallback
	}
	if jitterKey == "" {
		jitterKey = "untagged"
	}
	cacheKey := accent.Key + "|" + jitterKey
	if c, ok := e.cache[cacheKey]; ok {
		return c
	}
	c := jitterFromAccent(accent, jitterKey)
	e.cache[cacheKey] = c
	return c
}

// ClearCache drops all derived colors. Call when the accent or theme
// changes; overrides are unaffected.
func (e *Engine) ClearCache() {
	e.cache = make(map[string]string)
}

// Random picks a random color near the accent, for the manual
// "randomize tag color" action.
func (e *Engine) Random(accent Accent) string {
	h := math.Mod(accent.H+(e.rand()-0.5)*40+360, 360)
	s := clamp(accent.S+(e.rand()-0.5)*0.4, 0.2, 0.95)
	l := clamp(accent.L+(e.rand()-0.5)*0.24, 0.2, 0.7)
	return rgbString(h, s, l)
}

// RandomDistinct retries Random a bounded number of times to avoid handing
// back the color the tag already has. Not a guarantee, just a nicety.
func (e *Engine) RandomDistinct(accent Accent, current string) string {
	next := e.Random(accent)
	for i := 0; i < 4 && next == current; i++ {
		next = e.Random(accent)
	}
	return next
}

func hashKey(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}

func jitterFromAccent(accent Accent, key string) string {
	hash := hashKey(key)
	hueShift := (float64(hash&0xff)/255 - 0.5) * 40
	satShift := (float64((hash>>8)&0xff)/255 - 0.5) * 0.4
	lightShift := (float64((hash>>16)&0xff)/255 - 0.5) * 0.34
	h := math.Mod(accent.H+hueShift+360, 360)
	s := clamp(accent.S+satShift, 0.2, 0.95)
	l := clamp(accent.L+lightShift, 0.2, 0.7)
	return rgbString(h, s, l)
}

func rgbString(h, s, l float64) string {
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
