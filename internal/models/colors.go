package models

import "strings"

// RGB is a bulb colour.
type RGB struct {
	R, G, B uint8
}

var (
	// NeutralGray is applied for colour names missing from SupportedColors.
	NeutralGray = RGB{100, 100, 100}
	AlertRed    = RGB{255, 0, 0}
)

const (
	ColorRed  = "red"
	ColorNone = "none"
)

// SupportedColors maps preferred colour names to bulb RGB values.
var SupportedColors = map[string]RGB{
	"red":     {255, 0, 0},
	"green":   {0, 255, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"white":   {255, 255, 255},
	"purple":  {128, 0, 128},
	"orange":  {255, 165, 0},
	"pink":    {255, 192, 203},
}

// ColorRGB resolves a colour name case-insensitively, falling back to NeutralGray.
func ColorRGB(name string) RGB {
	if c, ok := SupportedColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return NeutralGray
}

// IsSupportedColor reports whether name is in SupportedColors.
func IsSupportedColor(name string) bool {
	_, ok := SupportedColors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// BaseColorName trims a "_suffix" from a colour name ("blue_2024" -> "blue").
func BaseColorName(name string) string {
	if i := strings.IndexByte(name, '_'); i >= 0 {
		return name[:i]
	}
	return name
}
