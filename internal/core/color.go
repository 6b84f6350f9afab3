package core

import (
	"fmt"
	"image/color"
	"strconv"
)

// CategoryColor is the fixed palette offered for categories.
type CategoryColor string

const (
	ColorRed    CategoryColor = "red"
	ColorOrange CategoryColor = "orange"
	ColorYellow CategoryColor = "yellow"
	ColorGreen  CategoryColor = "green"
	ColorMint   CategoryColor = "mint"
	ColorTeal   CategoryColor = "teal"
	ColorCyan   CategoryColor = "cyan"
	ColorBlue   CategoryColor = "blue"
	ColorIndigo CategoryColor = "indigo"
	ColorPurple CategoryColor = "purple"
	ColorPink   CategoryColor = "pink"
)

// DefaultCategoryColor is what new categories get when the caller has no preference.
const DefaultCategoryColor = ColorBlue

var categoryHex = map[CategoryColor]string{
	ColorRed:    "#FF3B30",
	ColorOrange: "#FF9500",
	ColorYellow: "#FFCC00",
	ColorGreen:  "#34C759",
	ColorMint:   "#00C7BE",
	ColorTeal:   "#30B0C7",
	ColorCyan:   "#32ADE6",
	ColorBlue:   "#007AFF",
	ColorIndigo: "#5856D6",
	ColorPurple: "#AF52DE",
	ColorPink:   "#FF2D55",
}

// AllCategoryColors lists the palette in display order.
func AllCategoryColors() []CategoryColor {
	return []CategoryColor{
		ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorMint, ColorTeal,
		ColorCyan, ColorBlue, ColorIndigo, ColorPurple, ColorPink,
	}
}

func ParseCategoryColor(s string) (CategoryColor, error) {
	c := CategoryColor(s)
	if !c.IsValid() {
		return "", violation("CategoryColor", "name", fmt.Sprintf("unknown color %q", s))
	}
	return c, nil
}

func (c CategoryColor) IsValid() bool {
	_, ok := categoryHex[c]
	return ok
}

// Hex returns the "#RRGGBB" value, or "" for an unknown color.
func (c CategoryColor) Hex() string {
	return categoryHex[c]
}

// RGBA is the display color.
func (c CategoryColor) RGBA() color.RGBA {
	h := c.Hex()
	if len(h) != 7 {
		return color.RGBA{}
	}
	v, err := strconv.ParseUint(h[1:], 16, 32)
	if err != nil {
		return color.RGBA{}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

func (c CategoryColor) String() string { return string(c) }
