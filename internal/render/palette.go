package render

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	PaletteIpe   = "ipe"
	PaletteWarm  = "warm"
	PaletteHappy = "happy"
)

// ipeColors are the named colors of the Ipe basic style sheet, in the order
// rows pick them.
var ipeColors = []struct {
	Name string
	Hex  string
}{
	{"red", "#ff0000"},
	{"green", "#00ff00"},
	{"blue", "#0000ff"},
	{"yellow", "#ffff00"},
	{"orange", "#ffa500"},
	{"gold", "#ffd700"},
	{"purple", "#a020f0"},
	{"gray", "#bebebe"},
	{"brown", "#a52a2a"},
	{"navy", "#000080"},
	{"pink", "#ffc0cb"},
	{"seagreen", "#2e8b57"},
	{"turquoise", "#40e0d0"},
	{"violet", "#ee82ee"},
	{"darkblue", "#00008b"},
	{"darkcyan", "#008b8b"},
	{"darkgray", "#a9a9a9"},
	{"darkgreen", "#006400"},
	{"darkmagenta", "#8b008b"},
	{"darkorange", "#ff8c00"},
	{"darkred", "#8b0000"},
	{"lightblue", "#add8e6"},
	{"lightcyan", "#e0ffff"},
	{"lightgray", "#d3d3d3"},
	{"lightgreen", "#90ee90"},
	{"lightyellow", "#ffffe0"},
}

type NamedColor struct {
	Name  string
	Color colorful.Color
}

// Palette assigns one color per task row.
type Palette struct {
	Name   string
	Colors []NamedColor
}

// NewPalette returns a palette with at least n colors. The ipe palette is the
// fixed list of Ipe colors and wraps around; warm and happy are generated by
// go-colorful and differ from run to run.
func NewPalette(name string, n int) (Palette, error) {
	if n < 1 {
		n = 1
	}
	switch strings.ToLower(name) {
	case "", PaletteIpe:
		p := Palette{Name: PaletteIpe}
		for _, c := range ipeColors {
			col, err := colorful.Hex(c.Hex)
			if err != nil {
				return Palette{}, fmt.Errorf("ipe color %s: %w", c.Name, err)
			}
			p.Colors = append(p.Colors, NamedColor{Name: c.Name, Color: col})
		}
		return p, nil
	case PaletteWarm:
		cols, err := colorful.WarmPalette(n)
		if err != nil {
			return Palette{}, fmt.Errorf("failed to generate warm palette: %w", err)
		}
		return generated(PaletteWarm, cols), nil
	case PaletteHappy:
		cols, err := colorful.HappyPalette(n)
		if err != nil {
			return Palette{}, fmt.Errorf("failed to generate happy palette: %w", err)
		}
		return generated(PaletteHappy, cols), nil
	}
	return Palette{}, fmt.Errorf("unknown palette: %s", name)
}

func generated(name string, cols []colorful.Color) Palette {
	p := Palette{Name: name}
	for i, c := range cols {
		p.Colors = append(p.Colors, NamedColor{
			Name:  fmt.Sprintf("%s%d", name, i),
			Color: c.Clamped(),
		})
	}
	return p
}

// At returns the color of row i.
func (p Palette) At(i int) NamedColor {
	if i < 0 {
		i = 0
	}
	return p.Colors[i%len(p.Colors)]
}
