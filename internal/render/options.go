package render

import (
	"rtsched/internal/config"
)

const (
	DefaultGridSize = 16
	DefaultPadding  = 0.5
)

// Options control the drawing. Coordinates are in points; OffsetX and OffsetY
// place the upper left corner of the chart.
type Options struct {
	Title     string
	Algorithm string

	GridSize float64
	OffsetX  float64
	OffsetY  float64
	Padding  float64
	Palette  string

	Compress         bool
	ShowDeadlineMiss bool
	ShowTimeAxis     bool
	ShowTaskNames    bool
}

func DefaultOptions() Options {
	return Options{
		GridSize:         DefaultGridSize,
		OffsetX:          defaultOffsetX(DefaultGridSize),
		OffsetY:          defaultOffsetY(DefaultGridSize),
		Padding:          DefaultPadding,
		Palette:          PaletteIpe,
		Compress:         true,
		ShowDeadlineMiss: true,
		ShowTimeAxis:     true,
		ShowTaskNames:    true,
	}
}

// The defaults leave room for task names on the left of an A4 Ipe page.
func defaultOffsetX(grid float64) float64 { return 16 + 10*grid }

func defaultOffsetY(grid float64) float64 { return 832 - 5*grid }

// OptionsFromConfig applies the render section of a task set file on top of
// the defaults. Offsets left at zero follow the grid size.
func OptionsFromConfig(rc config.RenderConfig) Options {
	opts := DefaultOptions()
	if rc.GridSize > 0 {
		opts.GridSize = rc.GridSize
	}
	opts.OffsetX = defaultOffsetX(opts.GridSize)
	opts.OffsetY = defaultOffsetY(opts.GridSize)
	if rc.OffsetX != 0 {
		opts.OffsetX = rc.OffsetX
	}
	if rc.OffsetY != 0 {
		opts.OffsetY = rc.OffsetY
	}
	if rc.Padding > 0 {
		opts.Padding = rc.Padding
	}
	if rc.Palette != "" {
		opts.Palette = rc.Palette
	}
	setBool(&opts.Compress, rc.Compress)
	setBool(&opts.ShowDeadlineMiss, rc.ShowDeadlineMiss)
	setBool(&opts.ShowTimeAxis, rc.ShowTimeAxis)
	setBool(&opts.ShowTaskNames, rc.ShowTaskNames)
	return opts
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
