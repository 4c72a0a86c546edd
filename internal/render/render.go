// Package render draws a schedule as an Ipe document or a TikZ picture.
package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/template"

	"rtsched/internal/logging"
	"rtsched/internal/model"
	"rtsched/internal/render/templates"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
)

const (
	FormatIpe  = "ipe"
	FormatTikZ = "tikz"
)

var ErrUnknownFormat = errors.New("unknown render format")

const (
	axisColor = "axis"
	missColor = "miss"
)

var funcs = template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(round3(v), 'f', -1, 64)
	},
	"add": func(a, b float64) float64 { return a + b },
	"xml": func(s string) (string, error) {
		var buf bytes.Buffer
		if err := xml.EscapeText(&buf, []byte(s)); err != nil {
			return "", err
		}
		return buf.String(), nil
	},
	"anchor": tikzAnchor,
}

var (
	ipeTemplate  = template.Must(template.New("ipe").Funcs(funcs).Parse(templates.IpeTemplate))
	tikzTemplate = template.Must(template.New("tikz").Funcs(funcs).Parse(templates.TikZTemplate))
)

// Ipe writes the schedule as a complete Ipe 7 document.
func Ipe(w io.Writer, s *model.Schedule, opts Options) error {
	return execute(w, ipeTemplate, s, opts)
}

// TikZ writes the schedule as a tikzpicture environment.
func TikZ(w io.Writer, s *model.Schedule, opts Options) error {
	return execute(w, tikzTemplate, s, opts)
}

// Render dispatches on format; an empty format means Ipe.
func Render(w io.Writer, format string, s *model.Schedule, opts Options) error {
	switch strings.ToLower(format) {
	case "", FormatIpe:
		return Ipe(w, s, opts)
	case FormatTikZ:
		return TikZ(w, s, opts)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

func execute(w io.Writer, tmpl *template.Template, s *model.Schedule, opts Options) error {
	if s == nil {
		return errors.New("cannot render a nil schedule")
	}
	logger := logging.GetLogger()

	d, err := layout(s, opts)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"format":    tmpl.Name(),
		"instances": len(d.Boxes),
		"palette":   opts.Palette,
	}).Debug("Rendering schedule")

	if err := tmpl.Execute(w, d); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return nil
}

// layout turns the schedule into boxes, lines and labels. Rows are the tasks
// sorted by name, top to bottom.
func layout(s *model.Schedule, opts Options) (*templates.Drawing, error) {
	if opts.GridSize <= 0 {
		return nil, fmt.Errorf("grid size must be greater than 0, got %v", opts.GridSize)
	}
	if opts.Compress {
		s = s.Compress()
	}

	tasks := s.Tasks()
	palette, err := NewPalette(opts.Palette, len(tasks))
	if err != nil {
		return nil, err
	}

	g := opts.GridSize
	pad := opts.Padding
	margin := g / 5
	n := float64(len(tasks))
	bottom := opts.OffsetY - g*n
	x := func(t model.Time) float64 { return opts.OffsetX + g*t.Float64() }

	d := &templates.Drawing{
		Title:       opts.Title,
		Algorithm:   opts.Algorithm,
		Hyperperiod: s.Hyperperiod().String(),
		Verdict:     verdict(s),
	}

	rows := make(map[model.Task]int, len(tasks))
	used := make(map[string]bool)
	for i, t := range tasks {
		rows[t] = i
		c := palette.At(i)
		if !used[c.Name] {
			used[c.Name] = true
			d.Colors = append(d.Colors, templateColor(c.Name, c.Color))
		}
	}
	d.Colors = append(d.Colors,
		templateColor(axisColor, colorful.Color{}),
		templateColor(missColor, colorful.Color{R: 1}),
	)

	var prev *model.TaskInstance
	at := model.Time(0)
	for at < s.Hyperperiod() {
		ti, ok := s.InstanceAt(at)
		if !ok {
			ti, ok = s.NextInstance(at)
			if !ok {
				break
			}
		}

		row := rows[ti.Task]
		box := templates.Box{
			Task:  ti.Task.Name,
			Start: ti.Start.String(),
			End:   ti.End.String(),
			Color: palette.At(row).Name,
			X:     x(ti.Start) + pad,
			Y:     opts.OffsetY - g*float64(row+1) + pad,
			W:     g*ti.Duration().Float64() - 2*pad,
			H:     g - 2*pad,
		}
		// Back-to-back instances of one task are drawn as a single bar.
		if prev != nil && prev.Task == ti.Task && prev.End == ti.Start {
			box.X -= 2 * pad
			box.W += 2 * pad
		}
		d.Boxes = append(d.Boxes, box)

		cur := ti
		prev = &cur
		at = ti.End
	}

	if deadline, ok := missLine(s); ok && opts.ShowDeadlineMiss {
		d.Lines = append(d.Lines, templates.Line{
			X1: x(deadline), Y1: bottom,
			X2: x(deadline), Y2: opts.OffsetY + g,
			Color:  missColor,
			Dashed: true,
		})
	}

	if opts.ShowTimeAxis {
		d.Lines = append(d.Lines,
			templates.Line{X1: opts.OffsetX, Y1: bottom, X2: x(s.Hyperperiod()), Y2: bottom, Color: axisColor},
			templates.Line{X1: opts.OffsetX, Y1: opts.OffsetY, X2: opts.OffsetX, Y2: bottom, Color: axisColor},
		)
		last := int64(math.Floor(s.Hyperperiod().Float64()))
		for i := int64(0); i <= last; i++ {
			d.Labels = append(d.Labels, templates.Label{
				Text:   fmt.Sprintf("$%d$", i),
				X:      x(model.Units(i)),
				Y:      bottom - margin,
				HAlign: "center",
				VAlign: "top",
			})
		}
	}

	if opts.ShowTaskNames {
		for i, t := range tasks {
			d.Labels = append(d.Labels, templates.Label{
				Text:   escapeLaTeX(t.Name),
				X:      opts.OffsetX - margin,
				Y:      opts.OffsetY - g*float64(i+1) + g/2,
				HAlign: "right",
				VAlign: "center",
			})
		}
	}
	return d, nil
}

func missLine(s *model.Schedule) (model.Time, bool) {
	if s.Feasible() {
		return 0, false
	}
	return s.MissedDeadline(), true
}

func verdict(s *model.Schedule) string {
	if m, ok := s.Miss(); ok {
		return fmt.Sprintf("infeasible, %s missed its deadline %s at %s", m.Task.Name, m.Deadline, m.At)
	}
	return "feasible"
}

func templateColor(name string, c colorful.Color) templates.Color {
	return templates.Color{Name: name, R: c.R, G: c.G, B: c.B}
}

// round3 keeps coordinates free of floating point noise in the output.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`_`, `\_`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
)

func escapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

func tikzAnchor(halign, valign string) string {
	v := map[string]string{"top": "north", "bottom": "south"}[valign]
	h := map[string]string{"left": "west", "right": "east"}[halign]
	switch {
	case v == "" && h == "":
		return "center"
	case v == "":
		return h
	case h == "":
		return v
	}
	return v + " " + h
}
