package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dicecalc/internal/dice"
	"github.com/cory-johannsen/dicecalc/internal/pipeline"
)

// report is the printable form of one evaluated phrase. The numeric fields
// are nil for failed requests; a successful zero is still printed.
type report struct {
	Phrase    string   `json:"phrase" yaml:"phrase"`
	Rewritten string   `json:"rewritten,omitempty" yaml:"rewritten,omitempty"`
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
	Min       *int     `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *int     `json:"max,omitempty" yaml:"max,omitempty"`
	Average   *float64 `json:"average,omitempty" yaml:"average,omitempty"`
	Generated *int     `json:"generated,omitempty" yaml:"generated,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
	Kind      string   `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func newReport(phrase string, out pipeline.Outcome, err error) report {
	r := report{Phrase: phrase}
	if out.Rewritten != "" && out.Rewritten != phrase {
		r.Rewritten = out.Rewritten
	}
	if err != nil {
		r.Error = err.Error()
		if k := dice.KindOf(err); k != 0 {
			r.Kind = k.String()
		}
		return r
	}
	res := out.Result
	r.Text = res.Text
	r.Min = &res.Min
	r.Max = &res.Max
	r.Average = &res.Average
	r.Generated = &res.Generated
	return r
}

type printer struct {
	w      io.Writer
	format string
	yaml   *yaml.Encoder

	label *color.Color
	value *color.Color
	roll  *color.Color
	fail  *color.Color
}

func newPrinter(w io.Writer, format string, colored bool) (*printer, error) {
	switch format {
	case "pretty", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	p := &printer{
		w:      w,
		format: format,
		label:  color.New(color.FgCyan),
		value:  color.New(color.Bold),
		roll:   color.New(color.FgGreen, color.Bold),
		fail:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.label, p.value, p.roll, p.fail} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p, nil
}

func (p *printer) print(r report) error {
	switch p.format {
	case "json":
		return json.NewEncoder(p.w).Encode(r)
	case "yaml":
		if p.yaml == nil {
			p.yaml = yaml.NewEncoder(p.w)
		}
		if err := p.yaml.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return nil
	default:
		return p.pretty(r)
	}
}

// close terminates a yaml stream; other formats write eagerly.
func (p *printer) close() error {
	if p.yaml == nil {
		return nil
	}
	return p.yaml.Close()
}

func (p *printer) pretty(r report) error {
	if r.Rewritten != "" {
		if _, err := fmt.Fprintf(p.w, "%s %s\n", p.label.Sprint("rewritten:"), r.Rewritten); err != nil {
			return err
		}
	}
	if r.Error != "" || r.Min == nil {
		_, err := fmt.Fprintf(p.w, "%s %s\n", p.fail.Sprint("error:"), r.Error)
		return err
	}
	_, err := fmt.Fprintf(p.w, "%s  %s %s  %s %s  %s %s  %s %s\n",
		p.value.Sprint(r.Text),
		p.label.Sprint("min"), p.value.Sprint(*r.Min),
		p.label.Sprint("max"), p.value.Sprint(*r.Max),
		p.label.Sprint("avg"), p.value.Sprint(formatAverage(*r.Average)),
		p.label.Sprint("rolled"), p.roll.Sprint(*r.Generated),
	)
	return err
}

func formatAverage(avg float64) string {
	return fmt.Sprintf("%g", avg)
}
