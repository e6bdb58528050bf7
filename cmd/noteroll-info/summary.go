package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/strict"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultTemplate = `{{ .Path }}: {{ .Name | default "untitled" | quote }} ({{ .Format }})
  {{ num .Notes }} notes over {{ num .Ticks }} ticks, {{ printf "%.2f" .Seconds }} s at {{ .BPM }} bpm in {{ .Meter }}, {{ .PPQ }} ppq
{{- if .Notes }}
  pitch {{ .Lowest }}..{{ .Highest }}, velocity {{ .MinVelocity }}..{{ .MaxVelocity }}, channel {{ .Channel }}
{{- end }}
{{- if ge .Program 0 }}, program {{ .Program }}{{ end }}
{{- if gt (len .Ignored) 0 }}
  ignored conductor tracks: {{ .Ignored | join ", " }}
{{- end }}
`

// Summary is the data given to the summary template.
type Summary struct {
	Path, Name, Format string
	Notes              int
	Ticks              int64
	Seconds            float64
	BPM                float64
	PPQ                int
	Meter              string
	Channel, Program   int
	Lowest, Highest    string
	MinVelocity        int
	MaxVelocity        int
	Ignored            []string
}

func newTemplate(path, lang string) (*template.Template, error) {
	text := defaultTemplate
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text = string(b)
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, err
	}
	p := message.NewPrinter(tag)
	title := cases.Title(tag)
	funcs := template.FuncMap{
		"num":   func(v any) string { return p.Sprint(v) },
		"title": title.String,
		"pitch": pitchName,
	}
	return template.New("summary").Funcs(sprig.TxtFuncMap()).Funcs(funcs).Parse(text)
}

func summarize(path string, payload strict.Payload, state noteroll.MidiState) Summary {
	s := Summary{
		Path:    path,
		Name:    state.Name,
		Format:  "yaml",
		Notes:   len(state.Notes),
		Ticks:   state.Notes.End(),
		BPM:     state.BPM,
		PPQ:     state.PPQ,
		Meter:   fmt.Sprintf("%d/%d", state.TimeSignature.Numerator, state.TimeSignature.Denominator),
		Channel: state.Channel,
		Program: state.Program,
	}
	switch {
	case strict.IsMIDIFile(path):
		s.Format = "midi"
	case filepath.Ext(path) == ".json":
		s.Format = "json"
	}
	s.Seconds = noteroll.TicksToSeconds(s.Ticks, state.PPQ, state.BPM)
	low, high := 127, 0
	s.MinVelocity, s.MaxVelocity = 127, 0
	for _, n := range state.Notes {
		low, high = min(low, n.Pitch), max(high, n.Pitch)
		s.MinVelocity, s.MaxVelocity = min(s.MinVelocity, n.Velocity), max(s.MaxVelocity, n.Velocity)
	}
	s.Lowest, s.Highest = pitchName(low), pitchName(high)
	notes := payload.NoteTracks()
	for i, t := range payload.Tracks {
		if len(notes) == 1 && i == notes[0] {
			continue
		}
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		s.Ignored = append(s.Ignored, name)
	}
	return s
}

func pitchName(p int) string {
	names := [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return fmt.Sprintf("%s%d", names[p%12], p/12-1)
}
