// Package config holds the user options of the noteroll tools: the defaults
// of a new document and timeline, the editor's history depth, the logging
// level and the audio output settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/log"
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/editor"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file inside the config directory.
const FileName = "config.yml"

type (
	// Options is the config file contents. Zero fields are filled from
	// Default when the file is loaded.
	Options struct {
		PPQ           int                    `yaml:"ppq" json:"ppq"`
		BPM           float64                `yaml:"bpm" json:"bpm"`
		TimeSignature noteroll.TimeSignature `yaml:"timesignature" json:"timesignature"`
		Snap          Snap                   `yaml:"snap" json:"snap"`
		HistoryDepth  int                    `yaml:"historydepth" json:"historydepth"`
		Volume        float64                `yaml:"volume" json:"volume"`
		PitchShift    float64                `yaml:"pitchshift,omitempty" json:"pitchshift,omitempty"`
		Loop          noteroll.LoopRegion    `yaml:"loop" json:"loop"`
		CenterPitch   int                    `yaml:"centerpitch" json:"centerpitch"`
		SwingRatio    float64                `yaml:"swingratio" json:"swingratio"`
		LogLevel      string                 `yaml:"loglevel" json:"loglevel"`
		Audio         Audio                  `yaml:"audio" json:"audio"`
	}

	// Snap is the grid setting. Mode is "absolute" or "relative".
	Snap struct {
		Interval int64  `yaml:"interval" json:"interval"`
		Mode     string `yaml:"mode" json:"mode"`
	}

	Audio struct {
		SampleRate int `yaml:"samplerate" json:"samplerate"`
		// BufferSize is the output buffer length in frames.
		BufferSize int `yaml:"buffersize" json:"buffersize"`
	}
)

// Default returns the options used when there is no config file.
func Default() Options {
	tl := noteroll.NewTimeline()
	return Options{
		PPQ:           tl.PPQ,
		BPM:           tl.BPM,
		TimeSignature: tl.TimeSignature,
		Snap:          Snap{Interval: tl.Snap.Interval, Mode: tl.Snap.Mode.String()},
		HistoryDepth:  editor.DefaultHistoryDepth,
		Volume:        tl.Volume,
		Loop:          tl.Loop,
		CenterPitch:   tl.CenterPitch,
		SwingRatio:    0.5,
		LogLevel:      "warn",
		Audio:         Audio{SampleRate: 44100, BufferSize: 1024},
	}
}

// Dir returns the directory where the config file lives.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("could not find the user config directory"))
	}
	return filepath.Join(dir, "noteroll"), nil
}

// Path returns the full path of the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the options from path. A missing file yields the defaults. The
// file is parsed as YAML, falling back to JSON.
func Load(path string) (Options, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Options{}, fault.Wrap(err, fmsg.WithDesc("could not read config", "Could not read the config file "+path+"."))
	}
	var o Options
	if errYaml := yaml.Unmarshal(b, &o); errYaml != nil {
		o = Options{}
		if errJSON := json.Unmarshal(b, &o); errJSON != nil {
			return Options{}, fault.Wrap(errYaml, fmsg.WithDesc("could not parse config",
				fmt.Sprintf("The config file %s is neither YAML (%v) nor JSON (%v).", path, errYaml, errJSON)))
		}
	}
	o.fill()
	if err := o.Validate(); err != nil {
		return Options{}, fault.Wrap(err, fmsg.WithDesc("invalid config", "The config file "+path+" has invalid values."))
	}
	return o, nil
}

// Save writes the options to path as YAML, creating the directory if needed.
func (o Options) Save(path string) error {
	b, err := yaml.Marshal(o)
	if err != nil {
		return fault.Wrap(err, fmsg.With("could not marshal config"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("could not create config directory"))
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("could not write config", "Could not save the config file "+path+"."))
	}
	return nil
}

// fill replaces zero fields with defaults.
func (o *Options) fill() {
	d := Default()
	if o.PPQ == 0 {
		o.PPQ = d.PPQ
	}
	if o.BPM == 0 {
		o.BPM = d.BPM
	}
	if o.TimeSignature == (noteroll.TimeSignature{}) {
		o.TimeSignature = d.TimeSignature
	}
	if o.Snap.Mode == "" {
		o.Snap.Mode = d.Snap.Mode
	}
	if o.HistoryDepth == 0 {
		o.HistoryDepth = d.HistoryDepth
	}
	if o.CenterPitch == 0 {
		o.CenterPitch = d.CenterPitch
	}
	if o.LogLevel == "" {
		o.LogLevel = d.LogLevel
	}
	if o.Audio.SampleRate == 0 {
		o.Audio.SampleRate = d.Audio.SampleRate
	}
	if o.Audio.BufferSize == 0 {
		o.Audio.BufferSize = d.Audio.BufferSize
	}
}

// Validate reports the first option that is out of range.
func (o Options) Validate() error {
	switch {
	case o.PPQ <= 0:
		return fmt.Errorf("ppq must be positive, was %d", o.PPQ)
	case o.BPM <= 0:
		return fmt.Errorf("bpm must be positive, was %v", o.BPM)
	case !o.TimeSignature.Valid():
		return fmt.Errorf("invalid time signature %d/%d", o.TimeSignature.Numerator, o.TimeSignature.Denominator)
	case o.Snap.Interval < 0:
		return fmt.Errorf("snap interval must not be negative, was %d", o.Snap.Interval)
	case o.HistoryDepth < 0:
		return fmt.Errorf("history depth must not be negative, was %d", o.HistoryDepth)
	case o.Volume < 0 || o.Volume > 2:
		return fmt.Errorf("volume must be within 0..2, was %v", o.Volume)
	case o.PitchShift < -12 || o.PitchShift > 12:
		return fmt.Errorf("pitch shift must be within -12..12, was %v", o.PitchShift)
	case o.CenterPitch < 0 || o.CenterPitch > 127:
		return fmt.Errorf("center pitch must be within 0..127, was %d", o.CenterPitch)
	case o.SwingRatio < 0 || o.SwingRatio > 1:
		return fmt.Errorf("swing ratio must be within 0..1, was %v", o.SwingRatio)
	case o.Audio.SampleRate <= 0 || o.Audio.BufferSize <= 0:
		return fmt.Errorf("invalid audio settings %+v", o.Audio)
	}
	if _, err := o.SnapMode(); err != nil {
		return err
	}
	_, err := o.Level()
	return err
}

// SnapMode parses the snap mode name.
func (o Options) SnapMode() (noteroll.SnapMode, error) {
	for _, m := range []noteroll.SnapMode{noteroll.SnapAbsolute, noteroll.SnapRelative} {
		if m.String() == o.Snap.Mode {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown snap mode %q", o.Snap.Mode)
}

// Level parses the log level name.
func (o Options) Level() (log.Level, error) {
	return log.ParseLevel(o.LogLevel)
}

// Timeline returns a timeline carrying the options.
func (o Options) Timeline() noteroll.Timeline {
	tl := noteroll.NewTimeline()
	tl.PPQ = o.PPQ
	tl.BPM = o.BPM
	tl.TimeSignature = o.TimeSignature
	tl.Snap.Interval = o.Snap.Interval
	if mode, err := o.SnapMode(); err == nil {
		tl.Snap.Mode = mode
	}
	tl.Volume = o.Volume
	tl.PitchShift = o.PitchShift
	tl.Loop = o.Loop
	tl.CenterPitch = o.CenterPitch
	return tl
}

// Editor returns the options of a new editor model.
func (o Options) Editor(logger *log.Logger) editor.Options {
	return editor.Options{HistoryDepth: o.HistoryDepth, Timeline: o.Timeline(), Logger: logger}
}
