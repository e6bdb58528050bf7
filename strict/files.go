package strict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/vsariola/noteroll"
	"gopkg.in/yaml.v3"
)

// Unmarshal parses a payload document. JSON is tried first and YAML second,
// so either format is accepted regardless of the file name.
func Unmarshal(b []byte) (Payload, error) {
	var p Payload
	if errJSON := json.Unmarshal(b, &p); errJSON != nil {
		p = Payload{}
		if errYaml := yaml.Unmarshal(b, &p); errYaml != nil {
			return Payload{}, fault.Wrap(errYaml,
				fmsg.WithDesc("could not unmarshal payload: "+errJSON.Error(), "The file is neither valid JSON nor valid YAML."),
				ftag.With(ftag.InvalidArgument))
		}
	}
	if p.Version > FormatVersion {
		return Payload{}, fault.New(fmt.Sprintf("payload format version %d is newer than supported version %d", p.Version, FormatVersion))
	}
	return p, nil
}

// Marshal formats a payload as YAML, or as JSON when asJSON is set.
func Marshal(p Payload, asJSON bool) ([]byte, error) {
	if p.Version == 0 {
		p.Version = FormatVersion
	}
	var (
		b   []byte
		err error
	)
	if asJSON {
		b, err = json.MarshalIndent(p, "", "  ")
	} else {
		b, err = yaml.Marshal(p)
	}
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not marshal payload"))
	}
	return b, nil
}

// IsMIDIFile reports whether the path has a Standard MIDI File extension.
func IsMIDIFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi", ".smf":
		return true
	}
	return false
}

// ReadFile reads a payload from path. Files with a MIDI extension are parsed
// as Standard MIDI Files, everything else as a JSON or YAML document.
func ReadFile(path string) (Payload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fault.Wrap(err, fmsg.WithDesc("could not read file", "Could not read "+path+"."))
	}
	if IsMIDIFile(path) {
		p, err := ReadSMF(bytes.NewReader(b))
		if err != nil {
			return Payload{}, fault.Wrap(err, fmsg.With(path))
		}
		return p, nil
	}
	p, err := Unmarshal(b)
	if err != nil {
		return Payload{}, fault.Wrap(err, fmsg.With(path))
	}
	return p, nil
}

// WriteFile writes the payload to path, choosing the format from the file
// extension: Standard MIDI File, JSON for .json and YAML otherwise.
func WriteFile(path string, p Payload) error {
	var buf bytes.Buffer
	if IsMIDIFile(path) {
		if err := WriteSMF(&buf, p); err != nil {
			return err
		}
	} else {
		b, err := Marshal(p, strings.EqualFold(filepath.Ext(path), ".json"))
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fault.Wrap(err, fmsg.With("could not create directory"))
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("could not write file", "Could not write "+path+"."))
	}
	return nil
}

// Load reads path and validates it into a MidiState.
func Load(path string) (noteroll.MidiState, error) {
	p, err := ReadFile(path)
	if err != nil {
		return noteroll.MidiState{}, err
	}
	state, err := FromStrict(p)
	if err != nil {
		return noteroll.MidiState{}, fault.Wrap(err, fmsg.With(path))
	}
	if state.Name == "" {
		state.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return state, nil
}

// Save writes the state to path as a strict payload.
func Save(path string, state noteroll.MidiState) error {
	return WriteFile(path, ToStrict(state))
}
