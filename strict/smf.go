package strict

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/vsariola/noteroll"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DecodeSMF converts a Standard MIDI File into a payload, one payload track
// per file track. Only note, tempo, meter, program and track name messages are
// read; the first tempo and meter found win. The payload is not validated:
// pass it to FromStrict for that.
func DecodeSMF(s *smf.SMF) (Payload, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return Payload{}, fault.New("SMPTE time format is not supported",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("smpte time format", "The file uses SMPTE timing; only metric (ticks per quarter) timing is supported."))
	}
	p := Payload{Version: FormatVersion, PPQ: int(ticks), Program: noteroll.NoProgram}
	var tempoFound, meterFound bool
	for _, tr := range s.Tracks {
		var t Track
		var tick int64
		for _, ev := range tr {
			tick += int64(ev.Delta)
			msg := ev.Message
			channelMsg := midi.Message(msg)
			var bpm float64
			var num, den, ch, key, vel, program uint8
			var text string
			switch {
			case msg.GetMetaTempo(&bpm):
				if !tempoFound {
					p.BPM, tempoFound = bpm, true
				}
			case msg.GetMetaMeter(&num, &den):
				if !meterFound {
					p.TimeSignature, meterFound = noteroll.TimeSignature{Numerator: int(num), Denominator: int(den)}, true
				}
			case msg.GetMetaTrackName(&text):
				t.Name = text
				if p.Name == "" {
					p.Name = text
				}
			case channelMsg.GetNoteStart(&ch, &key, &vel):
				t.Events = append(t.Events, Event{Tick: tick, On: true, Channel: int(ch), Pitch: int(key), Velocity: int(vel)})
			case channelMsg.GetNoteEnd(&ch, &key):
				t.Events = append(t.Events, Event{Tick: tick, Channel: int(ch), Pitch: int(key)})
			case channelMsg.GetProgramChange(&ch, &program):
				if p.Program == noteroll.NoProgram {
					p.Program = int(program)
				}
			}
		}
		p.Tracks = append(p.Tracks, t)
	}
	return p, nil
}

// EncodeSMF converts a payload into a Standard MIDI File. The first track
// carries the name, meter, tempo and program change of the payload.
func EncodeSMF(p Payload) (*smf.SMF, error) {
	ppq := p.PPQ
	if ppq == 0 {
		ppq = noteroll.DefaultPPQ
	}
	if ppq < 0 || ppq > 0x7FFF {
		return nil, fault.New(fmt.Sprintf("ppq %d cannot be stored in a MIDI file", ppq), ftag.With(ftag.InvalidArgument))
	}
	bpm := p.BPM
	if bpm <= 0 {
		bpm = noteroll.DefaultBPM
	}
	ts := p.TimeSignature
	if !ts.Valid() {
		ts = noteroll.FourFour
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ppq)
	tracks := p.Tracks
	if len(tracks) == 0 {
		tracks = []Track{{Name: p.Name}}
	}
	for i, t := range tracks {
		var tr smf.Track
		if i == 0 {
			if p.Name != "" {
				tr.Add(0, smf.MetaTrackSequenceName(p.Name))
			}
			tr.Add(0, smf.MetaMeter(uint8(ts.Numerator), uint8(ts.Denominator)))
			tr.Add(0, smf.MetaTempo(bpm))
			if p.Program >= 0 && p.Program <= 127 {
				tr.Add(0, midi.ProgramChange(uint8(firstChannel(tracks)), uint8(p.Program)))
			}
		} else if t.Name != "" {
			tr.Add(0, smf.MetaTrackSequenceName(t.Name))
		}
		events := slices.Clone(t.Events)
		slices.SortStableFunc(events, func(a, b Event) int {
			if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
				return c
			}
			return cmp.Compare(onOrder(isOn(a)), onOrder(isOn(b)))
		})
		var last int64
		for _, e := range events {
			if e.Tick < 0 || e.Channel < 0 || e.Channel > 15 || e.Pitch < 0 || e.Pitch > 127 || e.Velocity < 0 || e.Velocity > 127 {
				return nil, malformed(i, e.Tick, "event %+v cannot be stored in a MIDI file", e)
			}
			var msg midi.Message
			if isOn(e) {
				msg = midi.NoteOn(uint8(e.Channel), uint8(e.Pitch), uint8(e.Velocity))
			} else {
				msg = midi.NoteOff(uint8(e.Channel), uint8(e.Pitch))
			}
			tr.Add(uint32(e.Tick-last), msg)
			last = e.Tick
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("could not add track %d", i)))
		}
	}
	return s, nil
}

// ReadSMF reads a Standard MIDI File from r and decodes it into a payload.
func ReadSMF(r io.Reader) (Payload, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return Payload{}, fault.Wrap(err, fmsg.WithDesc("could not parse MIDI file", "The file is not a valid Standard MIDI File."))
	}
	return DecodeSMF(s)
}

// WriteSMF encodes the payload and writes it to w as a Standard MIDI File.
func WriteSMF(w io.Writer, p Payload) error {
	s, err := EncodeSMF(p)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.With("could not write MIDI file"))
	}
	return nil
}

func firstChannel(tracks []Track) int {
	for _, t := range tracks {
		if len(t.Events) > 0 {
			return t.Events[0].Channel
		}
	}
	return 0
}
