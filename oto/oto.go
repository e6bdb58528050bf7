// Package oto plays noteroll through the default audio device: a Synth
// renders sine voices and an ebitengine/oto player pulls its output.
package oto

import (
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// Output is a Synth connected to the audio device. It implements
// noteroll.Backend.
type Output struct {
	*Synth
	player *oto.Player
}

// NewOutput opens the audio device and starts playing. bufferSize is the
// device buffer length in frames. Only one Output can exist per process.
func NewOutput(sampleRate, bufferSize int, logger *log.Logger) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferSize) * time.Second / time.Duration(sampleRate),
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("cannot create oto context", "Could not open the audio device."))
	}
	<-ready
	synth := NewSynth(sampleRate, logger)
	player := context.NewPlayer(synth)
	player.Play()
	return &Output{Synth: synth, player: player}, nil
}

// Close stops the audio output.
func (o *Output) Close() error {
	if err := o.player.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("cannot close oto player"))
	}
	return nil
}
