package player_test

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/player"
)

type recorder struct {
	calls   []string
	started int
	stopped int
}

func (r *recorder) NoteOn(pitch, velocity uint8) {
	r.calls = append(r.calls, fmt.Sprintf("on %d %d", pitch, velocity))
}
func (r *recorder) NoteOff(pitch uint8)   { r.calls = append(r.calls, fmt.Sprintf("off %d", pitch)) }
func (r *recorder) AllNotesOff()          { r.calls = append(r.calls, "all off") }
func (r *recorder) SetVolume(g float32)   { r.calls = append(r.calls, fmt.Sprintf("volume %v", g)) }
func (r *recorder) SetPitchShift(float32) {}
func (r *recorder) PlaybackStarted()      { r.started++ }
func (r *recorder) PlaybackStopped()      { r.stopped++ }

func (r *recorder) take() []string {
	ret := r.calls
	r.calls = nil
	return ret
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func note(track, id noteroll.ID, start, end int64, pitch int) player.Note {
	return player.Note{Key: player.NoteKey{Track: track, Note: id}, Start: start, End: end, Pitch: pitch, Velocity: 100}
}

func newPlayer(lanes ...player.Lane) (*player.Player, *recorder) {
	r := &recorder{}
	p := player.New(r, r)
	p.SetArrangement(player.Arrangement{PPQ: 480, BPM: 120, Lanes: lanes})
	return p, r
}

func TestHalfSecondFiresNoteAtZero(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 0, 480, 60)}})
	p.Play()
	p.Advance(0.5)
	if got := p.Position(); got != 480 {
		t.Errorf("position = %d, want 480", got)
	}
	if got := r.take(); !slices.Equal(got, []string{"on 60 100"}) {
		t.Errorf("calls = %v, want [on 60 100]", got)
	}
	p.Advance(0.01)
	if got := r.take(); !slices.Equal(got, []string{"off 60"}) {
		t.Errorf("calls = %v, want [off 60]", got)
	}
}

func TestOffBeforeOnAtSameTick(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{
		note(1, 2, 480, 960, 60),
		note(1, 1, 0, 480, 60),
	}})
	p.Play()
	p.AdvanceTicks(1000)
	want := []string{"on 60 100", "off 60", "on 60 100", "off 60"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestLoopWrap(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{
		note(1, 1, 0, 100, 60),
		note(1, 2, 955, 2000, 62),
	}})
	p.SetLoop(noteroll.LoopRegion{Start: 0, End: 960, Enabled: true})
	p.SeekTo(950)
	r.take()
	p.Play()
	p.AdvanceTicks(20)
	want := []string{"on 62 100", "all off", "on 60 100"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if got := p.Position(); got != 10 {
		t.Errorf("position after wrap = %d, want 10", got)
	}
}

func TestLoopWrapsRepeatedly(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 10, 20, 60)}})
	p.SetLoop(noteroll.LoopRegion{Start: 0, End: 100, Enabled: true})
	p.Play()
	p.AdvanceTicks(350)
	if got := r.count("on 60 100"); got != 4 {
		t.Errorf("note triggered %d times over 3.5 loops, want 4:\n%s", got, spew.Sdump(r.calls))
	}
	if got := r.count("all off"); got != 3 {
		t.Errorf("%d loop wraps, want 3", got)
	}
}

func TestSeekDoesNotRetrigger(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{
		note(1, 1, 0, 960, 60),
		note(1, 2, 600, 700, 64),
	}})
	p.Play()
	p.SeekTo(480)
	p.AdvanceTicks(200)
	want := []string{"all off", "on 64 100"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if p.State() != player.Playing {
		t.Errorf("seek changed the state to %v", p.State())
	}
}

func TestNonFiniteStepsAreIgnored(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 0, 100, 60)}})
	p.SetLoop(noteroll.LoopRegion{Start: 0, End: 960, Enabled: true})
	p.Play()
	p.AdvanceTicks(240)
	r.take()
	for _, step := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		p.Advance(step)
		p.AdvanceTicks(step)
	}
	if got := p.Position(); got != 240 {
		t.Errorf("position = %d, want 240", got)
	}
	if got := r.take(); len(got) > 0 {
		t.Errorf("calls = %v, want none", got)
	}
}

func TestHugeStepsKeepThePlayheadInRange(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 0, 100, 60)}})
	p.SetLoop(noteroll.LoopRegion{Start: 0, End: 960, Enabled: true})
	p.Play()
	p.AdvanceTicks(1e300)
	if got := p.Position(); got < 0 || got >= 960 {
		t.Errorf("position after a huge looped step = %d, want within the loop", got)
	}
	if got := r.count("all off"); got != 64 {
		t.Errorf("%d loop wraps, want 64", got)
	}
	p.SetLoop(noteroll.LoopRegion{})
	p.Advance(math.MaxFloat64)
	if got := p.Position(); got < 0 {
		t.Errorf("position after a huge step = %d, want non-negative", got)
	}
}

func TestSoloAndMute(t *testing.T) {
	p, r := newPlayer(
		player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 0, 100, 60)}},
		player.Lane{Track: 2, Audible: false, Notes: []player.Note{note(2, 1, 0, 100, 61)}},
	)
	p.Play()
	p.AdvanceTicks(50)
	if got := r.take(); !slices.Equal(got, []string{"on 60 100"}) {
		t.Errorf("calls = %v, want only the audible lane", got)
	}
}

func TestStopIssuesOneAllNotesOff(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{
		note(1, 1, 0, 960, 60), note(1, 2, 0, 960, 64), note(1, 3, 0, 960, 67),
	}})
	p.SetLoop(noteroll.LoopRegion{Start: 240, End: 960, Enabled: true})
	p.Play()
	p.AdvanceTicks(100)
	r.take()
	if !p.Stop() {
		t.Fatalf("Stop reported no change")
	}
	if got := r.take(); !slices.Equal(got, []string{"all off"}) {
		t.Errorf("calls on stop = %v, want exactly one all off", got)
	}
	if p.Stop() {
		t.Errorf("second Stop reported a change")
	}
	p.Close()
	if got := r.take(); len(got) != 1 || got[0] != "all off" {
		t.Errorf("calls on close = %v, want one final all off", got)
	}
	p.Close()
	if got := r.take(); len(got) != 0 {
		t.Errorf("second Close issued %v", got)
	}
	if p.Position() != 240 {
		t.Errorf("stop rewound to %d, want loop start 240", p.Position())
	}
	if r.started != 1 || r.stopped != 1 {
		t.Errorf("observer saw %d starts and %d stops, want 1 and 1", r.started, r.stopped)
	}
	if p.Play() {
		t.Errorf("Play after Close should be ignored")
	}
}

func TestCloseWhilePlaying(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 0, 960, 60)}})
	p.Play()
	p.AdvanceTicks(10)
	r.take()
	p.Close()
	if got := r.take(); !slices.Equal(got, []string{"all off"}) {
		t.Errorf("calls on close = %v, want exactly one all off", got)
	}
}

func TestPauseResume(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 0, 100, 60), note(1, 2, 200, 300, 62)}})
	p.Play()
	p.AdvanceTicks(50)
	p.Pause()
	p.AdvanceTicks(500)
	if p.Position() != 50 {
		t.Errorf("paused player moved to %d", p.Position())
	}
	p.Play()
	p.AdvanceTicks(200)
	want := []string{"on 60 100", "all off", "on 62 100"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if r.started != 2 || r.stopped != 0 {
		t.Errorf("observer saw %d starts and %d stops, want 2 and 0", r.started, r.stopped)
	}
}

func TestRetriggerSamePitchReleasesFirst(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{
		note(1, 1, 0, 500, 60),
		note(1, 2, 400, 900, 60),
	}})
	p.Play()
	p.AdvanceTicks(1000)
	// the first note's off at 500 must not cut the second note
	want := []string{"on 60 100", "off 60", "on 60 100", "off 60"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestSetArrangementReleasesVanishedNotes(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 0, 960, 60), note(1, 2, 0, 960, 64)}})
	p.Play()
	p.AdvanceTicks(100)
	r.take()
	p.SetArrangement(player.Arrangement{PPQ: 480, BPM: 120, Lanes: []player.Lane{
		{Track: 1, Audible: true, Notes: []player.Note{note(1, 2, 0, 960, 64)}},
	}})
	if got := r.take(); !slices.Equal(got, []string{"off 60"}) {
		t.Errorf("calls = %v, want [off 60]", got)
	}
}

func TestStepsPartitionTheTimeline(t *testing.T) {
	var notes []player.Note
	for i := range 200 {
		notes = append(notes, note(1, noteroll.ID(i+1), int64(i*37), int64(i*37+20), 40+i%40))
	}
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: notes})
	p.Play()
	for i := 0; i < 2000; i++ {
		p.AdvanceTicks(4.3)
	}
	if got := r.count("all off"); got != 0 {
		t.Fatalf("unexpected all off")
	}
	ons, offs := 0, 0
	for _, c := range r.calls {
		if c[:3] == "on " {
			ons++
		} else {
			offs++
		}
	}
	if ons != 200 || offs != 200 {
		t.Errorf("got %d note-ons and %d note-offs, want 200 each", ons, offs)
	}
}

func TestSyncTo(t *testing.T) {
	p, r := newPlayer(player.Lane{Track: 1, Audible: true, Notes: []player.Note{note(1, 1, 100, 200, 60)}})
	p.Play()
	p.SyncTo(150)
	p.SyncTo(50)
	want := []string{"on 60 100", "all off"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if p.Position() != 50 {
		t.Errorf("position = %d, want 50", p.Position())
	}
}
