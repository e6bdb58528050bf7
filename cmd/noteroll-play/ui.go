package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/editor"
	"github.com/vsariola/noteroll/player"
	"github.com/vsariola/noteroll/strict"
)

const (
	frameRate = 60
	rollRows  = 16
)

type (
	frameMsg time.Time

	keyMap struct {
		Play     key.Binding
		Stop     key.Binding
		Back     key.Binding
		Forward  key.Binding
		Loop     key.Binding
		Faster   key.Binding
		Slower   key.Binding
		Up       key.Binding
		Down     key.Binding
		Quantize key.Binding
		Humanize key.Binding
		Swing    key.Binding
		Undo     key.Binding
		Redo     key.Binding
		ZoomIn   key.Binding
		ZoomOut  key.Binding
		Save     key.Binding
		Help     key.Binding
		Quit     key.Binding
	}

	ui struct {
		model  *editor.Model
		keys   keyMap
		help   help.Model
		logger *log.Logger
		path   string
		width  int
		last   time.Time
		status string
		seed   uint64
		swing  float64
	}
)

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

var keys = keyMap{
	Play:     binding("play/pause", "space", " "),
	Stop:     binding("stop", "s"),
	Back:     binding("back a beat", "left"),
	Forward:  binding("forward a beat", "right"),
	Loop:     binding("loop", "l"),
	Faster:   binding("bpm +5", "+", "="),
	Slower:   binding("bpm -5", "-"),
	Up:       binding("transpose up", "up"),
	Down:     binding("transpose down", "down"),
	Quantize: binding("quantize", "Q"),
	Humanize: binding("humanize", "H"),
	Swing:    binding("swing", "W"),
	Undo:     binding("undo", "u", "ctrl+z"),
	Redo:     binding("redo", "r", "ctrl+y"),
	ZoomIn:   binding("zoom in", "z"),
	ZoomOut:  binding("zoom out", "x"),
	Save:     binding("save", "ctrl+s"),
	Help:     binding("help", "?"),
	Quit:     binding("quit", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Play, k.Stop, k.Undo, k.Help, k.Quit} }

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Back, k.Forward, k.Loop},
		{k.Faster, k.Slower, k.Up, k.Down, k.ZoomIn, k.ZoomOut},
		{k.Quantize, k.Humanize, k.Swing},
		{k.Undo, k.Redo, k.Save, k.Help, k.Quit},
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	loopStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

func newUI(model *editor.Model, path string, swing float64, logger *log.Logger) *ui {
	u := &ui{model: model, keys: keys, help: help.New(), logger: logger, path: path, width: 80, swing: swing}
	model.SetRejectHook(func(cmd editor.Command, err error) { u.status = err.Error() })
	model.SetListener(u.observe)
	return u
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (u *ui) Init() tea.Cmd {
	u.last = time.Now()
	return frame()
}

// observe keeps the status line describing the latest document change.
func (u *ui) observe(e editor.Event) {
	switch e := e.(type) {
	case editor.StateReplaced:
		u.status = fmt.Sprintf("loaded %d notes", len(e.State.Notes))
	case editor.NoteUpdated:
		u.status = fmt.Sprintf("note %d edited", e.After.ID)
	case editor.PlaybackStateChanged:
		u.status = e.State.String()
	}
}

func (u *ui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		now := time.Time(msg)
		u.model.Advance(now.Sub(u.last).Seconds())
		u.last = now
		u.follow()
		return u, frame()
	case tea.WindowSizeMsg:
		u.width = msg.Width
		u.help.Width = msg.Width
	case tea.KeyMsg:
		return u, u.key(msg)
	}
	return u, nil
}

func (u *ui) key(msg tea.KeyMsg) tea.Cmd {
	tl := u.model.Timeline()
	beat := tl.TimeSignature.BeatTicks(tl.PPQ)
	switch {
	case key.Matches(msg, u.keys.Quit):
		u.model.Execute(editor.StopPlayback{})
		return tea.Quit
	case key.Matches(msg, u.keys.Play):
		u.model.Execute(editor.SetPlayback{Playing: u.model.PlaybackState() != player.Playing})
	case key.Matches(msg, u.keys.Stop):
		u.model.Execute(editor.StopPlayback{})
	case key.Matches(msg, u.keys.Back):
		u.model.Execute(editor.SetPlayhead{Tick: max(tl.Playhead-beat, 0)})
	case key.Matches(msg, u.keys.Forward):
		u.model.Execute(editor.SetPlayhead{Tick: tl.Playhead + beat})
	case key.Matches(msg, u.keys.Loop):
		loop := tl.Loop
		if !loop.Valid() {
			loop.Start, loop.End = 0, max(u.model.State().Notes.End(), tl.TimeSignature.BarTicks(tl.PPQ))
		}
		u.model.Execute(editor.SetLoop{Start: loop.Start, End: loop.End, Enabled: !loop.Enabled})
	case key.Matches(msg, u.keys.Faster):
		u.model.Execute(editor.SetBPM{BPM: tl.BPM + 5})
	case key.Matches(msg, u.keys.Slower):
		u.model.Execute(editor.SetBPM{BPM: tl.BPM - 5})
	case key.Matches(msg, u.keys.Up):
		u.model.Execute(editor.BatchTransform{Transpose: 1})
	case key.Matches(msg, u.keys.Down):
		u.model.Execute(editor.BatchTransform{Transpose: -1})
	case key.Matches(msg, u.keys.Quantize):
		u.model.Execute(editor.Quantize{Strength: 1})
	case key.Matches(msg, u.keys.Humanize):
		u.seed++
		u.model.Execute(editor.Humanize{Timing: int64(tl.PPQ / 32), Velocity: 8, Seed: u.seed})
	case key.Matches(msg, u.keys.Swing):
		u.model.Execute(editor.Swing{Interval: int64(tl.PPQ / 2), Ratio: u.swing})
	case key.Matches(msg, u.keys.Undo):
		u.model.Execute(editor.Undo{})
	case key.Matches(msg, u.keys.Redo):
		u.model.Execute(editor.Redo{})
	case key.Matches(msg, u.keys.ZoomIn):
		u.model.Execute(editor.SetView{Zoom: tl.Zoom * 2, ScrollTick: tl.ScrollTick})
	case key.Matches(msg, u.keys.ZoomOut):
		u.model.Execute(editor.SetView{Zoom: tl.Zoom / 2, ScrollTick: tl.ScrollTick})
	case key.Matches(msg, u.keys.Save):
		u.save()
	case key.Matches(msg, u.keys.Help):
		u.help.ShowAll = !u.help.ShowAll
	}
	return nil
}

func (u *ui) save() {
	if u.path == "" {
		u.status = "no file to save to"
		return
	}
	if err := strict.Save(u.path, u.model.State()); err != nil {
		u.logger.Error("save failed", "path", u.path, "err", err)
		u.status = err.Error()
		return
	}
	u.model.MarkSaved()
	u.status = "saved " + u.path
}

// ticksPerColumn is a sixteenth note at 100% zoom.
func (u *ui) ticksPerColumn() int64 {
	tl := u.model.Timeline()
	return max(int64(math.Round(float64(tl.PPQ)*100/(4*tl.Zoom))), 1)
}

// follow scrolls the view a page forward or back when the playhead leaves it.
func (u *ui) follow() {
	tl := u.model.Timeline()
	span := u.ticksPerColumn() * int64(u.columns())
	if tl.Playhead >= tl.ScrollTick && tl.Playhead < tl.ScrollTick+span {
		return
	}
	scroll := tl.Playhead - tl.Playhead%span
	u.model.Execute(editor.SetView{Zoom: tl.Zoom, ScrollTick: scroll})
}

func (u *ui) columns() int { return max(u.width-6, 16) }

func (u *ui) View() string {
	tl := u.model.Timeline()
	var b strings.Builder
	name := u.model.State().Name
	if name == "" {
		name = "untitled"
	}
	if u.model.ChangedSinceSave() {
		name += " *"
	}
	b.WriteString(titleStyle.Render("noteroll " + name))
	b.WriteString("\n\n")
	b.WriteString(u.roll(tl))
	bar, beat, _ := tl.TimeSignature.BarBeat(tl.Playhead, tl.PPQ)
	loop := "off"
	if tl.Loop.Enabled {
		loop = fmt.Sprintf("%d-%d", tl.Loop.Start, tl.Loop.End)
	}
	fmt.Fprintf(&b, "\n%s  %3d.%d  %6.2fs  %.1f bpm  loop %s  notes %d\n",
		u.model.PlaybackState(), bar+1, beat+1, tl.Seconds(tl.Playhead), tl.BPM, loop, len(u.model.Notes()))
	b.WriteString(statusStyle.Render(u.status))
	b.WriteString("\n")
	b.WriteString(u.help.View(u.keys))
	return b.String()
}

// roll draws rollRows pitches around the center pitch, one column per
// ticksPerColumn.
func (u *ui) roll(tl noteroll.Timeline) string {
	cols, tpc := u.columns(), u.ticksPerColumn()
	top := min(max(tl.CenterPitch+rollRows/2, rollRows-1), 127)
	grid := make([][]bool, rollRows)
	for i := range grid {
		grid[i] = make([]bool, cols)
	}
	for _, n := range u.model.Notes() {
		row := top - n.Pitch
		if row < 0 || row >= rollRows {
			continue
		}
		for c := max((n.Start-tl.ScrollTick)/tpc, 0); c < int64(cols) && tl.ScrollTick+c*tpc < n.End(); c++ {
			grid[row][c] = true
		}
	}
	head := int((tl.Playhead - tl.ScrollTick) / tpc)
	var b strings.Builder
	for r, row := range grid {
		fmt.Fprintf(&b, "%-4s ", pitchName(top-r))
		for c, on := range row {
			tick := tl.ScrollTick + int64(c)*tpc
			switch {
			case c == head:
				b.WriteString(playheadStyle.Render("|"))
			case on:
				b.WriteString(noteStyle.Render("█"))
			case tl.Loop.Active() && tick >= tl.Loop.Start && tick < tl.Loop.End:
				b.WriteString(loopStyle.Render("·"))
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pitchName(p int) string {
	names := [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return fmt.Sprintf("%s%d", names[p%12], p/12-1)
}
