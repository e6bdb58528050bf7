package noteroll

import (
	"math"
	"slices"
)

type (
	// ContentKind tells what material a Clip plays.
	ContentKind int

	// ClipContent is the material of a clip. Embedded notes are owned by the
	// clip and their ticks are relative to the content origin. Source content
	// refers by key to a note-set shared by any number of clips; the clip does
	// not own it. Audio content only carries a path: it is arranged like any
	// other clip but never scheduled.
	ClipContent struct {
		Kind   ContentKind `yaml:"kind"`
		Notes  []Note      `yaml:"notes,omitempty"`
		Source string      `yaml:"source,omitempty"`
		Path   string      `yaml:"path,omitempty"`
	}

	// Clip places a window of its content on a track. The content tick Offset
	// appears at timeline tick Start, and the clip plays content ticks
	// [Offset, Offset+Duration).
	Clip struct {
		ID       ID          `yaml:"id"`
		Name     string      `yaml:"name,omitempty"`
		Start    int64       `yaml:"start"`
		Duration int64       `yaml:"duration"`
		Offset   int64       `yaml:"offset,omitempty"`
		Content  ClipContent `yaml:"content"`
	}
)

const (
	EmbeddedContent ContentKind = iota
	SourceContent
	AudioContent
)

func (k ContentKind) String() string {
	switch k {
	case EmbeddedContent:
		return "embedded"
	case SourceContent:
		return "source"
	case AudioContent:
		return "audio"
	}
	return "unknown"
}

// End returns the timeline tick where the clip ends.
func (c Clip) End() int64 { return c.Start + c.Duration }

// Valid reports whether the clip has a valid placement and content.
func (c Clip) Valid() bool {
	if c.Start < 0 || c.Offset < 0 || c.Duration <= 0 ||
		c.Duration > math.MaxInt64-c.Start || c.Duration > math.MaxInt64-c.Offset {
		return false
	}
	switch c.Content.Kind {
	case EmbeddedContent:
		for _, n := range c.Content.Notes {
			if !n.Valid() {
				return false
			}
		}
		return true
	case SourceContent:
		return c.Content.Source != ""
	case AudioContent:
		return true
	}
	return false
}

// Copy returns a deep copy of the clip.
func (c Clip) Copy() Clip {
	if len(c.Content.Notes) == 0 {
		c.Content.Notes = nil
		return c
	}
	c.Content.Notes = slices.Clone(c.Content.Notes)
	return c
}

// Contains reports whether tick lies strictly inside the clip, i.e. whether
// the clip can be split there.
func (c Clip) Contains(tick int64) bool { return tick > c.Start && tick < c.End() }

// Split cuts the clip at timeline tick at into two contiguous clips. The right
// clip gets the ID rightID and its Offset advances by the length of the left
// clip, so together they play the same material. Embedded notes starting
// before the cut stay in the left clip, truncated to end at the cut; the rest
// move to the right clip. The number of notes is conserved.
func (c Clip) Split(at int64, rightID ID) (left, right Clip, ok bool) {
	if !c.Contains(at) {
		return c, Clip{}, false
	}
	left, right = c.Copy(), c.Copy()
	length := at - c.Start
	left.Duration = length
	right.ID = rightID
	right.Start = at
	right.Duration = c.Duration - length
	right.Offset = c.Offset + length
	if c.Content.Kind == EmbeddedContent {
		cut := c.Offset + length
		left.Content.Notes = left.Content.Notes[:0]
		right.Content.Notes = right.Content.Notes[:0]
		for _, n := range c.Content.Notes {
			if n.Start >= cut {
				right.Content.Notes = append(right.Content.Notes, n)
				continue
			}
			if n.End() > cut {
				n.Duration = cut - n.Start
			}
			left.Content.Notes = append(left.Content.Notes, n)
		}
	}
	return left, right, true
}
