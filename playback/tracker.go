package playback

import "github.com/samber/mo"

// Phase is the lifecycle stage of a single playlist item within a session.
type Phase int

const (
	PhaseInactive Phase = iota
	PhaseActivated
	PhaseResuming
	PhaseSteady
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseActivated:
		return "activated"
	case PhaseResuming:
		return "resuming"
	case PhaseSteady:
		return "steady"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Tracker holds per-item resume state for one player session.
// Items are keyed by playlist index.
type Tracker struct {
	lastActivated mo.Option[int]

	// resumeDone is absent until the index is first activated, false while the
	// one-time resume seek is pending and true once it has been attempted.
	resumeDone map[int]bool
	phase      map[int]Phase
}

func NewTracker() *Tracker {
	return &Tracker{
		lastActivated: mo.None[int](),
		resumeDone:    make(map[int]bool),
		phase:         make(map[int]Phase),
	}
}

// Activate records index as the item actively playing.
// It reports whether this was a genuine transition: repeated activation of the active index is
// ignored unless the item has finished since, in which case it is being replayed.
func (t *Tracker) Activate(index int) bool {
	if current, ok := t.lastActivated.Get(); ok && current == index && t.phase[index] != PhaseFinished {
		return false
	}

	t.lastActivated = mo.Some(index)
	t.resumeDone[index] = false
	t.phase[index] = PhaseActivated
	return true
}

// Progress caches position as the item's last known location.
// The write only happens once the resume seek for the active index has been attempted,
// so positions observed before the seek cannot clobber the saved resume point.
// Reaching the full duration stores zero so the next watch starts over.
func (t *Tracker) Progress(item *Item, index int, position, duration float64) bool {
	if item == nil || !t.resumeDone[index] {
		return false
	}
	if current, ok := t.lastActivated.Get(); !ok || current != index {
		return false
	}

	location := position
	if position == duration {
		location = 0
	}
	item.LastKnownLocation = mo.Some(location)
	return true
}

// BeginResume moves an activated index into the resuming phase.
func (t *Tracker) BeginResume(index int) {
	if t.phase[index] == PhaseActivated {
		t.phase[index] = PhaseResuming
	}
}

// MarkResumeAttempted records that the one-time resume seek for index has run or been skipped.
func (t *Tracker) MarkResumeAttempted(index int) {
	if t.resumeDone[index] {
		return
	}
	t.resumeDone[index] = true
	t.phase[index] = PhaseSteady
}

// Finish marks index as played through.
func (t *Tracker) Finish(index int) {
	if _, ok := t.phase[index]; ok {
		t.phase[index] = PhaseFinished
	}
}

// ResumeState reports whether the resume seek for index has been attempted,
// and whether the index has any activation state at all.
func (t *Tracker) ResumeState(index int) (done, known bool) {
	done, known = t.resumeDone[index]
	return
}

func (t *Tracker) LastActivated() mo.Option[int] {
	return t.lastActivated
}

func (t *Tracker) Phase(index int) Phase {
	return t.phase[index]
}
