package driver

import "time"

// Stage describes a phase of one unit.
type Stage string

const (
	StageLoad  Stage = "load"
	StageCheck Stage = "check"
	StageCache Stage = "cache"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the unit is loaded and waiting.
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusError indicates the unit produced errors or could not be read.
	StatusError Status = "error"
)

// Event reports progress for a unit file. While a unit is being checked,
// Passes counts finished passes out of Total.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Passes  int
	Total   int
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// concurrent passes.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

func finalStatus(res *UnitResult) Status {
	if res.Bag.HasErrors() {
		return StatusError
	}
	return StatusDone
}
