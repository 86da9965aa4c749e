package wizard

import "sync"

// ProgressEvent is one generation step reported to the browser.
type ProgressEvent struct {
	Step   string `json:"step"`
	Detail string `json:"detail"`
	Done   bool   `json:"done,omitempty"`
	Error  string `json:"error,omitempty"`
}

// progressFeed fans generation events out to any number of subscribers.
// Late subscribers replay the history first, so a socket that connects
// mid-run still sees every step.
type progressFeed struct {
	mu     sync.Mutex
	events []ProgressEvent
	subs   map[int]chan ProgressEvent
	nextID int
	closed bool
}

func newProgressFeed() *progressFeed {
	return &progressFeed{subs: make(map[int]chan ProgressEvent)}
}

// Publish records an event and delivers it to live subscribers. Slow
// subscribers lose events rather than block generation.
func (f *progressFeed) Publish(ev ProgressEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.events = append(f.events, ev)
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	if ev.Done || ev.Error != "" {
		f.closeLocked()
	}
}

// Subscribe returns a channel replaying past events before streaming new
// ones, plus a cancel function the subscriber must call when done. On a
// finished feed the channel is closed after the replay.
func (f *progressFeed) Subscribe() (<-chan ProgressEvent, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan ProgressEvent, len(f.events)+64)
	for _, ev := range f.events {
		ch <- ev
	}
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Reset clears the feed for a fresh generation run.
func (f *progressFeed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
	f.events = nil
	f.subs = make(map[int]chan ProgressEvent)
	f.closed = false
}

func (f *progressFeed) closeLocked() {
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	f.closed = true
}
