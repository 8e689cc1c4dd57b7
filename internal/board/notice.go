package board

import "sync"

// Notice is a dismissible notification, optionally carrying one action
// (undo, retry) the user can invoke.
type Notice struct {
	Title       string
	Description string
	ActionLabel string
	ActionHint  string // how to reach the same outcome without the action
	Action      func()
}

// Notifier receives notices emitted by the board views.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// NoticeBuffer collects notices, e.g. for the duration of one request.
type NoticeBuffer struct {
	mu      sync.Mutex
	notices []Notice
}

func (b *NoticeBuffer) Notify(n Notice) {
	b.mu.Lock()
	b.notices = append(b.notices, n)
	b.mu.Unlock()
}

// Drain returns and clears the collected notices.
func (b *NoticeBuffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
