package console

import (
	"strings"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level
	Message string
}

func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }
func Failure(msg string) Notice { return Notice{Level: LevelError, Message: msg} }

type Notifier interface {
	Notify(n Notice)
}

type discard struct{}

func (discard) Notify(Notice) {}

// Notices queues notifications until the next page render.
type Notices struct {
	mu    sync.Mutex
	queue []Notice
}

func NewNotices() *Notices {
	return &Notices{}
}

// Notify drops notices without a message.
func (n *Notices) Notify(notice Notice) {
	if notice.Message == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue = append(n.queue, notice)
}

// Drain returns the queued notices and empties the queue.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.queue
	n.queue = nil
	return out
}

// Messages are the notices of one entity page.
type Messages struct {
	LoadFailed   string
	Created      string
	CreateFailed string
	Updated      string
	UpdateFailed string
	Deleted      string
	DeleteFailed string
}

// MessagesFor builds the usual set for a noun, e.g. ("book", "books").
func MessagesFor(noun, plural string) Messages {
	title := strings.ToUpper(noun[:1]) + noun[1:]
	return Messages{
		LoadFailed:   "Failed to fetch " + plural,
		Created:      title + " added successfully!",
		CreateFailed: "Failed to save " + noun,
		Updated:      title + " updated successfully",
		UpdateFailed: "Failed to save " + noun,
		Deleted:      title + " deleted successfully",
		DeleteFailed: "Failed to delete " + noun,
	}
}
