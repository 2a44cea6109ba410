package session

import "sync"

type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the client's view of who is signed in. Subject and Email are only set
// when Status is StatusAuthenticated.
type Session struct {
	Status  Status
	Subject string
	Email   string
}

func Loading() Session {
	return Session{Status: StatusLoading}
}

func Unauthenticated() Session {
	return Session{Status: StatusUnauthenticated}
}

func Authenticated(subject, email string) Session {
	return Session{Status: StatusAuthenticated, Subject: subject, Email: email}
}

func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Watcher holds the current session and notifies subscribers whenever it changes.
// Deliveries are serialized, so every subscriber sees sessions in the order they
// became current. Subscribers must not call Publish or Subscribe themselves.
type Watcher struct {
	deliverMu sync.Mutex

	mu          sync.Mutex
	current     Session
	subscribers map[int]func(Session)
	nextID      int
}

func NewWatcher() *Watcher {
	return &Watcher{
		current:     Loading(),
		subscribers: map[int]func(Session){},
	}
}

func (w *Watcher) Current() Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.current
}

// Subscribe calls fn with the current session right away and again after every
// Publish. The returned func removes the subscription.
func (w *Watcher) Subscribe(fn func(Session)) func() {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subscribers[id] = fn
	current := w.current
	w.mu.Unlock()

	fn(current)

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		delete(w.subscribers, id)
	}
}

func (w *Watcher) Publish(s Session) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.mu.Lock()
	w.current = s

	subscribers := make([]func(Session), 0, len(w.subscribers))
	for _, fn := range w.subscribers {
		subscribers = append(subscribers, fn)
	}
	w.mu.Unlock()

	for _, fn := range subscribers {
		fn(s)
	}
}
