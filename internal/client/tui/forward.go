package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tasktracker/internal/client/session"
)

const sessionBuffer = 16

// Forward relays session changes into the program in publish order. Call it before
// Run; the returned func stops relaying.
func Forward(program *tea.Program, watcher *session.Watcher) func() {
	updates := make(chan session.Session, sessionBuffer)
	done := make(chan struct{})

	unsubscribe := watcher.Subscribe(func(s session.Session) {
		select {
		case updates <- s:
		case <-done:
		}
	})

	go func() {
		for {
			select {
			case s := <-updates:
				program.Send(SessionMsg{Session: s})
			case <-done:
				return
			}
		}
	}()

	return func() {
		unsubscribe()
		close(done)
	}
}
