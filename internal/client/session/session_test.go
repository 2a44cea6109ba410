package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"tasktracker/internal/client/session"
)

func TestWatcher_StartsLoading(t *testing.T) {
	w := session.NewWatcher()

	assert.Equal(t, session.StatusLoading, w.Current().Status)
	assert.False(t, w.Current().IsAuthenticated())
}

func TestWatcher_SubscribePublish(t *testing.T) {
	w := session.NewWatcher()

	var seen []session.Session

	unsubscribe := w.Subscribe(func(s session.Session) {
		seen = append(seen, s)
	})

	w.Publish(session.Authenticated("user-a", "a@example.com"))
	w.Publish(session.Unauthenticated())

	unsubscribe()

	w.Publish(session.Authenticated("user-b", ""))

	assert.Equal(t, []session.Session{
		session.Loading(),
		session.Authenticated("user-a", "a@example.com"),
		session.Unauthenticated(),
	}, seen)
	assert.Equal(t, "user-b", w.Current().Subject)
}

func TestWatcher_ConcurrentPublishKeepsOrder(t *testing.T) {
	w := session.NewWatcher()

	var (
		mu     sync.Mutex
		first  []session.Session
		second []session.Session
	)

	record := func(dst *[]session.Session) func(session.Session) {
		return func(s session.Session) {
			mu.Lock()
			defer mu.Unlock()

			*dst = append(*dst, s)
		}
	}

	w.Subscribe(record(&first))
	w.Subscribe(record(&second))

	const publishers = 32

	var wg sync.WaitGroup
	for i := range publishers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			w.Publish(session.Authenticated(fmt.Sprintf("user-%d", i), ""))
		}()
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	assert.Len(t, first, publishers+1)
	assert.Equal(t, first, second)
	assert.Equal(t, w.Current(), first[len(first)-1])
}

func TestWatcher_SubscribeDuringPublish(t *testing.T) {
	w := session.NewWatcher()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			w.Publish(session.Authenticated(fmt.Sprintf("user-%d", i), ""))
		}()
	}

	var (
		mu   sync.Mutex
		seen []session.Session
	)

	w.Subscribe(func(s session.Session) {
		mu.Lock()
		defer mu.Unlock()

		seen = append(seen, s)
	})

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	assert.NotEmpty(t, seen)
	assert.Equal(t, w.Current(), seen[len(seen)-1])
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "loading", session.StatusLoading.String())
	assert.Equal(t, "unauthenticated", session.StatusUnauthenticated.String())
	assert.Equal(t, "authenticated", session.StatusAuthenticated.String())
	assert.Equal(t, "unknown", session.Status(42).String())
}
