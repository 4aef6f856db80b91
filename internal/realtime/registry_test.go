package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (c *fakeConn) Send(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection gone")
	}
	c.events = append(c.events, event)
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestPushFansOutToAllConnections(t *testing.T) {
	r := NewRegistry()
	a := &fakeConn{}
	b := &fakeConn{}
	r.Register("u1", a)
	r.Register("u1", b)

	r.Push("u1", EventNotification, map[string]string{"id": "n1"})

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("expected both connections to receive the event, got %d and %d", a.count(), b.count())
	}
}

func TestPushWithNoConnectionsIsNoop(t *testing.T) {
	r := NewRegistry()
	// must not panic or error
	r.Push("nobody", EventCountUpdate, map[string]int64{"unreadCount": 0})
}

func TestFailingConnectionDoesNotBlockOthers(t *testing.T) {
	r := NewRegistry()
	bad := &fakeConn{fail: true}
	good := &fakeConn{}
	r.Register("u1", bad)
	r.Register("u1", good)

	r.Push("u1", EventNotification, nil)

	if good.count() != 1 {
		t.Fatalf("healthy connection should still receive the event, got %d", good.count())
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	r.Register("u1", c)
	r.Unregister("u1", c)

	r.Push("u1", EventNotification, nil)

	if c.count() != 0 {
		t.Fatalf("unregistered connection received %d events", c.count())
	}
	if r.Connections("u1") != 0 {
		t.Fatalf("expected empty registry for u1, got %d", r.Connections("u1"))
	}
}

func TestConcurrentRegisterAndPush(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		uid := fmt.Sprintf("u%d", i%5)
		go func(uid string) {
			defer wg.Done()
			c := &fakeConn{}
			r.Register(uid, c)
			r.Unregister(uid, c)
		}(uid)
		go func(uid string) {
			defer wg.Done()
			r.Push(uid, EventCountUpdate, nil)
		}(uid)
	}
	wg.Wait()
}
