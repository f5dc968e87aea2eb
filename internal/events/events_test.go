package events

import "testing"

func TestBroker_PublishReachesAllSubscribers(t *testing.T) {
	b := NewBroker()
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	b.Publish(Event{Type: "state", Version: 3})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != "state" || ev.Version != 3 {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	_, cancel := b.Subscribe()
	defer cancel()

	// Channel capacity is 16; publishing past it must not block.
	for i := 0; i < 40; i++ {
		b.Publish(Event{Type: "state", Version: uint64(i)})
	}
}

func TestBroker_CancelRemovesSubscriber(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	cancel()
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", b.SubscriberCount())
	}
	// Channel is closed, so receive completes.
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}

	// Double cancel is safe.
	cancel()
}
