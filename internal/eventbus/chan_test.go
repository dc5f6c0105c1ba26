package eventbus

import "testing"

func TestSubscribeChanDeliversInOrder(t *testing.T) {
	t.Parallel()
	b := New()
	ch, cancel := b.SubscribeChan("t", 4)
	defer cancel()

	for i := 1; i <= 3; i++ {
		b.Publish("t", i)
	}
	for want := 1; want <= 3; want++ {
		if got := <-ch; got != want {
			t.Fatalf("got %v, want %d", got, want)
		}
	}
}

func TestSubscribeChanDropsWhenFull(t *testing.T) {
	t.Parallel()
	b := New()
	ch, cancel := b.SubscribeChan("t", 1)
	defer cancel()

	b.Publish("t", "first")
	b.Publish("t", "second")

	if got := <-ch; got != "first" {
		t.Fatalf("got %v, want first", got)
	}
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra payload %v", v)
	default:
	}
}

func TestSubscribeChanCancel(t *testing.T) {
	t.Parallel()
	b := New()
	ch, cancel := b.SubscribeChan("t", 0)
	if cap(ch) != defaultChanBuffer {
		t.Fatalf("cap = %d, want default %d", cap(ch), defaultChanBuffer)
	}

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	if got := b.Subscribers("t"); got != 0 {
		t.Fatalf("Subscribers = %d after cancel", got)
	}
	// Publishing after cancel must not panic.
	b.Publish("t", 1)
}
