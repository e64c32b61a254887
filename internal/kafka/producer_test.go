package kafka

import (
	"context"
	"testing"
	"time"
)

func waitClosed(t *testing.T, p *Producer) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer loop did not shut down")
	}
}

func TestProducer_CloseThenCancelShutsDownCleanly(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	// The shutdown sequence races the drain loop's two select arms; it
	// must not panic on a second inbox close.
	p.Close()
	cancel()
	waitClosed(t, p)
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, 4)
	p.Start(context.Background())

	p.Close()
	p.Close()
	waitClosed(t, p)
}
