package chatextract

import (
	"context"
	"testing"
	"time"

	"golang.org/x/net/html"
)

func TestPollReady_ImmediatelyReady(t *testing.T) {
	root := mustParseHTML(t, conversationPage)
	ok := PollReady(context.Background(), func() *html.Node { return root }, time.Second, Options{})
	if !ok {
		t.Fatalf("expected ready")
	}
}

func TestPollReady_BecomesReadyAfterRender(t *testing.T) {
	old := pollInterval
	pollInterval = 2 * time.Millisecond
	defer func() { pollInterval = old }()

	calls := 0
	source := func() *html.Node {
		calls++
		if calls < 3 {
			return nil
		}
		return mustParseHTML(t, conversationPage)
	}
	ok := PollReady(context.Background(), source, time.Second, Options{})
	if !ok {
		t.Fatalf("expected ready after content rendered")
	}
	if calls < 3 {
		t.Fatalf("expected repeated checks, got %d", calls)
	}
}

func TestPollReady_TimesOut(t *testing.T) {
	old := pollInterval
	pollInterval = 2 * time.Millisecond
	defer func() { pollInterval = old }()

	start := time.Now()
	ok := PollReady(context.Background(), func() *html.Node { return nil }, 20*time.Millisecond, Options{})
	if ok {
		t.Fatalf("expected timeout")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout took too long")
	}
}

func TestPollReady_ContainerWithoutMessagesIsNotReady(t *testing.T) {
	old := pollInterval
	pollInterval = 2 * time.Millisecond
	defer func() { pollInterval = old }()

	root := mustParseHTML(t, `<html><body>
		<div data-testid="conversation-turns"><p>still loading placeholder</p></div>
	</body></html>`)
	ok := PollReady(context.Background(), func() *html.Node { return root }, 20*time.Millisecond, Options{})
	if ok {
		t.Fatalf("a container with zero message blocks is not ready")
	}
}

func TestPollReady_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	ok := PollReady(ctx, func() *html.Node { return nil }, time.Minute, Options{})
	if ok {
		t.Fatalf("expected not ready on cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancellation should return promptly")
	}
}
