package chatextract

import (
	"context"
	"time"

	"golang.org/x/net/html"

	"github.com/hyperifyio/chatextract/internal/resolve"
)

const defaultPollTimeout = 10 * time.Second

// pollInterval is the fixed sleep between readiness checks.
var pollInterval = 500 * time.Millisecond

// PollReady waits until the tree produced by source contains a
// resolvable container with at least one message block, checking at a
// fixed interval until timeout (default 10s when zero) or context
// cancellation. It performs no parsing; it exists so a caller can defer
// extraction until content has rendered. source is invoked once per
// check and should return the current snapshot, or nil when none is
// available yet.
func PollReady(ctx context.Context, source func() *html.Node, timeout time.Duration, opts Options) bool {
	if source == nil {
		return false
	}
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	prof := opts.profile()
	deadline := time.Now().Add(timeout)
	for {
		if ready(source(), prof) {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		wait := pollInterval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
}

func ready(root *html.Node, prof *Profile) bool {
	if root == nil {
		return false
	}
	container := resolve.FindOne(root, containerConfig(prof))
	if container == nil {
		return false
	}
	return len(resolve.FindAll(container, messageConfig(prof))) > 0
}
