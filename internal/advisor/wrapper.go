package advisor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/pkg/anthropic"
)

// Disposition classifies the outcome of a bounded generation attempt.
type Disposition string

const (
	DispositionSuccess   Disposition = "success"
	DispositionTimeout   Disposition = "timeout"
	DispositionTransport Disposition = "transport_error"
)

// Outcome is the result of one bounded generation call.
type Outcome struct {
	Text        string
	Usage       anthropic.TokenUsage
	Disposition Disposition
	Err         error
}

// callBounded runs one generation request under a wall-clock deadline. The
// deadline context is handed to the client so the underlying transport is
// cancelled too; the select guards against clients that ignore it.
func callBounded(ctx context.Context, client anthropic.Client, req anthropic.MessageRequest, timeout time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		resp *anthropic.MessageResponse
		err  error
	}
	// Buffered so the goroutine never leaks when the deadline wins.
	ch := make(chan reply, 1)
	go func() {
		resp, err := client.CreateMessage(ctx, req)
		ch <- reply{resp: resp, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if ctx.Err() != nil {
				return Outcome{Disposition: DispositionTimeout, Err: r.err}
			}
			return Outcome{Disposition: DispositionTransport, Err: r.err}
		}
		return Outcome{
			Text:        r.resp.Text(),
			Usage:       r.resp.Usage,
			Disposition: DispositionSuccess,
		}
	case <-ctx.Done():
		zap.L().Warn("generation deadline exceeded",
			zap.Duration("timeout", timeout),
		)
		return Outcome{Disposition: DispositionTimeout, Err: ctx.Err()}
	}
}
