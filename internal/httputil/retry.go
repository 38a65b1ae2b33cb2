// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP retry helpers shared across components.
package httputil

import (
	"context"
	"errors"
	"net"
	"time"
)

// FailureClass buckets the outcome of one request attempt. Retry delays
// are chosen per class, matching the upstream service's failure modes.
type FailureClass int

const (
	// FailNone means the attempt succeeded.
	FailNone FailureClass = iota
	// FailServer means the service answered HTTP 500.
	FailServer
	// FailTerminal means the response is not worth retrying.
	FailTerminal
	// FailPayload means a well-formed response reported a failure in its body.
	FailPayload
	// FailShortContent means the response carried no usable content.
	FailShortContent
	// FailTimeout means the request deadline was exceeded.
	FailTimeout
	// FailNetwork means a connection-level error.
	FailNetwork
	// FailOther covers unexpected failures that still deserve another attempt.
	FailOther
)

// RetryPolicy bounds repeated attempts against a flaky endpoint.
//
// Every failure class except FailTerminal is retried after its configured
// delay until MaxAttempts is exhausted. Classes missing from Delays are
// retried without waiting. Tests pass millisecond delays to avoid real
// sleeps.
type RetryPolicy struct {
	MaxAttempts int
	Delays      map[FailureClass]time.Duration
}

// Do runs attempt up to p.MaxAttempts times and returns the final
// classification. FailNone and FailTerminal stop the loop immediately.
// Between attempts Do sleeps the class delay for the failure just seen.
// If the context is cancelled during a wait, the last classification is
// returned without further attempts.
func (p RetryPolicy) Do(ctx context.Context, attempt func() FailureClass) FailureClass {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	last := FailOther
	for i := 0; i < attempts; i++ {
		last = attempt()
		if last == FailNone || last == FailTerminal {
			return last
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(p.Delays[last])
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return last
		}
	}
	return last
}

// ClassifyError maps a transport error from http.Client.Do to a failure
// class: deadline overruns become FailTimeout, everything else FailNetwork.
func ClassifyError(err error) FailureClass {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailTimeout
	}
	return FailNetwork
}
