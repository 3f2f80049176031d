package smpp

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// reconnectBackoff builds the exponential retry clock the dequeue and
// receive loops drive on broker/transport errors (spec.md section 7):
// 1 minute, doubling up to a 16 minute ceiling, then flat at 16 minutes,
// never giving up on its own (MaxElapsedTime = 0; the caller decides when
// to stop retrying). Ported from naz.client._retry_after's fixed minute
// schedule, using cenkalti/backoff's ExponentialBackOff as the live clock
// instead of a hand-rolled retry-count-to-duration table.
func reconnectBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Minute
	b.Multiplier = 2
	b.MaxInterval = 16 * time.Minute
	b.MaxElapsedTime = 0 // never stop retrying; the caller decides when to give up
	b.RandomizationFactor = 0
	return b
}
