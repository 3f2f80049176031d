package smpp

import (
	"sync"
	"time"
)

// ThrottleController decides whether the dequeue loop may dispatch the next
// PDU, based on the recent ratio of ESME_RTHROTTLED responses.
type ThrottleController interface {
	RecordThrottled()
	RecordOK()
	AllowRequest() bool
	Delay() time.Duration
}

// SimpleThrottleController is the default ThrottleController, grounded on
// naz's throttle.SimpleThrottleHandler: a rolling window of
// SamplingPeriod seconds, denying requests once the throttled percentage
// exceeds DenyRequestAt and at least SampleSize responses have been seen.
type SimpleThrottleController struct {
	SamplingPeriod time.Duration
	SampleSize     int
	DenyRequestAt  float64
	ThrottleWait   time.Duration

	mu             sync.Mutex
	throttledCount int
	nonThrottled   int
	windowStart    time.Time
}

// NewThrottleController constructs a SimpleThrottleController.
func NewThrottleController(samplingPeriod time.Duration, sampleSize int, denyRequestAt float64, throttleWait time.Duration) *SimpleThrottleController {
	return &SimpleThrottleController{
		SamplingPeriod: samplingPeriod,
		SampleSize:     sampleSize,
		DenyRequestAt:  denyRequestAt,
		ThrottleWait:   throttleWait,
		windowStart:    time.Now(),
	}
}

// RecordThrottled increments the throttled-response counter.
func (t *SimpleThrottleController) RecordThrottled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.throttledCount++
}

// RecordOK increments the non-throttled-response counter.
func (t *SimpleThrottleController) RecordOK() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nonThrottled++
}

// AllowRequest computes percent = 100*throttled/(throttled+nonThrottled). If
// the sample is too small it allows the request. The percentage is computed
// first; if the sampling window has then elapsed, both counters reset, and
// the comparison is still made on the percentage of the expired window, so
// the reset only takes effect from the next call on.
func (t *SimpleThrottleController) AllowRequest() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.throttledCount + t.nonThrottled
	if total < t.SampleSize {
		return true
	}

	percent := 100 * float64(t.throttledCount) / float64(total)

	if time.Since(t.windowStart) > t.SamplingPeriod {
		t.throttledCount = 0
		t.nonThrottled = 0
		t.windowStart = time.Now()
	}

	return percent <= t.DenyRequestAt
}

// Delay reports how long the dequeue loop should pause after AllowRequest
// returns false.
func (t *SimpleThrottleController) Delay() time.Duration {
	return t.ThrottleWait
}
