package smpp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucell-first/smppesme"
)

func TestCorrelatorPutGetRoundTrip(t *testing.T) {
	c := smpp.NewCorrelator(time.Minute)
	c.Put(42, "log-id-42", "meta-42")

	logID, meta := c.Get(42)
	assert.Equal(t, "log-id-42", logID)
	assert.Equal(t, "meta-42", meta)
}

func TestCorrelatorGetMissReturnsEmpty(t *testing.T) {
	c := smpp.NewCorrelator(time.Minute)
	logID, meta := c.Get(999)
	assert.Equal(t, "", logID)
	assert.Equal(t, "", meta)
}

func TestCorrelatorGetDoesNotDelete(t *testing.T) {
	c := smpp.NewCorrelator(time.Minute)
	c.Put(1, "a", "b")

	first, _ := c.Get(1)
	second, _ := c.Get(1)
	require.Equal(t, "a", first)
	assert.Equal(t, "a", second, "a duplicate response for the same sequence_number must still resolve")
}

func TestCorrelatorSweepsExpiredEntries(t *testing.T) {
	c := smpp.NewCorrelator(10 * time.Millisecond)
	c.Put(7, "stale", "stale")
	require.Equal(t, 1, c.Len())

	time.Sleep(30 * time.Millisecond)
	c.Put(8, "fresh", "fresh") // Put triggers a gc sweep

	assert.Equal(t, 1, c.Len())
	logID, _ := c.Get(7)
	assert.Equal(t, "", logID, "entry older than maxTTL should have been swept")
}

func TestCorrelatorDefaultTTL(t *testing.T) {
	c := smpp.NewCorrelator(0)
	c.Put(1, "x", "y")
	logID, _ := c.Get(1)
	assert.Equal(t, "x", logID)
}
