package smpp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucell-first/smppesme"
)

func TestSessionStartsClosed(t *testing.T) {
	s := smpp.NewSession()
	assert.Equal(t, smpp.Closed, s.State())
}

func TestSessionLifecycle(t *testing.T) {
	s := smpp.NewSession()

	s.Opened()
	assert.Equal(t, smpp.Open, s.State())

	s.Bound()
	assert.Equal(t, smpp.BoundTRX, s.State())

	s.Close()
	assert.Equal(t, smpp.Closed, s.State())
}

func TestSessionAdmitOnlyBindInOpen(t *testing.T) {
	s := smpp.NewSession()
	s.Opened()

	assert.NoError(t, s.Admit(smpp.BindTransceiver))

	err := s.Admit(smpp.SubmitSm)
	require.Error(t, err)
	var illegal *smpp.IllegalSessionState
	assert.ErrorAs(t, err, &illegal)
}

func TestSessionAdmitAnythingWhenBound(t *testing.T) {
	s := smpp.NewSession()
	s.Opened()
	s.Bound()

	assert.NoError(t, s.Admit(smpp.SubmitSm))
	assert.NoError(t, s.Admit(smpp.EnquireLink))
	assert.NoError(t, s.Admit(smpp.Unbind))
}

func TestSessionAdmitNothingWhenClosed(t *testing.T) {
	s := smpp.NewSession()

	err := s.Admit(smpp.BindTransceiver)
	require.Error(t, err)
	var illegal *smpp.IllegalSessionState
	assert.ErrorAs(t, err, &illegal)
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "OPEN", smpp.Open.String())
	assert.Equal(t, "BOUND_TRX", smpp.BoundTRX.String())
	assert.Equal(t, "CLOSED", smpp.Closed.String())
}
