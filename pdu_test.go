package smpp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucell-first/smppesme"
)

func TestSubmitSmEncodeBody(t *testing.T) {
	codec, ok := smpp.CodecForName("gsm0338")
	require.True(t, ok)
	dataCoding, ok := smpp.DataCodingForName("gsm0338")
	require.True(t, ok)

	encoded, err := codec.Encode("Hello", smpp.ErrorStrict)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F}, encoded)

	pdu := smpp.NewPDU(smpp.SubmitSm, 1)
	smpp.SubmitSmBody(pdu, smpp.SubmitSmFields{
		SourceAddr:      "2547000000",
		DestinationAddr: "254711999999",
		DataCoding:      dataCoding,
		ShortMessage:    encoded,
	})

	assert.Equal(t, byte(0x00), dataCoding)
	assert.Equal(t, byte(5), pdu.Body[len(pdu.Body)-6]) // sm_length byte precedes short_message
	assert.Equal(t, encoded, pdu.Body[len(pdu.Body)-5:])
}

func TestFramingRoundTripSupportedCommands(t *testing.T) {
	cases := []*smpp.PDU{
		func() *smpp.PDU {
			p := smpp.NewPDU(smpp.BindTransceiver, 7)
			smpp.BindTransceiverBody(p, "user", "pass", "", 0x34, 0, 0, "")
			return p
		}(),
		func() *smpp.PDU {
			p := smpp.NewPDU(smpp.BindTransceiverResp, 7)
			smpp.BindTransceiverRespBody(p, "SMPPSim")
			return p
		}(),
		func() *smpp.PDU {
			p := smpp.NewPDU(smpp.SubmitSm, 9)
			smpp.SubmitSmBody(p, smpp.SubmitSmFields{
				SourceAddr:      "2547000000",
				DestinationAddr: "254711999999",
				ShortMessage:    []byte("Hello"),
			})
			return p
		}(),
		func() *smpp.PDU {
			p := smpp.NewPDU(smpp.SubmitSmResp, 9)
			smpp.SubmitSmRespBody(p, "12345")
			return p
		}(),
		func() *smpp.PDU {
			p := smpp.NewPDU(smpp.DeliverSmResp, 3)
			smpp.DeliverSmRespBody(p, "")
			return p
		}(),
		smpp.NewPDU(smpp.EnquireLink, 1),
		smpp.NewPDU(smpp.EnquireLinkResp, 1),
		smpp.NewPDU(smpp.Unbind, 2),
		smpp.NewPDU(smpp.UnbindResp, 2),
		smpp.NewPDU(smpp.GenericNack, 4),
	}

	for _, want := range cases {
		wire := want.Marshal()
		got, err := smpp.UnmarshalPDU(wire)
		require.NoError(t, err, want.CommandID.String())

		assert.Equal(t, want.CommandID, got.CommandID)
		assert.Equal(t, want.CommandStatus, got.CommandStatus)
		assert.Equal(t, want.SequenceNumber, got.SequenceNumber)
		assert.Equal(t, want.Body, got.Body)
	}
}

func TestSubmitSmWithTLV(t *testing.T) {
	p := smpp.NewPDU(smpp.SubmitSm, 1)
	longMsg := make([]byte, 300)
	for i := range longMsg {
		longMsg[i] = 'a'
	}
	p.AddTLV(0x0424, longMsg)
	smpp.SubmitSmBody(p, smpp.SubmitSmFields{
		SourceAddr:      "2547000000",
		DestinationAddr: "254711999999",
		ShortMessage:    longMsg,
	})

	wire := p.Marshal()
	got, err := smpp.UnmarshalPDU(wire)
	require.NoError(t, err)
	require.Len(t, got.TLVs, 1)
	assert.Equal(t, uint16(0x0424), got.TLVs[0].Tag)
	assert.Equal(t, longMsg, got.TLVs[0].Value)
	assert.Equal(t, byte(0), got.Body[len(got.Body)-1]) // sm_length == 0
}

func TestParseSubmitSmResp(t *testing.T) {
	wire := []byte{
		0x00, 0x00, 0x00, 0x12, // command_length = 18
		0x80, 0x00, 0x00, 0x04, // submit_sm_resp
		0x00, 0x00, 0x00, 0x00, // ESME_ROK
		0x00, 0x00, 0x00, 0x03, // sequence_number = 3
		'0', 0x00, // message_id "0"
	}
	pdu, err := smpp.UnmarshalPDU(wire)
	require.NoError(t, err)
	assert.Equal(t, smpp.SubmitSmResp, pdu.CommandID)
	assert.Equal(t, smpp.ESME_ROK, pdu.CommandStatus)
	assert.Equal(t, uint32(3), pdu.SequenceNumber)
	assert.Equal(t, []byte{'0', 0x00}, pdu.Body)
}

func TestUnmarshalRejectsLengthMismatch(t *testing.T) {
	wire := []byte{0x00, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00, 0x15, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	_, err := smpp.UnmarshalPDU(wire)
	require.Error(t, err)
	var malformed *smpp.MalformedPdu
	assert.ErrorAs(t, err, &malformed)
}

func TestUnmarshalRejectsUnknownCommand(t *testing.T) {
	wire := make([]byte, 16)
	wire[3] = 16
	wire[4], wire[5], wire[6], wire[7] = 0x00, 0x00, 0x00, 0x77 // unknown command_id
	_, err := smpp.UnmarshalPDU(wire)
	require.Error(t, err)
}
