package smpp

// Builder appends mandatory-parameter bytes to a PDU body in the exact
// field order the SMPP v3.4 spec requires for each command. It is a thin
// wrapper that keeps body construction error-free from the caller's
// perspective (builder methods never fail; codec errors happen upstream,
// when the caller converts application text to encoded bytes).
type Builder struct {
	pdu *PDU
}

// NewBuilder wraps pdu for appends.
func NewBuilder(pdu *PDU) *Builder {
	return &Builder{pdu: pdu}
}

// PutCString appends a NUL-terminated ASCII string (a "C-octet string").
func (b *Builder) PutCString(s string) *Builder {
	b.pdu.Body = append(b.pdu.Body, []byte(s)...)
	b.pdu.Body = append(b.pdu.Body, 0)
	return b
}

// PutUint8 appends a single byte.
func (b *Builder) PutUint8(v byte) *Builder {
	b.pdu.Body = append(b.pdu.Body, v)
	return b
}

// PutBytes appends raw bytes with no length prefix or terminator (used for
// short_message, which has already had its length written via PutUint8).
func (b *Builder) PutBytes(p []byte) *Builder {
	b.pdu.Body = append(b.pdu.Body, p...)
	return b
}

// BindTransceiverBody builds the bind_transceiver mandatory body.
func BindTransceiverBody(pdu *PDU, systemID, password, systemType string, interfaceVersion, addrTON, addrNPI byte, addressRange string) {
	NewBuilder(pdu).
		PutCString(systemID).
		PutCString(password).
		PutCString(systemType).
		PutUint8(interfaceVersion).
		PutUint8(addrTON).
		PutUint8(addrNPI).
		PutCString(addressRange)
}

// BindTransceiverRespBody builds the bind_transceiver_resp body.
func BindTransceiverRespBody(pdu *PDU, systemID string) {
	NewBuilder(pdu).PutCString(systemID)
}

// SubmitSmFields carries every mandatory field of a submit_sm/deliver_sm
// body in wire field order. ShortMessage is the already-encoded payload
// (post-codec); for payloads over 254 bytes SubmitSmBody writes sm_length 0
// and no short_message bytes, so the caller attaches the payload as a
// message_payload TLV (tag 0x0424) instead.
type SubmitSmFields struct {
	ServiceType           string
	SourceAddrTON         byte
	SourceAddrNPI         byte
	SourceAddr            string
	DestAddrTON           byte
	DestAddrNPI           byte
	DestinationAddr       string
	EsmClass              byte
	ProtocolID            byte
	PriorityFlag          byte
	ScheduleDeliveryTime  string
	ValidityPeriod        string
	RegisteredDelivery    byte
	ReplaceIfPresentFlag  byte
	DataCoding            byte
	SmDefaultMsgID        byte
	ShortMessage          []byte
}

// SubmitSmBody builds the submit_sm/deliver_sm mandatory body. When
// len(ShortMessage) > 254, sm_length is written as 0 and the caller is
// expected to have already attached a message_payload TLV to pdu.
func SubmitSmBody(pdu *PDU, f SubmitSmFields) {
	bld := NewBuilder(pdu).
		PutCString(f.ServiceType).
		PutUint8(f.SourceAddrTON).
		PutUint8(f.SourceAddrNPI).
		PutCString(f.SourceAddr).
		PutUint8(f.DestAddrTON).
		PutUint8(f.DestAddrNPI).
		PutCString(f.DestinationAddr).
		PutUint8(f.EsmClass).
		PutUint8(f.ProtocolID).
		PutUint8(f.PriorityFlag).
		PutCString(f.ScheduleDeliveryTime).
		PutCString(f.ValidityPeriod).
		PutUint8(f.RegisteredDelivery).
		PutUint8(f.ReplaceIfPresentFlag).
		PutUint8(f.DataCoding).
		PutUint8(f.SmDefaultMsgID)

	if len(f.ShortMessage) > 254 {
		bld.PutUint8(0)
		return
	}
	bld.PutUint8(byte(len(f.ShortMessage))).PutBytes(f.ShortMessage)
}

// SubmitSmRespBody builds the submit_sm_resp body.
func SubmitSmRespBody(pdu *PDU, messageID string) {
	NewBuilder(pdu).PutCString(messageID)
}

// DeliverSmRespBody builds the deliver_sm_resp body; message_id is typically empty.
func DeliverSmRespBody(pdu *PDU, messageID string) {
	NewBuilder(pdu).PutCString(messageID)
}

// messagePayloadTag is the SMPP v3.4 optional-parameter tag used to carry a
// short_message payload larger than 254 octets.
const messagePayloadTag uint16 = 0x0424

// ParseCString extracts a NUL-terminated string starting at offset and
// returns the value plus the offset just past the terminator. It fails if
// no terminator is found before the end of body.
func ParseCString(body []byte, offset int) (string, int, error) {
	idx := indexNUL(body[offset:])
	if idx < 0 {
		return "", 0, &MalformedPdu{Reason: "missing NUL terminator in C-octet string"}
	}
	return string(body[offset : offset+idx]), offset + idx + 1, nil
}
