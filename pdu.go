package smpp

import (
	"encoding/binary"
)

// headerLen is the size in bytes of the fixed SMPP PDU header: four
// big-endian uint32 fields (command_length, command_id, command_status,
// sequence_number).
const headerLen = 16

// TLV is an optional tag-length-value parameter that may follow a PDU's
// mandatory body (SMPP v3.4 section 5.3.2).
type TLV struct {
	Tag   uint16
	Value []byte
}

func (t TLV) encodedLen() int { return 4 + len(t.Value) }

// PDU is a framed SMPP protocol data unit: a 16-byte header followed by a
// command-specific body and an optional TLV list.
type PDU struct {
	CommandID      CommandID
	CommandStatus  CommandStatus
	SequenceNumber uint32
	Body           []byte
	TLVs           []TLV
}

// NewPDU builds a request PDU with command_status 0 (ESME_ROK) and an empty
// body, ready for a Builder to append mandatory fields.
func NewPDU(commandID CommandID, sequenceNumber uint32) *PDU {
	return &PDU{
		CommandID:      commandID,
		CommandStatus:  ESME_ROK,
		SequenceNumber: sequenceNumber,
		Body:           make([]byte, 0),
	}
}

// AddTLV appends an optional parameter to the PDU.
func (p *PDU) AddTLV(tag uint16, value []byte) {
	p.TLVs = append(p.TLVs, TLV{Tag: tag, Value: value})
}

// tlvsLen returns the total encoded size of the TLV list.
func (p *PDU) tlvsLen() int {
	n := 0
	for _, t := range p.TLVs {
		n += t.encodedLen()
	}
	return n
}

// Marshal serializes the PDU to wire bytes: command_length is computed as
// 16 + len(body) + len(tlvs).
func (p *PDU) Marshal() []byte {
	commandLength := headerLen + len(p.Body) + p.tlvsLen()
	out := make([]byte, commandLength)

	binary.BigEndian.PutUint32(out[0:4], uint32(commandLength))
	binary.BigEndian.PutUint32(out[4:8], uint32(p.CommandID))
	binary.BigEndian.PutUint32(out[8:12], uint32(p.CommandStatus))
	binary.BigEndian.PutUint32(out[12:16], p.SequenceNumber)

	offset := headerLen
	offset += copy(out[offset:], p.Body)
	for _, t := range p.TLVs {
		binary.BigEndian.PutUint16(out[offset:offset+2], t.Tag)
		binary.BigEndian.PutUint16(out[offset+2:offset+4], uint16(len(t.Value)))
		offset += 4
		offset += copy(out[offset:], t.Value)
	}

	return out
}

// UnmarshalPDU parses a single framed PDU out of buf, which MUST contain
// exactly command_length bytes (the caller reads the 4-byte length prefix,
// then reads command_length-4 further bytes, and hands the full frame here).
func UnmarshalPDU(buf []byte) (*PDU, error) {
	if len(buf) < headerLen {
		return nil, &MalformedPdu{Reason: "frame shorter than header"}
	}

	commandLength := binary.BigEndian.Uint32(buf[0:4])
	if int(commandLength) != len(buf) {
		return nil, &MalformedPdu{Reason: "command_length does not match bytes read"}
	}
	if commandLength < headerLen {
		return nil, &MalformedPdu{Reason: "command_length smaller than header size"}
	}

	commandID := CommandID(binary.BigEndian.Uint32(buf[4:8]))
	commandStatus := CommandStatus(binary.BigEndian.Uint32(buf[8:12]))
	sequenceNumber := binary.BigEndian.Uint32(buf[12:16])

	bodyLen, ok := bodyLength(commandID, buf[headerLen:])
	if !ok {
		return nil, &MalformedPdu{Reason: "unknown command_id or truncated body"}
	}

	body := buf[headerLen : headerLen+bodyLen]
	rest := buf[headerLen+bodyLen:]

	tlvs, err := parseTLVs(rest)
	if err != nil {
		return nil, err
	}

	return &PDU{
		CommandID:      commandID,
		CommandStatus:  commandStatus,
		SequenceNumber: sequenceNumber,
		Body:           body,
		TLVs:           tlvs,
	}, nil
}

// bodyLength determines how many of the remaining bytes belong to the
// mandatory body (as opposed to trailing TLVs), based on command_id.
// Fixed-empty-body commands consume 0 bytes; C-octet-string-terminated
// bodies (bind_transceiver_resp, submit_sm_resp, deliver_sm_resp) consume up
// to and including their single NUL terminator; submit_sm's body has a
// length-prefixed short_message field that must be parsed structurally.
func bodyLength(id CommandID, rest []byte) (int, bool) {
	switch id {
	case EnquireLink, EnquireLinkResp, Unbind, UnbindResp, GenericNack:
		return 0, true
	case BindTransceiverResp, SubmitSmResp, DeliverSmResp:
		idx := indexNUL(rest)
		if idx < 0 {
			return 0, false
		}
		return idx + 1, true
	case SubmitSm, DeliverSm:
		return submitSmBodyLength(rest)
	case BindTransceiver:
		return bindTransceiverBodyLength(rest)
	default:
		return 0, false
	}
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// bindTransceiverBodyLength walks system_id, password, system_type
// (C-octet strings), interface_version/addr_ton/addr_npi (1 byte each), then
// address_range (C-octet string).
func bindTransceiverBodyLength(rest []byte) (int, bool) {
	offset := 0
	for i := 0; i < 3; i++ {
		idx := indexNUL(rest[offset:])
		if idx < 0 {
			return 0, false
		}
		offset += idx + 1
	}
	if offset+3 > len(rest) {
		return 0, false
	}
	offset += 3
	idx := indexNUL(rest[offset:])
	if idx < 0 {
		return 0, false
	}
	offset += idx + 1
	return offset, true
}

// submitSmBodyLength walks the submit_sm/deliver_sm mandatory body up to and
// including the variable-length short_message field.
func submitSmBodyLength(rest []byte) (int, bool) {
	offset := 0

	// service_type (C-octet string)
	idx := indexNUL(rest[offset:])
	if idx < 0 {
		return 0, false
	}
	offset += idx + 1

	// source_addr_ton, source_addr_npi
	if offset+2 > len(rest) {
		return 0, false
	}
	offset += 2

	// source_addr (C-octet string)
	idx = indexNUL(rest[offset:])
	if idx < 0 {
		return 0, false
	}
	offset += idx + 1

	// dest_addr_ton, dest_addr_npi
	if offset+2 > len(rest) {
		return 0, false
	}
	offset += 2

	// destination_addr (C-octet string)
	idx = indexNUL(rest[offset:])
	if idx < 0 {
		return 0, false
	}
	offset += idx + 1

	// esm_class, protocol_id, priority_flag
	if offset+3 > len(rest) {
		return 0, false
	}
	offset += 3

	// schedule_delivery_time (C-octet string)
	idx = indexNUL(rest[offset:])
	if idx < 0 {
		return 0, false
	}
	offset += idx + 1

	// validity_period (C-octet string)
	idx = indexNUL(rest[offset:])
	if idx < 0 {
		return 0, false
	}
	offset += idx + 1

	// registered_delivery, replace_if_present_flag, data_coding, sm_default_msg_id, sm_length
	if offset+5 > len(rest) {
		return 0, false
	}
	smLength := int(rest[offset+4])
	offset += 5

	if offset+smLength > len(rest) {
		return 0, false
	}
	offset += smLength

	return offset, true
}

func parseTLVs(rest []byte) ([]TLV, error) {
	var tlvs []TLV
	offset := 0
	for offset < len(rest) {
		if offset+4 > len(rest) {
			return nil, &MalformedPdu{Reason: "truncated tlv header"}
		}
		tag := binary.BigEndian.Uint16(rest[offset : offset+2])
		length := int(binary.BigEndian.Uint16(rest[offset+2 : offset+4]))
		offset += 4
		if offset+length > len(rest) {
			return nil, &MalformedPdu{Reason: "truncated tlv value"}
		}
		value := make([]byte, length)
		copy(value, rest[offset:offset+length])
		tlvs = append(tlvs, TLV{Tag: tag, Value: value})
		offset += length
	}
	return tlvs, nil
}
