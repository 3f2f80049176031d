package smpp

import "context"

// Broker is the external queue the dequeue loop pulls outbound messages
// from. It is specified only by this interface; concrete implementations
// (in-memory, Redis, RabbitMQ, ...) are an application's responsibility,
// not this core's (spec.md section 6.3).
type Broker interface {
	Enqueue(ctx context.Context, msg Message) error
	Dequeue(ctx context.Context) (Message, error)
}

// MessageKind discriminates the tagged-union Message variants spec.md
// section 3 describes. The dequeue loop sends only KindSubmitSm messages;
// a dequeued message of any other kind is logged and dropped, since the
// receive loop builds enquire_link_resp, deliver_sm_resp and unbind_resp
// PDUs itself.
type MessageKind int

const (
	// KindSubmitSm describes a submit_sm PDU.
	KindSubmitSm MessageKind = iota
	// KindEnquireLinkResp describes an enquire_link_resp PDU.
	KindEnquireLinkResp
	// KindDeliverSmResp describes a deliver_sm_resp PDU.
	KindDeliverSmResp
	// KindUnbindResp describes an unbind_resp PDU.
	KindUnbindResp
)

// Message is the application-level description of one outgoing PDU.
// LogID and HookMetadata are shared across all variants; the remaining
// fields are populated according to Kind.
type Message struct {
	Kind         MessageKind
	LogID        string
	HookMetadata string

	// SequenceNumber is the peer's sequence_number that a response variant
	// (EnquireLinkResp, DeliverSmResp, UnbindResp) echoes. The runtime does
	// not read or set it: its own response PDUs take the sequence_number
	// straight from the inbound PDU.
	SequenceNumber uint32

	// SubmitSm fields (Kind == KindSubmitSm).
	ShortMessage          string
	SourceAddr            string
	DestinationAddr       string
	Encoding              string
	ServiceType           string
	SourceAddrTON         byte
	SourceAddrNPI         byte
	DestAddrTON           byte
	DestAddrNPI           byte
	EsmClass              byte
	Priority              byte
	RegisteredDelivery    byte

	// DeliverSmResp fields.
	MessageID string
}
