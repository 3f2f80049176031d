package smpp

import "fmt"

// CommandID is a known SMPP command_id value, drawn from the closed set
// this core implements (see section 6.1 of the design doc).
type CommandID uint32

// Supported SMPP v3.4 command ids. Response ids have the high bit set (the
// request id OR'd with 0x8000_0000).
const (
	BindTransceiver     CommandID = 0x00000009
	BindTransceiverResp CommandID = 0x80000009
	Unbind              CommandID = 0x00000006
	UnbindResp          CommandID = 0x80000006
	SubmitSm            CommandID = 0x00000004
	SubmitSmResp        CommandID = 0x80000004
	DeliverSm           CommandID = 0x00000005
	DeliverSmResp       CommandID = 0x80000005
	EnquireLink         CommandID = 0x00000015
	EnquireLinkResp     CommandID = 0x80000015
	GenericNack         CommandID = 0x80000000
)

var commandNames = map[CommandID]string{
	BindTransceiver:     "bind_transceiver",
	BindTransceiverResp: "bind_transceiver_resp",
	Unbind:              "unbind",
	UnbindResp:          "unbind_resp",
	SubmitSm:            "submit_sm",
	SubmitSmResp:        "submit_sm_resp",
	DeliverSm:           "deliver_sm",
	DeliverSmResp:       "deliver_sm_resp",
	EnquireLink:         "enquire_link",
	EnquireLinkResp:     "enquire_link_resp",
	GenericNack:         "generic_nack",
}

func (c CommandID) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command_id(0x%08x)", uint32(c))
}

// IsResponse reports whether the command id is a response (high bit set).
func (c CommandID) IsResponse() bool {
	return c&0x80000000 != 0
}

// CommandStatus is an SMPP command_status error code. Zero means success
// (ESME_ROK).
type CommandStatus uint32

// Subset of the SMPP v3.4 status taxonomy this core names explicitly; any
// other value round-trips fine but has no symbolic name.
const (
	ESME_ROK         CommandStatus = 0x00000000
	ESME_RSYSERR     CommandStatus = 0x00000008
	ESME_RINVPASWD   CommandStatus = 0x0000000E
	ESME_RMSGQFUL    CommandStatus = 0x00000014
	ESME_RTHROTTLED  CommandStatus = 0x00000058
	ESME_RUNKNOWNERR CommandStatus = 0x000000FF
)

var statusNames = map[CommandStatus]string{
	ESME_ROK:         "ESME_ROK",
	ESME_RSYSERR:     "ESME_RSYSERR",
	ESME_RINVPASWD:   "ESME_RINVPASWD",
	ESME_RMSGQFUL:    "ESME_RMSGQFUL",
	ESME_RTHROTTLED:  "ESME_RTHROTTLED",
	ESME_RUNKNOWNERR: "ESME_RUNKNOWNERR",
}

func (s CommandStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("command_status(0x%08x)", uint32(s))
}

// OK reports whether the status is ESME_ROK.
func (s CommandStatus) OK() bool { return s == ESME_ROK }
