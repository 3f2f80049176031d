package smpp

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"
)

// Client is the dispatch core: it hosts the four cooperating tasks
// described in spec.md section 4.8 (keep-alive, dequeue/send, receive,
// and the shared single-writer send path) over one TCP connection to an
// SMSC, bound as a transceiver.
//
// Client owns its subcomponents exclusively (capability traits per
// spec.md section 9); none of them retain a reference back to the Client.
type Client struct {
	cfg Config

	conn    *connection
	session *Session

	seqGen     SequenceGenerator
	correlator Correlator
	rateLimit  RateLimiter
	throttle   ThrottleController
	broker     Broker
	hooks      Hooks
	logger     Logger
	codec      Codec
	codecName  string
	errMode    ErrorMode

	sendCh chan []byte
	stopCh chan struct{}
	wg     sync.WaitGroup

	dequeuePaused atomic.Bool
	unboundCh     chan struct{}
	unboundOnce   sync.Once
}

// ClientOption customizes a Client at construction (spec.md section 9:
// concrete capability implementations are supplied by the caller).
type ClientOption func(*Client)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) ClientOption { return func(c *Client) { c.logger = l } }

// WithHooks overrides the default logging-only Hooks.
func WithHooks(h Hooks) ClientOption { return func(c *Client) { c.hooks = h } }

// WithSequenceGenerator overrides the default atomic sequence generator.
func WithSequenceGenerator(s SequenceGenerator) ClientOption { return func(c *Client) { c.seqGen = s } }

// WithCorrelator overrides the default in-memory correlator.
func WithCorrelator(cr Correlator) ClientOption { return func(c *Client) { c.correlator = cr } }

// WithRateLimiter overrides the default token-bucket rate limiter.
func WithRateLimiter(r RateLimiter) ClientOption { return func(c *Client) { c.rateLimit = r } }

// WithThrottleController overrides the default throttle controller.
func WithThrottleController(t ThrottleController) ClientOption {
	return func(c *Client) { c.throttle = t }
}

// NewClient constructs a Client for the given config and broker. cfg is
// validated; an invalid cfg returns an error before any I/O happens.
func NewClient(cfg Config, broker Broker, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, _ := CodecForName(cfg.Encoding)

	c := &Client{
		cfg:        cfg,
		conn:       newConnection(cfg.SmscHost, cfg.SmscPort, cfg.ConnectTimeout),
		session:    NewSession(),
		seqGen:     NewSequenceGenerator(),
		correlator: NewCorrelator(cfg.CorrelatorTTL),
		rateLimit:  NewRateLimiter(cfg.SendRate, cfg.MaxTokens, cfg.DelayForTokens),
		throttle:   NewThrottleController(cfg.SamplingPeriod, cfg.SampleSize, cfg.DenyRequestAt, cfg.ThrottleWait),
		broker:     broker,
		logger:     NewNopLogger(),
		codec:      codec,
		codecName:  cfg.Encoding,
		errMode:    cfg.defaultErrorMode(),
		sendCh:     make(chan []byte, 64),
		stopCh:     make(chan struct{}),
		unboundCh:  make(chan struct{}),
	}
	c.hooks = NewLoggingHooks(c.logger)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect opens the TCP connection and performs the bind_transceiver
// handshake synchronously. On success the session is BOUND_TRX and the
// caller should call Start to launch the four cooperating tasks.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.conn.connect(); err != nil {
		return err
	}
	c.session.Opened()

	return c.bindHandshake()
}

// bindHandshake sends bind_transceiver and waits for its response inline
// (no goroutines are running yet at this point).
func (c *Client) bindHandshake() error {
	seq := c.seqGen.Next()
	pdu := NewPDU(BindTransceiver, seq)
	BindTransceiverBody(pdu, c.cfg.SystemID, c.cfg.Password, c.cfg.SystemType,
		c.cfg.InterfaceVersion, c.cfg.AddrTON, c.cfg.AddrNPI, c.cfg.AddressRange)

	if err := c.session.Admit(BindTransceiver); err != nil {
		return err
	}

	safeHookCall(c.logger, "BeforeSend", func() {
		c.hooks.BeforeSend(BindTransceiver, "", "")
	})
	c.logger.Info("sending bind_transceiver", "redacted_body", redactPassword(BindTransceiver, pdu.Body))

	if err := c.conn.writeAll(pdu.Marshal()); err != nil {
		return err
	}

	resp, err := c.readFrame()
	if err != nil {
		return err
	}
	if resp.CommandID != BindTransceiverResp {
		return &MalformedPdu{Reason: "expected bind_transceiver_resp"}
	}
	if !resp.CommandStatus.OK() {
		safeHookCall(c.logger, "OnResponse", func() {
			c.hooks.OnResponse(BindTransceiverResp, "", "", resp.CommandStatus)
		})
		return &BindRejected{Status: resp.CommandStatus}
	}

	c.session.Bound()
	safeHookCall(c.logger, "OnResponse", func() {
		c.hooks.OnResponse(BindTransceiverResp, "", "", resp.CommandStatus)
	})
	return nil
}

// readFrame reads one PDU: a 4-byte command_length prefix, then
// command_length-4 further bytes, then parses the whole frame.
func (c *Client) readFrame() (*PDU, error) {
	lenBuf, err := c.conn.readExact(4)
	if err != nil {
		return nil, err
	}
	commandLength := binary.BigEndian.Uint32(lenBuf)
	if commandLength < headerLen {
		return nil, &MalformedPdu{Reason: "command_length smaller than header size"}
	}
	rest, err := c.conn.readExact(int(commandLength) - 4)
	if err != nil {
		return nil, err
	}
	full := make([]byte, 0, commandLength)
	full = append(full, lenBuf...)
	full = append(full, rest...)
	return UnmarshalPDU(full)
}

// Start launches the four cooperating tasks. Connect must have succeeded
// first. Start returns immediately; call Shutdown to stop the tasks.
func (c *Client) Start(ctx context.Context) {
	c.wg.Add(4)
	go c.writerLoop(ctx)
	go c.keepAliveLoop(ctx)
	go c.dequeueLoop(ctx)
	go c.receiveLoop(ctx)
}

// Wait blocks until all four tasks have exited (after Shutdown or once the
// context passed to Start is canceled). A MalformedPdu ends only the
// receive loop; the other three tasks keep running.
func (c *Client) Wait() { c.wg.Wait() }

// writerLoop is the single writer: every other task pushes pre-marshaled
// bytes onto sendCh instead of writing the socket directly, preserving the
// single-writer invariant without locks (spec.md section 9).
func (c *Client) writerLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case b := <-c.sendCh:
			if err := c.conn.writeAll(b); err != nil {
				c.logger.Error("write failed", "error", err.Error())
			}
		}
	}
}

// keepAliveLoop is T1: emits enquire_link at a fixed cadence while bound.
func (c *Client) keepAliveLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.EnquireLinkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			if c.session.State() != BoundTRX {
				continue
			}
			seq := c.seqGen.Next()
			pdu := NewPDU(EnquireLink, seq)
			c.dispatchSend(EnquireLink, seq, "", "", pdu)
		}
	}
}

// dequeueLoop is T2: pulls messages from the broker and sends submit_sm
// PDUs, gated by the throttle controller and rate limiter, with
// exponential backoff on broker errors.
func (c *Client) dequeueLoop(ctx context.Context) {
	defer c.wg.Done()
	bo := reconnectBackoff()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		if c.dequeuePaused.Load() {
			time.Sleep(50 * time.Millisecond)
			continue
		}

		if !c.throttle.AllowRequest() {
			sleepCtx(ctx, c.throttle.Delay())
			continue
		}

		if err := c.rateLimit.Acquire(ctx); err != nil {
			return // context canceled
		}

		msg, err := c.broker.Dequeue(ctx)
		if err != nil {
			wait := bo.NextBackOff()
			c.logger.Error("dequeue failed, backing off", "wait", wait.String(), "error", err.Error())
			sleepCtx(ctx, wait)
			continue
		}
		bo.Reset()

		if msg.Kind != KindSubmitSm {
			c.logger.Warn("dequeue loop only sends submit_sm directly; other kinds are for response PDUs built by the receive task")
			continue
		}

		c.sendSubmitSm(msg)
	}
}

// sendSubmitSm builds and dispatches one submit_sm PDU for msg.
func (c *Client) sendSubmitSm(msg Message) {
	codec := c.codec
	errMode := c.errMode
	if msg.Encoding != "" && msg.Encoding != c.codecName {
		if alt, ok := CodecForName(msg.Encoding); ok {
			codec = alt
		}
	}

	encoded, err := codec.Encode(msg.ShortMessage, errMode)
	if err != nil {
		c.logger.Error("codec error, dropping message", "log_id", msg.LogID, "error", err.Error())
		return
	}

	dataCoding, _ := DataCodingForName(msg.Encoding)
	if msg.Encoding == "" {
		dataCoding, _ = DataCodingForName(c.codecName)
	}

	seq := c.seqGen.Next()
	pdu := NewPDU(SubmitSm, seq)

	fields := SubmitSmFields{
		ServiceType:          msg.ServiceType,
		SourceAddrTON:        msg.SourceAddrTON,
		SourceAddrNPI:        msg.SourceAddrNPI,
		SourceAddr:           msg.SourceAddr,
		DestAddrTON:          msg.DestAddrTON,
		DestAddrNPI:          msg.DestAddrNPI,
		DestinationAddr:      msg.DestinationAddr,
		EsmClass:             msg.EsmClass,
		PriorityFlag:         msg.Priority,
		RegisteredDelivery:   msg.RegisteredDelivery,
		DataCoding:           dataCoding,
		ShortMessage:         encoded,
	}

	if len(encoded) > 254 {
		pdu.AddTLV(messagePayloadTag, encoded)
	}
	SubmitSmBody(pdu, fields)

	c.correlator.Put(seq, msg.LogID, msg.HookMetadata)
	c.dispatchSend(SubmitSm, seq, msg.LogID, msg.HookMetadata, pdu)
}

// dispatchSend runs the shared send path (admissibility check, BeforeSend
// hook, single-writer channel) for a ready-to-marshal PDU.
func (c *Client) dispatchSend(commandID CommandID, seq uint32, logID, hookMetadata string, pdu *PDU) {
	if err := c.session.Admit(commandID); err != nil {
		c.logger.Error("send rejected by session state", "command", commandID.String(), "error", err.Error())
		return
	}

	safeHookCall(c.logger, "BeforeSend", func() {
		c.hooks.BeforeSend(commandID, logID, hookMetadata)
	})

	b := pdu.Marshal()
	select {
	case c.sendCh <- b:
	case <-time.After(5 * time.Second):
		c.logger.Error("send channel full, dropping pdu", "command", commandID.String())
	}
}

// receiveLoop is T3: reads frames, correlates responses, and dispatches
// peer-initiated PDUs to their handlers. On transport error it applies the
// same backoff schedule as the dequeue loop; on a parse failure it logs
// and closes the session, ending the loop.
func (c *Client) receiveLoop(ctx context.Context) {
	defer c.wg.Done()
	bo := reconnectBackoff()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		pdu, err := c.readFrame()
		if err != nil {
			if _, ok := err.(*MalformedPdu); ok {
				c.logger.Error("malformed pdu, closing session", "error", err.Error())
				c.session.Close()
				return
			}
			wait := bo.NextBackOff()
			c.logger.Error("read failed, backing off", "wait", wait.String(), "error", err.Error())
			c.session.Close()
			sleepCtx(ctx, wait)
			continue
		}
		bo.Reset()

		c.handleInbound(pdu)
	}
}

// handleInbound routes one inbound PDU per the command handler contract in
// spec.md section 4.10, finishing with the OnResponse hook for every
// handled command; an unhandled command_id is logged and gets no hook call.
func (c *Client) handleInbound(pdu *PDU) {
	var logID, hookMetadata string

	switch pdu.CommandID {
	case BindTransceiverResp:
		logID, hookMetadata = c.correlator.Get(pdu.SequenceNumber)
		if pdu.CommandStatus.OK() {
			c.session.Bound()
		}

	case SubmitSmResp:
		logID, hookMetadata = c.correlator.Get(pdu.SequenceNumber)
		if logID == "" && hookMetadata == "" {
			c.logger.Warn("correlator miss", "error", (&CorrelatorMiss{SequenceNumber: pdu.SequenceNumber}).Error())
		}
		c.recordThrottle(pdu.CommandStatus)

	case DeliverSm:
		resp := NewPDU(DeliverSmResp, pdu.SequenceNumber)
		DeliverSmRespBody(resp, "")
		c.dispatchSend(DeliverSmResp, pdu.SequenceNumber, "", "", resp)

	case EnquireLink:
		resp := NewPDU(EnquireLinkResp, pdu.SequenceNumber)
		c.dispatchSend(EnquireLinkResp, pdu.SequenceNumber, "", "", resp)

	case EnquireLinkResp:
		c.recordThrottle(pdu.CommandStatus)

	case Unbind:
		resp := NewPDU(UnbindResp, pdu.SequenceNumber)
		c.dispatchSend(UnbindResp, pdu.SequenceNumber, "", "", resp)
		c.session.Close()
		c.signalUnbound()

	case UnbindResp:
		c.session.Close()
		c.signalUnbound()

	case GenericNack:
		logID, hookMetadata = c.correlator.Get(pdu.SequenceNumber)
		c.recordThrottle(pdu.CommandStatus)

	default:
		c.logger.Warn("unhandled inbound command", "command", pdu.CommandID.String())
		return
	}

	safeHookCall(c.logger, "OnResponse", func() {
		c.hooks.OnResponse(pdu.CommandID, logID, hookMetadata, pdu.CommandStatus)
	})
}

// recordThrottle feeds the throttle controller from any response carrying
// a command_status (submit_sm_resp, enquire_link_resp, generic_nack).
func (c *Client) recordThrottle(status CommandStatus) {
	if status == ESME_RTHROTTLED {
		c.throttle.RecordThrottled()
	} else {
		c.throttle.RecordOK()
	}
}

func (c *Client) signalUnbound() {
	c.unboundOnce.Do(func() { close(c.unboundCh) })
}

// Shutdown performs the graceful cancellation sequence from spec.md
// section 5: stop accepting new dequeues, send unbind, await unbind_resp
// up to a bounded timeout, close the socket, then stop the remaining
// tasks (in-flight correlator entries are left to expire via TTL).
func (c *Client) Shutdown(ctx context.Context, unbindTimeout time.Duration) error {
	c.dequeuePaused.Store(true)

	if c.session.State() == BoundTRX {
		seq := c.seqGen.Next()
		pdu := NewPDU(Unbind, seq)
		c.dispatchSend(Unbind, seq, "", "", pdu)

		select {
		case <-c.unboundCh:
		case <-time.After(unbindTimeout):
			c.logger.Warn("timed out waiting for unbind_resp")
		case <-ctx.Done():
		}
	}

	err := c.conn.close()
	close(c.stopCh)
	c.wg.Wait()
	return err
}

// sleepCtx sleeps for d or returns early if ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// redactPassword returns a copy of a bind_transceiver body with the
// password field's bytes replaced by '*', for logging only — the real
// bytes already went to the wire unmodified (spec.md section 4.8).
func redactPassword(commandID CommandID, body []byte) string {
	if commandID != BindTransceiver {
		return string(body)
	}
	out := make([]byte, len(body))
	copy(out, body)

	// system_id is the first C-octet string; password is the second.
	firstNUL := indexNUL(out)
	if firstNUL < 0 {
		return string(out)
	}
	start := firstNUL + 1
	secondNUL := indexNUL(out[start:])
	if secondNUL < 0 {
		return string(out)
	}
	for i := start; i < start+secondNUL; i++ {
		out[i] = '*'
	}
	return string(out)
}
