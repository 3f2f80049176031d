// Package smpp implements the core of an asynchronous SMPP v3.4 ESME that
// binds to an SMSC as a transceiver, submits short messages, receives
// delivery notifications, and keeps the session alive with enquire_link
// probes.
//
// The wire codec, sequence generator, correlator, rate limiter and
// throttle controller are exposed as small interfaces (Codec,
// SequenceGenerator, Correlator, RateLimiter, ThrottleController) so an
// application can supply its own implementation; the PDU framer (PDU,
// Builder) and the session state machine (Session) are concrete types.
// Client wires together the default implementations; the sequence
// generator, correlator, rate limiter and throttle controller can be
// overridden with a ClientOption, and codecs through RegisterCodec.
package smpp
