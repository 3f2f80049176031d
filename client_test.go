package smpp_test

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucell-first/smppesme"
)

// fakeBroker is a minimal in-memory Broker that yields one submit_sm message
// then blocks until ctx is canceled, which is all the dispatch core needs
// from it for these tests.
type fakeBroker struct {
	messages chan smpp.Message
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{messages: make(chan smpp.Message, 8)}
}

func (b *fakeBroker) Enqueue(ctx context.Context, msg smpp.Message) error {
	select {
	case b.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *fakeBroker) Dequeue(ctx context.Context) (smpp.Message, error) {
	select {
	case msg := <-b.messages:
		return msg, nil
	case <-ctx.Done():
		return smpp.Message{}, ctx.Err()
	}
}

// readFrame reads one length-prefixed PDU frame off conn, for the fake SMSC
// side of these tests.
func readFrame(t *testing.T, conn net.Conn) *smpp.PDU {
	t.Helper()
	lenBuf := make([]byte, 4)
	_, err := io.ReadFull(conn, lenBuf)
	require.NoError(t, err)
	commandLength := binary.BigEndian.Uint32(lenBuf)

	rest := make([]byte, commandLength-4)
	_, err = io.ReadFull(conn, rest)
	require.NoError(t, err)

	full := append(lenBuf, rest...)
	pdu, err := smpp.UnmarshalPDU(full)
	require.NoError(t, err)
	return pdu
}

// startFakeSmsc listens on an ephemeral local port and hands the first
// accepted connection to handle, which runs in its own goroutine.
func startFakeSmsc(t *testing.T, handle func(conn net.Conn)) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handle(conn)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func baseConfig(host string, port int) smpp.Config {
	return smpp.Config{
		SmscHost:            host,
		SmscPort:            port,
		SystemID:            "esmeuser",
		Password:            "secret",
		Encoding:            "gsm0338",
		EnquireLinkInterval: time.Hour, // quiet for these tests
		ConnectTimeout:      2 * time.Second,
	}
}

func TestClientConnectBindSuccess(t *testing.T) {
	host, port := startFakeSmsc(t, func(conn net.Conn) {
		defer conn.Close()
		bind := readFrame(t, conn)
		assert.Equal(t, smpp.BindTransceiver, bind.CommandID)

		resp := smpp.NewPDU(smpp.BindTransceiverResp, bind.SequenceNumber)
		smpp.BindTransceiverRespBody(resp, "fake-smsc")
		conn.Write(resp.Marshal())
	})

	cfg := baseConfig(host, port)
	client, err := smpp.NewClient(cfg, newFakeBroker())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
}

func TestClientConnectBindRejected(t *testing.T) {
	host, port := startFakeSmsc(t, func(conn net.Conn) {
		defer conn.Close()
		bind := readFrame(t, conn)

		resp := smpp.NewPDU(smpp.BindTransceiverResp, bind.SequenceNumber)
		resp.CommandStatus = smpp.ESME_RINVPASWD
		smpp.BindTransceiverRespBody(resp, "")
		conn.Write(resp.Marshal())
	})

	cfg := baseConfig(host, port)
	client, err := smpp.NewClient(cfg, newFakeBroker())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	require.Error(t, err)
	var rejected *smpp.BindRejected
	assert.ErrorAs(t, err, &rejected)
	assert.Equal(t, smpp.ESME_RINVPASWD, rejected.Status)
}

func TestClientSubmitSmAndEnquireLinkRoundTrip(t *testing.T) {
	submitSeen := make(chan *smpp.PDU, 1)
	enquireSeen := make(chan *smpp.PDU, 1)

	host, port := startFakeSmsc(t, func(conn net.Conn) {
		defer conn.Close()

		bind := readFrame(t, conn)
		resp := smpp.NewPDU(smpp.BindTransceiverResp, bind.SequenceNumber)
		smpp.BindTransceiverRespBody(resp, "fake-smsc")
		conn.Write(resp.Marshal())

		for i := 0; i < 2; i++ {
			pdu := readFrame(t, conn)
			switch pdu.CommandID {
			case smpp.SubmitSm:
				submitSeen <- pdu
				respPdu := smpp.NewPDU(smpp.SubmitSmResp, pdu.SequenceNumber)
				smpp.SubmitSmRespBody(respPdu, "msg-1")
				conn.Write(respPdu.Marshal())
			case smpp.EnquireLink:
				enquireSeen <- pdu
				respPdu := smpp.NewPDU(smpp.EnquireLinkResp, pdu.SequenceNumber)
				conn.Write(respPdu.Marshal())
			}
		}
	})

	cfg := baseConfig(host, port)
	cfg.SendRate = 100
	cfg.MaxTokens = 10
	cfg.DelayForTokens = time.Millisecond
	cfg.EnquireLinkInterval = 20 * time.Millisecond

	broker := newFakeBroker()
	client, err := smpp.NewClient(cfg, broker)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	client.Start(ctx)

	require.NoError(t, broker.Enqueue(ctx, smpp.Message{
		Kind:            smpp.KindSubmitSm,
		LogID:           "log-1",
		SourceAddr:      "2547000000",
		DestinationAddr: "254711999999",
		ShortMessage:    "Hello",
	}))

	select {
	case pdu := <-submitSeen:
		assert.Equal(t, smpp.SubmitSm, pdu.CommandID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for submit_sm at the fake smsc")
	}

	select {
	case pdu := <-enquireSeen:
		assert.Equal(t, smpp.EnquireLink, pdu.CommandID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for enquire_link at the fake smsc")
	}

	require.NoError(t, client.Shutdown(context.Background(), time.Second))
}

func TestClientShutdownSendsUnbindAndWaitsForResp(t *testing.T) {
	unbindSeen := make(chan struct{}, 1)

	host, port := startFakeSmsc(t, func(conn net.Conn) {
		defer conn.Close()

		bind := readFrame(t, conn)
		resp := smpp.NewPDU(smpp.BindTransceiverResp, bind.SequenceNumber)
		smpp.BindTransceiverRespBody(resp, "fake-smsc")
		conn.Write(resp.Marshal())

		pdu := readFrame(t, conn)
		if pdu.CommandID == smpp.Unbind {
			close(unbindSeen)
			respPdu := smpp.NewPDU(smpp.UnbindResp, pdu.SequenceNumber)
			conn.Write(respPdu.Marshal())
		}
	})

	cfg := baseConfig(host, port)
	client, err := smpp.NewClient(cfg, newFakeBroker())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	client.Start(ctx)

	err = client.Shutdown(context.Background(), time.Second)
	require.NoError(t, err)

	select {
	case <-unbindSeen:
	case <-time.After(time.Second):
		t.Fatal("fake smsc never received unbind")
	}
}
