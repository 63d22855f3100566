package mysql

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"testing"

	"github.com/sqlgo/sqlgo"
)

func fakeHandshakePacket(capabilityLow uint16) []byte {
	data := []byte{10} // protocol version
	data = append(data, []byte("5.7.0")...)
	data = append(data, 0) // null terminator
	data = append(data, 1, 0, 0, 0)           // connection id
	data = append(data, []byte("01234567")...) // nonce (first 8 bytes)
	data = append(data, 0)                     // filler
	data = append(data, byte(capabilityLow), byte(capabilityLow>>8))
	return data
}

func sendServerPacket(server interface{ Write([]byte) (int, error) }, seq byte, payload []byte) error {
	header := []byte{byte(len(payload)), byte(len(payload) >> 8), byte(len(payload) >> 16), seq}
	if _, err := server.Write(header); err != nil {
		return err
	}
	_, err := server.Write(payload)
	return err
}

func TestHandshakeFallsBackToPlaintextWhenPreferredAndServerLacksTLS(t *testing.T) {
	c, server := pipeConns()
	defer c.nc.Close()
	defer server.Close()
	c.cfg = &Config{SSLMode: SSLModePreferred, Addr: "db.internal:3306"}
	c.tlsConfig = &tls.Config{}
	c.logger = slog.Default()

	errCh := make(chan error, 1)
	go func() {
		_, _, err := c.readHandshakePacket()
		errCh <- err
	}()

	if err := sendServerPacket(server, 0, fakeHandshakePacket(uint16(clientProtocol41))); err != nil {
		t.Fatalf("writing handshake packet: %v", err)
	}

	if err := <-errCh; err != nil {
		t.Fatalf("readHandshakePacket: %v", err)
	}
	if c.tlsConfig != nil {
		t.Fatal("tlsConfig was not cleared on fallback")
	}
}

func TestHandshakeFailsWhenRequiredAndServerLacksTLS(t *testing.T) {
	c, server := pipeConns()
	defer c.nc.Close()
	defer server.Close()
	c.cfg = &Config{SSLMode: SSLModeRequired, Addr: "db.internal:3306"}
	c.tlsConfig = &tls.Config{}
	c.logger = slog.Default()

	errCh := make(chan error, 1)
	go func() {
		_, _, err := c.readHandshakePacket()
		errCh <- err
	}()

	if err := sendServerPacket(server, 0, fakeHandshakePacket(uint16(clientProtocol41))); err != nil {
		t.Fatalf("writing handshake packet: %v", err)
	}

	var tlsErr *sqlgo.TLSError
	if err := <-errCh; !errors.As(err, &tlsErr) {
		t.Fatalf("readHandshakePacket error = %v, want *sqlgo.TLSError", err)
	}
	if c.tlsConfig == nil {
		t.Fatal("tlsConfig was cleared despite the hard failure")
	}
}

// TestInitSessionSendsCompoundSetAndDrainsMultiStatementOKs exercises the
// post-handshake session setup as seen from the server side of the pipe: one
// multi-statement COM_QUERY out, three OK packets back, the first two
// carrying statusMoreResultsExists.
func TestInitSessionSendsCompoundSetAndDrainsMultiStatementOKs(t *testing.T) {
	c, server := pipeConns()
	defer c.nc.Close()
	defer server.Close()
	c.logger = slog.Default()

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.initSession(context.Background())
	}()

	header := make([]byte, 4)
	if _, err := readFull(server, header); err != nil {
		t.Fatalf("reading COM_QUERY header: %v", err)
	}
	n := int(uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16)
	body := make([]byte, n)
	if _, err := readFull(server, body); err != nil {
		t.Fatalf("reading COM_QUERY body: %v", err)
	}
	if body[0] != comQuery {
		t.Fatalf("command byte = %d, want comQuery", body[0])
	}
	if !bytes.Contains(body[1:], []byte("time_zone")) || !bytes.Contains(body[1:], []byte("utf8mb4_unicode_ci")) {
		t.Fatalf("COM_QUERY body = %q, missing expected SET statements", body[1:])
	}

	okWithMore := []byte{iOK, 0x00, 0x00, byte(statusMoreResultsExists), 0x00}
	okFinal := []byte{iOK, 0x00, 0x00, 0x00, 0x00}
	packets := [][]byte{okWithMore, okWithMore, okFinal}
	for i, pkt := range packets {
		if err := sendServerPacket(server, byte(i+1), pkt); err != nil {
			t.Fatalf("writing OK packet %d: %v", i, err)
		}
	}

	if err := <-errCh; err != nil {
		t.Fatalf("initSession: %v", err)
	}
}
