package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

type recordedMessage struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []recordedMessage
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, recordedMessage{subject: subject, data: data})
	return nil
}

type countingSink struct {
	calls int
	err   error
}

func (c *countingSink) Publish(context.Context, ports.LedgerEvent) error {
	c.calls++
	return c.err
}

func sampleEvent() ports.LedgerEvent {
	vault := bounty.VaultAddress("team-a")
	report := bounty.ReportAddress(vault, "alice", 0)
	return ports.LedgerEvent{
		EventID:   7,
		EventUID:  "uid-7",
		Kind:      "payout_executed",
		Vault:     vault,
		Report:    &report,
		Actor:     "alice",
		Amount:    18446744073709551615,
		CreatedAt: "2026-03-01T12:00:00Z",
	}
}

func TestNATSPublisherUsesKindSubject(t *testing.T) {
	conn := &fakeConn{}
	publisher := &NATSPublisher{conn: conn, prefix: "bountyvault."}

	event := sampleEvent()
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(conn.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(conn.messages))
	}
	if got := conn.messages[0].subject; got != "bountyvault.payout_executed" {
		t.Fatalf("subject = %q", got)
	}

	var envelope Envelope
	if err := json.Unmarshal(conn.messages[0].data, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Amount != event.Amount || envelope.Report != event.Report.String() {
		t.Fatalf("envelope = %+v", envelope)
	}
}

func TestNATSPublisherHonorsCanceledContext(t *testing.T) {
	conn := &fakeConn{}
	publisher := &NATSPublisher{conn: conn, prefix: "bountyvault"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := publisher.Publish(ctx, sampleEvent()); err == nil {
		t.Fatalf("Publish() expected error for canceled context")
	}
	if len(conn.messages) != 0 {
		t.Fatalf("published on canceled context")
	}
}

func TestFanOutReachesEverySink(t *testing.T) {
	boom := errors.New("boom")
	failing := &countingSink{err: boom}
	healthy := &countingSink{}

	err := NewFanOut(failing, nil, healthy).Publish(context.Background(), sampleEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("Publish() error = %v, want boom", err)
	}
	if failing.calls != 1 || healthy.calls != 1 {
		t.Fatalf("calls failing=%d healthy=%d", failing.calls, healthy.calls)
	}
}

func TestSubjectWithoutPrefix(t *testing.T) {
	if got := Subject("", "vault_created"); got != "vault_created" {
		t.Fatalf("Subject() = %q", got)
	}
}
