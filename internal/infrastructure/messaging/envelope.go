package messaging

import (
	"encoding/json"
	"strings"

	"bountyvault/internal/ports"
)

// Envelope is the wire form of a committed ledger event.
type Envelope struct {
	EventID   uint64 `json:"event_id"`
	EventUID  string `json:"event_uid"`
	Kind      string `json:"kind"`
	Vault     string `json:"vault"`
	Report    string `json:"report,omitempty"`
	Actor     string `json:"actor"`
	Amount    uint64 `json:"amount,string"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

func NewEnvelope(event ports.LedgerEvent) Envelope {
	envelope := Envelope{
		EventID:   event.EventID,
		EventUID:  event.EventUID,
		Kind:      event.Kind,
		Vault:     event.Vault.String(),
		Actor:     event.Actor,
		Amount:    event.Amount,
		Detail:    event.Detail,
		CreatedAt: event.CreatedAt,
	}
	if event.Report != nil {
		envelope.Report = event.Report.String()
	}
	return envelope
}

func Encode(event ports.LedgerEvent) ([]byte, error) {
	return json.Marshal(NewEnvelope(event))
}

// Subject maps an event kind onto a NATS subject under prefix.
func Subject(prefix string, kind string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return kind
	}
	return prefix + "." + kind
}
