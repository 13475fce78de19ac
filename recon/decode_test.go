package recon

import (
	"errors"
	"testing"

	"splitsui/coin"
	"splitsui/ledger/ledger"
)

func requestFields() map[string]any {
	return map[string]any{
		"payers":          []any{"0xaaa", "0xbbb"},
		"amounts":         []any{"1000000000", "2000000000"},
		"recipient":       "0xccc",
		"description":     []any{float64('l'), float64('u'), float64('n'), float64('c'), float64('h')},
		"total_amount":    "3000000000",
		"total_collected": "1000000000",
		"paid_status": map[string]any{
			"fields": map[string]any{
				"contents": []any{
					map[string]any{"fields": map[string]any{"key": "0xaaa", "value": true}},
					map[string]any{"fields": map[string]any{"key": "0xbbb", "value": false}},
				},
			},
		},
	}
}

func requestSnapshot(id ledger.ObjectID, fields map[string]any) *ledger.ObjectSnapshot {
	return &ledger.ObjectSnapshot{
		ID:       id,
		Type:     "0x1::group_payment::PaymentRequest",
		DataType: "moveObject",
		Fields:   fields,
	}
}

func TestDecodeRequestObject(t *testing.T) {
	req, err := decodeRequestObject("0xreq", requestSnapshot("0xreq", requestFields()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Description != "lunch" {
		t.Errorf("description = %q, want lunch", req.Description)
	}
	if req.TotalAmount != 3*coin.MistPerSui {
		t.Errorf("total amount = %d", req.TotalAmount)
	}
	if req.TotalCollected != coin.MistPerSui {
		t.Errorf("total collected = %d", req.TotalCollected)
	}
	if !req.PaidStatus["0xaaa"] || req.PaidStatus["0xbbb"] {
		t.Errorf("paid status = %v", req.PaidStatus)
	}
	if len(req.PaidPayers) != 1 || req.PaidPayers[0] != "0xaaa" {
		t.Errorf("paid payers = %v", req.PaidPayers)
	}
	if len(req.UnpaidPayers) != 1 || req.UnpaidPayers[0] != "0xbbb" {
		t.Errorf("unpaid payers = %v", req.UnpaidPayers)
	}
}

func TestDecodeRequestObjectStringDescription(t *testing.T) {
	fields := requestFields()
	fields["description"] = "dinner"
	req, err := decodeRequestObject("0xreq", requestSnapshot("0xreq", fields))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Description != "dinner" {
		t.Errorf("description = %q, want dinner", req.Description)
	}
}

func TestDecodeRequestObjectErrors(t *testing.T) {
	mismatched := requestFields()
	mismatched["amounts"] = []any{"1000000000"}

	missingRecipient := requestFields()
	delete(missingRecipient, "recipient")

	badAmount := requestFields()
	badAmount["total_amount"] = "not-a-number"

	tests := []struct {
		name string
		snap *ledger.ObjectSnapshot
	}{
		{"nil snapshot", nil},
		{"not a move object", &ledger.ObjectSnapshot{ID: "0xreq", DataType: "package"}},
		{"payer amount mismatch", requestSnapshot("0xreq", mismatched)},
		{"missing recipient", requestSnapshot("0xreq", missingRecipient)},
		{"bad amount", requestSnapshot("0xreq", badAmount)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeRequestObject("0xreq", tc.snap)
			if !errors.Is(err, ledger.ErrDecode) {
				t.Errorf("err = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecodeRequestObjectBrokenDescriptionDegrades(t *testing.T) {
	fields := requestFields()
	fields["description"] = []any{float64(300)}
	req, err := decodeRequestObject("0xreq", requestSnapshot("0xreq", fields))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Description != "" {
		t.Errorf("description = %q, want empty", req.Description)
	}
}

func TestDecodeCreationEvent(t *testing.T) {
	ev := ledger.Event{
		Type:     "0x1::group_payment::GroupPaymentCreatedEvent",
		TxDigest: "tx1",
		Payload: map[string]any{
			"request_id": "0xreq",
			"creator":    "0xcreator",
			"payers":     []any{"0xaaa", "0xbbb"},
		},
	}
	created, err := decodeCreationEvent(ev)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.RequestID != "0xreq" || created.Creator != "0xcreator" {
		t.Errorf("decoded = %+v", created)
	}
	if len(created.Payers) != 2 {
		t.Errorf("payers = %v", created.Payers)
	}
}

func TestDecodeCreationEventMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"nil payload", nil},
		{"missing request id", map[string]any{"creator": "0xcreator"}},
		{"missing creator", map[string]any{"request_id": "0xreq"}},
		{"non-string request id", map[string]any{"request_id": float64(1), "creator": "0xcreator"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeCreationEvent(ledger.Event{Payload: tc.payload})
			if !errors.Is(err, ledger.ErrDecode) {
				t.Errorf("err = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecodeCreationEventWithoutPayers(t *testing.T) {
	created, err := decodeCreationEvent(ledger.Event{
		Payload: map[string]any{"request_id": "0xreq", "creator": "0xcreator"},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Payers != nil {
		t.Errorf("payers = %v, want nil", created.Payers)
	}
}
