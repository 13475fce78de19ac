package recon

import (
	"fmt"
	"strconv"

	"splitsui/coin"
	"splitsui/ledger/ledger"
)

// Decoders for the untyped shapes the node hands back. Every accessor
// returns an explicit error instead of assuming a field is present or
// shaped as expected; a failed decode skips one entry, never a pass.

// creationEvent is the trusted-for-identity-only part of a
// GroupPaymentCreatedEvent payload.
type creationEvent struct {
	RequestID ledger.ObjectID
	Creator   ledger.Address
	Payers    []ledger.Address
}

func decodeCreationEvent(ev ledger.Event) (creationEvent, error) {
	var out creationEvent
	if ev.Payload == nil {
		return out, fmt.Errorf("event has no payload: %w", ledger.ErrDecode)
	}

	id, err := stringEntry(ev.Payload, "request_id")
	if err != nil {
		return out, err
	}
	creator, err := stringEntry(ev.Payload, "creator")
	if err != nil {
		return out, err
	}

	out.RequestID = ledger.ObjectID(id)
	out.Creator = ledger.Address(creator)
	// the payer list is optional on the event; the object decides
	if payers, err := addressList(ev.Payload, "payers"); err == nil {
		out.Payers = payers
	}
	return out, nil
}

// decodeRequestObject reconstructs a PaymentRequest from the current
// object state. User-specific fields are left zero for the caller.
func decodeRequestObject(id ledger.ObjectID, snap *ledger.ObjectSnapshot) (*PaymentRequest, error) {
	if snap == nil || snap.DataType != "moveObject" || snap.Fields == nil {
		return nil, fmt.Errorf("request %s is not a readable move object: %w", id, ledger.ErrDecode)
	}
	fields := snap.Fields

	payers, err := addressList(fields, "payers")
	if err != nil {
		return nil, err
	}
	amounts, err := mistList(fields, "amounts")
	if err != nil {
		return nil, err
	}
	if len(payers) != len(amounts) {
		return nil, fmt.Errorf("request %s: %d payers but %d amounts: %w", id, len(payers), len(amounts), ledger.ErrDecode)
	}

	recipient, err := stringEntry(fields, "recipient")
	if err != nil {
		return nil, err
	}
	totalAmount, err := mistEntry(fields, "total_amount")
	if err != nil {
		return nil, err
	}
	totalCollected, err := mistEntry(fields, "total_collected")
	if err != nil {
		return nil, err
	}

	req := &PaymentRequest{
		ID:             id,
		Recipient:      ledger.Address(recipient),
		Description:    descriptionText(fields["description"]),
		Payers:         payers,
		Amounts:        amounts,
		TotalAmount:    totalAmount,
		TotalCollected: totalCollected,
		PaidStatus:     make(map[ledger.Address]bool, len(payers)),
	}

	for _, entry := range paidStatusEntries(fields["paid_status"]) {
		req.PaidStatus[entry.addr] = entry.paid
		if entry.paid {
			req.PaidPayers = append(req.PaidPayers, entry.addr)
		} else {
			req.UnpaidPayers = append(req.UnpaidPayers, entry.addr)
		}
	}
	return req, nil
}

func stringEntry(fields map[string]any, key string) (string, error) {
	value, exists := fields[key]
	if !exists {
		return "", fmt.Errorf("missing field %q: %w", key, ledger.ErrDecode)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string: %w", key, ledger.ErrDecode)
	}
	return s, nil
}

func addressList(fields map[string]any, key string) ([]ledger.Address, error) {
	value, exists := fields[key]
	if !exists {
		return nil, fmt.Errorf("missing field %q: %w", key, ledger.ErrDecode)
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not a list: %w", key, ledger.ErrDecode)
	}
	out := make([]ledger.Address, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("field %q holds a non-address entry: %w", key, ledger.ErrDecode)
		}
		out = append(out, ledger.Address(s))
	}
	return out, nil
}

func mistList(fields map[string]any, key string) ([]coin.Mist, error) {
	value, exists := fields[key]
	if !exists {
		return nil, fmt.Errorf("missing field %q: %w", key, ledger.ErrDecode)
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not a list: %w", key, ledger.ErrDecode)
	}
	out := make([]coin.Mist, 0, len(raw))
	for _, item := range raw {
		m, err := mistValue(item)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func mistEntry(fields map[string]any, key string) (coin.Mist, error) {
	value, exists := fields[key]
	if !exists {
		return 0, fmt.Errorf("missing field %q: %w", key, ledger.ErrDecode)
	}
	m, err := mistValue(value)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return m, nil
}

// mistValue accepts the two shapes u64 fields arrive in: a decimal string
// (the common case) or a JSON number for small values.
func mistValue(value any) (coin.Mist, error) {
	switch v := value.(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a u64: %w", v, ledger.ErrDecode)
		}
		return coin.Mist(parsed), nil
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("negative amount %v: %w", v, ledger.ErrDecode)
		}
		return coin.Mist(v), nil
	default:
		return 0, fmt.Errorf("amount has type %T: %w", value, ledger.ErrDecode)
	}
}

// descriptionText decodes the description field, which arrives either as
// a vector<u8> rendered as a JSON number array or as a plain string.
// An unreadable description degrades to empty; it never fails a request.
func descriptionText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		buf := make([]byte, 0, len(v))
		for _, item := range v {
			n, ok := item.(float64)
			if !ok || n < 0 || n > 255 {
				return ""
			}
			buf = append(buf, byte(n))
		}
		return string(buf)
	default:
		return ""
	}
}

type paidEntry struct {
	addr ledger.Address
	paid bool
}

// paidStatusEntries walks the VecMap shape
// paid_status.fields.contents[].fields.{key,value}, preserving entry
// order. Malformed entries are dropped one at a time.
func paidStatusEntries(value any) []paidEntry {
	wrapper, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	inner, ok := wrapper["fields"].(map[string]any)
	if !ok {
		return nil
	}
	contents, ok := inner["contents"].([]any)
	if !ok {
		return nil
	}

	out := make([]paidEntry, 0, len(contents))
	for _, item := range contents {
		entryWrapper, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entryFields, ok := entryWrapper["fields"].(map[string]any)
		if !ok {
			continue
		}
		key, ok := entryFields["key"].(string)
		if !ok {
			continue
		}
		paid, _ := entryFields["value"].(bool)
		out = append(out, paidEntry{addr: ledger.Address(key), paid: paid})
	}
	return out
}
