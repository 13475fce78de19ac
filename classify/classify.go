// Package classify maps historical ledger transactions onto this
// application's named operations for display.
package classify

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"splitsui/ledger/ledger"
)

// Kind names the user-visible operation a transaction performed.
type Kind string

const (
	KindMultiSend     Kind = "Multi-Send"
	KindCreateRequest Kind = "Create Group Payment"
	KindContribute    Kind = "Contribute to Group Payment"
	KindManualRelease Kind = "Manual Release Payment"
	KindCancelRefund  Kind = "Cancel Payment Request"
	KindUnknown       Kind = "Unknown"
)

// NotAvailable marks a display field whose value could not be recovered
// from the transaction record.
const NotAvailable = "N/A"

// ClassifiedTransaction is the display form of one historical
// transaction. It is rebuilt fresh on every load and never mutated.
type ClassifiedTransaction struct {
	Digest    ledger.Digest     `json:"digest"`
	Timestamp string            `json:"timestamp"`
	Kind      Kind              `json:"kind"`
	Status    string            `json:"status"`
	Details   map[string]string `json:"details"`
	GasUsed   string            `json:"gasUsed"`
}

// decoder extracts display details for one operation kind, first from
// the call arguments and then from emitted events, with event values
// overwriting argument values for the same key.
type decoder struct {
	kind       Kind
	fromArgs   func(call ledger.MoveCall, details map[string]string)
	fromTx     func(tx ledger.HistoricalTransaction, details map[string]string)
	eventHints map[string]string // event type fragment -> detail key filled from payload
}

// Classifier turns raw transaction history into classified entries.
// Operations outside this package id are reported as Unknown and
// excluded from the output.
type Classifier struct {
	packageID string
	decoders  map[string]decoder
	log       *zap.Logger
}

func New(packageID string, log *zap.Logger) *Classifier {
	c := &Classifier{packageID: packageID, log: log}
	c.decoders = map[string]decoder{
		packageID + "::split_sui::multi_send_sui": {
			kind:     KindMultiSend,
			fromArgs: decodeMultiSendArgs,
			eventHints: map[string]string{
				"PaymentSentEvent": "recipientCount",
			},
		},
		packageID + "::group_payment::create_group_payment": {
			kind:   KindCreateRequest,
			fromTx: decodeCreatedRequestID,
			eventHints: map[string]string{
				"GroupPaymentCreatedEvent": "requestId",
			},
		},
		packageID + "::group_payment::contribute": {
			kind:     KindContribute,
			fromArgs: decodeRequestIDArg,
			eventHints: map[string]string{
				"ContributionEvent": "requestId",
			},
		},
		packageID + "::group_payment::manual_release": {
			kind:     KindManualRelease,
			fromArgs: decodeRequestIDArg,
		},
		packageID + "::group_payment::cancel_and_refund": {
			kind:     KindCancelRefund,
			fromArgs: decodeRequestIDArg,
		},
	}
	return c
}

// Classify walks the history newest first and keeps every call that
// matches one of the known operation targets. A transaction with no
// recognized call is dropped; one transaction can yield several entries
// when it batches several known calls.
func (c *Classifier) Classify(history []ledger.HistoricalTransaction) []ClassifiedTransaction {
	var out []ClassifiedTransaction
	for _, tx := range history {
		if tx.Kind != "" && tx.Kind != "ProgrammableTransaction" {
			continue
		}
		for _, call := range tx.MoveCalls {
			dec, known := c.decoders[call.Target()]
			if !known {
				c.log.Debug("skipping unrecognized move call",
					zap.String("tx", string(tx.Digest)), zap.String("target", call.Target()))
				continue
			}
			out = append(out, c.classifyCall(tx, call, dec))
		}
	}
	return out
}

func (c *Classifier) classifyCall(tx ledger.HistoricalTransaction, call ledger.MoveCall, dec decoder) ClassifiedTransaction {
	details := make(map[string]string)
	if dec.fromArgs != nil {
		dec.fromArgs(call, details)
	}
	if dec.fromTx != nil {
		dec.fromTx(tx, details)
	}
	applyEventHints(tx.Events, dec.eventHints, details)

	status := "Failed"
	if tx.Status == "success" {
		status = "Success"
	}

	return ClassifiedTransaction{
		Digest:    tx.Digest,
		Timestamp: formatTimestamp(tx.TimestampMs),
		Kind:      dec.kind,
		Status:    status,
		Details:   details,
		GasUsed:   formatGas(tx.GasUsed),
	}
}

// applyEventHints fills detail keys from event payloads whose type
// contains a known fragment. Event values win over argument values.
func applyEventHints(events []ledger.Event, hints map[string]string, details map[string]string) {
	for _, ev := range events {
		for fragment, key := range hints {
			if !strings.Contains(ev.Type, fragment) || ev.Payload == nil {
				continue
			}
			switch key {
			case "requestId":
				if id, ok := ev.Payload["request_id"].(string); ok {
					details[key] = id
				}
			case "recipientCount":
				if recipients, ok := ev.Payload["recipients"].([]any); ok {
					details[key] = strconv.Itoa(len(recipients))
				}
			}
		}
	}
}

// decodeMultiSendArgs recovers the recipient count from the second call
// argument, accepting the shapes different node versions emit.
func decodeMultiSendArgs(call ledger.MoveCall, details map[string]string) {
	details["recipientCount"] = NotAvailable
	if len(call.Arguments) < 2 {
		return
	}
	if list, ok := decodeArgList(call.Arguments[1]); ok {
		details["recipientCount"] = strconv.Itoa(len(list))
	}
}

// decodeRequestIDArg recovers the request object id from the first call
// argument.
func decodeRequestIDArg(call ledger.MoveCall, details map[string]string) {
	details["requestId"] = NotAvailable
	if len(call.Arguments) < 1 {
		return
	}
	if id, ok := decodeArgString(call.Arguments[0]); ok {
		details["requestId"] = id
	}
}

// decodeCreatedRequestID recovers the freshly created request id from
// the transaction's shared created objects.
func decodeCreatedRequestID(tx ledger.HistoricalTransaction, details map[string]string) {
	details["requestId"] = NotAvailable
	if len(tx.CreatedShared) > 0 {
		details["requestId"] = string(tx.CreatedShared[0])
	}
}

// decodeArgString accepts a call argument rendered either as a plain
// JSON string, as {"Pure": <string>} or as {"Pure": [<tag>, <string>]}.
func decodeArgString(raw json.RawMessage) (string, bool) {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, true
	}

	var wrapped struct {
		Pure json.RawMessage `json:"Pure"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Pure == nil {
		return "", false
	}
	if err := json.Unmarshal(wrapped.Pure, &plain); err == nil {
		return plain, true
	}
	var tagged []json.RawMessage
	if err := json.Unmarshal(wrapped.Pure, &tagged); err == nil && len(tagged) >= 2 {
		if err := json.Unmarshal(tagged[1], &plain); err == nil {
			return plain, true
		}
	}
	return "", false
}

// decodeArgList accepts a list argument rendered as a plain JSON array,
// as {"Pure": [...]} or as {"Pure": [<tag>, [...]]}.
func decodeArgList(raw json.RawMessage) ([]json.RawMessage, bool) {
	var plain []json.RawMessage
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, true
	}

	var wrapped struct {
		Pure json.RawMessage `json:"Pure"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Pure == nil {
		return nil, false
	}
	if err := json.Unmarshal(wrapped.Pure, &plain); err != nil {
		return nil, false
	}
	// the tagged form wraps the real list as the second element
	if len(plain) == 2 {
		var inner []json.RawMessage
		if err := json.Unmarshal(plain[1], &inner); err == nil {
			return inner, true
		}
	}
	return plain, true
}

// formatGas sums every numeric cost component the node reported.
// Components arrive as JSON numbers or as numeric strings.
func formatGas(costs map[string]json.RawMessage) string {
	if len(costs) == 0 {
		return NotAvailable
	}
	var total uint64
	var counted int
	for _, raw := range costs {
		if v, ok := numericValue(raw); ok {
			total += v
			counted++
		}
	}
	if counted == 0 {
		return NotAvailable
	}
	return strconv.FormatUint(total, 10)
}

func numericValue(raw json.RawMessage) (uint64, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		v, err := strconv.ParseUint(asString, 10, 64)
		return v, err == nil
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil && asNumber >= 0 {
		return uint64(asNumber), true
	}
	return 0, false
}

func formatTimestamp(ms int64) string {
	if ms <= 0 {
		return NotAvailable
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}
