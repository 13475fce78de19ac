package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	lgr "splitsui/ledger/ledger"
)

// Wire shapes of the fullnode's JSON-RPC results. Everything here is
// decoded defensively: fields the node omits or reshapes must degrade to
// zero values, never to a failed pass.

type eventsPage struct {
	Data []eventEnvelope `json:"data"`
}

type eventEnvelope struct {
	ID struct {
		TxDigest string `json:"txDigest"`
	} `json:"id"`
	Type       string         `json:"type"`
	ParsedJSON map[string]any `json:"parsedJson"`
}

func (e eventEnvelope) toEvent() lgr.Event {
	return lgr.Event{
		Type:     e.Type,
		TxDigest: lgr.Digest(e.ID.TxDigest),
		Payload:  e.ParsedJSON,
	}
}

type objectResponse struct {
	Data  *objectData  `json:"data"`
	Error *objectError `json:"error"`
}

type objectData struct {
	ObjectID string         `json:"objectId"`
	Type     string         `json:"type"`
	Content  *objectContent `json:"content"`
}

type objectContent struct {
	DataType string         `json:"dataType"`
	Type     string         `json:"type"`
	Fields   map[string]any `json:"fields"`
}

type objectError struct {
	Code string `json:"code"`
}

func (r objectResponse) toSnapshot() (*lgr.ObjectSnapshot, error) {
	if r.Error != nil {
		return nil, fmt.Errorf("%s: %w", r.Error.Code, lgr.ErrNotFound)
	}
	if r.Data == nil {
		return nil, lgr.ErrNotFound
	}
	snap := &lgr.ObjectSnapshot{
		ID:   lgr.ObjectID(r.Data.ObjectID),
		Type: r.Data.Type,
	}
	if r.Data.Content != nil {
		snap.DataType = r.Data.Content.DataType
		snap.Fields = r.Data.Content.Fields
		if snap.Type == "" {
			snap.Type = r.Data.Content.Type
		}
	}
	return snap, nil
}

type coinsPage struct {
	Data []struct {
		CoinObjectID string `json:"coinObjectId"`
		Balance      string `json:"balance"`
	} `json:"data"`
}

type txPage struct {
	Data []txEnvelope `json:"data"`
}

type txEnvelope struct {
	Digest      string `json:"digest"`
	TimestampMs string `json:"timestampMs"`
	Transaction *struct {
		Data struct {
			Transaction struct {
				Kind         string            `json:"kind"`
				Transactions []json.RawMessage `json:"transactions"`
			} `json:"transaction"`
		} `json:"data"`
	} `json:"transaction"`
	Effects *txEffects      `json:"effects"`
	Events  []eventEnvelope `json:"events"`
}

type txEffects struct {
	Status struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"status"`
	GasUsed map[string]json.RawMessage `json:"gasUsed"`
	Created []struct {
		Owner     json.RawMessage `json:"owner"`
		Reference struct {
			ObjectID string `json:"objectId"`
		} `json:"reference"`
	} `json:"created"`
}

type moveCallCommand struct {
	MoveCall *struct {
		Package       string            `json:"package"`
		Module        string            `json:"module"`
		Function      string            `json:"function"`
		TypeArguments []string          `json:"type_arguments"`
		Arguments     []json.RawMessage `json:"arguments"`
	} `json:"MoveCall"`
}

func (t txEnvelope) toTransaction() lgr.HistoricalTransaction {
	tx := lgr.HistoricalTransaction{
		Digest: lgr.Digest(t.Digest),
	}
	if ms, err := strconv.ParseInt(t.TimestampMs, 10, 64); err == nil {
		tx.TimestampMs = ms
	}

	if t.Transaction != nil {
		inner := t.Transaction.Data.Transaction
		tx.Kind = inner.Kind
		for _, raw := range inner.Transactions {
			var cmd moveCallCommand
			if err := json.Unmarshal(raw, &cmd); err != nil || cmd.MoveCall == nil {
				// not a Move call (SplitCoins, TransferObjects, ...)
				continue
			}
			tx.MoveCalls = append(tx.MoveCalls, lgr.MoveCall{
				Package:       cmd.MoveCall.Package,
				Module:        cmd.MoveCall.Module,
				Function:      cmd.MoveCall.Function,
				TypeArguments: cmd.MoveCall.TypeArguments,
				Arguments:     cmd.MoveCall.Arguments,
			})
		}
	}

	if t.Effects != nil {
		tx.Status = t.Effects.Status.Status
		tx.StatusError = t.Effects.Status.Error
		tx.GasUsed = t.Effects.GasUsed
		for _, created := range t.Effects.Created {
			if bytes.Contains(created.Owner, []byte("Shared")) {
				tx.CreatedShared = append(tx.CreatedShared, lgr.ObjectID(created.Reference.ObjectID))
			}
		}
	}

	for _, env := range t.Events {
		tx.Events = append(tx.Events, env.toEvent())
	}
	return tx
}

type outcomeEnvelope struct {
	Digest  string          `json:"digest"`
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Events  []eventEnvelope `json:"events"`
	Created []string        `json:"created"`
}

func (o outcomeEnvelope) toOutcome() *lgr.ExecutionOutcome {
	outcome := &lgr.ExecutionOutcome{
		Digest: lgr.Digest(o.Digest),
		Status: o.Status,
		Error:  o.Error,
	}
	for _, env := range o.Events {
		outcome.Events = append(outcome.Events, env.toEvent())
	}
	for _, id := range o.Created {
		outcome.Created = append(outcome.Created, lgr.ObjectID(id))
	}
	return outcome
}
