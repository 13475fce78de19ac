package ledger

import (
	"encoding/json"

	"splitsui/coin"
)

// Address is a Sui account address.
type Address string

// ObjectID is the opaque handle of an on-chain object.
type ObjectID string

// Digest identifies one executed transaction.
type Digest string

// Event is one decoded entry from an event stream. Payload carries the
// node's parsed JSON fields and must be decoded defensively; nothing in
// it is guaranteed present.
type Event struct {
	Type     string
	TxDigest Digest
	Payload  map[string]any
}

// ObjectSnapshot is the point-in-time state of one on-chain object.
// Fields is the untyped field map of the object's Move struct; callers
// must treat every entry as possibly absent or differently shaped.
type ObjectSnapshot struct {
	ID       ObjectID
	Type     string
	DataType string
	Fields   map[string]any
}

// MoveCall is one decoded Move call found inside a historical transaction.
// Arguments are kept raw because their wire shape varies across node
// versions and argument kinds.
type MoveCall struct {
	Package       string
	Module        string
	Function      string
	TypeArguments []string
	Arguments     []json.RawMessage
}

// Target returns the fully-qualified call target.
func (c MoveCall) Target() string {
	return c.Package + "::" + c.Module + "::" + c.Function
}

// HistoricalTransaction is one entry from a transaction-history query,
// reduced to the parts this application classifies.
type HistoricalTransaction struct {
	Digest      Digest
	TimestampMs int64
	Kind        string
	MoveCalls   []MoveCall
	Status      string
	StatusError string
	// GasUsed holds the raw cost components as reported by the node.
	// Values may be JSON numbers or numeric strings; absent when effects
	// were not returned.
	GasUsed map[string]json.RawMessage
	Events  []Event
	// CreatedShared lists objects created with shared ownership, used to
	// recover the id of a freshly created payment request.
	CreatedShared []ObjectID
}

// CallArg is one positional argument of a prepared operation call,
// a tagged variant: exactly one of Object, Pure or Split is set.
type CallArg struct {
	// Object references an owned or shared object by id.
	Object ObjectID `json:"object,omitempty"`
	// Pure is a plain value serialized for the call.
	Pure any `json:"pure,omitempty"`
	// Split asks the executor to split Amount off Coin and pass the
	// resulting coin as this argument.
	Split *SplitCoin `json:"split,omitempty"`
}

// SplitCoin describes a coin split performed inside the transaction.
type SplitCoin struct {
	Coin   ObjectID  `json:"coin"`
	Amount coin.Mist `json:"amount"`
}

// OperationCall is a prepared single-Move-call transaction, ready for
// signing and execution by the wallet side.
type OperationCall struct {
	Sender        Address   `json:"sender"`
	Target        string    `json:"target"`
	TypeArguments []string  `json:"typeArguments,omitempty"`
	Arguments     []CallArg `json:"arguments"`
	GasBudget     uint64    `json:"gasBudget"`
}

// ExecutionOutcome is the terminal result of a submitted operation call.
type ExecutionOutcome struct {
	Digest  Digest
	Status  string
	Error   string
	Events  []Event
	Created []ObjectID
}

// Succeeded reports whether execution finished with success status.
func (o *ExecutionOutcome) Succeeded() bool {
	return o != nil && o.Status == "success"
}

// ObjectArg builds an object-reference argument.
func ObjectArg(id ObjectID) CallArg {
	return CallArg{Object: id}
}

// PureArg builds a pure-value argument.
func PureArg(v any) CallArg {
	return CallArg{Pure: v}
}

// SplitArg builds a split-coin argument.
func SplitArg(source ObjectID, amount coin.Mist) CallArg {
	return CallArg{Split: &SplitCoin{Coin: source, Amount: amount}}
}
