package coin

// Mist is an amount of SUI in its smallest indivisible denomination.
// 1 SUI == 1_000_000_000 Mist. All transaction amounts are built in Mist;
// the decimal SUI representation is derived and display-only.
type Mist uint64

// MistPerSui is the number of base units in one display unit.
const MistPerSui Mist = 1_000_000_000

// CoinObject is one spendable SUI coin object owned by an address.
// It is a snapshot: the object may already be spent by a concurrent
// transaction by the time a submission that uses it executes.
type CoinObject struct {
	ObjectID string
	Balance  Mist
}
