package coin

import (
	"errors"
	"math"
	"testing"
)

func TestSelectFundingCoin(t *testing.T) {
	tests := []struct {
		name       string
		coins      []CoinObject
		required   Mist
		feeReserve Mist
		wantID     string
		wantErr    bool
	}{
		{
			name:       "single sufficient coin",
			coins:      []CoinObject{{ObjectID: "c1264ab6", Balance: 200_000_000_000}},
			required:   150_000_000_000,
			feeReserve: 50_000_000,
			wantID:     "c1264ab6",
		},
		{
			name:       "fee reserve pushes the only coin short",
			coins:      []CoinObject{{ObjectID: "c1264ab6", Balance: 200_000_000_000}},
			required:   160_000_000_000,
			feeReserve: 50_000_000,
			wantErr:    true,
		},
		{
			name: "largest coin preferred",
			coins: []CoinObject{
				{ObjectID: "small", Balance: 2_000_000_000},
				{ObjectID: "large", Balance: 9_000_000_000},
				{ObjectID: "mid", Balance: 5_000_000_000},
			},
			required:   1_000_000_000,
			feeReserve: 50_000_000,
			wantID:     "large",
		},
		{
			name: "equal balances keep listing order",
			coins: []CoinObject{
				{ObjectID: "first", Balance: 3_000_000_000},
				{ObjectID: "second", Balance: 3_000_000_000},
			},
			required:   1_000_000_000,
			feeReserve: 0,
			wantID:     "first",
		},
		{
			name: "exact cover is sufficient",
			coins: []CoinObject{
				{ObjectID: "exact", Balance: 1_050_000_000},
			},
			required:   1_000_000_000,
			feeReserve: 50_000_000,
			wantID:     "exact",
		},
		{
			name: "no fallback to a coin covering only the amount",
			coins: []CoinObject{
				{ObjectID: "short", Balance: 1_000_000_000},
			},
			required:   1_000_000_000,
			feeReserve: 50_000_000,
			wantErr:    true,
		},
		{
			name:     "empty coin set",
			coins:    nil,
			required: 1,
			wantErr:  true,
		},
		{
			name: "required plus reserve overflows",
			coins: []CoinObject{
				{ObjectID: "huge", Balance: math.MaxUint64},
			},
			required:   math.MaxUint64,
			feeReserve: 1,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectFundingCoin(tt.coins, tt.required, tt.feeReserve)
			if tt.wantErr {
				if !errors.Is(err, ErrInsufficientFunds) {
					t.Fatalf("expected ErrInsufficientFunds, got coin %q, err %v", got.ObjectID, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ObjectID != tt.wantID {
				t.Errorf("selected %q, want %q", got.ObjectID, tt.wantID)
			}
			if got.Balance < tt.required+tt.feeReserve {
				t.Errorf("selected coin balance %d violates required+reserve %d", got.Balance, tt.required+tt.feeReserve)
			}
		})
	}
}

func TestSelectFundingCoinDoesNotMutateInput(t *testing.T) {
	coins := []CoinObject{
		{ObjectID: "a", Balance: 1},
		{ObjectID: "b", Balance: 3},
		{ObjectID: "c", Balance: 2},
	}
	_, _ = SelectFundingCoin(coins, 1, 0)
	if coins[0].ObjectID != "a" || coins[1].ObjectID != "b" || coins[2].ObjectID != "c" {
		t.Errorf("input slice was reordered: %+v", coins)
	}
}
