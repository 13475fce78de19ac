package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"splitsui/coin"
	lgr "splitsui/ledger/ledger"
)

// Client talks JSON-RPC 2.0 to a Sui fullnode for all reads, and hands
// prepared operation calls to a separate signer bridge for execution.
// Wallet key material never passes through this process.
type Client struct {
	rpcURL    string
	signerURL string
	httpc     *http.Client
}

func New(rpcURL, signerURL string) *Client {
	return &Client{
		rpcURL:    rpcURL,
		signerURL: signerURL,
		httpc:     &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: node returned HTTP %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode envelope: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: node error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) QueryEvents(ctx context.Context, eventType string, limit int) ([]lgr.Event, error) {
	query := map[string]any{"MoveEventType": eventType}
	var page eventsPage
	// cursor nil, descending order: only the first page is ever fetched
	if err := c.call(ctx, "suix_queryEvents", []any{query, nil, limit, true}, &page); err != nil {
		return nil, err
	}

	events := make([]lgr.Event, 0, len(page.Data))
	for _, env := range page.Data {
		events = append(events, env.toEvent())
	}
	return events, nil
}

var objectOptions = map[string]any{"showContent": true, "showType": true}

func (c *Client) GetObject(ctx context.Context, id lgr.ObjectID) (*lgr.ObjectSnapshot, error) {
	var resp objectResponse
	if err := c.call(ctx, "sui_getObject", []any{string(id), objectOptions}, &resp); err != nil {
		return nil, err
	}
	snap, err := resp.toSnapshot()
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", id, err)
	}
	return snap, nil
}

func (c *Client) MultiGetObjects(ctx context.Context, ids []lgr.ObjectID) (map[lgr.ObjectID]*lgr.ObjectSnapshot, error) {
	if len(ids) == 0 {
		return map[lgr.ObjectID]*lgr.ObjectSnapshot{}, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = string(id)
	}

	var resps []objectResponse
	if err := c.call(ctx, "sui_multiGetObjects", []any{strIDs, objectOptions}, &resps); err != nil {
		return nil, err
	}

	out := make(map[lgr.ObjectID]*lgr.ObjectSnapshot, len(resps))
	for _, resp := range resps {
		snap, err := resp.toSnapshot()
		if err != nil {
			// deleted or unreadable entries are simply absent from the result
			continue
		}
		out[snap.ID] = snap
	}
	return out, nil
}

func (c *Client) GetOwnedCoins(ctx context.Context, owner lgr.Address, coinType string) ([]coin.CoinObject, error) {
	var page coinsPage
	if err := c.call(ctx, "suix_getCoins", []any{string(owner), coinType, nil, nil}, &page); err != nil {
		return nil, err
	}

	coins := make([]coin.CoinObject, 0, len(page.Data))
	for _, entry := range page.Data {
		balance, err := strconv.ParseUint(entry.Balance, 10, 64)
		if err != nil {
			// a coin whose balance cannot be read cannot fund anything
			continue
		}
		coins = append(coins, coin.CoinObject{ObjectID: entry.CoinObjectID, Balance: coin.Mist(balance)})
	}
	return coins, nil
}

func (c *Client) QueryTransactionHistory(ctx context.Context, owner lgr.Address, limit int) ([]lgr.HistoricalTransaction, error) {
	query := map[string]any{
		"filter": map[string]any{"FromAddress": string(owner)},
		"options": map[string]any{
			"showEffects": true,
			"showEvents":  true,
			"showInput":   true,
		},
	}

	var page txPage
	if err := c.call(ctx, "suix_queryTransactionBlocks", []any{query, nil, limit, true}, &page); err != nil {
		return nil, err
	}

	txs := make([]lgr.HistoricalTransaction, 0, len(page.Data))
	for _, env := range page.Data {
		txs = append(txs, env.toTransaction())
	}
	return txs, nil
}

// Submit posts the prepared call to the signer bridge, which owns the key
// material, signs, executes, and reports the terminal outcome.
func (c *Client) Submit(ctx context.Context, call *lgr.OperationCall) (*lgr.ExecutionOutcome, error) {
	if c.signerURL == "" {
		return nil, fmt.Errorf("no signer bridge configured (SIGNER_URL)")
	}

	body, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("marshal operation call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("submit: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("submit: signer returned HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var env outcomeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("submit: decode outcome: %w", err)
	}
	return env.toOutcome(), nil
}
