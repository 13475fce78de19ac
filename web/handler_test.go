package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"splitsui/classify"
	"splitsui/coin"
	"splitsui/config"
	"splitsui/ledger/ledger"
	ledgermem "splitsui/ledger/mem"
	"splitsui/notify/goch"
	"splitsui/recon"
	storemem "splitsui/store/mem"
	"splitsui/submit"
)

const (
	testPackageID = "0x1"
	testPayer     = "0xaaa4567890"
	testCreator   = "0xccc4567890"
	testRecipient = "0xddd4567890"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServices() (Services, *ledgermem.InMemoryLedger) {
	client := ledgermem.NewInMemoryLedger()
	log := zap.NewNop()
	cfg := &config.Config{
		PackageID:        testPackageID,
		CoinType:         config.DefaultCoinType,
		GasBudget:        config.DefaultGasBudget,
		FeeReserveMist:   config.DefaultFeeReserveMist,
		EventPageLimit:   config.DefaultEventPageLimit,
		HistoryPageLimit: config.DefaultHistoryPageLimit,
		Port:             "8080",
	}

	notifier := goch.NewGoChanPaymentMessageQueueWrapper()
	svc := Services{
		Config:     cfg,
		Log:        log,
		Client:     client,
		Reconciler: recon.New(client, cfg.PackageID, cfg.EventPageLimit, log),
		Classifier: classify.New(cfg.PackageID, log),
		Submitter: submit.NewService(client, notifier.GetOutcomeMessageQueue(), submit.Config{
			PackageID:  cfg.PackageID,
			CoinType:   cfg.CoinType,
			GasBudget:  cfg.GasBudget,
			FeeReserve: coin.Mist(cfg.FeeReserveMist),
		}, log),
		Notifier: notifier,
		Archive:  storemem.NewInMemoryArchive(),
	}
	return svc, client
}

func seedRequest(client *ledgermem.InMemoryLedger, id string) {
	client.AddEvent(ledger.Event{
		Type:     testPackageID + "::group_payment::GroupPaymentCreatedEvent",
		TxDigest: ledger.Digest("digest-" + id),
		Payload: map[string]any{
			"request_id": id,
			"creator":    testCreator,
			"payers":     []any{testPayer},
		},
	})
	client.PutObject(&ledger.ObjectSnapshot{
		ID:       ledger.ObjectID(id),
		DataType: "moveObject",
		Fields: map[string]any{
			"payers":          []any{testPayer},
			"amounts":         []any{"1000000000"},
			"recipient":       testRecipient,
			"description":     "lunch",
			"total_amount":    "1000000000",
			"total_collected": "0",
			"paid_status": map[string]any{
				"fields": map[string]any{
					"contents": []any{
						map[string]any{
							"fields": map[string]any{"key": testPayer, "value": false},
						},
					},
				},
			},
		},
	})
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetRequestsAsPayer(t *testing.T) {
	svc, client := newTestServices()
	seedRequest(client, "0xreq1")
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/requests/"+testPayer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp requestsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.AsPayer, 1)
	assert.Empty(t, resp.AsCreator)

	got := resp.AsPayer[0]
	assert.Equal(t, "0xreq1", got.ID)
	assert.Equal(t, testCreator, got.Creator)
	assert.Equal(t, "lunch", got.Description)
	assert.Equal(t, "1", got.TotalAmount)
	assert.Equal(t, "0", got.TotalCollected)
	assert.Equal(t, "1", got.UserAmount)
	assert.False(t, got.UserContributed)
	assert.Equal(t, []string{testPayer}, got.UnpaidPayers)
}

func TestGetRequestsArchivesPass(t *testing.T) {
	svc, client := newTestServices()
	seedRequest(client, "0xreq1")
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/requests/"+testPayer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	pass, err := svc.Archive.LatestPass(testPayer)
	assert.NoError(t, err)
	if assert.NotNil(t, pass) {
		assert.Len(t, pass.Requests, 1)
		assert.Equal(t, "0xreq1", string(pass.Requests[0].RequestID))
	}
}

func TestPostMultiSendSubmitsCall(t *testing.T) {
	svc, client := newTestServices()
	client.SetCoins(testPayer, []coin.CoinObject{
		{ObjectID: "0xcoina", Balance: 5 * coin.MistPerSui},
	})
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/send", multiSendRequest{
		Sender: testPayer,
		Recipients: []submit.Recipient{
			{Address: testRecipient, Amount: "1.5"},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	calls := client.SubmittedCalls()
	if assert.Len(t, calls, 1) {
		assert.Equal(t, testPackageID+"::split_sui::multi_send_sui", calls[0].Target)
	}
}

func TestPostMultiSendRejectsBadBody(t *testing.T) {
	svc, _ := newTestServices()
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/send", map[string]any{"sender": testPayer})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMultiSendInsufficientFunds(t *testing.T) {
	svc, client := newTestServices()
	client.SetCoins(testPayer, []coin.CoinObject{
		{ObjectID: "0xcoina", Balance: coin.MistPerSui},
	})
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/send", multiSendRequest{
		Sender: testPayer,
		Recipients: []submit.Recipient{
			{Address: testRecipient, Amount: "2"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, client.SubmittedCalls())
}

func TestPostContributeSubmitsSplit(t *testing.T) {
	svc, client := newTestServices()
	seedRequest(client, "0xreq1")
	client.SetCoins(testPayer, []coin.CoinObject{
		{ObjectID: "0xcoina", Balance: 5 * coin.MistPerSui},
	})
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/group-payments/0xreq1/contribute", contributeRequest{
		Sender: testPayer,
		Amount: "1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	calls := client.SubmittedCalls()
	if assert.Len(t, calls, 1) {
		assert.Equal(t, testPackageID+"::group_payment::contribute", calls[0].Target)
		assert.Equal(t, ledger.ObjectID("0xreq1"), calls[0].Arguments[0].Object)
	}
}

func TestGetHistoryClassifiesAndArchives(t *testing.T) {
	svc, client := newTestServices()
	client.AddHistory(testPayer, ledger.HistoricalTransaction{
		Digest:      "0xdigest1",
		TimestampMs: 1_700_000_000_000,
		Kind:        "ProgrammableTransaction",
		Status:      "success",
		MoveCalls: []ledger.MoveCall{
			{
				Package:  testPackageID,
				Module:   "group_payment",
				Function: "manual_release",
			},
		},
	})
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/history/"+testPayer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Transactions []classify.ClassifiedTransaction `json:"transactions"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if assert.Len(t, resp.Transactions, 1) {
		assert.Equal(t, classify.KindManualRelease, resp.Transactions[0].Kind)
	}

	stored, err := svc.Archive.GetTransactions(testPayer, 10)
	assert.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestGetArchivedRequestsEmpty(t *testing.T) {
	svc, _ := newTestServices()
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/archive/requests/"+testPayer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pass":null}`, w.Body.String())
}

func TestGetArchivedRequestsWithoutArchive(t *testing.T) {
	svc, _ := newTestServices()
	svc.Archive = nil
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/archive/requests/"+testPayer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
