package web

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"splitsui/coin"
	"splitsui/ledger/ledger"
	"splitsui/notify/notify"
	"splitsui/recon"
	"splitsui/store/store"
	"splitsui/submit"
)

type handler struct {
	svc Services

	// last reconciliation result per address, for change detection.
	// Entries are never pruned; the map holds one result per distinct
	// address queried over the life of the process.
	mu       sync.Mutex
	lastPass map[ledger.Address]*recon.Result
}

func newHandler(svc Services) *handler {
	return &handler{
		svc:      svc,
		lastPass: make(map[ledger.Address]*recon.Result),
	}
}

// paymentRequestView renders amounts as decimal SUI strings for display.
type paymentRequestView struct {
	ID              string          `json:"id"`
	Creator         string          `json:"creator"`
	Recipient       string          `json:"recipient"`
	Description     string          `json:"description"`
	Payers          []string        `json:"payers"`
	Amounts         []string        `json:"amounts"`
	TotalAmount     string          `json:"totalAmount"`
	TotalCollected  string          `json:"totalCollected"`
	PaidStatus      map[string]bool `json:"paidStatus"`
	UnpaidPayers    []string        `json:"unpaidPayers"`
	UserAmount      string          `json:"userAmount,omitempty"`
	UserContributed bool            `json:"userContributed"`
}

type requestsResponse struct {
	AsPayer   []paymentRequestView `json:"asPayer"`
	AsCreator []paymentRequestView `json:"asCreator"`
}

func requestView(req recon.PaymentRequest) paymentRequestView {
	payers := make([]string, len(req.Payers))
	for i, p := range req.Payers {
		payers[i] = string(p)
	}
	amounts := make([]string, len(req.Amounts))
	for i, a := range req.Amounts {
		amounts[i] = coin.ToSUI(a).String()
	}
	paid := make(map[string]bool, len(req.PaidStatus))
	for addr, ok := range req.PaidStatus {
		paid[string(addr)] = ok
	}
	unpaid := make([]string, len(req.UnpaidPayers))
	for i, p := range req.UnpaidPayers {
		unpaid[i] = string(p)
	}

	view := paymentRequestView{
		ID:              string(req.ID),
		Creator:         string(req.Creator),
		Recipient:       string(req.Recipient),
		Description:     req.Description,
		Payers:          payers,
		Amounts:         amounts,
		TotalAmount:     coin.ToSUI(req.TotalAmount).String(),
		TotalCollected:  coin.ToSUI(req.TotalCollected).String(),
		PaidStatus:      paid,
		UnpaidPayers:    unpaid,
		UserContributed: req.UserContributed,
	}
	if req.IsPayer {
		view.UserAmount = coin.ToSUI(req.UserAmount).String()
	}
	return view
}

// getRequests runs a reconciliation pass for the address, archives it,
// publishes change notifications against the previous pass and returns
// the fresh view.
func (h *handler) getRequests(c *gin.Context) {
	addr := ledger.Address(c.Param("address"))

	result, err := h.svc.Reconciler.Reconcile(c.Request.Context(), addr)
	if err != nil {
		h.svc.Log.Error("reconciliation failed", zap.String("address", string(addr)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read ledger state"})
		return
	}

	h.publishChanges(addr, result)
	h.archivePass(addr, result)

	resp := requestsResponse{
		AsPayer:   make([]paymentRequestView, 0, len(result.AsPayer)),
		AsCreator: make([]paymentRequestView, 0, len(result.AsCreator)),
	}
	for _, req := range result.AsPayer {
		resp.AsPayer = append(resp.AsPayer, requestView(req))
	}
	for _, req := range result.AsCreator {
		resp.AsCreator = append(resp.AsCreator, requestView(req))
	}
	c.JSON(http.StatusOK, resp)
}

// publishChanges diffs against the previous in-memory pass for the
// address and emits one message per changed request. The later pass
// always replaces the stored one, even when diffing fails.
func (h *handler) publishChanges(addr ledger.Address, result *recon.Result) {
	h.mu.Lock()
	prev, hadPrev := h.lastPass[addr]
	h.lastPass[addr] = result
	h.mu.Unlock()

	if h.svc.Notifier == nil || !hadPrev {
		return
	}

	changes, err := recon.DiffResults(prev, result)
	if err != nil {
		h.svc.Log.Warn("change detection failed", zap.String("address", string(addr)), zap.Error(err))
		return
	}
	h.publishChangeSet(addr, notify.ChangeCreated, changes.Created)
	h.publishChangeSet(addr, notify.ChangeUpdated, changes.Updated)
	h.publishChangeSet(addr, notify.ChangeRemoved, changes.Removed)
}

func (h *handler) publishChangeSet(addr ledger.Address, change notify.Change, ids []ledger.ObjectID) {
	queue := h.svc.Notifier.GetRequestChangeMessageQueue(change)
	if queue == nil {
		return
	}
	for _, id := range ids {
		err := queue.Publish(notify.RequestChangeMessage{
			Address:   addr,
			RequestID: id,
			Change:    change,
		})
		if err != nil {
			h.svc.Log.Warn("failed to publish request change",
				zap.String("request", string(id)), zap.Error(err))
		}
	}
}

func (h *handler) archivePass(addr ledger.Address, result *recon.Result) {
	if h.svc.Archive == nil {
		return
	}
	pass := store.NewPassFromResult(addr, result)
	if err := h.svc.Archive.SavePass(pass); err != nil {
		h.svc.Log.Warn("failed to archive pass", zap.String("address", string(addr)), zap.Error(err))
	}
}

// getHistory classifies the address's recent transactions and archives
// the result.
func (h *handler) getHistory(c *gin.Context) {
	addr := ledger.Address(c.Param("address"))

	history, err := h.svc.Client.QueryTransactionHistory(c.Request.Context(), addr, h.svc.Config.HistoryPageLimit)
	if err != nil {
		h.svc.Log.Error("history query failed", zap.String("address", string(addr)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read transaction history"})
		return
	}

	classified := h.svc.Classifier.Classify(history)
	if h.svc.Archive != nil {
		if err := h.svc.Archive.SaveTransactions(addr, store.NewArchivedTransactions(addr, classified)); err != nil {
			h.svc.Log.Warn("failed to archive history", zap.String("address", string(addr)), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": classified})
}

type multiSendRequest struct {
	Sender     ledger.Address     `json:"sender" binding:"required"`
	Recipients []submit.Recipient `json:"recipients" binding:"required"`
}

func (h *handler) postMultiSend(c *gin.Context) {
	var req multiSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.svc.Submitter.MultiSend(c.Request.Context(), req.Sender, req.Recipients)
	h.respondOutcome(c, outcome, err)
}

type createGroupPaymentRequest struct {
	Sender      ledger.Address     `json:"sender" binding:"required"`
	Payers      []submit.Recipient `json:"payers" binding:"required"`
	Recipient   ledger.Address     `json:"recipient" binding:"required"`
	Description string             `json:"description"`
}

func (h *handler) postCreateGroupPayment(c *gin.Context) {
	var req createGroupPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.svc.Submitter.CreateGroupPayment(c.Request.Context(), req.Sender, req.Payers, req.Recipient, req.Description)
	h.respondOutcome(c, outcome, err)
}

type contributeRequest struct {
	Sender ledger.Address `json:"sender" binding:"required"`
	Amount string         `json:"amount" binding:"required"`
}

func (h *handler) postContribute(c *gin.Context) {
	var req contributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := ledger.ObjectID(c.Param("id"))
	outcome, err := h.svc.Submitter.Contribute(c.Request.Context(), req.Sender, requestID, req.Amount)
	h.respondOutcome(c, outcome, err)
}

type manageRequest struct {
	Sender ledger.Address `json:"sender" binding:"required"`
}

func (h *handler) postManualRelease(c *gin.Context) {
	var req manageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.svc.Submitter.ManualRelease(c.Request.Context(), req.Sender, ledger.ObjectID(c.Param("id")))
	h.respondOutcome(c, outcome, err)
}

func (h *handler) postCancel(c *gin.Context) {
	var req manageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.svc.Submitter.CancelAndRefund(c.Request.Context(), req.Sender, ledger.ObjectID(c.Param("id")))
	h.respondOutcome(c, outcome, err)
}

func (h *handler) respondOutcome(c *gin.Context, outcome *ledger.ExecutionOutcome, err error) {
	if err != nil {
		status := http.StatusBadGateway
		var validation submit.ValidationError
		switch {
		case errors.As(err, &validation),
			errors.Is(err, coin.ErrInvalidAmount):
			status = http.StatusBadRequest
		case errors.Is(err, coin.ErrInsufficientFunds):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"digest": outcome.Digest,
		"status": outcome.Status,
		"error":  outcome.Error,
	})
}

func (h *handler) getArchivedRequests(c *gin.Context) {
	if h.svc.Archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive not configured"})
		return
	}
	addr := ledger.Address(c.Param("address"))
	pass, err := h.svc.Archive.LatestPass(addr)
	if err != nil {
		h.svc.Log.Error("archive read failed", zap.String("address", string(addr)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read archive"})
		return
	}
	if pass == nil {
		c.JSON(http.StatusOK, gin.H{"pass": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

func (h *handler) getArchivedHistory(c *gin.Context) {
	if h.svc.Archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive not configured"})
		return
	}
	addr := ledger.Address(c.Param("address"))
	txs, err := h.svc.Archive.GetTransactions(addr, h.svc.Config.HistoryPageLimit)
	if err != nil {
		h.svc.Log.Error("archive read failed", zap.String("address", string(addr)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read archive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
