// Package submit builds and submits the application's write operations
// against the ledger.
package submit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"splitsui/coin"
	"splitsui/ledger/ledger"
	"splitsui/notify/notify"
)

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrNoRecipients   ValidationError = "at least one recipient is required"
	ErrBadAddress     ValidationError = "recipient address is not a valid ledger address"
	ErrEmptyRequestID ValidationError = "request id is required"
	ErrEmptyRecipient ValidationError = "recipient address is required"
)

// DefaultDescription is used when a group payment is created without one.
const DefaultDescription = "Group payment"

// Recipient pairs an address with a human-entered decimal amount.
type Recipient struct {
	Address ledger.Address `json:"address"`
	Amount  string         `json:"amount"`
}

// Config carries the chain-level constants every operation shares.
type Config struct {
	PackageID  string
	CoinType   string
	GasBudget  uint64
	FeeReserve coin.Mist
}

// Service prepares, submits and reports the five write operations.
// It never retries: a failed submission surfaces to the caller and the
// outcome queue, and the user decides what to do next.
type Service struct {
	client   ledger.Client
	outcomes notify.OutcomeMessageQueue
	cfg      Config
	log      *zap.Logger
}

func NewService(client ledger.Client, outcomes notify.OutcomeMessageQueue, cfg Config, log *zap.Logger) *Service {
	return &Service{
		client:   client,
		outcomes: outcomes,
		cfg:      cfg,
		log:      log,
	}
}

// MultiSend sends funds to several recipients in one batched call,
// funded by a single selected coin.
func (s *Service) MultiSend(ctx context.Context, sender ledger.Address, recipients []Recipient) (*ledger.ExecutionOutcome, error) {
	addresses, amounts, total, err := validateRecipients(recipients)
	if err != nil {
		return nil, err
	}

	funding, err := s.selectFunding(ctx, sender, total)
	if err != nil {
		return nil, err
	}

	call := &ledger.OperationCall{
		Sender: sender,
		Target: s.cfg.PackageID + "::split_sui::multi_send_sui",
		Arguments: []ledger.CallArg{
			ledger.ObjectArg(ledger.ObjectID(funding.ObjectID)),
			ledger.PureArg(addresses),
			ledger.PureArg(mistStrings(amounts)),
		},
		GasBudget: s.cfg.GasBudget,
	}
	return s.execute(ctx, sender, "Multi-Send", call)
}

// CreateGroupPayment creates a shared payment request naming each payer
// and what they owe. No funding coin is needed; payers contribute later.
func (s *Service) CreateGroupPayment(ctx context.Context, sender ledger.Address, payers []Recipient, recipient ledger.Address, description string) (*ledger.ExecutionOutcome, error) {
	addresses, amounts, _, err := validateRecipients(payers)
	if err != nil {
		return nil, err
	}
	if recipient == "" {
		return nil, ErrEmptyRecipient
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}

	call := &ledger.OperationCall{
		Sender: sender,
		Target: s.cfg.PackageID + "::group_payment::create_group_payment",
		Arguments: []ledger.CallArg{
			ledger.PureArg(addresses),
			ledger.PureArg(mistStrings(amounts)),
			ledger.PureArg(string(recipient)),
			ledger.PureArg(descriptionBytes(description)),
		},
		TypeArguments: []string{s.cfg.CoinType},
		GasBudget:     s.cfg.GasBudget,
	}
	return s.execute(ctx, sender, "Create Group Payment", call)
}

// Contribute pays the sender's share into a payment request, splitting
// the exact amount off a selected funding coin inside the transaction.
func (s *Service) Contribute(ctx context.Context, sender ledger.Address, requestID ledger.ObjectID, amount string) (*ledger.ExecutionOutcome, error) {
	if requestID == "" {
		return nil, ErrEmptyRequestID
	}
	mist, err := coin.ToMist(amount)
	if err != nil {
		return nil, err
	}

	funding, err := s.selectFunding(ctx, sender, mist)
	if err != nil {
		return nil, err
	}

	call := &ledger.OperationCall{
		Sender: sender,
		Target: s.cfg.PackageID + "::group_payment::contribute",
		Arguments: []ledger.CallArg{
			ledger.ObjectArg(requestID),
			ledger.SplitArg(ledger.ObjectID(funding.ObjectID), mist),
		},
		TypeArguments: []string{s.cfg.CoinType},
		GasBudget:     s.cfg.GasBudget,
	}
	return s.execute(ctx, sender, "Contribute to Group Payment", call)
}

// ManualRelease pushes collected funds to the recipient before every
// payer has contributed. Only meaningful for the request's creator; the
// contract enforces that.
func (s *Service) ManualRelease(ctx context.Context, sender ledger.Address, requestID ledger.ObjectID) (*ledger.ExecutionOutcome, error) {
	return s.requestOnlyCall(ctx, sender, requestID, "manual_release", "Manual Release Payment")
}

// CancelAndRefund cancels a request and refunds every contribution made
// so far.
func (s *Service) CancelAndRefund(ctx context.Context, sender ledger.Address, requestID ledger.ObjectID) (*ledger.ExecutionOutcome, error) {
	return s.requestOnlyCall(ctx, sender, requestID, "cancel_and_refund", "Cancel Payment Request")
}

func (s *Service) requestOnlyCall(ctx context.Context, sender ledger.Address, requestID ledger.ObjectID, function, kind string) (*ledger.ExecutionOutcome, error) {
	if requestID == "" {
		return nil, ErrEmptyRequestID
	}
	call := &ledger.OperationCall{
		Sender:    sender,
		Target:    s.cfg.PackageID + "::group_payment::" + function,
		Arguments: []ledger.CallArg{ledger.ObjectArg(requestID)},
		GasBudget: s.cfg.GasBudget,
	}
	return s.execute(ctx, sender, kind, call)
}

// selectFunding lists the sender's coins and picks one that covers the
// amount plus the configured fee reserve.
func (s *Service) selectFunding(ctx context.Context, sender ledger.Address, required coin.Mist) (coin.CoinObject, error) {
	coins, err := s.client.GetOwnedCoins(ctx, sender, s.cfg.CoinType)
	if err != nil {
		return coin.CoinObject{}, fmt.Errorf("list coins for %s: %w", sender, err)
	}
	return coin.SelectFundingCoin(coins, required, s.cfg.FeeReserve)
}

// execute submits the call, publishes the outcome to the sender's queue
// and logs it. Failures publish too; silence on failure is worse than a
// duplicate notification.
func (s *Service) execute(ctx context.Context, sender ledger.Address, kind string, call *ledger.OperationCall) (*ledger.ExecutionOutcome, error) {
	outcome, err := s.client.Submit(ctx, call)
	if err != nil {
		s.log.Error("submission failed",
			zap.String("kind", kind), zap.String("sender", string(sender)), zap.Error(err))
		s.publishOutcome(notify.OutcomeMessage{
			Address: sender,
			Kind:    kind,
			Status:  "failure",
			Reason:  err.Error(),
		})
		return nil, fmt.Errorf("submit %s: %w", kind, err)
	}

	s.log.Info("operation submitted",
		zap.String("kind", kind),
		zap.String("sender", string(sender)),
		zap.String("digest", string(outcome.Digest)),
		zap.String("status", outcome.Status))
	s.publishOutcome(notify.OutcomeMessage{
		Address: sender,
		Kind:    kind,
		Digest:  outcome.Digest,
		Status:  outcome.Status,
		Reason:  outcome.Error,
	})
	return outcome, nil
}

func (s *Service) publishOutcome(msg notify.OutcomeMessage) {
	if s.outcomes == nil {
		return
	}
	if err := s.outcomes.Publish(msg); err != nil {
		s.log.Warn("failed to publish outcome", zap.Error(err))
	}
}

// validateRecipients checks addresses, decodes amounts and totals them.
func validateRecipients(recipients []Recipient) ([]string, []coin.Mist, coin.Mist, error) {
	if len(recipients) == 0 {
		return nil, nil, 0, ErrNoRecipients
	}

	addresses := make([]string, 0, len(recipients))
	amounts := make([]coin.Mist, 0, len(recipients))
	var total coin.Mist
	for _, r := range recipients {
		if !strings.HasPrefix(string(r.Address), "0x") || len(r.Address) < 10 {
			return nil, nil, 0, ErrBadAddress
		}
		mist, err := coin.ToMist(r.Amount)
		if err != nil {
			return nil, nil, 0, err
		}
		if mist > coin.Mist(math.MaxUint64)-total {
			// the sum wraps u64; no coin can fund it
			return nil, nil, 0, fmt.Errorf("%w: recipient amounts overflow u64", coin.ErrInvalidAmount)
		}
		addresses = append(addresses, string(r.Address))
		amounts = append(amounts, mist)
		total += mist
	}
	return addresses, amounts, total, nil
}

// mistStrings renders u64 amounts as decimal strings, keeping them safe
// through JSON encoding.
func mistStrings(amounts []coin.Mist) []string {
	out := make([]string, len(amounts))
	for i, m := range amounts {
		out[i] = strconv.FormatUint(uint64(m), 10)
	}
	return out
}

// descriptionBytes renders the description as the number array the
// contract's vector<u8> parameter expects.
func descriptionBytes(description string) []int {
	raw := []byte(description)
	out := make([]int, len(raw))
	for i, b := range raw {
		out[i] = int(b)
	}
	return out
}
