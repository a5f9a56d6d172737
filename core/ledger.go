package core

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"tokenledger/core/state"
	"tokenledger/core/types"
	"tokenledger/observability/metrics"
	"tokenledger/storage"
)

// Parameter defaults. The transaction window bounds both client-timestamp
// validation and fingerprint retention; the drift absorbs client clock skew.
const (
	DefaultTxWindow       uint64 = uint64(24 * time.Hour)
	DefaultPermittedDrift uint64 = uint64(2 * time.Minute)
	DefaultMaxPageSize    uint64 = 100
	DefaultMaxMemoLength  int    = 32
	DefaultDedupCapacity  int    = 100_000
)

// Params configures a ledger instance. Token metadata is persisted on first
// initialisation and the stored copy is authoritative afterwards.
type Params struct {
	TokenName      string
	TokenSymbol    string
	Decimals       uint8
	TransferFee    *big.Int
	MinBurnAmount  *big.Int // defaults to the transfer fee
	MintingAccount types.Account
	TxWindow       uint64 // nanoseconds
	PermittedDrift uint64 // nanoseconds
	MaxMemoLength  int
	MaxPageSize    uint64
	DedupCapacity  int
}

func (p Params) withDefaults() Params {
	out := p
	if out.TransferFee == nil {
		out.TransferFee = big.NewInt(0)
	}
	if out.MinBurnAmount == nil {
		out.MinBurnAmount = new(big.Int).Set(out.TransferFee)
	}
	if out.TxWindow == 0 {
		out.TxWindow = DefaultTxWindow
	}
	if out.PermittedDrift == 0 {
		out.PermittedDrift = DefaultPermittedDrift
	}
	if out.MaxMemoLength == 0 {
		out.MaxMemoLength = DefaultMaxMemoLength
	}
	if out.MaxPageSize == 0 {
		out.MaxPageSize = DefaultMaxPageSize
	}
	if out.DedupCapacity == 0 {
		out.DedupCapacity = DefaultDedupCapacity
	}
	return out
}

func (p Params) validate() error {
	if strings.TrimSpace(p.TokenName) == "" {
		return fmt.Errorf("ledger: token name required")
	}
	if strings.TrimSpace(p.TokenSymbol) == "" {
		return fmt.Errorf("ledger: token symbol required")
	}
	if p.TransferFee.Sign() < 0 {
		return fmt.Errorf("ledger: transfer fee must be non-negative")
	}
	if p.MinBurnAmount.Sign() < 0 {
		return fmt.Errorf("ledger: min burn amount must be non-negative")
	}
	if len(p.MintingAccount.Owner) == 0 {
		return fmt.Errorf("ledger: minting account required")
	}
	return nil
}

// Ledger is the single authority over the token state: it validates every
// state-changing call, applies it atomically against balances, allowances and
// supply, and appends the resulting block. Mutations take the write lock;
// read-only queries share the read lock and therefore observe committed
// snapshots only.
type Ledger struct {
	mu      sync.RWMutex
	params  Params
	meta    *state.TokenMetadata
	minting types.Account
	state   *state.Manager
	log     *BlockLog
	dedup   *dedupCache

	// lastTimestamp keeps ledger-assigned timestamps monotonic even if the
	// wall clock steps backwards, which the dedup rebuild relies on.
	lastTimestamp uint64
	now           func() uint64
}

// Option adjusts ledger construction.
type Option func(*Ledger)

// WithClock overrides the ledger time source (nanoseconds).
func WithClock(now func() uint64) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger opens a ledger over the provided database, restoring persisted
// state and rebuilding the deduplication window from the hot tail of the log.
func NewLedger(db storage.Database, params Params, opts ...Option) (*Ledger, error) {
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}
	params.MintingAccount = params.MintingAccount.Normalize()

	log, err := NewBlockLog(db)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		params: params,
		state:  state.NewManager(db),
		log:    log,
		dedup:  newDedupCache(params.TxWindow, params.DedupCapacity),
		now:    func() uint64 { return uint64(time.Now().UnixNano()) },
	}
	for _, opt := range opts {
		opt(l)
	}

	meta, err := l.state.TokenMetadata()
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = &state.TokenMetadata{
			Name:     params.TokenName,
			Symbol:   params.TokenSymbol,
			Decimals: params.Decimals,
			Fee:      new(big.Int).Set(params.TransferFee),
		}
		if err := l.state.SetTokenMetadata(meta); err != nil {
			return nil, err
		}
	}
	l.meta = meta

	minting, err := l.state.MintingAccount()
	if err != nil {
		return nil, err
	}
	if minting == nil {
		if err := l.state.SetMintingAccount(params.MintingAccount); err != nil {
			return nil, err
		}
		account := params.MintingAccount
		minting = &account
	}
	l.minting = *minting

	if err := l.rebuildDedup(); err != nil {
		return nil, err
	}
	l.publishGauges()
	return l, nil
}

// rebuildDedup restores the fingerprint window from the hot tail so restarts
// keep rejecting (idempotently answering) recent resubmissions. Timestamps
// are monotonic, so the backward scan can stop at the first record outside
// the window.
func (l *Ledger) rebuildDedup() error {
	length := l.log.Length()
	if length == 0 {
		return nil
	}
	now := l.now()
	cutoff := uint64(0)
	if now > l.params.TxWindow {
		cutoff = now - l.params.TxWindow
	}
	start := l.log.ArchivedUpTo()
	first := length
	for i := length; i > start; i-- {
		block, err := l.log.Block(i - 1)
		if err != nil {
			return err
		}
		if i == length {
			l.lastTimestamp = block.Record.Timestamp
		}
		if block.Record.Timestamp < cutoff {
			break
		}
		first = i - 1
	}
	for i := first; i < length; i++ {
		block, err := l.log.Block(i)
		if err != nil {
			return err
		}
		if fp, ok := RecordFingerprint(block.Record); ok {
			l.dedup.Remember(fp, block.Index, block.Record.Timestamp)
		}
	}
	return nil
}

// publishGauges is best-effort: the gauges are advisory, and a failed supply
// read must never turn a committed operation into a reported failure.
func (l *Ledger) publishGauges() {
	m := metrics.Ledger()
	if supply, err := l.state.Supply(); err == nil {
		circulating, _ := new(big.Float).SetInt(supply.Circulating()).Float64()
		m.SetCirculatingSupply(circulating)
	}
	m.SetLogLength(l.log.Length())
	m.SetDedupRetained(l.dedup.Len())
}

// tick assigns the ledger timestamp for a record being committed.
func (l *Ledger) tick(now uint64) uint64 {
	if now < l.lastTimestamp {
		now = l.lastTimestamp
	}
	l.lastTimestamp = now
	return now
}

func (l *Ledger) pruneLocked(now uint64) {
	pruned := l.dedup.Prune(now)
	m := metrics.Ledger()
	m.DedupPruned(pruned)
	m.SetDedupRetained(l.dedup.Len())
}

// commit appends the record, retains its fingerprint, and publishes gauges.
func (l *Ledger) commit(record *types.TransactionRecord) (uint64, error) {
	index, err := l.log.Append(record)
	if err != nil {
		return 0, err
	}
	if fp, ok := RecordFingerprint(record); ok {
		l.dedup.Remember(fp, index, record.Timestamp)
	}
	metrics.Ledger().BlockAppended(record.Kind.String())
	l.publishGauges()
	return index, nil
}

// checkDuplicate answers a resubmission with the original block index. The
// second return value reports a hit.
func (l *Ledger) checkDuplicate(record *types.TransactionRecord) (uint64, bool, error) {
	fp, ok := RecordFingerprint(record)
	if !ok {
		return 0, false, nil
	}
	if index, hit := l.dedup.Lookup(fp); hit {
		metrics.Ledger().DedupHit()
		return index, true, nil
	}
	if l.dedup.Full() {
		return 0, false, &TemporarilyUnavailableError{}
	}
	return 0, false, nil
}

func (l *Ledger) checkCreatedAt(createdAt *uint64, now uint64) error {
	if createdAt == nil {
		return nil
	}
	if *createdAt > now+l.params.PermittedDrift {
		return &CreatedInFutureError{LedgerTime: now}
	}
	if *createdAt+l.params.TxWindow < now {
		return &TooOldError{}
	}
	return nil
}

func (l *Ledger) checkMemo(memo []byte) error {
	if len(memo) > l.params.MaxMemoLength {
		return errInvalidRequest(fmt.Sprintf("memo exceeds %d bytes", l.params.MaxMemoLength))
	}
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errInvalidRequest("amount must be a non-negative integer")
	}
	return nil
}

// resolveFee resolves the fee for fee-bearing transfers: an absent fee means
// the configured fee, an explicit fee must match it exactly.
func (l *Ledger) resolveFee(supplied *big.Int) (*big.Int, error) {
	expected := l.meta.Fee
	if supplied == nil {
		return new(big.Int).Set(expected), nil
	}
	if supplied.Cmp(expected) != 0 {
		return nil, &BadFeeError{ExpectedFee: new(big.Int).Set(expected)}
	}
	return new(big.Int).Set(supplied), nil
}

// resolveApprovalFee resolves the fee for approvals, which deduct a fee only
// when the caller explicitly supplies one; a supplied fee must still match
// the configured fee.
func (l *Ledger) resolveApprovalFee(supplied *big.Int) (*big.Int, error) {
	if supplied == nil {
		return big.NewInt(0), nil
	}
	if supplied.Cmp(l.meta.Fee) != 0 {
		return nil, &BadFeeError{ExpectedFee: new(big.Int).Set(l.meta.Fee)}
	}
	return new(big.Int).Set(supplied), nil
}

// rejectionReason labels an error for the rejection counter.
func rejectionReason(err error) string {
	var (
		badFee      *BadFeeError
		funds       *InsufficientFundsError
		allowance   *InsufficientAllowanceError
		changed     *AllowanceChangedError
		expired     *AllowanceExpiredError
		tooOld      *TooOldError
		future      *CreatedInFutureError
		badBurn     *BadBurnError
		unavailable *TemporarilyUnavailableError
		generic     *LedgerError
	)
	switch {
	case errors.As(err, &badFee):
		return "bad_fee"
	case errors.As(err, &funds):
		return "insufficient_funds"
	case errors.As(err, &allowance):
		return "insufficient_allowance"
	case errors.As(err, &changed):
		return "allowance_changed"
	case errors.As(err, &expired):
		return "expired"
	case errors.As(err, &tooOld):
		return "too_old"
	case errors.As(err, &future):
		return "created_in_future"
	case errors.As(err, &badBurn):
		return "bad_burn"
	case errors.As(err, &unavailable):
		return "unavailable"
	case errors.As(err, &generic):
		if generic.Code == CodeUnauthorized {
			return "unauthorized"
		}
		return "invalid_request"
	default:
		return "internal"
	}
}

// --- Public operations ---

// TransferArgs describes a direct transfer: the source is the caller's
// account, optionally narrowed to a subaccount.
type TransferArgs struct {
	FromSubaccount *[types.SubaccountLength]byte
	To             types.Account
	Amount         *big.Int
	Fee            *big.Int
	Memo           []byte
	CreatedAt      *uint64
}

// Transfer moves amount from the caller's account to the destination,
// charging and burning the ledger fee. Returns the index of the committed
// block.
func (l *Ledger) Transfer(caller []byte, args TransferArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	index, err := l.transferLocked(caller, args, now)
	if err != nil {
		metrics.Ledger().Rejected(rejectionReason(err))
	}
	return index, err
}

func (l *Ledger) transferLocked(caller []byte, args TransferArgs, now uint64) (uint64, error) {
	if len(caller) == 0 {
		return 0, errUnauthorized("caller identity required")
	}
	if err := checkAmount(args.Amount); err != nil {
		return 0, err
	}
	if len(args.To.Owner) == 0 {
		return 0, errInvalidRequest("destination account required")
	}
	if err := l.checkMemo(args.Memo); err != nil {
		return 0, err
	}
	fee, err := l.resolveFee(args.Fee)
	if err != nil {
		return 0, err
	}
	if err := l.checkCreatedAt(args.CreatedAt, now); err != nil {
		return 0, err
	}

	from := types.NewAccount(caller, args.FromSubaccount)
	record := types.NewTransferRecord(types.Transfer{
		From:      from,
		To:        args.To.Normalize(),
		Amount:    new(big.Int).Set(args.Amount),
		Fee:       fee,
		Memo:      append([]byte(nil), args.Memo...),
		CreatedAt: args.CreatedAt,
	}, 0)
	if index, hit, err := l.checkDuplicate(record); err != nil || hit {
		return index, err
	}

	total := new(big.Int).Add(args.Amount, fee)
	balance, err := l.state.Balance(from)
	if err != nil {
		return 0, err
	}
	if balance.Cmp(total) < 0 {
		return 0, &InsufficientFundsError{Balance: balance}
	}

	if err := l.state.Debit(from, total); err != nil {
		return 0, err
	}
	if err := l.state.Credit(record.Transfer.To, args.Amount); err != nil {
		return 0, err
	}
	if fee.Sign() > 0 {
		if err := l.state.AddFeesBurned(fee); err != nil {
			return 0, err
		}
	}
	record.Timestamp = l.tick(now)
	return l.commit(record)
}

// ApproveArgs describes a spending grant from the caller's account.
type ApproveArgs struct {
	FromSubaccount    *[types.SubaccountLength]byte
	Spender           types.Account
	Amount            *big.Int
	ExpectedAllowance *big.Int
	ExpiresAt         *uint64
	Fee               *big.Int
	Memo              []byte
	CreatedAt         *uint64
}

// Approve replaces the allowance from the caller's account to the spender.
// When ExpectedAllowance is supplied the call succeeds only if it matches the
// stored allowance, preventing lost-update races between concurrent grants.
func (l *Ledger) Approve(caller []byte, args ApproveArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	index, err := l.approveLocked(caller, args, now)
	if err != nil {
		metrics.Ledger().Rejected(rejectionReason(err))
	}
	return index, err
}

func (l *Ledger) approveLocked(caller []byte, args ApproveArgs, now uint64) (uint64, error) {
	if len(caller) == 0 {
		return 0, errUnauthorized("caller identity required")
	}
	if err := checkAmount(args.Amount); err != nil {
		return 0, err
	}
	if len(args.Spender.Owner) == 0 {
		return 0, errInvalidRequest("spender account required")
	}
	if err := l.checkMemo(args.Memo); err != nil {
		return 0, err
	}
	fee, err := l.resolveApprovalFee(args.Fee)
	if err != nil {
		return 0, err
	}
	if err := l.checkCreatedAt(args.CreatedAt, now); err != nil {
		return 0, err
	}

	from := types.NewAccount(caller, args.FromSubaccount)
	spender := args.Spender.Normalize()
	record := types.NewApproveRecord(types.Approve{
		From:              from,
		Spender:           spender,
		Amount:            new(big.Int).Set(args.Amount),
		ExpectedAllowance: args.ExpectedAllowance,
		ExpiresAt:         args.ExpiresAt,
		Fee:               feeOrNil(fee),
		Memo:              append([]byte(nil), args.Memo...),
		CreatedAt:         args.CreatedAt,
	}, 0)
	if index, hit, err := l.checkDuplicate(record); err != nil || hit {
		return index, err
	}

	if fee.Sign() > 0 {
		balance, err := l.state.Balance(from)
		if err != nil {
			return 0, err
		}
		if balance.Cmp(fee) < 0 {
			return 0, &InsufficientFundsError{Balance: balance}
		}
	}
	current, err := l.state.Allowance(from, spender, now)
	if err != nil {
		return 0, err
	}
	if args.ExpectedAllowance != nil && args.ExpectedAllowance.Cmp(current.Amount) != 0 {
		return 0, &AllowanceChangedError{CurrentAllowance: current.Amount}
	}
	if args.ExpiresAt != nil && *args.ExpiresAt < now {
		return 0, &AllowanceExpiredError{LedgerTime: now}
	}

	if fee.Sign() > 0 {
		if err := l.state.Debit(from, fee); err != nil {
			return 0, err
		}
		if err := l.state.AddFeesBurned(fee); err != nil {
			return 0, err
		}
	}
	if err := l.state.SetAllowance(from, spender, state.Allowance{
		Amount:    new(big.Int).Set(args.Amount),
		ExpiresAt: args.ExpiresAt,
	}); err != nil {
		return 0, err
	}
	record.Timestamp = l.tick(now)
	return l.commit(record)
}

// TransferFromArgs describes a delegated transfer executed by the caller as
// spender against a previously approved allowance.
type TransferFromArgs struct {
	SpenderSubaccount *[types.SubaccountLength]byte
	From              types.Account
	To                types.Account
	Amount            *big.Int
	Fee               *big.Int
	Memo              []byte
	CreatedAt         *uint64
}

// TransferFrom moves amount from the owner account to the destination on the
// spender's authority, consuming amount plus fee from the allowance. The
// allowance check runs before the balance check: when both are short the more
// specific authorization failure is reported.
func (l *Ledger) TransferFrom(caller []byte, args TransferFromArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	index, err := l.transferFromLocked(caller, args, now)
	if err != nil {
		metrics.Ledger().Rejected(rejectionReason(err))
	}
	return index, err
}

func (l *Ledger) transferFromLocked(caller []byte, args TransferFromArgs, now uint64) (uint64, error) {
	if len(caller) == 0 {
		return 0, errUnauthorized("caller identity required")
	}
	if err := checkAmount(args.Amount); err != nil {
		return 0, err
	}
	if len(args.From.Owner) == 0 || len(args.To.Owner) == 0 {
		return 0, errInvalidRequest("source and destination accounts required")
	}
	if err := l.checkMemo(args.Memo); err != nil {
		return 0, err
	}
	fee, err := l.resolveFee(args.Fee)
	if err != nil {
		return 0, err
	}
	if err := l.checkCreatedAt(args.CreatedAt, now); err != nil {
		return 0, err
	}

	spender := types.NewAccount(caller, args.SpenderSubaccount)
	from := args.From.Normalize()
	record := types.NewTransferRecord(types.Transfer{
		From:      from,
		To:        args.To.Normalize(),
		Spender:   &spender,
		Amount:    new(big.Int).Set(args.Amount),
		Fee:       fee,
		Memo:      append([]byte(nil), args.Memo...),
		CreatedAt: args.CreatedAt,
	}, 0)
	if index, hit, err := l.checkDuplicate(record); err != nil || hit {
		return index, err
	}

	total := new(big.Int).Add(args.Amount, fee)
	allowance, err := l.state.Allowance(from, spender, now)
	if err != nil {
		return 0, err
	}
	if allowance.Amount.Cmp(total) < 0 {
		return 0, &InsufficientAllowanceError{Allowance: allowance.Amount}
	}
	balance, err := l.state.Balance(from)
	if err != nil {
		return 0, err
	}
	if balance.Cmp(total) < 0 {
		return 0, &InsufficientFundsError{Balance: balance}
	}

	if err := l.state.ConsumeAllowance(from, spender, total, now); err != nil {
		return 0, err
	}
	if err := l.state.Debit(from, total); err != nil {
		return 0, err
	}
	if err := l.state.Credit(record.Transfer.To, args.Amount); err != nil {
		return 0, err
	}
	if fee.Sign() > 0 {
		if err := l.state.AddFeesBurned(fee); err != nil {
			return 0, err
		}
	}
	record.Timestamp = l.tick(now)
	return l.commit(record)
}

// MintArgs describes supply creation credited to a destination account.
type MintArgs struct {
	To        types.Account
	Amount    *big.Int
	Memo      []byte
	CreatedAt *uint64
}

// Mint credits newly created supply. Only the minting account may call it;
// mints are fee-exempt.
func (l *Ledger) Mint(caller []byte, args MintArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	index, err := l.mintLocked(caller, args, now)
	if err != nil {
		metrics.Ledger().Rejected(rejectionReason(err))
	}
	return index, err
}

func (l *Ledger) mintLocked(caller []byte, args MintArgs, now uint64) (uint64, error) {
	if !bytes.Equal(caller, l.minting.Owner) {
		return 0, errUnauthorized("only the minting account can mint tokens")
	}
	if err := checkAmount(args.Amount); err != nil {
		return 0, err
	}
	if len(args.To.Owner) == 0 {
		return 0, errInvalidRequest("destination account required")
	}
	if err := l.checkMemo(args.Memo); err != nil {
		return 0, err
	}
	if err := l.checkCreatedAt(args.CreatedAt, now); err != nil {
		return 0, err
	}

	record := types.NewMintRecord(types.Mint{
		To:        args.To.Normalize(),
		Amount:    new(big.Int).Set(args.Amount),
		Memo:      append([]byte(nil), args.Memo...),
		CreatedAt: args.CreatedAt,
	}, 0)
	if index, hit, err := l.checkDuplicate(record); err != nil || hit {
		return index, err
	}

	if err := l.state.Credit(record.Mint.To, args.Amount); err != nil {
		return 0, err
	}
	if err := l.state.AddMinted(args.Amount); err != nil {
		return 0, err
	}
	record.Timestamp = l.tick(now)
	return l.commit(record)
}

// BurnArgs describes supply removal from a source account.
type BurnArgs struct {
	From      types.Account
	Amount    *big.Int
	Memo      []byte
	CreatedAt *uint64
}

// Burn removes amount from circulation. The caller must own the source
// account, or hold a sufficient allowance for a delegated burn; burns are
// fee-exempt but must meet the minimum burn amount.
func (l *Ledger) Burn(caller []byte, args BurnArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	index, err := l.burnLocked(caller, args, now)
	if err != nil {
		metrics.Ledger().Rejected(rejectionReason(err))
	}
	return index, err
}

func (l *Ledger) burnLocked(caller []byte, args BurnArgs, now uint64) (uint64, error) {
	if len(caller) == 0 {
		return 0, errUnauthorized("caller identity required")
	}
	if err := checkAmount(args.Amount); err != nil {
		return 0, err
	}
	if len(args.From.Owner) == 0 {
		return 0, errInvalidRequest("source account required")
	}
	if err := l.checkMemo(args.Memo); err != nil {
		return 0, err
	}
	if err := l.checkCreatedAt(args.CreatedAt, now); err != nil {
		return 0, err
	}

	from := args.From.Normalize()
	delegated := !bytes.Equal(caller, from.Owner)
	var spender *types.Account
	if delegated {
		acct := types.NewAccount(caller, nil)
		spender = &acct
	}

	if args.Amount.Cmp(l.params.MinBurnAmount) < 0 {
		return 0, &BadBurnError{MinBurnAmount: new(big.Int).Set(l.params.MinBurnAmount)}
	}

	record := types.NewBurnRecord(types.Burn{
		From:      from,
		Spender:   spender,
		Amount:    new(big.Int).Set(args.Amount),
		Memo:      append([]byte(nil), args.Memo...),
		CreatedAt: args.CreatedAt,
	}, 0)
	if index, hit, err := l.checkDuplicate(record); err != nil || hit {
		return index, err
	}

	if delegated {
		allowance, err := l.state.Allowance(from, *spender, now)
		if err != nil {
			return 0, err
		}
		if allowance.Amount.Cmp(args.Amount) < 0 {
			return 0, &InsufficientAllowanceError{Allowance: allowance.Amount}
		}
	}
	balance, err := l.state.Balance(from)
	if err != nil {
		return 0, err
	}
	if balance.Cmp(args.Amount) < 0 {
		return 0, &InsufficientFundsError{Balance: balance}
	}

	if delegated {
		if err := l.state.ConsumeAllowance(from, *spender, args.Amount, now); err != nil {
			return 0, err
		}
	}
	if err := l.state.Debit(from, args.Amount); err != nil {
		return 0, err
	}
	if err := l.state.AddBurned(args.Amount); err != nil {
		return 0, err
	}
	record.Timestamp = l.tick(now)
	return l.commit(record)
}

// UpdateMintingAccount rotates the minting authority to a new account. Only
// the current minting account may call it; the rotation is persisted and
// takes effect immediately, without appending a block.
func (l *Ledger) UpdateMintingAccount(caller []byte, account types.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.updateMintingAccountLocked(caller, account)
	if err != nil {
		metrics.Ledger().Rejected(rejectionReason(err))
	}
	return err
}

func (l *Ledger) updateMintingAccountLocked(caller []byte, account types.Account) error {
	if !bytes.Equal(caller, l.minting.Owner) {
		return errUnauthorized("only the minting account can rotate the minting account")
	}
	if len(account.Owner) == 0 {
		return errInvalidRequest("minting account required")
	}
	account = account.Normalize()
	if err := l.state.SetMintingAccount(account); err != nil {
		return err
	}
	l.minting = account
	return nil
}

// MigrateToArchive records that blocks below upTo now live in the archive
// identified by callback, and releases them from primary storage. This is an
// administrative operation: copying the range to the archive happens outside
// the core before calling it.
func (l *Ledger) MigrateToArchive(upTo uint64, callback ArchiveCallback) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.log.MigrateToArchive(upTo, callback)
}

func feeOrNil(fee *big.Int) *big.Int {
	if fee == nil || fee.Sign() == 0 {
		return nil
	}
	return fee
}
