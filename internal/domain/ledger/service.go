package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/domain/account"
	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/cache"
	"github.com/famfin/famfin-api/internal/pkg/database"
	"github.com/famfin/famfin-api/internal/pkg/metrics"
)

const walletActivityLimit = 20

// AccountStore is the get-or-create the ledger needs from the account package.
type AccountStore interface {
	EnsureAccount(ctx context.Context, q database.Querier, ownerID uuid.UUID, name string, typ account.Type) (uuid.UUID, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]account.Account, error)
}

// Members resolves family membership for permission checks.
type Members interface {
	MemberOf(ctx context.Context, familyID, id uuid.UUID) (*user.User, error)
}

// Service is the Ledger Engine: balanced transactions in, derived balances out.
type Service struct {
	repo     Repository
	accounts AccountStore
	members  Members
	tx       database.TxRunner
	cache    *cache.Cache
}

func NewService(repo Repository, accounts AccountStore, members Members, tx database.TxRunner, c *cache.Cache) *Service {
	return &Service{repo: repo, accounts: accounts, members: members, tx: tx, cache: c}
}

// EnsureWalletAndIncomeAccounts guarantees the Wallet and Chores Income accounts exist.
func (s *Service) EnsureWalletAndIncomeAccounts(ctx context.Context, userID uuid.UUID) (WalletAccounts, error) {
	var accs WalletAccounts
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		accs, err = s.ensureAccounts(ctx, q, userID, account.NameChoresIncome)
		return err
	})
	return accs, err
}

func (s *Service) ensureAccounts(ctx context.Context, q database.Querier, userID uuid.UUID, incomeName string) (WalletAccounts, error) {
	walletID, err := s.accounts.EnsureAccount(ctx, q, userID, account.NameWallet, account.TypeAsset)
	if err != nil {
		return WalletAccounts{}, fmt.Errorf("ensure wallet account: %w", err)
	}
	incomeID, err := s.accounts.EnsureAccount(ctx, q, userID, incomeName, account.TypeRevenue)
	if err != nil {
		return WalletAccounts{}, fmt.Errorf("ensure %s account: %w", incomeName, err)
	}
	return WalletAccounts{WalletID: walletID, IncomeID: incomeID}, nil
}

// CreateTransactionWithPostings writes one transaction and its postings in a
// single database transaction.
func (s *Service) CreateTransactionWithPostings(ctx context.Context, description string, postings []PostingInput, meta Metadata) (uuid.UUID, error) {
	if err := validatePostings(description, postings); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		id, err = s.CreateTransactionTx(ctx, q, description, postings, meta)
		return err
	})
	return id, err
}

// CreateTransactionTx is CreateTransactionWithPostings inside the caller's
// transaction, so a workflow's status change and its postings commit together.
func (s *Service) CreateTransactionTx(ctx context.Context, q database.Querier, description string, postings []PostingInput, meta Metadata) (uuid.UUID, error) {
	if err := validatePostings(description, postings); err != nil {
		return uuid.Nil, err
	}

	raw, err := json.Marshal(meta)
	if err != nil || meta == nil {
		raw = []byte("{}")
	}

	t := &Transaction{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Status:      StatusCleared,
		Metadata:    types.JSONText(raw),
	}
	if err := s.repo.InsertTransaction(ctx, q, t); err != nil {
		return uuid.Nil, err
	}

	rows := make([]Posting, len(postings))
	for i, p := range postings {
		rows[i] = Posting{ID: uuid.New(), TransactionID: t.ID, AccountID: p.AccountID, AmountCents: p.AmountCents}
	}
	if err := s.repo.InsertPostings(ctx, q, rows); err != nil {
		return uuid.Nil, err
	}

	kind := string(KindManual)
	if k, ok := meta["kind"]; ok && k != "" {
		kind = k
	}
	metrics.LedgerTransactions.WithLabelValues(kind).Inc()
	log.Info().
		Str("transaction_id", t.ID.String()).
		Str("kind", kind).
		Int("postings", len(rows)).
		Msg("ledger transaction posted")

	return t.ID, nil
}

func validatePostings(description string, postings []PostingInput) error {
	if strings.TrimSpace(description) == "" {
		metrics.LedgerRejected.WithLabelValues("description").Inc()
		return ErrMissingDescription
	}
	if len(postings) < 2 {
		metrics.LedgerRejected.WithLabelValues("empty").Inc()
		return ErrEmptyPostings
	}
	var sum int64
	for _, p := range postings {
		if p.AccountID == uuid.Nil || p.AmountCents == 0 {
			metrics.LedgerRejected.WithLabelValues("posting").Inc()
			return ErrInvalidPosting
		}
		sum += p.AmountCents
	}
	if sum != 0 {
		metrics.LedgerRejected.WithLabelValues("unbalanced").Inc()
		return fmt.Errorf("%w: off by %d cents", ErrUnbalancedTransaction, sum)
	}
	return nil
}

// GetWalletBalanceCents sums every posting against the user's wallet.
func (s *Service) GetWalletBalanceCents(ctx context.Context, userID uuid.UUID) (int64, error) {
	accs, err := s.EnsureWalletAndIncomeAccounts(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.repo.SumAccount(ctx, accs.WalletID)
}

// GetAccountBalanceCents sums every posting against one account.
func (s *Service) GetAccountBalanceCents(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.SumAccount(ctx, accountID)
}

// Wallet is the cached wallet view (user:{id}:wallet). A child may read only
// their own; a parent may read any child in the family.
func (s *Service) Wallet(ctx context.Context, actor user.Actor, userID uuid.UUID) (*WalletView, error) {
	if err := s.authorizeWallet(ctx, actor, userID); err != nil {
		return nil, err
	}

	return cache.GetOrLoad(ctx, s.cache, cache.UserWalletKey(userID), s.cache.TTLs().Wallet,
		func(ctx context.Context) (*WalletView, error) {
			accs, err := s.EnsureWalletAndIncomeAccounts(ctx, userID)
			if err != nil {
				return nil, err
			}
			balance, err := s.repo.SumAccount(ctx, accs.WalletID)
			if err != nil {
				return nil, err
			}
			activity, err := s.repo.ListAccountActivity(ctx, accs.WalletID, walletActivityLimit)
			if err != nil {
				return nil, err
			}
			return &WalletView{UserID: userID, BalanceCents: balance, RecentActivity: activity}, nil
		})
}

// Accounts lists every account the user owns with its derived balance.
func (s *Service) Accounts(ctx context.Context, actor user.Actor, userID uuid.UUID) ([]AccountBalance, error) {
	if err := s.authorizeWallet(ctx, actor, userID); err != nil {
		return nil, err
	}
	accs, err := s.accounts.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AccountBalance, 0, len(accs))
	for _, a := range accs {
		balance, err := s.repo.SumAccount(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, AccountBalance{Account: a, BalanceCents: balance})
	}
	return out, nil
}

func (s *Service) authorizeWallet(ctx context.Context, actor user.Actor, userID uuid.UUID) error {
	if userID == actor.UserID {
		return nil
	}
	if !actor.IsParent() {
		return ErrForbidden
	}
	if _, err := s.members.MemberOf(ctx, actor.FamilyID, userID); err != nil {
		return ErrForbidden
	}
	return nil
}

// PostChoreReward moves a chore's reward into the child's wallet: Wallet
// +amount, Chores Income -amount. Runs inside the caller's transaction.
func (s *Service) PostChoreReward(ctx context.Context, q database.Querier, childID uuid.UUID, amountCents int64, choreID uuid.UUID, title string) (uuid.UUID, error) {
	if amountCents <= 0 {
		return uuid.Nil, ErrInvalidAmount
	}
	accs, err := s.ensureAccounts(ctx, q, childID, account.NameChoresIncome)
	if err != nil {
		return uuid.Nil, err
	}
	return s.CreateTransactionTx(ctx, q, "Chore reward: "+title, []PostingInput{
		{AccountID: accs.WalletID, AmountCents: amountCents},
		{AccountID: accs.IncomeID, AmountCents: -amountCents},
	}, Metadata{"kind": string(KindChoreReward), "chore_id": choreID.String()})
}

// PostParentTransfer credits a child's wallet from their Allowance Income
// account. Used by allowance grants and approved money requests.
func (s *Service) PostParentTransfer(ctx context.Context, q database.Querier, childID uuid.UUID, amountCents int64, kind Kind, description string, meta Metadata) (uuid.UUID, error) {
	if amountCents <= 0 {
		return uuid.Nil, ErrInvalidAmount
	}
	accs, err := s.ensureAccounts(ctx, q, childID, account.NameAllowanceIncome)
	if err != nil {
		return uuid.Nil, err
	}
	m := Metadata{}
	for k, v := range meta {
		m[k] = v
	}
	m["kind"] = string(kind)
	return s.CreateTransactionTx(ctx, q, description, []PostingInput{
		{AccountID: accs.WalletID, AmountCents: amountCents},
		{AccountID: accs.IncomeID, AmountCents: -amountCents},
	}, m)
}

// InvalidateWallet drops the cached wallet view after a posting commits.
func (s *Service) InvalidateWallet(ctx context.Context, userID uuid.UUID) {
	s.cache.Delete(ctx, cache.UserWalletKey(userID))
}
