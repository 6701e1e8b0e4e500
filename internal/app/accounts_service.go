/**
 * @description
 * This file contains the account overview service: the read side that joins
 * stored bank records with live metadata from the aggregation provider.
 * Fetching metadata for N linked banks is an embarrassingly-parallel fan-out
 * with a join before results are combined; it is the only intra-request
 * parallelism in the core.
 */
package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/internal/store"
	"github.com/horizonbank/horizon-api/pkg/plaidclient"
)

// AccountService assembles account views for the UI.
type AccountService struct {
	aggregation  AggregationClient
	banks        store.BankRepository
	transactions store.TransactionRepository
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(aggregation AggregationClient, banks store.BankRepository, transactions store.TransactionRepository) *AccountService {
	return &AccountService{
		aggregation:  aggregation,
		banks:        banks,
		transactions: transactions,
	}
}

// GetAccounts returns every linked account for the user with its current
// balance, plus the combined balance. Provider fetches run concurrently, one
// per linked bank, and are joined before the overview is built.
func (s *AccountService) GetAccounts(ctx context.Context, userID string) (*domain.AccountsOverview, error) {
	banks, err := s.banks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, len(banks))
	errs := make([]error, len(banks))

	var wg sync.WaitGroup
	for i := range banks {
		wg.Add(1)
		go func(i int, bank domain.BankAccount) {
			defer wg.Done()
			account, err := s.fetchAccount(ctx, bank)
			if err != nil {
				errs[i] = err
				return
			}
			accounts[i] = *account
		}(i, banks[i])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	overview := &domain.AccountsOverview{
		Accounts:   accounts,
		TotalBanks: len(accounts),
	}
	for _, account := range accounts {
		overview.TotalCurrentBalance += account.CurrentBalance
	}
	return overview, nil
}

// GetAccount returns a single linked account with its transaction history.
// An unknown account id, and an account owned by someone other than the
// caller, both return (nil, nil, nil); the caller cannot tell the two apart.
func (s *AccountService) GetAccount(ctx context.Context, userID, accountID string) (*domain.Account, []domain.Transaction, error) {
	bank, err := s.banks.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if bank == nil || bank.UserID != userID {
		return nil, nil, nil
	}

	account, err := s.fetchAccount(ctx, *bank)
	if err != nil {
		return nil, nil, err
	}

	transactions, err := s.transactions.ListByBankID(ctx, bank.BankID)
	if err != nil {
		return nil, nil, err
	}
	return account, transactions, nil
}

// fetchAccount loads provider metadata for one stored bank record and merges
// the two into the client-facing account view.
func (s *AccountService) fetchAccount(ctx context.Context, bank domain.BankAccount) (*domain.Account, error) {
	providerAccounts, err := s.aggregation.GetAccounts(ctx, bank.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccountFetch, err)
	}

	var match *plaidclient.Account
	for i := range providerAccounts {
		if providerAccounts[i].AccountID == bank.AccountID {
			match = &providerAccounts[i]
			break
		}
	}
	if match == nil {
		log.Printf("Provider no longer reports account %s on item %s", bank.AccountID, bank.BankID)
		return nil, fmt.Errorf("%w: account %s missing from provider response", domain.ErrAccountFetch, bank.AccountID)
	}

	account := &domain.Account{
		ID:           match.AccountID,
		Name:         match.Name,
		OfficialName: match.OfficialName,
		Mask:         match.Mask,
		Type:         match.Type,
		Subtype:      match.Subtype,
		BankID:       bank.BankID,
		ShareableID:  bank.ShareableID,
	}
	if match.Balances.Current != nil {
		account.CurrentBalance = *match.Balances.Current
	}
	return account, nil
}
