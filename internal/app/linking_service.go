/**
 * @description
 * This file contains the linked-account provisioning service: the four-hop
 * chain that turns a short-lived public link token into a persisted bank
 * account record with a funding source attached.
 *
 * The chain is strictly ordered because each step consumes the previous
 * step's output:
 *   1. exchange public token  -> access token + item id
 *   2. fetch accounts         -> first account's id and display name
 *   3. mint processor token   -> token scoped to the payments processor
 *   4. create funding source  -> funding source URL
 *   5. upsert bank record     -> idempotent on accountId
 *
 * @notes
 * - There is no compensation on failure. The public token is single-use, so
 *   a failed chain means the user restarts linking from the beginning; the
 *   upsert in step 5 is what keeps a client-side retry from duplicating the
 *   record. A step-2 failure orphans the access token from step 1; it is not
 *   revoked.
 */
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/internal/store"
	"github.com/horizonbank/horizon-api/pkg/plaidclient"
	"github.com/horizonbank/horizon-api/pkg/rabbitmq"
)

// processorName is the integration the processor token is scoped to.
const processorName = "dwolla"

// AggregationClient is the slice of the aggregation provider the linking
// flow needs.
type AggregationClient interface {
	CreateLinkToken(ctx context.Context, clientUserID, clientName string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*plaidclient.ExchangeResult, error)
	GetAccounts(ctx context.Context, accessToken string) ([]plaidclient.Account, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error)
}

// FundingSourceCreator attaches bank accounts to processor customers.
type FundingSourceCreator interface {
	CreateFundingSource(ctx context.Context, customerID, processorToken, bankName string) (string, error)
}

// LinkingService runs the account-linking provisioning chain.
type LinkingService struct {
	aggregation AggregationClient
	processor   FundingSourceCreator
	banks       store.BankRepository
	codec       *domain.ShareableIDCodec
	events      rabbitmq.Publisher
}

// NewLinkingService creates a new instance of LinkingService.
func NewLinkingService(aggregation AggregationClient, processor FundingSourceCreator, banks store.BankRepository, codec *domain.ShareableIDCodec, events rabbitmq.Publisher) *LinkingService {
	return &LinkingService{
		aggregation: aggregation,
		processor:   processor,
		banks:       banks,
		codec:       codec,
		events:      events,
	}
}

// CreateLinkToken requests a link token for the user so the frontend can
// open the provider's link flow.
func (s *LinkingService) CreateLinkToken(ctx context.Context, user *domain.UserProfile) (string, error) {
	clientName := fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	token, err := s.aggregation.CreateLinkToken(ctx, user.UserID, clientName)
	if err != nil {
		return "", fmt.Errorf("creating link token: %w", err)
	}
	return token, nil
}

// BankLinkedEvent is published after a provisioning chain completes so
// cached account views get invalidated downstream.
type BankLinkedEvent struct {
	UserID    string `json:"user_id"`
	BankID    string `json:"bank_id"`
	AccountID string `json:"account_id"`
}

// ExchangePublicToken runs the provisioning chain for the authenticated
// user. Each hop maps to its own error sentinel; a failure raises
// immediately and leaves prior steps' side effects in place.
func (s *LinkingService) ExchangePublicToken(ctx context.Context, publicToken string, user *domain.UserProfile) (*domain.BankAccount, error) {
	exchange, err := s.aggregation.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchange, err)
	}

	accounts, err := s.aggregation.GetAccounts(ctx, exchange.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccountFetch, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: linked item has no accounts", domain.ErrAccountFetch)
	}
	account := accounts[0]

	processorToken, err := s.aggregation.CreateProcessorToken(ctx, exchange.AccessToken, account.AccountID, processorName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessorToken, err)
	}

	if user.DwollaCustomerID == "" {
		return nil, fmt.Errorf("%w: user %s has no processor customer", domain.ErrFundingSource, user.UserID)
	}
	fundingSourceURL, err := s.processor.CreateFundingSource(ctx, user.DwollaCustomerID, processorToken, account.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFundingSource, err)
	}

	shareableID, err := s.codec.Encrypt(account.AccountID)
	if err != nil {
		return nil, fmt.Errorf("encrypting shareable id: %w", err)
	}

	bank, err := s.banks.Upsert(ctx, &domain.BankAccount{
		AccountID:        account.AccountID,
		BankID:           exchange.ItemID,
		AccessToken:      exchange.AccessToken,
		FundingSourceURL: fundingSourceURL,
		ShareableID:      shareableID,
		UserID:           user.UserID,
	})
	if err != nil {
		return nil, err
	}

	// Fan out so cached account lists observe the new link. Publishing is
	// best-effort; the link itself has already succeeded.
	event := BankLinkedEvent{UserID: user.UserID, BankID: bank.BankID, AccountID: bank.AccountID}
	if err := s.events.Publish(ctx, "bank.linked", event); err != nil {
		log.Printf("Failed to publish bank.linked event for user %s: %v", user.UserID, err)
	}

	return bank, nil
}
