package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/pkg/authclient"
	"github.com/horizonbank/horizon-api/pkg/dwollaclient"
	"github.com/horizonbank/horizon-api/pkg/plaidclient"
)

// In-memory stubs shared by the service tests in this package.

type stubBankRepo struct {
	mu      sync.Mutex
	byAcct  map[string]*domain.BankAccount
	upserts int
	findErr error
}

func newStubBankRepo() *stubBankRepo {
	return &stubBankRepo{byAcct: make(map[string]*domain.BankAccount)}
}

func (r *stubBankRepo) Upsert(ctx context.Context, bank *domain.BankAccount) (*domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if existing, ok := r.byAcct[bank.AccountID]; ok {
		return existing, nil
	}
	stored := *bank
	stored.ID = primitive.NewObjectID()
	r.byAcct[bank.AccountID] = &stored
	return &stored, nil
}

func (r *stubBankRepo) ListByUser(ctx context.Context, userID string) ([]domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var banks []domain.BankAccount
	for _, bank := range r.byAcct {
		if bank.UserID == userID {
			banks = append(banks, *bank)
		}
	}
	return banks, nil
}

func (r *stubBankRepo) FindByAccountID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if bank, ok := r.byAcct[accountID]; ok {
		copied := *bank
		return &copied, nil
	}
	return nil, nil
}

func (r *stubBankRepo) FindByBankID(ctx context.Context, bankID string) (*domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bank := range r.byAcct {
		if bank.BankID == bankID {
			copied := *bank
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *stubBankRepo) FindByShareableID(ctx context.Context, shareableID string) (*domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bank := range r.byAcct {
		if bank.ShareableID == shareableID {
			copied := *bank
			return &copied, nil
		}
	}
	return nil, nil
}

type stubUserRepo struct {
	mu       sync.Mutex
	byUserID map[string]*domain.UserProfile
	upserts  int
	failNext bool
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byUserID: make(map[string]*domain.UserProfile)}
}

func (r *stubUserRepo) Upsert(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if r.failNext {
		r.failNext = false
		return nil, fmt.Errorf("%w: write rejected", domain.ErrPersistence)
	}
	existing, ok := r.byUserID[profile.UserID]
	if !ok {
		stored := *profile
		r.byUserID[profile.UserID] = &stored
		copied := stored
		return &copied, nil
	}
	// Mirror the repository's merge: only non-empty fields are applied.
	if profile.Email != "" {
		existing.Email = profile.Email
	}
	if profile.FirstName != "" {
		existing.FirstName = profile.FirstName
	}
	if profile.LastName != "" {
		existing.LastName = profile.LastName
	}
	if profile.Address1 != "" {
		existing.Address1 = profile.Address1
	}
	if profile.City != "" {
		existing.City = profile.City
	}
	if profile.DwollaCustomerURL != "" {
		existing.DwollaCustomerURL = profile.DwollaCustomerURL
	}
	if profile.DwollaCustomerID != "" {
		existing.DwollaCustomerID = profile.DwollaCustomerID
	}
	copied := *existing
	return &copied, nil
}

func (r *stubUserRepo) FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile, ok := r.byUserID[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, nil
}

type stubSessionRepo struct {
	mu      sync.Mutex
	byToken map[string]*domain.Session
	deleted []string
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{byToken: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.byToken[token]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, nil
}

func (r *stubSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, userID)
	for token, session := range r.byToken {
		if session.UserID == userID {
			delete(r.byToken, token)
		}
	}
	return nil
}

type stubTransactionRepo struct {
	mu      sync.Mutex
	created []domain.Transaction
	listed  map[string][]domain.Transaction
	failure error
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{listed: make(map[string][]domain.Transaction)}
}

func (r *stubTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return nil, r.failure
	}
	stored := *tx
	stored.ID = primitive.NewObjectID()
	stored.Channel = domain.TransactionChannel
	stored.Category = domain.TransactionCategory
	r.created = append(r.created, stored)
	return &stored, nil
}

func (r *stubTransactionRepo) ListByBankID(ctx context.Context, bankID string) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listed[bankID], nil
}

type stubAggregation struct {
	linkToken         string
	linkTokenErr      error
	exchange          *plaidclient.ExchangeResult
	exchangeErr       error
	accounts          []plaidclient.Account
	accountsByToken   map[string][]plaidclient.Account
	accountsErr       error
	processorToken    string
	processorTokenErr error

	exchangeCalls  int
	processorCalls int
}

func (a *stubAggregation) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (string, error) {
	if a.linkTokenErr != nil {
		return "", a.linkTokenErr
	}
	return a.linkToken, nil
}

func (a *stubAggregation) ExchangePublicToken(ctx context.Context, publicToken string) (*plaidclient.ExchangeResult, error) {
	a.exchangeCalls++
	if a.exchangeErr != nil {
		return nil, a.exchangeErr
	}
	return a.exchange, nil
}

func (a *stubAggregation) GetAccounts(ctx context.Context, accessToken string) ([]plaidclient.Account, error) {
	if a.accountsErr != nil {
		return nil, a.accountsErr
	}
	if a.accountsByToken != nil {
		return a.accountsByToken[accessToken], nil
	}
	return a.accounts, nil
}

func (a *stubAggregation) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	a.processorCalls++
	if a.processorTokenErr != nil {
		return "", a.processorTokenErr
	}
	return a.processorToken, nil
}

type stubProcessor struct {
	customerURL      string
	customerErr      error
	fundingSourceURL string
	fundingErr       error
	transferURL      string
	transferErr      error

	fundingCalls  int
	transferCalls int
}

func (p *stubProcessor) CreateCustomer(ctx context.Context, req dwollaclient.CustomerRequest) (string, error) {
	if p.customerErr != nil {
		return "", p.customerErr
	}
	return p.customerURL, nil
}

func (p *stubProcessor) CreateFundingSource(ctx context.Context, customerID, processorToken, bankName string) (string, error) {
	p.fundingCalls++
	if p.fundingErr != nil {
		return "", p.fundingErr
	}
	return p.fundingSourceURL, nil
}

func (p *stubProcessor) CreateTransfer(ctx context.Context, sourceFundingURL, destinationFundingURL string, amount decimal.Decimal) (string, error) {
	p.transferCalls++
	if p.transferErr != nil {
		return "", p.transferErr
	}
	return p.transferURL, nil
}

type stubIdentity struct {
	session    *authclient.Session
	signUpErr  error
	signInErr  error
	signOutErr error

	signOutCalls int
}

func (i *stubIdentity) SignUp(ctx context.Context, name, email, password string) (*authclient.Session, error) {
	if i.signUpErr != nil {
		return nil, i.signUpErr
	}
	return i.session, nil
}

func (i *stubIdentity) SignIn(ctx context.Context, email, password string) (*authclient.Session, error) {
	if i.signInErr != nil {
		return nil, i.signInErr
	}
	return i.session, nil
}

func (i *stubIdentity) SignOut(ctx context.Context, token string) error {
	i.signOutCalls++
	return i.signOutErr
}

type stubPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *stubPublisher) Publish(ctx context.Context, routingKey string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, routingKey)
	return nil
}

func (p *stubPublisher) Close() {}

var errUpstream = errors.New("upstream failure")
