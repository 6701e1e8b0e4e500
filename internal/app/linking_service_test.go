package app

import (
	"context"
	"errors"
	"testing"

	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/pkg/plaidclient"
)

func newTestCodec(t *testing.T) *domain.ShareableIDCodec {
	t.Helper()
	codec, err := domain.NewShareableIDCodec("test-secret")
	if err != nil {
		t.Fatalf("creating codec: %v", err)
	}
	return codec
}

func linkedUser() *domain.UserProfile {
	return &domain.UserProfile{
		UserID:           "user-1",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		DwollaCustomerID: "cust-1",
	}
}

func happyAggregation() *stubAggregation {
	return &stubAggregation{
		exchange: &plaidclient.ExchangeResult{AccessToken: "access-1", ItemID: "item-1"},
		accounts: []plaidclient.Account{
			{AccountID: "acct-1", Name: "Checking"},
			{AccountID: "acct-2", Name: "Savings"},
		},
		processorToken: "proc-tok-1",
	}
}

func TestExchangePublicToken_HappyPath(t *testing.T) {
	aggregation := happyAggregation()
	processor := &stubProcessor{fundingSourceURL: "https://processor.test/funding-sources/fs-1"}
	banks := newStubBankRepo()
	events := &stubPublisher{}

	svc := NewLinkingService(aggregation, processor, banks, newTestCodec(t), events)

	bank, err := svc.ExchangePublicToken(context.Background(), "public-tok", linkedUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bank.AccountID != "acct-1" {
		t.Fatalf("expected the first account to be linked, got %q", bank.AccountID)
	}
	if bank.BankID != "item-1" {
		t.Fatalf("expected bankId item-1, got %q", bank.BankID)
	}
	if bank.AccessToken != "access-1" {
		t.Fatalf("expected the exchanged access token to be stored, got %q", bank.AccessToken)
	}
	if bank.FundingSourceURL != "https://processor.test/funding-sources/fs-1" {
		t.Fatalf("unexpected funding source url %q", bank.FundingSourceURL)
	}
	if bank.UserID != "user-1" {
		t.Fatalf("expected owning user user-1, got %q", bank.UserID)
	}
	if bank.ShareableID == "" || bank.ShareableID == "acct-1" {
		t.Fatalf("expected an encrypted shareable id, got %q", bank.ShareableID)
	}
	if len(events.events) != 1 || events.events[0] != "bank.linked" {
		t.Fatalf("expected one bank.linked event, got %v", events.events)
	}
}

func TestExchangePublicToken_ErrorPerStep(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *stubAggregation, p *stubProcessor)
		wantErr error
	}{
		{
			name:    "exchange fails",
			mutate:  func(a *stubAggregation, p *stubProcessor) { a.exchangeErr = errUpstream },
			wantErr: domain.ErrTokenExchange,
		},
		{
			name:    "account fetch fails",
			mutate:  func(a *stubAggregation, p *stubProcessor) { a.accountsErr = errUpstream },
			wantErr: domain.ErrAccountFetch,
		},
		{
			name:    "item has no accounts",
			mutate:  func(a *stubAggregation, p *stubProcessor) { a.accounts = nil },
			wantErr: domain.ErrAccountFetch,
		},
		{
			name:    "processor token fails",
			mutate:  func(a *stubAggregation, p *stubProcessor) { a.processorTokenErr = errUpstream },
			wantErr: domain.ErrProcessorToken,
		},
		{
			name:    "funding source rejected",
			mutate:  func(a *stubAggregation, p *stubProcessor) { p.fundingErr = errUpstream },
			wantErr: domain.ErrFundingSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggregation := happyAggregation()
			processor := &stubProcessor{fundingSourceURL: "https://processor.test/funding-sources/fs-1"}
			tt.mutate(aggregation, processor)

			banks := newStubBankRepo()
			svc := NewLinkingService(aggregation, processor, banks, newTestCodec(t), &stubPublisher{})

			_, err := svc.ExchangePublicToken(context.Background(), "public-tok", linkedUser())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if banks.upserts != 0 {
				t.Fatalf("expected no bank record after failure, got %d upserts", banks.upserts)
			}
		})
	}
}

func TestExchangePublicToken_FundingFailureLeavesNoRecord(t *testing.T) {
	aggregation := happyAggregation()
	processor := &stubProcessor{fundingErr: errUpstream}
	banks := newStubBankRepo()

	svc := NewLinkingService(aggregation, processor, banks, newTestCodec(t), &stubPublisher{})

	_, err := svc.ExchangePublicToken(context.Background(), "public-tok", linkedUser())
	if !errors.Is(err, domain.ErrFundingSource) {
		t.Fatalf("expected funding source error, got %v", err)
	}
	if len(banks.byAcct) != 0 {
		t.Fatal("expected the banks store to be untouched; the access token must not be persisted")
	}
}

func TestExchangePublicToken_RelinkReturnsExistingRecord(t *testing.T) {
	aggregation := happyAggregation()
	processor := &stubProcessor{fundingSourceURL: "https://processor.test/funding-sources/fs-1"}
	banks := newStubBankRepo()
	svc := NewLinkingService(aggregation, processor, banks, newTestCodec(t), &stubPublisher{})

	first, err := svc.ExchangePublicToken(context.Background(), "public-tok-1", linkedUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A retry exchanges a fresh public token but lands on the same account.
	second, err := svc.ExchangePublicToken(context.Background(), "public-tok-2", linkedUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected the same record identity, got %s and %s", first.ID.Hex(), second.ID.Hex())
	}
	if len(banks.byAcct) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(banks.byAcct))
	}
	// First insert is authoritative: the retry's fresh credentials are dropped.
	if second.AccessToken != first.AccessToken {
		t.Fatalf("expected the first access token to be kept, got %q", second.AccessToken)
	}
}

func TestExchangePublicToken_RequiresProcessorCustomer(t *testing.T) {
	aggregation := happyAggregation()
	processor := &stubProcessor{fundingSourceURL: "https://processor.test/funding-sources/fs-1"}
	banks := newStubBankRepo()
	svc := NewLinkingService(aggregation, processor, banks, newTestCodec(t), &stubPublisher{})

	user := linkedUser()
	user.DwollaCustomerID = ""

	_, err := svc.ExchangePublicToken(context.Background(), "public-tok", user)
	if !errors.Is(err, domain.ErrFundingSource) {
		t.Fatalf("expected funding source error for missing customer, got %v", err)
	}
	if processor.fundingCalls != 0 {
		t.Fatal("expected no funding source call without a processor customer")
	}
}

func TestCreateLinkToken(t *testing.T) {
	aggregation := happyAggregation()
	aggregation.linkToken = "link-tok-1"
	svc := NewLinkingService(aggregation, &stubProcessor{}, newStubBankRepo(), newTestCodec(t), &stubPublisher{})

	token, err := svc.CreateLinkToken(context.Background(), linkedUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "link-tok-1" {
		t.Fatalf("expected link-tok-1, got %q", token)
	}
}
