package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/horizonbank/horizon-api/internal/domain"
)

func transferFixture() (*stubProcessor, *stubBankRepo, *stubTransactionRepo, *stubPublisher, *TransferService) {
	processor := &stubProcessor{transferURL: "https://processor.test/transfers/t-1"}
	banks := newStubBankRepo()
	transactions := newStubTransactionRepo()
	events := &stubPublisher{}
	svc := NewTransferService(processor, banks, transactions, events)

	banks.byAcct["acct-sender"] = &domain.BankAccount{
		AccountID:        "acct-sender",
		BankID:           "item-sender",
		FundingSourceURL: "https://processor.test/funding-sources/fs-sender",
		UserID:           "user-sender",
	}
	banks.byAcct["acct-receiver"] = &domain.BankAccount{
		AccountID:        "acct-receiver",
		BankID:           "item-receiver",
		FundingSourceURL: "https://processor.test/funding-sources/fs-receiver",
		ShareableID:      "share-receiver",
		UserID:           "user-receiver",
	}
	return processor, banks, transactions, events, svc
}

func transferInput() TransferInput {
	return TransferInput{
		Name:                "Rent",
		Amount:              decimal.RequireFromString("125.50"),
		Email:               "landlord@x.com",
		SenderAccountID:     "acct-sender",
		ReceiverShareableID: "share-receiver",
	}
}

func TestCreateTransfer_HappyPath(t *testing.T) {
	_, _, transactions, events, svc := transferFixture()
	sender := &domain.UserProfile{UserID: "user-sender"}

	tx, err := svc.CreateTransfer(context.Background(), sender, transferInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.SenderID != "user-sender" || tx.ReceiverID != "user-receiver" {
		t.Fatalf("unexpected participants %q -> %q", tx.SenderID, tx.ReceiverID)
	}
	if tx.SenderBankID != "item-sender" || tx.ReceiverBankID != "item-receiver" {
		t.Fatalf("transactions must reference banks by item id, got %q -> %q", tx.SenderBankID, tx.ReceiverBankID)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("125.50")) {
		t.Fatalf("unexpected amount %s", tx.Amount)
	}
	if tx.Channel != domain.TransactionChannel || tx.Category != domain.TransactionCategory {
		t.Fatalf("expected fixed channel/category, got %q/%q", tx.Channel, tx.Category)
	}
	if len(transactions.created) != 1 {
		t.Fatalf("expected one recorded transaction, got %d", len(transactions.created))
	}
	if len(events.events) != 1 || events.events[0] != "transaction.created" {
		t.Fatalf("expected one transaction.created event, got %v", events.events)
	}
}

func TestCreateTransfer_UnknownShareableID(t *testing.T) {
	_, _, transactions, _, svc := transferFixture()
	sender := &domain.UserProfile{UserID: "user-sender"}

	input := transferInput()
	input.ReceiverShareableID = "share-nobody"

	_, err := svc.CreateTransfer(context.Background(), sender, input)
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found, got %v", err)
	}
	if len(transactions.created) != 0 {
		t.Fatal("expected no transaction record")
	}
}

func TestCreateTransfer_SenderMustOwnBank(t *testing.T) {
	processor, _, _, _, svc := transferFixture()
	stranger := &domain.UserProfile{UserID: "user-other"}

	_, err := svc.CreateTransfer(context.Background(), stranger, transferInput())
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found for foreign bank, got %v", err)
	}
	if processor.transferCalls != 0 {
		t.Fatal("expected no processor transfer for a foreign bank")
	}
}

func TestCreateTransfer_ProcessorRejection(t *testing.T) {
	processor, _, transactions, _, svc := transferFixture()
	processor.transferErr = errUpstream
	sender := &domain.UserProfile{UserID: "user-sender"}

	_, err := svc.CreateTransfer(context.Background(), sender, transferInput())
	if !errors.Is(err, domain.ErrTransferFailed) {
		t.Fatalf("expected transfer failure, got %v", err)
	}
	if len(transactions.created) != 0 {
		t.Fatal("a rejected transfer must not be recorded")
	}
}

func TestListByBank_BidirectionalUnion(t *testing.T) {
	_, _, transactions, _, svc := transferFixture()
	transactions.listed["item-sender"] = []domain.Transaction{
		{Name: "sent", SenderBankID: "item-sender", ReceiverBankID: "item-receiver"},
		{Name: "received", SenderBankID: "item-other", ReceiverBankID: "item-sender"},
	}

	got, err := svc.ListByBank(context.Background(), "user-sender", "item-sender")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both directions, got %d", len(got))
	}
}

func TestListByBank_CallerMustOwnBank(t *testing.T) {
	_, _, transactions, _, svc := transferFixture()
	transactions.listed["item-sender"] = []domain.Transaction{
		{Name: "sent", SenderBankID: "item-sender", ReceiverBankID: "item-receiver"},
	}

	// Another user knows the bank id (it appears on their own transactions as
	// the counterpart) but must not be able to read its history.
	_, err := svc.ListByBank(context.Background(), "user-receiver", "item-sender")
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found for a foreign bank, got %v", err)
	}

	_, err = svc.ListByBank(context.Background(), "user-sender", "item-unknown")
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found for an unknown bank, got %v", err)
	}
}
