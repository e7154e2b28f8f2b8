package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeops/backoffice/internal/domain/billing"
	"github.com/tradeops/backoffice/internal/domain/inventory"
	"github.com/tradeops/backoffice/internal/domain/ledger"
	"go.uber.org/zap"
)

type testEnv struct {
	service     *InvoicePostingService
	invoices    *memInvoiceRepo
	batches     *memBatchRepo
	movements   *memMovementRepo
	allocations *memAllocationRepo
	accounts    *memAccountRepo
	entries     *memEntryRepo
	parties     *memPartyRepo
	taxConfigs  *memTaxSource

	customer     *billing.Party
	supplier     *billing.Party
	claimAccount *ledger.Account
	warehouseID  uuid.UUID
	itemID       uuid.UUID
}

func newTestEnv(t *testing.T, mode Scheme2Mode) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		invoices:    newMemInvoiceRepo(),
		batches:     newMemBatchRepo(),
		movements:   &memMovementRepo{},
		allocations: &memAllocationRepo{},
		accounts:    newMemAccountRepo(),
		entries:     &memEntryRepo{},
		parties:     newMemPartyRepo(),
		warehouseID: uuid.New(),
		itemID:      uuid.New(),
	}

	mustAccount := func(code string, accountType ledger.AccountType) *ledger.Account {
		account, err := ledger.NewAccount(code, code, accountType)
		require.NoError(t, err)
		require.NoError(t, env.accounts.Save(ctx, account))
		return account
	}

	mustAccount(ledger.AccountCodeRevenue, ledger.AccountTypeIncome)
	mustAccount(ledger.AccountCodeTaxPayable, ledger.AccountTypeLiability)
	mustAccount(ledger.AccountCodeTaxInput, ledger.AccountTypeAsset)
	mustAccount(ledger.AccountCodeInventory, ledger.AccountTypeAsset)
	receivable := mustAccount("AR-001", ledger.AccountTypeAsset)
	payable := mustAccount("AP-001", ledger.AccountTypeLiability)
	env.claimAccount = mustAccount("CLM-001", ledger.AccountTypeClaim)

	env.customer = &billing.Party{
		ID:          uuid.New(),
		Name:        "Al Madina Traders",
		AccountID:   receivable.ID,
		CreditLimit: decimal.Zero,
		IsActive:    true,
	}
	env.supplier = &billing.Party{
		ID:          uuid.New(),
		Name:        "Karachi Distribution Co",
		AccountID:   payable.ID,
		CreditLimit: decimal.Zero,
		IsActive:    true,
	}
	env.parties.parties[env.customer.ID] = env.customer
	env.parties.parties[env.supplier.ID] = env.supplier

	env.taxConfigs = &memTaxSource{configs: map[string]*billing.TaxConfig{
		"GST-18": {
			Code: "GST-18", Name: "GST 18%", Rate: decimal.NewFromFloat(0.18),
			Type: billing.TaxTypeGST, IsActive: true,
		},
	}}

	scope := NewNoOpTransactionScope(env.invoices, env.batches, env.movements, env.allocations, env.accounts, env.entries)
	env.service = NewInvoicePostingService(scope, env.parties, env.taxConfigs, mode, zap.NewNop())
	return env
}

func (env *testEnv) seedBatch(t *testing.T, batchNumber string, quantity int64, expiry time.Time) *inventory.Batch {
	t.Helper()
	batch, err := inventory.NewBatch(env.itemID, env.warehouseID, batchNumber,
		time.Now().AddDate(0, -1, 0), expiry,
		decimal.NewFromInt(quantity), decimal.NewFromInt(60))
	require.NoError(t, err)
	require.NoError(t, env.batches.Save(context.Background(), batch))
	return batch
}

func (env *testEnv) accountBalance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	account, err := env.accounts.FindByCode(context.Background(), code)
	require.NoError(t, err)
	return account.Balance
}

func (env *testEnv) batchRemaining(t *testing.T, batchID uuid.UUID) decimal.Decimal {
	t.Helper()
	batch, err := env.batches.FindByID(context.Background(), batchID)
	require.NoError(t, err)
	return batch.RemainingQuantity
}

func salesLineRequest(env *testEnv) InvoiceLineRequest {
	return InvoiceLineRequest{
		ItemID:           env.itemID,
		ItemName:         "Paracetamol 500mg",
		Quantity:         decimal.NewFromInt(10),
		UnitPrice:        decimal.NewFromInt(100),
		Discount1Percent: decimal.NewFromInt(10),
		Discount2Percent: decimal.NewFromInt(5),
		TaxCodes:         []string{"GST-18"},
	}
}

func (env *testEnv) createSalesDraft(t *testing.T, lines ...InvoiceLineRequest) *InvoiceResponse {
	t.Helper()
	claimID := env.claimAccount.ID
	draft, err := env.service.CreateDraft(context.Background(), CreateInvoiceRequest{
		Type:           billing.InvoiceTypeSales,
		PartyID:        env.customer.ID,
		WarehouseID:    env.warehouseID,
		ClaimAccountID: &claimID,
		Lines:          lines,
	})
	require.NoError(t, err)
	return draft
}

func TestConfirmSalesInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path computes totals, moves stock and posts ledger", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		batch := env.seedBatch(t, "B-100", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		confirmed, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		// 1000 gross, 145 discount, 855 taxable, 153.9 GST
		assert.Equal(t, billing.InvoiceStatusConfirmed, confirmed.Status)
		assert.True(t, confirmed.Subtotal.Equal(decimal.NewFromInt(1000)))
		assert.True(t, confirmed.DiscountTotal.Equal(decimal.NewFromInt(145)))
		assert.True(t, confirmed.TaxTotal.Equal(decimal.NewFromFloat(153.9)))
		assert.True(t, confirmed.GrandTotal.Equal(decimal.NewFromFloat(1008.9)))
		assert.NotNil(t, confirmed.ConfirmedAt)

		assert.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(90)))

		movements, err := env.movements.FindByReference(ctx, draft.ID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, inventory.MovementDirectionOut, movements[0].Direction)
		assert.True(t, movements[0].Quantity.Equal(decimal.NewFromInt(10)))

		allocations, err := env.allocations.FindByInvoice(ctx, draft.ID)
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, batch.ID, allocations[0].BatchID)

		entries, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.True(t, env.accountBalance(t, "AR-001").Equal(decimal.NewFromFloat(1008.9)))
		assert.True(t, env.accountBalance(t, ledger.AccountCodeRevenue).Equal(decimal.NewFromInt(855)))
		assert.True(t, env.accountBalance(t, ledger.AccountCodeTaxPayable).Equal(decimal.NewFromFloat(153.9)))
	})

	t.Run("Inclusive pricing carves the tax out of the quoted price", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-110", 100, time.Now().AddDate(0, 6, 0))
		env.taxConfigs.configs["GST-18-INC"] = &billing.TaxConfig{
			Code: "GST-18-INC", Name: "GST 18% inclusive", Rate: decimal.NewFromFloat(0.18),
			Type: billing.TaxTypeGST, InclusivePricing: true, IsActive: true,
		}

		draft := env.createSalesDraft(t, InvoiceLineRequest{
			ItemID:    env.itemID,
			ItemName:  "Paracetamol 500mg",
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(118),
			TaxCodes:  []string{"GST-18-INC"},
		})

		confirmed, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		// 118 quoted = 100 net taxable + 18 GST; the receivable stays 118
		assert.True(t, confirmed.TaxTotal.Equal(decimal.NewFromInt(18)))
		assert.True(t, confirmed.GrandTotal.Equal(decimal.NewFromInt(118)))

		entries, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.True(t, env.accountBalance(t, "AR-001").Equal(decimal.NewFromInt(118)))
		assert.True(t, env.accountBalance(t, ledger.AccountCodeRevenue).Equal(decimal.NewFromInt(100)))
		assert.True(t, env.accountBalance(t, ledger.AccountCodeTaxPayable).Equal(decimal.NewFromInt(18)))
	})

	t.Run("Scheme1 units ship stock but earn no revenue", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		batch := env.seedBatch(t, "B-101", 100, time.Now().AddDate(0, 6, 0))

		line := InvoiceLineRequest{
			ItemID:          env.itemID,
			ItemName:        "Paracetamol 500mg",
			Quantity:        decimal.NewFromInt(13),
			UnitPrice:       decimal.NewFromInt(100),
			Scheme1Quantity: decimal.NewFromInt(1),
		}
		draft := env.createSalesDraft(t, line)

		confirmed, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		// Revenue on 12 units, stock moves all 13
		assert.True(t, confirmed.GrandTotal.Equal(decimal.NewFromInt(1200)))
		assert.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(87)))
	})

	t.Run("Scheme2 posts the claim offset at confirmation", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-102", 100, time.Now().AddDate(0, 6, 0))

		line := InvoiceLineRequest{
			ItemID:          env.itemID,
			ItemName:        "Paracetamol 500mg",
			Quantity:        decimal.NewFromInt(10),
			UnitPrice:       decimal.NewFromInt(100),
			Scheme2Quantity: decimal.NewFromInt(2),
		}
		draft := env.createSalesDraft(t, line)

		confirmed, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		assert.True(t, confirmed.GrandTotal.Equal(decimal.NewFromInt(800)))
		assert.True(t, confirmed.Scheme2Total.Equal(decimal.NewFromInt(200)))

		entries, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		// 2 sales legs + 2 claim legs
		require.Len(t, entries, 4)
		assert.True(t, env.accountBalance(t, "CLM-001").Equal(decimal.NewFromInt(200)))
		// AR debited 800 by the sale, credited 200 by the claim offset
		assert.True(t, env.accountBalance(t, "AR-001").Equal(decimal.NewFromInt(600)))
	})

	t.Run("Scheme2 without claim account is rejected", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-103", 100, time.Now().AddDate(0, 6, 0))

		draft, err := env.service.CreateDraft(ctx, CreateInvoiceRequest{
			Type:        billing.InvoiceTypeSales,
			PartyID:     env.customer.ID,
			WarehouseID: env.warehouseID,
			Lines: []InvoiceLineRequest{{
				ItemID:          env.itemID,
				ItemName:        "Paracetamol 500mg",
				Quantity:        decimal.NewFromInt(10),
				UnitPrice:       decimal.NewFromInt(100),
				Scheme2Quantity: decimal.NewFromInt(2),
			}},
		})
		require.NoError(t, err)

		_, err = env.service.Confirm(ctx, draft.ID)
		require.Error(t, err)

		var claimErr *billing.ClaimAccountRequiredError
		assert.ErrorAs(t, err, &claimErr)
	})

	t.Run("Insufficient stock fails atomically", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		batch := env.seedBatch(t, "B-104", 5, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.Error(t, err)

		var stockErr *inventory.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.True(t, stockErr.Shortfall.Equal(decimal.NewFromInt(5)))

		// Nothing moved: invoice still draft, batch untouched, no postings
		reloaded, err := env.service.GetByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusDraft, reloaded.Status)
		assert.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(5)))
		entries, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
		allocations, err := env.allocations.FindByInvoice(ctx, draft.ID)
		require.NoError(t, err)
		assert.Empty(t, allocations)
	})

	t.Run("FEFO consumes the earliest expiry across batches", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		later := env.seedBatch(t, "LATER", 50, time.Now().AddDate(1, 0, 0))
		sooner := env.seedBatch(t, "SOONER", 6, time.Now().AddDate(0, 1, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		assert.True(t, env.batchRemaining(t, sooner.ID).IsZero())
		assert.True(t, env.batchRemaining(t, later.ID).Equal(decimal.NewFromInt(46)))

		allocations, err := env.allocations.FindByInvoice(ctx, draft.ID)
		require.NoError(t, err)
		require.Len(t, allocations, 2)
	})

	t.Run("Credit limit blocks the confirmation", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-105", 100, time.Now().AddDate(0, 6, 0))
		env.customer.CreditLimit = decimal.NewFromInt(500)
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.Error(t, err)

		var creditErr *billing.CreditLimitExceededError
		assert.ErrorAs(t, err, &creditErr)

		reloaded, err := env.service.GetByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusDraft, reloaded.Status)
	})

	t.Run("Double confirm is rejected without extra mutations", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		batch := env.seedBatch(t, "B-106", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		_, err = env.service.Confirm(ctx, draft.ID)
		require.Error(t, err)

		var statusErr *billing.InvalidInvoiceStatusError
		assert.ErrorAs(t, err, &statusErr)

		assert.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(90)))
		entries, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})
}

func TestConfirmPurchaseInvoice(t *testing.T) {
	ctx := context.Background()

	purchaseDraft := func(t *testing.T, env *testEnv) *InvoiceResponse {
		t.Helper()
		mfg := time.Now().AddDate(0, -1, 0)
		exp := time.Now().AddDate(1, 0, 0)
		draft, err := env.service.CreateDraft(ctx, CreateInvoiceRequest{
			Type:        billing.InvoiceTypePurchase,
			PartyID:     env.supplier.ID,
			WarehouseID: env.warehouseID,
			Lines: []InvoiceLineRequest{{
				ItemID:            env.itemID,
				ItemName:          "Paracetamol 500mg",
				Quantity:          decimal.NewFromInt(10),
				UnitPrice:         decimal.NewFromInt(100),
				TaxCodes:          []string{"GST-18"},
				BatchNumber:       "PB-500",
				ManufacturingDate: &mfg,
				ExpiryDate:        &exp,
				UnitCost:          decimal.NewFromInt(100),
			}},
		})
		require.NoError(t, err)
		return draft
	}

	t.Run("Confirm creates the batch and posts the purchase", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		draft := purchaseDraft(t, env)

		confirmed, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		assert.True(t, confirmed.GrandTotal.Equal(decimal.NewFromInt(1180)))

		batches, err := env.batches.FindByItem(ctx, env.itemID, env.warehouseID)
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, "PB-500", batches[0].BatchNumber)
		assert.True(t, batches[0].RemainingQuantity.Equal(decimal.NewFromInt(10)))

		assert.True(t, env.accountBalance(t, ledger.AccountCodeInventory).Equal(decimal.NewFromInt(1000)))
		assert.True(t, env.accountBalance(t, ledger.AccountCodeTaxInput).Equal(decimal.NewFromInt(180)))
		assert.True(t, env.accountBalance(t, "AP-001").Equal(decimal.NewFromInt(1180)))
	})

	t.Run("Cancelling a purchase takes the received stock back out", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		draft := purchaseDraft(t, env)

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		cancelled, err := env.service.Cancel(ctx, draft.ID, "wrong supplier")
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusCancelled, cancelled.Status)

		batches, err := env.batches.FindByItem(ctx, env.itemID, env.warehouseID)
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.True(t, batches[0].RemainingQuantity.IsZero())
		assert.True(t, env.accountBalance(t, "AP-001").IsZero())
		assert.True(t, env.accountBalance(t, ledger.AccountCodeInventory).IsZero())
	})

	t.Run("Cancel fails when received stock was already consumed", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		draft := purchaseDraft(t, env)

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		// Sell part of the received batch
		batches, err := env.batches.FindByItem(ctx, env.itemID, env.warehouseID)
		require.NoError(t, err)
		require.NoError(t, batches[0].Deduct(decimal.NewFromInt(4)))
		require.NoError(t, env.batches.Save(ctx, &batches[0]))

		_, err = env.service.Cancel(ctx, draft.ID, "too late")
		require.Error(t, err)

		var stockErr *inventory.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	})
}

func TestCancelInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("Cancelling a draft is a pure status change", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-200", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		cancelled, err := env.service.Cancel(ctx, draft.ID, "customer withdrew")
		require.NoError(t, err)

		assert.Equal(t, billing.InvoiceStatusCancelled, cancelled.Status)
		movements, err := env.movements.FindByReference(ctx, draft.ID)
		require.NoError(t, err)
		assert.Empty(t, movements)
	})

	t.Run("Confirm then cancel restores stock and zeroes balances", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		batch := env.seedBatch(t, "B-201", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)
		require.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(90)))

		cancelled, err := env.service.Cancel(ctx, draft.ID, "data entry error")
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusCancelled, cancelled.Status)

		assert.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(100)))
		assert.True(t, env.accountBalance(t, "AR-001").IsZero())
		assert.True(t, env.accountBalance(t, ledger.AccountCodeRevenue).IsZero())
		assert.True(t, env.accountBalance(t, ledger.AccountCodeTaxPayable).IsZero())

		// Original entries remain, reversal entries appended
		original, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		assert.Len(t, original, 3)
		reversals, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeReversal, draft.ID)
		require.NoError(t, err)
		assert.Len(t, reversals, 3)

		movements, err := env.movements.FindByReference(ctx, draft.ID)
		require.NoError(t, err)
		require.Len(t, movements, 2)
		assert.Equal(t, inventory.MovementDirectionOut, movements[0].Direction)
		assert.Equal(t, inventory.MovementDirectionIn, movements[1].Direction)
	})

	t.Run("Paid invoices cannot be cancelled", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-202", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)
		_, err = env.service.MarkPaid(ctx, draft.ID, "bank transfer")
		require.NoError(t, err)

		_, err = env.service.Cancel(ctx, draft.ID, "too late")
		require.Error(t, err)

		var paidErr *billing.CannotCancelPaidInvoiceError
		assert.ErrorAs(t, err, &paidErr)
	})
}

func TestPaymentMarking(t *testing.T) {
	ctx := context.Background()

	t.Run("MarkPaid and MarkPartiallyPaid", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-300", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		partial, err := env.service.MarkPartiallyPaid(ctx, draft.ID, "first installment")
		require.NoError(t, err)
		assert.Equal(t, billing.PaymentStatusPartial, partial.PaymentStatus)
		assert.Equal(t, billing.InvoiceStatusConfirmed, partial.Status)

		paid, err := env.service.MarkPaid(ctx, draft.ID, "settled")
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, paid.Status)
		assert.Equal(t, billing.PaymentStatusPaid, paid.PaymentStatus)
	})

	t.Run("MarkPaid on a draft fails", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-301", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.MarkPaid(ctx, draft.ID, "premature")
		require.Error(t, err)

		var statusErr *billing.InvalidInvoiceStatusError
		assert.ErrorAs(t, err, &statusErr)
	})
}

func TestCreateReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("Return copies pricing and links the original", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-400", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))
		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		ret, err := env.service.CreateReturn(ctx, draft.ID, CreateReturnRequest{
			Lines: []ReturnLineRequest{{ItemID: env.itemID, Quantity: decimal.NewFromInt(3)}},
		})
		require.NoError(t, err)

		assert.Equal(t, billing.InvoiceTypeReturnSales, ret.Type)
		assert.Equal(t, billing.InvoiceStatusDraft, ret.Status)
		require.NotNil(t, ret.OriginalInvoiceID)
		assert.Equal(t, draft.ID, *ret.OriginalInvoiceID)
		require.Len(t, ret.Lines, 1)
		assert.True(t, ret.Lines[0].UnitPrice.Equal(decimal.NewFromInt(100)))
		assert.True(t, ret.Lines[0].Discount1Percent.Equal(decimal.NewFromInt(10)))
	})

	t.Run("Return quantity above the original is rejected", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-401", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))
		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		_, err = env.service.CreateReturn(ctx, draft.ID, CreateReturnRequest{
			Lines: []ReturnLineRequest{{ItemID: env.itemID, Quantity: decimal.NewFromInt(11)}},
		})
		require.Error(t, err)

		var returnErr *billing.ReturnExceedsOriginalError
		require.ErrorAs(t, err, &returnErr)
		assert.True(t, returnErr.Original.Equal(decimal.NewFromInt(10)))
	})

	t.Run("Returns against drafts are rejected", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-402", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		_, err := env.service.CreateReturn(ctx, draft.ID, CreateReturnRequest{
			Lines: []ReturnLineRequest{{ItemID: env.itemID, Quantity: decimal.NewFromInt(1)}},
		})
		require.Error(t, err)

		var statusErr *billing.InvalidInvoiceStatusError
		assert.ErrorAs(t, err, &statusErr)
	})

	t.Run("Confirming a sales return restores stock to the original batch", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		batch := env.seedBatch(t, "B-403", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))
		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)
		require.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(90)))

		ret, err := env.service.CreateReturn(ctx, draft.ID, CreateReturnRequest{
			Lines: []ReturnLineRequest{{ItemID: env.itemID, Quantity: decimal.NewFromInt(3)}},
		})
		require.NoError(t, err)

		confirmed, err := env.service.Confirm(ctx, ret.ID)
		require.NoError(t, err)

		assert.Equal(t, billing.InvoiceStatusConfirmed, confirmed.Status)
		assert.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(93)))

		// Return posting credits the receivable for the returned value:
		// 3 units at 100, 10% then 5% discount, 18% GST = 302.67
		expected := decimal.NewFromFloat(1008.9).Sub(confirmed.GrandTotal)
		assert.True(t, env.accountBalance(t, "AR-001").Equal(expected))
	})
}

func TestCalculateLineTotals(t *testing.T) {
	ctx := context.Background()

	t.Run("Preview matches confirm figures without persisting", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		batch := env.seedBatch(t, "B-500", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, salesLineRequest(env))

		preview, err := env.service.CalculateLineTotals(ctx, draft.ID)
		require.NoError(t, err)

		assert.True(t, preview.Totals.GrandTotal.Equal(decimal.NewFromFloat(1008.9)))
		require.Len(t, preview.Lines, 1)
		assert.True(t, preview.Lines[0].LineTotal.Equal(decimal.NewFromFloat(1008.9)))

		// Nothing moved
		reloaded, err := env.service.GetByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusDraft, reloaded.Status)
		assert.True(t, reloaded.GrandTotal.IsZero())
		assert.True(t, env.batchRemaining(t, batch.ID).Equal(decimal.NewFromInt(100)))
	})
}

func TestDeferredScheme2Posting(t *testing.T) {
	ctx := context.Background()

	scheme2Line := func(env *testEnv) InvoiceLineRequest {
		return InvoiceLineRequest{
			ItemID:          env.itemID,
			ItemName:        "Paracetamol 500mg",
			Quantity:        decimal.NewFromInt(10),
			UnitPrice:       decimal.NewFromInt(100),
			Scheme2Quantity: decimal.NewFromInt(2),
		}
	}

	t.Run("Confirm defers the claim entries", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeDeferred)
		env.seedBatch(t, "B-600", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, scheme2Line(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		entries, err := env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.True(t, env.accountBalance(t, "CLM-001").IsZero())

		require.NoError(t, env.service.PostScheme2Claim(ctx, draft.ID))

		entries, err = env.entries.FindByReference(ctx, ledger.ReferenceTypeInvoice, draft.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 4)
		assert.True(t, env.accountBalance(t, "CLM-001").Equal(decimal.NewFromInt(200)))
	})

	t.Run("Posting the claim twice is rejected", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeDeferred)
		env.seedBatch(t, "B-601", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, scheme2Line(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)
		require.NoError(t, env.service.PostScheme2Claim(ctx, draft.ID))

		err = env.service.PostScheme2Claim(ctx, draft.ID)
		require.Error(t, err)
	})

	t.Run("Claim posting in confirm mode is rejected", func(t *testing.T) {
		env := newTestEnv(t, Scheme2ModeConfirm)
		env.seedBatch(t, "B-602", 100, time.Now().AddDate(0, 6, 0))
		draft := env.createSalesDraft(t, scheme2Line(env))

		_, err := env.service.Confirm(ctx, draft.ID)
		require.NoError(t, err)

		assert.Error(t, env.service.PostScheme2Claim(ctx, draft.ID))
	})
}
