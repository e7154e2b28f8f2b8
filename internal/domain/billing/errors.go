package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeops/backoffice/internal/domain/shared"
)

// Error codes for business rule violations raised by the posting engine
const (
	ErrCodeTaxConfigNotFound       = "TAX_CONFIG_NOT_FOUND"
	ErrCodeClaimAccountRequired    = "CLAIM_ACCOUNT_REQUIRED"
	ErrCodeClaimAccountNotFound    = "CLAIM_ACCOUNT_NOT_FOUND"
	ErrCodeClaimAccountInactive    = "CLAIM_ACCOUNT_INACTIVE"
	ErrCodeSchemeExceedsQuantity   = "SCHEME_EXCEEDS_QUANTITY"
	ErrCodeCreditLimitExceeded     = "CREDIT_LIMIT_EXCEEDED"
	ErrCodeInvalidInvoiceStatus    = "INVALID_INVOICE_STATUS"
	ErrCodeCannotCancelPaidInvoice = "CANNOT_CANCEL_PAID_INVOICE"
	ErrCodeReturnExceedsOriginal   = "RETURN_EXCEEDS_ORIGINAL"
)

// TaxConfigNotFoundError is raised when a referenced tax code is missing or inactive
type TaxConfigNotFoundError struct {
	Code string
}

func (e *TaxConfigNotFoundError) Error() string {
	return fmt.Sprintf("tax configuration %q not found or inactive", e.Code)
}

// ErrorCode returns the stable error code
func (e *TaxConfigNotFoundError) ErrorCode() string {
	return ErrCodeTaxConfigNotFound
}

// ClaimAccountRequiredError is raised when discount2 or scheme2 is used
// without a claim account on the invoice
type ClaimAccountRequiredError struct {
	Reason string
}

func (e *ClaimAccountRequiredError) Error() string {
	return "claim account is required: " + e.Reason
}

// ErrorCode returns the stable error code
func (e *ClaimAccountRequiredError) ErrorCode() string {
	return ErrCodeClaimAccountRequired
}

// SchemeExceedsQuantityError is raised when scheme quantities exceed the line quantity
type SchemeExceedsQuantityError struct {
	ItemID          uuid.UUID
	Quantity        decimal.Decimal
	Scheme1Quantity decimal.Decimal
	Scheme2Quantity decimal.Decimal
}

func (e *SchemeExceedsQuantityError) Error() string {
	return fmt.Sprintf("scheme quantities %s + %s exceed line quantity %s for item %s",
		e.Scheme1Quantity, e.Scheme2Quantity, e.Quantity, e.ItemID)
}

// ErrorCode returns the stable error code
func (e *SchemeExceedsQuantityError) ErrorCode() string {
	return ErrCodeSchemeExceedsQuantity
}

// CreditLimitExceededError is raised when a sales confirmation would push the
// customer's outstanding balance past their credit limit
type CreditLimitExceededError struct {
	PartyID     uuid.UUID
	Limit       decimal.Decimal
	Outstanding decimal.Decimal
	Requested   decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for party %s: limit %s, outstanding %s, requested %s",
		e.PartyID, e.Limit, e.Outstanding, e.Requested)
}

// ErrorCode returns the stable error code
func (e *CreditLimitExceededError) ErrorCode() string {
	return ErrCodeCreditLimitExceeded
}

// InvalidInvoiceStatusError is raised when a transition is attempted from an
// illegal status (including re-confirming an already confirmed invoice)
type InvalidInvoiceStatusError struct {
	InvoiceID uuid.UUID
	Current   InvoiceStatus
	Attempted string
}

func (e *InvalidInvoiceStatusError) Error() string {
	return fmt.Sprintf("cannot %s invoice %s in %s status", e.Attempted, e.InvoiceID, e.Current)
}

// ErrorCode returns the stable error code
func (e *InvalidInvoiceStatusError) ErrorCode() string {
	return ErrCodeInvalidInvoiceStatus
}

// CannotCancelPaidInvoiceError is raised when cancelling a paid invoice;
// callers must issue a return instead
type CannotCancelPaidInvoiceError struct {
	InvoiceID uuid.UUID
}

func (e *CannotCancelPaidInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s is paid and cannot be cancelled; create a return instead", e.InvoiceID)
}

// ErrorCode returns the stable error code
func (e *CannotCancelPaidInvoiceError) ErrorCode() string {
	return ErrCodeCannotCancelPaidInvoice
}

// ReturnExceedsOriginalError is raised when a return line requests more
// quantity than the original invoice line carried
type ReturnExceedsOriginalError struct {
	ItemID    uuid.UUID
	Original  decimal.Decimal
	Requested decimal.Decimal
}

func (e *ReturnExceedsOriginalError) Error() string {
	return fmt.Sprintf("return quantity %s exceeds original quantity %s for item %s",
		e.Requested, e.Original, e.ItemID)
}

// ErrorCode returns the stable error code
func (e *ReturnExceedsOriginalError) ErrorCode() string {
	return ErrCodeReturnExceedsOriginal
}

var (
	// ErrClaimAccountNotFound is raised when the referenced claim account does not exist
	ErrClaimAccountNotFound = shared.NewDomainError(ErrCodeClaimAccountNotFound, "Claim account not found")
	// ErrClaimAccountInactive is raised when the referenced claim account is inactive
	ErrClaimAccountInactive = shared.NewDomainError(ErrCodeClaimAccountInactive, "Claim account is inactive")
)

// Interface conformance checks
var (
	_ shared.CodedError = (*TaxConfigNotFoundError)(nil)
	_ shared.CodedError = (*ClaimAccountRequiredError)(nil)
	_ shared.CodedError = (*SchemeExceedsQuantityError)(nil)
	_ shared.CodedError = (*CreditLimitExceededError)(nil)
	_ shared.CodedError = (*InvalidInvoiceStatusError)(nil)
	_ shared.CodedError = (*CannotCancelPaidInvoiceError)(nil)
	_ shared.CodedError = (*ReturnExceedsOriginalError)(nil)
)
