package invoicing

import (
	"sort"
	"time"

	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationEntry is one candidate invoice for a bulk payment: its id, its
// outstanding balance as computed by the caller, and the flight date the
// overdue derivation is based on.
type AllocationEntry struct {
	InvoiceID  uuid.UUID
	Balance    decimal.Decimal
	FlightDate time.Time
}

// Allocation is the portion of a bulk payment applied to one invoice
type Allocation struct {
	InvoiceID  uuid.UUID
	Applied    decimal.Decimal
	NewBalance decimal.Decimal
	Status     InvoiceStatus
}

// AllocationResult is the outcome of distributing one bulk payment
type AllocationResult struct {
	Allocations []Allocation
	// Unapplied is what remains after every entry is settled. It is not
	// refunded or credited; callers surface it as a warning.
	Unapplied decimal.Decimal
}

// TotalApplied returns the sum applied across all allocations
func (r *AllocationResult) TotalApplied() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.Applied)
	}
	return total
}

// AllocatePayment distributes a single payment amount across the entries in
// the order given, greedily: each invoice absorbs min(remaining, balance)
// until the funds run out. Entries with a non-positive balance are skipped.
// The routine follows the caller's order exactly; callers wanting
// oldest-flight-first must sort first (see SortOldestFlightFirst).
func AllocatePayment(entries []AllocationEntry, totalAmount decimal.Decimal, now time.Time) (*AllocationResult, error) {
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if len(entries) == 0 {
		return nil, shared.NewDomainError("NO_INVOICES", "At least one invoice is required")
	}

	result := &AllocationResult{
		Allocations: make([]Allocation, 0, len(entries)),
	}

	remaining := totalAmount
	for _, entry := range entries {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if entry.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		applied := decimal.Min(remaining, entry.Balance)
		newBalance := entry.Balance.Sub(applied)

		result.Allocations = append(result.Allocations, Allocation{
			InvoiceID:  entry.InvoiceID,
			Applied:    applied,
			NewBalance: newBalance,
			Status:     StatusFor(newBalance, entry.FlightDate, now),
		})

		remaining = remaining.Sub(applied)
	}

	result.Unapplied = remaining

	return result, nil
}

// SortOldestFlightFirst orders entries by flight date ascending, in place.
// Ties keep their relative order so repeated runs allocate identically.
func SortOldestFlightFirst(entries []AllocationEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FlightDate.Before(entries[j].FlightDate)
	})
}
