package reservation

import "errors"

var ErrNegativeAmount = errors.New("amount cannot be negative")

// Payment holds the financial state of a reservation. The payment status is
// derived, never stored independently: every mutation goes through clamp and
// re-derivation so the three fields cannot drift apart.
type Payment struct {
	total Money
	paid  Money
}

func NewPayment(total Money) (Payment, error) {
	if total.IsNegative() {
		return Payment{}, ErrNegativeAmount
	}
	return Payment{total: total}, nil
}

func ReconstructPayment(total, paid Money) Payment {
	return Payment{total: total, paid: clampPaid(paid, total)}
}

func (p Payment) Total() Money { return p.total }
func (p Payment) Paid() Money  { return p.paid }

// Status derives the payment classification from (total, paid).
// paid >= total > 0 -> paid; 0 < paid < total -> partial; else unpaid.
func (p Payment) Status() PaymentStatus {
	switch {
	case p.total.Cents() > 0 && p.paid.Cents() >= p.total.Cents():
		return PaymentPaid
	case p.paid.Cents() > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// WithAmounts replaces both amounts, clamping paid into [0, total].
func (p Payment) WithAmounts(total, paid Money) (Payment, error) {
	if total.IsNegative() || paid.IsNegative() {
		return Payment{}, ErrNegativeAmount
	}
	return Payment{total: total, paid: clampPaid(paid, total)}, nil
}

// Apply adds an incremental payment. Overpayment is clamped to the total.
func (p Payment) Apply(amount Money) (Payment, error) {
	if amount.IsNegative() {
		return Payment{}, ErrNegativeAmount
	}
	return Payment{total: p.total, paid: clampPaid(p.paid.Add(amount), p.total)}, nil
}

// MarkFullyPaid sets paid to the full total.
func (p Payment) MarkFullyPaid() Payment {
	return Payment{total: p.total, paid: p.total}
}

func clampPaid(paid, total Money) Money {
	if paid.IsNegative() {
		return NewMoney(0)
	}
	if total.LessThan(paid) {
		return total
	}
	return paid
}
