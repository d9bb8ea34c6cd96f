// Package schedule builds repayment schedules. It has no storage dependency.
package schedule

import (
	"time"

	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/installment"
	"coopfin-loan-engine/pkg/id"
	"coopfin-loan-engine/pkg/money"
)

type Input struct {
	LoanID           string
	Principal        int64
	InterestTotal    int64
	PenaltyTotal     int64
	InstallmentCount int
	StartDate        time.Time
}

func (in Input) validate() error {
	switch {
	case in.InstallmentCount < 1:
		return installment.ErrScheduleSize
	case in.Principal < 0, in.InterestTotal < 0, in.PenaltyTotal < 0:
		return errs.Validation("schedule amounts must not be negative")
	case in.StartDate.IsZero():
		return errs.Validation("schedule start date is required")
	}
	return nil
}

// Generate splits principal, interest and penalty evenly over the
// installments; the last one takes whatever the truncated shares left over.
// Installment i falls due i-1 calendar months after StartDate.
func Generate(in Input) ([]installment.Installment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	n := in.InstallmentCount
	// Shares truncate to whole minor units; the last installment takes the remainder.
	principal := money.Split(in.Principal, n)
	interest := money.Split(in.InterestTotal, n)
	penalty := money.Split(in.PenaltyTotal, n)
	start := dateOnly(in.StartDate)

	out := make([]installment.Installment, n)
	for i := 0; i < n; i++ {
		it := installment.Installment{
			InstallmentID:     id.NewID32(),
			LoanID:            in.LoanID,
			Number:            i + 1,
			TotalInstallments: n,
			DueDate:           AddMonths(start, i),
			Principal:         principal[i],
			Interest:          interest[i],
			PenaltyFee:        penalty[i],
			Status:            installment.StatusPending,
		}
		it.Recompute()
		out[i] = it
	}
	return out, nil
}

// AddMonths moves t forward by n calendar months, clamping the day to the
// end of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
