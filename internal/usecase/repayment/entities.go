package repayment

import "coopfin-loan-engine/internal/domain/installment"

// Allocation reports how one repayment was spread over the schedule.
type Allocation struct {
	Settled       []string `json:"settled_installment_ids"`
	PartialID     string   `json:"partial_installment_id,omitempty"`
	PartialAmount int64    `json:"partial_amount,omitempty"`
	Unallocated   int64    `json:"unallocated,omitempty"`
	AllPaid       bool     `json:"all_paid"`
}

// Outstanding sums what is still owed on the open installments.
func Outstanding(items []installment.Installment) int64 {
	var total int64
	for _, it := range items {
		if it.Open() {
			total += it.Remaining()
		}
	}
	return total
}
