package event

import (
	"context"
	"time"
)

type Type string

const (
	TypeLoanTransitioned         Type = "loan.transitioned"
	TypeLoanDisbursed            Type = "loan.disbursed"
	TypeRepaymentReceived        Type = "loan.repayment_received"
	TypeDemandReissued           Type = "installment.demand_reissued"
	TypeScheduleGenerationFailed Type = "loan.schedule_generation_failed"
)

// Event is published after the unit of work that produced it has committed.
type Event struct {
	Type        Type              `json:"type"`
	AggregateID string            `json:"aggregate_id"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Amount      int64             `json:"amount,omitempty"`
}

func New(t Type, aggregateID string, attrs map[string]string) Event {
	return Event{Type: t, AggregateID: aggregateID, OccurredAt: time.Now().UTC(), Attributes: attrs}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}
