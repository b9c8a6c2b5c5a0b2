package order

import "errors"

// Status is the checkout lifecycle state of an order.
type Status string

const (
	StatusDraft               Status = "draft"
	StatusPriced              Status = "priced"
	StatusCharged             Status = "charged"
	StatusPersisted           Status = "persisted"
	StatusPricingFailed       Status = "pricing_failed"
	StatusChargeFailed        Status = "charge_failed"
	StatusChargedNotPersisted Status = "charged_not_persisted"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

var transitions = map[Status][]Status{
	StatusDraft:   {StatusPriced, StatusPricingFailed},
	StatusPriced:  {StatusPriced, StatusCharged, StatusChargeFailed, StatusPricingFailed},
	StatusCharged: {StatusPersisted, StatusChargedNotPersisted},
	// A supervisor may retry persistence of a hazard order.
	StatusChargedNotPersisted: {StatusPersisted},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) String() string {
	return string(s)
}
