package lifecycle

import (
	"math"

	"comanda/internal/domain"
)

// Action is the single suggested next step for an order. Offering one
// primary action at a time keeps operators from skipping steps.
type Action struct {
	Code   string
	Label  string
	Target domain.OrderStatus
}

var actionForTarget = map[domain.OrderStatus]Action{
	domain.OrderStatusKotSent: {Code: "SEND_TO_KITCHEN", Label: "Send to Kitchen", Target: domain.OrderStatusKotSent},
	domain.OrderStatusServed:  {Code: "MARK_SERVED", Label: "Mark Served", Target: domain.OrderStatusServed},
	domain.OrderStatusBilled:  {Code: "GENERATE_BILL", Label: "Generate Bill", Target: domain.OrderStatusBilled},
	domain.OrderStatusPaid:    {Code: "PROCEED_TO_PAYMENT", Label: "Proceed to Payment", Target: domain.OrderStatusPaid},
}

// StateMachine holds the canonical forward ordering of statuses per
// order type. Dine-in guests eat before paying; takeaway and delivery
// orders are paid up front and then prepared.
type StateMachine struct {
	forward map[domain.OrderType][]domain.OrderStatus
}

func NewStateMachine() *StateMachine {
	dineIn := []domain.OrderStatus{
		domain.OrderStatusOpen,
		domain.OrderStatusKotSent,
		domain.OrderStatusServed,
		domain.OrderStatusBilled,
		domain.OrderStatusPaid,
	}
	payFirst := []domain.OrderStatus{
		domain.OrderStatusOpen,
		domain.OrderStatusBilled,
		domain.OrderStatusPaid,
		domain.OrderStatusKotSent,
		domain.OrderStatusServed,
	}

	return &StateMachine{
		forward: map[domain.OrderType][]domain.OrderStatus{
			domain.OrderTypeDineIn:   dineIn,
			domain.OrderTypeTakeaway: payFirst,
			domain.OrderTypeDelivery: payFirst,
		},
	}
}

// NextAction returns the suggested action for (orderType, status), or
// false when the order is at the end of its forward order or cancelled.
// Arbitrary status jumps through the raw override are not validated
// here; only the suggestion is guaranteed to respect the ordering.
func (sm *StateMachine) NextAction(orderType domain.OrderType, status domain.OrderStatus) (Action, bool) {
	order, ok := sm.forward[orderType]
	if !ok || status == domain.OrderStatusCancelled {
		return Action{}, false
	}

	for i, s := range order {
		if s != status {
			continue
		}
		if i+1 >= len(order) {
			return Action{}, false
		}
		action, ok := actionForTarget[order[i+1]]
		return action, ok
	}
	return Action{}, false
}

// Progress derives a 0-100 completion percentage. Terminal overrides
// come first: a dine-in order is only done once paid, a takeaway or
// delivery order once served. Otherwise the ratio of done items over
// non-cancelled items decides, so cancelling every item drives progress
// back to 0 regardless of order status.
func Progress(o *domain.Order) int {
	if o.Type == domain.OrderTypeDineIn && o.Status == domain.OrderStatusPaid {
		return 100
	}
	if o.Type != domain.OrderTypeDineIn && o.Status == domain.OrderStatusServed {
		return 100
	}

	items := o.NonCancelledItems()
	if len(items) == 0 {
		return 0
	}

	done := 0
	for _, it := range items {
		if it.Status.Done() {
			done++
		}
	}
	return int(math.Floor(100*float64(done)/float64(len(items)) + 0.5))
}
