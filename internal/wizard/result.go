package wizard

import "comanda/internal/cart"

type CommitStatus string

const (
	CommitAllSuccess CommitStatus = "ALL_SUCCESS"
	CommitPartial    CommitStatus = "PARTIAL"
	CommitAllFailed  CommitStatus = "ALL_FAILED"
)

type LineSuccess struct {
	MenuItemID int
	Quantity   int
}

type LineFailure struct {
	MenuItemID int
	Quantity   int
	Reason     string
}

// CommitResult reports per-line the outcome of submitting the cart. A
// failed line never blocks the remaining lines; it is recorded here
// instead of being silently dropped.
type CommitResult struct {
	Status    CommitStatus
	OrderID   uint
	Successes []LineSuccess
	Failures  []LineFailure
}

func commitStatus(successes []LineSuccess, failures []LineFailure) CommitStatus {
	switch {
	case len(successes) == 0:
		return CommitAllFailed
	case len(failures) > 0:
		return CommitPartial
	default:
		return CommitAllSuccess
	}
}

func lineSuccess(line cart.Line) LineSuccess {
	return LineSuccess{MenuItemID: line.MenuItemID, Quantity: line.Quantity}
}

func lineFailure(line cart.Line, reason string) LineFailure {
	return LineFailure{MenuItemID: line.MenuItemID, Quantity: line.Quantity, Reason: reason}
}
