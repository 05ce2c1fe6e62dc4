package wizard

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/config"
	"comanda/internal/lifecycle"
	"comanda/internal/orderstore"
	"comanda/internal/paygw"
	"comanda/internal/payment"
)

// Deps bundles the wired collaborators for the HTTP layer. Store is
// exposed concretely because it serves both the wizard's order
// operations and the per-item mutations.
type Deps struct {
	Store    *orderstore.Store
	Payments PaymentOrchestrator
	Advancer *lifecycle.Advancer
	Machine  *lifecycle.StateMachine
	TaxRate  decimal.Decimal
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*Deps, error) {
	taxRate, err := decimal.NewFromString(cfg.Order.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("parsing tax rate: %w", err)
	}

	store := orderstore.New(db, taxRate, logger)
	provider := paygw.NewClient(cfg.Payment.ProviderBaseURL, cfg.Payment.RequestTimeout, logger)

	orchestrator := payment.NewOrchestrator(provider, logger, payment.Config{
		PollInterval:    cfg.Payment.PollInterval,
		SettleDelay:     cfg.Payment.SettleDelay,
		MaxPollDuration: cfg.Payment.MaxPollDuration,
	})

	sm := lifecycle.NewStateMachine()

	return &Deps{
		Store:    store,
		Payments: orchestrator,
		Advancer: lifecycle.NewAdvancer(sm, store, logger),
		Machine:  sm,
		TaxRate:  taxRate,
	}, nil
}
