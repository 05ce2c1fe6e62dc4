package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID         int
	CategoryID int
	Name       string
	Price      decimal.Decimal
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type MenuCategory struct {
	ID   int
	Name string
}

type Table struct {
	ID     int
	Number int
	Seats  int
}
