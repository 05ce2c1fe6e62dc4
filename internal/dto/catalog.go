package dto

import "github.com/shopspring/decimal"

type MenuItemDTO struct {
	ID         int             `json:"id"`
	CategoryID int             `json:"categoryId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

type MenuCategoryDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TableDTO struct {
	ID     int `json:"id"`
	Number int `json:"number"`
	Seats  int `json:"seats"`
}
