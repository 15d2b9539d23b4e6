package domain

import "github.com/shopspring/decimal"

type Item struct {
	ID       int
	Name     string
	Category string
	Size     string
	Color    string
	Price    decimal.Decimal
	Stock    int // never negative once stored
}
