package model

import (
	"fmt"
	"strings"
)

// PaymentMethod is how an expense was paid.
type PaymentMethod string

const (
	Cash       PaymentMethod = "Cash"
	CreditCard PaymentMethod = "Credit Card"
)

// ParsePaymentMethod accepts "cash", "card", "credit card" (any case) and the
// empty string, which yields CreditCard.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return CreditCard, nil
	case "cash":
		return Cash, nil
	case "card", "credit", "credit card", "creditcard":
		return CreditCard, nil
	}
	return "", fmt.Errorf("unknown payment method %q (want cash or card)", s)
}

// Expense is one spending record. Date is the creation-time calendar date
// formatted for display.
type Expense struct {
	ID       string        `json:"id"`
	Item     string        `json:"item"`
	Amount   float64       `json:"amount"`
	Currency string        `json:"currency"`
	Method   PaymentMethod `json:"method"`
	Payer    string        `json:"payer"`
	Date     string        `json:"date"`
}
