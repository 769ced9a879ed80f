package domain

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodCash PaymentMethod = "CASH"

	DefaultPaymentMethod = PaymentMethodCard
)

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return DefaultPaymentMethod, true
	case PaymentMethodCard:
		return PaymentMethodCard, true
	case PaymentMethodCash:
		return PaymentMethodCash, true
	}
	return "", false
}

type OrderStatus string

const (
	OrderStatusAccepted OrderStatus = "ACCEPTED"
)

// Order is the immutable record produced by placing a checkout.
type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Email             string          `json:"email"`
	OrderType         OrderType       `json:"orderType"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	Summary           CheckoutSummary `json:"summary"`
	MinimumOrderTotal float64         `json:"minimumOrderTotal"`
	DeliveryAddress   *Address        `json:"deliveryAddress"`
	Items             []PricedLine    `json:"items"`
	Status            OrderStatus     `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Clone returns a copy that shares no slices with the receiver.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	out.DeliveryAddress = o.DeliveryAddress.Clone()
	out.Items = make([]PricedLine, len(o.Items))
	for i, item := range o.Items {
		item.SelectedOptionIDs = append([]string{}, item.SelectedOptionIDs...)
		item.Modifiers = append([]SelectedModifier{}, item.Modifiers...)
		item.ValidationIssues = append([]string{}, item.ValidationIssues...)
		out.Items[i] = item
	}
	return &out
}
