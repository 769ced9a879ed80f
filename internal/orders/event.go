package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/food_cart/internal/domain"
)

type placedItem struct {
	ItemID    string   `json:"item_id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	OptionIDs []string `json:"option_ids"`
	UnitPrice float64  `json:"unit_price"`
	LineTotal float64  `json:"line_total"`
}

type placedEvent struct {
	OrderID       string       `json:"order_id"`
	UserID        string       `json:"user_id"`
	OrderType     string       `json:"order_type"`
	PaymentMethod string       `json:"payment_method"`
	Items         []placedItem `json:"items"`
	Subtotal      float64      `json:"subtotal"`
	Discount      float64      `json:"discount"`
	Tax           float64      `json:"tax"`
	DeliveryFee   float64      `json:"delivery_fee"`
	TotalAmount   float64      `json:"total_amount"`
	Currency      string       `json:"currency"`
	PlacedAt      time.Time    `json:"placed_at"`
}

func placedPayload(order *domain.Order) ([]byte, error) {
	items := make([]placedItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, placedItem{
			ItemID:    line.ItemID,
			Name:      line.ItemName,
			Quantity:  line.Quantity,
			OptionIDs: line.SelectedOptionIDs,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}

	payload, err := json.Marshal(placedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		OrderType:     string(order.OrderType),
		PaymentMethod: string(order.PaymentMethod),
		Items:         items,
		Subtotal:      order.Summary.Subtotal,
		Discount:      order.Summary.Discount,
		Tax:           order.Summary.Tax,
		DeliveryFee:   order.Summary.DeliveryFee,
		TotalAmount:   order.Summary.Total,
		Currency:      order.Summary.Currency,
		PlacedAt:      order.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	return payload, nil
}
