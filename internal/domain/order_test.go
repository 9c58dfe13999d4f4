package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID: "order-1",
		Items: []domain.OrderProduct{
			{
				ProductID:   "p1",
				Name:        "Keyboard",
				Description: "Mechanical keyboard",
				Price:       49.99,
				Quantity:    2,
			},
		},
		Total:           99.98,
		OrderDate:       now,
		DeliveryDate:    now.Add(72 * time.Hour),
		DeliveryAddress: "1 Main St",
		CustomerName:    "Jane Roe",
		CustomerEmail:   "jane@example.com",
		CustomerPhone:   "+100000000",
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "negative total",
			mut: func(o *domain.Order) {
				o.Total = -1
			},
		},
		{
			name: "item without product",
			mut: func(o *domain.Order) {
				o.Items[0].ProductID = ""
			},
		},
		{
			name: "item with zero qty",
			mut: func(o *domain.Order) {
				o.Items[0].Quantity = 0
			},
		},
		{
			name: "item with negative price",
			mut: func(o *domain.Order) {
				o.Items[0].Price = -5
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			if errs := order.ValidateInvariants(); len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
		})
	}
}

func TestIsInsufficientStock(t *testing.T) {
	if !domain.IsInsufficientStock(domain.ErrInsufficientStock) {
		t.Fatal("expected true for ErrInsufficientStock")
	}
	if domain.IsInsufficientStock(domain.ErrProductNotFound) {
		t.Fatal("expected false for unrelated error")
	}
}
