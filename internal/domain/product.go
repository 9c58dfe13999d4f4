package domain

import "time"

// Product описывает товарную позицию на складе.
type Product struct {
	// ID — стабильный идентификатор товара.
	ID string `json:"id"`
	// Name — отображаемое название товара.
	Name string `json:"name"`
	// Description — произвольное описание.
	Description string `json:"description"`
	// Price — цена за единицу, неотрицательная.
	Price float64 `json:"price"`
	// Quantity — текущий остаток на складе; инвариант: никогда не уходит в минус.
	Quantity int `json:"quantity"`
	// Version используется хранилищем для optimistic locking.
	Version int64 `json:"version"`
	// CreatedAt/UpdatedAt фиксируют моменты создания и последнего изменения.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.ID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrQuantityNegative)
	}

	return errs
}

// ProductPage — страница товаров из хранилища для постраничных выборок.
type ProductPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
	TotalItems int64     `json:"total_items"`
	TotalPages int       `json:"total_pages"`
}
