package usecase

import (
	"fmt"

	"orders-service/internal/domain/entities"
)

func productIndex(products []entities.Product) map[string]entities.Product {
	index := make(map[string]entities.Product, len(products))
	for _, product := range products {
		index[product.ID] = product
	}
	return index
}

// priceLineItems returns a copy of the requested items with the catalog
// price and name applied, plus the order totals. An item whose product id is
// missing from the catalog aborts the whole computation: defaulting a price
// to zero would corrupt the order.
func priceLineItems(items []entities.OrderItem, catalog map[string]entities.Product) ([]entities.OrderItem, float64, int, error) {
	priced := make([]entities.OrderItem, len(items))
	var totalAmount float64
	var totalItems int

	for i, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, 0, 0, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		priced[i] = entities.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Name:      product.Name,
		}
		totalAmount += product.Price * float64(item.Quantity)
		totalItems += item.Quantity
	}

	return priced, totalAmount, totalItems, nil
}
