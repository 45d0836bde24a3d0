package models

// Draft is an unsubmitted order: the chosen store and the selected pizzas in order.
type Draft struct {
	FranchiseID ID
	StoreID     ID
	Items       []MenuItem
}

// Total is the sum of the selected unit prices.
func (d Draft) Total() Price {
	total := ZeroPrice()
	for _, item := range d.Items {
		total = total.Plus(item.Price)
	}
	return total
}

// OrderRequest copies the draft into the line items the order service expects.
func (d Draft) OrderRequest() OrderRequest {
	items := make([]OrderItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = OrderItem{
			MenuID:      item.ID,
			Description: item.Title,
			Price:       item.Price,
		}
	}
	return OrderRequest{
		FranchiseID: d.FranchiseID,
		StoreID:     d.StoreID,
		Items:       items,
	}
}

// Confirmation is a placed order, its receipt and the total shown before submission.
type Confirmation struct {
	Order   Order
	Receipt Receipt
	Total   Price
}
