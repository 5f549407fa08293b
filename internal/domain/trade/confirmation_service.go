package trade

import "context"

// ConfirmationService confirms purchase orders and persists the result
type ConfirmationService struct {
	orders PurchaseOrderRepository
}

// NewConfirmationService creates a new ConfirmationService
func NewConfirmationService(orders PurchaseOrderRepository) *ConfirmationService {
	return &ConfirmationService{orders: orders}
}

// Confirm transitions the order to confirmed and saves it
func (s *ConfirmationService) Confirm(ctx context.Context, order *PurchaseOrder) error {
	if err := order.Confirm(); err != nil {
		return err
	}
	return s.orders.Save(ctx, order)
}
