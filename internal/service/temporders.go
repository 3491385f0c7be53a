package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

func (s *Service) AddTempOrder(ctx context.Context, pc domain.PricingContext, req domain.TempOrderCreateRequest) (domain.TempOrder, error) {
	temp, err := s.buildTempOrder(req)
	if err != nil {
		return domain.TempOrder{}, err
	}

	err = s.run(ctx, "add_temp_order", func(tx store.Tx) error {
		if temp.AssignedUserID != "" {
			if err := s.convertTempOrder(ctx, tx, pc, &temp); err != nil {
				return err
			}
		}
		if err := tx.InsertTempOrder(ctx, temp); err != nil {
			return err
		}
		return s.recomputeDebt(ctx, tx, temp.AssignedUserID)
	})
	if err != nil {
		return domain.TempOrder{}, err
	}

	s.logAudit(ctx, "temp_order_create", "temp_order", temp.ID, fmt.Sprintf("total=%s,assigned=%s", temp.TotalAmount, temp.AssignedUserID))
	return temp, nil
}

func (s *Service) buildTempOrder(req domain.TempOrderCreateRequest) (domain.TempOrder, error) {
	temp := domain.TempOrder{
		ID:               xid.New("tmp"),
		InvoiceName:      strings.TrimSpace(req.InvoiceName),
		TotalAmount:      req.TotalAmount,
		RemainingAmount:  req.RemainingAmount,
		Status:           req.Status,
		SubOrders:        make([]domain.SubOrder, 0, len(req.SubOrders)),
		AssignedUserID:   strings.TrimSpace(req.AssignedUserID),
		AssignedUserName: strings.TrimSpace(req.AssignedUserName),
		CreatedAt:        s.now(),
	}
	if temp.Status == "" {
		temp.Status = domain.StatusPending
	}
	if !temp.Status.Valid() {
		return domain.TempOrder{}, fmt.Errorf("%w: unknown status %q", store.ErrInvalidTransaction, temp.Status)
	}

	subTotal := decimal.Zero
	subRemaining := decimal.Zero
	for _, sub := range req.SubOrders {
		if sub.SellingPriceLYD.IsNegative() || sub.DownPaymentLYD.IsNegative() {
			return domain.TempOrder{}, fmt.Errorf("%w: sub-order amounts must not be negative", store.ErrInvalidTransaction)
		}
		if sub.SubOrderID == "" {
			sub.SubOrderID = xid.New("sub")
		}
		if sub.ShipmentStatus == "" {
			sub.ShipmentStatus = domain.StatusPending
		}
		sub.RemainingAmount = domain.ClampZero(sub.SellingPriceLYD.Sub(sub.DownPaymentLYD))
		subTotal = subTotal.Add(sub.SellingPriceLYD)
		subRemaining = subRemaining.Add(sub.RemainingAmount)
		temp.SubOrders = append(temp.SubOrders, sub)
	}
	if temp.TotalAmount.IsZero() && len(temp.SubOrders) > 0 {
		temp.TotalAmount = subTotal
		temp.RemainingAmount = subRemaining
	}

	if temp.TotalAmount.IsNegative() || temp.RemainingAmount.IsNegative() || temp.RemainingAmount.GreaterThan(temp.TotalAmount) {
		return domain.TempOrder{}, fmt.Errorf("%w: remaining must be between zero and the total", store.ErrInvalidTransaction)
	}
	return temp, nil
}

// convertTempOrder turns an assigned draft into a real order. What was
// already paid on the draft becomes the order's down payment.
func (s *Service) convertTempOrder(ctx context.Context, tx store.Tx, pc domain.PricingContext, temp *domain.TempOrder) error {
	customer, err := tx.GetCustomer(ctx, temp.AssignedUserID)
	if err != nil {
		return err
	}
	if temp.AssignedUserName == "" {
		temp.AssignedUserName = customer.Name
	}

	description := temp.InvoiceName
	if description == "" {
		description = fmt.Sprintf("Draft order %s", temp.ID)
	}
	resp, err := s.createOrder(ctx, tx, pc, domain.OrderCreateRequest{
		UserID:          customer.ID,
		CustomerName:    temp.AssignedUserName,
		Status:          temp.Status,
		SellingPriceLYD: temp.TotalAmount,
		DownPaymentLYD:  domain.ClampZero(temp.TotalAmount.Sub(temp.RemainingAmount)),
		ItemDescription: description,
	})
	if err != nil {
		return err
	}
	temp.ParentInvoiceID = resp.Order.ID
	return nil
}

func (s *Service) UpdateTempOrder(ctx context.Context, pc domain.PricingContext, id string, req domain.TempOrderUpdateRequest) (domain.TempOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.TempOrder{}, store.ErrInvalidTransaction
	}
	if req.Status != nil && !req.Status.Valid() {
		return domain.TempOrder{}, fmt.Errorf("%w: unknown status %q", store.ErrInvalidTransaction, *req.Status)
	}

	var updated domain.TempOrder
	err := s.run(ctx, "update_temp_order", func(tx store.Tx) error {
		temp, err := tx.GetTempOrder(ctx, id)
		if err != nil {
			return err
		}
		previousUser := temp.AssignedUserID

		setString(&temp.InvoiceName, req.InvoiceName)
		setString(&temp.AssignedUserName, req.AssignedUserName)
		if req.Status != nil {
			temp.Status = *req.Status
		}
		if req.AssignedUserID != nil {
			userID := strings.TrimSpace(*req.AssignedUserID)
			if userID != temp.AssignedUserID && temp.ParentInvoiceID != "" {
				return fmt.Errorf("%w: draft order was already converted", store.ErrInvalidTransaction)
			}
			temp.AssignedUserID = userID
		}
		if temp.AssignedUserID != "" && temp.ParentInvoiceID == "" {
			if err := s.convertTempOrder(ctx, tx, pc, temp); err != nil {
				return err
			}
		}

		if err := tx.UpdateTempOrder(ctx, *temp); err != nil {
			return err
		}
		if err := s.recomputeDebt(ctx, tx, temp.AssignedUserID); err != nil {
			return err
		}
		if previousUser != temp.AssignedUserID {
			if err := ignoreNotFound(s.recomputeDebt(ctx, tx, previousUser)); err != nil {
				return err
			}
		}
		updated = *temp
		return nil
	})
	if err != nil {
		return domain.TempOrder{}, err
	}

	s.logAudit(ctx, "temp_order_update", "temp_order", updated.ID, fmt.Sprintf("assigned=%s,parent=%s", updated.AssignedUserID, updated.ParentInvoiceID))
	return updated, nil
}

// AddTempOrderPayment records a payment on one sub-order. For a converted
// draft the payment also lands on the parent order.
func (s *Service) AddTempOrderPayment(ctx context.Context, tempID string, req domain.TempOrderPaymentRequest) (domain.TempOrder, error) {
	tempID = strings.TrimSpace(tempID)
	req.SubOrderID = strings.TrimSpace(req.SubOrderID)
	if tempID == "" || req.SubOrderID == "" || !req.Amount.IsPositive() {
		return domain.TempOrder{}, fmt.Errorf("%w: sub-order and a positive amount are required", store.ErrInvalidTransaction)
	}

	var updated domain.TempOrder
	err := s.run(ctx, "temp_order_payment", func(tx store.Tx) error {
		temp, err := tx.GetTempOrder(ctx, tempID)
		if err != nil {
			return err
		}

		index := -1
		for i := range temp.SubOrders {
			if temp.SubOrders[i].SubOrderID == req.SubOrderID {
				index = i
				break
			}
		}
		if index < 0 {
			return store.ErrNotFound
		}
		sub := &temp.SubOrders[index]
		// Both figures drop by the full payment. Money paid beyond one
		// sub-order's remainder still counts toward the rest of the draft.
		sub.RemainingAmount = domain.ClampZero(sub.RemainingAmount.Sub(req.Amount))
		temp.RemainingAmount = domain.ClampZero(temp.RemainingAmount.Sub(req.Amount))
		if err := tx.UpdateTempOrder(ctx, *temp); err != nil {
			return err
		}

		payment := domain.Transaction{
			ID:           xid.New("txn"),
			CustomerID:   domain.TempCustomerPrefix + sub.SubOrderID,
			CustomerName: sub.CustomerName,
			Type:         domain.TransactionPayment,
			Status:       "completed",
			Amount:       req.Amount,
			Date:         s.now(),
			Description:  defaultString(strings.TrimSpace(req.Notes), fmt.Sprintf("Payment for sub-order %s", sub.SubOrderID)),
		}
		if temp.AssignedUserID != "" {
			payment.CustomerID = temp.AssignedUserID
			payment.CustomerName = defaultString(temp.AssignedUserName, sub.CustomerName)
		}
		if temp.ParentInvoiceID != "" {
			if _, err := tx.GetOrder(ctx, temp.ParentInvoiceID); err == nil {
				payment.OrderID = temp.ParentInvoiceID
			} else if err := ignoreNotFound(err); err != nil {
				return err
			}
		}
		if err := s.applyTransaction(ctx, tx, payment); err != nil {
			return err
		}
		updated = *temp
		return nil
	})
	if err != nil {
		return domain.TempOrder{}, err
	}

	s.logAudit(ctx, "temp_order_payment", "temp_order", tempID, fmt.Sprintf("sub_order=%s,amount=%s", req.SubOrderID, req.Amount))
	return updated, nil
}

// DeleteTempOrder removes the draft together with the order it was
// converted into.
func (s *Service) DeleteTempOrder(ctx context.Context, pc domain.PricingContext, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidTransaction
	}

	err := s.run(ctx, "delete_temp_order", func(tx store.Tx) error {
		temp, err := tx.GetTempOrder(ctx, id)
		if err != nil {
			return err
		}
		if temp.ParentInvoiceID != "" {
			if _, err := s.deleteOrder(ctx, tx, pc, temp.ParentInvoiceID); ignoreNotFound(err) != nil {
				return err
			}
		}
		if err := tx.DeleteTempOrder(ctx, id); err != nil {
			return err
		}
		return ignoreNotFound(s.recomputeDebt(ctx, tx, temp.AssignedUserID))
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, "temp_order_delete", "temp_order", id, "")
	return nil
}

func (s *Service) GetTempOrder(ctx context.Context, id string) (domain.TempOrder, error) {
	var temp domain.TempOrder
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		found, err := tx.GetTempOrder(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		temp = *found
		return nil
	})
	return temp, err
}

func (s *Service) ListTempOrders(ctx context.Context, filter domain.TempOrderFilter) ([]domain.TempOrder, error) {
	var temps []domain.TempOrder
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		temps, err = tx.ListTempOrders(ctx, filter)
		return err
	})
	return temps, err
}
