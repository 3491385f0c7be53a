package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

// nextInvoiceSequence takes the sequence after the customer's latest order and
// bumps past the stored counter when the counter is ahead.
func nextInvoiceSequence(latest *domain.Order, counter int) int {
	seq := 1
	if latest != nil {
		if n, ok := parseInvoiceSequence(latest.InvoiceNumber); ok {
			seq = n + 1
		} else if latest.SequenceNumber > 0 {
			seq = latest.SequenceNumber + 1
		}
	}
	if counter >= seq {
		seq = counter + 1
	}
	return seq
}

func parseInvoiceSequence(invoiceNumber string) (int, bool) {
	idx := strings.LastIndex(invoiceNumber, "-")
	if idx < 0 || idx == len(invoiceNumber)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(invoiceNumber[idx+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func formatInvoiceNumber(username string, seq int) string {
	return fmt.Sprintf("%s-%03d", username, seq)
}

func (s *Service) CreateOrder(ctx context.Context, pc domain.PricingContext, req domain.OrderCreateRequest) (domain.OrderCreateResponse, error) {
	var resp domain.OrderCreateResponse
	err := s.run(ctx, "create_order", func(tx store.Tx) error {
		var err error
		resp, err = s.createOrder(ctx, tx, pc, req)
		return err
	})
	if err != nil {
		return domain.OrderCreateResponse{}, err
	}

	s.logAudit(ctx, "order_create", "order", resp.Order.ID, fmt.Sprintf("invoice=%s,price=%s,down=%s", resp.Order.InvoiceNumber, resp.Order.SellingPriceLYD, resp.Order.DownPaymentLYD))
	return resp, nil
}

func (s *Service) createOrder(ctx context.Context, tx store.Tx, pc domain.PricingContext, req domain.OrderCreateRequest) (domain.OrderCreateResponse, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return domain.OrderCreateResponse{}, fmt.Errorf("%w: user id required", store.ErrInvalidTransaction)
	}
	if req.SellingPriceLYD.IsNegative() || req.DownPaymentLYD.IsNegative() || req.PurchasePriceUSD.IsNegative() || req.ExchangeRate.IsNegative() {
		return domain.OrderCreateResponse{}, fmt.Errorf("%w: amounts must not be negative", store.ErrInvalidTransaction)
	}
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	if !req.Status.Valid() {
		return domain.OrderCreateResponse{}, fmt.Errorf("%w: unknown status %q", store.ErrInvalidTransaction, req.Status)
	}
	if req.PaymentMethod != "" {
		if _, ok := domain.TreasuryCardTypeFor(req.PaymentMethod); !ok {
			return domain.OrderCreateResponse{}, ErrUnknownPaymentMethod
		}
	}

	customer, err := tx.GetCustomer(ctx, req.UserID)
	if err != nil {
		return domain.OrderCreateResponse{}, err
	}

	latest, err := tx.LatestOrderForCustomer(ctx, customer.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.OrderCreateResponse{}, err
	}
	seq := nextInvoiceSequence(latest, customer.OrderCounter)

	rate := req.ExchangeRate
	if !rate.IsPositive() {
		rate = pc.GetExchangeRate()
	}
	if !rate.IsPositive() {
		rate = decimal.NewFromInt(1)
	}

	now := s.now()
	operationDate := now
	if req.OperationDate != nil {
		operationDate = req.OperationDate.UTC()
	}

	order := domain.Order{
		ID:                           xid.New("ord"),
		InvoiceNumber:                formatInvoiceNumber(customer.Username, seq),
		SequenceNumber:               seq,
		TrackingID:                   strings.TrimSpace(req.TrackingID),
		UserID:                       customer.ID,
		CustomerName:                 defaultString(strings.TrimSpace(req.CustomerName), customer.Name),
		CustomerPhone:                defaultString(strings.TrimSpace(req.CustomerPhone), customer.Phone),
		CustomerAddress:              defaultString(strings.TrimSpace(req.CustomerAddress), customer.Address),
		OperationDate:                operationDate,
		Status:                       req.Status,
		SellingPriceLYD:              req.SellingPriceLYD,
		RemainingAmount:              req.SellingPriceLYD,
		DownPaymentLYD:               req.DownPaymentLYD,
		PurchasePriceUSD:             req.PurchasePriceUSD,
		ExchangeRate:                 rate,
		PaymentMethod:                req.PaymentMethod,
		CustomerPricePerKiloCurrency: domain.CurrencyLYD,
		ManagerID:                    managerID(ctx, req.ManagerID),
		ItemDescription:              strings.TrimSpace(req.ItemDescription),
		ProductLinks:                 strings.TrimSpace(req.ProductLinks),
		Store:                        strings.TrimSpace(req.Store),
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
	if err := tx.InsertOrder(ctx, order); err != nil {
		return domain.OrderCreateResponse{}, err
	}

	resp := domain.OrderCreateResponse{TreasuryDistributed: true}
	if order.DownPaymentLYD.IsPositive() {
		payment := domain.Transaction{
			ID:           xid.New("txn"),
			OrderID:      order.ID,
			CustomerID:   customer.ID,
			CustomerName: order.CustomerName,
			Type:         domain.TransactionPayment,
			Status:       "completed",
			Amount:       order.DownPaymentLYD,
			Date:         now,
			Description:  "Down payment",
		}
		if err := s.applyTransaction(ctx, tx, payment); err != nil {
			return domain.OrderCreateResponse{}, err
		}
		resp.DownPayment = &payment

		if order.PaymentMethod != "" {
			distributed, err := s.Distribute(ctx, tx, pc, order.ID, order.InvoiceNumber, order.PaymentMethod, order.DownPaymentLYD)
			if err != nil {
				return domain.OrderCreateResponse{}, err
			}
			if !distributed {
				s.log.Warn().
					Str("order_id", order.ID).
					Str("customer_id", customer.ID).
					Str("method", string(order.PaymentMethod)).
					Msg("order created but down payment was not distributed to treasury")
			}
			resp.TreasuryDistributed = distributed
		}
	}

	if err := tx.SetCustomerOrderCounter(ctx, customer.ID, seq); err != nil {
		return domain.OrderCreateResponse{}, err
	}
	if err := s.recomputeDebt(ctx, tx, customer.ID); err != nil {
		return domain.OrderCreateResponse{}, err
	}

	stored, err := tx.GetOrder(ctx, order.ID)
	if err != nil {
		return domain.OrderCreateResponse{}, err
	}
	resp.Order = *stored
	return resp, nil
}

// UpdateOrder edits descriptive fields and status. A new selling price moves
// the remaining amount by the same delta.
func (s *Service) UpdateOrder(ctx context.Context, id string, req domain.OrderUpdateRequest) (domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Order{}, store.ErrInvalidTransaction
	}
	if req.Status != nil && !req.Status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", store.ErrInvalidTransaction, *req.Status)
	}
	if (req.SellingPriceLYD != nil && req.SellingPriceLYD.IsNegative()) || (req.PurchasePriceUSD != nil && req.PurchasePriceUSD.IsNegative()) {
		return domain.Order{}, fmt.Errorf("%w: amounts must not be negative", store.ErrInvalidTransaction)
	}

	var updated domain.Order
	err := s.run(ctx, "update_order", func(tx store.Tx) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		previousUser := order.UserID

		setString(&order.CustomerName, req.CustomerName)
		setString(&order.CustomerPhone, req.CustomerPhone)
		setString(&order.CustomerAddress, req.CustomerAddress)
		setString(&order.TrackingID, req.TrackingID)
		setString(&order.ItemDescription, req.ItemDescription)
		setString(&order.ProductLinks, req.ProductLinks)
		setString(&order.Store, req.Store)
		if req.Status != nil {
			order.Status = *req.Status
		}
		if req.PurchasePriceUSD != nil {
			order.PurchasePriceUSD = *req.PurchasePriceUSD
		}
		if req.SellingPriceLYD != nil {
			delta := req.SellingPriceLYD.Sub(order.SellingPriceLYD)
			order.SellingPriceLYD = *req.SellingPriceLYD
			order.RemainingAmount = domain.ClampZero(order.RemainingAmount.Add(delta))
		}
		if req.UserID != nil {
			userID := strings.TrimSpace(*req.UserID)
			if userID == "" {
				return store.ErrInvalidTransaction
			}
			if _, err := tx.GetCustomer(ctx, userID); err != nil {
				return err
			}
			order.UserID = userID
		}
		order.UpdatedAt = s.now()

		if err := tx.UpdateOrder(ctx, *order); err != nil {
			return err
		}
		if err := s.recomputeDebt(ctx, tx, order.UserID); err != nil {
			return err
		}
		if previousUser != order.UserID {
			if err := ignoreNotFound(s.recomputeDebt(ctx, tx, previousUser)); err != nil {
				return err
			}
		}
		updated = *order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logAudit(ctx, "order_update", "order", updated.ID, fmt.Sprintf("status=%s,price=%s", updated.Status, updated.SellingPriceLYD))
	return updated, nil
}

func (s *Service) conversionRate(order domain.Order, pc domain.PricingContext) (decimal.Decimal, error) {
	if domain.UsableRate(order.ExchangeRate) {
		return order.ExchangeRate, nil
	}
	if domain.UsableRate(pc.GetExchangeRate()) {
		return pc.GetExchangeRate(), nil
	}
	return decimal.Zero, ErrInvalidExchangeRate
}

// AmendOrderWeight replaces the customer-facing weight cost and moves the
// selling price and remaining amount by the difference.
func (s *Service) AmendOrderWeight(ctx context.Context, pc domain.PricingContext, id string, req domain.WeightAmendRequest) (domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Order{}, store.ErrInvalidTransaction
	}
	if req.WeightKG.IsNegative() {
		return domain.Order{}, fmt.Errorf("%w: weight must not be negative", store.ErrInvalidTransaction)
	}
	if req.CompanyPricePerKiloUSD.IsNegative() || req.CustomerPricePerKilo.IsNegative() {
		return domain.Order{}, fmt.Errorf("%w: price per kilo must not be negative", store.ErrInvalidTransaction)
	}
	if req.CustomerPriceCurrency == "" {
		req.CustomerPriceCurrency = domain.CurrencyLYD
	}
	if req.CustomerPriceCurrency != domain.CurrencyLYD && req.CustomerPriceCurrency != domain.CurrencyUSD {
		return domain.Order{}, fmt.Errorf("%w: unknown currency %q", store.ErrInvalidTransaction, req.CustomerPriceCurrency)
	}

	var amended domain.Order
	var delta decimal.Decimal
	err := s.run(ctx, "amend_order_weight", func(tx store.Tx) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}

		cost := req.WeightKG.Mul(req.CustomerPricePerKilo)
		costLYD := cost
		costUSD := decimal.Zero
		if req.CustomerPriceCurrency == domain.CurrencyUSD {
			rate, err := s.conversionRate(*order, pc)
			if err != nil {
				return err
			}
			costUSD = domain.Round2(cost)
			costLYD = domain.Round2(cost.Mul(rate))
		} else if rate, err := s.conversionRate(*order, pc); err == nil {
			costUSD = domain.Round2(cost.Div(rate))
		}

		delta = costLYD.Sub(order.CustomerWeightCost)
		order.WeightKG = req.WeightKG
		order.CompanyPricePerKiloUSD = req.CompanyPricePerKiloUSD
		order.CustomerPricePerKilo = req.CustomerPricePerKilo
		order.CustomerPricePerKiloCurrency = req.CustomerPriceCurrency
		order.CompanyWeightCostUSD = domain.Round2(req.WeightKG.Mul(req.CompanyPricePerKiloUSD))
		order.CustomerWeightCost = costLYD
		order.CustomerWeightCostUSD = costUSD
		order.SellingPriceLYD = order.SellingPriceLYD.Add(delta)
		order.UpdatedAt = s.now()
		if err := tx.UpdateOrder(ctx, *order); err != nil {
			return err
		}

		if delta.IsZero() {
			if err := s.recomputeDebt(ctx, tx, order.UserID); err != nil {
				return err
			}
		} else if err := s.applyTransaction(ctx, tx, domain.Transaction{
			ID:           xid.New("txn"),
			OrderID:      order.ID,
			CustomerID:   order.UserID,
			CustomerName: order.CustomerName,
			Type:         domain.TransactionOrder,
			Status:       "completed",
			Amount:       delta,
			Date:         s.now(),
			Description:  fmt.Sprintf("Weight cost %s kg", req.WeightKG),
		}); err != nil {
			return err
		}

		stored, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		amended = *stored
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logAudit(ctx, "order_weight_amend", "order", amended.ID, fmt.Sprintf("weight=%s,delta=%s", amended.WeightKG, delta))
	return amended, nil
}

// AddCustomerShippingCost sets the USD shipping cost charged to the customer
// and converts the change at the order's rate.
func (s *Service) AddCustomerShippingCost(ctx context.Context, pc domain.PricingContext, id string, req domain.ShippingCostRequest) (domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" || req.CostUSD.IsNegative() {
		return domain.Order{}, store.ErrInvalidTransaction
	}

	var updated domain.Order
	err := s.run(ctx, "add_shipping_cost", func(tx store.Tx) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		rate, err := s.conversionRate(*order, pc)
		if err != nil {
			return err
		}

		deltaUSD := req.CostUSD.Sub(order.CustomerWeightCostUSD)
		deltaLYD := domain.Round2(deltaUSD.Mul(rate))
		order.CustomerWeightCostUSD = req.CostUSD
		order.CustomerWeightCost = order.CustomerWeightCost.Add(deltaLYD)
		order.SellingPriceLYD = order.SellingPriceLYD.Add(deltaLYD)
		order.UpdatedAt = s.now()
		if err := tx.UpdateOrder(ctx, *order); err != nil {
			return err
		}

		if deltaLYD.IsZero() {
			if err := s.recomputeDebt(ctx, tx, order.UserID); err != nil {
				return err
			}
		} else if err := s.applyTransaction(ctx, tx, domain.Transaction{
			ID:           xid.New("txn"),
			OrderID:      order.ID,
			CustomerID:   order.UserID,
			CustomerName: order.CustomerName,
			Type:         domain.TransactionOrder,
			Status:       "completed",
			Amount:       deltaLYD,
			Date:         s.now(),
			Description:  fmt.Sprintf("Shipping cost %s USD", req.CostUSD),
		}); err != nil {
			return err
		}

		stored, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		updated = *stored
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logAudit(ctx, "order_shipping_cost", "order", updated.ID, fmt.Sprintf("cost_usd=%s", req.CostUSD))
	return updated, nil
}

// RecordRepresentativePayment marks the order delivered and stores what the
// representative collected. The collected amount is not reconciled against
// the remaining amount.
func (s *Service) RecordRepresentativePayment(ctx context.Context, id string, req domain.CollectPaymentRequest) (domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" || req.CollectedAmount.IsNegative() {
		return domain.Order{}, store.ErrInvalidTransaction
	}

	var updated domain.Order
	err := s.run(ctx, "record_representative_payment", func(tx store.Tx) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		order.Status = domain.StatusDelivered
		order.DeliveryDate = &now
		order.CollectedAmount = req.CollectedAmount
		order.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, *order); err != nil {
			return err
		}
		updated = *order
		return s.recomputeDebt(ctx, tx, order.UserID)
	})
	if err != nil {
		return domain.Order{}, err
	}

	if !updated.CollectedAmount.Equal(updated.RemainingAmount) {
		s.log.Info().
			Str("order_id", updated.ID).
			Str("collected", updated.CollectedAmount.String()).
			Str("remaining", updated.RemainingAmount.String()).
			Msg("collected amount differs from remaining amount")
	}
	s.logAudit(ctx, "order_collect", "order", updated.ID, fmt.Sprintf("collected=%s", updated.CollectedAmount))
	return updated, nil
}

func (s *Service) AssignRepresentative(ctx context.Context, req domain.AssignRepresentativeRequest) ([]domain.Order, error) {
	req.RepresentativeID = strings.TrimSpace(req.RepresentativeID)
	ids := normalizeIDs(req.OrderIDs)
	if req.RepresentativeID == "" || len(ids) == 0 {
		return nil, store.ErrInvalidTransaction
	}

	var assigned []domain.Order
	err := s.run(ctx, "assign_representative", func(tx store.Tx) error {
		rep, err := tx.GetRepresentative(ctx, req.RepresentativeID)
		if err != nil {
			return err
		}

		assigned = make([]domain.Order, 0, len(ids))
		added := 0
		for _, id := range ids {
			order, err := tx.GetOrder(ctx, id)
			if err != nil {
				return err
			}
			if order.RepresentativeID != rep.ID {
				if order.RepresentativeID != "" {
					if err := ignoreNotFound(tx.AdjustRepresentativeOrders(ctx, order.RepresentativeID, -1)); err != nil {
						return err
					}
				}
				added++
			}
			order.RepresentativeID = rep.ID
			order.RepresentativeName = rep.Name
			order.Status = domain.StatusOutForDelivery
			order.UpdatedAt = s.now()
			if err := tx.UpdateOrder(ctx, *order); err != nil {
				return err
			}
			assigned = append(assigned, *order)
		}
		if added > 0 {
			if err := tx.AdjustRepresentativeOrders(ctx, rep.ID, added); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "representative_assign", "representative", req.RepresentativeID, fmt.Sprintf("orders=%d", len(assigned)))
	return assigned, nil
}

func (s *Service) UnassignRepresentative(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, store.ErrInvalidTransaction
	}

	var updated domain.Order
	err := s.run(ctx, "unassign_representative", func(tx store.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.RepresentativeID == "" {
			updated = *order
			return nil
		}
		if err := ignoreNotFound(tx.AdjustRepresentativeOrders(ctx, order.RepresentativeID, -1)); err != nil {
			return err
		}
		order.RepresentativeID = ""
		order.RepresentativeName = ""
		order.Status = domain.StatusReady
		order.UpdatedAt = s.now()
		if err := tx.UpdateOrder(ctx, *order); err != nil {
			return err
		}
		updated = *order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logAudit(ctx, "representative_unassign", "order", updated.ID, "")
	return updated, nil
}

// DeleteOrder undoes what the order caused and then removes it. The order is
// read first because the reversal needs its rate and payment method.
func (s *Service) DeleteOrder(ctx context.Context, pc domain.PricingContext, id string) (domain.OrderDeleteResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.OrderDeleteResponse{}, store.ErrInvalidTransaction
	}

	var resp domain.OrderDeleteResponse
	err := s.run(ctx, "delete_order", func(tx store.Tx) error {
		var err error
		resp, err = s.deleteOrder(ctx, tx, pc, id)
		return err
	})
	if err != nil {
		return domain.OrderDeleteResponse{}, err
	}

	s.logAudit(ctx, "order_delete", "order", id, fmt.Sprintf("treasury_reversed=%t,credit_restored=%s,cost_refunded=%s", resp.TreasuryReversed, resp.CreditRestored, resp.CostRefunded))
	return resp, nil
}

func (s *Service) deleteOrder(ctx context.Context, tx store.Tx, pc domain.PricingContext, id string) (domain.OrderDeleteResponse, error) {
	order, err := tx.GetOrder(ctx, id)
	if err != nil {
		return domain.OrderDeleteResponse{}, err
	}

	resp := domain.OrderDeleteResponse{OrderID: order.ID, TreasuryReversed: true, CreditRestored: decimal.Zero, CostRefunded: decimal.Zero}
	if order.DownPaymentLYD.IsPositive() && order.PaymentMethod != "" {
		reversed, err := s.Reverse(ctx, tx, pc, order.ID, order.InvoiceNumber, order.PaymentMethod, order.DownPaymentLYD, order.ExchangeRate)
		if err != nil {
			return domain.OrderDeleteResponse{}, err
		}
		if !reversed {
			s.log.Warn().
				Str("order_id", order.ID).
				Str("customer_id", order.UserID).
				Str("method", string(order.PaymentMethod)).
				Msg("order deleted but down payment was not reversed in treasury")
		}
		resp.TreasuryReversed = reversed
	}

	restored, err := s.reverseCreditUsage(ctx, tx, order.ID)
	if err != nil {
		return domain.OrderDeleteResponse{}, err
	}
	resp.CreditRestored = restored

	refunded, err := s.refundPurchaseCost(ctx, tx, order.ID, order.InvoiceNumber)
	if err != nil {
		return domain.OrderDeleteResponse{}, err
	}
	resp.CostRefunded = refunded

	if order.RepresentativeID != "" {
		if err := ignoreNotFound(tx.AdjustRepresentativeOrders(ctx, order.RepresentativeID, -1)); err != nil {
			return domain.OrderDeleteResponse{}, err
		}
	}

	removed, err := tx.DeleteTransactionsByOrder(ctx, order.ID)
	if err != nil {
		return domain.OrderDeleteResponse{}, err
	}
	resp.TransactionsGone = removed

	if err := tx.DeleteOrder(ctx, order.ID); err != nil {
		return domain.OrderDeleteResponse{}, err
	}
	if err := ignoreNotFound(s.recomputeDebt(ctx, tx, order.UserID)); err != nil {
		return domain.OrderDeleteResponse{}, err
	}
	return resp, nil
}

// BulkDeleteOrders deletes every order with full reversal in one transaction.
func (s *Service) BulkDeleteOrders(ctx context.Context, pc domain.PricingContext, req domain.BulkOrdersRequest) ([]domain.OrderDeleteResponse, error) {
	ids := normalizeIDs(req.OrderIDs)
	if len(ids) == 0 {
		return nil, store.ErrInvalidTransaction
	}

	var results []domain.OrderDeleteResponse
	err := s.run(ctx, "bulk_delete_orders", func(tx store.Tx) error {
		results = make([]domain.OrderDeleteResponse, 0, len(ids))
		for _, id := range ids {
			resp, err := s.deleteOrder(ctx, tx, pc, id)
			if err != nil {
				return err
			}
			results = append(results, resp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "order_bulk_delete", "order", strings.Join(ids, ","), fmt.Sprintf("count=%d", len(results)))
	return results, nil
}

func (s *Service) BulkUpdateOrdersStatus(ctx context.Context, req domain.BulkOrdersRequest) (domain.BulkOrdersResponse, error) {
	ids := normalizeIDs(req.OrderIDs)
	if len(ids) == 0 || !req.Status.Valid() {
		return domain.BulkOrdersResponse{}, store.ErrInvalidTransaction
	}

	err := s.run(ctx, "bulk_update_status", func(tx store.Tx) error {
		users := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			order, err := tx.GetOrder(ctx, id)
			if err != nil {
				return err
			}
			order.Status = req.Status
			order.UpdatedAt = s.now()
			if err := tx.UpdateOrder(ctx, *order); err != nil {
				return err
			}
			users[order.UserID] = struct{}{}
		}
		for userID := range users {
			if err := s.recomputeDebt(ctx, tx, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.BulkOrdersResponse{}, err
	}

	s.logAudit(ctx, "order_bulk_status", "order", strings.Join(ids, ","), string(req.Status))
	return domain.BulkOrdersResponse{OrderIDs: ids}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var order domain.Order
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		found, err := tx.GetOrder(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		order = *found
		return nil
	})
	return order, err
}

func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, store.ErrInvalidTransaction
	}
	if filter.Limit < 1 || filter.Limit > 1000 {
		filter.Limit = 200
	}

	var orders []domain.Order
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		orders, err = tx.ListOrders(ctx, filter)
		return err
	})
	return orders, err
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func defaultString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
