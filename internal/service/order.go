package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/brokercore/internal/domain"
	"github.com/efreitasn/brokercore/internal/exchange"
	"github.com/efreitasn/brokercore/internal/store"
)

// CreateOrderRequest represents the input for order creation.
type CreateOrderRequest struct {
	AccountID      int64
	IdempotencyKey string
	Symbol         string
	Side           domain.OrderSide
	OrderType      domain.OrderType
	TimeInForce    *domain.TimeInForce // nil resolves per order type
	LimitPrice     *decimal.Decimal    // required for LIMIT, must be nil for MARKET
	Quantity       decimal.Decimal
}

// AmendOrderRequest represents the input for amending an open limit order.
// At least one field must be set; the remaining quantity may only shrink.
type AmendOrderRequest struct {
	AccountID         int64
	LimitPrice        *decimal.Decimal
	RemainingQuantity *decimal.Decimal
}

// OrderDetail is the read projection returned by the order operations:
// the order plus its fills in execution order.
type OrderDetail struct {
	Order *domain.Order
	Fills []*domain.Fill
}

// OrderService coordinates the order lifecycle: creation, reservation,
// matching, fill settlement, cancellation, amendment, price-driven rematch,
// and session-close expiration. Each public operation runs as one atomic
// unit under the service lock; reservation failures happen before any row
// is persisted.
type OrderService struct {
	mu       sync.Mutex
	orders   *store.OrderStore
	holds    *store.HoldStore
	fills    *store.FillStore
	accounts *store.AccountStore
	quotes   *store.QuoteStore
	gateway  exchange.Gateway
	feeRate  decimal.Decimal
}

// NewOrderService creates an OrderService. Negative fee rates are clamped
// to zero.
func NewOrderService(
	orders *store.OrderStore,
	holds *store.HoldStore,
	fills *store.FillStore,
	accounts *store.AccountStore,
	quotes *store.QuoteStore,
	gateway exchange.Gateway,
	feeRate decimal.Decimal,
) *OrderService {
	if feeRate.Sign() < 0 {
		feeRate = decimal.Zero
	}
	return &OrderService{
		orders:   orders,
		holds:    holds,
		fills:    fills,
		accounts: accounts,
		quotes:   quotes,
		gateway:  gateway,
		feeRate:  feeRate,
	}
}

// CreateOrder validates and normalizes the request, replays the existing
// order when the (account, idempotency key) pair was already used, and
// otherwise reserves resources, attempts an immediate match, and applies
// the time-in-force policy to any open remainder.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := domain.NormalizeSymbol(req.Symbol)
	tif, err := resolveTimeInForce(req.OrderType, req.TimeInForce)
	if err != nil {
		return nil, err
	}
	if err := validateCreateRequest(req, symbol); err != nil {
		return nil, err
	}

	// Idempotency: replay before any reservation side effect.
	if existing, err := s.orders.GetByIdempotencyKey(req.AccountID, req.IdempotencyKey); err == nil {
		return s.detail(existing), nil
	}

	order := domain.NewPendingOrder(
		req.AccountID,
		req.IdempotencyKey,
		symbol,
		req.Side,
		req.OrderType,
		tif,
		req.LimitPrice,
		req.Quantity,
	)
	order.ID = uuid.NewString()

	// Reservation commits the ledger mutation; everything before it leaves
	// no trace, so InsufficientCash/InsufficientQuantity never persist an
	// order or hold row.
	hold, err := s.reserveForOrder(order)
	if err != nil {
		return nil, err
	}

	s.orders.Create(order)
	s.holds.Create(hold)

	if err := order.MarkAccepted(); err != nil {
		return nil, err
	}
	if err := s.applyMatch(order, hold); err != nil {
		return nil, err
	}
	if err := s.postProcessByTimeInForce(order, hold); err != nil {
		return nil, err
	}

	if err := s.orders.Save(order); err != nil {
		return nil, err
	}
	if err := s.holds.Save(hold); err != nil {
		return nil, err
	}

	return s.detail(order), nil
}

// AmendOrder changes the limit price and/or shrinks the open remainder of
// a limit order, adjusts the reservation accordingly, and re-attempts
// matching.
func (s *OrderService) AmendOrder(orderID string, req AmendOrderRequest) (*OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.getOwnedOrder(orderID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if err := validateAmendRequest(order, req); err != nil {
		return nil, err
	}

	hold, err := s.holds.GetByOrder(orderID)
	if err != nil {
		return nil, err
	}

	amendedPrice := *order.LimitPrice
	if req.LimitPrice != nil {
		amendedPrice = *req.LimitPrice
	}
	amendedQty := order.RemainingQty
	if req.RemainingQuantity != nil {
		amendedQty = *req.RemainingQuantity
	}

	if amendedPrice.Equal(*order.LimitPrice) && amendedQty.Equal(order.RemainingQty) {
		return nil, domain.ErrAmendNoChange
	}

	if err := s.adjustHoldForAmend(order, hold, amendedPrice, amendedQty); err != nil {
		return nil, err
	}
	if err := order.AmendLimitOrder(amendedPrice, amendedQty); err != nil {
		return nil, err
	}

	if err := s.applyMatch(order, hold); err != nil {
		return nil, err
	}
	if err := s.postProcessByTimeInForce(order, hold); err != nil {
		return nil, err
	}

	if err := s.orders.Save(order); err != nil {
		return nil, err
	}
	if err := s.holds.Save(hold); err != nil {
		return nil, err
	}

	return s.detail(order), nil
}

// CancelOrder cancels an open order owned by the account and releases the
// full remaining reservation.
func (s *OrderService) CancelOrder(orderID string, accountID int64) (*OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.getOwnedOrder(orderID, accountID)
	if err != nil {
		return nil, err
	}
	if !order.Status.IsCancelable() {
		return nil, domain.ErrInvalidState
	}

	hold, err := s.holds.GetByOrder(orderID)
	if err != nil {
		return nil, err
	}

	if err := order.MarkCancelPending(); err != nil {
		return nil, err
	}
	if err := s.gateway.Cancel(order); err != nil {
		return nil, fmt.Errorf("gateway cancel: %w", err)
	}
	if err := order.MarkCanceled(); err != nil {
		return nil, err
	}
	if err := s.releaseRemainingHold(order, hold); err != nil {
		return nil, err
	}

	if err := s.orders.Save(order); err != nil {
		return nil, err
	}
	if err := s.holds.Save(hold); err != nil {
		return nil, err
	}

	return s.detail(order), nil
}

// GetOrder returns the order and its fills, scoped to the owning account.
func (s *OrderService) GetOrder(orderID string, accountID int64) (*OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.getOwnedOrder(orderID, accountID)
	if err != nil {
		return nil, err
	}
	return s.detail(order), nil
}

// RematchOpenOrdersForSymbol re-attempts matching for every open DAY order
// on the symbol, oldest created first. IOC and FOK orders never persist
// past their initial attempt and are skipped. Invoked right after the
// price source changes for the symbol.
func (s *OrderService) RematchOpenOrdersForSymbol(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := domain.NormalizeSymbol(symbol)
	for _, order := range s.orders.ListOpenBySymbol(normalized) {
		if !order.IsOpen() {
			continue
		}
		if order.TimeInForce != domain.TimeInForceDay {
			continue
		}

		hold, err := s.holds.GetByOrder(order.ID)
		if err != nil {
			return err
		}

		if err := s.applyMatch(order, hold); err != nil {
			return err
		}
		if err := s.postProcessByTimeInForce(order, hold); err != nil {
			return err
		}

		if err := s.orders.Save(order); err != nil {
			return err
		}
		if err := s.holds.Save(hold); err != nil {
			return err
		}
	}
	return nil
}

// ExpireDayOrders transitions every open DAY order to EXPIRED, oldest
// created first, releasing each remaining reservation. It returns the
// number of orders expired. Triggered externally at session close.
func (s *OrderService) ExpireDayOrders() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for _, order := range s.orders.ListOpenByTimeInForce(domain.TimeInForceDay) {
		if !order.IsOpen() {
			continue
		}

		hold, err := s.holds.GetByOrder(order.ID)
		if err != nil {
			return expired, err
		}

		if err := order.MarkExpired(); err != nil {
			return expired, err
		}
		if err := s.releaseRemainingHold(order, hold); err != nil {
			return expired, err
		}

		if err := s.orders.Save(order); err != nil {
			return expired, err
		}
		if err := s.holds.Save(hold); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// applyMatch runs one matching attempt and settles any resulting fill.
// Settlement is staged against clones first: the hold is consumed and the
// ledger rows mutated in memory, and only once every step has succeeded is
// the fill committed venue-side, persisted, and recorded. A staging failure
// leaves the stores exactly as they were. A remainder left on a non-open
// order is released immediately.
func (s *OrderService) applyMatch(order *domain.Order, hold *domain.OrderHold) error {
	result, err := s.gateway.Match(order)
	if err != nil {
		return fmt.Errorf("gateway match: %w", err)
	}
	if !result.HasFill() {
		return nil
	}

	notional := domain.ToMoney(result.FillPrice.Mul(result.FillQuantity))
	feeAmount := s.calculateFee(notional)

	if err := order.ApplyFill(result.FillQuantity); err != nil {
		return err
	}

	var cash *domain.CashBalance
	var position *domain.Position
	if order.Side == domain.OrderSideBuy {
		cash, position, err = s.stageBuyFill(order, hold, result.FillQuantity, result.FillPrice, notional, feeAmount)
	} else {
		cash, position, err = s.stageSellFill(order, hold, result.FillQuantity, notional, feeAmount)
	}
	if err != nil {
		return err
	}

	if err := s.gateway.Commit(order, result); err != nil {
		return fmt.Errorf("gateway commit: %w", err)
	}
	if cash != nil {
		if err := s.accounts.SaveCash(cash); err != nil {
			return err
		}
	}
	if err := s.accounts.SavePosition(position); err != nil {
		return err
	}
	s.fills.Append(&domain.Fill{
		ExecutionID:  result.ExecutionID,
		OrderID:      order.ID,
		FillPrice:    result.FillPrice,
		FillQuantity: result.FillQuantity,
		FeeAmount:    feeAmount,
		TaxAmount:    decimal.Zero,
		FilledAt:     time.Now(),
	})

	if !order.IsOpen() {
		return s.releaseRemainingHold(order, hold)
	}
	return nil
}

// stageBuyFill settles a buy against in-memory rows: the reserved cash
// covers notional plus fee, and the position gains the bought shares at a
// recomputed cost basis. Nothing is persisted here.
func (s *OrderService) stageBuyFill(
	order *domain.Order,
	hold *domain.OrderHold,
	fillQty, fillPrice, notional, feeAmount decimal.Decimal,
) (*domain.CashBalance, *domain.Position, error) {
	settlement := notional.Add(feeAmount)

	if err := hold.Consume(settlement); err != nil {
		return nil, nil, err
	}

	cash, err := s.accounts.GetCash(order.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if err := cash.ConsumeHeld(settlement); err != nil {
		return nil, nil, err
	}

	position, err := s.accounts.GetPosition(order.AccountID, order.Symbol)
	if err == domain.ErrPositionNotFound {
		position = domain.NewPosition(order.AccountID, order.Symbol, decimal.Zero, decimal.Zero)
	} else if err != nil {
		return nil, nil, err
	}
	if err := position.AddBoughtQuantity(fillQty, fillPrice); err != nil {
		return nil, nil, err
	}
	return cash, position, nil
}

// stageSellFill settles a sell against in-memory rows: the reserved shares
// are delivered and the net proceeds credited to available cash. Nothing is
// persisted here.
func (s *OrderService) stageSellFill(
	order *domain.Order,
	hold *domain.OrderHold,
	fillQty, notional, feeAmount decimal.Decimal,
) (*domain.CashBalance, *domain.Position, error) {
	if err := hold.Consume(fillQty); err != nil {
		return nil, nil, err
	}

	position, err := s.accounts.GetPosition(order.AccountID, order.Symbol)
	if err != nil {
		return nil, nil, err
	}
	if err := position.ConsumeHeld(fillQty); err != nil {
		return nil, nil, err
	}

	proceeds := notional.Sub(feeAmount)
	if proceeds.Sign() <= 0 {
		return nil, position, nil
	}
	cash, err := s.accounts.GetCash(order.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if err := cash.AddAvailable(proceeds); err != nil {
		return nil, nil, err
	}
	return cash, position, nil
}

// reserveForOrder earmarks the resources the order may consume: cash for
// buys (reserve price × quantity plus fee), shares for sells.
func (s *OrderService) reserveForOrder(order *domain.Order) (*domain.OrderHold, error) {
	if order.Side == domain.OrderSideBuy {
		return s.reserveCashForBuy(order)
	}
	return s.reserveQuantityForSell(order)
}

func (s *OrderService) reserveCashForBuy(order *domain.Order) (*domain.OrderHold, error) {
	reservePrice, err := s.resolveReservePrice(order)
	if err != nil {
		return nil, err
	}
	reserveAmount := s.calculateReserveAmount(reservePrice, order.Quantity)

	cash, err := s.accounts.GetCash(order.AccountID)
	if err != nil {
		return nil, err
	}
	if err := cash.Hold(reserveAmount); err != nil {
		return nil, domain.ErrInsufficientCash
	}
	if err := s.accounts.SaveCash(cash); err != nil {
		return nil, err
	}

	return domain.NewOrderHold(order.ID, order.AccountID, domain.HoldTypeCash, reserveAmount), nil
}

func (s *OrderService) reserveQuantityForSell(order *domain.Order) (*domain.OrderHold, error) {
	position, err := s.accounts.GetPosition(order.AccountID, order.Symbol)
	if err != nil {
		return nil, err
	}
	if err := position.Hold(order.Quantity); err != nil {
		return nil, domain.ErrInsufficientQuantity
	}
	if err := s.accounts.SavePosition(position); err != nil {
		return nil, err
	}

	return domain.NewOrderHold(order.ID, order.AccountID, domain.HoldTypeQuantity, order.Quantity), nil
}

// adjustHoldForAmend brings the reservation in line with the amended
// price/quantity before the amendment is applied to the order.
func (s *OrderService) adjustHoldForAmend(
	order *domain.Order,
	hold *domain.OrderHold,
	amendedPrice, amendedQty decimal.Decimal,
) error {
	if order.Side == domain.OrderSideSell {
		return s.adjustSellHoldForAmend(order, hold, amendedQty)
	}
	return s.adjustBuyHoldForAmend(order, hold, amendedPrice, amendedQty)
}

func (s *OrderService) adjustSellHoldForAmend(order *domain.Order, hold *domain.OrderHold, amendedQty decimal.Decimal) error {
	currentRemaining := hold.RemainingAmount()
	if amendedQty.GreaterThan(currentRemaining) {
		return domain.ErrInvalidAmendQuantity
	}

	releaseQty := currentRemaining.Sub(amendedQty)
	if releaseQty.Sign() <= 0 {
		return nil
	}

	if err := hold.Release(releaseQty); err != nil {
		return err
	}

	position, err := s.accounts.GetPosition(order.AccountID, order.Symbol)
	if err != nil {
		return err
	}
	if err := position.ReleaseHeld(releaseQty); err != nil {
		return err
	}
	return s.accounts.SavePosition(position)
}

func (s *OrderService) adjustBuyHoldForAmend(
	order *domain.Order,
	hold *domain.OrderHold,
	amendedPrice, amendedQty decimal.Decimal,
) error {
	currentRemaining := hold.RemainingAmount()
	targetRemaining := s.calculateReserveAmount(amendedPrice, amendedQty)
	cmp := targetRemaining.Cmp(currentRemaining)
	if cmp == 0 {
		return nil
	}

	cash, err := s.accounts.GetCash(order.AccountID)
	if err != nil {
		return err
	}

	if cmp > 0 {
		additional := targetRemaining.Sub(currentRemaining)
		if err := cash.Hold(additional); err != nil {
			return domain.ErrInsufficientCash
		}
		if err := hold.IncreaseTotal(additional); err != nil {
			return err
		}
		return s.accounts.SaveCash(cash)
	}

	release := currentRemaining.Sub(targetRemaining)
	if err := hold.Release(release); err != nil {
		return err
	}
	if err := cash.ReleaseHeld(release); err != nil {
		return err
	}
	return s.accounts.SaveCash(cash)
}

// postProcessByTimeInForce resolves an open remainder after a match
// attempt: DAY orders persist, IOC and FOK orders are canceled with their
// remaining reservation released.
func (s *OrderService) postProcessByTimeInForce(order *domain.Order, hold *domain.OrderHold) error {
	if !order.IsOpen() {
		return nil
	}
	if order.TimeInForce == domain.TimeInForceDay {
		return nil
	}

	if err := order.MarkCanceled(); err != nil {
		return err
	}
	return s.releaseRemainingHold(order, hold)
}

// releaseRemainingHold returns whatever is left of the reservation to the
// ledger.
func (s *OrderService) releaseRemainingHold(order *domain.Order, hold *domain.OrderHold) error {
	releaseAmount := hold.ReleaseRemaining()
	if releaseAmount.Sign() <= 0 {
		return nil
	}

	if hold.HoldType == domain.HoldTypeCash {
		cash, err := s.accounts.GetCash(order.AccountID)
		if err != nil {
			return err
		}
		if err := cash.ReleaseHeld(releaseAmount); err != nil {
			return err
		}
		return s.accounts.SaveCash(cash)
	}

	position, err := s.accounts.GetPosition(order.AccountID, order.Symbol)
	if err != nil {
		return err
	}
	if err := position.ReleaseHeld(releaseAmount); err != nil {
		return err
	}
	return s.accounts.SavePosition(position)
}

// resolveReservePrice returns the limit price for limit orders; market
// orders reserve against the current quoted price.
func (s *OrderService) resolveReservePrice(order *domain.Order) (decimal.Decimal, error) {
	if order.OrderType == domain.OrderTypeLimit {
		return *order.LimitPrice, nil
	}

	quote, err := s.quotes.Get(order.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.Price, nil
}

func (s *OrderService) calculateReserveAmount(reservePrice, quantity decimal.Decimal) decimal.Decimal {
	reserveNotional := domain.ToMoney(reservePrice.Mul(quantity))
	return reserveNotional.Add(s.calculateFee(reserveNotional))
}

func (s *OrderService) calculateFee(notional decimal.Decimal) decimal.Decimal {
	if s.feeRate.Sign() <= 0 || notional.Sign() <= 0 {
		return decimal.Zero
	}
	return domain.ToMoney(notional.Mul(s.feeRate))
}

func (s *OrderService) getOwnedOrder(orderID string, accountID int64) (*domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.AccountID != accountID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) detail(order *domain.Order) *OrderDetail {
	return &OrderDetail{
		Order: order,
		Fills: s.fills.ListByOrder(order.ID),
	}
}

func resolveTimeInForce(orderType domain.OrderType, requested *domain.TimeInForce) (domain.TimeInForce, error) {
	if orderType == domain.OrderTypeMarket {
		if requested == nil {
			return domain.TimeInForceIOC, nil
		}
		if *requested != domain.TimeInForceIOC {
			return "", domain.ErrInvalidTimeInForce
		}
		return domain.TimeInForceIOC, nil
	}

	if requested == nil {
		return domain.TimeInForceDay, nil
	}
	switch *requested {
	case domain.TimeInForceDay, domain.TimeInForceIOC, domain.TimeInForceFOK:
		return *requested, nil
	default:
		return "", domain.ErrInvalidTimeInForce
	}
}

func validateCreateRequest(req CreateOrderRequest, symbol string) error {
	if req.OrderType != domain.OrderTypeLimit && req.OrderType != domain.OrderTypeMarket {
		return &domain.ValidationError{
			Message: fmt.Sprintf("unknown order type: %s, must be one of: LIMIT, MARKET", req.OrderType),
		}
	}
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return &domain.ValidationError{Message: "side must be BUY or SELL"}
	}
	if symbol == "" {
		return &domain.ValidationError{Message: "symbol is required"}
	}
	if req.IdempotencyKey == "" {
		return &domain.ValidationError{Message: "idempotency_key is required"}
	}
	if req.Quantity.Sign() <= 0 {
		return &domain.ValidationError{Message: "quantity must be positive"}
	}
	if !domain.IsWholeShare(req.Quantity) {
		return &domain.ValidationError{Message: "quantity must be a whole-share unit"}
	}

	if req.OrderType == domain.OrderTypeLimit {
		if req.LimitPrice == nil {
			return &domain.ValidationError{Message: "limit_price is required for limit orders"}
		}
		if req.LimitPrice.Sign() <= 0 {
			return &domain.ValidationError{Message: "limit_price must be positive"}
		}
	}
	if req.OrderType == domain.OrderTypeMarket && req.LimitPrice != nil {
		return &domain.ValidationError{Message: "market orders must not include limit_price"}
	}
	return nil
}

func validateAmendRequest(order *domain.Order, req AmendOrderRequest) error {
	if !order.IsOpen() {
		return domain.ErrInvalidState
	}
	if order.OrderType != domain.OrderTypeLimit {
		return domain.ErrAmendNotAllowed
	}
	if req.LimitPrice == nil && req.RemainingQuantity == nil {
		return domain.ErrInvalidAmendRequest
	}
	if req.LimitPrice != nil && req.LimitPrice.Sign() <= 0 {
		return domain.ErrInvalidAmendRequest
	}

	if req.RemainingQuantity == nil {
		return nil
	}
	if req.RemainingQuantity.Sign() <= 0 {
		return domain.ErrInvalidAmendQuantity
	}
	if !domain.IsWholeShare(*req.RemainingQuantity) {
		return &domain.ValidationError{Message: "remaining_quantity must be a whole-share unit"}
	}
	if req.RemainingQuantity.GreaterThan(order.RemainingQty) {
		return domain.ErrInvalidAmendQuantity
	}
	return nil
}
