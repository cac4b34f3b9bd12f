package marketplace

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/factory"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/repository"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/sequence"
	"github.com/ZilDuck/zilliqa-nft-marketplace/pkg/addr"
	"github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
)

// Engine coordinates the item registry, the fungible ledger and the
// marketplace's own order book. It never holds the item and holds the
// platform fee only transiently, during the callback-carrying fee transfer.
type Engine interface {
	List(caller, contract string, tokenId uint64, price, metadataUri string) (uint64, error)
	Buy(caller string, listingId uint64) (uint64, error)
	CompleteSettlement(caller, from string, amount *big.Int, payload []byte) error

	GetListing(listingId uint64) (entity.Listing, error)
	GetOrder(orderId uint64) (entity.Order, error)

	GetFeePolicy() entity.FeePolicy
	ChangeFeePercent(caller string, bps uint64) error
	ChangeMinimumFee(caller string, minimumFee *big.Int) error
	SetAdmin(caller, admin string) error
}

type engine struct {
	mtx sync.Mutex

	policy entity.FeePolicy

	listings   repository.ListingRepository
	orders     repository.OrderRepository
	listingIds sequence.Allocator
	orderIds   sequence.Allocator

	ledger   ledger.Service
	registry registry.Service
	elastic  elastic_search.Index

	marketplaceAddr string
	ledgerAddr      string
}

// The engine lock covers the listings, the order book and the fee policy. It
// is never held across a ledger or registry call: the fee transfer calls
// back into CompleteSettlement before returning, so holding the lock there
// would deadlock every purchase. Each re-acquisition re-reads the state it is
// about to act on.
func NewEngine(
	listings repository.ListingRepository,
	orders repository.OrderRepository,
	listingIds sequence.Allocator,
	orderIds sequence.Allocator,
	ledgerService ledger.Service,
	registryService registry.Service,
	elastic elastic_search.Index,
	policy entity.FeePolicy,
	marketplaceAddr string,
	ledgerAddr string,
) Engine {
	return &engine{
		policy:          policy,
		listings:        listings,
		orders:          orders,
		listingIds:      listingIds,
		orderIds:        orderIds,
		ledger:          ledgerService,
		registry:        registryService,
		elastic:         elastic,
		marketplaceAddr: addr.Normalize(marketplaceAddr),
		ledgerAddr:      addr.Normalize(ledgerAddr),
	}
}

func (e *engine) List(caller, contract string, tokenId uint64, price, metadataUri string) (uint64, error) {
	lister, err := addr.Validate(caller)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAddress, caller)
	}

	contract = addr.Normalize(contract)
	if !addr.IsValid(contract) || addr.IsZero(contract) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRegistry, contract)
	}

	priceAmount, ok := new(big.Int).SetString(price, 10)
	if !ok || priceAmount.Sign() != 1 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}

	e.mtx.Lock()
	minimumFee := new(big.Int).Set(e.policy.MinimumFee)
	e.mtx.Unlock()

	if priceAmount.Cmp(minimumFee) < 0 {
		return 0, fmt.Errorf("%w: price %s below minimum fee %s", ErrInvalidPrice, priceAmount, minimumFee)
	}

	owner, err := e.registry.OwnerOf(contract, tokenId)
	if err != nil {
		if rpc.IsNotFound(err) {
			return 0, fmt.Errorf("%w: %s token %d", ErrItemNotFound, contract, tokenId)
		}
		return 0, err
	}

	if err := e.authorizeLister(lister, owner, contract, tokenId); err != nil {
		return 0, err
	}

	listing := entity.Listing{
		ListingId:   e.listingIds.Next(),
		Contract:    contract,
		TokenId:     tokenId,
		Price:       priceAmount.String(),
		Owner:       owner,
		OwnerBech32: addr.GetBech32Address(owner),
		MetadataUri: metadataUri,
		CreatedAt:   time.Now(),
	}

	e.mtx.Lock()
	e.listings.Save(listing)
	e.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateListingAction(listing))
	e.mtx.Unlock()

	zap.L().With(
		zap.Uint64("listingId", listing.ListingId),
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("owner", owner),
		zap.String("price", listing.Price),
	).Info("Marketplace: Listing created")

	event.EmitEvent(event.ListingCreatedEvent, listing)

	return listing.ListingId, nil
}

// authorizeLister accepts the owner, the per-item approved address, or an
// operator approved for all of the owner's items. Lookup failures count as
// a miss, not an error; a later lookup can still authorize.
func (e *engine) authorizeLister(caller, owner, contract string, tokenId uint64) error {
	if caller == owner {
		return nil
	}

	approved, err := e.registry.GetApproved(contract, tokenId)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("contract", contract), zap.Uint64("tokenId", tokenId)).
			Debug("Marketplace: GetApproved failed during listing authorization")
	} else if approved == caller {
		return nil
	}

	operator, err := e.registry.IsApprovedForAll(contract, owner, caller)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("contract", contract), zap.String("owner", owner)).
			Debug("Marketplace: IsApprovedForAll failed during listing authorization")
	} else if operator {
		return nil
	}

	return fmt.Errorf("%w: %s is not owner, approved or operator", ErrNotAuthorized, caller)
}

func (e *engine) Buy(caller string, listingId uint64) (uint64, error) {
	buyer, err := addr.Validate(caller)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAddress, caller)
	}

	e.mtx.Lock()
	listing, err := e.listings.GetByListingId(listingId)
	if err != nil {
		e.mtx.Unlock()
		return 0, fmt.Errorf("%w: listing %d", ErrInvalidListing, listingId)
	}
	policy := e.policySnapshot()
	e.mtx.Unlock()

	// The ownership snapshot is re-proven against the registry before any
	// order exists. A stale listing is removed for good; retrying it can
	// never succeed.
	currentOwner, err := e.registry.OwnerOf(listing.Contract, listing.TokenId)
	if err != nil {
		if rpc.IsNotFound(err) {
			e.removeStaleListing(listing, "item no longer exists", event.ItemGoneEvent)
			return 0, fmt.Errorf("%w: %s token %d", ErrItemGone, listing.Contract, listing.TokenId)
		}
		return 0, err
	}

	if currentOwner != listing.Owner {
		e.removeStaleListing(listing, "ownership changed", event.ItemNotAvailableEvent)
		return 0, fmt.Errorf("%w: listing %d", ErrOwnershipChanged, listingId)
	}

	price, ok := new(big.Int).SetString(listing.Price, 10)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPrice, listing.Price)
	}

	// The minimum fee may have been raised past the listing price since it
	// was listed.
	if price.Cmp(policy.MinimumFee) < 0 {
		return 0, fmt.Errorf("%w: price %s below minimum fee %s", ErrInvalidPrice, price, policy.MinimumFee)
	}

	if buyer == listing.Owner {
		return 0, fmt.Errorf("%w: %s", ErrSameParty, buyer)
	}

	fee := policy.FeeFor(price)
	sellerAmount := new(big.Int).Sub(price, fee)
	if sellerAmount.Sign() < 0 {
		return 0, fmt.Errorf("%w: fee %s on price %s", ErrFeeExceedsPrice, fee, price)
	}

	order, err := e.createOrder(buyer, listing, price, fee, sellerAmount)
	if err != nil {
		return 0, err
	}

	event.EmitEvent(event.OrderPlacedEvent, order)

	if err := e.verifyFunding(order, price, fee); err != nil {
		return order.OrderId, err
	}

	if err := e.ledger.TransferFrom(order.Buyer, order.Seller, price, transferRef()); err != nil {
		e.cancelOrder(order.OrderId, "price transfer failed")
		return order.OrderId, err
	}

	// The fee leg settles the trade: the ledger re-enters
	// CompleteSettlement with the order id payload before this call
	// returns.
	payload := EncodeOrderPayload(order.OrderId)
	if err := e.ledger.TransferWithCallback(order.Seller, e.marketplaceAddr, fee, payload, transferRef()); err != nil {
		e.cancelOrder(order.OrderId, "fee transfer failed")
		return order.OrderId, err
	}

	return order.OrderId, nil
}

// createOrder re-checks the listing under the lock; it may have been sold or
// removed while the registry was being consulted.
func (e *engine) createOrder(buyer string, listing entity.Listing, price, fee, sellerAmount *big.Int) (entity.Order, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if _, err := e.listings.GetByListingId(listing.ListingId); err != nil {
		return entity.Order{}, fmt.Errorf("%w: listing %d", ErrInvalidListing, listing.ListingId)
	}

	order := entity.Order{
		OrderId:      e.orderIds.Next(),
		ListingId:    listing.ListingId,
		Contract:     listing.Contract,
		TokenId:      listing.TokenId,
		Price:        price.String(),
		PlatformFee:  fee.String(),
		SellerAmount: sellerAmount.String(),
		Buyer:        buyer,
		BuyerBech32:  addr.GetBech32Address(buyer),
		Seller:       listing.Owner,
		SellerBech32: listing.OwnerBech32,
		Status:       entity.OrderPending,
		CreatedAt:    time.Now(),
	}

	e.orders.Save(order)
	e.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateOrderAction(order))

	zap.L().With(
		zap.Uint64("orderId", order.OrderId),
		zap.Uint64("listingId", order.ListingId),
		zap.String("buyer", order.Buyer),
		zap.String("seller", order.Seller),
		zap.String("price", order.Price),
		zap.String("fee", order.PlatformFee),
	).Info("Marketplace: Order placed")

	return order, nil
}

// verifyFunding proves the buyer can pay and both parties have granted the
// marketplace enough allowance before any value moves.
func (e *engine) verifyFunding(order entity.Order, price, fee *big.Int) error {
	balance, err := e.ledger.BalanceOf(order.Buyer)
	if err != nil {
		e.cancelOrder(order.OrderId, "balance check failed")
		return err
	}
	if balance.Cmp(price) < 0 {
		e.cancelOrder(order.OrderId, "insufficient balance")
		return fmt.Errorf("%w: buyer %s holds %s, needs %s", ErrInsufficientBalance, order.Buyer, balance, price)
	}

	buyerAllowance, err := e.ledger.Allowance(order.Buyer, e.marketplaceAddr)
	if err != nil {
		e.cancelOrder(order.OrderId, "buyer allowance check failed")
		return err
	}
	if buyerAllowance.Cmp(price) < 0 {
		e.cancelOrder(order.OrderId, "insufficient buyer allowance")
		return fmt.Errorf("%w: buyer allowed %s, needs %s", ErrInsufficientAllowance, buyerAllowance, price)
	}

	sellerAllowance, err := e.ledger.Allowance(order.Seller, e.marketplaceAddr)
	if err != nil {
		e.cancelOrder(order.OrderId, "seller allowance check failed")
		return err
	}
	if sellerAllowance.Cmp(fee) < 0 {
		e.cancelOrder(order.OrderId, "insufficient seller allowance")
		return fmt.Errorf("%w: seller allowed %s, fee is %s", ErrInsufficientAllowance, sellerAllowance, fee)
	}

	return nil
}

// CompleteSettlement is the ledger's fee transfer callback. Only the
// configured ledger may call it; anyone else is rejected before any state is
// read. A terminal order is a no-op so redelivered callbacks cannot settle
// twice.
func (e *engine) CompleteSettlement(caller, from string, amount *big.Int, payload []byte) error {
	if addr.Normalize(caller) != e.ledgerAddr {
		return fmt.Errorf("%w: settlement from %s", ErrUnauthorized, caller)
	}

	orderId, err := DecodeOrderPayload(payload)
	if err != nil {
		return err
	}

	e.mtx.Lock()
	order, err := e.orders.GetByOrderId(orderId)
	if err != nil {
		e.mtx.Unlock()
		return fmt.Errorf("%w: order %d", ErrInvalidOrder, orderId)
	}

	if order.IsTerminal() {
		e.mtx.Unlock()
		zap.L().With(zap.Uint64("orderId", orderId), zap.String("status", string(order.Status))).
			Info("Marketplace: Settlement replay ignored")
		return nil
	}

	fee, _ := new(big.Int).SetString(order.PlatformFee, 10)
	if addr.Normalize(from) != order.Seller || amount == nil || amount.Cmp(fee) != 0 {
		order, _ = e.cancelLocked(order, "unexpected fee transfer")
		e.mtx.Unlock()

		event.EmitEvent(event.OrderCancelledEvent, order)
		return fmt.Errorf("%w: order %d settlement did not match its terms", ErrInvalidOrder, orderId)
	}

	listing, listingErr := e.listings.GetByListingId(order.ListingId)
	if listingErr != nil {
		order, _ = e.cancelLocked(order, "listing no longer available")
		e.mtx.Unlock()

		event.EmitEvent(event.OrderCancelledEvent, order)
		return nil
	}
	e.mtx.Unlock()

	currentOwner, err := e.registry.OwnerOf(order.Contract, order.TokenId)
	if err != nil {
		if rpc.IsNotFound(err) {
			e.settleStale(order, listing, "item no longer exists", event.ItemGoneEvent)
			return nil
		}
		// Indeterminate: leave the order pending and fail the fee
		// transfer; the purchase path compensates when the ledger
		// reports the failure.
		return err
	}

	if currentOwner != order.Seller {
		e.settleStale(order, listing, "ownership changed", event.ItemNotAvailableEvent)
		return nil
	}

	if !e.itemTransferApproved(order, currentOwner) {
		e.cancelOrder(order.OrderId, "marketplace not approved to transfer item")
		return fmt.Errorf("%w: marketplace cannot transfer %s token %d", ErrNotAuthorized, order.Contract, order.TokenId)
	}

	if err := e.registry.SafeTransferFrom(order.Contract, currentOwner, order.Buyer, order.TokenId, transferRef()); err != nil {
		e.cancelOrder(order.OrderId, "item transfer failed")
		return err
	}

	e.mtx.Lock()
	order, err = e.orders.GetByOrderId(orderId)
	if err != nil || order.IsTerminal() {
		e.mtx.Unlock()
		zap.L().With(zap.Uint64("orderId", orderId)).Warn("Marketplace: Order finalized while item transfer ran")
		return nil
	}

	order.Status = entity.OrderFulfilled
	e.orders.Save(order)
	e.listings.Delete(order.ListingId)
	e.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateSaleAction(order))
	e.mtx.Unlock()

	zap.L().With(
		zap.Uint64("orderId", order.OrderId),
		zap.Uint64("listingId", order.ListingId),
		zap.String("buyer", order.Buyer),
		zap.String("seller", order.Seller),
		zap.String("price", order.Price),
		zap.String("fee", order.PlatformFee),
	).Info("Marketplace: Item sold")

	event.EmitEvent(event.ItemSoldEvent, order)

	return nil
}

// itemTransferApproved checks the marketplace can move the item: operator
// approval first, the per-item approval as fallback. A failed first lookup
// is only a miss.
func (e *engine) itemTransferApproved(order entity.Order, owner string) bool {
	operator, err := e.registry.IsApprovedForAll(order.Contract, owner, e.marketplaceAddr)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("orderId", order.OrderId)).
			Debug("Marketplace: IsApprovedForAll failed during settlement")
	} else if operator {
		return true
	}

	approved, err := e.registry.GetApproved(order.Contract, order.TokenId)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("orderId", order.OrderId)).
			Debug("Marketplace: GetApproved failed during settlement")
		return false
	}

	return approved == e.marketplaceAddr
}

func (e *engine) GetListing(listingId uint64) (entity.Listing, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	listing, err := e.listings.GetByListingId(listingId)
	if err != nil {
		return entity.Listing{}, fmt.Errorf("%w: listing %d", ErrInvalidListing, listingId)
	}

	return listing, nil
}

func (e *engine) GetOrder(orderId uint64) (entity.Order, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	order, err := e.orders.GetByOrderId(orderId)
	if err != nil {
		return entity.Order{}, fmt.Errorf("%w: order %d", ErrInvalidOrder, orderId)
	}

	return order, nil
}

func (e *engine) GetFeePolicy() entity.FeePolicy {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.policySnapshot()
}

func (e *engine) ChangeFeePercent(caller string, bps uint64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}

	if bps > 10000 {
		return fmt.Errorf("%w: %d basis points", ErrInvalidFee, bps)
	}

	e.policy.FeePercentBps = bps
	zap.L().With(zap.Uint64("bps", bps)).Info("Marketplace: Fee percent changed")

	return nil
}

func (e *engine) ChangeMinimumFee(caller string, minimumFee *big.Int) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}

	if minimumFee == nil || minimumFee.Sign() < 0 {
		return fmt.Errorf("%w: minimum fee %s", ErrInvalidFee, minimumFee)
	}

	e.policy.MinimumFee = new(big.Int).Set(minimumFee)
	zap.L().With(zap.String("minimumFee", minimumFee.String())).Info("Marketplace: Minimum fee changed")

	return nil
}

func (e *engine) SetAdmin(caller, admin string) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}

	admin = addr.Normalize(admin)
	if !addr.IsValid(admin) || addr.IsZero(admin) {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, admin)
	}

	e.policy.Admin = admin
	zap.L().With(zap.String("admin", admin)).Info("Marketplace: Admin changed")

	return nil
}

func (e *engine) requireAdmin(caller string) error {
	if addr.Normalize(caller) != e.policy.Admin {
		return fmt.Errorf("%w: %s", ErrNotAdmin, caller)
	}
	return nil
}

func (e *engine) policySnapshot() entity.FeePolicy {
	return entity.FeePolicy{
		Admin:         e.policy.Admin,
		FeePercentBps: e.policy.FeePercentBps,
		MinimumFee:    new(big.Int).Set(e.policy.MinimumFee),
	}
}

// removeStaleListing takes a listing discovered stale out of the market,
// provided nothing else removed it first.
func (e *engine) removeStaleListing(listing entity.Listing, reason string, eventType event.Type) {
	e.mtx.Lock()
	if _, err := e.listings.GetByListingId(listing.ListingId); err != nil {
		e.mtx.Unlock()
		return
	}
	e.delistLocked(listing, reason)
	e.mtx.Unlock()

	event.EmitEvent(eventType, listing)
}

// settleStale compensates a settlement that found the item unavailable: the
// order cancels, the listing goes, and the fee transfer is allowed to
// complete.
func (e *engine) settleStale(order entity.Order, listing entity.Listing, reason string, eventType event.Type) {
	e.mtx.Lock()
	order, cancelled := e.cancelLocked(order, reason)
	removed := false
	if _, err := e.listings.GetByListingId(listing.ListingId); err == nil {
		e.delistLocked(listing, reason)
		removed = true
	}
	e.mtx.Unlock()

	if removed {
		event.EmitEvent(eventType, listing)
	}
	if cancelled {
		event.EmitEvent(event.OrderCancelledEvent, order)
	}
}

func (e *engine) cancelOrder(orderId uint64, reason string) {
	e.mtx.Lock()
	order, err := e.orders.GetByOrderId(orderId)
	if err != nil {
		e.mtx.Unlock()
		return
	}
	order, cancelled := e.cancelLocked(order, reason)
	e.mtx.Unlock()

	if cancelled {
		event.EmitEvent(event.OrderCancelledEvent, order)
	}
}

// cancelLocked finalizes a pending order as cancelled. Terminal orders are
// left untouched. Caller holds the engine lock.
func (e *engine) cancelLocked(order entity.Order, reason string) (entity.Order, bool) {
	current, err := e.orders.GetByOrderId(order.OrderId)
	if err != nil || current.IsTerminal() {
		return current, false
	}

	current.Status = entity.OrderCancelled
	e.orders.Save(current)
	e.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateCancellationAction(current, reason))

	zap.L().With(
		zap.Uint64("orderId", current.OrderId),
		zap.Uint64("listingId", current.ListingId),
		zap.String("reason", reason),
	).Info("Marketplace: Order cancelled")

	return current, true
}

// delistLocked removes a listing and records why. Caller holds the engine
// lock.
func (e *engine) delistLocked(listing entity.Listing, reason string) {
	e.listings.Delete(listing.ListingId)
	e.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), factory.CreateDelistingAction(listing, reason))

	zap.L().With(
		zap.Uint64("listingId", listing.ListingId),
		zap.String("contract", listing.Contract),
		zap.Uint64("tokenId", listing.TokenId),
		zap.String("reason", reason),
	).Info("Marketplace: Listing removed")
}

func transferRef() string {
	ref, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("ref-%d", time.Now().UnixNano())
	}

	return ref.String()
}
