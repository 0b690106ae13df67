package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/otofix/storefront-backend/internal/cart"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/pkg/config"
	"github.com/otofix/storefront-backend/pkg/enums"
	"github.com/otofix/storefront-backend/pkg/logger"
	"github.com/otofix/storefront-backend/pkg/metrics"
)

const (
	outcomeApplied = "applied"
	outcomeStale   = "stale"
	outcomeFailed  = "failed"
)

type promotionChecker interface {
	CheckPromotions(ctx context.Context, slug string, req erp.PromotionCheckRequest) (*erp.PromotionCheckResult, error)
}

// Snapshot is the last known promotion state for one visitor on one
// storefront. When a re-evaluation fails the previous snapshot stays in place,
// so the order page keeps rendering the discounts it already knew about.
type Snapshot struct {
	Promotions  []erp.AppliedPromotion `json:"promotions"`
	PromoCode   string                 `json:"promoCode,omitempty"`
	CodeError   string                 `json:"codeError,omitempty"`
	RefreshedAt time.Time              `json:"refreshedAt"`
}

type entry struct {
	timer    *time.Timer
	seq      uint64
	snapshot Snapshot
}

// Refresher re-evaluates promotions against the ERP whenever the cart
// changes. Mutations are debounced so a burst of quantity edits produces a
// single backend call, and responses are sequence-checked so only the newest
// request's answer lands.
type Refresher struct {
	checker  promotionChecker
	metrics  *metrics.PromotionMetrics
	logg     *logger.Logger
	debounce time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

func NewRefresher(checker promotionChecker, promMetrics *metrics.PromotionMetrics, logg *logger.Logger, cfg config.CheckoutConfig) (*Refresher, error) {
	if checker == nil {
		return nil, errors.New("checkout: promotion checker is required")
	}
	debounce := cfg.PromotionDebounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	timeout := cfg.PromotionTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Refresher{
		checker:  checker,
		metrics:  promMetrics,
		logg:     logg,
		debounce: debounce,
		timeout:  timeout,
		entries:  map[string]*entry{},
	}, nil
}

// Schedule queues a debounced re-evaluation after a cart mutation. A newer
// call resets the timer, so only the final cart state of a burst is checked.
// The currently applied promo code, if any, rides along.
func (r *Refresher) Schedule(slug, sessionID, customerID string, items []cart.Item) {
	key := storeKey(slug, sessionID)

	r.mu.Lock()
	e := r.entry(key)
	if e.timer != nil {
		e.timer.Stop()
	}
	req := checkRequest(items, customerID, e.snapshot.PromoCode)
	code := e.snapshot.PromoCode
	e.timer = time.AfterFunc(r.debounce, func() {
		_, _ = r.refresh(context.Background(), key, slug, req, code)
	})
	r.mu.Unlock()
}

// ApplyCode submits the code alongside the current cart and waits for the
// answer. A rejected code comes back as Snapshot.CodeError while promotions
// from other sources still apply.
func (r *Refresher) ApplyCode(ctx context.Context, slug, sessionID, customerID string, items []cart.Item, code string) (Snapshot, error) {
	key := storeKey(slug, sessionID)
	return r.refresh(ctx, key, slug, checkRequest(items, customerID, code), code)
}

// RemoveCode drops the applied code and its code-sourced discounts locally,
// then immediately re-evaluates without the code so automatic and
// quantity-based promotions are recomputed.
func (r *Refresher) RemoveCode(ctx context.Context, slug, sessionID, customerID string, items []cart.Item) (Snapshot, error) {
	key := storeKey(slug, sessionID)

	r.mu.Lock()
	e := r.entry(key)
	e.snapshot.PromoCode = ""
	e.snapshot.CodeError = ""
	kept := e.snapshot.Promotions[:0]
	for _, promo := range e.snapshot.Promotions {
		if promo.Source != enums.PromotionSourceCode {
			kept = append(kept, promo)
		}
	}
	e.snapshot.Promotions = kept
	r.mu.Unlock()

	return r.refresh(ctx, key, slug, checkRequest(items, customerID, ""), "")
}

// Refresh re-evaluates immediately, bypassing the debounce. Used when the
// order page loads so the quote is current before render.
func (r *Refresher) Refresh(ctx context.Context, slug, sessionID, customerID string, items []cart.Item) (Snapshot, error) {
	key := storeKey(slug, sessionID)

	r.mu.Lock()
	code := r.entry(key).snapshot.PromoCode
	r.mu.Unlock()

	return r.refresh(ctx, key, slug, checkRequest(items, customerID, code), code)
}

// Snapshot returns the visitor's current promotion state without touching the
// backend.
func (r *Refresher) Snapshot(slug, sessionID string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[storeKey(slug, sessionID)]
	if !ok {
		return Snapshot{Promotions: []erp.AppliedPromotion{}}
	}
	return e.snapshot
}

// Reset discards the visitor's promotion state, cancelling any pending
// re-evaluation. Called after a successful order submission.
func (r *Refresher) Reset(slug, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := storeKey(slug, sessionID)
	if e, ok := r.entries[key]; ok && e.timer != nil {
		e.timer.Stop()
	}
	delete(r.entries, key)
}

func (r *Refresher) refresh(ctx context.Context, key, slug string, req erp.PromotionCheckRequest, code string) (Snapshot, error) {
	r.mu.Lock()
	e := r.entry(key)
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.seq++
	token := e.seq
	r.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	result, err := r.checker.CheckPromotions(cctx, slug, req)

	r.mu.Lock()
	defer r.mu.Unlock()

	// A newer request was dispatched while this one was in flight; its answer
	// owns the snapshot.
	if token != e.seq {
		r.metrics.IncRefresh(outcomeStale)
		return e.snapshot, nil
	}
	if err != nil {
		r.metrics.IncRefresh(outcomeFailed)
		if r.logg != nil {
			r.logg.Warn(r.logg.WithTenant(ctx, slug), "promotion re-evaluation failed, keeping last known discounts")
		}
		return e.snapshot, err
	}

	promotions := result.Promotions
	if promotions == nil {
		promotions = []erp.AppliedPromotion{}
	}
	e.snapshot = Snapshot{
		Promotions:  promotions,
		PromoCode:   code,
		CodeError:   result.CodeError,
		RefreshedAt: time.Now(),
	}
	if result.CodeError != "" {
		// A rejected code is not applied; keep only the error for display.
		e.snapshot.PromoCode = ""
	}
	r.metrics.IncRefresh(outcomeApplied)
	return e.snapshot, nil
}

func (r *Refresher) entry(key string) *entry {
	e, ok := r.entries[key]
	if !ok {
		e = &entry{snapshot: Snapshot{Promotions: []erp.AppliedPromotion{}}}
		r.entries[key] = e
	}
	return e
}

func storeKey(slug, sessionID string) string {
	return slug + "|" + sessionID
}

func checkRequest(items []cart.Item, customerID, code string) erp.PromotionCheckRequest {
	checkItems := make([]erp.PromotionCheckItem, 0, len(items))
	for _, item := range items {
		checkItems = append(checkItems, erp.PromotionCheckItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return erp.PromotionCheckRequest{
		Items:      checkItems,
		CustomerID: customerID,
		PromoCode:  code,
	}
}
