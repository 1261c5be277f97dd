// Package persistence keeps the cart in step with a stored snapshot.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
	cartsvc "storefront/internal/service/cart"
)

// DefaultKey is the storage key used by the original storefront.
const DefaultKey = "cm_choco_cart_v1"

const defaultSaveTimeout = 2 * time.Second

// record is the persisted layout of one line item.
type record struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Unit     string      `json:"unit"`
	Price    json.Number `json:"price"`
	Quantity json.Number `json:"qty"`
}

// Adapter loads and saves cart snapshots. It never reports failures to its
// callers: loads degrade to an empty cart and failed saves are logged.
type Adapter struct {
	repo        snapshot.Repository
	key         string
	logger      *log.Logger
	saveTimeout time.Duration
}

type Option func(*Adapter)

// WithSaveTimeout bounds each write made from a change notification.
func WithSaveTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.saveTimeout = d
		}
	}
}

func New(repo snapshot.Repository, key string, logger *log.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	a := &Adapter{
		repo:        repo,
		key:         key,
		logger:      logger,
		saveTimeout: defaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the storage key.
func (a *Adapter) Key() string {
	return a.key
}

// Load returns the stored cart, or an empty cart if nothing usable is stored.
func (a *Adapter) Load(ctx context.Context) []domain.LineItem {
	raw, err := a.repo.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.Printf("persistence: load key=%s error=%v", a.key, err)
		}
		return []domain.LineItem{}
	}
	items, err := Decode(raw)
	if err != nil {
		a.logger.Printf("persistence: load key=%s malformed snapshot: %v", a.key, err)
		return []domain.LineItem{}
	}
	a.logger.Printf("persistence: load key=%s lines=%d", a.key, len(items))
	return items
}

// Save writes items. Failures are logged and otherwise ignored.
func (a *Adapter) Save(ctx context.Context, items []domain.LineItem) {
	raw, err := Encode(items)
	if err != nil {
		a.logger.Printf("persistence: encode key=%s error=%v", a.key, err)
		return
	}
	if err := a.repo.Set(ctx, a.key, raw); err != nil {
		a.logger.Printf("persistence: save key=%s error=%v", a.key, err)
	}
}

// Attach saves the cart after every change the store reports and returns a
// function that stops doing so.
func (a *Adapter) Attach(store *cartsvc.Store) func() {
	return store.Subscribe(func(c cartsvc.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), a.saveTimeout)
		defer cancel()
		a.Save(ctx, c.Items)
	})
}

// Encode serializes items into the persisted layout.
func Encode(items []domain.LineItem) ([]byte, error) {
	records := make([]record, 0, len(items))
	for _, item := range items {
		records = append(records, record{
			ID:       item.ID,
			Name:     item.Name,
			Unit:     item.Unit,
			Price:    json.Number(item.UnitPrice.String()),
			Quantity: json.Number(strconv.Itoa(item.Quantity)),
		})
	}
	return json.Marshal(records)
}

// Decode parses a persisted snapshot. Records that do not decode, lack an id
// or carry an unusable price are dropped and quantities are clamped; only a
// blob that is not a JSON array is an error.
func Decode(raw []byte) ([]domain.LineItem, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, len(elems))
	for _, elem := range elems {
		item, ok := decodeRecord(elem)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeRecord(elem json.RawMessage) (domain.LineItem, bool) {
	var r record
	if err := json.Unmarshal(elem, &r); err != nil {
		return domain.LineItem{}, false
	}
	if strings.TrimSpace(r.ID) == "" {
		return domain.LineItem{}, false
	}
	price, err := decimal.NewFromString(r.Price.String())
	if err != nil || price.IsNegative() {
		return domain.LineItem{}, false
	}
	return domain.LineItem{
		ID:        r.ID,
		Name:      r.Name,
		Unit:      r.Unit,
		UnitPrice: price,
		Quantity:  parseQuantity(r.Quantity),
	}, true
}

func parseQuantity(n json.Number) int {
	if n == "" {
		return domain.MinQuantity
	}
	return cartsvc.ParseQuantity(n.String())
}
