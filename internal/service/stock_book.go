package service

import (
	"context"
	"errors"
	"sort"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/lock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockBook moves the stock ledger and the product counter together.
// Every method runs on tx and must be called inside a transaction.
type StockBook struct {
	ledgers  repository.StockRepository
	products repository.ProductRepository
	locker   lock.Locker
}

func NewStockBook(ledgers repository.StockRepository, products repository.ProductRepository, locker lock.Locker) *StockBook {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &StockBook{ledgers: ledgers, products: products, locker: locker}
}

func productKey(id uuid.UUID) string { return "product:" + id.String() }

// Ensure returns the product's ledger row, creating an all-zero one if absent.
func (b *StockBook) Ensure(tx *gorm.DB, productID uuid.UUID, actor string) (*model.StockLedger, error) {
	row, err := b.ledgers.LockByProduct(tx, productID)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	row = &model.StockLedger{ProductID: productID}
	row.CreatedBy = actor
	row.UpdatedBy = actor
	if err := b.ledgers.Create(tx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Available is the closing stock, 0 when the product has no ledger row yet.
func (b *StockBook) Available(tx *gorm.DB, productID uuid.UUID) (int, error) {
	row, err := b.ledgers.LockByProduct(tx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.ClosingStock, nil
}

func (b *StockBook) Receive(tx *gorm.DB, productID uuid.UUID, qty int, actor string) (*model.StockLedger, error) {
	return b.apply(tx, productID, actor, func(l *model.StockLedger) { l.Receive(qty) })
}

func (b *StockBook) Issue(tx *gorm.DB, productID uuid.UUID, qty int, actor string) (*model.StockLedger, error) {
	return b.apply(tx, productID, actor, func(l *model.StockLedger) { l.Issue(qty) })
}

func (b *StockBook) ReverseReceive(tx *gorm.DB, productID uuid.UUID, qty int, actor string) (*model.StockLedger, error) {
	return b.apply(tx, productID, actor, func(l *model.StockLedger) { l.ReverseReceive(qty) })
}

func (b *StockBook) ReverseIssue(tx *gorm.DB, productID uuid.UUID, qty int, actor string) (*model.StockLedger, error) {
	return b.apply(tx, productID, actor, func(l *model.StockLedger) { l.ReverseIssue(qty) })
}

// SetClosing overwrites the closing stock (manual correction) and pins the counter to it.
func (b *StockBook) SetClosing(tx *gorm.DB, productID uuid.UUID, closing int, actor string) (*model.StockLedger, error) {
	row, err := b.Ensure(tx, productID, actor)
	if err != nil {
		return nil, err
	}
	row.SetClosing(closing)
	row.UpdatedBy = actor
	if err := b.ledgers.Save(tx, row); err != nil {
		return nil, err
	}
	if err := b.products.SetStock(tx, productID, row.ClosingStock, actor); err != nil {
		return nil, err
	}
	return row, nil
}

// apply mutates the ledger row and shifts the product counter by the same change in closing stock,
// so a clamped reversal never leaves the two apart.
func (b *StockBook) apply(tx *gorm.DB, productID uuid.UUID, actor string, mutate func(*model.StockLedger)) (*model.StockLedger, error) {
	row, err := b.Ensure(tx, productID, actor)
	if err != nil {
		return nil, err
	}
	before := row.ClosingStock
	mutate(row)
	row.UpdatedBy = actor
	if err := b.ledgers.Save(tx, row); err != nil {
		return nil, err
	}
	if delta := row.ClosingStock - before; delta != 0 {
		if err := b.products.AdjustStock(tx, productID, delta, actor); err != nil {
			return nil, err
		}
	}
	return row, nil
}

// Lock serializes writers on the given products. keys is called again after the locks are
// held; if it names a product that was not locked (the record changed meanwhile) the locks
// are dropped and acquisition starts over.
func (b *StockBook) Lock(ctx context.Context, extra []string, keys func() ([]uuid.UUID, error)) (func(), error) {
	for attempt := 0; attempt < 3; attempt++ {
		ids, err := keys()
		if err != nil {
			return nil, err
		}
		held := lockKeys(extra, ids)
		release, err := b.locker.Acquire(ctx, held...)
		if err != nil {
			return nil, err
		}

		again, err := keys()
		if err != nil {
			release()
			return nil, err
		}
		if covered(held, again) {
			return release, nil
		}
		release()
	}
	return nil, lock.ErrNotObtained
}

func lockKeys(extra []string, ids []uuid.UUID) []string {
	keys := append([]string{}, extra...)
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	sort.Strings(keys)
	return keys
}

func covered(held []string, ids []uuid.UUID) bool {
	for _, id := range ids {
		k := productKey(id)
		i := sort.SearchStrings(held, k)
		if i >= len(held) || held[i] != k {
			return false
		}
	}
	return true
}

func closingOf(rows map[uuid.UUID]*model.StockLedger, names map[uuid.UUID]string) []ProductStock {
	out := make([]ProductStock, 0, len(rows))
	for id, row := range rows {
		out = append(out, ProductStock{ID: id, Name: names[id], Stock: row.ClosingStock})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// mergeStock overlays the applied closing stock on the reverted one.
func mergeStock(reverted map[uuid.UUID]*model.StockLedger, applied []ProductStock) []ProductStock {
	seen := map[uuid.UUID]bool{}
	out := make([]ProductStock, 0, len(reverted)+len(applied))
	for _, p := range applied {
		seen[p.ID] = true
		out = append(out, p)
	}
	for id, row := range reverted {
		if !seen[id] {
			out = append(out, ProductStock{ID: id, Stock: row.ClosingStock})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}
