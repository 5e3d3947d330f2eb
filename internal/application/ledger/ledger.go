package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
	"github.com/pasalhq/pasal-erp/pkg/logger"
)

// Ledger owns every mutation of variant stock counters. Each Adjust locks the
// variant row, validates bucket bounds, writes the counters and the movement
// audit row — all inside the caller's transaction. No counter update without
// an audit row, no audit row without a counter change.
type Ledger struct {
	log *logger.Logger
}

// New builds the stock ledger.
func New(log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{log: log}
}

// AdjustInput is one ledger mutation.
type AdjustInput struct {
	VariantID string
	Bucket    string // sellable | damaged | reserved
	Delta     int    // signed
	CausalRef string // order id or inventory transaction id
	Reason    string
	Actor     string
}

// Adjust applies one counter mutation and writes its movement row. The
// repositories must be bound to an open transaction; the variant row lock
// taken here serializes concurrent adjustments on the same variant.
//
// Bucket rules:
//   - sellable/damaged may never go negative.
//   - a sellable decrease may not drop below the reserved count.
//   - a reservation increase may not exceed current sellable stock.
func (l *Ledger) Adjust(variants repository.VariantRepository, movements repository.StockMovementRepository, in AdjustInput) (*entity.StockMovement, error) {
	if in.Delta == 0 {
		return nil, &domain.ValidationError{Field: "delta", Message: "must be non-zero"}
	}

	v, err := variants.GetForUpdate(in.VariantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}

	var after int
	switch in.Bucket {
	case entity.BucketSellable:
		after = v.SellableStock + in.Delta
		// A decrement may not cut into reserved units: reserved <= sellable
		// must hold after every write. Since reserved is never negative this
		// also keeps the counter itself non-negative.
		if in.Delta < 0 && after < v.ReservedStock {
			return nil, &domain.InsufficientStockError{
				VariantID: v.ID, Bucket: in.Bucket,
				Requested: -in.Delta, Available: v.SellableStock - v.ReservedStock,
			}
		}
		v.SellableStock = after
	case entity.BucketDamaged:
		after = v.DamagedStock + in.Delta
		if after < 0 {
			return nil, &domain.InsufficientStockError{
				VariantID: v.ID, Bucket: in.Bucket,
				Requested: -in.Delta, Available: v.DamagedStock,
			}
		}
		v.DamagedStock = after
	case entity.BucketReserved:
		after = v.ReservedStock + in.Delta
		if after < 0 {
			return nil, &domain.InsufficientStockError{
				VariantID: v.ID, Bucket: in.Bucket,
				Requested: -in.Delta, Available: v.ReservedStock,
			}
		}
		if in.Delta > 0 && after > v.SellableStock {
			return nil, &domain.InsufficientStockError{
				VariantID: v.ID, Bucket: in.Bucket,
				Requested: in.Delta, Available: v.Available(),
			}
		}
		v.ReservedStock = after
	default:
		return nil, &domain.ValidationError{Field: "bucket", Message: "unknown bucket " + in.Bucket}
	}

	v.UpdatedAt = time.Now()
	if err := variants.UpdateStock(v); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:         uuid.New().String(),
		VariantID:  v.ID,
		Bucket:     in.Bucket,
		Delta:      in.Delta,
		StockAfter: after,
		CausalRef:  in.CausalRef,
		Reason:     in.Reason,
		Actor:      in.Actor,
		CreatedAt:  time.Now(),
	}
	if err := movements.Create(mov); err != nil {
		return nil, err
	}

	if in.Bucket == entity.BucketSellable && v.SellableStock <= v.ReorderLevel {
		l.log.Warn().
			Str("variant_id", v.ID).
			Str("sku", v.SKU).
			Int("sellable_stock", v.SellableStock).
			Int("reorder_level", v.ReorderLevel).
			Msg("variant at or below reorder level")
	}

	return mov, nil
}
