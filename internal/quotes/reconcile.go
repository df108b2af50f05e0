package quotes

import (
	"strings"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemPatch is one entry of an update payload. Nil fields keep the stored
// value, and so do a blank description or a zero quantity or unit price; an
// ID that matches no stored item is ignored and the patch creates a new item.
type ItemPatch struct {
	ID          *uuid.UUID
	Description *string
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
	Order       *int
}

// Reconciliation partitions the stored items of a quote against a patch list.
type Reconciliation struct {
	Kept    []models.QuoteItem
	New     []models.QuoteItem
	Deleted []models.QuoteItem
}

// Items is the authoritative item set after the update.
func (r Reconciliation) Items() []models.QuoteItem {
	out := make([]models.QuoteItem, 0, len(r.Kept)+len(r.New))
	out = append(out, r.Kept...)
	return append(out, r.New...)
}

// Reconcile merges patches into existing. Patches are applied in order; when
// two patches name the same stored item the later one is applied on top of
// the earlier and the item is kept once. existing is not modified.
func Reconcile(quoteID uuid.UUID, existing []models.QuoteItem, patches []ItemPatch) Reconciliation {
	working := make(map[uuid.UUID]models.QuoteItem, len(existing))
	for _, item := range existing {
		working[item.ID] = item
	}

	var result Reconciliation
	keptAt := make(map[uuid.UUID]int, len(existing))

	for _, patch := range patches {
		if patch.ID != nil {
			if item, ok := working[*patch.ID]; ok {
				applyPatch(&item, patch)
				keptAt[item.ID] = len(result.Kept)
				result.Kept = append(result.Kept, item)
				delete(working, item.ID)
				continue
			}
			if idx, ok := keptAt[*patch.ID]; ok {
				applyPatch(&result.Kept[idx], patch)
				continue
			}
		}
		result.New = append(result.New, newItem(quoteID, patch))
	}

	for _, item := range existing {
		if _, ok := working[item.ID]; ok {
			result.Deleted = append(result.Deleted, item)
		}
	}

	return result
}

func applyPatch(item *models.QuoteItem, patch ItemPatch) {
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		item.Description = *patch.Description
	}
	if isSet(patch.Quantity) {
		item.Quantity = *patch.Quantity
	}
	if isSet(patch.UnitPrice) {
		item.UnitPrice = *patch.UnitPrice
	}
	if patch.Order != nil {
		item.Order = *patch.Order
	}
	item.Total = LineTotal(item.Quantity, item.UnitPrice)
}

func isSet(d *decimal.Decimal) bool {
	return d != nil && !d.IsZero()
}

func newItem(quoteID uuid.UUID, patch ItemPatch) models.QuoteItem {
	item := models.QuoteItem{
		QuoteID:   quoteID,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if isSet(patch.Quantity) {
		item.Quantity = *patch.Quantity
	}
	if isSet(patch.UnitPrice) {
		item.UnitPrice = *patch.UnitPrice
	}
	if patch.Order != nil {
		item.Order = *patch.Order
	}
	item.Total = LineTotal(item.Quantity, item.UnitPrice)
	return item
}
