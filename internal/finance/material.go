package finance

// MaterialMode tells how a material line's cost is maintained.
type MaterialMode int

const (
	// ModeManual: cost is a user-entered lump sum, frozen against batch-size
	// changes.
	ModeManual MaterialMode = iota
	// ModeCalculated: cost is derived from qty/buffer/unit cost and the batch
	// size, and is read-only for the user.
	ModeCalculated
)

// Mode infers the entry mode from the detail fields. An item is calculated
// when either UnitCost or QtyPerUnit is positive. Both zero means manual,
// even with BufferUnits set: a buffer without a unit cost prices to nothing,
// so the lump sum stays authoritative. Every recomputation path must go
// through this single policy or an item's mode can visibly flip between
// edits.
func (m MaterialItem) Mode() MaterialMode {
	if m.UnitCost > 0 || m.QtyPerUnit > 0 {
		return ModeCalculated
	}
	return ModeManual
}

func calculatedCost(m MaterialItem, batchSize int) float64 {
	return (m.QtyPerUnit*float64(batchSize) + m.BufferUnits) * m.UnitCost
}

// RecalcMaterials re-derives the cost of every calculated-mode item for the
// given batch size. Manual items pass through untouched. Order and ids are
// preserved; the input slice is never mutated. Idempotent for a fixed batch
// size.
func RecalcMaterials(materials []MaterialItem, batchSize int) []MaterialItem {
	out := append([]MaterialItem(nil), materials...)
	for i, m := range out {
		if m.Mode() == ModeCalculated {
			out[i].Cost = calculatedCost(m, batchSize)
		}
	}
	return out
}

// MaterialField names an editable field of the detailed material editor.
type MaterialField string

const (
	FieldName        MaterialField = "name"
	FieldNotes       MaterialField = "notes"
	FieldQtyPerUnit  MaterialField = "qty_per_unit"
	FieldBufferUnits MaterialField = "buffer_units"
	FieldUnitCost    MaterialField = "unit_cost"
)

// UpdateMaterialDetail applies one field edit from the detailed editor and
// immediately re-derives that item's cost when the edit touches a pricing
// field. The editor carries its own batch size, which may differ from the
// live one. Numeric values arrive as raw text and parse leniently (garbage
// becomes 0). Unknown ids and unknown fields leave the slice unchanged.
func UpdateMaterialDetail(materials []MaterialItem, id string, field MaterialField, value string, batchSize int) []MaterialItem {
	out := append([]MaterialItem(nil), materials...)
	for i, m := range out {
		if m.ID != id {
			continue
		}
		switch field {
		case FieldName:
			out[i].Name = value
		case FieldNotes:
			out[i].Notes = value
		case FieldQtyPerUnit:
			out[i].QtyPerUnit = ParseNumberOrZero(value)
		case FieldBufferUnits:
			out[i].BufferUnits = ParseNumberOrZero(value)
		case FieldUnitCost:
			out[i].UnitCost = ParseNumberOrZero(value)
		default:
			return out
		}
		if field == FieldQtyPerUnit || field == FieldBufferUnits || field == FieldUnitCost {
			// A pricing edit may also have switched the item's mode.
			if out[i].Mode() == ModeCalculated {
				out[i].Cost = calculatedCost(out[i], batchSize)
			}
		}
		return out
	}
	return out
}

// SetManualCost writes a lump-sum cost to a manual-mode item. On a
// calculated-mode item the write is silently dropped: the field is presented
// read-only there, and any value smuggled in would be overwritten by the next
// recalculation anyway.
func SetManualCost(materials []MaterialItem, id string, amount float64) []MaterialItem {
	out := append([]MaterialItem(nil), materials...)
	for i, m := range out {
		if m.ID != id {
			continue
		}
		if m.Mode() == ModeManual {
			out[i].Cost = amount
		}
		return out
	}
	return out
}

// RenameMaterial updates name and notes without touching pricing fields.
func RenameMaterial(materials []MaterialItem, id, name, notes string) []MaterialItem {
	out := append([]MaterialItem(nil), materials...)
	for i, m := range out {
		if m.ID == id {
			out[i].Name = name
			out[i].Notes = notes
			return out
		}
	}
	return out
}

// RemoveMaterial drops the item with the given id, preserving order.
func RemoveMaterial(materials []MaterialItem, id string) []MaterialItem {
	out := make([]MaterialItem, 0, len(materials))
	for _, m := range materials {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}
