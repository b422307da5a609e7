package component

// InventorySize is the fixed number of item slots per entity.
const InventorySize = 12

// Inventory is a fixed-size slot array of item ids. EmptySlot marks a free
// slot.
type Inventory struct {
	ItemIDs [InventorySize]int32
}

// EmptySlot is the sentinel for an unoccupied inventory slot.
const EmptySlot int32 = -1

// NewInventory returns an inventory with every slot empty.
func NewInventory() Inventory {
	inv := Inventory{}
	for i := range inv.ItemIDs {
		inv.ItemIDs[i] = EmptySlot
	}
	return inv
}

// LiveItems returns the non-empty item ids in slot order.
func (inv *Inventory) LiveItems() []int32 {
	items := make([]int32, 0, InventorySize)
	for _, id := range inv.ItemIDs {
		if id != EmptySlot {
			items = append(items, id)
		}
	}
	return items
}
