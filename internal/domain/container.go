package domain

// Container owns an ordered sequence of items: a list, or the outline under
// a task. Every structural mutation (insert, remove, move) ends with a full
// renumber, so positions are always a dense permutation of 0..n-1. The
// container is mutated only through these methods; timers and UI code never
// edit the slice directly.
type Container struct {
	ID    string
	Title string
	Items []Item
}

// Renumber reassigns Position = index for every item, in order. Called after
// any structural mutation.
func (c *Container) Renumber() {
	for i := range c.Items {
		c.Items[i].Position = i
	}
}

// IndexOf returns the index of the item with the given identity, or -1.
func (c *Container) IndexOf(id ItemID) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the item with the given identity, or nil.
// The pointer is invalidated by the next structural mutation.
func (c *Container) Find(id ItemID) *Item {
	if i := c.IndexOf(id); i >= 0 {
		return &c.Items[i]
	}
	return nil
}

// Promote swaps a temporary identity for a server-assigned one in place:
// same index, same position, only the identity changes. Returns false if the
// temporary identity is not present.
func (c *Container) Promote(tempID, persistedID ItemID) bool {
	i := c.IndexOf(tempID)
	if i < 0 {
		return false
	}
	c.Items[i].ID = persistedID
	return true
}

// InsertAfter inserts the item immediately after the anchor, or at the tail
// when the anchor is zero or not found, then renumbers. It returns the index
// the item landed on.
func (c *Container) InsertAfter(anchor ItemID, item Item) int {
	at := len(c.Items)
	if !anchor.IsZero() {
		if i := c.IndexOf(anchor); i >= 0 {
			at = i + 1
		}
	}
	c.Items = append(c.Items, Item{})
	copy(c.Items[at+1:], c.Items[at:])
	c.Items[at] = item
	c.Renumber()
	return at
}

// Append inserts the item at the tail and renumbers.
func (c *Container) Append(item Item) int {
	return c.InsertAfter(ItemID{}, item)
}

// Remove deletes the item with the given identity and renumbers the items
// after the removed index. Removing the last remaining item instead leaves
// one fresh empty placeholder, so there is always an editable row. Returns
// the removed item and whether anything was removed.
func (c *Container) Remove(id ItemID) (Item, bool) {
	i := c.IndexOf(id)
	if i < 0 {
		return Item{}, false
	}
	removed := c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	if len(c.Items) == 0 {
		c.Items = append(c.Items, NewPlaceholder())
	}
	c.Renumber()
	return removed, true
}

// Move relocates the item at fromIndex to toIndex, then renumbers the whole
// container. Out-of-range indices are a no-op and return false.
func (c *Container) Move(fromIndex, toIndex int) bool {
	n := len(c.Items)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return false
	}
	if fromIndex == toIndex {
		return true
	}
	item := c.Items[fromIndex]
	c.Items = append(c.Items[:fromIndex], c.Items[fromIndex+1:]...)
	c.Items = append(c.Items, Item{})
	copy(c.Items[toIndex+1:], c.Items[toIndex:])
	c.Items[toIndex] = item
	c.Renumber()
	return true
}

// Clone returns a deep copy of the container, used for pre-mutation
// snapshots.
func (c *Container) Clone() *Container {
	out := &Container{ID: c.ID, Title: c.Title, Items: make([]Item, len(c.Items))}
	for i := range c.Items {
		out.Items[i] = c.Items[i].Clone()
	}
	return out
}
