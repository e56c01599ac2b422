package cart

// snapshot is the frozen copy of the cart captured when an existing order
// finishes loading into edit mode, and re-captured after every successful
// save. It is the baseline the unsaved-changes diff runs against.
type snapshot struct {
	items       []Item
	form        FormState
	adjustments []Adjustment
}

func (c *Cart) captureSnapshot() {
	snap := &snapshot{
		items:       make([]Item, len(c.items)),
		form:        c.form,
		adjustments: cloneAdjustments(c.adjustments),
	}
	for i, it := range c.items {
		snap.items[i] = it.clone()
	}
	c.original = snap
}

// MarkSaved re-captures the original snapshot from the current state. Called
// after the order service accepts a save, so the diff baseline always matches
// the last-known server state.
func (c *Cart) MarkSaved() {
	if c.mode != ModeEdit {
		return
	}
	c.captureSnapshot()
	c.refresh()
}

// ResetToOriginal discards every local edit and restores the captured
// snapshot. No-op outside edit mode.
func (c *Cart) ResetToOriginal() {
	if c.original == nil {
		return
	}
	c.items = make([]Item, len(c.original.items))
	for i, it := range c.original.items {
		c.items[i] = it.clone()
	}
	c.form = c.original.form
	c.adjustments = cloneAdjustments(c.original.adjustments)
	c.refresh()
}

// HasUnsavedChanges reports whether the current state diverges from the
// original snapshot. It is a derived value refreshed after every mutation,
// never polled lazily, so exit and payment gating is always current.
func (c *Cart) HasUnsavedChanges() bool {
	return c.unsaved
}

// refresh recomputes the unsaved-changes flag. Always false outside edit
// mode or before a snapshot exists (order still loading).
func (c *Cart) refresh() {
	c.unsaved = c.computeUnsaved()
}

func (c *Cart) computeUnsaved() bool {
	if c.mode != ModeEdit || c.original == nil {
		return false
	}
	if !itemListsEqual(c.items, c.original.items) {
		return true
	}
	if !formsEqual(c.form, c.original.form) {
		return true
	}
	return !adjustmentsEqual(c.adjustments, c.original.adjustments)
}
