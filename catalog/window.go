package catalog

import "github.com/junaidrashid-git/pawshop-api/models"

// DefaultPageSize is how many products a listing shows before "load more".
const DefaultPageSize = 6

// Window is the "visible count" pagination over an already filtered listing.
type Window struct {
	step    int
	visible int
}

func NewWindow(step int) *Window {
	if step <= 0 {
		step = DefaultPageSize
	}
	return &Window{step: step, visible: step}
}

// WindowAt restores a window that already shows visible products. Values below one
// page fall back to the initial size.
func WindowAt(step, visible int) *Window {
	w := NewWindow(step)
	if visible > w.step {
		w.visible = visible
	}
	return w
}

// Size is the number of products the window shows.
func (w *Window) Size() int { return w.visible }

// Visible slices list to the window.
func (w *Window) Visible(list []models.Product) []models.Product {
	if len(list) <= w.visible {
		return list
	}
	return list[:w.visible]
}

// LoadMore grows the window by one page.
func (w *Window) LoadMore() { w.visible += w.step }

// HasMore reports whether a list of n products extends past the window.
func (w *Window) HasMore(n int) bool { return w.visible < n }

// Reset shrinks the window back to one page; a new category filter calls it.
func (w *Window) Reset() { w.visible = w.step }
