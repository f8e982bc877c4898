package pagination

// PageSetter receives page-change events. *filter.Store implements it.
type PageSetter interface {
	SetCurrentPage(page int) error
}

// Controller handles navigation for one rendered listing page.
type Controller struct {
	Current int
	Total   int
	Sink    PageSetter
}

// NewController creates a controller for the given position.
func NewController(current, total int, sink PageSetter) *Controller {
	return &Controller{Current: current, Total: total, Sink: sink}
}

// Visible reports whether a page bar should be rendered at all.
func (c *Controller) Visible() bool {
	return c.Total > 1
}

// Indicators returns Window(c.Current, c.Total).
func (c *Controller) Indicators() []Indicator {
	return Window(c.Current, c.Total)
}

// CanPrev reports whether the previous-page control is enabled.
func (c *Controller) CanPrev() bool {
	return c.Current > 1
}

// CanNext reports whether the next-page control is enabled.
func (c *Controller) CanNext() bool {
	return c.Current < c.Total
}

// Prev moves one page back. It is a no-op on page 1.
func (c *Controller) Prev() (bool, error) {
	if !c.CanPrev() {
		return false, nil
	}
	return c.Goto(c.Current - 1)
}

// Next moves one page forward. It is a no-op on the last page.
func (c *Controller) Next() (bool, error) {
	if !c.CanNext() {
		return false, nil
	}
	return c.Goto(c.Current + 1)
}

// Goto emits a change to page. Pages outside 1..Total and the current page
// are ignored.
func (c *Controller) Goto(page int) (bool, error) {
	if page < 1 || page > c.Total || page == c.Current {
		return false, nil
	}
	if c.Sink != nil {
		if err := c.Sink.SetCurrentPage(page); err != nil {
			return false, err
		}
	}
	c.Current = page
	return true, nil
}
