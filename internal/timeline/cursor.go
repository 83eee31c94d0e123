package timeline

// Cursor walks a timeline by index. Copying a Cursor value forks it; both
// copies share the timeline's arena.
type Cursor struct {
	tl  *Timeline
	pos int
}

// Peek returns the part Next would return without moving.
func (c *Cursor) Peek() (Part, bool) {
	return c.tl.At(c.pos)
}

// Next returns the current part and advances past it.
func (c *Cursor) Next() (Part, bool) {
	p, ok := c.tl.At(c.pos)
	if ok {
		c.pos++
	}
	return p, ok
}

// Previous steps back one part and returns it. It reports false at the start.
func (c *Cursor) Previous() (Part, bool) {
	if c.pos == 0 {
		return Part{}, false
	}
	c.pos--
	return c.tl.At(c.pos)
}

// Reset moves the cursor back to the first part.
func (c *Cursor) Reset() {
	c.pos = 0
}

// Seek positions the cursor so Next returns part i.
func (c *Cursor) Seek(i int) {
	c.pos = max(i, 0)
}

// Index returns the index of the part Next would return.
func (c *Cursor) Index() int {
	return c.pos
}

// Done reports whether no part remains.
func (c *Cursor) Done() bool {
	_, ok := c.Peek()
	return !ok
}

// Timeline returns the timeline the cursor walks.
func (c *Cursor) Timeline() *Timeline {
	return c.tl
}
