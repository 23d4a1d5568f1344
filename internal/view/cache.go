package view

import (
	"fmt"
	"sync"
)

// Cache is the client copy of the store. It is disposable: every
// successful mutation replaces it with a fresh fetch.
type Cache struct {
	mu       sync.RWMutex
	records  []Record
	pending  map[string]struct{}
	term     string
	page     int
	pageSize int
}

func NewCache() *Cache {
	return &Cache{
		pending:  map[string]struct{}{},
		page:     1,
		pageSize: DefaultPageSize,
	}
}

// Replace swaps in a freshly fetched list and keeps the current page valid.
// Deletes still in flight stay hidden if the fetch still carries them.
func (c *Cache) Replace(records []Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append([]Record(nil), records...)
	pending := map[string]struct{}{}
	for _, r := range c.records {
		if _, ok := c.pending[r.ID]; ok {
			pending[r.ID] = struct{}{}
		}
	}
	c.pending = pending
	c.clampPage()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Cache) Search() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.term
}

// SetSearch changes the term and goes back to the first page.
func (c *Cache) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term = term
	c.page = 1
}

func (c *Cache) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

func (c *Cache) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
	c.clampPage()
}

func (c *Cache) PageSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pageSize
}

// SetPageSize accepts only PageSizes and clamps the page into the new range.
func (c *Cache) SetPageSize(size int) error {
	if !validPageSize(size) {
		return fmt.Errorf("page size %d not allowed", size)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageSize = size
	c.clampPage()
	return nil
}

// All is every cached record except those whose delete is in flight,
// ignoring the search term.
func (c *Cache) All() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		if _, ok := c.pending[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// Visible is the filtered list without records whose delete is in flight.
func (c *Cache) Visible() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visible()
}

func (c *Cache) visible() []Record {
	out := make([]Record, 0, len(c.records))
	for _, r := range Filter(c.records, c.term) {
		if _, ok := c.pending[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// CurrentPage is the slice of Visible shown on the current page.
func (c *Cache) CurrentPage() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Paginate(c.visible(), c.pageSize, c.page)
}

func (c *Cache) PageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return PageCount(len(c.visible()), c.pageSize)
}

// Pages lists the page buttons, 1..PageCount.
func (c *Cache) Pages() []int {
	n := c.PageCount()
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

func (c *Cache) Find(id string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// MarkPending hides id until Commit or Rollback. It reports whether id is
// cached and not already pending.
func (c *Cache) MarkPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; ok {
		return false
	}
	for _, r := range c.records {
		if r.ID == id {
			c.pending[id] = struct{}{}
			return true
		}
	}
	return false
}

// Commit drops a deleted record for good, pending or not.
func (c *Cache) Commit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	for i, r := range c.records {
		if r.ID == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			break
		}
	}
	c.clampPage()
}

// Rollback shows a pending record again at its original position.
func (c *Cache) Rollback(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *Cache) clampPage() {
	last := PageCount(len(c.visible()), c.pageSize)
	if last < 1 {
		last = 1
	}
	if c.page > last {
		c.page = last
	}
	if c.page < 1 {
		c.page = 1
	}
}
