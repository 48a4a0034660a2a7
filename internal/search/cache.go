package search

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sectseek/sectseek/internal/fragment"
	"github.com/sectseek/sectseek/internal/section"
)

// GroupCache is a bounded LRU of grouped page output keyed by a content
// fingerprint of the page's fragments. It is injectable and owned by the
// Finder's caller; a nil cache disables caching entirely.
type GroupCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List // front = most recent
	entries map[string]*list.Element
}

type cacheEntry struct {
	key    string
	groups []section.Group
}

// NewGroupCache creates a cache holding at most maxSize pages.
func NewGroupCache(maxSize int) *GroupCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &GroupCache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the cached groups for a fingerprint, if present.
func (c *GroupCache) Get(key string) ([]section.Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).groups, true
}

// Put stores grouped output, evicting the oldest entry beyond capacity.
func (c *GroupCache) Put(key string, groups []section.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).groups = groups
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, groups: groups})
	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached pages.
func (c *GroupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Fingerprint computes a stable content key for a page's fragments from
// their texts and bounds. The grouping options are part of the key: the
// same fragments group differently under different gap tolerances, so
// cached output is only valid for the options that produced it.
func Fingerprint(pageNumber int, fragments []fragment.TextFragment, opts section.GroupOptions) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(pageNumber))
	fmt.Fprintf(&sb, "|%.2f,%.2f", opts.MaxLineGap, opts.MaxColumnGap)
	for _, f := range fragments {
		fmt.Fprintf(&sb, "|%s@%.2f,%.2f,%.2f,%.2f",
			f.Text, f.Bounds.Left, f.Bounds.Top, f.Bounds.Width, f.Bounds.Height)
	}
	h := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", h[:16])
}
