package mysql

import "container/list"

// preparedStatement is a server-side prepared statement: its id plus enough
// metadata to build a COM_STMT_EXECUTE packet and decode its result set.
type preparedStatement struct {
	id           uint32
	numParams    int
	columns      []column
	paramColumns []column
}

// statementCache is a fixed-capacity, per-connection LRU cache of prepared
// statements keyed by SQL text. Evicting a statement closes it server-side
// with COM_STMT_CLOSE (fire-and-forget, matching the protocol: the server
// does not answer that command).
type statementCache struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
}

type statementCacheEntry struct {
	sql  string
	stmt *preparedStatement
}

func newStatementCache(capacity int) *statementCache {
	return &statementCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *statementCache) get(sql string) (*preparedStatement, bool) {
	el, ok := c.items[sql]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*statementCacheEntry).stmt, true
}

// put inserts stmt under sql, evicting the least-recently-used entry if the
// cache is at capacity. It returns the evicted statement, if any, so the
// caller can send COM_STMT_CLOSE for it.
func (c *statementCache) put(sql string, stmt *preparedStatement) (evicted *preparedStatement) {
	if el, ok := c.items[sql]; ok {
		el.Value.(*statementCacheEntry).stmt = stmt
		c.order.MoveToFront(el)
		return nil
	}

	el := c.order.PushFront(&statementCacheEntry{sql: sql, stmt: stmt})
	c.items[sql] = el

	if c.order.Len() > c.capacity {
		back := c.order.Back()
		entry := back.Value.(*statementCacheEntry)
		c.order.Remove(back)
		delete(c.items, entry.sql)
		return entry.stmt
	}
	return nil
}

func (c *statementCache) all() []*preparedStatement {
	out := make([]*preparedStatement, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*statementCacheEntry).stmt)
	}
	return out
}
