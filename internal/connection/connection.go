package connection

// PageInfo 描述分页边界：是否还有更早的一页，以及继续翻页用的游标。
// EndCursor 用指针表达 Optional：连接为空时没有合法游标，不能用空串兜底。
type PageInfo struct {
	HasNextPage bool    `json:"has_next_page"`
	EndCursor   *string `json:"end_cursor,omitempty"`
}

// Node 是可以进入 Connection 的实体约束：必须有稳定 ID，用于去重。
type Node interface {
	NodeID() string
}

// Edge 是 Connection 中的一个元素：实体 + 不透明位置游标。
// 约定：Cursor 对客户端不透明，只能原样带回给服务端。
type Edge[T Node] struct {
	Node   T      `json:"node"`
	Cursor string `json:"cursor,omitempty"`
}

// Connection 是按时间顺序排列的分页集合（消息流、回复流）。
// 约定：Edges 的顺序有意义（旧 -> 新），所有合并操作都必须保持顺序。
type Connection[T Node] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"page_info"`
}

// HasNode 判断某个稳定 ID 是否已经在连接中。
func (c Connection[T]) HasNode(id string) bool {
	for _, e := range c.Edges {
		if e.Node.NodeID() == id {
			return true
		}
	}
	return false
}

// Append 把新到达的一页（或实时新消息）接在现有 edges 之后，
// 并采用新页的 PageInfo（前向游标单调推进）。
// 约定：实时追加的内容一定比现有内容新，调用方负责先用 HasNode 去重。
func Append[T Node](c Connection[T], edges []Edge[T], info PageInfo) Connection[T] {
	merged := make([]Edge[T], 0, len(c.Edges)+len(edges))
	merged = append(merged, c.Edges...)
	merged = append(merged, edges...)
	c.Edges = merged
	c.PageInfo = info
	return c
}

// AppendNode 追加单个实体（实时推送路径）。
// 幂等性：稳定 ID 已存在时直接返回原连接，保证推送重复投递不产生副本。
func AppendNode[T Node](c Connection[T], node T, cursor string) Connection[T] {
	if c.HasNode(node.NodeID()) {
		return c
	}
	edges := make([]Edge[T], 0, len(c.Edges)+1)
	edges = append(edges, c.Edges...)
	edges = append(edges, Edge[T]{Node: node, Cursor: cursor})
	c.Edges = edges
	return c
}

// PrependOlder 把更早的一页插在现有 edges 之前（向上翻页）。
// 去重：新页与已加载内容可能在边界处重叠，按稳定 ID 过滤后再合并。
// PageInfo 采用更早一页的值：它描述的是向后（更旧方向）的边界。
func PrependOlder[T Node](c Connection[T], edges []Edge[T], info PageInfo) Connection[T] {
	fresh := make([]Edge[T], 0, len(edges))
	for _, e := range edges {
		if !c.HasNode(e.Node.NodeID()) {
			fresh = append(fresh, e)
		}
	}
	merged := make([]Edge[T], 0, len(fresh)+len(c.Edges))
	merged = append(merged, fresh...)
	merged = append(merged, c.Edges...)
	c.Edges = merged
	c.PageInfo = info
	return c
}

// ReplaceNode 用实体的最新版本替换连接中的同 ID 节点（更新事件）。
// 不存在时为 no-op：更新一条尚未加载的消息不应凭空插入。
func ReplaceNode[T Node](c Connection[T], node T) Connection[T] {
	for i, e := range c.Edges {
		if e.Node.NodeID() == node.NodeID() {
			edges := make([]Edge[T], len(c.Edges))
			copy(edges, c.Edges)
			edges[i].Node = node
			c.Edges = edges
			return c
		}
	}
	return c
}

// RemoveNode 按稳定 ID 删除节点（删除事件）。不存在时为 no-op。
func RemoveNode[T Node](c Connection[T], id string) Connection[T] {
	for i, e := range c.Edges {
		if e.Node.NodeID() == id {
			edges := make([]Edge[T], 0, len(c.Edges)-1)
			edges = append(edges, c.Edges[:i]...)
			edges = append(edges, c.Edges[i+1:]...)
			c.Edges = edges
			return c
		}
	}
	return c
}

// Last 返回最近的 n 条 edges（序列尾部），用于计算 last-read 标记。
// 边界：n 大于长度时返回全部；n <= 0 返回空。
func Last[T Node](n int, c Connection[T]) []Edge[T] {
	if n <= 0 {
		return nil
	}
	if n > len(c.Edges) {
		n = len(c.Edges)
	}
	out := make([]Edge[T], n)
	copy(out, c.Edges[len(c.Edges)-n:])
	return out
}

// InsertUniqueBy 按 key 幂等插入：key 已存在时用新值原位替换（最新者胜），
// 其余元素相对顺序不变；不存在时追加到末尾。用于书签等辅助列表。
func InsertUniqueBy[T any](key func(T) string, item T, list []T) []T {
	k := key(item)
	for i, existing := range list {
		if key(existing) == k {
			out := make([]T, len(list))
			copy(out, list)
			out[i] = item
			return out
		}
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, item)
	return out
}

// RemoveBy 按 key 删除第一个匹配的元素，不存在时为 no-op。
func RemoveBy[T any](key func(T) string, item T, list []T) []T {
	k := key(item)
	for i, existing := range list {
		if key(existing) == k {
			out := make([]T, 0, len(list)-1)
			out = append(out, list[:i]...)
			out = append(out, list[i+1:]...)
			return out
		}
	}
	return list
}
