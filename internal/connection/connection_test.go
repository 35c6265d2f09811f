package connection

import "testing"

type item struct {
	ID   string
	Body string
}

func (i item) NodeID() string { return i.ID }

func edge(id, body, cursor string) Edge[item] {
	return Edge[item]{Node: item{ID: id, Body: body}, Cursor: cursor}
}

func cursorOf(s string) *string { return &s }

// TestAppendAdvancesPageInfo 验证 Append 在尾部拼接并采用新页的 PageInfo。
// 场景：已有两条消息，追加新到的一页后顺序保持，游标前移。
func TestAppendAdvancesPageInfo(t *testing.T) {
	conn := Connection[item]{
		Edges:    []Edge[item]{edge("m1", "a", "c1"), edge("m2", "b", "c2")},
		PageInfo: PageInfo{HasNextPage: true, EndCursor: cursorOf("c1")},
	}

	conn = Append(conn, []Edge[item]{edge("m3", "c", "c3")}, PageInfo{HasNextPage: false})

	if len(conn.Edges) != 3 || conn.Edges[2].Node.ID != "m3" {
		t.Fatalf("expected m3 appended at tail, got %+v", conn.Edges)
	}
	if conn.PageInfo.HasNextPage {
		t.Fatalf("expected page info replaced by the new page")
	}
}

// TestAppendNodeIdempotent 验证 AppendNode 按稳定 ID 幂等。
// 场景：同一条消息追加两次，连接中只能有一份。
func TestAppendNodeIdempotent(t *testing.T) {
	conn := Connection[item]{}
	conn = AppendNode(conn, item{ID: "m1", Body: "hi"}, "c1")
	conn = AppendNode(conn, item{ID: "m1", Body: "hi"}, "c1")

	if len(conn.Edges) != 1 {
		t.Fatalf("expected exactly one copy of m1, got %d", len(conn.Edges))
	}
}

// TestPrependOlderDedupsOverlap 验证 PrependOlder 在边界重叠时按 ID 去重。
// 场景：更早的一页与已加载内容共享一条消息，合并后不产生重复，顺序为旧在前。
func TestPrependOlderDedupsOverlap(t *testing.T) {
	conn := Connection[item]{
		Edges:    []Edge[item]{edge("m3", "c", "c3"), edge("m4", "d", "c4")},
		PageInfo: PageInfo{HasNextPage: true, EndCursor: cursorOf("c3")},
	}

	older := []Edge[item]{edge("m1", "a", "c1"), edge("m2", "b", "c2"), edge("m3", "c", "c3")}
	conn = PrependOlder(conn, older, PageInfo{HasNextPage: false, EndCursor: cursorOf("c1")})

	if len(conn.Edges) != 4 {
		t.Fatalf("expected 4 edges after dedup, got %d", len(conn.Edges))
	}
	want := []string{"m1", "m2", "m3", "m4"}
	for i, id := range want {
		if conn.Edges[i].Node.ID != id {
			t.Fatalf("expected order %v, got %q at %d", want, conn.Edges[i].Node.ID, i)
		}
	}
	if conn.PageInfo.HasNextPage {
		t.Fatalf("expected page info taken from the older page")
	}
}

// TestLastReturnsTail 验证 Last 返回最近的 n 条 edges。
// 场景：n 小于长度取尾部；n 超过长度取全部；n 为 0 返回空。
func TestLastReturnsTail(t *testing.T) {
	conn := Connection[item]{
		Edges: []Edge[item]{edge("m1", "a", "c1"), edge("m2", "b", "c2"), edge("m3", "c", "c3")},
	}

	tail := Last(2, conn)
	if len(tail) != 2 || tail[0].Node.ID != "m2" || tail[1].Node.ID != "m3" {
		t.Fatalf("expected [m2 m3], got %+v", tail)
	}
	if got := Last(10, conn); len(got) != 3 {
		t.Fatalf("expected full slice when n exceeds length, got %d", len(got))
	}
	if got := Last(0, conn); len(got) != 0 {
		t.Fatalf("expected empty slice for n=0, got %d", len(got))
	}
}

// TestReplaceNodeUpdatesInPlace 验证 ReplaceNode 原位替换同 ID 节点。
// 场景：更新已加载消息的正文；更新未加载的消息是 no-op。
func TestReplaceNodeUpdatesInPlace(t *testing.T) {
	conn := Connection[item]{
		Edges: []Edge[item]{edge("m1", "a", "c1"), edge("m2", "b", "c2")},
	}

	conn = ReplaceNode(conn, item{ID: "m1", Body: "edited"})
	if conn.Edges[0].Node.Body != "edited" || conn.Edges[0].Cursor != "c1" {
		t.Fatalf("expected m1 body replaced with cursor kept, got %+v", conn.Edges[0])
	}

	conn = ReplaceNode(conn, item{ID: "missing", Body: "x"})
	if len(conn.Edges) != 2 {
		t.Fatalf("expected replace of unknown id to be a no-op")
	}
}

// TestRemoveNodeDeletesById 验证 RemoveNode 按稳定 ID 删除。
// 场景：删除中间节点后顺序保持；删除不存在的 ID 是 no-op。
func TestRemoveNodeDeletesById(t *testing.T) {
	conn := Connection[item]{
		Edges: []Edge[item]{edge("m1", "a", "c1"), edge("m2", "b", "c2"), edge("m3", "c", "c3")},
	}

	conn = RemoveNode(conn, "m2")
	if len(conn.Edges) != 2 || conn.Edges[0].Node.ID != "m1" || conn.Edges[1].Node.ID != "m3" {
		t.Fatalf("expected [m1 m3], got %+v", conn.Edges)
	}

	conn = RemoveNode(conn, "m2")
	if len(conn.Edges) != 2 {
		t.Fatalf("expected remove of unknown id to be a no-op")
	}
}

// TestInsertUniqueByMostRecentWins 验证按 key 幂等插入：重复 key 原位替换，最新者胜。
// 场景：两个同 key 不同值的元素先后插入，结果只保留一个且是后插入的值，其余顺序不变。
func TestInsertUniqueByMostRecentWins(t *testing.T) {
	key := func(i item) string { return i.ID }
	list := []item{{ID: "r1", Body: "alpha"}, {ID: "r2", Body: "beta"}}

	list = InsertUniqueBy(key, item{ID: "r1", Body: "alpha-v2"}, list)

	if len(list) != 2 {
		t.Fatalf("expected 2 elements after idempotent insert, got %d", len(list))
	}
	if list[0].ID != "r1" || list[0].Body != "alpha-v2" {
		t.Fatalf("expected r1 replaced in place by most recent value, got %+v", list[0])
	}
	if list[1].ID != "r2" || list[1].Body != "beta" {
		t.Fatalf("expected untouched elements to keep order, got %+v", list[1])
	}

	list = InsertUniqueBy(key, item{ID: "r3", Body: "gamma"}, list)
	if len(list) != 3 || list[2].ID != "r3" {
		t.Fatalf("expected new key appended at tail, got %+v", list)
	}
}

// TestRemoveByFirstMatch 验证按 key 删除第一个匹配元素。
// 场景：删除存在的 key；删除不存在的 key 是 no-op。
func TestRemoveByFirstMatch(t *testing.T) {
	key := func(i item) string { return i.ID }
	list := []item{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}}

	list = RemoveBy(key, item{ID: "r2"}, list)
	if len(list) != 2 || list[0].ID != "r1" || list[1].ID != "r3" {
		t.Fatalf("expected [r1 r3], got %+v", list)
	}

	list = RemoveBy(key, item{ID: "r9"}, list)
	if len(list) != 2 {
		t.Fatalf("expected remove of unknown key to be a no-op")
	}
}
