package scroll

// DefaultFetchThreshold 是触发向上翻页的滚动阈值：
// 距顶部不超过这个距离时认为用户正在接近最旧的已加载条目。
const DefaultFetchThreshold = 200

// Position 是 DOM 桥回报的一次滚动位置采样。
// AnchorID 是采样时视口最顶端的条目 ID，向上翻页后用它恢复视觉位置。
type Position struct {
	OffsetFromTop int    `json:"offset_from_top"`
	AnchorID      string `json:"anchor_id,omitempty"`
}

// Bridge 是核心与 DOM 滚动能力之间的契约。
// 核心只发出请求与指令，真正的 DOM 查询/滚动由平台绑定实现；
// RequestPosition 的结果以 ScrollPositionReceived 消息异步回到消息循环。
type Bridge interface {
	RequestPosition(elementID string)
	ScrollTo(elementID, anchorID string, offset int)
	ScrollToBottom(elementID string)
}

// ShouldFetchOlder 判定是否触发向上翻页。
// 三个条件缺一不可：已知最近一次采样距顶部不超过阈值、
// 服务端报告还有更早的页、当前没有未完成的向上翻页请求。
func ShouldFetchOlder(pos *Position, hasNextPage, fetching bool) bool {
	if pos == nil {
		return false
	}
	return hasNextPage && !fetching && pos.OffsetFromTop <= DefaultFetchThreshold
}
