package presence

import (
	"testing"

	"loft-chat/internal/model"
)

// TestReceiveAppliesMatchingTopic 验证匹配 topic 的快照被应用并进入 Loaded 状态。
// 场景：视图订阅 rooms:7，收到 rooms:7 的全量快照后名单可见。
func TestReceiveAppliesMatchingTopic(t *testing.T) {
	tracker := NewTracker(TopicForRoom("7"))

	applied := tracker.Receive("rooms:7", []model.User{{ID: "u1", Handle: "ada"}})
	if !applied {
		t.Fatalf("expected snapshot for matching topic to be applied")
	}
	if !tracker.Loaded() {
		t.Fatalf("expected tracker to transition to Loaded")
	}
	members := tracker.Members()
	if len(members) != 1 || members[0].ID != "u1" {
		t.Fatalf("expected member list [u1], got %+v", members)
	}
}

// TestReceiveIgnoresMismatchedTopic 验证 topic 不匹配的快照不改变状态。
// 场景：视图订阅 rooms:7，迟到的 rooms:42 快照到达——NotLoaded 保持 NotLoaded，
// 已有的 Loaded 名单也不会被覆盖。
func TestReceiveIgnoresMismatchedTopic(t *testing.T) {
	tracker := NewTracker(TopicForRoom("7"))

	if applied := tracker.Receive("rooms:42", []model.User{{ID: "ghost"}}); applied {
		t.Fatalf("expected mismatched snapshot to be ignored")
	}
	if tracker.Loaded() {
		t.Fatalf("expected NotLoaded to stay NotLoaded")
	}

	tracker.Receive("rooms:7", []model.User{{ID: "u1"}})
	if applied := tracker.Receive("rooms:42", []model.User{{ID: "ghost"}}); applied {
		t.Fatalf("expected mismatched snapshot to be ignored after load")
	}
	members := tracker.Members()
	if len(members) != 1 || members[0].ID != "u1" {
		t.Fatalf("expected loaded list untouched, got %+v", members)
	}
}

// TestReceiveReplacesList 验证后续快照整体替换名单而不是追加。
// 场景：第二份快照少了一个人，名单应以最新快照为准。
func TestReceiveReplacesList(t *testing.T) {
	tracker := NewTracker("rooms:7")
	tracker.Receive("rooms:7", []model.User{{ID: "u1"}, {ID: "u2"}})
	tracker.Receive("rooms:7", []model.User{{ID: "u2"}})

	members := tracker.Members()
	if len(members) != 1 || members[0].ID != "u2" {
		t.Fatalf("expected snapshot to replace the list, got %+v", members)
	}
}

// TestMembersReturnsCopy 验证 Members 返回副本，外部修改不影响内部状态。
func TestMembersReturnsCopy(t *testing.T) {
	tracker := NewTracker("rooms:7")
	tracker.Receive("rooms:7", []model.User{{ID: "u1"}})

	members := tracker.Members()
	members[0].ID = "mutated"

	again := tracker.Members()
	if again[0].ID != "u1" {
		t.Fatalf("expected internal list unchanged, got %q", again[0].ID)
	}
}
