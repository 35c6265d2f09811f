package timeutil

import (
	"testing"
	"time"
)

// TestFormatClock 验证 12 小时制时间格式化的边界换算。
// 场景：0 点换算为 12、13 点换算为 1、分钟补零。
func TestFormatClock(t *testing.T) {
	cases := []struct {
		hour   int
		minute int
		want   string
	}{
		{0, 5, "12:05 am"},
		{0, 0, "12:00 am"},
		{9, 9, "9:09 am"},
		{11, 59, "11:59 am"},
		{12, 0, "12:00 pm"},
		{13, 30, "1:30 pm"},
		{23, 14, "11:14 pm"},
	}

	for _, c := range cases {
		ts := time.Date(2024, 1, 1, c.hour, c.minute, 0, 0, time.UTC)
		if got := FormatClock(ts); got != c.want {
			t.Errorf("FormatClock(%02d:%02d) = %q, want %q", c.hour, c.minute, got, c.want)
		}
	}
}
