package timeutil

import (
	"fmt"
	"time"
)

// FormatClock 把时间渲染成 12 小时制 "h:mm am/pm"。
// 边界：0 点显示为 12，分钟补零（0 -> "00"，9 -> "09"）。
func FormatClock(t time.Time) string {
	hour := t.Hour()
	meridiem := "am"
	if hour >= 12 {
		meridiem = "pm"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), meridiem)
}
