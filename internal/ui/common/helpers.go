// Package common provides shared utilities for the UI.
package common

import (
	"fmt"
	"time"
)

// TruncateName truncates a player name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// FormatCountdown 倒计时显示，不足一秒向上取整
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	secs := (d + time.Second - 1) / time.Second
	return fmt.Sprintf("%ds", secs)
}

// AnswerKey 第 i 个选项的按键，超出范围时返回序号
func AnswerKey(i int) string {
	if i >= 0 && i < len(AnswerKeys) {
		return AnswerKeys[i]
	}
	return fmt.Sprintf("%d", i+1)
}
