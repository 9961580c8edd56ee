package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New 生成带前缀的运行 ID：prefix + 毫秒时间戳 + uuid 前 12 位。
// 时间戳放在前面，按字典序即可大致按时间排序。
func New(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix[:12])
}
