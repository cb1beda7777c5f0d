package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const couponCodeMaxAttempts = 5

// generateCouponCode 生成券码：Q + 随机字母数字 + 毫秒时间戳 + 随机数字
func generateCouponCode(now time.Time) string {
	segment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:2]
	return "Q" + segment + strconv.FormatInt(now.UnixMilli(), 10) + randNumeric(3)
}

// generateOrderNo 生成订单号：ON + 随机数字 + 毫秒时间戳 + 随机数字
func generateOrderNo(now time.Time) string {
	return fmt.Sprintf("ON%s%d%s", randNumeric(4), now.UnixMilli(), randNumeric(4))
}

func randNumeric(length int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(strconv.FormatInt(n.Int64(), 10))
	}
	return b.String()
}
