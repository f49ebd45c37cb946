package cache

import (
	"time"

	"industry_backend/internal/shared/istclock"
)

// TimeUntilNext8AM は now から次の午前8時（インド標準時）までの期間を返します。
// 日次のbhavcopy取り込み前にキャッシュを失効させるためのTTLとして使います。
func TimeUntilNext8AM(now time.Time) time.Duration {
	now = now.In(istclock.IST)

	next8am := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, istclock.IST)

	// 今日の午前8時が既に過ぎている場合は明日の午前8時を使用
	if !now.Before(next8am) {
		next8am = next8am.AddDate(0, 0, 1)
	}

	return next8am.Sub(now)
}
