package utils

import (
	"fmt"
	"time"
)

// BusinessDayCutoverHour -> aktivitas sebelum jam 6 pagi masuk ke hari sebelumnya
const BusinessDayCutoverHour = 6

// BusinessDate returns the calendar day an order belongs to, shifted by the
// 6 AM cutover so late-night sales roll into the prior day.
func BusinessDate(t time.Time) time.Time {
	shifted := t.Add(-time.Duration(BusinessDayCutoverHour) * time.Hour)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, t.Location())
}

// DayShardKey partitions the order-number counter per business date.
func DayShardKey(t time.Time) string {
	return BusinessDate(t).Format("20060102")
}

// HourShardKey further partitions a business day by wall-clock hour,
// giving up to 24 independent counters under burst load.
func HourShardKey(t time.Time) string {
	return fmt.Sprintf("%s-%02d", BusinessDate(t).Format("20060102"), t.Hour())
}
