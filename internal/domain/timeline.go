package domain

import "time"

// TimelineEvent описывает событие в жизненном цикле заказа (audit trail).
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
