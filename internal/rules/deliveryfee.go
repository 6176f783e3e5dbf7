package rules

import (
	"math"
	"strings"
)

// Тайм-слоты доставки.
const (
	TimeSlotStandard = "standard"
	TimeSlotExpress  = "express"
)

// Уровни клиентов для скидок на доставку.
const (
	TierRegular = "regular"
	TierLoyal   = "loyal"
	TierVIP     = "vip"
)

// Zone — тарифная группа городов со своим плоским тарифом и порогом
// бесплатной доставки.
type Zone struct {
	Code          string
	Name          string
	Cities        []string
	BaseFee       int64
	FreeThreshold int64
}

// FeeOptions — модификаторы тарифа поверх базовой зоны.
type FeeOptions struct {
	Express      bool
	TimeSlot     string
	CustomerTier string
}

// FeeBreakdown раскрывает слагаемые итогового тарифа.
type FeeBreakdown struct {
	BaseFee          int64
	TierDiscount     int64
	ExpressSurcharge int64
}

// FeeQuote — результат расчёта стоимости доставки.
type FeeQuote struct {
	Fee       int64
	Zone      string
	ZoneName  string
	IsFree    bool
	Reason    string
	Breakdown FeeBreakdown
}

// FeeCalculator резолвит зону по городу и применяет модификаторы строго в
// порядке: базовый тариф зоны -> порог бесплатной доставки -> скидка уровня
// клиента -> экспресс-надбавка. Итог не бывает отрицательным и округляется
// до целых рупий (у LKR нет минорной единицы).
type FeeCalculator struct {
	zones       []Zone
	defaultZone Zone
}

const (
	zoneCodeOther = "other"
	zoneNameOther = "Other Areas"

	expressMultiplier = 1.5
	loyalMultiplier   = 0.9
	vipMultiplier     = 0.75
)

// DefaultZones возвращает боевую тарифную сетку.
func DefaultZones() []Zone {
	return []Zone{
		{
			Code:          "colombo",
			Name:          "Colombo Metro",
			Cities:        []string{"Colombo", "Dehiwala", "Mount Lavinia", "Nugegoda", "Rajagiriya"},
			BaseFee:       300,
			FreeThreshold: 7500,
		},
		{
			Code:          "suburbs",
			Name:          "Western Suburbs",
			Cities:        []string{"Moratuwa", "Kelaniya", "Maharagama", "Kaduwela", "Battaramulla"},
			BaseFee:       400,
			FreeThreshold: 8500,
		},
	}
}

// NewFeeCalculator собирает калькулятор из конфигурации правил; зона "other"
// наследует плоский тариф и общий порог бесплатной доставки.
func NewFeeCalculator(cfg Config) *FeeCalculator {
	return &FeeCalculator{
		zones: cfg.Zones,
		defaultZone: Zone{
			Code:          zoneCodeOther,
			Name:          zoneNameOther,
			BaseFee:       cfg.DefaultDeliveryFee,
			FreeThreshold: cfg.FreeDeliveryThreshold,
		},
	}
}

// Quote считает стоимость доставки для подытога заказа и города.
func (c *FeeCalculator) Quote(subtotal int64, city string, opts FeeOptions) FeeQuote {
	zone := c.resolveZone(city)

	quote := FeeQuote{
		Zone:      zone.Code,
		ZoneName:  zone.Name,
		Breakdown: FeeBreakdown{BaseFee: zone.BaseFee},
	}

	if subtotal >= zone.FreeThreshold {
		quote.Fee = 0
		quote.IsFree = true
		quote.Reason = "order qualifies for free delivery"
		return quote
	}

	fee := float64(zone.BaseFee)

	tier := strings.ToLower(strings.TrimSpace(opts.CustomerTier))
	switch tier {
	case TierLoyal:
		discounted := fee * loyalMultiplier
		quote.Breakdown.TierDiscount = roundLKR(fee - discounted)
		fee = discounted
	case TierVIP:
		discounted := fee * vipMultiplier
		quote.Breakdown.TierDiscount = roundLKR(fee - discounted)
		fee = discounted
	}

	if opts.Express || strings.EqualFold(opts.TimeSlot, TimeSlotExpress) {
		surcharged := fee * expressMultiplier
		quote.Breakdown.ExpressSurcharge = roundLKR(surcharged - fee)
		fee = surcharged
	}

	if fee < 0 {
		fee = 0
	}
	quote.Fee = roundLKR(fee)
	quote.Reason = "standard delivery rate for " + zone.Name
	return quote
}

// resolveZone подбирает зону по городу без учёта регистра; город вне сетки
// попадает в зону "other".
func (c *FeeCalculator) resolveZone(city string) Zone {
	city = strings.TrimSpace(city)
	if city == "" {
		return c.defaultZone
	}
	for _, zone := range c.zones {
		for _, candidate := range zone.Cities {
			if strings.EqualFold(candidate, city) {
				return zone
			}
		}
	}
	return c.defaultZone
}

func roundLKR(v float64) int64 {
	return int64(math.Round(v))
}
