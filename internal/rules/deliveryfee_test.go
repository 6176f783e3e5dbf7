package rules

import "testing"

func defaultOpts() FeeOptions {
	return FeeOptions{Express: false, TimeSlot: TimeSlotStandard, CustomerTier: TierRegular}
}

func TestQuote_UnknownCityBelowThreshold(t *testing.T) {
	calc := NewFeeCalculator(DefaultConfig())

	// Сценарий A: подытог 8000, город вне тарифной сетки.
	quote := calc.Quote(8000, "Jaffna", defaultOpts())
	if quote.Zone != "other" {
		t.Fatalf("zone = %s, want other", quote.Zone)
	}
	if quote.Fee != 500 || quote.IsFree {
		t.Fatalf("fee = %d (free=%v), want 500", quote.Fee, quote.IsFree)
	}
}

func TestQuote_FreeDeliveryThreshold(t *testing.T) {
	calc := NewFeeCalculator(DefaultConfig())

	// Сценарий B: подытог 9500 >= 9000.
	quote := calc.Quote(9500, "Jaffna", defaultOpts())
	if quote.Fee != 0 || !quote.IsFree {
		t.Fatalf("fee = %d (free=%v), want free delivery", quote.Fee, quote.IsFree)
	}
}

func TestQuote_ZoneResolutionCaseInsensitive(t *testing.T) {
	calc := NewFeeCalculator(DefaultConfig())

	quote := calc.Quote(5000, "colombo", defaultOpts())
	if quote.Zone != "colombo" || quote.Fee != 300 {
		t.Fatalf("zone=%s fee=%d, want colombo/300", quote.Zone, quote.Fee)
	}

	quote = calc.Quote(7500, "COLOMBO", defaultOpts())
	if !quote.IsFree {
		t.Fatal("colombo free threshold is 7500")
	}
}

func TestQuote_ModifierOrder(t *testing.T) {
	calc := NewFeeCalculator(DefaultConfig())

	// База 500 -> VIP 0.75 -> экспресс 1.5: 500*0.75*1.5 = 562.5 -> 563.
	quote := calc.Quote(5000, "Galle", FeeOptions{Express: true, CustomerTier: TierVIP})
	if quote.Fee != 563 {
		t.Fatalf("fee = %d, want 563", quote.Fee)
	}
	if quote.Breakdown.BaseFee != 500 {
		t.Fatalf("base = %d, want 500", quote.Breakdown.BaseFee)
	}
	if quote.Breakdown.TierDiscount != 125 {
		t.Fatalf("tier discount = %d, want 125", quote.Breakdown.TierDiscount)
	}
	if quote.Breakdown.ExpressSurcharge != 188 {
		t.Fatalf("express surcharge = %d, want 188", quote.Breakdown.ExpressSurcharge)
	}
}

func TestQuote_FreeThresholdBeatsModifiers(t *testing.T) {
	calc := NewFeeCalculator(DefaultConfig())

	// Порог бесплатной доставки обнуляет тариф до применения модификаторов.
	quote := calc.Quote(9000, "Galle", FeeOptions{Express: true, CustomerTier: TierVIP})
	if quote.Fee != 0 || !quote.IsFree {
		t.Fatalf("fee = %d (free=%v), want 0/free", quote.Fee, quote.IsFree)
	}
}

func TestQuote_ExpressTimeSlot(t *testing.T) {
	calc := NewFeeCalculator(DefaultConfig())

	quote := calc.Quote(5000, "Galle", FeeOptions{TimeSlot: TimeSlotExpress})
	if quote.Fee != 750 {
		t.Fatalf("fee = %d, want 750", quote.Fee)
	}
}

func TestQuote_DefaultOptionsMatchFlatRule(t *testing.T) {
	cfg := DefaultConfig()
	calc := NewFeeCalculator(cfg)

	// Плоское правило — специализация зонного калькулятора при опциях по
	// умолчанию: его конфиг должен давать те же ответы для зоны "other".
	for _, subtotal := range []int64{0, 4000, 8999, 9000, 12000} {
		quote := calc.Quote(subtotal, "Unknown City", defaultOpts())

		var flatFee int64
		if subtotal >= cfg.FreeDeliveryThreshold {
			flatFee = 0
		} else {
			flatFee = cfg.DefaultDeliveryFee
		}
		if quote.Fee != flatFee {
			t.Fatalf("subtotal %d: zone calc fee %d != flat rule fee %d", subtotal, quote.Fee, flatFee)
		}
	}
}

func TestRuleDeliveryFee_Calculate(t *testing.T) {
	e := NewEngine(DefaultConfig())

	v, err := e.CalculateRule(RuleDeliveryFee, int64(8000), "Jaffna", FeeOptions{})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	quote, ok := v.(FeeQuote)
	if !ok {
		t.Fatalf("unexpected result type %T", v)
	}
	if quote.Fee != 500 {
		t.Fatalf("fee = %d, want 500", quote.Fee)
	}
}
