package order

import (
	"sort"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

// OrderStats — сводка по стандартным заказам.
type OrderStats struct {
	Total      int
	ByStatus   map[domain.OrderStatus]int
	Revenue    int64
	AverageLKR int64
}

// CustomerHistory — история покупок одного клиента.
type CustomerHistory struct {
	Email      string
	Orders     []domain.Order
	OrderCount int
	TotalSpent int64
}

// ProductSales — позиция отчёта о продажах.
type ProductSales struct {
	ProductID string
	Name      string
	SoldCount int64
}

// BusinessInsights — операционная сводка для персонала.
type BusinessInsights struct {
	TopProducts         []ProductSales
	LowStockProducts    []domain.Product
	PendingCustomOrders int
}

// Stats агрегирует заказы по статусам. Выручка считается по доставленным
// заказам; отменённые не учитываются в среднем чеке.
func (s *Service) Stats() (OrderStats, error) {
	orders, err := s.orders.List(0)
	if err != nil {
		return OrderStats{}, err
	}

	stats := OrderStats{
		Total:    len(orders),
		ByStatus: make(map[domain.OrderStatus]int),
	}
	var countedOrders int
	var countedTotal int64
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		if o.Status == domain.OrderStatusDelivered {
			stats.Revenue += o.Pricing.Total
		}
		if o.Status != domain.OrderStatusCancelled {
			countedOrders++
			countedTotal += o.Pricing.Total
		}
	}
	if countedOrders > 0 {
		stats.AverageLKR = countedTotal / int64(countedOrders)
	}
	return stats, nil
}

// History возвращает заказы клиента и суммарные траты (без отменённых).
func (s *Service) History(email string, limit int) (CustomerHistory, error) {
	orders, err := s.orders.ListByEmail(email, limit)
	if err != nil {
		return CustomerHistory{}, err
	}

	history := CustomerHistory{
		Email:      email,
		Orders:     orders,
		OrderCount: len(orders),
	}
	for _, o := range orders {
		if o.Status != domain.OrderStatusCancelled {
			history.TotalSpent += o.Pricing.Total
		}
	}
	return history, nil
}

// Insights строит операционную сводку: топ продаж, товары с низким остатком
// и число заявок на индивидуальные заказы в ожидании оценки.
func (s *Service) Insights(topN int) (BusinessInsights, error) {
	products, err := s.products.List(0)
	if err != nil {
		return BusinessInsights{}, err
	}
	customs, err := s.customs.List(0)
	if err != nil {
		return BusinessInsights{}, err
	}

	insights := BusinessInsights{}
	for _, p := range products {
		if p.SoldCount > 0 {
			insights.TopProducts = append(insights.TopProducts, ProductSales{
				ProductID: p.ID,
				Name:      p.Name,
				SoldCount: p.SoldCount,
			})
		}
		if p.Active && !p.OrderOnly && p.StockQuantity <= p.LowStockThreshold {
			insights.LowStockProducts = append(insights.LowStockProducts, p)
		}
	}
	sort.Slice(insights.TopProducts, func(i, j int) bool {
		if insights.TopProducts[i].SoldCount != insights.TopProducts[j].SoldCount {
			return insights.TopProducts[i].SoldCount > insights.TopProducts[j].SoldCount
		}
		return insights.TopProducts[i].Name < insights.TopProducts[j].Name
	})
	if topN > 0 && len(insights.TopProducts) > topN {
		insights.TopProducts = insights.TopProducts[:topN]
	}

	for _, c := range customs {
		if c.Status == domain.CustomOrderStatusPending {
			insights.PendingCustomOrders++
		}
	}
	return insights, nil
}
