package analytics

import (
	"sort"
	"time"

	"github.com/agrofount/backoffice/internal/model"
)

// Financial rollups only ever count orders whose payment completed.
// Pending, cancelled, failed and refunded payments contribute nothing.

const topN = 10

// CustomerStat is one row of the top-customers rollup
type CustomerStat struct {
	Name       string  `json:"name"`
	TotalSpent float64 `json:"totalSpent"`
	Purchases  int     `json:"purchases"`
}

// ProductStat is one row of the top-products rollup
type ProductStat struct {
	Name       string  `json:"name"`
	TotalSales float64 `json:"totalSales"`
	TotalCount int     `json:"totalCount"`
}

// StateStat is one row of the top-states rollup
type StateStat struct {
	State string  `json:"state"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Target is the monthly sales target gauge
type Target struct {
	Target               float64 `json:"target"`
	Achieved             float64 `json:"achieved"`
	PercentageCompletion float64 `json:"percentageCompletion"`
}

// Summary bundles every dashboard rollup for one reporting period
type Summary struct {
	TopCustomers  []CustomerStat `json:"topCustomers"`
	TopProducts   []ProductStat  `json:"topProducts"`
	TopStates     []StateStat    `json:"topStates"`
	StatesTotal   float64        `json:"statesTotal"`
	SalesSeries   [7]float64     `json:"salesSeries"`
	IncomeSeries  [7]float64     `json:"incomeSeries"`
	TotalIncome   float64        `json:"totalIncome"`
	VisitorSeries [7]int         `json:"visitorSeries"`

	// Compact figures the dashboard cards render directly
	StatesTotalDisplay string `json:"statesTotalDisplay"`
	TotalIncomeDisplay string `json:"totalIncomeDisplay"`
}

// BuildSummary computes every rollup in one pass over the inputs
func BuildSummary(orders []model.Order, users []model.User) *Summary {
	s := &Summary{
		TopCustomers: TopCustomers(orders),
		TopProducts:  TopProducts(orders),
	}
	s.TopStates, s.StatesTotal = TopStates(orders)
	s.SalesSeries = SalesSeries(orders)
	s.IncomeSeries, s.TotalIncome = IncomeSeries(orders)
	s.VisitorSeries = VisitorSeries(users)
	s.StatesTotalDisplay = Abbreviate(s.StatesTotal)
	s.TotalIncomeDisplay = Abbreviate(s.TotalIncome)
	return s
}

// TopCustomers groups completed-payment orders by user, accumulating spend
// and purchase count, sorted by spend descending, top 10
func TopCustomers(orders []model.Order) []CustomerStat {
	type bucket struct {
		stat  CustomerStat
		first int
	}
	buckets := map[string]*bucket{}

	for i, order := range orders {
		if order.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		key := "Anonymous"
		name := "Anonymous"
		if order.User != nil {
			key = order.User.Email
			if order.User.Username != "" {
				name = order.User.Username
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{stat: CustomerStat{Name: name}, first: i}
			buckets[key] = b
		}
		b.stat.TotalSpent += order.TotalPrice
		b.stat.Purchases++
	}

	stats := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, b)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].stat.TotalSpent != stats[j].stat.TotalSpent {
			return stats[i].stat.TotalSpent > stats[j].stat.TotalSpent
		}
		return stats[i].first < stats[j].first
	})

	out := make([]CustomerStat, 0, topN)
	for _, b := range stats {
		out = append(out, b.stat)
		if len(out) == topN {
			break
		}
	}
	return out
}

// TopProducts groups completed-payment line items by product name,
// accumulating sales value and unit count, sorted by sales descending
func TopProducts(orders []model.Order) []ProductStat {
	type bucket struct {
		stat  ProductStat
		first int
	}
	buckets := map[string]*bucket{}
	seq := 0

	for _, order := range orders {
		if order.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		for _, item := range order.Items {
			b, ok := buckets[item.ProductName]
			if !ok {
				b = &bucket{stat: ProductStat{Name: item.ProductName}, first: seq}
				buckets[item.ProductName] = b
			}
			seq++
			b.stat.TotalSales += item.Price * float64(item.Quantity)
			b.stat.TotalCount += item.Quantity
		}
	}

	stats := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, b)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].stat.TotalSales != stats[j].stat.TotalSales {
			return stats[i].stat.TotalSales > stats[j].stat.TotalSales
		}
		return stats[i].first < stats[j].first
	})

	out := make([]ProductStat, 0, topN)
	for _, b := range stats {
		out = append(out, b.stat)
		if len(out) == topN {
			break
		}
	}
	return out
}

// TopStates groups completed-payment orders by delivery state, falling
// back to the pickup location, then to "Anonymous". The second return is
// the grand total across all states.
func TopStates(orders []model.Order) ([]StateStat, float64) {
	type bucket struct {
		stat  StateStat
		first int
	}
	buckets := map[string]*bucket{}
	var grandTotal float64

	for i, order := range orders {
		if order.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		state := order.Address.State
		if state == "" {
			state = order.Address.PickupLocation
		}
		if state == "" {
			state = "Anonymous"
		}
		b, ok := buckets[state]
		if !ok {
			b = &bucket{stat: StateStat{State: state}, first: i}
			buckets[state] = b
		}
		b.stat.Total += order.TotalPrice
		b.stat.Count++
		grandTotal += order.TotalPrice
	}

	stats := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, b)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].stat.Total != stats[j].stat.Total {
			return stats[i].stat.Total > stats[j].stat.Total
		}
		return stats[i].first < stats[j].first
	})

	out := make([]StateStat, 0, topN)
	for _, b := range stats {
		out = append(out, b.stat)
		if len(out) == topN {
			break
		}
	}
	return out, grandTotal
}

// dayIndex buckets a timestamp by day of week, 0 = Sunday .. 6 = Saturday
func dayIndex(t time.Time) int {
	return int(t.Weekday())
}

// SalesSeries sums completed-payment order totals into 7 day-of-week
// buckets of createdAt
func SalesSeries(orders []model.Order) [7]float64 {
	var series [7]float64
	for _, order := range orders {
		if order.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		series[dayIndex(order.CreatedAt)] += order.TotalPrice
	}
	return series
}

// IncomeSeries sums per-item platform margin into 7 day-of-week buckets.
// The margin is (platform price − vendor price) × quantity, with the
// vendor price taken from the UOM tier matching the item's unit; an item
// with no matching tier contributes its full platform value.
func IncomeSeries(orders []model.Order) ([7]float64, float64) {
	var series [7]float64
	var total float64

	for _, order := range orders {
		if order.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		day := dayIndex(order.CreatedAt)
		for _, item := range order.Items {
			vendorPrice := 0.0
			if tier, ok := MatchUnit(item.UOM, item.Unit); ok {
				vendorPrice = tier.VendorPrice
			}
			income := (item.Price - vendorPrice) * float64(item.Quantity)
			series[day] += income
			total += income
		}
	}
	return series, total
}

// MatchUnit finds the pricing tier for a unit by unit-name equality
func MatchUnit(uom model.UOMList, unit string) (model.UnitPricing, bool) {
	for _, tier := range uom {
		if tier.Unit == unit {
			return tier, true
		}
	}
	return model.UnitPricing{}, false
}

// MatchPlatformPrice finds the pricing tier whose platform price equals
// the item's recorded price, used for order-detail profit display
func MatchPlatformPrice(uom model.UOMList, price float64) (model.UnitPricing, bool) {
	for _, tier := range uom {
		if tier.PlatformPrice == price {
			return tier, true
		}
	}
	return model.UnitPricing{}, false
}

// VisitorSeries counts user sign-ups into 7 day-of-week buckets
func VisitorSeries(users []model.User) [7]int {
	var series [7]int
	for _, user := range users {
		series[dayIndex(user.CreatedAt)]++
	}
	return series
}

// MonthlyTarget compares completed sales inside now's calendar month
// against the configured target
func MonthlyTarget(orders []model.Order, target float64, now time.Time) Target {
	var achieved float64
	year, month := now.Year(), now.Month()

	for _, order := range orders {
		if order.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		if order.CreatedAt.Year() == year && order.CreatedAt.Month() == month {
			achieved += order.TotalPrice
		}
	}

	t := Target{Target: target, Achieved: achieved}
	if target > 0 {
		t.PercentageCompletion = achieved / target * 100
	}
	return t
}
