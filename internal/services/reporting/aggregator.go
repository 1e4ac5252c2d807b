package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"farmagro-system/internal/database/models"
)

// Filter narrows the bill set before aggregation. DateFrom and DateTo are
// inclusive; DateTo covers the whole calendar day it names. Status "all"
// (or empty) keeps every bill.
type Filter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Status   string
}

type MonthlyRevenue struct {
	Month   string `json:"month"`
	Revenue string `json:"revenue"`
}

type ProductSales struct {
	Name      string `json:"name"`
	TotalSold int64  `json:"total_sold"`
	Revenue   string `json:"revenue"`

	revenue decimal.Decimal
}

type FarmerPurchases struct {
	Name          string `json:"name"`
	PurchaseCount int    `json:"purchase_count"`
}

type Report struct {
	TotalRevenue   string            `json:"total_revenue"`
	BillCount      int               `json:"bill_count"`
	MonthlyRevenue []MonthlyRevenue  `json:"monthly_revenue"`
	TopProducts    []ProductSales    `json:"top_products"`
	TopFarmers     []FarmerPurchases `json:"top_farmers"`
}

const topN = 10

// Aggregate builds a sales report from an in-memory bill set. Revenue
// figures and the product ranking only look at paid bills; the customer
// ranking counts every bill that survives the filter. Monthly buckets and
// ranking ties keep the order in which they were first encountered in the
// input.
func Aggregate(bills []models.Bill, filter Filter) Report {
	filtered := applyFilter(bills, filter)

	totalRevenue := decimal.Zero
	monthOrder := []string{}
	monthTotals := map[string]decimal.Decimal{}
	productOrder := []string{}
	productTotals := map[string]*ProductSales{}
	farmerOrder := []string{}
	farmerCounts := map[string]int{}

	for _, bill := range filtered {
		farmerName := "Unknown"
		if bill.Farmer != nil {
			farmerName = bill.Farmer.Name
		}
		if _, seen := farmerCounts[farmerName]; !seen {
			farmerOrder = append(farmerOrder, farmerName)
		}
		farmerCounts[farmerName]++

		if bill.PaymentStatus != models.PaymentStatusPaid {
			continue
		}

		amount, err := decimal.NewFromString(bill.FinalAmount)
		if err != nil {
			continue
		}
		totalRevenue = totalRevenue.Add(amount)

		month := bill.CreatedAt.Format("Jan 2006")
		if _, seen := monthTotals[month]; !seen {
			monthOrder = append(monthOrder, month)
		}
		monthTotals[month] = monthTotals[month].Add(amount)

		for _, item := range bill.BillItems {
			name := "Unknown"
			if item.Product != nil {
				name = item.Product.Name
			}
			entry, seen := productTotals[name]
			if !seen {
				entry = &ProductSales{Name: name}
				productTotals[name] = entry
				productOrder = append(productOrder, name)
			}
			entry.TotalSold += int64(item.Quantity)
			if lineRevenue, err := decimal.NewFromString(item.TotalPrice); err == nil {
				entry.revenue = entry.revenue.Add(lineRevenue)
			}
		}
	}

	monthly := make([]MonthlyRevenue, 0, len(monthOrder))
	for _, month := range monthOrder {
		monthly = append(monthly, MonthlyRevenue{
			Month:   month,
			Revenue: monthTotals[month].StringFixed(2),
		})
	}

	products := make([]ProductSales, 0, len(productOrder))
	for _, name := range productOrder {
		entry := *productTotals[name]
		entry.Revenue = entry.revenue.StringFixed(2)
		products = append(products, entry)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].revenue.GreaterThan(products[j].revenue)
	})
	if len(products) > topN {
		products = products[:topN]
	}

	farmers := make([]FarmerPurchases, 0, len(farmerOrder))
	for _, name := range farmerOrder {
		farmers = append(farmers, FarmerPurchases{
			Name:          name,
			PurchaseCount: farmerCounts[name],
		})
	}
	sort.SliceStable(farmers, func(i, j int) bool {
		return farmers[i].PurchaseCount > farmers[j].PurchaseCount
	})
	if len(farmers) > topN {
		farmers = farmers[:topN]
	}

	return Report{
		TotalRevenue:   totalRevenue.StringFixed(2),
		BillCount:      len(filtered),
		MonthlyRevenue: monthly,
		TopProducts:    products,
		TopFarmers:     farmers,
	}
}

func applyFilter(bills []models.Bill, filter Filter) []models.Bill {
	out := make([]models.Bill, 0, len(bills))
	for _, bill := range bills {
		if filter.DateFrom != nil && bill.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil {
			endOfDay := time.Date(
				filter.DateTo.Year(), filter.DateTo.Month(), filter.DateTo.Day(),
				23, 59, 59, 999999999, filter.DateTo.Location(),
			)
			if bill.CreatedAt.After(endOfDay) {
				continue
			}
		}
		if !matchesStatus(bill.PaymentStatus, filter.Status) {
			continue
		}
		out = append(out, bill)
	}
	return out
}

// matchesStatus treats "pending" as any open bill, partial included.
func matchesStatus(status models.PaymentStatus, want string) bool {
	switch want {
	case "", "all":
		return true
	case "pending":
		return status == models.PaymentStatusPending || status == models.PaymentStatusPartial
	default:
		return string(status) == want
	}
}
