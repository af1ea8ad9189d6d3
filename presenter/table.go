package presenter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/btcfolio"
)

// Row is a transaction as displayed in the dashboard table.
type Row struct {
	ID     string
	Time   time.Time
	Side   btcfolio.Side
	Amount btcfolio.Quantity
	Price  btcfolio.Money
	Value  btcfolio.Money
	Fee    btcfolio.Money
}

// Columns of the transaction table, in display order.
var Columns = []string{"date", "side", "amount", "price", "value", "fee"}

// Sort is a column and a direction.
type Sort struct {
	Column string
	Desc   bool
}

// DefaultSort shows the most recent transactions first.
var DefaultSort = Sort{Column: "date", Desc: true}

// ParseSort parses the sort and order query parameters. Empty values select
// DefaultSort.
func ParseSort(column, order string) (Sort, error) {
	column = strings.ToLower(strings.TrimSpace(column))
	if column == "" {
		column = DefaultSort.Column
	}
	if !slices.Contains(Columns, column) {
		return DefaultSort, fmt.Errorf("unknown column %q", column)
	}
	s := Sort{Column: column}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "":
		s.Desc = column == DefaultSort.Column
	case "asc":
	case "desc":
		s.Desc = true
	default:
		return DefaultSort, fmt.Errorf("unknown order %q want asc or desc", order)
	}
	return s, nil
}

// Toggle returns the sort selected by clicking column.
func (s Sort) Toggle(column string) Sort {
	if s.Column == column {
		return Sort{Column: column, Desc: !s.Desc}
	}
	return Sort{Column: column}
}

// Order returns "asc" or "desc".
func (s Sort) Order() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Rows returns the transactions sorted by s. Ties keep the most recent first.
func (v *View) Rows(s Sort) []Row {
	rows := make([]Row, 0, len(v.Report.Transactions))
	for _, t := range v.Report.Transactions {
		rows = append(rows, Row{
			ID:     t.ID,
			Time:   t.Timestamp.Time(),
			Side:   t.Side,
			Amount: t.Quantity(),
			Price:  btcfolio.M(t.Price, v.Market.Quote),
			Value:  t.Value(v.Market),
			Fee:    t.FeeValue(v.Market),
		})
	}

	compare := func(a, b Row) int {
		switch s.Column {
		case "side":
			return cmp.Compare(a.Side, b.Side)
		case "amount":
			return a.Amount.Decimal().Cmp(b.Amount.Decimal())
		case "price":
			return a.Price.Decimal().Cmp(b.Price.Decimal())
		case "value":
			return a.Value.Decimal().Cmp(b.Value.Decimal())
		case "fee":
			return a.Fee.Decimal().Cmp(b.Fee.Decimal())
		default:
			return a.Time.Compare(b.Time)
		}
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		if s.Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return rows
}
