package btcfolio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/etnz/btcfolio/date"
	"github.com/shopspring/decimal"
)

// LoadPriceFixtures reads closing prices from a JSON object mapping
// "YYYY-MM-DD" to a number. It is used to seed days the price oracle cannot
// serve anymore.
func LoadPriceFixtures(path string) (*date.History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read price fixtures: %w", err)
	}
	var raw map[date.Date]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cannot parse price fixtures %q: %w", path, err)
	}
	h := new(date.History)
	for on, v := range raw {
		if v.IsNegative() {
			return nil, fmt.Errorf("negative price %v on %v in %q", v, on, path)
		}
		h.Append(on, v)
	}
	return h, nil
}
