package presenter

import (
	"encoding/json"
	"time"

	"github.com/etnz/btcfolio"
)

type jsonMetrics struct {
	Balance          btcfolio.Quantity `json:"balance"`
	Spot             btcfolio.Money    `json:"spot"`
	GrossInvested    btcfolio.Money    `json:"gross_invested"`
	RealizedProceeds btcfolio.Money    `json:"realized_proceeds"`
	NetInvested      btcfolio.Money    `json:"net_invested"`
	TotalBought      btcfolio.Quantity `json:"total_bought"`
	TotalSold        btcfolio.Quantity `json:"total_sold"`
	DCA              btcfolio.Money    `json:"dca"`
	HoldingsValue    btcfolio.Money    `json:"holdings_value"`
	UnrealizedPnL    btcfolio.Money    `json:"unrealized_pnl"`
	Performance      float64           `json:"performance_pct"`
	Buys             int               `json:"buys"`
	Sells            int               `json:"sells"`
	Excluded         int               `json:"excluded"`
	Ignored          int               `json:"ignored"`
}

type jsonView struct {
	Generated    time.Time        `json:"generated"`
	Collected    *time.Time       `json:"collected,omitempty"`
	Market       string           `json:"market"`
	SpotSource   string           `json:"spot_source"`
	Warnings     []string         `json:"warnings"`
	Metrics      jsonMetrics      `json:"metrics"`
	Invested     []btcfolio.Point `json:"invested"`
	Value        []btcfolio.Point `json:"value"`
	Transactions []btcfolio.Trade `json:"transactions"`
}

// MarshalJSON encodes the view for API clients.
func (v *View) MarshalJSON() ([]byte, error) {
	r := v.Report
	j := jsonView{
		Generated:  v.Generated.UTC(),
		Market:     v.Market.String(),
		SpotSource: v.SpotSource,
		Warnings:   v.Warnings,
		Metrics: jsonMetrics{
			Balance:          r.Balance,
			Spot:             r.Spot,
			GrossInvested:    r.GrossInvested,
			RealizedProceeds: r.RealizedProceeds,
			NetInvested:      r.NetInvested,
			TotalBought:      r.TotalBought,
			TotalSold:        r.TotalSold,
			DCA:              r.DCA,
			HoldingsValue:    r.HoldingsValue,
			UnrealizedPnL:    r.UnrealizedPnL,
			Performance:      float64(r.Performance),
			Buys:             len(r.Buys),
			Sells:            len(r.Sells),
			Excluded:         r.Excluded,
			Ignored:          r.Ignored,
		},
		Invested:     r.Invested,
		Value:        r.Value,
		Transactions: r.Transactions,
	}
	if !v.Collected.IsZero() {
		c := v.Collected.UTC()
		j.Collected = &c
	}
	if j.Warnings == nil {
		j.Warnings = []string{}
	}
	if j.Transactions == nil {
		j.Transactions = []btcfolio.Trade{}
	}
	return json.Marshal(j)
}
