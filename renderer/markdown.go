package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/etnz/btcfolio/presenter"
	md "github.com/nao1215/markdown"
)

// Markdown renders the portfolio report.
func Markdown(v *presenter.View, s presenter.Sort) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	r := v.Report

	doc.H1(fmt.Sprintf("%s Portfolio on %s", v.Market.Base, r.On))
	if v.Collected.IsZero() {
		doc.PlainText("Never collected.")
	} else {
		doc.PlainText(fmt.Sprintf("Collected at %s, valued at %s (%s).", v.Collected.UTC().Format(time.DateTime), r.Spot, v.SpotSource))
	}
	if len(v.Warnings) > 0 {
		doc.H2("Warnings")
		doc.BulletList(v.Warnings...)
	}

	doc.H2("Summary")
	doc.Table(md.TableSet{
		Header:    []string{"Metric", "Value"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Rows: [][]string{
			{"Balance", fmt.Sprintf("%s %s", r.Balance.Fixed(8), v.Market.Base)},
			{"Holdings Value", r.HoldingsValue.String()},
			{"Gross Invested", r.GrossInvested.String()},
			{"Realized Proceeds", r.RealizedProceeds.String()},
			{"Net Invested", r.NetInvested.String()},
			{"Unrealized P&L", r.UnrealizedPnL.SignedString()},
			{md.Bold("Performance"), md.Bold(r.Performance.SignedString())},
			{"DCA", r.DCA.String()},
			{"Total Bought", r.TotalBought.Fixed(8)},
			{"Total Sold", r.TotalSold.Fixed(8)},
		},
	})

	if r.Excluded > 0 || r.Ignored > 0 {
		doc.PlainText(fmt.Sprintf("%d excluded and %d ignored trades are not part of these figures.", r.Excluded, r.Ignored))
	}

	doc.H2("Transactions")
	rows := v.Rows(s)
	if len(rows) == 0 {
		doc.PlainText("No transactions.")
		return doc.String()
	}
	table := md.TableSet{
		Header:    []string{"Date", "Side", "Amount", "Price", "Value", "Fee"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Time.UTC().Format("2006-01-02 15:04"),
			string(row.Side),
			row.Amount.Fixed(8),
			row.Price.String(),
			row.Value.String(),
			row.Fee.String(),
		})
	}
	doc.Table(table)
	return doc.String()
}
