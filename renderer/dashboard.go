package renderer

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/presenter"
)

//go:embed templates/*.html
var templates embed.FS

// metric is a dashboard widget.
type metric struct {
	Label string
	Value string
	Class string // up, down or empty
}

type column struct {
	Name  string
	Href  string
	Arrow string
}

type dashboardData struct {
	Title   string
	View    *presenter.View
	Metrics []metric
	Chart   *chart
	Columns []column
	Rows    []presenter.Row
	Report  template.HTML
}

func trend(positive, negative bool) string {
	switch {
	case positive:
		return "up"
	case negative:
		return "down"
	}
	return ""
}

func metrics(v *presenter.View) []metric {
	r := v.Report
	return []metric{
		{Label: "Balance", Value: r.Balance.Fixed(8) + " " + v.Market.Base},
		{Label: "Spot Price", Value: r.Spot.String()},
		{Label: "Holdings Value", Value: r.HoldingsValue.String()},
		{Label: "Net Invested", Value: r.NetInvested.String()},
		{Label: "Unrealized P&L", Value: r.UnrealizedPnL.SignedString(), Class: trend(r.UnrealizedPnL.IsPositive(), r.UnrealizedPnL.IsNegative())},
		{Label: "Performance", Value: r.Performance.SignedString(), Class: trend(r.Performance > 0, r.Performance < 0)},
		{Label: "DCA", Value: r.DCA.String()},
		{Label: "Gross Invested", Value: r.GrossInvested.String()},
		{Label: "Realized Proceeds", Value: r.RealizedProceeds.String()},
	}
}

func columns(s presenter.Sort) []column {
	cols := make([]column, 0, len(presenter.Columns))
	for _, name := range presenter.Columns {
		next := s.Toggle(name)
		q := url.Values{}
		q.Set("sort", next.Column)
		q.Set("order", next.Order())
		c := column{Name: name, Href: "?" + q.Encode()}
		switch {
		case s.Column == name && s.Desc:
			c.Arrow = "▼"
		case s.Column == name:
			c.Arrow = "▲"
		}
		cols = append(cols, c)
	}
	return cols
}

var funcs = template.FuncMap{
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Dashboard writes the HTML dashboard of v with the transactions sorted by s.
func Dashboard(w io.Writer, v *presenter.View, s presenter.Sort) error {
	data := dashboardData{
		Title:   fmt.Sprintf("%s Portfolio", v.Market.Base),
		View:    v,
		Metrics: metrics(v),
		Chart:   newChart(map[string][]btcfolio.Point{"Invested": v.Report.Invested, "Value": v.Report.Value}, "Invested", "Value"),
		Columns: columns(s),
		Rows:    v.Rows(s),
	}
	return renderTemplate(w, "dashboard", "dashboard.html", map[string]string{
		"metrics":      "metrics.html",
		"chart":        "chart.html",
		"transactions": "transactions.html",
	}, data)
}

// ReportPage writes the markdown report converted to a standalone HTML page.
func ReportPage(w io.Writer, v *presenter.View, s presenter.Sort) error {
	body, err := HTML(Markdown(v, s))
	if err != nil {
		return err
	}
	return renderTemplate(w, "report", "report.html", nil, dashboardData{
		Title:  fmt.Sprintf("%s Portfolio Report", v.Market.Base),
		View:   v,
		Report: template.HTML(body),
	})
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(w io.Writer, templateName, mainFile string, partials map[string]string, data any) error {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Errorf("error reading main template %q: %w", mainFile, err)
	}
	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Errorf("error parsing main template %q: %w", mainFile, err)
	}
	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Errorf("error reading partial template %q: %w", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("error parsing partial template %q for %q: %w", file, name, err)
		}
	}
	if err := tmpl.ExecuteTemplate(w, templateName, data); err != nil {
		return fmt.Errorf("error executing template %q: %w", templateName, err)
	}
	return nil
}
