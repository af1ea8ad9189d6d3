package presenter

import (
	"context"
	"testing"

	"github.com/etnz/btcfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		column, order string
		want          Sort
		wantErr       bool
	}{
		{"", "", DefaultSort, false},
		{"date", "", Sort{"date", true}, false},
		{"price", "", Sort{"price", false}, false},
		{"Fee", "DESC", Sort{"fee", true}, false},
		{"amount", "asc", Sort{"amount", false}, false},
		{"colour", "", DefaultSort, true},
		{"value", "up", DefaultSort, true},
	}
	for _, tt := range tests {
		got, err := ParseSort(tt.column, tt.order)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSort(%q, %q) error = %v, wantErr %v", tt.column, tt.order, err, tt.wantErr)
		}
		assert.Equal(t, tt.want, got, "ParseSort(%q, %q)", tt.column, tt.order)
	}
}

func TestSort_Toggle(t *testing.T) {
	assert.Equal(t, Sort{"date", false}, DefaultSort.Toggle("date"))
	assert.Equal(t, Sort{"price", false}, DefaultSort.Toggle("price"))
	assert.Equal(t, "desc", DefaultSort.Order())
}

func TestRows(t *testing.T) {
	p := newTestPresenter(&memReader{content: snapshotDoc(t)}, &fakeOracle{spot: "100000"}, nil)
	v := p.View(context.Background())

	rows := v.Rows(DefaultSort)
	require.Len(t, rows, 4)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i-1].Time.After(rows[i].Time), "rows should be most recent first")
	}
	assert.Equal(t, btcfolio.Sell, rows[0].Side)
	assert.True(t, rows[0].Value.Decimal().Equal(dec("5000")))

	byValue := v.Rows(Sort{Column: "value"})
	assert.True(t, byValue[0].Value.Decimal().Equal(dec("0.1")), "smallest value first")
	assert.True(t, byValue[3].Value.Decimal().Equal(dec("8500")))

	bySide := v.Rows(Sort{Column: "side", Desc: true})
	assert.Equal(t, btcfolio.Sell, bySide[0].Side)
}
