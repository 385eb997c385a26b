package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase passthrough", "clicks", "clicks"},
		{"uppercase", "Impressions", "impressions"},
		{"spaces", "Vendor Name", "vendor_name"},
		{"parens", "Category Name (L2)", "category_name_l2"},
		{"punctuation runs", "Total  Ad--Spend!!", "total_ad_spend"},
		{"leading and trailing junk", "  (CTR)  ", "ctr"},
		{"digits kept", "Top 3 Position", "top_3_position"},
		{"accented letters kept", "Café Spend", "café_spend"},
		{"cjk letters kept", "売上 (Revenue)", "売上_revenue"},
		{"empty", "", ""},
		{"only junk", "---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}
