package extractor

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"price_bot/internal/model"
)

var decEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestExtractPrices(t *testing.T) {
	page := loadFixture(t, "../../testdata/product.html")

	snap, err := Extract(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := PriceTable{
		"14:29,5:100014": decimal.RequireFromString("19.99"),
		"14:29,5:100015": decimal.RequireFromString("21.49"),
		"14:30,5:100014": decimal.RequireFromString("24.99"),
		"14:30,5:100015": decimal.RequireFromString("26.99"),
	}
	if diff := cmp.Diff(want, snap.Prices, decEqual); diff != "" {
		t.Errorf("price table mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractNoVariantProduct(t *testing.T) {
	page := loadFixture(t, "../../testdata/novariant.html")

	snap, err := Extract(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := PriceTable{
		"": decimal.RequireFromString("10.00"),
	}
	if diff := cmp.Diff(want, snap.Prices, decEqual); diff != "" {
		t.Errorf("price table mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Options) != 0 {
		t.Errorf("expected no option groups, got %d", len(snap.Options))
	}
}

func TestExtractNoSKUBlock(t *testing.T) {
	snap, err := Extract("<html><body><p>Just a blog post.</p></body></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Prices) != 0 {
		t.Errorf("expected empty price table, got %d entries", len(snap.Prices))
	}
	if len(snap.Options) != 0 {
		t.Errorf("expected no option groups, got %d", len(snap.Options))
	}
}

func TestExtractFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{
			name: "record with no price fields",
			page: `<html><script>var skuProducts=[{"skuPropIds":"1:1","skuVal":{"availQuantity":5}}];</script></html>`,
		},
		{
			name: "unparsable price value",
			page: `<html><script>var skuProducts=[{"skuPropIds":"1:1","skuVal":{"actSkuMultiCurrencyCalPrice":"US $9.99"}}];</script></html>`,
		},
		{
			name: "sku block is not valid json",
			page: `<html><script>var skuProducts=[{"skuPropIds":}];</script></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.page)
			if !errors.Is(err, ErrFormatUnrecognized) {
				t.Fatalf("expected ErrFormatUnrecognized, got %v", err)
			}
		})
	}
}

func TestExtractOptions(t *testing.T) {
	page := loadFixture(t, "../../testdata/product.html")

	snap, err := Extract(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The empty "Ships From" group is omitted; the label-less 14:31 entry is
	// omitted without invalidating its group; 14:30 uses the title attribute.
	want := []OptionGroup{
		{
			Name: "Color",
			Choices: map[string]string{
				"14:29": "Red",
				"14:30": "Midnight Blue",
			},
		},
		{
			Name: "Size",
			Choices: map[string]string{
				"5:100014": "Standard",
				"5:100015": "Large",
			},
		},
	}
	if diff := cmp.Diff(want, snap.Options); diff != "" {
		t.Errorf("option groups mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	table := PriceTable{
		"14:29,5:100014": decimal.RequireFromString("19.99"),
		"14:30,5:100014": decimal.RequireFromString("24.99"),
	}

	tests := []struct {
		name      string
		prices    PriceTable
		optionIDs []string
		want      string
		wantErr   bool
	}{
		{
			name:      "exact match",
			prices:    table,
			optionIDs: []string{"14:29", "5:100014"},
			want:      "19.99",
		},
		{
			name:      "unsorted input",
			prices:    table,
			optionIDs: []string{"5:100014", "14:30"},
			want:      "24.99",
		},
		{
			name:      "duplicated input ids",
			prices:    table,
			optionIDs: []string{"14:29", "14:29", "5:100014"},
			want:      "19.99",
		},
		{
			name:      "implicit single variant with empty key",
			prices:    PriceTable{"": decimal.RequireFromString("10.00")},
			optionIDs: nil,
			want:      "10.00",
		},
		{
			name:      "implicit single variant regardless of key",
			prices:    PriceTable{"leftover:1": decimal.RequireFromString("7.30")},
			optionIDs: nil,
			want:      "7.30",
		},
		{
			name:      "no match",
			prices:    table,
			optionIDs: []string{"14:31", "5:100014"},
			wantErr:   true,
		},
		{
			name:      "empty ids against multi-entry table",
			prices:    table,
			optionIDs: nil,
			wantErr:   true,
		},
		{
			name:      "partial selection does not match",
			prices:    table,
			optionIDs: []string{"14:29"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.prices, tt.optionIDs)
			if tt.wantErr {
				if !errors.Is(err, ErrVariantNotFound) {
					t.Fatalf("expected ErrVariantNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(decimal.RequireFromString(tt.want), got, decEqual); diff != "" {
				t.Errorf("price mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveRoundTripThroughStoredKey(t *testing.T) {
	table := PriceTable{
		model.NewVariantKey([]string{"red", "L"}): decimal.RequireFromString("9.99"),
	}

	stored := model.NewVariantKey([]string{"L", "red"})
	got, err := Resolve(table, model.ParseVariantKey(string(stored)).OptionIDs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(decimal.RequireFromString("9.99"), got, decEqual); diff != "" {
		t.Errorf("price mismatch (-want +got):\n%s", diff)
	}
}
