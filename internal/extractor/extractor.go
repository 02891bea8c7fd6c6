// Package extractor turns raw product pages into variant price tables and
// selectable option groups, and resolves a user's option choices to a price.
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"price_bot/internal/model"
)

// ErrFormatUnrecognized reports a page whose SKU data is present but not in
// the expected shape. The whole extraction is failed rather than skipping
// records, since a partial price table would corrupt variant resolution.
var ErrFormatUnrecognized = errors.New("page format unrecognized")

// PriceTable maps a variant to its current price. It is rebuilt from scratch
// on every extraction and never persisted as a whole.
type PriceTable map[model.VariantKey]decimal.Decimal

// OptionGroup is one selectable axis of a product, e.g. "Color".
type OptionGroup struct {
	Name    string
	Choices map[string]string // option id -> label
}

// Snapshot is the result of extracting a single product page.
type Snapshot struct {
	Prices  PriceTable
	Options []OptionGroup
}

var skuBlockRe = regexp.MustCompile(`skuProducts=(\[\{.*\}\])`)

type skuRecord struct {
	PropIDs string `json:"skuPropIds"`
	Val     struct {
		ActPrice string `json:"actSkuMultiCurrencyCalPrice"`
		Price    string `json:"skuMultiCurrencyCalPrice"`
	} `json:"skuVal"`
}

// Extract parses the given page content. A page without an embedded SKU block
// yields an empty snapshot and no error: there is simply nothing trackable.
// Every call re-parses the content; freshness is the caller's concern.
func Extract(page string) (*Snapshot, error) {
	prices, err := extractPrices(page)
	if err != nil {
		return nil, err
	}
	options, err := extractOptions(page)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Prices: prices, Options: options}, nil
}

func extractPrices(page string) (PriceTable, error) {
	m := skuBlockRe.FindStringSubmatch(page)
	if m == nil {
		return PriceTable{}, nil
	}

	var records []skuRecord
	if err := json.Unmarshal([]byte(m[1]), &records); err != nil {
		return nil, fmt.Errorf("%w: decode sku block: %v", ErrFormatUnrecognized, err)
	}

	prices := make(PriceTable, len(records))
	for i, rec := range records {
		// Discounted price field first, regular price as fallback.
		raw := rec.Val.ActPrice
		if raw == "" {
			raw = rec.Val.Price
		}
		if raw == "" {
			return nil, fmt.Errorf("%w: sku record %d has no price field", ErrFormatUnrecognized, i)
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: sku record %d price %q: %v", ErrFormatUnrecognized, i, raw, err)
		}
		prices[model.NewVariantKey(strings.Split(rec.PropIDs, ","))] = price
	}
	return prices, nil
}

func extractOptions(page string) ([]OptionGroup, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var groups []OptionGroup
	doc.Find("dl.p-property-item").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSuffix(strings.TrimSpace(sel.Find("dt").First().Text()), ":")
		choices := make(map[string]string)
		sel.Find("li").Each(func(_ int, li *goquery.Selection) {
			a := li.Find("a").First()
			id, ok := a.Attr("data-sku-id")
			if !ok || id == "" {
				return
			}
			label := strings.TrimSpace(li.Find("span").First().Text())
			if label == "" {
				label = strings.TrimSpace(a.AttrOr("title", ""))
			}
			if label == "" {
				// No usable label; skip the entry, keep the group.
				return
			}
			choices[id] = label
		})
		if len(choices) == 0 {
			return
		}
		groups = append(groups, OptionGroup{Name: name, Choices: choices})
	})
	return groups, nil
}
