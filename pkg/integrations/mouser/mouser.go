// Package mouser implements the Mouser Search API v2 client.
package mouser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/integrations"
	"github.com/partstack/partstack/pkg/part"
)

const (
	defaultBaseURL = "https://api.mouser.com/api/v2"
	maxRecords     = 50
)

var (
	stockPattern    = regexp.MustCompile(`(?i)(\d[\d,]*)\s+In Stock`)
	nonPricePattern = regexp.MustCompile(`[^\d.]`)
)

// Client searches the Mouser catalog. The API key travels as a query
// parameter, Mouser's design, so HTTP errors are reported without the
// request URL to keep the key out of logs.
type Client struct {
	http    *integrations.Client
	apiKey  string
	baseURL string
}

// New creates a Mouser client.
func New(http *integrations.Client, apiKey string) *Client {
	return &Client{http: http, apiKey: apiKey, baseURL: defaultBaseURL}
}

type apiResponse struct {
	Errors        []apiError     `json:"Errors"`
	SearchResults *searchResults `json:"SearchResults"`
}

type apiError struct {
	Message string `json:"Message"`
}

type searchResults struct {
	NumberOfResult int       `json:"NumberOfResult"`
	Parts          []apiPart `json:"Parts"`
}

type apiPart struct {
	MouserPartNumber       string         `json:"MouserPartNumber"`
	ManufacturerPartNumber string         `json:"ManufacturerPartNumber"`
	Manufacturer           string         `json:"Manufacturer"`
	Description            string         `json:"Description"`
	Category               string         `json:"Category"`
	Availability           string         `json:"Availability"`
	AvailabilityInStock    string         `json:"AvailabilityInStock"`
	DataSheetURL           string         `json:"DataSheetUrl"`
	ProductDetailURL       string         `json:"ProductDetailUrl"`
	ROHSStatus             string         `json:"ROHSStatus"`
	LifecycleStatus        string         `json:"LifecycleStatus"`
	IsDiscontinued         string         `json:"IsDiscontinued"`
	Min                    string         `json:"Min"`
	PriceBreaks            []apiPrice     `json:"PriceBreaks"`
	ProductAttributes      []apiAttribute `json:"ProductAttributes"`
}

type apiPrice struct {
	Quantity int    `json:"Quantity"`
	Price    string `json:"Price"`
	Currency string `json:"Currency"`
}

type apiAttribute struct {
	AttributeName  string `json:"AttributeName"`
	AttributeValue string `json:"AttributeValue"`
}

func (c *Client) post(ctx context.Context, path string, body any) (*apiResponse, error) {
	url := fmt.Sprintf("%s%s?apiKey=%s", c.baseURL, path, c.apiKey)
	var resp apiResponse
	if err := c.http.PostJSON(ctx, url, body, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msg := resp.Errors[0].Message
		if msg == "" {
			msg = "unknown Mouser API error"
		}
		return nil, errors.New(errors.ErrCodeAPIError, "mouser: %s", msg)
	}
	return &resp, nil
}

// Search runs a keyword search, optionally filtered by manufacturer.
// The manufacturer-filtered endpoint is used only when a manufacturer
// is given; it rejects empty manufacturer names.
func (c *Client) Search(ctx context.Context, keyword, manufacturer string, inStockOnly bool, records, page int) (*part.SearchResult, error) {
	if records < 1 {
		records = 20
	}
	if records > maxRecords {
		records = maxRecords
	}
	if page < 1 {
		page = 1
	}

	searchOptions := "None"
	if inStockOnly {
		searchOptions = "InStock"
	}

	var (
		path string
		body map[string]any
	)
	if manufacturer != "" {
		path = "/search/keywordandmanufacturer"
		body = map[string]any{
			"SearchByKeywordMfrNameRequest": map[string]any{
				"keyword":                      keyword,
				"manufacturerName":             manufacturer,
				"records":                      records,
				"pageNumber":                   page,
				"searchOptions":                searchOptions,
				"searchWithYourSignUpLanguage": "false",
			},
		}
	} else {
		path = "/search/keyword"
		body = map[string]any{
			"SearchByKeywordRequest": map[string]any{
				"keyword":                      keyword,
				"records":                      records,
				"pageNumber":                   page,
				"searchOptions":                searchOptions,
				"searchWithYourSignUpLanguage": "false",
			},
		}
	}

	resp, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	result := &part.SearchResult{Page: page}
	if resp.SearchResults == nil {
		return result, nil
	}
	for i := range resp.SearchResults.Parts {
		result.Parts = append(result.Parts, normalizePart(&resp.SearchResults.Parts[i]))
	}
	result.Total = resp.SearchResults.NumberOfResult
	result.HasMore = page*records < result.Total
	return result, nil
}

// GetPart looks up parts by Mouser part number or MPN. Pipe-delimited
// input batches up to 10 numbers in one call; single-number lookups
// are served from the response cache, batches always hit the API.
func (c *Client) GetPart(ctx context.Context, partNumber string) ([]part.NormalizedPart, error) {
	if strings.Contains(partNumber, "|") {
		return c.fetchByPartNumber(ctx, partNumber)
	}
	var parts []part.NormalizedPart
	err := c.http.Cached(ctx, "mouser:"+partNumber, &parts, func() error {
		fetched, err := c.fetchByPartNumber(ctx, partNumber)
		if err != nil {
			return err
		}
		parts = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (c *Client) fetchByPartNumber(ctx context.Context, partNumber string) ([]part.NormalizedPart, error) {
	body := map[string]any{
		"SearchByPartRequest": map[string]any{
			"mouserPartNumber":  partNumber,
			"partSearchOptions": "None",
		},
	}
	resp, err := c.post(ctx, "/search/partnumber", body)
	if err != nil {
		return nil, err
	}
	if resp.SearchResults == nil {
		return nil, nil
	}
	parts := make([]part.NormalizedPart, 0, len(resp.SearchResults.Parts))
	for i := range resp.SearchResults.Parts {
		parts = append(parts, normalizePart(&resp.SearchResults.Parts[i]))
	}
	return parts, nil
}

// normalizePart maps a Mouser Part object into the normalized shape.
func normalizePart(p *apiPart) part.NormalizedPart {
	var breaks []part.PriceBreak
	for _, pb := range p.PriceBreaks {
		price, ok := parsePrice(pb.Price)
		if !ok {
			continue
		}
		currency := pb.Currency
		if currency == "" {
			currency = "USD"
		}
		breaks = append(breaks, part.PriceBreak{Qty: pb.Quantity, Price: price, Currency: currency})
	}

	parameters := make(map[string]string)
	for _, attr := range p.ProductAttributes {
		if attr.AttributeName == "" || attr.AttributeValue == "" {
			continue
		}
		parameters[attr.AttributeName] = attr.AttributeValue
	}

	stock := parseStock(p.Availability)
	// AvailabilityInStock, when present and numeric, is more reliable
	// than the free-text Availability field.
	if p.AvailabilityInStock != "" {
		if n, err := strconv.Atoi(strings.ReplaceAll(p.AvailabilityInStock, ",", "")); err == nil {
			stock = n
		}
	}

	lifecycle := "Active"
	switch {
	case p.LifecycleStatus != "":
		lifecycle = p.LifecycleStatus
	case p.IsDiscontinued == "Yes":
		lifecycle = "Discontinued"
	}

	minQty := 1
	if n, err := strconv.Atoi(p.Min); err == nil && n > 0 {
		minQty = n
	}

	normalized := part.NormalizedPart{
		Source:        part.SourceMouser,
		PartNumber:    p.MouserPartNumber,
		MfrPartNumber: p.ManufacturerPartNumber,
		Manufacturer:  p.Manufacturer,
		Description:   p.Description,
		Category:      p.Category,
		Stock:         stock,
		PriceBreaks:   breaks,
		DatasheetURL:  p.DataSheetURL,
		ProductURL:    p.ProductDetailURL,
		RoHS:          p.ROHSStatus,
		Lifecycle:     lifecycle,
		Parameters:    parameters,
		MinQty:        minQty,
		Currency:      "USD",
	}
	if len(breaks) > 0 {
		price := breaks[0].Price
		normalized.Price = &price
		normalized.Currency = breaks[0].Currency
	}
	return normalized
}

// parseStock extracts the quantity from a free-text availability field
// like "16,563 In Stock".
func parseStock(availability string) int {
	m := stockPattern.FindStringSubmatch(availability)
	if m == nil {
		return 0
	}
	n, ok := integrations.ParseCommaInt(m[1])
	if !ok {
		return 0
	}
	return n
}

// parsePrice strips currency symbols and grouping from price strings
// like "$0.414" or "€0,350". Malformed input yields (0, false).
func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	cleaned := nonPricePattern.ReplaceAllString(s, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
