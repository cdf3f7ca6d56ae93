// Package digikey implements a client for the DigiKey Product
// Information API v4, including the OAuth2 client-credentials flow.
package digikey

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/integrations"
	"github.com/partstack/partstack/pkg/part"
)

const (
	defaultBaseURL  = "https://api.digikey.com/products/v4"
	defaultTokenURL = "https://api.digikey.com/v1/oauth2/token"

	localeSite     = "US"
	localeLanguage = "en"
	localeCurrency = "USD"

	// Tokens are refreshed this long before their reported expiry so
	// an in-flight request never carries a token about to lapse.
	tokenSafetyMargin = 100 * time.Second

	maxLimit = 50
)

// Client searches DigiKey's catalog. Access tokens are minted lazily
// from the client credentials and shared across concurrent callers.
type Client struct {
	http     *integrations.Client
	log      *log.Logger
	clientID string
	secret   string
	baseURL  string
	tokenURL string

	// The token endpoint takes the raw credentials, so it bypasses
	// the rotating identity pool and uses a plain HTTP client.
	tokenHTTP *nethttp.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// New creates a DigiKey client from OAuth2 client credentials.
func New(http *integrations.Client, logger *log.Logger, clientID, clientSecret string) *Client {
	return &Client{
		http:      http,
		log:       logger,
		clientID:  clientID,
		secret:    clientSecret,
		baseURL:   defaultBaseURL,
		tokenURL:  defaultTokenURL,
		tokenHTTP: &nethttp.Client{Timeout: 15 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ensureToken returns a valid access token, refreshing under the lock
// when the current one is missing or close to expiry. Concurrent
// callers block on the same refresh rather than each minting a token.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiresAt.Add(-tokenSafetyMargin)) {
		return c.token, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.secret},
		"grant_type":    {"client_credentials"},
	}
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.tokenHTTP.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "digikey: token request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "digikey: reading token response")
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", errors.Wrap(errors.ErrCodeAPIError, err, "digikey: malformed token response")
	}
	// Some providers return errors with a 200 status.
	if tok.Error != "" {
		desc := tok.ErrorDescription
		if desc == "" {
			desc = tok.Error
		}
		return "", errors.New(errors.ErrCodeUnauthorized, "digikey: oauth error: %s", desc)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.New(errors.ErrCodeUnauthorized, "digikey: token endpoint returned %d", resp.StatusCode)
	}
	if tok.AccessToken == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "digikey: token response missing access_token")
	}

	expiresIn := tok.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 599
	}
	c.token = tok.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	c.log.Debug("digikey token refreshed", "expires_in", expiresIn)
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) authHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization":             "Bearer " + token,
		"X-DIGIKEY-Client-Id":       c.clientID,
		"X-DIGIKEY-Locale-Site":     localeSite,
		"X-DIGIKEY-Locale-Language": localeLanguage,
		"X-DIGIKEY-Locale-Currency": localeCurrency,
	}
}

// request makes an authenticated call. A 401 invalidates the cached
// token and the call is repeated once with a fresh one; tokens expire
// server-side regardless of what expires_in promised.
func (c *Client) request(ctx context.Context, method, path string, payload, v any) error {
	err := c.attempt(ctx, method, path, payload, v)
	if err != nil && (errors.Is(err, errors.ErrCodeUnauthorized) || errors.Is(err, errors.ErrCodeTokenExpired)) {
		c.invalidateToken()
		err = c.attempt(ctx, method, path, payload, v)
	}
	return err
}

func (c *Client) attempt(ctx context.Context, method, path string, payload, v any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	u := c.baseURL + path
	headers := c.authHeaders(token)
	if method == nethttp.MethodGet {
		return c.http.GetJSON(ctx, u, headers, v)
	}
	return c.http.PostJSON(ctx, u, payload, headers, v)
}

type apiDescription struct {
	ProductDescription  string `json:"ProductDescription"`
	DetailedDescription string `json:"DetailedDescription"`
}

type apiNamed struct {
	Name string `json:"Name"`
}

type apiPricing struct {
	BreakQuantity int     `json:"BreakQuantity"`
	UnitPrice     float64 `json:"UnitPrice"`
}

type apiVariation struct {
	DigiKeyProductNumber string       `json:"DigiKeyProductNumber"`
	MinimumOrderQuantity int          `json:"MinimumOrderQuantity"`
	StandardPricing      []apiPricing `json:"StandardPricing"`
}

type apiParameter struct {
	ParameterText string `json:"ParameterText"`
	ValueText     string `json:"ValueText"`
}

type apiClassifications struct {
	RohsStatus string `json:"RohsStatus"`
}

type apiStatus struct {
	Status string `json:"Status"`
}

type apiProduct struct {
	Description               apiDescription     `json:"Description"`
	Manufacturer              apiNamed           `json:"Manufacturer"`
	ManufacturerProductNumber string             `json:"ManufacturerProductNumber"`
	UnitPrice                 float64            `json:"UnitPrice"`
	ProductURL                string             `json:"ProductUrl"`
	DatasheetURL              string             `json:"DatasheetUrl"`
	ProductVariations         []apiVariation     `json:"ProductVariations"`
	QuantityAvailable         int                `json:"QuantityAvailable"`
	ProductStatus             apiStatus          `json:"ProductStatus"`
	Discontinued              bool               `json:"Discontinued"`
	Parameters                []apiParameter     `json:"Parameters"`
	Category                  apiNamed           `json:"Category"`
	Classifications           apiClassifications `json:"Classifications"`
}

type searchResponse struct {
	Products      []apiProduct `json:"Products"`
	ExactMatches  []apiProduct `json:"ExactMatches"`
	ProductsCount int          `json:"ProductsCount"`
}

type detailsResponse struct {
	Product *apiProduct `json:"Product"`
}

// normalizeProduct flattens a DigiKey Product into the shared shape.
// Pricing comes from the first variation; the product-level UnitPrice
// wins when present.
func normalizeProduct(p *apiProduct) part.NormalizedPart {
	var (
		breaks []part.PriceBreak
		dkPN   string
		minQty = 1
	)
	if len(p.ProductVariations) > 0 {
		first := p.ProductVariations[0]
		dkPN = first.DigiKeyProductNumber
		if first.MinimumOrderQuantity > 0 {
			minQty = first.MinimumOrderQuantity
		}
		for _, sp := range first.StandardPricing {
			breaks = append(breaks, part.PriceBreak{Qty: sp.BreakQuantity, Price: sp.UnitPrice, Currency: localeCurrency})
		}
	}

	var price *float64
	switch {
	case p.UnitPrice > 0:
		v := p.UnitPrice
		price = &v
	case len(breaks) > 0:
		v := breaks[0].Price
		price = &v
	}

	parameters := make(map[string]string)
	for _, param := range p.Parameters {
		if param.ParameterText == "" || param.ValueText == "" {
			continue
		}
		parameters[param.ParameterText] = param.ValueText
	}

	lifecycle := p.ProductStatus.Status
	if lifecycle == "" {
		lifecycle = "Unknown"
	}
	if p.Discontinued {
		lifecycle = "Discontinued"
	}

	return part.NormalizedPart{
		Source:        part.SourceDigiKey,
		PartNumber:    dkPN,
		MfrPartNumber: p.ManufacturerProductNumber,
		Manufacturer:  p.Manufacturer.Name,
		Description:   p.Description.ProductDescription,
		Category:      p.Category.Name,
		Stock:         p.QuantityAvailable,
		Price:         price,
		PriceBreaks:   breaks,
		DatasheetURL:  p.DatasheetURL,
		ProductURL:    p.ProductURL,
		RoHS:          p.Classifications.RohsStatus,
		Lifecycle:     lifecycle,
		Parameters:    parameters,
		MinQty:        minQty,
		Currency:      localeCurrency,
	}
}

// Search runs a keyword search. DigiKey's manufacturer filter wants
// numeric IDs we don't track, so a manufacturer name is appended to the
// keywords instead. Exact matches are listed ahead of keyword results.
func (c *Client) Search(ctx context.Context, keywords, manufacturer string, inStockOnly bool, limit, offset int) (*part.SearchResult, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	if manufacturer != "" {
		keywords = fmt.Sprintf("%s %s", keywords, manufacturer)
	}
	body := map[string]any{
		"Keywords": keywords,
		"Limit":    limit,
		"Offset":   offset,
	}
	if inStockOnly {
		body["FilterOptionsRequest"] = map[string]any{"SearchOptions": []string{"InStock"}}
	}

	var resp searchResponse
	if err := c.request(ctx, nethttp.MethodPost, "/search/keyword", body, &resp); err != nil {
		return nil, err
	}

	parts := make([]part.NormalizedPart, 0, len(resp.ExactMatches)+len(resp.Products))
	for i := range resp.ExactMatches {
		parts = append(parts, normalizeProduct(&resp.ExactMatches[i]))
	}
	for i := range resp.Products {
		parts = append(parts, normalizeProduct(&resp.Products[i]))
	}
	parts = part.DedupeByMPN(parts)
	if len(parts) > limit {
		parts = parts[:limit]
	}

	return &part.SearchResult{
		Parts:   parts,
		Total:   resp.ProductsCount,
		Page:    offset/limit + 1,
		HasMore: offset+limit < resp.ProductsCount,
	}, nil
}

// GetPart looks up a single part by DigiKey or manufacturer part
// number. Results are cached through the shared client cache.
func (c *Client) GetPart(ctx context.Context, productNumber string) (*part.NormalizedPart, error) {
	productNumber = strings.TrimSpace(productNumber)
	if productNumber == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty part number")
	}

	var result part.NormalizedPart
	err := c.http.Cached(ctx, "digikey:"+productNumber, &result, func() error {
		// Path-escape so part numbers with slashes cannot reshape the URL.
		path := fmt.Sprintf("/search/%s/productdetails", url.PathEscape(productNumber))
		var resp detailsResponse
		if err := c.request(ctx, nethttp.MethodGet, path, nil, &resp); err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return errors.New(errors.ErrCodePartNotFound, "part not found: %s", productNumber)
			}
			return err
		}
		if resp.Product == nil {
			return errors.New(errors.ErrCodePartNotFound, "part not found: %s", productNumber)
		}
		result = normalizeProduct(resp.Product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
