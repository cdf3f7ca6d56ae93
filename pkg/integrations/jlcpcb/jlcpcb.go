// Package jlcpcb implements the JLCPCB component search API client.
// JLCPCB has no documented API; the endpoints here are the ones the
// parts library web UI calls, which is why requests rotate browser
// identities.
package jlcpcb

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/partstack/partstack/pkg/config"
	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/httputil"
	"github.com/partstack/partstack/pkg/integrations"
	"github.com/partstack/partstack/pkg/part"
	"github.com/partstack/partstack/pkg/query"
)

const defaultSearchURL = "https://jlcpcb.com/api/overseas-pcb-order/v1/shoppingCart/smtGood/selectSmtComponentList"

// Client searches JLCPCB components. The category tree is fetched
// lazily on first use and cached for the life of the client; concurrent
// first calls may fetch redundantly, which is safe because the result
// is identical and overwrites are atomic under the lock.
type Client struct {
	http      *integrations.Client
	log       *log.Logger
	searchURL string

	mu          sync.Mutex
	categories  []part.Category
	categoryMap map[int]*part.Category
	// subcategory id -> (parent category id, subcategory)
	subcategoryMap map[int]subcatRef
}

type subcatRef struct {
	parentID int
	sub      part.Subcategory
}

// New creates a JLCPCB client using the shared HTTP plumbing.
func New(http *integrations.Client, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{http: http, log: logger, searchURL: defaultSearchURL}
}

// SearchRequest carries all supported search filters. Multi-value
// Packages/Manufacturers take precedence over their single-value
// counterparts when non-empty.
type SearchRequest struct {
	Query         string
	CategoryID    int
	SubcategoryID int
	MinStock      *int
	LibraryType   string // basic, extended, preferred, no_fee, all
	Package       string
	Packages      []string
	Manufacturer  string
	Manufacturers []string
	Sort          string // stock_desc or price_asc
	Page          int
	Limit         int
}

// SetCategories seeds the category cache, typically from a startup
// preload shared across clients.
func (c *Client) SetCategories(categories []part.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installCategories(categories)
}

func (c *Client) installCategories(categories []part.Category) {
	c.categories = categories
	c.categoryMap = make(map[int]*part.Category, len(categories))
	c.subcategoryMap = make(map[int]subcatRef)
	for i := range categories {
		cat := &categories[i]
		c.categoryMap[cat.ID] = cat
		for _, sub := range cat.Subcategories {
			c.subcategoryMap[sub.ID] = subcatRef{parentID: cat.ID, sub: sub}
		}
	}
}

func (c *Client) ensureCategories(ctx context.Context) error {
	c.mu.Lock()
	loaded := len(c.categories) > 0
	c.mu.Unlock()
	if loaded {
		return nil
	}

	categories, err := c.FetchCategories(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.installCategories(categories)
	c.mu.Unlock()
	return nil
}

// Categories returns the cached category tree, fetching it on first
// call.
func (c *Client) Categories(ctx context.Context) ([]part.Category, error) {
	if err := c.ensureCategories(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories, nil
}

// Subcategories returns the subcategories of one category from the
// cache.
func (c *Client) Subcategories(ctx context.Context, categoryID int) (*part.Category, error) {
	if err := c.ensureCategories(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cat, ok := c.categoryMap[categoryID]
	if !ok {
		return nil, errors.New(errors.ErrCodeCategoryNotFound, "category %d not found", categoryID)
	}
	return cat, nil
}

type apiEnvelope struct {
	Code    int     `json:"code"`
	Message string  `json:"message"`
	Data    apiData `json:"data"`
}

type apiData struct {
	ComponentPageInfo *apiPageInfo `json:"componentPageInfo"`
	SortAndCountList  []apiSort    `json:"sortAndCountVoList"`
}

type apiPageInfo struct {
	List  []apiComponent `json:"list"`
	Total int            `json:"total"`
}

type apiSort struct {
	ComponentSortKeyID int       `json:"componentSortKeyId"`
	SortName           string    `json:"sortName"`
	ComponentCount     int       `json:"componentCount"`
	ChildSortList      []apiSort `json:"childSortList"`
}

type apiComponent struct {
	ComponentCode            string         `json:"componentCode"`
	ComponentModelEn         string         `json:"componentModelEn"`
	ComponentBrandEn         string         `json:"componentBrandEn"`
	ComponentSpecificationEn string         `json:"componentSpecificationEn"`
	StockCount               int            `json:"stockCount"`
	ComponentLibraryType     string         `json:"componentLibraryType"`
	PreferredComponentFlag   bool           `json:"preferredComponentFlag"`
	FirstSortName            string         `json:"firstSortName"`
	SecondSortName           string         `json:"secondSortName"`
	Describe                 string         `json:"describe"`
	MinPurchaseNum           int            `json:"minPurchaseNum"`
	EncapsulationNumber      int            `json:"encapsulationNumber"`
	DataManualURL            string         `json:"dataManualUrl"`
	LcscGoodsURL             string         `json:"lcscGoodsUrl"`
	ComponentPrices          []apiPrice     `json:"componentPrices"`
	Attributes               []apiAttribute `json:"attributes"`
}

type apiPrice struct {
	StartNumber  int     `json:"startNumber"`
	ProductPrice float64 `json:"productPrice"`
}

type apiAttribute struct {
	NameEn string `json:"attribute_name_en"`
	Value  string `json:"attribute_value_name"`
}

func (c *Client) request(ctx context.Context, params map[string]any) (*apiEnvelope, error) {
	var envelope apiEnvelope
	// Error envelopes arrive inside 200 responses; they fail the
	// attempt and are retried like transport errors.
	err := c.http.PostJSONChecked(ctx, c.searchURL, params, nil, &envelope, func() error {
		if envelope.Code != 200 {
			msg := envelope.Message
			if msg == "" {
				msg = "unknown API error"
			}
			return httputil.Retryable(errors.New(errors.ErrCodeAPIError, "jlcpcb: %s", msg))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}

// buildParams composes the backend filter object from a request. The
// caller must have loaded categories when category or subcategory
// filters are present.
func (c *Client) buildParams(req SearchRequest) map[string]any {
	limit := req.Limit
	if limit < 1 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	params := map[string]any{
		"currentPage":  page,
		"pageSize":     limit,
		"searchSource": "search",
	}

	if req.Query != "" {
		params["keyword"] = req.Query
	}

	c.mu.Lock()
	if req.CategoryID != 0 {
		if cat, ok := c.categoryMap[req.CategoryID]; ok {
			params["firstSortId"] = cat.ID
			params["firstSortName"] = cat.Name
			params["searchType"] = 3
		}
	}
	if req.SubcategoryID != 0 {
		if ref, ok := c.subcategoryMap[req.SubcategoryID]; ok {
			// Subcategory implies its parent category.
			if req.CategoryID == 0 {
				if parent, ok := c.categoryMap[ref.parentID]; ok {
					params["firstSortId"] = parent.ID
					params["firstSortName"] = parent.Name
					params["searchType"] = 3
				}
			}
			params["secondSortId"] = ref.sub.ID
			params["secondSortName"] = ref.sub.Name
		}
	}
	c.mu.Unlock()

	if req.MinStock != nil {
		params["startStockNumber"] = *req.MinStock
	}

	switch req.LibraryType {
	case "basic":
		params["componentLibraryType"] = "base"
	case "extended":
		params["componentLibraryType"] = "expand"
	case "preferred":
		params["preferredComponentFlag"] = true
	}

	if len(req.Packages) > 0 {
		params["componentSpecificationList"] = req.Packages
	} else if req.Package != "" {
		params["componentSpecification"] = req.Package
	}
	if len(req.Manufacturers) > 0 {
		params["componentBrandList"] = req.Manufacturers
	} else if req.Manufacturer != "" {
		params["componentBrand"] = req.Manufacturer
	}

	// Unrecognized sort modes keep the default relevance ordering.
	switch req.Sort {
	case "stock_desc":
		params["sortField"] = "STOCK_SORT"
		params["sortType"] = "DESC"
	case "price_asc":
		params["sortField"] = "PRICE_SORT"
		params["sortType"] = "ASC"
	}

	return params
}

// refineQuery rewrites free text using extracted hints: connector brand
// names collapse to their JST series term, and a recognized model number
// sheds surrounding noise words. Queries without hints pass unchanged.
func refineQuery(logger *log.Logger, q string) string {
	if spec, remaining := query.ExtractConnectorSeries(q); spec != nil {
		term := spec.SearchTerm
		if !strings.Contains(strings.ToLower(remaining), "connector") {
			term += " connector"
		}
		refined := strings.TrimSpace(term + " " + remaining)
		logger.Debug("connector hint", "query", q, "series", spec.Series, "refined", refined)
		return refined
	}
	// Only drop the leftover words when they carry no specifics of
	// their own ("esp32 development board"), never package codes.
	if model, remaining := query.ExtractModelNumber(q); model != "" && remaining != "" &&
		!strings.ContainsAny(remaining, "0123456789") {
		logger.Debug("model hint", "query", q, "model", model)
		return model
	}
	return q
}

// Search runs a component search. A free-text query with no explicit
// category filter is first matched against the category tree; on a hit
// the category filter replaces the keyword entirely, since category
// filtering is more precise than keyword search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*part.SearchResult, error) {
	if req.CategoryID != 0 || req.SubcategoryID != 0 || req.Query != "" {
		if err := c.ensureCategories(ctx); err != nil {
			// Keyword search still works without the tree.
			if req.CategoryID != 0 || req.SubcategoryID != 0 {
				return nil, err
			}
			c.log.Warn("category preload failed, continuing with keyword search", "err", err)
		}
	}

	if req.CategoryID == 0 && req.SubcategoryID == 0 && req.Query != "" {
		req.Query = refineQuery(c.log, req.Query)

		c.mu.Lock()
		categories := c.categories
		c.mu.Unlock()
		if cat := query.MatchCategory(req.Query, categories); cat != nil {
			c.log.Debug("query matched category", "query", req.Query, "category", cat.Name)
			req.CategoryID = cat.ID
			req.Query = ""
		}
	}

	if req.LibraryType == "no_fee" {
		return c.searchNoFee(ctx, req)
	}
	if req.LibraryType == "all" {
		req.LibraryType = ""
	}

	limit := effectiveLimit(req.Limit)
	page := req.Page
	if page < 1 {
		page = 1
	}

	envelope, err := c.request(ctx, c.buildParams(req))
	if err != nil {
		return nil, err
	}

	pageInfo := envelope.Data.ComponentPageInfo
	result := &part.SearchResult{Page: page}
	if pageInfo == nil {
		return result, nil
	}
	for _, item := range pageInfo.List {
		result.Parts = append(result.Parts, transformComponent(&item, false))
	}
	result.Total = pageInfo.Total
	result.HasMore = page*limit < pageInfo.Total
	return result, nil
}

// searchNoFee merges basic and preferred results: two parallel requests
// deduplicated by part code, capped at the requested limit.
func (c *Client) searchNoFee(ctx context.Context, req SearchRequest) (*part.SearchResult, error) {
	limit := effectiveLimit(req.Limit)
	page := req.Page
	if page < 1 {
		page = 1
	}

	basicReq, prefReq := req, req
	basicReq.LibraryType = "basic"
	prefReq.LibraryType = "preferred"

	var (
		wg        sync.WaitGroup
		basicResp *apiEnvelope
		prefResp  *apiEnvelope
		basicErr  error
		prefErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		basicResp, basicErr = c.request(ctx, c.buildParams(basicReq))
	}()
	go func() {
		defer wg.Done()
		prefResp, prefErr = c.request(ctx, c.buildParams(prefReq))
	}()
	wg.Wait()
	if basicErr != nil {
		return nil, basicErr
	}
	if prefErr != nil {
		return nil, prefErr
	}

	seen := make(map[string]struct{})
	var merged []part.NormalizedPart
	for _, envelope := range []*apiEnvelope{basicResp, prefResp} {
		if envelope.Data.ComponentPageInfo == nil {
			continue
		}
		for _, item := range envelope.Data.ComponentPageInfo.List {
			if item.ComponentCode == "" {
				continue
			}
			if _, dup := seen[item.ComponentCode]; dup {
				continue
			}
			seen[item.ComponentCode] = struct{}{}
			merged = append(merged, transformComponent(&item, false))
		}
	}

	result := &part.SearchResult{
		Page:    page,
		Total:   len(merged),
		HasMore: len(merged) > limit,
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	result.Parts = merged
	return result, nil
}

// GetPart fetches full details for an exact part code. Returns
// (nil, nil) when the code is unknown.
func (c *Client) GetPart(ctx context.Context, code string) (*part.NormalizedPart, error) {
	if err := errors.ValidatePartCode(code); err != nil {
		return nil, err
	}

	params := map[string]any{
		"keyword":      code,
		"currentPage":  1,
		"pageSize":     10,
		"searchSource": "search",
	}
	envelope, err := c.request(ctx, params)
	if err != nil {
		return nil, err
	}
	if envelope.Data.ComponentPageInfo == nil {
		return nil, nil
	}
	for _, item := range envelope.Data.ComponentPageInfo.List {
		if item.ComponentCode == code {
			p := transformComponent(&item, true)
			return &p, nil
		}
	}
	return nil, nil
}

// FetchCategories retrieves the live category tree. A searchType 3
// request returns category counts alongside an (ignored) single result.
func (c *Client) FetchCategories(ctx context.Context) ([]part.Category, error) {
	params := map[string]any{
		"currentPage":  1,
		"pageSize":     1,
		"searchSource": "search",
		"searchType":   3,
	}
	envelope, err := c.request(ctx, params)
	if err != nil {
		return nil, err
	}

	var categories []part.Category
	for _, cat := range envelope.Data.SortAndCountList {
		category := part.Category{
			ID:    cat.ComponentSortKeyID,
			Name:  cat.SortName,
			Count: cat.ComponentCount,
		}
		for _, sub := range cat.ChildSortList {
			category.Subcategories = append(category.Subcategories, part.Subcategory{
				ID:    sub.ComponentSortKeyID,
				Name:  sub.SortName,
				Count: sub.ComponentCount,
			})
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// transformComponent maps an API component into the normalized shape.
// Slim results omit pricing tiers, description, and attributes.
func transformComponent(item *apiComponent, full bool) part.NormalizedPart {
	p := part.NormalizedPart{
		Source:        part.SourceJLCPCB,
		PartNumber:    item.ComponentCode,
		MfrPartNumber: item.ComponentModelEn,
		Manufacturer:  item.ComponentBrandEn,
		Stock:         item.StockCount,
		// The API swaps the sort names: firstSortName carries the
		// subcategory and secondSortName the category.
		Category: item.SecondSortName,
		Currency: "USD",
	}

	if len(item.ComponentPrices) > 0 {
		price := round4(item.ComponentPrices[0].ProductPrice)
		p.Price = &price
	}

	p.Parameters = map[string]string{
		"package":      item.ComponentSpecificationEn,
		"library_type": libraryTypeName(item),
	}

	if full {
		p.Description = item.Describe
		p.MinQty = item.MinPurchaseNum
		p.DatasheetURL = item.DataManualURL
		p.ProductURL = item.LcscGoodsURL
		if item.FirstSortName != "" {
			p.Parameters["subcategory"] = item.FirstSortName
		}
		if item.EncapsulationNumber > 0 {
			p.Parameters["reel_qty"] = fmt.Sprintf("%d", item.EncapsulationNumber)
		}
		for _, tier := range item.ComponentPrices {
			p.PriceBreaks = append(p.PriceBreaks, part.PriceBreak{
				Qty:      tier.StartNumber,
				Price:    round4(tier.ProductPrice),
				Currency: "USD",
			})
		}
		for _, attr := range item.Attributes {
			if attr.NameEn == "" {
				continue
			}
			p.Parameters[attr.NameEn] = attr.Value
		}
	}
	return p
}

func libraryTypeName(item *apiComponent) string {
	switch item.ComponentLibraryType {
	case "base":
		return "basic"
	case "expand":
		return "extended"
	default:
		return item.ComponentLibraryType
	}
}

func effectiveLimit(limit int) int {
	if limit < 1 {
		return config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		return config.MaxPageSize
	}
	return limit
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
