// Package pkg provides the core libraries for the partstack component search service.
//
// # Overview
//
// Partstack aggregates electronic component search across distributor APIs
// and a local parts catalog, exposing everything as MCP tool calls. The pkg
// directory is organized into four main areas:
//
//  1. [part] / [query] - Domain types and part-number normalization
//  2. [integrations] - Distributor API clients (JLCPCB, Mouser, DigiKey, EasyEDA)
//  3. [catalog] / [pinout] - Local SQLite catalog and EasyEDA symbol parsing
//  4. [toolserver] - JSON-RPC tool dispatch over stdio and HTTP
//
// # Architecture
//
// The typical data flow for a tool call:
//
//	MCP client (stdio or POST /mcp)
//	         ↓
//	    [toolserver] package (JSON-RPC dispatch, schemas, rate limiting)
//	         ↓
//	    [integrations] package (cached, retried HTTP to distributor APIs)
//	      or [catalog] package (local SQLite lookup)
//	         ↓
//	    [part] package (normalized result types)
//
// # Quick Start
//
// Search JLCPCB and normalize the results:
//
//	import (
//	    "context"
//	    "github.com/partstack/partstack/pkg/integrations"
//	    "github.com/partstack/partstack/pkg/integrations/jlcpcb"
//	)
//
//	http := integrations.NewClient(integrations.Options{})
//	defer http.Close()
//
//	client := jlcpcb.New(http, nil)
//	result, _ := client.Search(context.Background(), jlcpcb.SearchRequest{
//	    Query: "STM32F103",
//	    Limit: 20,
//	})
//
// # Main Packages
//
// ## Domain
//
// [part] - Normalized part, category, and pinout types shared by every
// backend. All distributor responses are flattened into [part.NormalizedPart].
//
// [query] - Part-number intelligence: MPN suffix stripping, alias
// resolution, category abbreviation expansion, and connector/model helpers
// used to turn free-text queries into better API requests.
//
// [pinout] - Parser for EasyEDA symbol data, extracting pin numbers, names,
// alternate functions, and a per-type summary.
//
// ## External Integrations
//
// [integrations] - Shared HTTP client with response caching, retry with
// backoff, concurrency limiting, and rotating request identities. The
// subpackages build on it:
//
//   - [integrations/jlcpcb]: JLCPCB parts search, categories, detail lookup
//   - [integrations/mouser]: Mouser keyword and part-number search
//   - [integrations/digikey]: DigiKey v4 search with OAuth client credentials
//   - [integrations/easyeda]: EasyEDA component and pinout fetch
//
// ## Local Catalog
//
// [catalog] - SQLite catalog built from JLCPCB data dumps with FTS5-backed
// MPN lookup, LCSC code lookup, and batched resolution.
//
// ## Infrastructure
//
// [toolserver] - The MCP tool-call surface: tool table, JSON-RPC handling,
// chi HTTP router with per-IP rate limiting, and newline-delimited stdio
// transport.
//
// [cache] - Response cache backends: memory (LRU), file, Redis, and null.
//
// [httputil] - Retry/backoff, semaphore, and HTTP identity pool primitives
// used by [integrations].
//
// [config] - TOML configuration with .env credential loading.
//
// [errors] - Coded errors shared across packages, mapped to JSON-RPC error
// codes at the tool boundary.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/catalog/...      # Specific package
//
// [part]: https://pkg.go.dev/github.com/partstack/partstack/pkg/part
// [query]: https://pkg.go.dev/github.com/partstack/partstack/pkg/query
// [pinout]: https://pkg.go.dev/github.com/partstack/partstack/pkg/pinout
// [integrations]: https://pkg.go.dev/github.com/partstack/partstack/pkg/integrations
// [integrations/jlcpcb]: https://pkg.go.dev/github.com/partstack/partstack/pkg/integrations/jlcpcb
// [integrations/mouser]: https://pkg.go.dev/github.com/partstack/partstack/pkg/integrations/mouser
// [integrations/digikey]: https://pkg.go.dev/github.com/partstack/partstack/pkg/integrations/digikey
// [integrations/easyeda]: https://pkg.go.dev/github.com/partstack/partstack/pkg/integrations/easyeda
// [catalog]: https://pkg.go.dev/github.com/partstack/partstack/pkg/catalog
// [toolserver]: https://pkg.go.dev/github.com/partstack/partstack/pkg/toolserver
// [cache]: https://pkg.go.dev/github.com/partstack/partstack/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/partstack/partstack/pkg/httputil
// [config]: https://pkg.go.dev/github.com/partstack/partstack/pkg/config
// [errors]: https://pkg.go.dev/github.com/partstack/partstack/pkg/errors
package pkg
