// Package toolserver exposes the part search pipeline as an MCP tool
// server speaking JSON-RPC 2.0 over stdio or HTTP.
package toolserver

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/partstack/partstack/pkg/catalog"
	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/integrations/digikey"
	"github.com/partstack/partstack/pkg/integrations/easyeda"
	"github.com/partstack/partstack/pkg/integrations/jlcpcb"
	"github.com/partstack/partstack/pkg/integrations/mouser"
)

const serverName = "partstack"

// Backends are the collaborators a Server dispatches tool calls to.
// Nil entries disable the corresponding tools: callers without Mouser
// credentials simply get an unsupported error from search_mouser.
type Backends struct {
	JLCPCB  *jlcpcb.Client
	Mouser  *mouser.Client
	DigiKey *digikey.Client
	EasyEDA *easyeda.Client
	Catalog *catalog.DB
}

// Server owns the tool table and dispatches calls to backends.
type Server struct {
	backends Backends
	log      *log.Logger
	version  string
	tools    []tool
	byName   map[string]tool
}

type toolHandler func(ctx context.Context, args map[string]any) (any, error)

type tool struct {
	def     mcp.Tool
	handler toolHandler
}

// New creates a Server over the given backends.
func New(backends Backends, logger *log.Logger, version string) *Server {
	s := &Server{
		backends: backends,
		log:      logger,
		version:  version,
	}
	s.tools = s.buildTools()
	s.byName = make(map[string]tool, len(s.tools))
	for _, t := range s.tools {
		s.byName[t.def.Name] = t
	}
	return s
}

// Call executes a named tool with the given arguments.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := s.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeToolNotFound, "tool %q not found", name)
	}
	s.log.Debug("tool call", "tool", name)
	return t.handler(ctx, args)
}

// Tools lists the registered tool definitions.
func (s *Server) Tools() []mcp.Tool {
	defs := make([]mcp.Tool, len(s.tools))
	for i, t := range s.tools {
		defs[i] = t.def
	}
	return defs
}
