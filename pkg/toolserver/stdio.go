package toolserver

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
)

// ServeStdio runs the JSON-RPC loop over newline-delimited messages,
// the MCP stdio transport. It returns when the input stream closes or
// the context is cancelled.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Tool results can carry full search pages; allow large lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := enc.Encode(errorResponse(nil, rpcParseError, err.Error())); err != nil {
				return err
			}
			continue
		}

		resp := s.HandleRequest(ctx, req)
		// Notifications carry no ID and expect no reply.
		if req.ID == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
