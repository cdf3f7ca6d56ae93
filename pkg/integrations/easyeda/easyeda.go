// Package easyeda fetches component symbol payloads from the EasyEDA
// component API, the source of pin geometry for pinout extraction.
package easyeda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/integrations"
	"github.com/partstack/partstack/pkg/part"
	"github.com/partstack/partstack/pkg/pinout"
)

const defaultBaseURL = "https://easyeda.com"

// Client fetches EasyEDA component symbols by UUID.
type Client struct {
	http    *integrations.Client
	baseURL string
}

// New creates an EasyEDA client on the shared HTTP plumbing.
func New(http *integrations.Client) *Client {
	return &Client{http: http, baseURL: defaultBaseURL}
}

type componentResponse struct {
	Success bool             `json:"success"`
	Code    int              `json:"code"`
	Result  *componentResult `json:"result"`
}

type componentResult struct {
	UUID    string          `json:"uuid"`
	Title   string          `json:"title"`
	DataStr json.RawMessage `json:"dataStr"`
}

// GetComponent fetches the raw symbol payload for a component UUID.
// The UUID is validated before any network I/O; an unknown-but-valid
// UUID surfaces as a fetch failure, never a validation failure.
func (c *Client) GetComponent(ctx context.Context, uuid string) (*pinout.ComponentData, error) {
	if err := errors.ValidateComponentUUID(uuid); err != nil {
		return nil, err
	}

	var data pinout.ComponentData
	err := c.http.Cached(ctx, "easyeda:"+uuid, &data, func() error {
		url := fmt.Sprintf("%s/api/components/%s", c.baseURL, uuid)
		var resp componentResponse
		if err := c.http.GetJSON(ctx, url, nil, &resp); err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return errors.New(errors.ErrCodeNotFound, "component not found: %s", uuid)
			}
			return err
		}
		if !resp.Success || resp.Result == nil {
			return errors.New(errors.ErrCodeNotFound, "component not found: %s", uuid)
		}
		data = pinout.ComponentData{DataStr: resp.Result.DataStr}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPinout fetches a component and decodes its pins and interface
// summary. The summary is nil for simple parts.
func (c *Client) GetPinout(ctx context.Context, uuid string) ([]part.Pin, *part.PinoutSummary, error) {
	data, err := c.GetComponent(ctx, uuid)
	if err != nil {
		return nil, nil, err
	}
	pins := pinout.ParsePins(data)
	return pins, pinout.GenerateSummary(pins), nil
}
