// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package luci provides a client for the LUCI config service validation API:
// https://luci-config.appspot.com/
package luci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	DefaultEndpoint = "https://luci-config.appspot.com/_ah/api/config/v1/validate-config"
	scope           = "https://www.googleapis.com/auth/userinfo.email"
)

// Message severities as reported by the service.
const (
	SeverityDebug    = "DEBUG"
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

type File struct {
	// Path is relative to the config set root.
	Path string `json:"path"`
	// Content is sent base64-encoded.
	Content []byte `json:"content"`
}

type Message struct {
	Path     string `json:"path"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewClient returns a client authenticated with the application default credentials.
func NewClient(ctx context.Context) (*Client, error) {
	ts, err := google.DefaultTokenSource(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("luci: failed to get token source: %w", err)
	}
	return &Client{
		Endpoint:   DefaultEndpoint,
		HTTPClient: oauth2.NewClient(ctx, ts),
	}, nil
}

// Validate asks the service to validate files as if they were committed to configSet.
func (c *Client) Validate(ctx context.Context, configSet string, files []File) ([]Message, error) {
	req := struct {
		ConfigSet string `json:"config_set"`
		Files     []File `json:"files"`
	}{configSet, files}
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("luci: failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint, bytes.NewReader(reqData))
	if err != nil {
		return nil, fmt.Errorf("luci: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("luci: failed to call %v: %w", c.Endpoint, err)
	}
	defer httpResp.Body.Close()
	body, err := io.ReadAll(httpResp.Body)
	if err != nil || httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("luci: failed to call %v: %v %v err:%w: %s",
			c.Endpoint, httpResp.StatusCode, http.StatusText(httpResp.StatusCode), err, body)
	}
	// Responses may start with ")]}'" for XSSI protection; trim it.
	const xssiPrefix = ")]}'\n"
	body = bytes.TrimPrefix(body, []byte(xssiPrefix))
	resp := new(struct {
		Messages []Message `json:"messages"`
	})
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("luci: failed to unmarshal response: %w\n%s", err, body)
	}
	return resp.Messages, nil
}
