package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cayerbe/gns-core/gnserr"
	"github.com/cayerbe/gns-core/pkg/version"
)

// defaultTimeout matches spec.md §6: "HTTP directory calls: 30 s."
const defaultTimeout = 30 * time.Second

// HTTPClient is the net/http-backed Client implementation. No
// third-party HTTP client library is used here, matching the plain
// net/http calls the corpus itself makes against external HTTP APIs.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds an HTTPClient against baseURL. timeout of zero
// uses defaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ResolveHandle(ctx context.Context, handle string) (*IdentityRecord, error) {
	var rec IdentityRecord
	if err := c.do(ctx, http.MethodGet, "/handles/"+url.PathEscape(handle), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) ResolveIdentity(ctx context.Context, publicKeyHex string) (*IdentityRecord, error) {
	var rec IdentityRecord
	if err := c.do(ctx, http.MethodGet, "/identities/"+url.PathEscape(publicKeyHex), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) CheckAlias(ctx context.Context, handle string) (*AliasAvailability, error) {
	var avail AliasAvailability
	path := "/aliases?check=" + url.QueryEscape(handle)
	if err := c.do(ctx, http.MethodGet, path, nil, &avail); err != nil {
		return nil, err
	}
	return &avail, nil
}

func (c *HTTPClient) ReserveAlias(ctx context.Context, handle string) error {
	return c.do(ctx, http.MethodPost, "/aliases/"+url.PathEscape(handle)+"/reserve", nil, nil)
}

func (c *HTTPClient) ClaimAlias(ctx context.Context, handle string, claim AliasClaim) error {
	return c.do(ctx, http.MethodPut, "/aliases/"+url.PathEscape(handle), claim, nil)
}

func (c *HTTPClient) PublishRecord(ctx context.Context, publicKeyHex string, record IdentityRecord) error {
	return c.do(ctx, http.MethodPut, "/records/"+url.PathEscape(publicKeyHex), record, nil)
}

func (c *HTTPClient) PostBreadcrumb(ctx context.Context, crumb BreadcrumbWire) error {
	return c.do(ctx, http.MethodPost, "/breadcrumbs", crumb, nil)
}

func (c *HTTPClient) ListBreadcrumbs(ctx context.Context, publicKeyHex string) ([]BreadcrumbWire, error) {
	var crumbs []BreadcrumbWire
	if err := c.do(ctx, http.MethodGet, "/breadcrumbs/"+url.PathEscape(publicKeyHex), nil, &crumbs); err != nil {
		return nil, err
	}
	return crumbs, nil
}

func (c *HTTPClient) PostMessage(ctx context.Context, envelope any) error {
	return c.do(ctx, http.MethodPost, "/messages", envelope, nil)
}

func (c *HTTPClient) ListPendingMessages(ctx context.Context, publicKeyHex string) ([]PendingMessageWire, error) {
	var pending []PendingMessageWire
	if err := c.do(ctx, http.MethodGet, "/messages/pending/"+url.PathEscape(publicKeyHex), nil, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// do issues a request against the directory, JSON-encoding body (if
// non-nil) and JSON-decoding the response into out (if non-nil). It
// interprets only the HTTP status code, per spec.md §6.4 ("neither
// interprets error bodies beyond status codes").
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return gnserr.Wrap(gnserr.KindSerializationError, "encode directory request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gnserr.Wrap(gnserr.KindRequestError, "build directory request", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gnserr.Wrap(gnserr.KindConnectionError, "directory request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gnserr.New(gnserr.KindApiError, fmt.Sprintf("directory returned status %d for %s %s", resp.StatusCode, method, path))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return gnserr.Wrap(gnserr.KindParseError, "decode directory response", err)
	}
	return nil
}
