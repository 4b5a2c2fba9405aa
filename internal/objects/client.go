package objects

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/momentum-xyz/media-placer/internal/assets"
	"github.com/momentum-xyz/media-placer/internal/logger"

	"github.com/pkg/errors"
)

const objectsPath = "/objects"

var log = logger.L().With("package", "objects")

// StatusError reports a non-2xx response from the objects API.
type StatusError struct {
	Op         string
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to %s objects: %s", e.Op, e.StatusText)
}

// Store is the persistence side of the objects API.
type Store interface {
	FetchObjects(ctx context.Context, room string) ([]Descriptor, error)
	SaveObject(ctx context.Context, d Descriptor) (*Descriptor, error)
}

var _ Store = (*Client)(nil)

// Client talks JSON to the objects API under a base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, client *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    client,
	}
}

// FetchObjects returns every descriptor stored for room.
func (c *Client) FetchObjects(ctx context.Context, room string) ([]Descriptor, error) {
	u := c.baseURL + objectsPath + "?room=" + url.QueryEscape(room)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to build request")
	}

	var out []Descriptor
	if err := c.do(req, "fetch", &out); err != nil {
		return nil, err
	}
	log.Debugf("fetched %d objects for room %q", len(out), room)
	return out, nil
}

// SaveObject stores d and returns the record as the server keeps it.
func (c *Client) SaveObject(ctx context.Context, d Descriptor) (*Descriptor, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to encode descriptor")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+objectsPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	var out Descriptor
	if err := c.do(req, "save", &out); err != nil {
		return nil, err
	}
	log.Debugf("saved %s object %s in room %q", d.Type, d.UUID, d.Room)
	return &out, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WithMessagef(err, "failed to %s objects", op)
	}
	//noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, StatusText: assets.StatusText(resp)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithMessagef(err, "failed to decode %s response", op)
	}
	return nil
}
