package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/momentum-xyz/media-placer/internal/logger"

	"github.com/pkg/errors"
)

var log = logger.L()

// StatusError is returned for a non-2xx asset response.
type StatusError struct {
	URL        string
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch asset (%d) %s", e.StatusCode, e.URL)
}

type Options struct {
	// NoStore asks caches along the way not to serve or keep the response.
	NoStore bool
}

// Fetcher downloads whole assets over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher. A zero timeout means none.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

func (f *Fetcher) Fetch(ctx context.Context, url string, opts Options) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to build request")
	}
	if opts.NoStore {
		req.Header.Set("Cache-Control", "no-store")
		req.Header.Set("Pragma", "no-cache")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to fetch %s", url)
	}
	//noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, StatusText: StatusText(resp)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read %s", url)
	}
	log.Debugf("assets: fetched %d bytes from %s", len(data), url)
	return data, nil
}

// StatusText is the reason phrase of resp without the numeric code.
func StatusText(resp *http.Response) string {
	if t := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); t != "" {
		return t
	}
	return http.StatusText(resp.StatusCode)
}
