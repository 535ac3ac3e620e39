package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type httpGetter interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// fetch downloads one URL and streams the body to destination, overwriting
// any partial file from an earlier attempt. Any transport error, non-2xx
// status or write failure counts as an attempt failure.
func (d *Downloader) fetch(ctx context.Context, currentURL, destination string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, currentURL, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	f, err := d.fs.Create(destination)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		return written, err
	}

	return written, nil
}
