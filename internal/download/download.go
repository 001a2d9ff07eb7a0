// Package download fetches a dump file over HTTP, streaming it straight to
// disk.  Downloading happens before an extraction run and is independent of
// it.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Fetch streams the file at url into dest.  If progress is not nil it is
// called after every copied block with the number of bytes written so far
// and the total expected (-1 when the server doesn't say).  The context
// cancels an in-flight download.
func Fetch(ctx context.Context, client *http.Client, url, dest string, progress func(done, total int64)) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	w := &countingWriter{w: f, total: resp.ContentLength, progress: progress}
	if _, err := io.Copy(w, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	return f.Close()
}

// Filename returns the last path segment of url, suitable as a local file
// name for the downloaded dump.
func Filename(url string) string {
	url = strings.TrimSuffix(url, "/")
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}

type countingWriter struct {
	w        io.Writer
	done     int64
	total    int64
	progress func(done, total int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.done += int64(n)
	if c.progress != nil {
		c.progress(c.done, c.total)
	}
	return n, err
}
