package etl

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/BartekS5/ingest/pkg/logger"
)

const (
	// DefaultBlockSize is the read size of streamed downloads.
	DefaultBlockSize = 1024 * 1024
	// DefaultFetchTimeout bounds a whole request, body included.
	DefaultFetchTimeout = 120 * time.Second

	errorBodyLimit = 1024
)

// FetcherOptions configures the HTTP client used for downloads.
type FetcherOptions struct {
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification. It must be
	// requested explicitly and is logged as a warning.
	InsecureSkipVerify bool
	UserAgent          string
	BlockSize          int
}

// Fetcher retrieves remote files over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	blockSize int
}

// NewFetcher builds a Fetcher. The transport is a clone of the default one.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for downloads (--insecure)")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout, Transport: transport},
		userAgent: opts.UserAgent,
		blockSize: opts.BlockSize,
	}
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// Fetch returns the whole response body held in memory.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	logger.Debugf("Fetched %d bytes from %s", len(data), url)
	return data, nil
}

// Download streams the response body into path block by block, creating
// parent directories and truncating an existing file. A failed download
// leaves no file behind.
func (f *Fetcher) Download(ctx context.Context, url, path string) (int64, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	written, err := f.copyBlocks(out, resp.Body)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close file: %w", closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warnf("Could not remove partial download %s: %v", path, rmErr)
		}
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.URL = url
		}
		return 0, err
	}

	logger.Debugf("Downloaded %d bytes from %s to %s", written, url, path)
	return written, nil
}

func (f *Fetcher) copyBlocks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, f.blockSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("write file: %w", err)
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, &FetchError{Err: fmt.Errorf("read body: %w", readErr)}
		}
	}
}
