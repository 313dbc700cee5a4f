package table

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/utils"
)

// Fetcher retrieves a DataLink table for an access URL. The network layer
// is a collaborator of the resolution engine, not part of it; callers
// depend on this interface so tests and caches can stand in.
type Fetcher interface {
	FetchDatalinkTable(ctx context.Context, url string) (*TableModel, error)
}

// HTTPFetcher fetches DataLink tables over HTTP. The response body is the
// JSON form of TableModel produced by the table server.
type HTTPFetcher struct {
	client *http.Client
	log    logger.Logger
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, log logger.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (f *HTTPFetcher) FetchDatalinkTable(ctx context.Context, url string) (*TableModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build datalink request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch datalink table: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datalink fetch returned status %d for %s", resp.StatusCode, url)
	}

	var tbl TableModel
	if err := json.NewDecoder(resp.Body).Decode(&tbl); err != nil {
		return nil, fmt.Errorf("failed to parse datalink table: %w", err)
	}
	bindDescriptorSources(&tbl)

	f.log.Debug("datalink table fetched",
		logger.String("url", url),
		logger.Int("rows", tbl.NRows()),
		logger.Duration("duration", time.Since(start)))
	return &tbl, nil
}

// bindDescriptorSources points each descriptor block back at its owning
// table so ref-bound params resolve against the right rows.
func bindDescriptorSources(t *TableModel) {
	for i := range t.Descriptors {
		if t.Descriptors[i].Source == nil {
			t.Descriptors[i].Source = t
		}
	}
}
