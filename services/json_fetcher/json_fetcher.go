package jsonfetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vainnor/vatsim-scraper/types"
)

const DefaultURL = "https://data.vatsim.net/v3/vatsim-data.json"

var ErrMalformedFeed = errors.New("malformed feed")

// Fetcher retrieves the current network snapshot from the data feed.
type Fetcher struct {
	URL    string
	Client *http.Client
}

func New(url string) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		URL: url,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch performs one GET against the feed. Missing pilots or controllers lists
// are reported as ErrMalformedFeed.
func (f *Fetcher) Fetch(ctx context.Context) (*types.VatsimData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching VATSIM data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("error fetching VATSIM data: unexpected status %s", resp.Status)
	}

	var data types.VatsimData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding VATSIM data: %w", err)
	}
	if data.Pilots == nil {
		return nil, fmt.Errorf("%w: missing pilots", ErrMalformedFeed)
	}
	if data.Controllers == nil {
		return nil, fmt.Errorf("%w: missing controllers", ErrMalformedFeed)
	}

	return &data, nil
}
