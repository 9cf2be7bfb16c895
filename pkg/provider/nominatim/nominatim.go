package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

const userAgent = "navisafe/1.0"

type address struct {
	Road    string `json:"road"`
	Suburb  string `json:"suburb"`
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	County  string `json:"county"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type result struct {
	PlaceID     int64   `json:"place_id"`
	DisplayName string  `json:"display_name"`
	Name        string  `json:"name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Importance  float64 `json:"importance"`
	Address     address `json:"address"`
	NameDetails struct {
		Name     string `json:"name"`
		Official string `json:"official_name"`
		NameEn   string `json:"name:en"`
	} `json:"namedetails"`
}

// Client is a navigation.PlaceSearcher backed by a Nominatim /search endpoint.
// successful answers are cached per normalised query.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
	cache   *lru.Cache[string, []datastructure.Place]
	log     *zap.Logger
}

func NewClient(baseURL string, limit, cacheSize int, timeout time.Duration, log *zap.Logger) (*Client, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, []datastructure.Place](cacheSize)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
	}, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]datastructure.Place, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return []datastructure.Place{}, nil
	}
	if cached, ok := c.cache.Get(key); ok {
		return copyPlaces(cached), nil
	}

	params := url.Values{
		"q":              {key},
		"format":         {"json"},
		"limit":          {strconv.Itoa(c.limit)},
		"addressdetails": {"1"},
		"namedetails":    {"1"},
	}
	apiURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrUnavailable, "error making request to nominatim")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, util.WrapErrorf(nil, util.ErrBadGateway, "nominatim returned status %d", resp.StatusCode)
	}

	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadGateway, "error decoding nominatim response")
	}

	places := make([]datastructure.Place, 0, len(results))
	for _, r := range results {
		p, err := toPlace(r)
		if err != nil {
			c.log.Debug("skipping nominatim result", zap.Int64("place_id", r.PlaceID), zap.Error(err))
			continue
		}
		places = append(places, p)
	}

	c.cache.Add(key, places)
	return copyPlaces(places), nil
}

func toPlace(r result) (datastructure.Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return datastructure.Place{}, fmt.Errorf("error parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return datastructure.Place{}, fmt.Errorf("error parsing longitude: %w", err)
	}

	name := firstNonEmpty(r.NameDetails.NameEn, r.NameDetails.Name, r.NameDetails.Official, r.Name)
	if name == "" {
		name, _, _ = strings.Cut(r.DisplayName, ",")
	}
	return datastructure.NewPlace(strconv.FormatInt(r.PlaceID, 10), strings.TrimSpace(name),
		formatAddress(r.Address), lat, lon), nil
}

// formatAddress renders "City, State" style addresses, e.g. "Agra, Uttar Pradesh".
func formatAddress(a address) string {
	city := firstNonEmpty(a.City, a.Town, a.Village, a.Suburb, a.County)
	parts := make([]string, 0, 2)
	if city != "" {
		parts = append(parts, city)
	}
	if a.State != "" {
		parts = append(parts, a.State)
	}
	if len(parts) == 0 && a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func copyPlaces(places []datastructure.Place) []datastructure.Place {
	out := make([]datastructure.Place, len(places))
	copy(out, places)
	return out
}
