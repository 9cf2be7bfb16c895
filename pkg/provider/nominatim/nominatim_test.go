package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lintang-b-s/Navisafe/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tajResponse = `[
  {
    "place_id": 1234,
    "display_name": "Taj Mahal, Taj East Gate Road, Agra, Uttar Pradesh, 282001, India",
    "name": "Taj Mahal",
    "lat": "27.1751448",
    "lon": "78.0421422",
    "importance": 0.78,
    "address": {"road": "Taj East Gate Road", "city": "Agra", "state": "Uttar Pradesh", "country": "India"},
    "namedetails": {"name": "ताजमहल", "name:en": "Taj Mahal"}
  },
  {
    "place_id": 99,
    "display_name": "broken",
    "lat": "not-a-number",
    "lon": "78.0"
  }
]`

func TestClientSearch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "taj mahal", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(tajResponse))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", 5, 16, time.Second, zap.NewNop())
	require.NoError(t, err)

	places, err := c.Search(context.Background(), "  Taj Mahal ")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "1234", places[0].ID)
	assert.Equal(t, "Taj Mahal", places[0].Name)
	assert.Equal(t, "Agra, Uttar Pradesh", places[0].Address)
	assert.InDelta(t, 27.1751, places[0].GetLat(), 1e-4)

	places[0].Name = "mutated"
	again, err := c.Search(context.Background(), "taj mahal")
	require.NoError(t, err)
	assert.Equal(t, "Taj Mahal", again[0].Name)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientSearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, 5, 16, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "India Gate")
	assert.ErrorIs(t, err, util.ErrBadGateway)

	places, err := c.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestFormatAddress(t *testing.T) {
	testCases := []struct {
		name string
		addr address
		want string
	}{
		{name: "city and state", addr: address{City: "Agra", State: "Uttar Pradesh"}, want: "Agra, Uttar Pradesh"},
		{name: "town fallback", addr: address{Town: "Mysore", State: "Karnataka"}, want: "Mysore, Karnataka"},
		{name: "country only", addr: address{Country: "India"}, want: "India"},
		{name: "empty", addr: address{}, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatAddress(tc.addr))
		})
	}
}
