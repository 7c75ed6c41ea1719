package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "hotel_catalog/internal/adapters/http_server"
	"hotel_catalog/internal/app"
	"hotel_catalog/internal/domain"
	"hotel_catalog/internal/storage/memory"
)

// countingOpener records how many sessions were opened and closed.
type countingOpener struct {
	inner  domain.SessionOpener
	opened atomic.Int32
	closed atomic.Int32
}

func (c *countingOpener) OpenSession(ctx context.Context) (domain.CatalogSession, error) {
	s, err := c.inner.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	c.opened.Add(1)
	return &countedSession{CatalogSession: s, closed: &c.closed}, nil
}

type countedSession struct {
	domain.CatalogSession
	closed *atomic.Int32
}

func (s *countedSession) Close() error {
	s.closed.Add(1)
	return s.CatalogSession.Close()
}

type downOpener struct{}

func (downOpener) OpenSession(context.Context) (domain.CatalogSession, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func newTestServer(t *testing.T) (http.Handler, *countingOpener) {
	t.Helper()
	f, err := os.Open("../../../data/mock_hotels.json")
	require.NoError(t, err)
	defer f.Close()
	hotels, err := app.ParseSeedDocument(f)
	require.NoError(t, err)

	store := memory.New()
	_, err = app.NewBootstrapper(store, nil, 0).Run(context.Background(), hotels)
	require.NoError(t, err)

	opener := &countingOpener{inner: store}
	srv := httpserver.New(5 * time.Second)
	srv.MountHandlers(&httpserver.Handlers{Sessions: opener})
	return srv.Mux(), opener
}

func do(h http.Handler, target string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type hotelBody struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	StarRating *int   `json:"star_rating"`
	RoomTypes  []struct {
		Name      string `json:"name"`
		HotelID   int64  `json:"hotel_id"`
		BasePrice string `json:"base_price"`
	} `json:"room_types"`
}

type listBody struct {
	Items []hotelBody `json:"items"`
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)
	rr := do(h, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestSearchHotels(t *testing.T) {
	h, opener := newTestServer(t)

	rr := do(h, "/v1/hotels")
	require.Equal(t, http.StatusOK, rr.Code)
	var all listBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all.Items, 5)

	rr = do(h, "/v1/hotels?location=metropolis&min_rating=5")
	require.Equal(t, http.StatusOK, rr.Code)
	var some listBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &some))
	require.Len(t, some.Items, 1)
	assert.Equal(t, "Grand Plaza Hotel", some.Items[0].Name)

	rr = do(h, "/v1/hotels?min_rating=five")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	assert.Equal(t, int32(2), opener.opened.Load())
	assert.Equal(t, opener.opened.Load(), opener.closed.Load())
}

func TestLookupHotel(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(h, "/v1/hotels/lookup?name=grand+plaza+hotel")
	require.Equal(t, http.StatusOK, rr.Code)
	var got hotelBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Grand Plaza Hotel", got.Name)
	require.NotNil(t, got.StarRating)
	assert.Equal(t, 5, *got.StarRating)

	assert.Equal(t, http.StatusNotFound, do(h, "/v1/hotels/lookup?name=Grand+Plaza").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, "/v1/hotels/lookup").Code)
}

func TestGetHotelDetails(t *testing.T) {
	h, opener := newTestServer(t)

	rr := do(h, "/v1/hotels/1")
	require.Equal(t, http.StatusOK, rr.Code)
	var got hotelBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Grand Plaza Hotel", got.Name)
	require.Len(t, got.RoomTypes, 2)
	assert.Equal(t, "Deluxe Room", got.RoomTypes[0].Name)
	assert.Equal(t, "250.00", got.RoomTypes[0].BasePrice)
	assert.Equal(t, got.ID, got.RoomTypes[0].HotelID)

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rr = do(h, "/v1/hotels/"+strconv.FormatInt(got.ID, 10), "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, do(h, "/v1/hotels/999").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, "/v1/hotels/abc").Code)
	assert.Equal(t, opener.opened.Load(), opener.closed.Load())
}

func TestStoreUnavailable(t *testing.T) {
	srv := httpserver.New(time.Second)
	srv.MountHandlers(&httpserver.Handlers{Sessions: downOpener{}})

	rr := do(srv.Mux(), "/v1/hotels")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}
