package seedsource_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"hotel_catalog/internal/adapters/seedsource"
	"hotel_catalog/internal/domain"
)

const doc = `[{"name":"Grand Plaza Hotel","location":"Downtown, Metropolis","star_rating":5,
"room_types":[{"name":"Deluxe Room","max_occupancy":2,"base_price":250.00}]}]`

func newLoader() *seedsource.Loader {
	return seedsource.New(seedsource.WithBackoff(time.Millisecond), seedsource.WithRate(1000))
}

func TestLoad_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(doc))
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hs, err := newLoader().Load(ctx, ts.URL+"/mock_hotels.json")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(hs) != 1 || hs[0].RoomTypes[0].BasePrice.String() != "250.00" {
		t.Fatalf("unexpected payload: %+v", hs)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestLoad_GivesUpAfterMaxAttempts(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newLoader().Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&hits); got != 4 {
		t.Fatalf("expected 4 attempts, got %d", got)
	}
}

func TestLoad_NotFoundAndBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := newLoader().Fetch(context.Background(), ts.URL+"/missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	_, err = newLoader().Fetch(context.Background(), ts.URL+"/forbidden")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want bad status error, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hotels.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	hs, err := newLoader().Load(context.Background(), path)
	if err != nil || len(hs) != 1 || hs[0].Name != "Grand Plaza Hotel" {
		t.Fatalf("Load file: %+v %v", hs, err)
	}

	_, err = newLoader().Load(context.Background(), filepath.Join(dir, "absent.json"))
	if !errors.Is(err, seedsource.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := newLoader().Load(context.Background(), " "); err == nil {
		t.Fatalf("empty source must fail")
	}
}

func TestLoad_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := newLoader().Fetch(ctx, ts.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}
