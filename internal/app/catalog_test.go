package app_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"hotel_catalog/internal/app"
	"hotel_catalog/internal/domain"
	"hotel_catalog/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

// ---- fakes ----

type failingReader struct{ err error }

func (f failingReader) ListHotels(context.Context) ([]domain.Hotel, error) { return nil, f.err }
func (f failingReader) FindHotelByName(context.Context, string) (domain.Hotel, error) {
	return domain.Hotel{}, f.err
}
func (f failingReader) SearchHotels(context.Context, domain.HotelFilter) ([]domain.Hotel, error) {
	return nil, f.err
}
func (f failingReader) GetHotelDetails(context.Context, int64) (domain.HotelDetails, error) {
	return domain.HotelDetails{}, f.err
}

// ---- helpers ----

func seededCatalog(t *testing.T) *app.CatalogService {
	t.Helper()
	store := memory.New()
	if _, err := app.NewBootstrapper(store, nil, 0).Run(context.Background(), loadMockHotels(t)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	sess, err := store.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return app.NewCatalogService(sess)
}

func names(hs []domain.Hotel) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Name
	}
	sort.Strings(out)
	return out
}

func equalNames(t *testing.T, got []domain.Hotel, want ...string) {
	t.Helper()
	sort.Strings(want)
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

// ---- tests ----

func TestCatalog_EndToEndScenario(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog(t)

	all, err := c.ListAllHotels(ctx)
	if err != nil || len(all) != 5 {
		t.Fatalf("ListAllHotels: %d %v", len(all), err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("hotels not ordered by id: %v", all)
		}
	}

	got, err := c.SearchHotels(ctx, domain.HotelFilter{Location: ptr("Metropolis")})
	if err != nil {
		t.Fatal(err)
	}
	equalNames(t, got, "Grand Plaza Hotel", "City Center Inn")

	got, err = c.SearchHotels(ctx, domain.HotelFilter{MinRating: ptr(5)})
	if err != nil {
		t.Fatal(err)
	}
	equalNames(t, got, "Grand Plaza Hotel", "Heritage Palace Hotel")

	got, err = c.SearchHotels(ctx, domain.HotelFilter{Location: ptr("Metropolis"), MinRating: ptr(5)})
	if err != nil {
		t.Fatal(err)
	}
	equalNames(t, got, "Grand Plaza Hotel")

	seaside, err := c.FindHotelByName(ctx, "seaside resort & spa")
	if err != nil || seaside == nil {
		t.Fatalf("FindHotelByName: %v %v", seaside, err)
	}
	hd, err := c.GetHotelDetails(ctx, seaside.ID)
	if err != nil || hd == nil {
		t.Fatalf("GetHotelDetails: %v %v", hd, err)
	}
	if len(hd.RoomTypes) == 0 || hd.RoomTypes[0].Name != "Ocean View Room" {
		t.Fatalf("unexpected room types: %+v", hd.RoomTypes)
	}
}

func TestCatalog_GrandPlazaDetails(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog(t)

	h, err := c.FindHotelByName(ctx, "Grand Plaza Hotel")
	if err != nil || h == nil {
		t.Fatalf("FindHotelByName: %v %v", h, err)
	}
	if h.StarRating == nil || *h.StarRating != 5 {
		t.Fatalf("star rating: %v", h.StarRating)
	}
	hd, err := c.GetHotelDetails(ctx, h.ID)
	if err != nil || hd == nil {
		t.Fatalf("GetHotelDetails: %v %v", hd, err)
	}
	if len(hd.RoomTypes) != 2 {
		t.Fatalf("want 2 room types, got %d", len(hd.RoomTypes))
	}
	for _, rt := range hd.RoomTypes {
		if rt.HotelID != h.ID {
			t.Fatalf("room type %d belongs to hotel %d", rt.ID, rt.HotelID)
		}
	}
	first := hd.RoomTypes[0]
	if first.Name != "Deluxe Room" || first.BasePrice.String() != "250.00" {
		t.Fatalf("unexpected first room type: %+v", first)
	}
	if !first.BasePrice.Equal(domain.MustParseMoney("250")) {
		t.Fatalf("price not exact: %s", first.BasePrice)
	}
}

func TestCatalog_NameLookupIsCaseInsensitiveAndExact(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog(t)

	a, _ := c.FindHotelByName(ctx, "grand plaza hotel")
	b, _ := c.FindHotelByName(ctx, "GRAND PLAZA HOTEL")
	if a == nil || b == nil || a.ID != b.ID {
		t.Fatalf("casing changed the result: %v %v", a, b)
	}
	for _, miss := range []string{"Grand Plaza", "Grand Plaza Hotel ", "Nowhere Inn", ""} {
		h, err := c.FindHotelByName(ctx, miss)
		if err != nil || h != nil {
			t.Fatalf("%q: want nil, nil; got %v %v", miss, h, err)
		}
	}
}

func TestCatalog_SearchIsFilteredList(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog(t)
	all, _ := c.ListAllHotels(ctx)

	filters := []domain.HotelFilter{
		{},
		{Location: ptr("")},
		{Location: ptr("METRO")},
		{Location: ptr("bay")},
		{Location: ptr("%")},
		{MinRating: ptr(0)},
		{MinRating: ptr(-3)},
		{MinRating: ptr(4)},
		{MinRating: ptr(6)},
		{Location: ptr("town"), MinRating: ptr(5)},
	}
	for _, f := range filters {
		got, err := c.SearchHotels(ctx, f)
		if err != nil {
			t.Fatalf("%+v: %v", f, err)
		}
		var want []domain.Hotel
		for _, h := range all {
			if f.Matches(h) {
				want = append(want, h)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("%+v: got %v want %v", f, names(got), names(want))
		}
		for i := range got {
			if got[i].ID != want[i].ID {
				t.Fatalf("%+v: order differs: %v vs %v", f, names(got), names(want))
			}
		}
	}
}

func TestCatalog_AbsentAndEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := app.NewCatalogService(store)

	all, err := c.ListAllHotels(ctx)
	if err != nil || all == nil || len(all) != 0 {
		t.Fatalf("empty catalog: %v %v", all, err)
	}
	found, err := c.SearchHotels(ctx, domain.HotelFilter{Location: ptr("x")})
	if err != nil || found == nil || len(found) != 0 {
		t.Fatalf("empty search: %v %v", found, err)
	}
	hd, err := c.GetHotelDetails(ctx, 42)
	if err != nil || hd != nil {
		t.Fatalf("absent details: %v %v", hd, err)
	}
}

func TestCatalog_LowestIDWinsNameTies(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, loc := range []string{"First", "Second"} {
		h, _ := domain.NewHotel("Twin Inn", loc, nil, "", domain.Null(), domain.Null())
		if err := store.InsertHotel(ctx, &h); err != nil {
			t.Fatal(err)
		}
	}
	h, err := app.NewCatalogService(store).FindHotelByName(ctx, "twin inn")
	if err != nil || h == nil || h.Location != "First" {
		t.Fatalf("want the first inserted hotel, got %v %v", h, err)
	}
}

func TestCatalog_StoreErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	c := app.NewCatalogService(failingReader{err: boom})

	if _, err := c.ListAllHotels(ctx); !errors.Is(err, boom) {
		t.Fatalf("ListAllHotels: %v", err)
	}
	if _, err := c.FindHotelByName(ctx, "x"); !errors.Is(err, boom) {
		t.Fatalf("FindHotelByName: %v", err)
	}
	if _, err := c.SearchHotels(ctx, domain.HotelFilter{MinRating: ptr(1)}); !errors.Is(err, boom) {
		t.Fatalf("SearchHotels: %v", err)
	}
	if _, err := c.GetHotelDetails(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("GetHotelDetails: %v", err)
	}
}
