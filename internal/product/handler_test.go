package product

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type stubSearcher struct {
	products []SearchProduct
	err      error
	queries  []string
	limits   []int
}

func (s *stubSearcher) SearchProducts(_ context.Context, query string, limit int) ([]SearchProduct, error) {
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, limit)
	return s.products, s.err
}

func TestSuggestedProductsRoute(t *testing.T) {
	searcher := &stubSearcher{products: []SearchProduct{{Title: "Soy Candle", Price: 12, URL: "https://shop.example/candle"}}}
	app := fiber.New()
	NewHandler(NewService(searcher)).RegisterPublicRoutes(app)

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/suggested_products"] {
		t.Fatalf("expected route '/suggested_products' to be registered")
	}

	res, err := app.Test(httptest.NewRequest("GET", "/suggested_products?index=0&productName=Candle", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "Soy Candle") || !strings.Contains(string(body), `"productName":"Candle"`) {
		t.Fatalf("unexpected body: %s", body)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "Candle" || searcher.limits[0] != DefaultLimit {
		t.Fatalf("unexpected search calls %v %v", searcher.queries, searcher.limits)
	}
}

func TestSuggestedProducts_MissingName(t *testing.T) {
	searcher := &stubSearcher{}
	app := fiber.New()
	NewHandler(NewService(searcher)).RegisterPublicRoutes(app)

	res, _ := app.Test(httptest.NewRequest("GET", "/suggested_products?index=1", nil))
	if res.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	if len(searcher.queries) != 0 {
		t.Fatalf("no search expected")
	}
}

func TestSuggestedProducts_SearchFailureRendersEmpty(t *testing.T) {
	app := fiber.New()
	NewHandler(NewService(&stubSearcher{err: errors.New("down")})).RegisterPublicRoutes(app)

	res, _ := app.Test(httptest.NewRequest("GET", "/suggested_products?productName=Tea", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"products":[]`) {
		t.Fatalf("expected empty products, got %s", body)
	}
}

func TestServiceSearch_TruncatesAndValidates(t *testing.T) {
	searcher := &stubSearcher{products: items("p", 10)}
	svc := NewService(searcher)

	found, err := svc.Search(context.Background(), "journal", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 6 {
		t.Fatalf("expected at most 6 products, got %d", len(found))
	}

	if _, err := svc.Search(context.Background(), " ", 6); !errors.Is(err, ErrInvalidSearch) {
		t.Fatalf("expected ErrInvalidSearch for blank query, got %v", err)
	}
	if _, err := svc.Search(context.Background(), "journal", 0); !errors.Is(err, ErrInvalidSearch) {
		t.Fatalf("expected ErrInvalidSearch for zero limit, got %v", err)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("invalid searches must not reach the searcher")
	}
}

func TestServiceRefresh_UsesQuery(t *testing.T) {
	searcher := &stubSearcher{products: items("new", 12)}
	svc := NewService(searcher)

	res, err := svc.Refresh(context.Background(), "Diffuser", NewURLSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Products) != 6 || res.Attempts != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if searcher.queries[0] != "Diffuser" || searcher.limits[0] != 12 {
		t.Fatalf("unexpected search call %v %v", searcher.queries, searcher.limits)
	}
}
