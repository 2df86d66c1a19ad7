package api_test

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/sksmith/go-retail-ledger/api"
	"github.com/sksmith/go-retail-ledger/config"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/order"
	"github.com/sksmith/go-retail-ledger/core/stock"
	"github.com/sksmith/go-retail-ledger/core/user"
	"github.com/sksmith/go-retail-ledger/queue"
	"github.com/sksmith/go-retail-ledger/test"
	"github.com/sksmith/go-retail-ledger/testutil"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func TestCorsConfig(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{origin: "https://evilorigin.com", want: ""},
		{origin: "http://evilorigin.com", want: ""},
		{origin: "http://localhost:8080", want: "http://localhost:8080"},
		{origin: "http://localhost:3000", want: "http://localhost:3000"},
		{origin: "https://localhost:8080", want: "https://localhost:8080"},
		{origin: "https://localhost:3000", want: "https://localhost:3000"},
	}

	r := getRouter()
	ts := httptest.NewServer(r)
	defer ts.Close()

	client := http.DefaultClient
	url := ts.URL + "/api/v1/product"

	for _, tt := range tests {
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Add("Origin", tt.origin)
		req.SetBasicAuth("someuser", "somepass")

		res, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}

		got := res.Header.Get("Access-Control-Allow-Origin")
		if got != tt.want {
			t.Errorf("failed cors test got=[%v] want=[%v]", got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	r := getRouter()
	ts := httptest.NewServer(r)
	defer ts.Close()

	res := testutil.Get(ts.URL+"/health", t)
	if res.StatusCode != http.StatusOK {
		t.Errorf("status code got=%d want=%d", res.StatusCode, http.StatusOK)
	}
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	r := getRouter()
	ts := httptest.NewServer(r)
	defer ts.Close()

	res := testutil.Get(ts.URL+"/api/v1/product", t)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("status code got=%d want=%d", res.StatusCode, http.StatusUnauthorized)
	}
}

func TestEnvScrubsSecrets(t *testing.T) {
	cfg := config.LoadDefaults()
	cfg.Db.Pass = "supersecretdbpass"
	cfg.RabbitMQ.Pass = "supersecretqueuepass"

	r := getRouterWithConfig(cfg)
	ts := httptest.NewServer(r)
	defer ts.Close()

	res := testutil.Get(ts.URL+"/env", t)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status code got=%d want=%d", res.StatusCode, http.StatusOK)
	}

	body := readBody(res, t)
	if strings.Contains(body, "supersecretdbpass") || strings.Contains(body, "supersecretqueuepass") {
		t.Error("env response leaked a sensitive value")
	}
}

func getRouter() chi.Router {
	return getRouterWithConfig(config.LoadDefaults())
}

func getRouterWithConfig(cfg *config.Config) chi.Router {
	catalogSvc := catalog.NewMockCatalogService()
	stockSvc := stock.NewMockStockService()
	orderSvc := order.NewMockOrderService()
	userSvc := user.NewMockUserService()
	broker := queue.NewLevelBroker()

	return api.ConfigureRouter(cfg, &catalogSvc, &stockSvc, &orderSvc, broker, &userSvc)
}

func readBody(res *http.Response, t *testing.T) string {
	t.Helper()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}
