package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fairyhunter13/storefront-cart/internal/catalog"
	"github.com/fairyhunter13/storefront-cart/internal/config"
	httpapi "github.com/fairyhunter13/storefront-cart/internal/http"
	"github.com/fairyhunter13/storefront-cart/internal/money"
	"github.com/fairyhunter13/storefront-cart/internal/obs"
)

func startServer(t *testing.T, phone string) (*httptest.Server, *http.Client) {
	t.Helper()
	cfg := config.Load()
	cfg.StoreName = "SB'Stilo"
	cfg.MessagingBaseURL = "https://wa.me"
	obs.InitLogger()
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	app := httpapi.NewApp(cfg, cat, money.MustFormatter("pt-BR", "BRL"), func() string { return phone })
	srv := httptest.NewServer(httpapi.NewRouter(app))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	cl := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if req.URL.Host != "" && !strings.HasPrefix(srv.URL, "http://"+req.URL.Host) {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return srv, cl
}

type cartResp struct {
	DrawerOpen bool `json:"drawer_open"`
	Cart       struct {
		Badge int    `json:"badge"`
		Empty bool   `json:"empty"`
		Total string `json:"total"`
		Rows  []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"rows"`
	} `json:"cart"`
}

func getCart(t *testing.T, srv *httptest.Server, cl *http.Client) cartResp {
	t.Helper()
	resp, err := cl.Get(srv.URL + "/api/cart")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var c cartResp
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return c
}

func TestIntegration_ShopAndCheckout(t *testing.T) {
	srv, cl := startServer(t, "+55 11 99999-0000")

	resp, err := cl.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	for _, qty := range []string{"2", "1"} {
		resp, err = cl.PostForm(srv.URL+"/cart/add", url.Values{"id": {"camisa-linho"}, "qty": {qty}})
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected page after redirect, got %d", resp.StatusCode)
		}
	}

	c := getCart(t, srv, cl)
	if !c.DrawerOpen || c.Cart.Badge != 3 || len(c.Cart.Rows) != 1 {
		t.Fatalf("unexpected cart %+v", c)
	}
	if !strings.HasSuffix(c.Cart.Total, "89,70") {
		t.Fatalf("unexpected total %q", c.Cart.Total)
	}

	resp, err = cl.PostForm(srv.URL+"/checkout", url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 handoff, got %d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Host != "wa.me" || loc.Path != "/5511999990000" {
		t.Fatalf("unexpected handoff %s", loc)
	}
	text := loc.Query().Get("text")
	for _, want := range []string{"*Novo pedido - SB'Stilo*", "Camisa (3x)", "Total:", "Nome:", "Endereço:", "Forma de pagamento:"} {
		if !strings.Contains(text, want) {
			t.Fatalf("message missing %q: %q", want, text)
		}
	}

	if c := getCart(t, srv, cl); c.Cart.Badge != 3 {
		t.Fatalf("checkout must not clear the cart, got badge %d", c.Cart.Badge)
	}
}

func TestIntegration_CheckoutWithoutContact(t *testing.T) {
	srv, cl := startServer(t, "")
	resp, err := cl.PostForm(srv.URL+"/cart/add", url.Values{"id": {"bone"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = cl.PostForm(srv.URL+"/checkout", url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(buf.String(), "WHATSAPP_NUMBER") {
		t.Fatalf("expected page with configuration notice, got %d", resp.StatusCode)
	}
	if c := getCart(t, srv, cl); c.Cart.Badge != 1 {
		t.Fatalf("cart changed by failed checkout")
	}
}

func TestIntegration_HealthAndMetrics(t *testing.T) {
	srv, cl := startServer(t, "")
	for _, p := range []string{"/healthz", "/metrics", "/debug/vars", "/openapi.yaml", "/docs"} {
		resp, err := cl.Get(srv.URL + p)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", p, resp.StatusCode)
		}
	}
}
