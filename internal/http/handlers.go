package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/fairyhunter13/storefront-cart/internal/cart"
	"github.com/fairyhunter13/storefront-cart/internal/catalog"
	"github.com/fairyhunter13/storefront-cart/internal/checkout"
	"github.com/fairyhunter13/storefront-cart/internal/config"
	httpopenapi "github.com/fairyhunter13/storefront-cart/internal/http/openapi"
	"github.com/fairyhunter13/storefront-cart/internal/money"
	"github.com/fairyhunter13/storefront-cart/internal/obs"
	"github.com/fairyhunter13/storefront-cart/internal/session"
	"github.com/fairyhunter13/storefront-cart/internal/view"
)

const (
	noticeMissingContact = "Configure o número do WhatsApp (WHATSAPP_NUMBER)."
	noticeEmptyCart      = view.EmptyCartMessage
)

type App struct {
	Cfg      config.Config
	Catalog  *catalog.Catalog
	Money    *money.Formatter
	Composer *checkout.Composer
	Sessions *session.Registry
	Metrics  *obs.Metrics
	started  time.Time
	now      func() time.Time
}

type cartResp struct {
	Cart       view.CartView `json:"cart"`
	DrawerOpen bool          `json:"drawer_open"`
}

func NewApp(cfg config.Config, cat *catalog.Catalog, f *money.Formatter, contact checkout.ContactSource) *App {
	m := obs.NewMetrics()
	a := &App{
		Cfg:      cfg,
		Catalog:  cat,
		Money:    f,
		Composer: checkout.NewComposer(cfg.StoreName, cfg.MessagingBaseURL, contact, f),
		Metrics:  m,
		started:  time.Now(),
		now:      time.Now,
	}
	a.Sessions = session.NewRegistry(cfg.SessionIdleTimeout, session.Hooks{
		Created: a.sessionCreated,
		Expired: func(*session.Session) { m.ActiveSessions.Dec() },
	})
	return a
}

func (a *App) sessionCreated(s *session.Session) {
	a.Metrics.ActiveSessions.Inc()
	s.Cart.Subscribe(func(c cart.Change) {
		a.Metrics.CartMutations.WithLabelValues(string(c.Op)).Inc()
	})
}

// session resolves the visitor's session from the cookie, issuing a new cookie when needed.
func (a *App) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(a.Cfg.SessionCookie); err == nil {
		id = c.Value
	}
	s, created := a.Sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     a.Cfg.SessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func (a *App) page(s *session.Session) view.Page {
	snap := s.Cart.Snapshot()
	return view.Page{
		StoreName:     a.Cfg.StoreName,
		Grid:          view.Grid(a.Catalog.Products(), s.Steppers, a.Money),
		Cart:          view.Summary(snap, a.Money),
		DrawerOpen:    s.Drawer.IsOpen(),
		Notice:        s.TakeNotice(),
		Year:          a.now().Year(),
		CheckoutReady: a.Composer.Ready(snap),
	}
}

func (a *App) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var p view.Page
	a.session(w, r).Do(func(s *session.Session) { p = a.page(s) })
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, p); err != nil {
		obs.Logger.Error("render_error", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

// postForm checks the method and parses the form; it writes the error response itself.
func postForm(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return false
	}
	if err := r.ParseForm(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return false
	}
	return true
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formDelta reads a stepper button's delta. Buttons only ever move by one unit.
func formDelta(r *http.Request) int {
	d, err := strconv.Atoi(r.PostForm.Get("delta"))
	if err != nil {
		return 0
	}
	return max(-1, min(1, d))
}

func (a *App) openCartHandler(w http.ResponseWriter, r *http.Request) {
	if !postForm(w, r) {
		return
	}
	a.session(w, r).Do(func(s *session.Session) { s.Drawer.Open() })
	backToPage(w, r)
}

func (a *App) closeCartHandler(w http.ResponseWriter, r *http.Request) {
	if !postForm(w, r) {
		return
	}
	a.session(w, r).Do(func(s *session.Session) { s.Drawer.Close() })
	backToPage(w, r)
}

func (a *App) stepHandler(w http.ResponseWriter, r *http.Request) {
	if !postForm(w, r) {
		return
	}
	id := r.PostForm.Get("id")
	if _, ok := a.Catalog.Find(id); !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "unknown product")
		return
	}
	a.session(w, r).Do(func(s *session.Session) {
		if r.PostForm.Has("qty") {
			s.Steppers.Set(id, cart.ParseQuantity(r.PostForm.Get("qty")))
		}
		s.Steppers.Step(id, formDelta(r))
	})
	backToPage(w, r)
}

func (a *App) addHandler(w http.ResponseWriter, r *http.Request) {
	if !postForm(w, r) {
		return
	}
	p, ok := a.Catalog.Find(r.PostForm.Get("id"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "unknown product")
		return
	}
	a.session(w, r).Do(func(s *session.Session) {
		qty := s.Steppers.Value(p.ID)
		if r.PostForm.Has("qty") {
			qty = s.Steppers.Set(p.ID, cart.ParseQuantity(r.PostForm.Get("qty")))
		}
		s.Cart.AddLine(p, qty)
		s.Drawer.Open()
	})
	backToPage(w, r)
}

func (a *App) adjustHandler(w http.ResponseWriter, r *http.Request) {
	if !postForm(w, r) {
		return
	}
	id := r.PostForm.Get("id")
	a.session(w, r).Do(func(s *session.Session) { s.Cart.AdjustQuantity(id, formDelta(r)) })
	backToPage(w, r)
}

func (a *App) removeHandler(w http.ResponseWriter, r *http.Request) {
	if !postForm(w, r) {
		return
	}
	id := r.PostForm.Get("id")
	a.session(w, r).Do(func(s *session.Session) { s.Cart.RemoveLine(id) })
	backToPage(w, r)
}

// checkout runs the handoff for the session. The returned URL is empty on error.
func (a *App) checkout(r *http.Request, s *session.Session) (checkout.Handoff, error) {
	var opened string
	h, err := a.Composer.Checkout(s.Cart.Snapshot(), checkout.OpenerFunc(func(u string) { opened = u }))
	reqID := RequestIDFromContext(r.Context())
	switch {
	case err == nil:
		a.Metrics.Checkouts.WithLabelValues("handoff").Inc()
		obs.Logger.Info("checkout_handoff",
			"request_id", reqID,
			"session_id", s.ID,
			"lines", s.Cart.Len(),
			"total_quantity", s.Cart.TotalQuantity(),
			"url_bytes", len(opened),
		)
	case errors.Is(err, checkout.ErrMissingContact):
		a.Metrics.Checkouts.WithLabelValues("missing_contact").Inc()
		obs.Logger.Warn("checkout_rejected", "request_id", reqID, "session_id", s.ID, "reason", "missing_contact")
	case errors.Is(err, checkout.ErrEmptyCart):
		a.Metrics.Checkouts.WithLabelValues("empty_cart").Inc()
		obs.Logger.Info("checkout_rejected", "request_id", reqID, "session_id", s.ID, "reason", "empty_cart")
	}
	return h, err
}

func (a *App) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	if !postForm(w, r) {
		return
	}
	var (
		h   checkout.Handoff
		err error
	)
	a.session(w, r).Do(func(s *session.Session) {
		h, err = a.checkout(r, s)
		switch {
		case errors.Is(err, checkout.ErrMissingContact):
			s.Notify(noticeMissingContact)
		case errors.Is(err, checkout.ErrEmptyCart):
			s.Notify(noticeEmptyCart)
		}
	})
	if err != nil {
		backToPage(w, r)
		return
	}
	http.Redirect(w, r, h.URL, http.StatusSeeOther)
}

func (a *App) apiCartHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var resp cartResp
	a.session(w, r).Do(func(s *session.Session) {
		resp = cartResp{Cart: view.Summary(s.Cart.Snapshot(), a.Money), DrawerOpen: s.Drawer.IsOpen()}
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *App) apiProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.Catalog.Products())
}

func (a *App) apiCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var (
		h   checkout.Handoff
		err error
	)
	a.session(w, r).Do(func(s *session.Session) { h, err = a.checkout(r, s) })
	switch {
	case errors.Is(err, checkout.ErrMissingContact):
		WriteJSONError(w, http.StatusPreconditionFailed, "missing_contact", "WHATSAPP_NUMBER is not configured")
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		WriteJSONError(w, http.StatusConflict, "empty_cart", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"products":   a.Catalog.Len(),
		"sessions":   a.Sessions.Len(),
		"uptime_sec": time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
