package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-cart/internal/cart"
	"github.com/fairyhunter13/storefront-cart/internal/model"
	"github.com/fairyhunter13/storefront-cart/internal/money"
)

var brl = money.MustFormatter("pt-BR", "BRL")

func contact(s string) ContactSource { return func() string { return s } }

type recordingOpener struct{ urls []string }

func (r *recordingOpener) Open(u string) { r.urls = append(r.urls, u) }

func camisaCart() *cart.Store {
	s := cart.New()
	s.AddLine(&model.Product{ID: "camisa", Name: "Camisa", Price: decimal.RequireFromString("29.90")}, 3)
	return s
}

func TestComposeOrderMessageEmptyCart(t *testing.T) {
	c := NewComposer("SB'Stilo", "https://wa.me", contact("5511"), brl)
	require.Equal(t, "", c.ComposeOrderMessage(cart.New().Snapshot()))
}

func TestComposeOrderMessageSingleLine(t *testing.T) {
	c := NewComposer("SB'Stilo", "https://wa.me", contact("5511"), brl)
	encoded := c.ComposeOrderMessage(camisaCart().Snapshot())
	require.NotContains(t, encoded, " ")
	require.NotContains(t, encoded, "\n")
	require.NotContains(t, encoded, "&")

	msg, err := url.QueryUnescape(encoded)
	require.NoError(t, err)
	lines := strings.Split(msg, "\n")
	require.Equal(t, "*Novo pedido - SB'Stilo*", lines[0])
	require.Equal(t, "", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "• Camisa (3x) - "), "got %q", lines[2])
	require.True(t, strings.HasSuffix(lines[2], "89,70"), "got %q", lines[2])
	require.Equal(t, "", lines[3])
	require.True(t, strings.HasPrefix(lines[4], "Total: "))
	require.True(t, strings.HasSuffix(lines[4], "89,70"), "got %q", lines[4])
	require.Equal(t, []string{"", "Nome:", "Endereço:", "Forma de pagamento:"}, lines[5:])
}

func TestMessageListsEveryLineInOrder(t *testing.T) {
	s := camisaCart()
	s.AddLine(&model.Product{ID: "bone", Name: "Boné", Price: decimal.RequireFromString("10")}, 1)
	c := NewComposer("Loja", "https://wa.me", contact("1"), brl)
	msg := c.Message(s.Snapshot())
	i := strings.Index(msg, "Camisa (3x)")
	j := strings.Index(msg, "Boné (1x)")
	require.True(t, i >= 0 && j > i)
	require.Contains(t, msg, "99,70")
}

func TestCheckoutMissingContact(t *testing.T) {
	s := camisaCart()
	before := s.Lines()
	op := &recordingOpener{}
	for _, raw := range []string{"", "   ", "+-()"} {
		c := NewComposer("Loja", "https://wa.me", contact(raw), brl)
		_, err := c.Checkout(s.Snapshot(), op)
		require.True(t, errors.Is(err, ErrMissingContact))
	}
	c := NewComposer("Loja", "https://wa.me", nil, brl)
	_, err := c.Checkout(s.Snapshot(), op)
	require.True(t, errors.Is(err, ErrMissingContact))

	require.Empty(t, op.urls)
	require.Equal(t, before, s.Lines())
}

func TestCheckoutEmptyCart(t *testing.T) {
	op := &recordingOpener{}
	c := NewComposer("Loja", "https://wa.me", contact("5511999990000"), brl)
	_, err := c.Checkout(cart.New().Snapshot(), op)
	require.True(t, errors.Is(err, ErrEmptyCart))
	require.Empty(t, op.urls)
}

func TestCheckoutOpensMessagingURL(t *testing.T) {
	op := &recordingOpener{}
	c := NewComposer("Loja", "https://wa.me/", contact("+55 (11) 99999-0000"), brl)
	s := camisaCart()
	h, err := c.Checkout(s.Snapshot(), op)
	require.NoError(t, err)
	require.Equal(t, "5511999990000", h.Contact)
	require.Equal(t, []string{h.URL}, op.urls)

	u, err := url.Parse(h.URL)
	require.NoError(t, err)
	require.Equal(t, "wa.me", u.Host)
	require.Equal(t, "/5511999990000", u.Path)
	require.Equal(t, c.Message(s.Snapshot()), u.Query().Get("text"))
}

func TestCheckoutReadsContactEachTime(t *testing.T) {
	phone := ""
	c := NewComposer("Loja", "https://wa.me", func() string { return phone }, brl)
	op := OpenerFunc(func(string) {})
	_, err := c.Checkout(camisaCart().Snapshot(), op)
	require.True(t, errors.Is(err, ErrMissingContact))

	phone = "123"
	_, err = c.Checkout(camisaCart().Snapshot(), op)
	require.NoError(t, err)
}

func TestDigitsOnly(t *testing.T) {
	require.Equal(t, "5511999990000", DigitsOnly("+55 (11) 99999-0000"))
	require.Equal(t, "", DigitsOnly("abc"))
}

func TestEncodeComponent(t *testing.T) {
	require.Equal(t, "a%20b%2Bc%26d", EncodeComponent("a b+c&d"))
}

func TestReadyAgreesWithCheckout(t *testing.T) {
	cases := []struct {
		name    string
		contact ContactSource
		store   *cart.Store
	}{
		{"ready", contact("5511999990000"), camisaCart()},
		{"no contact", contact(""), camisaCart()},
		{"punctuation only", contact("+-()"), camisaCart()},
		{"nil source", nil, camisaCart()},
		{"empty cart", contact("5511999990000"), cart.New()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewComposer("Loja", "https://wa.me", tc.contact, brl)
			snap := tc.store.Snapshot()
			_, err := c.Checkout(snap, OpenerFunc(func(string) {}))
			require.Equal(t, err == nil, c.Ready(snap))
		})
	}
}
