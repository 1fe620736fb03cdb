package webapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Iam-Iftekhar/animerch/config"
	"github.com/Iam-Iftekhar/animerch/internal/cart"
	"github.com/Iam-Iftekhar/animerch/internal/catalog"
	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/internal/identity"
	"github.com/Iam-Iftekhar/animerch/internal/order"
	"github.com/Iam-Iftekhar/animerch/internal/reporting"
	"github.com/Iam-Iftekhar/animerch/internal/webserver"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
	"github.com/Iam-Iftekhar/animerch/pkg/filestore"
)

type webFixture struct {
	db    *gorm.DB
	ws    *webserver.WebServer
	codec *identity.TokenCodec
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := &config.AppConfig{
		System: config.SysConfig{Workdir: t.TempDir()},
		Web: config.WebConfig{
			UploadDir: t.TempDir(),
			Secret:    "test-web-secret",
		},
		Jwt: config.JwtConfig{
			Secret:    "test-jwt-secret",
			Algorithm: "HS256",
			ExpireMin: 30,
		},
	}

	codec := identity.NewTokenCodec(cfg.Jwt)
	identitySvc := identity.NewService(db, codec)
	files, err := filestore.NewStore(cfg.Web.UploadDir, "/static/uploads")
	require.NoError(t, err)

	ws := webserver.New(cfg, identitySvc)
	NewHandler(
		ws,
		identitySvc,
		catalog.NewService(db),
		cart.NewService(db),
		order.NewService(db, nil),
		reporting.NewService(db),
		files,
	).Register()

	return &webFixture{db: db, ws: ws, codec: codec}
}

func (f *webFixture) do(t *testing.T, method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echoContentType, echoFormType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	f.ws.Echo().ServeHTTP(rec, req)
	return rec
}

const (
	echoContentType = "Content-Type"
	echoFormType    = "application/x-www-form-urlencoded"
)

// signup registers and logs in a user, returning the session cookies.
func (f *webFixture) signup(t *testing.T, username, email, role string) []*http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/register", url.Values{
		"username": {username},
		"email":    {email},
		"password": {"secret1"},
		"role":     {role},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/auth/login", url.Values{
		"email":    {email},
		"password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func (f *webFixture) userID(t *testing.T, email string) int64 {
	t.Helper()
	var user domain.User
	require.NoError(t, f.db.Where("email = ?", email).First(&user).Error)
	return user.ID
}

func (f *webFixture) seedProduct(t *testing.T, sellerID int64, title string, price float64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:       common.UUIDint64(),
		SellerID: sellerID,
		Title:    title,
		Price:    price,
		Stock:    5,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func TestCartRequiresLogin(t *testing.T) {
	f := newWebFixture(t)

	rec := f.do(t, http.MethodGet, "/cart", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, webserver.LoginPath, rec.Header().Get("Location"))
}

func TestSessionCookieValidation(t *testing.T) {
	f := newWebFixture(t)
	f.signup(t, "rin", "rin@example.com", "")

	// A token straight from the codec passes the cookie middleware and
	// resolves to the stored user.
	token, err := f.codec.Issue("rin@example.com", domain.RoleBuyer)
	require.NoError(t, err)
	rec := f.do(t, http.MethodGet, "/cart", nil, []*http.Cookie{
		{Name: webserver.AccessTokenCookie, Value: token},
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Garbage is bounced to login, not surfaced as a 401.
	rec = f.do(t, http.MethodGet, "/cart", nil, []*http.Cookie{
		{Name: webserver.AccessTokenCookie, Value: "not-a-token"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, webserver.LoginPath, rec.Header().Get("Location"))

	// A token signed with a different secret is rejected the same way.
	other := identity.NewTokenCodec(config.JwtConfig{Secret: "wrong-secret"})
	forged, err := other.Issue("rin@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/cart", nil, []*http.Cookie{
		{Name: webserver.AccessTokenCookie, Value: forged},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, webserver.LoginPath, rec.Header().Get("Location"))

	// A valid signature whose subject no longer exists clears the session.
	stale, err := f.codec.Issue("ghost@example.com", domain.RoleBuyer)
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/cart", nil, []*http.Cookie{
		{Name: webserver.AccessTokenCookie, Value: stale},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, webserver.LoginPath, rec.Header().Get("Location"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newWebFixture(t)
	f.signup(t, "rin", "rin@example.com", "")

	rec := f.do(t, http.MethodPost, "/auth/login", url.Values{
		"email":    {"rin@example.com"},
		"password": {"wrong1"},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
}

func TestCartFlow(t *testing.T) {
	f := newWebFixture(t)
	cookies := f.signup(t, "rin", "rin@example.com", "")
	p := f.seedProduct(t, 777, "poster", 4.50)

	rec := f.do(t, http.MethodPost, "/cart/add/"+formatID(p.ID), nil, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/cart", rec.Header().Get("Location"))

	rec = f.do(t, http.MethodGet, "/cart", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Items      []domain.CartItem `json:"items"`
			TotalPrice float64           `json:"total_price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Items, 1)
	assert.InDelta(t, 4.50, body.Data.TotalPrice, 0.001)
}

func TestSelfPurchaseRedirectsSilently(t *testing.T) {
	f := newWebFixture(t)
	cookies := f.signup(t, "shop", "shop@example.com", domain.RoleSeller)
	p := f.seedProduct(t, f.userID(t, "shop@example.com"), "own item", 10)

	rec := f.do(t, http.MethodPost, "/cart/add/"+formatID(p.ID), nil, cookies)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products/"+formatID(p.ID), rec.Header().Get("Location"))

	// The cart stays empty.
	rec = f.do(t, http.MethodGet, "/cart", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Items []domain.CartItem `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data.Items)
}

func TestPlaceOrderFlow(t *testing.T) {
	f := newWebFixture(t)
	cookies := f.signup(t, "rin", "rin@example.com", "")
	p := f.seedProduct(t, 777, "figure", 25)

	// Empty cart checkout bounces back.
	rec := f.do(t, http.MethodPost, "/orders/place", nil, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))

	rec = f.do(t, http.MethodPost, "/cart/add/"+formatID(p.ID), nil, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders/place", nil, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/orders/success", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Order-Id"))

	rec = f.do(t, http.MethodGet, "/orders", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_price":25`)
}

func TestAdminRoutesRequireSellerRole(t *testing.T) {
	f := newWebFixture(t)
	cookies := f.signup(t, "rin", "rin@example.com", "")

	rec := f.do(t, http.MethodGet, "/admin/products", nil, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSellerSeesOwnProductsOnly(t *testing.T) {
	f := newWebFixture(t)
	cookies := f.signup(t, "shop", "shop@example.com", domain.RoleSeller)
	sellerID := f.userID(t, "shop@example.com")
	f.seedProduct(t, sellerID, "mine", 10)
	f.seedProduct(t, 424242, "other sellers", 10)

	rec := f.do(t, http.MethodGet, "/admin/products", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "mine")
	assert.NotContains(t, rec.Body.String(), "other sellers")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
