package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/services"
)

type fakeAuth struct {
	users map[string]*models.User
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, services.ErrMissingToken
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, services.ErrInvalidToken
}

func do(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

var _ = Describe("StatusFor", func() {
	DescribeTable("maps kinds to statuses",
		func(kind services.Kind, status int) {
			Expect(middleware.StatusFor(kind)).To(Equal(status))
		},
		Entry("validation", services.KindValidation, http.StatusBadRequest),
		Entry("authentication", services.KindAuthentication, http.StatusUnauthorized),
		Entry("authorization", services.KindAuthorization, http.StatusForbidden),
		Entry("not found", services.KindNotFound, http.StatusNotFound),
		Entry("conflict", services.KindConflict, http.StatusConflict),
		Entry("upstream", services.KindUpstream, http.StatusBadGateway),
		Entry("internal", services.KindInternal, http.StatusInternalServerError),
		Entry("unknown", services.Kind("weird"), http.StatusInternalServerError),
	)

	It("hides internal details", func() {
		body := middleware.ErrorBody(errors.New("pq: connection refused"))
		Expect(body["message"]).To(Equal("Server Error"))
		Expect(body["kind"]).To(Equal(services.KindInternal))
	})
})

var _ = Describe("AuthToken", func() {
	var (
		r   *gin.Engine
		ada *models.User
	)

	BeforeEach(func() {
		ada = &models.User{ID: uuid.New(), FirstName: "Ada"}
		r = gin.New()
		r.GET("/me", middleware.AuthToken(fakeAuth{users: map[string]*models.User{"good": ada}}), func(c *gin.Context) {
			u, ok := middleware.CurrentUser(c)
			Expect(ok).To(BeTrue())
			c.JSON(http.StatusOK, gin.H{"id": u.ID})
		})
	})

	It("injects the user for a valid token", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(middleware.TokenHeader, "good")
		w, body := do(r, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(body["id"]).To(Equal(ada.ID.String()))
	})

	It("rejects a missing token with 403", func() {
		w, body := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(body["message"]).To(Equal("Access denied. No token provided."))
	})

	It("rejects an invalid token with 403", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(middleware.TokenHeader, "forged")
		w, body := do(r, req)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(body["message"]).To(Equal("Invalid token"))
	})

	It("reports no user outside the middleware", func() {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		_, ok := middleware.CurrentUser(c)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("RateLimitByIP", func() {
	It("answers 429 once the burst is spent", func() {
		rl := middleware.NewIPRateLimiter(middleware.RateLimit{PerMinute: 1, Burst: 2, IdleTTL: time.Minute})
		DeferCleanup(rl.Stop)

		r := gin.New()
		r.GET("/", middleware.RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusNoContent) })

		codes := make([]int, 0, 3)
		var last *httptest.ResponseRecorder
		for range 3 {
			last, _ = do(r, httptest.NewRequest(http.MethodGet, "/", nil))
			codes = append(codes, last.Code)
		}
		Expect(codes).To(Equal([]int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}))
		Expect(last.Header().Get("Retry-After")).To(Equal("60"))
	})

	It("passes everything through without a limiter", func() {
		r := gin.New()
		r.GET("/", middleware.RateLimitByIP(nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		for range 5 {
			w, _ := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Code).To(Equal(http.StatusNoContent))
		}
	})
})

var _ = Describe("Recovery", func() {
	It("turns a panic into a 500", func() {
		r := gin.New()
		r.Use(middleware.Recovery(), middleware.Logger())
		r.GET("/boom", func(*gin.Context) { panic("boom") })

		w, body := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(body["message"]).To(Equal("Server Error"))
	})
})
