package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maker-atelier/service-booking/internal/application"
	couponDomain "github.com/maker-atelier/service-booking/internal/domain/coupon"
	"github.com/maker-atelier/service-booking/pkg/domain"
)

// stubCouponRepo serves a single coupon by code.
type stubCouponRepo struct {
	coupon *couponDomain.Coupon
}

func (s *stubCouponRepo) Save(ctx context.Context, c *couponDomain.Coupon) error   { return nil }
func (s *stubCouponRepo) Update(ctx context.Context, c *couponDomain.Coupon) error { return nil }

func (s *stubCouponRepo) FindByCode(ctx context.Context, code string) (*couponDomain.Coupon, error) {
	if s.coupon != nil && s.coupon.Code() == couponDomain.NormalizeCode(code) {
		return s.coupon, nil
	}
	return nil, domain.NewNotFoundError("coupon", code)
}

func (s *stubCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*couponDomain.Coupon, error) {
	return nil, domain.NewNotFoundError("coupon", id.String())
}

func (s *stubCouponRepo) ListAll(ctx context.Context, page, limit int) ([]*couponDomain.Coupon, int64, error) {
	return nil, 0, nil
}

func (s *stubCouponRepo) CountUsageByCustomer(ctx context.Context, couponID, customerID uuid.UUID) (int, error) {
	return 0, nil
}

func (s *stubCouponRepo) Redeem(ctx context.Context, usage *couponDomain.Usage) error { return nil }
func (s *stubCouponRepo) ReleaseRedemption(ctx context.Context, usageID uuid.UUID) error {
	return nil
}

func (s *stubCouponRepo) ReleaseRedemptionByBooking(ctx context.Context, bookingID uuid.UUID) error {
	return nil
}

func setupCouponRouter(t *testing.T, repo couponDomain.Repository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc := application.NewCouponService(repo, zap.NewNop())
	NewCouponHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postValidate(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestValidateCoupon_OK(t *testing.T) {
	c, err := couponDomain.NewCoupon(
		"SAVE10", "spring promo", couponDomain.DiscountTypePercentage,
		10, 0, 0, 0, time.Now().UTC().Add(-time.Hour), nil, nil, uuid.New(),
	)
	require.NoError(t, err)
	router := setupCouponRouter(t, &stubCouponRepo{coupon: c})

	rec := postValidate(t, router, gin.H{
		"code":       "save10",
		"workshopId": uuid.New().String(),
		"amount":     5000,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body application.CouponValidationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Valid)
	assert.Equal(t, int64(500), body.DiscountAmount)
	assert.Equal(t, int64(4500), body.FinalAmount)
}

func TestValidateCoupon_UnknownCode(t *testing.T) {
	router := setupCouponRouter(t, &stubCouponRepo{})

	rec := postValidate(t, router, gin.H{
		"code":       "NOPE",
		"workshopId": uuid.New().String(),
		"amount":     5000,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "coupon not found", body["error"])
}

func TestValidateCoupon_RuleRejectionIsSpecific(t *testing.T) {
	c, err := couponDomain.NewCoupon(
		"BIGSPEND", "", couponDomain.DiscountTypePercentage,
		10, 10000, 0, 0, time.Now().UTC().Add(-time.Hour), nil, nil, uuid.New(),
	)
	require.NoError(t, err)
	router := setupCouponRouter(t, &stubCouponRepo{coupon: c})

	rec := postValidate(t, router, gin.H{
		"code":       "BIGSPEND",
		"workshopId": uuid.New().String(),
		"amount":     5000,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], fmt.Sprintf("%d", 10000))
}

func TestValidateCoupon_MissingFields(t *testing.T) {
	router := setupCouponRouter(t, &stubCouponRepo{})

	rec := postValidate(t, router, gin.H{"code": "SAVE10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
