//go:build integration

package router_test

// End-to-end tests of the ledger over HTTP against real Postgres and Redis.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/config"
	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/router"
	"github.com/orhanozan33/epicebuhara-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("ledger_test"),
		tcPostgres.WithUsername("ledger"),
		tcPostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:            "test",
		DatabaseURL:    pgURL,
		RedisURL:       rdURL,
		RateLimit:      "100000-M",
		DealerCacheTTL: time.Minute,
		BusinessName:   "Epice Buhara",
		PDFStoragePath: t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL, 0)
	require.NoError(t, err)

	r, err := router.New(cfg, db, rdb, worker.NewDispatcher(rdb), infra.NewCircuitBreaker(infra.DefaultBreakerConfig()))
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db, rdb: rdb}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func (e *testEnv) seed(t *testing.T, stock int) (dealerID, productID uint) {
	t.Helper()
	d := model.Dealer{CompanyName: "Dépanneur Laurier", Active: true}
	require.NoError(t, e.db.Create(&d).Error)
	p := model.Product{Name: "Pul Biber 1kg", Price: decimal.RequireFromString("25.00"), Stock: &stock, Active: true}
	require.NoError(t, e.db.Create(&p).Error)
	return d.ID, p.ID
}

type saleBody struct {
	ID         uint            `json:"id"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

func (e *testEnv) createSale(t *testing.T, dealerID, productID uint, qty int) *http.Response {
	return e.do(t, http.MethodPost, "/v1/sales", map[string]any{
		"dealer_id": dealerID,
		"items":     []map[string]any{{"product_id": productID, "quantity": qty}},
	})
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, productID).Error)
	require.NotNil(t, p.Stock)
	return *p.Stock
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_PaymentLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	dealerID, productID := env.seed(t, 10)

	resp := env.createSale(t, dealerID, productID, 2)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale saleBody
	decodeJSON(t, resp, &sale)
	assert.Equal(t, "SAL-000001", sale.Number)
	assert.Equal(t, "50.00", sale.Total.StringFixed(2))
	assert.Equal(t, 8, stockOf(t, env.db, productID))

	pay := func(amount string) *http.Response {
		return env.do(t, http.MethodPost, fmt.Sprintf("/v1/sales/%d/payments", sale.ID),
			map[string]string{"amount": amount, "payment_method": "KREDI_KARTI"})
	}

	resp = pay("20.00")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = pay("31.00")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = pay("30.00")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var paid struct {
		IsFullyPaid bool   `json:"is_fully_paid"`
		Status      string `json:"status"`
	}
	decodeJSON(t, resp, &paid)
	assert.True(t, paid.IsFullyPaid)
	assert.Equal(t, "FULLY_PAID", paid.Status)

	queued, err := env.rdb.LLen(context.Background(), worker.QueueInvoice).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), queued)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/v1/sales/%d/payments", sale.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/v1/sales/%d/debt", sale.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var debt struct {
		Status          string          `json:"status"`
		OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	}
	decodeJSON(t, resp, &debt)
	assert.Equal(t, "UNPAID", debt.Status)
	assert.Equal(t, "50.00", debt.OutstandingDebt.StringFixed(2))

	var logRows int64
	require.NoError(t, env.db.Model(&model.SalePayment{}).Where("sale_id = ?", sale.ID).Count(&logRows).Error)
	assert.Equal(t, int64(3), logRows)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/v1/sales/%d/invoice.pdf", sale.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()
}

func TestE2E_ConcurrentPaymentsAreSerialized(t *testing.T) {
	env := setupTestEnv(t)
	dealerID, productID := env.seed(t, 10)

	resp := env.createSale(t, dealerID, productID, 2)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale saleBody
	decodeJSON(t, resp, &sale)

	const payers = 5
	codes := make([]int, payers)
	var wg sync.WaitGroup
	for i := 0; i < payers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := env.do(t, http.MethodPost, fmt.Sprintf("/v1/sales/%d/payments", sale.ID),
				map[string]string{"amount": "20.00", "payment_method": "NAKIT"})
			codes[i] = r.StatusCode
			r.Body.Close()
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, c := range codes {
		if c == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusUnprocessableEntity, c)
		}
	}
	assert.Equal(t, 2, ok, "only two $20 payments fit in a $50 sale")

	var stored model.Sale
	require.NoError(t, env.db.First(&stored, sale.ID).Error)
	assert.Equal(t, "40.00", stored.PaidAmount.StringFixed(2))
	assert.False(t, stored.Paid)
}

func TestE2E_StockRaceRollsBackTheLoser(t *testing.T) {
	env := setupTestEnv(t)
	dealerID, productID := env.seed(t, 10)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := env.createSale(t, dealerID, productID, 6)
			codes[i] = r.StatusCode
			r.Body.Close()
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusUnprocessableEntity}, codes)
	assert.Equal(t, 4, stockOf(t, env.db, productID))

	var sales, movements int64
	require.NoError(t, env.db.Model(&model.Sale{}).Count(&sales).Error)
	require.NoError(t, env.db.Model(&model.StockMovement{}).Count(&movements).Error)
	assert.Equal(t, int64(1), sales)
	assert.Equal(t, int64(1), movements)
}

func TestE2E_SaleNumbersAreUniqueAndIncreasing(t *testing.T) {
	env := setupTestEnv(t)
	dealerID, productID := env.seed(t, 100)

	var prev string
	for i := 0; i < 3; i++ {
		resp := env.createSale(t, dealerID, productID, 1)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var sale saleBody
		decodeJSON(t, resp, &sale)
		assert.Greater(t, sale.Number, prev)
		prev = sale.Number
	}

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/v1/dealers/%d/balance", dealerID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal struct {
		OpenSales       int             `json:"open_sales"`
		OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	}
	decodeJSON(t, resp, &bal)
	assert.Equal(t, 3, bal.OpenSales)
	assert.Equal(t, "75.00", bal.OutstandingDebt.StringFixed(2))
}

func TestE2E_ImportedOrderIsReadOnly(t *testing.T) {
	env := setupTestEnv(t)
	dealerID, productID := env.seed(t, 10)

	resp := env.do(t, http.MethodPost, "/v1/sales/import", map[string]any{
		"order_number": "1042",
		"dealer_id":    dealerID,
		"items":        []map[string]any{{"product_id": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale saleBody
	decodeJSON(t, resp, &sale)
	assert.Equal(t, "ORD-1042", sale.Number)
	assert.Equal(t, 10, stockOf(t, env.db, productID))

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/v1/sales/%d/items", sale.ID),
		map[string]any{"product_id": productID, "quantity": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/v1/sales/import", map[string]any{
		"order_number": "1042",
		"dealer_id":    dealerID,
		"items":        []map[string]any{{"product_id": productID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_DeadLettersCanBeReplayed(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	worker.SendToDLQ(ctx, env.rdb, worker.QueueEmail,
		worker.Job{Type: worker.JobEmail, Payload: json.RawMessage(`{"invoice_id":7}`), Attempts: 3},
		"smtp: 421 service not available")

	resp := env.do(t, http.MethodGet, "/v1/jobs/email/dead", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []worker.DLQEntry
	decodeJSON(t, resp, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, worker.JobEmail, entries[0].JobType)

	resp = env.do(t, http.MethodPost, "/v1/jobs/email/dead/replay", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replay struct {
		Replayed int `json:"replayed"`
	}
	decodeJSON(t, resp, &replay)
	assert.Equal(t, 1, replay.Replayed)

	resp = env.do(t, http.MethodGet, "/v1/jobs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats []worker.QueueStats
	decodeJSON(t, resp, &stats)
	require.Len(t, stats, 2)
	assert.Equal(t, worker.QueueEmail, stats[1].Queue)
	assert.Equal(t, int64(1), stats[1].Pending)
	assert.Equal(t, int64(0), stats[1].Dead)

	resp = env.do(t, http.MethodGet, "/v1/jobs/report/dead", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_DealerCacheFollowsUpdates(t *testing.T) {
	env := setupTestEnv(t)
	dealerID, productID := env.seed(t, 10)

	// first sale primes the cached dealer row
	resp := env.createSale(t, dealerID, productID, 1)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	cached, err := env.rdb.Exists(context.Background(), fmt.Sprintf("dealer:%d", dealerID)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached)

	resp = env.do(t, http.MethodPut, fmt.Sprintf("/v1/dealers/%d", dealerID), map[string]any{"discount_percent": "10"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.createSale(t, dealerID, productID, 2)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale saleBody
	decodeJSON(t, resp, &sale)
	assert.Equal(t, "45.00", sale.Total.StringFixed(2))
}

func TestE2E_PercentFinerThanCentsIsRejected(t *testing.T) {
	env := setupTestEnv(t)
	dealerID, productID := env.seed(t, 10)

	resp := env.do(t, http.MethodPost, "/v1/sales", map[string]any{
		"dealer_id":        dealerID,
		"discount_percent": "33.335",
		"items":            []map[string]any{{"product_id": productID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}
