package web_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbt "settlex/db/db"
	"settlex/db/mem"
	"settlex/mq/goch"
	"settlex/netting"
	"settlex/split"
	"settlex/web"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return web.NewRouter(
		mem.NewInMemoryExpenseDBWrapper(),
		mem.NewInMemoryTripDBWrapper(),
		goch.NewGoChanSettlementMessageQueueWrapper(),
	)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpenseLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// Create a trip first so the expense can be linked to it.
	w := doJSON(t, router, http.MethodPost, "/api/trips", gin.H{"name": "Kyoto"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	trip := decode[dbt.Trip](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/expenses", gin.H{
		"title":       "Dinner",
		"totalAmount": "300",
		"splitMode":   "equal",
		"payerName":   "Bob",
		"members": []gin.H{
			{"name": "Alice"},
			{"name": "Bob"},
			{"name": "Carol"},
		},
		"tripId": trip.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expense := decode[dbt.Expense](t, w)

	assert.Equal(t, "300.0000000", expense.TotalAmount)
	require.Len(t, expense.Shares, 2)
	for _, share := range expense.Shares {
		assert.Equal(t, "100.0000000", share.Amount)
		assert.False(t, share.Paid)
	}

	// Read it back
	w = doJSON(t, router, http.MethodGet, "/api/expenses/"+expense.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Shares-only view
	w = doJSON(t, router, http.MethodGet, "/api/expenses/"+expense.ID.String()+"/shares", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sharesResp struct {
		Shares []split.Share `json:"shares"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sharesResp))
	assert.Len(t, sharesResp.Shares, 2)

	w = doJSON(t, router, http.MethodGet, "/api/expenses/"+uuid.NewString()+"/shares", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Mark Alice's share paid
	var alice uuid.UUID
	for _, share := range expense.Shares {
		if share.Name == "Alice" {
			alice = share.MemberID
		}
	}
	require.NotEqual(t, uuid.Nil, alice)

	path := fmt.Sprintf("/api/expenses/%s/shares/%s/paid", expense.ID, alice)
	w = doJSON(t, router, http.MethodPost, path, gin.H{"txHash": "tx-alice", "tripId": trip.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dbt.Expense](t, w)
	for _, share := range updated.Shares {
		if share.Name == "Alice" {
			assert.True(t, share.Paid)
			assert.Equal(t, "tx-alice", share.TxHash)
		}
	}
	assert.False(t, updated.Settled)
}

func TestCreateExpenseValidation(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"bad amount", gin.H{"title": "X", "totalAmount": "-5", "payerName": "A", "members": []gin.H{{"name": "A"}}}},
		{"no members", gin.H{"title": "X", "totalAmount": "10", "payerName": "A", "members": []gin.H{}}},
		{"payer not a member", gin.H{"title": "X", "totalAmount": "10", "payerName": "Zed", "members": []gin.H{{"name": "A"}}}},
		{"bad wallet", gin.H{"title": "X", "totalAmount": "10", "payerName": "A", "members": []gin.H{{"name": "A", "walletAddress": "nope"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/expenses", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestSettlementFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/trips", gin.H{"name": "Kyoto"})
	require.Equal(t, http.StatusCreated, w.Code)
	trip := decode[dbt.Trip](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/expenses", gin.H{
		"title":       "Dinner",
		"totalAmount": "300",
		"payerName":   "Bob",
		"members":     []gin.H{{"name": "Alice"}, {"name": "Bob"}, {"name": "Carol"}},
		"tripId":      trip.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/trips/"+trip.ID.String()+"/settlement", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var settlement struct {
		Payments []netting.NetPayment `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settlement))
	require.Len(t, settlement.Payments, 2)
	for _, p := range settlement.Payments {
		assert.Equal(t, "Bob", p.To)
		assert.Equal(t, "100.0000000", p.Amount)
	}

	// Preview which expenses Alice's net payment to Bob would touch.
	w = doJSON(t, router, http.MethodGet, "/api/trips/"+trip.ID.String()+"/settlement?from=Alice&to=Bob", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var preview struct {
		Contributing map[string]int `json:"contributing"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	require.Len(t, preview.Contributing, 1)
	for _, count := range preview.Contributing {
		assert.Equal(t, 1, count)
	}

	// Alice settles her net payment; her one share gets marked.
	w = doJSON(t, router, http.MethodPost, "/api/trips/"+trip.ID.String()+"/settlement/paid", gin.H{
		"from":   "Alice",
		"to":     "Bob",
		"txHash": "tx-net",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var marked struct {
		SharesMarked int `json:"sharesMarked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &marked))
	assert.Equal(t, 1, marked.SharesMarked)

	// The plan shrinks to Carol's payment only.
	w = doJSON(t, router, http.MethodGet, "/api/trips/"+trip.ID.String()+"/settlement", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settlement))
	require.Len(t, settlement.Payments, 1)
	assert.Equal(t, "Carol", settlement.Payments[0].From)
}

func TestTripEventsFeed(t *testing.T) {
	router := newTestRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	w := doJSON(t, router, http.MethodPost, "/api/trips", gin.H{"name": "Kyoto"})
	require.Equal(t, http.StatusCreated, w.Code)
	trip := decode[dbt.Trip](t, w)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/trips/" + trip.ID.String()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Let the handler finish subscribing before events are published.
	time.Sleep(100 * time.Millisecond)

	w = doJSON(t, router, http.MethodPost, "/api/expenses", gin.H{
		"title":       "Dinner",
		"totalAmount": "300",
		"payerName":   "Bob",
		"members":     []gin.H{{"name": "Alice"}, {"name": "Bob"}, {"name": "Carol"}},
		"tripId":      trip.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expense := decode[dbt.Expense](t, w)

	var event struct {
		Type       string `json:"type"`
		ExpenseID  string `json:"expenseId"`
		Title      string `json:"title"`
		MemberName string `json:"memberName"`
		TxHash     string `json:"txHash"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "expense.created", event.Type)
	assert.Equal(t, expense.ID.String(), event.ExpenseID)
	assert.Equal(t, "Dinner", event.Title)
	assert.Equal(t, "Bob", event.MemberName)

	var alice uuid.UUID
	for _, share := range expense.Shares {
		if share.Name == "Alice" {
			alice = share.MemberID
		}
	}
	require.NotEqual(t, uuid.Nil, alice)

	path := fmt.Sprintf("/api/expenses/%s/shares/%s/paid", expense.ID, alice)
	w = doJSON(t, router, http.MethodPost, path, gin.H{"txHash": "tx-alice", "tripId": trip.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "payment.paid", event.Type)
	assert.Equal(t, "Alice", event.MemberName)
	assert.Equal(t, "tx-alice", event.TxHash)
}

func TestGetTripNotFound(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/trips/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
