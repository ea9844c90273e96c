// internal/handlers/helpers_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnkeep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAuth は認証ミドルウェアの代わりに、指定したユーザーIDとロールを
// リクエストコンテキストに注入するテスト用ミドルウェアです。
func testAuth(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			ctx = context.WithValue(ctx, model.RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// createRequest はJSONボディ付きのテストリクエストを作ります。
// body が string ならそのまま（壊れたJSONのテスト用）、それ以外はMarshalする。
func createRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = bytes.NewBuffer(nil)
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, url, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// assertErrorResponse はエラーレスポンスのJSON形状とエラーコードを検証します
func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, wantCode string) {
	t.Helper()

	var errResp model.APIErrorResponse
	err := json.Unmarshal(rr.Body.Bytes(), &errResp)
	assert.NoError(t, err, "Failed to unmarshal error response body")
	assert.NotEmpty(t, errResp.Error.Message, "Error message should not be empty")
	if wantCode != "" {
		assert.Equal(t, wantCode, errResp.Error.Code)
	}
}
