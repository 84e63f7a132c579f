package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lababa/lababa/internal/client/transport"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/stats"
)

// pagedServer 模拟 /api/records/list：按请求体中的 offset/limit 切片，total 为全部条数。
func pagedServer(t *testing.T, total int, calls *[]int) *httptest.Server {
	t.Helper()
	all := make([]record.Record, total)
	for i := range all {
		all[i] = record.Record{ID: fmt.Sprintf("r%04d", i), UserID: "u", EndTime: int64(total - i)}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/records/list", r.URL.Path)
		var body struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*calls = append(*calls, body.Offset)

		start := min(body.Offset, total)
		end := min(start+body.Limit, total)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"msg":  "成功",
			"data": Page{Total: total, Items: all[start:end]},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	return New(transport.New(transport.Config{BaseURL: baseURL}, transport.WithTokenSource(transport.StaticToken("tok"))))
}

func TestListFollowsPagesUntilTotal(t *testing.T) {
	var calls []int
	srv := pagedServer(t, 2*ListLimit+5, &calls)

	items, err := newTestClient(srv.URL).List(context.Background(), stats.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 2*ListLimit+5)
	assert.Equal(t, "r0000", items[0].ID)
	assert.Equal(t, fmt.Sprintf("r%04d", 2*ListLimit+4), items[len(items)-1].ID)
	assert.Equal(t, []int{0, ListLimit, 2 * ListLimit}, calls)
}

func TestListSinglePageAndEmpty(t *testing.T) {
	var calls []int
	srv := pagedServer(t, 3, &calls)
	items, err := newTestClient(srv.URL).List(context.Background(), stats.Filter{})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, []int{0}, calls)

	calls = nil
	empty := pagedServer(t, 0, &calls)
	items, err = newTestClient(empty.URL).List(context.Background(), stats.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, []int{0}, calls)
}
