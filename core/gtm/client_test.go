package gtm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gtm-sync/core/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	fast := retry.Policy{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
		Retryable:  IsRetryable,
	}
	return &Client{
		httpClient:  &http.Client{},
		endpoint:    endpoint,
		accessToken: "test-token",
		log:         zap.NewNop(),
		readPolicy:  fast,
		writePolicy: fast,
	}
}

func TestList_FollowsPagination(t *testing.T) {
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/1/containers/2/workspaces/3/tags", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)
		switch token {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tag":           []any{map[string]any{"name": "A", "tagId": "1"}},
				"nextPageToken": "page2",
			})
		case "page2":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tag": []any{map[string]any{"name": "B", "tagId": "2"}},
			})
		default:
			t.Fatalf("unexpected page token %q", token)
		}
	}))
	defer server.Close()

	items, err := testClient(t, server.URL).List(context.Background(), "accounts/1/containers/2/workspaces/3", "tags")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0]["name"])
	assert.Equal(t, "B", items[1]["name"])
	assert.Equal(t, []string{"", "page2"}, tokens)
}

func TestList_UnknownCollection(t *testing.T) {
	_, err := testClient(t, "http://unused").List(context.Background(), "parent", "widgets")
	assert.Error(t, err)
}

func TestUpdate_SendsFingerprint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "fp-1", r.URL.Query().Get("fingerprint"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Tag A", body["name"])

		_ = json.NewEncoder(w).Encode(map[string]any{"name": "Tag A", "tagId": "7", "fingerprint": "fp-2"})
	}))
	defer server.Close()

	updated, err := testClient(t, server.URL).Update(
		context.Background(),
		"accounts/1/containers/2/workspaces/3/tags/7",
		map[string]any{"name": "Tag A"},
		"fp-1",
	)
	require.NoError(t, err)
	assert.Equal(t, "fp-2", updated["fingerprint"])
}

func TestDo_RetriesTransientStatus(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"tag": []any{}})
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).List(context.Background(), "p", "tags")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermissionDenialIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"forbidden","errors":[{"reason":"insufficientPermissions"}]}}`))
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).List(context.Background(), "p", "tags")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "forbidden", apiErr.Message)
}

func TestEnsureWorkspace_FindsByNameCaseInsensitive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/1/containers/2/workspaces", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"workspace": []any{
				map[string]any{"name": "IaC Main", "workspaceId": "9", "path": "accounts/1/containers/2/workspaces/9"},
			},
		})
	}))
	defer server.Close()

	ws, err := testClient(t, server.URL).EnsureWorkspace(context.Background(), "1", "2", "iac main", false)
	require.NoError(t, err)
	assert.Equal(t, "9", ws.ID)
	assert.Equal(t, "accounts/1/containers/2/workspaces/9", ws.Path)
}

func TestEnsureWorkspace_MissingWithoutCreate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"workspace": []any{}})
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).EnsureWorkspace(context.Background(), "1", "2", "missing", false)
	assert.ErrorContains(t, err, "not found")
}

func TestEnsureWorkspace_CreatesWhenMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{"workspace": []any{}})
		case http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Fresh", body["name"])
			_ = json.NewEncoder(w).Encode(map[string]any{"name": "Fresh", "workspaceId": "11"})
		}
	}))
	defer server.Close()

	ws, err := testClient(t, server.URL).EnsureWorkspace(context.Background(), "1", "2", "Fresh", true)
	require.NoError(t, err)
	assert.Equal(t, "accounts/1/containers/2/workspaces/11", ws.Path, "path derived when the response omits it")
}

func TestMoveEntitiesToFolder_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":move_entities_to_folder")
		assert.Equal(t, []string{"1", "2"}, r.URL.Query()["tagId"])
		assert.Equal(t, []string{"3"}, r.URL.Query()["triggerId"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := testClient(t, server.URL).MoveEntitiesToFolder(
		context.Background(),
		"accounts/1/containers/2/workspaces/3/folders/5",
		[]string{"1", "2"}, []string{"3"}, nil,
	)
	assert.NoError(t, err)
}
