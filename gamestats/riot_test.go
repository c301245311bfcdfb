package gamestats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiotClient_AccountByRiotID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/riot/account/v1/accounts/by-riot-id/TenZ/0505", r.URL.Path)
		assert.Equal(t, "RGAPI-test", r.Header.Get("X-Riot-Token"))
		w.Write([]byte(`{"puuid":"riot-puuid","gameName":"TenZ","tagLine":"0505"}`))
	}))
	defer srv.Close()

	c := NewRiotClient("americas", "RGAPI-test", 20, srv.URL, srv.Client())
	acc, err := c.AccountByRiotID(context.Background(), "TenZ", "0505")
	require.NoError(t, err)
	assert.Equal(t, "riot-puuid", acc.PUUID)
	assert.Equal(t, "TenZ", acc.GameName)
}

func TestRiotClient_DefaultBaseURL(t *testing.T) {
	c := NewRiotClient("europe", "k", 5, "", nil)
	assert.Equal(t, "https://europe.api.riotgames.com", c.baseURL)
}

func TestRiotClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewRiotClient("americas", "k", 20, srv.URL, srv.Client()).AccountByRiotID(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRiotClient_LimiterRespectsContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"puuid":"x"}`))
	}))
	defer srv.Close()

	c := NewRiotClient("americas", "k", 1, srv.URL, srv.Client())
	_, err := c.AccountByRiotID(context.Background(), "a", "b")
	require.NoError(t, err)

	// бюджет исчерпан: следующий запрос должен ждать ~1s, а контекст короче
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.AccountByRiotID(ctx, "a", "b")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
