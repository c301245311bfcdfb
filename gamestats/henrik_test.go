package gamestats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const henrikMatchesJSON = `{
  "status": 200,
  "data": [
    {
      "metadata": {"matchid": "m-1", "map": "Ascent", "mode": "Competitive", "game_start": 1714550400},
      "players": {"all_players": [
        {"puuid": "p-2", "name": "Other", "tag": "EU1", "team": "Blue", "character": "Sage", "stats": {"score": 100, "kills": 3, "deaths": 9, "assists": 4}},
        {"puuid": "p-1", "name": "TenZ", "tag": "0505", "team": "Red", "character": "Jett", "stats": {"score": 310, "kills": 24, "deaths": 12, "assists": 5}}
      ]},
      "teams": {"red": {"has_won": true, "rounds_won": 13}, "blue": {"has_won": false, "rounds_won": 8}}
    },
    {
      "metadata": {"matchid": "m-2", "map": "Bind", "mode": "Unrated", "game_start": 1714464000},
      "players": {"all_players": [
        {"puuid": "p-1", "name": "tenz", "tag": "0505", "team": "Blue", "character": "Raze", "stats": {"score": 200, "kills": 15, "deaths": 15, "assists": 2}}
      ]},
      "teams": {"red": {"has_won": true}, "blue": {"has_won": false}}
    }
  ]
}`

func TestHenrikClient_Account(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/valorant/v1/account/TenZ/0505", r.URL.Path)
		assert.Equal(t, "HDEV-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":200,"data":{"puuid":"p-1","region":"na","account_level":412,"name":"TenZ","tag":"0505","card":{"small":"https://media/card.png"}}}`))
	}))
	defer srv.Close()

	c := NewHenrikClient(srv.URL+"/", "HDEV-key", srv.Client())
	acc, err := c.Account(context.Background(), "TenZ", "0505")
	require.NoError(t, err)
	assert.Equal(t, "p-1", acc.PUUID)
	assert.Equal(t, 412, acc.AccountLevel)
	assert.Equal(t, "https://media/card.png", acc.CardURL)
}

func TestHenrikClient_EscapesPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/valorant/v1/account/Big%20Name/EU1", r.URL.EscapedPath())
		w.Write([]byte(`{"status":200,"data":{"puuid":"p-9","name":"Big Name","tag":"EU1"}}`))
	}))
	defer srv.Close()

	_, err := NewHenrikClient(srv.URL, "", srv.Client()).Account(context.Background(), "Big Name", "EU1")
	require.NoError(t, err)
}

func TestHenrikClient_MMR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/valorant/v2/mmr/na/TenZ/0505", r.URL.Path)
		w.Write([]byte(`{"status":200,"data":{"current_data":{"currenttier":24,"currenttierpatched":"Immortal 1","ranking_in_tier":55,"mmr_change_to_last_game":-18,"elo":2155}}}`))
	}))
	defer srv.Close()

	mmr, err := NewHenrikClient(srv.URL, "", srv.Client()).MMR(context.Background(), "na", "TenZ", "0505")
	require.NoError(t, err)
	assert.Equal(t, "Immortal 1", mmr.CurrentTierName)
	assert.Equal(t, -18, mmr.LastChange)
	assert.Equal(t, 2155, mmr.Elo)
}

func TestHenrikClient_MatchesPicksRequestedPlayer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/valorant/v3/matches/na/TenZ/0505", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("size"))
		w.Write([]byte(henrikMatchesJSON))
	}))
	defer srv.Close()

	matches, err := NewHenrikClient(srv.URL, "", srv.Client()).Matches(context.Background(), "na", "TenZ", "0505", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, "m-1", first.MatchID)
	assert.Equal(t, "Jett", first.Agent)
	assert.Equal(t, 24, first.Kills)
	require.NotNil(t, first.Won)
	assert.True(t, *first.Won)
	assert.Equal(t, time.Unix(1714550400, 0).UTC(), first.StartedAt)

	second := matches[1]
	assert.Equal(t, "Raze", second.Agent)
	require.NotNil(t, second.Won)
	assert.False(t, *second.Won)
}

func TestHenrikClient_StatusMapping(t *testing.T) {
	cases := map[string]struct {
		status int
		header map[string]string
		want   error
	}{
		"not found":    {http.StatusNotFound, nil, ErrNotFound},
		"rate limited": {http.StatusTooManyRequests, map[string]string{"Retry-After": "30"}, ErrRateLimited},
		"unauthorized": {http.StatusUnauthorized, nil, ErrUnauthorized},
		"forbidden":    {http.StatusForbidden, nil, ErrUnauthorized},
		"server error": {http.StatusBadGateway, nil, ErrUpstream},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tc.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"status":0,"errors":[{"message":"nope"}]}`))
			}))
			defer srv.Close()

			_, err := NewHenrikClient(srv.URL, "", srv.Client()).Account(context.Background(), "a", "b")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRateLimitErrorCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHenrikClient(srv.URL, "", srv.Client()).MMR(context.Background(), "eu", "a", "b")
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 12*time.Second, rl.RetryAfter)
	assert.Equal(t, "henrik", rl.Provider)
}

func TestHenrikClient_EmptyAccountIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"data":{}}`))
	}))
	defer srv.Close()

	_, err := NewHenrikClient(srv.URL, "", srv.Client()).Account(context.Background(), "ghost", "000")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHenrikClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewHenrikClient(srv.URL, "", srv.Client()).Account(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrUpstream)
}
