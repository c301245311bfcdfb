package gamestats

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dosada05/esports-arena/models"
)

const henrikProvider = "henrik"

// HenrikClient ходит в неофициальный Valorant API (api.henrikdev.xyz).
type HenrikClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHenrikClient(baseURL, apiKey string, httpClient *http.Client) *HenrikClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HenrikClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

type henrikEnvelope[T any] struct {
	Status int `json:"status"`
	Data   T   `json:"data"`
}

type henrikAccount struct {
	PUUID        string `json:"puuid"`
	Region       string `json:"region"`
	AccountLevel int    `json:"account_level"`
	Name         string `json:"name"`
	Tag          string `json:"tag"`
	Card         struct {
		Small string `json:"small"`
	} `json:"card"`
}

type henrikMMR struct {
	CurrentData struct {
		CurrentTier        int    `json:"currenttier"`
		CurrentTierPatched string `json:"currenttierpatched"`
		RankingInTier      int    `json:"ranking_in_tier"`
		MMRChange          int    `json:"mmr_change_to_last_game"`
		Elo                int    `json:"elo"`
	} `json:"current_data"`
}

type henrikMatch struct {
	Metadata struct {
		MatchID   string `json:"matchid"`
		Map       string `json:"map"`
		Mode      string `json:"mode"`
		GameStart int64  `json:"game_start"`
	} `json:"metadata"`
	Players struct {
		AllPlayers []struct {
			PUUID     string `json:"puuid"`
			Name      string `json:"name"`
			Tag       string `json:"tag"`
			Team      string `json:"team"`
			Character string `json:"character"`
			Stats     struct {
				Score   int `json:"score"`
				Kills   int `json:"kills"`
				Deaths  int `json:"deaths"`
				Assists int `json:"assists"`
			} `json:"stats"`
		} `json:"all_players"`
	} `json:"players"`
	Teams map[string]struct {
		HasWon *bool `json:"has_won"`
	} `json:"teams"`
}

func (c *HenrikClient) header() http.Header {
	h := http.Header{}
	if c.apiKey != "" {
		h.Set("Authorization", c.apiKey)
	}
	return h
}

func (c *HenrikClient) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/valorant/" + strings.Join(escaped, "/")
}

func (c *HenrikClient) Account(ctx context.Context, name, tag string) (*models.PlayerAccount, error) {
	var env henrikEnvelope[henrikAccount]
	if err := getJSON(ctx, c.http, henrikProvider, c.endpoint("v1", "account", name, tag), c.header(), &env); err != nil {
		return nil, fmt.Errorf("account %s#%s: %w", name, tag, err)
	}
	a := env.Data
	if a.PUUID == "" {
		return nil, fmt.Errorf("account %s#%s: %s: %w", name, tag, henrikProvider, ErrNotFound)
	}
	return &models.PlayerAccount{
		PUUID:        a.PUUID,
		Name:         a.Name,
		Tag:          a.Tag,
		Region:       a.Region,
		AccountLevel: a.AccountLevel,
		CardURL:      a.Card.Small,
	}, nil
}

func (c *HenrikClient) MMR(ctx context.Context, region, name, tag string) (*models.PlayerMMR, error) {
	var env henrikEnvelope[henrikMMR]
	if err := getJSON(ctx, c.http, henrikProvider, c.endpoint("v2", "mmr", region, name, tag), c.header(), &env); err != nil {
		return nil, fmt.Errorf("mmr %s#%s: %w", name, tag, err)
	}
	d := env.Data.CurrentData
	return &models.PlayerMMR{
		CurrentTier:     d.CurrentTier,
		CurrentTierName: d.CurrentTierPatched,
		RankingInTier:   d.RankingInTier,
		LastChange:      d.MMRChange,
		Elo:             d.Elo,
	}, nil
}

// Matches возвращает последние size матчей с точки зрения игрока name#tag.
func (c *HenrikClient) Matches(ctx context.Context, region, name, tag string, size int) ([]models.MatchSummary, error) {
	u := c.endpoint("v3", "matches", region, name, tag)
	if size > 0 {
		u += fmt.Sprintf("?size=%d", size)
	}
	var env henrikEnvelope[[]henrikMatch]
	if err := getJSON(ctx, c.http, henrikProvider, u, c.header(), &env); err != nil {
		return nil, fmt.Errorf("matches %s#%s: %w", name, tag, err)
	}

	out := make([]models.MatchSummary, 0, len(env.Data))
	for _, m := range env.Data {
		summary := models.MatchSummary{
			MatchID:   m.Metadata.MatchID,
			Map:       m.Metadata.Map,
			Mode:      m.Metadata.Mode,
			StartedAt: time.Unix(m.Metadata.GameStart, 0).UTC(),
		}
		for _, p := range m.Players.AllPlayers {
			if !strings.EqualFold(p.Name, name) || !strings.EqualFold(p.Tag, tag) {
				continue
			}
			summary.Agent = p.Character
			summary.Kills = p.Stats.Kills
			summary.Deaths = p.Stats.Deaths
			summary.Assists = p.Stats.Assists
			summary.Score = p.Stats.Score
			if team, ok := m.Teams[strings.ToLower(p.Team)]; ok {
				summary.Won = team.HasWon
			}
			break
		}
		out = append(out, summary)
		if size > 0 && len(out) == size {
			break
		}
	}
	return out, nil
}
