package gamestats

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

const riotProvider = "riot"

// RiotClient ходит в официальный Riot API. Исходящие запросы ограничены token bucket.
type RiotClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

type RiotAccount struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// NewRiotClient: region задаёт регион маршрутизации (americas, europe, asia).
// baseURL переопределяет https://<region>.api.riotgames.com.
func NewRiotClient(region, apiKey string, perSecond int, baseURL string, httpClient *http.Client) *RiotClient {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.riotgames.com", region)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if perSecond <= 0 {
		perSecond = 1
	}
	return &RiotClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

func (c *RiotClient) AccountByRiotID(ctx context.Context, name, tag string) (*RiotAccount, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: waiting for rate limiter: %w", riotProvider, err)
	}
	u := c.baseURL + "/riot/account/v1/accounts/by-riot-id/" + url.PathEscape(name) + "/" + url.PathEscape(tag)
	header := http.Header{}
	header.Set("X-Riot-Token", c.apiKey)

	var acc RiotAccount
	if err := getJSON(ctx, c.http, riotProvider, u, header, &acc); err != nil {
		return nil, fmt.Errorf("riot account %s#%s: %w", name, tag, err)
	}
	return &acc, nil
}
