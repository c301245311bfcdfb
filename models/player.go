package models

import "time"

type PlayerAccount struct {
	PUUID        string `json:"puuid"`
	Name         string `json:"name"`
	Tag          string `json:"tag"`
	Region       string `json:"region,omitempty"`
	AccountLevel int    `json:"account_level,omitempty"`
	CardURL      string `json:"card_url,omitempty"`
}

type PlayerMMR struct {
	CurrentTier     int    `json:"current_tier"`
	CurrentTierName string `json:"current_tier_name"`
	RankingInTier   int    `json:"ranking_in_tier"`
	LastChange      int    `json:"last_change"`
	Elo             int    `json:"elo"`
}

type MatchSummary struct {
	MatchID   string    `json:"match_id"`
	Map       string    `json:"map"`
	Mode      string    `json:"mode"`
	StartedAt time.Time `json:"started_at"`
	Agent     string    `json:"agent"`
	Kills     int       `json:"kills"`
	Deaths    int       `json:"deaths"`
	Assists   int       `json:"assists"`
	Score     int       `json:"score"`
	Won       *bool     `json:"won,omitempty"`
}

// SourceStatus: результат обращения к одному внешнему источнику.
type SourceStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type PlayerStats struct {
	Region        string                  `json:"region"`
	Account       PlayerAccount           `json:"account"`
	RiotPUUID     string                  `json:"riot_puuid,omitempty"`
	MMR           *PlayerMMR              `json:"mmr,omitempty"`
	RecentMatches []MatchSummary          `json:"recent_matches"`
	Sources       map[string]SourceStatus `json:"sources"`
	FetchedAt     time.Time               `json:"fetched_at"`
}
