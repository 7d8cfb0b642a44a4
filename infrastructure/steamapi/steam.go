package steamapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/steam-mcp/domain/steamid"
)

// Response cache TTLs per endpoint category, matching how quickly the
// upstream data moves.
const (
	TTLAppDetails         = time.Hour
	TTLGameSchema         = time.Hour
	TTLGlobalAchievements = time.Hour
	TTLVanityResolution   = time.Hour
	TTLPlayerSummary      = 5 * time.Minute
	TTLFriendList         = 5 * time.Minute
	TTLPlayerBans         = 5 * time.Minute
	TTLOwnedGames         = 5 * time.Minute
	TTLRecentGames        = 5 * time.Minute
	TTLSteamLevel         = 5 * time.Minute
	TTLNews               = 5 * time.Minute
	TTLAchievements       = 5 * time.Minute
	TTLPlayerStats        = 5 * time.Minute
	TTLCurrentPlayers     = time.Minute
)

// PlayerSummary is one player record from ISteamUser/GetPlayerSummaries.
type PlayerSummary struct {
	SteamID                  string `json:"steamid"`
	PersonaName              string `json:"personaname"`
	ProfileURL               string `json:"profileurl"`
	Avatar                   string `json:"avatar"`
	AvatarMedium             string `json:"avatarmedium"`
	AvatarFull               string `json:"avatarfull"`
	PersonaState             int    `json:"personastate"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
	ProfileState             int    `json:"profilestate"`
	LastLogoff               int64  `json:"lastlogoff"`
	RealName                 string `json:"realname"`
	PrimaryClanID            string `json:"primaryclanid"`
	TimeCreated              int64  `json:"timecreated"`
	GameID                   string `json:"gameid"`
	GameExtraInfo            string `json:"gameextrainfo"`
	LocCountryCode           string `json:"loccountrycode"`
	LocStateCode             string `json:"locstatecode"`
}

// maxSummaryBatch is the upstream limit on IDs per GetPlayerSummaries call.
const maxSummaryBatch = 100

// GetPlayerSummaries fetches player summaries, batching up to 100 IDs
// per upstream call. Upstream order passes through. Empty input returns
// an empty slice without touching the network.
func (c *Client) GetPlayerSummaries(ctx context.Context, ids []steamid.SteamID) ([]PlayerSummary, error) {
	if len(ids) == 0 {
		return []PlayerSummary{}, nil
	}

	summaries := make([]PlayerSummary, 0, len(ids))
	for start := 0; start < len(ids); start += maxSummaryBatch {
		end := start + maxSummaryBatch
		if end > len(ids) {
			end = len(ids)
		}

		batch := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, id.String())
		}

		params := url.Values{}
		params.Set("steamids", strings.Join(batch, ","))

		raw, err := c.Do(ctx, Request{
			Interface:    "ISteamUser",
			Method:       "GetPlayerSummaries",
			Version:      2,
			Params:       params,
			RequiresAuth: true,
			CacheTTL:     TTLPlayerSummary,
		})
		if err != nil {
			return nil, err
		}

		var envelope struct {
			Response struct {
				Players []PlayerSummary `json:"players"`
			} `json:"response"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, &MalformedResponseError{ContentType: "application/json", Snippet: c.snippet(raw)}
		}
		summaries = append(summaries, envelope.Response.Players...)
	}

	return summaries, nil
}

// ResolveVanityURL resolves a vanity profile name to a SteamID64 via
// ISteamUser/ResolveVanityURL. A well-formed response with any success
// code other than 1 means the name does not exist.
func (c *Client) ResolveVanityURL(ctx context.Context, vanity string) (steamid.SteamID, error) {
	params := url.Values{}
	params.Set("vanityurl", vanity)

	raw, err := c.Do(ctx, Request{
		Interface:    "ISteamUser",
		Method:       "ResolveVanityURL",
		Version:      1,
		Params:       params,
		RequiresAuth: true,
		CacheTTL:     TTLVanityResolution,
	})
	if err != nil {
		return 0, err
	}

	var envelope struct {
		Response struct {
			Success int    `json:"success"`
			SteamID string `json:"steamid"`
		} `json:"response"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return 0, &MalformedResponseError{ContentType: "application/json", Snippet: c.snippet(raw)}
	}
	if envelope.Response.Success != 1 || envelope.Response.SteamID == "" {
		return 0, &steamid.UnresolvableAliasError{Alias: vanity}
	}

	return steamid.Parse(envelope.Response.SteamID)
}

var _ steamid.Resolver = (*Client)(nil)
