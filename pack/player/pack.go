// Package player provides the Steam player identity, profile, and library
// tools: summaries, friends, bans, owned games, recent playtime, and
// vanity resolution. Every identity parameter accepts any spelling the
// normalizer recognizes, including the owner shorthand "me".
package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/steamid"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/steamapi"
)

// maxFriendsDefault caps the friend list rendering unless the caller
// raises it.
const maxFriendsDefault = 50

// Options wires the pack to its collaborators.
type Options struct {
	Client     *steamapi.Client
	Normalizer *steamid.Normalizer
}

// New creates the steam-player pack.
func New(opts Options) *pack.Pack {
	return pack.NewBuilder("steam-player").
		WithDescription("Steam player identity, profile, and game library tools").
		WithVersion("1.0.0").
		AddTools(
			myIDTool(opts),
			summaryTool(opts),
			summariesTool(opts),
			vanityTool(opts),
			friendListTool(opts),
			bansTool(opts),
			ownedGamesTool(opts),
			recentGamesTool(opts),
			steamLevelTool(opts),
		).
		MustBuild()
}

func steamIDParamDesc() string {
	return "Steam ID in any format: SteamID64, STEAM_X:Y:Z, [U:1:N], profile URL, " +
		"vanity name, or 'me' for the configured owner"
}

func myIDTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_my_steam_id").
		WithDescription("Get the Steam ID configured for this server, so queries like " +
			"'my profile' or 'games I own' work without an explicit Steam ID.").
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			owner, ok := opts.Normalizer.Owner()
			if !ok {
				return "", steamid.ErrNoOwnerConfigured
			}

			lines := []string{
				"Owner Steam ID configured:",
				"  SteamID64: " + owner.String(),
				"  Legacy: " + owner.Legacy(),
				"  SteamID3: " + owner.SteamID3(),
				"  Profile URL: " + owner.ProfileURL(),
			}

			// Persona name is decoration; the IDs render even when the
			// profile fetch fails.
			if summaries, err := opts.Client.GetPlayerSummaries(ctx, []steamid.SteamID{owner}); err == nil && len(summaries) > 0 {
				lines = append([]string{lines[0], "  Display Name: " + summaries[0].PersonaName}, lines[1:]...)
			}

			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func summaryTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_player_summary").
		WithDescription("Get a Steam player's profile: display name, online status, "+
			"visibility, current game, and account details for public profiles.").
		WithStringParam("steamid", steamIDParamDesc(), true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}

			summaries, err := opts.Client.GetPlayerSummaries(ctx, []steamid.SteamID{id})
			if err != nil {
				return "", err
			}
			if len(summaries) == 0 {
				return fmt.Sprintf("Player not found for Steam ID %s.", id), nil
			}

			return formatSummary(summaries[0]), nil
		}).
		MustBuild()
}

func summariesTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_player_summaries").
		WithDescription("Get profiles for multiple Steam players at once. More efficient "+
			"than repeated get_player_summary calls.").
		WithStringListParam("steamids", "Steam IDs in any format", true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			inputs := args.StringSlice("steamids")
			if len(inputs) == 0 {
				return "", &tool.InvalidArgumentsError{Param: "steamids", Reason: "at least one Steam ID is required"}
			}

			ids := make([]steamid.SteamID, 0, len(inputs))
			var problems []string
			for _, input := range inputs {
				id, err := opts.Normalizer.Normalize(ctx, input)
				if err != nil {
					problems = append(problems, fmt.Sprintf("  - %s: %v", input, err))
					continue
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				return "", fmt.Errorf("could not resolve any of the given Steam IDs:\n%s", strings.Join(problems, "\n"))
			}

			summaries, err := opts.Client.GetPlayerSummaries(ctx, ids)
			if err != nil {
				return "", err
			}

			lines := []string{fmt.Sprintf("Found %d player(s):", len(summaries))}
			for _, s := range summaries {
				lines = append(lines, fmt.Sprintf("  • %s (%s) — %s, %s",
					s.PersonaName, s.SteamID, visibilityName(s.CommunityVisibilityState), statusLine(s)))
			}
			if len(problems) > 0 {
				lines = append(lines, "", "Could not resolve some IDs:")
				lines = append(lines, problems...)
			}
			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func vanityTool(opts Options) tool.Tool {
	return tool.NewBuilder("resolve_vanity_url").
		WithDescription("Convert a Steam vanity profile name to its SteamID64.").
		WithStringParam("vanity", "The vanity name, e.g. 'gabelogannewell' from steamcommunity.com/id/gabelogannewell", true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			name := args.String("vanity")
			// A full URL pasted here still works: take the last path segment.
			if strings.Contains(name, "/") {
				name = strings.TrimRight(name, "/")
				name = name[strings.LastIndex(name, "/")+1:]
			}

			id, err := opts.Client.ResolveVanityURL(ctx, name)
			if errors.Is(err, steamid.ErrUnresolvableAlias) {
				return fmt.Sprintf("Could not resolve vanity name %q: no such profile.", name), nil
			}
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("Vanity name %q resolved to:\n  SteamID64: %s\n  Profile URL: %s",
				name, id, id.ProfileURL()), nil
		}).
		MustBuild()
}

func friendListTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_friend_list").
		WithDescription("Get a Steam player's friend list with friend-since dates. "+
			"Only works for public profiles.").
		WithStringParam("steamid", steamIDParamDesc(), true).
		WithIntDefault("limit", "Maximum friends to display", maxFriendsDefault).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}

			params := url.Values{}
			params.Set("steamid", id.String())
			params.Set("relationship", "friend")

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "ISteamUser",
				Method:       "GetFriendList",
				Version:      1,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLFriendList,
			})
			if errors.Is(err, steamapi.ErrAuthOrVisibility) {
				return fmt.Sprintf("Cannot access the friend list for %s: this profile's friend list is private.", id), nil
			}
			if err != nil {
				return "", err
			}

			var envelope struct {
				FriendsList struct {
					Friends []struct {
						SteamID     string `json:"steamid"`
						FriendSince int64  `json:"friend_since"`
					} `json:"friends"`
				} `json:"friendslist"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode friend list: %w", err)
			}

			friends := envelope.FriendsList.Friends
			if len(friends) == 0 {
				return fmt.Sprintf("No friends found for %s. The profile may be private or the account has no friends.", id), nil
			}

			limit := args.Int("limit")
			if limit < 1 {
				limit = maxFriendsDefault
			}

			lines := []string{fmt.Sprintf("Friend list for %s (%d friends):", id, len(friends))}
			for i, friend := range friends {
				if i >= limit {
					lines = append(lines, fmt.Sprintf("  ... and %d more friends", len(friends)-limit))
					break
				}
				since := "unknown"
				if friend.FriendSince > 0 {
					since = time.Unix(friend.FriendSince, 0).UTC().Format("2006-01-02")
				}
				lines = append(lines, fmt.Sprintf("  • %s (friends since %s)", friend.SteamID, since))
			}
			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func bansTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_player_bans").
		WithDescription("Get VAC ban, game ban, community ban, and trade ban status for a Steam player.").
		WithStringParam("steamid", steamIDParamDesc(), true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}

			params := url.Values{}
			params.Set("steamids", id.String())

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "ISteamUser",
				Method:       "GetPlayerBans",
				Version:      1,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLPlayerBans,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				Players []struct {
					SteamID          string `json:"SteamId"`
					VACBanned        bool   `json:"VACBanned"`
					NumberOfVACBans  int    `json:"NumberOfVACBans"`
					DaysSinceLastBan int    `json:"DaysSinceLastBan"`
					NumberOfGameBans int    `json:"NumberOfGameBans"`
					CommunityBanned  bool   `json:"CommunityBanned"`
					EconomyBan       string `json:"EconomyBan"`
				} `json:"players"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode ban status: %w", err)
			}
			if len(envelope.Players) == 0 {
				return fmt.Sprintf("No ban information found for %s.", id), nil
			}

			p := envelope.Players[0]
			lines := []string{"Ban status for " + p.SteamID + ":"}
			if p.VACBanned {
				lines = append(lines, fmt.Sprintf("  VAC Banned: Yes (%d ban(s), last %d days ago)", p.NumberOfVACBans, p.DaysSinceLastBan))
			} else {
				lines = append(lines, "  VAC Banned: No")
			}
			if p.NumberOfGameBans > 0 {
				lines = append(lines, fmt.Sprintf("  Game Bans: %d", p.NumberOfGameBans))
			} else {
				lines = append(lines, "  Game Bans: None")
			}
			lines = append(lines,
				fmt.Sprintf("  Community Banned: %s", yesNo(p.CommunityBanned)),
				fmt.Sprintf("  Trade Ban: %s", p.EconomyBan),
			)
			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

// ownedGame is one entry from IPlayerService/GetOwnedGames.
type ownedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	Playtime2Weeks  int    `json:"playtime_2weeks"`
	RTimeLastPlayed int64  `json:"rtime_last_played"`
}

func ownedGamesTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_owned_games").
		WithDescription("Get a Steam player's game library with playtime. "+
			"Only works for public profiles, or the owner's own profile.").
		WithStringParam("steamid", steamIDParamDesc(), true).
		WithBoolDefault("include_free", "Include free-to-play games", false).
		WithEnumParam("sort_by", "Sort order for the listing", "playtime", "playtime", "name", "recent").
		WithIntDefault("limit", "Maximum games to display (0 shows all)", 25).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}

			params := url.Values{}
			params.Set("steamid", id.String())
			params.Set("include_appinfo", "1")
			if args.Bool("include_free") {
				params.Set("include_played_free_games", "1")
			}

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "IPlayerService",
				Method:       "GetOwnedGames",
				Version:      1,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLOwnedGames,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				Response struct {
					GameCount int         `json:"game_count"`
					Games     []ownedGame `json:"games"`
				} `json:"response"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode owned games: %w", err)
			}

			games := envelope.Response.Games
			if len(games) == 0 {
				return fmt.Sprintf("No games found for %s. The profile may be private or the account has no games.", id), nil
			}

			sortBy := args.String("sort_by")
			sortGames(games, sortBy)

			totalMinutes := 0
			for _, g := range games {
				totalMinutes += g.PlaytimeForever
			}

			limit := args.Int("limit")
			if limit <= 0 || limit > len(games) {
				limit = len(games)
			}

			lines := []string{
				fmt.Sprintf("Game library for %s", id),
				fmt.Sprintf("Total games: %d", envelope.Response.GameCount),
				fmt.Sprintf("Total playtime: %.1f hours", float64(totalMinutes)/60),
				"",
				fmt.Sprintf("Games (sorted by %s):", sortBy),
			}
			for _, g := range games[:limit] {
				entry := fmt.Sprintf("  • [%d] %s: %s", g.AppID, gameName(g), playtime(g.PlaytimeForever))
				if g.Playtime2Weeks > 0 {
					entry += fmt.Sprintf(" (recent: %s)", playtime(g.Playtime2Weeks))
				}
				lines = append(lines, entry)
			}
			if limit < len(games) {
				lines = append(lines, fmt.Sprintf("  ... and %d more games", len(games)-limit))
			}
			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func recentGamesTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_recently_played_games").
		WithDescription("Get games a Steam player has played in the last two weeks.").
		WithStringParam("steamid", steamIDParamDesc(), true).
		WithIntDefault("count", "Maximum games to return", 10).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}

			params := url.Values{}
			params.Set("steamid", id.String())
			if count := args.Int("count"); count > 0 {
				params.Set("count", fmt.Sprint(count))
			}

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "IPlayerService",
				Method:       "GetRecentlyPlayedGames",
				Version:      1,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLRecentGames,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				Response struct {
					TotalCount int         `json:"total_count"`
					Games      []ownedGame `json:"games"`
				} `json:"response"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode recently played games: %w", err)
			}

			games := envelope.Response.Games
			if len(games) == 0 {
				return fmt.Sprintf("No recently played games for %s. Nothing played in the last two weeks, or the profile is private.", id), nil
			}

			recentMinutes := 0
			for _, g := range games {
				recentMinutes += g.Playtime2Weeks
			}

			lines := []string{
				fmt.Sprintf("Recently played games for %s", id),
				fmt.Sprintf("Games played in the last two weeks: %d", envelope.Response.TotalCount),
				fmt.Sprintf("Recent playtime: %.1f hours", float64(recentMinutes)/60),
				"",
			}
			for _, g := range games {
				lines = append(lines, fmt.Sprintf("  • [%d] %s — last two weeks: %s, total: %s",
					g.AppID, gameName(g), playtime(g.Playtime2Weeks), playtime(g.PlaytimeForever)))
			}
			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func steamLevelTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_steam_level").
		WithDescription("Get a Steam player's community level.").
		WithStringParam("steamid", steamIDParamDesc(), true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}

			params := url.Values{}
			params.Set("steamid", id.String())

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "IPlayerService",
				Method:       "GetSteamLevel",
				Version:      1,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLSteamLevel,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				Response struct {
					PlayerLevel *int `json:"player_level"`
				} `json:"response"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode steam level: %w", err)
			}
			if envelope.Response.PlayerLevel == nil {
				return fmt.Sprintf("Could not retrieve the Steam level for %s. The profile may be private.", id), nil
			}

			level := *envelope.Response.PlayerLevel
			return fmt.Sprintf("Steam level for %s: %d (%s)", id, level, levelTier(level)), nil
		}).
		MustBuild()
}

// formatSummary renders one player profile the way the server reports all
// profiles: labeled fields, public-only details gated on visibility.
func formatSummary(s steamapi.PlayerSummary) string {
	lines := []string{
		"Player: " + s.PersonaName,
		"  SteamID64: " + s.SteamID,
		"  Profile URL: " + s.ProfileURL,
		"  Visibility: " + visibilityName(s.CommunityVisibilityState),
		"  Status: " + statusLine(s),
	}

	if s.CommunityVisibilityState == 3 {
		if s.RealName != "" {
			lines = append(lines, "  Real Name: "+s.RealName)
		}
		if s.LocCountryCode != "" {
			lines = append(lines, "  Country: "+s.LocCountryCode)
		}
		if s.GameExtraInfo != "" {
			entry := "  Currently Playing: " + s.GameExtraInfo
			if s.GameID != "" {
				entry += " (App ID " + s.GameID + ")"
			}
			lines = append(lines, entry)
		}
		if s.TimeCreated > 0 {
			lines = append(lines, "  Account Created: "+time.Unix(s.TimeCreated, 0).UTC().Format("2006-01-02"))
		}
	}

	if s.AvatarFull != "" {
		lines = append(lines, "  Avatar: "+s.AvatarFull)
	}
	return strings.Join(lines, "\n")
}

func visibilityName(state int) string {
	switch state {
	case 1:
		return "Private"
	case 2:
		return "Friends Only"
	case 3:
		return "Public"
	default:
		return "Unknown"
	}
}

var personaStates = []string{
	"Offline", "Online", "Busy", "Away", "Snooze", "Looking to trade", "Looking to play",
}

// statusLine renders the persona state. Online states are only reliable
// for public profiles; everything else reads as offline upstream.
func statusLine(s steamapi.PlayerSummary) string {
	if s.PersonaState >= 0 && s.PersonaState < len(personaStates) {
		return personaStates[s.PersonaState]
	}
	return "Unknown"
}

func sortGames(games []ownedGame, by string) {
	switch by {
	case "name":
		sort.Slice(games, func(i, j int) bool {
			return strings.ToLower(gameName(games[i])) < strings.ToLower(gameName(games[j]))
		})
	case "recent":
		sort.Slice(games, func(i, j int) bool {
			return games[i].RTimeLastPlayed > games[j].RTimeLastPlayed
		})
	default:
		sort.Slice(games, func(i, j int) bool {
			return games[i].PlaytimeForever > games[j].PlaytimeForever
		})
	}
}

func gameName(g ownedGame) string {
	if g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("App %d", g.AppID)
}

// playtime renders minutes as hours past the first hour.
func playtime(minutes int) string {
	switch {
	case minutes == 0:
		return "never played"
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%.1fh", float64(minutes)/60)
	}
}

func levelTier(level int) string {
	switch {
	case level < 10:
		return "Newcomer"
	case level < 25:
		return "Regular"
	case level < 50:
		return "Experienced"
	case level < 100:
		return "Veteran"
	case level < 200:
		return "Elite"
	default:
		return "Legendary"
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
