// Package stats provides Steam achievement and game statistics tools.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/steamid"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/steamapi"
)

// Display caps for achievement and stat listings.
const (
	maxAchievementsShown = 30
	maxLockedShown       = 10
	maxStatsShown        = 25
	maxRarestShown       = 20
)

// Options wires the pack to its collaborators.
type Options struct {
	Client     *steamapi.Client
	Normalizer *steamid.Normalizer
}

// New creates the steam-stats pack.
func New(opts Options) *pack.Pack {
	return pack.NewBuilder("steam-stats").
		WithDescription("Steam achievements and per-game player statistics").
		WithVersion("1.0.0").
		AddTools(
			playerAchievementsTool(opts),
			gameSchemaTool(opts),
			globalPercentagesTool(opts),
			userStatsTool(opts),
		).
		MustBuild()
}

const steamIDDesc = "Steam ID in any format, or 'me' for the configured owner"

type achievement struct {
	APIName     string `json:"apiname"`
	Achieved    int    `json:"achieved"`
	UnlockTime  int64  `json:"unlocktime"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a achievement) displayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.APIName
}

func playerAchievementsTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_player_achievements").
		WithDescription("Get a player's achievement progress for a game: unlocked "+
			"count, recent unlocks, and a sample of what is still locked. "+
			"Requires the player's game details to be public.").
		WithStringParam("steamid", steamIDDesc, true).
		WithIntParam("appid", "Steam App ID of the game", true).
		WithStringDefault("language", "Language for achievement names and descriptions", "english").
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}
			appID := args.Int("appid")

			params := url.Values{}
			params.Set("steamid", id.String())
			params.Set("appid", strconv.Itoa(appID))
			params.Set("l", strings.ToLower(args.String("language")))

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "ISteamUserStats",
				Method:       "GetPlayerAchievements",
				Version:      1,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLAchievements,
			})
			if msg, ok := privateProfileMessage(err, id); ok {
				return msg, nil
			}
			if err != nil {
				return "", err
			}

			var envelope struct {
				PlayerStats struct {
					Success      bool          `json:"success"`
					GameName     string        `json:"gameName"`
					Error        string        `json:"error"`
					Achievements []achievement `json:"achievements"`
				} `json:"playerstats"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode achievements: %w", err)
			}

			ps := envelope.PlayerStats
			if !ps.Success {
				if strings.Contains(strings.ToLower(ps.Error), "not public") {
					return fmt.Sprintf("Cannot access achievements for %s: this player's game details are private.", id), nil
				}
				return fmt.Sprintf("Could not retrieve achievements for App ID %d. The game may have no achievements, or the profile is private.", appID), nil
			}
			if len(ps.Achievements) == 0 {
				return fmt.Sprintf("No achievements found for %s.", gameLabel(ps.GameName, appID)), nil
			}

			return formatPlayerAchievements(id, gameLabel(ps.GameName, appID), ps.Achievements), nil
		}).
		MustBuild()
}

func gameSchemaTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_game_schema").
		WithDescription("Get the achievement and stat definitions for a game: names, "+
			"descriptions, and hidden status.").
		WithIntParam("appid", "Steam App ID of the game", true).
		WithStringDefault("language", "Language for localized text", "english").
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			appID := args.Int("appid")

			params := url.Values{}
			params.Set("appid", strconv.Itoa(appID))
			params.Set("l", strings.ToLower(args.String("language")))

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "ISteamUserStats",
				Method:       "GetSchemaForGame",
				Version:      2,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLGameSchema,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				Game struct {
					GameName           string `json:"gameName"`
					AvailableGameStats struct {
						Achievements []struct {
							Name        string `json:"name"`
							DisplayName string `json:"displayName"`
							Description string `json:"description"`
							Hidden      int    `json:"hidden"`
						} `json:"achievements"`
						Stats []struct {
							Name        string `json:"name"`
							DisplayName string `json:"displayName"`
						} `json:"stats"`
					} `json:"availableGameStats"`
				} `json:"game"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode game schema: %w", err)
			}

			game := envelope.Game
			achievements := game.AvailableGameStats.Achievements
			stats := game.AvailableGameStats.Stats
			if game.GameName == "" && len(achievements) == 0 && len(stats) == 0 {
				return fmt.Sprintf("No schema found for App ID %d. The game may not exist or tracks no stats.", appID), nil
			}

			lines := []string{
				"Game Schema: " + gameLabel(game.GameName, appID),
				fmt.Sprintf("App ID: %d", appID),
				"",
			}

			if len(achievements) > 0 {
				hidden := 0
				for _, a := range achievements {
					if a.Hidden == 1 {
						hidden++
					}
				}
				lines = append(lines, fmt.Sprintf("Achievements: %d total (%d hidden)", len(achievements), hidden), "")
				for i, a := range achievements {
					if i >= maxAchievementsShown {
						lines = append(lines, fmt.Sprintf("  ... and %d more achievements", len(achievements)-maxAchievementsShown))
						break
					}
					name := a.DisplayName
					if name == "" {
						name = a.Name
					}
					entry := "  • " + name
					if a.Hidden == 1 {
						entry += " [hidden]"
					}
					if a.Description != "" {
						entry += ": " + a.Description
					}
					lines = append(lines, entry)
				}
			} else {
				lines = append(lines, "No achievements for this game.")
			}

			if len(stats) > 0 {
				lines = append(lines, "", fmt.Sprintf("Stats tracked: %d", len(stats)))
				for i, s := range stats {
					if i >= maxLockedShown {
						lines = append(lines, fmt.Sprintf("  ... and %d more stats", len(stats)-maxLockedShown))
						break
					}
					name := s.DisplayName
					if name == "" {
						name = s.Name
					}
					lines = append(lines, "  • "+name)
				}
			}

			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func globalPercentagesTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_global_achievement_percentages").
		WithDescription("Get global unlock percentages for a game's achievements, "+
			"rarest first.").
		WithIntParam("gameid", "Steam App ID of the game", true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			gameID := args.Int("gameid")

			params := url.Values{}
			params.Set("gameid", strconv.Itoa(gameID))

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface: "ISteamUserStats",
				Method:    "GetGlobalAchievementPercentagesForApp",
				Version:   2,
				Params:    params,
				CacheTTL:  steamapi.TTLGlobalAchievements,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				AchievementPercentages struct {
					Achievements []struct {
						Name    string  `json:"name"`
						Percent float64 `json:"percent"`
					} `json:"achievements"`
				} `json:"achievementpercentages"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode achievement percentages: %w", err)
			}

			achievements := envelope.AchievementPercentages.Achievements
			if len(achievements) == 0 {
				return fmt.Sprintf("No global achievement data for App ID %d.", gameID), nil
			}

			sort.Slice(achievements, func(i, j int) bool {
				return achievements[i].Percent < achievements[j].Percent
			})

			lines := []string{
				fmt.Sprintf("Global achievement percentages for App ID %d", gameID),
				fmt.Sprintf("Total achievements: %d", len(achievements)),
				"",
				"Rarest achievements:",
			}
			for i, a := range achievements {
				if i >= maxRarestShown {
					break
				}
				lines = append(lines, fmt.Sprintf("  %5.1f%% — %s", a.Percent, a.Name))
			}
			if len(achievements) > maxRarestShown {
				lines = append(lines, "", "Most common achievements:")
				for i := len(achievements) - 1; i >= len(achievements)-5 && i >= 0; i-- {
					lines = append(lines, fmt.Sprintf("  %5.1f%% — %s", achievements[i].Percent, achievements[i].Name))
				}
			}
			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func userStatsTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_user_stats_for_game").
		WithDescription("Get a player's game-specific statistics, e.g. kills, wins, "+
			"or distance travelled. Stats vary by game.").
		WithStringParam("steamid", steamIDDesc, true).
		WithIntParam("appid", "Steam App ID of the game", true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			id, err := opts.Normalizer.Normalize(ctx, args.String("steamid"))
			if err != nil {
				return "", err
			}
			appID := args.Int("appid")

			params := url.Values{}
			params.Set("steamid", id.String())
			params.Set("appid", strconv.Itoa(appID))

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface:    "ISteamUserStats",
				Method:       "GetUserStatsForGame",
				Version:      2,
				Params:       params,
				RequiresAuth: true,
				CacheTTL:     steamapi.TTLPlayerStats,
			})
			if msg, ok := privateProfileMessage(err, id); ok {
				return msg, nil
			}
			if err != nil {
				return "", err
			}

			var envelope struct {
				PlayerStats struct {
					GameName string `json:"gameName"`
					Stats    []struct {
						Name  string  `json:"name"`
						Value float64 `json:"value"`
					} `json:"stats"`
					Achievements []struct {
						Achieved int `json:"achieved"`
					} `json:"achievements"`
				} `json:"playerstats"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode user stats: %w", err)
			}

			ps := envelope.PlayerStats
			if len(ps.Stats) == 0 && len(ps.Achievements) == 0 {
				return fmt.Sprintf("No stats found for App ID %d. The game may not track stats, or the profile is private.", appID), nil
			}

			lines := []string{
				"Player stats for " + gameLabel(ps.GameName, appID),
				"Steam ID: " + id.String(),
				"",
			}

			if len(ps.Stats) > 0 {
				lines = append(lines, fmt.Sprintf("Statistics (%d):", len(ps.Stats)))
				for i, s := range ps.Stats {
					if i >= maxStatsShown {
						lines = append(lines, fmt.Sprintf("  ... and %d more stats", len(ps.Stats)-maxStatsShown))
						break
					}
					lines = append(lines, fmt.Sprintf("  %s: %s", s.Name, statValue(s.Value)))
				}
			}

			if len(ps.Achievements) > 0 {
				unlocked := 0
				for _, a := range ps.Achievements {
					if a.Achieved == 1 {
						unlocked++
					}
				}
				lines = append(lines, "", fmt.Sprintf("Achievements: %d/%d unlocked", unlocked, len(ps.Achievements)))
			}

			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

func formatPlayerAchievements(id steamid.SteamID, game string, achievements []achievement) string {
	var unlocked, locked []achievement
	for _, a := range achievements {
		if a.Achieved == 1 {
			unlocked = append(unlocked, a)
		} else {
			locked = append(locked, a)
		}
	}

	completion := float64(len(unlocked)) / float64(len(achievements)) * 100

	lines := []string{
		"Achievements for " + game,
		"Player: " + id.String(),
		fmt.Sprintf("Progress: %d/%d (%.1f%%)", len(unlocked), len(achievements), completion),
		"",
	}

	if len(unlocked) > 0 {
		// Most recent unlocks first.
		sort.Slice(unlocked, func(i, j int) bool {
			return unlocked[i].UnlockTime > unlocked[j].UnlockTime
		})
		lines = append(lines, fmt.Sprintf("Unlocked (%d):", len(unlocked)))
		for i, a := range unlocked {
			if i >= maxAchievementsShown {
				lines = append(lines, fmt.Sprintf("  ... and %d more unlocked", len(unlocked)-maxAchievementsShown))
				break
			}
			entry := "  ✓ " + a.displayName()
			if a.Description != "" {
				entry += " — " + a.Description
			}
			if a.UnlockTime > 0 {
				entry += " [" + time.Unix(a.UnlockTime, 0).UTC().Format("2006-01-02") + "]"
			}
			lines = append(lines, entry)
		}
		lines = append(lines, "")
	}

	if len(locked) > 0 {
		lines = append(lines, fmt.Sprintf("Locked (%d):", len(locked)))
		for i, a := range locked {
			if i >= maxLockedShown {
				lines = append(lines, fmt.Sprintf("  ... and %d more locked", len(locked)-maxLockedShown))
				break
			}
			entry := "  ○ " + a.displayName()
			if a.Description != "" {
				entry += " — " + a.Description
			}
			lines = append(lines, entry)
		}
	}

	return strings.Join(lines, "\n")
}

// privateProfileMessage maps upstream visibility failures to the readable
// explanation the tools report instead of a bare error.
func privateProfileMessage(err error, id steamid.SteamID) (string, bool) {
	if err == nil {
		return "", false
	}
	if errors.Is(err, steamapi.ErrAuthOrVisibility) {
		return fmt.Sprintf("Cannot access stats for %s: this player's game details are private.", id), true
	}
	var apiErr *steamapi.APIError
	if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Snippet), "not public") {
		return fmt.Sprintf("Cannot access stats for %s: this player's game details are private.", id), true
	}
	return "", false
}

func gameLabel(name string, appID int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("App %d", appID)
}

func statValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
