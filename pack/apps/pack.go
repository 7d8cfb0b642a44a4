// Package apps provides Steam store and app metadata tools.
package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/steamapi"
)

// Options wires the pack to its collaborators.
type Options struct {
	Client *steamapi.Client
}

// New creates the steam-apps pack.
func New(opts Options) *pack.Pack {
	return pack.NewBuilder("steam-apps").
		WithDescription("Steam store metadata and live app statistics").
		WithVersion("1.0.0").
		AddTools(
			appDetailsTool(opts),
			currentPlayersTool(opts),
		).
		MustBuild()
}

// appDetails is the storefront appdetails payload, reduced to the fields
// the tool renders.
type appDetails struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	IsFree           bool     `json:"is_free"`
	ShortDescription string   `json:"short_description"`
	Developers       []string `json:"developers"`
	Publishers       []string `json:"publishers"`
	PriceOverview    *struct {
		FinalFormatted   string `json:"final_formatted"`
		InitialFormatted string `json:"initial_formatted"`
		DiscountPercent  int    `json:"discount_percent"`
	} `json:"price_overview"`
	Platforms struct {
		Windows bool `json:"windows"`
		Mac     bool `json:"mac"`
		Linux   bool `json:"linux"`
	} `json:"platforms"`
	Genres []struct {
		Description string `json:"description"`
	} `json:"genres"`
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
	Metacritic *struct {
		Score int `json:"score"`
	} `json:"metacritic"`
}

func appDetailsTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_app_details").
		WithDescription("Get store details for a Steam app: description, price, "+
			"platforms, genres, and release date.").
		WithIntParam("appid", "Steam App ID, e.g. 440 for TF2, 730 for CS2", true).
		WithStringDefault("country", "Country code for pricing, e.g. 'us', 'gb', 'de'", "us").
		WithStringDefault("language", "Language for localized text", "english").
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			appID := args.Int("appid")

			params := url.Values{}
			params.Set("appids", strconv.Itoa(appID))
			params.Set("cc", strings.ToLower(args.String("country")))
			params.Set("l", strings.ToLower(args.String("language")))

			raw, err := opts.Client.StoreGet(ctx, "appdetails", params, steamapi.TTLAppDetails)
			if err != nil {
				return "", err
			}

			var envelope map[string]struct {
				Success bool       `json:"success"`
				Data    appDetails `json:"data"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode app details: %w", err)
			}

			entry, ok := envelope[strconv.Itoa(appID)]
			if !ok || !entry.Success {
				return fmt.Sprintf("No details available for App ID %d in region %q.", appID, args.String("country")), nil
			}

			return formatAppDetails(appID, entry.Data), nil
		}).
		MustBuild()
}

func currentPlayersTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_current_players").
		WithDescription("Get the number of players currently in-game for a Steam app.").
		WithIntParam("appid", "Steam App ID", true).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			appID := args.Int("appid")

			params := url.Values{}
			params.Set("appid", strconv.Itoa(appID))

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface: "ISteamUserStats",
				Method:    "GetNumberOfCurrentPlayers",
				Version:   1,
				Params:    params,
				CacheTTL:  steamapi.TTLCurrentPlayers,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				Response struct {
					PlayerCount int `json:"player_count"`
					Result      int `json:"result"`
				} `json:"response"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode player count: %w", err)
			}
			if envelope.Response.Result != 1 {
				return fmt.Sprintf("No player count available for App ID %d.", appID), nil
			}

			return fmt.Sprintf("App ID %d: %d players in-game right now.", appID, envelope.Response.PlayerCount), nil
		}).
		MustBuild()
}

func formatAppDetails(appID int, d appDetails) string {
	lines := []string{
		d.Name,
		fmt.Sprintf("App ID: %d | Type: %s", appID, titleCase(d.Type)),
		"Developer: " + joinOrUnknown(d.Developers),
		"Publisher: " + joinOrUnknown(d.Publishers),
		"Release Date: " + releaseDate(d),
		"Price: " + price(d),
		"Platforms: " + platforms(d),
		"Genres: " + genres(d),
	}

	if d.Metacritic != nil {
		lines = append(lines, fmt.Sprintf("Metacritic: %d", d.Metacritic.Score))
	}
	if d.ShortDescription != "" {
		lines = append(lines, "", "Description: "+d.ShortDescription)
	}
	lines = append(lines, "", fmt.Sprintf("Store: https://store.steampowered.com/app/%d", appID))

	return strings.Join(lines, "\n")
}

func releaseDate(d appDetails) string {
	if d.ReleaseDate.ComingSoon {
		return "Coming Soon"
	}
	if d.ReleaseDate.Date == "" {
		return "Unknown"
	}
	return d.ReleaseDate.Date
}

func price(d appDetails) string {
	if d.IsFree {
		return "Free to Play"
	}
	if d.PriceOverview == nil {
		return "Price not available"
	}
	p := d.PriceOverview
	if p.DiscountPercent > 0 {
		return fmt.Sprintf("%s (%d%% off, was %s)", p.FinalFormatted, p.DiscountPercent, p.InitialFormatted)
	}
	return p.FinalFormatted
}

func platforms(d appDetails) string {
	var list []string
	if d.Platforms.Windows {
		list = append(list, "Windows")
	}
	if d.Platforms.Mac {
		list = append(list, "macOS")
	}
	if d.Platforms.Linux {
		list = append(list, "Linux")
	}
	if len(list) == 0 {
		return "Unknown"
	}
	return strings.Join(list, ", ")
}

func genres(d appDetails) string {
	var list []string
	for _, g := range d.Genres {
		if g.Description != "" {
			list = append(list, g.Description)
		}
	}
	if len(list) == 0 {
		return "Unknown"
	}
	return strings.Join(list, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinOrUnknown(list []string) string {
	if len(list) == 0 {
		return "Unknown"
	}
	return strings.Join(list, ", ")
}
