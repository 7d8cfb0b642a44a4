package player

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/steamid"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/steamapi"
)

const (
	testKey     = "TESTKEY0123456789ABCDEF"
	testOwner   = steamid.SteamID(76561197960287930)
	testOtherID = "76561198000000001"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestPack(t *testing.T, srv *httptest.Server, owner bool) *pack.Pack {
	t.Helper()
	client, err := steamapi.New(steamapi.Config{
		APIKey:            testKey,
		BaseURL:           srv.URL,
		StoreBaseURL:      srv.URL,
		RequestsPerSecond: 1000,
		MaxAttempts:       1,
		InitialBackoff:    5 * time.Millisecond,
		MaxBackoff:        50 * time.Millisecond,
		Timeout:           2 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var opts []steamid.Option
	if owner {
		opts = append(opts, steamid.WithOwner(testOwner))
	}
	return New(Options{
		Client:     client,
		Normalizer: steamid.NewNormalizer(client, opts...),
	})
}

// invoke validates raw arguments against the tool's declared parameters
// and executes it, the same path the registry takes.
func invoke(t *testing.T, p *pack.Pack, name string, raw map[string]any) (string, error) {
	t.Helper()
	tl, ok := p.GetTool(name)
	if !ok {
		t.Fatalf("pack has no tool %q", name)
	}
	args, err := tl.Params().Validate(raw)
	if err != nil {
		t.Fatalf("Validate(%v) error = %v", raw, err)
	}
	return tl.Execute(context.Background(), args)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestPack_ToolNames(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	p := newTestPack(t, srv, false)

	want := []string{
		"get_my_steam_id",
		"get_player_summary",
		"get_player_summaries",
		"resolve_vanity_url",
		"get_friend_list",
		"get_player_bans",
		"get_owned_games",
		"get_recently_played_games",
		"get_steam_level",
	}
	got := p.ToolNames()
	if len(got) != len(want) {
		t.Fatalf("ToolNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToolNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetMySteamID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"response": map[string]any{
				"players": []map[string]any{
					{"steamid": testOwner.String(), "personaname": "gaben"},
				},
			},
		})
	})
	p := newTestPack(t, srv, true)

	out, err := invoke(t, p, "get_my_steam_id", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{
		"Display Name: gaben",
		"SteamID64: " + testOwner.String(),
		"Legacy: " + testOwner.Legacy(),
		"SteamID3: " + testOwner.SteamID3(),
		testOwner.ProfileURL(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGetMySteamID_NoOwner(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	p := newTestPack(t, srv, false)

	_, err := invoke(t, p, "get_my_steam_id", nil)
	if !errors.Is(err, steamid.ErrNoOwnerConfigured) {
		t.Errorf("error = %v, want ErrNoOwnerConfigured", err)
	}
}

func TestGetPlayerSummary_PublicProfile(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"response": map[string]any{
				"players": []map[string]any{{
					"steamid":                  testOtherID,
					"personaname":              "Sample Player",
					"profileurl":               "https://steamcommunity.com/id/sample/",
					"personastate":             1,
					"communityvisibilitystate": 3,
					"realname":                 "Sam Pleplayer",
					"loccountrycode":           "DE",
					"gameid":                   "440",
					"gameextrainfo":            "Team Fortress 2",
					"timecreated":              1100000000,
				}},
			},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_player_summary", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{
		"Player: Sample Player",
		"Visibility: Public",
		"Status: Online",
		"Real Name: Sam Pleplayer",
		"Country: DE",
		"Currently Playing: Team Fortress 2 (App ID 440)",
		"Account Created: 2004-11-09",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGetPlayerSummary_PrivateProfileHidesDetails(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"response": map[string]any{
				"players": []map[string]any{{
					"steamid":                  testOtherID,
					"personaname":              "Hidden",
					"communityvisibilitystate": 1,
					"realname":                 "Should Not Appear",
				}},
			},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_player_summary", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Visibility: Private") {
		t.Errorf("output missing visibility line:\n%s", out)
	}
	if strings.Contains(out, "Should Not Appear") {
		t.Errorf("private profile leaked real name:\n%s", out)
	}
}

func TestGetPlayerSummaries_MixedInputs(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"response": map[string]any{
				"players": []map[string]any{
					{"steamid": testOtherID, "personaname": "One", "communityvisibilitystate": 3, "personastate": 0},
				},
			},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_player_summaries", map[string]any{
		"steamids": []any{testOtherID, "not a steam id!!"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Found 1 player(s):") {
		t.Errorf("output missing header:\n%s", out)
	}
	if !strings.Contains(out, "Could not resolve some IDs:") || !strings.Contains(out, "not a steam id!!") {
		t.Errorf("output missing problem section:\n%s", out)
	}
}

func TestResolveVanityURL(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("vanityurl"); got != "gabelogannewell" {
			t.Errorf("vanityurl = %q, want %q", got, "gabelogannewell")
		}
		writeJSON(t, w, map[string]any{
			"response": map[string]any{"success": 1, "steamid": testOwner.String()},
		})
	})
	p := newTestPack(t, srv, false)

	// Pasting the full profile URL works too.
	out, err := invoke(t, p, "resolve_vanity_url", map[string]any{
		"vanity": "https://steamcommunity.com/id/gabelogannewell/",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "SteamID64: "+testOwner.String()) {
		t.Errorf("output missing resolved ID:\n%s", out)
	}
}

func TestResolveVanityURL_NotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"response": map[string]any{"success": 42, "message": "No match"},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "resolve_vanity_url", map[string]any{"vanity": "nobody"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "no such profile") {
		t.Errorf("output = %q, want unresolved message", out)
	}
}

func TestGetFriendList(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"friendslist": map[string]any{
				"friends": []map[string]any{
					{"steamid": "76561198000000002", "friend_since": 1262304000},
					{"steamid": "76561198000000003", "friend_since": 0},
				},
			},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_friend_list", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "(2 friends)") {
		t.Errorf("output missing friend count:\n%s", out)
	}
	if !strings.Contains(out, "friends since 2010-01-01") {
		t.Errorf("output missing friend-since date:\n%s", out)
	}
	if !strings.Contains(out, "friends since unknown") {
		t.Errorf("output missing unknown date fallback:\n%s", out)
	}
}

func TestGetFriendList_Private(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_friend_list", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "friend list is private") {
		t.Errorf("output = %q, want private explanation", out)
	}
}

func TestGetFriendList_LimitTruncates(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		friends := make([]map[string]any, 5)
		for i := range friends {
			friends[i] = map[string]any{"steamid": testOtherID, "friend_since": 1262304000}
		}
		writeJSON(t, w, map[string]any{
			"friendslist": map[string]any{"friends": friends},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_friend_list", map[string]any{"steamid": testOtherID, "limit": 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "... and 3 more friends") {
		t.Errorf("output missing truncation line:\n%s", out)
	}
}

func TestGetPlayerBans(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"players": []map[string]any{{
				"SteamId":          testOtherID,
				"VACBanned":        true,
				"NumberOfVACBans":  2,
				"DaysSinceLastBan": 100,
				"NumberOfGameBans": 0,
				"CommunityBanned":  false,
				"EconomyBan":       "none",
			}},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_player_bans", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{
		"VAC Banned: Yes (2 ban(s), last 100 days ago)",
		"Game Bans: None",
		"Community Banned: No",
		"Trade Ban: none",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGetOwnedGames_SortAndLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("include_appinfo") != "1" {
			t.Errorf("include_appinfo = %q, want 1", q.Get("include_appinfo"))
		}
		if q.Get("include_played_free_games") != "" {
			t.Errorf("include_played_free_games sent without include_free")
		}
		writeJSON(t, w, map[string]any{
			"response": map[string]any{
				"game_count": 3,
				"games": []map[string]any{
					{"appid": 10, "name": "Counter-Strike", "playtime_forever": 120},
					{"appid": 440, "name": "Team Fortress 2", "playtime_forever": 600, "playtime_2weeks": 90},
					{"appid": 570, "name": "Dota 2", "playtime_forever": 30},
				},
			},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_owned_games", map[string]any{"steamid": testOtherID, "limit": 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Total games: 3") {
		t.Errorf("output missing game count:\n%s", out)
	}
	if !strings.Contains(out, "Total playtime: 12.5 hours") {
		t.Errorf("output missing total playtime:\n%s", out)
	}
	// Default sort is by playtime, descending.
	tf2 := strings.Index(out, "Team Fortress 2")
	cs := strings.Index(out, "Counter-Strike")
	if tf2 < 0 || cs < 0 || tf2 > cs {
		t.Errorf("games not sorted by playtime:\n%s", out)
	}
	if strings.Contains(out, "Dota 2") {
		t.Errorf("limit 2 should drop the least played game:\n%s", out)
	}
	if !strings.Contains(out, "... and 1 more games") {
		t.Errorf("output missing truncation line:\n%s", out)
	}
	if !strings.Contains(out, "(recent: 1.5h)") {
		t.Errorf("output missing recent playtime:\n%s", out)
	}
}

func TestGetOwnedGames_RejectsUnknownSort(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	p := newTestPack(t, srv, false)

	tl, _ := p.GetTool("get_owned_games")
	_, err := tl.Params().Validate(map[string]any{"steamid": testOtherID, "sort_by": "alphabetical"})
	if !errors.Is(err, tool.ErrInvalidArguments) {
		t.Errorf("Validate() error = %v, want ErrInvalidArguments", err)
	}
}

func TestGetRecentlyPlayedGames(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "10" {
			t.Errorf("count = %q, want default 10", got)
		}
		writeJSON(t, w, map[string]any{
			"response": map[string]any{
				"total_count": 1,
				"games": []map[string]any{
					{"appid": 440, "name": "Team Fortress 2", "playtime_forever": 600, "playtime_2weeks": 90},
				},
			},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_recently_played_games", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Games played in the last two weeks: 1") {
		t.Errorf("output missing total count:\n%s", out)
	}
	if !strings.Contains(out, "last two weeks: 1.5h, total: 10.0h") {
		t.Errorf("output missing playtime line:\n%s", out)
	}
}

func TestGetSteamLevel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"response": map[string]any{"player_level": 57},
		})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_steam_level", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "57 (Veteran)") {
		t.Errorf("output = %q, want level with tier", out)
	}
}

func TestGetSteamLevel_MissingLevel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"response": map[string]any{}})
	})
	p := newTestPack(t, srv, false)

	out, err := invoke(t, p, "get_steam_level", map[string]any{"steamid": testOtherID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "profile may be private") {
		t.Errorf("output = %q, want private hint", out)
	}
}
