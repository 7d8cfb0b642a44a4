// Package news provides the Steam game news tools.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/steamapi"
)

// Count bounds for one news request.
const (
	defaultCount = 5
	maxCount     = 20
)

// Options wires the pack to its collaborators.
type Options struct {
	Client *steamapi.Client
}

// New creates the steam-news pack.
func New(opts Options) *pack.Pack {
	return pack.NewBuilder("steam-news").
		WithDescription("Steam game news and announcement feeds").
		WithVersion("1.0.0").
		AddTools(newsForAppTool(opts)).
		MustBuild()
}

func newsForAppTool(opts Options) tool.Tool {
	return tool.NewBuilder("get_news_for_app").
		WithDescription("Get news and announcements for a Steam game: patch notes, "+
			"updates, and community posts.").
		WithIntParam("appid", "Steam App ID of the game", true).
		WithIntDefault("count", "News items to retrieve (1-20)", defaultCount).
		WithIntDefault("max_length", "Maximum length of each body excerpt (0 keeps full content)", 300).
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			appID := args.Int("appid")
			count := clamp(args.Int("count"), 1, maxCount)
			maxLength := args.Int("max_length")

			params := url.Values{}
			params.Set("appid", strconv.Itoa(appID))
			params.Set("count", strconv.Itoa(count))
			if maxLength > 0 {
				params.Set("maxlength", strconv.Itoa(maxLength))
			}

			raw, err := opts.Client.Do(ctx, steamapi.Request{
				Interface: "ISteamNews",
				Method:    "GetNewsForApp",
				Version:   2,
				Params:    params,
				CacheTTL:  steamapi.TTLNews,
			})
			if err != nil {
				return "", err
			}

			var envelope struct {
				AppNews struct {
					NewsItems []newsItem `json:"newsitems"`
				} `json:"appnews"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return "", fmt.Errorf("decode news: %w", err)
			}

			items := envelope.AppNews.NewsItems
			if len(items) == 0 {
				return fmt.Sprintf("No news found for App ID %d.", appID), nil
			}

			lines := []string{
				fmt.Sprintf("News for App ID %d (%d article(s)):", appID, len(items)),
				"",
			}
			for _, item := range items {
				lines = append(lines, formatItem(item, maxLength)...)
				lines = append(lines, "")
			}
			return strings.Join(lines, "\n"), nil
		}).
		MustBuild()
}

type newsItem struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Author        string `json:"author"`
	Contents      string `json:"contents"`
	FeedLabel     string `json:"feedlabel"`
	Date          int64  `json:"date"`
	IsExternalURL bool   `json:"is_external_url"`
}

func formatItem(item newsItem, maxLength int) []string {
	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	date := "unknown date"
	if item.Date > 0 {
		date = time.Unix(item.Date, 0).UTC().Format("2006-01-02 15:04")
	}

	author := item.Author
	if author == "" {
		author = "Unknown"
	}

	lines := []string{
		"• " + title,
		fmt.Sprintf("  By: %s | %s", author, date),
	}
	if item.FeedLabel != "" {
		lines = append(lines, "  Source: "+item.FeedLabel)
	}
	if body := excerpt(item.Contents, maxLength); body != "" {
		lines = append(lines, "  "+body)
	}
	if item.URL != "" {
		link := "  Link: " + item.URL
		if item.IsExternalURL {
			link += " [external]"
		}
		lines = append(lines, link)
	}
	return lines
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	bbcodePattern     = regexp.MustCompile(`\[/?[a-zA-Z][^\]]*\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// htmlEntities covers the entities Steam news bodies actually contain.
var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// excerpt strips HTML tags, BBCode, and entity noise from a news body and
// truncates it at a word boundary.
func excerpt(contents string, maxLength int) string {
	clean := htmlTagPattern.ReplaceAllString(contents, " ")
	clean = bbcodePattern.ReplaceAllString(clean, "")
	clean = htmlEntities.Replace(clean)
	clean = strings.TrimSpace(whitespacePattern.ReplaceAllString(clean, " "))

	if maxLength > 0 && len(clean) > maxLength {
		cut := clean[:maxLength]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		clean = cut + "..."
	}
	return clean
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
