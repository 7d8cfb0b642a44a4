package pack_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/steam-mcp/domain/pack"
	"github.com/felixgeelhaar/steam-mcp/domain/tool"
)

func namedTool(t *testing.T, name string) tool.Tool {
	t.Helper()
	return tool.NewBuilder(name).
		WithDescription("test tool").
		WithHandler(func(ctx context.Context, args tool.Args) (string, error) {
			return name, nil
		}).
		MustBuild()
}

// recordingRegistry captures registrations and can be primed to fail.
type recordingRegistry struct {
	tool.Registry
	registered []string
	failOn     string
}

func (r *recordingRegistry) Register(t tool.Tool) error {
	if t.Name() == r.failOn {
		return tool.ErrDuplicateName
	}
	r.registered = append(r.registered, t.Name())
	return nil
}

func TestPackBuilder(t *testing.T) {
	t.Parallel()

	t.Run("builds a valid pack", func(t *testing.T) {
		t.Parallel()

		p, err := pack.NewBuilder("steam-player").
			WithVersion("1.0.0").
			WithDescription("Player profile tools").
			AddTool(namedTool(t, "get_player_summary")).
			AddTool(namedTool(t, "get_owned_games")).
			Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		if p.Name != "steam-player" {
			t.Errorf("Name = %q", p.Name)
		}
		names := p.ToolNames()
		if len(names) != 2 || names[0] != "get_player_summary" || names[1] != "get_owned_games" {
			t.Errorf("ToolNames() = %v", names)
		}
		if _, ok := p.GetTool("get_owned_games"); !ok {
			t.Error("GetTool(get_owned_games) not found")
		}
		if _, ok := p.GetTool("absent"); ok {
			t.Error("GetTool(absent) found")
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		_, err := pack.NewBuilder("").WithVersion("1.0.0").Build()
		if !errors.Is(err, pack.ErrInvalidPack) {
			t.Errorf("Build() error = %v, want ErrInvalidPack", err)
		}
	})

	t.Run("rejects missing version", func(t *testing.T) {
		t.Parallel()

		_, err := pack.NewBuilder("steam-player").Build()
		if !errors.Is(err, pack.ErrInvalidPack) {
			t.Errorf("Build() error = %v, want ErrInvalidPack", err)
		}
	})

	t.Run("rejects duplicate tool names", func(t *testing.T) {
		t.Parallel()

		_, err := pack.NewBuilder("steam-player").
			WithVersion("1.0.0").
			AddTools(namedTool(t, "get_player_summary"), namedTool(t, "get_player_summary")).
			Build()
		if !errors.Is(err, pack.ErrInvalidPack) {
			t.Errorf("Build() error = %v, want ErrInvalidPack", err)
		}
	})

	t.Run("rejects nil tool", func(t *testing.T) {
		t.Parallel()

		_, err := pack.NewBuilder("steam-player").
			WithVersion("1.0.0").
			AddTool(nil).
			Build()
		if !errors.Is(err, pack.ErrInvalidPack) {
			t.Errorf("Build() error = %v, want ErrInvalidPack", err)
		}
	})
}

func TestPackInstall(t *testing.T) {
	t.Parallel()

	t.Run("registers every tool", func(t *testing.T) {
		t.Parallel()

		p := pack.NewBuilder("steam-news").
			WithVersion("1.0.0").
			AddTools(namedTool(t, "get_news_for_app")).
			MustBuild()

		reg := &recordingRegistry{}
		if err := p.Install(reg); err != nil {
			t.Fatalf("Install() error = %v", err)
		}
		if len(reg.registered) != 1 || reg.registered[0] != "get_news_for_app" {
			t.Errorf("registered = %v", reg.registered)
		}
	})

	t.Run("first failure aborts and names the tool", func(t *testing.T) {
		t.Parallel()

		p := pack.NewBuilder("steam-stats").
			WithVersion("1.0.0").
			AddTools(
				namedTool(t, "get_game_schema"),
				namedTool(t, "get_player_achievements"),
				namedTool(t, "get_user_stats_for_game"),
			).
			MustBuild()

		reg := &recordingRegistry{failOn: "get_player_achievements"}
		err := p.Install(reg)
		if !errors.Is(err, tool.ErrDuplicateName) {
			t.Fatalf("Install() error = %v, want ErrDuplicateName", err)
		}
		if len(reg.registered) != 1 {
			t.Errorf("registered = %v, want only the first tool", reg.registered)
		}
	})

	t.Run("InstallAll spans packs", func(t *testing.T) {
		t.Parallel()

		one := pack.NewBuilder("steam-apps").
			WithVersion("1.0.0").
			AddTool(namedTool(t, "get_app_details")).
			MustBuild()
		two := pack.NewBuilder("steam-news").
			WithVersion("1.0.0").
			AddTool(namedTool(t, "get_news_for_app")).
			MustBuild()

		reg := &recordingRegistry{}
		if err := pack.InstallAll(reg, one, two); err != nil {
			t.Fatalf("InstallAll() error = %v", err)
		}
		if len(reg.registered) != 2 {
			t.Errorf("registered = %v", reg.registered)
		}
	})
}
