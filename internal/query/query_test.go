package query

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/toprated/internal/adapters/bgg"
	"github.com/okian/toprated/internal/domain/model"
	"github.com/okian/toprated/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeCatalog struct {
	guilds map[string]*model.Guild
	meta   map[model.GameID]*model.GameMeta
	search map[string]*bgg.SearchResult
	users  map[string]*model.User
}

func (f *fakeCatalog) FetchGuild(_ context.Context, id string) (*model.Guild, error) {
	if g, ok := f.guilds[id]; ok {
		return g, nil
	}
	return nil, bgg.ErrNotFound
}

func (f *fakeCatalog) FetchGame(_ context.Context, id model.GameID) (*model.GameMeta, error) {
	if m, ok := f.meta[id]; ok {
		return m, nil
	}
	return nil, bgg.ErrNotFound
}

func (f *fakeCatalog) SearchGame(_ context.Context, name string) (*bgg.SearchResult, error) {
	if r, ok := f.search[name]; ok {
		return r, nil
	}
	return nil, bgg.ErrNotFound
}

func (f *fakeCatalog) FetchUser(_ context.Context, name string) (*model.User, error) {
	if u, ok := f.users[name]; ok {
		return u, nil
	}
	return nil, bgg.ErrNotFound
}

func testFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		guilds: map[string]*model.Guild{
			"1291": {ID: "1291", Name: "Test Gamers", Manager: "alice", Members: []string{"alice", "bob"}},
		},
		meta: map[model.GameID]*model.GameMeta{
			"13": {
				ID: "13", Name: "Catan", Year: "1995",
				Categories: []string{"Negotiation"},
				Mechanics:  []string{"Dice Rolling", "Trading"},
				MinPlayers: 3, MaxPlayers: 4, PlayingTime: 120,
			},
		},
		search: map[string]*bgg.SearchResult{
			"catan": {ID: "13", Name: "Catan", Year: "1995"},
		},
		users: map[string]*model.User{
			"alice": {
				Name: "alice", UserID: "42", FirstName: "Alice", LastName: "Smith",
				Country: "Netherlands", YearRegistered: "2005",
				Top10: []string{"Catan"}, Hot10: []string{"YINSH"},
			},
		},
	}
}

func TestQueryRun(t *testing.T) {
	Convey("Given a catalog with a game, a user, and a guild", t, func() {
		catalog := testFakeCatalog()
		var out bytes.Buffer

		Convey("a game id lookup prints the game summary", func() {
			err := run(context.Background(), catalog, &Config{GameIDs: []string{"13"}}, &out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Catan (13), published 1995")
			So(out.String(), ShouldContainSubstring, "players: 3-4")
			So(out.String(), ShouldContainSubstring, "categories: Negotiation")
			So(out.String(), ShouldContainSubstring, "mechanics: Dice Rolling, Trading")
		})

		Convey("a game name lookup searches first and then fetches", func() {
			err := run(context.Background(), catalog, &Config{Games: []string{"catan"}}, &out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Catan (13), published 1995")
		})

		Convey("a user lookup prints the profile with top and hot lists", func() {
			err := run(context.Background(), catalog, &Config{Users: []string{"alice"}}, &out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "alice (id 42)")
			So(out.String(), ShouldContainSubstring, "name: Alice Smith")
			So(out.String(), ShouldContainSubstring, "top10: Catan")
			So(out.String(), ShouldContainSubstring, "hot10: YINSH")
		})

		Convey("a guild lookup prints manager and members", func() {
			err := run(context.Background(), catalog, &Config{Guilds: []string{"1291"}}, &out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Test Gamers (guild 1291), 2 members")
			So(out.String(), ShouldContainSubstring, "manager: alice")
			So(out.String(), ShouldContainSubstring, "members: alice, bob")
		})

		Convey("a failed lookup does not stop the remaining ones", func() {
			cfg := &Config{GameIDs: []string{"404", "13"}}

			err := run(context.Background(), catalog, cfg, &out)

			So(err, ShouldNotBeNil)
			So(errors.Is(err, bgg.ErrNotFound), ShouldBeTrue)
			So(out.String(), ShouldContainSubstring, "error: fetch game 404")
			So(out.String(), ShouldContainSubstring, "Catan (13), published 1995")
		})
	})
}

func TestConfigHelpers(t *testing.T) {
	Convey("SplitList splits on commas and trims whitespace", t, func() {
		So(SplitList("a, b ,c"), ShouldResemble, []string{"a", "b", "c"})
		So(SplitList(" , ,"), ShouldBeNil)
		So(SplitList(""), ShouldBeNil)
	})

	Convey("Empty reports whether any lookup is configured", t, func() {
		So((&Config{}).Empty(), ShouldBeTrue)
		So((&Config{Users: []string{"alice"}}).Empty(), ShouldBeFalse)
	})
}
