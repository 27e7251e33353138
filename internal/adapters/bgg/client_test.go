package bgg_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/toprated/internal/adapters/bgg"
	"github.com/okian/toprated/internal/domain/model"
	"github.com/okian/toprated/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func newClient(t *testing.T, baseURL string, extra ...bgg.Option) *bgg.Client {
	t.Helper()
	opts := append([]bgg.Option{
		bgg.WithBaseURL(baseURL),
		bgg.WithRateLimit(10_000),
		bgg.WithRetryInterval(time.Millisecond),
		bgg.WithMaxRetries(3),
	}, extra...)
	c, err := bgg.New(opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func guildPage(page, count int, members ...string) string {
	list := ""
	for _, m := range members {
		list += fmt.Sprintf(`<member name=%q/>`, m)
	}
	return fmt.Sprintf(`<guild id="1920" name="Pittsburgh Gamers">
  <manager>geoff</manager>
  <description>Board gamers in Pittsburgh.</description>
  <members count="%d" page="%d">%s</members>
</guild>`, count, page, list)
}

func TestFetchGuild(t *testing.T) {
	Convey("Given a catalog serving a paged guild roster", t, func() {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			if r.URL.Path != "/guild" {
				http.NotFound(w, r)
				return
			}
			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprint(w, guildPage(1, 27, "alice", "bob"))
			case "2":
				// bob repeats across pages; the roster must stay unique.
				fmt.Fprint(w, guildPage(2, 27, "bob", "carol"))
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When fetching the guild", func() {
			g, err := client.FetchGuild(context.Background(), "1920")

			Convey("Then all pages are walked and members deduplicated", func() {
				So(err, ShouldBeNil)
				So(g.Name, ShouldEqual, "Pittsburgh Gamers")
				So(g.Manager, ShouldEqual, "geoff")
				So(g.Members, ShouldResemble, []string{"alice", "bob", "carol"})
				So(requests.Load(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a catalog serving an unapproved guild", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<guild id="999"><members count="0" page="1"/></guild>`)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When fetching the guild", func() {
			g, err := client.FetchGuild(context.Background(), "999")

			Convey("Then it reports not found", func() {
				So(g, ShouldBeNil)
				So(errors.Is(err, bgg.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

const smallCollectionXML = `<items totalitems="2">
  <item objecttype="thing" objectid="13" subtype="boardgame">
    <name sortindex="1">Catan</name>
    <numplays>5</numplays>
    <stats><rating value="8"/></stats>
    <status own="1"/>
  </item>
  <item objecttype="thing" objectid="822" subtype="boardgame">
    <name sortindex="1">Carcassonne</name>
    <stats><rating value="N/A"/></stats>
    <status own="1"/>
  </item>
</items>`

func TestFetchCollection(t *testing.T) {
	Convey("Given a catalog that queues the export before serving it", t, func() {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("stats") != "1" {
				http.Error(w, "stats required", http.StatusBadRequest)
				return
			}
			if requests.Add(1) < 3 {
				w.WriteHeader(http.StatusAccepted)
				fmt.Fprint(w, `<message>Your request for this collection has been accepted</message>`)
				return
			}
			fmt.Fprint(w, smallCollectionXML)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When fetching the collection", func() {
			col, err := client.FetchCollection(context.Background(), "geoff")

			Convey("Then the 202 responses are retried until the export is ready", func() {
				So(err, ShouldBeNil)
				So(requests.Load(), ShouldEqual, 3)
				So(col.Username, ShouldEqual, "geoff")
				So(len(col.Games), ShouldEqual, 2)
				So(*col.Games[0].Rating, ShouldEqual, 8)
				So(col.Games[1].Rating, ShouldBeNil)
			})
		})
	})

	Convey("Given a catalog that never finishes the export", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When fetching the collection", func() {
			col, err := client.FetchCollection(context.Background(), "geoff")

			Convey("Then retries are exhausted and the error surfaces", func() {
				So(col, ShouldBeNil)
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestFetchGame(t *testing.T) {
	Convey("Given a catalog serving game metadata", t, func() {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			fmt.Fprintf(w, `<items><item type="boardgame" id="%s">
  <name type="primary" value="Catan"/>
  <yearpublished value="1995"/>
  <link type="boardgamecategory" value="Negotiation"/>
</item></items>`, r.URL.Query().Get("id"))
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When fetching the same game twice", func() {
			first, err1 := client.FetchGame(context.Background(), "13")
			second, err2 := client.FetchGame(context.Background(), "13")

			Convey("Then metadata is fetched once and memoized", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.Name, ShouldEqual, "Catan")
				So(first.Categories, ShouldResemble, []string{"Negotiation"})
				So(second == first, ShouldBeTrue)
				So(requests.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a catalog with a hard failure", t, func() {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When fetching a game", func() {
			meta, err := client.FetchGame(context.Background(), "404")

			Convey("Then 4xx is permanent and not retried", func() {
				So(meta, ShouldBeNil)
				So(errors.Is(err, bgg.ErrUnavailable), ShouldBeTrue)
				So(requests.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a catalog with a transient failure", t, func() {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if requests.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `<items><item type="boardgame" id="13"><name type="primary" value="Catan"/></item></items>`)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When fetching a game", func() {
			meta, err := client.FetchGame(context.Background(), "13")

			Convey("Then the 5xx is retried", func() {
				So(err, ShouldBeNil)
				So(meta.Name, ShouldEqual, "Catan")
				So(requests.Load(), ShouldEqual, 2)
			})
		})
	})
}

func TestSearchAndUser(t *testing.T) {
	Convey("Given a catalog serving search and user endpoints", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search":
				if r.URL.Query().Get("exact") != "1" {
					http.Error(w, "exact required", http.StatusBadRequest)
					return
				}
				fmt.Fprint(w, `<items total="2">
  <item type="videogame" id="99"><name type="primary" value="Catan"/></item>
  <item type="boardgame" id="13"><name type="primary" value="Catan"/><yearpublished value="1995"/></item>
</items>`)
			case "/user":
				fmt.Fprint(w, `<user id="42" name="geoff">
  <firstname value="Geoff"/><lastname value="Lawler"/>
  <yearregistered value="2003"/><country value="United States"/>
  <top><item name="Yinsh"/><item name="Go"/></top>
  <hot><item name="Catan"/></hot>
</user>`)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		client := newClient(t, srv.URL)

		Convey("When searching for a game by name", func() {
			res, err := client.SearchGame(context.Background(), "Catan")

			Convey("Then the first boardgame hit wins", func() {
				So(err, ShouldBeNil)
				So(res.ID, ShouldEqual, model.GameID("13"))
				So(res.Year, ShouldEqual, "1995")
			})
		})

		Convey("When fetching a user", func() {
			u, err := client.FetchUser(context.Background(), "geoff")

			Convey("Then the profile and lists parse", func() {
				So(err, ShouldBeNil)
				So(u.UserID, ShouldEqual, "42")
				So(u.FirstName, ShouldEqual, "Geoff")
				So(u.Top10, ShouldResemble, []string{"Yinsh", "Go"})
				So(u.Hot10, ShouldResemble, []string{"Catan"})
			})
		})
	})
}

func TestClientCache(t *testing.T) {
	Convey("Given a client with an on-disk cache", t, func() {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, smallCollectionXML)
		}))
		defer srv.Close()

		dir := t.TempDir()

		Convey("When two clients fetch the same collection", func() {
			first := newClient(t, srv.URL, bgg.WithCacheDir(dir))
			col1, err1 := first.FetchCollection(context.Background(), "geoff")

			second := newClient(t, srv.URL, bgg.WithCacheDir(dir))
			col2, err2 := second.FetchCollection(context.Background(), "geoff")

			Convey("Then the second read is served from the cache", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(requests.Load(), ShouldEqual, 1)
				So(col2, ShouldResemble, col1)
			})
		})
	})
}
