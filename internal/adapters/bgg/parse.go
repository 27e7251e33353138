package bgg

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/toprated/internal/domain/model"
)

// XML documents as served by the BGG XML API v2. Only the fields the
// tools consume are mapped.

type guildDoc struct {
	XMLName     xml.Name `xml:"guild"`
	ID          string   `xml:"id,attr"`
	Name        string   `xml:"name,attr"`
	Category    string   `xml:"category"`
	Manager     string   `xml:"manager"`
	Description string   `xml:"description"`
	Members     struct {
		Count int `xml:"count,attr"`
		Page  int `xml:"page,attr"`
		List  []struct {
			Name string `xml:"name,attr"`
		} `xml:"member"`
	} `xml:"members"`
}

type collectionDoc struct {
	XMLName    xml.Name `xml:"items"`
	TotalItems int      `xml:"totalitems,attr"`
	Items      []struct {
		ObjectID      string `xml:"objectid,attr"`
		Subtype       string `xml:"subtype,attr"`
		Name          string `xml:"name"`
		YearPublished string `xml:"yearpublished"`
		NumPlays      string `xml:"numplays"`
		Stats         struct {
			Rating struct {
				Value string `xml:"value,attr"`
			} `xml:"rating"`
		} `xml:"stats"`
		Status struct {
			Own       string `xml:"own,attr"`
			WantToBuy string `xml:"wanttobuy,attr"`
		} `xml:"status"`
	} `xml:"item"`
}

type thingDoc struct {
	XMLName xml.Name `xml:"items"`
	Items   []struct {
		ID    string `xml:"id,attr"`
		Type  string `xml:"type,attr"`
		Names []struct {
			Type  string `xml:"type,attr"`
			Value string `xml:"value,attr"`
		} `xml:"name"`
		YearPublished valueAttr `xml:"yearpublished"`
		MinPlayers    valueAttr `xml:"minplayers"`
		MaxPlayers    valueAttr `xml:"maxplayers"`
		PlayingTime   valueAttr `xml:"playingtime"`
		Links         []struct {
			Type  string `xml:"type,attr"`
			Value string `xml:"value,attr"`
		} `xml:"link"`
	} `xml:"item"`
}

type searchDoc struct {
	XMLName xml.Name `xml:"items"`
	Total   int      `xml:"total,attr"`
	Items   []struct {
		ID   string `xml:"id,attr"`
		Type string `xml:"type,attr"`
		Name struct {
			Value string `xml:"value,attr"`
		} `xml:"name"`
		YearPublished valueAttr `xml:"yearpublished"`
	} `xml:"item"`
}

type userDoc struct {
	XMLName        xml.Name  `xml:"user"`
	ID             string    `xml:"id,attr"`
	Name           string    `xml:"name,attr"`
	FirstName      valueAttr `xml:"firstname"`
	LastName       valueAttr `xml:"lastname"`
	YearRegistered valueAttr `xml:"yearregistered"`
	Country        valueAttr `xml:"country"`
	Top            itemList  `xml:"top"`
	Hot            itemList  `xml:"hot"`
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

type itemList struct {
	Items []struct {
		Name string `xml:"name,attr"`
	} `xml:"item"`
}

func (l itemList) names() []string {
	out := make([]string, 0, len(l.Items))
	for _, it := range l.Items {
		out = append(out, it.Name)
	}
	return out
}

// parseCollection converts a collection document into the domain model,
// keeping boardgame items only. A rating of "N/A" (or none at all) maps
// to a nil rating.
func parseCollection(username string, doc *collectionDoc) *model.Collection {
	col := &model.Collection{Username: username}
	for _, it := range doc.Items {
		if it.Subtype != "boardgame" {
			continue
		}
		game := model.RatedGame{
			GameID:    model.GameID(it.ObjectID),
			Name:      it.Name,
			Year:      it.YearPublished,
			Own:       it.Status.Own == "1",
			WantToBuy: it.Status.WantToBuy == "1",
		}
		if n, err := strconv.Atoi(strings.TrimSpace(it.NumPlays)); err == nil {
			game.NumPlays = n
		}
		if v := strings.TrimSpace(it.Stats.Rating.Value); v != "" && v != "N/A" {
			if r, err := strconv.ParseFloat(v, 64); err == nil {
				game.Rating = &r
			}
		}
		col.Games = append(col.Games, game)
	}
	return col
}

// parseThing converts the first item of a thing document into GameMeta.
func parseThing(doc *thingDoc) (*model.GameMeta, error) {
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("%w: empty thing response", ErrNotFound)
	}
	it := doc.Items[0]
	meta := &model.GameMeta{
		ID:   model.GameID(it.ID),
		Year: it.YearPublished.Value,
	}
	for _, n := range it.Names {
		if n.Type == "primary" || meta.Name == "" {
			meta.Name = n.Value
		}
		if n.Type == "primary" {
			break
		}
	}
	meta.MinPlayers = atoiOrZero(it.MinPlayers.Value)
	meta.MaxPlayers = atoiOrZero(it.MaxPlayers.Value)
	meta.PlayingTime = atoiOrZero(it.PlayingTime.Value)
	for _, l := range it.Links {
		switch l.Type {
		case "boardgamecategory":
			meta.Categories = append(meta.Categories, l.Value)
		case "boardgamemechanic":
			meta.Mechanics = append(meta.Mechanics, l.Value)
		}
	}
	return meta, nil
}

// parseGuildPage folds one guild page into the accumulating guild,
// deduplicating member names across pages.
func parseGuildPage(g *model.Guild, seen map[string]bool, doc *guildDoc) {
	if g.Name == "" {
		g.Name = doc.Name
		g.Description = doc.Description
		g.Manager = doc.Manager
	}
	for _, m := range doc.Members.List {
		if m.Name == "" || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		g.Members = append(g.Members, m.Name)
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
