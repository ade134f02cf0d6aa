package model

import "fmt"

// Card is an entry of the fixed ranked deck
type Card struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"` // 1-based deck position
}

var suits = []struct{ key, name string }{
	{"oros", "Oros"},
	{"copas", "Copas"},
	{"espadas", "Espadas"},
	{"bastos", "Bastos"},
}

var faces = []struct {
	value int
	name  string
}{
	{1, "As"}, {2, "Dos"}, {3, "Tres"}, {4, "Cuatro"}, {5, "Cinco"},
	{6, "Seis"}, {7, "Siete"}, {10, "Sota"}, {11, "Caballo"}, {12, "Rey"},
}

// Deck is the 40-card Spanish deck in rank order
var Deck = buildDeck()

var deckIndex = func() map[string]Card {
	idx := make(map[string]Card, len(Deck))
	for _, c := range Deck {
		idx[c.ID] = c
	}
	return idx
}()

func buildDeck() []Card {
	deck := make([]Card, 0, len(suits)*len(faces))
	for _, s := range suits {
		for _, f := range faces {
			deck = append(deck, Card{
				ID:   fmt.Sprintf("%s-%d", s.key, f.value),
				Name: fmt.Sprintf("%s de %s", f.name, s.name),
				Rank: len(deck) + 1,
			})
		}
	}
	return deck
}

// CardByID looks up deck metadata
func CardByID(id string) (Card, bool) {
	c, ok := deckIndex[id]
	return c, ok
}
