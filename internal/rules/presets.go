package rules

// Session defaults shared by every preset.
const (
	DefaultStartingBalance = 25000
	MinBet                 = 25
	MaxBet                 = 5000
)

// Preset identifiers. Custom marks rules edited away from any preset.
const (
	PresetVegasStrip   = "vegas_strip"
	PresetSingleDeck   = "single_deck"
	PresetAtlanticCity = "atlantic_city"
	PresetCustom       = "custom"
)

// Preset is a fixed, named bundle of rules.
type Preset struct {
	ID    string
	Name  string
	Rules Rules
}

// VegasStrip is six decks, S17, 3:2, DAS and late surrender.
func VegasStrip() Rules {
	return Rules{
		DeckCount:        6,
		Penetration:      0.75,
		DealerHitsSoft17: false,
		BlackjackPayout:  1.5,
		DoubleAfterSplit: true,
		LateSurrender:    true,
		MaxSplits:        3,
		ResplitAces:      false,
		HitSplitAces:     false,
		InsuranceAllowed: true,
		DoubleOn:         DoubleAny,
	}
}

// SingleDeck is one deck, H17, 6:5, no DAS, doubling on 10-11 only.
func SingleDeck() Rules {
	return Rules{
		DeckCount:        1,
		Penetration:      0.6,
		DealerHitsSoft17: true,
		BlackjackPayout:  1.2,
		DoubleAfterSplit: false,
		LateSurrender:    false,
		MaxSplits:        1,
		ResplitAces:      false,
		HitSplitAces:     false,
		InsuranceAllowed: true,
		DoubleOn:         DoubleTenToEleven,
	}
}

// AtlanticCity is eight decks, S17, 3:2, DAS and late surrender.
func AtlanticCity() Rules {
	return Rules{
		DeckCount:        8,
		Penetration:      0.7,
		DealerHitsSoft17: false,
		BlackjackPayout:  1.5,
		DoubleAfterSplit: true,
		LateSurrender:    true,
		MaxSplits:        3,
		ResplitAces:      false,
		HitSplitAces:     false,
		InsuranceAllowed: true,
		DoubleOn:         DoubleAny,
	}
}

// Default returns the rules a fresh session starts with.
func Default() Rules {
	return VegasStrip()
}

// Presets returns every named preset in display order.
func Presets() []Preset {
	return []Preset{
		{ID: PresetVegasStrip, Name: "Vegas Strip", Rules: VegasStrip()},
		{ID: PresetSingleDeck, Name: "Single Deck", Rules: SingleDeck()},
		{ID: PresetAtlanticCity, Name: "Atlantic City", Rules: AtlanticCity()},
	}
}

// PresetByID looks up a preset by identifier.
func PresetByID(id string) (Preset, bool) {
	for _, p := range Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// MatchPreset returns the id of the preset equal to r, or PresetCustom.
func MatchPreset(r Rules) string {
	for _, p := range Presets() {
		if p.Rules == r {
			return p.ID
		}
	}
	return PresetCustom
}
