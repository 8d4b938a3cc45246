package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/payout"
)

// The predicates below are the only place action legality is decided. The
// terminal front end, the AI control loop and the simulator all call them.

func activeAndPlaying(s State) (PlayerHand, bool) {
	if s.Phase != PhasePlayerTurn {
		return PlayerHand{}, false
	}
	h, ok := s.ActiveHand()
	if !ok || h.Status != hand.StatusActive {
		return PlayerHand{}, false
	}
	return h, true
}

// CanHit reports whether the active hand may take a card.
func CanHit(s State) bool {
	_, ok := activeAndPlaying(s)
	return ok
}

// CanStand reports whether the active hand may stand.
func CanStand(s State) bool {
	_, ok := activeAndPlaying(s)
	return ok
}

// CanDouble reports whether the active hand may double down.
func CanDouble(s State) bool {
	h, ok := activeAndPlaying(s)
	if !ok || len(h.Cards) != 2 || s.Balance < h.Bet {
		return false
	}
	if h.Split && !s.Rules.DoubleAfterSplit {
		return false
	}
	return s.Rules.DoubleOn.Allows(h.Value)
}

// CanSplit reports whether the active hand may split.
func CanSplit(s State) bool {
	h, ok := activeAndPlaying(s)
	if !ok || !hand.CanSplit(h.Cards) || s.Balance < h.Bet {
		return false
	}
	if len(s.Hands) >= s.Rules.MaxHands() {
		return false
	}
	if h.Split && h.Cards[0].IsAce() && !s.Rules.ResplitAces {
		return false
	}
	return true
}

// CanSurrender reports whether late surrender is available: first two
// cards of an unsplit hand.
func CanSurrender(s State) bool {
	h, ok := activeAndPlaying(s)
	if !ok || !s.Rules.LateSurrender {
		return false
	}
	return len(h.Cards) == 2 && s.ActiveHandIndex == 0 && len(s.Hands) == 1
}

// InsuranceOffered reports whether insurance is open: an Ace showing, the
// player not yet acted on the initial deal, and no decision recorded.
func InsuranceOffered(s State) bool {
	if !s.Rules.InsuranceAllowed || s.InsuranceBet != 0 || !s.Dealer.HoleCardHidden {
		return false
	}
	if s.Phase != PhasePlayerTurn && s.Phase != PhaseDealerTurn {
		return false
	}
	up, ok := s.Dealer.UpCard()
	if !ok || up.Rank != deck.Ace {
		return false
	}
	return len(s.Hands) == 1 && len(s.Hands[0].Cards) == 2 && !s.Hands[0].Doubled
}

// CanAffordInsurance reports whether the balance covers the insurance cost.
func CanAffordInsurance(s State) bool {
	return s.Balance >= payout.InsuranceCost(s.CurrentBet)
}

// CanDeal reports whether a bet is placed and covered.
func CanDeal(s State) bool {
	return s.Phase == PhaseBetting && s.CurrentBet > 0 && s.CurrentBet <= s.Balance
}

// AllHandsDone reports whether every player hand has finished acting.
func AllHandsDone(s State) bool {
	if len(s.Hands) == 0 {
		return false
	}
	for _, h := range s.Hands {
		if !h.Status.IsDone() {
			return false
		}
	}
	return true
}

// AllHandsSettled reports whether resolution has run for every hand.
func AllHandsSettled(s State) bool {
	if len(s.Hands) == 0 {
		return false
	}
	for _, h := range s.Hands {
		if !h.Settled() {
			return false
		}
	}
	return true
}

// DealerNeedsCards reports whether the dealer must draw, which only matters
// when some player hand is still live.
func DealerNeedsCards(s State) bool {
	if s.Phase != PhaseDealerTurn || s.Dealer.HoleCardHidden {
		return false
	}
	live := false
	for _, h := range s.Hands {
		if h.Status == hand.StatusStand || h.Status == hand.StatusActive {
			live = true
			break
		}
	}
	return live && DealerShouldHit(s.Dealer.Cards, s.Rules)
}
