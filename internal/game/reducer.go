package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/payout"
)

// Reduce applies one action and returns the next state. It never mutates
// its input and has no side effects. Actions that are not legal in the
// current state return it unchanged, or with only a message set when the
// caller needs to know why (insufficient balance).
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case PlaceBet:
		return placeBet(s, a)
	case ClearBet:
		if s.Phase != PhaseBetting {
			return s
		}
		s.CurrentBet = 0
		s.Message = MsgPlaceBet
		return s
	case DealInitialCards:
		return dealInitialCards(s, a)
	case TakeInsurance:
		return takeInsurance(s)
	case DeclineInsurance:
		if !InsuranceOffered(s) {
			return s
		}
		s.InsuranceBet = -1
		s.Message = MsgInsuranceDeclined
		return s
	case HitCard:
		return hitCard(s, a)
	case Stand:
		return stand(s)
	case DoubleDownCard:
		return doubleDown(s, a)
	case SplitCards:
		return splitCards(s, a)
	case Surrender:
		return surrender(s)
	case DealerRevealHoleCard:
		return revealHoleCard(s)
	case DealerHitCard:
		return dealerHit(s, a)
	case DealerStand:
		if s.Phase != PhaseDealerTurn || s.Dealer.Stood {
			return s
		}
		s.Dealer.Stood = true
		s.Message = MsgDealerStands
		return s
	case ResolveHands:
		return resolveHands(s, a)
	case CompleteRound:
		return completeRound(s)
	case UpdateCount:
		s.RunningCount += s.System().Tag(a.Card)
		return s
	case ResetCount:
		s.RunningCount = 0
		return s
	case SetCountingSystem:
		if _, err := counting.Lookup(a.System); err != nil {
			return s
		}
		s.CountingSystem = a.System
		s.RunningCount = 0
		return s
	case SetRules:
		s.Rules = a.Rules
		s.PresetID = a.PresetID
		total := a.Rules.DeckCount * deck.CardsPerDeck
		s.Shoe = ShoeCounters{CardsRemaining: total, TotalCards: total}
		s.PenetrationReached = false
		return s
	case UpdateShoeState:
		return withShoe(s, a.Shoe)
	case ShuffleShoe:
		s.Shoe.CardsRemaining = s.Shoe.TotalCards
		s.PenetrationReached = false
		s.RunningCount = 0
		s.Message = MsgShoeShuffled
		return s
	case RecordDecision:
		if a.Correct {
			s.Statistics.CorrectPlays++
		} else {
			s.Statistics.IncorrectPlays++
		}
		return s
	case ToggleStrategyHint:
		s.Display.StrategyHint = !s.Display.StrategyHint
		return s
	case ToggleCountDisplay:
		s.Display.CountDisplay = !s.Display.CountDisplay
		return s
	case ToggleStatsPanel:
		s.Display.StatsPanel = !s.Display.StatsPanel
		return s
	case SetMessage:
		s.Message = a.Message
		return s
	case ResetGame:
		next := InitialState(a.At)
		next.Rules = s.Rules
		next.PresetID = s.PresetID
		next.CountingSystem = s.CountingSystem
		next.Display = s.Display
		total := s.Rules.DeckCount * deck.CardsPerDeck
		next.Shoe = ShoeCounters{CardsRemaining: total, TotalCards: total}
		return next
	case Restore:
		next := a.State.clone()
		if _, err := counting.Lookup(next.CountingSystem); err != nil {
			next.CountingSystem = counting.Default().ID
			next.RunningCount = 0
		}
		return next
	default:
		panic(fmt.Sprintf("game: unhandled action %T", a))
	}
}

func placeBet(s State, a PlaceBet) State {
	if s.Phase != PhaseBetting || a.Amount <= 0 {
		return s
	}
	if a.Amount > s.Balance {
		s.Message = MsgInsufficientBalance
		return s
	}
	s.CurrentBet = a.Amount
	s.Message = MsgBetPlaced
	return s
}

func dealInitialCards(s State, a DealInitialCards) State {
	if s.Phase != PhaseBetting {
		return s
	}
	if s.CurrentBet <= 0 {
		s.Message = MsgPlaceBetFirst
		return s
	}
	if s.CurrentBet > s.Balance {
		s.Message = MsgInsufficientBalance
		return s
	}

	s = s.clone()
	player := []deck.Card{a.Player[0], a.Player[1]}
	blackjack := hand.IsBlackjack(player)

	status := hand.StatusActive
	s.Phase = PhasePlayerTurn
	s.Message = MsgYourTurn
	if blackjack {
		status = hand.StatusBlackjack
		s.Phase = PhaseDealerTurn
		s.Message = MsgBlackjack
	}

	s.Hands = []PlayerHand{{
		ID:     "hand-0",
		Cards:  player,
		Value:  hand.Value(player),
		Bet:    s.CurrentBet,
		Status: status,
	}}
	s.ActiveHandIndex = 0
	s.InsuranceBet = 0
	s.Dealer = DealerHand{
		Cards:          []deck.Card{a.Dealer[0], a.Dealer[1]},
		Value:          a.Dealer[0].Points(),
		HoleCardHidden: true,
	}

	s.Balance -= s.CurrentBet
	s.LastBet = s.CurrentBet
	s.Statistics.TotalWagered += s.CurrentBet
	switch {
	case hand.CanSplit(player):
		s.Statistics.Pairs++
	case hand.IsSoft(player):
		s.Statistics.SoftHands++
	default:
		s.Statistics.HardHands++
	}

	s.RunningCount += s.System().Delta(a.Player[0], a.Dealer[0], a.Player[1])
	return withShoe(s, a.Shoe)
}

func takeInsurance(s State) State {
	if !InsuranceOffered(s) {
		return s
	}
	cost := payout.InsuranceCost(s.CurrentBet)
	if cost > s.Balance {
		s.Message = MsgInsufficientBalance
		return s
	}
	s.InsuranceBet = cost
	s.Balance -= cost
	s.Statistics.InsuranceTaken++
	s.Statistics.TotalWagered += cost
	s.Message = MsgInsuranceTaken
	return s
}

func hitCard(s State, a HitCard) State {
	if !CanHit(s) {
		return s
	}
	s = s.clone()
	h := &s.Hands[s.ActiveHandIndex]
	h.Cards = append(h.Cards, a.Card)
	h.Value = hand.Value(h.Cards)
	s.RunningCount += s.System().Tag(a.Card)
	s.Message = MsgYourTurn

	if h.Value > 21 {
		h.Status = hand.StatusBust
		s = advance(s)
		s.Message = MsgBust
	}
	return withShoe(s, a.Shoe)
}

func stand(s State) State {
	if !CanStand(s) {
		return s
	}
	s = s.clone()
	s.Hands[s.ActiveHandIndex].Status = hand.StatusStand
	s = advance(s)
	if s.Phase == PhaseDealerTurn {
		s.Message = MsgDealerTurn
	} else {
		s.Message = MsgYourTurn
	}
	return s
}

func doubleDown(s State, a DoubleDownCard) State {
	h, ok := activeAndPlaying(s)
	if !ok {
		return s
	}
	if s.Balance < h.Bet {
		s.Message = MsgInsufficientToDouble
		return s
	}
	if !CanDouble(s) {
		return s
	}

	s = s.clone()
	hp := &s.Hands[s.ActiveHandIndex]
	stake := hp.Bet
	hp.Cards = append(hp.Cards, a.Card)
	hp.Value = hand.Value(hp.Cards)
	hp.Bet *= 2
	hp.Doubled = true
	hp.Status = hand.StatusStand
	if hp.Value > 21 {
		hp.Status = hand.StatusBust
	}
	bust := hp.Status == hand.StatusBust

	s.Balance -= stake
	s.Statistics.DoubleDowns++
	s.Statistics.TotalWagered += stake
	s.RunningCount += s.System().Tag(a.Card)

	s = advance(s)
	switch {
	case bust:
		s.Message = MsgBust
	case s.Phase == PhaseDealerTurn:
		s.Message = MsgDealerTurn
	default:
		s.Message = MsgYourTurn
	}
	return withShoe(s, a.Shoe)
}

func splitCards(s State, a SplitCards) State {
	orig, ok := activeAndPlaying(s)
	if !ok || len(orig.Cards) != 2 {
		return s
	}
	if s.Balance < orig.Bet {
		s.Message = MsgInsufficientToSplit
		return s
	}
	if !CanSplit(s) {
		return s
	}

	s = s.clone()
	first := []deck.Card{orig.Cards[0], a.Cards[0]}
	second := []deck.Card{orig.Cards[1], a.Cards[1]}
	halves := []PlayerHand{
		splitHand(orig, "-1", first),
		splitHand(orig, "-2", second),
	}

	// Split aces take one card each unless the table allows hitting them.
	acesLocked := orig.Cards[0].IsAce() && !s.Rules.HitSplitAces
	if acesLocked {
		halves[0].Status = hand.StatusStand
		halves[1].Status = hand.StatusStand
	}

	hands := make([]PlayerHand, 0, len(s.Hands)+1)
	hands = append(hands, s.Hands[:s.ActiveHandIndex]...)
	hands = append(hands, halves...)
	hands = append(hands, s.Hands[s.ActiveHandIndex+1:]...)
	s.Hands = hands

	s.Balance -= orig.Bet
	s.Statistics.SplitsMade++
	s.Statistics.TotalWagered += orig.Bet
	s.RunningCount += s.System().Delta(a.Cards[0], a.Cards[1])
	s.Message = MsgSplitPlayFirstHand

	if acesLocked {
		s.ActiveHandIndex++
		s = advance(s)
		if s.Phase == PhaseDealerTurn {
			s.Message = MsgDealerTurn
		}
	}
	return withShoe(s, a.Shoe)
}

func splitHand(orig PlayerHand, suffix string, cards []deck.Card) PlayerHand {
	return PlayerHand{
		ID:         orig.ID + suffix,
		Cards:      cards,
		Value:      hand.Value(cards),
		Bet:        orig.Bet,
		Status:     hand.StatusActive,
		Split:      true,
		SplitCount: orig.SplitCount + 1,
	}
}

func surrender(s State) State {
	if !CanSurrender(s) {
		return s
	}
	s = s.clone()
	s.Hands[s.ActiveHandIndex].Status = hand.StatusSurrender
	s.Phase = PhaseDealerTurn
	s.Statistics.Surrenders++
	s.Message = MsgSurrendered
	return s
}

func revealHoleCard(s State) State {
	if s.Phase != PhaseDealerTurn || !s.Dealer.HoleCardHidden || len(s.Dealer.Cards) < 2 {
		return s
	}
	s = s.clone()
	s.Dealer.HoleCardHidden = false
	s.Dealer.Value = hand.Value(s.Dealer.Cards)
	s.RunningCount += s.System().Tag(s.Dealer.Cards[1])
	s.Message = MsgDealerRevealsHoleCard
	return s
}

func dealerHit(s State, a DealerHitCard) State {
	if s.Phase != PhaseDealerTurn || s.Dealer.HoleCardHidden {
		return s
	}
	s = s.clone()
	s.Dealer.Cards = append(s.Dealer.Cards, a.Card)
	s.Dealer.Value = hand.Value(s.Dealer.Cards)
	s.RunningCount += s.System().Tag(a.Card)
	s.Message = MsgDealerHits
	if s.Dealer.Value > 21 {
		s.Message = MsgDealerBusts
	}
	return withShoe(s, a.Shoe)
}

func resolveHands(s State, a ResolveHands) State {
	if s.Phase == PhaseResolution && AllHandsSettled(s) {
		return s
	}
	if s.Phase != PhaseDealerTurn || len(s.Hands) == 0 {
		return s
	}

	s = s.clone()
	dealerValue := hand.Value(s.Dealer.Cards)
	dealerBlackjack := hand.IsBlackjack(s.Dealer.Cards)
	s.Dealer.HoleCardHidden = false
	s.Dealer.Value = dealerValue

	total := 0
	st := &s.Statistics
	for i := range s.Hands {
		h := &s.Hands[i]
		settled := payout.Calculate(payout.Hand{Cards: h.Cards, Bet: h.Bet, Status: h.Status}, dealerValue, dealerBlackjack, s.Rules)
		h.Result = settled.Result
		h.Payout = settled.Payout
		total += settled.Payout

		switch settled.Result {
		case payout.ResultWin:
			st.HandsWon++
		case payout.ResultBlackjack:
			st.Blackjacks++
			st.HandsWon++
		case payout.ResultLose, payout.ResultSurrender:
			st.HandsLost++
		case payout.ResultBust:
			st.Busts++
			st.HandsLost++
		case payout.ResultPush:
			st.HandsPushed++
		}

		s.HandHistory = append(s.HandHistory, CompletedHand{
			PlayerCards: formatCards(h.Cards),
			DealerCards: formatCards(s.Dealer.Cards),
			Result:      settled.Result,
			Payout:      settled.Payout,
			Timestamp:   a.At,
		})
	}
	total += payout.InsurancePayout(s.InsuranceBet, dealerBlackjack)

	s.Balance += total
	st.HandsPlayed++
	st.TotalWon += total
	st.CurrentBalance = s.Balance
	st.NetProfit = s.Balance - st.StartingBalance

	s.BalanceHistory = append(s.BalanceHistory, BalanceSnapshot{
		Balance:    s.Balance,
		Timestamp:  a.At,
		HandNumber: st.HandsPlayed,
	})
	if n := len(s.BalanceHistory); n > BalanceHistorySize {
		s.BalanceHistory = s.BalanceHistory[n-BalanceHistorySize:]
	}
	if n := len(s.HandHistory); n > HandHistorySize {
		s.HandHistory = s.HandHistory[n-HandHistorySize:]
	}

	s.Phase = PhaseResolution
	s.Message = MsgRoundComplete
	return s
}

func completeRound(s State) State {
	if s.Phase != PhaseResolution {
		return s
	}
	s = s.clone()
	s.Phase = PhaseBetting
	s.Hands = nil
	s.Dealer = DealerHand{}
	s.CurrentBet = s.LastBet
	s.ActiveHandIndex = 0
	s.InsuranceBet = 0
	s.Message = MsgPlaceNextBet
	if s.Balance <= 0 {
		s.Phase = PhaseGameOver
	}
	return s
}

// advance moves play to the next hand, or to the dealer when none remain.
func advance(s State) State {
	next := s.ActiveHandIndex + 1
	if next >= len(s.Hands) {
		s.Phase = PhaseDealerTurn
		return s
	}
	s.ActiveHandIndex = next
	if s.Hands[next].Status.IsDone() {
		return advance(s)
	}
	return s
}

func withShoe(s State, shoe ShoeCounters) State {
	s.Shoe = shoe
	s.PenetrationReached = false
	if shoe.TotalCards > 0 {
		s.PenetrationReached = float64(shoe.CardsRemaining)/float64(shoe.TotalCards) <= 1-s.Rules.Penetration
	}
	return s
}

func formatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
