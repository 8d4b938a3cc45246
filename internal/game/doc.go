// Package game implements the blackjack round state machine.
//
// The state is a plain value. Reduce is the only function that produces a
// new one:
//
//	s := game.InitialState(time.Now())
//	s = game.Reduce(s, game.PlaceBet{Amount: 100})
//
// Actions form a closed set; Reduce panics on a type it does not know, so
// a missing case is found by the first test that sends it.
//
// # Phases
//
//	betting -> player_turn -> dealer_turn -> resolution -> betting
//
// A natural blackjack skips player_turn. A round that leaves the balance
// empty ends in game_over.
//
// # Table
//
// Table owns the shoe and sequences the actions a round needs: it draws
// the cards, packages them with the shoe counters into one compound action
// and reduces it, so the hand, the running count and the penetration flag
// always move together. The dealer plays through DealerStep, one reducer
// action per call, so a front end can pace the dealer without blocking:
//
//	t := game.NewTable(randutil.NewCrypto(), game.InitialState(time.Now()))
//	t.PlaceBet(100)
//	t.Deal()
//	for s := t.State(); game.CanHit(s); s = t.State() {
//	    if h, _ := s.ActiveHand(); h.Value >= 17 {
//	        t.Stand()
//	        continue
//	    }
//	    t.Hit()
//	}
//	t.PlayDealer()
//
// # Legality
//
// CanHit, CanDouble, CanSplit, CanSurrender and InsuranceOffered decide
// what the player may do. The AI, the simulator and the terminal front end
// all call them, so a disabled button and a skipped AI option are always
// the same rule.
package game
