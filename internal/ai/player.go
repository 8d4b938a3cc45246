package ai

import (
	"strconv"

	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/strategy"
)

// Bet spread: units of the minimum bet by effective count.
var betLadder = []struct {
	below float64
	units int
}{
	{1, 1},
	{2, 2},
	{3, 4},
	{4, 8},
}

const maxUnits = 12

// CalculateBet sizes a wager from the effective count, clamped to the
// table limits and then to the balance.
func CalculateBet(balance int, effectiveCount float64, minBet, maxBet int) BetDecision {
	units := maxUnits
	for _, step := range betLadder {
		if effectiveCount < step.below {
			units = step.units
			break
		}
	}

	amount := max(minBet, min(minBet*units, maxBet))
	if balance < amount {
		amount = max(minBet, min(balance, maxBet))
	}

	desc := KeyBetNeutral
	switch {
	case effectiveCount >= 2:
		desc = KeyBetFavorable
	case effectiveCount <= 0:
		desc = KeyBetUnfavorable
	}

	return BetDecision{
		Amount: amount,
		Units:  units,
		Reasoning: Reasoning{
			Key: KeyBetTemplate,
			Params: map[string]any{
				"trueCount": formatCount(effectiveCount),
				"countDesc": desc,
				"units":     units,
				"betAmount": amount,
			},
		},
	}
}

// DecideInsurance takes insurance at or above the system's insurance index
// when the balance covers it.
func DecideInsurance(effectiveCount, insuranceIndex float64, maxInsurance, balance int) InsuranceDecision {
	params := map[string]any{"trueCount": formatCount(effectiveCount)}

	if !counting.ShouldTakeInsurance(effectiveCount, insuranceIndex) {
		return InsuranceDecision{
			Action:    ActionDeclineInsurance,
			Reasoning: Reasoning{Key: KeyInsuranceDecline, Params: params},
		}
	}
	if balance < maxInsurance {
		return InsuranceDecision{
			Action:    ActionDeclineInsurance,
			Reasoning: Reasoning{Key: KeyInsuranceNoFunds, Params: params},
		}
	}
	return InsuranceDecision{
		Action:    ActionTakeInsurance,
		Amount:    maxInsurance,
		Reasoning: Reasoning{Key: KeyInsuranceTake, Params: params},
	}
}

// Situation is what the player sees when choosing a play.
type Situation struct {
	Cards        []deck.Card
	DealerUp     deck.Card
	CanDouble    bool
	CanSplit     bool
	CanSurrender bool

	// Counted enables deviations at EffectiveCount.
	Counted        bool
	EffectiveCount float64
}

// SituationFor reads the active hand of a game state, with the options
// decided by the game predicates.
func SituationFor(s game.State, counted bool) (Situation, bool) {
	h, ok := s.ActiveHand()
	if !ok {
		return Situation{}, false
	}
	up, ok := s.Dealer.UpCard()
	if !ok {
		return Situation{}, false
	}
	return Situation{
		Cards:          h.Cards,
		DealerUp:       up,
		CanDouble:      game.CanDouble(s),
		CanSplit:       game.CanSplit(s),
		CanSurrender:   game.CanSurrender(s),
		Counted:        counted,
		EffectiveCount: s.EffectiveCount(),
	}, true
}

// Player combines basic strategy with the deviation set of one counting
// system.
type Player struct {
	engine   *strategy.Engine
	resolver *counting.Resolver
	system   counting.System
}

// New builds a player from a strategy engine and a resolver. The resolver
// fixes the counting system.
func New(engine *strategy.Engine, resolver *counting.Resolver) *Player {
	if engine == nil || resolver == nil {
		panic("engine and resolver are required")
	}
	return &Player{
		engine:   engine,
		resolver: resolver,
		system:   counting.MustLookup(resolver.StrategySet().System),
	}
}

// ForTable builds a player for the rules and counting system.
func ForTable(r rules.Rules, id counting.SystemID) (*Player, error) {
	resolver, err := counting.ResolverFor(id)
	if err != nil {
		return nil, err
	}
	return New(strategy.New(r), resolver), nil
}

// System returns the counting system the player's deviations belong to.
func (p *Player) System() counting.System {
	return p.system
}

// Engine returns the basic-strategy engine.
func (p *Player) Engine() *strategy.Engine {
	return p.engine
}

// Insurance decides an insurance offer with the system's index.
func (p *Player) Insurance(effectiveCount float64, maxInsurance, balance int) InsuranceDecision {
	return DecideInsurance(effectiveCount, p.system.InsuranceIndex, maxInsurance, balance)
}

// DecideAction chooses the play for a hand. When the situation is counted
// and a deviation triggers whose action is available, the deviation
// replaces basic strategy.
func (p *Player) DecideAction(sit Situation) ActionDecision {
	basic := p.engine.OptimalAction(sit.Cards, sit.DealerUp, sit.CanDouble, sit.CanSplit, sit.CanSurrender)
	code := basic

	var (
		deviation counting.Deviation
		deviated  bool
	)
	if sit.Counted {
		d, ok := p.resolver.FindDeviation(counting.QueryFor(sit.Cards, sit.DealerUp))
		if ok && counting.ShouldDeviate(d, sit.EffectiveCount) && available(d.Action, sit) {
			code = d.Action
			deviation = d
			deviated = code != basic
		}
	}

	action := p.toAction(code, sit)
	reasoning := actionReasoning(sit, code, action)
	if deviated {
		key, params := deviation.DescriptionKey()
		reasoning = Reasoning{
			Key: KeyActionDeviation,
			Params: map[string]any{
				"baseReasoning":        reasoning,
				"trueCount":            formatCount(sit.EffectiveCount),
				"deviationDescription": Reasoning{Key: key, Params: params},
			},
		}
	}

	return ActionDecision{
		Action:    action,
		Code:      code,
		Basic:     basic,
		Deviated:  deviated,
		Reasoning: reasoning,
	}
}

func available(code strategy.Code, sit Situation) bool {
	switch {
	case code.IsDouble():
		return sit.CanDouble
	case code == strategy.Split:
		return sit.CanSplit
	case code == strategy.Surrender:
		return sit.CanSurrender
	default:
		return true
	}
}

func (p *Player) toAction(code strategy.Code, sit Situation) Action {
	switch {
	case code == strategy.Hit:
		return ActionHit
	case code == strategy.Stand:
		return ActionStand
	case code.IsDouble():
		if sit.CanDouble {
			return ActionDoubleDown
		}
		if code == strategy.DoubleOrStand {
			return ActionStand
		}
		return ActionHit
	case code == strategy.Split:
		if sit.CanSplit {
			return ActionSplit
		}
		// Play the pair as an ordinary total.
		sit.CanSplit = false
		return p.toAction(p.engine.OptimalAction(sit.Cards, sit.DealerUp, sit.CanDouble, false, sit.CanSurrender), sit)
	case code == strategy.Surrender:
		if sit.CanSurrender {
			return ActionSurrender
		}
		sit.CanSurrender = false
		return p.toAction(p.engine.OptimalAction(sit.Cards, sit.DealerUp, sit.CanDouble, sit.CanSplit, false), sit)
	default:
		return ActionStand
	}
}

func actionReasoning(sit Situation, code strategy.Code, action Action) Reasoning {
	handType := KeyHandHard
	if hand.IsSoft(sit.Cards) {
		handType = KeyHandSoft
	}
	return Reasoning{
		Key: KeyActionTemplate,
		Params: map[string]any{
			"handType":     handType,
			"handValue":    hand.Value(sit.Cards),
			"dealerValue":  dealerDisplay(sit.DealerUp),
			"strategyCode": string(code),
			"action":       string(action),
		},
	}
}

func dealerDisplay(c deck.Card) string {
	if c.IsAce() {
		return "A"
	}
	return strconv.Itoa(c.Points())
}
