package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/payout"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/statistics"
)

const sidebarWidth = 34

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	tableWidth := max(m.width-sidebarWidth-4, 20)
	tablePane := paneStyle.Width(tableWidth).Render(m.renderTable())
	sidebar := paneStyle.Width(sidebarWidth - 2).Render(m.renderSidebar())
	top := lipgloss.JoinHorizontal(lipgloss.Top, tablePane, sidebar)
	helpView := m.help.View(m.keys)

	m.logView.Width = max(m.width-4, 1)
	m.logView.Height = max(m.height-lipgloss.Height(header)-lipgloss.Height(top)-lipgloss.Height(helpView)-2, 3)
	logPane := paneStyle.Width(m.width - 2).Render(m.logView.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, top, logPane, helpView)
}

func (m *Model) renderHeader() string {
	gs := m.state
	name := "Custom"
	if p, ok := rules.PresetByID(gs.PresetID); ok {
		name = p.Name
	}
	h17 := "S17"
	if gs.Rules.DealerHitsSoft17 {
		h17 = "H17"
	}
	summary := fmt.Sprintf("%s · %d decks · %s · BJ pays %s · house edge %s",
		name, gs.Rules.DeckCount, h17, gs.Rules.PayoutLabel(), rules.FormatEdge(rules.HouseEdge(gs.Rules)))
	return HeaderStyle.Render("♠ ♥ Blackjack ♦ ♣") + " " + LabelStyle.Render(summary)
}

func (m *Model) renderTable() string {
	gs := m.state
	var b strings.Builder

	b.WriteString(LabelStyle.Render("Dealer  "))
	b.WriteString(renderDealer(gs.Dealer))
	b.WriteString("\n\n")

	if len(gs.Hands) == 0 {
		b.WriteString(InfoStyle.Render("No cards dealt"))
		b.WriteString("\n")
	}
	for i, h := range gs.Hands {
		active := gs.Phase == game.PhasePlayerTurn && i == gs.ActiveHandIndex && h.Status == hand.StatusActive
		b.WriteString(renderHand(i, len(gs.Hands), h, active))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s $%d   %s $%d",
		LabelStyle.Render("Balance"), gs.Balance, LabelStyle.Render("Bet"), gs.CurrentBet))
	if gs.InsuranceBet > 0 {
		b.WriteString(fmt.Sprintf("   %s $%d", LabelStyle.Render("Insurance"), gs.InsuranceBet))
	}
	b.WriteString("\n")
	b.WriteString(HandInfoStyle.Render(m.statusLine(gs)))
	b.WriteString("\n")

	if prompt := m.renderPrompt(); prompt != "" {
		b.WriteString(prompt)
		b.WriteString("\n")
	}
	if hint := m.renderHint(); hint != "" {
		b.WriteString(hint)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderPrompt shows what the player can do now.
func (m *Model) renderPrompt() string {
	gs := m.state
	if m.ai.Enabled {
		return ""
	}
	switch gs.Phase {
	case game.PhaseBetting:
		return m.betInput.View() + InfoStyle.Render("  enter to deal")
	case game.PhaseResolution:
		return ActionsStyle.Render("enter for the next round")
	case game.PhaseGameOver:
		return ErrorStyle.Render("enter to start a new session")
	}
	if game.InsuranceOffered(gs) {
		return ActionsStyle.Render(fmt.Sprintf("Insurance for $%d? [y] [n]", payout.InsuranceCost(gs.CurrentBet)))
	}

	var actions []string
	if game.CanHit(gs) {
		actions = append(actions, SuccessStyle.Render("[h]it"))
	}
	if game.CanStand(gs) {
		actions = append(actions, SuccessStyle.Render("[s]tand"))
	}
	if game.CanDouble(gs) {
		actions = append(actions, WarningStyle.Render("[d]ouble"))
	}
	if game.CanSplit(gs) {
		actions = append(actions, WarningStyle.Render("s[p]lit"))
	}
	if game.CanSurrender(gs) {
		actions = append(actions, ErrorStyle.Render("su[r]render"))
	}
	if len(actions) == 0 {
		return ""
	}
	return ActionsStyle.Render("Actions: ") + strings.Join(actions, " ")
}

func (m *Model) renderHint() string {
	gs := m.state
	if !gs.Display.StrategyHint || m.ai.Enabled {
		return ""
	}
	if game.InsuranceOffered(gs) {
		advisor, err := m.advisorFor(gs)
		if err != nil {
			return ""
		}
		d := advisor.Insurance(gs.EffectiveCount(), payout.InsuranceCost(gs.CurrentBet), gs.Balance)
		return WarningStyle.Render("Hint: ") + Reasoning(d.Reasoning)
	}
	d, ok := m.recommend(gs)
	if !ok || gs.Phase != game.PhasePlayerTurn {
		return ""
	}
	hint := WarningStyle.Render("Hint: "+Text(string(d.Action), nil)) + " " + InfoStyle.Render(Reasoning(d.Reasoning))
	if code, ok := m.chartCell(gs); ok {
		hint += " " + InfoStyle.Render(Text("hint.chart", map[string]any{"code": string(code)}))
	}
	return hint
}

func (m *Model) renderSidebar() string {
	gs := m.state
	var sections []string

	if gs.Display.CountDisplay {
		sections = append(sections, renderCount(gs))
	}
	if gs.Display.StatsPanel {
		sections = append(sections, renderStats(gs))
	}
	sections = append(sections, m.renderAI())
	return strings.Join(sections, "\n\n")
}

func renderCount(gs game.State) string {
	system := gs.System()
	lines := []string{
		HandInfoStyle.Render("Count · " + system.Name),
		fmt.Sprintf("Running   %+d", gs.RunningCount),
		fmt.Sprintf("True      %+.1f", gs.TrueCount()),
		fmt.Sprintf("Effective %+.1f", gs.EffectiveCount()),
		fmt.Sprintf("Shoe      %d/%d (%.1f decks)", gs.Shoe.CardsRemaining, gs.Shoe.TotalCards, gs.Shoe.DecksRemaining()),
		fmt.Sprintf("Edge      %s", rules.FormatEdge(rules.CountAdvantage(gs.Rules, gs.EffectiveCount()))),
	}
	if gs.PenetrationReached {
		lines = append(lines, WarningStyle.Render("Cut card reached"))
	}
	return strings.Join(lines, "\n")
}

func renderStats(gs game.State) string {
	s := gs.Statistics
	rtp := statistics.CalculateRTP(s)
	lines := []string{
		HandInfoStyle.Render("Statistics"),
		fmt.Sprintf("Hands     %d (%d/%d/%d)", s.HandsPlayed, s.HandsWon, s.HandsLost, s.HandsPushed),
		fmt.Sprintf("Blackjack %d  Bust %d", s.Blackjacks, s.Busts),
		fmt.Sprintf("Net       %+d", s.NetProfit),
		fmt.Sprintf("Wagered   $%d", s.TotalWagered),
	}
	if rtp.Category() != statistics.CategoryUnknown {
		diff, perf := statistics.CompareRTP(rtp.RTP, rules.HouseEdge(gs.Rules))
		lines = append(lines,
			fmt.Sprintf("RTP       %.2f%% (%s)", rtp.RTP, rtp.Category()),
			fmt.Sprintf("vs rules  %+.2f (%s)", diff, perf),
		)
	}
	if plays := s.CorrectPlays + s.IncorrectPlays; plays > 0 {
		lines = append(lines, fmt.Sprintf("Accuracy  %.0f%% of %d", float64(s.CorrectPlays)/float64(plays)*100, plays))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderAI() string {
	st := m.ai
	status := InfoStyle.Render("off")
	switch {
	case st.Active():
		status = SuccessStyle.Render("playing")
	case st.Enabled:
		status = WarningStyle.Render("paused")
	}

	lines := []string{
		HandInfoStyle.Render("AI ") + status,
		fmt.Sprintf("Speed     %s", st.Speed),
	}
	if st.Enabled {
		lines = append(lines, fmt.Sprintf("Phase     %s", st.Phase))
	}
	if st.Statistics.RoundsPlayed > 0 {
		lines = append(lines,
			fmt.Sprintf("Rounds    %d", st.Statistics.RoundsPlayed),
			fmt.Sprintf("Decisions %d", st.Statistics.DecisionsMade),
			fmt.Sprintf("Avg bet   $%.0f", st.Statistics.AvgBet),
		)
	}
	if st.Decision != nil && st.Enabled {
		lines = append(lines, InfoStyle.Render(Reasoning(st.Decision.Reasoning)))
	}
	if st.Err != "" {
		lines = append(lines, ErrorStyle.Render(Text(st.Err, nil)))
	}
	return strings.Join(lines, "\n")
}

// statusLine renders the game's latest status message.
func (m *Model) statusLine(gs game.State) string {
	if gs.Message == "" {
		return ""
	}
	return Text(string(gs.Message), nil)
}

func renderDealer(d game.DealerHand) string {
	if len(d.Cards) == 0 {
		return InfoStyle.Render("waiting")
	}
	cards := formatCards(d.Cards, d.HoleCardHidden)
	if d.HoleCardHidden {
		return cards + " " + LabelStyle.Render(fmt.Sprintf("showing %d", d.Value))
	}
	return cards + " " + HandInfoStyle.Render(Describe(hand.Describe(d.Cards)))
}

func renderHand(i, n int, h game.PlayerHand, active bool) string {
	label := "You"
	if n > 1 {
		label = fmt.Sprintf("Hand %d", i+1)
	}
	label = fmt.Sprintf("%-7s ", label)
	if active {
		label = ActiveHandStyle.Render("▶ " + label)
	} else {
		label = LabelStyle.Render("  " + label)
	}

	line := label + formatCards(h.Cards, false) + " " + HandInfoStyle.Render(Describe(hand.Describe(h.Cards)))
	line += LabelStyle.Render(fmt.Sprintf("  $%d", h.Bet))
	if h.Doubled {
		line += WarningStyle.Render(" doubled")
	}
	if h.Settled() {
		line += " " + renderResult(h)
	}
	return line
}

// resultLine is the log entry for a settled hand.
func resultLine(i, n int, h game.PlayerHand) string {
	label := "You"
	if n > 1 {
		label = fmt.Sprintf("Hand %d", i+1)
	}
	return fmt.Sprintf("%s %s %s", label, formatCards(h.Cards, false), renderResult(h))
}

func renderResult(h game.PlayerHand) string {
	net := h.Payout - h.Bet
	text := fmt.Sprintf("%s %+d", h.Result, net)
	switch h.Result {
	case payout.ResultWin, payout.ResultBlackjack:
		return SuccessStyle.Render(text)
	case payout.ResultPush, payout.ResultSurrender:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

// formatCards renders cards in suit colours, optionally hiding the second.
func formatCards(cards []deck.Card, hideSecond bool) string {
	formatted := make([]string, 0, len(cards))
	for i, card := range cards {
		switch {
		case hideSecond && i == 1:
			formatted = append(formatted, HiddenCardStyle.Render("??"))
		case card.IsRed():
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		default:
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
