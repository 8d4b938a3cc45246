package hand

// Status is the lifecycle state of a player hand.
type Status string

const (
	StatusActive    Status = "active"
	StatusStand     Status = "stand"
	StatusBust      Status = "bust"
	StatusBlackjack Status = "blackjack"
	StatusSurrender Status = "surrender"
)

// IsDone reports whether the hand takes no further player action.
func (s Status) IsDone() bool {
	return s != StatusActive
}
