package core

// RiskPosture selects the solvency threshold. Open adds the liquidation buffer on top of Closed,
// so every position solvent under Closed is also solvent under Open.
type RiskPosture uint8

const (
	Closed RiskPosture = iota
	Open
)

func PostureOf(open bool) RiskPosture {
	if open {
		return Open
	}
	return Closed
}

func (rp RiskPosture) String() string {
	switch rp {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	default:
		return "Unknown"
	}
}
