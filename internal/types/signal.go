package types

// Signal is the decision a strategy returns for a single bar.
type Signal string

const (
	// SignalBuy opens a long position if capacity allows.
	SignalBuy Signal = "buy"
	// SignalSell closes every open long position at the current bar.
	SignalSell Signal = "sell"
	// SignalShort opens a short position if capacity allows and shorting is enabled.
	SignalShort Signal = "short"
	// SignalCover closes every open short position at the current bar.
	SignalCover Signal = "cover"
	// SignalHold takes no position action. Any unrecognized signal value is
	// treated the same way.
	SignalHold Signal = "hold"
)
