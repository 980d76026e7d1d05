package pipeline

import "github.com/techge/l2pre/internal/wire"

// NormaliseLayout reconciles a symbol's trailing fields against the
// shortest and longest messages actually observed (spec §4.8), after
// every earlier stage has had a chance to schedule its own fields.
func NormaliseLayout(sym *wire.Symbol) error {
	return sym.Layout.AdaptLast(sym.ShortestMessage(), sym.LongestMessage())
}
