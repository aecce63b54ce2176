package maelstrom

import (
	"time"
)

// Every starts a ticker that delivers Tick{Name: name} to the event loop every
// interval. Returns false, and does nothing, if a ticker with that name is
// already running. Tickers stop when Run returns.
//
// Every may be called before Run or from a handler.
func (n *Node) Every(name string, interval time.Duration) bool {
	if _, ok := n.tickers[name]; ok {
		return false
	}
	n.tickers[name] = interval

	ticker := n.Clock.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-n.done:
				return
			case <-ticker.Chan():
				select {
				case n.ticks <- Tick{Name: name}:
				case <-n.done:
					return
				}
			}
		}
	}()

	n.Logger.Debugf("Started ticker %q every %s", name, interval)
	return true
}
