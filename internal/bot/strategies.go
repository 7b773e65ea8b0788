package bot

import "math/rand"

// CautiousBot never buys.
type CautiousBot struct{}

func (CautiousBot) ShouldBuy(Offer) bool { return false }

// GreedyBot buys every tile it can afford.
type GreedyBot struct{}

func (GreedyBot) ShouldBuy(o Offer) bool {
	return o.Price > 0 && o.Price <= o.Balance
}

// CarefulBot buys while it can keep Tuning.Reserve in hand, and grabs the
// last few free tiles whatever the cost.
type CarefulBot struct {
	Tuning Tuning
}

func (b CarefulBot) ShouldBuy(o Offer) bool {
	if o.Price <= 0 || o.Price > o.Balance {
		return false
	}
	if o.Free <= b.Tuning.ScarcityFree {
		return true
	}
	if o.Balance-o.Price < b.Tuning.Reserve {
		return false
	}
	return float64(o.Price) <= b.Tuning.MaxShare*float64(o.Balance)
}

// CoinFlipBot buys affordable tiles with probability P.
type CoinFlipBot struct {
	P   float64
	Rng *rand.Rand
}

func (b *CoinFlipBot) ShouldBuy(o Offer) bool {
	if o.Price <= 0 || o.Price > o.Balance {
		return false
	}
	return b.Rng.Float64() < b.P
}
