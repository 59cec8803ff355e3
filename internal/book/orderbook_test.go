package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vantage/internal/domain"
)

func limitOrder(id domain.OrderID, side domain.Side, price domain.Price, qty domain.Quantity) domain.Order {
	return domain.NewOrder(id, "TEST", side, domain.Limit, price, qty, 0)
}

func marketOrder(id domain.OrderID, side domain.Side, qty domain.Quantity) domain.Order {
	return domain.NewOrder(id, "TEST", side, domain.Market, 0, qty, 0)
}

// Scenario 1: simple fill.
func TestAddOrder_SimpleFill(t *testing.T) {
	b := New("TEST")
	b.now = func() domain.Timestamp { return 42 }

	trades := b.AddOrder(limitOrder(1, domain.Sell, 10000, 10))
	assert.Empty(t, trades)

	trades = b.AddOrder(limitOrder(2, domain.Buy, 10000, 10))
	require.Len(t, trades, 1)
	assert.Equal(t, domain.Trade{
		TakerID: 2, MakerID: 1, TakerSide: domain.Buy, Price: 10000, Qty: 10, Timestamp: 42,
	}, trades[0])

	_, ok := b.BestBid()
	assert.False(t, ok)
	_, ok = b.BestAsk()
	assert.False(t, ok)
}

// Scenario 2: partial passive fill, remainder rests.
func TestAddOrder_PartialPassive(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Sell, 10000, 10))

	trades := b.AddOrder(limitOrder(2, domain.Buy, 10000, 20))
	require.Len(t, trades, 1)
	assert.EqualValues(t, 10, trades[0].Qty)

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 10000, bid)
	_, ok = b.BestAsk()
	assert.False(t, ok)

	depth := b.BidDepth(5)
	require.Len(t, depth, 1)
	assert.EqualValues(t, 10, depth[0].Qty)
}

// Scenario 3: market sweep across three ask levels.
func TestAddOrder_MarketSweep(t *testing.T) {
	b := New("TEST")
	b.now = func() domain.Timestamp { return 42 }
	b.AddOrder(limitOrder(1, domain.Sell, 10000, 10))
	b.AddOrder(limitOrder(2, domain.Sell, 10100, 10))
	b.AddOrder(limitOrder(3, domain.Sell, 10200, 10))

	trades := b.AddOrder(marketOrder(4, domain.Buy, 25))
	require.Len(t, trades, 3)
	assert.Equal(t, domain.Trade{TakerID: 4, MakerID: 1, TakerSide: domain.Buy, Price: 10000, Qty: 10, Timestamp: 42}, trades[0])
	assert.Equal(t, domain.Trade{TakerID: 4, MakerID: 2, TakerSide: domain.Buy, Price: 10100, Qty: 10, Timestamp: 42}, trades[1])
	assert.Equal(t, domain.Trade{TakerID: 4, MakerID: 3, TakerSide: domain.Buy, Price: 10200, Qty: 5, Timestamp: 42}, trades[2])

	depth := b.AskDepth(5)
	require.Len(t, depth, 1)
	assert.EqualValues(t, 10200, depth[0].Price)
	assert.EqualValues(t, 5, depth[0].Qty)
	order, err := b.FindOrder(3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, order.Remaining)
}

// Scenario 4: FIFO priority within a price level.
func TestAddOrder_FIFO(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Sell, 10000, 10))
	b.AddOrder(limitOrder(2, domain.Sell, 10000, 10))
	b.AddOrder(limitOrder(3, domain.Sell, 10000, 10))

	trades := b.AddOrder(limitOrder(4, domain.Buy, 10000, 15))
	require.Len(t, trades, 2)
	assert.EqualValues(t, 1, trades[0].MakerID)
	assert.EqualValues(t, 10, trades[0].Qty)
	assert.EqualValues(t, 2, trades[1].MakerID)
	assert.EqualValues(t, 5, trades[1].Qty)

	depth := b.AskDepth(5)
	require.Len(t, depth, 1)
	assert.EqualValues(t, 15, depth[0].Qty)
	assert.Equal(t, 2, depth[0].OrderCount)
}

// Scenario 5: no cross, book stays uncrossed.
func TestAddOrder_NoCross(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Sell, 10100, 10))
	trades := b.AddOrder(limitOrder(2, domain.Buy, 10000, 10))
	assert.Empty(t, trades)

	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	spread, ok := b.Spread()
	assert.EqualValues(t, 10000, bid)
	assert.EqualValues(t, 10100, ask)
	require.True(t, ok)
	assert.EqualValues(t, 100, spread)
}

func TestAddOrder_LimitSellCrossesAtEqualPrice(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Buy, 10100, 10))
	trades := b.AddOrder(limitOrder(2, domain.Sell, 10100, 10))
	require.Len(t, trades, 1)
	assert.EqualValues(t, 10100, trades[0].Price)
}

func TestMarketBuy_IntoEmptyAsks_NoTradesNoRest(t *testing.T) {
	b := New("TEST")
	trades := b.AddOrder(marketOrder(1, domain.Buy, 10))
	assert.Empty(t, trades)
	assert.Equal(t, 0, b.OrderCount())
}

func TestCancelOrder(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Buy, 10000, 10))

	assert.True(t, b.CancelOrder(1))
	assert.False(t, b.CancelOrder(1)) // idempotent: second call is a no-op
	_, err := b.FindOrder(1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestModifyOrder_StrictReductionOnly(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Buy, 10000, 10))

	assert.False(t, b.ModifyOrder(1, 10)) // equal to current remaining: rejected
	assert.False(t, b.ModifyOrder(1, 11)) // upward: rejected
	assert.True(t, b.ModifyOrder(1, 4))

	order, err := b.FindOrder(1)
	require.NoError(t, err)
	assert.EqualValues(t, 4, order.Remaining)
}

func TestModifyOrder_ToZeroActsLikeCancel(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Buy, 10000, 10))
	assert.True(t, b.ModifyOrder(1, 0))
	_, err := b.FindOrder(1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, ok := b.BestBid()
	assert.False(t, ok)
}

// TestModifyOrder_ToZeroOnSharedLevel guards against a narrower bug than
// the single-order case above: when two orders share a price level,
// reducing one to zero must still drop its index entry even though the
// level itself stays non-empty (the other order keeps it resting).
func TestModifyOrder_ToZeroOnSharedLevel(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Buy, 10000, 10))
	b.AddOrder(limitOrder(2, domain.Buy, 10000, 5))

	assert.True(t, b.ModifyOrder(1, 0))

	_, err := b.FindOrder(1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, 1, b.OrderCount())

	// The stale index entry would otherwise let this succeed a second time.
	assert.False(t, b.CancelOrder(1))

	order, err := b.FindOrder(2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, order.Remaining)

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 10000, bid)
}

func TestIDCollision_ReplacesRestingOrder(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Buy, 10000, 10))
	b.AddOrder(limitOrder(1, domain.Buy, 9900, 5))

	order, err := b.FindOrder(1)
	require.NoError(t, err)
	assert.EqualValues(t, 9900, order.Price)
	assert.EqualValues(t, 5, order.Remaining)
	assert.Equal(t, 1, b.OrderCount())
}

func TestTradeCallback_InvokedSynchronouslyInOrder(t *testing.T) {
	b := New("TEST")
	b.AddOrder(limitOrder(1, domain.Sell, 10000, 5))
	b.AddOrder(limitOrder(2, domain.Sell, 10000, 5))

	var seen []domain.OrderID
	b.SetTradeCallback(func(tr domain.Trade) {
		seen = append(seen, tr.MakerID)
	})

	b.AddOrder(limitOrder(3, domain.Buy, 10000, 10))
	assert.Equal(t, []domain.OrderID{1, 2}, seen)
}
