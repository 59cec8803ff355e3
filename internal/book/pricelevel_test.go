package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vantage/internal/domain"
)

func TestPriceLevel_AddAndTotalQty(t *testing.T) {
	l := NewPriceLevel(10000)
	o1 := limitOrder(1, domain.Buy, 10000, 10)
	o2 := limitOrder(2, domain.Buy, 10000, 20)
	l.AddOrder(&o1)
	l.AddOrder(&o2)

	assert.EqualValues(t, 30, l.TotalQty())
	assert.Equal(t, 2, l.OrderCount())
}

func TestPriceLevel_RemoveOrder(t *testing.T) {
	l := NewPriceLevel(10000)
	o1 := limitOrder(1, domain.Buy, 10000, 10)
	o2 := limitOrder(2, domain.Buy, 10000, 20)
	l.AddOrder(&o1)
	l.AddOrder(&o2)

	assert.True(t, l.RemoveOrder(1))
	assert.False(t, l.RemoveOrder(1))
	assert.EqualValues(t, 20, l.TotalQty())
	assert.Equal(t, 1, l.OrderCount())
}

func TestPriceLevel_ReduceOrder(t *testing.T) {
	l := NewPriceLevel(10000)
	o1 := limitOrder(1, domain.Buy, 10000, 10)
	l.AddOrder(&o1)

	assert.True(t, l.ReduceOrder(1, 4))
	assert.EqualValues(t, 6, l.TotalQty())

	// reduceBy >= remaining behaves like RemoveOrder.
	assert.True(t, l.ReduceOrder(1, 100))
	assert.True(t, l.Empty())
}

func TestPriceLevel_Match_FIFO(t *testing.T) {
	l := NewPriceLevel(10000)
	o1 := limitOrder(1, domain.Sell, 10000, 10)
	o2 := limitOrder(2, domain.Sell, 10000, 10)
	l.AddOrder(&o1)
	l.AddOrder(&o2)

	aggressor := limitOrder(3, domain.Buy, 10000, 15)
	trades := l.Match(&aggressor, 42)

	require.Len(t, trades, 2)
	assert.EqualValues(t, 1, trades[0].MakerID)
	assert.EqualValues(t, 10, trades[0].Qty)
	assert.EqualValues(t, 2, trades[1].MakerID)
	assert.EqualValues(t, 5, trades[1].Qty)
	assert.EqualValues(t, 0, aggressor.Remaining)
	assert.EqualValues(t, 5, l.TotalQty())
	assert.Equal(t, 1, l.OrderCount())
}

func TestPriceLevel_Match_ExhaustsLevelBeforeAggressor(t *testing.T) {
	l := NewPriceLevel(10000)
	o1 := limitOrder(1, domain.Sell, 10000, 5)
	l.AddOrder(&o1)

	aggressor := limitOrder(2, domain.Buy, 10000, 10)
	trades := l.Match(&aggressor, 1)

	require.Len(t, trades, 1)
	assert.True(t, l.Empty())
	assert.EqualValues(t, 5, aggressor.Remaining)
}
