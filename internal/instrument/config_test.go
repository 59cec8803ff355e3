package instrument

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ScalesTickSizeExactly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instruments.json")
	body := `[
		{"symbol":"AAPL","description":"Apple Inc","tick_size":0.01,"lot_size":1,"price_scale":10000},
		{"symbol":"GOOG","description":"Alphabet Inc","tick_size":0.01,"lot_size":1,"price_scale":10000}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)

	aapl, err := reg.Find("AAPL")
	require.NoError(t, err)
	// 0.01 * 10000 must land on exactly 100, never 99 or 101 from float
	// rounding — this is the whole point of decimal-based scaling.
	assert.EqualValues(t, 100, aapl.TickSize)
	assert.EqualValues(t, 1, aapl.LotSize)
	assert.EqualValues(t, 10000, aapl.PriceScale)

	assert.Equal(t, []string{"AAPL", "GOOG"}, reg.Symbols())
}

func TestLoad_UnknownSymbol(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instruments.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"symbol":"AAPL","tick_size":0.01,"lot_size":1,"price_scale":10000}]`), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)

	_, err = reg.Find("MSFT")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestLoad_MalformedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instruments.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
