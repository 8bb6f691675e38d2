package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/lob-simulator/internal/types"
)

func TestRunWritesTradeLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.log")
	t.Setenv("SIM_HORIZON", "30s")
	t.Setenv("FLOW_SEED", "3")
	t.Setenv("TRADE_LOG_PATH", path)
	t.Setenv("LOG_LEVEL", "ERROR")

	require.Equal(t, 0, run())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var trade types.Trade
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &trade))
		count++
		assert.Equal(t, uint64(count), trade.TradeID)
	}
	require.NoError(t, scanner.Err())
	assert.Greater(t, count, 0)
}

func TestRunFailsOnBadConfig(t *testing.T) {
	t.Setenv("SIM_HORIZON", "30s")
	t.Setenv("FLOW_TICK", "-1")
	t.Setenv("TRADE_LOG_PATH", "")
	t.Setenv("LOG_LEVEL", "ERROR")

	assert.Equal(t, 1, run())
}
