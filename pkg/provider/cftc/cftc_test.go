package cftc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsEndpoint(t *testing.T) {
	require.True(t, IsEndpoint("cftc://legacy/futonly/6dca-aqww/cme-bitcoin"))
	require.False(t, IsEndpoint("/api/futures/open-interest/aggregated-history"))
	require.False(t, IsEndpoint("https://publicreporting.cftc.gov/resource/6dca-aqww.json"))
}

func TestParseEndpoint(t *testing.T) {
	dataset, market, err := parseEndpoint("cftc://legacy/futonly/6dca-aqww/cme-bitcoin")
	require.NoError(t, err)
	require.Equal(t, "6dca-aqww", dataset)
	require.Equal(t, "BITCOIN - CHICAGO MERCANTILE EXCHANGE", market)
}

func TestParseEndpointMalformed(t *testing.T) {
	_, _, err := parseEndpoint("cftc://legacy/futonly")
	require.Error(t, err)

	_, _, err = parseEndpoint("cftc://legacy/futonly/6dca-aqww/cme-ether")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown cftc market")
}
