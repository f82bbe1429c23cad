package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecomlogix/dispatch-cli/internal/config"
	"github.com/ecomlogix/dispatch-cli/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Tables: config.TablesConfig{
			Statuses: []config.StatusSet{
				{Category: "Delivered", Codes: []string{"DEL_VERBAL", "DEL_ASR", "DEL_SIG", "DEL_OSNR"}},
				{Category: "OFD Scans", Codes: []string{"ITR_OFD", "FEDEX_ACCEPTED", "PIC_CANPAR", "PURO_ACCEPTED"}},
				{Category: "Return", Codes: []string{"EXC_BADADDRESS", "EXC_REFUSED", "RET_TOR"}},
				{Category: "Scansort", Codes: []string{"SCANSORT"}},
			},
			Services: []config.ServiceRule{
				{Prefix: "YYZ-SD", Tier: "Same Day"},
				{Prefix: "YYZ-", Tier: "Next Day"},
				{Prefix: "YUL-", Tier: "Montreal"},
			},
		},
		Rates: config.RatesConfig{
			Tiers: []config.TierRate{
				{Tier: "Next Day", Rate: "2.20"},
				{Tier: "Same Day", Rate: "3.50"},
				{Tier: "Montreal", Rate: "3.00"},
			},
			CityOverrides: []config.CityRate{
				{Tier: "Next Day", City: "Oakville", Rate: "2.45"},
				{Tier: "Next Day", City: "Burlington", Rate: "2.45"},
			},
		},
		Pipeline: config.PipelineConfig{Concurrency: 2},
	}
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(testConfig())
	require.NoError(t, err)
	return p
}

// scan builds one event. The timestamp is "2006-01-02 15:04:05".
func scan(t *testing.T, item, status, route, driver, ts, city, address string) model.ScanEvent {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", ts)
	require.NoError(t, err)

	e := model.ScanEvent{
		ItemID:        item,
		StatusCode:    status,
		RouteCode:     route,
		DriverName:    driver,
		DeliveryCity:  city,
		ShipToName:    "Receiver",
		ShipToAddress: address,
		ShipToCity:    city,
	}
	e.SetTimestamp(parsed)
	return e
}
