package ta

import "github.com/shopspring/decimal"

// Conventional parameters used by the NewDefault* constructors, exported so
// callers building indicators from configuration can fall back to them.
const (
	DefaultSMAPeriod             = 9
	DefaultStdDevPeriod          = 9
	DefaultEMAPeriod             = 9
	DefaultROCPeriod             = 9
	DefaultEfficiencyRatioPeriod = 14
	DefaultATRPeriod             = 14
	DefaultBollingerBandsPeriod  = 9
	DefaultKeltnerChannelPeriod  = 10

	DefaultMACDFastPeriod   = 12
	DefaultMACDSlowPeriod   = 26
	DefaultMACDSignalPeriod = 9
	DefaultPPOFastPeriod    = 12
	DefaultPPOSlowPeriod    = 26
	DefaultPPOSignalPeriod  = 9
)

var (
	DefaultBollingerBandsMultiplier = decimal.NewFromInt(2)
	DefaultKeltnerChannelMultiplier = decimal.NewFromInt(2)
)
