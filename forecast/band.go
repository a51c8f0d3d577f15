package forecast

// Band is a qualitative rating of a mean absolute percent error
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
)

// MAPEBand rates a MAPE score given in percent. Under 5% is excellent, under 10% good,
// under 20% fair and anything else poor.
func MAPEBand(mape float64) Band {
	switch {
	case mape < 5:
		return BandExcellent
	case mape < 10:
		return BandGood
	case mape < 20:
		return BandFair
	default:
		return BandPoor
	}
}

// Description returns a short human readable label of the band
func (b Band) Description() string {
	switch b {
	case BandExcellent:
		return "Very good"
	case BandGood:
		return "Good"
	case BandFair:
		return "Fair"
	case BandPoor:
		return "Needs improvement"
	default:
		return "Unknown"
	}
}
