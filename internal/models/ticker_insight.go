package models

import "time"

// Risk levels produced by the scoring pipeline.
const (
	RiskLow     = "Low"
	RiskMedium  = "Medium"
	RiskHigh    = "High"
	RiskExtreme = "Extreme"
)

// TickerInsight is the pipeline's computed market-reality view for one
// ticker. Rows are replaced wholesale on every pipeline pass; there are no
// partial updates.
type TickerInsight struct {
	Ticker    string    `gorm:"primaryKey;type:varchar(16)" json:"ticker"`
	Score     int       `gorm:"not null" json:"score"`
	Signal    string    `gorm:"type:varchar(20);not null" json:"signal"`
	Risk      string    `gorm:"type:varchar(10);not null" json:"risk"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (TickerInsight) TableName() string {
	return "ticker_insights"
}

// SignalLabel maps a 0-100 score onto the trading-signal family.
func SignalLabel(score int) string {
	switch {
	case score >= 80:
		return "strong_buy"
	case score >= 60:
		return "buy"
	case score >= 40:
		return "hold"
	case score >= 20:
		return "sell"
	default:
		return "strong_sell"
	}
}

// HighRisk reports whether a risk label counts as elevated for the high-risk
// feed filter.
func HighRisk(risk string) bool {
	return risk == RiskHigh || risk == RiskExtreme
}
