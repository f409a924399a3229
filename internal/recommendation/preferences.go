package recommendation

// Preferences are a caller's desired plan attributes plus the relative
// importance of each attribute. Weights may use any non-negative scale.
type Preferences struct {
	Cost    float64 `json:"cost"`
	Data    int     `json:"data"`
	Minutes int     `json:"minutes"`
	SMS     int     `json:"sms"`
	Carrier string  `json:"carrier,omitempty"`

	WeightCost    float64 `json:"weightCost"`
	WeightData    float64 `json:"weightData"`
	WeightMinutes float64 `json:"weightMinutes"`
	WeightSMS     float64 `json:"weightSms"`
}

// HasCarrier reports whether a carrier preference was given.
func (p Preferences) HasCarrier() bool {
	return p.Carrier != ""
}

// Weights returns the raw attribute weights.
func (p Preferences) Weights() Weights {
	return Weights{
		Cost:    p.WeightCost,
		Data:    p.WeightData,
		Minutes: p.WeightMinutes,
		SMS:     p.WeightSMS,
	}
}

// Weights holds one importance weight per plan attribute.
type Weights struct {
	Cost    float64 `json:"cost"`
	Data    float64 `json:"data"`
	Minutes float64 `json:"minutes"`
	SMS     float64 `json:"sms"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Cost + w.Data + w.Minutes + w.SMS
}

// Normalize scales weights to sum to 1.0. Weights with a non-positive sum are
// returned unchanged.
func (w Weights) Normalize() Weights {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return Weights{
		Cost:    w.Cost / total,
		Data:    w.Data / total,
		Minutes: w.Minutes / total,
		SMS:     w.SMS / total,
	}
}
