package domain

import "time"

// BmiRecord stores the latest height (cm) and weight (kg) of a user.
type BmiRecord struct {
	UserID    string    `json:"userId"`
	Height    float64   `json:"height"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	BmiUnderweight = "underweight"
	BmiNormal      = "normal"
	BmiOverweight  = "overweight"
	BmiObese       = "obese"
)

// Index returns the body-mass index rounded to one decimal. It is derived on
// read and never stored.
func (b *BmiRecord) Index() float64 {
	if b.Height <= 0 {
		return 0
	}
	m := b.Height / 100
	return RoundTenth(b.Weight / (m * m))
}

// Category classifies the index using the WHO adult thresholds.
func (b *BmiRecord) Category() string {
	switch bmi := b.Index(); {
	case bmi < 18.5:
		return BmiUnderweight
	case bmi < 25:
		return BmiNormal
	case bmi < 30:
		return BmiOverweight
	default:
		return BmiObese
	}
}
