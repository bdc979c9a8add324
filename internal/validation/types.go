package validation

// HoursOptions describes the hour buttons offered in a prompt and the value
// recorded before the user answers.
type HoursOptions struct {
	Start   float64 `validate:"gte=0,lte=24"`         // first button value
	Step    float64 `validate:"required,gt=0"`        // distance between buttons
	Count   int     `validate:"required,min=1,max=25"` // slack allows 25 elements per actions block
	Default float64 `validate:"gte=0,lte=24"`         // hours recorded until confirmed
}

// Values returns the button values in display order.
func (o HoursOptions) Values() []float64 {
	out := make([]float64, 0, o.Count)
	for i := 0; i < o.Count; i++ {
		out = append(out, o.Start+float64(i)*o.Step)
	}
	return out
}
