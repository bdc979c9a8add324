package validation

import (
	"fmt"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// DateLayout is the ISO calendar date format used for record keys and time entries.
const DateLayout = "2006-01-02"

// MaxHours bounds any hour value accepted from a user or sent upstream.
const MaxHours = 24

// New returns a configured validator with the custom tags and struct-level
// validations registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// "isodate" accepts YYYY-MM-DD strings.
	mustRegister(v, "isodate", func(fl validatorv10.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})

	// "cron" accepts standard five-field schedules and descriptors like @daily.
	mustRegister(v, "cron", func(fl validatorv10.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})

	// the last button must not exceed a full day
	v.RegisterStructValidation(hoursOptionsStructValidation, HoursOptions{})

	return v
}

// mustRegister panics when a tag cannot be registered; tags are fixed at
// compile time so this only fires on a programming error.
func mustRegister(v *validatorv10.Validate, tag string, fn validatorv10.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func hoursOptionsStructValidation(sl validatorv10.StructLevel) {
	opts := sl.Current().Interface().(HoursOptions)
	if opts.Count < 1 {
		return
	}

	last := opts.Start + float64(opts.Count-1)*opts.Step
	if last > MaxHours {
		sl.ReportError(opts.Count, "count", "Count", "hours_within_day", fmt.Sprintf("last button %.2f > %d", last, MaxHours))
	}
}
