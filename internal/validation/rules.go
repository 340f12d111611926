package validation

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

func (s *Schema) registerRules() {
	must := func(tag string, fn validator.Func) {
		if err := s.validate.RegisterValidation(tag, fn); err != nil {
			panic("validation: register " + tag + ": " + err.Error())
		}
	}
	must("phone", s.possiblePhone)
	must("isodate", isoDate)
	must("future", s.strictlyFuture)
	must("notsunday", notSunday)
	must("horizon", s.withinHorizon)
}

func (s *Schema) possiblePhone(fl validator.FieldLevel) bool {
	_, ok := s.normalizePhone(fl.Field().String())
	return ok
}

// normalizePhone parses raw against the default region and returns E.164.
func (s *Schema) normalizePhone(raw string) (string, bool) {
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func notSunday(fl validator.FieldLevel) bool {
	d, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil && d.Weekday() != time.Sunday
}

func (s *Schema) strictlyFuture(fl validator.FieldLevel) bool {
	d, err := s.parseDate(fl.Field().String())
	return err == nil && d.After(s.today())
}

func (s *Schema) withinHorizon(fl validator.FieldLevel) bool {
	months, err := strconv.Atoi(fl.Param())
	if err != nil || months <= 0 {
		return false
	}
	d, err := s.parseDate(fl.Field().String())
	return err == nil && !d.After(s.today().AddDate(0, months, 0))
}

func (s *Schema) parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, s.loc)
}

// today is midnight of the current day in the schema's location.
func (s *Schema) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}
