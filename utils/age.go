package utils

import "time"

// DOBLayout is the wire format for dates of birth.
const DOBLayout = "2006-01-02"

// CalculateAge returns the number of full years between dob and today,
// accounting for whether the birthday has occurred yet this year.
// A dob that does not parse as YYYY-MM-DD yields -1 so that any adult
// check downstream fails closed.
func CalculateAge(dob string, today time.Time) int {
	born, err := time.Parse(DOBLayout, dob)
	if err != nil {
		return -1
	}
	age := today.Year() - born.Year()
	if today.Month() < born.Month() ||
		(today.Month() == born.Month() && today.Day() < born.Day()) {
		age--
	}
	return age
}
