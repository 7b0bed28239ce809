// Package crisis lists the helplines shown on the crisis page. The list is
// static and needs no session.
package crisis

import (
	"slices"
	"strings"
	"unicode"
)

type Helpline struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Link        string `json:"link"`
}

// Dial is the phone number with everything but digits removed, for tel:
// links.
func (h Helpline) Dial() string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, h.Phone)
}

var helplines = []Helpline{
	{
		Name: "Abrhot Specialized Psychotherapy Center",
		Description: "Established by a group of young Ethiopian psychologists who were eager to see change in " +
			"psychological practices in the country, especially in the quality of services delivered.",
		Phone: "+251 91 199 8619",
		Link:  "https://web.facebook.com/abrhot/",
	},
	{
		Name:        "Ethiopia Women Lawyers Association (EWLA)",
		Description: "Ethiopia Women Lawyers Association (EWLA)",
		Phone:       "+251 11 508783",
		Link:        "https://ewla-et.org/",
	},
	{
		Name: "Lebeza psychiatry consultation",
		Description: "Established with an aim and vision of providing quality mental health service in area " +
			"of mental health promotion",
		Phone: "+251 118 352929",
		Link:  "https://web.facebook.com/LebezaP/",
	},
	{
		Name: "AWSAD Helpline (The Association for Women's Sanctuary and Development)",
		Description: "AWSAD (Association for Women's Sanctuary and Development) runs shelters for women and " +
			"girl survivors of violence in Addis Ababa, Adama, Hawassa and Dessie.",
		Phone: "+251 11 667 2290",
		Link:  "https://web.facebook.com/AWSADET/",
	},
}

func Helplines() []Helpline {
	return slices.Clone(helplines)
}
