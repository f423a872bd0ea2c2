package fetch

import "strings"

// relevanceTerms are the signals a page must show at least one of to
// count as a dance event page.
var relevanceTerms = []string{
	"salsa",
	"bachata",
	"kizomba",
	"zouk",
	"forró",
	"forro",
	"tango",
	"swing",
	"merengue",
	"cha-cha",
	"party",
	"social",
	"festival",
	"tanzparty",
	"tanzabend",
	"veranstaltung",
	"event",
	"workshop",
	"milonga",
}

// courseOnlyPhrases mark pages that advertise ongoing course programs
// rather than events. Only unambiguous course-page phrases belong
// here, a party announcement that merely mentions a Tanzkurs must
// still pass.
var courseOnlyPhrases = []string{
	"kursplan",
	"kursgebühr",
	"kursgebuehr",
	"probestunde",
	"anmeldung zum kurs",
	"kursanmeldung",
	"unsere kurse im überblick",
	"semesterkurs",
}

// IsRelevant reports whether page text looks like a dance event
// announcement: it must mention at least one dance or event term and
// must not read like a pure course-program page.
func IsRelevant(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lower := strings.ToLower(text)

	found := false
	for _, term := range relevanceTerms {
		if strings.Contains(lower, term) {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	for _, phrase := range courseOnlyPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}
