package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	fieldClaimantName = "claimantName"
	fieldDistrict     = "district"
	fieldVillage      = "village"
	fieldState        = "state"
	fieldLandArea     = "landArea"
	fieldApprovalDate = "approvalDate"
)

type fieldRule struct {
	field string
	re    *regexp.Regexp
}

// fieldRules is evaluated top to bottom; the first rule whose capture group
// matches wins its field and later rules for that field are skipped. Labels
// come in a Latin and a Devanagari variant.
var fieldRules = []fieldRule{
	{fieldClaimantName, regexp.MustCompile(`(?i)(?:claimant|applicant|name|holder)[:\s]*([a-zA-Z\s]+)`)},
	{fieldClaimantName, regexp.MustCompile(`(?i)name[:\s]*([a-zA-Z\s]+)`)},
	{fieldClaimantName, regexp.MustCompile(`(?i)श्री[.\s]*([a-zA-Z\s\x{0900}-\x{097F}]+)`)},
	{fieldClaimantName, regexp.MustCompile(`(?i)holder[:\s]*([a-zA-Z\s]+)`)},
	{fieldClaimantName, regexp.MustCompile(`(?i)beneficiary[:\s]*([a-zA-Z\s]+)`)},

	{fieldDistrict, regexp.MustCompile(`(?i)district[:\s]*([a-zA-Z\s]+)`)},
	{fieldDistrict, regexp.MustCompile(`(?i)जिला[:\s]*([a-zA-Z\s\x{0900}-\x{097F}]+)`)},
	{fieldDistrict, regexp.MustCompile(`(?i)dist[:\s]*([a-zA-Z\s]+)`)},

	{fieldVillage, regexp.MustCompile(`(?i)village[:\s]*([a-zA-Z\s]+)`)},
	{fieldVillage, regexp.MustCompile(`(?i)गाँव[:\s]*([a-zA-Z\s\x{0900}-\x{097F}]+)`)},
	{fieldVillage, regexp.MustCompile(`(?i)gram[:\s]*([a-zA-Z\s]+)`)},

	{fieldState, regexp.MustCompile(`(?i)state[:\s]*([a-zA-Z\s]+)`)},
	{fieldState, regexp.MustCompile(`(?i)राज्य[:\s]*([a-zA-Z\s\x{0900}-\x{097F}]+)`)},

	{fieldLandArea, regexp.MustCompile(`(?i)(?:area|land|क्षेत्रफल)[:\s]*([0-9.]+)\s*(?:hectare|acre|ha|एकड़)`)},
	{fieldLandArea, regexp.MustCompile(`(?i)([0-9.]+)\s*(?:hectare|acre|ha|एकड़)`)},
	{fieldLandArea, regexp.MustCompile(`(?i)area[:\s]*([0-9.]+)`)},

	{fieldApprovalDate, regexp.MustCompile(`(?i)(?:approval|approved|date|dated)[:\s]*([0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{2,4})`)},
	{fieldApprovalDate, regexp.MustCompile(`([0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{2,4})`)},
}

// The coordinate rule is independent of the per-field rules above.
var coordRule = regexp.MustCompile(`(?i)(?:lat|latitude)[:\s]*([0-9.\-]+)[,\s]*(?:lon|long|longitude)[:\s]*([0-9.\-]+)`)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	honorificRe  = regexp.MustCompile(`(?i)^(?:Mr|Mrs|Ms|Dr|Sri|Smt)\.?\s*`)
	nonLetterRe  = regexp.MustCompile(`[^a-zA-Z\s\x{0900}-\x{097F}]`)
	numberRe     = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

// ExtractFields runs the pattern rules over raw document text and returns a
// validated record. It never fails: unrecoverable fields hold sentinels.
func ExtractFields(text string) PattaData {
	raw := matchFields(normalizeText(text))
	return Validate(raw)
}

func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func matchFields(text string) RawFields {
	matched := make(map[string]string, 6)
	for _, rule := range fieldRules {
		if _, done := matched[rule.field]; done {
			continue
		}
		m := rule.re.FindStringSubmatch(text)
		if len(m) > 1 && m[1] != "" {
			matched[rule.field] = m[1]
		}
	}

	raw := RawFields{
		ClaimantName: cleanName(matched[fieldClaimantName]),
		District:     cleanLocation(matched[fieldDistrict]),
		Village:      cleanLocation(matched[fieldVillage]),
		State:        cleanLocation(matched[fieldState]),
	}

	if v, ok := matched[fieldLandArea]; ok {
		raw.LandArea = parseLandArea(v)
	}
	if v, ok := matched[fieldApprovalDate]; ok {
		raw.ApprovalDate = parseApprovalDate(v)
	}
	raw.Coordinates = matchCoordinates(text)

	return raw
}

func matchCoordinates(text string) *Coordinates {
	m := coordRule.FindStringSubmatch(text)
	if len(m) < 3 {
		return nil
	}
	lat, errLat := strconv.ParseFloat(m[1], 64)
	lng, errLng := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return &Coordinates{Latitude: lat, Longitude: lng}
}

func cleanName(value string) string {
	value = strings.TrimSpace(value)
	value = honorificRe.ReplaceAllString(value, "")
	return cleanLocation(value)
}

func cleanLocation(value string) string {
	value = nonLetterRe.ReplaceAllString(value, "")
	value = whitespaceRe.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func parseLandArea(value string) *float64 {
	num := numberRe.FindString(value)
	if num == "" {
		return nil
	}
	area, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	return &area
}

var dateFormats = []*regexp.Regexp{
	regexp.MustCompile(`([0-9]{1,2})[/-]([0-9]{1,2})[/-]([0-9]{4})`),
	regexp.MustCompile(`([0-9]{1,2})[/-]([0-9]{1,2})[/-]([0-9]{2})`),
}

// parseApprovalDate accepts D/M/YYYY and D/M/YY (slash or dash). Two-digit
// years below 50 resolve to 20YY, the rest to 19YY. An unparseable or
// impossible date yields nil, not an error.
func parseApprovalDate(value string) *time.Time {
	for _, format := range dateFormats {
		m := format.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])

		if year < 100 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return nil
		}
		return &t
	}
	return nil
}
