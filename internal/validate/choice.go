// Package validate — closed-choice matchers.
//
// Choice inputs accept an explicit code ("male"), the numeric shortcut shown
// in the prompt ("1"), or a keyword in either supported locale ("पुरुष").
// Matching is case-insensitive and substring-based for keywords, mirroring
// how conversants actually reply ("yes please", "at the hospital").
package validate

import "strings"

// Canonical choice tokens returned by the matchers. Display labels per locale
// live with the conversation engine.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"

	PlaceHospital = "hospital"
	PlaceHome     = "home"
	PlaceOther    = "other"

	LanguageEN = "en"
	LanguageHI = "hi"

	ConfirmYes = "yes"
	ConfirmNo  = "no"

	MenuApply    = "apply"
	MenuStatus   = "status"
	MenuDownload = "download"
	MenuHelp     = "help"
)

// choice pairs a canonical token with the inputs that select it. The numeric
// shortcut must match exactly; keywords match as substrings.
type choice struct {
	token    string
	shortcut string
	keywords []string
}

func match(raw string, choices []choice) (string, error) {
	in := strings.ToLower(strings.TrimSpace(raw))
	if in == "" {
		return "", ErrInvalidChoice
	}
	for _, c := range choices {
		if in == c.shortcut {
			return c.token, nil
		}
		for _, kw := range c.keywords {
			if strings.Contains(in, kw) {
				return c.token, nil
			}
		}
	}
	return "", ErrInvalidChoice
}

// Gender matches a gender selection.
func Gender(raw string) (string, error) {
	return match(raw, []choice{
		// "female" contains "male", so female is matched first.
		{GenderFemale, "2", []string{"female", "महिला"}},
		{GenderMale, "1", []string{"male", "पुरुष"}},
		{GenderOther, "3", []string{"other", "अन्य"}},
	})
}

// PlaceOfBirth matches a place-of-birth selection.
func PlaceOfBirth(raw string) (string, error) {
	return match(raw, []choice{
		{PlaceHospital, "1", []string{"hospital", "अस्पताल"}},
		{PlaceHome, "2", []string{"home", "घर"}},
		{PlaceOther, "3", []string{"other", "अन्य"}},
	})
}

// Language matches a language selection (buttons send "lang_en"/"lang_hi";
// free text may be "english", "hindi", or the prompt shortcuts).
func Language(raw string) (string, error) {
	return match(raw, []choice{
		{LanguageHI, "2", []string{"lang_hi", "hindi", "हिंदी", "हिन्दी"}},
		{LanguageEN, "1", []string{"lang_en", "english"}},
	})
}

// Confirm matches a yes/no confirmation.
func Confirm(raw string) (string, error) {
	return match(raw, []choice{
		{ConfirmYes, "1", []string{"yes", "हां", "हाँ", "submit"}},
		{ConfirmNo, "2", []string{"no", "नहीं", "start over"}},
	})
}

// Consent matches a consent accept/decline.
func Consent(raw string) (string, error) {
	return match(raw, []choice{
		{ConfirmYes, "1", []string{"consent_yes", "yes", "agree", "हां", "हाँ", "सहमत"}},
		{ConfirmNo, "2", []string{"consent_no", "no", "exit", "नहीं"}},
	})
}

// Menu matches a main-menu selection.
func Menu(raw string) (string, error) {
	return match(raw, []choice{
		{MenuApply, "1", []string{"apply", "आवेदन"}},
		{MenuStatus, "2", []string{"status", "स्थिति"}},
		{MenuDownload, "3", []string{"download", "डाउनलोड"}},
		{MenuHelp, "4", []string{"help", "सहायता"}},
	})
}
