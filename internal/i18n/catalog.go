// Package i18n provides the localized message catalog used for every
// user-visible string the bot emits. Messages are keyed by (MessageID,
// locale) and may contain named {placeholder} tokens resolved at render
// time.
//
// Lookup rules:
//   - An unrecognized locale code falls back to the English table.
//   - A missing entry within a known locale falls back to that locale's
//     default string (MsgDefaultError).
//
// The catalog is validated at construction: every locale must cover every
// message id declared in the English table, and translations must use the
// exact placeholder set of their English counterpart. A malformed catalog is
// a startup error, not a runtime surprise.
package i18n

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/instagov/birthbot/internal/domain"
)

// MessageID names a catalog entry.
type MessageID string

// Dialogue prompts and notices.
const (
	MsgWelcome              MessageID = "welcome"
	MsgConsent              MessageID = "consent"
	MsgConsentDeclined      MessageID = "consent_declined"
	MsgDocsInfo             MessageID = "docs_info"
	MsgMainMenu             MessageID = "main_menu"
	MsgStartApplication     MessageID = "start_application"
	MsgAskDOB               MessageID = "ask_dob"
	MsgAskGender            MessageID = "ask_gender"
	MsgAskFatherName        MessageID = "ask_father_name"
	MsgAskMotherName        MessageID = "ask_mother_name"
	MsgAskPlaceOfBirth      MessageID = "ask_place_of_birth"
	MsgAskHospitalName      MessageID = "ask_hospital_name"
	MsgAskAddress           MessageID = "ask_address"
	MsgAskMobile            MessageID = "ask_mobile"
	MsgConfirmDetails       MessageID = "confirm_details"
	MsgApplicationSubmitted MessageID = "application_submitted"
	MsgApplicationCancelled MessageID = "application_cancelled"
	MsgStatusComingSoon     MessageID = "status_coming_soon"
	MsgDownloadComingSoon   MessageID = "download_coming_soon"
	MsgInvalidInput         MessageID = "invalid_input"
	MsgHelp                 MessageID = "help"
)

// Failure notices keyed by classified error kind.
const (
	MsgErrRateLimited MessageID = "err_rate_limited"
	MsgErrServerError MessageID = "err_server_error"
	MsgErrAuth        MessageID = "err_auth"
	MsgErrOTPInvalid  MessageID = "err_otp_invalid"
	MsgErrOTPExpired  MessageID = "err_otp_expired"
	MsgErrValidation  MessageID = "err_validation"
	MsgErrNetwork     MessageID = "err_network"
	MsgDefaultError   MessageID = "err_default"
)

// placeholderRE matches named {placeholder} tokens inside a message body.
var placeholderRE = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9_]*)\}`)

// Catalog is an immutable message table set. Safe for concurrent use.
type Catalog struct {
	tables  map[domain.Locale]map[MessageID]string
	matcher language.Matcher
	order   []domain.Locale // matcher index → locale
}

// New builds a catalog from the given tables and validates completeness.
// The English table is the reference: it must exist, and every other locale
// must define the same ids with the same placeholders.
func New(tables map[domain.Locale]map[MessageID]string) (*Catalog, error) {
	ref, ok := tables[domain.LocaleEN]
	if !ok {
		return nil, fmt.Errorf("i18n: missing reference locale %q", domain.LocaleEN)
	}
	if _, ok := ref[MsgDefaultError]; !ok {
		return nil, fmt.Errorf("i18n: reference locale missing %q entry", MsgDefaultError)
	}
	for loc, table := range tables {
		if loc == domain.LocaleEN {
			continue
		}
		for id, body := range ref {
			got, ok := table[id]
			if !ok {
				return nil, fmt.Errorf("i18n: locale %q missing message %q", loc, id)
			}
			if want, have := placeholders(body), placeholders(got); want != have {
				return nil, fmt.Errorf("i18n: locale %q message %q placeholders %s, want %s", loc, id, have, want)
			}
		}
	}

	// Stable locale order so matcher indexes stay meaningful.
	order := make([]domain.Locale, 0, len(tables))
	for loc := range tables {
		order = append(order, loc)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	tags := make([]language.Tag, len(order))
	for i, loc := range order {
		tags[i] = language.Make(string(loc))
	}
	// The matcher prefers its first tag on no match; ensure that is English.
	for i, loc := range order {
		if loc == domain.LocaleEN && i != 0 {
			order[0], order[i] = order[i], order[0]
			tags[0], tags[i] = tags[i], tags[0]
		}
	}

	return &Catalog{
		tables:  tables,
		matcher: language.NewMatcher(tags),
		order:   order,
	}, nil
}

// MustNew is New, panicking on validation failure. Intended for the built-in
// catalog at process start.
func MustNew(tables map[domain.Locale]map[MessageID]string) *Catalog {
	c, err := New(tables)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in English/Hindi catalog.
func Default() *Catalog { return MustNew(builtinTables()) }

// ResolveLocale maps an arbitrary locale code ("en", "hi-IN", "fr", garbage)
// onto a supported locale, defaulting to English.
func (c *Catalog) ResolveLocale(code string) domain.Locale {
	tag, err := language.Parse(code)
	if err != nil {
		return domain.LocaleEN
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return domain.LocaleEN
	}
	return c.order[idx]
}

// Render returns the message body for (id, locale) with placeholders
// substituted from args. Unknown locales use the English table; unknown ids
// use the locale's default string. Placeholders without a matching arg are
// left intact so the omission is visible in logs.
func (c *Catalog) Render(loc domain.Locale, id MessageID, args map[string]string) string {
	table, ok := c.tables[loc]
	if !ok {
		table = c.tables[domain.LocaleEN]
	}
	body, ok := table[id]
	if !ok {
		body = table[MsgDefaultError]
	}
	if len(args) == 0 || !strings.Contains(body, "{") {
		return body
	}
	return placeholderRE.ReplaceAllStringFunc(body, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := args[name]; ok {
			return v
		}
		return tok
	})
}

// placeholders returns the sorted, comma-joined placeholder names in body.
// Used for load-time completeness checks.
func placeholders(body string) string {
	seen := map[string]struct{}{}
	for _, m := range placeholderRE.FindAllStringSubmatch(body, -1) {
		seen[m[1]] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ",") + "]"
}
