package engine

import (
	"context"
	"strings"

	"github.com/instagov/birthbot/internal/boterr"
	"github.com/instagov/birthbot/internal/domain"
	"github.com/instagov/birthbot/internal/i18n"
	"github.com/instagov/birthbot/internal/store"
	"github.com/instagov/birthbot/internal/validate"
	"github.com/instagov/birthbot/internal/wa"
)

const (
	cmdMenu = "menu"
	cmdHelp = "help"
	cmdNone = ""
)

// normalizeCommand recognizes the global commands that work from any state.
func normalizeCommand(input string) string {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "menu", "मेनू":
		return cmdMenu
	case "help", "सहायता":
		return cmdHelp
	}
	return cmdNone
}

// prompt returns the outbound message that re-asks the current state's
// question. Used for invalid-input re-prompts; the state handlers build the
// same messages when transitioning forward.
func (e *Engine) prompt(s *domain.Session) wa.Message {
	switch s.State {
	case domain.StateLanguageSelection:
		return e.languagePrompt(s)
	case domain.StateConsent:
		return e.consentPrompt(s)
	case domain.StateDocsInfo:
		return e.text(s, i18n.MsgDocsInfo, nil)
	case domain.StateMainMenu:
		return e.text(s, i18n.MsgMainMenu, nil)
	case domain.StateCollectChildName:
		return e.text(s, i18n.MsgStartApplication, nil)
	case domain.StateCollectDOB:
		return e.text(s, i18n.MsgAskDOB, nil)
	case domain.StateCollectGender:
		return e.genderPrompt(s)
	case domain.StateCollectFatherName:
		return e.text(s, i18n.MsgAskFatherName, nil)
	case domain.StateCollectMotherName:
		return e.text(s, i18n.MsgAskMotherName, nil)
	case domain.StateCollectPlaceBirth:
		return e.placePrompt(s)
	case domain.StateCollectHospital:
		return e.text(s, i18n.MsgAskHospitalName, nil)
	case domain.StateCollectAddress:
		return e.text(s, i18n.MsgAskAddress, nil)
	case domain.StateCollectMobile:
		return e.text(s, i18n.MsgAskMobile, nil)
	case domain.StateConfirmDetails:
		return e.confirmPrompt(s)
	}
	return e.text(s, i18n.MsgWelcome, nil)
}

func (e *Engine) languagePrompt(s *domain.Session) wa.Message {
	return wa.Buttons{
		Body: e.catalog.Render(s.Locale, i18n.MsgWelcome, nil),
		Buttons: []wa.Button{
			{ID: "lang_en", Label: "English"},
			{ID: "lang_hi", Label: "हिंदी"},
		},
	}
}

func (e *Engine) consentPrompt(s *domain.Session) wa.Message {
	yes, no := "I Agree", "Exit"
	if s.Locale == domain.LocaleHI {
		yes, no = "मैं सहमत हूं", "बाहर निकलें"
	}
	return wa.Buttons{
		Body: e.catalog.Render(s.Locale, i18n.MsgConsent, nil),
		Buttons: []wa.Button{
			{ID: "consent_yes", Label: yes},
			{ID: "consent_no", Label: no},
		},
	}
}

func (e *Engine) genderPrompt(s *domain.Session) wa.Message {
	return wa.Buttons{
		Body: e.catalog.Render(s.Locale, i18n.MsgAskGender, nil),
		Buttons: []wa.Button{
			{ID: "gender_male", Label: genderLabel(s.Locale, validate.GenderMale)},
			{ID: "gender_female", Label: genderLabel(s.Locale, validate.GenderFemale)},
			{ID: "gender_other", Label: genderLabel(s.Locale, validate.GenderOther)},
		},
	}
}

func (e *Engine) placePrompt(s *domain.Session) wa.Message {
	button, section := "Select", "Place of birth"
	if s.Locale == domain.LocaleHI {
		button, section = "चुनें", "जन्म स्थान"
	}
	return wa.List{
		Body:        e.catalog.Render(s.Locale, i18n.MsgAskPlaceOfBirth, nil),
		ButtonLabel: button,
		Sections: []wa.ListSection{{
			Title: section,
			Rows: []wa.ListRow{
				{ID: "place_hospital", Title: placeLabel(s.Locale, validate.PlaceHospital)},
				{ID: "place_home", Title: placeLabel(s.Locale, validate.PlaceHome)},
				{ID: "place_other", Title: placeLabel(s.Locale, validate.PlaceOther)},
			},
		}},
	}
}

func (e *Engine) confirmPrompt(s *domain.Session) wa.Message {
	yes, no := "Yes, submit", "No, start over"
	if s.Locale == domain.LocaleHI {
		yes, no = "हां, जमा करें", "नहीं"
	}
	return wa.Buttons{
		Body: e.catalog.Render(s.Locale, i18n.MsgConfirmDetails, e.summaryArgs(s)),
		Buttons: []wa.Button{
			{ID: "confirm_yes", Label: yes},
			{ID: "confirm_no", Label: no},
		},
	}
}

// summaryArgs builds the placeholder values for the confirmation summary.
// Place of birth shows the hospital name when one was collected.
func (e *Engine) summaryArgs(s *domain.Session) map[string]string {
	place := s.Fields[domain.FieldPlaceOfBirth]
	if h := s.Fields[domain.FieldHospitalName]; h != "" {
		place = place + " - " + h
	}
	return map[string]string{
		"childName":    s.Fields[domain.FieldChildName],
		"dob":          s.Fields[domain.FieldDOB],
		"gender":       s.Fields[domain.FieldGender],
		"fatherName":   s.Fields[domain.FieldFatherName],
		"motherName":   s.Fields[domain.FieldMotherName],
		"placeOfBirth": place,
		"address":      s.Fields[domain.FieldAddress],
		"mobile":       s.Fields[domain.FieldMobile],
	}
}

// advance persists the field value (when key is non-empty), moves the session
// to next, and sends the next prompt.
func (e *Engine) advance(ctx context.Context, s *domain.Session, key domain.FieldKey, value string, next domain.State) error {
	u := store.SessionUpdate{State: &next}
	if key != "" {
		u.Fields = map[domain.FieldKey]string{key: value}
	}
	s, err := e.sessions.Update(ctx, s.ConversantID, u)
	if err != nil {
		return err
	}
	return e.send(ctx, s, e.prompt(s))
}

// collectText is the shared handler body for free-text fields: any non-empty
// input is accepted verbatim.
func (e *Engine) collectText(ctx context.Context, s *domain.Session, input string, key domain.FieldKey, next domain.State) error {
	v := strings.TrimSpace(input)
	if v == "" {
		return e.invalid(ctx, s)
	}
	return e.advance(ctx, s, key, v, next)
}

// handleInitial greets any first contact with the language selection.
func (e *Engine) handleInitial(ctx context.Context, s *domain.Session, _ string) error {
	next := domain.StateLanguageSelection
	s, err := e.sessions.Update(ctx, s.ConversantID, store.SessionUpdate{State: &next})
	if err != nil {
		return err
	}
	return e.send(ctx, s, e.languagePrompt(s))
}

func (e *Engine) handleLanguageSelection(ctx context.Context, s *domain.Session, input string) error {
	code, err := validate.Language(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	loc := domain.Locale(code)
	next := domain.StateConsent
	s, uerr := e.sessions.Update(ctx, s.ConversantID, store.SessionUpdate{State: &next, Locale: &loc})
	if uerr != nil {
		return uerr
	}
	return e.send(ctx, s, e.consentPrompt(s))
}

func (e *Engine) handleConsent(ctx context.Context, s *domain.Session, input string) error {
	tok, err := validate.Consent(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	if tok == validate.ConfirmNo {
		// Declined: say goodbye and forget everything collected so far.
		if err := e.send(ctx, s, e.text(s, i18n.MsgConsentDeclined, nil)); err != nil {
			return err
		}
		return e.sessions.Delete(ctx, s.ConversantID)
	}
	given := true
	next := domain.StateDocsInfo
	s, uerr := e.sessions.Update(ctx, s.ConversantID, store.SessionUpdate{State: &next, ConsentGiven: &given})
	if uerr != nil {
		return uerr
	}
	return e.send(ctx, s, e.text(s, i18n.MsgDocsInfo, nil))
}

// handleDocsInfo treats any reply as an acknowledgement of the document list.
func (e *Engine) handleDocsInfo(ctx context.Context, s *domain.Session, _ string) error {
	return e.advance(ctx, s, "", "", domain.StateMainMenu)
}

func (e *Engine) handleMainMenu(ctx context.Context, s *domain.Session, input string) error {
	tok, err := validate.Menu(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	switch tok {
	case validate.MenuApply:
		return e.advance(ctx, s, "", "", domain.StateCollectChildName)
	case validate.MenuStatus:
		return e.send(ctx, s, e.text(s, i18n.MsgStatusComingSoon, nil))
	case validate.MenuDownload:
		return e.send(ctx, s, e.text(s, i18n.MsgDownloadComingSoon, nil))
	default: // help
		return e.send(ctx, s, e.text(s, i18n.MsgHelp, nil))
	}
}

func (e *Engine) handleChildName(ctx context.Context, s *domain.Session, input string) error {
	return e.collectText(ctx, s, input, domain.FieldChildName, domain.StateCollectDOB)
}

func (e *Engine) handleDOB(ctx context.Context, s *domain.Session, input string) error {
	dob, err := validate.DOB(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	return e.advance(ctx, s, domain.FieldDOB, dob, domain.StateCollectGender)
}

func (e *Engine) handleGender(ctx context.Context, s *domain.Session, input string) error {
	tok, err := validate.Gender(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	return e.advance(ctx, s, domain.FieldGender, genderLabel(s.Locale, tok), domain.StateCollectFatherName)
}

func (e *Engine) handleFatherName(ctx context.Context, s *domain.Session, input string) error {
	return e.collectText(ctx, s, input, domain.FieldFatherName, domain.StateCollectMotherName)
}

func (e *Engine) handleMotherName(ctx context.Context, s *domain.Session, input string) error {
	return e.collectText(ctx, s, input, domain.FieldMotherName, domain.StateCollectPlaceBirth)
}

// handlePlaceOfBirth branches the flow: a hospital birth collects the
// hospital name before the address, anything else goes straight to address.
func (e *Engine) handlePlaceOfBirth(ctx context.Context, s *domain.Session, input string) error {
	tok, err := validate.PlaceOfBirth(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	next := domain.StateCollectAddress
	if tok == validate.PlaceHospital {
		next = domain.StateCollectHospital
	}
	return e.advance(ctx, s, domain.FieldPlaceOfBirth, placeLabel(s.Locale, tok), next)
}

func (e *Engine) handleHospitalName(ctx context.Context, s *domain.Session, input string) error {
	return e.collectText(ctx, s, input, domain.FieldHospitalName, domain.StateCollectAddress)
}

func (e *Engine) handleAddress(ctx context.Context, s *domain.Session, input string) error {
	return e.collectText(ctx, s, input, domain.FieldAddress, domain.StateCollectMobile)
}

func (e *Engine) handleMobile(ctx context.Context, s *domain.Session, input string) error {
	mobile, err := validate.Mobile(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	next := domain.StateConfirmDetails
	s, uerr := e.sessions.Update(ctx, s.ConversantID, store.SessionUpdate{
		State:  &next,
		Fields: map[domain.FieldKey]string{domain.FieldMobile: mobile},
	})
	if uerr != nil {
		return uerr
	}
	return e.send(ctx, s, e.confirmPrompt(s))
}

func (e *Engine) handleConfirmation(ctx context.Context, s *domain.Session, input string) error {
	tok, err := validate.Confirm(input)
	if err != nil {
		return e.invalid(ctx, s)
	}
	if tok == validate.ConfirmNo {
		if err := e.send(ctx, s, e.text(s, i18n.MsgApplicationCancelled, nil)); err != nil {
			return err
		}
		return e.sessions.Delete(ctx, s.ConversantID)
	}

	// The record write happens before the session reset: a crash between the
	// two leaves an extra CONFIRM_DETAILS session, never a lost application.
	rec := &domain.ApplicationRecord{ConversantID: s.ConversantID}
	domain.RecordFields(rec, s.Fields)
	if cerr := e.records.Create(ctx, rec); cerr != nil {
		res := e.classifier.Classify(ctx, cerr, boterr.Context{
			ConversantID: s.ConversantID,
			State:        s.State,
			Action:       "submit",
			Locale:       s.Locale,
		})
		return e.send(ctx, s, wa.Text{Body: res.UserMessage})
	}

	next := domain.StateMainMenu
	s, uerr := e.sessions.Update(ctx, s.ConversantID, store.SessionUpdate{State: &next, ResetFields: true})
	if uerr != nil {
		return uerr
	}
	return e.send(ctx, s, e.text(s, i18n.MsgApplicationSubmitted, map[string]string{"applicationId": rec.ID}))
}

// genderLabel returns the localized display value stored in the record.
func genderLabel(loc domain.Locale, token string) string {
	if loc == domain.LocaleHI {
		switch token {
		case validate.GenderMale:
			return "पुरुष"
		case validate.GenderFemale:
			return "महिला"
		default:
			return "अन्य"
		}
	}
	switch token {
	case validate.GenderMale:
		return "Male"
	case validate.GenderFemale:
		return "Female"
	default:
		return "Other"
	}
}

// placeLabel returns the localized display value stored in the record.
func placeLabel(loc domain.Locale, token string) string {
	if loc == domain.LocaleHI {
		switch token {
		case validate.PlaceHospital:
			return "अस्पताल"
		case validate.PlaceHome:
			return "घर"
		default:
			return "अन्य"
		}
	}
	switch token {
	case validate.PlaceHospital:
		return "Hospital"
	case validate.PlaceHome:
		return "Home"
	default:
		return "Other"
	}
}
