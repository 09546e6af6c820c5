// Package domain defines the core data model of the bot: conversation
// sessions, finalized application records, and the webhook delivery ledger.
// Persistent types are mapped with GORM; the Session lives only in memory
// behind the store.SessionStore interface.
package domain

import "time"

// State names a stage of the data-collection dialogue. The engine owns the
// legal transitions between states; everything else treats State as opaque.
type State string

// Dialogue states, in flow order. CollectHospitalName is only visited when
// the conversant selects "hospital" as the place of birth.
const (
	StateInitial           State = "INITIAL"
	StateLanguageSelection State = "LANGUAGE_SELECTION"
	StateConsent           State = "CONSENT"
	StateDocsInfo          State = "DOCS_INFO"
	StateMainMenu          State = "MAIN_MENU"
	StateCollectChildName  State = "COLLECT_CHILD_NAME"
	StateCollectDOB        State = "COLLECT_DOB"
	StateCollectGender     State = "COLLECT_GENDER"
	StateCollectFatherName State = "COLLECT_FATHER_NAME"
	StateCollectMotherName State = "COLLECT_MOTHER_NAME"
	StateCollectPlaceBirth State = "COLLECT_PLACE_OF_BIRTH"
	StateCollectHospital   State = "COLLECT_HOSPITAL_NAME"
	StateCollectAddress    State = "COLLECT_ADDRESS"
	StateCollectMobile     State = "COLLECT_MOBILE"
	StateConfirmDetails    State = "CONFIRM_DETAILS"
)

// AllStates lists every dialogue state. The engine checks its transition
// table against this list at construction time so an unhandled state is a
// startup error rather than a silent fallthrough.
var AllStates = []State{
	StateInitial,
	StateLanguageSelection,
	StateConsent,
	StateDocsInfo,
	StateMainMenu,
	StateCollectChildName,
	StateCollectDOB,
	StateCollectGender,
	StateCollectFatherName,
	StateCollectMotherName,
	StateCollectPlaceBirth,
	StateCollectHospital,
	StateCollectAddress,
	StateCollectMobile,
	StateConfirmDetails,
}

// Locale selects a message set. Only English and Hindi are supported;
// anything else falls back to English at lookup time.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleHI Locale = "hi"
)

// FieldKey names a collected application field.
type FieldKey string

const (
	FieldChildName    FieldKey = "child_name"
	FieldDOB          FieldKey = "dob"
	FieldGender       FieldKey = "gender"
	FieldFatherName   FieldKey = "father_name"
	FieldMotherName   FieldKey = "mother_name"
	FieldPlaceOfBirth FieldKey = "place_of_birth"
	FieldHospitalName FieldKey = "hospital_name"
	FieldAddress      FieldKey = "address"
	FieldMobile       FieldKey = "mobile"
)

// Session is the mutable per-conversant record of dialogue progress and
// accumulated field values. Exactly one Session exists per conversant id;
// it is created on first contact and deleted on reset.
type Session struct {
	// ConversantID is the stable WhatsApp address (phone number) of the
	// conversant. Immutable for the lifetime of the session.
	ConversantID string

	// State is the current dialogue stage.
	State State

	// Locale selects the message set used for prompts.
	Locale Locale

	// Fields holds the values collected so far, keyed by field name.
	Fields map[FieldKey]string

	// ConsentGiven records that the conversant accepted data collection.
	ConsentGiven bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession returns a fresh session for the conversant in the INITIAL state.
func NewSession(conversantID string, now time.Time) *Session {
	return &Session{
		ConversantID: conversantID,
		State:        StateInitial,
		Locale:       LocaleEN,
		Fields:       make(map[FieldKey]string),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of the session. Stores hand out clones so callers
// cannot mutate shared state without going through Update.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Fields = make(map[FieldKey]string, len(s.Fields))
	for k, v := range s.Fields {
		cp.Fields[k] = v
	}
	return &cp
}
