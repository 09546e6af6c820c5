package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/instagov/birthbot/internal/boterr"
	"github.com/instagov/birthbot/internal/domain"
	"github.com/instagov/birthbot/internal/i18n"
	"github.com/instagov/birthbot/internal/store"
	"github.com/instagov/birthbot/internal/wa"
)

type sentMsg struct {
	to  string
	msg wa.Message
}

// fakeSender records outbound messages and can fail scripted calls.
type fakeSender struct {
	sent  []sentMsg
	errs  []error
	calls int
}

func (f *fakeSender) Send(_ context.Context, to string, msg wa.Message) (*wa.Receipt, error) {
	idx := f.calls
	f.calls++
	f.sent = append(f.sent, sentMsg{to: to, msg: msg})
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	return &wa.Receipt{MessageID: "wamid.test"}, nil
}

func (f *fakeSender) last(t *testing.T) wa.Message {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatalf("no messages sent")
	}
	return f.sent[len(f.sent)-1].msg
}

type fakeRecords struct {
	created []domain.ApplicationRecord
	err     error
}

func (f *fakeRecords) Create(_ context.Context, rec *domain.ApplicationRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = fmt.Sprintf("BC%d", 1000+len(f.created))
	rec.Status = domain.StatusSubmitted
	rec.SubmittedAt = time.Now().UTC()
	f.created = append(f.created, *rec)
	return nil
}

func (f *fakeRecords) Get(_ context.Context, id string) (*domain.ApplicationRecord, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			cp := f.created[i]
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRecords) ListPage(_ context.Context, _, _ int) ([]domain.ApplicationRecord, error) {
	return f.created, nil
}

func (f *fakeRecords) Count(_ context.Context) (int64, error) {
	return int64(len(f.created)), nil
}

type fakeLedger struct {
	seen    map[string]bool
	seenErr error
}

func newFakeLedger() *fakeLedger { return &fakeLedger{seen: make(map[string]bool)} }

func (f *fakeLedger) Seen(_ context.Context, messageID string, _ time.Time) (bool, error) {
	if f.seenErr != nil {
		return false, f.seenErr
	}
	return f.seen[messageID], nil
}

func (f *fakeLedger) MarkProcessed(_ context.Context, messageID, _ string, _ time.Duration) error {
	f.seen[messageID] = true
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string) {}

type testRig struct {
	engine   *Engine
	sessions *store.MemorySessions
	records  *fakeRecords
	sender   *fakeSender
	ledger   *fakeLedger
	seq      int
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	catalog := i18n.Default()
	rig := &testRig{
		sessions: store.NewMemorySessions(),
		records:  &fakeRecords{},
		sender:   &fakeSender{},
		ledger:   newFakeLedger(),
	}
	rig.engine = New(Options{
		Sessions:   rig.sessions,
		Records:    rig.records,
		Ledger:     rig.ledger,
		Sender:     rig.sender,
		Catalog:    catalog,
		Classifier: boterr.NewClassifier(catalog, nopNotifier{}, zerolog.Nop(), 1000),
		DedupTTL:   time.Hour,
		Log:        zerolog.Nop(),
	})
	return rig
}

// say feeds one text event and fails the test on a processing error.
func (r *testRig) say(t *testing.T, from, input string) {
	t.Helper()
	r.seq++
	ev := wa.InboundEvent{
		ConversantID: from,
		MessageID:    fmt.Sprintf("wamid.%d", r.seq),
		Type:         wa.EventText,
		Body:         input,
	}
	if err := r.engine.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent(%q): %v", input, err)
	}
}

func (r *testRig) state(t *testing.T, from string) *domain.Session {
	t.Helper()
	s, err := r.sessions.GetOrCreate(context.Background(), from)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	return s
}

func TestFullDialogue_HospitalBirth(t *testing.T) {
	rig := newTestRig(t)
	from := "919876543210"

	steps := []string{
		"hi",             // greet -> language buttons
		"lang_en",        // language -> consent
		"consent_yes",    // consent -> document list
		"ok",             // ack -> main menu
		"1",              // apply -> child name
		"Aanya Sharma",   // -> dob
		"15/08/2025",     // -> gender
		"gender_female",  // -> father name
		"Rahul Sharma",   // -> mother name
		"Priya Sharma",   // -> place of birth
		"place_hospital", // -> hospital name
		"IGMC Shimla",    // -> address
		"Ward 4, Shimla", // -> mobile
		"98765 43210",    // -> confirmation
	}
	for _, in := range steps {
		rig.say(t, from, in)
	}
	if got := rig.state(t, from).State; got != domain.StateConfirmDetails {
		t.Fatalf("state before confirm = %s", got)
	}

	// The confirmation summary must carry every collected value.
	btns, ok := rig.sender.last(t).(wa.Buttons)
	if !ok {
		t.Fatalf("confirmation prompt is %T, want wa.Buttons", rig.sender.last(t))
	}
	for _, want := range []string{"Aanya Sharma", "15/08/2025", "Female", "Hospital - IGMC Shimla", "9876543210"} {
		if !strings.Contains(btns.Body, want) {
			t.Fatalf("summary missing %q: %q", want, btns.Body)
		}
	}

	rig.say(t, from, "confirm_yes")

	if len(rig.records.created) != 1 {
		t.Fatalf("records created = %d, want 1", len(rig.records.created))
	}
	rec := rig.records.created[0]
	if rec.ConversantID != from {
		t.Errorf("ConversantID = %q", rec.ConversantID)
	}
	if rec.ChildName != "Aanya Sharma" || rec.DOB != "15/08/2025" || rec.Gender != "Female" {
		t.Errorf("child columns wrong: %+v", rec)
	}
	if rec.FatherName != "Rahul Sharma" || rec.MotherName != "Priya Sharma" {
		t.Errorf("parent columns wrong: %+v", rec)
	}
	if rec.PlaceOfBirth != "Hospital" || rec.HospitalName != "IGMC Shimla" {
		t.Errorf("place columns wrong: %+v", rec)
	}
	if rec.Address != "Ward 4, Shimla" || rec.Mobile != "9876543210" {
		t.Errorf("contact columns wrong: %+v", rec)
	}
	if rec.Status != domain.StatusSubmitted {
		t.Errorf("Status = %q", rec.Status)
	}

	// Session returns to the menu with the collected fields cleared.
	s := rig.state(t, from)
	if s.State != domain.StateMainMenu {
		t.Errorf("state after submit = %s", s.State)
	}
	if len(s.Fields) != 0 {
		t.Errorf("fields not reset: %v", s.Fields)
	}

	// The submitted notice carries the generated application id.
	txt, ok := rig.sender.last(t).(wa.Text)
	if !ok || !strings.Contains(txt.Body, rec.ID) {
		t.Errorf("submitted notice missing id %q: %#v", rec.ID, rig.sender.last(t))
	}
}

func TestFullDialogue_HomeBirthSkipsHospital(t *testing.T) {
	rig := newTestRig(t)
	from := "919812345678"

	for _, in := range []string{
		"hello", "english", "agree", "ok", "apply",
		"Rohan Verma", "01/01/2026", "male", "Amit Verma", "Sunita Verma",
	} {
		rig.say(t, from, in)
	}
	rig.say(t, from, "home")

	if got := rig.state(t, from).State; got != domain.StateCollectAddress {
		t.Fatalf("home birth should skip hospital name, state = %s", got)
	}

	rig.say(t, from, "Village Rampur")
	rig.say(t, from, "9812345678")
	rig.say(t, from, "yes")

	if len(rig.records.created) != 1 {
		t.Fatalf("records created = %d", len(rig.records.created))
	}
	rec := rig.records.created[0]
	if rec.PlaceOfBirth != "Home" || rec.HospitalName != "" {
		t.Errorf("place columns = %q/%q", rec.PlaceOfBirth, rec.HospitalName)
	}
	if rec.Gender != "Male" {
		t.Errorf("Gender = %q", rec.Gender)
	}
}

func TestHindiLocale_StoresLocalizedLabels(t *testing.T) {
	rig := newTestRig(t)
	from := "919811111111"

	for _, in := range []string{"hi", "lang_hi", "consent_yes", "ok", "1"} {
		rig.say(t, from, in)
	}
	s := rig.state(t, from)
	if s.Locale != domain.LocaleHI {
		t.Fatalf("Locale = %q", s.Locale)
	}

	for _, in := range []string{"बेटी", "05/05/2026", "महिला", "पिता", "माता", "घर"} {
		rig.say(t, from, in)
	}
	s = rig.state(t, from)
	if s.Fields[domain.FieldGender] != "महिला" {
		t.Errorf("gender label = %q", s.Fields[domain.FieldGender])
	}
	if s.Fields[domain.FieldPlaceOfBirth] != "घर" {
		t.Errorf("place label = %q", s.Fields[domain.FieldPlaceOfBirth])
	}
}

func TestInvalidInput_NeverTransitions(t *testing.T) {
	rig := newTestRig(t)
	from := "919822222222"

	for _, in := range []string{"hi", "lang_en", "consent_yes", "ok", "1", "Aanya"} {
		rig.say(t, from, in)
	}
	if got := rig.state(t, from).State; got != domain.StateCollectDOB {
		t.Fatalf("state = %s", got)
	}

	before := len(rig.sender.sent)
	rig.say(t, from, "yesterday")

	if got := rig.state(t, from).State; got != domain.StateCollectDOB {
		t.Fatalf("invalid input transitioned to %s", got)
	}
	// Invalid-input notice followed by the same question again.
	if got := len(rig.sender.sent) - before; got != 2 {
		t.Fatalf("sent %d messages on invalid input, want 2", got)
	}
	notice := rig.sender.sent[before].msg.(wa.Text)
	want := i18n.Default().Render(domain.LocaleEN, i18n.MsgInvalidInput, nil)
	if notice.Body != want {
		t.Errorf("notice = %q, want %q", notice.Body, want)
	}
}

func TestGlobalCommands(t *testing.T) {
	rig := newTestRig(t)
	from := "919833333333"

	for _, in := range []string{"hi", "lang_en", "consent_yes", "ok", "1", "Aanya"} {
		rig.say(t, from, in)
	}

	// MENU abandons the flow and returns to the main menu from any state.
	rig.say(t, from, "Menu")
	if got := rig.state(t, from).State; got != domain.StateMainMenu {
		t.Fatalf("menu command: state = %s", got)
	}

	// HELP answers without touching the state.
	rig.say(t, from, "help")
	if got := rig.state(t, from).State; got != domain.StateMainMenu {
		t.Fatalf("help command changed state to %s", got)
	}
	txt := rig.sender.last(t).(wa.Text)
	if want := i18n.Default().Render(domain.LocaleEN, i18n.MsgHelp, nil); txt.Body != want {
		t.Errorf("help body = %q", txt.Body)
	}
}

func TestConsentDeclined_ForgetsSession(t *testing.T) {
	rig := newTestRig(t)
	from := "919844444444"

	rig.say(t, from, "hi")
	rig.say(t, from, "lang_en")
	rig.say(t, from, "consent_no")

	if n, _ := rig.sessions.Len(context.Background()); n != 0 {
		t.Fatalf("session survived consent decline, len = %d", n)
	}
	txt := rig.sender.last(t).(wa.Text)
	if want := i18n.Default().Render(domain.LocaleEN, i18n.MsgConsentDeclined, nil); txt.Body != want {
		t.Errorf("goodbye = %q", txt.Body)
	}

	// The next contact starts over from the greeting.
	rig.say(t, from, "hi again")
	if got := rig.state(t, from).State; got != domain.StateLanguageSelection {
		t.Errorf("fresh contact state = %s", got)
	}
}

func TestConfirmDeclined_NoRecordWritten(t *testing.T) {
	rig := newTestRig(t)
	from := "919855555555"

	for _, in := range []string{
		"hi", "lang_en", "consent_yes", "ok", "1",
		"Aanya", "15/08/2025", "female", "Rahul", "Priya",
		"home", "Shimla", "9876543210",
	} {
		rig.say(t, from, in)
	}
	rig.say(t, from, "confirm_no")

	if len(rig.records.created) != 0 {
		t.Fatalf("declined confirmation wrote %d records", len(rig.records.created))
	}
	if n, _ := rig.sessions.Len(context.Background()); n != 0 {
		t.Fatalf("session survived cancellation")
	}
}

func TestDuplicateDelivery_Dropped(t *testing.T) {
	rig := newTestRig(t)
	from := "919866666666"

	ev := wa.InboundEvent{
		ConversantID: from,
		MessageID:    "wamid.dup",
		Type:         wa.EventText,
		Body:         "hi",
	}
	if err := rig.engine.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	before := len(rig.sender.sent)

	if err := rig.engine.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(rig.sender.sent) != before {
		t.Fatalf("redelivery produced output")
	}
	if got := rig.state(t, from).State; got != domain.StateLanguageSelection {
		t.Fatalf("redelivery advanced state to %s", got)
	}
}

func TestLedgerFailure_StillProcesses(t *testing.T) {
	rig := newTestRig(t)
	rig.ledger.seenErr = errors.New("ledger down")
	from := "919877777777"

	rig.say(t, from, "hi")
	if len(rig.sender.sent) == 0 {
		t.Fatalf("event silenced by failing ledger")
	}
}

func TestSendFailure_AnswersWithClassifiedMessage(t *testing.T) {
	rig := newTestRig(t)
	rig.sender.errs = []error{boterr.Delivery(500, errors.New("boom"))}
	from := "919888888888"

	rig.say(t, from, "hi")

	// The failed prompt is followed by the classified localized notice.
	if rig.sender.calls != 2 {
		t.Fatalf("sends = %d, want 2", rig.sender.calls)
	}
	txt, ok := rig.sender.last(t).(wa.Text)
	if !ok || txt.Body == "" {
		t.Fatalf("failure notice = %#v", rig.sender.last(t))
	}
}

func TestRecordWriteFailure_KeepsConfirmState(t *testing.T) {
	rig := newTestRig(t)
	from := "919899999999"

	for _, in := range []string{
		"hi", "lang_en", "consent_yes", "ok", "1",
		"Aanya", "15/08/2025", "female", "Rahul", "Priya",
		"home", "Shimla", "9876543210",
	} {
		rig.say(t, from, in)
	}

	rig.records.err = errors.New("disk full")
	rig.say(t, from, "yes")

	if len(rig.records.created) != 0 {
		t.Fatalf("failed create still stored a record")
	}
	if got := rig.state(t, from).State; got != domain.StateConfirmDetails {
		t.Fatalf("state after failed submit = %s, want CONFIRM_DETAILS", got)
	}

	// The conversant can simply confirm again once the store recovers.
	rig.records.err = nil
	rig.say(t, from, "yes")
	if len(rig.records.created) != 1 {
		t.Fatalf("retry after recovery did not submit")
	}
	if got := rig.state(t, from).State; got != domain.StateMainMenu {
		t.Fatalf("state after retry = %s", got)
	}
}

func TestStatusAndDownload_StayInMenu(t *testing.T) {
	rig := newTestRig(t)
	from := "919810101010"

	for _, in := range []string{"hi", "lang_en", "consent_yes", "ok"} {
		rig.say(t, from, in)
	}

	rig.say(t, from, "status")
	if got := rig.state(t, from).State; got != domain.StateMainMenu {
		t.Fatalf("status left the menu: %s", got)
	}
	rig.say(t, from, "download")
	if got := rig.state(t, from).State; got != domain.StateMainMenu {
		t.Fatalf("download left the menu: %s", got)
	}
}

func TestNew_PanicsOnUncoveredState(t *testing.T) {
	orig := domain.AllStates
	domain.AllStates = append(append([]domain.State{}, orig...), domain.State("GHOST"))
	defer func() { domain.AllStates = orig }()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for uncovered state")
		}
	}()
	newTestRig(t)
}

func TestSubmitApplication_WebForm(t *testing.T) {
	rig := newTestRig(t)

	fields := map[domain.FieldKey]string{
		domain.FieldChildName:    "Aanya Sharma",
		domain.FieldDOB:          "15/08/2025",
		domain.FieldGender:       "Female",
		domain.FieldFatherName:   "Rahul Sharma",
		domain.FieldMotherName:   "Priya Sharma",
		domain.FieldPlaceOfBirth: "Hospital",
		domain.FieldHospitalName: "IGMC Shimla",
		domain.FieldAddress:      "Ward 4, Shimla",
		domain.FieldMobile:       "9876543210",
	}
	rec, err := rig.engine.SubmitApplication(context.Background(), domain.LocaleEN, fields)
	if err != nil {
		t.Fatalf("SubmitApplication: %v", err)
	}
	if rec.ID == "" || rec.Mobile != "9876543210" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.ConversantID != "9876543210" {
		t.Errorf("ConversantID = %q", rec.ConversantID)
	}

	// The confirmation notice goes to the applicant's number, best effort.
	if len(rig.sender.sent) != 1 || rig.sender.sent[0].to != "9876543210" {
		t.Errorf("notification sends = %+v", rig.sender.sent)
	}
}

// slowSender dwells inside Send and records the peak number of concurrent
// deliveries. Safe for concurrent use, unlike fakeSender.
type slowSender struct {
	mu     sync.Mutex
	inSend int
	peak   int
	sent   int
}

func (s *slowSender) Send(_ context.Context, _ string, _ wa.Message) (*wa.Receipt, error) {
	s.mu.Lock()
	s.inSend++
	if s.inSend > s.peak {
		s.peak = s.inSend
	}
	s.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	s.mu.Lock()
	s.inSend--
	s.sent++
	s.mu.Unlock()
	return &wa.Receipt{MessageID: "wamid.test"}, nil
}

func newConcurrencyEngine(sender Sender) *Engine {
	catalog := i18n.Default()
	return New(Options{
		Sessions:   store.NewMemorySessions(),
		Records:    &fakeRecords{},
		Sender:     sender,
		Catalog:    catalog,
		Classifier: boterr.NewClassifier(catalog, nopNotifier{}, zerolog.Nop(), 1000),
		DedupTTL:   time.Hour,
		Log:        zerolog.Nop(),
	})
}

func TestConcurrentEvents_OneConversantSerialized(t *testing.T) {
	sender := &slowSender{}
	e := newConcurrencyEngine(sender)
	from := "919876543210"

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev := wa.InboundEvent{
				ConversantID: from,
				MessageID:    fmt.Sprintf("wamid.c%d", i),
				Type:         wa.EventText,
				Body:         "hi",
			}
			if err := e.HandleEvent(context.Background(), ev); err != nil {
				t.Errorf("HandleEvent: %v", err)
			}
		}(i)
	}
	wg.Wait()

	sender.mu.Lock()
	peak, sent := sender.peak, sender.sent
	sender.mu.Unlock()
	if sent < n {
		t.Fatalf("sends = %d, want at least one per event (%d)", sent, n)
	}
	if peak != 1 {
		t.Fatalf("concurrent deliveries for one conversant = %d, want 1", peak)
	}

	// Once the conversant quiesces, no lock entry survives.
	e.mu.Lock()
	left := len(e.locks)
	e.mu.Unlock()
	if left != 0 {
		t.Fatalf("lock entries after quiesce = %d, want 0", left)
	}
}

// gateSender parks one conversant's delivery until any other conversant's
// delivery lands, so the test can prove conversants do not share a lock.
type gateSender struct {
	gated     string
	entered   chan struct{}
	gate      chan struct{}
	enterOnce sync.Once
	gateOnce  sync.Once
}

func (s *gateSender) Send(_ context.Context, to string, _ wa.Message) (*wa.Receipt, error) {
	if to == s.gated {
		s.enterOnce.Do(func() { close(s.entered) })
		<-s.gate
	} else {
		s.gateOnce.Do(func() { close(s.gate) })
	}
	return &wa.Receipt{MessageID: "wamid.test"}, nil
}

func TestConcurrentEvents_IndependentConversants(t *testing.T) {
	sender := &gateSender{
		gated:   "919876543210",
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	e := newConcurrencyEngine(sender)

	gatedDone := make(chan struct{})
	go func() {
		defer close(gatedDone)
		_ = e.HandleEvent(context.Background(), wa.InboundEvent{
			ConversantID: "919876543210",
			MessageID:    "wamid.slow",
			Type:         wa.EventText,
			Body:         "hi",
		})
	}()
	<-sender.entered // first conversant is mid-delivery and parked

	otherDone := make(chan struct{})
	go func() {
		defer close(otherDone)
		_ = e.HandleEvent(context.Background(), wa.InboundEvent{
			ConversantID: "911111111111",
			MessageID:    "wamid.fast",
			Type:         wa.EventText,
			Body:         "hi",
		})
	}()

	select {
	case <-otherDone:
	case <-time.After(3 * time.Second):
		t.Fatal("second conversant blocked behind the first conversant's delivery")
	}
	select {
	case <-gatedDone:
	case <-time.After(3 * time.Second):
		t.Fatal("first conversant never finished")
	}
}

func TestRecordWriteFailure_ClassifiedAsDelivery(t *testing.T) {
	rig := newTestRig(t)
	from := "919800000000"

	for _, in := range []string{
		"hi", "lang_en", "consent_yes", "ok", "1",
		"Aanya", "15/08/2025", "female", "Rahul", "Priya",
		"home", "Shimla", "9876543210",
	} {
		rig.say(t, from, in)
	}

	var buf bytes.Buffer
	rig.engine.classifier = boterr.NewClassifier(i18n.Default(), nopNotifier{}, zerolog.New(&buf), 1000)
	rig.records.err = errors.New("disk full")
	rig.say(t, from, "yes")

	line := buf.String()
	if !strings.Contains(line, `"kind":"delivery_other"`) {
		t.Fatalf("storage failure not classified as delivery_other: %s", line)
	}
	if strings.Contains(line, `"kind":"configuration"`) {
		t.Fatalf("storage failure classified as a credential problem: %s", line)
	}
}
