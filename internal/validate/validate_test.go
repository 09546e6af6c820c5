package validate

import (
	"errors"
	"testing"
)

func TestMobile(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "9876543210", true},
		{"6000000000", "6000000000", true},
		// formatting characters are stripped before validation
		{"98765 43210", "9876543210", true},
		{"+91 98765-43210", "", false}, // country code makes it 12 digits
		{"98-76-54-32-10", "9876543210", true},
		// first digit must be 6-9
		{"5876543210", "", false},
		{"1234567890", "", false},
		// wrong lengths
		{"987654321", "", false},
		{"98765432100", "", false},
		{"", "", false},
		{"abcdefghij", "", false},
	}
	for _, tc := range cases {
		got, err := Mobile(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("Mobile(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidMobile) {
			t.Fatalf("Mobile(%q) err = %v; want ErrInvalidMobile", tc.in, err)
		}
	}
}

func TestOTP(t *testing.T) {
	if got, err := OTP(" 482913 "); err != nil || got != "482913" {
		t.Fatalf("OTP trim failed: %q %v", got, err)
	}
	for _, bad := range []string{"48291", "4829134", "48a913", "", "48 2913"} {
		if _, err := OTP(bad); !errors.Is(err, ErrInvalidOTPFormat) {
			t.Fatalf("OTP(%q) expected format error, got %v", bad, err)
		}
	}
}

func TestDOB(t *testing.T) {
	if got, err := DOB(" 15/08/2025 "); err != nil || got != "15/08/2025" {
		t.Fatalf("DOB trim failed: %q %v", got, err)
	}
	for _, bad := range []string{"15-08-2025", "2025/08/15", "5/8/2025", "15/08/25", "tomorrow", ""} {
		if _, err := DOB(bad); !errors.Is(err, ErrInvalidDateFormat) {
			t.Fatalf("DOB(%q) expected format error, got %v", bad, err)
		}
	}
}

func TestGender(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", GenderMale},
		{"2", GenderFemale},
		{"3", GenderOther},
		{"male", GenderMale},
		{"Female", GenderFemale},
		// "female" contains "male"; ordering must not misclassify it
		{"FEMALE", GenderFemale},
		{"gender_male", GenderMale},
		{"gender_female", GenderFemale},
		{"gender_other", GenderOther},
		{"पुरुष", GenderMale},
		{"महिला", GenderFemale},
	}
	for _, tc := range cases {
		got, err := Gender(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("Gender(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := Gender("robot"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected choice error")
	}
}

func TestPlaceOfBirth(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", PlaceHospital},
		{"2", PlaceHome},
		{"3", PlaceOther},
		{"at the hospital", PlaceHospital},
		{"home", PlaceHome},
		{"place_hospital", PlaceHospital},
		{"place_home", PlaceHome},
		{"अस्पताल", PlaceHospital},
	}
	for _, tc := range cases {
		got, err := PlaceOfBirth(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("PlaceOfBirth(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", LanguageEN},
		{"2", LanguageHI},
		{"english", LanguageEN},
		{"Hindi", LanguageHI},
		{"lang_en", LanguageEN},
		{"lang_hi", LanguageHI},
		{"हिंदी", LanguageHI},
	}
	for _, tc := range cases {
		got, err := Language(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("Language(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := Language("french"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected choice error")
	}
}

func TestConfirmAndConsent(t *testing.T) {
	if got, _ := Confirm("yes please"); got != ConfirmYes {
		t.Fatalf("Confirm keyword substring failed")
	}
	if got, _ := Confirm("confirm_no"); got != ConfirmNo {
		t.Fatalf("Confirm button id failed")
	}
	if got, _ := Consent("consent_yes"); got != ConfirmYes {
		t.Fatalf("Consent accept id failed")
	}
	if got, _ := Consent("consent_no"); got != ConfirmNo {
		t.Fatalf("Consent decline id failed")
	}
	if got, _ := Consent("I agree"); got != ConfirmYes {
		t.Fatalf("Consent keyword failed")
	}
}

func TestMenu(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", MenuApply},
		{"2", MenuStatus},
		{"3", MenuDownload},
		{"4", MenuHelp},
		{"apply", MenuApply},
		{"check STATUS", MenuStatus},
		{"download certificate", MenuDownload},
	}
	for _, tc := range cases {
		got, err := Menu(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("Menu(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := Menu("99"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected choice error")
	}
}
