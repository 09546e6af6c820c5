// Package domain — ApplicationRecord persistence model.
package domain

import "time"

// StatusSubmitted is the only status an application record can carry today.
// Records are immutable once created; there is no update or cancel path.
const StatusSubmitted = "submitted"

// ApplicationRecord is the finalized result of a completed data-collection
// dialogue (or a web-form submission). Records are written once by the
// confirm transition and never mutated or deleted afterwards.
//
// Fields:
//   - ID: generated application id, time-based ("BC" + unix milliseconds),
//     unique across the store and monotonically discriminable.
//   - ConversantID: WhatsApp address the application belongs to.
//   - Child/parent/place/contact columns: complete snapshot of the session
//     fields at submission time.
//   - Status: always "submitted".
//   - SubmittedAt: creation timestamp.
type ApplicationRecord struct {
	ID           string `json:"id"            gorm:"type:TEXT NOT NULL;primaryKey"`
	ConversantID string `json:"conversant_id" gorm:"type:TEXT NOT NULL;index:idx_records_conversant"`

	ChildName    string `json:"child_name"              gorm:"type:TEXT NOT NULL"`
	DOB          string `json:"dob"                     gorm:"type:TEXT NOT NULL"`
	Gender       string `json:"gender"                  gorm:"type:TEXT NOT NULL"`
	FatherName   string `json:"father_name"             gorm:"type:TEXT NOT NULL"`
	MotherName   string `json:"mother_name"             gorm:"type:TEXT NOT NULL"`
	PlaceOfBirth string `json:"place_of_birth"          gorm:"type:TEXT NOT NULL"`
	HospitalName string `json:"hospital_name,omitempty" gorm:"type:TEXT"`
	Address      string `json:"address"                 gorm:"type:TEXT NOT NULL"`
	Mobile       string `json:"mobile"                  gorm:"type:TEXT NOT NULL"`

	Status      string    `json:"status"       gorm:"type:TEXT NOT NULL"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (ApplicationRecord) TableName() string { return "application_records" }

// RecordFields maps a session field snapshot onto application record columns.
// Unknown keys are ignored so the snapshot stays forward-compatible.
func RecordFields(rec *ApplicationRecord, fields map[FieldKey]string) {
	for k, v := range fields {
		switch k {
		case FieldChildName:
			rec.ChildName = v
		case FieldDOB:
			rec.DOB = v
		case FieldGender:
			rec.Gender = v
		case FieldFatherName:
			rec.FatherName = v
		case FieldMotherName:
			rec.MotherName = v
		case FieldPlaceOfBirth:
			rec.PlaceOfBirth = v
		case FieldHospitalName:
			rec.HospitalName = v
		case FieldAddress:
			rec.Address = v
		case FieldMobile:
			rec.Mobile = v
		}
	}
}

// Fields returns the record columns as a field snapshot, the inverse of
// RecordFields. Empty optional columns are omitted.
func (r *ApplicationRecord) Fields() map[FieldKey]string {
	m := map[FieldKey]string{
		FieldChildName:    r.ChildName,
		FieldDOB:          r.DOB,
		FieldGender:       r.Gender,
		FieldFatherName:   r.FatherName,
		FieldMotherName:   r.MotherName,
		FieldPlaceOfBirth: r.PlaceOfBirth,
		FieldAddress:      r.Address,
		FieldMobile:       r.Mobile,
	}
	if r.HospitalName != "" {
		m[FieldHospitalName] = r.HospitalName
	}
	return m
}
