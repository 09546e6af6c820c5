package engine

import (
	"context"

	"github.com/instagov/birthbot/internal/domain"
	"github.com/instagov/birthbot/internal/i18n"
	"github.com/instagov/birthbot/internal/wa"
)

// SubmitApplication persists an application submitted through the web form
// and sends the localized confirmation to the applicant's WhatsApp number.
// The write is authoritative: a failed confirmation delivery is classified
// and logged but never fails the submission.
func (e *Engine) SubmitApplication(ctx context.Context, loc domain.Locale, fields map[domain.FieldKey]string) (*domain.ApplicationRecord, error) {
	rec := &domain.ApplicationRecord{ConversantID: fields[domain.FieldMobile]}
	domain.RecordFields(rec, fields)
	if err := e.records.Create(ctx, rec); err != nil {
		return nil, err
	}

	body := e.catalog.Render(loc, i18n.MsgApplicationSubmitted, map[string]string{"applicationId": rec.ID})
	if _, err := e.sender.Send(ctx, rec.ConversantID, wa.Text{Body: body}); err != nil {
		e.log.Warn().Err(err).
			Str("application_id", rec.ID).
			Msg("submission confirmation undeliverable")
	}
	return rec, nil
}
