// Application HTTP handlers.
//
// This file exposes REST endpoints for application records:
//   - POST /api/v1/applications  (web-form submission)
//   - GET  /api/v1/applications  (admin list, paginated)
//   - GET  /api/v1/applications/{id}
//
// Handlers are transport-thin: they validate input, call the conversation
// engine or the record store, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/instagov/birthbot/internal/domain"
	"github.com/instagov/birthbot/internal/http/middleware"
	"github.com/instagov/birthbot/internal/store"
	"github.com/instagov/birthbot/internal/utils"
	"github.com/instagov/birthbot/internal/validate"
)

// idemPrefix namespaces web-form idempotency keys in the delivery ledger so
// they can never collide with webhook message ids.
const idemPrefix = "form:"

//
// Service contracts (context-aware)
//

// ApplicationSubmitter persists a web-form application and notifies the
// applicant. Implementations must be safe for concurrent use.
type ApplicationSubmitter interface {
	SubmitApplication(ctx context.Context, loc domain.Locale, fields map[domain.FieldKey]string) (*domain.ApplicationRecord, error)
}

// OTPService issues and verifies one-time passwords for the web form.
type OTPService interface {
	Issue(mobile string) (string, error)
	Verify(mobile, code string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for the webhook, applications, and OTP.
// It depends on abstract contracts so transport concerns stay separate from
// the engine and stores.
type Handlers struct {
	engine      EventEngine
	submitter   ApplicationSubmitter
	records     store.RecordStore
	otp         OTPService
	ledger      store.DeliveryLedger
	idemTTL     time.Duration
	verifyToken string
}

// New constructs a Handlers instance bound to the given services. The ledger
// is optional; when present it backs Idempotency-Key replay detection for
// web-form submissions.
func New(engine EventEngine, submitter ApplicationSubmitter, records store.RecordStore, otp OTPService, ledger store.DeliveryLedger, idemTTL time.Duration, verifyToken string) *Handlers {
	return &Handlers{
		engine:      engine,
		submitter:   submitter,
		records:     records,
		otp:         otp,
		ledger:      ledger,
		idemTTL:     idemTTL,
		verifyToken: verifyToken,
	}
}

//
// DTOs
//

// SubmitApplicationRequest is the JSON payload of a web-form submission.
type SubmitApplicationRequest struct {
	ChildName    string `json:"child_name" binding:"required" example:"Aanya Sharma"`
	DOB          string `json:"dob" binding:"required" example:"15/08/2025"`
	Gender       string `json:"gender" binding:"required" example:"Female"`
	FatherName   string `json:"father_name" binding:"required" example:"Rahul Sharma"`
	MotherName   string `json:"mother_name" binding:"required" example:"Priya Sharma"`
	PlaceOfBirth string `json:"place_of_birth" binding:"required" example:"Hospital"`
	HospitalName string `json:"hospital_name" example:"IGMC Shimla"`
	Address      string `json:"address" binding:"required" example:"Ward 4, Shimla"`
	Mobile       string `json:"mobile" binding:"required" example:"9876543210"`
	Language     string `json:"language" example:"en"`
}

// SubmitApplicationResponse returns the generated application id.
type SubmitApplicationResponse struct {
	ApplicationID string `json:"application_id" example:"BC1755240000000"`
	Status        string `json:"status" example:"submitted"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListApplicationsResponse wraps a page of records and pagination information.
type ListApplicationsResponse struct {
	Applications []domain.ApplicationRecord `json:"applications"`
	Pagination   Pagination                 `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// SubmitApplication godoc
// @ID          submitApplication
// @Summary     Submit an application from the web form
// @Description Validates the field set, persists the record, and sends the WhatsApp confirmation to the applicant.
// @Tags        Applications
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SubmitApplicationRequest  true  "Application payload"
//
// @Success     201  {object}  handlers.SubmitApplicationResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /applications [post]
func (h *Handlers) SubmitApplication(c *gin.Context) {
	if middleware.IsReplay(c) {
		fail(c, http.StatusConflict, ErrCodeConflict, "submission already accepted")
		return
	}

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	mobile, err := validate.Mobile(req.Mobile)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mobile must be a valid 10-digit Indian number")
		return
	}
	dob, err := validate.DOB(req.DOB)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "dob must be DD/MM/YYYY")
		return
	}

	loc := domain.LocaleEN
	if strings.EqualFold(strings.TrimSpace(req.Language), string(domain.LocaleHI)) {
		loc = domain.LocaleHI
	}

	fields := map[domain.FieldKey]string{
		domain.FieldChildName:    strings.TrimSpace(req.ChildName),
		domain.FieldDOB:          dob,
		domain.FieldGender:       strings.TrimSpace(req.Gender),
		domain.FieldFatherName:   strings.TrimSpace(req.FatherName),
		domain.FieldMotherName:   strings.TrimSpace(req.MotherName),
		domain.FieldPlaceOfBirth: strings.TrimSpace(req.PlaceOfBirth),
		domain.FieldHospitalName: strings.TrimSpace(req.HospitalName),
		domain.FieldAddress:      strings.TrimSpace(req.Address),
		domain.FieldMobile:       mobile,
	}

	rec, err := h.submitter.SubmitApplication(c.Request.Context(), loc, fields)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
		return
	}

	if key, present := middleware.GetIdempotencyKey(c); present && h.ledger != nil {
		if merr := h.ledger.MarkProcessed(c.Request.Context(), idemPrefix+key, mobile, h.idemTTL); merr != nil {
			middleware.LoggerFrom(c).Warn().Err(merr).Msg("idempotency mark failed")
		}
	}
	ok(c, http.StatusCreated, SubmitApplicationResponse{
		ApplicationID: rec.ID,
		Status:        rec.Status,
	})
}

// ListApplications godoc
// @ID          listApplications
// @Summary     List applications (paginated)
// @Description Returns a page of submitted applications, newest first.
// @Tags        Applications
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListApplicationsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /applications [get]
func (h *Handlers) ListApplications(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	total, err := h.records.Count(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	items, err := h.records.ListPage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListApplicationsResponse{
		Applications: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetApplication godoc
// @ID          getApplication
// @Summary     Fetch one application by id
// @Tags        Applications
// @Produce     json
//
// @Param       id  path  string  true  "Application ID"  example(BC1755240000000)
//
// @Success     200  {object}  domain.ApplicationRecord
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /applications/{id} [get]
func (h *Handlers) GetApplication(c *gin.Context) {
	rec, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "application not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, rec)
}
