// OTP HTTP handlers.
//
// The web form verifies the applicant's mobile number before accepting a
// submission: POST /api/v1/otp/send issues a code, POST /api/v1/otp/verify
// checks it. Codes are short-lived and single-use.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/instagov/birthbot/internal/boterr"
	"github.com/instagov/birthbot/internal/validate"
)

// SendOTPRequest is the JSON payload for issuing an OTP.
type SendOTPRequest struct {
	Mobile string `json:"mobile" binding:"required" example:"9876543210"`
}

// VerifyOTPRequest is the JSON payload for checking an OTP.
type VerifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required" example:"9876543210"`
	Code   string `json:"code" binding:"required" example:"482913"`
}

// SendOTP godoc
// @ID          sendOTP
// @Summary     Issue a one-time password for a mobile number
// @Tags        OTP
// @Accept      json
//
// @Param       body  body  handlers.SendOTPRequest  true  "Target mobile"
//
// @Success     204  {string}  string  "OTP issued"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /otp/send [post]
func (h *Handlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	mobile, err := validate.Mobile(req.Mobile)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mobile must be a valid 10-digit Indian number")
		return
	}
	if _, err := h.otp.Issue(mobile); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue code")
		return
	}
	noContent(c)
}

// VerifyOTP godoc
// @ID          verifyOTP
// @Summary     Verify a one-time password
// @Tags        OTP
// @Accept      json
//
// @Param       body  body  handlers.VerifyOTPRequest  true  "Mobile and code"
//
// @Success     204  {string}  string  "Verified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or wrong code"
// @Failure     410  {object}  handlers.ErrorResponse  "Code expired"
// @Router      /otp/verify [post]
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	mobile, err := validate.Mobile(req.Mobile)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mobile must be a valid 10-digit Indian number")
		return
	}
	code, err := validate.OTP(req.Code)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeOTPInvalid, "code must be 6 digits")
		return
	}

	if err := h.otp.Verify(mobile, code); err != nil {
		var te *boterr.Error
		if errors.As(err, &te) && te.Reason == "expired" {
			fail(c, http.StatusGone, ErrCodeOTPExpired, "code expired, request a new one")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeOTPInvalid, "code did not match")
		return
	}
	noContent(c)
}
