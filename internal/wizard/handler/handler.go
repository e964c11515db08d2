// Package handler exposes the enrollment wizard over HTTP. Each endpoint
// loads the caller's session, checks it is at the right step, runs the
// service operation and advances the session.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/enrollment/models"
	"enrolld/internal/enrollment/service"
	"enrolld/internal/receipt"
	"enrolld/internal/score/extract"
	"enrolld/internal/wizard"
	"enrolld/internal/wizard/token"
	dErrors "enrolld/pkg/domain-errors"
	"enrolld/pkg/platform/httputil"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/requestcontext"
)

// SessionHeader carries the signed wizard session token between steps.
const SessionHeader = "X-Enrollment-Session"

// maxReportSize bounds uploaded score reports. Real reports are well under
// a megabyte.
const maxReportSize = 8 << 20

// Service defines the interface for wizard operations.
type Service interface {
	CheckWindow(ctx context.Context) error
	Identify(ctx context.Context, registrationNumber string) (*service.IdentifyResult, error)
	ValidateScore(ctx context.Context, student models.StudentIdentity, isEntrant bool, tok string) (*service.ValidateResult, error)
	Options(ctx context.Context, predicted float64) (*service.OptionsResult, error)
	Submit(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error)
}

// Handler wires the wizard endpoints to the enrollment service.
type Handler struct {
	service  Service
	sessions wizard.Store
	signer   *token.Signer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New constructs a wizard handler with its dependencies.
func New(svc Service, sessions wizard.Store, signer *token.Signer, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  svc,
		sessions: sessions,
		signer:   signer,
		logger:   logger,
		metrics:  m,
	}
}

// Register mounts the wizard endpoints on the router. Every step is gated on
// the enrollment window.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireOpenWindow)
		r.Post("/enroll/identify", h.HandleIdentify)
		r.Post("/enroll/score", h.HandleScore)
		r.Get("/enroll/options", h.HandleOptions)
		r.Post("/enroll/submit", h.HandleSubmit)
		r.Get("/enroll/receipt", h.HandleReceipt)
	})
}

func (h *Handler) requireOpenWindow(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.CheckWindow(r.Context()); err != nil {
			httputil.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// session loads and verifies the caller's wizard session. Expired or missing
// sessions tell the student to restart rather than failing opaquely.
func (h *Handler) session(ctx context.Context, r *http.Request) (*wizard.Session, error) {
	raw := strings.TrimSpace(r.Header.Get(SessionHeader))
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing session token; start from the identification step")
	}
	id, err := h.signer.SessionID(raw)
	if err != nil {
		return nil, err
	}
	sess, err := h.sessions.Find(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired; start from the identification step")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "session lookup failed")
	}
	return sess, nil
}

// HandleIdentify handles POST /enroll/identify requests.
func (h *Handler) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	now := requestcontext.Now(ctx)

	req, ok := httputil.DecodeAndPrepare[IdentifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Identify(ctx, req.RegistrationNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "identification failed",
			"request_id", requestID,
			"registration_number", req.RegistrationNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	sess := wizard.New(now)
	sess.Student = result.Student
	sess.IsEntrant = result.IsEntrant
	if err := sess.Advance(wizard.StepValidateScore, now); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sessions.Save(ctx, sess); err != nil {
		h.logger.ErrorContext(ctx, "session save failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "session save failed"))
		return
	}

	signed, err := h.signer.Issue(sess.ID, now)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "session token issue failed"))
		return
	}

	h.logger.InfoContext(ctx, "student identified",
		"request_id", requestID,
		"session_id", sess.ID,
		"registration_number", result.Student.RegistrationNumber,
		"is_entrant", result.IsEntrant,
	)

	httputil.WriteJSON(w, http.StatusOK, IdentifyResponse{
		SessionToken: signed,
		Student:      result.Student,
		IsEntrant:    result.IsEntrant,
		NextStep:     string(sess.Step),
	})
}

// HandleScore handles POST /enroll/score requests. The token arrives either
// as an uploaded PDF report (multipart field "report") or as a JSON body.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	now := requestcontext.Now(ctx)

	sess, err := h.session(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx = requestcontext.WithSessionID(ctx, sess.ID.String())
	if err := sess.Require(wizard.StepValidateScore); err != nil {
		httputil.WriteError(w, err)
		return
	}

	tok, err := h.tokenFromRequest(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if tok == "" {
		// DecodeAndPrepare already wrote the response.
		return
	}

	result, err := h.service.ValidateScore(ctx, sess.Student, sess.IsEntrant, tok)
	if err != nil {
		h.logger.WarnContext(ctx, "score validation failed",
			"request_id", requestID,
			"session_id", sess.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	sess.Student = result.Student
	sess.Record = &result.Record
	sess.Derived = &result.Derived
	sess.IsUpdate = result.IsUpdate
	if err := sess.Advance(wizard.StepConfirm, now); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sessions.Save(ctx, sess); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "session save failed"))
		return
	}

	h.logger.InfoContext(ctx, "score validated",
		"request_id", requestID,
		"session_id", sess.ID,
		"predicted_score", result.Derived.Predicted,
		"is_update", result.IsUpdate,
	)

	httputil.WriteJSON(w, http.StatusOK, scoreResponseFrom(result, sess.Step))
}

// tokenFromRequest extracts the validation token from a multipart upload or
// a JSON body. An empty token with a nil error means the JSON decode helper
// already responded.
func (h *Handler) tokenFromRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		req, ok := httputil.DecodeAndPrepare[ScoreRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
		if !ok {
			return "", nil
		}
		return req.Token, nil
	}

	if err := r.ParseMultipartForm(maxReportSize); err != nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "malformed multipart upload")
	}
	file, _, err := r.FormFile("report")
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "upload the score report as the \"report\" field")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReportSize))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "reading upload failed")
	}

	tok, err := extract.FromPDF(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, extract.ErrTokenNotFound) || errors.Is(err, extract.ErrUnreadable) {
			return "", dErrors.Wrap(err, dErrors.CodeValidation,
				"could not read a validation token from the report; paste the token manually")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "report processing failed")
	}
	return tok, nil
}

// HandleOptions handles GET /enroll/options requests.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.session(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx = requestcontext.WithSessionID(ctx, sess.ID.String())
	if err := sess.Require(wizard.StepConfirm); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Options(ctx, sess.Derived.Predicted)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OptionsResponse{
		Sections:       result.Sections,
		AllowedOptions: result.AllowedOptions,
		CutoffScore:    result.CutoffScore,
	})
}

// HandleSubmit handles POST /enroll/submit requests. A session already at
// the done step may submit again to revise the choice within the window.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	now := requestcontext.Now(ctx)
	start := time.Now()

	sess, err := h.session(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx = requestcontext.WithSessionID(ctx, sess.ID.String())
	if sess.Step == wizard.StepDone {
		if err := sess.Advance(wizard.StepConfirm, now); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if err := sess.Require(wizard.StepConfirm); err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Submit(ctx, service.SubmitRequest{
		Student: sess.Student,
		Token:   sess.Record.Token,
		Derived: *sess.Derived,
		Section: req.Section,
		Option:  req.ParsedOption(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "enrollment submission failed",
			"request_id", requestID,
			"session_id", sess.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	sess.Saved = &result.Record
	// The receipt's status line must agree with what this submit did, not
	// with what the score-validation step predicted.
	sess.IsUpdate = !result.Created
	if err := sess.Advance(wizard.StepDone, now); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sessions.Save(ctx, sess); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "session save failed"))
		return
	}

	h.logger.InfoContext(ctx, "enrollment submitted",
		"request_id", requestID,
		"session_id", sess.ID,
		"registration_number", result.Record.Student.RegistrationNumber,
		"created", result.Created,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
		Created:  result.Created,
		Record:   result.Record,
		NextStep: string(sess.Step),
	})
}

// HandleReceipt handles GET /enroll/receipt requests, streaming the PDF
// confirmation for a completed session.
func (h *Handler) HandleReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.session(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := sess.Require(wizard.StepDone); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if sess.Saved == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "no stored enrollment for this session"))
		return
	}

	rec := *sess.Saved
	pdf, err := receipt.Compose(receipt.Data{
		Created:   !sess.IsUpdate,
		Record:    rec,
		UpdatedAt: rec.UpdatedAt.UTC().Format("02/01/2006 15:04"),
	})
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "receipt render failed"))
		return
	}

	if h.metrics != nil {
		h.metrics.ReceiptsRendered.Inc()
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", receipt.Filename(rec.Student.RegistrationNumber)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
