package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certifier/internal/certificate/callback"
	"certifier/internal/certificate/models"
	"certifier/internal/certificate/service"
	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/httputil"
	"certifier/pkg/platform/validation"
	"certifier/pkg/requestcontext"
)

const (
	StatusAnonymous = "ERRORANONYMOUSUSER"
	StatusBusy      = "ERRORBUSY"
)

// Service is the issuance surface the learner endpoint drives.
type Service interface {
	Status(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (models.Status, *models.Record, error)
	Add(ctx context.Context, req service.AddRequest) (models.Status, error)
	Regenerate(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (bool, error)
}

// CallbackApplier applies grading pipeline notifications.
type CallbackApplier interface {
	Apply(ctx context.Context, n callback.Notification) (*models.Record, error)
}

// Handler serves the learner certificate request and the pipeline callback.
type Handler struct {
	service   Service
	callbacks CallbackApplier
	logger    *slog.Logger
}

func New(svc Service, callbacks CallbackApplier, logger *slog.Logger) *Handler {
	return &Handler{
		service:   svc,
		callbacks: callbacks,
		logger:    logger,
	}
}

// Register mounts both endpoints. learnerAuth should let anonymous requests
// through; callbackAuth guards the pipeline endpoint.
func (h *Handler) Register(r chi.Router, learnerAuth, callbackAuth func(http.Handler) http.Handler) {
	r.With(learnerAuth).Post("/request_certificate", h.HandleRequestCertificate)
	r.With(callbackAuth).Post("/update_certificate", h.HandleUpdateCertificate)
}

// HandleRequestCertificate grades the caller and issues a certificate when
// the current status allows re-evaluation. A downloadable certificate is
// then offered a regeneration with the latest grade.
func (h *Handler) HandleRequestCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	learnerID := requestcontext.LearnerID(ctx)
	if learnerID.IsNil() {
		httputil.WriteJSON(w, http.StatusOK, RequestCertificateResponse{AddStatus: StatusAnonymous})
		return
	}

	req, ok := httputil.DecodeAndPrepare[RequestCertificateRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}
	courseID := req.Course()

	status, _, err := h.service.Status(ctx, learnerID, courseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read certificate status",
			"request_id", requestID,
			"learner_id", learnerID.String(),
			"course_id", courseID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if needsGrading(status) {
		h.logger.InfoContext(ctx, "grading and certification requested",
			"request_id", requestID,
			"learner_id", learnerID.String(),
			"course_id", courseID.String(),
		)
		status, err = h.service.Add(ctx, service.AddRequest{LearnerID: learnerID, CourseID: courseID})
		if errors.Is(err, models.ErrBusy) {
			httputil.WriteJSON(w, http.StatusConflict, RequestCertificateResponse{AddStatus: StatusBusy})
			return
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to add certificate",
				"request_id", requestID,
				"learner_id", learnerID.String(),
				"course_id", courseID.String(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
	}

	res := RequestCertificateResponse{AddStatus: status.String()}
	if status == models.StatusDownloadable {
		regenerated := h.regenerate(ctx, learnerID, courseID)
		res.Regenerated = &regenerated
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// regenerate never fails the request; the certificate already on file stays valid.
func (h *Handler) regenerate(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) bool {
	regenerated, err := h.service.Regenerate(ctx, learnerID, courseID)
	if err != nil {
		level := slog.LevelWarn
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			level = slog.LevelInfo
		}
		h.logger.Log(ctx, level, "certificate not regenerated",
			"request_id", requestcontext.RequestID(ctx),
			"learner_id", learnerID.String(),
			"course_id", courseID.String(),
			"retryable", dErrors.Retryable(err),
			"error", err,
		)
		return false
	}
	return regenerated
}

func needsGrading(status models.Status) bool {
	switch status {
	case models.StatusUnavailable, models.StatusNotPassing, models.StatusError:
		return true
	default:
		return false
	}
}

// HandleUpdateCertificate applies a grading pipeline notification. The
// pipeline reads the outcome from return_code, so known outcomes reply 200.
func (h *Handler) HandleUpdateCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	n, err := decodeNotification(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "malformed certificate callback",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusBadRequest, callback.Reply{ReturnCode: 1, Content: "invalid request"})
		return
	}

	record, err := h.callbacks.Apply(ctx, n)
	reply, known := callback.ReplyFor(err)
	if !known {
		h.logger.ErrorContext(ctx, "failed to apply certificate callback",
			"request_id", requestID,
			"external_key", n.ExternalKey,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if record != nil {
		h.logger.InfoContext(ctx, "certificate callback applied",
			"request_id", requestID,
			"external_key", n.ExternalKey,
			"status", record.Status.String(),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, reply)
}

// decodeNotification accepts the JSON envelope, or the header and body
// documents posted as xqueue_header and xqueue_body form fields.
func decodeNotification(w http.ResponseWriter, r *http.Request) (callback.Notification, error) {
	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(validation.MaxBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return callback.Notification{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid form body")
		}
		return callback.DecodeParts(r.PostFormValue("xqueue_header"), r.PostFormValue("xqueue_body"))
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return callback.Notification{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "unreadable body")
	}
	return callback.DecodeEnvelope(body)
}
