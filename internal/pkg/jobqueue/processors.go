package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LearnFox/internal/pkg/mail"
	"github.com/ManuelReschke/LearnFox/internal/pkg/payment"
)

// errPermanent marks jobs that must not be retried.
var errPermanent = errors.New("permanent job failure")

// NotifyEnrollment queues the confirmation mail for a paid enrollment.
func (q *Queue) NotifyEnrollment(ctx context.Context, notice payment.EnrollmentNotice) error {
	if notice.StudentEmail == "" {
		log.Warnf("[JobQueue] Student %s has no email, skipping enrollment mail", notice.StudentID)
		return nil
	}
	payload := EnrollmentEmailJobPayload{
		StudentID:         notice.StudentID,
		StudentEmail:      notice.StudentEmail,
		StudentName:       notice.StudentName,
		ItemType:          string(notice.ItemType),
		ItemID:            notice.ItemID,
		ItemTitle:         notice.ItemTitle,
		MerchantRefNumber: notice.MerchantRefNumber,
		Amount:            notice.Amount,
	}
	_, err := q.EnqueueJob(JobTypeSendEnrollmentEmail, payload.ToMap())
	return err
}

// EnqueueMediaDelete queues removal of an uploaded object.
func (q *Queue) EnqueueMediaDelete(publicID string) error {
	if publicID == "" {
		return fmt.Errorf("cannot enqueue media delete without public id")
	}
	_, err := q.EnqueueJob(JobTypeDeleteMedia, DeleteMediaJobPayload{PublicID: publicID}.ToMap())
	return err
}

func (q *Queue) processEnrollmentEmailJob(ctx context.Context, job *Job) error {
	payload, err := EnrollmentEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("%w: failed to parse enrollment email payload: %v", errPermanent, err)
	}
	if q.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}

	body, err := mail.RenderEnrollment(mail.EnrollmentData{
		StudentName:       payload.StudentName,
		ItemType:          payload.ItemType,
		ItemTitle:         payload.ItemTitle,
		MerchantRefNumber: payload.MerchantRefNumber,
		Amount:            payload.Amount,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	if err := q.mailer.Send(payload.StudentEmail, mail.EnrollmentSubject(payload.ItemTitle), body); err != nil {
		return fmt.Errorf("send enrollment mail for %s: %w", payload.MerchantRefNumber, err)
	}
	log.Infof("[EnrollmentEmailJob] Sent confirmation for %s to %s", payload.MerchantRefNumber, payload.StudentEmail)
	return nil
}

func (q *Queue) processDeleteMediaJob(ctx context.Context, job *Job) error {
	payload, err := DeleteMediaJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("%w: failed to parse delete media payload: %v", errPermanent, err)
	}
	if payload.PublicID == "" {
		return fmt.Errorf("%w: delete media job without public id", errPermanent)
	}
	if q.media == nil {
		return fmt.Errorf("no media store configured")
	}

	if err := q.media.Delete(ctx, payload.PublicID); err != nil {
		return fmt.Errorf("delete media %s: %w", payload.PublicID, err)
	}
	log.Infof("[DeleteMediaJob] Removed %s", payload.PublicID)
	return nil
}
