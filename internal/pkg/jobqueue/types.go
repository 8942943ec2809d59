package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeSendEnrollmentEmail JobType = "send_enrollment_email"
	JobTypeDeleteMedia         JobType = "delete_media"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// EnrollmentEmailJobPayload is the confirmation mail sent after a paid
// enrollment.
type EnrollmentEmailJobPayload struct {
	StudentID         string `json:"student_id"`
	StudentEmail      string `json:"student_email"`
	StudentName       string `json:"student_name"`
	ItemType          string `json:"item_type"`
	ItemID            string `json:"item_id"`
	ItemTitle         string `json:"item_title"`
	MerchantRefNumber string `json:"merchant_ref_number"`
	Amount            string `json:"amount"`
}

// ToMap converts the payload to a map for storage
func (p EnrollmentEmailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"student_id":          p.StudentID,
		"student_email":       p.StudentEmail,
		"student_name":        p.StudentName,
		"item_type":           p.ItemType,
		"item_id":             p.ItemID,
		"item_title":          p.ItemTitle,
		"merchant_ref_number": p.MerchantRefNumber,
		"amount":              p.Amount,
	}
}

func EnrollmentEmailJobPayloadFromMap(data map[string]interface{}) (*EnrollmentEmailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload EnrollmentEmailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// DeleteMediaJobPayload removes an uploaded object that no video row points to.
type DeleteMediaJobPayload struct {
	PublicID string `json:"public_id"`
}

func (p DeleteMediaJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"public_id": p.PublicID,
	}
}

func DeleteMediaJobPayloadFromMap(data map[string]interface{}) (*DeleteMediaJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload DeleteMediaJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// startedAt is when a worker took the job, falling back to the last update.
func (j *Job) startedAt() time.Time {
	if j.ProcessedAt != nil && !j.ProcessedAt.IsZero() {
		return *j.ProcessedAt
	}
	if !j.UpdatedAt.IsZero() {
		return j.UpdatedAt
	}
	return j.CreatedAt
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
