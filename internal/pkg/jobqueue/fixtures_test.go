package jobqueue

import (
	"time"
)

// newTestJobs returns one ready-to-process job per job type.
func newTestJobs() map[JobType]*Job {
	now := time.Now()

	return map[JobType]*Job{
		JobTypeSendEnrollmentEmail: {
			ID:     "test-enrollment-email-job",
			Type:   JobTypeSendEnrollmentEmail,
			Status: JobStatusPending,
			Payload: EnrollmentEmailJobPayload{
				StudentID:         "S1",
				StudentEmail:      "sara@learnfox.test",
				ItemType:          "COURSE",
				ItemID:            "c1",
				ItemTitle:         "Go Basics",
				MerchantRefNumber: "S1-test",
				Amount:            "100.00",
			}.ToMap(),
			CreatedAt:  now,
			UpdatedAt:  now,
			MaxRetries: DefaultMaxRetries,
		},
		JobTypeDeleteMedia: {
			ID:         "test-delete-media-job",
			Type:       JobTypeDeleteMedia,
			Status:     JobStatusPending,
			Payload:    DeleteMediaJobPayload{PublicID: "videos/2026/01/b1/x.mp4"}.ToMap(),
			CreatedAt:  now,
			UpdatedAt:  now,
			MaxRetries: DefaultMaxRetries,
		},
	}
}

// waitForCondition polls condition until it holds or timeout passes.
func waitForCondition(condition func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
