package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/app/repository"
)

type fakeCourseRepo struct{ courses map[string]*models.Course }

func (r *fakeCourseRepo) GetByID(id string) (*models.Course, error) {
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeCourseRepo) GetWithCurriculum(id string) (*models.Course, error) { return r.GetByID(id) }
func (r *fakeCourseRepo) List(offset, limit int) ([]models.Course, error)    { return nil, nil }
func (r *fakeCourseRepo) Count() (int64, error)                              { return int64(len(r.courses)), nil }

type fakeEventRepo struct {
	events   map[string]*models.Event
	enrolled int64
}

func (r *fakeEventRepo) GetByID(id string) (*models.Event, error) {
	if e, ok := r.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeEventRepo) List(offset, limit int) ([]models.Event, error) { return nil, nil }
func (r *fakeEventRepo) CountEnrolled(eventID string) (int64, error)    { return r.enrolled, nil }

type fakeSubTrainingRepo struct{ items map[string]*models.SubTraining }

func (r *fakeSubTrainingRepo) GetByID(id string) (*models.SubTraining, error) {
	if st, ok := r.items[id]; ok {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeSubTrainingRepo) List(offset, limit int) ([]models.SubTraining, error) { return nil, nil }
func (r *fakeSubTrainingRepo) ListWithActiveOffer(offset, limit int) ([]models.SubTraining, error) {
	return nil, nil
}

type fakeEnrollmentRepo struct {
	list       []models.Enrollment
	lastOffset int
	lastLimit  int
}

func (r *fakeEnrollmentRepo) GetByStudentID(studentID string, offset, limit int) ([]models.Enrollment, error) {
	r.lastOffset, r.lastLimit = offset, limit
	var out []models.Enrollment
	for _, e := range r.list {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (r *fakeEnrollmentRepo) CountByStudentID(studentID string) (int64, error) {
	var n int64
	for _, e := range r.list {
		if e.StudentID == studentID {
			n++
		}
	}
	return n, nil
}
func (r *fakeEnrollmentRepo) Exists(studentID, itemType, itemID string) (bool, error) {
	return false, nil
}

func newCatalogApp(now time.Time) (*fiber.App, *fakeEnrollmentRepo) {
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	enrollments := &fakeEnrollmentRepo{list: []models.Enrollment{
		{ID: "en1", StudentID: "S1", ItemType: models.ITEM_TYPE_COURSE, ItemID: "c1"},
		{ID: "en2", StudentID: "S2", ItemType: models.ITEM_TYPE_EVENT, ItemID: "e1"},
	}}
	repos := &repository.Repositories{
		Course: &fakeCourseRepo{courses: map[string]*models.Course{
			"c1": {ID: "c1", Title: "Go", Price: decimal.RequireFromString("100"), StudentsEnrolled: 4},
		}},
		Event: &fakeEventRepo{events: map[string]*models.Event{"e1": {ID: "e1", Title: "Meetup"}}, enrolled: 7},
		SubTraining: &fakeSubTrainingRepo{items: map[string]*models.SubTraining{
			"st1": {
				ID:            "st1",
				OriginalPrice: decimal.RequireFromString("100"),
				Offer: models.Offer{
					HasOffer:       true,
					OfferPrice:     decimal.NewNullDecimal(decimal.RequireFromString("80")),
					OfferStartDate: &start,
					OfferEndDate:   &end,
				},
			},
		}},
		Enrollment: enrollments,
	}

	cc := NewCatalogController(repos)
	app := fiber.New()
	app.Get("/courses/:id", cc.HandleGetCourse)
	app.Get("/events/:id", cc.HandleGetEvent)
	app.Get("/sub-trainings/:id", cc.HandleGetSubTraining)
	app.Get("/me/enrollments", loginAs("S1", models.ROLE_STUDENT), cc.HandleMyEnrollments)
	return app, enrollments
}

func TestCatalogEndpoints(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = time.Now })

	app, _ := newCatalogApp(now)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/courses/c1", fiber.StatusOK, `"students_enrolled":4`},
		{"/courses/c9", fiber.StatusNotFound, `"not_found"`},
		{"/events/e1", fiber.StatusOK, `"students_enrolled":7`},
		{"/events/e9", fiber.StatusNotFound, `"not_found"`},
		{"/sub-trainings/st1", fiber.StatusOK, `"effective_price":"80"`},
		{"/sub-trainings/st1", fiber.StatusOK, `"offer_active":true`},
		{"/sub-trainings/st9", fiber.StatusNotFound, `"not_found"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, readBody(t, resp.Body), tt.contains)
		})
	}
}

func TestMyEnrollments(t *testing.T) {
	app, repo := newCatalogApp(time.Now())

	resp, err := app.Test(httptest.NewRequest("GET", "/me/enrollments?page=2&per_page=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp.Body)
	assert.Contains(t, body, `"total":1`)
	assert.Contains(t, body, `"en1"`)
	assert.NotContains(t, body, `"en2"`)
	assert.Equal(t, 5, repo.lastOffset)
	assert.Equal(t, 5, repo.lastLimit)
}
