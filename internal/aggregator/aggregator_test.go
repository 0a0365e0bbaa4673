package aggregator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avolkov/canvas-notify/internal/canvas"
)

type fakeCanvas struct {
	selfErr     error
	coursesErr  error
	courses     []canvas.Course
	assignments map[int64][]canvas.Assignment
	failCourses map[int64]error
}

func (f *fakeCanvas) Self(ctx context.Context) (*canvas.User, error) {
	if f.selfErr != nil {
		return nil, f.selfErr
	}
	return &canvas.User{ID: 1, Name: "Student"}, nil
}

func (f *fakeCanvas) ActiveCourses(ctx context.Context) ([]canvas.Course, error) {
	if f.coursesErr != nil {
		return nil, f.coursesErr
	}
	return f.courses, nil
}

func (f *fakeCanvas) Assignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error) {
	if err := f.failCourses[courseID]; err != nil {
		return nil, err
	}
	return f.assignments[courseID], nil
}

func (f *fakeCanvas) Assignment(ctx context.Context, courseID, assignmentID int64) (*canvas.Assignment, error) {
	for _, a := range f.assignments[courseID] {
		if a.ID == assignmentID {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("assignment %d not found", assignmentID)
}

func (f *fakeCanvas) Course(ctx context.Context, courseID int64) (*canvas.Course, error) {
	for _, c := range f.courses {
		if c.ID == courseID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("course %d not found", courseID)
}

type fakeEnricher struct {
	hours   *float64
	summary string
	calls   int
}

func (f *fakeEnricher) EstimateHours(ctx context.Context, course, title string, due time.Time, description, url string) *float64 {
	f.calls++
	if description == "" {
		return nil
	}
	return f.hours
}

func (f *fakeEnricher) Summarize(ctx context.Context, course, title string, due time.Time, description string) string {
	return f.summary
}

func newTestAggregator(t *testing.T, fc *fakeCanvas, fe *fakeEnricher, now time.Time) *Aggregator {
	t.Helper()
	a := New(fc, fe, time.UTC, 7, zap.NewNop())
	a.now = func() time.Time { return now }
	return a
}

func iso(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func TestUpcomingWindowBoundaries(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	upper := now.AddDate(0, 0, 7)

	fc := &fakeCanvas{
		courses: []canvas.Course{{ID: 1, Name: "CHEM 101"}},
		assignments: map[int64][]canvas.Assignment{
			1: {
				{ID: 1, Name: "at now", DueAt: iso(now)},
				{ID: 2, Name: "at bound", DueAt: iso(upper)},
				{ID: 3, Name: "past bound", DueAt: iso(upper.Add(time.Microsecond))},
				{ID: 4, Name: "already due", DueAt: iso(now.Add(-time.Minute))},
				{ID: 5, Name: "no due date", DueAt: ""},
			},
		},
	}
	a := newTestAggregator(t, fc, &fakeEnricher{}, now)

	records, err := a.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}
	if records[0].Name != "at now" || records[1].Name != "at bound" {
		t.Errorf("kept %q and %q", records[0].Name, records[1].Name)
	}
}

func TestUpcomingSortedByDue(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	fc := &fakeCanvas{
		courses: []canvas.Course{
			{ID: 1, Name: "A"},
			{ID: 2, Name: "B"},
		},
		assignments: map[int64][]canvas.Assignment{
			1: {
				{ID: 1, Name: "later", DueAt: iso(now.Add(72 * time.Hour))},
				{ID: 2, Name: "soonest", DueAt: iso(now.Add(2 * time.Hour))},
			},
			2: {
				{ID: 3, Name: "middle", DueAt: iso(now.Add(24 * time.Hour))},
			},
		},
	}
	a := newTestAggregator(t, fc, &fakeEnricher{}, now)

	records, err := a.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i].DueAt.Before(records[i-1].DueAt) {
			t.Errorf("records out of order at %d: %v after %v", i, records[i].DueAt, records[i-1].DueAt)
		}
	}
	if records[0].Name != "soonest" || records[2].Name != "later" {
		t.Errorf("order = %q, %q, %q", records[0].Name, records[1].Name, records[2].Name)
	}
}

func TestUpcomingSelfCheckFatal(t *testing.T) {
	fc := &fakeCanvas{selfErr: fmt.Errorf("401 unauthorized")}
	a := newTestAggregator(t, fc, &fakeEnricher{}, time.Now())

	if _, err := a.Upcoming(context.Background()); err == nil {
		t.Fatal("expected connectivity error to propagate")
	}
}

func TestUpcomingCourseEnumerationDegrades(t *testing.T) {
	fc := &fakeCanvas{coursesErr: fmt.Errorf("503")}
	a := newTestAggregator(t, fc, &fakeEnricher{}, time.Now())

	records, err := a.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("expected degraded empty result, got error %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestUpcomingSkipsFailingCourse(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	fc := &fakeCanvas{
		courses: []canvas.Course{
			{ID: 1, Name: "broken"},
			{ID: 2, Name: "healthy"},
		},
		assignments: map[int64][]canvas.Assignment{
			2: {{ID: 10, Name: "survives", DueAt: iso(now.Add(time.Hour))}},
		},
		failCourses: map[int64]error{1: fmt.Errorf("500")},
	}
	a := newTestAggregator(t, fc, &fakeEnricher{}, now)

	records, err := a.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(records) != 1 || records[0].Name != "survives" {
		t.Errorf("records = %+v", records)
	}
}

func TestUpcomingEnrichment(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	hours := 2.5
	fc := &fakeCanvas{
		courses: []canvas.Course{{ID: 1, Name: "C"}},
		assignments: map[int64][]canvas.Assignment{
			1: {
				{ID: 1, Name: "described", DueAt: iso(now.Add(time.Hour)), Description: "<p>work</p>"},
				{ID: 2, Name: "bare", DueAt: iso(now.Add(2 * time.Hour))},
			},
		},
	}
	fe := &fakeEnricher{hours: &hours}
	a := newTestAggregator(t, fc, fe, now)

	records, err := a.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if records[0].EstimatedHours == nil || *records[0].EstimatedHours != 2.5 {
		t.Errorf("described record estimate = %v", records[0].EstimatedHours)
	}
	if records[1].EstimatedHours != nil {
		t.Errorf("bare record should have no estimate, got %v", *records[1].EstimatedHours)
	}
}

func TestDetails(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	fc := &fakeCanvas{
		courses: []canvas.Course{{ID: 1, Name: "CHEM 101"}},
		assignments: map[int64][]canvas.Assignment{
			1: {{ID: 9, Name: "Lab 4", DueAt: iso(now.Add(time.Hour)), Description: "<p>report</p>"}},
		},
	}
	fe := &fakeEnricher{summary: "Write the lab report."}
	a := newTestAggregator(t, fc, fe, now)

	rec, err := a.Details(context.Background(), 1, 9)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record")
	}
	if rec.AISummary != "Write the lab report." {
		t.Errorf("summary = %q", rec.AISummary)
	}
	if rec.EstimatedHours != nil {
		t.Errorf("detail view should carry a summary, not an estimate")
	}
	if rec.CourseName != "CHEM 101" {
		t.Errorf("course = %q", rec.CourseName)
	}
}

func TestDetailsNotFound(t *testing.T) {
	fc := &fakeCanvas{courses: []canvas.Course{{ID: 1, Name: "C"}}}
	a := newTestAggregator(t, fc, &fakeEnricher{}, time.Now())

	rec, err := a.Details(context.Background(), 1, 404)
	if err != nil {
		t.Fatalf("Details should not error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}
