package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/avolkov/canvas-notify/internal/canvas"
	"github.com/avolkov/canvas-notify/internal/models"
	"github.com/avolkov/canvas-notify/internal/textutil"
)

// CanvasAPI is the slice of the Canvas client the aggregator uses.
type CanvasAPI interface {
	Self(ctx context.Context) (*canvas.User, error)
	ActiveCourses(ctx context.Context) ([]canvas.Course, error)
	Assignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error)
	Assignment(ctx context.Context, courseID, assignmentID int64) (*canvas.Assignment, error)
	Course(ctx context.Context, courseID int64) (*canvas.Course, error)
}

// Enricher supplies the advisory AI enrichments.
type Enricher interface {
	EstimateHours(ctx context.Context, course, title string, due time.Time, description, url string) *float64
	Summarize(ctx context.Context, course, title string, due time.Time, description string) string
}

// Aggregator walks active enrollments and assembles the upcoming-assignment
// report. Per-course failures are skipped; only the initial connectivity
// check is fatal to a run.
type Aggregator struct {
	canvas    CanvasAPI
	enricher  Enricher
	loc       *time.Location
	daysAhead int
	logger    *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func New(api CanvasAPI, enricher Enricher, loc *time.Location, daysAhead int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		canvas:    api,
		enricher:  enricher,
		loc:       loc,
		daysAhead: daysAhead,
		logger:    logger,
		now:       time.Now,
	}
}

// Upcoming returns assignments due within [now, now+daysAhead], sorted
// ascending by due instant. A failed connectivity check propagates; a failed
// course enumeration degrades to an empty report.
func (a *Aggregator) Upcoming(ctx context.Context) ([]models.AssignmentRecord, error) {
	user, err := a.canvas.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("canvas session: %w", err)
	}
	a.logger.Info("connected to canvas", zap.String("user", user.Name))

	courses, err := a.canvas.ActiveCourses(ctx)
	if err != nil {
		a.logger.Error("failed to enumerate courses", zap.Error(err))
		return []models.AssignmentRecord{}, nil
	}
	a.logger.Info("found active courses", zap.Int("count", len(courses)))

	nowLocal := a.now().In(a.loc)
	threshold := nowLocal.AddDate(0, 0, a.daysAhead)

	var records []models.AssignmentRecord
	for _, course := range courses {
		assignments, err := a.canvas.Assignments(ctx, course.ID)
		if err != nil {
			a.logger.Warn("skipping course",
				zap.String("course", course.Name),
				zap.Error(err))
			continue
		}
		for _, asn := range assignments {
			due := textutil.ParseISOTime(asn.DueAt, a.loc)
			if due == nil {
				if asn.DueAt != "" {
					a.logger.Warn("unparsable due date",
						zap.String("assignment", asn.Name),
						zap.String("due_at", asn.DueAt))
				}
				continue
			}
			if due.Before(nowLocal) || due.After(threshold) {
				continue
			}

			rec := a.buildRecord(course, asn, *due)
			rec.EstimatedHours = a.enricher.EstimateHours(ctx, course.Name, asn.Name, *due, asn.Description, asn.HTMLURL)
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DueAt.Before(records[j].DueAt)
	})

	a.logger.Info("aggregated upcoming assignments",
		zap.Int("count", len(records)),
		zap.Int("days_ahead", a.daysAhead))
	return records, nil
}

// Details fetches one fully enriched assignment, with an AI summary instead
// of an hours estimate. Failures resolve to (nil, nil): a missing detail
// view is "not found", never an error to the command layer.
func (a *Aggregator) Details(ctx context.Context, courseID, assignmentID int64) (*models.AssignmentRecord, error) {
	course, err := a.canvas.Course(ctx, courseID)
	if err != nil {
		a.logger.Warn("detail fetch: course lookup failed",
			zap.Int64("course_id", courseID),
			zap.Error(err))
		return nil, nil
	}
	asn, err := a.canvas.Assignment(ctx, courseID, assignmentID)
	if err != nil {
		a.logger.Warn("detail fetch failed",
			zap.Int64("assignment_id", assignmentID),
			zap.Error(err))
		return nil, nil
	}

	due := textutil.ParseISOTime(asn.DueAt, a.loc)
	var dueAt time.Time
	if due != nil {
		dueAt = *due
	}

	rec := a.buildRecord(*course, *asn, dueAt)
	if asn.Description != "" && due != nil {
		rec.AISummary = a.enricher.Summarize(ctx, course.Name, asn.Name, *due, asn.Description)
	}
	return &rec, nil
}

func (a *Aggregator) buildRecord(course canvas.Course, asn canvas.Assignment, due time.Time) models.AssignmentRecord {
	attachments := make([]models.Attachment, 0, len(asn.Attachments))
	for _, att := range asn.Attachments {
		attachments = append(attachments, models.Attachment{
			DisplayName: att.DisplayName,
			URL:         att.URL,
		})
	}
	return models.AssignmentRecord{
		CourseName:        course.Name,
		Name:              asn.Name,
		DueAt:             due,
		Description:       asn.Description,
		HTMLURL:           asn.HTMLURL,
		Attachments:       attachments,
		SubmissionTypes:   asn.SubmissionTypes,
		AllowedExtensions: asn.AllowedExtensions,
		PointsPossible:    asn.PointsPossible,
		UnlockAt:          textutil.ParseISOTime(asn.UnlockAt, a.loc),
		LockAt:            textutil.ParseISOTime(asn.LockAt, a.loc),
		AssignmentID:      asn.ID,
		CourseID:          course.ID,
	}
}
