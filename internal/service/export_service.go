package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/pkg/export"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// GradebookFormat selects the rendered export format.
type GradebookFormat string

const (
	GradebookFormatCSV GradebookFormat = "csv"
	GradebookFormatPDF GradebookFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type exportRosterReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassMembership, error)
}

type exportAssignmentReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.Assignment, error)
}

type exportSubmissionReader interface {
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error)
	GradesBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string]models.Grade, error)
}

// GradebookExport is a rendered gradebook with download metadata.
type GradebookExport struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders class gradebooks for download.
type ExportService struct {
	classes     exportClassReader
	roster      exportRosterReader
	assignments exportAssignmentReader
	submissions exportSubmissionReader
	profiles    profileDirectory
	teachers    teacherChecker
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(classes exportClassReader, roster exportRosterReader, assignments exportAssignmentReader, submissions exportSubmissionReader, profiles profileDirectory, teachers teacherChecker, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		classes:     classes,
		roster:      roster,
		assignments: assignments,
		submissions: submissions,
		profiles:    profiles,
		teachers:    teachers,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
	}
}

// Gradebook renders one row per enrolled student with a column per
// assignment. Ungraded or missing submissions render as empty cells.
// Teacher-only.
func (s *ExportService) Gradebook(ctx context.Context, classID, callerID string, format GradebookFormat) (*GradebookExport, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	isTeacher, err := s.teachers.IsTeacher(ctx, classID, callerID)
	if err != nil {
		return nil, err
	}
	if !isTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only class teachers can export the gradebook")
	}

	dataset, err := s.buildDataset(ctx, classID)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102")
	base := fmt.Sprintf("gradebook-%s-%s", slugify(class.Title), stamp)

	switch format {
	case GradebookFormatCSV:
		data, err := s.csv.Render(*dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render gradebook csv")
		}
		return &GradebookExport{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case GradebookFormatPDF:
		data, err := s.pdf.Render(*dataset, fmt.Sprintf("Gradebook - %s", class.Title))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render gradebook pdf")
		}
		return &GradebookExport{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported gradebook format")
	}
}

func (s *ExportService) buildDataset(ctx context.Context, classID string) (*export.Dataset, error) {
	members, err := s.roster.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	students := make([]models.ClassMembership, 0, len(members))
	for _, m := range members {
		if m.Role == models.ClassRoleStudent {
			students = append(students, m)
		}
	}
	if err := attachProfiles(ctx, s.profiles, students,
		func(m *models.ClassMembership) string { return m.UserID },
		func(m *models.ClassMembership, p *models.Profile) { m.User = p },
	); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach student profiles")
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	headers := []string{"Student", "Email"}
	for _, a := range assignments {
		headers = append(headers, fmt.Sprintf("%s (%d)", a.Title, a.Points))
	}

	// student id -> assignment id -> formatted grade
	cells := make(map[string]map[string]string, len(students))
	for _, assignment := range assignments {
		submissions, err := s.submissions.ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
		}
		ids := make([]string, 0, len(submissions))
		for _, sub := range submissions {
			ids = append(ids, sub.ID)
		}
		grades, err := s.submissions.GradesBySubmissionIDs(ctx, ids)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
		}
		for _, sub := range submissions {
			grade, ok := grades[sub.ID]
			if !ok || grade.Grade == nil {
				continue
			}
			if cells[sub.StudentID] == nil {
				cells[sub.StudentID] = make(map[string]string, len(assignments))
			}
			cells[sub.StudentID][assignment.ID] = strconv.FormatFloat(*grade.Grade, 'f', -1, 64)
		}
	}

	// Records are positional so assignments sharing a title keep their own
	// column.
	rows := make([][]string, 0, len(students))
	for _, student := range students {
		record := make([]string, 0, len(headers))
		if student.User != nil {
			record = append(record, student.User.FullName, student.User.Email)
		} else {
			record = append(record, student.UserID, "")
		}
		for _, assignment := range assignments {
			record = append(record, cells[student.UserID][assignment.ID])
		}
		rows = append(rows, record)
	}

	return &export.Dataset{Headers: headers, Rows: rows}, nil
}

func slugify(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, title)
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return "class"
	}
	return cleaned
}
