package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type programFinder interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

type yearFinder interface {
	FindByID(ctx context.Context, id string) (*models.Year, error)
}

type branchFinder interface {
	FindByID(ctx context.Context, id string) (*models.Branch, error)
}

type sectionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

// examAssembler resolves the entity ids referenced by an exam into their
// display names. Writes use it to validate references up front; reads use it
// to build the presentation aggregate.
type examAssembler struct {
	subjects subjectFinder
	programs programFinder
	years    yearFinder
	branches branchFinder
	sections sectionFinder
}

func newExamAssembler(subjects subjectFinder, programs programFinder, years yearFinder, branches branchFinder, sections sectionFinder) *examAssembler {
	return &examAssembler{
		subjects: subjects,
		programs: programs,
		years:    years,
		branches: branches,
		sections: sections,
	}
}

func (a *examAssembler) subject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := a.subjects.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

func (a *examAssembler) program(ctx context.Context, id string) (*models.Program, error) {
	program, err := a.programs.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("program %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

func (a *examAssembler) year(ctx context.Context, id string) (*models.Year, error) {
	year, err := a.years.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("year %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}
	return year, nil
}

// branchNames resolves branch ids in order; the first unknown id aborts with
// not found.
func (a *examAssembler) branchNames(ctx context.Context, ids []string) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		branch, err := a.branches.FindByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("branch %s not found", id))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
		}
		names = append(names, branch.Name)
	}
	return names, nil
}

// sectionNames resolves section ids in order to their formatted names.
func (a *examAssembler) sectionNames(ctx context.Context, ids []string) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		section, err := a.sections.FindByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("section %s not found", id))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
		}
		names = append(names, section.FormattedName)
	}
	return names, nil
}

// detail builds the presentation aggregate for one exam.
func (a *examAssembler) detail(ctx context.Context, exam *models.Exam) (*dto.ExamDetail, error) {
	subject, err := a.subject(ctx, exam.SubjectID)
	if err != nil {
		return nil, err
	}
	program, err := a.program(ctx, exam.ProgramID)
	if err != nil {
		return nil, err
	}
	year, err := a.year(ctx, exam.YearID)
	if err != nil {
		return nil, err
	}
	branchNames, err := a.branchNames(ctx, exam.BranchIDs)
	if err != nil {
		return nil, err
	}
	sectionNames, err := a.sectionNames(ctx, exam.SectionIDs)
	if err != nil {
		return nil, err
	}

	return &dto.ExamDetail{
		ID:           exam.ID,
		Name:         exam.Name,
		ExamDate:     exam.ExamDate,
		StartTime:    exam.StartTime,
		EndTime:      exam.EndTime,
		ExamType:     exam.ExamType,
		SetType:      exam.SetType,
		SubjectID:    exam.SubjectID,
		SubjectCode:  subject.Code,
		SubjectName:  subject.Name,
		ProgramID:    exam.ProgramID,
		ProgramName:  program.Name,
		YearID:       exam.YearID,
		YearName:     year.Name,
		BranchIDs:    append([]string{}, exam.BranchIDs...),
		BranchNames:  branchNames,
		SectionIDs:   append([]string{}, exam.SectionIDs...),
		SectionNames: sectionNames,
	}, nil
}

// details builds aggregates for a slice of exams, preserving order.
func (a *examAssembler) details(ctx context.Context, exams []models.Exam) ([]dto.ExamDetail, error) {
	out := make([]dto.ExamDetail, 0, len(exams))
	for i := range exams {
		detail, err := a.detail(ctx, &exams[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *detail)
	}
	return out, nil
}
