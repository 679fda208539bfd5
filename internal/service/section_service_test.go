package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type mockSectionRepo struct {
	sections map[string]*models.Section
	taken    bool
	created  *models.Section
	updated  *models.Section
}

func (m *mockSectionRepo) ListByBranch(ctx context.Context, branchID string) ([]models.Section, error) {
	var out []models.Section
	for _, s := range m.sections {
		if s.BranchID == branchID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, id string) (*models.Section, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) ExistsByName(ctx context.Context, name, branchID, excludeID string) (bool, error) {
	return m.taken, nil
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.Section) error {
	m.created = section
	return nil
}

func (m *mockSectionRepo) Update(ctx context.Context, section *models.Section) error {
	m.updated = section
	return nil
}

func (m *mockSectionRepo) Delete(ctx context.Context, id string) error { return nil }

type mockBranchRepo struct {
	branches map[string]*models.Branch
}

func (m *mockBranchRepo) ListByYear(ctx context.Context, yearID string) ([]models.Branch, error) {
	return nil, nil
}

func (m *mockBranchRepo) FindByID(ctx context.Context, id string) (*models.Branch, error) {
	if b, ok := m.branches[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBranchRepo) ExistsByName(ctx context.Context, name, yearID, excludeID string) (bool, error) {
	return false, nil
}

func (m *mockBranchRepo) Create(ctx context.Context, branch *models.Branch) error { return nil }

func (m *mockBranchRepo) Update(ctx context.Context, branch *models.Branch) error { return nil }

func (m *mockBranchRepo) Delete(ctx context.Context, id string) error { return nil }

func newTestSectionService(repo *mockSectionRepo) *SectionService {
	branches := &mockBranchRepo{branches: map[string]*models.Branch{
		"br-1": {ID: "br-1", Name: "CSE", YearID: "year-1"},
		"br-2": {ID: "br-2", Name: "ECE", YearID: "year-1"},
	}}
	return NewSectionService(repo, branches, nil, zap.NewNop())
}

func TestSectionServiceCreateFormatsName(t *testing.T) {
	repo := &mockSectionRepo{}
	svc := newTestSectionService(repo)

	section, err := svc.Create(context.Background(), SectionRequest{Name: "A", Capacity: 60, BranchID: "br-1"})
	require.NoError(t, err)
	assert.Equal(t, "CSE - A", section.FormattedName)
	assert.Equal(t, "CSE - A", repo.created.FormattedName)
}

func TestSectionServiceCreateDuplicateInBranch(t *testing.T) {
	repo := &mockSectionRepo{taken: true}
	svc := newTestSectionService(repo)

	_, err := svc.Create(context.Background(), SectionRequest{Name: "A", Capacity: 60, BranchID: "br-1"})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_KEY", appErrors.FromError(err).Code)
}

func TestSectionServiceCreateUnknownBranch(t *testing.T) {
	repo := &mockSectionRepo{}
	svc := newTestSectionService(repo)

	_, err := svc.Create(context.Background(), SectionRequest{Name: "A", Capacity: 60, BranchID: "br-missing"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
}

func TestSectionServiceUpdateReformatsName(t *testing.T) {
	repo := &mockSectionRepo{sections: map[string]*models.Section{
		"sec-1": {ID: "sec-1", Name: "A", FormattedName: "CSE - A", Capacity: 60, BranchID: "br-1"},
	}}
	svc := newTestSectionService(repo)

	section, err := svc.Update(context.Background(), "sec-1", SectionRequest{Name: "A", Capacity: 60, BranchID: "br-2"})
	require.NoError(t, err)
	assert.Equal(t, "ECE - A", section.FormattedName)
}

func TestSectionServiceUpdateSameNameSkipsUniquenessProbe(t *testing.T) {
	// taken would trip the probe, but an unchanged (name, branch) pair must
	// not be treated as a duplicate of itself.
	repo := &mockSectionRepo{
		taken: true,
		sections: map[string]*models.Section{
			"sec-1": {ID: "sec-1", Name: "A", FormattedName: "CSE - A", Capacity: 60, BranchID: "br-1"},
		},
	}
	svc := newTestSectionService(repo)

	section, err := svc.Update(context.Background(), "sec-1", SectionRequest{Name: "A", Capacity: 72, BranchID: "br-1"})
	require.NoError(t, err)
	assert.Equal(t, 72, section.Capacity)
}
