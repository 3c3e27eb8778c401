package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

type viewFixture struct {
	v        *ViewAssembler
	profiles *fakeProfiles
	comps    *fakeCompanies
	jobs     *fakeJobs
	apps     *fakeApplications
	effects  *inlineEffects
}

func newViewFixture() *viewFixture {
	f := &viewFixture{
		profiles: newFakeProfiles(
			&domain.Profile{ID: seeker.ID, Role: domain.RoleJobSeeker, FullName: "Ada"},
			&domain.Profile{ID: employer.ID, Role: domain.RoleEmployer, CompanyName: "Acme", CompanyIndustry: "Robotics", CompanyLogoURL: "https://img.test/acme.png"},
		),
		comps:   newFakeCompanies(&domain.Company{ID: employer.ID, Name: "Acme", IsVerified: true, JobCount: 1}),
		jobs:    newFakeJobs(openJob("job-1")),
		apps:    newFakeApplications(),
		effects: &inlineEffects{},
	}
	f.v = NewViewAssembler(f.jobs, f.apps, f.profiles, f.comps, f.effects, zerolog.Nop())
	return f
}

func TestViewAssembler_JobDetail_SalaryRoundTrip(t *testing.T) {
	f := newViewFixture()
	c := NewMutationCoordinator(f.profiles, f.comps, f.jobs, f.apps, newFakeBlobs(), nil, nil, onlineConn(), CoordinatorOptions{}, zerolog.Nop())

	posted, err := c.PostJob(context.Background(), employer, ports.JobInput{
		Title:  "Data Engineer",
		Type:   "full-time",
		Salary: domain.Salary{Min: i64Ptr(50000), Max: i64Ptr(80000), Currency: "USD"},
	})
	require.NoError(t, err)

	detail, err := f.v.GetJobDetail(context.Background(), posted.Job.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "USD 50,000 - 80,000", detail.SalaryText)
	assert.Equal(t, "Acme", detail.CompanyData.Name)
	assert.Equal(t, "Robotics", detail.CompanyData.Industry)
}

func TestViewAssembler_JobDetail_IncrementsViewsAndHasApplied(t *testing.T) {
	f := newViewFixture()
	f.apps.byID["app-1"] = &domain.Application{ID: "app-1", JobID: "job-1", ApplicantID: seeker.ID}

	detail, err := f.v.GetJobDetail(context.Background(), "job-1", &seeker)
	require.NoError(t, err)
	assert.True(t, detail.HasApplied)
	assert.Equal(t, []string{"view_increment:job-1"}, f.effects.ran)
	assert.Equal(t, 1, f.jobs.views["job-1"])

	other := domain.User{ID: "seeker-2", Role: domain.RoleJobSeeker}
	detail, err = f.v.GetJobDetail(context.Background(), "job-1", &other)
	require.NoError(t, err)
	assert.False(t, detail.HasApplied)
}

func TestViewAssembler_JobDetail_ViewIncrementFailureIsSilent(t *testing.T) {
	f := newViewFixture()
	f.jobs.viewsErr = errors.New("write rejected")

	_, err := f.v.GetJobDetail(context.Background(), "job-1", nil)
	require.NoError(t, err)
	require.Len(t, f.effects.errs, 1)
	assert.Error(t, f.effects.errs[0])
}

func TestViewAssembler_JobDetail_DeadlinePassed(t *testing.T) {
	f := newViewFixture()

	detail, err := f.v.GetJobDetail(context.Background(), "job-1", nil)
	require.NoError(t, err)
	assert.False(t, detail.DeadlinePassed, "no deadline")

	past := time.Now().Add(-time.Hour)
	f.jobs.byID["job-1"].ApplicationDeadline = &past
	detail, err = f.v.GetJobDetail(context.Background(), "job-1", nil)
	require.NoError(t, err)
	assert.True(t, detail.DeadlinePassed)
}

func TestViewAssembler_JobDetail_NotFound(t *testing.T) {
	f := newViewFixture()
	_, err := f.v.GetJobDetail(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.Empty(t, f.effects.ran)
}

func TestViewAssembler_ListJobs_EmployerPlaceholders(t *testing.T) {
	f := newViewFixture()
	older := openJob("job-0")
	older.CreatedAt = time.Now().Add(-time.Hour)
	f.jobs.byID["job-0"] = older
	f.jobs.byID["job-ghost"] = &domain.Job{ID: "job-ghost", EmployerID: "gone", Title: "Ghost", Status: domain.JobOpen, CreatedAt: time.Now().Add(time.Minute)}
	f.profiles.byID["emp-bare"] = &domain.Profile{ID: "emp-bare", Role: domain.RoleEmployer}
	f.comps.byID["emp-bare"] = &domain.Company{ID: "emp-bare", Name: "Bare Inc", LogoURL: "https://img.test/bare.png"}
	f.jobs.byID["job-bare"] = &domain.Job{ID: "job-bare", EmployerID: "emp-bare", Title: "Bare", Status: domain.JobOpen, CreatedAt: time.Now().Add(-2 * time.Hour)}
	f.jobs.byID["job-noemp"] = &domain.Job{ID: "job-noemp", Title: "No Employer", Status: domain.JobOpen, CreatedAt: time.Now().Add(-3 * time.Hour)}

	items, err := f.v.ListJobs(context.Background(), ports.JobFilter{})
	require.NoError(t, err)
	require.Len(t, items, 5)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Job.ID
	}
	assert.Equal(t, []string{"job-ghost", "job-1", "job-0", "job-bare", "job-noemp"}, ids, "newest first")
	assert.Equal(t, domain.UnknownCompany, items[4].Company.Name, "job without an employer id")
	assert.Equal(t, domain.UnknownCompany, items[0].Company.Name)
	assert.Equal(t, "Acme", items[1].Company.Name)
	assert.Equal(t, "https://img.test/acme.png", items[1].Company.LogoURL)
	assert.Equal(t, "Bare Inc", items[3].Company.Name, "company record fills a bare profile")
}

func TestViewAssembler_ListJobs_Cancelled(t *testing.T) {
	f := newViewFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.profiles.findErr = context.Canceled

	_, err := f.v.ListJobs(ctx, ports.JobFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewAssembler_ListEmployerJobs_RequiresEmployer(t *testing.T) {
	f := newViewFixture()

	_, err := f.v.ListEmployerJobs(context.Background(), seeker)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	items, err := f.v.ListEmployerJobs(context.Background(), employer)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestViewAssembler_ListJobApplicants(t *testing.T) {
	f := newViewFixture()
	now := time.Now()
	f.apps.byID["a-1"] = &domain.Application{ID: "a-1", JobID: "job-1", ApplicantID: seeker.ID, CreatedAt: now}
	f.apps.byID["a-2"] = &domain.Application{ID: "a-2", JobID: "job-1", ApplicantID: "no-profile", CreatedAt: now.Add(time.Second)}

	rows, err := f.v.ListJobApplicants(context.Background(), employer, "job-1")
	require.NoError(t, err)
	require.Len(t, rows, 1, "applications without a profile are left out")
	assert.Equal(t, "a-1", rows[0].Application.ID)
	assert.Equal(t, "Ada", rows[0].Applicant.FullName)

	_, err = f.v.ListJobApplicants(context.Background(), domain.User{ID: "emp-2", Role: domain.RoleEmployer}, "job-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestViewAssembler_ListMyApplications_OrphanedJob(t *testing.T) {
	f := newViewFixture()
	now := time.Now()
	f.apps.byID["a-1"] = &domain.Application{ID: "a-1", JobID: "job-1", ApplicantID: seeker.ID, Status: domain.AppInterviewing, CreatedAt: now}
	f.apps.byID["a-2"] = &domain.Application{ID: "a-2", JobID: "job-deleted", ApplicantID: seeker.ID, Status: "pending", CreatedAt: now.Add(-time.Hour)}
	f.jobs.byID["job-noemp"] = &domain.Job{ID: "job-noemp", Title: "Data Analyst", Status: domain.JobOpen}
	f.apps.byID["a-3"] = &domain.Application{ID: "a-3", JobID: "job-noemp", ApplicantID: seeker.ID, CreatedAt: now.Add(-2 * time.Hour)}

	rows, err := f.v.ListMyApplications(context.Background(), seeker)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Backend Engineer", rows[0].JobTitle)
	assert.Equal(t, "Acme", rows[0].CompanyName)
	assert.Equal(t, "interviewed", rows[0].Status)

	assert.Equal(t, "a-2", rows[1].ID)
	assert.Equal(t, domain.UntitledPosition, rows[1].JobTitle)
	assert.Equal(t, domain.UnknownCompany, rows[1].CompanyName)
	assert.Equal(t, "submitted", rows[1].Status)

	assert.Equal(t, "Data Analyst", rows[2].JobTitle)
	assert.Equal(t, domain.UnknownCompany, rows[2].CompanyName, "job without an employer id")
}

func TestViewAssembler_ListCompanies(t *testing.T) {
	f := newViewFixture()
	f.profiles.byID["emp-2"] = &domain.Profile{ID: "emp-2", Role: domain.RoleEmployer, CompanyName: "Globex", CompanyDescription: "Energy and more"}
	f.profiles.byID["emp-3"] = &domain.Profile{ID: "emp-3", Role: domain.RoleEmployer}

	all, err := f.v.ListCompanies(context.Background(), ports.CompanyFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2, "employers without a company name are hidden")

	found, err := f.v.ListCompanies(context.Background(), ports.CompanyFilter{Search: "ENERGY"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Globex", found[0].Name)
}

func TestViewAssembler_GetCompany(t *testing.T) {
	f := newViewFixture()
	f.jobs.byID["job-closed"] = &domain.Job{ID: "job-closed", EmployerID: employer.ID, Status: domain.JobClosed}

	page, err := f.v.GetCompany(context.Background(), employer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", page.Company.Name)
	assert.Equal(t, "Robotics", page.Company.Industry)
	assert.EqualValues(t, 1, page.Company.JobCount)
	require.Len(t, page.Jobs, 1, "only open jobs")
	assert.Equal(t, "job-1", page.Jobs[0].Job.ID)

	_, err = f.v.GetCompany(context.Background(), seeker.ID)
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}
