package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
	"github.com/hirehub/jobboard/internal/pkg/metrics"
)

const (
	myApplicationsLimit = 50
	lookupConcurrency   = 8
)

// ViewAssembler builds the denormalized read models by joining collections
// the document store cannot join itself.
type ViewAssembler struct {
	jobs         ports.JobRepository
	applications ports.ApplicationRepository
	profiles     ports.ProfileRepository
	companies    ports.CompanyRepository
	effects      ports.SideEffectRunner
	log          zerolog.Logger
}

func NewViewAssembler(
	jobs ports.JobRepository,
	applications ports.ApplicationRepository,
	profiles ports.ProfileRepository,
	companies ports.CompanyRepository,
	effects ports.SideEffectRunner,
	log zerolog.Logger,
) *ViewAssembler {
	return &ViewAssembler{
		jobs:         jobs,
		applications: applications,
		profiles:     profiles,
		companies:    companies,
		effects:      effects,
		log:          log,
	}
}

func observe(view string, start time.Time) {
	metrics.ViewAssemblyDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// ListJobs returns matching jobs with their employer attached. Employers that
// cannot be resolved get a placeholder name.
func (v *ViewAssembler) ListJobs(ctx context.Context, filter ports.JobFilter) ([]ports.JobListItem, error) {
	defer observe("job_list", time.Now())

	jobs, err := v.jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return v.jobItems(ctx, jobs, "job_list")
}

// ListEmployerJobs returns every job the employer posted.
func (v *ViewAssembler) ListEmployerJobs(ctx context.Context, employer domain.User) ([]ports.JobListItem, error) {
	defer observe("employer_jobs", time.Now())

	if !employer.IsEmployer() {
		return nil, domain.ErrForbidden
	}
	jobs, err := v.jobs.List(ctx, ports.JobFilter{EmployerID: employer.ID})
	if err != nil {
		return nil, err
	}
	return v.jobItems(ctx, jobs, "employer_jobs")
}

func (v *ViewAssembler) jobItems(ctx context.Context, jobs []*domain.Job, view string) ([]ports.JobListItem, error) {
	employerIDs := distinct(len(jobs), func(i int) string { return jobs[i].EmployerID })
	employers, err := batch(ctx, employerIDs, func(ctx context.Context, id string) (ports.CompanyData, bool, error) {
		data, err := v.resolveEmployer(ctx, id, view)
		return data, true, err
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(jobs, func(j *domain.Job) time.Time { return j.CreatedAt })
	items := make([]ports.JobListItem, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, ports.JobListItem{
			Job:        j,
			Company:    employerOrPlaceholder(employers, j.EmployerID).Summary(),
			SalaryText: j.Salary.Format(),
		})
	}
	return items, nil
}

// GetJobDetail returns the job page. A successful fetch schedules a view
// counter increment whose failure never reaches the caller.
func (v *ViewAssembler) GetJobDetail(ctx context.Context, jobID string, viewer *domain.User) (*ports.JobDetail, error) {
	defer observe("job_detail", time.Now())

	job, err := v.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	company, err := v.resolveEmployer(ctx, job.EmployerID, "job_detail")
	if err != nil {
		return nil, err
	}

	detail := &ports.JobDetail{
		Job:            job,
		CompanyData:    company,
		SalaryText:     job.Salary.Format(),
		DeadlinePassed: job.DeadlinePassed(time.Now()),
	}

	if viewer != nil && viewer.Role == domain.RoleJobSeeker {
		applied, err := v.applications.Exists(ctx, job.ID, viewer.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			v.log.Warn().Err(err).Str("job_id", job.ID).Msg("has-applied lookup failed")
		}
		detail.HasApplied = applied
	}

	v.incrementViews(job.ID)
	return detail, nil
}

func (v *ViewAssembler) incrementViews(jobID string) {
	effect := ports.SideEffect{
		Key:  jobID,
		Name: "view_increment",
		Run: func(ctx context.Context) error {
			return v.jobs.IncrementViews(ctx, jobID)
		},
	}
	if v.effects != nil {
		v.effects.Enqueue(effect)
		return
	}
	if err := effect.Run(context.Background()); err != nil {
		metrics.PartialFailuresTotal.WithLabelValues(effect.Name).Inc()
		v.log.Warn().Err(err).Str("job_id", jobID).Msg("failed to increment job views")
	}
}

// ListJobApplicants pairs each application of the employer's job with the
// applicant's profile. Applications whose applicant has no profile are left
// out.
func (v *ViewAssembler) ListJobApplicants(ctx context.Context, employer domain.User, jobID string) ([]ports.ApplicantRow, error) {
	defer observe("job_applicants", time.Now())

	job, err := v.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employer.ID {
		return nil, domain.ErrForbidden
	}

	apps, err := v.applications.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	applicantIDs := distinct(len(apps), func(i int) string { return apps[i].ApplicantID })
	profiles, err := batch(ctx, applicantIDs, func(ctx context.Context, id string) (*domain.Profile, bool, error) {
		p, err := v.profiles.FindByID(ctx, id)
		switch {
		case err == nil:
			return p, true, nil
		case ctx.Err() != nil:
			return nil, false, ctx.Err()
		case !errors.Is(err, domain.ErrProfileNotFound):
			v.log.Warn().Err(err).Str("applicant_id", id).Msg("applicant profile lookup failed")
		}
		metrics.PlaceholderJoinsTotal.WithLabelValues("job_applicants", "applicant").Inc()
		return nil, false, nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(apps, func(a *domain.Application) time.Time { return a.CreatedAt })
	rows := make([]ports.ApplicantRow, 0, len(apps))
	for _, a := range apps {
		p, ok := profiles[a.ApplicantID]
		if !ok {
			continue
		}
		rows = append(rows, ports.ApplicantRow{Application: a, Applicant: p})
	}
	return rows, nil
}

// ListMyApplications returns the applicant's newest applications joined with
// their job and company. Rows whose job or company is gone keep placeholder
// text.
func (v *ViewAssembler) ListMyApplications(ctx context.Context, applicant domain.User) ([]ports.SeekerApplicationRow, error) {
	defer observe("my_applications", time.Now())

	apps, err := v.applications.ListByApplicant(ctx, applicant.ID, myApplicationsLimit)
	if err != nil {
		return nil, err
	}

	jobIDs := distinct(len(apps), func(i int) string { return apps[i].JobID })
	jobs, err := batch(ctx, jobIDs, func(ctx context.Context, id string) (*domain.Job, bool, error) {
		j, err := v.jobs.FindByID(ctx, id)
		switch {
		case err == nil:
			return j, true, nil
		case ctx.Err() != nil:
			return nil, false, ctx.Err()
		case !errors.Is(err, domain.ErrJobNotFound):
			v.log.Warn().Err(err).Str("job_id", id).Msg("job lookup failed")
		}
		metrics.PlaceholderJoinsTotal.WithLabelValues("my_applications", "job").Inc()
		return nil, false, nil
	})
	if err != nil {
		return nil, err
	}

	employerIDs := make([]string, 0, len(jobs))
	for _, id := range jobIDs {
		if j, ok := jobs[id]; ok {
			employerIDs = append(employerIDs, j.EmployerID)
		}
	}
	employerIDs = distinct(len(employerIDs), func(i int) string { return employerIDs[i] })
	employers, err := batch(ctx, employerIDs, func(ctx context.Context, id string) (ports.CompanyData, bool, error) {
		data, err := v.resolveEmployer(ctx, id, "my_applications")
		return data, true, err
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(apps, func(a *domain.Application) time.Time { return a.CreatedAt })
	rows := make([]ports.SeekerApplicationRow, 0, len(apps))
	for _, a := range apps {
		row := ports.SeekerApplicationRow{
			ID:          a.ID,
			JobID:       a.JobID,
			JobTitle:    domain.UntitledPosition,
			JobStatus:   string(domain.JobClosed),
			CompanyName: domain.UnknownCompany,
			Status:      seekerStatus(a.Status),
			CoverLetter: a.CoverLetter,
			ResumeURL:   a.ResumeURL,
			AppliedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
		}
		if j, ok := jobs[a.JobID]; ok {
			if j.Title != "" {
				row.JobTitle = j.Title
			}
			row.JobType = string(j.Type)
			row.JobLocation = j.Location
			row.JobStatus = string(j.Status)
			company := employerOrPlaceholder(employers, j.EmployerID)
			row.CompanyName = company.Name
			row.CompanyLogoURL = company.LogoURL
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func seekerStatus(s domain.ApplicationStatus) string {
	if st, ok := domain.ParseApplicationStatus(string(s)); ok {
		return st.SeekerLabel()
	}
	return domain.AppNew.SeekerLabel()
}

// ListCompanies returns the company directory: employer profiles with a
// company name, filtered by industry, size and a free-text search.
func (v *ViewAssembler) ListCompanies(ctx context.Context, filter ports.CompanyFilter) ([]ports.CompanyData, error) {
	defer observe("companies", time.Now())

	profiles, err := v.profiles.ListEmployers(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(profiles, func(p *domain.Profile) time.Time { return p.CreatedAt })

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]ports.CompanyData, 0, len(profiles))
	for _, p := range profiles {
		if p.CompanyName == "" {
			continue
		}
		data := companyFromProfile(p)
		if search != "" && !matchesCompany(data, search) {
			continue
		}
		out = append(out, data)
	}
	return out, nil
}

func matchesCompany(c ports.CompanyData, search string) bool {
	for _, field := range []string{c.Name, c.Description, c.Industry} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// GetCompany returns one company page with its open jobs.
func (v *ViewAssembler) GetCompany(ctx context.Context, id string) (*ports.CompanyPage, error) {
	defer observe("company", time.Now())

	p, perr := v.profiles.FindByID(ctx, id)
	if perr != nil && !errors.Is(perr, domain.ErrProfileNotFound) {
		return nil, perr
	}
	c, cerr := v.companies.FindByID(ctx, id)
	if cerr != nil && !errors.Is(cerr, domain.ErrCompanyNotFound) {
		return nil, cerr
	}
	if (p == nil || p.Role != domain.RoleEmployer) && c == nil {
		return nil, domain.ErrCompanyNotFound
	}

	data := ports.CompanyData{ID: id}
	if p != nil && p.Role == domain.RoleEmployer {
		data = companyFromProfile(p)
	}
	mergeCompany(&data, c)
	if data.Name == "" {
		data.Name = domain.UnknownCompany
	}

	jobs, err := v.jobs.List(ctx, ports.JobFilter{EmployerID: id, OpenOnly: true})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(jobs, func(j *domain.Job) time.Time { return j.CreatedAt })
	items := make([]ports.JobListItem, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, ports.JobListItem{Job: j, Company: data.Summary(), SalaryText: j.Salary.Format()})
	}
	return &ports.CompanyPage{Company: data, Jobs: items}, nil
}

// resolveEmployer reads the employer's profile and, when it lacks company
// fields, the company record. Misses and lookup failures degrade to a
// placeholder; only cancellation is returned as an error.
func (v *ViewAssembler) resolveEmployer(ctx context.Context, id, view string) (ports.CompanyData, error) {
	data := ports.CompanyData{ID: id}

	p, err := v.profiles.FindByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		if ctx.Err() != nil {
			return data, ctx.Err()
		}
		v.log.Warn().Err(err).Str("employer_id", id).Msg("employer profile lookup failed")
	}
	if p != nil && p.Role == domain.RoleEmployer {
		data = companyFromProfile(p)
		if p.HasCompanyFields() {
			return data, nil
		}
	}

	c, err := v.companies.FindByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrCompanyNotFound) {
		if ctx.Err() != nil {
			return data, ctx.Err()
		}
		v.log.Warn().Err(err).Str("employer_id", id).Msg("company lookup failed")
	}
	mergeCompany(&data, c)

	if data.Name == "" {
		metrics.PlaceholderJoinsTotal.WithLabelValues(view, "employer").Inc()
		data.Name = domain.UnknownCompany
	}
	return data, nil
}

// employerOrPlaceholder returns the resolved employer, or the placeholder for
// ids that were never looked up, such as a job without an employer.
func employerOrPlaceholder(employers map[string]ports.CompanyData, id string) ports.CompanyData {
	if c, ok := employers[id]; ok {
		return c
	}
	return ports.CompanyData{ID: id, Name: domain.UnknownCompany}
}

func companyFromProfile(p *domain.Profile) ports.CompanyData {
	c := domain.CompanyFromProfile(p)
	return ports.CompanyData{
		ID:          c.ID,
		Name:        c.Name,
		LogoURL:     c.LogoURL,
		Industry:    c.Industry,
		Size:        c.Size,
		Description: c.Description,
		Website:     c.Website,
		Location:    c.Location,
	}
}

// mergeCompany fills blank fields of d from the company record.
func mergeCompany(d *ports.CompanyData, c *domain.Company) {
	if c == nil {
		return
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&d.Name, c.Name)
	fill(&d.LogoURL, c.LogoURL)
	fill(&d.Industry, c.Industry)
	fill(&d.Size, c.Size)
	fill(&d.Description, c.Description)
	fill(&d.Website, c.Website)
	fill(&d.Location, c.Location)
	d.IsVerified = c.IsVerified
	d.JobCount = c.JobCount
}

// batch runs fetch for every id with bounded concurrency and joins when all
// settle. Ids for which fetch reports ok=false are absent from the result.
func batch[T any](ctx context.Context, ids []string, fetch func(context.Context, string) (T, bool, error)) (map[string]T, error) {
	out := make(map[string]T, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			v, ok, err := fetch(gctx, id)
			if err != nil || !ok {
				return err
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// distinct returns the non-empty keys in first-seen order.
func distinct(n int, key func(i int) string) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		k := key(i)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// sortNewestFirst orders by creation time descending; equal timestamps keep
// the store's order.
func sortNewestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}
