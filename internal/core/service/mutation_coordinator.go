package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
	"github.com/hirehub/jobboard/internal/pkg/metrics"
)

const (
	defaultUploadAttempts = 3
	defaultUploadBackoff  = time.Second
	listFilesLimit        = 100
)

// Partial-success warnings shown to the client.
const (
	warnCompanySync      = "Profile saved, but company details could not be updated."
	warnAvatarProfile    = "File uploaded, but your profile could not be updated with it."
	warnApplicationCount = "Application submitted, but the job's applicant count could not be updated."
	warnJobCount         = "Job posted, but the company's job count could not be updated."
	warnJobCountDelete   = "Job deleted, but the company's job count could not be updated."
)

// CoordinatorOptions tunes the mutation coordinator.
type CoordinatorOptions struct {
	// UploadAttempts bounds blob writes; only transient failures are retried.
	UploadAttempts int
	// UploadBackoff is multiplied by the attempt number between retries.
	UploadBackoff time.Duration
	// AllowDuplicateApplications accepts repeated submissions for the same
	// (job, applicant) pair.
	AllowDuplicateApplications bool
}

// MutationCoordinator owns every write path: profile edits, uploads, job
// posts and application review.
type MutationCoordinator struct {
	profiles     ports.ProfileRepository
	companies    ports.CompanyRepository
	jobs         ports.JobRepository
	applications ports.ApplicationRepository
	blobs        ports.BlobStore
	guard        ports.ApplicationGuard
	notifier     ports.Notifier
	conn         ports.Connectivity
	opts         CoordinatorOptions
	log          zerolog.Logger

	now   func() time.Time
	newID func() string
	sleep func(ctx context.Context, d time.Duration) error
}

func NewMutationCoordinator(
	profiles ports.ProfileRepository,
	companies ports.CompanyRepository,
	jobs ports.JobRepository,
	applications ports.ApplicationRepository,
	blobs ports.BlobStore,
	guard ports.ApplicationGuard,
	notifier ports.Notifier,
	conn ports.Connectivity,
	opts CoordinatorOptions,
	log zerolog.Logger,
) *MutationCoordinator {
	if opts.UploadAttempts <= 0 {
		opts.UploadAttempts = defaultUploadAttempts
	}
	if opts.UploadBackoff <= 0 {
		opts.UploadBackoff = defaultUploadBackoff
	}
	return &MutationCoordinator{
		profiles:     profiles,
		companies:    companies,
		jobs:         jobs,
		applications: applications,
		blobs:        blobs,
		guard:        guard,
		notifier:     notifier,
		conn:         conn,
		opts:         opts,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		sleep:        sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *MutationCoordinator) online() bool {
	return c.conn == nil || c.conn.IsOnline()
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

// UpdateProfile writes the defined fields of upd. Local blob references are
// dropped before the write. For employers the company record is synced on a
// best-effort basis.
func (c *MutationCoordinator) UpdateProfile(ctx context.Context, user domain.User, upd domain.ProfileUpdate) (*ports.ProfileResult, error) {
	if !c.online() {
		return nil, domain.ErrOffline
	}

	if dropped := upd.DropBlobURLs(); len(dropped) > 0 {
		c.log.Warn().Strs("fields", dropped).Str("user_id", user.ID).Msg("dropping local blob references from profile update")
	}

	now := c.now()
	fields := upd.Fields()
	fields["updated_at"] = now

	err := c.profiles.Update(ctx, user.ID, fields)
	if errors.Is(err, domain.ErrProfileNotFound) {
		p := &domain.Profile{ID: user.ID, Role: user.Role, Email: user.Email, CreatedAt: now, UpdatedAt: now}
		upd.Apply(p)
		err = c.profiles.Create(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	result := &ports.ProfileResult{User: optimisticUser(user, upd)}
	if p, err := c.profiles.FindByID(ctx, user.ID); err == nil {
		result.Profile = p
		result.User = p.MergeUser(domain.Identity{
			UID:         user.ID,
			Email:       user.Email,
			DisplayName: user.Name,
			PhotoURL:    user.AvatarURL,
		})
	} else {
		c.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to read back profile")
	}

	if user.IsEmployer() {
		if err := c.syncCompany(ctx, user, &upd, result.Profile, now); err != nil {
			metrics.PartialFailuresTotal.WithLabelValues("company_sync").Inc()
			c.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to sync company record")
			result.Warning = warnCompanySync
		}
	}
	return result, nil
}

// optimisticUser applies the update to the session user without a read.
func optimisticUser(u domain.User, upd domain.ProfileUpdate) domain.User {
	for _, v := range []*string{upd.CompanyName, upd.FullName} {
		if v != nil && *v != "" {
			u.Name = *v
		}
	}
	for _, v := range []*string{upd.CompanyLogoURL, upd.AvatarURL} {
		if v != nil && *v != "" {
			u.AvatarURL = *v
		}
	}
	return u
}

func (c *MutationCoordinator) syncCompany(ctx context.Context, user domain.User, upd *domain.ProfileUpdate, p *domain.Profile, now time.Time) error {
	fields := domain.CompanyFields(upd)
	if len(fields) == 0 {
		return nil
	}

	_, err := c.companies.FindByID(ctx, user.ID)
	switch {
	case err == nil:
		fields["updated_at"] = now
		return c.companies.Update(ctx, user.ID, fields)
	case !errors.Is(err, domain.ErrCompanyNotFound):
		return err
	}

	if p == nil {
		p = &domain.Profile{ID: user.ID, Role: user.Role, Email: user.Email}
		upd.Apply(p)
	}
	company := domain.CompanyFromProfile(p)
	company.CreatedAt = now
	company.UpdatedAt = now
	return c.companies.Create(ctx, company)
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// Upload validates the file, stores it under the owner's folder with bounded
// retries and points the matching profile field at the new URL.
func (c *MutationCoordinator) Upload(ctx context.Context, user domain.User, in ports.UploadInput) (*ports.UploadResult, error) {
	if err := domain.ValidateUpload(in.Kind, in.ContentType, int64(len(in.Data))); err != nil {
		metrics.UploadAttemptsTotal.WithLabelValues(string(in.Kind), "rejected").Inc()
		return nil, err
	}
	if !c.online() {
		return nil, domain.ErrOffline
	}

	ext := domain.Extension(in.Kind, in.FileName, in.ContentType)
	path := fmt.Sprintf("%s/%s/%s.%s", in.Kind.Folder(), user.ID, c.newID(), ext)
	meta := ports.BlobMetadata{ContentType: in.ContentType, OriginalName: in.FileName, OwnerID: user.ID}

	if err := c.uploadWithRetry(ctx, path, in, meta); err != nil {
		return nil, err
	}

	file := domain.StoredFile{
		Path:         path,
		URL:          c.blobs.DownloadURL(path),
		ContentType:  in.ContentType,
		Size:         int64(len(in.Data)),
		OriginalName: in.FileName,
		OwnerID:      user.ID,
	}
	result := &ports.UploadResult{File: file}

	var upd domain.ProfileUpdate
	switch in.Kind {
	case domain.FileAvatar:
		upd.AvatarURL = &file.URL
	case domain.FileCompanyLogo:
		upd.CompanyLogoURL = &file.URL
	case domain.FileResume:
		upd.ResumeURL = &file.URL
	}
	pr, err := c.UpdateProfile(ctx, user, upd)
	if err != nil {
		metrics.PartialFailuresTotal.WithLabelValues("upload_profile").Inc()
		c.log.Warn().Err(err).Str("path", path).Msg("uploaded file not recorded on profile")
		result.Warning = warnAvatarProfile
		return result, nil
	}
	result.User = &pr.User
	result.Warning = pr.Warning
	return result, nil
}

func (c *MutationCoordinator) uploadWithRetry(ctx context.Context, path string, in ports.UploadInput, meta ports.BlobMetadata) error {
	kind := string(in.Kind)
	var lastErr error
	for attempt := 1; attempt <= c.opts.UploadAttempts; attempt++ {
		err := c.blobs.Upload(ctx, path, in.Data, meta)
		if err == nil {
			metrics.UploadAttemptsTotal.WithLabelValues(kind, "ok").Inc()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isTransient(err) {
			metrics.UploadAttemptsTotal.WithLabelValues(kind, "failed").Inc()
			return fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
		}

		lastErr = err
		if attempt == c.opts.UploadAttempts {
			break
		}
		metrics.UploadAttemptsTotal.WithLabelValues(kind, "retry").Inc()
		c.log.Warn().Err(err).Int("attempt", attempt).Str("path", path).Msg("transient upload failure, retrying")
		if err := c.sleep(ctx, time.Duration(attempt)*c.opts.UploadBackoff); err != nil {
			return err
		}
	}
	metrics.UploadAttemptsTotal.WithLabelValues(kind, "failed").Inc()
	return fmt.Errorf("%w after %d attempts: %w", domain.ErrUploadFailed, c.opts.UploadAttempts, lastErr)
}

func isTransient(err error) bool {
	if errors.Is(err, domain.ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// ListFiles returns the user's files of one kind.
func (c *MutationCoordinator) ListFiles(ctx context.Context, user domain.User, kind domain.FileKind) ([]domain.StoredFile, error) {
	if kind.Folder() == "" {
		return nil, domain.ErrUnknownFileKind
	}
	return c.blobs.List(ctx, ownerPrefix(kind, user.ID), listFilesLimit)
}

// DeleteFile removes one of the user's files.
func (c *MutationCoordinator) DeleteFile(ctx context.Context, user domain.User, path string) error {
	if !ownsPath(user.ID, path) {
		return domain.ErrForbidden
	}
	if !c.online() {
		return domain.ErrOffline
	}
	return c.blobs.Delete(ctx, path)
}

func ownerPrefix(kind domain.FileKind, userID string) string {
	return kind.Folder() + "/" + userID + "/"
}

func ownsPath(userID, path string) bool {
	if userID == "" || strings.Contains(path, "..") {
		return false
	}
	for _, k := range []domain.FileKind{domain.FileResume, domain.FileAvatar, domain.FileCompanyLogo} {
		if strings.HasPrefix(path, ownerPrefix(k, userID)) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Jobs
// ---------------------------------------------------------------------------

// PostJob creates an open posting. A repeated idempotency key returns the
// job created by the first request.
func (c *MutationCoordinator) PostJob(ctx context.Context, employer domain.User, in ports.JobInput) (*ports.JobResult, error) {
	if !employer.IsEmployer() {
		return nil, domain.ErrForbidden
	}
	if !c.online() {
		return nil, domain.ErrOffline
	}

	if in.IdempotencyKey != "" {
		existing, err := c.jobs.FindByIdempotencyKey(ctx, employer.ID, in.IdempotencyKey)
		switch {
		case err == nil:
			c.log.Info().Str("job_id", existing.ID).Msg("job post replayed")
			return &ports.JobResult{Job: existing, AlreadyExisted: true}, nil
		case !errors.Is(err, domain.ErrJobNotFound):
			return nil, fmt.Errorf("post job: %w", err)
		}
	}

	now := c.now()
	job := &domain.Job{
		ID:             c.newID(),
		EmployerID:     employer.ID,
		Status:         domain.JobOpen,
		ApplicationIDs: []string{},
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyJobInput(job, in)
	if err := job.Validate(); err != nil {
		return nil, err
	}

	if err := c.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("post job: %w", err)
	}
	c.log.Info().Str("job_id", job.ID).Str("employer_id", employer.ID).Msg("job posted")

	result := &ports.JobResult{Job: job}
	if err := c.companies.IncrementJobCount(ctx, employer.ID, 1); err != nil && !errors.Is(err, domain.ErrCompanyNotFound) {
		metrics.PartialFailuresTotal.WithLabelValues("job_count").Inc()
		c.log.Warn().Err(err).Str("employer_id", employer.ID).Msg("failed to increment company job count")
		result.Warning = warnJobCount
	}
	return result, nil
}

func applyJobInput(j *domain.Job, in ports.JobInput) {
	j.Title = strings.TrimSpace(in.Title)
	j.Description = in.Description
	j.Requirements = in.Requirements
	j.Location = in.Location
	j.IsRemote = in.IsRemote
	if t, ok := domain.ParseJobType(in.Type); ok {
		j.Type = t
	} else {
		j.Type = domain.JobType(in.Type)
	}
	j.Category = in.Category
	j.Salary = in.Salary
	j.Skills = in.Skills
	j.Experience = in.Experience
	j.Education = in.Education
	j.ApplicationDeadline = in.ApplicationDeadline
}

// UpdateJob edits the posting's content. Status, counters and the creation
// time are left as stored.
func (c *MutationCoordinator) UpdateJob(ctx context.Context, employer domain.User, jobID string, in ports.JobInput) (*ports.JobResult, error) {
	job, err := c.ownedJob(ctx, employer, jobID)
	if err != nil {
		return nil, err
	}

	applyJobInput(job, in)
	if err := job.Validate(); err != nil {
		return nil, err
	}
	job.UpdatedAt = c.now()

	fields := map[string]any{
		"title":                job.Title,
		"description":          job.Description,
		"requirements":         job.Requirements,
		"location":             job.Location,
		"is_remote":            job.IsRemote,
		"type":                 job.Type,
		"category":             job.Category,
		"salary":               job.Salary,
		"skills":               job.Skills,
		"experience":           job.Experience,
		"education":            job.Education,
		"application_deadline": job.ApplicationDeadline,
		"updated_at":           job.UpdatedAt,
	}
	if err := c.jobs.Update(ctx, job.ID, fields); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return &ports.JobResult{Job: job}, nil
}

// SetJobStatus opens or closes a posting.
func (c *MutationCoordinator) SetJobStatus(ctx context.Context, employer domain.User, jobID string, status string) (*domain.Job, error) {
	next := domain.JobStatus(strings.ToLower(strings.TrimSpace(status)))
	if next != domain.JobOpen && next != domain.JobClosed {
		return nil, fmt.Errorf("%w: unknown job status %q", domain.ErrValidation, status)
	}

	job, err := c.ownedJob(ctx, employer, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanTransitionTo(next) {
		metrics.StatusTransitionsTotal.WithLabelValues("job", "rejected").Inc()
		return nil, &domain.TransitionError{Entity: "job", From: string(job.Status), To: string(next)}
	}

	now := c.now()
	if err := c.jobs.Update(ctx, job.ID, map[string]any{"status": next, "updated_at": now}); err != nil {
		return nil, fmt.Errorf("set job status: %w", err)
	}
	metrics.StatusTransitionsTotal.WithLabelValues("job", "ok").Inc()
	c.log.Info().Str("job_id", job.ID).Str("from", string(job.Status)).Str("to", string(next)).Msg("job status changed")

	job.Status = next
	job.UpdatedAt = now
	return job, nil
}

// DeleteJob removes a posting the employer owns. Its applications stay
// behind and render with placeholders. The company job count is decremented
// best effort.
func (c *MutationCoordinator) DeleteJob(ctx context.Context, employer domain.User, jobID string) (*ports.JobResult, error) {
	job, err := c.ownedJob(ctx, employer, jobID)
	if err != nil {
		return nil, err
	}
	if err := c.jobs.Delete(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("delete job: %w", err)
	}
	c.log.Info().Str("job_id", job.ID).Str("employer_id", employer.ID).Msg("job deleted")

	result := &ports.JobResult{Job: job}
	if err := c.companies.IncrementJobCount(ctx, employer.ID, -1); err != nil && !errors.Is(err, domain.ErrCompanyNotFound) {
		metrics.PartialFailuresTotal.WithLabelValues("job_count").Inc()
		c.log.Warn().Err(err).Str("employer_id", employer.ID).Msg("failed to decrement company job count")
		result.Warning = warnJobCountDelete
	}
	return result, nil
}

func (c *MutationCoordinator) ownedJob(ctx context.Context, employer domain.User, jobID string) (*domain.Job, error) {
	if !employer.IsEmployer() {
		return nil, domain.ErrForbidden
	}
	if !c.online() {
		return nil, domain.ErrOffline
	}
	job, err := c.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employer.ID {
		return nil, domain.ErrForbidden
	}
	return job, nil
}

// ---------------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------------

// SubmitApplication files a job seeker's application. A resume is required
// before anything is read or written, and the (job, applicant) pair is
// unique unless duplicates are allowed.
func (c *MutationCoordinator) SubmitApplication(ctx context.Context, applicant domain.User, in ports.ApplyInput) (*ports.ApplyResult, error) {
	if applicant.Role != domain.RoleJobSeeker {
		return nil, domain.ErrForbidden
	}
	resume := strings.TrimSpace(in.ResumeURL)
	if resume == "" || domain.IsBlobURL(resume) {
		metrics.ApplicationsSubmittedTotal.WithLabelValues("no_resume").Inc()
		return nil, domain.ErrResumeRequired
	}
	if !c.online() {
		return nil, domain.ErrOffline
	}

	job, err := c.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobOpen {
		return nil, domain.ErrJobClosed
	}
	if job.DeadlinePassed(c.now()) {
		metrics.ApplicationsSubmittedTotal.WithLabelValues("deadline_passed").Inc()
		return nil, domain.ErrDeadlinePassed
	}

	if !c.opts.AllowDuplicateApplications {
		release, err := c.claim(ctx, job.ID, applicant.ID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	now := c.now()
	app := &domain.Application{
		ID:             c.newID(),
		JobID:          job.ID,
		JobTitle:       job.Title,
		CompanyID:      job.EmployerID,
		CompanyName:    c.companyName(ctx, job.EmployerID),
		ApplicantID:    applicant.ID,
		ApplicantName:  applicant.Name,
		ApplicantEmail: applicant.Email,
		ResumeURL:      resume,
		CoverLetter:    in.CoverLetter,
		Status:         domain.AppNew,
		StatusHistory: []domain.StatusChange{{
			Status:    domain.AppNew,
			ChangedBy: applicant.ID,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.applications.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrAlreadyApplied) {
			metrics.ApplicationsSubmittedTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("submit application: %w", err)
	}
	metrics.ApplicationsSubmittedTotal.WithLabelValues("ok").Inc()
	c.log.Info().Str("application_id", app.ID).Str("job_id", job.ID).Msg("application submitted")

	result := &ports.ApplyResult{Application: app}
	if err := c.jobs.AddApplication(ctx, job.ID, app.ID); err != nil {
		metrics.PartialFailuresTotal.WithLabelValues("job_application_ref").Inc()
		c.log.Warn().Err(err).Str("job_id", job.ID).Str("application_id", app.ID).Msg("failed to record application on job")
		result.Warning = warnApplicationCount
	}

	c.notify(ctx, domain.Notification{
		Type:        domain.EventApplicationSubmitted,
		RecipientID: job.EmployerID,
		JobID:       job.ID,
		Application: app.ID,
		Status:      string(app.Status),
		Message:     fmt.Sprintf("%s applied to %s", applicantLabel(applicant), job.Title),
		CreatedAt:   now,
	})
	return result, nil
}

// claim enforces one application per (job, applicant) pair. The guard
// serializes concurrent submissions; the existence check catches earlier
// ones. A guard outage falls back to the check and the store's unique index.
func (c *MutationCoordinator) claim(ctx context.Context, jobID, applicantID string) (func(), error) {
	release := func() {}
	if c.guard != nil {
		ok, err := c.guard.Acquire(ctx, jobID, applicantID)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Str("job_id", jobID).Msg("application guard unavailable")
		case !ok:
			metrics.ApplicationsSubmittedTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrAlreadyApplied
		default:
			release = func() {
				if err := c.guard.Release(context.WithoutCancel(ctx), jobID, applicantID); err != nil {
					c.log.Warn().Err(err).Str("job_id", jobID).Msg("failed to release application guard")
				}
			}
		}
	}

	exists, err := c.applications.Exists(ctx, jobID, applicantID)
	if err != nil {
		release()
		return nil, fmt.Errorf("submit application: %w", err)
	}
	if exists {
		release()
		metrics.ApplicationsSubmittedTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrAlreadyApplied
	}
	return release, nil
}

func applicantLabel(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// companyName is denormalized onto the application at submit time.
func (c *MutationCoordinator) companyName(ctx context.Context, employerID string) string {
	if p, err := c.profiles.FindByID(ctx, employerID); err == nil && p.CompanyName != "" {
		return p.CompanyName
	}
	if co, err := c.companies.FindByID(ctx, employerID); err == nil && co.Name != "" {
		return co.Name
	}
	return domain.UnknownCompany
}

// SetApplicationStatus moves an application through the review pipeline.
// Either status vocabulary is accepted.
func (c *MutationCoordinator) SetApplicationStatus(ctx context.Context, employer domain.User, applicationID, status, notes string) (*domain.Application, error) {
	if !employer.IsEmployer() {
		return nil, domain.ErrForbidden
	}
	next, ok := domain.ParseApplicationStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown application status %q", domain.ErrValidation, status)
	}
	if !c.online() {
		return nil, domain.ErrOffline
	}

	app, err := c.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	owner := app.CompanyID
	job, err := c.jobs.FindByID(ctx, app.JobID)
	switch {
	case err == nil:
		owner = job.EmployerID
	case !errors.Is(err, domain.ErrJobNotFound):
		return nil, err
	}
	if owner != employer.ID {
		return nil, domain.ErrForbidden
	}

	current, ok := domain.ParseApplicationStatus(string(app.Status))
	if !ok {
		current = domain.AppNew
	}
	if !current.CanTransitionTo(next) {
		metrics.StatusTransitionsTotal.WithLabelValues("application", "rejected").Inc()
		return nil, &domain.TransitionError{Entity: "application", From: string(current), To: string(next)}
	}

	change := domain.StatusChange{
		Status:    next,
		ChangedBy: employer.ID,
		Timestamp: c.now(),
		Notes:     notes,
	}
	if err := c.applications.UpdateStatus(ctx, app.ID, change); err != nil {
		return nil, fmt.Errorf("set application status: %w", err)
	}
	metrics.StatusTransitionsTotal.WithLabelValues("application", "ok").Inc()

	app.Status = next
	app.StatusHistory = append(app.StatusHistory, change)
	app.UpdatedAt = change.Timestamp

	c.notify(ctx, domain.Notification{
		Type:        domain.EventApplicationStatusChanged,
		RecipientID: app.ApplicantID,
		JobID:       app.JobID,
		Application: app.ID,
		Status:      next.SeekerLabel(),
		Message:     fmt.Sprintf("Your application for %s is now %s", app.JobTitle, next.SeekerLabel()),
		CreatedAt:   change.Timestamp,
	})
	return app, nil
}

// UpdateCoverLetter lets the applicant edit their cover letter.
func (c *MutationCoordinator) UpdateCoverLetter(ctx context.Context, applicant domain.User, applicationID, coverLetter string) (*domain.Application, error) {
	if !c.online() {
		return nil, domain.ErrOffline
	}
	app, err := c.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicant.ID {
		return nil, domain.ErrForbidden
	}

	now := c.now()
	if err := c.applications.Update(ctx, app.ID, map[string]any{"cover_letter": coverLetter, "updated_at": now}); err != nil {
		return nil, fmt.Errorf("update cover letter: %w", err)
	}
	app.CoverLetter = coverLetter
	app.UpdatedAt = now
	return app, nil
}

func (c *MutationCoordinator) notify(ctx context.Context, n domain.Notification) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, n); err != nil {
		metrics.PartialFailuresTotal.WithLabelValues("notify").Inc()
		c.log.Warn().Err(err).Str("type", n.Type).Str("recipient_id", n.RecipientID).Msg("failed to send notification")
	}
}
