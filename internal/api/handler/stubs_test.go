package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// Stubs embed the port so unused methods panic if a handler reaches them.

type stubSessions struct {
	ports.SessionService
	signUpFn   func(ctx context.Context, clientID string, in ports.RegisterInput) (*ports.AuthSession, error)
	passwordFn func(ctx context.Context, clientID, email, password string) (*ports.AuthSession, error)
	federateFn func(ctx context.Context, clientID string, a ports.FederatedAssertion) (*ports.AuthSession, error)
	restoreFn  func(ctx context.Context, token string) (*ports.AuthSession, error)
	signOutFn  func(ctx context.Context, clientID string) error
	stateFn    func(ctx context.Context, clientID string) (domain.SessionState, error)
	setUsers   []domain.User
}

func (s *stubSessions) SignUp(ctx context.Context, clientID string, in ports.RegisterInput) (*ports.AuthSession, error) {
	return s.signUpFn(ctx, clientID, in)
}

func (s *stubSessions) SignInWithPassword(ctx context.Context, clientID, email, password string) (*ports.AuthSession, error) {
	return s.passwordFn(ctx, clientID, email, password)
}

func (s *stubSessions) SignInWithFederated(ctx context.Context, clientID string, a ports.FederatedAssertion) (*ports.AuthSession, error) {
	return s.federateFn(ctx, clientID, a)
}

func (s *stubSessions) Restore(ctx context.Context, token string) (*ports.AuthSession, error) {
	return s.restoreFn(ctx, token)
}

func (s *stubSessions) SignOut(ctx context.Context, clientID string) error {
	return s.signOutFn(ctx, clientID)
}

func (s *stubSessions) State(ctx context.Context, clientID string) (domain.SessionState, error) {
	return s.stateFn(ctx, clientID)
}

func (s *stubSessions) SetUser(_ context.Context, _ string, user domain.User) error {
	s.setUsers = append(s.setUsers, user)
	return nil
}

type stubViews struct {
	ports.ViewService
	listJobsFn   func(ctx context.Context, f ports.JobFilter) ([]ports.JobListItem, error)
	detailFn     func(ctx context.Context, jobID string, viewer *domain.User) (*ports.JobDetail, error)
	applicantsFn func(ctx context.Context, employer domain.User, jobID string) ([]ports.ApplicantRow, error)
	mineFn       func(ctx context.Context, applicant domain.User) ([]ports.SeekerApplicationRow, error)
	companiesFn  func(ctx context.Context, f ports.CompanyFilter) ([]ports.CompanyData, error)
	companyFn    func(ctx context.Context, id string) (*ports.CompanyPage, error)
}

func (s *stubViews) ListJobs(ctx context.Context, f ports.JobFilter) ([]ports.JobListItem, error) {
	return s.listJobsFn(ctx, f)
}

func (s *stubViews) GetJobDetail(ctx context.Context, jobID string, viewer *domain.User) (*ports.JobDetail, error) {
	return s.detailFn(ctx, jobID, viewer)
}

func (s *stubViews) ListJobApplicants(ctx context.Context, employer domain.User, jobID string) ([]ports.ApplicantRow, error) {
	return s.applicantsFn(ctx, employer, jobID)
}

func (s *stubViews) ListMyApplications(ctx context.Context, applicant domain.User) ([]ports.SeekerApplicationRow, error) {
	return s.mineFn(ctx, applicant)
}

func (s *stubViews) ListCompanies(ctx context.Context, f ports.CompanyFilter) ([]ports.CompanyData, error) {
	return s.companiesFn(ctx, f)
}

func (s *stubViews) GetCompany(ctx context.Context, id string) (*ports.CompanyPage, error) {
	return s.companyFn(ctx, id)
}

type stubMutations struct {
	ports.MutationService
	profileFn   func(ctx context.Context, user domain.User, upd domain.ProfileUpdate) (*ports.ProfileResult, error)
	uploadFn    func(ctx context.Context, user domain.User, in ports.UploadInput) (*ports.UploadResult, error)
	deleteFn    func(ctx context.Context, user domain.User, path string) error
	postJobFn   func(ctx context.Context, employer domain.User, in ports.JobInput) (*ports.JobResult, error)
	jobStatusFn func(ctx context.Context, employer domain.User, jobID, status string) (*domain.Job, error)
	deleteJobFn func(ctx context.Context, employer domain.User, jobID string) (*ports.JobResult, error)
	applyFn     func(ctx context.Context, applicant domain.User, in ports.ApplyInput) (*ports.ApplyResult, error)
	appStatusFn func(ctx context.Context, employer domain.User, id, status, notes string) (*domain.Application, error)
}

func (s *stubMutations) UpdateProfile(ctx context.Context, user domain.User, upd domain.ProfileUpdate) (*ports.ProfileResult, error) {
	return s.profileFn(ctx, user, upd)
}

func (s *stubMutations) Upload(ctx context.Context, user domain.User, in ports.UploadInput) (*ports.UploadResult, error) {
	return s.uploadFn(ctx, user, in)
}

func (s *stubMutations) DeleteFile(ctx context.Context, user domain.User, path string) error {
	return s.deleteFn(ctx, user, path)
}

func (s *stubMutations) PostJob(ctx context.Context, employer domain.User, in ports.JobInput) (*ports.JobResult, error) {
	return s.postJobFn(ctx, employer, in)
}

func (s *stubMutations) SetJobStatus(ctx context.Context, employer domain.User, jobID, status string) (*domain.Job, error) {
	return s.jobStatusFn(ctx, employer, jobID, status)
}

func (s *stubMutations) DeleteJob(ctx context.Context, employer domain.User, jobID string) (*ports.JobResult, error) {
	return s.deleteJobFn(ctx, employer, jobID)
}

func (s *stubMutations) SubmitApplication(ctx context.Context, applicant domain.User, in ports.ApplyInput) (*ports.ApplyResult, error) {
	return s.applyFn(ctx, applicant, in)
}

func (s *stubMutations) SetApplicationStatus(ctx context.Context, employer domain.User, id, status, notes string) (*domain.Application, error) {
	return s.appStatusFn(ctx, employer, id, status, notes)
}

type stubBlobs struct {
	files map[string]string
}

func (s *stubBlobs) Open(_ context.Context, path string) (io.ReadCloser, *domain.StoredFile, error) {
	body, ok := s.files[path]
	if !ok {
		return nil, nil, domain.ErrFileNotFound
	}
	return io.NopCloser(strings.NewReader(body)), &domain.StoredFile{Path: path, ContentType: "application/pdf"}, nil
}

var (
	testSeeker   = domain.User{ID: "seeker-1", Email: "ada@example.com", Name: "Ada", Role: domain.RoleJobSeeker}
	testEmployer = domain.User{ID: "emp-1", Email: "hr@acme.test", Name: "Acme", Role: domain.RoleEmployer}
)

// newJSONContext builds an echo context with the validator installed and,
// when user is non-nil, the claims the Auth middleware would set.
func newJSONContext(method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(CtxUser, user)
		c.Set(CtxRole, user.Role)
		c.Set(CtxClientID, "tab-1")
	}
	return c, rec
}
