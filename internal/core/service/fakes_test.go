package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Connectivity
// ---------------------------------------------------------------------------

type fakeConn struct{ online bool }

func (c *fakeConn) IsOnline() bool { return c.online }

func onlineConn() *fakeConn  { return &fakeConn{online: true} }
func offlineConn() *fakeConn { return &fakeConn{online: false} }

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

type fakeProfiles struct {
	mu        sync.Mutex
	byID      map[string]*domain.Profile
	findErr   error
	createErr error
	updateErr error
	calls     int
}

func newFakeProfiles(ps ...*domain.Profile) *fakeProfiles {
	f := &fakeProfiles{byID: make(map[string]*domain.Profile)}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Create(_ context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[p.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) Update(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	strs := map[string]*string{
		"full_name":           &p.FullName,
		"avatar_url":          &p.AvatarURL,
		"title":               &p.Title,
		"bio":                 &p.Bio,
		"location":            &p.Location,
		"phone":               &p.Phone,
		"website":             &p.Website,
		"resume_url":          &p.ResumeURL,
		"company_name":        &p.CompanyName,
		"company_size":        &p.CompanySize,
		"company_industry":    &p.CompanyIndustry,
		"company_description": &p.CompanyDescription,
		"company_logo_url":    &p.CompanyLogoURL,
		"company_website":     &p.CompanyWebsite,
	}
	for k, v := range fields {
		switch k {
		case "updated_at":
			p.UpdatedAt = v.(time.Time)
		case "skills":
			p.Skills = v.([]string)
		default:
			dst, ok := strs[k]
			if !ok {
				return fmt.Errorf("fake: unknown profile field %q", k)
			}
			*dst = v.(string)
		}
	}
	return nil
}

func (f *fakeProfiles) ListEmployers(_ context.Context, filter ports.CompanyFilter) ([]*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Profile
	for _, p := range f.byID {
		if p.Role != domain.RoleEmployer {
			continue
		}
		if filter.Industry != "" && p.CompanyIndustry != filter.Industry {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProfiles) get(id string) *domain.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

// ---------------------------------------------------------------------------
// Companies
// ---------------------------------------------------------------------------

type fakeCompanies struct {
	mu        sync.Mutex
	byID      map[string]*domain.Company
	createErr error
	updateErr error
	incErr    error
	updates   []map[string]any
}

func newFakeCompanies(cs ...*domain.Company) *fakeCompanies {
	f := &fakeCompanies{byID: make(map[string]*domain.Company)}
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCompanies) FindByID(_ context.Context, id string) (*domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanies) Create(_ context.Context, c *domain.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[c.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCompanies) Update(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrCompanyNotFound
	}
	f.updates = append(f.updates, fields)
	if v, ok := fields["name"].(string); ok {
		c.Name = v
	}
	if v, ok := fields["logo_url"].(string); ok {
		c.LogoURL = v
	}
	return nil
}

func (f *fakeCompanies) IncrementJobCount(_ context.Context, id string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return f.incErr
	}
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrCompanyNotFound
	}
	c.JobCount += delta
	return nil
}

// ---------------------------------------------------------------------------
// Jobs
// ---------------------------------------------------------------------------

type fakeJobs struct {
	mu        sync.Mutex
	byID      map[string]*domain.Job
	createErr error
	addAppErr error
	viewsErr  error
	deleteErr error
	views     map[string]int
	updates   map[string]map[string]any
}

func newFakeJobs(js ...*domain.Job) *fakeJobs {
	f := &fakeJobs{
		byID:    make(map[string]*domain.Job),
		views:   make(map[string]int),
		updates: make(map[string]map[string]any),
	}
	for _, j := range js {
		f.byID[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Create(_ context.Context, j *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *j
	f.byID[j.ID] = &cp
	return nil
}

func (f *fakeJobs) FindByID(_ context.Context, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) FindByIdempotencyKey(_ context.Context, employerID, key string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.byID {
		if j.EmployerID == employerID && j.IdempotencyKey == key {
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrJobNotFound
}

func (f *fakeJobs) List(_ context.Context, filter ports.JobFilter) ([]*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Job
	for _, j := range f.byID {
		if filter.EmployerID != "" && j.EmployerID != filter.EmployerID {
			continue
		}
		if filter.OpenOnly && j.Status != domain.JobOpen {
			continue
		}
		if filter.Search != "" && !strings.HasPrefix(strings.ToLower(j.Title), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (f *fakeJobs) Update(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	f.updates[id] = fields
	if v, ok := fields["status"].(domain.JobStatus); ok {
		j.Status = v
	}
	if v, ok := fields["title"].(string); ok {
		j.Title = v
	}
	return nil
}

func (f *fakeJobs) IncrementViews(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewsErr != nil {
		return f.viewsErr
	}
	f.views[id]++
	return nil
}

func (f *fakeJobs) AddApplication(_ context.Context, jobID, appID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addAppErr != nil {
		return f.addAppErr
	}
	j, ok := f.byID[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	j.ApplicationIDs = append(j.ApplicationIDs, appID)
	j.ApplicationCount++
	return nil
}

func (f *fakeJobs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeJobs) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

// ---------------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------------

type fakeApplications struct {
	mu       sync.Mutex
	byID     map[string]*domain.Application
	unique   bool
	existErr error
	creates  int
	history  map[string][]domain.StatusChange
}

func newFakeApplications(as ...*domain.Application) *fakeApplications {
	f := &fakeApplications{
		byID:    make(map[string]*domain.Application),
		history: make(map[string][]domain.StatusChange),
	}
	for _, a := range as {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeApplications) Create(_ context.Context, a *domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unique {
		for _, existing := range f.byID {
			if existing.JobID == a.JobID && existing.ApplicantID == a.ApplicantID {
				return domain.ErrAlreadyApplied
			}
		}
	}
	f.creates++
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeApplications) FindByID(_ context.Context, id string) (*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) Exists(_ context.Context, jobID, applicantID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existErr != nil {
		return false, f.existErr
	}
	for _, a := range f.byID {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplications) ListByJob(_ context.Context, jobID string) ([]*domain.Application, error) {
	return f.filter(func(a *domain.Application) bool { return a.JobID == jobID }, 0), nil
}

func (f *fakeApplications) ListByApplicant(_ context.Context, applicantID string, limit int) ([]*domain.Application, error) {
	return f.filter(func(a *domain.Application) bool { return a.ApplicantID == applicantID }, limit), nil
}

func (f *fakeApplications) filter(keep func(*domain.Application) bool, limit int) []*domain.Application {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Application
	for _, a := range f.byID {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeApplications) UpdateStatus(_ context.Context, id string, change domain.StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	a.Status = change.Status
	a.StatusHistory = append(a.StatusHistory, change)
	f.history[id] = append(f.history[id], change)
	return nil
}

func (f *fakeApplications) Update(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	if v, ok := fields["cover_letter"].(string); ok {
		a.CoverLetter = v
	}
	return nil
}

func (f *fakeApplications) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// ---------------------------------------------------------------------------
// Blobs
// ---------------------------------------------------------------------------

type fakeBlobs struct {
	mu      sync.Mutex
	errs    []error // returned by successive Upload calls, nil entries succeed
	calls   int
	objects map[string]ports.BlobMetadata
}

func newFakeBlobs(errs ...error) *fakeBlobs {
	return &fakeBlobs{errs: errs, objects: make(map[string]ports.BlobMetadata)}
}

func (f *fakeBlobs) Upload(_ context.Context, path string, _ []byte, meta ports.BlobMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.objects[path] = meta
	return nil
}

func (f *fakeBlobs) DownloadURL(path string) string { return "https://files.test/" + path }

func (f *fakeBlobs) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[path]; !ok {
		return domain.ErrFileNotFound
	}
	delete(f.objects, path)
	return nil
}

func (f *fakeBlobs) List(_ context.Context, prefix string, limit int) ([]domain.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StoredFile
	for p, meta := range f.objects {
		if strings.HasPrefix(p, prefix) {
			out = append(out, domain.StoredFile{Path: p, URL: "https://files.test/" + p, OwnerID: meta.OwnerID})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBlobs) Open(context.Context, string) (io.ReadCloser, *domain.StoredFile, error) {
	return nil, nil, domain.ErrFileNotFound
}

// ---------------------------------------------------------------------------
// Guard, notifier, side effects
// ---------------------------------------------------------------------------

type fakeGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released int
}

func newFakeGuard() *fakeGuard { return &fakeGuard{held: make(map[string]bool)} }

func (g *fakeGuard) Acquire(_ context.Context, jobID, applicantID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	key := jobID + ":" + applicantID
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, jobID, applicantID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, jobID+":"+applicantID)
	g.released++
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []domain.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

// inlineEffects runs side effects synchronously so tests can observe them.
type inlineEffects struct {
	mu   sync.Mutex
	ran  []string
	errs []error
}

func (e *inlineEffects) Enqueue(effect ports.SideEffect) {
	err := effect.Run(context.Background())
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ran = append(e.ran, effect.Name+":"+effect.Key)
	e.errs = append(e.errs, err)
}

// ---------------------------------------------------------------------------
// Identity
// ---------------------------------------------------------------------------

type fakeIDP struct {
	mu         sync.Mutex
	calls      int
	signInErr  error
	signOutErr error
	verifyErr  error
	isNewUser  bool
	issued     map[string]*domain.ProviderSession
	seq        int
	now        func() time.Time
}

func newFakeIDP() *fakeIDP {
	return &fakeIDP{issued: make(map[string]*domain.ProviderSession), now: func() time.Time { return time.Now().UTC() }}
}

func (p *fakeIDP) mint(clientID string, id domain.Identity) *domain.ProviderSession {
	p.seq++
	now := p.now()
	ps := &domain.ProviderSession{
		Token:     fmt.Sprintf("token-%d", p.seq),
		ClientID:  clientID,
		Identity:  id,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		IsNewUser: p.isNewUser,
	}
	p.issued[ps.Token] = ps
	return ps
}

func (p *fakeIDP) SignInWithPassword(_ context.Context, clientID, email, _ string) (*domain.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.mint(clientID, domain.Identity{UID: "uid-" + email, Email: email, DisplayName: "Ada", Provider: domain.ProviderPassword}), nil
}

func (p *fakeIDP) SignInWithFederated(_ context.Context, clientID, idToken string) (*domain.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.mint(clientID, domain.Identity{
		UID:         "fed-" + idToken,
		Email:       idToken + "@example.com",
		DisplayName: "Grace Hopper",
		PhotoURL:    "https://img.test/grace.png",
		Provider:    domain.ProviderFederated,
	}), nil
}

func (p *fakeIDP) SignUp(_ context.Context, clientID, email, _, displayName string) (*domain.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.mint(clientID, domain.Identity{UID: "uid-" + email, Email: email, DisplayName: displayName, Provider: domain.ProviderPassword}), nil
}

func (p *fakeIDP) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.signOutErr != nil {
		return p.signOutErr
	}
	delete(p.issued, token)
	return nil
}

func (p *fakeIDP) Verify(_ context.Context, token string) (*domain.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	ps, ok := p.issued[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	cp := *ps
	return &cp, nil
}

func (p *fakeIDP) Refresh(_ context.Context, token string) (*domain.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ps, ok := p.issued[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	delete(p.issued, token)
	return p.mint(ps.ClientID, ps.Identity), nil
}

type fakeSessions struct {
	mu     sync.Mutex
	byID   map[string]domain.SessionRecord
	getErr error
	putErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: make(map[string]domain.SessionRecord)}
}

func (s *fakeSessions) Get(_ context.Context, clientID string) (*domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.byID[clientID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &rec, nil
}

func (s *fakeSessions) Put(_ context.Context, rec *domain.SessionRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.byID[rec.ClientID] = *rec
	return nil
}

type fakeLimiter struct {
	allow  bool
	err    error
	resets int
}

func (l *fakeLimiter) Allow(context.Context, string) (bool, error) { return l.allow, l.err }

func (l *fakeLimiter) Reset(context.Context, string) error {
	l.resets++
	return nil
}
