package handler

import (
	"strings"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// --- Request → Service input ---

func toJobInput(req jobRequest, idempotencyKey string) ports.JobInput {
	skills := req.Skills
	if len(skills) == 0 && req.SkillsText != "" {
		skills = domain.SplitSkills(req.SkillsText)
	}
	jobType, _ := domain.ParseJobType(req.Type)

	return ports.JobInput{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		IsRemote:     req.IsRemote,
		Type:         string(jobType),
		Category:     req.Category,
		Salary: domain.Salary{
			Min:        req.Salary.Min,
			Max:        req.Salary.Max,
			Currency:   strings.ToUpper(req.Salary.Currency),
			Negotiable: req.Salary.Negotiable,
		},
		Skills:              skills,
		Experience:          domain.Range{Min: req.Experience.Min, Max: req.Experience.Max},
		Education:           req.Education,
		ApplicationDeadline: req.ApplicationDeadline,
		IdempotencyKey:      idempotencyKey,
	}
}

func toJobFilter(q jobListQuery) ports.JobFilter {
	jobType, _ := domain.ParseJobType(q.Type)
	return ports.JobFilter{
		EmployerID: q.Employer,
		Search:     strings.TrimSpace(q.Search),
		Type:       jobType,
		Location:   strings.TrimSpace(q.Location),
		OpenOnly:   true,
		Limit:      q.Limit,
	}
}

func toProfileUpdate(req profileUpdateRequest) domain.ProfileUpdate {
	upd := domain.ProfileUpdate{
		FullName:           req.FullName,
		AvatarURL:          req.AvatarURL,
		Title:              req.Title,
		Bio:                req.Bio,
		Location:           req.Location,
		Phone:              req.Phone,
		Website:            req.Website,
		Skills:             req.Skills,
		ResumeURL:          req.ResumeURL,
		CompanyName:        req.CompanyName,
		CompanySize:        req.CompanySize,
		CompanyIndustry:    req.CompanyIndustry,
		CompanyDescription: req.CompanyDescription,
		CompanyLogoURL:     req.CompanyLogoURL,
		CompanyWebsite:     req.CompanyWebsite,
	}
	if req.Experience != nil {
		entries := make([]domain.ExperienceEntry, len(*req.Experience))
		for i, e := range *req.Experience {
			entries[i] = domain.ExperienceEntry(e)
		}
		upd.Experience = &entries
	}
	if req.Education != nil {
		entries := make([]domain.EducationEntry, len(*req.Education))
		for i, e := range *req.Education {
			entries[i] = domain.EducationEntry(e)
		}
		upd.Education = &entries
	}
	return upd
}
