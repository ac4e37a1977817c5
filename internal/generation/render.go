package generation

import (
	"fmt"
	"strings"

	"github.com/philipposk/ThatJob/internal/types"
)

// Plain-text renderers for prompt construction. The model only needs compact
// readable context, not the full JSON documents.

func joinList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func renderExperience(entries []types.WorkExperience) string {
	if len(entries) == 0 {
		return "none"
	}
	var b strings.Builder
	for _, e := range entries {
		end := "present"
		if e.EndDate != nil && *e.EndDate != "" {
			end = *e.EndDate
		}
		fmt.Fprintf(&b, "- %s at %s (%s to %s): %s", e.Title, e.Company, e.StartDate, end, e.Description)
		if len(e.Skills) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(e.Skills, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func renderEducation(entries []types.EducationRecord) string {
	if len(entries) == 0 {
		return "none"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s in %s, %s", e.Degree, e.Field, e.Institution)
		if e.GPA != nil {
			fmt.Fprintf(&b, " (GPA %s)", *e.GPA)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func renderProjects(entries []types.ProjectRecord) string {
	if len(entries) == 0 {
		return "none"
	}
	var b strings.Builder
	for _, p := range entries {
		fmt.Fprintf(&b, "- %s: %s", p.Name, p.Description)
		if len(p.Technologies) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(p.Technologies, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func renderJob(job *types.JobPosting) string {
	var b strings.Builder
	if job.Title != nil && *job.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", *job.Title)
	}
	if job.Company != nil && *job.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", *job.Company)
	}
	if job.Description != nil && *job.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", *job.Description)
	}
	if req := job.Requirements; req != nil {
		if len(req.Skills) > 0 {
			fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(req.Skills, ", "))
		}
		if req.ExperienceYears != nil {
			fmt.Fprintf(&b, "Required experience: %.1f years\n", *req.ExperienceYears)
		}
		if req.ExperienceLevel != nil {
			fmt.Fprintf(&b, "Level: %s\n", *req.ExperienceLevel)
		}
		if len(req.Education) > 0 {
			fmt.Fprintf(&b, "Education: %s\n", strings.Join(req.Education, ", "))
		}
		if len(req.Responsibilities) > 0 {
			fmt.Fprintf(&b, "Responsibilities: %s\n", strings.Join(req.Responsibilities, "; "))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "no details available"
	}
	return out
}
