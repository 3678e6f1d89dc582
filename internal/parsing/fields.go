package parsing

// Experience is one work-history entry produced by remote extraction.
type Experience struct {
	Company     string `json:"company,omitempty"`
	Title       string `json:"title,omitempty"`
	Period      string `json:"period,omitempty"`
	Description string `json:"description,omitempty"`
}

// Fields is the normalized projection of an extracted resume.
type Fields struct {
	Name        string       `json:"name,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Skills      []string     `json:"skills,omitempty"`
	Education   []string     `json:"education,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
	Keywords    []string     `json:"keywords,omitempty"`
}

// Merge overlays remote values on local ones. A remote field wins only when it
// is non-empty; a present local value is never degraded to an absent one.
func Merge(local, remote Fields) Fields {
	out := local
	if remote.Name != "" {
		out.Name = remote.Name
	}
	if remote.Email != "" {
		out.Email = remote.Email
	}
	if remote.Phone != "" {
		out.Phone = remote.Phone
	}
	if len(remote.Skills) > 0 {
		out.Skills = remote.Skills
	}
	if len(remote.Education) > 0 {
		out.Education = remote.Education
	}
	if len(remote.Experiences) > 0 {
		out.Experiences = remote.Experiences
	}
	if len(remote.Keywords) > 0 {
		out.Keywords = remote.Keywords
	}
	return out
}
