package domain

import "time"

type Section string

func (s Section) String() string {
	return string(s)
}

const (
	SectionLogin         Section = "login"
	SectionSignup        Section = "signup"
	SectionAccount       Section = "account"
	SectionPasswordReset Section = "password_reset"
	SectionTaxons        Section = "taxons"
	SectionProducts      Section = "products"
	SectionPages         Section = "pages"
)

// DefaultSections is the order a full sitemap run goes through.
var DefaultSections = []Section{
	SectionLogin,
	SectionSignup,
	SectionAccount,
	SectionPasswordReset,
	SectionTaxons,
	SectionProducts,
	SectionPages,
}

func ParseSections(names []string) ([]Section, error) {
	if len(names) == 0 {
		return DefaultSections, nil
	}

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		section := Section(name)
		if !section.Valid() {
			return nil, &UnknownSectionError{Name: name}
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func (s Section) Valid() bool {
	for _, known := range DefaultSections {
		if s == known {
			return true
		}
	}
	return false
}

type UnknownSectionError struct {
	Name string
}

func (e *UnknownSectionError) Error() string {
	return "unknown sitemap section: " + e.Name
}

type RunSummary struct {
	RunID      string    `json:"run_id"`
	Host       string    `json:"host"`
	Sections   []Section `json:"sections"`
	EntryCount int       `json:"entry_count"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
