package types

// CompanyProfile holds company research results: values, culture, mission and
// recent news used to tune generated documents. Cached keyed by company name.
type CompanyProfile struct {
	Name           string   `json:"name"`
	Values         []string `json:"values"`
	Culture        []string `json:"culture"`
	Mission        *string  `json:"mission"`
	RecentNews     []string `json:"recent_news"`
	Ethics         []string `json:"ethics"`
	Sustainability []string `json:"sustainability,omitempty"`
	Website        *string  `json:"website,omitempty"`
	LinkedIn       *string  `json:"linkedin,omitempty"`
}

// MinimalCompanyProfile returns the degraded profile used when research
// fails. Research is best-effort and must never block document generation.
func MinimalCompanyProfile(name string) *CompanyProfile {
	return &CompanyProfile{
		Name:       name,
		Values:     []string{},
		Culture:    []string{},
		Mission:    nil,
		RecentNews: []string{},
		Ethics:     []string{},
	}
}
