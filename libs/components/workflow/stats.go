package workflow

// Stats is the dashboard summary of a set of templates.
type Stats struct {
	Total         int                     `json:"total"`
	Active        int                     `json:"active"`
	Inactive      int                     `json:"inactive"`
	Steps         int                     `json:"steps"`
	ByLicenseType map[LicenseType]int     `json:"byLicenseType"`
	ByCategory    map[LicenseCategory]int `json:"byCategory"`
}

// Summarize derives Stats from templates. It has no side effects.
func Summarize(templates []Template) Stats {
	out := Stats{
		ByLicenseType: make(map[LicenseType]int),
		ByCategory:    make(map[LicenseCategory]int),
	}
	for _, t := range templates {
		out.Total++
		if t.IsActive {
			out.Active++
		} else {
			out.Inactive++
		}
		out.Steps += len(t.Steps)
		if t.LicenseType != "" {
			out.ByLicenseType[t.LicenseType]++
		}
		if t.LicenseCategory != "" {
			out.ByCategory[t.LicenseCategory]++
		}
	}
	return out
}
