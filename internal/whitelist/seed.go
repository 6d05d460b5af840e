package whitelist

// SeedEntries returns a small development roster so a fresh instance accepts
// registrations out of the box. Production deployments load the registrar's
// cohort lists instead.
func SeedEntries() []Entry {
	return []Entry{
		{Name: "Asha Rao", RegNo: "CS21-001", Cohort: "CS 2021-25"},
		{Name: "Bob Verma", RegNo: "CS21-002", Cohort: "CS 2021-25"},
		{Name: "Carol Iyer", RegNo: "CS22-001", Cohort: "CS 2022-26"},
		{Name: "Dev Patel", RegNo: "DS21-001", Cohort: "DS 2021-25"},
		{Name: "Esha Nair", RegNo: "DS22-001", Cohort: "DS 2022-26"},
	}
}
