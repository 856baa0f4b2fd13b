package project

// Seed returns the demo dataset used when nothing has been persisted yet.
func Seed() []Project {
	return []Project{
		{
			ID:          1,
			Name:        "E-commerce Platform",
			Description: "Building a modern e-commerce solution",
			Sections:    freshSections(),
		},
		{
			ID:          2,
			Name:        "Mobile App",
			Description: "Customer loyalty program app",
			Sections:    freshSections(),
		},
	}
}
