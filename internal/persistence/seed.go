package persistence

var seedFaculty = []Faculty{
	{ID: 1, Name: "Prof. Shital Ghule", Department: DepartmentIT},
	{ID: 2, Name: "Dr. Jyoti Surve", Department: DepartmentIT},
	{ID: 3, Name: "Prof. Kimi Ramteke", Department: DepartmentCS},
	{ID: 4, Name: "Dr. Shital Wadgavane", Department: DepartmentCS},
	{ID: 5, Name: "Prof. V. Jadhav", Department: DepartmentENTC},
	{ID: 6, Name: "Dr. N. Shinde", Department: DepartmentENTC},
}

// SeedFaculty returns a copy of the roster written on first initialization.
func SeedFaculty() []Faculty {
	out := make([]Faculty, len(seedFaculty))
	copy(out, seedFaculty)
	return out
}
