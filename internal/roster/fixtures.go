package roster

// Seed is the demo roster loaded at startup.
var Seed = []User{
	{
		ID:         "1",
		RFIDTag:    "A1B2C3D4",
		Name:       "Budi Santoso",
		Department: "Engineering",
		Position:   "Senior Developer",
		ImageURL:   "https://randomuser.me/api/portraits/men/32.jpg",
	},
	{
		ID:         "2",
		RFIDTag:    "E5F6G7H8",
		Name:       "Siti Rahayu",
		Department: "Human Resources",
		Position:   "HR Manager",
		ImageURL:   "https://randomuser.me/api/portraits/women/44.jpg",
	},
	{
		ID:         "3",
		RFIDTag:    "I9J0K1L2",
		Name:       "Ahmad Wijaya",
		Department: "Marketing",
		Position:   "Marketing Specialist",
		ImageURL:   "https://randomuser.me/api/portraits/men/67.jpg",
	},
	{
		ID:         "4",
		RFIDTag:    "M3N4O5P6",
		Name:       "Dewi Susanti",
		Department: "Finance",
		Position:   "Financial Analyst",
		ImageURL:   "https://randomuser.me/api/portraits/women/17.jpg",
	},
	{
		ID:         "5",
		RFIDTag:    "Q7R8S9T0",
		Name:       "Joko Prasetyo",
		Department: "Operations",
		Position:   "Operations Manager",
		ImageURL:   "https://randomuser.me/api/portraits/men/39.jpg",
	},
}
