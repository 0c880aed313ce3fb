package attendance

import "time"

// Seed is the demo attendance history loaded at startup, most recent first.
var Seed = []Record{
	{
		ID:        "1",
		UserID:    "1",
		UserName:  "Budi Santoso",
		IDCard:    "1234567890",
		Timestamp: time.Date(2025, time.April, 12, 8, 0, 0, 0, time.UTC),
		TimeIn:    "09:00:00",
		TimeOut:   "17:00:00",
		Status:    StatusSuccess,
		Variant:   VariantShift,
	},
	{
		ID:        "2",
		UserID:    "2",
		UserName:  "Siti Rahayu",
		IDCard:    "9876543210",
		Timestamp: time.Date(2025, time.April, 12, 8, 0, 0, 0, time.UTC),
		TimeIn:    "09:00:00",
		TimeOut:   "17:00:00",
		Status:    StatusSuccess,
		Variant:   VariantShift,
	},
	{
		ID:        "3",
		UserID:    "3",
		UserName:  "Ahmad Wijaya",
		IDCard:    "4567890123",
		Timestamp: time.Date(2025, time.April, 12, 8, 0, 0, 0, time.UTC),
		TimeIn:    "09:00:00",
		TimeOut:   "17:00:00",
		Status:    StatusSuccess,
		Variant:   VariantShift,
	},
}
