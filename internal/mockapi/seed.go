package mockapi

import (
	"time"
)

// Seed fills the store with a small demo clinic. Appointment and payment
// times are placed around now so dashboards and "today" views have data.
func Seed(st *Store, now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	at := func(offsetDays, hour, minute int) string {
		return day.AddDate(0, 0, offsetDays).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).Format(time.RFC3339)
	}
	created := func(offsetDays int) string { return day.AddDate(0, 0, offsetDays).Format(time.RFC3339) }

	st.Insert("clinic", Record{
		"id":       "clinic-1",
		"name":     "Body Bliss Aesthetics",
		"slug":     "body-bliss",
		"email":    "frontdesk@bodybliss.test",
		"phone":    "+15555550100",
		"address":  "12 Harbor Way",
		"city":     "Portland",
		"state":    "ME",
		"zipCode":  "04101",
		"timezone": "UTC",
		"businessHours": map[string]any{
			"monday":    map[string]any{"open": "09:00", "close": "18:00"},
			"tuesday":   map[string]any{"open": "09:00", "close": "18:00"},
			"wednesday": map[string]any{"open": "09:00", "close": "18:00"},
			"thursday":  map[string]any{"open": "09:00", "close": "20:00"},
			"friday":    map[string]any{"open": "09:00", "close": "17:00"},
			"saturday":  map[string]any{"open": "10:00", "close": "14:00"},
		},
		"services":  []any{"Botox", "Dermal Filler", "HydraFacial", "Chemical Peel"},
		"createdAt": created(-400),
	})
	st.Insert("settings", Record{
		"id":                        "settings-1",
		"currency":                  "USD",
		"defaultAppointmentMinutes": 30,
		"bufferMinutes":             10,
		"cancellationNoticeHours":   24,
		"depositAmountCents":        5000,
		"taxRatePercent":            5.5,
		"allowOnlineBooking":        true,
		"notifications": map[string]any{
			"emailEnabled":  true,
			"smsEnabled":    true,
			"reminderHours": []any{48, 2},
		},
	})

	for _, u := range []Record{
		{"id": "user-1", "email": "dana@bodybliss.test", "firstName": "Dana", "lastName": "Reyes", "role": "admin", "clinicId": "clinic-1", "active": true},
		{"id": "user-2", "email": "sam@bodybliss.test", "firstName": "Sam", "lastName": "Okafor", "role": "provider", "clinicId": "clinic-1", "active": true},
		{"id": "user-3", "email": "lee@bodybliss.test", "firstName": "Lee", "lastName": "Park", "role": "receptionist", "clinicId": "clinic-1", "active": true},
	} {
		u["createdAt"] = created(-300)
		st.Insert("users", u)
	}

	for _, c := range []Record{
		{"id": "client-1", "firstName": "Ana", "lastName": "Lima", "email": "ana@example.test", "phone": "+15555550111", "status": "active", "tags": []any{"vip"}, "createdAt": created(-200),
			"insurance": []any{map[string]any{"provider": "Harbor Health", "policyNumber": "HH-40012", "primary": true, "coveragePercent": 20, "deductibleMet": true}}},
		{"id": "client-2", "firstName": "Ben", "lastName": "Cole", "email": "ben@example.test", "status": "active", "createdAt": created(-90)},
		{"id": "client-3", "firstName": "Cara", "lastName": "Diaz", "email": "cara@example.test", "status": "active", "tags": []any{"new"}, "createdAt": created(-3)},
		{"id": "client-4", "firstName": "Dev", "lastName": "Shah", "email": "dev@example.test", "status": "inactive", "createdAt": created(-500)},
	} {
		c["clinicId"] = "clinic-1"
		st.Insert("clients", c)
	}

	for _, p := range []Record{
		{"id": "product-1", "sku": "SKN-SPF50", "name": "Mineral SPF 50", "category": "skincare", "priceCents": 4200, "costCents": 1800, "stockQuantity": 24, "reorderLevel": 10, "active": true},
		{"id": "product-2", "sku": "SKN-SER-C", "name": "Vitamin C Serum", "category": "skincare", "priceCents": 8900, "costCents": 3100, "stockQuantity": 4, "reorderLevel": 6, "active": true},
		{"id": "product-3", "sku": "INJ-BTX-100", "name": "Botox 100u", "category": "injectable", "priceCents": 60000, "costCents": 42000, "stockQuantity": 3, "reorderLevel": 2, "active": true},
	} {
		p["clinicId"] = "clinic-1"
		p["createdAt"] = created(-250)
		st.Insert("products", p)
	}

	st.Insert("resources", Record{"id": "resource-1", "clinicId": "clinic-1", "name": "Treatment Room A", "type": "room", "status": "available", "capacity": 1, "createdAt": created(-400)})
	st.Insert("resources", Record{"id": "resource-2", "clinicId": "clinic-1", "name": "HydraFacial MD", "type": "equipment", "status": "available", "createdAt": created(-400)})

	for _, a := range []Record{
		{"id": "appt-1", "clientId": "client-1", "providerId": "user-2", "resourceId": "resource-1", "service": "Botox", "startTime": at(-7, 10, 0), "endTime": at(-7, 10, 30), "status": "completed"},
		{"id": "appt-2", "clientId": "client-2", "providerId": "user-2", "resourceId": "resource-2", "service": "HydraFacial", "startTime": at(-2, 14, 0), "endTime": at(-2, 15, 0), "status": "completed"},
		{"id": "appt-3", "clientId": "client-3", "providerId": "user-2", "resourceId": "resource-1", "service": "Dermal Filler", "startTime": at(-1, 11, 0), "endTime": at(-1, 12, 0), "status": "no_show"},
		{"id": "appt-4", "clientId": "client-1", "providerId": "user-2", "resourceId": "resource-2", "service": "HydraFacial", "startTime": at(1, 9, 0), "endTime": at(1, 10, 0), "status": "confirmed"},
		{"id": "appt-5", "clientId": "client-2", "providerId": "user-2", "resourceId": "resource-1", "service": "Chemical Peel", "startTime": at(2, 13, 0), "endTime": at(2, 13, 45), "status": "scheduled"},
	} {
		a["clinicId"] = "clinic-1"
		a["createdAt"] = created(-10)
		st.Insert("appointments", a)
	}

	st.Insert("orders", Record{
		"id": "order-1", "orderNumber": "ORD-1001", "clientId": "client-1", "clinicId": "clinic-1", "status": "completed",
		"items": []any{
			map[string]any{"productId": "product-3", "name": "Botox 100u", "quantity": 1, "unitPriceCents": 60000, "totalCents": 60000},
			map[string]any{"productId": "product-1", "name": "Mineral SPF 50", "quantity": 2, "unitPriceCents": 4200, "totalCents": 8400},
		},
		"subtotalCents": 68400, "taxCents": 0, "discountCents": 0, "totalCents": 68400,
		"createdAt": at(-7, 10, 35),
	})
	st.Insert("orders", Record{
		"id": "order-2", "orderNumber": "ORD-1002", "clientId": "client-2", "clinicId": "clinic-1", "status": "completed",
		"items": []any{
			map[string]any{"productId": "product-2", "name": "Vitamin C Serum", "quantity": 1, "unitPriceCents": 8900, "totalCents": 8900},
		},
		"subtotalCents": 8900, "taxCents": 0, "discountCents": 0, "totalCents": 8900,
		"createdAt": at(-2, 15, 5),
	})

	st.Insert("payments", Record{"id": "payment-1", "orderId": "order-1", "clientId": "client-1", "amountCents": 68400, "refundedCents": 0, "currency": "USD", "method": "card", "status": "completed", "paidAt": at(-7, 10, 36), "createdAt": at(-7, 10, 36)})
	st.Insert("payments", Record{"id": "payment-2", "orderId": "order-2", "clientId": "client-2", "amountCents": 8900, "refundedCents": 0, "currency": "USD", "method": "cash", "status": "completed", "paidAt": at(-2, 15, 6), "createdAt": at(-2, 15, 6)})

	st.Insert("events", Record{"id": "event-1", "clinicId": "clinic-1", "title": "Staff training: new filler line", "type": "training", "startTime": at(3, 8, 0), "endTime": at(3, 9, 0), "allDay": false, "createdBy": "user-1", "createdAt": created(-5)})
	st.Insert("events", Record{"id": "event-2", "clinicId": "clinic-1", "title": "Clinic closed", "type": "holiday", "startTime": at(10, 0, 0), "endTime": at(11, 0, 0), "allDay": true, "createdBy": "user-1", "createdAt": created(-5)})

	st.Insert("notifications", Record{"id": "notification-1", "userId": "user-1", "type": "warning", "title": "Low stock", "message": "Vitamin C Serum is below its reorder level", "read": false, "link": "/products/product-2", "createdAt": created(0)})
	st.Insert("notifications", Record{"id": "notification-2", "userId": "user-1", "type": "appointment", "title": "No-show", "message": "Cara Diaz missed a Dermal Filler appointment", "read": false, "link": "/appointments/appt-3", "createdAt": created(-1)})
	st.Insert("notifications", Record{"id": "notification-3", "userId": "user-1", "type": "payment", "title": "Payment received", "message": "Ben Cole paid $89.00", "read": true, "createdAt": created(-2)})
}
