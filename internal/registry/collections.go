package registry

import (
	"github.com/hauldesk/hauldesk/internal/core/crud"
	"github.com/hauldesk/hauldesk/internal/core/form"
	"github.com/hauldesk/hauldesk/internal/core/lookup"
)

// JSON Schema helpers
func newSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}

func nonEmptyProp() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func emailProp() map[string]any {
	return map[string]any{"type": "string", "format": "email"}
}

func numberProp(min float64) map[string]any {
	return map[string]any{"type": "number", "minimum": min}
}

func enumProp(values ...any) map[string]any {
	return map[string]any{"type": "string", "enum": values}
}

func options(pairs ...string) []form.Option {
	opts := make([]form.Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		opts = append(opts, form.Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return opts
}

// Shared reference pickers. Every source is user-scoped since records are
// owned per user.
var (
	clientSource = &lookup.Source{
		Collection: "clients", ValueKey: "id", LabelKey: "name",
		SearchKeys: []string{"name", "document"}, UserScoped: true,
	}
	supplierSource = &lookup.Source{
		Collection: "suppliers", ValueKey: "id", LabelKey: "name",
		SearchKeys: []string{"name", "document"}, UserScoped: true,
	}
	vehicleSource = &lookup.Source{
		Collection: "vehicles", ValueKey: "id", LabelKey: "plate",
		SearchKeys: []string{"plate", "model"}, UserScoped: true,
	}
	employeeSource = &lookup.Source{
		Collection: "employees", ValueKey: "id", LabelKey: "name",
		SearchKeys: []string{"name"}, UserScoped: true,
	}
	activeVehicleSource = &lookup.Source{
		Collection: "vehicles", ValueKey: "id", LabelKey: "plate",
		SearchKeys: []string{"plate", "model"}, UserScoped: true,
		ExtraFilter: map[string]any{"status": "active"},
	}
)

// Collections returns the full declarative configuration of the dashboard.
func Collections() []*Collection {
	return []*Collection{
		clients(),
		suppliers(),
		employees(),
		vehicles(),
		fuelEntries(),
		maintenanceOrders(),
		services(),
		receivables(),
		payables(),
		budgets(),
	}
}

func clients() *Collection {
	return &Collection{
		Name:  "clients",
		Title: "Clients",
		Form: &form.Config{
			Title: "Client",
			Groups: []form.Group{
				{Title: "Identification", Fields: []form.Field{
					{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
					{Name: "document", Label: "Document", Kind: form.KindText},
					{Name: "email", Label: "Email", Kind: form.KindEmail},
					{Name: "phone", Label: "Phone", Kind: form.KindText},
				}},
				{Title: "Address", Fields: []form.Field{
					{Name: "address", Label: "Address", Kind: form.KindText},
					{Name: "city", Label: "City", Kind: form.KindText},
					{Name: "notes", Label: "Notes", Kind: form.KindTextArea},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"name":     nonEmptyProp(),
			"document": stringProp(),
			"email":    emailProp(),
			"phone":    stringProp(),
			"address":  stringProp(),
			"city":     stringProp(),
			"notes":    stringProp(),
		}, []string{"name"}),
		ListFields: []ListField{
			{Name: "name", Label: "Name"},
			{Name: "document", Label: "Document"},
			{Name: "phone", Label: "Phone"},
			{Name: "city", Label: "City"},
		},
		SearchKeys:   []string{"name", "document", "email"},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "name"},
	}
}

func suppliers() *Collection {
	return &Collection{
		Name:  "suppliers",
		Title: "Suppliers",
		Form: &form.Config{
			Title: "Supplier",
			Groups: []form.Group{
				{Title: "Identification", Fields: []form.Field{
					{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
					{Name: "document", Label: "Document", Kind: form.KindText},
					{Name: "email", Label: "Email", Kind: form.KindEmail},
					{Name: "phone", Label: "Phone", Kind: form.KindText},
					{Name: "category", Label: "Category", Kind: form.KindSelect, Options: options(
						"fuel", "Fuel",
						"parts", "Parts",
						"tires", "Tires",
						"workshop", "Workshop",
						"other", "Other",
					)},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"name":     nonEmptyProp(),
			"document": stringProp(),
			"email":    emailProp(),
			"phone":    stringProp(),
			"category": enumProp("fuel", "parts", "tires", "workshop", "other"),
		}, []string{"name"}),
		ListFields: []ListField{
			{Name: "name", Label: "Name"},
			{Name: "category", Label: "Category"},
			{Name: "phone", Label: "Phone"},
		},
		Filters: []Filter{
			{Name: "category", Label: "Category", Options: options(
				"fuel", "Fuel", "parts", "Parts", "tires", "Tires", "workshop", "Workshop", "other", "Other",
			)},
		},
		SearchKeys:   []string{"name", "document"},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "name"},
	}
}

func employees() *Collection {
	return &Collection{
		Name:  "employees",
		Title: "Employees",
		Form: &form.Config{
			Title: "Employee",
			Groups: []form.Group{
				{Title: "Personal", Fields: []form.Field{
					{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
					{Name: "document", Label: "Document", Kind: form.KindText},
					{Name: "phone", Label: "Phone", Kind: form.KindText},
					{Name: "hired_at", Label: "Hired at", Kind: form.KindDate},
				}},
				{Title: "Role", Fields: []form.Field{
					{Name: "role", Label: "Role", Kind: form.KindSelect, Options: options(
						"driver", "Driver",
						"mechanic", "Mechanic",
						"dispatcher", "Dispatcher",
						"admin", "Administrative",
					)},
					{Name: "salary", Label: "Salary", Kind: form.KindNumber},
					{Name: "license_number", Label: "License number", Kind: form.KindText},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"name":           nonEmptyProp(),
			"document":       stringProp(),
			"phone":          stringProp(),
			"hired_at":       stringProp(),
			"role":           enumProp("driver", "mechanic", "dispatcher", "admin"),
			"salary":         numberProp(0),
			"license_number": stringProp(),
		}, []string{"name"}),
		ListFields: []ListField{
			{Name: "name", Label: "Name"},
			{Name: "role", Label: "Role"},
			{Name: "phone", Label: "Phone"},
		},
		Filters: []Filter{
			{Name: "role", Label: "Role", Options: options(
				"driver", "Driver", "mechanic", "Mechanic", "dispatcher", "Dispatcher", "admin", "Administrative",
			)},
		},
		SearchKeys:   []string{"name", "document"},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "name"},
	}
}

func vehicles() *Collection {
	return &Collection{
		Name:  "vehicles",
		Title: "Vehicles",
		Form: &form.Config{
			Title: "Vehicle",
			Groups: []form.Group{
				{Title: "Vehicle", Fields: []form.Field{
					{Name: "plate", Label: "Plate", Kind: form.KindText, Required: true},
					{Name: "model", Label: "Model", Kind: form.KindText, Required: true},
					{Name: "year", Label: "Year", Kind: form.KindNumber},
					{Name: "odometer", Label: "Odometer (km)", Kind: form.KindNumber},
					{Name: "status", Label: "Status", Kind: form.KindSelect, Options: options(
						"active", "Active",
						"maintenance", "In maintenance",
						"inactive", "Inactive",
					)},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"plate":    nonEmptyProp(),
			"model":    nonEmptyProp(),
			"year":     numberProp(1950),
			"odometer": numberProp(0),
			"status":   enumProp("active", "maintenance", "inactive"),
		}, []string{"plate", "model"}),
		ListFields: []ListField{
			{Name: "plate", Label: "Plate"},
			{Name: "model", Label: "Model"},
			{Name: "year", Label: "Year"},
			{Name: "status", Label: "Status"},
		},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: options(
				"active", "Active", "maintenance", "In maintenance", "inactive", "Inactive",
			)},
		},
		SearchKeys:   []string{"plate", "model"},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "plate"},
	}
}

func fuelEntries() *Collection {
	return &Collection{
		Name:  "fuel_entries",
		Title: "Fuel",
		Form: &form.Config{
			Title: "Fuel entry",
			Groups: []form.Group{
				{Title: "Refueling", Fields: []form.Field{
					{Name: "vehicle_id", Label: "Vehicle", Kind: form.KindRemoteSelect, Required: true, Source: activeVehicleSource},
					{Name: "filled_at", Label: "Date", Kind: form.KindDate, Required: true},
					{Name: "liters", Label: "Liters", Kind: form.KindNumber, Required: true},
					{Name: "total_cost", Label: "Total cost", Kind: form.KindNumber, Required: true},
					{Name: "odometer", Label: "Odometer (km)", Kind: form.KindNumber},
					{Name: "station", Label: "Station", Kind: form.KindText},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"vehicle_id": nonEmptyProp(),
			"filled_at":  nonEmptyProp(),
			"liters":     numberProp(0),
			"total_cost": numberProp(0),
			"odometer":   numberProp(0),
			"station":    stringProp(),
		}, []string{"vehicle_id", "filled_at", "liters", "total_cost"}),
		ListFields: []ListField{
			{Name: "filled_at", Label: "Date"},
			{Name: "liters", Label: "Liters"},
			{Name: "total_cost", Label: "Total"},
			{Name: "station", Label: "Station"},
		},
		SearchKeys: []string{"station"},
		Summaries: map[string]Summary{
			"cost":   {Field: "total_cost", DateKey: "filled_at"},
			"liters": {Field: "liters", DateKey: "filled_at"},
		},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "filled_at", Desc: true},
	}
}

func maintenanceOrders() *Collection {
	return &Collection{
		Name:  "maintenance_orders",
		Title: "Maintenance",
		Form: &form.Config{
			Title: "Maintenance order",
			Groups: []form.Group{
				{Title: "Order", Fields: []form.Field{
					{Name: "vehicle_id", Label: "Vehicle", Kind: form.KindRemoteSelect, Required: true, Source: vehicleSource},
					{Name: "supplier_id", Label: "Workshop", Kind: form.KindRemoteSelect, Source: supplierSource},
					{Name: "description", Label: "Description", Kind: form.KindTextArea, Required: true},
					{Name: "scheduled_for", Label: "Scheduled for", Kind: form.KindDate},
					{Name: "cost", Label: "Cost", Kind: form.KindNumber},
					{Name: "status", Label: "Status", Kind: form.KindSelect, Options: options(
						"scheduled", "Scheduled",
						"in_progress", "In progress",
						"done", "Done",
					)},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"vehicle_id":    nonEmptyProp(),
			"supplier_id":   stringProp(),
			"description":   nonEmptyProp(),
			"scheduled_for": stringProp(),
			"cost":          numberProp(0),
			"status":        enumProp("scheduled", "in_progress", "done"),
		}, []string{"vehicle_id", "description"}),
		ListFields: []ListField{
			{Name: "description", Label: "Description"},
			{Name: "scheduled_for", Label: "Scheduled"},
			{Name: "cost", Label: "Cost"},
			{Name: "status", Label: "Status"},
		},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: options(
				"scheduled", "Scheduled", "in_progress", "In progress", "done", "Done",
			)},
		},
		SearchKeys: []string{"description"},
		Summaries: map[string]Summary{
			"cost": {Field: "cost", DateKey: "scheduled_for"},
		},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "scheduled_for", Desc: true},
	}
}

func services() *Collection {
	return &Collection{
		Name:  "services",
		Title: "Services",
		Form: &form.Config{
			Title: "Service",
			Groups: []form.Group{
				{Title: "Service", Fields: []form.Field{
					{Name: "client_id", Label: "Client", Kind: form.KindRemoteSelect, Required: true, Source: clientSource},
					{Name: "vehicle_id", Label: "Vehicle", Kind: form.KindRemoteSelect, Source: activeVehicleSource},
					{Name: "driver_id", Label: "Driver", Kind: form.KindRemoteSelect, Source: employeeSource},
					{Name: "description", Label: "Description", Kind: form.KindTextArea, Required: true},
				}},
				{Title: "Route and billing", Fields: []form.Field{
					{Name: "origin", Label: "Origin", Kind: form.KindText},
					{Name: "destination", Label: "Destination", Kind: form.KindText},
					{Name: "service_date", Label: "Date", Kind: form.KindDate, Required: true},
					{Name: "amount", Label: "Amount", Kind: form.KindNumber, Required: true},
					{Name: "status", Label: "Status", Kind: form.KindSelect, Options: options(
						"scheduled", "Scheduled",
						"completed", "Completed",
						"invoiced", "Invoiced",
						"canceled", "Canceled",
					)},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"client_id":    nonEmptyProp(),
			"vehicle_id":   stringProp(),
			"driver_id":    stringProp(),
			"description":  nonEmptyProp(),
			"origin":       stringProp(),
			"destination":  stringProp(),
			"service_date": nonEmptyProp(),
			"amount":       numberProp(0),
			"status":       enumProp("scheduled", "completed", "invoiced", "canceled"),
		}, []string{"client_id", "description", "service_date", "amount"}),
		ListFields: []ListField{
			{Name: "description", Label: "Description"},
			{Name: "service_date", Label: "Date"},
			{Name: "amount", Label: "Amount"},
			{Name: "status", Label: "Status"},
		},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: options(
				"scheduled", "Scheduled", "completed", "Completed", "invoiced", "Invoiced", "canceled", "Canceled",
			)},
		},
		SearchKeys: []string{"description", "origin", "destination"},
		Summaries: map[string]Summary{
			"revenue": {Field: "amount", DateKey: "service_date"},
		},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "service_date", Desc: true},
	}
}

func receivables() *Collection {
	return &Collection{
		Name:  "receivables",
		Title: "Receivables",
		Form: &form.Config{
			Title: "Receivable",
			Groups: []form.Group{
				{Title: "Receivable", Fields: []form.Field{
					{Name: "client_id", Label: "Client", Kind: form.KindRemoteSelect, Required: true, Source: clientSource},
					{Name: "description", Label: "Description", Kind: form.KindText, Required: true},
					{Name: "amount", Label: "Amount", Kind: form.KindNumber, Required: true},
					{Name: "due_date", Label: "Due date", Kind: form.KindDate, Required: true},
					{Name: "received_at", Label: "Received at", Kind: form.KindDate},
					{Name: "status", Label: "Status", Kind: form.KindSelect, Options: options(
						"pending", "Pending",
						"received", "Received",
						"overdue", "Overdue",
					)},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"client_id":   nonEmptyProp(),
			"description": nonEmptyProp(),
			"amount":      numberProp(0),
			"due_date":    nonEmptyProp(),
			"received_at": stringProp(),
			"status":      enumProp("pending", "received", "overdue"),
		}, []string{"client_id", "description", "amount", "due_date"}),
		ListFields: []ListField{
			{Name: "description", Label: "Description"},
			{Name: "amount", Label: "Amount"},
			{Name: "due_date", Label: "Due date"},
			{Name: "status", Label: "Status"},
		},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: options(
				"pending", "Pending", "received", "Received", "overdue", "Overdue",
			)},
		},
		SearchKeys: []string{"description"},
		Summaries: map[string]Summary{
			"amount": {Field: "amount", DateKey: "due_date"},
		},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "due_date"},
	}
}

func payables() *Collection {
	return &Collection{
		Name:  "payables",
		Title: "Payables",
		Form: &form.Config{
			Title: "Payable",
			Groups: []form.Group{
				{Title: "Payable", Fields: []form.Field{
					{Name: "supplier_id", Label: "Supplier", Kind: form.KindRemoteSelect, Required: true, Source: supplierSource},
					{Name: "description", Label: "Description", Kind: form.KindText, Required: true},
					{Name: "amount", Label: "Amount", Kind: form.KindNumber, Required: true},
					{Name: "due_date", Label: "Due date", Kind: form.KindDate, Required: true},
					{Name: "paid_at", Label: "Paid at", Kind: form.KindDate},
					{Name: "status", Label: "Status", Kind: form.KindSelect, Options: options(
						"pending", "Pending",
						"paid", "Paid",
						"overdue", "Overdue",
					)},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"supplier_id": nonEmptyProp(),
			"description": nonEmptyProp(),
			"amount":      numberProp(0),
			"due_date":    nonEmptyProp(),
			"paid_at":     stringProp(),
			"status":      enumProp("pending", "paid", "overdue"),
		}, []string{"supplier_id", "description", "amount", "due_date"}),
		ListFields: []ListField{
			{Name: "description", Label: "Description"},
			{Name: "amount", Label: "Amount"},
			{Name: "due_date", Label: "Due date"},
			{Name: "status", Label: "Status"},
		},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: options(
				"pending", "Pending", "paid", "Paid", "overdue", "Overdue",
			)},
		},
		SearchKeys: []string{"description"},
		Summaries: map[string]Summary{
			"amount": {Field: "amount", DateKey: "due_date"},
		},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "due_date"},
	}
}

func budgets() *Collection {
	return &Collection{
		Name:  "budgets",
		Title: "Budgets",
		Form: &form.Config{
			Title: "Budget",
			Groups: []form.Group{
				{Title: "Budget", Fields: []form.Field{
					{Name: "client_id", Label: "Client", Kind: form.KindRemoteSelect, Required: true, Source: clientSource},
					{Name: "description", Label: "Description", Kind: form.KindTextArea, Required: true},
					{Name: "amount", Label: "Amount", Kind: form.KindNumber, Required: true},
					{Name: "valid_until", Label: "Valid until", Kind: form.KindDate},
					{Name: "status", Label: "Status", Kind: form.KindSelect, Options: options(
						"draft", "Draft",
						"sent", "Sent",
						"approved", "Approved",
						"rejected", "Rejected",
					)},
					// Set when a budget is cloned as a new revision.
					{Name: "revision_of", Label: "", Kind: form.KindHidden, Hidden: true},
				}},
			},
		},
		Schema: newSchema(map[string]any{
			"client_id":   nonEmptyProp(),
			"description": nonEmptyProp(),
			"amount":      numberProp(0),
			"valid_until": stringProp(),
			"status":      enumProp("draft", "sent", "approved", "rejected"),
			"revision_of": stringProp(),
		}, []string{"client_id", "description", "amount"}),
		ListFields: []ListField{
			{Name: "description", Label: "Description"},
			{Name: "amount", Label: "Amount"},
			{Name: "valid_until", Label: "Valid until"},
			{Name: "status", Label: "Status"},
		},
		Filters: []Filter{
			{Name: "status", Label: "Status", Options: options(
				"draft", "Draft", "sent", "Sent", "approved", "Approved", "rejected", "Rejected",
			)},
		},
		SearchKeys: []string{"description"},
		Summaries: map[string]Summary{
			"amount": {Field: "amount", DateKey: "valid_until"},
		},
		SoftDelete:   true,
		DefaultOrder: crud.Order{Key: "created_at", Desc: true},
	}
}
