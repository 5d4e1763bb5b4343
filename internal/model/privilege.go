package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

var DefaultPrivileges = []Privilege{
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	{Code: "stock:reconcile", Name: "Reconcile Stock"},
	{Code: "party:manage", Name: "Manage Suppliers and Customers"},
	{Code: "purchase:create", Name: "Create Purchase"},
	{Code: "purchase:update", Name: "Update Purchase"},
	{Code: "purchase:delete", Name: "Delete Purchase"},
	{Code: "sale:create", Name: "Create Sale"},
	{Code: "sale:update", Name: "Update Sale"},
	{Code: "sale:delete", Name: "Delete Sale"},
	{Code: "invoice:create", Name: "Generate Invoice"},
	{Code: "invoice:update", Name: "Update Invoice Payment"},
	{Code: "invoice:delete", Name: "Delete Invoice"},
	{Code: "report:view", Name: "View Reports"},
}

// staffExcluded are withheld from the STAFF role at seeding time.
var staffExcluded = map[string]bool{
	"product:delete":  true,
	"stock:reconcile": true,
	"purchase:delete": true,
	"sale:delete":     true,
	"invoice:delete":  true,
}

// StaffPrivileges filters all down to what the STAFF role gets.
func StaffPrivileges(all []Privilege) []Privilege {
	out := make([]Privilege, 0, len(all))
	for _, p := range all {
		if !staffExcluded[p.Code] {
			out = append(out, p)
		}
	}
	return out
}
