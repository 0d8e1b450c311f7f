package models

// TenantItem is one tenant with the number of users assigned to it
type TenantItem struct {
	TenantName string `json:"tenantName" db:"tenant_name"`
	Count      int64  `json:"count" db:"count"`
}

// TenantsResponse is the tenant list view
type TenantsResponse struct {
	Tenants    []TenantItem `json:"tenants"`
	TotalUsers int64        `json:"total_users"`
}
