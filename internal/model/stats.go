package model

// InventoryStats holds aggregate resource counts by type.
type InventoryStats struct {
	TotalOrganizations int `json:"total_organizations"`
	TotalEntities      int `json:"total_entities"`
	TotalIdentities    int `json:"total_identities"`
	TotalProjects      int `json:"total_projects"`
	TotalMilestones    int `json:"total_milestones"`
	TotalIssues        int `json:"total_issues"`
	TotalRelations     int `json:"total_relations"`
}
