package orgunit

type CreateOrgUnitRequest struct {
	Kind string `json:"kind" binding:"required,oneof=BRANCH CEO_UNIT"`
	Code string `json:"code" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=255"`
}

type UpdateOrgUnitRequest struct {
	Code string `json:"code" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=255"`
}

type OrgUnitResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}
