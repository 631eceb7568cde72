package employee

type CreateEmployeeRequest struct {
	Code         string `json:"code" binding:"omitempty,max=50"`
	FullName     string `json:"full_name" binding:"required,max=255"`
	Email        string `json:"email" binding:"omitempty,email"`
	PositionCode string `json:"position_code" binding:"required"`
	ManagerID    string `json:"manager_id" binding:"omitempty,uuid"`
	BranchID     string `json:"branch_id" binding:"omitempty,uuid"`
	CEOUnitID    string `json:"ceo_unit_id" binding:"omitempty,uuid"`
	BirthDate    string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	JoinedAt     string `json:"joined_at" binding:"omitempty,datetime=2006-01-02"`
}

type UpdateEmployeeRequest struct {
	FullName     string `json:"full_name" binding:"required,max=255"`
	Email        string `json:"email" binding:"omitempty,email"`
	PositionCode string `json:"position_code" binding:"required"`
	ManagerID    string `json:"manager_id" binding:"omitempty,uuid"`
	BranchID     string `json:"branch_id" binding:"omitempty,uuid"`
	CEOUnitID    string `json:"ceo_unit_id" binding:"omitempty,uuid"`
	BirthDate    string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	JoinedAt     string `json:"joined_at" binding:"omitempty,datetime=2006-01-02"`
	Status       string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

type EmployeeResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	Code          string `json:"code"`
	FullName      string `json:"full_name"`
	Email         string `json:"email,omitempty"`
	PositionCode  string `json:"position_code"`
	PositionLevel int    `json:"position_level"`
	ManagerID     string `json:"manager_id,omitempty"`
	BranchID      string `json:"branch_id,omitempty"`
	CEOUnitID     string `json:"ceo_unit_id,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	JoinedAt      string `json:"joined_at,omitempty"`
	Status        string `json:"status"`
}

type SubordinateResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	FullName     string `json:"full_name"`
	PositionCode string `json:"position_code"`
	Level        int    `json:"level"`
	ManagerID    string `json:"manager_id,omitempty"`
}
