package performance

type UpsertPerformanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Year       int    `json:"year" binding:"required,min=2000,max=2100"`
	Month      int    `json:"month" binding:"required,min=1,max=12"`
	Margin     string `json:"margin" binding:"required"`
	NA         string `json:"na" binding:"required"`
}

type PerformanceResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Quarter    int    `json:"quarter"`
	Margin     string `json:"margin"`
	NA         int64  `json:"na"`
	Source     string `json:"source"`
}

type QuarterlyResponse struct {
	EmployeeID    string                `json:"employee_id"`
	Year          int                   `json:"year"`
	Quarter       int                   `json:"quarter"`
	Margin        string                `json:"margin"`
	NA            int64                 `json:"na"`
	Complete      bool                  `json:"complete"`
	MissingMonths []int                 `json:"missing_months,omitempty"`
	Months        []PerformanceResponse `json:"months"`
}

type ListFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Year       int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Quarter    int    `form:"quarter" binding:"omitempty,min=1,max=4"`
}

type QuarterlyQuery struct {
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	Year       int    `form:"year" binding:"required,min=2000,max=2100"`
	Quarter    int    `form:"quarter" binding:"required,min=1,max=4"`
}
