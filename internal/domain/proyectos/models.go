package proyectos

import "time"

type Project struct {
	ID                string     `json:"id"`
	CompanyID         string     `json:"companyId"`
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	ClientName        string     `json:"clientName"`
	ContractStart     time.Time  `json:"contractStart"`
	ContractEnd       *time.Time `json:"contractEnd,omitempty"`
	Status            string     `json:"status"`
	RequiredHeadcount int        `json:"requiredHeadcount"`
	AssignedHeadcount int        `json:"assignedHeadcount"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type Assignment struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"projectId"`
	EmployeeID   string     `json:"employeeId"`
	EmployeeName string     `json:"employeeName,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ActiveOn reports whether the assignment covers date.
func (a Assignment) ActiveOn(date time.Time) bool {
	if date.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !date.After(*a.EndDate)
}

type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// RangesOverlap compares two inclusive date ranges; a nil end is open.
func RangesOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && aEnd.Before(bStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(aStart) {
		return false
	}
	return true
}
