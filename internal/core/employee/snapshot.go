package employee

import "time"

// Snapshot は永続化層とやり取りするためのフィールド値のコピーです。
// 未設定のフィールドは nil になります。
type Snapshot struct {
	ID               string
	NationalID       *uint64
	FirstName        string
	LastName         string
	Department       *Department
	BaseSalary       *float64
	EducationLevel   *EducationLevel
	DateOfBirth      *time.Time
	DateOfEmployment *time.Time
	Country          *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Snapshot は現在の状態をコピーして返します。
func (e *Employee) Snapshot() Snapshot {
	return Snapshot{
		ID:               e.ID,
		NationalID:       cellPtr(e.nationalID),
		FirstName:        e.firstName,
		LastName:         e.lastName,
		Department:       cellPtr(e.department),
		BaseSalary:       cellPtr(e.baseSalary),
		EducationLevel:   cellPtr(e.educationLevel),
		DateOfBirth:      cellPtr(e.dateOfBirth),
		DateOfEmployment: cellPtr(e.dateOfEmployment),
		Country:          cellPtr(e.country),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// Restore は保存済みのスナップショットからエンティティを復元します。
// 値は保存時に検証済みとみなし、再検証は行いません。
func Restore(s Snapshot, clock Clock) *Employee {
	e := New(clock)
	e.ID = s.ID
	e.CreatedAt = s.CreatedAt
	e.UpdatedAt = s.UpdatedAt
	e.nationalID = ptrCell(s.NationalID)
	e.firstName = s.FirstName
	e.lastName = s.LastName
	e.department = ptrCell(s.Department)
	e.baseSalary = ptrCell(s.BaseSalary)
	e.educationLevel = ptrCell(s.EducationLevel)
	e.dateOfBirth = ptrCell(s.DateOfBirth)
	e.dateOfEmployment = ptrCell(s.DateOfEmployment)
	e.country = ptrCell(s.Country)
	return e
}

func cellPtr[T any](c cell[T]) *T {
	if !c.set {
		return nil
	}
	v := c.value
	return &v
}

func ptrCell[T any](p *T) cell[T] {
	if p == nil {
		return cell[T]{}
	}
	return cell[T]{value: *p, set: true}
}
