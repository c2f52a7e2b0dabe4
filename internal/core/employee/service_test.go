package employee

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

type fakeEmployeeRepo struct {
	employees map[string]Snapshot
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]Snapshot)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	snap := e.Snapshot()
	if err := r.checkNationalID(snap); err != nil {
		return nil, err
	}
	r.employees[snap.ID] = snap
	r.order = append(r.order, snap.ID)
	return Restore(snap, nil), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	snap := e.Snapshot()
	if _, ok := r.employees[snap.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	if err := r.checkNationalID(snap); err != nil {
		return nil, err
	}
	r.employees[snap.ID] = snap
	return Restore(snap, nil), nil
}

func (r *fakeEmployeeRepo) checkNationalID(snap Snapshot) error {
	if snap.NationalID == nil {
		return nil
	}
	for id, existing := range r.employees {
		if id != snap.ID && existing.NationalID != nil && *existing.NationalID == *snap.NationalID {
			return ErrNationalIDAlreadyExists
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	snap, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return Restore(snap, nil), nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	var filtered []*Employee
	for _, id := range r.order {
		snap := r.employees[id]
		if filter.Department != nil && (snap.Department == nil || *snap.Department != *filter.Department) {
			continue
		}
		filtered = append(filtered, Restore(snap, nil))
	}

	if filter.Offset > len(filtered) {
		return []*Employee{}, "", nil
	}

	end := min(filter.Offset+filter.Limit, len(filtered))
	page := filtered[filter.Offset:end]

	nextToken := ""
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}

	return page, nextToken, nil
}

func ptr[T any](v T) *T {
	return &v
}

func validRegisterInput() RegisterEmployeeInput {
	return RegisterEmployeeInput{
		NationalID:       ptr(uint64(1234567890)),
		FirstName:        "Karen",
		LastName:         "Blixen",
		Department:       ptr(DepartmentFinance),
		BaseSalary:       ptr(20000.0),
		EducationLevel:   ptr(EducationSecondary),
		DateOfBirth:      ptr("1985-04-17"),
		DateOfEmployment: ptr("2021-08-01"),
		Country:          ptr("Denmark"),
	}
}

func TestService_RegisterEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	created, err := svc.RegisterEmployee(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("RegisterEmployee returned error: %v", err)
	}

	if _, err := normalizeID(created.ID); err != nil {
		t.Fatalf("expected generated uuid, got %q", created.ID)
	}
	if created.FirstName() != "Karen" || created.LastName() != "Blixen" {
		t.Fatalf("unexpected names: %s %s", created.FirstName(), created.LastName())
	}
	if d, _ := created.Department(); d != DepartmentFinance {
		t.Fatalf("unexpected department: %s", d)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
	if _, ok := repo.employees[created.ID]; !ok {
		t.Fatalf("expected employee to be stored")
	}
}

func TestService_RegisterEmployee_SilentResetFields(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)

	in := validRegisterInput()
	in.FirstName = "R2-D2"
	in.NationalID = ptr(uint64(42))

	created, err := svc.RegisterEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("RegisterEmployee returned error: %v", err)
	}
	if created.FirstName() != "" {
		t.Fatalf("expected rejected first name to be stored as empty, got %q", created.FirstName())
	}
	if _, ok := created.NationalID(); ok {
		t.Fatalf("expected rejected national id to be absent")
	}
}

func TestService_RegisterEmployee_ValidationFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)

	in := validRegisterInput()
	in.DateOfBirth = ptr("2010-01-01")

	_, err := svc.RegisterEmployee(context.Background(), in)
	if !errors.Is(err, ErrUnderage) {
		t.Fatalf("expected ErrUnderage, got %v", err)
	}
	if len(repo.employees) != 0 {
		t.Fatalf("expected nothing to be stored on validation failure")
	}
}

func TestService_RegisterEmployee_DuplicateNationalID(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)

	if _, err := svc.RegisterEmployee(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.RegisterEmployee(context.Background(), validRegisterInput())
	if !errors.Is(err, ErrNationalIDAlreadyExists) {
		t.Fatalf("expected ErrNationalIDAlreadyExists, got %v", err)
	}
}

func TestService_UpdateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	created, err := svc.RegisterEmployee(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("RegisterEmployee returned error: %v", err)
	}

	clk.now = clk.now.Add(time.Hour)

	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:             created.ID,
		LastName:       ptr("Dinesen"),
		Department:     ptr(DepartmentGeneralServices),
		BaseSalary:     ptr(31000.999),
		EducationLevel: ptr(EducationTertiary),
		Country:        ptr("Iceland"),
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if updated.FirstName() != "Karen" || updated.LastName() != "Dinesen" {
		t.Fatalf("unexpected names: %s %s", updated.FirstName(), updated.LastName())
	}
	if salary, _ := updated.BaseSalary(); salary != 31000.99 {
		t.Fatalf("expected truncated salary 31000.99, got %v", salary)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to use clock")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created timestamp to be kept")
	}
}

func TestService_UpdateEmployee_FailureDoesNotPersist(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}, nil)

	created, err := svc.RegisterEmployee(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("RegisterEmployee returned error: %v", err)
	}

	_, err = svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:         created.ID,
		Department: ptr(DepartmentSales),
		BaseSalary: ptr(150000.0),
	})
	if !errors.Is(err, ErrBaseSalaryOutOfRange) {
		t.Fatalf("expected ErrBaseSalaryOutOfRange, got %v", err)
	}

	stored := repo.employees[created.ID]
	if *stored.Department != DepartmentFinance {
		t.Fatalf("expected stored department to be unchanged, got %s", *stored.Department)
	}
}

func TestService_UpdateEmployee_InvalidID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	for _, id := range []string{"", "   ", "emp-1"} {
		if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: id}); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("id %q: expected ErrInvalidID, got %v", id, err)
		}
	}
}

func TestService_GetAndDeleteEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}, nil)

	created, err := svc.RegisterEmployee(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("RegisterEmployee returned error: %v", err)
	}

	found, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: " " + created.ID + " "})
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, found.ID)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}

	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: created.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_QuoteEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	in := validRegisterInput()
	in.Country = ptr("Finland")
	in.DateOfEmployment = ptr("2021-08-01")

	created, err := svc.RegisterEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("RegisterEmployee returned error: %v", err)
	}

	quote, err := svc.QuoteEmployee(context.Background(), QuoteEmployeeInput{ID: created.ID})
	if err != nil {
		t.Fatalf("QuoteEmployee returned error: %v", err)
	}

	if quote.Salary != 22440 {
		t.Errorf("expected salary 22440, got %v", quote.Salary)
	}
	if quote.ShippingCosts != 50 {
		t.Errorf("expected shipping 50, got %v", quote.ShippingCosts)
	}
	if quote.Discount != 1.5 {
		t.Errorf("expected discount 1.5, got %v", quote.Discount)
	}

	clk.now = time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	quote, err = svc.QuoteEmployee(context.Background(), QuoteEmployeeInput{ID: created.ID})
	if err != nil {
		t.Fatalf("QuoteEmployee returned error: %v", err)
	}
	if quote.Discount != 2.5 {
		t.Errorf("expected discount to follow the service clock, got %v", quote.Discount)
	}
}

func TestService_QuoteEmployee_MissingField(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}, nil)

	in := validRegisterInput()
	in.EducationLevel = nil

	created, err := svc.RegisterEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("RegisterEmployee returned error: %v", err)
	}

	_, err = svc.QuoteEmployee(context.Background(), QuoteEmployeeInput{ID: created.ID})
	if !errors.Is(err, ErrFieldNotSet) {
		t.Fatalf("expected ErrFieldNotSet, got %v", err)
	}
}

func TestService_ListEmployees_FilterAndPagination(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}, nil)

	departments := []Department{DepartmentIT, DepartmentHR, DepartmentIT}
	for i, d := range departments {
		in := validRegisterInput()
		in.NationalID = ptr(uint64(1000000000 + i))
		in.Department = ptr(d)
		if _, err := svc.RegisterEmployee(context.Background(), in); err != nil {
			t.Fatalf("unexpected seed error: %v", err)
		}
	}

	result, err := svc.ListEmployees(context.Background(), ListEmployeesInput{
		PageSize:   2,
		Department: ptr(DepartmentHR),
	})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(result.Employees) != 1 {
		t.Fatalf("expected 1 HR employee, got %d", len(result.Employees))
	}

	page1, err := svc.ListEmployees(context.Background(), ListEmployeesInput{
		PageSize:   1,
		Department: ptr(DepartmentIT),
	})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(page1.Employees) != 1 || page1.NextPageToken == "" {
		t.Fatalf("expected one employee and a next page token, got %d %q", len(page1.Employees), page1.NextPageToken)
	}

	page2, err := svc.ListEmployees(context.Background(), ListEmployeesInput{
		PageSize:   1,
		PageToken:  page1.NextPageToken,
		Department: ptr(DepartmentIT),
	})
	if err != nil {
		t.Fatalf("ListEmployees page2 returned error: %v", err)
	}
	if len(page2.Employees) != 1 || page2.NextPageToken != "" {
		t.Fatalf("expected last page with one employee, got %d %q", len(page2.Employees), page2.NextPageToken)
	}
}

func TestService_ListEmployees_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageToken: "-1"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{Department: ptr(Department("Legal"))}); !errors.Is(err, ErrInvalidDepartment) {
		t.Fatalf("expected ErrInvalidDepartment, got %v", err)
	}
}
