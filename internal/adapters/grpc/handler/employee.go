package handler

import (
	"context"
	"time"

	"github.com/ogurasousui/codex-employee-record/internal/core/employee"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

var _ EmployeeServiceServer = (*EmployeeGrpcHandler)(nil)

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// employeeFields はリクエストから読み取った任意指定のフィールドです。
type employeeFields struct {
	nationalID       *uint64
	firstName        *string
	lastName         *string
	department       *employee.Department
	baseSalary       *float64
	educationLevel   *employee.EducationLevel
	dateOfBirth      *string
	dateOfEmployment *string
	country          *string
}

func readEmployeeFields(r fieldReader) (employeeFields, error) {
	var (
		f   employeeFields
		err error
	)

	nationalID, err := r.Integer("national_id")
	if err != nil {
		return f, err
	}
	if nationalID != nil {
		// 負数は 10 桁にならないため 0 として渡し、エンティティ側で未設定に戻します。
		v := uint64(max(*nationalID, 0))
		f.nationalID = &v
	}

	if f.firstName, err = r.String("first_name"); err != nil {
		return f, err
	}
	if f.lastName, err = r.String("last_name"); err != nil {
		return f, err
	}

	department, err := r.String("department")
	if err != nil {
		return f, err
	}
	if department != nil {
		d := employee.Department(*department)
		f.department = &d
	}

	if f.baseSalary, err = r.Number("base_salary"); err != nil {
		return f, err
	}

	level, err := r.Integer("education_level")
	if err != nil {
		return f, err
	}
	if level != nil {
		l := employee.EducationLevel(*level)
		f.educationLevel = &l
	}

	if f.dateOfBirth, err = r.String("date_of_birth"); err != nil {
		return f, err
	}
	if f.dateOfEmployment, err = r.String("date_of_employment"); err != nil {
		return f, err
	}
	if f.country, err = r.String("country"); err != nil {
		return f, err
	}

	return f, nil
}

func requireID(r fieldReader) (string, error) {
	id, err := r.String("id")
	if err != nil {
		return "", err
	}
	if id == nil {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	return *id, nil
}

// CreateEmployee は社員を登録します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	f, err := readEmployeeFields(newFieldReader(req))
	if err != nil {
		return nil, err
	}

	in := employee.RegisterEmployeeInput{
		NationalID:       f.nationalID,
		Department:       f.department,
		BaseSalary:       f.baseSalary,
		EducationLevel:   f.educationLevel,
		DateOfBirth:      f.dateOfBirth,
		DateOfEmployment: f.dateOfEmployment,
		Country:          f.country,
	}
	if f.firstName != nil {
		in.FirstName = *f.firstName
	}
	if f.lastName != nil {
		in.LastName = *f.lastName
	}

	created, err := h.svc.RegisterEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return wrapEmployee(created)
}

// UpdateEmployee は指定されたフィールドのみ更新します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	r := newFieldReader(req)
	id, err := requireID(r)
	if err != nil {
		return nil, err
	}

	f, err := readEmployeeFields(r)
	if err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateEmployee(ctx, employee.UpdateEmployeeInput{
		ID:               id,
		NationalID:       f.nationalID,
		FirstName:        f.firstName,
		LastName:         f.lastName,
		Department:       f.department,
		BaseSalary:       f.baseSalary,
		EducationLevel:   f.educationLevel,
		DateOfBirth:      f.dateOfBirth,
		DateOfEmployment: f.dateOfEmployment,
		Country:          f.country,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return wrapEmployee(updated)
}

// DeleteEmployee は社員を削除します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := requireID(newFieldReader(req))
	if err != nil {
		return nil, err
	}

	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := requireID(newFieldReader(req))
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	return wrapEmployee(found)
}

// ListEmployees は社員一覧を返します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	r := newFieldReader(req)
	pageSize, err := r.Integer("page_size")
	if err != nil {
		return nil, err
	}
	pageToken, err := r.String("page_token")
	if err != nil {
		return nil, err
	}
	department, err := r.String("department")
	if err != nil {
		return nil, err
	}

	in := employee.ListEmployeesInput{}
	if pageSize != nil {
		in.PageSize = int(*pageSize)
	}
	if pageToken != nil {
		in.PageToken = *pageToken
	}
	if department != nil {
		d := employee.Department(*department)
		in.Department = &d
	}

	result, err := h.svc.ListEmployees(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(result.Employees))
	for _, emp := range result.Employees {
		items = append(items, employeeToMap(emp))
	}

	return newStruct(map[string]any{
		"employees":       items,
		"next_page_token": result.NextPageToken,
	})
}

// QuoteEmployee は給与・送料・割引率を返します。
func (h *EmployeeGrpcHandler) QuoteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := requireID(newFieldReader(req))
	if err != nil {
		return nil, err
	}

	quote, err := h.svc.QuoteEmployee(ctx, employee.QuoteEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{
		"employee_id":    quote.EmployeeID,
		"salary":         quote.Salary,
		"shipping_costs": quote.ShippingCosts,
		"discount":       quote.Discount,
	})
}

func wrapEmployee(emp *employee.Employee) (*structpb.Struct, error) {
	return newStruct(map[string]any{"employee": employeeToMap(emp)})
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

func employeeToMap(emp *employee.Employee) map[string]any {
	if emp == nil {
		return nil
	}

	m := map[string]any{
		"id":                 emp.ID,
		"national_id":        nil,
		"first_name":         emp.FirstName(),
		"last_name":          emp.LastName(),
		"department":         nil,
		"base_salary":        nil,
		"education_level":    nil,
		"education":          nil,
		"date_of_birth":      nil,
		"date_of_employment": nil,
		"country":            nil,
		"created_at":         emp.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":         emp.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	if v, ok := emp.NationalID(); ok {
		m["national_id"] = float64(v)
	}
	if v, ok := emp.Department(); ok {
		m["department"] = string(v)
	}
	if v, ok := emp.BaseSalary(); ok {
		m["base_salary"] = v
	}
	if v, ok := emp.EducationLevel(); ok {
		m["education_level"] = float64(v)
		m["education"] = v.String()
	}
	if v, ok := emp.DateOfBirth(); ok {
		m["date_of_birth"] = formatDate(v)
	}
	if v, ok := emp.DateOfEmployment(); ok {
		m["date_of_employment"] = formatDate(v)
	}
	if v, ok := emp.Country(); ok {
		m["country"] = v
	}

	return m
}

// formatDate は時刻成分が無ければ YYYY-MM-DD、あれば RFC 3339 で表現します。
func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Equal(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)) {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}
