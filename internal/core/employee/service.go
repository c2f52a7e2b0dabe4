package employee

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	RegisterEmployee(ctx context.Context, in RegisterEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
	QuoteEmployee(ctx context.Context, in QuoteEmployeeInput) (*Quote, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// RegisterEmployeeInput は社員登録時の入力です。nil のフィールドは未設定のままです。
type RegisterEmployeeInput struct {
	NationalID       *uint64
	FirstName        string
	LastName         string
	Department       *Department
	BaseSalary       *float64
	EducationLevel   *EducationLevel
	DateOfBirth      *string
	DateOfEmployment *string
	Country          *string
}

// UpdateEmployeeInput は社員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	ID               string
	NationalID       *uint64
	FirstName        *string
	LastName         *string
	Department       *Department
	BaseSalary       *float64
	EducationLevel   *EducationLevel
	DateOfBirth      *string
	DateOfEmployment *string
	Country          *string
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// QuoteEmployeeInput は派生値計算時の入力です。
type QuoteEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize   int
	PageToken  string
	Department *Department
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// Quote は社員の現在の状態から計算した派生値です。
type Quote struct {
	EmployeeID    string
	Salary        float64
	ShippingCosts float64
	Discount      float64
}

// RegisterEmployee は検証済みのフィールドで新しい社員を登録します。
func (s *Service) RegisterEmployee(ctx context.Context, in RegisterEmployeeInput) (*Employee, error) {
	emp := New(s.clock)
	emp.SetFirstName(in.FirstName)
	emp.SetLastName(in.LastName)

	err := apply(emp, UpdateEmployeeInput{
		NationalID:       in.NationalID,
		Department:       in.Department,
		BaseSalary:       in.BaseSalary,
		EducationLevel:   in.EducationLevel,
		DateOfBirth:      in.DateOfBirth,
		DateOfEmployment: in.DateOfEmployment,
		Country:          in.Country,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	emp.ID = uuid.NewString()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}
		created = s.attach(result)
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は指定されたフィールドだけを更新します。いずれかの検証に失敗した場合は保存しません。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		existing = s.attach(existing)

		if in.FirstName != nil {
			existing.SetFirstName(*in.FirstName)
		}
		if in.LastName != nil {
			existing.SetLastName(*in.LastName)
		}
		if err := apply(existing, in); err != nil {
			return err
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = s.attach(result)
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = s.attach(found)
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// QuoteEmployee は給与・送料・割引率を計算します。
func (s *Service) QuoteEmployee(ctx context.Context, in QuoteEmployeeInput) (*Quote, error) {
	emp, err := s.GetEmployee(ctx, GetEmployeeInput{ID: in.ID})
	if err != nil {
		return nil, err
	}

	salary, err := emp.Salary()
	if err != nil {
		return nil, err
	}
	shipping, err := emp.ShippingCosts()
	if err != nil {
		return nil, err
	}
	discount, err := emp.Discount()
	if err != nil {
		return nil, err
	}

	return &Quote{
		EmployeeID:    emp.ID,
		Salary:        salary,
		ShippingCosts: shipping,
		Discount:      discount,
	}, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var departmentPtr *Department
	if in.Department != nil {
		if !in.Department.Valid() {
			return nil, ErrInvalidDepartment
		}
		department := *in.Department
		departmentPtr = &department
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Department: departmentPtr,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		for _, emp := range resultEmployees {
			employees = append(employees, s.attach(emp))
		}
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// attach はリポジトリから返ったエンティティにサービスの時計を結び付けます。
func (s *Service) attach(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	emp.clock = s.clock
	return emp
}

// apply はエラーを返すフィールドを順に設定します。最初の失敗で中断します。
func apply(emp *Employee, in UpdateEmployeeInput) error {
	if in.NationalID != nil {
		emp.SetNationalID(*in.NationalID)
	}
	if in.Department != nil {
		if err := emp.SetDepartment(*in.Department); err != nil {
			return err
		}
	}
	if in.BaseSalary != nil {
		if err := emp.SetBaseSalary(*in.BaseSalary); err != nil {
			return err
		}
	}
	if in.EducationLevel != nil {
		if err := emp.SetEducationLevel(*in.EducationLevel); err != nil {
			return err
		}
	}
	if in.DateOfBirth != nil {
		if err := emp.SetDateOfBirth(*in.DateOfBirth); err != nil {
			return err
		}
	}
	if in.DateOfEmployment != nil {
		if err := emp.SetDateOfEmployment(*in.DateOfEmployment); err != nil {
			return err
		}
	}
	if in.Country != nil {
		if err := emp.SetCountry(*in.Country); err != nil {
			return err
		}
	}
	return nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", fmt.Errorf("id %q: %w", trimmed, ErrInvalidID)
	}
	return trimmed, nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
