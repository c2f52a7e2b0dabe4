package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-employee-record/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-employee-record/internal/platform/db/postgres"
)

const (
	uniqueViolationCode       = "23505"
	checkViolationCode        = "23514"
	invalidTextRepresentation = "22P02"
)

const employeeColumns = `id, national_id, first_name, last_name, department, base_salary::float8, education_level,
               date_of_birth, date_of_employment, country, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	s := e.Snapshot()
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, national_id, first_name, last_name, department, base_salary, education_level,
                               date_of_birth, date_of_employment, country, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING `+employeeColumns,
		s.ID,
		nullableNationalID(s.NationalID),
		s.FirstName,
		s.LastName,
		nullableDepartment(s.Department),
		nullable(s.BaseSalary),
		nullableEducationLevel(s.EducationLevel),
		nullable(s.DateOfBirth),
		nullable(s.DateOfEmployment),
		nullable(s.Country),
		s.CreatedAt,
		s.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	s := e.Snapshot()
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET national_id = $1,
               first_name = $2,
               last_name = $3,
               department = $4,
               base_salary = $5,
               education_level = $6,
               date_of_birth = $7,
               date_of_employment = $8,
               country = $9,
               updated_at = $10
         WHERE id = $11
        RETURNING `+employeeColumns,
		nullableNationalID(s.NationalID),
		s.FirstName,
		s.LastName,
		nullableDepartment(s.Department),
		nullable(s.BaseSalary),
		nullableEducationLevel(s.EducationLevel),
		nullable(s.DateOfBirth),
		nullable(s.DateOfEmployment),
		nullable(s.Country),
		s.UpdatedAt,
		s.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// List は社員の一覧を取得します。次ページがある場合はオフセットをトークンとして返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Department != nil {
		args = append(args, string(*filter.Department))
		whereClause = " WHERE department = $" + strconv.Itoa(len(args))
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translatePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translatePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translatePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id               string
		nationalID       sql.NullInt64
		firstName        string
		lastName         string
		department       sql.NullString
		baseSalary       sql.NullFloat64
		educationLevel   sql.NullInt16
		dateOfBirth      sql.NullTime
		dateOfEmployment sql.NullTime
		country          sql.NullString
		createdAt        time.Time
		updatedAt        time.Time
	)

	if err := row.Scan(
		&id,
		&nationalID,
		&firstName,
		&lastName,
		&department,
		&baseSalary,
		&educationLevel,
		&dateOfBirth,
		&dateOfEmployment,
		&country,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	s := employee.Snapshot{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if nationalID.Valid {
		v := uint64(nationalID.Int64)
		s.NationalID = &v
	}
	if department.Valid {
		v := employee.Department(department.String)
		s.Department = &v
	}
	if baseSalary.Valid {
		s.BaseSalary = &baseSalary.Float64
	}
	if educationLevel.Valid {
		v := employee.EducationLevel(educationLevel.Int16)
		s.EducationLevel = &v
	}
	if dateOfBirth.Valid {
		v := dateOfBirth.Time.UTC()
		s.DateOfBirth = &v
	}
	if dateOfEmployment.Valid {
		v := dateOfEmployment.Time.UTC()
		s.DateOfEmployment = &v
	}
	if country.Valid {
		s.Country = &country.String
	}

	return employee.Restore(s, nil), nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrNationalIDAlreadyExists
		case checkViolationCode:
			return employee.ErrInvalidRecord
		case invalidTextRepresentation:
			return employee.ErrInvalidID
		}
	}

	return err
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableNationalID(v *uint64) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullableDepartment(v *employee.Department) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func nullableEducationLevel(v *employee.EducationLevel) any {
	if v == nil {
		return nil
	}
	return int16(*v)
}
