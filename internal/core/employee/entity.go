package employee

import (
	"math"
	"regexp"
	"time"
	"unicode/utf8"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Department は所属部署を表します。
type Department string

const (
	DepartmentHR              Department = "HR"
	DepartmentFinance         Department = "Finance"
	DepartmentIT              Department = "IT"
	DepartmentSales           Department = "Sales"
	DepartmentGeneralServices Department = "General Services"
)

// Departments は有効な部署の一覧です。
var Departments = []Department{
	DepartmentHR,
	DepartmentFinance,
	DepartmentIT,
	DepartmentSales,
	DepartmentGeneralServices,
}

// Valid は部署が列挙値のいずれかであれば true を返します。
func (d Department) Valid() bool {
	switch d {
	case DepartmentHR, DepartmentFinance, DepartmentIT, DepartmentSales, DepartmentGeneralServices:
		return true
	default:
		return false
	}
}

// EducationLevel は最終学歴の段階です。給与加算の乗数として使われます。
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationPrimary
	EducationSecondary
	EducationTertiary
)

// Valid は学歴が 0〜3 のいずれかであれば true を返します。
func (l EducationLevel) Valid() bool {
	switch l {
	case EducationNone, EducationPrimary, EducationSecondary, EducationTertiary:
		return true
	default:
		return false
	}
}

func (l EducationLevel) String() string {
	switch l {
	case EducationNone:
		return "None"
	case EducationPrimary:
		return "Primary"
	case EducationSecondary:
		return "Secondary"
	case EducationTertiary:
		return "Tertiary"
	default:
		return "Unknown"
	}
}

const (
	minBaseSalary       = 20000
	maxBaseSalary       = 100000
	educationSalaryStep = 1220
	maxNameLength       = 30
	minNationalID       = 1_000_000_000
	maxNationalID       = 9_999_999_999
	adultAge            = 18
	discountPerYear     = 0.5
	daysPerYear         = 365.25
	dateLayout          = "2006-01-02"
)

var namePattern = regexp.MustCompile(`^[a-zA-ZæøåñçáéíóúàèìòùäëïöüâêîôûÆØÅÑÇÁÉÍÓÚÀÈÌÒÙÄËÏÖÜÂÊÎÔÛ \-]+$`)

var shippingCosts = map[string]float64{
	"Denmark": 0,
	"Sweden":  0,
	"Norway":  0,
	"Iceland": 50,
	"Finland": 50,
}

const defaultShippingCost = 100

// cell は 1 フィールド分の検証済みの値を保持します。
type cell[T any] struct {
	value T
	set   bool
}

func (c *cell[T]) put(v T) {
	c.value = v
	c.set = true
}

func (c cell[T]) get() (T, bool) {
	return c.value, c.set
}

// Employee は社員エンティティです。
//
// 各フィールドは独立して検証されます。社員番号 (CPR) と氏名は不正値で既定値に
// 戻り、それ以外のフィールドはエラーを返して直前の値を保持します。
type Employee struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	clock Clock

	nationalID       cell[uint64]
	firstName        string
	lastName         string
	department       cell[Department]
	baseSalary       cell[float64]
	educationLevel   cell[EducationLevel]
	dateOfBirth      cell[time.Time]
	dateOfEmployment cell[time.Time]
	country          cell[string]
}

// New は空の社員エンティティを生成します。clock が nil の場合は実時間を使います。
func New(clock Clock) *Employee {
	if clock == nil {
		clock = realClock{}
	}
	return &Employee{clock: clock}
}

// SetNationalID は 10 桁の CPR を設定します。桁数が異なる場合は未設定に戻します。
func (e *Employee) SetNationalID(value uint64) {
	if value < minNationalID || value > maxNationalID {
		e.nationalID = cell[uint64]{}
		return
	}
	e.nationalID.put(value)
}

// NationalID は CPR と設定済みかどうかを返します。
func (e *Employee) NationalID() (uint64, bool) {
	return e.nationalID.get()
}

// SetFirstName は名を設定します。不正な名は空文字列になります。
func (e *Employee) SetFirstName(name string) {
	e.firstName = validName(name)
}

func (e *Employee) FirstName() string {
	return e.firstName
}

// SetLastName は姓を設定します。不正な姓は空文字列になります。
func (e *Employee) SetLastName(name string) {
	e.lastName = validName(name)
}

func (e *Employee) LastName() string {
	return e.lastName
}

func validName(name string) string {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxNameLength || !namePattern.MatchString(name) {
		return ""
	}
	return name
}

// SetDepartment は部署を設定します。
func (e *Employee) SetDepartment(d Department) error {
	if !d.Valid() {
		return ErrInvalidDepartment
	}
	e.department.put(d)
	return nil
}

func (e *Employee) Department() (Department, bool) {
	return e.department.get()
}

// SetBaseSalary は基本給を設定します。小数第 2 位未満は切り捨てます。
func (e *Employee) SetBaseSalary(amount float64) error {
	if !(amount >= minBaseSalary && amount <= maxBaseSalary) {
		return ErrBaseSalaryOutOfRange
	}
	e.baseSalary.put(math.Floor(amount*100) / 100)
	return nil
}

func (e *Employee) BaseSalary() (float64, bool) {
	return e.baseSalary.get()
}

// SetEducationLevel は学歴を設定します。
func (e *Employee) SetEducationLevel(level EducationLevel) error {
	if !level.Valid() {
		return ErrInvalidEducationLevel
	}
	e.educationLevel.put(level)
	return nil
}

func (e *Employee) EducationLevel() (EducationLevel, bool) {
	return e.educationLevel.get()
}

// SetDateOfBirth は生年月日を設定します。現在時刻で 18 歳に達していない場合はエラーです。
func (e *Employee) SetDateOfBirth(raw string) error {
	dob, err := parseDate(raw)
	if err != nil {
		return invalidDate(raw, ErrUnderage)
	}
	if !isAdult(dob, e.clock.Now()) {
		return ErrUnderage
	}
	e.dateOfBirth.put(dob)
	return nil
}

func (e *Employee) DateOfBirth() (time.Time, bool) {
	return e.dateOfBirth.get()
}

// isAdult は年の差が 18 を超えるか、ちょうど 18 で 18 回目の誕生日を迎えていれば true です。
func isAdult(dob, now time.Time) bool {
	age := now.Year() - dob.Year()
	if age > adultAge {
		return true
	}
	return age == adultAge && !now.Before(dob.AddDate(adultAge, 0, 0))
}

// SetDateOfEmployment は入社日を設定します。未来日はエラーです。
func (e *Employee) SetDateOfEmployment(raw string) error {
	doe, err := parseDate(raw)
	if err != nil {
		return invalidDate(raw, ErrEmploymentInFuture)
	}
	if doe.After(e.clock.Now()) {
		return ErrEmploymentInFuture
	}
	e.dateOfEmployment.put(doe)
	return nil
}

func (e *Employee) DateOfEmployment() (time.Time, bool) {
	return e.dateOfEmployment.get()
}

// SetCountry は居住国を設定します。
func (e *Employee) SetCountry(country string) error {
	if country == "" {
		return ErrEmptyCountry
	}
	e.country.put(country)
	return nil
}

func (e *Employee) Country() (string, bool) {
	return e.country.get()
}

// Salary は基本給に学歴加算 (1 段階 1220) を足した給与を返します。
func (e *Employee) Salary() (float64, error) {
	base, ok := e.baseSalary.get()
	if !ok {
		return 0, fieldNotSet("base salary")
	}
	level, ok := e.educationLevel.get()
	if !ok {
		return 0, fieldNotSet("education level")
	}
	return base + float64(level)*educationSalaryStep, nil
}

// ShippingCosts は居住国ごとの送料 (0 / 50 / 100) を返します。
func (e *Employee) ShippingCosts() (float64, error) {
	country, ok := e.country.get()
	if !ok {
		return 0, fieldNotSet("country")
	}
	if cost, found := shippingCosts[country]; found {
		return cost, nil
	}
	return defaultShippingCost, nil
}

// Discount は勤続年数 (1 年 = 365.25 日、端数切り捨て) に 0.5 を掛けた割引率を返します。
func (e *Employee) Discount() (float64, error) {
	doe, ok := e.dateOfEmployment.get()
	if !ok {
		return 0, fieldNotSet("date of employment")
	}
	years := e.clock.Now().Sub(doe).Hours() / 24 / daysPerYear
	return math.Floor(years) * discountPerYear, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
