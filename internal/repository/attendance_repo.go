package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bca-portal/internal/model"
	pkgerrors "bca-portal/pkg/errors"
)

// AttendanceFilter 考勤查询条件，零值字段不参与筛选
type AttendanceFilter struct {
	PersonType     string // student | teacher
	PersonID       string
	Status         string
	SelfMarkedOnly bool
	Present        *bool
	From           *time.Time
	To             *time.Time
}

// AttendanceTally 按人汇总的出勤计数
type AttendanceTally struct {
	PersonID string
	Total    int64
	Present  int64
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	// Replace 删除 (person, date) 已有记录后插入新记录，两步在同一事务中完成
	Replace(ctx context.Context, a *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	GetByPersonDate(ctx context.Context, person model.Person, date time.Time) (*model.Attendance, error)
	Create(ctx context.Context, a *model.Attendance) error
	Update(ctx context.Context, a *model.Attendance) error
	List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error)
	Count(ctx context.Context, filter AttendanceFilter) (int64, error)
	// CountInRange 统计 [from, to] 内的总记录数与出勤数
	CountInRange(ctx context.Context, person model.Person, from, to time.Time) (total, present int64, err error)
	// Tally 按人统计 [from, to] 内的出勤
	Tally(ctx context.Context, personType string, from, to time.Time) ([]AttendanceTally, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func personColumn(personType string) string {
	if personType == model.PersonTeacher {
		return "teacher_id"
	}
	return "student_id"
}

func (r *attendanceRepo) Replace(ctx context.Context, a *model.Attendance) error {
	person := a.PersonOf()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(personColumn(person.Type)+" = ? AND date = ?", person.ID, a.Date).
			Delete(&model.Attendance{}).Error; err != nil {
			return err
		}
		return createAttendance(tx, a)
	})
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("attendance_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) GetByPersonDate(ctx context.Context, person model.Person, date time.Time) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where(personColumn(person.Type)+" = ? AND date = ?", person.ID, date).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return createAttendance(r.db.WithContext(ctx), a)
}

// createAttendance 同一人同一天已有记录时返回 ErrRecordExists
func createAttendance(db *gorm.DB, a *model.Attendance) error {
	if err := db.Omit("Student", "Teacher").Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrRecordExists
		}
		return err
	}
	return nil
}

func (r *attendanceRepo) Update(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ?", a.AttendanceID).
		Updates(map[string]interface{}{
			"is_present":  a.IsPresent,
			"status":      a.Status,
			"self_marked": a.SelfMarked,
			"marked_by":   a.MarkedBy,
			"marked_at":   a.MarkedAt,
			"approved_by": a.ApprovedBy,
			"approved_at": a.ApprovedAt,
			"notes":       a.Notes,
			"admin_notes": a.AdminNotes,
			"updated_by":  a.UpdatedBy,
			"updated_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *attendanceRepo) scoped(ctx context.Context, f AttendanceFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Attendance{})
	switch {
	case f.PersonID != "":
		db = db.Where(personColumn(f.PersonType)+" = ?", f.PersonID)
	case f.PersonType != "":
		db = db.Where(personColumn(f.PersonType) + " IS NOT NULL")
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.SelfMarkedOnly {
		db = db.Where("self_marked = ?", true)
	}
	if f.Present != nil {
		db = db.Where("is_present = ?", *f.Present)
	}
	if f.From != nil {
		db = db.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("date <= ?", *f.To)
	}
	return db
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.scoped(ctx, filter).
		Preload("Student").Preload("Teacher").
		Order("date DESC, marked_at DESC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) Count(ctx context.Context, filter AttendanceFilter) (int64, error) {
	var n int64
	err := r.scoped(ctx, filter).Count(&n).Error
	return n, err
}

func (r *attendanceRepo) CountInRange(ctx context.Context, person model.Person, from, to time.Time) (int64, int64, error) {
	var row struct {
		Total   int64
		Present int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE is_present) AS present").
		Where(personColumn(person.Type)+" = ?", person.ID).
		Where("date BETWEEN ? AND ?", from, to).
		Scan(&row).Error
	return row.Total, row.Present, err
}

func (r *attendanceRepo) Tally(ctx context.Context, personType string, from, to time.Time) ([]AttendanceTally, error) {
	col := personColumn(personType)
	var rows []AttendanceTally
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select(col+" AS person_id, COUNT(*) AS total, COUNT(*) FILTER (WHERE is_present) AS present").
		Where(col + " IS NOT NULL").
		Where("date BETWEEN ? AND ?", from, to).
		Group(col).
		Scan(&rows).Error
	return rows, err
}
