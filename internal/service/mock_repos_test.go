package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bca-portal/config"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
	pkgerrors "bca-portal/pkg/errors"
)

var errDuplicateKey = pkgerrors.ErrRecordExists

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return errDuplicateKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByProfileID(_ context.Context, profileID string) (*model.User, error) {
	for _, u := range m.users {
		if model.DerefStr(u.ProfileID) == profileID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	for _, existing := range m.students {
		if existing.StudentCode == s.StudentCode {
			return errDuplicateKey
		}
	}
	if s.StudentID == "" {
		m.seq++
		s.StudentID = fmt.Sprintf("student-%d", m.seq)
	}
	m.students[s.StudentID] = s
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(_ context.Context, s *model.Student) error {
	cp := *s
	m.students[s.StudentID] = &cp
	return nil
}

func (m *mockStudentRepo) List(_ context.Context, f repository.StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var list []model.Student
	for _, s := range m.students {
		if f.ActiveOnly && !s.IsActive {
			continue
		}
		if f.Semester != 0 && s.CurrentSemester != f.Semester {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(s.FullName()+s.StudentCode+s.Email), strings.ToLower(f.Search)) {
			continue
		}
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StudentCode < list[j].StudentCode })
	return paginate(list, offset, limit), int64(len(list)), nil
}

func (m *mockStudentRepo) Count(_ context.Context, activeOnly bool) (int64, error) {
	var n int64
	for _, s := range m.students {
		if !activeOnly || s.IsActive {
			n++
		}
	}
	return n, nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers map[string]*model.Teacher
	seq      int
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, t *model.Teacher) error {
	if t.TeacherID == "" {
		m.seq++
		t.TeacherID = fmt.Sprintf("teacher-%d", m.seq)
	}
	m.teachers[t.TeacherID] = t
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByIDs(_ context.Context, ids []string) ([]model.Teacher, error) {
	var list []model.Teacher
	for _, id := range ids {
		if t, ok := m.teachers[id]; ok {
			list = append(list, *t)
		}
	}
	return list, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, t *model.Teacher) error {
	cp := *t
	m.teachers[t.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) List(_ context.Context, search string, offset, limit int) ([]model.Teacher, int64, error) {
	var list []model.Teacher
	for _, t := range m.teachers {
		if search != "" && !strings.Contains(strings.ToLower(t.FullName()+t.TeacherCode), strings.ToLower(search)) {
			continue
		}
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TeacherCode < list[j].TeacherCode })
	return paginate(list, offset, limit), int64(len(list)), nil
}

func (m *mockTeacherRepo) ListActiveWithSalary(_ context.Context) ([]model.Teacher, error) {
	var list []model.Teacher
	for _, t := range m.teachers {
		if t.IsActive && t.HasSalary() {
			list = append(list, *t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TeacherCode < list[j].TeacherCode })
	return list, nil
}

func (m *mockTeacherRepo) Count(_ context.Context, activeOnly bool) (int64, error) {
	var n int64
	for _, t := range m.teachers {
		if !activeOnly || t.IsActive {
			n++
		}
	}
	return n, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
	seq      int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, s *model.Subject) error {
	if s.SubjectID == "" {
		m.seq++
		s.SubjectID = fmt.Sprintf("subject-%d", m.seq)
	}
	m.subjects[s.SubjectID] = s
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) Update(_ context.Context, s *model.Subject) error {
	cp := *s
	m.subjects[s.SubjectID] = &cp
	return nil
}

func (m *mockSubjectRepo) List(_ context.Context, semester int) ([]model.Subject, error) {
	var list []model.Subject
	for _, s := range m.subjects {
		if semester == 0 || s.Semester == semester {
			list = append(list, *s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (m *mockSubjectRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Subject, error) {
	var list []model.Subject
	for _, s := range m.subjects {
		if s.OwnedBy(teacherID) {
			list = append(list, *s)
		}
	}
	return list, nil
}

func (m *mockSubjectRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.subjects)), nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	subjects    *mockSubjectRepo
	seq         int
}

func newMockAssignmentRepo(subjects *mockSubjectRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment), subjects: subjects}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		m.seq++
		a.AssignmentID = fmt.Sprintf("assignment-%d", m.seq)
	}
	cp := *a
	cp.Subject = nil
	m.assignments[a.AssignmentID] = &cp
	return nil
}

// GetByID 模拟 Preload("Subject")
func (m *mockAssignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	if s, err := m.subjects.GetByID(ctx, a.SubjectID); err == nil {
		cp.Subject = s
	}
	return &cp, nil
}

func (m *mockAssignmentRepo) ListBySemester(_ context.Context, semester int, status string) ([]model.Assignment, error) {
	var list []model.Assignment
	for _, a := range m.assignments {
		s, ok := m.subjects.subjects[a.SubjectID]
		if !ok || s.Semester != semester {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		list = append(list, *a)
	}
	return list, nil
}

func (m *mockAssignmentRepo) ListBySubjects(_ context.Context, subjectIDs []string) ([]model.Assignment, error) {
	var list []model.Assignment
	for _, a := range m.assignments {
		for _, id := range subjectIDs {
			if a.SubjectID == id {
				list = append(list, *a)
			}
		}
	}
	return list, nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	subs        map[string]*model.Submission
	assignments *mockAssignmentRepo
	seq         int
	// beforeCreate 在插入前执行，用于模拟并发写入
	beforeCreate func(m *mockSubmissionRepo, sub *model.Submission)
}

func newMockSubmissionRepo(assignments *mockAssignmentRepo) *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.Submission), assignments: assignments}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	if m.beforeCreate != nil {
		m.beforeCreate(m, sub)
	}
	for _, s := range m.subs {
		if s.AssignmentID == sub.AssignmentID && s.StudentID == sub.StudentID {
			return errDuplicateKey
		}
	}
	m.seq++
	sub.SubmissionID = fmt.Sprintf("submission-%d", m.seq)
	cp := *sub
	cp.Assignment, cp.Student = nil, nil
	m.subs[sub.SubmissionID] = &cp
	return nil
}

// GetByID 模拟 Preload("Assignment.Subject")
func (m *mockSubmissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	s, ok := m.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	if a, err := m.assignments.GetByID(ctx, s.AssignmentID); err == nil {
		cp.Assignment = a
	}
	return &cp, nil
}

func (m *mockSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID string) (*model.Submission, error) {
	for _, s := range m.subs {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) Update(_ context.Context, sub *model.Submission) error {
	cp := *sub
	cp.Assignment, cp.Student = nil, nil
	m.subs[sub.SubmissionID] = &cp
	return nil
}

func (m *mockSubmissionRepo) Delete(_ context.Context, id string) error {
	delete(m.subs, id)
	return nil
}

func (m *mockSubmissionRepo) ListByAssignment(_ context.Context, assignmentID string) ([]model.Submission, error) {
	var list []model.Submission
	for _, s := range m.subs {
		if s.AssignmentID == assignmentID {
			list = append(list, *s)
		}
	}
	return list, nil
}

func (m *mockSubmissionRepo) CountAwaitingReview(_ context.Context, subjectIDs []string) (int64, error) {
	var n int64
	for _, s := range m.subs {
		a, ok := m.assignments.assignments[s.AssignmentID]
		if !ok || !s.AwaitingReview() {
			continue
		}
		for _, id := range subjectIDs {
			if a.SubjectID == id {
				n++
			}
		}
	}
	return n, nil
}

func (m *mockSubmissionRepo) CountByStatusForStudent(_ context.Context, studentID string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, s := range m.subs {
		if s.StudentID == studentID {
			out[s.Status]++
		}
	}
	return out, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[string]*model.Attendance
	seq     int
	// beforeCreate 在插入前执行，用于模拟并发写入
	beforeCreate func(m *mockAttendanceRepo, a *model.Attendance)
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.Attendance)}
}

func (m *mockAttendanceRepo) Replace(ctx context.Context, a *model.Attendance) error {
	person := a.PersonOf()
	for id, r := range m.records {
		if r.PersonOf() == person && r.Date.Equal(a.Date) {
			delete(m.records, id)
		}
	}
	return m.Create(ctx, a)
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	if r, ok := m.records[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetByPersonDate(_ context.Context, person model.Person, date time.Time) (*model.Attendance, error) {
	for _, r := range m.records {
		if r.PersonOf() == person && r.Date.Equal(date) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	if m.beforeCreate != nil {
		m.beforeCreate(m, a)
	}
	person := a.PersonOf()
	for _, r := range m.records {
		if r.PersonOf() == person && r.Date.Equal(a.Date) {
			return errDuplicateKey
		}
	}
	m.seq++
	a.AttendanceID = fmt.Sprintf("attendance-%d", m.seq)
	cp := *a
	m.records[a.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, a *model.Attendance) error {
	if _, ok := m.records[a.AttendanceID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	m.records[a.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) match(r *model.Attendance, f repository.AttendanceFilter) bool {
	p := r.PersonOf()
	switch {
	case f.PersonType != "" && p.Type != f.PersonType,
		f.PersonID != "" && p.ID != f.PersonID,
		f.Status != "" && r.Status != f.Status,
		f.SelfMarkedOnly && !r.SelfMarked,
		f.Present != nil && r.IsPresent != *f.Present,
		f.From != nil && r.Date.Before(*f.From),
		f.To != nil && r.Date.After(*f.To):
		return false
	}
	return true
}

func (m *mockAttendanceRepo) List(_ context.Context, f repository.AttendanceFilter) ([]model.Attendance, error) {
	var list []model.Attendance
	for _, r := range m.records {
		if m.match(r, f) {
			list = append(list, *r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (m *mockAttendanceRepo) Count(ctx context.Context, f repository.AttendanceFilter) (int64, error) {
	list, _ := m.List(ctx, f)
	return int64(len(list)), nil
}

func (m *mockAttendanceRepo) CountInRange(_ context.Context, person model.Person, from, to time.Time) (int64, int64, error) {
	var total, present int64
	for _, r := range m.records {
		if r.PersonOf() != person || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		total++
		if r.IsPresent {
			present++
		}
	}
	return total, present, nil
}

func (m *mockAttendanceRepo) Tally(_ context.Context, personType string, from, to time.Time) ([]repository.AttendanceTally, error) {
	byPerson := make(map[string]*repository.AttendanceTally)
	for _, r := range m.records {
		p := r.PersonOf()
		if p.Type != personType || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		t, ok := byPerson[p.ID]
		if !ok {
			t = &repository.AttendanceTally{PersonID: p.ID}
			byPerson[p.ID] = t
		}
		t.Total++
		if r.IsPresent {
			t.Present++
		}
	}
	var out []repository.AttendanceTally
	for _, t := range byPerson {
		out = append(out, *t)
	}
	return out, nil
}

// ── Mock FeeRecordRepository ──

type mockFeeRecordRepo struct {
	records   map[string]*model.FeeRecord // key: studentID#semester
	seq       int
	conflicts int // 接下来 Update 需要模拟的版本冲突次数
	updates   int
}

func newMockFeeRecordRepo() *mockFeeRecordRepo {
	return &mockFeeRecordRepo{records: make(map[string]*model.FeeRecord)}
}

func feeKey(studentID string, semester int) string {
	return fmt.Sprintf("%s#%d", studentID, semester)
}

func (m *mockFeeRecordRepo) GetOrCreate(ctx context.Context, rec *model.FeeRecord) (*model.FeeRecord, error) {
	key := feeKey(rec.StudentID, rec.Semester)
	if _, ok := m.records[key]; !ok {
		m.seq++
		cp := *rec
		cp.FeeRecordID = fmt.Sprintf("fee-%d", m.seq)
		cp.Version = 1
		m.records[key] = &cp
	}
	return m.GetByStudentSemester(ctx, rec.StudentID, rec.Semester)
}

func (m *mockFeeRecordRepo) GetByStudentSemester(_ context.Context, studentID string, semester int) (*model.FeeRecord, error) {
	if r, ok := m.records[feeKey(studentID, semester)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFeeRecordRepo) GetForUpdate(ctx context.Context, studentID string, semester int) (*model.FeeRecord, error) {
	return m.GetByStudentSemester(ctx, studentID, semester)
}

func (m *mockFeeRecordRepo) Update(_ context.Context, rec *model.FeeRecord) error {
	m.updates++
	if m.conflicts > 0 {
		m.conflicts--
		return pkgerrors.ErrOptimisticLock
	}
	key := feeKey(rec.StudentID, rec.Semester)
	stored, ok := m.records[key]
	if !ok || stored.Version != rec.Version {
		return pkgerrors.ErrOptimisticLock
	}
	rec.Version++
	cp := *rec
	m.records[key] = &cp
	return nil
}

func (m *mockFeeRecordRepo) ListByStudent(_ context.Context, studentID string, upTo int) ([]model.FeeRecord, error) {
	var list []model.FeeRecord
	for _, r := range m.records {
		if r.StudentID == studentID && (upTo == 0 || r.Semester <= upTo) {
			list = append(list, *r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Semester < list[j].Semester })
	return list, nil
}

// ── Mock FeePaymentRepository ──

type mockFeePaymentRepo struct {
	payments []model.FeePayment
}

func (m *mockFeePaymentRepo) Create(_ context.Context, p *model.FeePayment) error {
	p.PaymentID = fmt.Sprintf("payment-%d", len(m.payments)+1)
	m.payments = append(m.payments, *p)
	return nil
}

func (m *mockFeePaymentRepo) ListByStudent(_ context.Context, studentID string) ([]model.FeePayment, error) {
	var list []model.FeePayment
	for _, p := range m.payments {
		if p.StudentID == studentID {
			list = append(list, p)
		}
	}
	return list, nil
}

// ── Mock SalaryRecordRepository ──

type mockSalaryRepo struct {
	records  map[string]*model.SalaryRecord
	teachers *mockTeacherRepo
	seq      int
}

func newMockSalaryRepo(teachers *mockTeacherRepo) *mockSalaryRepo {
	return &mockSalaryRepo{records: make(map[string]*model.SalaryRecord), teachers: teachers}
}

func (m *mockSalaryRepo) CreateIfAbsent(_ context.Context, rec *model.SalaryRecord) (bool, error) {
	for _, r := range m.records {
		if r.TeacherID == rec.TeacherID && r.Month == rec.Month && r.Year == rec.Year {
			return false, nil
		}
	}
	m.seq++
	rec.SalaryRecordID = fmt.Sprintf("salary-%d", m.seq)
	cp := *rec
	m.records[rec.SalaryRecordID] = &cp
	return true, nil
}

// GetByID 模拟 Preload("Teacher")
func (m *mockSalaryRepo) GetByID(ctx context.Context, id string) (*model.SalaryRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	if t, err := m.teachers.GetByID(ctx, r.TeacherID); err == nil {
		cp.Teacher = t
	}
	return &cp, nil
}

func (m *mockSalaryRepo) GetByTeacherPeriod(_ context.Context, teacherID string, month, year int) (*model.SalaryRecord, error) {
	for _, r := range m.records {
		if r.TeacherID == teacherID && r.Month == month && r.Year == year {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSalaryRepo) MarkPaid(_ context.Context, rec *model.SalaryRecord) error {
	stored, ok := m.records[rec.SalaryRecordID]
	if !ok || stored.PaymentStatus != model.SalaryStatusPending {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *rec
	cp.Teacher = nil
	m.records[rec.SalaryRecordID] = &cp
	return nil
}

func (m *mockSalaryRepo) ListByPeriod(_ context.Context, month, year int) ([]model.SalaryRecord, error) {
	var list []model.SalaryRecord
	for _, r := range m.records {
		if r.Month == month && r.Year == year {
			list = append(list, *r)
		}
	}
	return list, nil
}

func (m *mockSalaryRepo) ListPaidByTeacher(_ context.Context, teacherID string) ([]model.SalaryRecord, error) {
	var list []model.SalaryRecord
	for _, r := range m.records {
		if r.TeacherID == teacherID && r.IsPaid {
			list = append(list, *r)
		}
	}
	return list, nil
}

func paginate[T any](list []T, offset, limit int) []T {
	if limit <= 0 {
		return list
	}
	if offset > len(list) {
		offset = len(list)
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

// ── 测试装配 ──

// testNow 固定时钟：2025-03-15 10:00 UTC
var testNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

type mockRepos struct {
	user       *mockUserRepo
	student    *mockStudentRepo
	teacher    *mockTeacherRepo
	subject    *mockSubjectRepo
	assignment *mockAssignmentRepo
	submission *mockSubmissionRepo
	attendance *mockAttendanceRepo
	fee        *mockFeeRecordRepo
	payment    *mockFeePaymentRepo
	salary     *mockSalaryRepo
}

type testEnv struct {
	cfg   *config.Config
	repo  *repository.Repository
	mocks mockRepos
	clock *clock.Fixed
	svc   *Service
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
		Ledger:     config.LedgerConfig{SemesterFee: 50000, MaxSemester: 8, PaymentRetry: 3},
		Attendance: config.AttendanceConfig{StatsWindowDays: 30, ReviewWindowDays: 7},
	}
}

// newTestEnv 装配全部 mock 仓储；Repository.db 为 nil，Transaction 直接在 mock 上执行
func newTestEnv() *testEnv {
	subjects := newMockSubjectRepo()
	assignments := newMockAssignmentRepo(subjects)
	teachers := newMockTeacherRepo()
	m := mockRepos{
		user:       newMockUserRepo(),
		student:    newMockStudentRepo(),
		teacher:    teachers,
		subject:    subjects,
		assignment: assignments,
		submission: newMockSubmissionRepo(assignments),
		attendance: newMockAttendanceRepo(),
		fee:        newMockFeeRecordRepo(),
		payment:    &mockFeePaymentRepo{},
		salary:     newMockSalaryRepo(teachers),
	}
	repo := &repository.Repository{
		User:         m.user,
		Student:      m.student,
		Teacher:      m.teacher,
		Subject:      m.subject,
		Assignment:   m.assignment,
		Submission:   m.submission,
		Attendance:   m.attendance,
		FeeRecord:    m.fee,
		FeePayment:   m.payment,
		SalaryRecord: m.salary,
	}

	cfg := testConfig()
	clk := clock.NewFixed(testNow)
	return &testEnv{
		cfg:   cfg,
		repo:  repo,
		mocks: m,
		clock: clk,
		svc:   NewService(cfg, repo, nil, nil, clk, nil, zap.NewNop()),
	}
}

// ── 测试数据 ──

var (
	adminActor = Actor{UserID: "admin-user", Role: model.RoleAdmin}
)

func teacherActor(teacherID string) Actor {
	return Actor{UserID: "user-" + teacherID, Role: model.RoleTeacher, ProfileID: teacherID}
}

func studentActor(studentID string) Actor {
	return Actor{UserID: "user-" + studentID, Role: model.RoleStudent, ProfileID: studentID}
}

func (e *testEnv) addStudent(id string, semester int) *model.Student {
	s := &model.Student{
		StudentID:       id,
		StudentCode:     "BCA-" + id,
		FirstName:       "Stu",
		LastName:        id,
		Email:           id + "@test.com",
		Program:         "BCA",
		CurrentSemester: semester,
		AdmissionDate:   time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		IsActive:        true,
	}
	e.mocks.student.students[id] = s
	return s
}

func (e *testEnv) addTeacher(id string, salary int64) *model.Teacher {
	t := &model.Teacher{
		TeacherID:   id,
		TeacherCode: "T-" + id,
		FirstName:   "Tea",
		LastName:    id,
		Email:       id + "@test.com",
		IsActive:    true,
	}
	if salary > 0 {
		t.BaseSalary = &salary
	}
	e.mocks.teacher.teachers[id] = t
	return t
}

func (e *testEnv) addSubject(id string, semester int, teacherID string) *model.Subject {
	s := &model.Subject{SubjectID: id, Code: "CS-" + id, Name: "Subject " + id, Semester: semester, Credits: 3}
	if teacherID != "" {
		s.AssignedTeacherID = &teacherID
	}
	e.mocks.subject.subjects[id] = s
	return s
}

func (e *testEnv) addAssignment(id, subjectID string, due time.Time) *model.Assignment {
	a := &model.Assignment{
		AssignmentID: id,
		SubjectID:    subjectID,
		Title:        "Assignment " + id,
		DueDate:      due,
		MaxMarks:     100,
		Status:       model.AssignmentStatusActive,
	}
	e.mocks.assignment.assignments[id] = a
	return a
}
