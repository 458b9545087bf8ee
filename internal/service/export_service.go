package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
)

// ErrExportGenerateFail 生成 Excel 失败
var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 数据来自对应业务服务的查询结果，权限校验随之生效；
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportFeeOverview(ctx context.Context, actor Actor, q *dto.FeeOverviewQuery) (*bytes.Buffer, string, error)
	ExportSalaryMonth(ctx context.Context, actor Actor, month, year int) (*bytes.Buffer, string, error)
	ExportAttendanceReport(ctx context.Context, actor Actor, personType string, from, to time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	fee        FeeService
	salary     SalaryService
	attendance AttendanceService
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(fee FeeService, salary SalaryService, attendance AttendanceService, logger *zap.Logger) ExportService {
	return &exportService{fee: fee, salary: salary, attendance: attendance, logger: logger}
}

// sheetTable 单 Sheet 表格：标题行 + 表头 + 数据行 + 可选合计行
type sheetTable struct {
	name    string
	title   string
	headers []string
	widths  []float64
	rows    [][]interface{}
	footer  []interface{}
}

func (s *exportService) ExportFeeOverview(ctx context.Context, actor Actor, q *dto.FeeOverviewQuery) (*bytes.Buffer, string, error) {
	overview, err := s.fee.Overview(ctx, actor, q)
	if err != nil {
		return nil, "", err
	}

	t := sheetTable{
		name:    "学费总览",
		title:   "学费总览",
		headers: []string{"学号", "姓名", "当前学期", "学期", "应缴", "已缴", "剩余", "状态"},
		widths:  []float64{14, 20, 10, 8, 12, 12, 12, 10},
	}
	if q.Semester != 0 {
		t.title = fmt.Sprintf("学费总览（第 %d 学期）", q.Semester)
	}
	for _, r := range overview.Rows {
		t.rows = append(t.rows, []interface{}{
			r.StudentCode, r.Name, r.CurrentSemester, r.Semester,
			r.TotalFee, r.PaidAmount, r.RemainingAmount, r.PaymentStatus,
		})
	}
	t.footer = []interface{}{
		"合计", "", "", "",
		overview.TotalExpected, overview.TotalCollected,
		overview.TotalExpected - overview.TotalCollected,
		fmt.Sprintf("%.1f%%", overview.CollectionRate),
	}

	buf, err := s.write(t)
	if err != nil {
		return nil, "", err
	}
	return buf, "fee_overview.xlsx", nil
}

func (s *exportService) ExportSalaryMonth(ctx context.Context, actor Actor, month, year int) (*bytes.Buffer, string, error) {
	overview, err := s.salary.MonthlyOverview(ctx, actor, month, year)
	if err != nil {
		return nil, "", err
	}

	t := sheetTable{
		name:    "工资",
		title:   fmt.Sprintf("%d 年 %d 月教师工资", overview.Year, overview.Month),
		headers: []string{"工号", "姓名", "基本工资", "奖金", "扣款", "实发", "状态", "发放日期"},
		widths:  []float64{14, 20, 12, 10, 10, 12, 10, 14},
	}
	records, _ := overview.Records.([]model.SalaryRecord)
	for _, r := range records {
		code, name := "", ""
		if r.Teacher != nil {
			code, name = r.Teacher.TeacherCode, r.Teacher.FullName()
		}
		paidOn := "-"
		if r.PaymentDate != nil {
			paidOn = r.PaymentDate.Format("2006-01-02")
		}
		t.rows = append(t.rows, []interface{}{
			code, name, r.BaseSalary, r.Bonus, r.Deductions, r.NetSalary, r.PaymentStatus, paidOn,
		})
	}
	t.footer = []interface{}{"合计", "", "", "", "", overview.TotalExpense, fmt.Sprintf("已发 %d", overview.PaidCount), ""}

	buf, err := s.write(t)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("salary_%d_%02d.xlsx", overview.Year, overview.Month), nil
}

func (s *exportService) ExportAttendanceReport(ctx context.Context, actor Actor, personType string, from, to time.Time) (*bytes.Buffer, string, error) {
	rows, err := s.attendance.Report(ctx, actor, personType, from, to)
	if err != nil {
		return nil, "", err
	}
	if personType == "" {
		personType = model.PersonStudent
	}

	t := sheetTable{
		name:    "出勤报表",
		title:   "出勤报表",
		headers: []string{"编号", "姓名", "记录天数", "出勤", "缺勤", "出勤率"},
		widths:  []float64{14, 20, 10, 10, 10, 10},
	}
	for _, r := range rows {
		t.rows = append(t.rows, []interface{}{
			r.Code, r.Name, r.Total, r.Present, r.Absent, fmt.Sprintf("%.1f%%", r.Percentage),
		})
	}

	buf, err := s.write(t)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("attendance_%s.xlsx", personType), nil
}

// write 生成单 Sheet 工作簿
func (s *exportService) write(t sheetTable) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(t.name)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, w := range t.widths {
		col := colName(i)
		f.SetColWidth(t.name, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(t.name, "A1", t.title)
	f.MergeCell(t.name, "A1", cell(colName(len(t.headers)-1), 1))
	f.SetCellStyle(t.name, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range t.headers {
		f.SetCellValue(t.name, cell(colName(i), row), h)
	}
	f.SetCellStyle(t.name, cell("A", row), cell(colName(len(t.headers)-1), row), headerStyle)

	// 数据行
	row = 3
	for _, values := range t.rows {
		for i, v := range values {
			f.SetCellValue(t.name, cell(colName(i), row), v)
		}
		row++
	}

	if len(t.footer) > 0 {
		for i, v := range t.footer {
			f.SetCellValue(t.name, cell(colName(i), row), v)
		}
		f.SetCellStyle(t.name, cell("A", row), cell(colName(len(t.footer)-1), row), headerStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("sheet", t.name), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
