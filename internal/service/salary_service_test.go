package service

import (
	"context"
	"errors"
	"testing"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
)

// setupSalaryEnv t1 / t2 有工资，t3 未设置，t4 已停用
func setupSalaryEnv() *testEnv {
	env := newTestEnv()
	env.addTeacher("t1", 40000)
	env.addTeacher("t2", 35000)
	env.addTeacher("t3", 0)
	env.addTeacher("t4", 30000).IsActive = false
	return env
}

func TestSalaryService_GenerateMonthly_Idempotent(t *testing.T) {
	env := setupSalaryEnv()
	ctx := context.Background()

	created, err := env.svc.Salary.GenerateMonthly(ctx, adminActor, 3, 2025)
	if err != nil {
		t.Fatalf("GenerateMonthly 应成功: %v", err)
	}
	if created != 2 {
		t.Errorf("首次生成期望 2 条，实际 %d", created)
	}

	again, err := env.svc.Salary.GenerateMonthly(ctx, adminActor, 3, 2025)
	if err != nil {
		t.Fatalf("再次生成应成功: %v", err)
	}
	if again != 0 {
		t.Errorf("再次生成期望 0 条，实际 %d", again)
	}
	if len(env.mocks.salary.records) != 2 {
		t.Errorf("期望共 2 条记录，实际 %d", len(env.mocks.salary.records))
	}
}

func TestSalaryService_GenerateMonthly_InvalidPeriod(t *testing.T) {
	env := setupSalaryEnv()

	for _, p := range [][2]int{{0, 2025}, {13, 2025}, {1, 1999}, {1, 2101}} {
		_, err := env.svc.Salary.GenerateMonthly(context.Background(), adminActor, p[0], p[1])
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%d/%d 期望 ErrValidation，实际: %v", p[0], p[1], err)
		}
	}
}

func TestSalaryService_GetOrCreate_NoSalary(t *testing.T) {
	env := setupSalaryEnv()

	_, err := env.svc.Salary.GetOrCreate(context.Background(), adminActor, "t3", 3, 2025)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("未设置工资期望 ErrValidation，实际: %v", err)
	}
}

func TestSalaryService_GetOrCreate_Idempotent(t *testing.T) {
	env := setupSalaryEnv()
	ctx := context.Background()

	first, err := env.svc.Salary.GetOrCreate(ctx, teacherActor("t1"), "t1", 3, 2025)
	if err != nil {
		t.Fatalf("GetOrCreate 应成功: %v", err)
	}
	second, _ := env.svc.Salary.GetOrCreate(ctx, adminActor, "t1", 3, 2025)
	if first.SalaryRecordID != second.SalaryRecordID {
		t.Error("两次调用应返回同一记录")
	}
	if first.NetSalary != 40000 || first.PaymentStatus != model.SalaryStatusPending {
		t.Errorf("新记录应为 40000/pending，实际 %d/%s", first.NetSalary, first.PaymentStatus)
	}
}

func TestSalaryService_MarkPaid_ThenAgain(t *testing.T) {
	env := setupSalaryEnv()
	ctx := context.Background()

	rec, _ := env.svc.Salary.GetOrCreate(ctx, adminActor, "t1", 3, 2025)
	paid, err := env.svc.Salary.MarkPaid(ctx, adminActor, rec.SalaryRecordID, &dto.MarkSalaryPaidRequest{
		Bonus: 5000, Deductions: 2000, Method: "bank",
	})
	if err != nil {
		t.Fatalf("MarkPaid 应成功: %v", err)
	}
	if paid.NetSalary != 43000 || !paid.IsPaid || paid.PaymentStatus != model.SalaryStatusPaid || paid.PaymentDate == nil {
		t.Errorf("发放后状态不符，实际 %+v", paid)
	}

	_, err = env.svc.Salary.MarkPaid(ctx, adminActor, rec.SalaryRecordID, &dto.MarkSalaryPaidRequest{})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("重复发放期望 ErrInvalidState，实际: %v", err)
	}
	stored := env.mocks.salary.records[rec.SalaryRecordID]
	if stored.NetSalary != 43000 {
		t.Errorf("重复发放不应修改记录，实际 net=%d", stored.NetSalary)
	}
}

func TestSalaryService_MarkPaid_Validation(t *testing.T) {
	env := setupSalaryEnv()
	ctx := context.Background()
	rec, _ := env.svc.Salary.GetOrCreate(ctx, adminActor, "t1", 3, 2025)

	cases := []*dto.MarkSalaryPaidRequest{
		{Bonus: -1},
		{Deductions: -1},
		{Deductions: 40001},
	}
	for _, req := range cases {
		_, err := env.svc.Salary.MarkPaid(ctx, adminActor, rec.SalaryRecordID, req)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%+v 期望 ErrValidation，实际: %v", req, err)
		}
	}
	if env.mocks.salary.records[rec.SalaryRecordID].IsPaid {
		t.Error("校验失败不应发放")
	}
}

func TestSalaryService_MarkPaid_NotFound(t *testing.T) {
	env := setupSalaryEnv()

	_, err := env.svc.Salary.MarkPaid(context.Background(), adminActor, "missing", &dto.MarkSalaryPaidRequest{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}

func TestSalaryService_MonthlyOverview(t *testing.T) {
	env := setupSalaryEnv()
	ctx := context.Background()

	rec, _ := env.svc.Salary.GetOrCreate(ctx, adminActor, "t1", 3, 2025)
	env.svc.Salary.MarkPaid(ctx, adminActor, rec.SalaryRecordID, &dto.MarkSalaryPaidRequest{})

	// month / year 缺省为当月（2025-03）
	resp, err := env.svc.Salary.MonthlyOverview(ctx, adminActor, 0, 0)
	if err != nil {
		t.Fatalf("MonthlyOverview 应成功: %v", err)
	}
	if resp.Month != 3 || resp.Year != 2025 {
		t.Errorf("期望 2025-03，实际 %d-%d", resp.Year, resp.Month)
	}
	if resp.TotalExpense != 75000 || resp.TotalPaid != 40000 || resp.PaidCount != 1 || resp.PendingCount != 1 {
		t.Errorf("汇总不符，实际 %+v", resp)
	}
	if resp.PaidRate != 50 {
		t.Errorf("期望发放率 50，实际 %v", resp.PaidRate)
	}
}

func TestSalaryService_History_OwnOnly(t *testing.T) {
	env := setupSalaryEnv()
	ctx := context.Background()

	rec, _ := env.svc.Salary.GetOrCreate(ctx, adminActor, "t1", 2, 2025)
	env.svc.Salary.MarkPaid(ctx, adminActor, rec.SalaryRecordID, &dto.MarkSalaryPaidRequest{Bonus: 1000})
	env.svc.Salary.GetOrCreate(ctx, adminActor, "t1", 3, 2025)

	resp, err := env.svc.Salary.History(ctx, teacherActor("t1"), "t1")
	if err != nil {
		t.Fatalf("History 应成功: %v", err)
	}
	if resp.TotalPaid != 41000 {
		t.Errorf("只应统计已发放记录，期望 41000，实际 %d", resp.TotalPaid)
	}
	if _, err := env.svc.Salary.History(ctx, teacherActor("t2"), "t1"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("查看他人工资期望 ErrAccessDenied，实际: %v", err)
	}
}
