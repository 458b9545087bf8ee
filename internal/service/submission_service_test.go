package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
)

// setupSubmissionEnv 学生 s1 在第 3 学期；课程 sub3 (第 3 学期, 教师 t1)；作业 a1 明天截止
func setupSubmissionEnv() *testEnv {
	env := newTestEnv()
	env.addStudent("s1", 3)
	env.addTeacher("t1", 0)
	env.addTeacher("t2", 0)
	env.addSubject("sub3", 3, "t1")
	env.addSubject("sub4", 4, "t1")
	env.addAssignment("a1", "sub3", testNow.Add(24*time.Hour))
	env.addAssignment("a4", "sub4", testNow.Add(24*time.Hour))
	return env
}

func submitText(text string) *dto.SubmitRequest {
	return &dto.SubmitRequest{SubmissionText: text}
}

// ── Submit ──

func TestSubmissionService_Submit_OnTime(t *testing.T) {
	env := setupSubmissionEnv()

	sub, err := env.svc.Submission.Submit(context.Background(), studentActor("s1"), "a1", submitText("answer"))
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if sub.Status != model.SubmissionStatusSubmitted || sub.IsLate {
		t.Errorf("按时提交应为 submitted，实际 %s / late=%v", sub.Status, sub.IsLate)
	}
	if !sub.SubmissionDate.Equal(testNow) {
		t.Errorf("提交时间应为当前时间，实际 %v", sub.SubmissionDate)
	}
}

func TestSubmissionService_Submit_Late(t *testing.T) {
	env := setupSubmissionEnv()
	env.clock.Set(testNow.Add(48 * time.Hour))

	sub, err := env.svc.Submission.Submit(context.Background(), studentActor("s1"), "a1", submitText("answer"))
	if err != nil {
		t.Fatalf("迟交也应允许: %v", err)
	}
	if sub.Status != model.SubmissionStatusLate || !sub.IsLate {
		t.Errorf("迟交应为 late，实际 %s / late=%v", sub.Status, sub.IsLate)
	}
}

func TestSubmissionService_Submit_CrossSemester(t *testing.T) {
	env := setupSubmissionEnv()

	_, err := env.svc.Submission.Submit(context.Background(), studentActor("s1"), "a4", submitText("answer"))
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("跨学期提交期望 ErrAccessDenied，实际: %v", err)
	}
	if len(env.mocks.submission.subs) != 0 {
		t.Error("被拒绝的提交不应落库")
	}
}

func TestSubmissionService_Submit_EmptyPayload(t *testing.T) {
	env := setupSubmissionEnv()

	_, err := env.svc.Submission.Submit(context.Background(), studentActor("s1"), "a1", &dto.SubmitRequest{SubmissionText: "  "})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("空提交期望 ErrValidation，实际: %v", err)
	}
}

func TestSubmissionService_Submit_ClosedAssignment(t *testing.T) {
	env := setupSubmissionEnv()
	env.mocks.assignment.assignments["a1"].Status = model.AssignmentStatusClosed

	_, err := env.svc.Submission.Submit(context.Background(), studentActor("s1"), "a1", submitText("answer"))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("已关闭作业期望 ErrInvalidState，实际: %v", err)
	}
}

func TestSubmissionService_Submit_Duplicate(t *testing.T) {
	env := setupSubmissionEnv()
	ctx := context.Background()

	env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("first"))
	_, err := env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("second"))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("重复提交期望 ErrDuplicateSubmission，实际: %v", err)
	}
}

// 查询通过后另一请求抢先插入，唯一索引冲突应返回 ErrAlreadySubmitted
func TestSubmissionService_Submit_ConcurrentInsert(t *testing.T) {
	env := setupSubmissionEnv()
	env.mocks.submission.beforeCreate = func(m *mockSubmissionRepo, sub *model.Submission) {
		m.beforeCreate = nil
		cp := *sub
		cp.SubmissionID = "submission-other"
		m.subs[cp.SubmissionID] = &cp
	}

	_, err := env.svc.Submission.Submit(context.Background(), studentActor("s1"), "a1", submitText("answer"))
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("并发提交期望 ErrAlreadySubmitted，实际: %v", err)
	}
	if Category(err) != ErrDuplicateSubmission {
		t.Errorf("错误类别应为 ErrDuplicateSubmission，实际: %v", Category(err))
	}
	if len(env.mocks.submission.subs) != 1 {
		t.Errorf("只应保留先到的提交，实际 %d 条", len(env.mocks.submission.subs))
	}
}

func TestSubmissionService_Reject_ThenResubmitOnce(t *testing.T) {
	env := setupSubmissionEnv()
	ctx := context.Background()

	first, _ := env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("first"))
	rejected, err := env.svc.Submission.Reject(ctx, teacherActor("t1"), first.SubmissionID, "incomplete", "add tests")
	if err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}
	if rejected.Status != model.SubmissionStatusRejected || rejected.RejectionReason != "incomplete" || rejected.ReviewedDate == nil {
		t.Errorf("驳回后状态不符，实际 %+v", rejected)
	}

	second, err := env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("second"))
	if err != nil {
		t.Fatalf("驳回后应可重新提交: %v", err)
	}
	if second.SubmissionID == first.SubmissionID || second.Status != model.SubmissionStatusSubmitted {
		t.Errorf("应创建新的 submitted 提交，实际 %+v", second)
	}
	if len(env.mocks.submission.subs) != 1 {
		t.Errorf("旧提交应被删除，实际 %d 条", len(env.mocks.submission.subs))
	}

	_, err = env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("third"))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("重新提交后再次提交期望 ErrDuplicateSubmission，实际: %v", err)
	}
}

// ── 评审 ──

func TestSubmissionService_Reject_ReasonRequired(t *testing.T) {
	env := setupSubmissionEnv()

	_, err := env.svc.Submission.Reject(context.Background(), teacherActor("t1"), "missing-id", " ", "")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("缺少原因期望 ErrValidation（先于查询），实际: %v", err)
	}
}

func TestSubmissionService_Approve_NotSubjectTeacher(t *testing.T) {
	env := setupSubmissionEnv()
	ctx := context.Background()

	sub, _ := env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("answer"))
	_, err := env.svc.Submission.Approve(ctx, teacherActor("t2"), sub.SubmissionID, "")
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("非任课教师期望 ErrAccessDenied，实际: %v", err)
	}
}

func TestSubmissionService_Approve_Twice(t *testing.T) {
	env := setupSubmissionEnv()
	ctx := context.Background()

	sub, _ := env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("answer"))
	approved, err := env.svc.Submission.Approve(ctx, adminActor, sub.SubmissionID, "good")
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if approved.Status != model.SubmissionStatusApproved || approved.TeacherComments != "good" {
		t.Errorf("通过后状态不符，实际 %+v", approved)
	}

	_, err = env.svc.Submission.Approve(ctx, adminActor, sub.SubmissionID, "")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("重复通过期望 ErrInvalidState，实际: %v", err)
	}
	_, err = env.svc.Submission.Reject(ctx, adminActor, sub.SubmissionID, "late", "")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("已通过后驳回期望 ErrInvalidState，实际: %v", err)
	}
}

func TestSubmissionService_GradeThenReturn(t *testing.T) {
	env := setupSubmissionEnv()
	ctx := context.Background()

	sub, _ := env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("answer"))

	if _, err := env.svc.Submission.Grade(ctx, teacherActor("t1"), sub.SubmissionID, 101, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("超出满分期望 ErrValidation，实际: %v", err)
	}
	graded, err := env.svc.Submission.Grade(ctx, teacherActor("t1"), sub.SubmissionID, 88, "nice")
	if err != nil {
		t.Fatalf("Grade 应成功: %v", err)
	}
	if graded.Status != model.SubmissionStatusGraded || graded.MarksObtained == nil || *graded.MarksObtained != 88 {
		t.Errorf("评分后状态不符，实际 %+v", graded)
	}

	returned, err := env.svc.Submission.Return(ctx, teacherActor("t1"), sub.SubmissionID)
	if err != nil {
		t.Fatalf("Return 应成功: %v", err)
	}
	if returned.Status != model.SubmissionStatusReturned {
		t.Errorf("期望 returned，实际 %s", returned.Status)
	}
	if _, err := env.svc.Submission.Return(ctx, teacherActor("t1"), sub.SubmissionID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("重复退回期望 ErrInvalidState，实际: %v", err)
	}
}

// ── 查询 ──

func TestSubmissionService_Get_OtherStudentDenied(t *testing.T) {
	env := setupSubmissionEnv()
	env.addStudent("s2", 3)
	ctx := context.Background()

	sub, _ := env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("answer"))
	if _, err := env.svc.Submission.Get(ctx, studentActor("s2"), sub.SubmissionID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际: %v", err)
	}
	if _, err := env.svc.Submission.Get(ctx, studentActor("s1"), sub.SubmissionID); err != nil {
		t.Errorf("本人应可查看: %v", err)
	}
}

func TestSubmissionService_GetMine_NotFound(t *testing.T) {
	env := setupSubmissionEnv()

	_, err := env.svc.Submission.GetMine(context.Background(), studentActor("s1"), "a1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}

func TestSubmissionService_ListForAssignment_Owner(t *testing.T) {
	env := setupSubmissionEnv()
	ctx := context.Background()

	env.svc.Submission.Submit(ctx, studentActor("s1"), "a1", submitText("answer"))

	list, err := env.svc.Submission.ListForAssignment(ctx, teacherActor("t1"), "a1")
	if err != nil || len(list) != 1 {
		t.Errorf("任课教师应看到 1 条提交，实际 %d / %v", len(list), err)
	}
	if _, err := env.svc.Submission.ListForAssignment(ctx, teacherActor("t2"), "a1"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("非任课教师期望 ErrAccessDenied，实际: %v", err)
	}
}
