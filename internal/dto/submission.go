package dto

// ── 作业提交 DTO ──

// SubmitRequest 学生提交作业，文本与文件引用至少填一项
type SubmitRequest struct {
	SubmissionText string `json:"submission_text" binding:"omitempty,max=20000"`
	FileRef        string `json:"file_ref"        binding:"omitempty,max=500"`
}

// ApproveSubmissionRequest 通过提交
type ApproveSubmissionRequest struct {
	Comments string `json:"comments" binding:"omitempty,max=2000"`
}

// RejectSubmissionRequest 驳回提交；reason 由业务层校验非空
type RejectSubmissionRequest struct {
	Reason   string `json:"reason"   binding:"max=1000"`
	Feedback string `json:"feedback" binding:"omitempty,max=2000"`
}

// GradeSubmissionRequest 评分
type GradeSubmissionRequest struct {
	Marks    *int   `json:"marks"    binding:"required"`
	Feedback string `json:"feedback" binding:"omitempty,max=2000"`
}
