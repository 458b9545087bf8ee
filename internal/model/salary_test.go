package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSalaryRecord_Recalculate(t *testing.T) {
	r := NewSalaryRecord("t-1", 3, 2025, 40000)
	assert.Equal(t, int64(40000), r.NetSalary)
	assert.False(t, r.IsPaid)

	r.Bonus = 5000
	r.Deductions = 2000
	r.Recalculate()
	assert.Equal(t, int64(43000), r.NetSalary)
	assert.False(t, r.IsPaid, "未设置发放日期时不应视为已发放")

	now := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	r.PaymentDate = &now
	r.PaymentStatus = SalaryStatusPaid
	r.Recalculate()
	assert.True(t, r.IsPaid)
}

func TestSalaryRecord_IsPaidRequiresStatus(t *testing.T) {
	r := NewSalaryRecord("t-1", 3, 2025, 40000)
	now := time.Now()
	r.PaymentDate = &now
	r.Recalculate()
	assert.False(t, r.IsPaid)
}

func TestValidPeriod(t *testing.T) {
	assert.True(t, ValidPeriod(1, 2000))
	assert.True(t, ValidPeriod(12, 2100))
	assert.False(t, ValidPeriod(0, 2025))
	assert.False(t, ValidPeriod(13, 2025))
	assert.False(t, ValidPeriod(6, 1999))
	assert.False(t, ValidPeriod(6, 2101))
}
