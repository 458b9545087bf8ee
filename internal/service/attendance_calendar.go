package service

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"bca-portal/internal/model"
)

const calendarProductID = "-//bca-portal//attendance//ZH"

// buildAttendanceCalendar 每条考勤记录生成一个全天事件
func buildAttendanceCalendar(records []model.Attendance, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	for _, r := range records {
		ev := cal.AddEvent(fmt.Sprintf("%s@bca-portal", r.AttendanceID))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(r.Date)
		ev.SetAllDayEndAt(r.Date.AddDate(0, 0, 1))
		ev.SetSummary(attendanceSummary(&r))
		ev.SetDescription(attendanceDescription(&r))
	}
	return cal.Serialize()
}

func attendanceSummary(r *model.Attendance) string {
	if r.IsPresent {
		return "出勤"
	}
	return "缺勤"
}

func attendanceDescription(r *model.Attendance) string {
	desc := "状态: " + r.Status
	if r.Notes != "" {
		desc += "\n备注: " + r.Notes
	}
	if r.AdminNotes != "" {
		desc += "\n审批意见: " + r.AdminNotes
	}
	return desc
}
