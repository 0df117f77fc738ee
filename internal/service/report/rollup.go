package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// UnassignedDepartment groups employees without a department.
const UnassignedDepartment = "Unassigned"

// Builder turns record sets into rollups. It holds no clock and no state
// beyond configuration: every result is a function of its arguments.
type Builder struct {
	classifier attendance.Classifier
	loc        *time.Location
}

func NewBuilder(classifier attendance.Classifier, loc *time.Location) Builder {
	if loc == nil {
		loc = time.UTC
	}
	return Builder{classifier: classifier, loc: loc}
}

// dayBucket folds every session of one employee on one day.
type dayBucket struct {
	latest   attendance.Record
	hours    decimal.Decimal
	sessions int
}

func (d *dayBucket) add(r attendance.Record) {
	if d.sessions == 0 || r.CheckInTime.After(d.latest.CheckInTime) {
		d.latest = r
	}
	d.hours = d.hours.Add(decimal.NewFromFloat(r.TotalHours))
	d.sessions++
}

func bucketByDay(records []attendance.Record) map[calendar.DateKey]*dayBucket {
	out := make(map[calendar.DateKey]*dayBucket)
	for _, r := range records {
		b, ok := out[r.Date]
		if !ok {
			b = &dayBucket{}
			out[r.Date] = b
		}
		b.add(r)
	}
	return out
}

func bucketByEmployeeDay(records []attendance.Record) map[string]map[calendar.DateKey]*dayBucket {
	grouped := make(map[string][]attendance.Record)
	for _, r := range records {
		grouped[r.EmployeeID] = append(grouped[r.EmployeeID], r)
	}
	out := make(map[string]map[calendar.DateKey]*dayBucket, len(grouped))
	for id, rs := range grouped {
		out[id] = bucketByDay(rs)
	}
	return out
}

func (b Builder) status(bk *dayBucket) attendance.Status {
	return attendance.DerivedStatus(bk.latest, b.classifier)
}

func (b Builder) format(t time.Time) string {
	return t.In(b.loc).Format(time.RFC3339)
}

func (b Builder) dayStatus(employeeID string, d calendar.DateKey, bk *dayBucket) report.DayStatus {
	ds := report.DayStatus{
		EmployeeID:   employeeID,
		Date:         d.String(),
		Weekday:      d.Weekday().String(),
		IsWorkingDay: calendar.IsWorkingDay(d),
		Status:       report.StatusNotCheckedIn,
	}
	if bk == nil {
		return ds
	}

	in := b.format(bk.latest.CheckInTime)
	ds.CheckedIn = true
	ds.CheckInTime = &in
	if bk.latest.CheckOutTime != nil {
		out := b.format(*bk.latest.CheckOutTime)
		ds.CheckedOut = true
		ds.CheckOutTime = &out
	}
	ds.Status = string(b.status(bk))
	ds.Hours = round2(bk.hours)
	ds.Sessions = bk.sessions
	return ds
}

func filterEmployee(records []attendance.Record, employeeID string, keep func(calendar.DateKey) bool) []attendance.Record {
	out := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if r.EmployeeID == employeeID && (keep == nil || keep(r.Date)) {
			out = append(out, r)
		}
	}
	return out
}

// DayStatus reports the employee's attendance on date, or a not-checked-in
// placeholder when there is no record.
func (b Builder) DayStatus(employeeID string, date calendar.DateKey, records []attendance.Record) report.DayStatus {
	mine := filterEmployee(records, employeeID, func(d calendar.DateKey) bool { return d == date })
	return b.dayStatus(employeeID, date, bucketByDay(mine)[date])
}

// RollingSeries returns exactly n day statuses for the n calendar days ending
// at end, oldest first. Days without records are placeholders, never skipped.
func (b Builder) RollingSeries(employeeID string, end calendar.DateKey, n int, records []attendance.Record) []report.DayStatus {
	buckets := bucketByDay(filterEmployee(records, employeeID, nil))
	window := calendar.RollingWindow(end, n)

	out := make([]report.DayStatus, 0, len(window))
	for _, d := range window {
		out = append(out, b.dayStatus(employeeID, d, buckets[d]))
	}
	return out
}

// statusCounts tallies working days in counted: a day with records counts
// once by its latest session, a day without counts as absent.
type statusCounts struct {
	present, late, halfDay, absent int
}

func (b Builder) countDays(counted calendar.DateRange, buckets map[calendar.DateKey]*dayBucket) statusCounts {
	var c statusCounts
	for _, d := range counted.Days() {
		if !calendar.IsWorkingDay(d) {
			continue
		}
		bk, ok := buckets[d]
		if !ok {
			c.absent++
			continue
		}
		switch b.status(bk) {
		case attendance.StatusLate:
			c.late++
		case attendance.StatusHalfDay:
			c.halfDay++
		default:
			c.present++
		}
	}
	return c
}

func sumHours(buckets map[calendar.DateKey]*dayBucket) decimal.Decimal {
	total := decimal.Zero
	for _, bk := range buckets {
		total = total.Add(bk.hours)
	}
	return total
}

// MonthlySummary summarizes the employee's month. Only working days up to
// today are counted, so a month still in progress reports no future absences
// and a month entirely after today counts nothing.
func (b Builder) MonthlySummary(employeeID string, year int, month time.Month, today calendar.DateKey, records []attendance.Record) report.MonthlySummary {
	period := calendar.MonthRange(year, month)
	buckets := bucketByDay(filterEmployee(records, employeeID, period.Contains))

	s := report.MonthlySummary{
		EmployeeID:  employeeID,
		Month:       int(month),
		Year:        year,
		PeriodStart: period.Start.String(),
		PeriodEnd:   period.End.String(),
		Days:        []report.DayStatus{},
	}

	if counted, ok := period.UpTo(today); ok {
		s.ReferenceDay = counted.End.String()
		s.WorkingDays, _ = calendar.WorkingDaysBetween(counted.Start, counted.End)

		c := b.countDays(counted, buckets)
		s.Present, s.Late, s.HalfDay, s.Absent = c.present, c.late, c.halfDay, c.absent

		for _, d := range counted.Days() {
			s.Days = append(s.Days, b.dayStatus(employeeID, d, buckets[d]))
		}
	}

	total := sumHours(buckets)
	s.DaysWithRecord = len(buckets)
	s.TotalHours = round2(total)
	s.AvgHours = round2(safeDiv(total, s.DaysWithRecord))
	s.AttendancePercentage = percentInt(s.Present, s.WorkingDays)
	return s
}

// MySummary returns lifetime totals over records, totals for today's month,
// and the last seven calendar days ending today.
func (b Builder) MySummary(employeeID string, today calendar.DateKey, records []attendance.Record) report.MySummary {
	mine := filterEmployee(records, employeeID, nil)
	all := bucketByDay(mine)
	month := calendar.MonthRange(today.Year, today.Month)

	monthBuckets := make(map[calendar.DateKey]*dayBucket)
	for d, bk := range all {
		if month.Contains(d) {
			monthBuckets[d] = bk
		}
	}

	total := sumHours(all)
	return report.MySummary{
		TotalDays:  len(all),
		TotalHours: round2(total),
		AvgHours:   round2(safeDiv(total, len(all))),
		MonthDays:  len(monthBuckets),
		MonthHours: round2(sumHours(monthBuckets)),
		Last7Days:  b.RollingSeries(employeeID, today, 7, mine),
	}
}

func employeeInfo(e employee.Employee) report.EmployeeInfo {
	return report.EmployeeInfo{EmployeeID: e.EmployeeID, Name: e.Name, Department: e.Department}
}

func departmentKey(e employee.Employee) string {
	if name := e.DepartmentName(); name != "" {
		return name
	}
	return UnassignedDepartment
}

// TeamSummary summarizes every roster employee over r. Absences are counted
// only on working days up to today. Averages over an empty roster or
// department are 0. Records of employees outside the roster are ignored.
func (b Builder) TeamSummary(r calendar.DateRange, employees []employee.Employee, records []attendance.Record, today calendar.DateKey) (report.TeamSummary, error) {
	if err := r.Validate(); err != nil {
		return report.TeamSummary{}, attendance.ErrInvalidRange
	}

	inRange := make([]attendance.Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date) {
			inRange = append(inRange, rec)
		}
	}
	byEmployee := bucketByEmployeeDay(inRange)
	counted, countable := r.UpTo(today)

	s := report.TeamSummary{
		StartDate:           r.Start.String(),
		EndDate:             r.End.String(),
		Departments:         map[string]report.GroupAverages{},
		Employees:           make([]report.EmployeeSummary, 0, len(employees)),
		EmployeesNoActivity: []report.EmployeeInfo{},
	}
	if countable {
		s.WorkingDays, _ = calendar.WorkingDaysBetween(counted.Start, counted.End)
	}

	team := newGroupTotals()
	departments := map[string]*groupTotals{}

	for _, e := range employees {
		buckets := byEmployee[e.EmployeeID]
		es := report.EmployeeSummary{Employee: employeeInfo(e)}
		if countable {
			c := b.countDays(counted, buckets)
			es.Present, es.Late, es.HalfDay, es.Absent = c.present, c.late, c.halfDay, c.absent
		}
		hours := sumHours(buckets)
		es.TotalHours = round2(hours)
		s.Employees = append(s.Employees, es)

		if len(buckets) == 0 {
			s.EmployeesNoActivity = append(s.EmployeesNoActivity, employeeInfo(e))
		}

		team.add(es, hours)
		key := departmentKey(e)
		if departments[key] == nil {
			departments[key] = newGroupTotals()
		}
		departments[key].add(es, hours)
	}

	s.Team = team.averages()
	for name, g := range departments {
		s.Departments[name] = g.averages()
	}
	return s, nil
}

type groupTotals struct {
	count                          int
	present, late, halfDay, absent int
	hours                          decimal.Decimal
}

func newGroupTotals() *groupTotals {
	return &groupTotals{hours: decimal.Zero}
}

func (g *groupTotals) add(es report.EmployeeSummary, hours decimal.Decimal) {
	g.count++
	g.present += es.Present
	g.late += es.Late
	g.halfDay += es.HalfDay
	g.absent += es.Absent
	g.hours = g.hours.Add(hours)
}

func (g *groupTotals) averages() report.GroupAverages {
	return report.GroupAverages{
		TotalEmployees: g.count,
		AveragePresent: round2(safeDiv(decimal.NewFromInt(int64(g.present)), g.count)),
		AverageLate:    round2(safeDiv(decimal.NewFromInt(int64(g.late)), g.count)),
		AverageHalfDay: round2(safeDiv(decimal.NewFromInt(int64(g.halfDay)), g.count)),
		AverageAbsent:  round2(safeDiv(decimal.NewFromInt(int64(g.absent)), g.count)),
		TotalHours:     round2(g.hours),
	}
}

// TodaySnapshot partitions the roster by its records on today. An employee
// is placed once, by their latest session: open is present, closed is
// completed. Absent is the roster minus everyone with any record today.
func (b Builder) TodaySnapshot(employees []employee.Employee, records []attendance.Record, today calendar.DateKey) report.TodaySnapshot {
	todays := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if r.Date == today {
			todays = append(todays, r)
		}
	}
	byEmployee := bucketByEmployeeDay(todays)

	s := report.TodaySnapshot{
		Date:               today.String(),
		TotalEmployees:     len(employees),
		PresentEmployees:   []report.PresentEmployee{},
		CompletedEmployees: []report.CompletedEmployee{},
		AbsentEmployees:    []report.EmployeeInfo{},
	}

	for _, e := range employees {
		bk := byEmployee[e.EmployeeID][today]
		if bk == nil {
			s.AbsentEmployees = append(s.AbsentEmployees, employeeInfo(e))
			continue
		}

		status := b.status(bk)
		if status == attendance.StatusLate {
			s.Late++
		}
		if bk.latest.IsOpen() {
			s.PresentEmployees = append(s.PresentEmployees, report.PresentEmployee{
				EmployeeInfo: employeeInfo(e),
				AttendanceID: bk.latest.ID,
				CheckInTime:  b.format(bk.latest.CheckInTime),
				Status:       string(status),
			})
			continue
		}
		s.CompletedEmployees = append(s.CompletedEmployees, report.CompletedEmployee{
			EmployeeInfo: employeeInfo(e),
			AttendanceID: bk.latest.ID,
			CheckInTime:  b.format(bk.latest.CheckInTime),
			CheckOutTime: b.format(*bk.latest.CheckOutTime),
			TotalHours:   round2(bk.hours),
			Status:       string(status),
		})
	}

	s.Present = len(s.PresentEmployees)
	s.Completed = len(s.CompletedEmployees)
	s.Absent = len(s.AbsentEmployees)
	return s
}

// WeeklyTrend counts, for each of the n days ending at end, the roster
// employees with any record, how many of them were late, and the rest as
// absent on working days.
func (b Builder) WeeklyTrend(employees []employee.Employee, records []attendance.Record, end calendar.DateKey, n int) []report.TrendDay {
	byEmployee := bucketByEmployeeDay(records)

	out := make([]report.TrendDay, 0, n)
	for _, d := range calendar.RollingWindow(end, n) {
		day := report.TrendDay{Date: d.String(), Day: d.Weekday().String()[:3]}
		for _, e := range employees {
			bk := byEmployee[e.EmployeeID][d]
			if bk == nil {
				continue
			}
			day.Present++
			if b.status(bk) == attendance.StatusLate {
				day.Late++
			}
		}
		if calendar.IsWorkingDay(d) {
			day.Absent = len(employees) - day.Present
		}
		out = append(out, day)
	}
	return out
}

// DepartmentStats counts presence per department on date.
func (b Builder) DepartmentStats(employees []employee.Employee, records []attendance.Record, date calendar.DateKey) map[string]report.DepartmentStat {
	byEmployee := bucketByEmployeeDay(records)

	stats := map[string]report.DepartmentStat{}
	for _, e := range employees {
		key := departmentKey(e)
		st := stats[key]
		st.TotalEmployees++
		if bk := byEmployee[e.EmployeeID][date]; bk != nil {
			st.Present++
			if b.status(bk) == attendance.StatusLate {
				st.Late++
			}
		}
		stats[key] = st
	}

	for key, st := range stats {
		st.Absent = st.TotalEmployees - st.Present
		st.PercentPresent = round2(safeDiv(decimal.NewFromInt(int64(st.Present*100)), st.TotalEmployees))
		stats[key] = st
	}
	return stats
}

func safeDiv(num decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return num.Div(decimal.NewFromInt(int64(count)))
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func percentInt(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(part * 100)).Div(decimal.NewFromInt(int64(whole))).Round(0).IntPart())
}
