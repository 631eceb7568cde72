package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"aisg-audit/internal/employee"
	"aisg-audit/internal/hierarchy"
	"aisg-audit/internal/position"
	"aisg-audit/internal/shared/apperror"
	"aisg-audit/internal/shared/numeric"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type EmployeeLookup interface {
	FindByCodes(ctx context.Context, companyID string, codes []string) ([]employee.Employee, error)
	DirectSubordinates(ctx context.Context, companyID, managerID string) ([]hierarchy.Node, error)
}

// Validator memeriksa satu batch sebelum ada yang ditulis. Ia hanya membaca
// store (lookup kode yang sudah ada), tidak pernah menulis.
type Validator struct {
	lookup   EmployeeLookup
	validate *validator.Validate
	logger   *zap.Logger
}

func NewValidator(lookup EmployeeLookup, logger ...*zap.Logger) *Validator {
	l := zap.L().Named("bulkimport.validator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("bulkimport.validator")
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{lookup: lookup, validate: v, logger: l}
}

type rowState struct {
	row    Row
	level  int
	failed bool
}

func (v *Validator) Validate(ctx context.Context, companyID string, rows []Row) (Result, error) {
	res := Result{
		TotalRows:          len(rows),
		Errors:             []RowError{},
		CircularReferences: [][]string{},
		Warnings:           []RowError{},
		ValidRows:          []int{},
	}

	states := make([]*rowState, len(rows))
	fail := func(st *rowState, field, reason string) {
		st.failed = true
		res.Errors = append(res.Errors, RowError{Row: st.row.RowNumber, Code: st.row.EmployeeCode, Field: field, Reason: reason})
	}
	warn := func(st *rowState, field, reason string) {
		res.Warnings = append(res.Warnings, RowError{Row: st.row.RowNumber, Code: st.row.EmployeeCode, Field: field, Reason: reason})
	}

	// 1. schema per baris
	for i, r := range rows {
		r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)
		r.ManagerCode = strings.TrimSpace(r.ManagerCode)
		st := &rowState{row: r}
		states[i] = st

		if err := v.validate.Struct(r); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return Result{}, err
			}
			for _, fe := range verrs {
				fail(st, fe.Field(), apperror.DescribeTag(fe))
			}
		}

		if r.Position != "" {
			if p, ok := position.Lookup(r.Position); ok {
				st.level = p.Level
				st.row.Position = p.Code
			} else {
				fail(st, ColPosition, fmt.Sprintf("unknown position %q, expected one of %v", r.Position, position.Codes()))
			}
		}

		if r.ManagerCode != "" && strings.EqualFold(r.ManagerCode, r.EmployeeCode) {
			fail(st, ColManagerCode, "employee cannot be their own manager")
		}

		if _, ok := numeric.NormalizeStrict(r.Margin); !ok {
			warn(st, ColMargin, fmt.Sprintf("margin %q is not a valid amount and will be imported as 0", r.Margin))
		}
		if _, ok := numeric.NormalizeCount(r.NA); !ok {
			warn(st, ColNA, fmt.Sprintf("na %q is not a whole number and will be imported as 0", r.NA))
		}
	}

	// 2. kode duplikat: semua kemunculan ditandai
	byCode := make(map[string][]*rowState, len(states))
	for _, st := range states {
		if st.row.EmployeeCode == "" {
			continue
		}
		byCode[st.row.EmployeeCode] = append(byCode[st.row.EmployeeCode], st)
	}
	for code, group := range byCode {
		if len(group) < 2 {
			continue
		}
		nums := make([]string, len(group))
		for i, st := range group {
			nums[i] = fmt.Sprint(st.row.RowNumber)
		}
		for _, st := range group {
			fail(st, ColEmployeeCode, fmt.Sprintf("duplicate employee_code %s (rows %s)", code, strings.Join(nums, ", ")))
		}
	}

	// 3. resolusi atasan terhadap batch dan store
	lookupCodes := make([]string, 0, len(byCode))
	seen := make(map[string]bool)
	for code := range byCode {
		lookupCodes = append(lookupCodes, code)
		seen[code] = true
	}
	for _, st := range states {
		if mc := st.row.ManagerCode; mc != "" && !seen[mc] {
			lookupCodes = append(lookupCodes, mc)
			seen[mc] = true
		}
	}
	sort.Strings(lookupCodes)

	existing, err := v.lookup.FindByCodes(ctx, companyID, lookupCodes)
	if err != nil {
		return Result{}, err
	}
	stored := make(map[string]employee.Employee, len(existing))
	for _, e := range existing {
		stored[e.Code] = e
	}

	managerOf := make(map[string]string, len(byCode))
	for _, st := range states {
		r := st.row
		if e, ok := stored[r.EmployeeCode]; ok && len(byCode[r.EmployeeCode]) == 1 {
			if !strings.EqualFold(e.PositionCode, r.Position) && st.level > 0 {
				warn(st, ColPosition, fmt.Sprintf("existing employee position changes from %s to %s", e.PositionCode, r.Position))
				// turun pangkat: bawahan langsung yang tetap di bawahnya harus masih lebih rendah
				if st.level > position.LevelOf(e.PositionCode) {
					if err := v.checkStoredSubordinates(ctx, companyID, e, st, byCode, fail); err != nil {
						return Result{}, err
					}
				}
			}
		}

		if r.ManagerCode == "" || strings.EqualFold(r.ManagerCode, r.EmployeeCode) {
			continue
		}
		if len(byCode[r.EmployeeCode]) == 1 {
			managerOf[r.EmployeeCode] = r.ManagerCode
		}

		managerLevel := 0
		if group, ok := byCode[r.ManagerCode]; ok {
			managerLevel = group[0].level
		} else if e, ok := stored[r.ManagerCode]; ok {
			managerLevel = position.LevelOf(e.PositionCode)
		} else {
			fail(st, ColManagerCode, fmt.Sprintf("manager %s not found in this file or in existing employees", r.ManagerCode))
			continue
		}

		// 4. rank: angka level atasan harus lebih kecil
		if managerLevel > 0 && st.level > 0 && managerLevel >= st.level {
			fail(st, ColManagerCode, fmt.Sprintf("manager %s (level %d) must outrank employee (level %d)", r.ManagerCode, managerLevel, st.level))
		}
	}

	// 5. siklus di dalam batch
	for _, chain := range detectCycles(managerOf) {
		res.CircularReferences = append(res.CircularReferences, chain)
		text := strings.Join(chain, " -> ")
		for _, code := range chain[:len(chain)-1] {
			for _, st := range byCode[code] {
				fail(st, ColManagerCode, "circular reporting chain: "+text)
			}
		}
	}

	res.ValidRows = validRows(states, byCode)
	res.IsValid = len(res.Errors) == 0

	sort.SliceStable(res.Errors, func(i, j int) bool { return res.Errors[i].Row < res.Errors[j].Row })
	sort.SliceStable(res.Warnings, func(i, j int) bool { return res.Warnings[i].Row < res.Warnings[j].Row })

	v.logger.Debug("import batch validated",
		zap.String("company_id", companyID),
		zap.Int("rows", len(rows)),
		zap.Int("errors", len(res.Errors)),
		zap.Int("cycles", len(res.CircularReferences)),
		zap.Int("valid_rows", len(res.ValidRows)),
	)
	return res, nil
}

// checkStoredSubordinates menolak baris jika ada bawahan langsung di store yang
// levelnya tidak lagi di bawah posisi baru. Bawahan yang juga muncul di batch
// dilewati; barisnya sendiri yang menentukan atasan dan rank-nya.
func (v *Validator) checkStoredSubordinates(
	ctx context.Context,
	companyID string,
	existing employee.Employee,
	st *rowState,
	inBatch map[string][]*rowState,
	fail func(*rowState, string, string),
) error {
	subs, err := v.lookup.DirectSubordinates(ctx, companyID, existing.ID.String())
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if _, repointed := inBatch[sub.Code]; repointed {
			continue
		}
		if sub.Level > 0 && sub.Level <= st.level {
			fail(st, ColPosition, fmt.Sprintf("existing subordinate %s (level %d) must rank below %s (level %d)",
				sub.Code, sub.Level, st.row.Position, st.level))
		}
	}
	return nil
}

// detectCycles berjalan ke atas dari setiap kode lewat managerOf. Node yang
// sudah selesai tidak dikunjungi lagi, jadi total kerja linear terhadap jumlah
// baris. Setiap siklus dikembalikan sekali, dengan node awal diulang di akhir.
func detectCycles(managerOf map[string]string) [][]string {
	const (
		unvisited = iota
		onPath
		done
	)

	codes := make([]string, 0, len(managerOf))
	for c := range managerOf {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	state := make(map[string]int, len(managerOf))
	var cycles [][]string
	for _, start := range codes {
		if state[start] != unvisited {
			continue
		}

		var path []string
		pos := make(map[string]int)
		cur := start
		for {
			s := state[cur]
			if s == done {
				break
			}
			if s == onPath {
				chain := append([]string{}, path[pos[cur]:]...)
				chain = append(chain, cur)
				cycles = append(cycles, chain)
				break
			}
			state[cur] = onPath
			pos[cur] = len(path)
			path = append(path, cur)

			next, ok := managerOf[cur]
			if !ok {
				break
			}
			cur = next
		}
		for _, c := range path {
			state[c] = done
		}
	}
	return cycles
}

// validRows: baris tanpa error yang atasannya (jika ada di batch) juga valid,
// diulang sampai stabil.
func validRows(states []*rowState, byCode map[string][]*rowState) []int {
	ok := make(map[*rowState]bool, len(states))
	for _, st := range states {
		if !st.failed {
			ok[st] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for _, st := range states {
			if !ok[st] || st.row.ManagerCode == "" {
				continue
			}
			group, inBatch := byCode[st.row.ManagerCode]
			if !inBatch {
				continue
			}
			if !ok[group[0]] {
				delete(ok, st)
				changed = true
			}
		}
	}

	out := make([]int, 0, len(ok))
	for _, st := range states {
		if ok[st] {
			out = append(out, st.row.RowNumber)
		}
	}
	return out
}
