// Package aggregation rolls a manager's direct subordinates' audited quarterly
// figures into the manager's team total and a coverage snapshot.
package aggregation

import (
	"context"
	"fmt"
	"sort"

	"aisg-audit/internal/hierarchy"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Figures are the quarterly numbers persisted on a subordinate's audit.
type Figures struct {
	PersonalMargin decimal.Decimal
	PersonalNA     int64
	TeamMargin     decimal.Decimal
	TeamNA         int64
}

type SubordinateSource interface {
	DirectSubordinates(ctx context.Context, companyID, managerID string) ([]hierarchy.Node, error)
}

type FiguresSource interface {
	// FindFiguresForPeriod returns figures keyed by employee id; employees without
	// an audit for the period are simply absent from the map.
	FindFiguresForPeriod(ctx context.Context, companyID string, employeeIDs []string, year, quarter int) (map[string]Figures, error)
}

type RoleCount struct {
	Role    string `json:"role"`
	Level   int    `json:"level"`
	Total   int    `json:"total"`
	Audited int    `json:"audited"`
}

type PendingSubordinate struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Result struct {
	TeamMargin          decimal.Decimal
	TeamNA              int64
	Structure           []RoleCount
	TotalSubordinates   int
	AuditedSubordinates int
	Coverage            int
	Warnings            []string
	PendingSubordinates []PendingSubordinate
}

type Aggregator struct {
	subs    SubordinateSource
	figures FiguresSource
	logger  *zap.Logger
}

func NewAggregator(subs SubordinateSource, figures FiguresSource, logger ...*zap.Logger) *Aggregator {
	l := zap.L().Named("aggregation")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("aggregation")
	}
	return &Aggregator{subs: subs, figures: figures, logger: l}
}

// Aggregate hanya melihat bawahan langsung. Setiap bawahan yang sudah diaudit
// menyumbang personal + team miliknya, jadi total "teleskopik" ke atas tanpa
// perlu menelusuri seluruh subtree dari setiap atasan.
func (a *Aggregator) Aggregate(ctx context.Context, companyID, managerID string, year, quarter int) (Result, error) {
	subs, err := a.subs.DirectSubordinates(ctx, companyID, managerID)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		TeamMargin:          decimal.Zero,
		Structure:           []RoleCount{},
		Warnings:            []string{},
		PendingSubordinates: []PendingSubordinate{},
		Coverage:            100,
	}
	if len(subs) == 0 {
		return res, nil
	}

	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = s.ID
	}
	figures, err := a.figures.FindFiguresForPeriod(ctx, companyID, ids, year, quarter)
	if err != nil {
		return Result{}, err
	}

	byRole := make(map[string]*RoleCount)
	for _, s := range subs {
		rc, ok := byRole[s.PositionCode]
		if !ok {
			rc = &RoleCount{Role: s.PositionCode, Level: s.Level}
			byRole[s.PositionCode] = rc
		}
		rc.Total++

		f, audited := figures[s.ID]
		if !audited {
			res.PendingSubordinates = append(res.PendingSubordinates, PendingSubordinate{
				ID:   s.ID,
				Code: s.Code,
				Name: s.FullName,
				Role: s.PositionCode,
			})
			continue
		}

		rc.Audited++
		res.AuditedSubordinates++
		res.TeamMargin = res.TeamMargin.Add(f.PersonalMargin).Add(f.TeamMargin)
		res.TeamNA += f.PersonalNA + f.TeamNA
	}

	res.TotalSubordinates = len(subs)
	res.Coverage = coverage(res.AuditedSubordinates, res.TotalSubordinates)
	for _, rc := range byRole {
		res.Structure = append(res.Structure, *rc)
	}
	sort.Slice(res.Structure, func(i, j int) bool {
		if res.Structure[i].Level != res.Structure[j].Level {
			return res.Structure[i].Level < res.Structure[j].Level
		}
		return res.Structure[i].Role < res.Structure[j].Role
	})

	if len(res.PendingSubordinates) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d of %d direct subordinates have not completed their Q%d %d audit (coverage %d%%); team totals are partial",
			len(res.PendingSubordinates), res.TotalSubordinates, quarter, year, res.Coverage,
		))
	}

	a.logger.Debug("team aggregated",
		zap.String("manager_id", managerID),
		zap.Int("year", year),
		zap.Int("quarter", quarter),
		zap.Int("subordinates", res.TotalSubordinates),
		zap.Int("audited", res.AuditedSubordinates),
		zap.String("team_margin", res.TeamMargin.String()),
	)

	return res, nil
}

// coverage dibulatkan half-up tanpa floating point.
func coverage(audited, total int) int {
	if total == 0 {
		return 100
	}
	return (audited*200 + total) / (2 * total)
}
