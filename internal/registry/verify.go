package registry

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/store"
)

// Problem names a kind of index consistency violation.
type Problem string

const (
	// ProblemMalformedID: a record's key is not a hex Keccak-256 digest.
	ProblemMalformedID Problem = "malformed_id"
	// ProblemWrongID: a record is stored under an id it does not derive to.
	ProblemWrongID Problem = "wrong_id"
	// ProblemNotIndexed: a record's id is missing from its key's list.
	ProblemNotIndexed Problem = "not_indexed"
	// ProblemDuplicate: an id appears more than once in one list.
	ProblemDuplicate Problem = "duplicate"
	// ProblemDangling: a listed id has no record.
	ProblemDangling Problem = "dangling"
	// ProblemWrongKey: an id is listed under a key that does not match its record.
	ProblemWrongKey Problem = "wrong_key"
)

// Violation is one breach of the index consistency invariant.
type Violation struct {
	Problem Problem         `json:"problem"`
	GrantID string          `json:"grant_id"`
	Index   store.IndexName `json:"index,omitempty"`
	Key     string          `json:"key,omitempty"`
}

func (v Violation) String() string {
	if v.Index == "" {
		return fmt.Sprintf("%s: grant %s", v.Problem, v.GrantID)
	}
	return fmt.Sprintf("%s: grant %s in %s[%s]", v.Problem, v.GrantID, v.Index, v.Key)
}

// Report is the outcome of Verify.
type Report struct {
	Grants     int         `json:"grants"`
	Violations []Violation `json:"violations"`
}

// OK reports whether no violations were found.
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%d grants, indices consistent", r.Grants)
	}
	lines := make([]string, 0, len(r.Violations)+1)
	lines = append(lines, fmt.Sprintf("%d grants, %d violations", r.Grants, len(r.Violations)))
	for _, v := range r.Violations {
		lines = append(lines, "  "+v.String())
	}
	return strings.Join(lines, "\n")
}

// Verify checks that every stored grant is listed exactly once under its
// own key in each index, and that every listed id resolves to a grant
// filed under that key.
func (r *Registry) Verify(ctx context.Context) (Report, error) {
	report := Report{Violations: []Violation{}}

	err := r.store.View(ctx, func(tx store.Tx) error {
		records := map[string]grant.Grant{}
		var order []string
		if err := tx.Grants().Scan(ctx, func(id string, g grant.Grant) error {
			records[id] = g
			order = append(order, id)
			report.Grants++
			switch {
			case !grant.IsID(id):
				report.Violations = append(report.Violations, Violation{Problem: ProblemMalformedID, GrantID: id})
			case grant.DeriveID(g) != id:
				report.Violations = append(report.Violations, Violation{Problem: ProblemWrongID, GrantID: id})
			}
			return nil
		}); err != nil {
			return fmt.Errorf("verify: %w", err)
		}

		for _, name := range store.IndexNames {
			// seen[id] counts how often id is listed under its own key.
			seen := map[string]int{}
			if err := tx.Index(name).Scan(ctx, func(key string, ids []string) error {
				for _, id := range ids {
					g, ok := records[id]
					switch {
					case !ok:
						report.Violations = append(report.Violations,
							Violation{Problem: ProblemDangling, GrantID: id, Index: name, Key: key})
					case store.KeyOf(name, g) != key:
						report.Violations = append(report.Violations,
							Violation{Problem: ProblemWrongKey, GrantID: id, Index: name, Key: key})
					default:
						seen[id]++
						if seen[id] == 2 {
							report.Violations = append(report.Violations,
								Violation{Problem: ProblemDuplicate, GrantID: id, Index: name, Key: key})
						}
					}
				}
				return nil
			}); err != nil {
				return fmt.Errorf("verify: %w", err)
			}

			for _, id := range order {
				if seen[id] == 0 {
					report.Violations = append(report.Violations,
						Violation{Problem: ProblemNotIndexed, GrantID: id, Index: name, Key: store.KeyOf(name, records[id])})
				}
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	r.logger(ctx, "verify").Debug("verify finished",
		zap.Int("grants", report.Grants),
		zap.Int("violations", len(report.Violations)))
	return report, nil
}
