package usecase

import (
	"context"
	"fmt"

	"github.com/qchockey/lheqstats/internal/domain/division"
	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/platform/logging"
	"github.com/qchockey/lheqstats/internal/platform/similarity"
)

// DivisionService places every observed team into a charted division.
// Matching runs alias substitution, then a normalized exact match, then a
// fuzzy pass; it reads nothing but team names from the snapshot, so it is
// independent of the stat builders.
type DivisionService struct {
	chart     division.ChartRepository
	threshold float64
	logger    *logging.Logger
}

func NewDivisionService(chart division.ChartRepository, threshold float64, logger *logging.Logger) *DivisionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DivisionService{chart: chart, threshold: threshold, logger: logger}
}

// Assign matches every team id in the snapshot against the chart. Teams
// whose best score never clears the threshold land in the Unassigned bucket
// but keep their best score and candidate for diagnostics.
func (s *DivisionService) Assign(ctx context.Context, snap *season.Snapshot) ([]division.Assignment, division.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DivisionService.Assign")
	defer span.End()

	if snap == nil || snap.Len() == 0 {
		return nil, division.Summary{}, fmt.Errorf("%w: season snapshot is empty", ErrNoGameData)
	}
	if s.chart == nil {
		return nil, division.Summary{}, fmt.Errorf("%w: division chart repository not configured", ErrDependencyUnavailable)
	}

	chart, err := s.chart.GetChart(ctx)
	if err != nil {
		return nil, division.Summary{}, fmt.Errorf("load division chart: %w", err)
	}
	if err := chart.Validate(); err != nil {
		return nil, division.Summary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	entries := chart.Entries()
	aliases := normalizedAliases(chart.Aliases)

	assignments := make([]division.Assignment, 0, 32)
	for _, teamID := range snap.TeamIDs() {
		name := snap.NameOf(teamID)
		a := s.matchTeam(name, entries, aliases)
		a.TeamID = teamID
		a.TeamName = name
		if a.IsUnassigned() {
			s.logger.WarnContext(ctx, "team left unassigned",
				"team_id", teamID,
				"team_name", name,
				"best_score", a.Score,
				"best_entry", a.MatchedName,
			)
			a.MatchedName = ""
		}
		assignments = append(assignments, a)
	}

	summary := division.Summarize(assignments)
	s.logger.InfoContext(ctx, "divisions assigned",
		"teams", summary.Total,
		"unassigned", summary.Divisions[division.Unassigned],
	)
	return assignments, summary, nil
}

func (s *DivisionService) matchTeam(name string, entries []division.Entry, aliases map[string]string) division.Assignment {
	normalized := similarity.Normalize(name)
	if canonical, ok := aliases[normalized]; ok {
		normalized = canonical
	}

	for _, entry := range entries {
		if similarity.Normalize(entry.Name) == normalized {
			return division.Assignment{
				Division:    entry.Division,
				Method:      division.MethodExact,
				MatchedName: entry.Name,
				Score:       1,
			}
		}
	}

	best := division.Entry{}
	bestScore := 0.0
	for _, entry := range entries {
		score := similarity.RatioNormalized(normalized, similarity.Normalize(entry.Name))
		// Strictly greater keeps the earliest chart row on ties.
		if score > bestScore {
			bestScore = score
			best = entry
		}
	}
	if bestScore > s.threshold && best.Division != "" {
		return division.Assignment{
			Division:    best.Division,
			Method:      division.MethodFuzzy,
			MatchedName: best.Name,
			Score:       bestScore,
		}
	}
	return division.Assignment{
		Division:    division.Unassigned,
		Method:      division.MethodUnassigned,
		MatchedName: best.Name,
		Score:       bestScore,
	}
}

// normalizedAliases rekeys the alias table by normalized raw name and maps
// onto normalized canonical names, so lookups survive accent and case
// drift.
func normalizedAliases(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for from, to := range raw {
		out[similarity.Normalize(from)] = similarity.Normalize(to)
	}
	return out
}
