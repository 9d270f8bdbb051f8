package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qchockey/lheqstats/internal/domain/goalie"
	"github.com/qchockey/lheqstats/internal/domain/player"
	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/domain/team"
	"github.com/qchockey/lheqstats/internal/platform/cache"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

type PipelineInput struct {
	// Steps selects which stages run; dependencies are pulled in
	// automatically and "all" expands to every stage.
	Steps []string
	// SkipGoalies runs the season without the starting-goalie feed,
	// leaving every dressed goalie credited.
	SkipGoalies bool
	SkipLogos   bool
	// DryRun computes everything but writes nothing.
	DryRun bool
}

type PipelineResult struct {
	RequestedSteps []string             `json:"requested_steps"`
	StepCount      int                  `json:"step_count"`
	SuccessCount   int                  `json:"success_count"`
	FailedCount    int                  `json:"failed_count"`
	SkippedCount   int                  `json:"skipped_count"`
	GamesLoaded    int                  `json:"games_loaded"`
	Load           LoadReport           `json:"load"`
	Steps          []PipelineStepResult `json:"steps"`
	Files          []string             `json:"files,omitempty"`
}

type PipelineStepResult struct {
	Step       string `json:"step"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type pipelineStepKind string

const (
	pipelineStatusSuccess = "success"
	pipelineStatusFailed  = "failed"
	pipelineStatusSkipped = "skipped"

	pipelineStepGoalies    pipelineStepKind = "goalies"
	pipelineStepStats      pipelineStepKind = "stats"
	pipelineStepDivisions  pipelineStepKind = "divisions"
	pipelineStepFormations pipelineStepKind = "formations"
	pipelineStepLogos      pipelineStepKind = "logos"
	pipelineStepReport     pipelineStepKind = "report"
)

// PipelineService runs the season build end to end: load once, then the
// selected steps in dependency order, then the report. Only a statistics
// failure (or a season with no usable games) is fatal; every other step
// failure becomes a row in the run summary.
type PipelineService struct {
	loader     *RecordLoaderService
	goalies    *GoalieCreditService
	stats      *StatsService
	divisions  *DivisionService
	formations *FormationService
	assets     *AssetService
	report     *ReportService
	logger     *logging.Logger
}

func NewPipelineService(
	loader *RecordLoaderService,
	goalies *GoalieCreditService,
	stats *StatsService,
	divisions *DivisionService,
	formations *FormationService,
	assets *AssetService,
	report *ReportService,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		loader:     loader,
		goalies:    goalies,
		stats:      stats,
		divisions:  divisions,
		formations: formations,
		assets:     assets,
		report:     report,
		logger:     logger,
	}
}

// pipelineState memoizes the artifacts steps share within one run, so the
// snapshot is loaded once and the goalie credits are computed once no
// matter which steps consume them.
type pipelineState struct {
	svc         *PipelineService
	artifacts   *cache.Store
	skipGoalies bool
}

type loadedSeason struct {
	snap   *season.Snapshot
	report LoadReport
}

type starterArtifact struct {
	starters goalie.StarterMap
	// note carries the degradation reason when the feed could not be
	// used; empty means the feed applied cleanly.
	note string
}

type creditsArtifact struct {
	credits []goalie.GameCredit
	report  CreditReport
	note    string
}

func (st *pipelineState) loadSeason(ctx context.Context) (*loadedSeason, error) {
	v, err := st.artifacts.GetOrLoad(ctx, "season", func(ctx context.Context) (any, error) {
		snap, report, err := st.svc.loader.LoadSeason(ctx)
		if err != nil {
			return nil, err
		}
		return &loadedSeason{snap: snap, report: report}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*loadedSeason), nil
}

func (st *pipelineState) loadStarters(ctx context.Context) *starterArtifact {
	v, _ := st.artifacts.GetOrLoad(ctx, "starters", func(ctx context.Context) (any, error) {
		if st.skipGoalies {
			return &starterArtifact{starters: goalie.StarterMap{}, note: "starting-goalie refinement disabled"}, nil
		}
		starters, err := st.svc.goalies.LoadStarters(ctx)
		if err != nil {
			st.svc.logger.WarnContext(ctx, "starter map unavailable, crediting dressed goalies", "error", err)
			return &starterArtifact{starters: goalie.StarterMap{}, note: err.Error()}, nil
		}
		return &starterArtifact{starters: starters}, nil
	})
	return v.(*starterArtifact)
}

func (st *pipelineState) loadCredits(ctx context.Context) (*creditsArtifact, error) {
	v, err := st.artifacts.GetOrLoad(ctx, "credits", func(ctx context.Context) (any, error) {
		ls, err := st.loadSeason(ctx)
		if err != nil {
			return nil, err
		}
		sa := st.loadStarters(ctx)
		credits, report, err := st.svc.goalies.Credits(ctx, ls.snap, sa.starters)
		if err != nil {
			return nil, err
		}
		return &creditsArtifact{credits: credits, report: report, note: sa.note}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*creditsArtifact), nil
}

func (st *pipelineState) loadTeams(ctx context.Context) ([]team.SeasonStats, error) {
	v, err := st.artifacts.GetOrLoad(ctx, "teams", func(ctx context.Context) (any, error) {
		ls, err := st.loadSeason(ctx)
		if err != nil {
			return nil, err
		}
		return st.svc.stats.TeamSeason(ctx, ls.snap)
	})
	if err != nil {
		return nil, err
	}
	return v.([]team.SeasonStats), nil
}

func (st *pipelineState) loadPlayers(ctx context.Context) ([]player.SeasonStats, error) {
	v, err := st.artifacts.GetOrLoad(ctx, "players", func(ctx context.Context) (any, error) {
		ls, err := st.loadSeason(ctx)
		if err != nil {
			return nil, err
		}
		ca, err := st.loadCredits(ctx)
		if err != nil {
			return nil, err
		}
		return st.svc.stats.PlayerSeason(ctx, ls.snap, ca.credits)
	})
	if err != nil {
		return nil, err
	}
	return v.([]player.SeasonStats), nil
}

// Run executes the selected steps. The returned error is non-nil only when
// the season cannot be loaded at all or the statistics step fails; the
// per-step outcome for everything else lives in the result rows.
func (s *PipelineService) Run(ctx context.Context, input PipelineInput) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	kinds, requested, err := normalizePipelineSteps(input.Steps)
	if err != nil {
		return PipelineResult{}, err
	}
	kinds = expandPipelineSteps(kinds)

	result := PipelineResult{RequestedSteps: requested}
	state := &pipelineState{
		svc:         s,
		artifacts:   cache.NewStore(0),
		skipGoalies: input.SkipGoalies,
	}

	ls, err := state.loadSeason(ctx)
	if err != nil {
		return result, err
	}
	result.Load = ls.report
	result.GamesLoaded = ls.snap.Len()

	reportInput := ReportInput{Snapshot: ls.snap}
	var fatal error
	for _, kind := range kinds {
		start := time.Now()
		records, status, message := s.runPipelineStep(ctx, state, kind, input, &reportInput)
		row := PipelineStepResult{
			Step:       string(kind),
			Status:     status,
			Records:    records,
			Message:    message,
			DurationMs: time.Since(start).Milliseconds(),
		}
		result.Steps = append(result.Steps, row)
		s.logger.InfoContext(ctx, "pipeline step finished",
			"step", row.Step, "status", row.Status, "records", row.Records, "duration_ms", row.DurationMs)
		if kind == pipelineStepStats && status == pipelineStatusFailed {
			fatal = fmt.Errorf("statistics step failed: %s", message)
		}
	}

	result.Steps = append(result.Steps, s.writeReport(ctx, input, reportInput, &result))

	for _, row := range result.Steps {
		switch row.Status {
		case pipelineStatusSuccess:
			result.SuccessCount++
		case pipelineStatusSkipped:
			result.SkippedCount++
		default:
			result.FailedCount++
		}
	}
	result.StepCount = len(result.Steps)

	s.logger.InfoContext(ctx, "pipeline finished",
		"steps", result.StepCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
		"games", result.GamesLoaded,
	)
	return result, fatal
}

func (s *PipelineService) runPipelineStep(
	ctx context.Context,
	state *pipelineState,
	kind pipelineStepKind,
	input PipelineInput,
	reportInput *ReportInput,
) (int, string, string) {
	switch kind {
	case pipelineStepGoalies:
		ca, err := state.loadCredits(ctx)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		if ca.note != "" {
			return len(ca.credits), pipelineStatusSkipped, ca.note
		}
		if ca.report.ExplicitGames == 0 {
			return len(ca.credits), pipelineStatusSkipped, "starter map covered no loaded game"
		}
		return len(ca.credits), pipelineStatusSuccess, ""
	case pipelineStepStats:
		teams, err := state.loadTeams(ctx)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		players, err := state.loadPlayers(ctx)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		reportInput.Teams = teams
		reportInput.Players = players
		return len(teams) + len(players), pipelineStatusSuccess, ""
	case pipelineStepDivisions:
		ls, err := state.loadSeason(ctx)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		assignments, summary, err := s.divisions.Assign(ctx, ls.snap)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		reportInput.Assignments = assignments
		reportInput.DivisionSummary = summary
		return len(assignments), pipelineStatusSuccess, ""
	case pipelineStepFormations:
		ls, err := state.loadSeason(ctx)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		formations, err := s.formations.Infer(ctx, ls.snap)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		reportInput.Formations = formations
		return len(formations), pipelineStatusSuccess, ""
	case pipelineStepLogos:
		if input.SkipLogos {
			return 0, pipelineStatusSkipped, "logo fetch disabled by flag"
		}
		if input.DryRun {
			return 0, pipelineStatusSkipped, "dry run"
		}
		ls, err := state.loadSeason(ctx)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		res, err := s.assets.FetchLogos(ctx, ls.snap)
		if err != nil {
			return 0, pipelineStatusFailed, err.Error()
		}
		if res.Fetched == 0 && res.Failed == 0 {
			return 0, pipelineStatusSkipped, fmt.Sprintf("nothing fetched, %d skipped", res.Skipped)
		}
		message := ""
		if res.Failed > 0 {
			message = fmt.Sprintf("%d of %d downloads failed", res.Failed, res.Requested)
		}
		return res.Fetched, pipelineStatusSuccess, message
	default:
		return 0, pipelineStatusSkipped, "unsupported step"
	}
}

func (s *PipelineService) writeReport(ctx context.Context, input PipelineInput, reportInput ReportInput, result *PipelineResult) PipelineStepResult {
	start := time.Now()
	row := PipelineStepResult{Step: string(pipelineStepReport)}
	if input.DryRun {
		row.Status = pipelineStatusSkipped
		row.Message = "dry run"
		row.DurationMs = time.Since(start).Milliseconds()
		return row
	}

	out, err := s.report.WriteAll(ctx, reportInput)
	result.Files = out.Files
	row.Records = len(out.Files)
	row.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		row.Status = pipelineStatusFailed
		row.Message = err.Error()
		return row
	}
	row.Status = pipelineStatusSuccess
	return row
}

func normalizePipelineSteps(raw []string) ([]pipelineStepKind, []string, error) {
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("%w: steps are required", ErrInvalidInput)
	}

	seen := make(map[pipelineStepKind]struct{}, len(raw))
	kinds := make([]pipelineStepKind, 0, len(raw))
	requested := make([]string, 0, len(raw))
	add := func(kind pipelineStepKind) {
		if _, exists := seen[kind]; exists {
			return
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
	}
	for _, item := range raw {
		normalized := normalizePipelineKey(item)
		if normalized == "" {
			continue
		}
		if normalized == "all" {
			for _, kind := range []pipelineStepKind{pipelineStepGoalies, pipelineStepStats, pipelineStepDivisions, pipelineStepFormations, pipelineStepLogos} {
				add(kind)
			}
			requested = append(requested, normalized)
			continue
		}
		kind, ok := toPipelineStepKind(normalized)
		if !ok {
			return nil, nil, fmt.Errorf("%w: unsupported step=%s", ErrInvalidInput, item)
		}
		add(kind)
		requested = append(requested, normalized)
	}
	if len(kinds) == 0 {
		return nil, nil, fmt.Errorf("%w: steps are required", ErrInvalidInput)
	}
	return kinds, requested, nil
}

func toPipelineStepKind(value string) (pipelineStepKind, bool) {
	switch value {
	case "goalies", "goalie", "goalie_parsing", "starters":
		return pipelineStepGoalies, true
	case "stats", "statistics", "standings":
		return pipelineStepStats, true
	case "divisions", "division":
		return pipelineStepDivisions, true
	case "formations", "formation", "lines":
		return pipelineStepFormations, true
	case "logos", "logo", "assets":
		return pipelineStepLogos, true
	default:
		return "", false
	}
}

func normalizePipelineKey(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "-", "_")
	value = strings.ReplaceAll(value, " ", "_")
	return value
}

// expandPipelineSteps pulls in dependencies and fixes execution order:
// statistics consume the goalie credits, so goalies always precede stats.
func expandPipelineSteps(kinds []pipelineStepKind) []pipelineStepKind {
	want := make(map[pipelineStepKind]bool, len(kinds))
	for _, kind := range kinds {
		want[kind] = true
	}
	if want[pipelineStepStats] {
		want[pipelineStepGoalies] = true
	}

	ordered := []pipelineStepKind{pipelineStepGoalies, pipelineStepStats, pipelineStepDivisions, pipelineStepFormations, pipelineStepLogos}
	out := make([]pipelineStepKind, 0, len(ordered))
	for _, kind := range ordered {
		if want[kind] {
			out = append(out, kind)
		}
	}
	return out
}
