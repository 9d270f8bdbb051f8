package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/qchockey/lheqstats/internal/domain/formation"
	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

// FormationService infers lines, defense pairs and powerplay units from
// co-scoring evidence. Game sheets never publish shift charts, so the only
// observable signal is which players produce goals together; the inference
// is greedy and deliberately conservative, padding with UnknownMember rather
// than guessing.
type FormationService struct {
	cfg    formation.Config
	logger *logging.Logger
}

func NewFormationService(cfg formation.Config, logger *logging.Logger) (*FormationService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FormationService{cfg: cfg.Normalize(), logger: logger}, nil
}

// Infer builds formations for every team in the snapshot, one entry per
// team in id order. Teams without a finished game come back with empty
// units.
func (s *FormationService) Infer(ctx context.Context, snap *season.Snapshot) ([]formation.TeamFormations, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.Infer")
	defer span.End()

	if snap == nil || snap.Len() == 0 {
		return nil, fmt.Errorf("%w: season snapshot is empty", ErrNoGameData)
	}

	out := make([]formation.TeamFormations, 0, 32)
	for _, teamID := range snap.TeamIDs() {
		ev := gatherTeamEvidence(snap, teamID)
		tf := formation.TeamFormations{
			TeamID:          teamID,
			TeamName:        snap.NameOf(teamID),
			GamesConsidered: ev.games,
			ForwardLines:    s.forwardLines(ev),
			DefensePairs:    s.defensePairs(ev),
			PowerplayUnits:  s.powerplayUnits(ev),
		}
		out = append(out, tf)
	}

	s.logger.InfoContext(ctx, "formations inferred", "teams", len(out))
	return out, nil
}

// pairKey is an unordered player pair, members sorted so {a,b} and {b,a}
// collapse onto one key.
type pairKey struct {
	a, b string
}

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// teamEvidence is everything the inference reads for one team: who dressed
// (in the newest roster's order), who scored with whom, and which groups
// converted on the powerplay.
type teamEvidence struct {
	games       int
	rosterOrder map[string]int
	positions   map[string]game.Position
	pairWeights map[pairKey]int
	soloGoals   map[string]int
	goalSets    []map[string]struct{}
	ppUnits     map[string]int
	ppMembers   map[string][]string
}

func gatherTeamEvidence(snap *season.Snapshot, teamID string) teamEvidence {
	ev := teamEvidence{
		rosterOrder: make(map[string]int, 32),
		positions:   make(map[string]game.Position, 32),
		pairWeights: make(map[pairKey]int, 64),
		soloGoals:   make(map[string]int, 32),
		ppUnits:     make(map[string]int, 16),
		ppMembers:   make(map[string][]string, 16),
	}

	finals := make([]game.Record, 0, 8)
	for _, g := range snap.GamesInvolving(teamID) {
		if g.IsFinal() {
			finals = append(finals, g)
		}
	}
	ev.games = len(finals)

	// Newest roster wins the ordering and position of every player it
	// lists; older games only contribute players who later dropped off.
	for i := len(finals) - 1; i >= 0; i-- {
		for _, entry := range finals[i].RosterFor(teamID) {
			name := strings.TrimSpace(entry.Name)
			if name == "" {
				continue
			}
			if _, ok := ev.rosterOrder[name]; ok {
				continue
			}
			ev.rosterOrder[name] = len(ev.rosterOrder)
			ev.positions[name] = entry.Position
		}
	}

	for _, g := range finals {
		for _, goal := range g.Goals {
			if goal.TeamID != teamID {
				continue
			}
			names := participantNames(goal)
			if len(names) == 0 {
				continue
			}
			if scorer := strings.TrimSpace(goal.Scorer.Name); scorer != "" {
				ev.soloGoals[scorer]++
			}
			set := make(map[string]struct{}, len(names))
			for _, n := range names {
				set[n] = struct{}{}
			}
			ev.goalSets = append(ev.goalSets, set)
			for i := 0; i < len(names); i++ {
				for j := i + 1; j < len(names); j++ {
					ev.pairWeights[newPairKey(names[i], names[j])]++
				}
			}
			if goal.Powerplay && len(names) >= 2 {
				unit := append([]string(nil), names...)
				sort.Strings(unit)
				key := strings.Join(unit, "|")
				ev.ppUnits[key]++
				ev.ppMembers[key] = unit
			}
		}
	}
	return ev
}

// participantNames returns the distinct trimmed names on a goal, scorer
// first.
func participantNames(goal game.Goal) []string {
	out := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	for _, ref := range goal.Participants() {
		name := strings.TrimSpace(ref.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (ev teamEvidence) rosterLess(a, b string) bool {
	ia, oka := ev.rosterOrder[a]
	ib, okb := ev.rosterOrder[b]
	if oka && okb && ia != ib {
		return ia < ib
	}
	if oka != okb {
		return oka
	}
	return a < b
}

func (ev teamEvidence) namesWithPosition(pos game.Position) []string {
	out := make([]string, 0, len(ev.positions))
	for name, p := range ev.positions {
		if p == pos {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool { return ev.rosterLess(out[i], out[j]) })
	return out
}

// coProducedGoals counts team goals in which at least two of the members
// took part. A unit earns credit only for goals it demonstrably produced
// together.
func (ev teamEvidence) coProducedGoals(members []string) int {
	count := 0
	for _, set := range ev.goalSets {
		present := 0
		for _, m := range members {
			if _, ok := set[m]; ok {
				present++
				if present >= 2 {
					count++
					break
				}
			}
		}
	}
	return count
}

func (s *FormationService) forwardLines(ev teamEvidence) []formation.Line {
	forwards := ev.namesWithPosition(game.PositionForward)
	assigned := make(map[string]bool, len(forwards))
	var lineMembers [][]string

	for len(lineMembers) < s.cfg.MaxForwardLines {
		a, b, ok := ev.heaviestPair(forwards, assigned, 1)
		if !ok {
			break
		}
		members := []string{a, b}
		if c, ok := ev.bestThird(forwards, assigned, a, b); ok {
			members = append(members, c)
		}
		for _, m := range members {
			assigned[m] = true
		}
		lineMembers = append(lineMembers, members)
	}

	// Forwards without a shared goal still belong on a line; group the
	// remainder by production so the trailing lines read like a depth
	// chart.
	for _, chunk := range chunkLeftovers(ev, forwards, assigned, 3, s.cfg.MaxForwardLines-len(lineMembers)) {
		lineMembers = append(lineMembers, chunk)
	}

	lines := make([]formation.Line, 0, len(lineMembers))
	for _, members := range lineMembers {
		sort.Slice(members, func(i, j int) bool { return ev.rosterLess(members[i], members[j]) })
		lines = append(lines, formation.Line{
			Type:    formation.LineTypeForward,
			Members: padMembers(members, 3),
			Goals:   ev.coProducedGoals(members),
		})
	}
	return finalizeLines(lines)
}

func (s *FormationService) defensePairs(ev teamEvidence) []formation.Line {
	defenders := ev.namesWithPosition(game.PositionDefense)
	assigned := make(map[string]bool, len(defenders))
	var pairMembers [][]string

	for len(pairMembers) < s.cfg.MaxDefensePairs {
		a, b, ok := ev.heaviestPair(defenders, assigned, s.cfg.MinPairWeight)
		if !ok {
			break
		}
		assigned[a], assigned[b] = true, true
		pairMembers = append(pairMembers, []string{a, b})
	}
	for _, chunk := range chunkLeftovers(ev, defenders, assigned, 2, s.cfg.MaxDefensePairs-len(pairMembers)) {
		pairMembers = append(pairMembers, chunk)
	}

	lines := make([]formation.Line, 0, len(pairMembers))
	for _, members := range pairMembers {
		sort.Slice(members, func(i, j int) bool { return ev.rosterLess(members[i], members[j]) })
		lines = append(lines, formation.Line{
			Type:    formation.LineTypeDefense,
			Members: padMembers(members, 2),
			Goals:   ev.coProducedGoals(members),
		})
	}
	return finalizeLines(lines)
}

// chunkLeftovers groups the pool's unassigned players, heaviest scorers
// first, into lines of the given size.
func chunkLeftovers(ev teamEvidence, pool []string, assigned map[string]bool, size, maxChunks int) [][]string {
	if maxChunks <= 0 {
		return nil
	}
	var leftovers []string
	for _, name := range pool {
		if !assigned[name] {
			leftovers = append(leftovers, name)
		}
	}
	sort.SliceStable(leftovers, func(i, j int) bool {
		if ev.soloGoals[leftovers[i]] != ev.soloGoals[leftovers[j]] {
			return ev.soloGoals[leftovers[i]] > ev.soloGoals[leftovers[j]]
		}
		return ev.rosterLess(leftovers[i], leftovers[j])
	})

	var chunks [][]string
	for len(chunks) < maxChunks && len(leftovers) > 0 {
		n := len(leftovers)
		if n > size {
			n = size
		}
		chunk := append([]string(nil), leftovers[:n]...)
		chunks = append(chunks, chunk)
		leftovers = leftovers[n:]
	}
	return chunks
}

func padMembers(members []string, size int) []string {
	out := append([]string(nil), members...)
	for len(out) < size {
		out = append(out, formation.UnknownMember)
	}
	return out
}

func (s *FormationService) powerplayUnits(ev teamEvidence) []formation.Line {
	keys := make([]string, 0, len(ev.ppUnits))
	for key := range ev.ppUnits {
		keys = append(keys, key)
	}
	unitGoals := func(key string) int {
		total := 0
		for _, m := range ev.ppMembers[key] {
			total += ev.soloGoals[m]
		}
		return total
	}
	sort.Slice(keys, func(i, j int) bool {
		if ev.ppUnits[keys[i]] != ev.ppUnits[keys[j]] {
			return ev.ppUnits[keys[i]] > ev.ppUnits[keys[j]]
		}
		if gi, gj := unitGoals(keys[i]), unitGoals(keys[j]); gi != gj {
			return gi > gj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > s.cfg.MaxPowerplayUnits {
		keys = keys[:s.cfg.MaxPowerplayUnits]
	}

	lines := make([]formation.Line, 0, len(keys))
	for _, key := range keys {
		members := append([]string(nil), ev.ppMembers[key]...)
		sort.Slice(members, func(i, j int) bool { return ev.rosterLess(members[i], members[j]) })
		lines = append(lines, formation.Line{
			Type:    formation.LineTypePowerplay,
			Members: members,
			Goals:   ev.ppUnits[key],
		})
	}
	return finalizeLines(lines)
}

// heaviestPair finds the unassigned pair with the most shared goals, at or
// above minWeight. Ties fall to combined individual goals, then to roster
// order.
func (ev teamEvidence) heaviestPair(pool []string, assigned map[string]bool, minWeight int) (string, string, bool) {
	bestA, bestB := "", ""
	bestWeight, bestGoals := 0, 0
	for i := 0; i < len(pool); i++ {
		if assigned[pool[i]] {
			continue
		}
		for j := i + 1; j < len(pool); j++ {
			if assigned[pool[j]] {
				continue
			}
			w := ev.pairWeights[newPairKey(pool[i], pool[j])]
			if w < minWeight {
				continue
			}
			goals := ev.soloGoals[pool[i]] + ev.soloGoals[pool[j]]
			if w > bestWeight || (w == bestWeight && goals > bestGoals) {
				bestA, bestB = pool[i], pool[j]
				bestWeight, bestGoals = w, goals
			}
		}
	}
	if bestA == "" {
		return "", "", false
	}
	return bestA, bestB, true
}

// bestThird picks the unassigned candidate sharing the most goals with the
// pair. Without any positive link the slot stays unknown rather than
// drafting an arbitrary teammate.
func (ev teamEvidence) bestThird(pool []string, assigned map[string]bool, a, b string) (string, bool) {
	best := ""
	bestLink, bestGoals := 0, 0
	for _, c := range pool {
		if c == a || c == b || assigned[c] {
			continue
		}
		link := ev.pairWeights[newPairKey(a, c)] + ev.pairWeights[newPairKey(b, c)]
		if link <= 0 {
			continue
		}
		goals := ev.soloGoals[c]
		if link > bestLink || (link == bestLink && goals > bestGoals) {
			best = c
			bestLink, bestGoals = link, goals
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// finalizeLines orders a unit type by production and stamps rank and
// confidence relative to the strongest unit.
func finalizeLines(lines []formation.Line) []formation.Line {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Goals > lines[j].Goals })
	best := 0
	if len(lines) > 0 {
		best = lines[0].Goals
	}
	for i := range lines {
		lines[i].Rank = i + 1
		lines[i].Confidence = formation.Confidence(lines[i].Goals, best)
	}
	return lines
}
