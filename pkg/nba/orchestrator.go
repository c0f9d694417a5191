package nba

import (
	"fmt"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/metrics"
)

// KeyState is the lifecycle of one acquisition key:
// Pending then Skipped, or Fetching then Stored or Failed
type KeyState string

const (
	StatePending  KeyState = "pending"
	StateSkipped  KeyState = "skipped"
	StateFetching KeyState = "fetching"
	StateStored   KeyState = "stored"
	StateFailed   KeyState = "failed"
)

// Stages run for every key, in this order
const (
	StageGames  = "games"
	StageRoster = "roster"
)

// leagueKey labels season wide outcomes produced from the league schedule
const leagueKey = "NBA"

// KeyOutcome is the terminal state of one stage of one key
type KeyOutcome struct {
	Team    string   `json:"team"`
	Season  int      `json:"season"`
	Stage   string   `json:"stage"`
	State   KeyState `json:"state"`
	Records int      `json:"records"`
	Error   string   `json:"error,omitempty"`
}

// Report lists every outcome of one acquisition run in traversal order
type Report struct {
	Outcomes []KeyOutcome `json:"outcomes"`
}

// Count returns how many outcomes ended in state
func (r *Report) Count(state KeyState) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Records returns the number of rows stored by the run
func (r *Report) Records() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Records
	}
	return n
}

// Orchestrator drives Fetcher, Extractor and Repository across teams and seasons.
// It is sequential and blocking
type Orchestrator struct {
	repo    *Repository
	fetcher Fetcher
	config  *Config
}

// NewOrchestrator returns an orchestrator over repo and fetcher
func NewOrchestrator(repo *Repository, fetcher Fetcher, config *Config) *Orchestrator {
	return &Orchestrator{repo: repo, fetcher: fetcher, config: config}
}

// Run visits every season and team once. Fetch failures are recorded and the
// run continues, only storage errors abort it
func (o *Orchestrator) Run() (*Report, error) {
	report := &Report{}
	for _, season := range o.config.Seasons {
		if o.config.ScheduleSource == ScheduleSourceLeague {
			outcome, err := o.leagueGames(season)
			if err != nil {
				return report, err
			}
			o.record(report, outcome)
		}
		for _, team := range o.config.Teams {
			if o.config.ScheduleSource != ScheduleSourceLeague {
				outcome, err := o.teamGames(team, season)
				if err != nil {
					return report, err
				}
				o.record(report, outcome)
			}
			outcome, err := o.roster(team, season)
			if err != nil {
				return report, err
			}
			o.record(report, outcome)
		}
	}
	logger.Inform(fmt.Sprintf("Acquisition finished: %d stored, %d skipped, %d failed, %d records",
		report.Count(StateStored), report.Count(StateSkipped), report.Count(StateFailed), report.Records()))
	return report, nil
}

func (o *Orchestrator) record(report *Report, outcome KeyOutcome) {
	metrics.RecordAcquisitionKey(outcome.Stage, string(outcome.State))
	if outcome.State == StateFailed {
		logger.Warn(fmt.Sprintf("%s %s %d failed: %s", outcome.Stage, outcome.Team, outcome.Season, outcome.Error))
	} else {
		logger.Debug(fmt.Sprintf("%s %s %d %s", outcome.Stage, outcome.Team, outcome.Season, outcome.State))
	}
	report.Outcomes = append(report.Outcomes, outcome)
}

func (o *Orchestrator) teamGames(team string, season int) (KeyOutcome, error) {
	outcome := KeyOutcome{Team: team, Season: season, Stage: StageGames, State: StatePending}
	has, err := o.repo.HasGames(team, season)
	if err != nil {
		return outcome, err
	}
	if has {
		outcome.State = StateSkipped
		return outcome, nil
	}

	outcome.State = StateFetching
	doc, err := o.fetcher.Fetch(TeamScheduleURL(o.config.BaseURL, team, season))
	if err != nil {
		return failed(outcome, err), nil
	}
	n, err := o.repo.SaveGames(ParseTeamGames(doc, team, season))
	if err != nil {
		return outcome, err
	}
	return stored(outcome, StageGames, n), nil
}

// leagueGames reads the season index and every month page it links, storing
// all games of the season. Skipped once every configured team has games
func (o *Orchestrator) leagueGames(season int) (KeyOutcome, error) {
	outcome := KeyOutcome{Team: leagueKey, Season: season, Stage: StageGames, State: StatePending}
	has, err := o.repo.HasSeasonGames(o.config.Teams, season)
	if err != nil {
		return outcome, err
	}
	if has {
		outcome.State = StateSkipped
		return outcome, nil
	}

	outcome.State = StateFetching
	index, err := o.fetcher.Fetch(SeasonScheduleURL(o.config.BaseURL, season))
	if err != nil {
		return failed(outcome, err), nil
	}
	months := ParseScheduleMonths(index, o.config.BaseURL)
	if len(months) == 0 {
		// single page seasons keep the schedule table on the index itself
		n, err := o.repo.SaveGames(ParseGames(index, season))
		if err != nil {
			return outcome, err
		}
		return stored(outcome, StageGames, n), nil
	}

	total := 0
	var lastErr error
	for _, u := range months {
		doc, err := o.fetcher.Fetch(u)
		if err != nil {
			lastErr = err
			continue
		}
		n, err := o.repo.SaveGames(ParseGames(doc, season))
		if err != nil {
			return outcome, err
		}
		total += n
	}
	if total == 0 && lastErr != nil {
		return failed(outcome, lastErr), nil
	}
	return stored(outcome, StageGames, total), nil
}

func (o *Orchestrator) roster(team string, season int) (KeyOutcome, error) {
	outcome := KeyOutcome{Team: team, Season: season, Stage: StageRoster, State: StatePending}
	has, err := o.repo.HasPlayerSeason(team, season)
	if err != nil {
		return outcome, err
	}
	if has {
		outcome.State = StateSkipped
		return outcome, nil
	}

	outcome.State = StateFetching
	doc, err := o.fetcher.Fetch(RosterURL(o.config.BaseURL, team, season))
	if err != nil {
		return failed(outcome, err), nil
	}
	n, err := o.repo.SaveRoster(ParseRoster(doc, team, season))
	if err != nil {
		return outcome, err
	}
	return stored(outcome, StageRoster, n), nil
}

func failed(outcome KeyOutcome, err error) KeyOutcome {
	outcome.State = StateFailed
	outcome.Error = err.Error()
	return outcome
}

func stored(outcome KeyOutcome, kind string, n int) KeyOutcome {
	metrics.RecordStored(kind, n)
	outcome.State = StateStored
	outcome.Records = n
	return outcome
}
