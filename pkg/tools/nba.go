package tools

import (
	"fmt"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/nba"
	"github.com/richard-senior/nbapredict/pkg/protocol"
	"github.com/richard-senior/nbapredict/pkg/util"
)

// NBAService is what the tools need from the prediction facade
type NBAService interface {
	RunAcquisition() (*nba.Report, error)
	PredictBaseline(team1, team2 string) (map[string]float64, error)
	PredictClassifier(team1, team2 string, retrain bool) (nba.Matchup, error)
	ListPlayers(team string, season int) ([]nba.RosterEntry, error)
	PredictPlayerScores(team string, season int) ([]nba.PlayerScore, error)
}

// HandlerFunc handles the arguments of one tool call
type HandlerFunc func(params any) (any, error)

// Registration pairs a tool definition with its handler
type Registration struct {
	Tool    protocol.Tool
	Handler HandlerFunc
}

// NBATools exposes an NBAService as MCP tools
type NBATools struct {
	svc NBAService
}

// NewNBATools wraps svc
func NewNBATools(svc NBAService) *NBATools {
	return &NBATools{svc: svc}
}

// Registrations lists every tool with its handler
func (n *NBATools) Registrations() []Registration {
	return []Registration{
		{FetchDataTool(), n.HandleFetchData},
		{PredictScoreTool(), n.HandlePredictScore},
		{PredictWinnerTool(), n.HandlePredictWinner},
		{ListPlayersTool(), n.HandleListPlayers},
		{PlayerScoresTool(), n.HandlePlayerScores},
	}
}

/////////////////////////////////////////////////////////////////////////
////// Definitions
/////////////////////////////////////////////////////////////////////////

var teamCodeHelp = "Three letter team code as used by basketball-reference, eg BOS, LAL, MIL, BRK, CHO, PHO"

func matchupSchema() protocol.InputSchema {
	return protocol.InputSchema{
		Type: "object",
		Properties: map[string]protocol.ToolProperty{
			"team1": {Type: "string", Description: "The visiting team. " + teamCodeHelp},
			"team2": {Type: "string", Description: "The home team. " + teamCodeHelp},
		},
		Required: []string{"team1", "team2"},
	}
}

func rosterSchema() protocol.InputSchema {
	return protocol.InputSchema{
		Type: "object",
		Properties: map[string]protocol.ToolProperty{
			"team":   {Type: "string", Description: teamCodeHelp},
			"season": {Type: "number", Description: "Season by its ending year, 2021 is the 2020-21 season. Defaults to the current season"},
		},
		Required: []string{"team"},
	}
}

func FetchDataTool() protocol.Tool {
	return protocol.Tool{
		Name: "nba_fetch_data",
		Description: `
		Downloads NBA schedules and rosters for the configured teams and seasons into the local database.
		Keys that are already stored are skipped, so running it again is cheap.
		Returns the outcome of every team and season.
		`,
		InputSchema: protocol.InputSchema{Type: "object", Required: []string{}},
	}
}

func PredictScoreTool() protocol.Tool {
	return protocol.Tool{
		Name:        "nba_predict_score",
		Description: "Predicts each team's score as its historical average across every stored game",
		InputSchema: matchupSchema(),
	}
}

func PredictWinnerTool() protocol.Tool {
	schema := matchupSchema()
	schema.Properties["retrain"] = protocol.ToolProperty{
		Type:        "boolean",
		Description: "Retrain the model on the stored games before predicting. Defaults to false",
	}
	return protocol.Tool{
		Name: "nba_predict_winner",
		Description: `
		Predicts the winner of team1 visiting team2 with a neural network trained on stored results.
		Returns the winner and the probability of that outcome.
		`,
		InputSchema: schema,
	}
}

func ListPlayersTool() protocol.Tool {
	return protocol.Tool{
		Name:        "nba_list_players",
		Description: "Lists a team's roster for a season from the local database",
		InputSchema: rosterSchema(),
	}
}

func PlayerScoresTool() protocol.Tool {
	return protocol.Tool{
		Name:        "nba_player_scores",
		Description: "Points per game of every player on a team's roster for a season. Missing stats are looked up online",
		InputSchema: rosterSchema(),
	}
}

/////////////////////////////////////////////////////////////////////////
////// Handlers
/////////////////////////////////////////////////////////////////////////

func (n *NBATools) HandleFetchData(params any) (any, error) {
	report, err := n.svc.RunAcquisition()
	if err != nil {
		return nil, err
	}
	return protocol.NewToolResult(report)
}

func (n *NBATools) HandlePredictScore(params any) (any, error) {
	team1, team2, err := teamsFrom(params)
	if err != nil {
		return nil, err
	}
	prediction, err := n.svc.PredictBaseline(team1, team2)
	if err != nil {
		return nil, err
	}
	return protocol.NewToolResult(prediction)
}

func (n *NBATools) HandlePredictWinner(params any) (any, error) {
	team1, team2, err := teamsFrom(params)
	if err != nil {
		return nil, err
	}
	retrain := false
	if m, ok := params.(map[string]any); ok {
		if retrain, err = util.GetAsBool(m["retrain"]); err != nil {
			return nil, err
		}
	}
	matchup, err := n.svc.PredictClassifier(team1, team2, retrain)
	if err != nil {
		return nil, err
	}
	logger.Info("Predicted", matchup.Visitor, "at", matchup.Home, "winner", matchup.Winner)
	return protocol.NewToolResult(matchup)
}

func (n *NBATools) HandleListPlayers(params any) (any, error) {
	team, season, err := rosterArgs(params)
	if err != nil {
		return nil, err
	}
	players, err := n.svc.ListPlayers(team, season)
	if err != nil {
		return nil, err
	}
	return protocol.NewToolResult(players)
}

func (n *NBATools) HandlePlayerScores(params any) (any, error) {
	team, season, err := rosterArgs(params)
	if err != nil {
		return nil, err
	}
	scores, err := n.svc.PredictPlayerScores(team, season)
	if err != nil {
		return nil, err
	}
	return protocol.NewToolResult(scores)
}

func paramsMap(params any) (map[string]any, error) {
	if params == nil {
		return nil, fmt.Errorf("no params given")
	}
	m, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("couldn't read the parameters as a map")
	}
	return m, nil
}

func teamsFrom(params any) (string, string, error) {
	m, err := paramsMap(params)
	if err != nil {
		return "", "", err
	}
	team1, ok := m["team1"].(string)
	if !ok || team1 == "" {
		return "", "", fmt.Errorf("no team1 parameter was sent")
	}
	team2, ok := m["team2"].(string)
	if !ok || team2 == "" {
		return "", "", fmt.Errorf("no team2 parameter was sent")
	}
	return team1, team2, nil
}

func rosterArgs(params any) (string, int, error) {
	m, err := paramsMap(params)
	if err != nil {
		return "", 0, err
	}
	team, err := util.GetAsString(m["team"])
	if err != nil || team == "" {
		return "", 0, fmt.Errorf("no team parameter was sent")
	}
	season := 0
	if raw, ok := m["season"]; ok && raw != nil {
		if season, err = util.GetAsInteger(raw); err != nil {
			return "", 0, fmt.Errorf("invalid season: %w", err)
		}
	}
	return team, season, nil
}
