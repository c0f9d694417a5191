package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/richard-senior/nbapredict/internal/config"
	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/metrics"
	"github.com/richard-senior/nbapredict/pkg/nba"
	"github.com/richard-senior/nbapredict/pkg/server"
	"github.com/richard-senior/nbapredict/pkg/transport"
)

const usage = `usage: nbapredict <command> [args]

commands:
  fetch                      download schedules and rosters into the database
  predict TEAM1 TEAM2        average score of each team over the stored games
  winner [-retrain] T1 T2    neural network winner of T1 visiting T2
  players TEAM [SEASON]      roster of a team
  scores TEAM [SEASON]       points per game of every rostered player
  serve                      MCP server on stdin/stdout

configuration is read from the YAML file named by NBA_CONFIG and NBA_* env vars`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	if err := setupLogging(cfg, command == "serve"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Default().Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	if err := run(cfg, command, args); err != nil {
		logger.Error(command, "failed:", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		logger.Default().Close()
		os.Exit(1)
	}
}

// setupLogging keeps stdout free for protocol frames when serving
func setupLogging(cfg *config.Config, serving bool) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetShowDateTime(true)

	output := cfg.LogOutput
	if serving {
		output = logger.OutputFile
	}
	return logger.SetLogOutput(output, cfg.LogFile)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("Serving metrics on", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics listener stopped:", err)
	}
}

func run(cfg *config.Config, command string, args []string) error {
	svc, err := nba.NewService(cfg.NBA(), nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	switch command {
	case "fetch":
		report, err := svc.RunAcquisition()
		if err != nil {
			return err
		}
		logger.Inform("Acquisition finished:", report.Records(), "records,",
			report.Count(nba.StateFailed), "failed,", report.Count(nba.StateSkipped), "skipped")
		return printJSON(report)

	case "predict":
		if len(args) != 2 {
			return fmt.Errorf("predict needs two teams")
		}
		prediction, err := svc.PredictBaseline(args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(prediction)

	case "winner":
		fs := flag.NewFlagSet("winner", flag.ContinueOnError)
		retrain := fs.Bool("retrain", false, "retrain the model before predicting")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 2 {
			return fmt.Errorf("winner needs two teams")
		}
		matchup, err := svc.PredictClassifier(fs.Arg(0), fs.Arg(1), *retrain)
		if err != nil {
			return err
		}
		return printJSON(matchup)

	case "players", "scores":
		team, season, err := rosterArgs(command, args)
		if err != nil {
			return err
		}
		if command == "players" {
			players, err := svc.ListPlayers(team, season)
			if err != nil {
				return err
			}
			return printJSON(players)
		}
		scores, err := svc.PredictPlayerScores(team, season)
		if err != nil {
			return err
		}
		return printJSON(scores)

	case "serve":
		return server.NewNBAServer(transport.NewStdioTransport(), svc).Start()

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func rosterArgs(command string, args []string) (string, int, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", 0, fmt.Errorf("%s needs a team and an optional season", command)
	}
	if len(args) == 1 {
		return args[0], 0, nil
	}
	season, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid season %q: %w", args[1], err)
	}
	return args[0], season, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
