package nba

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testBase = "https://example.test"

// fakeFetcher serves canned pages and answers 404 for everything else
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}}
}

func (f *fakeFetcher) Fetch(url string) (*Document, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, &FetchFailure{URL: url, Reason: "non-success status", StatusCode: 404}
	}
	return NewDocument(url, []byte(body))
}

func mustDocument(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := NewDocument(testBase+"/test.html", []byte(body))
	require.NoError(t, err)
	return doc
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	repo, err := NewRepository(store)
	require.NoError(t, err)
	return repo
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	config := DefaultConfig()
	config.BaseURL = testBase
	config.DbPath = ":memory:"
	config.ModelPath = t.TempDir() + "/model.json"
	config.Teams = []string{"MIL", "BOS"}
	config.Seasons = []int{2021}
	config.CurrentSeason = 2021
	config.RequestDelay = 0
	return config
}

/////////////////////////////////////////////////////////////////////////
////// Page builders
/////////////////////////////////////////////////////////////////////////

type gameFixture struct {
	date     string
	away     bool
	opponent string
	pts      string
	oppPts   string
}

func teamGamesPage(rows ...gameFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="all_games"><table id="games"><thead><tr>` +
		`<th data-stat="g">G</th><th data-stat="date_game">Date</th><th data-stat="game_location"></th>` +
		`<th data-stat="opp_name">Opponent</th><th data-stat="pts">Tm</th><th data-stat="opp_pts">Opp</th>` +
		`</tr></thead><tbody>`)
	for i, r := range rows {
		if i == 1 {
			b.WriteString(`<tr class="thead"><th data-stat="g">G</th><th data-stat="date_game">Date</th></tr>`)
		}
		loc := ""
		if r.away {
			loc = "@"
		}
		fmt.Fprintf(&b, `<tr><th data-stat="g">%d</th><td data-stat="date_game">%s</td>`+
			`<td data-stat="game_location">%s</td>`+
			`<td data-stat="opp_name"><a href="/teams/%s/2021.html">Team %s</a></td>`+
			`<td data-stat="pts">%s</td><td data-stat="opp_pts">%s</td></tr>`,
			i+1, r.date, loc, r.opponent, r.opponent, r.pts, r.oppPts)
	}
	b.WriteString(`</tbody></table></div></body></html>`)
	return b.String()
}

type rosterFixture struct {
	id, name, pos, height, weight, born string
	// omit names a data-stat whose td is left out of the row entirely
	omit string
}

// rosterPage hides the table in a comment the way the source site does
func rosterPage(rows ...rosterFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="all_roster"><!--
<table id="roster"><thead><tr><th data-stat="number">No.</th><th data-stat="player">Player</th></tr></thead><tbody>`)
	for _, r := range rows {
		player := fmt.Sprintf(`<td data-stat="player">%s</td>`, r.name)
		if r.id != "" {
			player = fmt.Sprintf(`<td data-stat="player" data-append-csv="%s"><a href="/players/%s/%s.html">%s</a></td>`,
				r.id, r.id[:1], r.id, r.name)
		}
		b.WriteString(`<tr><th data-stat="number">0</th>` + player)
		for _, c := range [][2]string{{"pos", r.pos}, {"height", r.height}, {"weight", r.weight}, {"birth_date", r.born}} {
			if c[0] != r.omit {
				fmt.Fprintf(&b, `<td data-stat="%s">%s</td>`, c[0], c[1])
			}
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>
--></div></body></html>`)
	return b.String()
}

func playerPage(rows map[string]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="per_game"><thead><tr><th data-stat="season">Season</th></tr></thead><tbody>`)
	for season, ppg := range rows {
		fmt.Fprintf(&b, `<tr><th data-stat="season">%s</th><td data-stat="team_id">MIL</td><td data-stat="pts_per_g">%s</td></tr>`, season, ppg)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

type scheduleFixture struct {
	date, visitor, visitorPts, home, homePts string
}

func schedulePage(games ...scheduleFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="schedule"><thead><tr><th data-stat="date_game">Date</th></tr></thead><tbody>`)
	for _, g := range games {
		fmt.Fprintf(&b, `<tr><th data-stat="date_game">%s</th>`+
			`<td data-stat="visitor_team_name">%s</td><td data-stat="visitor_pts">%s</td>`+
			`<td data-stat="home_team_name">%s</td><td data-stat="home_pts">%s</td></tr>`,
			g.date, g.visitor, g.visitorPts, g.home, g.homePts)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func seasonIndexPage(monthHrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="div_games"><table><thead><tr>`)
	for _, h := range monthHrefs {
		fmt.Fprintf(&b, `<th data-stat="month_name"><a href="%s">Month</a></th>`, h)
	}
	b.WriteString(`</tr></thead></table></div></body></html>`)
	return b.String()
}
