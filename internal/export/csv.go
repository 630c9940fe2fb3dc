// Package export renders an owner's saved candidates as CSV or writes them to
// a Google Sheet.
package export

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/talent-scout/internal/db"
)

// ErrNoCandidates is returned when there is nothing to export.
var ErrNoCandidates = errors.New("no saved candidates to export")

// Header is the CSV column order.
var Header = []string{
	"name",
	"login",
	"github_url",
	"location",
	"company",
	"top_languages",
	"devrank_score",
	"follower_count",
	"total_stars",
	"notes",
	"tags",
	"email_domain",
}

const listSeparator = "; "

// ProfileURL is the public GitHub profile for a login.
func ProfileURL(login string) string {
	return "https://github.com/" + login
}

// Filename names an export produced at t.
func Filename(t time.Time) string {
	return "talent-scout-candidates-" + t.UTC().Format("2006-01-02") + ".csv"
}

// Rows returns one row of cells per candidate in Header order.
func Rows(candidates []db.SavedCandidate) [][]string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		name := c.Login
		if c.DisplayName != nil {
			name = *c.DisplayName
		}
		rows = append(rows, []string{
			name,
			c.Login,
			ProfileURL(c.Login),
			str(c.Location),
			str(c.Company),
			strings.Join(c.TopLanguages, listSeparator),
			float(c.DevRankScore),
			integer(c.FollowerCount),
			integer(c.TotalStars),
			str(c.Notes),
			strings.Join(c.Tags, listSeparator),
			"", // email_domain is reserved
		})
	}
	return rows
}

// CSV renders the header and every candidate. Data cells are always quoted.
// Lines are separated by a bare newline with no trailing newline.
func CSV(candidates []db.SavedCandidate) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, row := range Rows(candidates) {
		b.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(cell))
		}
	}
	return b.String(), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func float(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func integer(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
