// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-scout/internal/bountylab"
	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/ranking"
	"github.com/jonathan/talent-scout/internal/search"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintRankedDevelopers outputs developers in composite-score order.
func (p *Printer) PrintRankedDevelopers(ranked []ranking.Ranked, w ranking.Weights) {
	if len(ranked) == 0 {
		p.printBox("DEVELOPERS", "No developers matched.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Weights: %s\n\n", w))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := ranked[i]
		sb.WriteString(fmt.Sprintf("#%-2d %-24s score %.3f", i+1, displayName(r.User), r.Score))
		if tier := ranking.Tier(r.User); tier != "" {
			sb.WriteString(fmt.Sprintf("  [%s]", tier))
		}
		sb.WriteString("\n")

		s := ranking.SignalsFor(r.User)
		sb.WriteString(fmt.Sprintf("    devrank %.0f · stars %.0f · contributions %.0f · followers %.0f\n",
			s.DevRank, s.TotalStars, s.Contributions, s.Followers))
		if langs := r.User.TopLanguages(); len(langs) > 0 {
			sb.WriteString(fmt.Sprintf("    %s\n", strings.Join(langs, ", ")))
		}
	}

	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more developers", len(ranked)-maxItemsToShow))
	}

	p.printBox("RANKED DEVELOPERS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDeveloper outputs a single developer profile.
func (p *Printer) PrintDeveloper(dev *search.Developer) {
	if dev == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Login:     %s\n", dev.Login))
	sb.WriteString(fmt.Sprintf("Name:      %s\n", displayName(dev.User)))
	if dev.Location != nil {
		sb.WriteString(fmt.Sprintf("Location:  %s\n", *dev.Location))
	}
	if dev.Company != nil {
		sb.WriteString(fmt.Sprintf("Company:   %s\n", *dev.Company))
	}
	if score, ok := ranking.DevRankScore(dev.User); ok {
		sb.WriteString(fmt.Sprintf("DevRank:   %.1f %s\n", score, ranking.Tier(dev.User)))
	}
	if langs := dev.TopLanguages(); len(langs) > 0 {
		sb.WriteString(fmt.Sprintf("Languages: %s\n", strings.Join(langs, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Profile:   https://github.com/%s", dev.Login))

	p.printBox("DEVELOPER", sb.String())
	p.PrintFeatureNotice(dev.FeaturesUnavailable)
}

// PrintRepositories outputs a page of repository hits.
func (p *Printer) PrintRepositories(res *search.RepoResult) {
	if res == nil {
		return
	}
	if len(res.Repositories) == 0 {
		p.printBox("REPOSITORIES", "No repositories matched.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Showing %d of %d\n\n", len(res.Repositories), res.Count))
	count := min(len(res.Repositories), maxItemsToShow)
	for i := 0; i < count; i++ {
		repo := res.Repositories[i]
		sb.WriteString(fmt.Sprintf("%s/%s  ★ %d", repo.OwnerLogin, repo.Name, repo.StargazerCount))
		if repo.Language != nil {
			sb.WriteString(fmt.Sprintf("  %s", *repo.Language))
		}
		sb.WriteString("\n")
	}
	if len(res.Repositories) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more repositories", len(res.Repositories)-maxItemsToShow))
	}

	p.printBox("REPOSITORIES", strings.TrimSuffix(sb.String(), "\n"))
	p.PrintFeatureNotice(res.FeaturesUnavailable)
}

// PrintFeatureNotice lists enrichments the provider plan did not allow.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFeatureNotice(f search.FeaturesUnavailable) {
	if !f.Any() {
		return
	}
	fmt.Fprintf(p.out, "Some data is unavailable on your plan: %s\n", strings.Join(f.Messages(), ", "))
}

// PrintPipeline outputs an owner's saved candidates.
func (p *Printer) PrintPipeline(candidates []db.SavedCandidate) {
	if len(candidates) == 0 {
		p.printBox("PIPELINE", "No saved candidates yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Saved candidates: %d\n\n", len(candidates)))
	for _, c := range candidates {
		name := c.Login
		if c.DisplayName != nil {
			name = *c.DisplayName
		}
		sb.WriteString(fmt.Sprintf("• %s (@%s)\n", name, c.Login))
		if len(c.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("  tags: %s\n", strings.Join(c.Tags, ", ")))
		}
		if c.Notes != nil && *c.Notes != "" {
			sb.WriteString(fmt.Sprintf("  notes: %s\n", *c.Notes))
		}
	}

	p.printBox("PIPELINE", strings.TrimSuffix(sb.String(), "\n"))
}

func displayName(u bountylab.User) string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Login
}
