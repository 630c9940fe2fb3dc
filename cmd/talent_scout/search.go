package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/observability"
	"github.com/jonathan/talent-scout/internal/ranking"
	"github.com/jonathan/talent-scout/internal/search"
)

var (
	searchLanguage    string
	searchLocation    string
	searchEmailDomain string
	searchMax         int
	searchWeights     string
	searchRepos       bool
	searchNatural     bool
	searchMinStars    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search developers or repositories",
	Long: `Search developers and print them ranked by composite score. With --repos,
search repositories instead; --natural treats the query as a plain-language
description.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "Filter by programming language")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "Filter developers by country")
	searchCmd.Flags().StringVar(&searchEmailDomain, "email-domain", "", "Filter developers by email domain")
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "Maximum results (default 10 developers or 20 repositories)")
	searchCmd.Flags().StringVar(&searchWeights, "weights", "", "Composite weights as devrank,stars,activity,followers")
	searchCmd.Flags().BoolVar(&searchRepos, "repos", false, "Search repositories instead of developers")
	searchCmd.Flags().BoolVar(&searchNatural, "natural", false, "Use natural-language repository search")
	searchCmd.Flags().IntVar(&searchMinStars, "min-stars", 0, "Minimum stargazers for repositories")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	weights, err := parseWeightsFlag(searchWeights)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.requireSearch()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	printer := observability.NewPrinter(os.Stdout)
	page := search.Pagination{MaxResults: searchMax}

	if searchRepos {
		q := search.RepoQuery{
			Query:           query,
			NaturalLanguage: searchNatural,
			Language:        searchLanguage,
			Page:            page,
		}
		if searchMinStars > 0 {
			q.MinStars = &searchMinStars
		}
		res, err := svc.SearchRepositories(cmd.Context(), q)
		if err != nil {
			return err
		}
		printer.PrintRepositories(res)
		return nil
	}

	res, err := svc.SearchDevelopers(cmd.Context(), search.DeveloperQuery{
		Query:       query,
		Language:    searchLanguage,
		Location:    searchLocation,
		EmailDomain: searchEmailDomain,
		Page:        page,
	})
	if err != nil {
		return err
	}
	printer.PrintRankedDevelopers(ranking.Rank(res.Users, weights), weights)
	printer.PrintFeatureNotice(res.FeaturesUnavailable)
	return nil
}

// parseWeightsFlag returns the default weights for an empty flag.
func parseWeightsFlag(raw string) (ranking.Weights, error) {
	if strings.TrimSpace(raw) == "" {
		return ranking.DefaultWeights, nil
	}
	return ranking.ParseWeights(raw)
}
