package pipeline

import (
	"github.com/jonathan/talent-scout/internal/bountylab"
	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/ranking"
)

// Snapshot freezes a search hit into the fields stored with a saved candidate.
// Notes and tags start empty.
func Snapshot(u bountylab.User) db.SavedCandidateInput {
	in := db.SavedCandidateInput{
		Login:        u.Login,
		GithubID:     u.GithubID,
		DisplayName:  u.DisplayName,
		Bio:          u.Bio,
		Company:      u.Company,
		Location:     u.Location,
		TopLanguages: u.TopLanguages(),
		Tags:         []string{},
	}
	if u.Login != "" {
		avatar := "https://github.com/" + u.Login + ".png"
		in.AvatarURL = &avatar
	}
	if score, ok := ranking.DevRankScore(u); ok {
		in.DevRankScore = &score
	}
	if u.Followers != nil && u.Followers.PageInfo != nil && u.Followers.PageInfo.TotalCount != nil {
		n := *u.Followers.PageInfo.TotalCount
		in.FollowerCount = &n
	}
	if u.Aggregates != nil && u.Aggregates.TotalStars != nil {
		n := *u.Aggregates.TotalStars
		in.TotalStars = &n
	}
	return in
}
