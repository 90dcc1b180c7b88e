package main

import (
	"fmt"

	"github.com/enlapet/backend/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var recountFix bool

// recountCmd audits the denormalized counters against the relation tables.
// The write path keeps counters and relations in one transaction, so drift
// here points at manual data edits or a bug.
var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Audit denormalized counters against relation rows",
	Long: `Recomputes followers/following/likes/comments counts from the
relation tables and reports rows where the stored counter disagrees.
With --fix, the stored counters are rewritten to the recomputed values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		total := 0
		for _, audit := range counterAudits {
			n, err := runAudit(database.DB, audit)
			if err != nil {
				return fmt.Errorf("%s: %w", audit.name, err)
			}
			total += n
		}
		if total == 0 {
			fmt.Println("All counters consistent")
		} else if recountFix {
			fmt.Printf("Repaired %d drifted counters\n", total)
		} else {
			fmt.Printf("%d drifted counters found (run with --fix to repair)\n", total)
		}
		return nil
	},
}

func init() {
	recountCmd.Flags().BoolVar(&recountFix, "fix", false, "Rewrite drifted counters to the recomputed values")
}

type counterAudit struct {
	name string
	// selectDrift returns (id, stored, actual) rows where stored != actual
	driftQuery string
	// fixQuery rewrites the stored counter from the relation rows
	fixQuery string
}

var counterAudits = []counterAudit{
	{
		name: "users.followers_count",
		driftQuery: `SELECT u.id, u.followers_count AS stored,
			(SELECT COUNT(*) FROM followers f WHERE f.profile_id = u.id) AS actual
			FROM users u WHERE u.followers_count !=
			(SELECT COUNT(*) FROM followers f WHERE f.profile_id = u.id)`,
		fixQuery: `UPDATE users SET followers_count =
			(SELECT COUNT(*) FROM followers f WHERE f.profile_id = users.id)`,
	},
	{
		name: "users.following_count",
		driftQuery: `SELECT u.id, u.following_count AS stored,
			(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS actual
			FROM users u WHERE u.following_count !=
			(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id)`,
		fixQuery: `UPDATE users SET following_count =
			(SELECT COUNT(*) FROM follows f WHERE f.follower_id = users.id)`,
	},
	{
		name: "pets.followers_count",
		driftQuery: `SELECT p.id, p.followers_count AS stored,
			(SELECT COUNT(*) FROM followers f WHERE f.profile_id = p.id) AS actual
			FROM pets p WHERE p.followers_count !=
			(SELECT COUNT(*) FROM followers f WHERE f.profile_id = p.id)`,
		fixQuery: `UPDATE pets SET followers_count =
			(SELECT COUNT(*) FROM followers f WHERE f.profile_id = pets.id)`,
	},
	{
		name: "posts.likes_count",
		driftQuery: `SELECT p.id, p.likes_count AS stored,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS actual
			FROM posts p WHERE p.likes_count !=
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)`,
		fixQuery: `UPDATE posts SET likes_count =
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = posts.id)`,
	},
	{
		name: "posts.comments_count",
		driftQuery: `SELECT p.id, p.comments_count AS stored,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS actual
			FROM posts p WHERE p.comments_count !=
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)`,
		fixQuery: `UPDATE posts SET comments_count =
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id)`,
	},
}

func runAudit(db *gorm.DB, audit counterAudit) (int, error) {
	var drifted []struct {
		ID     string
		Stored int
		Actual int
	}
	if err := db.Raw(audit.driftQuery).Scan(&drifted).Error; err != nil {
		return 0, err
	}

	for _, row := range drifted {
		fmt.Printf("%s: id=%s stored=%d actual=%d\n", audit.name, row.ID, row.Stored, row.Actual)
	}

	if recountFix && len(drifted) > 0 {
		if err := db.Exec(audit.fixQuery).Error; err != nil {
			return 0, err
		}
	}
	return len(drifted), nil
}
