// Package feed assembles the home feed: posts from followed profiles blended
// with a discovery fill of recent posts, paginated by cursor.
package feed

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/enlapet/backend/internal/database"
	"github.com/enlapet/backend/internal/metrics"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/social"
	"gorm.io/gorm"
)

const (
	// DefaultPageSize is the page size used when the client does not ask
	// for one.
	DefaultPageSize = 10

	// MaxPageSize caps client-requested page sizes.
	MaxPageSize = 50

	// discoveryOverfetch pads the discovery query so deduplication against
	// already-selected posts still leaves enough rows to fill the page.
	discoveryOverfetch = 5
)

// ErrBadCursor is returned when the cursor does not name an existing post.
var ErrBadCursor = errors.New("invalid feed cursor")

// Item is one feed entry: the post plus its resolved author.
type Item struct {
	models.Post
	Author models.AuthorProjection `json:"author"`
}

// Page is one page of the feed. NextCursor is empty when the feed is
// exhausted.
type Page struct {
	Posts      []Item `json:"posts"`
	NextCursor string `json:"next_cursor"`
}

// Assembler builds feed pages from the follow graph and the posts table.
type Assembler struct {
	db    *gorm.DB
	graph *social.Graph
}

// NewAssembler creates a feed assembler.
func NewAssembler(db *gorm.DB, graph *social.Graph) *Assembler {
	return &Assembler{db: db, graph: graph}
}

// cursorBoundary is the (created_at, id) position a cursor resolves to.
// Paging compares on created_at with the id as a deterministic tie-break,
// so posts sharing a timestamp never repeat or vanish between pages.
type cursorBoundary struct {
	createdAt time.Time
	id        string
}

// Feed returns the viewer's next feed page after cursor. The personalized
// portion comes from followed profiles plus the viewer's own posts; when it
// comes up short the page is topped up with recent posts from everyone.
func (a *Assembler) Feed(ctx context.Context, viewerID, cursor string, pageSize int) (*Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	boundary, err := a.resolveCursor(ctx, cursor)
	if err != nil {
		return nil, err
	}

	followedIDs, err := a.graph.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followedIDs, viewerID)

	posts, err := a.personalizedPosts(ctx, authorIDs, boundary, pageSize)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		seen[p.ID] = true
	}

	if len(posts) < pageSize {
		fill, err := a.discoveryPosts(ctx, boundary, pageSize-len(posts))
		if err != nil {
			return nil, err
		}
		metrics.GetApplication().FeedDiscoveryFills.WithLabelValues().Inc()
		for _, p := range fill {
			if !seen[p.ID] {
				seen[p.ID] = true
				posts = append(posts, p)
			}
		}
	}

	sortPosts(posts)
	if len(posts) > pageSize {
		posts = posts[:pageSize]
	}

	items, err := a.enrich(ctx, posts)
	if err != nil {
		return nil, err
	}

	page := &Page{Posts: items}
	if len(posts) == pageSize {
		page.NextCursor = posts[len(posts)-1].ID
	}
	return page, nil
}

// resolveCursor looks the cursor post up to get its sort position. An empty
// cursor means the top of the feed.
func (a *Assembler) resolveCursor(ctx context.Context, cursor string) (*cursorBoundary, error) {
	if cursor == "" {
		return nil, nil
	}
	var post models.Post
	err := a.db.WithContext(ctx).Unscoped().
		Select("id", "created_at").
		First(&post, "id = ?", cursor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCursor
		}
		return nil, err
	}
	return &cursorBoundary{createdAt: post.CreatedAt, id: post.ID}, nil
}

// personalizedPosts fetches posts by the given authors, newest first. The
// author list is sharded into 30-id chunks; each chunk is queried with the
// page limit and the merged result is truncated after sorting.
func (a *Assembler) personalizedPosts(ctx context.Context, authorIDs []string, boundary *cursorBoundary, pageSize int) ([]models.Post, error) {
	chunks := database.ChunkIDs(authorIDs, database.MaxInOperands)

	var merged []models.Post
	for _, chunk := range chunks {
		q := a.db.WithContext(ctx).
			Where("author_id IN ?", chunk).
			Order("created_at DESC, id DESC").
			Limit(pageSize)
		q = applyBoundary(q, boundary)

		var posts []models.Post
		if err := q.Find(&posts).Error; err != nil {
			return nil, err
		}
		merged = append(merged, posts...)
	}

	sortPosts(merged)
	if len(merged) > pageSize {
		merged = merged[:pageSize]
	}
	return merged, nil
}

// discoveryPosts fetches recent posts from everyone to top up a short page,
// overfetching a little so rows lost to deduplication don't leave a gap.
func (a *Assembler) discoveryPosts(ctx context.Context, boundary *cursorBoundary, need int) ([]models.Post, error) {
	q := a.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(need + discoveryOverfetch)
	q = applyBoundary(q, boundary)

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func applyBoundary(q *gorm.DB, boundary *cursorBoundary) *gorm.DB {
	if boundary == nil {
		return q
	}
	return q.Where(
		"created_at < ? OR (created_at = ? AND id < ?)",
		boundary.createdAt, boundary.createdAt, boundary.id,
	)
}

func sortPosts(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// enrich attaches author projections to the posts, resolving users and pets
// in separate batched lookups keyed by the stored author type.
func (a *Assembler) enrich(ctx context.Context, posts []models.Post) ([]Item, error) {
	userIDs := make([]string, 0, len(posts))
	petIDs := make([]string, 0)
	seenAuthors := make(map[string]bool, len(posts))
	for _, p := range posts {
		if seenAuthors[p.AuthorID] {
			continue
		}
		seenAuthors[p.AuthorID] = true
		if p.AuthorType == models.ProfileTypePet {
			petIDs = append(petIDs, p.AuthorID)
		} else {
			userIDs = append(userIDs, p.AuthorID)
		}
	}

	authors := make(map[string]models.AuthorProjection, len(seenAuthors))

	for _, chunk := range database.ChunkIDs(userIDs, database.MaxInOperands) {
		var users []models.User
		if err := a.db.WithContext(ctx).
			Select("id", "name", "profile_picture_url").
			Find(&users, "id IN ?", chunk).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			authors[u.ID] = models.AuthorProjection{
				ID:                u.ID,
				Name:              u.Name,
				ProfilePictureURL: u.ProfilePictureURL,
			}
		}
	}

	for _, chunk := range database.ChunkIDs(petIDs, database.MaxInOperands) {
		var pets []models.Pet
		if err := a.db.WithContext(ctx).
			Select("id", "name", "profile_picture_url").
			Find(&pets, "id IN ?", chunk).Error; err != nil {
			return nil, err
		}
		for _, p := range pets {
			authors[p.ID] = models.AuthorProjection{
				ID:                p.ID,
				Name:              p.Name,
				ProfilePictureURL: p.ProfilePictureURL,
			}
		}
	}

	items := make([]Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, Item{Post: p, Author: authors[p.AuthorID]})
	}
	return items, nil
}
