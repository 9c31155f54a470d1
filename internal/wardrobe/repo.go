package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"wardrobe/internal/imageref"
	"wardrobe/internal/infra"
	"wardrobe/internal/sqlinline"
	"wardrobe/internal/tryon"
)

// Category groups wardrobe items on screen.
type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
)

// CategoryFor maps the free-form clothes.type column onto a category.
func CategoryFor(kind string) Category {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "top", "tops":
		return CategoryTops
	case "bottom", "bottoms":
		return CategoryBottoms
	case "shoe", "shoes":
		return CategoryShoes
	default:
		return CategoryAccessories
	}
}

// Item is a wardrobe piece that can be added to a garment set.
type Item struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Category Category     `json:"category"`
	Tags     []string     `json:"tags"`
	Image    imageref.Ref `json:"-"`
}

// Repo reads wardrobe data and records try-on attempts.
type Repo struct {
	sql      infra.SQLExecutor
	username string
}

// NewRepo constructs a Repo. username is the identity attempts are logged under.
func NewRepo(sql infra.SQLExecutor, username string) *Repo {
	return &Repo{sql: sql, username: strings.TrimSpace(username)}
}

// Items lists the newest wardrobe items.
func (r *Repo) Items(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.queryItems(ctx, sqlinline.QSelectClothes, limit)
}

// ItemsByID loads the given items, preserving the order of ids.
func (r *Repo) ItemsByID(ctx context.Context, ids []int64) ([]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := r.queryItems(ctx, sqlinline.QSelectClothesByIDs, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	ordered := make([]Item, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// OutfitItemIDs returns the clothes linked to an outfit.
func (r *Repo) OutfitItemIDs(ctx context.Context, outfitID int64) ([]int64, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectOutfitClothIDs, outfitID)
	if err != nil {
		return nil, fmt.Errorf("wardrobe: outfit items: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("wardrobe: scan outfit item: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordAttempt fulfils tryon.Recorder.
func (r *Repo) RecordAttempt(ctx context.Context, a tryon.Attempt) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return fmt.Errorf("wardrobe: attempt id: %w", err)
	}
	kind := ""
	if a.Kind != 0 {
		kind = a.Kind.String()
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertTryOnAttempt, id, r.username, a.GarmentCount, a.State.String(), kind, a.Duration.Milliseconds())
	return err
}

func (r *Repo) queryItems(ctx context.Context, query string, arg any) ([]Item, error) {
	if r == nil || r.sql == nil {
		return nil, errors.New("wardrobe: no database configured")
	}
	rows, err := r.sql.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("wardrobe: query clothes: %w", err)
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var (
			id                      int64
			name, kind, description string
		)
		if err := rows.Scan(&id, &name, &kind, &description); err != nil {
			return nil, fmt.Errorf("wardrobe: scan clothes: %w", err)
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed Item"
		}
		items = append(items, Item{
			ID:       id,
			Name:     name,
			Category: CategoryFor(kind),
			Tags:     splitTags(description),
			Image:    imageref.ClothesImage(id),
		})
	}
	return items, rows.Err()
}

func splitTags(description string) []string {
	var tags []string
	for _, t := range strings.Split(description, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

var _ tryon.Recorder = (*Repo)(nil)
