package candidates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/brainpair/backend/internal/domain/model"
	pgrepo "github.com/brainpair/backend/internal/repo/postgres"
)

type fakeRepo struct {
	profiles map[string]model.Profile
	swiped   map[string]map[string]struct{}
	pages    int
	err      error
}

func newFakeRepo(profiles ...model.Profile) *fakeRepo {
	repo := &fakeRepo{
		profiles: map[string]model.Profile{},
		swiped:   map[string]map[string]struct{}{},
	}
	for _, p := range profiles {
		repo.profiles[p.UserID] = p
	}
	return repo
}

func (r *fakeRepo) swipe(userID, targetID string) {
	if r.swiped[userID] == nil {
		r.swiped[userID] = map[string]struct{}{}
	}
	r.swiped[userID][targetID] = struct{}{}
}

func (r *fakeRepo) Get(_ context.Context, userID string) (model.Profile, error) {
	if r.err != nil {
		return model.Profile{}, r.err
	}
	p, ok := r.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListUnswiped(_ context.Context, viewerID, afterUserID string, limit int) ([]model.Profile, error) {
	r.pages++
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		if id == viewerID || id <= afterUserID {
			continue
		}
		if _, ok := r.swiped[viewerID][id]; ok {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]model.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.profiles[id])
	}
	return out, nil
}

func profile(id string, interests ...string) model.Profile {
	return model.Profile{UserID: id, DisplayName: id, Interests: interests}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.UserID)
	}
	return out
}

func TestListFiltersBySharedInterest(t *testing.T) {
	repo := newFakeRepo(
		profile("me", "Calculus", "Biology"),
		profile("a", "Biology"),
		profile("b", "History"),
		profile("c", "Calculus", "Art"),
		profile("d"),
		profile("e", "calculus"),
	)
	svc := NewService(repo, Config{})

	res, err := svc.List(context.Background(), "me", "", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	got := ids(res.Items)
	if fmt.Sprint(got) != "[a c]" {
		t.Fatalf("unexpected candidates: %v", got)
	}
	if res.NextCursor != "" {
		t.Fatalf("expected no next cursor, got %q", res.NextCursor)
	}
}

func TestListSkipsSwipedProfiles(t *testing.T) {
	repo := newFakeRepo(
		profile("me", "Calculus"),
		profile("a", "Calculus"),
		profile("b", "Calculus"),
	)
	repo.swipe("me", "a")

	res, err := NewService(repo, Config{}).List(context.Background(), "me", "", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if fmt.Sprint(ids(res.Items)) != "[b]" {
		t.Fatalf("unexpected candidates: %v", ids(res.Items))
	}
}

func TestListPagesWithCursor(t *testing.T) {
	repo := newFakeRepo(profile("me", "Calculus"))
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("u%02d", i)
		if i%2 == 0 {
			repo.profiles[id] = profile(id, "Calculus")
		} else {
			repo.profiles[id] = profile(id, "Art")
		}
	}
	svc := NewService(repo, Config{ScanPageSize: 3})
	ctx := context.Background()

	first, err := svc.List(ctx, "me", "", 2)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if fmt.Sprint(ids(first.Items)) != "[u00 u02]" || first.NextCursor == "" {
		t.Fatalf("unexpected first page: %v cursor=%q", ids(first.Items), first.NextCursor)
	}

	second, err := svc.List(ctx, "me", first.NextCursor, 2)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if fmt.Sprint(ids(second.Items)) != "[u04 u06]" {
		t.Fatalf("unexpected second page: %v", ids(second.Items))
	}
	if second.NextCursor != "" {
		t.Fatalf("expected end of feed, got cursor %q", second.NextCursor)
	}
}

func TestListStopsAfterScanLimit(t *testing.T) {
	repo := newFakeRepo(profile("me", "Calculus"))
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("u%02d", i)
		repo.profiles[id] = profile(id, "Art")
	}
	svc := NewService(repo, Config{ScanPageSize: 2, MaxScanPages: 3})

	res, err := svc.List(context.Background(), "me", "", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 0 {
		t.Fatalf("expected no matches, got %v", ids(res.Items))
	}
	if repo.pages != 3 {
		t.Fatalf("expected 3 scanned pages, got %d", repo.pages)
	}
	if res.NextCursor == "" {
		t.Fatalf("expected cursor to resume the scan")
	}
}

func TestListWithoutViewerInterests(t *testing.T) {
	repo := newFakeRepo(profile("me"), profile("a", "Calculus"))
	svc := NewService(repo, Config{})

	for _, viewer := range []string{"me", "ghost"} {
		res, err := svc.List(context.Background(), viewer, "", 10)
		if err != nil {
			t.Fatalf("list for %s: %v", viewer, err)
		}
		if len(res.Items) != 0 {
			t.Fatalf("expected empty feed for %s, got %v", viewer, ids(res.Items))
		}
	}
	if repo.pages != 0 {
		t.Fatalf("expected no scan, got %d pages", repo.pages)
	}
}

func TestListErrors(t *testing.T) {
	repo := newFakeRepo(profile("me", "Calculus"))
	svc := NewService(repo, Config{})
	ctx := context.Background()

	if _, err := svc.List(ctx, "", "", 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.List(ctx, "me", "%%%", 10); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected invalid cursor, got %v", err)
	}

	repo.err = errors.New("db down")
	if _, err := svc.List(ctx, "me", "", 10); !errors.Is(err, repo.err) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestListUsesConfiguredDefaultPageSize(t *testing.T) {
	repo := newFakeRepo(
		profile("me", "Calculus"),
		profile("a", "Calculus"),
		profile("b", "Calculus"),
		profile("c", "Calculus"),
	)
	svc := NewService(repo, Config{DefaultPageSize: 2})

	res, err := svc.List(context.Background(), "me", "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if fmt.Sprint(ids(res.Items)) != "[a b]" || res.NextCursor == "" {
		t.Fatalf("expected first two candidates and a cursor, got %v %q", ids(res.Items), res.NextCursor)
	}
}

type fakeRatings struct {
	summaries map[string]model.RatingSummary
	requested []string
	err       error
}

func (f *fakeRatings) Summaries(_ context.Context, userIDs []string) (map[string]model.RatingSummary, error) {
	f.requested = append(f.requested, userIDs...)
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

func TestListAttachesRatingSummaries(t *testing.T) {
	repo := newFakeRepo(
		profile("me", "Calculus"),
		profile("a", "Calculus"),
		profile("b", "Calculus"),
		profile("c", "History"),
	)
	ratings := &fakeRatings{summaries: map[string]model.RatingSummary{
		"a": {Count: 3, Average: 4.3},
	}}
	svc := NewService(repo, Config{})
	svc.AttachRatings(ratings)

	res, err := svc.List(context.Background(), "me", "", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("unexpected candidates: %v", ids(res.Items))
	}
	if res.Items[0].Rating != (model.RatingSummary{Count: 3, Average: 4.3}) {
		t.Fatalf("unexpected rating for a: %+v", res.Items[0].Rating)
	}
	if res.Items[1].Rating != (model.RatingSummary{}) {
		t.Fatalf("expected zero rating for b, got %+v", res.Items[1].Rating)
	}
	if fmt.Sprint(ratings.requested) != "[a b]" {
		t.Fatalf("ratings requested for %v", ratings.requested)
	}

	ratings.err = errors.New("db down")
	if _, err := svc.List(context.Background(), "me", "", 10); !errors.Is(err, ratings.err) {
		t.Fatalf("expected wrapped ratings error, got %v", err)
	}
}
