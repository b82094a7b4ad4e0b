package videos

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/clipvault/backend/internal/models"
	"github.com/clipvault/backend/internal/repositories"
)

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore(users ...models.User) *inMemoryUserStore {
	s := &inMemoryUserStore{users: make(map[string]models.User)}
	for _, user := range users {
		s.users[user.ID] = user
	}
	return s
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

type inMemoryVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
	users  *inMemoryUserStore
}

func newInMemoryVideoStore(users *inMemoryUserStore) *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video), users: users}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[video.ID]; exists {
		return repositories.ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) List(_ context.Context) ([]models.VideoWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []models.VideoWithOwner
	for _, video := range s.videos {
		owner := s.users.users[video.OwnerID]
		records = append(records, models.VideoWithOwner{
			Video: video,
			Owner: models.Owner{ID: owner.ID, Email: owner.Email},
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *inMemoryVideoStore) Update(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

type fakeAssetHost struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (f *fakeAssetHost) DeleteAsset(_ context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileID)
	return f.deleteErr
}

func (f *fakeAssetHost) SignUpload(_ context.Context) (UploadTicket, error) {
	return UploadTicket{Token: "token", Expire: 1, Signature: "signature"}, nil
}

func (f *fakeAssetHost) deletedFiles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func newTestService(t *testing.T, users ...models.User) (*Service, *inMemoryVideoStore, *fakeAssetHost) {
	t.Helper()
	userStore := newInMemoryUserStore(users...)
	videoStore := newInMemoryVideoStore(userStore)
	assets := &fakeAssetHost{}
	return NewService(videoStore, userStore, assets), videoStore, assets
}

func testUser(id, email string) models.User {
	return models.User{ID: id, Email: email, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
}

func validInput() CreateInput {
	return CreateInput{
		Title:        "My clip",
		Description:  "A short clip",
		VideoURL:     "https://cdn.example.com/clip.mp4",
		ThumbnailURL: "https://cdn.example.com/clip.jpg",
	}
}

func TestServiceCreateDefaults(t *testing.T) {
	svc, store, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Tags == nil || len(created.Tags) != 0 {
		t.Fatalf("expected empty tags, got %#v", created.Tags)
	}
	if created.Transformation.Quality != 100 {
		t.Fatalf("expected default quality 100, got %d", created.Transformation.Quality)
	}
	if created.Transformation.Height != 1920 || created.Transformation.Width != 1080 {
		t.Fatalf("unexpected transformation defaults: %+v", created.Transformation)
	}
	if !created.Controls {
		t.Fatal("expected controls to default to true")
	}
	if created.Owner.ID != "owner-1" || created.Owner.Email != "owner@example.com" {
		t.Fatalf("expected owner to be resolved, got %+v", created.Owner)
	}

	stored := store.videos[created.ID]
	if stored.OwnerID != "owner-1" {
		t.Fatalf("expected stored owner owner-1, got %s", stored.OwnerID)
	}
}

func TestServiceCreateOverrides(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	controls := false
	quality := 60
	in := validInput()
	in.Controls = &controls
	in.Quality = &quality
	in.Tags = []string{"cats", "outtakes"}

	created, err := svc.Create(context.Background(), "owner-1", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Controls {
		t.Fatal("expected controls override to stick")
	}
	if created.Transformation.Quality != 60 {
		t.Fatalf("expected quality 60, got %d", created.Transformation.Quality)
	}
	if len(created.Tags) != 2 || created.Tags[0] != "cats" {
		t.Fatalf("unexpected tags: %#v", created.Tags)
	}
}

func TestServiceCreateRequiresAuthentication(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	if _, err := svc.Create(context.Background(), "", validInput()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missingTitle", func(in *CreateInput) { in.Title = "" }},
		{"missingDescription", func(in *CreateInput) { in.Description = "  " }},
		{"missingVideoURL", func(in *CreateInput) { in.VideoURL = "" }},
		{"missingThumbnailURL", func(in *CreateInput) { in.ThumbnailURL = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.Create(context.Background(), "owner-1", in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestServiceCreateOwnerMissing(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	if _, err := svc.Create(context.Background(), "ghost", validInput()); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestServiceCreateGetRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	in := validInput()
	in.Tags = []string{"demo"}

	created, err := svc.Create(context.Background(), "owner-1", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fetched, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if fetched.Title != in.Title || fetched.Description != in.Description {
		t.Fatalf("unexpected fields after round trip: %+v", fetched.Video)
	}
	if fetched.VideoURL != in.VideoURL || fetched.ThumbnailURL != in.ThumbnailURL {
		t.Fatalf("unexpected URLs after round trip: %+v", fetched.Video)
	}
	if len(fetched.Tags) != 1 || fetched.Tags[0] != "demo" {
		t.Fatalf("unexpected tags after round trip: %#v", fetched.Tags)
	}
	if fetched.Owner.ID != "owner-1" || fetched.Owner.Email != "owner@example.com" {
		t.Fatalf("expected owner resolved to creator, got %+v", fetched.Owner)
	}
}

func TestServiceOwnershipInvariant(t *testing.T) {
	svc, _, _ := newTestService(t,
		testUser("owner-1", "owner@example.com"),
		testUser("intruder", "intruder@example.com"),
	)

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "hijacked"
	if _, err := svc.Update(context.Background(), created.ID, "intruder", UpdateInput{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on update, got %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}

	// The record must be untouched after the rejected mutations.
	fetched, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get after rejected mutations: %v", err)
	}
	if fetched.Title != created.Title {
		t.Fatalf("expected title unchanged, got %q", fetched.Title)
	}
}

func TestServiceExistenceInvariant(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	title := "x"
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on get, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "missing", "owner-1", UpdateInput{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := svc.Delete(context.Background(), "missing", "owner-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestServiceAuthenticationPrecedence(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Existing record, no caller: unauthenticated wins over forbidden.
	if _, err := svc.Update(context.Background(), created.ID, "", UpdateInput{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated on update, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated on delete, got %v", err)
	}

	// Missing record, no caller: existence is checked first.
	if err := svc.Delete(context.Background(), "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing record, got %v", err)
	}

	// Missing id short-circuits everything.
	if err := svc.Delete(context.Background(), "  ", "owner-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}
}

func TestServicePartialUpdate(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	description := "rewritten description"
	updated, err := svc.Update(context.Background(), created.ID, "owner-1", UpdateInput{Description: &description})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != created.Title {
		t.Fatalf("expected title unchanged, got %q", updated.Title)
	}
	if updated.Description != description {
		t.Fatalf("expected description updated, got %q", updated.Description)
	}
}

func TestServiceDeleteCleansUpAssets(t *testing.T) {
	svc, store, assets := newTestService(t, testUser("owner-1", "owner@example.com"))

	in := validInput()
	in.VideoFileID = "file-video"
	in.ThumbnailFileID = "file-thumb"

	created, err := svc.Create(context.Background(), "owner-1", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "owner-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	deleted := assets.deletedFiles()
	if len(deleted) != 2 {
		t.Fatalf("expected 2 asset deletions, got %v", deleted)
	}
	if _, ok := store.videos[created.ID]; ok {
		t.Fatal("expected record removed from store")
	}
}

func TestServiceDeleteSkipsMissingFileHandles(t *testing.T) {
	svc, _, assets := newTestService(t, testUser("owner-1", "owner@example.com"))

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "owner-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if deleted := assets.deletedFiles(); len(deleted) != 0 {
		t.Fatalf("expected no asset deletions for empty handles, got %v", deleted)
	}
}

func TestServiceDeleteSurvivesAssetFailure(t *testing.T) {
	svc, store, assets := newTestService(t, testUser("owner-1", "owner@example.com"))
	assets.deleteErr = errors.New("asset host unreachable")

	in := validInput()
	in.VideoFileID = "file-video"
	in.ThumbnailFileID = "file-thumb"

	created, err := svc.Create(context.Background(), "owner-1", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "owner-1"); err != nil {
		t.Fatalf("expected delete to succeed despite asset failure, got %v", err)
	}

	if _, ok := store.videos[created.ID]; ok {
		t.Fatal("expected metadata removed even when asset cleanup fails")
	}
	if deleted := assets.deletedFiles(); len(deleted) != 2 {
		t.Fatalf("expected both asset deletions attempted, got %v", deleted)
	}
}

func TestServiceListOrdering(t *testing.T) {
	svc, _, _ := newTestService(t, testUser("owner-1", "owner@example.com"))

	base := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		svc.NowFunc = func() time.Time { return created }
		rec, err := svc.Create(context.Background(), "owner-1", validInput())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	if list[0].ID != ids[2] || list[1].ID != ids[1] || list[2].ID != ids[0] {
		t.Fatalf("expected newest-first ordering, got %v %v %v", list[0].ID, list[1].ID, list[2].ID)
	}
	if list[0].Owner.Email != "owner@example.com" {
		t.Fatalf("expected owner embedded in list, got %+v", list[0].Owner)
	}
}

func TestServiceListEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}
