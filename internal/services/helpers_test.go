package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/travelit/backend/internal/config"
	"github.com/travelit/backend/internal/models"
	"github.com/travelit/backend/internal/utils"
	"github.com/travelit/backend/pkg/response"
	"gorm.io/gorm"
)

const testPassword = "password123"

type recordingQueue struct {
	mu    sync.Mutex
	tasks []*MailTask
	err   error
}

func (q *recordingQueue) Enqueue(task *MailTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return q.err
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func (q *recordingQueue) last() *MailTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil
	}
	return q.tasks[len(q.tasks)-1]
}

type memImageStore struct {
	saved map[string][]byte
	err   error
}

func (s *memImageStore) Save(_ context.Context, ext string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("http://localhost:3000/uploads/avatar-%d%s", len(s.saved)+1, ext)
	s.saved[url] = b
	return url, nil
}

type fixture struct {
	db      *gorm.DB
	cfg     *config.Config
	queue   *recordingQueue
	images  *memImageStore
	logs    *SystemLogService
	gate    *AccessGate
	auth    *AuthService
	users   *UserService
	friends *FriendService
	maps    *MapService
	markers *MarkerService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := models.Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	utils.SetJWTSecret("test-secret")

	db := newTestDB(t)
	cfg := config.DefaultConfig()
	queue := &recordingQueue{}
	images := &memImageStore{saved: map[string][]byte{}}
	logs := NewSystemLogService(db)
	gate := NewAccessGate(db, logs)

	return &fixture{
		db:      db,
		cfg:     cfg,
		queue:   queue,
		images:  images,
		logs:    logs,
		gate:    gate,
		auth:    NewAuthService(db, cfg, queue),
		users:   NewUserService(db, images, cfg.Storage.MaxAvatarBytes),
		friends: NewFriendService(db, gate),
		maps:    NewMapService(db, gate),
		markers: NewMarkerService(db, gate),
	}
}

// createUser inserts a verified account that can log in with testPassword.
func (f *fixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{
		Email:      username + "@example.com",
		Username:   username,
		Password:   hash,
		IsVerified: true,
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// createSharedMap creates a map owned by owner with member already accepted.
func (f *fixture) createSharedMap(t *testing.T, owner, member *models.User, title string) *models.TravelMap {
	t.Helper()
	m, err := f.maps.CreateMapAndInvite(owner.ID, title, member.ID)
	if err != nil {
		t.Fatalf("CreateMapAndInvite() error = %v", err)
	}
	inv := f.invitationFor(t, m.ID, member.ID)
	if err := f.maps.AcceptInvitation(member.ID, inv.ID); err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	return m
}

func (f *fixture) invitationFor(t *testing.T, mapID, userID uint) *models.MapMembership {
	t.Helper()
	var mm models.MapMembership
	if err := f.db.Where("map_id = ? AND user_id = ?", mapID, userID).First(&mm).Error; err != nil {
		t.Fatalf("load membership: %v", err)
	}
	return &mm
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) newMarker(t *testing.T, owner *models.User, title string, personal bool, mapIDs ...uint) *models.Marker {
	t.Helper()
	lat, lng, rank := 48.8566, 2.3522, 8.5
	m, err := f.markers.SaveMarker(owner.ID, &SaveMarkerRequest{
		Latitude:      &lat,
		Longitude:     &lng,
		Title:         title,
		Ranking:       &rank,
		IsPersonal:    &personal,
		MapIDsToShare: mapIDs,
	})
	if err != nil {
		t.Fatalf("SaveMarker() error = %v", err)
	}
	return m
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	if got := response.StatusOf(err); got != want {
		t.Fatalf("status = %d, expected %d (err = %v)", got, want, err)
	}
}
