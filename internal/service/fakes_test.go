package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// memStore is an in-memory stand-in for the relational store. It enforces
// the same unique constraints, status guards and cascades.
type memStore struct {
	seq        int
	users      map[string]domain.User
	characters map[string]domain.Character
	comments   map[string]domain.Comment
	classes    map[string]domain.CharacterClass
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]domain.User{},
		characters: map[string]domain.Character{},
		comments:   map[string]domain.Comment{},
		classes: map[string]domain.CharacterClass{
			"class-warrior": {ID: "class-warrior", Name: "Warrior"},
			"class-mage":    {ID: "class-mage", Name: "Mage"},
		},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperrors.NewConflict("email is already registered", map[string]any{"field": "email"})
		}
		if existing.Pseudo == u.Pseudo {
			return apperrors.NewConflict("pseudo is already taken", map[string]any{"field": "pseudo"})
		}
	}
	u.ID = r.s.nextID("user")
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) SetSuspended(_ context.Context, id string, suspended bool, updatedAt time.Time) error {
	stored, ok := r.s.users[id]
	if !ok {
		return apperrors.NewNotFound("user", nil)
	}
	if stored.IsSuspended == suspended {
		return repository.ErrStaleState()
	}
	stored.IsSuspended = suspended
	stored.UpdatedAt = updatedAt
	r.s.users[id] = stored
	return nil
}

func (r memUsers) UpdatePassword(_ context.Context, id, passwordHash string, mustChange bool, updatedAt time.Time) error {
	stored, ok := r.s.users[id]
	if !ok {
		return apperrors.NewNotFound("user", nil)
	}
	stored.PasswordHash = passwordHash
	stored.MustChangePassword = mustChange
	stored.UpdatedAt = updatedAt
	r.s.users[id] = stored
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	if _, ok := r.s.users[id]; !ok {
		return apperrors.NewNotFound("user", nil)
	}
	delete(r.s.users, id)
	for cid, c := range r.s.characters {
		if c.OwnerID == id {
			r.s.deleteCharacter(cid)
		}
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (r memUsers) GetByPseudo(_ context.Context, pseudo string) (*domain.User, error) {
	pseudo = strings.TrimSpace(pseudo)
	for _, u := range r.s.users {
		if u.Pseudo == pseudo {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (r memUsers) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.s.users {
		if len(filter.Roles) > 0 && !containsRole(filter.Roles, u.Role) {
			continue
		}
		if filter.Suspended != nil && u.IsSuspended != *filter.Suspended {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type memCharacters struct{ s *memStore }

func (r memCharacters) Create(_ context.Context, c *domain.Character) error {
	for _, existing := range r.s.characters {
		if existing.OwnerID == c.OwnerID && existing.Name == c.Name {
			return apperrors.NewConflict("a character with this name already exists", map[string]any{"field": "name"})
		}
	}
	c.ID = r.s.nextID("character")
	r.s.characters[c.ID] = *c
	return nil
}

func (r memCharacters) Update(_ context.Context, c *domain.Character, expected domain.CharacterStatus) error {
	stored, ok := r.s.characters[c.ID]
	if !ok {
		return apperrors.NewNotFound("character", nil)
	}
	if stored.Status != expected || stored.Version != c.Version {
		return repository.ErrStaleState()
	}
	c.Version++
	r.s.characters[c.ID] = *c
	return nil
}

func (r memCharacters) Delete(_ context.Context, id string) error {
	if _, ok := r.s.characters[id]; !ok {
		return apperrors.NewNotFound("character", nil)
	}
	r.s.deleteCharacter(id)
	return nil
}

func (m *memStore) deleteCharacter(id string) {
	delete(m.characters, id)
	for cid, c := range m.comments {
		if c.CharacterID == id {
			delete(m.comments, cid)
		}
	}
}

func (r memCharacters) GetByID(_ context.Context, id string) (*domain.Character, error) {
	c, ok := r.s.characters[id]
	if !ok {
		return nil, apperrors.NewNotFound("character", nil)
	}
	c.ClassName = r.s.classes[c.ClassID].Name
	return &c, nil
}

func (r memCharacters) ExistsByNameAndOwner(_ context.Context, name, ownerID, excludeID string) (bool, error) {
	name = strings.TrimSpace(name)
	for _, c := range r.s.characters {
		if c.OwnerID == ownerID && c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memCharacters) List(_ context.Context, filter repository.CharacterFilter) ([]domain.Character, error) {
	var out []domain.Character
	for _, c := range r.s.characters {
		if filter.OwnerID != nil && c.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsCharacterStatus(filter.Statuses, c.Status) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsCharacterStatus(statuses []domain.CharacterStatus, status domain.CharacterStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r memCharacters) ListGallery(_ context.Context, _ repository.Page) ([]domain.GalleryEntry, error) {
	var out []domain.GalleryEntry
	for _, c := range r.s.characters {
		if !c.IsPublic() {
			continue
		}
		entry := domain.GalleryEntry{Character: c, OwnerPseudo: r.s.users[c.OwnerID].Pseudo}
		total := 0
		for _, cm := range r.s.comments {
			if cm.CharacterID == c.ID && cm.Status == domain.CommentApproved {
				total += cm.Rating
				entry.ReviewCount++
			}
		}
		if entry.ReviewCount > 0 {
			entry.AverageRating = float64(total) / float64(entry.ReviewCount)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Character.ID < out[j].Character.ID })
	return out, nil
}

type memComments struct{ s *memStore }

func (r memComments) Create(_ context.Context, c *domain.Comment) error {
	for _, existing := range r.s.comments {
		if existing.CharacterID == c.CharacterID && existing.AuthorID == c.AuthorID {
			return apperrors.NewConflict("you have already commented on this character", map[string]any{"field": "character_id"})
		}
	}
	c.ID = r.s.nextID("comment")
	r.s.comments[c.ID] = *c
	return nil
}

func (r memComments) Update(_ context.Context, c *domain.Comment, expected domain.CommentStatus) error {
	stored, ok := r.s.comments[c.ID]
	if !ok {
		return apperrors.NewNotFound("comment", nil)
	}
	if stored.Status != expected {
		return repository.ErrStaleState()
	}
	r.s.comments[c.ID] = *c
	return nil
}

func (r memComments) Delete(_ context.Context, id string) error {
	if _, ok := r.s.comments[id]; !ok {
		return apperrors.NewNotFound("comment", nil)
	}
	delete(r.s.comments, id)
	return nil
}

func (r memComments) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := r.s.comments[id]
	if !ok {
		return nil, apperrors.NewNotFound("comment", nil)
	}
	c.AuthorPseudo = r.s.users[c.AuthorID].Pseudo
	return &c, nil
}

func (r memComments) ExistsByCharacterAndAuthor(_ context.Context, characterID, authorID string) (bool, error) {
	for _, c := range r.s.comments {
		if c.CharacterID == characterID && c.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r memComments) List(_ context.Context, filter repository.CommentFilter) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.s.comments {
		if filter.CharacterID != nil && c.CharacterID != *filter.CharacterID {
			continue
		}
		if filter.AuthorID != nil && c.AuthorID != *filter.AuthorID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsCommentStatus(filter.Statuses, c.Status) {
			continue
		}
		c.AuthorPseudo = r.s.users[c.AuthorID].Pseudo
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsCommentStatus(statuses []domain.CommentStatus, status domain.CommentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memClasses struct{ s *memStore }

func (r memClasses) GetByID(_ context.Context, id string) (*domain.CharacterClass, error) {
	c, ok := r.s.classes[id]
	if !ok {
		return nil, apperrors.NewNotFound("character class", nil)
	}
	return &c, nil
}

func (r memClasses) List(_ context.Context) ([]domain.CharacterClass, error) {
	var out []domain.CharacterClass
	for _, c := range r.s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// recordingDispatcher captures published events and can fail on demand.
type recordingDispatcher struct {
	events []events.Event
	err    error
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.events = append(d.events, event)
	return d.err
}

func (d *recordingDispatcher) Subscribe(domain.ActivityAction, events.EventHandler) {}

func (d *recordingDispatcher) SubscribeAll(events.EventHandler) {}

func (d *recordingDispatcher) types() []domain.ActivityAction {
	out := make([]domain.ActivityAction, len(d.events))
	for i, e := range d.events {
		out[i] = e.Type
	}
	return out
}

func (d *recordingDispatcher) last() events.Event {
	if len(d.events) == 0 {
		return events.Event{}
	}
	return d.events[len(d.events)-1]
}

type fakeCache struct {
	pages         map[string][]domain.GalleryEntry
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: map[string][]domain.GalleryEntry{}}
}

func (c *fakeCache) Get(_ context.Context, limit, offset int) ([]domain.GalleryEntry, bool, error) {
	entries, ok := c.pages[fmt.Sprintf("%d:%d", limit, offset)]
	return entries, ok, nil
}

func (c *fakeCache) Set(_ context.Context, limit, offset int, entries []domain.GalleryEntry) error {
	c.pages[fmt.Sprintf("%d:%d", limit, offset)] = entries
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidations++
	c.pages = map[string][]domain.GalleryEntry{}
	return nil
}

// harness wires every service over one in-memory store.
type harness struct {
	store      *memStore
	dispatcher *recordingDispatcher
	cache      *fakeCache
	tokens     *auth.TokenManager

	auth       *AuthService
	accounts   *AccountService
	characters *CharacterService
	comments   *CommentService
	moderation *ModerationService
}

func newHarness() *harness {
	store := newMemStore()
	dispatcher := &recordingDispatcher{}
	cache := newFakeCache()
	users := memUsers{s: store}
	chars := memCharacters{s: store}
	comments := memComments{s: store}
	guard := NewUniquenessGuard(users, chars, comments)
	tokens := auth.NewTokenManager("test-secret", 60)

	return &harness{
		store:      store,
		dispatcher: dispatcher,
		cache:      cache,
		tokens:     tokens,
		auth: NewAuthService(AuthDependencies{
			UserRepo:     users,
			Guard:        guard,
			TokenManager: tokens,
			BcryptCost:   4,
			Dispatcher:   dispatcher,
			Clock:        testClock,
		}),
		accounts: NewAccountService(AccountDependencies{
			UserRepo:   users,
			Guard:      guard,
			BcryptCost: 4,
			Dispatcher: dispatcher,
			Clock:      testClock,
		}),
		characters: NewCharacterService(CharacterDependencies{
			CharacterRepo: chars,
			ClassRepo:     memClasses{s: store},
			Guard:         guard,
			Cache:         cache,
			Dispatcher:    dispatcher,
			Clock:         testClock,
		}),
		comments: NewCommentService(CommentDependencies{
			CommentRepo:   comments,
			CharacterRepo: chars,
			Guard:         guard,
			Cache:         cache,
			Dispatcher:    dispatcher,
			Clock:         testClock,
		}),
		moderation: NewModerationService(ModerationDependencies{
			CharacterRepo: chars,
			CommentRepo:   comments,
			Cache:         cache,
			Dispatcher:    dispatcher,
			Clock:         testClock,
		}),
	}
}

// seedUser stores an account directly and returns its principal.
func (h *harness) seedUser(pseudo string, role domain.Role) *domain.Principal {
	u := domain.NewRegisteredUser(pseudo, pseudo+"@example.com", "unused", testNow)
	u.Role = role
	_ = memUsers{s: h.store}.Create(context.Background(), u)
	return u.Principal("127.0.0.1")
}

func testAppearance() domain.Appearance {
	return domain.Appearance{
		Gender:    "male",
		SkinColor: "#C68642",
		HairColor: "#3B2F2F",
		HairStyle: "braided",
		EyeColor:  "#1C6BA0",
		FaceShape: "square",
		BodyType:  "stocky",
		Height:    "short",
		Accessory: "axe",
	}
}

func characterInput(name string) CharacterInput {
	return CharacterInput{Name: name, ClassID: "class-warrior", Appearance: testAppearance()}
}
