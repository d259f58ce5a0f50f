package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutritrack/calorie-api/internal/core/domain"
	"github.com/nutritrack/calorie-api/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range seed {
		r.users[u.UserName] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUserName(_ context.Context, userName string) (*domain.User, error) {
	u, ok := r.users[userName]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindPage(_ context.Context, skip, limit int) ([]*domain.User, error) {
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	sort.Strings(names)

	var page []*domain.User
	for i := skip; i < len(names) && len(page) < limit; i++ {
		u := cloneUser(r.users[names[i]])
		u.PasswordHash = ""
		page = append(page, u)
	}
	return page, nil
}

func (r *stubUserRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.UserName]; exists {
		return nil, domain.ErrUserExists
	}
	c := cloneUser(user)
	if c.ID == "" {
		c.ID = user.UserName
	}
	r.users[c.UserName] = cloneUser(c)
	return cloneUser(c), nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.UserName]; !exists {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.UserName] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Remove(_ context.Context, userName string) error {
	if _, exists := r.users[userName]; !exists {
		return domain.ErrUserNotFound
	}
	delete(r.users, userName)
	return nil
}

type stubMealRepo struct {
	meals   map[string][]*domain.Meal
	removed []*domain.Meal
	// userStillExists, when set, is consulted during RemoveMany to verify
	// meals are removed while the owning user record still exists.
	userStillExists func() bool
	orderViolated   bool
}

func newStubMealRepo() *stubMealRepo {
	return &stubMealRepo{meals: make(map[string][]*domain.Meal)}
}

func (r *stubMealRepo) FindByUser(_ context.Context, userName string) ([]*domain.Meal, error) {
	return r.meals[userName], nil
}

func (r *stubMealRepo) RemoveMany(_ context.Context, meals []*domain.Meal) error {
	if r.userStillExists != nil && !r.userStillExists() {
		r.orderViolated = true
	}
	r.removed = append(r.removed, meals...)
	return nil
}

type stubRecorder struct {
	entries []ports.AuditEntry
}

func (r *stubRecorder) Record(entry ports.AuditEntry) {
	r.entries = append(r.entries, entry)
}

func newTestService(users *stubUserRepo, meals *stubMealRepo) (*UserService, *stubRecorder) {
	rec := &stubRecorder{}
	return NewUserService(users, meals, rec, 1750, zerolog.Nop()), rec
}

func seedUser(t *testing.T, repo *stubUserRepo, userName, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:            userName,
		UserName:      userName,
		Name:          userName,
		PasswordHash:  string(hash),
		Role:          role,
		CalorieTarget: 1800,
	}
	repo.users[userName] = u
	return u
}

func TestUserService_Create_Defaults(t *testing.T) {
	repo := newStubUserRepo()
	svc, rec := newTestService(repo, newStubMealRepo())

	created, err := svc.Create(context.Background(), ports.CreateUserInput{
		UserName: "alice",
		Password: "pass123",
		Name:     "Alice",
	}, domain.Anonymous())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Role != domain.RoleUser {
		t.Fatalf("expected forced user role, got %s", created.Role)
	}
	if created.CalorieTarget != 1750 {
		t.Fatalf("expected injected default calorie target, got %d", created.CalorieTarget)
	}
	if created.PasswordHash == "pass123" || created.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != "create" {
		t.Fatalf("expected one create audit entry, got %+v", rec.entries)
	}
}

func TestUserService_Create_NoPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestService(repo, newStubMealRepo())

	if _, err := svc.Create(context.Background(), ports.CreateUserInput{UserName: "alice"}, domain.Anonymous()); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Create_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "pass", domain.RoleUser)
	svc, _ := newTestService(repo, newStubMealRepo())

	if _, err := svc.Create(context.Background(), ports.CreateUserInput{UserName: "alice", Password: "pass"}, domain.Anonymous()); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Create_RoleForcing(t *testing.T) {
	cases := []struct {
		name     string
		actor    domain.Principal
		proposed domain.Role
		want     domain.Role
	}{
		{"anonymous requesting admin", domain.Anonymous(), domain.RoleAdmin, domain.RoleUser},
		{"manager requesting admin", domain.Principal{UserName: "meg", Role: domain.RoleManager}, domain.RoleAdmin, domain.RoleUser},
		{"manager requesting manager", domain.Principal{UserName: "meg", Role: domain.RoleManager}, domain.RoleManager, domain.RoleUser},
		{"admin requesting manager", domain.Principal{UserName: "otto", Role: domain.RoleAdmin}, domain.RoleManager, domain.RoleManager},
		{"admin requesting nothing", domain.Principal{UserName: "otto", Role: domain.RoleAdmin}, "", domain.RoleUser},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubUserRepo()
			svc, _ := newTestService(repo, newStubMealRepo())

			created, err := svc.Create(context.Background(), ports.CreateUserInput{
				UserName: "newbie",
				Password: "pass",
				Role:     tc.proposed,
			}, tc.actor)
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			if created.Role != tc.want {
				t.Fatalf("expected role %s, got %s", tc.want, created.Role)
			}
		})
	}
}

func TestUserService_Get_UserAlwaysGetsSelf(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "pass", domain.RoleUser)
	seedUser(t, repo, "bob", "pass", domain.RoleUser)
	svc, _ := newTestService(repo, newStubMealRepo())

	got, err := svc.Get(context.Background(), "bob", domain.Principal{UserName: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.UserName != "alice" {
		t.Fatalf("plain user fetched a foreign profile: %s", got.UserName)
	}

	// Managers fetch exactly what they asked for.
	got, err = svc.Get(context.Background(), "bob", domain.Principal{UserName: "meg", Role: domain.RoleManager})
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.UserName != "bob" {
		t.Fatalf("expected bob, got %s", got.UserName)
	}
}

func TestUserService_Get_NotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestService(repo, newStubMealRepo())

	if _, err := svc.Get(context.Background(), "ghost", domain.Principal{UserName: "otto", Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_List_ClampsLimit(t *testing.T) {
	repo := newStubUserRepo()
	for _, name := range []string{"alice", "bob", "carol"} {
		seedUser(t, repo, name, "pass", domain.RoleUser)
	}
	svc, _ := newTestService(repo, newStubMealRepo())

	result, err := svc.List(context.Background(), ports.ListUsersInput{Page: 1, Limit: 500})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if result.Limit != 100 {
		t.Fatalf("expected limit clamped to 100, got %d", result.Limit)
	}
	if result.Total != 3 || len(result.Users) != 3 {
		t.Fatalf("unexpected result: total=%d len=%d", result.Total, len(result.Users))
	}
	// Ordered by user name ascending.
	if result.Users[0].UserName != "alice" || result.Users[2].UserName != "carol" {
		t.Fatalf("unexpected ordering: %s..%s", result.Users[0].UserName, result.Users[2].UserName)
	}
	for _, u := range result.Users {
		if u.PasswordHash != "" {
			t.Fatalf("password hash leaked into listing")
		}
	}
}

func TestUserService_List_EmptyPageIsNotFound(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "pass", domain.RoleUser)
	svc, _ := newTestService(repo, newStubMealRepo())

	// Directory is non-empty but the page overflows.
	if _, err := svc.List(context.Background(), ports.ListUsersInput{Page: 9, Limit: 10}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for overflowing page, got %v", err)
	}
}

func TestUserService_Update_UserTargetsSelfOnly(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "pass", domain.RoleUser)
	seedUser(t, repo, "bob", "pass", domain.RoleUser)
	svc, _ := newTestService(repo, newStubMealRepo())

	// alice names bob as the target; her own record changes instead.
	updated, err := svc.Update(context.Background(), domain.ProfileChanges{
		UserName:      "bob",
		CalorieTarget: 2400,
	}, domain.Principal{UserName: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.UserName != "alice" || updated.CalorieTarget != 2400 {
		t.Fatalf("unexpected update target: %+v", updated)
	}
	if repo.users["bob"].CalorieTarget != 1800 {
		t.Fatalf("foreign record was modified")
	}
}

func TestUserService_Update_HashesNewPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "oldpass", domain.RoleUser)
	svc, _ := newTestService(repo, newStubMealRepo())

	updated, err := svc.Update(context.Background(), domain.ProfileChanges{
		UserName: "alice",
		Password: "newpass",
	}, domain.Principal{UserName: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.PasswordHash == "newpass" {
		t.Fatalf("plaintext password persisted")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpass")); err != nil {
		t.Fatalf("stored hash does not match new password: %v", err)
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestService(repo, newStubMealRepo())

	_, err := svc.Update(context.Background(), domain.ProfileChanges{UserName: "ghost", Name: "x"}, domain.Principal{UserName: "otto", Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Update_PolicyRejectionPersistsNothing(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "victor", "pass", domain.RoleManager)
	svc, rec := newTestService(repo, newStubMealRepo())

	_, err := svc.Update(context.Background(), domain.ProfileChanges{
		UserName: "victor",
		Name:     "Vic",
	}, domain.Principal{UserName: "meg", Role: domain.RoleManager})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.users["victor"].Name != "victor" {
		t.Fatalf("rejected update was partially applied")
	}
	if len(rec.entries) != 0 {
		t.Fatalf("rejected update produced audit entries: %+v", rec.entries)
	}
}

func TestUserService_Delete_CascadesMealsFirst(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "pass", domain.RoleUser)
	meals := newStubMealRepo()
	meals.meals["alice"] = []*domain.Meal{
		{ID: "m1", UserName: "alice"},
		{ID: "m2", UserName: "alice"},
	}
	meals.userStillExists = func() bool {
		_, ok := repo.users["alice"]
		return ok
	}
	svc, rec := newTestService(repo, meals)

	err := svc.Delete(context.Background(), "alice", domain.Principal{UserName: "meg", Role: domain.RoleManager})
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(meals.removed) != 2 {
		t.Fatalf("expected 2 meals removed, got %d", len(meals.removed))
	}
	if meals.orderViolated {
		t.Fatalf("user record was removed before its meals")
	}
	if _, ok := repo.users["alice"]; ok {
		t.Fatalf("user record still present after delete")
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != "delete" {
		t.Fatalf("expected one delete audit entry, got %+v", rec.entries)
	}
}

func TestUserService_Delete_AuthorizationMatrix(t *testing.T) {
	cases := []struct {
		name    string
		actor   domain.Principal
		target  string
		role    domain.Role
		wantErr error
	}{
		{"manager deletes user", domain.Principal{UserName: "meg", Role: domain.RoleManager}, "alice", domain.RoleUser, nil},
		{"manager deletes manager", domain.Principal{UserName: "meg", Role: domain.RoleManager}, "mike", domain.RoleManager, domain.ErrForbidden},
		{"admin deletes manager", domain.Principal{UserName: "otto", Role: domain.RoleAdmin}, "mike", domain.RoleManager, nil},
		{"admin deletes self", domain.Principal{UserName: "otto", Role: domain.RoleAdmin}, "otto", domain.RoleAdmin, domain.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubUserRepo()
			seedUser(t, repo, tc.target, "pass", tc.role)
			svc, _ := newTestService(repo, newStubMealRepo())

			err := svc.Delete(context.Background(), tc.target, tc.actor)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if _, ok := repo.users[tc.target]; !ok {
				t.Fatalf("target was deleted despite rejection")
			}
		})
	}
}

func TestUserService_Delete_NotFoundBeforeCascade(t *testing.T) {
	repo := newStubUserRepo()
	meals := newStubMealRepo()
	meals.meals["ghost"] = []*domain.Meal{{ID: "m1", UserName: "ghost"}}
	svc, _ := newTestService(repo, meals)

	err := svc.Delete(context.Background(), "ghost", domain.Principal{UserName: "otto", Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(meals.removed) != 0 {
		t.Fatalf("cascade ran for a missing user")
	}
}

// Full walk through the create/update scenario: sign-up without password
// fails, a manager-created account is always a plain user, the manager may
// then adjust its calorie target, but promoting it to admin is denied.
func TestUserService_ManagerScenario(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestService(repo, newStubMealRepo())
	meg := domain.Principal{UserName: "meg", Role: domain.RoleManager}

	if _, err := svc.Create(context.Background(), ports.CreateUserInput{UserName: "alice"}, meg); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials without password, got %v", err)
	}

	alice, err := svc.Create(context.Background(), ports.CreateUserInput{
		UserName: "alice",
		Password: "pass",
		Role:     domain.RoleAdmin, // requested, must be ignored
	}, meg)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if alice.Role != domain.RoleUser {
		t.Fatalf("manager-created account must be a plain user, got %s", alice.Role)
	}

	updated, err := svc.Update(context.Background(), domain.ProfileChanges{
		UserName:      "alice",
		CalorieTarget: 2000,
	}, meg)
	if err != nil {
		t.Fatalf("manager update of plain user failed: %v", err)
	}
	if updated.CalorieTarget != 2000 {
		t.Fatalf("calorie target not applied: %d", updated.CalorieTarget)
	}

	_, err = svc.Update(context.Background(), domain.ProfileChanges{
		UserName: "alice",
		Role:     domain.RoleAdmin,
	}, meg)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for user->admin by manager, got %v", err)
	}
}
