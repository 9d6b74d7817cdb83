package environments

import (
	"context"
	"errors"
	"testing"
	"time"

	internalsessions "github.com/goliatone/go-appcatalog/internal/sessions"
	"github.com/goliatone/go-appcatalog/objects"
	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

func newFixture(t *testing.T) (Service, EnvironmentRepository, internalsessions.SessionRepository) {
	t.Helper()
	envRepo := NewMemoryRepository()
	sessionRepo := internalsessions.NewMemoryRepository()
	svc := NewService(envRepo, sessionRepo)
	return svc, envRepo, sessionRepo
}

func createEnvironment(t *testing.T, svc Service, name string) *Environment {
	t.Helper()
	env, err := svc.CreateEnvironment(context.Background(), CreateEnvironmentInput{
		Name:     name,
		TenantID: "tenant-a",
		UserID:   "user-1",
	})
	if err != nil {
		t.Fatalf("create environment: %v", err)
	}
	return env
}

func openSessionFor(t *testing.T, repo internalsessions.SessionRepository, env *Environment) *catalogsessions.Session {
	t.Helper()
	now := time.Now().UTC()
	session := &catalogsessions.Session{
		ID:            uuid.New(),
		EnvironmentID: env.ID,
		UserID:        "user-1",
		Version:       env.Version,
		State:         catalogsessions.StateOpened,
		Description:   objects.Clone(env.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := repo.Create(context.Background(), session)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return created
}

func TestCreateEnvironmentBuildsDocument(t *testing.T) {
	svc, _, _ := newFixture(t)
	env := createEnvironment(t, svc, "production")

	if env.Version != 0 {
		t.Fatalf("new environment must start at version 0, got %d", env.Version)
	}
	root, ok := env.Description[objects.KeyObjects].(map[string]any)
	if !ok {
		t.Fatal("expected objects tree in description")
	}
	if root["name"] != "production" {
		t.Fatalf("expected environment name in root object, got %v", root["name"])
	}
	if objects.TypeName(root) != EnvironmentTypeName {
		t.Fatalf("unexpected root type: %s", objects.TypeName(root))
	}
	if objects.ID(root) == "" {
		t.Fatal("root object must carry a generated id")
	}

	networks, ok := root["defaultNetworks"].(map[string]any)
	if !ok {
		t.Fatal("expected default networks")
	}
	network := networks["environment"].(map[string]any)
	if network["name"] != "production-network" {
		t.Fatalf("unexpected network name: %v", network["name"])
	}
	if networks["flat"] != nil {
		t.Fatal("flat network must be nil")
	}

	if env.Description["project_id"] != "tenant-a" || env.Description["user_id"] != "user-1" {
		t.Fatalf("expected creator info in description, got %v", env.Description)
	}
}

func TestCreateEnvironmentConfiguredNetworkDriver(t *testing.T) {
	envRepo := NewMemoryRepository()
	sessionRepo := internalsessions.NewMemoryRepository()
	svc := NewService(envRepo, sessionRepo, WithDefaultNetworkDriver("nova"))

	env := createEnvironment(t, svc, "edge")

	root := env.Description[objects.KeyObjects].(map[string]any)
	networks := root["defaultNetworks"].(map[string]any)
	network := networks["environment"].(map[string]any)
	if got := objects.TypeName(network); got != DefaultNetworkTypes["nova"] {
		t.Fatalf("expected nova network type, got %s", got)
	}

	// An explicit driver on the input still wins over the configured default.
	explicit, err := svc.CreateEnvironment(context.Background(), CreateEnvironmentInput{
		Name:          "core",
		TenantID:      "tenant-a",
		NetworkDriver: "neutron",
	})
	if err != nil {
		t.Fatalf("create environment: %v", err)
	}
	root = explicit.Description[objects.KeyObjects].(map[string]any)
	network = root["defaultNetworks"].(map[string]any)["environment"].(map[string]any)
	if got := objects.TypeName(network); got != DefaultNetworkTypes["neutron"] {
		t.Fatalf("expected neutron network type, got %s", got)
	}
}

func TestCreateEnvironmentValidation(t *testing.T) {
	svc, _, _ := newFixture(t)

	if _, err := svc.CreateEnvironment(context.Background(), CreateEnvironmentInput{Name: "  "}); !errors.Is(err, ErrEnvironmentNameRequired) {
		t.Fatalf("expected ErrEnvironmentNameRequired, got %v", err)
	}
	if _, err := svc.CreateEnvironment(context.Background(), CreateEnvironmentInput{Name: "9lives"}); !errors.Is(err, ErrEnvironmentNameInvalid) {
		t.Fatalf("expected ErrEnvironmentNameInvalid, got %v", err)
	}
	if _, err := svc.CreateEnvironment(context.Background(), CreateEnvironmentInput{Name: "ok", NetworkDriver: "flannel"}); !errors.Is(err, ErrNetworkDriverUnknown) {
		t.Fatalf("expected ErrNetworkDriverUnknown, got %v", err)
	}
}

func TestGetEnvironmentTenantIsolation(t *testing.T) {
	svc, _, _ := newFixture(t)
	env := createEnvironment(t, svc, "prod")

	if _, err := svc.GetEnvironment(context.Background(), env.ID, "tenant-a"); err != nil {
		t.Fatalf("owner tenant should read environment: %v", err)
	}
	if _, err := svc.GetEnvironment(context.Background(), env.ID, "tenant-b"); !errors.Is(err, ErrEnvironmentForbidden) {
		t.Fatalf("expected ErrEnvironmentForbidden, got %v", err)
	}
	if _, err := svc.GetEnvironment(context.Background(), uuid.New(), "tenant-a"); !errors.Is(err, ErrEnvironmentNotFound) {
		t.Fatalf("expected ErrEnvironmentNotFound, got %v", err)
	}
}

func TestGetStatusFollowsSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, sessionRepo := newFixture(t)
	env := createEnvironment(t, svc, "prod")

	status, err := svc.GetStatus(ctx, env.ID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status != StatusReady {
		t.Fatalf("expected ready with no sessions, got %s", status)
	}

	session := openSessionFor(t, sessionRepo, env)
	if status, _ = svc.GetStatus(ctx, env.ID); status != StatusPending {
		t.Fatalf("expected pending with open session, got %s", status)
	}

	session.State = catalogsessions.StateDeploying
	if _, err := sessionRepo.Update(ctx, session); err != nil {
		t.Fatalf("update session: %v", err)
	}
	if status, _ = svc.GetStatus(ctx, env.ID); status != StatusDeploying {
		t.Fatalf("expected deploying, got %s", status)
	}
}

func TestDeleteEnvironmentNullsDraftObjects(t *testing.T) {
	ctx := context.Background()
	svc, _, sessionRepo := newFixture(t)
	env := createEnvironment(t, svc, "prod")
	session := openSessionFor(t, sessionRepo, env)

	if err := svc.DeleteEnvironment(ctx, env.ID, session.ID); err != nil {
		t.Fatalf("delete environment: %v", err)
	}

	updated, err := sessionRepo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	tree, ok := updated.Description[objects.KeyObjects]
	if !ok || tree != nil {
		t.Fatalf("expected nil objects tree in draft, got %v", tree)
	}
}

func TestGetDescriptionPrefersValidSessionDraft(t *testing.T) {
	ctx := context.Background()
	svc, envRepo, sessionRepo := newFixture(t)
	env := createEnvironment(t, svc, "prod")
	session := openSessionFor(t, sessionRepo, env)

	session.Description["marker"] = "draft"
	if _, err := sessionRepo.Update(ctx, session); err != nil {
		t.Fatalf("update session: %v", err)
	}

	doc, err := svc.GetDescription(ctx, env.ID, &session.ID, false)
	if err != nil {
		t.Fatalf("get description: %v", err)
	}
	if doc.(map[string]any)["marker"] != "draft" {
		t.Fatal("expected the session draft to be returned")
	}

	// Once the environment version moves past the session, the environment
	// document wins.
	stored, _ := envRepo.GetByID(ctx, env.ID)
	stored.Version++
	if _, err := envRepo.Update(ctx, stored); err != nil {
		t.Fatalf("update environment: %v", err)
	}
	doc, err = svc.GetDescription(ctx, env.ID, &session.ID, false)
	if err != nil {
		t.Fatalf("get description: %v", err)
	}
	if _, ok := doc.(map[string]any)["marker"]; ok {
		t.Fatal("stale session draft must not be returned")
	}
}

func TestGetDescriptionInnerReturnsObjectsTree(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFixture(t)
	env := createEnvironment(t, svc, "prod")

	inner, err := svc.GetDescription(ctx, env.ID, nil, true)
	if err != nil {
		t.Fatalf("get description: %v", err)
	}
	root, ok := inner.(map[string]any)
	if !ok || root["name"] != "prod" {
		t.Fatalf("expected objects tree, got %v", inner)
	}
}

func TestDataPathOperations(t *testing.T) {
	ctx := context.Background()
	svc, _, sessionRepo := newFixture(t)
	env := createEnvironment(t, svc, "prod")
	session := openSessionFor(t, sessionRepo, env)

	if err := svc.UpdateData(ctx, session.ID, "/Objects/services", []any{}); err != nil {
		t.Fatalf("seed services list: %v", err)
	}
	service := map[string]any{
		objects.MetadataKey: map[string]any{"id": "svc-1", "type": "example.Database"},
		"name":              "db",
	}
	if err := svc.InsertData(ctx, session.ID, "/Objects/services", service); err != nil {
		t.Fatalf("insert service: %v", err)
	}

	got, err := svc.GetData(ctx, session.ID, "/Objects/services/svc-1/name")
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	if got != "db" {
		t.Fatalf("expected db, got %v", got)
	}

	if err := svc.UpdateData(ctx, session.ID, "/Objects/services/svc-1/name", "postgres"); err != nil {
		t.Fatalf("update data: %v", err)
	}
	if err := svc.RemoveData(ctx, session.ID, "/Objects/services/svc-1"); err != nil {
		t.Fatalf("remove data: %v", err)
	}
	services, err := svc.GetData(ctx, session.ID, "/Objects/services")
	if err != nil {
		t.Fatalf("get services: %v", err)
	}
	if len(services.([]any)) != 0 {
		t.Fatalf("expected empty services list, got %v", services)
	}
}

func TestDataPathsRejectInvalidSession(t *testing.T) {
	ctx := context.Background()
	svc, envRepo, sessionRepo := newFixture(t)
	env := createEnvironment(t, svc, "prod")
	session := openSessionFor(t, sessionRepo, env)

	stored, _ := envRepo.GetByID(ctx, env.ID)
	stored.Version++
	if _, err := envRepo.Update(ctx, stored); err != nil {
		t.Fatalf("update environment: %v", err)
	}

	if _, err := svc.GetData(ctx, session.ID, "/Objects/name"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	if err := svc.UpdateData(ctx, session.ID, "/Objects/name", "x"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestRemoveEnvironment(t *testing.T) {
	ctx := context.Background()
	svc, envRepo, _ := newFixture(t)
	env := createEnvironment(t, svc, "prod")

	if err := svc.RemoveEnvironment(ctx, env.ID); err != nil {
		t.Fatalf("remove environment: %v", err)
	}
	if _, err := envRepo.GetByID(ctx, env.ID); err == nil {
		t.Fatal("environment should be gone")
	}
	if err := svc.RemoveEnvironment(ctx, env.ID); !errors.Is(err, ErrEnvironmentNotFound) {
		t.Fatalf("expected ErrEnvironmentNotFound, got %v", err)
	}
}
