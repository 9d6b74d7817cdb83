package deploycmd

import (
	"context"
	"testing"

	internalsessions "github.com/goliatone/go-appcatalog/internal/sessions"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type fakeSessionService struct {
	deployed []uuid.UUID
	taskID   uuid.UUID
	err      error
}

func (f *fakeSessionService) OpenSession(_ context.Context, _ uuid.UUID, _ string) (*catalogsessions.Session, error) {
	return nil, nil
}

func (f *fakeSessionService) GetSession(_ context.Context, _ uuid.UUID, _ string) (*catalogsessions.Session, error) {
	return nil, nil
}

func (f *fakeSessionService) Validate(_ context.Context, _ *catalogsessions.Session) (bool, error) {
	return true, nil
}

func (f *fakeSessionService) DeleteSession(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (f *fakeSessionService) Deploy(_ context.Context, sessionID uuid.UUID, _ interfaces.Credentials) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.deployed = append(f.deployed, sessionID)
	return f.taskID, nil
}

var _ internalsessions.Service = (*fakeSessionService)(nil)

func TestDeployEnvironmentCommandValidation(t *testing.T) {
	cmd := DeployEnvironmentCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation failure for empty command")
	}

	cmd = DeployEnvironmentCommand{SessionID: uuid.New(), UserID: "user-1"}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}

func TestDeployEnvironmentHandlerDeploys(t *testing.T) {
	svc := &fakeSessionService{taskID: uuid.New()}
	handler := NewDeployEnvironmentHandler(svc, nil)

	sessionID := uuid.New()
	err := handler.Execute(context.Background(), DeployEnvironmentCommand{
		SessionID: sessionID,
		UserID:    "user-1",
		Token:     "tok",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(svc.deployed) != 1 || svc.deployed[0] != sessionID {
		t.Fatalf("expected deploy call for %s, got %v", sessionID, svc.deployed)
	}
}

func TestDeployEnvironmentHandlerRejectsInvalidMessage(t *testing.T) {
	svc := &fakeSessionService{}
	handler := NewDeployEnvironmentHandler(svc, nil)

	err := handler.Execute(context.Background(), DeployEnvironmentCommand{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(svc.deployed) != 0 {
		t.Fatal("invalid command must not reach the service")
	}
}

func TestExecuteActionCommandValidation(t *testing.T) {
	cmd := ExecuteActionCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation failure for empty command")
	}

	cmd = ExecuteActionCommand{
		EnvironmentID: uuid.New(),
		ActionID:      "act-1",
		UserID:        "user-1",
	}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}
