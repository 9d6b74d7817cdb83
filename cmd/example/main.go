package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	appcatalog "github.com/goliatone/go-appcatalog"
	"github.com/goliatone/go-appcatalog/internal/di"
	"github.com/goliatone/go-appcatalog/internal/engine"
	"github.com/goliatone/go-appcatalog/internal/environments"
	"github.com/goliatone/go-appcatalog/objects"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
)

type printSink struct{}

func (printSink) Emit(_ context.Context, event interfaces.Event) error {
	fmt.Printf("event: %s %v\n", event.Type, event.Payload)
	return nil
}

func main() {
	ctx := context.Background()

	cfg := appcatalog.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "console"
	cfg.Logging.Level = "info"

	dispatcher := engine.NewRecording()

	module, err := appcatalog.New(cfg,
		di.WithDispatcher(dispatcher),
		di.WithEventSink(printSink{}),
	)
	if err != nil {
		log.Fatalf("initialise catalog: %v", err)
	}

	creds := interfaces.Credentials{
		Token:     "demo-token",
		ProjectID: "tenant-demo",
		UserID:    "user-demo",
	}

	env, err := module.Environments().CreateEnvironment(ctx, environments.CreateEnvironmentInput{
		Name:     "demo",
		TenantID: creds.ProjectID,
		UserID:   creds.UserID,
	})
	if err != nil {
		log.Fatalf("create environment: %v", err)
	}
	fmt.Printf("environment %s created at version %d\n", env.ID, env.Version)

	session, err := module.Sessions().OpenSession(ctx, env.ID, creds.UserID)
	if err != nil {
		log.Fatalf("open session: %v", err)
	}
	fmt.Printf("session %s opened against version %d\n", session.ID, session.Version)

	app := map[string]any{
		"name": "demo-app",
		objects.MetadataKey: map[string]any{
			"id":   "app-1",
			"type": "catalog.apps.Demo",
			"_actions": map[string]any{
				"app-1_restart": map[string]any{"name": "restart", "enabled": true},
			},
		},
	}
	if err := module.Environments().UpdateData(ctx, session.ID, "/Objects/services", []any{app}); err != nil {
		log.Fatalf("add application: %v", err)
	}

	deploymentID, err := module.Sessions().Deploy(ctx, session.ID, creds)
	if err != nil {
		log.Fatalf("deploy: %v", err)
	}
	fmt.Printf("deployment %s submitted\n", deploymentID)

	tasks := dispatcher.Tasks()
	if len(tasks) == 0 {
		log.Fatal("no task dispatched")
	}
	task := tasks[len(tasks)-1]

	// The engine runs off-process; simulate its progress reports and the
	// final result callback.
	if err := module.Results().ReportNotification(ctx, interfaces.Report{
		ID:            "app-1",
		EnvironmentID: env.ID.String(),
		Level:         "info",
		Text:          "Instance started",
	}); err != nil {
		log.Fatalf("report notification: %v", err)
	}

	if err := module.Results().ProcessResult(ctx, env.ID, interfaces.Result{Model: task.Model}); err != nil {
		log.Fatalf("process result: %v", err)
	}

	status, err := module.Environments().GetStatus(ctx, env.ID)
	if err != nil {
		log.Fatalf("get status: %v", err)
	}
	fmt.Printf("environment status: %s\n", status)

	statuses, err := module.Deployments().ListStatuses(ctx, env.ID, deploymentID)
	if err != nil {
		log.Fatalf("list statuses: %v", err)
	}
	fmt.Println("deployment log:")
	for _, line := range statuses {
		fmt.Printf("  [%s] %s\n", line.Level, line.Text)
	}

	actionDeploymentID, err := module.Actions().Execute(ctx, env.ID, "app-1_restart", nil, creds)
	if err != nil {
		log.Fatalf("execute action: %v", err)
	}
	fmt.Printf("action deployment %s submitted\n", actionDeploymentID)

	tasks = dispatcher.Tasks()
	actionTask := tasks[len(tasks)-1]
	if err := module.Results().ProcessResult(ctx, env.ID, interfaces.Result{
		Model:  actionTask.Model,
		Action: map[string]any{"result": "restarted"},
	}); err != nil {
		log.Fatalf("process action result: %v", err)
	}

	description, err := module.Environments().GetDescription(ctx, env.ID, nil, false)
	if err != nil {
		log.Fatalf("get description: %v", err)
	}
	encoded, _ := json.MarshalIndent(description, "", "  ")
	fmt.Printf("environment description:\n%s\n", encoded)
}
