//go:build integration_pg

package module

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"devquest/internal/core/xp"
	"devquest/internal/core/xprules"
	"devquest/internal/modkit"
	"devquest/internal/platform/config"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/store"
	"devquest/internal/platform/store/schema"
	"devquest/internal/services/intake/domain"
	pdom "devquest/internal/services/progress/domain"
	progressmod "devquest/internal/services/progress/module"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres gives the first image pull a generous deadline
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "devquest",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/devquest?sslmode=disable", host, port.Port())
}

func TestPipeline_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "devquest-integration",
		PG:      store.PGConfig{Enabled: true, URL: startPostgres(t), MaxConns: 4, ConnectRetries: 5},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	require.NoError(t, schema.Apply(ctx, st.PG))
	require.NoError(t, schema.Apply(ctx, st.PG), "schema is idempotent")

	rules, err := xprules.Default()
	require.NoError(t, err)
	registry, err := xp.FromRules(rules)
	require.NoError(t, err)

	deps := modkit.FromStore(config.New(), *logger.Get(), st, nil)
	progress := progressmod.New(deps, rules)
	pp := modkit.MustPortsOf[progressmod.Ports](progress)
	ingest := modkit.MustPortsOf[Ports](New(deps, registry, modkit.WithPorts(Ports{Processor: pp.Processor}))).Ingest

	_, err = pp.Reader.Enroll(ctx, pdom.EnrollInput{UserID: "u1", Login: "octocat"})
	require.NoError(t, err)

	push := domain.RawEventInput{
		ExternalID:        "delivery-1",
		ProviderEventKind: "push",
		UserID:            "u1",
		Payload:           json.RawMessage(`{"ref":"refs/heads/main","size":1,"commits":[{}],"repository":{"full_name":"octo/app"}}`),
	}
	first, err := ingest.Ingest(ctx, push)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Equal(t, int64(10), first.TotalXP)

	again, err := ingest.Ingest(ctx, push)
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Equal(t, domain.StageGate, again.Stage)

	view, err := pp.Reader.Status(ctx, pdom.StatusQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), view.Progress.XP, "redelivery awards nothing")

	ledger, err := pp.Reader.VerifyLedger(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ledger.Conserved)
	assert.True(t, ledger.Replayable)
	assert.Equal(t, 1, ledger.Entries)

	_, err = ingest.Ingest(ctx, domain.RawEventInput{
		ExternalID: "delivery-2", ProviderEventKind: "push", UserID: "ghost",
		Payload: push.Payload,
	})
	assert.Error(t, err, "unenrolled users are not created implicitly")
}
