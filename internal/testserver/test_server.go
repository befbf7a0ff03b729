package testserver

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/defectlog/internal/domain/activity"
	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/rpggio/defectlog/internal/export"
	"github.com/rpggio/defectlog/internal/jsonfile"
	"github.com/rpggio/defectlog/internal/mcp"
	"github.com/rpggio/defectlog/internal/scheduler"
	"github.com/rpggio/defectlog/internal/transport"
	"github.com/stretchr/testify/require"
)

// Clock is a settable time source shared by every component of a TestServer.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type TestServer struct {
	Server    *httptest.Server
	Token     string
	StorePath string
	ExportDir string
	Clock     *Clock
	Records   *record.Service
	Exports   *export.Engine
	Scheduler *scheduler.Scheduler
}

// New starts an HTTP server backed by a JSON file store and export directory
// under t.TempDir(). The clock starts at 2026-03-14 08:00 local time.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	dir := t.TempDir()
	clock := &Clock{t: time.Date(2026, 3, 14, 8, 0, 0, 0, time.Local)}
	storePath := filepath.Join(dir, "registros_defeitos.json")
	exportDir := filepath.Join(dir, export.DefaultDir)

	activitySvc := activity.NewService(activity.NewMemoryRepository(activity.DefaultCapacity), nil)
	recordSvc := record.NewService(jsonfile.NewRecordRepository(storePath), activitySvc, nil, record.WithClock(clock.Now))
	recordSvc.Load(t.Context())

	engine := export.NewEngine(recordSvc, activitySvc, export.Config{Dir: exportDir, Now: clock.Now}, nil)
	sched, err := scheduler.New(engine, scheduler.Config{
		Triggers: []string{"05:44", "18:10"},
		Now:      clock.Now,
	}, nil)
	require.NoError(t, err)

	services := mcp.Services{
		Records:  recordSvc,
		Exports:  engine,
		Schedule: sched,
		Activity: activitySvc,
	}
	resolver := transport.NewStaticTokenResolver(token, "test")
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	streamable := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: false, SessionTimeout: time.Minute},
	)

	server := httptest.NewServer(transport.NewServer(
		mcp.NewHandler(services),
		transport.AuthMiddleware(resolver),
		transport.WithMCP(streamable),
	))
	t.Cleanup(server.Close)

	return &TestServer{
		Server:    server,
		Token:     token,
		StorePath: storePath,
		ExportDir: exportDir,
		Clock:     clock,
		Records:   recordSvc,
		Exports:   engine,
		Scheduler: sched,
	}
}
