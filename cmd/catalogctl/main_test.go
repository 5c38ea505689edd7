package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"cinevault/internal/domain"
	catalog "cinevault/internal/grpc"
	"cinevault/internal/service"
	"cinevault/internal/store"
	"cinevault/pkg/auth"
)

func startCatalog(t *testing.T) (*service.Services, dialFunc) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewMemoryStore(logger), auth.NewBcryptHasher(bcrypt.MinCost), logger, service.Config{})

	lis := bufconn.Listen(1 << 20)
	srv := gogrpc.NewServer()
	catalog.RegisterCatalogServer(srv, catalog.NewServer(svc, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dial := func(addr string, logger *slog.Logger) (*catalog.Client, error) {
		return catalog.NewClient(addr, logger,
			gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}))
	}
	return svc, dial
}

func runApp(t *testing.T, dial dialFunc, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"catalogctl", "--addr", "passthrough:///bufnet", "--log-level", "error"}, args...)
	err := newApp(&out, dial).Run(context.Background(), argv)
	return out.String(), err
}

func TestMovieCommands(t *testing.T) {
	ctx := context.Background()
	svc, dial := startCatalog(t)
	date := domain.NewDate(2021, 10, 22)
	id, err := svc.Movies.Create(ctx, domain.MovieRequest{Title: "Dune", Genre: "SciFi", Director: "Villeneuve", ReleaseDate: &date})
	require.NoError(t, err)

	out, err := runApp(t, dial, "movie-exists", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"movie_id":1,"exists":true}`, out)

	out, err = runApp(t, dial, "movie-exists", "42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"movie_id":42,"exists":false}`, out)

	out, err = runApp(t, dial, "movie", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.JSONEq(t, `{"id":1,"title":"Dune","genre":"SciFi","director":"Villeneuve",
		"release_date":"2021-10-22","average_rating":0,"review_count":0}`, out)
}

func TestUserCommand(t *testing.T) {
	svc, dial := startCatalog(t)
	_, err := svc.Users.Create(context.Background(), domain.UserRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	out, err := runApp(t, dial, "user", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"username":"alice","email":"alice@example.com"}`, out)

	_, err = runApp(t, dial, "user", "7")
	assert.Error(t, err)
}

func TestInvalidID(t *testing.T) {
	_, dial := startCatalog(t)
	_, err := runApp(t, dial, "movie", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid id "abc"`)
}
