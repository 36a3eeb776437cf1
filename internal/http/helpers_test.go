package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

	_ "github.com/adilzhan/taskgate/docs"
	"github.com/adilzhan/taskgate/internal/config"
	api "github.com/adilzhan/taskgate/internal/http"
	"github.com/adilzhan/taskgate/internal/log"
	"github.com/adilzhan/taskgate/internal/oauth"
	"github.com/adilzhan/taskgate/internal/queue"
	"github.com/adilzhan/taskgate/internal/repo"
)

const (
	testJWTSecret   = "test_jwt_secret"
	testAccessToken = "test-access-token"
)

type testEnv struct {
	T      *testing.T
	Ctx    context.Context
	Mongo  *mongodb.MongoDBContainer
	Store  *repo.Store
	Router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithPub(t, queue.NewNoop())
}

func newTestEnvWithPub(t *testing.T, pub queue.Publisher) *testEnv {
	t.Helper()
	ctx := context.Background()

	mc, err := mongodb.Run(ctx, "mongo:6")
	if err != nil {
		t.Fatalf("mongo container: %v", err)
	}

	uri, err := mc.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo uri: %v", err)
	}

	if _, err := log.Init(false); err != nil {
		t.Fatalf("log init: %v", err)
	}

	store, err := repo.NewStore(ctx, uri, "taskgate_test")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		JWTSecret:   testJWTSecret,
		AccessToken: testAccessToken,
		FrontendURL: "http://localhost:3000",
	}
	google := oauth.NewGoogle("client-id", "client-secret", "http://localhost/cb", "state-key")

	gin.SetMode(gin.TestMode)
	h := api.NewHandler(cfg, store, google, nil, pub)
	r := api.NewRouter(h)

	return &testEnv{T: t, Ctx: ctx, Mongo: mc, Store: store, Router: r}
}

func (e *testEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close(e.Ctx)
	}
	if e.Mongo != nil {
		_ = e.Mongo.Terminate(e.Ctx)
	}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	ResponseObject json.RawMessage `json:"responseObject"`
	StatusCode     int             `json:"statusCode"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("envelope parse: %v; body=%s", err, w.Body.String())
	}
	return env
}

func (e *testEnv) countDocs(coll string) int64 {
	e.T.Helper()
	n, err := e.Store.DB.Collection(coll).CountDocuments(e.Ctx, bson.M{})
	if err != nil {
		e.T.Fatalf("count %s: %v", coll, err)
	}
	return n
}
