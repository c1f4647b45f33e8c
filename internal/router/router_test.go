package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/database/client"
	fluentdRepo "rewear/internal/database/fluentd/repository"
	"rewear/internal/database/mongodb/model"
	redisRepo "rewear/internal/database/redis/repository"
	"rewear/internal/handler"
	"rewear/internal/identity"
	"rewear/internal/media"
	"rewear/internal/middleware"
	"rewear/internal/router"
	"rewear/internal/service"
	"rewear/internal/telemetry"
	"rewear/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocloud.dev/blob/memblob"
)

// fakeVerifier token 直接對應身分
type fakeVerifier map[string]*identity.Identity

func (f fakeVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	if ident, ok := f[token]; ok {
		return ident, nil
	}
	return nil, identity.ErrInvalidToken
}

type testServer struct {
	engine *gin.Engine
	mem    *testutil.Memory
	health *service.HealthService
	alice  *model.User
	bob    *model.User
	admin  *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conf := &config.Configuration{}
	conf.App = config.App{Env: "test", Name: "rewear", Version: "1.0.0", BasePath: "/api", MaxUploadMB: 1}
	conf.Media = config.Media{Driver: config.MediaDriverBucket, Folder: "rewear", MaxDimension: 64, MaxFiles: 5}

	logger := zap.NewNop()
	trace := telemetry.NewNoopTrace()
	metric := telemetry.NewMetricWith(conf, prometheus.NewRegistry())
	logRepo := fluentdRepo.NewLogRepository(conf, &client.NoopClient{})
	rateRepo := redisRepo.NewRateLimiterRepository(trace, client.NewRedisClientFrom(logger, nil))

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	store := media.NewBucketStore(logger, bucket, conf)

	mem := testutil.NewMemory()
	srv := &testServer{
		mem:   mem,
		alice: mem.SeedUser("Alice", core.RoleUser, 100),
		bob:   mem.SeedUser("Bob", core.RoleUser, 100),
		admin: mem.SeedUser("Admin", core.RoleAdmin, 1000),
	}
	verifier := fakeVerifier{
		"alice": {Subject: srv.alice.FirebaseUID, Email: srv.alice.Email},
		"bob":   {Subject: srv.bob.FirebaseUID, Email: srv.bob.Email},
		"admin": {Subject: srv.admin.FirebaseUID, Email: srv.admin.Email},
		"carol": {Subject: "uid-carol", Email: "Carol@Example.com", EmailVerified: true},
	}

	userService := service.NewUserService(trace, logger, mem.Users())
	itemService := service.NewItemService(trace, metric, logger, conf, mem.Items(), mem.Users(), store)
	swapService := service.NewSwapService(trace, metric, logger, mem.Swaps(), mem.Items(), mem.Users(), mem.Transactor(), mem.Auditor())
	srv.health = service.NewHealthService()

	auth := middleware.NewAuth(logger, trace, verifier, userService)
	rateLimit := middleware.NewRateLimit(logger, trace, metric, conf, rateRepo)
	bodyLimit := middleware.NewBodyLimit(conf)
	healthHandler := handler.NewHealthHandler(srv.health, conf)

	srv.engine = router.NewRouter(
		conf,
		middleware.NewTraceEntry(trace, metric, conf),
		middleware.NewRecovery(logger, trace, metric, conf, logRepo),
		middleware.NewCors(trace, conf),
		bodyLimit,
		middleware.NewLogger(logger, trace, conf, logRepo),
		middleware.NewResponse(logger, trace, metric, conf, logRepo),
		healthHandler,
		router.NewHealthRouter(healthHandler),
		router.NewAuthRouter(handler.NewAuthHandler(trace, userService), auth, rateLimit),
		router.NewItemRouter(handler.NewItemHandler(trace, itemService, bodyLimit), auth, rateLimit),
		router.NewSwapRouter(handler.NewSwapHandler(trace, swapService), auth, rateLimit),
		router.NewMediaRouter(handler.NewMediaHandler(trace, logger, store)),
	)
	return srv
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(t, req, token)
}

func (s *testServer) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for x := 0; x < 120; x++ {
		for y := 0; y < 80; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartItem(t *testing.T, data string, images ...[]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("data", data))
	for i, img := range images {
		fw, err := mw.CreateFormFile("images", "photo"+string(rune('a'+i))+".png")
		require.NoError(t, err)
		_, err = fw.Write(img)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/items", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "ReWear API is running", body["message"])
	assert.NotEmpty(t, body["requestId"])
	assert.Equal(t, body["requestId"], w.Header().Get("X-Request-Id"))
}

func TestReadinessFollowsHealthService(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/health/readiness", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.health.SetReady(true)
	w, body := s.do(t, http.MethodGet, "/api/health/readiness", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestVersion(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/version", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "test", body["env"])
	assert.NotEmpty(t, body["goVersion"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", body["message"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["requestId"])
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/auth/profile/"+s.alice.FirebaseUID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", body["message"])

	w, body = s.do(t, http.MethodGet, "/api/auth/profile/"+s.alice.FirebaseUID, "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", body["message"])

	// 有效 token 但尚未註冊
	w, body = s.do(t, http.MethodGet, "/api/auth/profile/uid-carol", "carol", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", body["message"])
}

func TestRegisterAndProfile(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/auth/register", "carol", gin.H{"name": "Carol"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "User registered successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "carol@example.com", user["email"])
	assert.EqualValues(t, core.WelcomePoints, user["points"])
	assert.Equal(t, "user", user["role"])

	w, body = s.do(t, http.MethodPost, "/api/auth/register", "carol", gin.H{"name": "Carol"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists", body["message"])

	w, body = s.do(t, http.MethodGet, "/api/auth/profile/uid-carol", "carol", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Carol", body["user"].(map[string]any)["name"])

	// 他人無法修改
	w, _ = s.do(t, http.MethodPut, "/api/auth/profile/uid-carol", "bob", gin.H{"name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/auth/register", "carol", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", body["message"])
}

func TestPoints(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPut, "/api/auth/points/"+s.alice.FirebaseUID, "alice", gin.H{"points": 150, "operation": "subtract"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient points", body["message"])

	w, body = s.do(t, http.MethodPut, "/api/auth/points/"+s.alice.FirebaseUID, "alice", gin.H{"points": 25})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Points updated successfully", body["message"])
	assert.EqualValues(t, 125, body["user"].(map[string]any)["points"])
}

func TestItemLifecycle(t *testing.T) {
	s := newTestServer(t)

	data := `{"title":"Denim Jacket","description":"Barely worn","category":"Outerwear","type":"Jacket","size":"M","condition":"Like New","pointsRequired":30}`
	w, body := s.serve(t, multipartItem(t, data, pngBytes(t)), "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Item created successfully", body["message"])

	item := body["item"].(map[string]any)
	itemID := item["_id"].(string)
	assert.Equal(t, "pending", item["status"])
	assert.Equal(t, false, item["approved"])
	assert.Equal(t, "Alice", item["uploaderName"])
	images := item["images"].([]any)
	require.Len(t, images, 1)
	imageURL := images[0].(string)
	assert.True(t, strings.HasPrefix(imageURL, "/api/media/rewear/"), imageURL)

	// 圖片可由 bucket 讀回，且已轉成 JPEG
	w, _ = s.do(t, http.MethodGet, imageURL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	// 未審核：公開列表看不到，擁有者看得到
	_, body = s.do(t, http.MethodGet, "/api/items", "", nil)
	assert.Empty(t, body["items"])
	w, _ = s.do(t, http.MethodGet, "/api/items/"+itemID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/items/"+itemID, "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, body = s.do(t, http.MethodGet, "/api/items/user/items", "alice", nil)
	assert.Len(t, body["items"], 1)

	// 只有管理員能審核
	w, body = s.do(t, http.MethodPut, "/api/items/"+itemID+"/approve", "bob", gin.H{"approved": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Insufficient permissions", body["message"])

	w, body = s.do(t, http.MethodPut, "/api/items/"+itemID+"/approve", "admin", gin.H{"approved": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Item approved successfully", body["message"])
	assert.Equal(t, "available", body["item"].(map[string]any)["status"])

	_, body = s.do(t, http.MethodGet, "/api/items", "", nil)
	assert.Len(t, body["items"], 1)

	w, body = s.do(t, http.MethodPut, "/api/items/"+itemID, "bob", gin.H{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = s.do(t, http.MethodPut, "/api/items/"+itemID, "alice", gin.H{"title": "Vintage Denim Jacket"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Item updated successfully", body["message"])
	assert.Equal(t, "Vintage Denim Jacket", body["item"].(map[string]any)["title"])

	w, body = s.do(t, http.MethodDelete, "/api/items/"+itemID, "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Item deleted successfully", body["message"])

	// 圖片一併刪除
	w, _ = s.do(t, http.MethodGet, imageURL, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateItemJSON(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/items", "alice", gin.H{
		"title": "Scarf", "description": "Wool", "category": "Accessories",
		"type": "Scarf", "size": "M", "condition": "Good",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 0, body["item"].(map[string]any)["pointsRequired"])

	w, _ = s.do(t, http.MethodPost, "/api/items", "alice", gin.H{
		"title": "Scarf", "description": "Wool", "category": "hats",
		"type": "Scarf", "size": "M", "condition": "Good",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateItemRejectsBadMultipart(t *testing.T) {
	s := newTestServer(t)

	w, body := s.serve(t, multipartItem(t, "{not json"), "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Item data must be valid JSON", body["message"])

	data := `{"title":"Shoes","description":"Red","category":"Shoes","type":"Sneaker","size":"L","condition":"Fair"}`
	w, _ = s.serve(t, multipartItem(t, data, []byte("definitely not an image")), "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	items, err := s.mem.Items().List(context.Background(), model.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBodyTooLarge(t *testing.T) {
	s := newTestServer(t)

	big := bytes.Repeat([]byte("a"), 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/api/items", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	w, body := s.serve(t, req, "alice")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", body["message"])
}

func TestInvalidObjectID(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/items/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapFlow(t *testing.T) {
	s := newTestServer(t)
	jacket := s.mem.SeedItem(s.alice, "Jacket", 30, core.ItemStatusAvailable, true)

	w, body := s.do(t, http.MethodPost, "/api/swaps", "bob", gin.H{"itemId": jacket.ID.Hex(), "pointsOffered": 30, "message": "Love it"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Swap request created successfully", body["message"])
	swap := body["swapRequest"].(map[string]any)
	swapID := swap["_id"].(string)
	assert.Equal(t, "pending", swap["status"])

	_, body = s.do(t, http.MethodGet, "/api/swaps?status=pending", "alice", nil)
	require.Len(t, body["swapRequests"], 1)
	listed := body["swapRequests"].([]any)[0].(map[string]any)
	assert.Equal(t, "Bob", listed["fromUser"].(map[string]any)["name"])

	w, body = s.do(t, http.MethodGet, "/api/swaps?status=shipped", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", body["message"])

	// 發起者不能自己接受
	w, _ = s.do(t, http.MethodPut, "/api/swaps/"+swapID, "bob", gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = s.do(t, http.MethodPut, "/api/swaps/"+swapID, "alice", gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Swap request updated successfully", body["message"])
	assert.Equal(t, "accepted", body["swapRequest"].(map[string]any)["status"])

	_, body = s.do(t, http.MethodGet, "/api/auth/profile/"+s.bob.FirebaseUID, "bob", nil)
	assert.EqualValues(t, 70, body["user"].(map[string]any)["points"])
	_, body = s.do(t, http.MethodGet, "/api/auth/profile/"+s.alice.FirebaseUID, "alice", nil)
	assert.EqualValues(t, 130, body["user"].(map[string]any)["points"])

	w, body = s.do(t, http.MethodDelete, "/api/swaps/"+swapID, "bob", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Accepted swap requests cannot be deleted", body["message"])
}

func TestSwapRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/swaps", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMediaNotFound(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/media/rewear/missing.jpg", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image not found", body["message"])
}
