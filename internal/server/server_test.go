package server_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/repository"
	"github.com/filedepot/filedepot/internal/server"
	"github.com/filedepot/filedepot/internal/thumbnail"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:latest")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

func pngBase64(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestGoldenPath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	// 1. Setup infrastructure
	db, cleanupDB := setupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	defer redisClient.Close()

	blobs := repository.NewDiskBlobStore(t.TempDir())

	cfg := &config.Config{}
	cfg.Server.MaxUploadSizeMB = 10
	cfg.Session.TTL = 24 * time.Hour
	cfg.Queue.Name = "thumbnails"

	// 2. Initialize app
	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: redisClient,
		Blobs:       blobs,
	})

	// Helper for requests
	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("X-Token", token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}
	decode := func(resp *http.Response) map[string]interface{} {
		var data map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
		resp.Body.Close()
		return data
	}

	// Status
	resp := request("GET", "/status", "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	status := decode(resp)
	assert.Equal(t, true, status["redis"])
	assert.Equal(t, true, status["db"])

	// Register
	resp = request("POST", "/users", "", map[string]string{"email": "bob@example.com"})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Missing password", decode(resp)["error"])

	resp = request("POST", "/users", "", map[string]string{"email": "bob@example.com", "password": "toto1234"})
	require.Equal(t, 201, resp.StatusCode)
	userData := decode(resp)
	userID := userData["id"].(string)
	require.NotEmpty(t, userID)
	assert.Equal(t, "bob@example.com", userData["email"])

	resp = request("POST", "/users", "", map[string]string{"email": "bob@example.com", "password": "other"})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Already exist", decode(resp)["error"])

	// Connect
	badCreds := base64.StdEncoding.EncodeToString([]byte("bob@example.com:wrong"))
	req, _ := http.NewRequest("GET", "/connect", nil)
	req.Header.Set("Authorization", "Basic "+badCreds)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	goodCreds := base64.StdEncoding.EncodeToString([]byte("bob@example.com:toto1234"))
	req, _ = http.NewRequest("GET", "/connect", nil)
	req.Header.Set("Authorization", "Basic "+goodCreds)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	token := decode(resp)["token"].(string)
	require.NotEmpty(t, token)

	// Me
	resp = request("GET", "/users/me", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	resp = request("GET", "/users/me", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	me := decode(resp)
	assert.Equal(t, userID, me["id"])
	assert.Equal(t, "bob@example.com", me["email"])

	// Stats
	resp = request("GET", "/stats", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	stats := decode(resp)
	assert.Equal(t, float64(1), stats["users"])
	assert.Equal(t, float64(0), stats["files"])

	// Create a folder at the root
	resp = request("POST", "/files", token, map[string]interface{}{
		"name": "documents",
		"type": "folder",
	})
	require.Equal(t, 201, resp.StatusCode)
	folderData := decode(resp)
	folderID := folderData["id"].(string)
	assert.Equal(t, "folder", folderData["type"])
	assert.Equal(t, float64(0), folderData["parentId"])

	// Validation errors surface with the canonical messages
	resp = request("POST", "/files", token, map[string]interface{}{"type": "file", "data": "aGk="})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Missing name", decode(resp)["error"])

	resp = request("POST", "/files", token, map[string]interface{}{
		"name": "orphan.txt", "type": "file", "data": "aGk=", "parentId": "000000000000000000000000",
	})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Parent not found or not a folder", decode(resp)["error"])

	// Upload a text file under the folder
	content := "Hello, filedepot!\n"
	resp = request("POST", "/files", token, map[string]interface{}{
		"name":     "hello.txt",
		"type":     "file",
		"parentId": folderID,
		"data":     base64.StdEncoding.EncodeToString([]byte(content)),
	})
	require.Equal(t, 201, resp.StatusCode)
	fileData := decode(resp)
	fileID := fileData["id"].(string)
	assert.Equal(t, userID, fileData["userId"])
	assert.Equal(t, folderID, fileData["parentId"])
	assert.Equal(t, false, fileData["isPublic"])

	// Show and list
	resp = request("GET", "/files/"+fileID, token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "hello.txt", decode(resp)["name"])

	resp = request("GET", "/files?parentId="+folderID, token, nil)
	require.Equal(t, 200, resp.StatusCode)
	var listing []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	require.Len(t, listing, 1)
	assert.Equal(t, "hello.txt", listing[0]["name"])

	resp = request("GET", "/files", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	listing = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	require.Len(t, listing, 1)
	assert.Equal(t, "documents", listing[0]["name"])

	// Content: owner yes, anonymous no
	resp = request("GET", "/files/"+fileID+"/data", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, content, string(body))

	resp = request("GET", "/files/"+fileID+"/data", "", nil)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "Not found", decode(resp)["error"])

	// Publish, read anonymously, unpublish
	resp = request("PUT", "/files/"+fileID+"/publish", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, decode(resp)["isPublic"])

	resp = request("GET", "/files/"+fileID+"/data", "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	resp = request("PUT", "/files/"+fileID+"/unpublish", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, false, decode(resp)["isPublic"])

	resp = request("GET", "/files/"+fileID+"/data", "", nil)
	assert.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()

	// Size validation and folder content
	resp = request("GET", "/files/"+fileID+"/data?size=300", token, nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Invalid size", decode(resp)["error"])

	resp = request("GET", "/files/"+folderID+"/data", token, nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "A folder doesn't have content", decode(resp)["error"])

	// Upload an image: a thumbnail job lands on the queue
	resp = request("POST", "/files", token, map[string]interface{}{
		"name": "photo.png",
		"type": "image",
		"data": pngBase64(t, 400, 200),
	})
	require.Equal(t, 201, resp.StatusCode)
	imageID := decode(resp)["id"].(string)

	queue := repository.NewRedisJobQueue(redisClient, cfg.Queue.Name)
	job, err := queue.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, imageID, job.FileID)
	assert.Equal(t, userID, job.UserID)

	// Run the job through the worker, then fetch a thumbnail
	worker := thumbnail.NewWorker(queue, repository.NewMongoFileRepository(db), blobs, time.Second)
	state, err := worker.Process(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, thumbnail.StateCompleted, state)

	resp = request("GET", "/files/"+imageID+"/data?size=100", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "image/png")
	thumb, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	img, _, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	// Thumbnails only exist for the widths the worker generates
	resp = request("GET", "/files/"+imageID+"/data?size=42", token, nil)
	assert.Equal(t, 400, resp.StatusCode)
	resp.Body.Close()

	// Disconnect kills the session
	resp = request("GET", "/disconnect", token, nil)
	assert.Equal(t, 204, resp.StatusCode)

	resp = request("GET", "/users/me", token, nil)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Unauthorized", decode(resp)["error"])
}
