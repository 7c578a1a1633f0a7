package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
	"github.com/SashaDiz/real-estate-directory/internal/property/usecase"
)

// fakeDirectory is a DirectoryService backed by a map, mirroring the
// contract of the real usecase.
type fakeDirectory struct {
	mu    sync.Mutex
	seq   int
	items map[string]*domain.Property
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{items: make(map[string]*domain.Property)}
}

func (d *fakeDirectory) List(ctx context.Context) ([]*domain.Property, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*domain.Property, 0, len(d.items))
	for _, p := range d.items {
		out = append(out, p)
	}
	return out, nil
}

func (d *fakeDirectory) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (d *fakeDirectory) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	p.ID = fmt.Sprintf("id-%d", d.seq)
	d.items[p.ID] = p
	return p, nil
}

func (d *fakeDirectory) Update(ctx context.Context, id string, fields *domain.Property) (*domain.Property, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.items[id]; !ok {
		return nil, domain.ErrNotFound
	}
	fields.ID = id
	d.items[id] = fields
	return fields, nil
}

func (d *fakeDirectory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(d.items, id)
	return nil
}

func (d *fakeDirectory) IncrementViews(ctx context.Context, id string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Views++
	return p.Views, nil
}

func (d *fakeDirectory) IncrementContactRequests(ctx context.Context, id string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.ContactRequests++
	return p.ContactRequests, nil
}

type fakeImageStorage struct {
	mu    sync.Mutex
	saved []string
}

func (s *fakeImageStorage) Save(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, filename)
	return "http://localhost:4000/uploads/" + filename, nil
}

func (s *fakeImageStorage) Delete(ctx context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, name := range s.saved {
		if name == filename {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			return nil
		}
	}
	return domain.ErrImageNotFound
}

type fakeAuth struct {
	token string
}

func (a *fakeAuth) Login(ctx context.Context, username, password string) (string, error) {
	if username == "admin" && password == "hunter2" {
		return a.token, nil
	}
	return "", domain.ErrInvalidCredentials
}

func (a *fakeAuth) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if username == "taken" {
		return nil, domain.ErrUsernameTaken
	}
	return &domain.User{Username: username}, nil
}

func (a *fakeAuth) Authenticate(token string) (*usecase.Claims, error) {
	if token == a.token {
		return &usecase.Claims{Username: "admin"}, nil
	}
	return nil, domain.ErrInvalidCredentials
}

type testServer struct {
	*httptest.Server
	directory *fakeDirectory
	storage   *fakeImageStorage
}

func newTestServer(t *testing.T, authRequired bool) *testServer {
	t.Helper()
	directory := newFakeDirectory()
	storage := &fakeImageStorage{}
	logger := zap.NewNop()
	handler := NewHandler(
		directory,
		usecase.NewImageUsecase(storage, logger),
		&fakeAuth{token: "valid-token"},
		logger,
	)
	router := NewRouter(handler, logger, RouterConfig{
		CORSOrigins:  []string{"http://localhost:5173"},
		AuthRequired: authRequired,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, directory: directory, storage: storage}
}

func (s *testServer) createProperty(t *testing.T, title string) *domain.Property {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"status":"for-sale","price":100,"area":50}`, title)
	resp, err := http.Post(s.URL+"/api/properties", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Property
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return &created
}

func TestCreateAndListProperties(t *testing.T) {
	srv := newTestServer(t, false)
	created := srv.createProperty(t, "Office downtown")
	assert.NotEmpty(t, created.ID)

	resp, err := http.Get(srv.URL + "/api/properties")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []*domain.Property
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Office downtown", list[0].Title)
}

func TestCreatePropertyValidation(t *testing.T) {
	srv := newTestServer(t, false)

	cases := map[string]string{
		"negative price": `{"title":"x","price":-1}`,
		"bad status":     `{"title":"x","status":"pending"}`,
		"one coordinate": `{"title":"x","coordinates":[55.7]}`,
		"eleven images":  `{"title":"x","images":["a","b","c","d","e","f","g","h","i","j","k"]}`,
		"missing title":  `{"price":10}`,
		"not json":       `{{{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/properties", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUpdateProperty(t *testing.T) {
	srv := newTestServer(t, false)
	created := srv.createProperty(t, "Before")

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/properties/"+created.ID,
		strings.NewReader(`{"title":"After","status":"for-rent","price":200,"area":75}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated domain.Property
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, domain.StatusForRent, updated.Status)
}

func TestUpdateMissingProperty(t *testing.T) {
	srv := newTestServer(t, false)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/properties/nope",
		strings.NewReader(`{"title":"x"}`))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteProperty(t *testing.T) {
	srv := newTestServer(t, false)
	created := srv.createProperty(t, "Ephemeral")

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/properties/"+created.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["success"])

	resp2, err := http.DefaultClient.Do(req.Clone(context.Background()))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestViewCounterEndpoint(t *testing.T) {
	srv := newTestServer(t, false)
	created := srv.createProperty(t, "Watched")

	for want := int64(1); want <= 3; want++ {
		resp, err := http.Post(srv.URL+"/api/properties/"+created.ID+"/view", "application/json", nil)
		require.NoError(t, err)
		var body map[string]int64
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, want, body["views"])
	}

	resp, err := http.Post(srv.URL+"/api/properties/nope/view", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContactRequestEndpoint(t *testing.T) {
	srv := newTestServer(t, false)
	created := srv.createProperty(t, "Contacted")

	resp, err := http.Post(srv.URL+"/api/properties/"+created.ID+"/contact-request", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body["contactRequests"])
}

func multipartImages(t *testing.T, count int) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for i := 0; i < count; i++ {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="photo-%d.jpg"`, i))
		header.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadImagesReturnsURLsInOrder(t *testing.T) {
	srv := newTestServer(t, false)
	body, contentType := multipartImages(t, 10)

	resp, err := http.Post(srv.URL+"/api/upload-images", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out["imageUrls"], 10)
	assert.Len(t, srv.storage.saved, 10)
}

func TestUploadElevenImagesRejected(t *testing.T) {
	srv := newTestServer(t, false)
	body, contentType := multipartImages(t, 11)

	resp, err := http.Post(srv.URL+"/api/upload-images", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, srv.storage.saved)
}

func TestUploadWithoutFilesRejected(t *testing.T) {
	srv := newTestServer(t, false)
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.Close())

	resp, err := http.Post(srv.URL+"/api/upload-images", w.FormDataContentType(), buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteImage(t *testing.T) {
	srv := newTestServer(t, false)
	srv.storage.saved = []string{"images-1-abc.jpg"}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/delete-image/images-1-abc.jpg", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.DefaultClient.Do(req.Clone(context.Background()))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/api/login", "application/json",
		strings.NewReader(`{"username":"admin","password":"wrong"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var failed map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failed))
	assert.Empty(t, failed["token"])

	resp2, err := http.Post(srv.URL+"/api/login", "application/json",
		strings.NewReader(`{"username":"admin","password":"hunter2"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var ok map[string]string
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&ok))
	assert.Equal(t, "valid-token", ok["token"])
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/api/register", "application/json",
		strings.NewReader(`{"username":"editor","password":"s3cret"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "editor", body["username"])

	resp2, err := http.Post(srv.URL+"/api/register", "application/json",
		strings.NewReader(`{"username":"taken","password":"x"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestMutatingRoutesRequireAuthWhenEnabled(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Post(srv.URL+"/api/properties", "application/json",
		strings.NewReader(`{"title":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Reads stay public.
	resp2, err := http.Get(srv.URL + "/api/properties")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/properties",
		strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Authorization", "Bearer valid-token")
	resp3, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusCreated, resp3.StatusCode)
}

func TestListAppliesServerSideFilters(t *testing.T) {
	srv := newTestServer(t, false)
	srv.createProperty(t, "Cheap shed")
	body := `{"title":"Expensive tower","status":"for-sale","price":1500000,"area":900}`
	resp, err := http.Post(srv.URL+"/api/properties", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/properties?price=500000-2000000")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list []*domain.Property
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Expensive tower", list[0].Title)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, false)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
