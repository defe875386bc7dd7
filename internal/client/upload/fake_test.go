package upload

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
)

var errNotImplemented = errors.New("not implemented")

// fakeClient implements client.Client with overridable upload and ping.
type fakeClient struct {
	mu         sync.Mutex
	imageCalls map[string]int
	pings      int

	uploadImage func(ctx context.Context, f *models.LocalFile, call int) (*models.ImageUploadResponse, error)
	uploadAudio func(ctx context.Context, f *models.LocalFile) (*models.AudioUploadResponse, error)
	ping        func(ctx context.Context) error
}

func newFakeClient() *fakeClient {
	return &fakeClient{imageCalls: map[string]int{}}
}

func (f *fakeClient) calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.imageCalls[name]
}

func (f *fakeClient) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	f.pings++
	f.mu.Unlock()
	if f.ping != nil {
		return f.ping(ctx)
	}
	return nil
}

func (f *fakeClient) UploadImage(ctx context.Context, file *models.LocalFile) (*models.ImageUploadResponse, error) {
	f.mu.Lock()
	f.imageCalls[file.Name]++
	call := f.imageCalls[file.Name]
	f.mu.Unlock()
	if f.uploadImage != nil {
		return f.uploadImage(ctx, file, call)
	}
	return &models.ImageUploadResponse{URL: "https://cdn/" + file.Name, FileName: file.Name}, nil
}

func (f *fakeClient) UploadAudio(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error) {
	if f.uploadAudio != nil {
		return f.uploadAudio(ctx, file)
	}
	return &models.AudioUploadResponse{URL: "https://cdn/" + file.Name}, nil
}

func (f *fakeClient) UploadVideo(ctx context.Context, file *models.LocalFile) (*models.AudioUploadResponse, error) {
	return f.UploadAudio(ctx, file)
}

func (f *fakeClient) Login(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) Signup(context.Context, models.SignupRequest) (*models.AuthResponse, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) GoogleCallback(context.Context, string) (*models.AuthResponse, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) Logout(context.Context) error                  { return errNotImplemented }
func (f *fakeClient) Me(context.Context) (*models.User, error)      { return nil, errNotImplemented }
func (f *fakeClient) GetDrafts(context.Context) ([]models.Testimony, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) ListTestimonies(context.Context, models.TestimonyFilter) (*models.TestimonyPage, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) GetTestimony(context.Context, int) (*models.Testimony, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) CreateTestimony(context.Context, *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) UpdateTestimony(context.Context, int, *models.CreateOrUpdateTestimonyRequest) (*models.Testimony, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) CreateTestimonyForm(context.Context, io.Reader, string) (*models.Testimony, error) {
	return nil, errNotImplemented
}
func (f *fakeClient) UpdateTestimonyForm(context.Context, int, io.Reader, string) (*models.Testimony, error) {
	return nil, errNotImplemented
}

// timeoutError looks like an http.Client timeout.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
